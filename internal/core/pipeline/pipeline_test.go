package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"prosefix/internal/core/annotate/annotatetest"
	"prosefix/internal/core/checker"
	"prosefix/internal/core/lexicon"
	"prosefix/internal/core/stage"
)

func defaultPipeline(t *testing.T) *Pipeline {
	t.Helper()
	lex, err := lexicon.Load()
	if err != nil {
		t.Fatalf("load lexicon: %v", err)
	}
	return Default(zerolog.Nop(), annotatetest.New(), checker.Noop(), checker.NoRefiner(), lex)
}

func TestRun_EndToEnd(t *testing.T) {
	p := defaultPipeline(t)

	tr := p.Run(context.Background(), "Mary saw she in the mirror.")

	if tr.Corrected != "Mary sees her in the mirror." {
		t.Fatalf("corrected = %q", tr.Corrected)
	}
	if tr.TotalFixed != 2 {
		t.Fatalf("total fixed = %d, edits %+v", tr.TotalFixed, tr.Edits)
	}
	if tr.ConfidenceAvg != 0.98 {
		t.Fatalf("confidence avg = %v", tr.ConfidenceAvg)
	}
	if !strings.HasPrefix(tr.ID, "run_") {
		t.Fatalf("id = %q", tr.ID)
	}
	if tr.DominantTense != "present" {
		t.Fatalf("dominant tense = %q", tr.DominantTense)
	}
	if tr.Timestamp.IsZero() {
		t.Fatalf("timestamp not set")
	}
	for _, e := range tr.Edits {
		if e.Stage == 0 || e.StageName == "" {
			t.Fatalf("edit missing stage stamp: %+v", e)
		}
	}
}

func TestRun_WellFormedRoundTrip(t *testing.T) {
	p := defaultPipeline(t)

	in := "The cat sleeps."
	tr := p.Run(context.Background(), in)

	if tr.Corrected != in {
		t.Fatalf("corrected = %q, want input unchanged", tr.Corrected)
	}
	if tr.TotalFixed != 0 || len(tr.Edits) != 0 {
		t.Fatalf("edits = %+v", tr.Edits)
	}
	if tr.ConfidenceAvg != 1.0 || tr.F1Score != 1.0 {
		t.Fatalf("confidence = %v f1 = %v", tr.ConfidenceAvg, tr.F1Score)
	}
}

func TestRun_EmptyInput(t *testing.T) {
	p := defaultPipeline(t)

	tr := p.Run(context.Background(), "   ")
	if tr.Corrected != "" || tr.TotalFixed != 0 {
		t.Fatalf("unexpected trace: %+v", tr)
	}
	if tr.ConfidenceAvg != 1.0 || tr.F1Score != 1.0 {
		t.Fatalf("confidence = %v f1 = %v", tr.ConfidenceAvg, tr.F1Score)
	}
	if !strings.HasPrefix(tr.ID, "run_") {
		t.Fatalf("id = %q", tr.ID)
	}
	if tr.Edits == nil {
		t.Fatalf("edits must be non-nil for JSON shape")
	}
}

type brokenStage struct {
	name   string
	panics bool
}

func (b brokenStage) Name() string { return b.name }

func (b brokenStage) Correct(context.Context, string) (stage.Result, error) {
	if b.panics {
		panic("kaboom")
	}
	return stage.Result{}, errors.New("stage broken")
}

func TestRun_FailureIsolation(t *testing.T) {
	p := New(zerolog.Nop(),
		brokenStage{name: "subject_verb"},
		brokenStage{name: "tense", panics: true},
	)

	in := "The team win."
	tr := p.Run(context.Background(), in)

	if tr.Corrected != in {
		t.Fatalf("corrected = %q, want input carried through failures", tr.Corrected)
	}
	if tr.TotalFixed != 0 {
		t.Fatalf("total fixed = %d", tr.TotalFixed)
	}
	if tr.ConfidenceAvg != 1.0 {
		t.Fatalf("confidence avg = %v", tr.ConfidenceAvg)
	}
}

type stubStage struct{ out string }

func (s stubStage) Name() string { return "stub" }

func (s stubStage) Correct(_ context.Context, text string) (stage.Result, error) {
	return stage.Result{
		Text:  s.out,
		Edits: []stage.Edit{{Type: "stub_fix"}},
	}, nil
}

func TestRun_StampsEditDefaults(t *testing.T) {
	p := New(zerolog.Nop(), stubStage{out: "fixed text"})

	tr := p.Run(context.Background(), "raw text")
	if len(tr.Edits) != 1 {
		t.Fatalf("edits = %+v", tr.Edits)
	}
	e := tr.Edits[0]
	if e.Stage != 1 || e.StageName != "stub" {
		t.Fatalf("stamp = %+v", e)
	}
	if e.Confidence != 0.95 {
		t.Fatalf("default confidence = %v", e.Confidence)
	}
	if tr.Corrected != "fixed text" {
		t.Fatalf("corrected = %q", tr.Corrected)
	}
}

func TestStages_DefaultOrder(t *testing.T) {
	p := defaultPipeline(t)

	want := []string{"subject_verb", "tense", "pronoun", "conjunction_flow", "article"}
	got := p.Stages()
	if len(got) != len(want) {
		t.Fatalf("stages = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("stage %d = %q, want %q", i, got[i], want[i])
		}
	}
}
