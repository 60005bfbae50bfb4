package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"prosefix/internal/core/annotate/annotatetest"
	"prosefix/internal/core/checker"
	"prosefix/internal/core/lexicon"
	"prosefix/internal/core/pipeline"
	"prosefix/internal/modkit/repokit"
	perr "prosefix/internal/platform/errors"
	"prosefix/internal/platform/testkit"
	"prosefix/internal/services/corrections/domain"
	"prosefix/internal/services/corrections/repo"
)

// memRepo records persisted rows for assertions
type memRepo struct {
	runs  []repo.RowRun
	edits map[string][]repo.RowEdit
}

func newMemRepo() *memRepo { return &memRepo{edits: map[string][]repo.RowEdit{}} }

func (m *memRepo) InsertRun(_ context.Context, run repo.RowRun) error {
	m.runs = append(m.runs, run)
	return nil
}

func (m *memRepo) InsertEdits(_ context.Context, runID string, edits []repo.RowEdit) error {
	m.edits[runID] = append(m.edits[runID], edits...)
	return nil
}

func (m *memRepo) GetRun(_ context.Context, id string) (repo.RowRun, error) {
	for _, r := range m.runs {
		if r.ID == id {
			return r, nil
		}
	}
	return repo.RowRun{}, perr.NotFoundf("run %s", id)
}

func (m *memRepo) GetEdits(_ context.Context, runID string) ([]repo.RowEdit, error) {
	return m.edits[runID], nil
}

func (m *memRepo) Recent(_ context.Context, tense string, limit int) ([]repo.RowRun, error) {
	var out []repo.RowRun
	for _, r := range m.runs {
		if tense != "" && r.DominantTense != tense {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

type memBinder struct{ r *memRepo }

func (b memBinder) Bind(repokit.Queryer) repo.Repo { return b.r }

// fakeTxRunner forwards Tx to fn with a nil queryer; the mem repo ignores it
type fakeTxRunner struct{ called int }

func (f *fakeTxRunner) Tx(_ context.Context, fn func(q repokit.Queryer) error) error {
	f.called++
	return fn(noopQueryer{})
}

func (f *fakeTxRunner) Exec(context.Context, string, ...any) (repokit.CommandTag, error) {
	return nil, nil
}
func (f *fakeTxRunner) Query(context.Context, string, ...any) (repokit.Rows, error) {
	return nil, nil
}
func (f *fakeTxRunner) QueryRow(context.Context, string, ...any) repokit.Row { return nil }

type noopQueryer struct{}

func (noopQueryer) Exec(context.Context, string, ...any) (repokit.CommandTag, error) {
	return nil, nil
}
func (noopQueryer) Query(context.Context, string, ...any) (repokit.Rows, error) { return nil, nil }
func (noopQueryer) QueryRow(context.Context, string, ...any) repokit.Row        { return nil }

func newTestPipeline(t *testing.T) *pipeline.Pipeline {
	t.Helper()
	lex, err := lexicon.Load()
	if err != nil {
		t.Fatalf("load lexicon: %v", err)
	}
	return pipeline.Default(zerolog.Nop(), annotatetest.New(), checker.Noop(), checker.NoRefiner(), lex)
}

func TestNew_RequiresBinderAndPipeline(t *testing.T) {
	pipe := newTestPipeline(t)
	testkit.MustPanic(t, func() { New(nil, nil, pipe) })
	testkit.MustPanic(t, func() { New(nil, memBinder{r: newMemRepo()}, nil) })
	testkit.MustNotPanic(t, func() { New(nil, memBinder{r: newMemRepo()}, pipe) })
}

func TestCorrect_ReturnsRun(t *testing.T) {
	svc := New(nil, memBinder{r: newMemRepo()}, newTestPipeline(t))

	run, err := svc.Correct(context.Background(), domain.CorrectInput{Text: "The dogs barks loudly."})
	if err != nil {
		t.Fatalf("Correct: %v", err)
	}
	if run.CorrectedText != "The dogs bark loudly." {
		t.Fatalf("corrected = %q", run.CorrectedText)
	}
	if run.TotalFixed != 1 {
		t.Fatalf("total fixed = %d, want 1", run.TotalFixed)
	}
	if run.ID == "" {
		t.Fatal("run id is empty")
	}
}

func TestCorrect_PersistsWhenAsked(t *testing.T) {
	mem := newMemRepo()
	tx := &fakeTxRunner{}
	svc := New(tx, memBinder{r: mem}, newTestPipeline(t))

	run, err := svc.Correct(context.Background(), domain.CorrectInput{
		Text:    "The dogs barks loudly.",
		Persist: true,
	})
	if err != nil {
		t.Fatalf("Correct: %v", err)
	}
	if tx.called != 1 {
		t.Fatalf("tx called %d times, want 1", tx.called)
	}
	if len(mem.runs) != 1 || mem.runs[0].ID != run.ID {
		t.Fatalf("run not persisted: %+v", mem.runs)
	}
	if len(mem.edits[run.ID]) != len(run.Edits) {
		t.Fatalf("edits persisted = %d, want %d", len(mem.edits[run.ID]), len(run.Edits))
	}
}

func TestCorrect_NoPersistWithoutFlag(t *testing.T) {
	mem := newMemRepo()
	tx := &fakeTxRunner{}
	svc := New(tx, memBinder{r: mem}, newTestPipeline(t))

	if _, err := svc.Correct(context.Background(), domain.CorrectInput{Text: "The cat sleeps."}); err != nil {
		t.Fatalf("Correct: %v", err)
	}
	if tx.called != 0 {
		t.Fatalf("tx called %d times, want 0", tx.called)
	}
	if len(mem.runs) != 0 {
		t.Fatalf("runs persisted = %d, want 0", len(mem.runs))
	}
}

func TestGetRun_RoundTrip(t *testing.T) {
	mem := newMemRepo()
	tx := &fakeTxRunner{}
	svc := New(tx, memBinder{r: mem}, newTestPipeline(t))

	saved, err := svc.Correct(context.Background(), domain.CorrectInput{
		Text:    "The dogs barks loudly.",
		Persist: true,
	})
	if err != nil {
		t.Fatalf("Correct: %v", err)
	}

	got, err := svc.GetRun(context.Background(), saved.ID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if got.CorrectedText != saved.CorrectedText {
		t.Fatalf("corrected = %q, want %q", got.CorrectedText, saved.CorrectedText)
	}
	if len(got.Edits) != len(saved.Edits) {
		t.Fatalf("edits = %d, want %d", len(got.Edits), len(saved.Edits))
	}
	if len(got.Edits) > 0 && got.Edits[0].StageName != saved.Edits[0].StageName {
		t.Fatalf("edit stage = %q, want %q", got.Edits[0].StageName, saved.Edits[0].StageName)
	}
}

func TestGetRun_NotFound(t *testing.T) {
	svc := New(&fakeTxRunner{}, memBinder{r: newMemRepo()}, newTestPipeline(t))

	_, err := svc.GetRun(context.Background(), "run_missing")
	if !perr.IsCode(err, perr.ErrorCodeNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}
}

func TestGetRun_StorageDisabled(t *testing.T) {
	svc := New(nil, memBinder{r: newMemRepo()}, newTestPipeline(t))

	_, err := svc.GetRun(context.Background(), "run_x")
	if !perr.IsCode(err, perr.ErrorCodeUnavailable) {
		t.Fatalf("err = %v, want unavailable", err)
	}
}

func TestRecent_FiltersByTense(t *testing.T) {
	mem := newMemRepo()
	mem.runs = []repo.RowRun{
		{ID: "run_a", DominantTense: "past"},
		{ID: "run_b", DominantTense: "present"},
	}
	svc := New(&fakeTxRunner{}, memBinder{r: mem}, newTestPipeline(t))

	out, err := svc.Recent(context.Background(), domain.RunsInput{Tense: "past"})
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(out) != 1 || out[0].ID != "run_a" {
		t.Fatalf("unexpected runs %+v", out)
	}
}

func TestStageNames_Order(t *testing.T) {
	svc := New(nil, memBinder{r: newMemRepo()}, newTestPipeline(t))

	want := []string{"subject_verb", "tense", "pronoun", "conjunction_flow", "article"}
	got := svc.StageNames()
	if len(got) != len(want) {
		t.Fatalf("stages = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("stages[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
