// Package pipeline chains the correction stages into one ordered run and
// produces the JSON trace for a correction. Stage failures are isolated: a
// stage that errors or panics is skipped and the previous text snapshot
// carries forward
package pipeline

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"prosefix/internal/core/annotate"
	"prosefix/internal/core/checker"
	"prosefix/internal/core/lexicon"
	"prosefix/internal/core/stage"
	"prosefix/internal/core/stage/article"
	"prosefix/internal/core/stage/conjflow"
	"prosefix/internal/core/stage/pronoun"
	"prosefix/internal/core/stage/sva"
	"prosefix/internal/core/stage/tense"
	perr "prosefix/internal/platform/errors"
)

// fallback confidence for edits a stage stamped with none
const defaultEditConfidence = 0.95

// Trace is the full record of one pipeline run
type Trace struct {
	ID            string       `json:"id"`
	Input         string       `json:"input_text"`
	Corrected     string       `json:"corrected_text"`
	TotalFixed    int          `json:"total_fixed"`
	ConfidenceAvg float64      `json:"confidence_avg"`
	F1Score       float64      `json:"f1_score"`
	RuntimeSec    float64      `json:"runtime_sec"`
	Timestamp     time.Time    `json:"timestamp"`
	DominantTense string       `json:"dominant_tense,omitempty"`
	Edits         []stage.Edit `json:"edits"`
}

// Pipeline runs the correction stages in order
type Pipeline struct {
	stages []stage.Stage
	log    zerolog.Logger
}

// New builds a pipeline over the given stages, run in argument order
func New(log zerolog.Logger, stages ...stage.Stage) *Pipeline {
	return &Pipeline{stages: stages, log: log}
}

// Default wires the five standard stages in their canonical order:
// subject-verb agreement, tense, pronoun agreement, sentence flow, articles
func Default(log zerolog.Logger, ann annotate.Annotator, chk checker.Checker, ref checker.Refiner, lex *lexicon.Pack) *Pipeline {
	return New(log,
		sva.New(ann, chk, lex),
		tense.New(ann, chk, ref, lex),
		pronoun.New(ann, lex),
		conjflow.New(ann, lex),
		article.New(ann, chk, lex),
	)
}

// Stages returns the stage names in run order
func (p *Pipeline) Stages() []string {
	out := make([]string, len(p.stages))
	for i, st := range p.stages {
		out[i] = st.Name()
	}
	return out
}

// Run applies every stage to text and returns the trace. It never fails;
// the worst case is a trace whose corrected text equals the input
func (p *Pipeline) Run(ctx context.Context, text string) Trace {
	now := time.Now().UTC()
	if strings.TrimSpace(text) == "" {
		return Trace{
			ID:            newRunID(),
			Input:         text,
			Corrected:     "",
			ConfidenceAvg: 1.0,
			F1Score:       1.0,
			Timestamp:     now,
			Edits:         []stage.Edit{},
		}
	}

	start := time.Now()
	current := strings.TrimSpace(text)
	edits := []stage.Edit{}
	dominant := ""

	for idx, st := range p.stages {
		n := idx + 1

		res, err := p.runStage(ctx, st, current)
		if err != nil {
			p.log.Error().
				Err(err).
				Int("stage", n).
				Str("stage_name", st.Name()).
				Msg("stage failed; snapshot carried forward")
			continue
		}

		current = res.Text
		if res.Tense != "" {
			dominant = res.Tense
		}
		for _, e := range res.Edits {
			if e.Stage == 0 {
				e.Stage = n
			}
			if e.StageName == "" {
				e.StageName = st.Name()
			}
			if e.Confidence == 0 {
				e.Confidence = defaultEditConfidence
			}
			edits = append(edits, e)
		}

		p.log.Debug().
			Int("stage", n).
			Str("stage_name", st.Name()).
			Int("edits", len(res.Edits)).
			Msg("stage complete")
	}

	avg := 1.0
	if len(edits) > 0 {
		sum := 0.0
		for _, e := range edits {
			sum += e.Confidence
		}
		avg = round(sum/float64(len(edits)), 3)
	}

	return Trace{
		ID:            newRunID(),
		Input:         text,
		Corrected:     strings.TrimSpace(current),
		TotalFixed:    len(edits),
		ConfidenceAvg: avg,
		F1Score:       round(avg, 2),
		RuntimeSec:    round(time.Since(start).Seconds(), 2),
		Timestamp:     now,
		DominantTense: dominant,
		Edits:         edits,
	}
}

func (p *Pipeline) runStage(ctx context.Context, st stage.Stage, text string) (res stage.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = perr.PanicErrf("stage %s panicked: %v", st.Name(), r)
		}
	}()
	return st.Correct(ctx, text)
}

func newRunID() string { return "run_" + uuid.NewString() }

func round(v float64, places int) float64 {
	f := math.Pow10(places)
	return math.Round(v*f) / f
}
