// Package service contains correction workflows
package service

import (
	"context"
	"time"

	"prosefix/internal/core/pipeline"
	"prosefix/internal/core/stage"
	"prosefix/internal/modkit/repokit"
	perr "prosefix/internal/platform/errors"
	"prosefix/internal/services/corrections/domain"
	"prosefix/internal/services/corrections/repo"
)

// Service defines the service contract for corrections
type Service interface{ domain.ServicePort }

// Svc implements the Service interface
type Svc struct {
	Repo   repo.Repo
	binder repokit.Binder[repo.Repo]
	db     repokit.TxRunner
	pipe   *pipeline.Pipeline
}

// New creates a new corrections service. db may be nil when persistence is
// disabled; runs are then returned without being stored
func New(db repokit.TxRunner, binder repokit.Binder[repo.Repo], pipe *pipeline.Pipeline) *Svc {
	if binder == nil {
		panic("corrections.Service requires a non nil Repo binder")
	}
	if pipe == nil {
		panic("corrections.Service requires a non nil pipeline")
	}
	s := &Svc{binder: binder, db: db, pipe: pipe}
	if db != nil {
		s.Repo = binder.Bind(db)
	}
	return s
}

// Correct runs the pipeline over the input text and optionally persists the run
func (s *Svc) Correct(ctx context.Context, in domain.CorrectInput) (domain.Run, error) {
	trace := s.pipe.Run(ctx, in.Text)
	run := runFromTrace(trace)

	if in.Persist && s.db != nil {
		err := repokit.WithTx(ctx, s.db, func(q repokit.Queryer) error {
			r := s.binder.Bind(q)
			if err := r.InsertRun(ctx, rowFromRun(run)); err != nil {
				return err
			}
			return r.InsertEdits(ctx, run.ID, rowsFromEdits(run.Edits))
		})
		if err != nil {
			return domain.Run{}, err
		}
	}
	return run, nil
}

// GetRun loads a persisted run with its edit trail
func (s *Svc) GetRun(ctx context.Context, id string) (domain.Run, error) {
	if s.Repo == nil {
		return domain.Run{}, perr.Unavailablef("run storage is not configured")
	}
	row, err := s.Repo.GetRun(ctx, id)
	if err != nil {
		return domain.Run{}, err
	}
	edits, err := s.Repo.GetEdits(ctx, id)
	if err != nil {
		return domain.Run{}, err
	}
	run := domain.Run{
		ID:            row.ID,
		InputText:     row.InputText,
		CorrectedText: row.CorrectedText,
		TotalFixed:    row.TotalFixed,
		ConfidenceAvg: row.ConfidenceAvg,
		F1Score:       row.F1Score,
		RuntimeSec:    row.RuntimeSec,
		DominantTense: row.DominantTense,
		Edits:         editsFromRows(edits),
	}
	run.Timestamp = parseDBTime(row.CreatedAt)
	return run, nil
}

// Recent lists recent persisted runs without their edit trails
func (s *Svc) Recent(ctx context.Context, in domain.RunsInput) ([]domain.RunSummary, error) {
	if s.Repo == nil {
		return nil, perr.Unavailablef("run storage is not configured")
	}
	rows, err := s.Repo.Recent(ctx, in.Tense, in.Limit)
	if err != nil {
		return nil, err
	}
	out := make([]domain.RunSummary, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.RunSummary{
			ID:            r.ID,
			InputText:     r.InputText,
			CorrectedText: r.CorrectedText,
			TotalFixed:    r.TotalFixed,
			ConfidenceAvg: r.ConfidenceAvg,
			DominantTense: r.DominantTense,
			CreatedAt:     r.CreatedAt,
		})
	}
	return out, nil
}

// StageNames lists the pipeline stages in execution order
func (s *Svc) StageNames() []string { return s.pipe.Stages() }

// parseDBTime accepts the two timestamp renderings postgres emits as text
func parseDBTime(s string) time.Time {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02 15:04:05.999999999-07"} {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts
		}
	}
	return time.Time{}
}

func runFromTrace(t pipeline.Trace) domain.Run {
	return domain.Run{
		ID:            t.ID,
		InputText:     t.Input,
		CorrectedText: t.Corrected,
		TotalFixed:    t.TotalFixed,
		ConfidenceAvg: t.ConfidenceAvg,
		F1Score:       t.F1Score,
		RuntimeSec:    t.RuntimeSec,
		Timestamp:     t.Timestamp,
		DominantTense: t.DominantTense,
		Edits:         t.Edits,
	}
}

func rowFromRun(run domain.Run) repo.RowRun {
	return repo.RowRun{
		ID:            run.ID,
		InputText:     run.InputText,
		CorrectedText: run.CorrectedText,
		TotalFixed:    run.TotalFixed,
		ConfidenceAvg: run.ConfidenceAvg,
		F1Score:       run.F1Score,
		RuntimeSec:    run.RuntimeSec,
		DominantTense: run.DominantTense,
	}
}

func rowsFromEdits(edits []stage.Edit) []repo.RowEdit {
	out := make([]repo.RowEdit, 0, len(edits))
	for i, e := range edits {
		out = append(out, repo.RowEdit{
			Seq:        i,
			Stage:      e.Stage,
			StageName:  e.StageName,
			Type:       e.Type,
			SpanStart:  e.Span[0],
			SpanEnd:    e.Span[1],
			Orig:       e.Orig,
			Repl:       e.Repl,
			Subject:    e.Subject,
			Antecedent: e.Antecedent,
			Noun:       e.Noun,
			Reason:     e.Reason,
			Confidence: e.Confidence,
		})
	}
	return out
}

func editsFromRows(rows []repo.RowEdit) []stage.Edit {
	out := make([]stage.Edit, 0, len(rows))
	for _, r := range rows {
		out = append(out, stage.Edit{
			Stage:      r.Stage,
			StageName:  r.StageName,
			Type:       r.Type,
			Span:       [2]int{r.SpanStart, r.SpanEnd},
			Orig:       r.Orig,
			Repl:       r.Repl,
			Subject:    r.Subject,
			Antecedent: r.Antecedent,
			Noun:       r.Noun,
			Reason:     r.Reason,
			Confidence: r.Confidence,
		})
	}
	return out
}
