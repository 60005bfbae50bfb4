// Package repo provides postgres access for correction runs
package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"prosefix/internal/modkit/repokit"
	perr "prosefix/internal/platform/errors"
)

// Repo defines the repository contract for correction runs
type Repo interface {
	InsertRun(ctx context.Context, run RowRun) error
	InsertEdits(ctx context.Context, runID string, edits []RowEdit) error
	GetRun(ctx context.Context, id string) (RowRun, error)
	GetEdits(ctx context.Context, runID string) ([]RowEdit, error)
	Recent(ctx context.Context, tense string, limit int) ([]RowRun, error)
}

// RowRun represents a correction run row from the database
type RowRun struct {
	ID            string
	InputText     string
	CorrectedText string
	TotalFixed    int
	ConfidenceAvg float64
	F1Score       float64
	RuntimeSec    float64
	DominantTense string
	CreatedAt     string
}

// RowEdit represents a single edit row belonging to a run
type RowEdit struct {
	Seq        int
	Stage      int
	StageName  string
	Type       string
	SpanStart  int
	SpanEnd    int
	Orig       string
	Repl       string
	Subject    string
	Antecedent string
	Noun       string
	Reason     string
	Confidence float64
}

type (
	// PG implements the Repo interface using Postgres
	PG struct{}

	// queries holds the database query methods
	queries struct{ q repokit.Queryer }
)

// NewPG creates a new Postgres repository binder
func NewPG() repokit.Binder[Repo] { return PG{} }

// Bind binds a Postgres queryer to the Repo implementation
func (PG) Bind(q repokit.Queryer) Repo { return &queries{q: q} }

func (r *queries) InsertRun(ctx context.Context, run RowRun) error {
	const sql = `
insert into correction_runs
(id, input_text, corrected_text, total_fixed, confidence_avg, f1_score, runtime_sec, dominant_tense)
values ($1, $2, $3, $4, $5, $6, $7, nullif($8, ''))
`
	_, err := r.q.Exec(ctx, sql,
		run.ID,
		run.InputText,
		run.CorrectedText,
		run.TotalFixed,
		run.ConfidenceAvg,
		run.F1Score,
		run.RuntimeSec,
		run.DominantTense,
	)
	if err != nil {
		return perr.Wrap(err, perr.ErrorCodeDB, "insert run")
	}
	return nil
}

func (r *queries) InsertEdits(ctx context.Context, runID string, edits []RowEdit) error {
	const sql = `
insert into correction_run_edits
(run_id, seq, stage, stage_name, edit_type, span_start, span_end,
 orig, repl, subject, antecedent, noun, reason, confidence)
values ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
`
	for _, e := range edits {
		_, err := r.q.Exec(ctx, sql,
			runID,
			e.Seq,
			e.Stage,
			e.StageName,
			e.Type,
			e.SpanStart,
			e.SpanEnd,
			e.Orig,
			e.Repl,
			e.Subject,
			e.Antecedent,
			e.Noun,
			e.Reason,
			e.Confidence,
		)
		if err != nil {
			return perr.Wrap(err, perr.ErrorCodeDB, "insert run edit")
		}
	}
	return nil
}

func (r *queries) GetRun(ctx context.Context, id string) (RowRun, error) {
	const sql = `
select id, input_text, corrected_text, total_fixed, confidence_avg, f1_score,
runtime_sec, coalesce(dominant_tense, ''), created_at::text
from correction_runs
where id = $1
`
	var run RowRun
	err := r.q.QueryRow(ctx, sql, id).Scan(
		&run.ID,
		&run.InputText,
		&run.CorrectedText,
		&run.TotalFixed,
		&run.ConfidenceAvg,
		&run.F1Score,
		&run.RuntimeSec,
		&run.DominantTense,
		&run.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return RowRun{}, perr.NotFoundf("run %s", id)
	}
	if err != nil {
		return RowRun{}, perr.Wrap(err, perr.ErrorCodeDB, "get run")
	}
	return run, nil
}

func (r *queries) GetEdits(ctx context.Context, runID string) ([]RowEdit, error) {
	const sql = `
select seq, stage, stage_name, edit_type, span_start, span_end,
orig, repl, subject, antecedent, noun, reason, confidence
from correction_run_edits
where run_id = $1
order by seq
`
	rows, err := r.q.Query(ctx, sql, runID)
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeDB, "get run edits")
	}
	defer rows.Close()
	var out []RowEdit
	for rows.Next() {
		var e RowEdit
		if err := rows.Scan(
			&e.Seq,
			&e.Stage,
			&e.StageName,
			&e.Type,
			&e.SpanStart,
			&e.SpanEnd,
			&e.Orig,
			&e.Repl,
			&e.Subject,
			&e.Antecedent,
			&e.Noun,
			&e.Reason,
			&e.Confidence,
		); err != nil {
			return nil, perr.Wrap(err, perr.ErrorCodeDB, "scan run edit")
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *queries) Recent(ctx context.Context, tense string, limit int) ([]RowRun, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	const sql = `
select id, input_text, corrected_text, total_fixed, confidence_avg, f1_score,
runtime_sec, coalesce(dominant_tense, ''), created_at::text
from correction_runs
where ($1 = '' or dominant_tense = $1)
order by created_at desc
limit $2
`
	rows, err := r.q.Query(ctx, sql, tense, limit)
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeDB, "recent runs")
	}
	defer rows.Close()
	var out []RowRun
	for rows.Next() {
		var run RowRun
		if err := rows.Scan(
			&run.ID,
			&run.InputText,
			&run.CorrectedText,
			&run.TotalFixed,
			&run.ConfidenceAvg,
			&run.F1Score,
			&run.RuntimeSec,
			&run.DominantTense,
			&run.CreatedAt,
		); err != nil {
			return nil, perr.Wrap(err, perr.ErrorCodeDB, "scan run")
		}
		out = append(out, run)
	}
	return out, rows.Err()
}
