//go:build integration_pg
// +build integration_pg

package repo

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"prosefix/internal/platform/store"
)

// startPostgres launches a disposable Postgres and returns DSN + stop func
func startPostgres(t *testing.T) (dsn string, stop func()) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)

	req := tc.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "postgres",
			"POSTGRES_PASSWORD": "postgres",
			"POSTGRES_DB":       "postgres",
		},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort("5432/tcp"),
			wait.ForLog("database system is ready to accept connections"),
		).WithDeadline(2 * time.Minute),
	}
	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		cancel()
		t.Fatalf("failed to start postgres container: %v", err)
	}

	host, err := c.Host(ctx)
	if err != nil {
		_ = c.Terminate(context.Background())
		cancel()
		t.Fatalf("failed to get container host: %v", err)
	}
	mp, err := c.MappedPort(ctx, "5432/tcp")
	if err != nil {
		_ = c.Terminate(context.Background())
		cancel()
		t.Fatalf("failed to get mapped port: %v", err)
	}

	dsn = fmt.Sprintf("postgres://postgres:postgres@%s:%s/postgres?sslmode=disable", host, mp.Port())
	stop = func() {
		_ = c.Terminate(context.Background())
		cancel()
	}
	return dsn, stop
}

const schema = `
create table if not exists correction_runs (
    id             text primary key,
    input_text     text not null,
    corrected_text text not null,
    total_fixed    int not null default 0,
    confidence_avg double precision not null default 0,
    f1_score       double precision not null default 0,
    runtime_sec    double precision not null default 0,
    dominant_tense text,
    created_at     timestamptz not null default now()
);
create table if not exists correction_run_edits (
    run_id     text not null references correction_runs (id) on delete cascade,
    seq        int not null,
    stage      int not null,
    stage_name text not null,
    edit_type  text not null,
    span_start int not null default 0,
    span_end   int not null default 0,
    orig       text not null default '',
    repl       text not null default '',
    subject    text not null default '',
    antecedent text not null default '',
    noun       text not null default '',
    reason     text not null default '',
    confidence double precision not null default 0,
    primary key (run_id, seq)
);
`

func openRepo(t *testing.T, dsn string) Repo {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	t.Cleanup(cancel)

	st, err := store.Open(ctx, store.Config{
		PG: store.PGConfig{Enabled: true, URL: dsn, MaxConns: 2},
	}, store.WithLogger(zerolog.New(io.Discard)))
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { _ = st.Close(context.Background()) })

	if _, err := st.PG.Exec(ctx, schema); err != nil {
		t.Fatalf("apply schema: %v", err)
	}
	return NewPG().Bind(st.PG)
}

func TestRepo_Integration_RoundTrip(t *testing.T) {
	dsn, stop := startPostgres(t)
	defer stop()

	r := openRepo(t, dsn)
	ctx := context.Background()

	run := RowRun{
		ID:            "run_it_1",
		InputText:     "Yesterday I eat a apple.",
		CorrectedText: "Yesterday I ate an apple.",
		TotalFixed:    2,
		ConfidenceAvg: 0.97,
		F1Score:       0.95,
		RuntimeSec:    0.03,
		DominantTense: "past",
	}
	if err := r.InsertRun(ctx, run); err != nil {
		t.Fatalf("InsertRun: %v", err)
	}

	edits := []RowEdit{
		{Seq: 0, Stage: 2, StageName: "tense", Type: "past_irregular", Orig: "eat", Repl: "ate", Confidence: 0.9},
		{Seq: 1, Stage: 5, StageName: "article", Type: "a_an_fixed", Orig: "a", Repl: "an", Confidence: 0.98},
	}
	if err := r.InsertEdits(ctx, run.ID, edits); err != nil {
		t.Fatalf("InsertEdits: %v", err)
	}

	got, err := r.GetRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if got.CorrectedText != run.CorrectedText || got.DominantTense != "past" {
		t.Fatalf("unexpected run %+v", got)
	}
	if got.CreatedAt == "" {
		t.Fatal("created_at is empty")
	}

	gotEdits, err := r.GetEdits(ctx, run.ID)
	if err != nil {
		t.Fatalf("GetEdits: %v", err)
	}
	if len(gotEdits) != 2 || gotEdits[0].Type != "past_irregular" || gotEdits[1].StageName != "article" {
		t.Fatalf("unexpected edits %+v", gotEdits)
	}
}

func TestRepo_Integration_RecentFiltersAndNotFound(t *testing.T) {
	dsn, stop := startPostgres(t)
	defer stop()

	r := openRepo(t, dsn)
	ctx := context.Background()

	for i, tense := range []string{"past", "present", ""} {
		run := RowRun{
			ID:            fmt.Sprintf("run_it_%d", i),
			InputText:     "x",
			CorrectedText: "x",
			DominantTense: tense,
		}
		if err := r.InsertRun(ctx, run); err != nil {
			t.Fatalf("InsertRun: %v", err)
		}
	}

	all, err := r.Recent(ctx, "", 50)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("all runs = %d, want 3", len(all))
	}

	past, err := r.Recent(ctx, "past", 50)
	if err != nil {
		t.Fatalf("Recent past: %v", err)
	}
	if len(past) != 1 || past[0].ID != "run_it_0" {
		t.Fatalf("unexpected past runs %+v", past)
	}

	if _, err := r.GetRun(ctx, "run_it_missing"); err == nil {
		t.Fatal("GetRun on missing id should fail")
	}
}
