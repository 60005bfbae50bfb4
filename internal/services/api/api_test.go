package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"prosefix/internal/core/annotate/annotatetest"
	"prosefix/internal/core/checker"
	"prosefix/internal/platform/config"
	phttp "prosefix/internal/platform/net/http"
	"prosefix/internal/services/corrections/domain"
)

func newTestAPI(t *testing.T) *httptest.Server {
	t.Helper()

	mux := chi.NewRouter()
	log := zerolog.Nop()
	Mount(phttp.AdaptChi(mux), Options{
		Config:    config.New(),
		Logger:    &log,
		Annotator: annotatetest.New(),
		Checker:   checker.Noop(),
		Refiner:   checker.NoRefiner(),
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestMount_MetaHealth(t *testing.T) {
	srv := newTestAPI(t)

	resp, err := http.Get(srv.URL + "/api/v1/meta/health")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var env phttp.Envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.RequestID == "" {
		t.Fatal("request id missing from envelope")
	}
}

func TestMount_CorrectEndToEnd(t *testing.T) {
	srv := newTestAPI(t)

	body := bytes.NewBufferString(`{"text":"The dogs barks loudly."}`)
	resp, err := http.Post(srv.URL+"/api/v1/corrections/correct", "application/json", body)
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var env phttp.Envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	data, _ := json.Marshal(env.Data)
	var run domain.Run
	if err := json.Unmarshal(data, &run); err != nil {
		t.Fatalf("decode run: %v", err)
	}
	if run.CorrectedText != "The dogs bark loudly." {
		t.Fatalf("corrected = %q", run.CorrectedText)
	}
	if run.TotalFixed != 1 {
		t.Fatalf("total fixed = %d", run.TotalFixed)
	}
}

func TestMount_RunsUnavailableWithoutStore(t *testing.T) {
	srv := newTestAPI(t)

	resp, err := http.Post(srv.URL+"/api/v1/corrections/runs", "application/json",
		bytes.NewBufferString(`{}`))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", resp.StatusCode)
	}
}
