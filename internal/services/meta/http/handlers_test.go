package http

import (
	stdctx "context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	phttp "prosefix/internal/platform/net/http"
)

type okPinger struct{}

func (okPinger) Ping(stdctx.Context) error { return nil }

type failPinger struct{}

func (failPinger) Ping(stdctx.Context) error { return errors.New("connection refused") }

func newTestServer(t *testing.T, d Deps) *httptest.Server {
	t.Helper()
	mux := chi.NewRouter()
	Register(phttp.AdaptChi(mux), d)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func getJSON(t *testing.T, url string, into any) int {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("get %s: %v", url, err)
	}
	defer resp.Body.Close()

	var env phttp.Envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if into != nil {
		data, _ := json.Marshal(env.Data)
		if err := json.Unmarshal(data, into); err != nil {
			t.Fatalf("decode data: %v", err)
		}
	}
	return resp.StatusCode
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, Deps{ServiceName: "prosefix-api", StartedAt: time.Now()})

	var out HealthResponse
	if code := getJSON(t, srv.URL+"/health", &out); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if !out.OK || out.Service != "prosefix-api" {
		t.Fatalf("unexpected health %+v", out)
	}
}

func TestReady_AllOK(t *testing.T) {
	srv := newTestServer(t, Deps{
		StartedAt: time.Now(),
		PG:        okPinger{},
		Checker:   okPinger{},
		Annotator: okPinger{},
	})

	var out ReadyResponse
	if code := getJSON(t, srv.URL+"/ready", &out); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if out.Status != "ok" || len(out.Checks) != 3 {
		t.Fatalf("unexpected ready %+v", out)
	}
}

func TestReady_FailingDependency(t *testing.T) {
	srv := newTestServer(t, Deps{
		StartedAt: time.Now(),
		PG:        okPinger{},
		Checker:   failPinger{},
		Annotator: okPinger{},
	})

	var out ReadyResponse
	if code := getJSON(t, srv.URL+"/ready", &out); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if out.Status != "fail" {
		t.Fatalf("status = %q, want fail", out.Status)
	}
}

func TestReady_SkippedDependencies(t *testing.T) {
	srv := newTestServer(t, Deps{StartedAt: time.Now()})

	var out ReadyResponse
	if code := getJSON(t, srv.URL+"/ready", &out); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if out.Status != "ok" {
		t.Fatalf("status = %q, want ok with all checks skipped", out.Status)
	}
	for _, c := range out.Checks {
		if c.Status != "skipped" {
			t.Fatalf("check %s = %q, want skipped", c.Name, c.Status)
		}
	}
}

func TestVersionAndService(t *testing.T) {
	srv := newTestServer(t, Deps{ServiceName: "prosefix-api", StartedAt: time.Now().Add(-time.Minute)})

	if code := getJSON(t, srv.URL+"/version", nil); code != http.StatusOK {
		t.Fatalf("version status = %d", code)
	}

	var out ServiceResponse
	if code := getJSON(t, srv.URL+"/service", &out); code != http.StatusOK {
		t.Fatalf("service status = %d", code)
	}
	if out.Name != "prosefix-api" || out.Uptime < 59 {
		t.Fatalf("unexpected service %+v", out)
	}
}
