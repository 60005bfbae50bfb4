package spacyd

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
)

func TestAnnotate_DecodesTokens(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/annotate" {
			t.Fatalf("unexpected path %q", r.URL.Path)
		}
		var in map[string]string
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if in["text"] != "Dogs bark." {
			t.Fatalf("text = %q", in["text"])
		}
		if in["model"] != "en_core_web_sm" {
			t.Fatalf("model = %q", in["model"])
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"tokens":[
			{"text":"Dogs","whitespace":" ","pos":"NOUN","tag":"NNS","lemma":"dog","dep":"nsubj","head":1,"sent":0,"i":0},
			{"text":"bark","whitespace":"","pos":"VERB","tag":"VBP","lemma":"bark","dep":"ROOT","head":1,"sent":0,"i":1},
			{"text":".","whitespace":"","pos":"PUNCT","tag":".","lemma":".","dep":"punct","head":1,"sent":0,"i":2}
		]}`))
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL}, zerolog.Nop())

	doc, err := c.Annotate(context.Background(), "Dogs bark.")
	if err != nil {
		t.Fatalf("Annotate: %v", err)
	}
	if doc.Len() != 3 {
		t.Fatalf("len = %d, want 3", doc.Len())
	}
	if doc.Tokens[0].Lemma != "dog" || doc.Tokens[0].Dep != "nsubj" {
		t.Fatalf("unexpected token %+v", doc.Tokens[0])
	}
	if doc.Text() != "Dogs bark." {
		t.Fatalf("Text = %q", doc.Text())
	}
}

func TestAnnotate_EmptyTextSkipsRequest(t *testing.T) {
	c := New(Config{BaseURL: "http://127.0.0.1:1"}, zerolog.Nop())
	doc, err := c.Annotate(context.Background(), "")
	if err != nil {
		t.Fatalf("Annotate: %v", err)
	}
	if doc.Len() != 0 {
		t.Fatalf("len = %d, want 0", doc.Len())
	}
}

func TestAnnotate_ServerErrorSurfaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL}, zerolog.Nop())
	if _, err := c.Annotate(context.Background(), "hi"); err == nil {
		t.Fatal("want error on 503, got nil")
	}
}
