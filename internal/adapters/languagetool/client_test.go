package languagetool

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"prosefix/internal/core/checker"
)

func TestCheck_ParsesMatches(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/check" {
			t.Fatalf("unexpected path %q", r.URL.Path)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		if got := r.PostForm.Get("language"); got != "en-US" {
			t.Fatalf("language = %q, want en-US", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"matches":[
			{"message":"Possible agreement error","offset":9,"length":5,
			 "rule":{"id":"SUBJECT_VERB_AGREEMENT"},
			 "replacements":[{"value":"bark"},{"value":"barked"}]}
		]}`))
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL}, zerolog.Nop())

	issues, err := c.Check(context.Background(), "The dogs barks loudly.")
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if len(issues) != 1 {
		t.Fatalf("issues = %d, want 1", len(issues))
	}
	iss := issues[0]
	if iss.RuleID != "SUBJECT_VERB_AGREEMENT" || iss.Offset != 9 || iss.Length != 5 {
		t.Fatalf("unexpected issue %+v", iss)
	}
	if len(iss.Replacements) != 2 || iss.Replacements[0] != "bark" {
		t.Fatalf("unexpected replacements %v", iss.Replacements)
	}
}

func TestCheck_EmptyTextSkipsRequest(t *testing.T) {
	c := New(Config{BaseURL: "http://127.0.0.1:1"}, zerolog.Nop())
	issues, err := c.Check(context.Background(), "   ")
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if issues != nil {
		t.Fatalf("issues = %v, want nil", issues)
	}
}

func TestCheck_ServerErrorSurfaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL}, zerolog.Nop())
	if _, err := c.Check(context.Background(), "hello"); err == nil {
		t.Fatal("want error on 500, got nil")
	}
}

func TestApply(t *testing.T) {
	text := "The dogs barks and the cat chase."
	issues := []checker.Issue{
		{Offset: 9, Length: 5, Replacements: []string{"bark"}},
		{Offset: 27, Length: 5, Replacements: []string{"chases"}},
	}
	got := Apply(text, issues)
	want := "The dogs bark and the cat chases."
	if got != want {
		t.Fatalf("Apply = %q, want %q", got, want)
	}
}

func TestApply_DropsOverlapsAndBadSpans(t *testing.T) {
	text := "abcdef"
	issues := []checker.Issue{
		{Offset: 2, Length: 3, Replacements: []string{"XYZ"}},
		{Offset: 3, Length: 2, Replacements: []string{"q"}},  // overlaps the first
		{Offset: 4, Length: 10, Replacements: []string{"w"}}, // out of range
		{Offset: 0, Length: 1},                               // no replacement
	}
	got := Apply(text, issues)
	if got != "abXYZf" {
		t.Fatalf("Apply = %q, want %q", got, "abXYZf")
	}
}

func TestApply_CharacterOffsetsWithMultibyteRunes(t *testing.T) {
	// the curly apostrophe is 3 bytes; server offsets count it as one character
	text := "He don’t know the answer."
	issues := []checker.Issue{
		{Offset: 9, Length: 4, Replacements: []string{"knew"}},
	}
	got := Apply(text, issues)
	want := "He don’t knew the answer."
	if got != want {
		t.Fatalf("Apply = %q, want %q", got, want)
	}

	// span lengths are character counts too
	got = Apply("café x", []checker.Issue{{Offset: 5, Length: 1, Replacements: []string{"y"}}})
	if got != "café y" {
		t.Fatalf("Apply = %q, want %q", got, "café y")
	}
}

func TestCorrect_AppliesFirstReplacement(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"matches":[
			{"message":"","offset":0,"length":2,"rule":{"id":"X"},"replacements":[{"value":"He"}]}
		]}`))
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL}, zerolog.Nop())
	got, err := c.Correct(context.Background(), "he goes home.")
	if err != nil {
		t.Fatalf("Correct: %v", err)
	}
	if got != "He goes home." {
		t.Fatalf("Correct = %q", got)
	}
}
