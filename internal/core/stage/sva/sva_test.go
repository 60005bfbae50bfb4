package sva

import (
	"context"
	"errors"
	"testing"

	"prosefix/internal/core/annotate/annotatetest"
	"prosefix/internal/core/checker"
	"prosefix/internal/core/lexicon"
)

func mustLex(t *testing.T) *lexicon.Pack {
	t.Helper()
	p, err := lexicon.Load()
	if err != nil {
		t.Fatalf("load lexicon: %v", err)
	}
	return p
}

func TestCorrect_RuleEngine(t *testing.T) {
	c := New(annotatetest.New(), checker.Noop(), mustLex(t))

	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plural morphology", "The dogs barks loudly.", "The dogs bark loudly."},
		{"quantifier singular", "Each of the students have a book.", "Each of the students has a book."},
		{"lexical plural subject", "The police chases the thief.", "The police chase the thief."},
		{"collective singular", "The team win the game.", "The team wins the game."},
		{"academic singular", "The news come at nine.", "The news comes at nine."},
		{"pronoun singular", "He go home.", "He goes home."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := c.Correct(context.Background(), tc.in)
			if err != nil {
				t.Fatalf("correct: %v", err)
			}
			if res.Text != tc.want {
				t.Fatalf("got %q want %q", res.Text, tc.want)
			}
			if len(res.Edits) == 0 {
				t.Fatalf("expected at least one edit")
			}
			if res.Confidence != 0.98 {
				t.Fatalf("confidence = %v, want 0.98", res.Confidence)
			}
		})
	}
}

func TestCorrect_AgreementUntouched(t *testing.T) {
	c := New(annotatetest.New(), checker.Noop(), mustLex(t))

	for _, in := range []string{
		"The cat sleeps.",
		"The dogs bark loudly.",
		"Each of the students has a book.",
	} {
		res, err := c.Correct(context.Background(), in)
		if err != nil {
			t.Fatalf("correct %q: %v", in, err)
		}
		if res.Text != in {
			t.Fatalf("text changed: got %q want %q", res.Text, in)
		}
		if len(res.Edits) != 0 {
			t.Fatalf("unexpected edits: %+v", res.Edits)
		}
		if res.Confidence != 1.0 {
			t.Fatalf("confidence = %v, want 1.0", res.Confidence)
		}
	}
}

func TestCorrect_EmptyInput(t *testing.T) {
	c := New(annotatetest.New(), checker.Noop(), mustLex(t))

	res, err := c.Correct(context.Background(), "   ")
	if err != nil {
		t.Fatalf("correct: %v", err)
	}
	if res.Text != "" || len(res.Edits) != 0 || res.Confidence != 1.0 {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestCorrect_CheckerRunsFirst(t *testing.T) {
	chk := &annotatetest.ScriptedChecker{
		Rewrites: map[string]string{"He go home.": "He goes home."},
	}
	c := New(annotatetest.New(), chk, mustLex(t))

	res, err := c.Correct(context.Background(), "He go home.")
	if err != nil {
		t.Fatalf("correct: %v", err)
	}
	if res.Text != "He goes home." {
		t.Fatalf("got %q", res.Text)
	}
	if len(res.Edits) != 1 || res.Edits[0].Type != "LT_SVA" {
		t.Fatalf("expected single checker edit, got %+v", res.Edits)
	}
}

func TestCorrect_CheckerFailureFallsBack(t *testing.T) {
	chk := &annotatetest.ScriptedChecker{Err: errors.New("checker down")}
	c := New(annotatetest.New(), chk, mustLex(t))

	res, err := c.Correct(context.Background(), "He go home.")
	if err != nil {
		t.Fatalf("correct: %v", err)
	}
	if res.Text != "He goes home." {
		t.Fatalf("rule engine should still fix text, got %q", res.Text)
	}
	if len(res.Edits) != 1 || res.Edits[0].Type != "sva_rule" {
		t.Fatalf("expected rule edit, got %+v", res.Edits)
	}
	if res.Edits[0].Subject != "He" {
		t.Fatalf("subject = %q, want He", res.Edits[0].Subject)
	}
}
