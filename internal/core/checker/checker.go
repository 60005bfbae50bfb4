// Package checker defines the grammar-checker and refiner ports consumed by
// the correction stages. The production implementation talks to an external
// checking service (see adapters/languagetool); stages fall back to their own
// rule passes whenever the checker is unavailable or errors
package checker

import "context"

// Issue is a single finding from a checker pass
type Issue struct {
	RuleID       string   `json:"rule_id"`
	Message      string   `json:"message"`
	Offset       int      `json:"offset"`
	Length       int      `json:"length"`
	Replacements []string `json:"replacements,omitempty"`
}

// Checker surfaces grammar findings and produces a best-effort corrected text.
// Correct must return the input text unchanged when it has no suggestion
type Checker interface {
	Check(ctx context.Context, text string) ([]Issue, error)
	Correct(ctx context.Context, text string) (string, error)
}

// Refiner is an optional deeper rewriting pass applied after rule corrections.
// Available reports whether the refiner can currently serve; callers must
// skip Refine when it returns false
type Refiner interface {
	Available() bool
	Refine(ctx context.Context, text string) (string, error)
}

type noopChecker struct{}

func (noopChecker) Check(context.Context, string) ([]Issue, error) { return nil, nil }
func (noopChecker) Correct(_ context.Context, text string) (string, error) {
	return text, nil
}

// Noop returns a Checker that never finds issues and echoes its input
func Noop() Checker { return noopChecker{} }

type noRefiner struct{}

func (noRefiner) Available() bool { return false }
func (noRefiner) Refine(_ context.Context, text string) (string, error) {
	return text, nil
}

// NoRefiner returns a Refiner that reports itself unavailable
func NoRefiner() Refiner { return noRefiner{} }
