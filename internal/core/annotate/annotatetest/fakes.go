package annotatetest

import (
	"context"

	"prosefix/internal/core/checker"
)

// ScriptedChecker maps exact input texts to rewritten outputs. Inputs with no
// entry pass through unchanged with no findings
type ScriptedChecker struct {
	Rewrites map[string]string
	Err      error // returned from both Check and Correct when set
}

// Check implements checker.Checker
func (c *ScriptedChecker) Check(_ context.Context, text string) ([]checker.Issue, error) {
	if c.Err != nil {
		return nil, c.Err
	}
	if out, ok := c.Rewrites[text]; ok && out != text {
		return []checker.Issue{{RuleID: "SCRIPTED", Message: "scripted rewrite", Length: len(text)}}, nil
	}
	return nil, nil
}

// Correct implements checker.Checker
func (c *ScriptedChecker) Correct(_ context.Context, text string) (string, error) {
	if c.Err != nil {
		return "", c.Err
	}
	if out, ok := c.Rewrites[text]; ok {
		return out, nil
	}
	return text, nil
}

// StaticRefiner rewrites any input to Out when On is true
type StaticRefiner struct {
	On  bool
	Out string
	Err error
}

// Available implements checker.Refiner
func (r *StaticRefiner) Available() bool { return r.On }

// Refine implements checker.Refiner
func (r *StaticRefiner) Refine(_ context.Context, text string) (string, error) {
	if r.Err != nil {
		return "", r.Err
	}
	if r.Out != "" {
		return r.Out, nil
	}
	return text, nil
}
