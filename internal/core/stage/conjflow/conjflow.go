// Package conjflow implements the sentence flow stage: it inserts
// context-aware connectors between adjacent sentences, choosing by explicit
// cue words, polarity contrast, cause-result hints and temporal order.
// Single-sentence input passes through byte for byte
package conjflow

import (
	"context"
	"strings"

	"prosefix/internal/core/annotate"
	"prosefix/internal/core/lexicon"
	"prosefix/internal/core/stage"
	"prosefix/internal/core/textnorm"
)

const editType = "connector"

// Corrector is the sentence flow stage
type Corrector struct {
	ann annotate.Annotator
	lex *lexicon.Pack
}

// New returns a sentence flow stage
func New(ann annotate.Annotator, lex *lexicon.Pack) *Corrector {
	return &Corrector{ann: ann, lex: lex}
}

// Name implements stage.Stage
func (c *Corrector) Name() string { return "conjunction_flow" }

// Correct implements stage.Stage
func (c *Corrector) Correct(ctx context.Context, text string) (stage.Result, error) {
	if strings.TrimSpace(text) == "" {
		return stage.Result{Text: text, Confidence: 1.0}, nil
	}

	doc, err := c.ann.Annotate(ctx, text)
	if err != nil {
		return stage.Result{}, err
	}
	sentences := doc.Sentences()
	if len(sentences) < 2 {
		return stage.Result{Text: text, Confidence: 1.0}, nil
	}

	enhanced := []string{sentences[0]}
	var edits []stage.Edit

	for i := 1; i < len(sentences); i++ {
		prev, curr := sentences[i-1], sentences[i]

		connector, reason := c.chooseConnector(prev, curr)
		if connector == "" {
			enhanced = append(enhanced, " "+curr)
			continue
		}

		conn := connector
		if textnorm.EndsTerminal(prev) {
			conn = textnorm.Capitalize(conn)
		}
		joined := " " + curr
		if !strings.HasPrefix(strings.ToLower(curr), connector) {
			joined = " " + conn + ", " + curr
		}
		enhanced = append(enhanced, joined)

		before := len(strings.Join(enhanced[:len(enhanced)-1], ""))
		after := len(strings.Join(enhanced, ""))
		edits = append(edits, stage.Edit{
			Type:       editType,
			Span:       [2]int{before, after},
			Repl:       conn,
			Reason:     reason,
			Confidence: 0.99,
		})
	}

	result := textnorm.NormalizePunctSpacing(textnorm.TightenPunct(strings.Join(enhanced, "")))

	conf := 1.0
	if len(edits) > 0 {
		conf = 0.99
	}
	return stage.Result{Text: result, Edits: edits, Confidence: conf}, nil
}

// chooseConnector picks the connector and its reason for a sentence pair.
// Empty connector means the pair reads fine as is
func (c *Corrector) chooseConnector(prev, curr string) (string, string) {
	p, cu := strings.ToLower(prev), strings.ToLower(curr)

	// already connected by an explicit cue
	if containsAny(cu, "because", "since", "therefore", "hence") {
		return "", ""
	}

	if c.isContrast(p, cu) {
		return "but", "contrast"
	}

	if containsAny(p, "because", "since", "due to", "as a result") {
		return "so", "cause-result"
	}
	if containsAny(p, "reason", "cause") || containsAny(cu, "result", "therefore") {
		return "therefore", "cause-result"
	}

	if containsAny(p, "first", "after", "before", "later", "next") {
		return "then", "sequence"
	}
	if containsAny(cu, "then", "afterward", "later", "finally") {
		return "", ""
	}

	if textnorm.EndsTerminal(prev) {
		return "and", "addition"
	}
	return "", ""
}

// isContrast detects polarity mismatch between adjacent sentences, either
// sentiment words pointing opposite ways or negation on exactly one side
func (c *Corrector) isContrast(p, cu string) bool {
	if c.lex.Positive.ContainsAny(p) && c.lex.Negative.ContainsAny(cu) {
		return true
	}
	if c.lex.Negative.ContainsAny(p) && c.lex.Positive.ContainsAny(cu) {
		return true
	}
	return c.lex.Negation.ContainsAny(p) != c.lex.Negation.ContainsAny(cu)
}

func containsAny(s string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
