// Package pronoun implements the pronoun-antecedent agreement stage: for each
// personal pronoun it finds the nearest suitable antecedent noun to the left,
// derives the expected base pronoun from the antecedent's gender and number,
// and swaps in the case form the pronoun's position calls for
package pronoun

import (
	"context"
	"strings"

	"prosefix/internal/core/annotate"
	"prosefix/internal/core/lexicon"
	"prosefix/internal/core/stage"
	"prosefix/internal/core/textnorm"
)

const editType = "pronoun_agreement"

// antecedent search window, in tokens to the left of the pronoun
const searchWindow = 20

var targetPronouns = map[string]struct{}{
	"he": {}, "she": {}, "it": {}, "they": {},
	"him": {}, "her": {}, "his": {}, "its": {}, "them": {}, "their": {},
}

var possessiveSurface = map[string]struct{}{
	"his": {}, "her": {}, "its": {}, "their": {},
}

var objectSurface = map[string]struct{}{
	"him": {}, "her": {}, "it": {}, "them": {},
}

// Corrector is the pronoun agreement stage
type Corrector struct {
	ann annotate.Annotator
	lex *lexicon.Pack
}

// New returns a pronoun agreement stage
func New(ann annotate.Annotator, lex *lexicon.Pack) *Corrector {
	return &Corrector{ann: ann, lex: lex}
}

// Name implements stage.Stage
func (c *Corrector) Name() string { return "pronoun" }

// Correct implements stage.Stage
func (c *Corrector) Correct(ctx context.Context, text string) (stage.Result, error) {
	if strings.TrimSpace(text) == "" {
		return stage.Result{Text: text, Confidence: 1.0}, nil
	}

	doc, err := c.ann.Annotate(ctx, text)
	if err != nil {
		return stage.Result{}, err
	}
	parts := doc.Surfaces()

	var edits []stage.Edit
	for i, tok := range doc.Tokens {
		if tok.Pos != annotate.POSPron {
			continue
		}
		pron := strings.ToLower(tok.Text)
		if _, ok := targetPronouns[pron]; !ok {
			continue
		}

		ant := c.findAntecedent(doc, i)
		if ant < 0 {
			continue
		}

		expected := c.expectedPronoun(doc, ant, i)
		if expected == "" || expected == pron {
			continue
		}

		fixed := textnorm.MatchCase(tok.Text, expected)
		parts[i] = fixed + tok.Ws
		edits = append(edits, stage.Edit{
			Type:       editType,
			Span:       [2]int{doc.CharOffset(i), doc.CharOffset(i) + len(tok.Text)},
			Orig:       tok.Text,
			Repl:       fixed,
			Antecedent: doc.Tokens[ant].Text,
			Confidence: 0.99,
		})
	}

	result := textnorm.Clean(strings.Join(parts, ""))

	conf := 1.0
	if len(edits) > 0 {
		conf = 0.99
	}
	return stage.Result{Text: result, Edits: edits, Confidence: conf}, nil
}

// findAntecedent scans left for the nearest noun outside prepositional
// objects and possessives
func (c *Corrector) findAntecedent(doc annotate.Doc, pron int) int {
	for i := pron - 1; i >= 0 && i > pron-searchWindow; i-- {
		t := doc.Tokens[i]
		if t.Pos != annotate.POSNoun && t.Pos != annotate.POSProp {
			continue
		}
		if t.Dep == "pobj" || t.Dep == "poss" {
			continue
		}
		return i
	}
	return -1
}

func (c *Corrector) expectedPronoun(doc annotate.Doc, ant, pron int) string {
	antWord := strings.ToLower(doc.Tokens[ant].Text)

	var base string
	switch {
	case c.lex.SingularMale.Has(antWord):
		base = "he"
	case c.lex.SingularFemale.Has(antWord):
		base = "she"
	case c.lex.SingularNeuter.Has(antWord):
		base = "it"
	case c.lex.PluralNouns.Has(antWord), doc.Tokens[ant].PluralTag():
		base = "they"
	default:
		base = "it"
	}

	forms, ok := c.lex.PronounForms[base]
	if !ok {
		return ""
	}
	return forms.Form(c.caseForm(doc, pron))
}

// caseForm decides between possessive, object and subject position
func (c *Corrector) caseForm(doc annotate.Doc, pron int) string {
	surface := strings.ToLower(doc.Tokens[pron].Text)

	var prev, next *annotate.Token
	if pron > 0 {
		prev = &doc.Tokens[pron-1]
	}
	if pron+1 < doc.Len() {
		next = &doc.Tokens[pron+1]
	}

	if _, ok := possessiveSurface[surface]; ok {
		return "poss"
	}
	if next != nil && next.Pos == annotate.POSNoun {
		return "poss"
	}
	if _, ok := objectSurface[surface]; ok {
		return "obj"
	}
	if prev != nil && prev.Pos == annotate.POSVerb {
		return "obj"
	}
	return "nom"
}
