// Package sva implements the subject-verb agreement stage: a checker-first
// pass followed by a dependency-driven rule engine that conjugates finite
// verbs against the grammatical number of their subject phrase
package sva

import (
	"context"
	"strings"

	"prosefix/internal/core/annotate"
	"prosefix/internal/core/checker"
	"prosefix/internal/core/lexicon"
	"prosefix/internal/core/stage"
	"prosefix/internal/core/textnorm"
)

const (
	editTypeChecker = "LT_SVA"
	editTypeRule    = "sva_rule"

	// re-annotation cap; each rewrite re-parses, a cycle would spin forever
	maxPasses = 16
)

var verbDeps = map[string]struct{}{
	"ROOT": {}, "aux": {}, "auxpass": {}, "csubj": {}, "csubjpass": {},
}

var subjectDeps = map[string]struct{}{
	"nsubj": {}, "nsubjpass": {}, "csubj": {}, "csubjpass": {},
}

// Corrector is the subject-verb agreement stage
type Corrector struct {
	ann annotate.Annotator
	chk checker.Checker
	lex *lexicon.Pack
}

// New returns a subject-verb agreement stage
func New(ann annotate.Annotator, chk checker.Checker, lex *lexicon.Pack) *Corrector {
	return &Corrector{ann: ann, chk: chk, lex: lex}
}

// Name implements stage.Stage
func (c *Corrector) Name() string { return "subject_verb" }

// Correct implements stage.Stage
func (c *Corrector) Correct(ctx context.Context, text string) (stage.Result, error) {
	text = textnorm.Preprocess(text)
	if text == "" {
		return stage.Result{Text: text, Confidence: 1.0}, nil
	}

	var edits []stage.Edit

	// checker first; its failure is not ours, the rule engine still runs
	if fixed, err := c.chk.Correct(ctx, text); err == nil && fixed != text {
		edits = append(edits, stage.Edit{
			Type:       editTypeChecker,
			Orig:       text,
			Repl:       fixed,
			Confidence: 0.98,
		})
		text = fixed
	}

	doc, err := c.ann.Annotate(ctx, text)
	if err != nil {
		return stage.Result{}, err
	}
	parts := doc.Surfaces()

	passes := 0
	i := 0
	for i < doc.Len() {
		tok := doc.Tokens[i]
		if tok.Pos != annotate.POSVerb {
			i++
			continue
		}
		if _, ok := verbDeps[tok.Dep]; !ok {
			i++
			continue
		}

		subj := c.subjectOf(doc, i)
		if subj < 0 {
			i++
			continue
		}

		num := c.subjectNumber(doc, subj)
		target := c.conjugate(tok.Lemma, num)
		if target == "" {
			i++
			continue
		}
		target = textnorm.MatchCase(tok.Text, target)

		if strings.EqualFold(target, tok.Text) {
			i++
			continue
		}

		parts[i] = target + tok.Ws
		edits = append(edits, stage.Edit{
			Type:       editTypeRule,
			Orig:       tok.Text,
			Repl:       target,
			Subject:    doc.Tokens[subj].Text,
			Confidence: 0.97,
		})

		passes++
		if passes >= maxPasses {
			break
		}

		// re-parse so indices and deps track the rewritten text
		doc, err = c.ann.Annotate(ctx, strings.Join(parts, ""))
		if err != nil {
			return stage.Result{}, err
		}
		parts = doc.Surfaces()
		i = 0
	}

	result := strings.TrimSpace(textnorm.TightenPunct(strings.Join(parts, "")))

	conf := 1.0
	if len(edits) > 0 {
		conf = 0.98
	}
	return stage.Result{Text: result, Edits: edits, Confidence: conf}, nil
}

func (c *Corrector) subjectOf(doc annotate.Doc, verb int) int {
	for _, ch := range doc.Children(verb) {
		if _, ok := subjectDeps[doc.Tokens[ch].Dep]; ok {
			return ch
		}
	}
	return -1
}

// subjectNumber resolves grammatical number with a fixed precedence:
// quantifier phrase over the subject subtree, then exact plural membership,
// then exact singular membership (plain, collective, academic), then the
// plural morphology tag, defaulting to singular
func (c *Corrector) subjectNumber(doc annotate.Doc, subj int) string {
	subtree := doc.SubtreeText(subj)
	word := strings.ToLower(doc.Tokens[subj].Text)

	switch {
	case c.lex.QuantifierSingular.ContainsAny(subtree):
		return "singular"
	case c.lex.QuantifierPlural.ContainsAny(subtree):
		return "plural"
	case c.lex.PluralSubjects.Has(word):
		return "plural"
	case c.lex.SingularSubjects.Has(word),
		c.lex.CollectiveSingular.Has(word),
		c.lex.AcademicSingular.Has(word):
		return "singular"
	case doc.Tokens[subj].PluralTag():
		return "plural"
	default:
		return "singular"
	}
}

func (c *Corrector) conjugate(lemma, num string) string {
	lemma = strings.ToLower(lemma)
	if lemma == "" {
		return ""
	}
	if pair, ok := c.lex.IrregularPresent[lemma]; ok {
		if num == "singular" {
			return pair.Singular
		}
		return pair.Plural
	}
	if num == "plural" {
		return lemma
	}
	switch {
	case strings.HasSuffix(lemma, "y") && len(lemma) > 1 && !isVowel(lemma[len(lemma)-2]):
		return lemma[:len(lemma)-1] + "ies"
	case strings.HasSuffix(lemma, "s"), strings.HasSuffix(lemma, "sh"),
		strings.HasSuffix(lemma, "ch"), strings.HasSuffix(lemma, "x"),
		strings.HasSuffix(lemma, "z"), strings.HasSuffix(lemma, "o"):
		return lemma + "es"
	default:
		return lemma + "s"
	}
}

func isVowel(b byte) bool {
	switch b {
	case 'a', 'e', 'i', 'o', 'u':
		return true
	}
	return false
}
