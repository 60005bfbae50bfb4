// Package tense implements the tense consistency stage: it detects the
// dominant tense of the whole text from clue words and verb tags, then
// normalizes auxiliary constructions and irregular verb forms sentence by
// sentence toward that tense, with optional refiner and checker passes
package tense

import (
	"context"
	"math"
	"regexp"
	"sort"
	"strings"

	"prosefix/internal/core/annotate"
	"prosefix/internal/core/checker"
	"prosefix/internal/core/lexicon"
	"prosefix/internal/core/stage"
	"prosefix/internal/core/textnorm"
)

const (
	editPastIrregular    = "past_irregular"
	editPresentNormalize = "present_normalize"
	editFutureNormalize  = "future_normalize"
	editRefiner          = "refiner"
	editChecker          = "LT"
)

// Corrector is the tense consistency stage
type Corrector struct {
	ann annotate.Annotator
	chk checker.Checker
	ref checker.Refiner
	lex *lexicon.Pack
}

// New returns a tense consistency stage. ref may be checker.NoRefiner()
func New(ann annotate.Annotator, chk checker.Checker, ref checker.Refiner, lex *lexicon.Pack) *Corrector {
	return &Corrector{ann: ann, chk: chk, ref: ref, lex: lex}
}

// Name implements stage.Stage
func (c *Corrector) Name() string { return "tense" }

// Correct implements stage.Stage
func (c *Corrector) Correct(ctx context.Context, text string) (stage.Result, error) {
	text = textnorm.Preprocess(text)
	if text == "" {
		return stage.Result{Text: text, Confidence: 1.0, Tense: "present"}, nil
	}

	doc, err := c.ann.Annotate(ctx, text)
	if err != nil {
		return stage.Result{}, err
	}

	dominant := c.dominantTense(doc, strings.ToLower(text))
	verbCount := 0
	for _, t := range doc.Tokens {
		if t.Pos == annotate.POSVerb {
			verbCount++
		}
	}

	var (
		fixed []string
		edits []stage.Edit
	)
	for _, sent := range doc.Sentences() {
		s, es, err := c.fixSentence(ctx, sent, dominant)
		if err != nil {
			return stage.Result{}, err
		}
		fixed = append(fixed, s)
		edits = append(edits, es...)
	}

	result := textnorm.Clean(strings.Join(fixed, " "))
	return stage.Result{
		Text:       result,
		Edits:      edits,
		Confidence: confidence(verbCount, len(edits)),
		Tense:      dominant,
	}, nil
}

// dominantTense scores past, present and future evidence across the text.
// Ties resolve in that order
func (c *Corrector) dominantTense(doc annotate.Doc, lower string) string {
	scores := map[string]int{"past": 0, "present": 0, "future": 0}

	for _, t := range doc.Tokens {
		w := strings.ToLower(t.Text)
		switch {
		case c.lex.PastClues.Has(w) || t.Tag == "VBD" || t.Tag == "VBN":
			scores["past"] += 3
		case c.lex.FutureClues.Has(w) || w == "will":
			scores["future"] += 3
		case t.Tag == "VBZ" || t.Tag == "VBP":
			scores["present"] += 2
		}
	}
	if strings.Contains(lower, "yesterday") {
		scores["past"] += 5
	}
	if strings.Contains(lower, "tomorrow") {
		scores["future"] += 5
	}
	if strings.Contains(lower, "now") || strings.Contains(lower, "today") {
		scores["present"] += 3
	}

	best := "past"
	for _, k := range []string{"present", "future"} {
		if scores[k] > scores[best] {
			best = k
		}
	}
	return best
}

func (c *Corrector) fixSentence(ctx context.Context, sent, tense string) (string, []stage.Edit, error) {
	var edits []stage.Edit

	s, err := c.fixAuxiliaries(ctx, sent)
	if err != nil {
		return "", nil, err
	}

	s, es, err := c.normalizeTense(ctx, s, tense)
	if err != nil {
		return "", nil, err
	}
	edits = append(edits, es...)

	if c.ref != nil && c.ref.Available() {
		if refined, err := c.ref.Refine(ctx, s); err == nil && refined != s {
			edits = append(edits, stage.Edit{Type: editRefiner, Reason: "deep tense recheck"})
			s = refined
		}
	}

	if matches, err := c.chk.Check(ctx, s); err == nil && len(matches) > 0 {
		if corrected, err := c.chk.Correct(ctx, s); err == nil && corrected != s {
			edits = append(edits, stage.Edit{Type: editChecker, Reason: "checker refinement"})
			s = corrected
		}
	}
	return s, edits, nil
}

// fixAuxiliaries repairs do-support, progressive and perfect constructions:
// "didn't went" to "didn't go", "was chase" to "was chasing", "has finish"
// to "has finished". Rewrites apply only when the following token parses as
// a base or present verb, so already-correct text passes through untouched
func (c *Corrector) fixAuxiliaries(ctx context.Context, sent string) (string, error) {
	doc, err := c.ann.Annotate(ctx, sent)
	if err != nil {
		return "", err
	}
	parts := doc.Surfaces()

	for i := 0; i+1 < doc.Len(); i++ {
		tok := doc.Tokens[i]
		next := doc.Tokens[i+1]
		lw := strings.ToLower(tok.Text)
		nl := strings.ToLower(next.Text)

		switch {
		case isDoAux(lw):
			if base, ok := c.lex.IrregularToBase[nl]; ok {
				parts[i+1] = textnorm.MatchCase(next.Text, base) + next.Ws
			} else if next.Pos == annotate.POSVerb && strings.HasSuffix(nl, "ed") && len(nl) > 4 {
				parts[i+1] = textnorm.MatchCase(next.Text, strings.TrimSuffix(nl, "ed")) + next.Ws
			}
		case (lw == "was" || lw == "were") && next.Pos == annotate.POSVerb &&
			(next.Tag == "VB" || next.Tag == "VBP"):
			parts[i+1] = textnorm.MatchCase(next.Text, gerund(nl)) + next.Ws
		case tok.Lemma == "have" && tok.Pos == annotate.POSVerb &&
			next.Pos == annotate.POSVerb &&
			(next.Tag == "VB" || next.Tag == "VBP" || next.Tag == "VBZ"):
			parts[i+1] = textnorm.MatchCase(next.Text, c.pastParticiple(nl)) + next.Ws
		}
	}
	return strings.Join(parts, ""), nil
}

func isDoAux(w string) bool {
	switch w {
	case "do", "does", "don't", "doesn't", "didn't",
		"don’t", "doesn’t", "didn’t":
		return true
	}
	return false
}

func gerund(verb string) string {
	if strings.HasSuffix(verb, "e") && !strings.HasSuffix(verb, "ee") && len(verb) > 2 {
		return verb[:len(verb)-1] + "ing"
	}
	return verb + "ing"
}

func (c *Corrector) pastParticiple(verb string) string {
	if past, ok := c.lex.IrregularPast[verb]; ok {
		return past
	}
	if !strings.HasSuffix(verb, "ed") {
		return verb + "ed"
	}
	return verb
}

// normalizeTense rewrites irregular verb forms toward the dominant tense.
// Verbs directly after do-support, a modal or infinitive "to" are left
// alone; the auxiliary already carries the tense there
func (c *Corrector) normalizeTense(ctx context.Context, s, tense string) (string, []stage.Edit, error) {
	var edits []stage.Edit

	switch tense {
	case "future":
		for _, past := range sortedKeys(c.lex.IrregularToBase) {
			base := c.lex.IrregularToBase[past]
			re := wordPattern(past)
			if re.MatchString(s) {
				s = re.ReplaceAllStringFunc(s, func(m string) string {
					return textnorm.MatchCase(m, base)
				})
				edits = append(edits, stage.Edit{Type: editFutureNormalize, Orig: past, Repl: base})
			}
		}
	case "past":
		doc, err := c.ann.Annotate(ctx, s)
		if err != nil {
			return "", nil, err
		}
		for i, tok := range doc.Tokens {
			if tok.Pos != annotate.POSVerb {
				continue
			}
			if tok.Tag != "VB" && tok.Tag != "VBP" && tok.Tag != "VBZ" {
				continue
			}
			past, ok := c.lex.IrregularPast[tok.Lemma]
			if !ok || strings.EqualFold(tok.Text, past) {
				continue
			}
			if prev, ok := prevWord(doc, i); ok && tenseCarrier(prev) {
				continue
			}
			re := wordPattern(strings.ToLower(tok.Text))
			s = re.ReplaceAllStringFunc(s, func(m string) string {
				return textnorm.MatchCase(m, past)
			})
			edits = append(edits, stage.Edit{Type: editPastIrregular, Orig: tok.Text, Repl: past})
		}
	case "present":
		for _, past := range sortedKeys(c.lex.IrregularToBase) {
			base := c.lex.IrregularToBase[past]
			re := wordPattern(past)
			if re.MatchString(s) {
				s = re.ReplaceAllStringFunc(s, func(m string) string {
					return textnorm.MatchCase(m, base)
				})
				edits = append(edits, stage.Edit{Type: editPresentNormalize, Orig: past, Repl: base})
			}
		}
	}
	return s, edits, nil
}

func prevWord(doc annotate.Doc, i int) (annotate.Token, bool) {
	for j := i - 1; j >= 0; j-- {
		t := doc.Tokens[j]
		if t.IsPunct() || t.IsSpace() {
			continue
		}
		return t, true
	}
	return annotate.Token{}, false
}

func tenseCarrier(t annotate.Token) bool {
	lw := strings.ToLower(t.Text)
	if isDoAux(lw) || lw == "to" {
		return true
	}
	return t.Tag == "MD"
}

func wordPattern(w string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(w) + `\b`)
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func confidence(verbs, edits int) float64 {
	if verbs == 0 {
		return 1.0
	}
	conf := 0.8 + float64(edits)/float64(verbs)*0.2
	return round2(math.Min(conf, 1.0))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
