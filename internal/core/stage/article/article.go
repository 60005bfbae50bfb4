// Package article implements the article usage stage: a checker-first pass,
// then token rules for a/an choice, zero-article and uncountable nouns,
// unique-entity "the" insertion, and a final sweep of phonetic and
// direction-phrase regexes
package article

import (
	"context"
	"regexp"
	"strings"

	"prosefix/internal/core/annotate"
	"prosefix/internal/core/checker"
	"prosefix/internal/core/lexicon"
	"prosefix/internal/core/stage"
	"prosefix/internal/core/textnorm"
)

const (
	editTypeChecker     = "LT_ARTICLE"
	editTypeAAn         = "a_an_fixed"
	editTypeZero        = "zero_article_removed"
	editTypeUncountable = "uncountable_article_removed"
	editTypeTheUnique   = "insert_the_unique"
	editTypeTheRain     = "insert_the_rain"
)

var (
	reAcronym   = regexp.MustCompile(`^[A-Z]{2,}$`)
	reVowel     = regexp.MustCompile(`^[aeiou]`)
	reSilentH   = regexp.MustCompile(`^h(our|onest|onour|onor|eir)`)
	reDirection = regexp.MustCompile(`(?i)\b(in|to|from|towards)\s+(east|west|north|south)\b`)
	reAnVowelH  = regexp.MustCompile(`\b([Aa])n? +([Hh][aeiou][A-Za-z]*)`)
)

// determiners that already cover a following unique-entity noun
var coveredBy = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "my": {}, "our": {}, "his": {},
	"her": {}, "their": {},
}

// Corrector is the article usage stage
type Corrector struct {
	ann annotate.Annotator
	chk checker.Checker
	lex *lexicon.Pack
}

// New returns an article usage stage
func New(ann annotate.Annotator, chk checker.Checker, lex *lexicon.Pack) *Corrector {
	return &Corrector{ann: ann, chk: chk, lex: lex}
}

// Name implements stage.Stage
func (c *Corrector) Name() string { return "article" }

// Correct implements stage.Stage
func (c *Corrector) Correct(ctx context.Context, text string) (stage.Result, error) {
	text = textnorm.Preprocess(text)
	if text == "" {
		return stage.Result{Text: text, Confidence: 1.0}, nil
	}

	var edits []stage.Edit

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

	for i, tok := range doc.Tokens {
		if tok.IsPunct() || tok.IsSpace() {
			continue
		}
		lword := strings.ToLower(tok.Text)

		switch {
		case lword == "a" || lword == "an":
			next, ok := nextContent(doc, i)
			if !ok {
				continue
			}
			nt := doc.Tokens[next]
			if nt.Pos != annotate.POSNoun && nt.Pos != annotate.POSAdj {
				continue
			}
			lemma := strings.ToLower(nt.Lemma)

			if c.lex.ZeroArticle.Has(lemma) {
				parts[i] = ""
				edits = append(edits, stage.Edit{
					Type: editTypeZero, Orig: tok.Text, Noun: lemma, Confidence: 0.97,
				})
				continue
			}
			if c.lex.Uncountables.Has(lemma) {
				parts[i] = ""
				edits = append(edits, stage.Edit{
					Type: editTypeUncountable, Orig: tok.Text, Noun: lemma, Confidence: 0.96,
				})
				continue
			}
			correct := c.chooseArticle(nt.Text)
			if correct != lword {
				fixed := textnorm.MatchCase(tok.Text, correct)
				parts[i] = fixed + tok.Ws
				edits = append(edits, stage.Edit{
					Type: editTypeAAn, Orig: tok.Text, Repl: fixed,
					Noun: strings.ToLower(nt.Text), Confidence: 0.98,
				})
			}

		case c.lex.TheNouns.Has(lword):
			if i == 0 || !covered(doc.Tokens[i-1].Text) {
				parts[i] = "the " + tok.Text + tok.Ws
				edits = append(edits, stage.Edit{
					Type: editTypeTheUnique, Repl: "the", Noun: lword, Confidence: 0.97,
				})
			}

		case lword == "rain" && i > 0:
			prev := strings.ToLower(doc.Tokens[i-1].Text)
			if prev == "if" || prev == "when" || prev == "unless" {
				parts[i] = "the " + tok.Text + tok.Ws
				edits = append(edits, stage.Edit{
					Type: editTypeTheRain, Repl: "the", Noun: lword, Confidence: 0.96,
				})
			}
		}
	}

	result := textnorm.Clean(strings.Join(parts, ""))
	result = reDirection.ReplaceAllString(result, "$1 the $2")
	// smooth a/an only before silent-h words so aspirated h ("a house") is
	// left alone and already-correct text round-trips unchanged
	result = reAnVowelH.ReplaceAllStringFunc(result, func(m string) string {
		sub := reAnVowelH.FindStringSubmatch(m)
		if !reSilentH.MatchString(strings.ToLower(sub[2])) {
			return m
		}
		return sub[1] + "n " + sub[2]
	})

	conf := 1.0
	if len(edits) > 0 {
		conf = 0.99
	}
	return stage.Result{Text: result, Edits: edits, Confidence: conf}, nil
}

func nextContent(doc annotate.Doc, i int) (int, bool) {
	for j := i + 1; j < doc.Len(); j++ {
		t := doc.Tokens[j]
		if t.IsPunct() || t.IsSpace() {
			continue
		}
		return j, true
	}
	return 0, false
}

func covered(prev string) bool {
	_, ok := coveredBy[strings.ToLower(prev)]
	return ok
}

// chooseArticle picks a or an for the following word by lexical exceptions,
// the acronym letter-name rule and a phonetic first-letter heuristic
func (c *Corrector) chooseArticle(word string) string {
	w := strings.ToLower(strings.TrimSpace(word))
	if w == "" {
		return "a"
	}
	if c.lex.AnBeforeH.Has(w) {
		return "an"
	}
	if c.lex.ABeforeU.Has(w) {
		return "a"
	}
	if reAcronym.MatchString(word) {
		if strings.ContainsRune("AEFHILMNORSX", rune(word[0])) {
			return "an"
		}
		return "a"
	}
	if reVowel.MatchString(w) {
		return "an"
	}
	if reSilentH.MatchString(w) {
		return "an"
	}
	return "a"
}
