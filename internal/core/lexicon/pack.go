// Package lexicon loads and compiles the embedded lexicon.json word lists
// used by the correction stages: subject number classes, irregular verb
// tables, pronoun form tables, conjunction cue sets and article noun classes
package lexicon

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
)

//go:embed lexicon.json
var embedded []byte

// Set is a lowercased membership set
type Set map[string]struct{}

// Has reports membership, case-insensitively
func (s Set) Has(w string) bool {
	_, ok := s[strings.ToLower(strings.TrimSpace(w))]
	return ok
}

// ContainsAny reports whether any member of s occurs as a substring of text.
// text is expected lowercased; used for quantifier phrases and cue words
func (s Set) ContainsAny(text string) bool {
	for w := range s {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

func newSet(words []string) Set {
	out := make(Set, len(words))
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			out[w] = struct{}{}
		}
	}
	return out
}

// VerbPair is the third-person-singular and plural present form of a verb
type VerbPair struct {
	Singular string `json:"singular"`
	Plural   string `json:"plural"`
}

// PronounForms holds the case forms for one pronoun base
type PronounForms struct {
	Nom  string `json:"nom"`
	Obj  string `json:"obj"`
	Poss string `json:"poss"`
}

// Form returns the requested case form ("nom", "obj" or "poss")
func (p PronounForms) Form(kind string) string {
	switch kind {
	case "obj":
		return p.Obj
	case "poss":
		return p.Poss
	default:
		return p.Nom
	}
}

type rawSubjectVerb struct {
	SingularSubjects   []string            `json:"singular_subjects"`
	PluralSubjects     []string            `json:"plural_subjects"`
	CollectiveSingular []string            `json:"collective_singular"`
	AcademicSingular   []string            `json:"academic_singular"`
	QuantifierSingular []string            `json:"quantifier_singular"`
	QuantifierPlural   []string            `json:"quantifier_plural"`
	IrregularPresent   map[string]VerbPair `json:"irregular_present"`
}

type rawTense struct {
	IrregularPast map[string]string `json:"irregular_past"`
	PastClues     []string          `json:"past_clues"`
	FutureClues   []string          `json:"future_clues"`
	PresentClues  []string          `json:"present_clues"`
}

type rawPronoun struct {
	Forms          map[string]PronounForms `json:"forms"`
	SingularMale   []string                `json:"singular_male"`
	SingularFemale []string                `json:"singular_female"`
	SingularNeuter []string                `json:"singular_neuter"`
	Plural         []string                `json:"plural"`
}

type rawConjunction struct {
	Negation []string `json:"negation"`
	Positive []string `json:"positive"`
	Negative []string `json:"negative"`
	Contrast []string `json:"contrast"`
	Result   []string `json:"result"`
	Addition []string `json:"addition"`
	Sequence []string `json:"sequence"`
}

type rawArticle struct {
	ZeroArticle  []string `json:"zero_article"`
	TheNouns     []string `json:"the_nouns"`
	ABeforeU     []string `json:"a_before_u"`
	AnBeforeH    []string `json:"an_before_h"`
	Uncountables []string `json:"uncountables"`
}

type rawPack struct {
	Version     int            `json:"version"`
	Meta        map[string]any `json:"meta"`
	SubjectVerb rawSubjectVerb `json:"subject_verb"`
	Tense       rawTense       `json:"tense"`
	Pronoun     rawPronoun     `json:"pronoun"`
	Conjunction rawConjunction `json:"conjunction"`
	Article     rawArticle     `json:"article"`
}

// Pack is the compiled lexicon shared by all stages
type Pack struct {
	Version int
	Meta    map[string]any

	// Subject number classes
	SingularSubjects   Set
	PluralSubjects     Set
	CollectiveSingular Set
	AcademicSingular   Set
	QuantifierSingular Set
	QuantifierPlural   Set
	IrregularPresent   map[string]VerbPair

	// Tense tables
	IrregularPast   map[string]string // base -> past
	IrregularToBase map[string]string // past -> base, derived
	PastClues       Set
	FutureClues     Set
	PresentClues    Set

	// Pronoun tables
	PronounForms   map[string]PronounForms
	SingularMale   Set
	SingularFemale Set
	SingularNeuter Set
	PluralNouns    Set

	// Conjunction cue sets
	Negation Set
	Positive Set
	Negative Set
	Contrast Set
	Result   Set
	Addition Set
	Sequence Set

	// Article noun classes
	ZeroArticle  Set
	TheNouns     Set
	ABeforeU     Set
	AnBeforeH    Set
	Uncountables Set
}

// Load returns the compiled pack from the embedded lexicon.json
func Load() (*Pack, error) {
	var rp rawPack
	if err := json.Unmarshal(embedded, &rp); err != nil {
		return nil, fmt.Errorf("lexicon: parse lexicon.json: %w", err)
	}
	if rp.Version != 1 {
		return nil, fmt.Errorf("lexicon: unsupported lexicon.json version %d (want 1)", rp.Version)
	}

	p := &Pack{
		Version: rp.Version,
		Meta:    rp.Meta,

		SingularSubjects:   newSet(rp.SubjectVerb.SingularSubjects),
		PluralSubjects:     newSet(rp.SubjectVerb.PluralSubjects),
		CollectiveSingular: newSet(rp.SubjectVerb.CollectiveSingular),
		AcademicSingular:   newSet(rp.SubjectVerb.AcademicSingular),
		QuantifierSingular: newSet(rp.SubjectVerb.QuantifierSingular),
		QuantifierPlural:   newSet(rp.SubjectVerb.QuantifierPlural),
		IrregularPresent:   lowerVerbPairs(rp.SubjectVerb.IrregularPresent),

		IrregularPast:   lowerMap(rp.Tense.IrregularPast),
		IrregularToBase: make(map[string]string, len(rp.Tense.IrregularPast)),
		PastClues:       newSet(rp.Tense.PastClues),
		FutureClues:     newSet(rp.Tense.FutureClues),
		PresentClues:    newSet(rp.Tense.PresentClues),

		PronounForms:   lowerForms(rp.Pronoun.Forms),
		SingularMale:   newSet(rp.Pronoun.SingularMale),
		SingularFemale: newSet(rp.Pronoun.SingularFemale),
		SingularNeuter: newSet(rp.Pronoun.SingularNeuter),
		PluralNouns:    newSet(rp.Pronoun.Plural),

		Negation: newSet(rp.Conjunction.Negation),
		Positive: newSet(rp.Conjunction.Positive),
		Negative: newSet(rp.Conjunction.Negative),
		Contrast: newSet(rp.Conjunction.Contrast),
		Result:   newSet(rp.Conjunction.Result),
		Addition: newSet(rp.Conjunction.Addition),
		Sequence: newSet(rp.Conjunction.Sequence),

		ZeroArticle:  newSet(rp.Article.ZeroArticle),
		TheNouns:     newSet(rp.Article.TheNouns),
		ABeforeU:     newSet(rp.Article.ABeforeU),
		AnBeforeH:    newSet(rp.Article.AnBeforeH),
		Uncountables: newSet(rp.Article.Uncountables),
	}

	for base, past := range p.IrregularPast {
		p.IrregularToBase[past] = base
	}

	if err := p.validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// MustLoad is Load for wiring paths that cannot recover anyway
func MustLoad() *Pack {
	p, err := Load()
	if err != nil {
		panic(err)
	}
	return p
}

// validate rejects contradictory memberships between classes that the stages
// resolve against each other. Overlap across unrelated sections (say a noun
// that is both collective and zero-article) is expected and allowed
func (p *Pack) validate() error {
	pairs := []struct {
		name string
		a, b Set
	}{
		{"singular_subjects/plural_subjects", p.SingularSubjects, p.PluralSubjects},
		{"collective_singular/plural_subjects", p.CollectiveSingular, p.PluralSubjects},
		{"academic_singular/plural_subjects", p.AcademicSingular, p.PluralSubjects},
		{"quantifier_singular/quantifier_plural", p.QuantifierSingular, p.QuantifierPlural},
		{"singular_male/singular_female", p.SingularMale, p.SingularFemale},
		{"zero_article/the_nouns", p.ZeroArticle, p.TheNouns},
		{"a_before_u/an_before_h", p.ABeforeU, p.AnBeforeH},
	}
	for _, pr := range pairs {
		for w := range pr.a {
			if _, ok := pr.b[w]; ok {
				return fmt.Errorf("lexicon: %q listed in contradictory classes %s", w, pr.name)
			}
		}
	}
	for base, vp := range p.IrregularPresent {
		if vp.Singular == "" || vp.Plural == "" {
			return fmt.Errorf("lexicon: irregular_present %q missing a form", base)
		}
	}
	for base, past := range p.IrregularPast {
		if past == "" {
			return fmt.Errorf("lexicon: irregular_past %q has empty past form", base)
		}
	}
	return nil
}

func lowerMap(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[strings.ToLower(k)] = strings.ToLower(v)
	}
	return out
}

func lowerVerbPairs(in map[string]VerbPair) map[string]VerbPair {
	out := make(map[string]VerbPair, len(in))
	for k, v := range in {
		out[strings.ToLower(k)] = VerbPair{
			Singular: strings.ToLower(v.Singular),
			Plural:   strings.ToLower(v.Plural),
		}
	}
	return out
}

func lowerForms(in map[string]PronounForms) map[string]PronounForms {
	out := make(map[string]PronounForms, len(in))
	for k, v := range in {
		out[strings.ToLower(k)] = PronounForms{
			Nom:  strings.ToLower(v.Nom),
			Obj:  strings.ToLower(v.Obj),
			Poss: strings.ToLower(v.Poss),
		}
	}
	return out
}
