// Package annotate defines the token-level linguistic annotation model and the
// Annotator port. Annotation itself is performed by an external collaborator
// (see adapters/spacyd); the correction stages only consume the Doc produced
// for a given text snapshot. A Doc is immutable for the lifetime of one stage
// pass: stages that mutate text re-invoke the Annotator on the modified string
package annotate

import (
	"context"
	"sort"
	"strings"
)

// Coarse part-of-speech values used by the stages
const (
	POSVerb  = "VERB"
	POSAux   = "AUX"
	POSNoun  = "NOUN"
	POSProp  = "PROPN"
	POSPron  = "PRON"
	POSAdj   = "ADJ"
	POSAdv   = "ADV"
	POSDet   = "DET"
	POSAdp   = "ADP"
	POSPunct = "PUNCT"
	POSSpace = "SPACE"
)

// Token is a single lexical unit with its annotations.
// Ws carries the trailing whitespace so the exact source text can be
// reconstructed by concatenating WithWs over the whole Doc
type Token struct {
	Text  string // surface form
	Ws    string // trailing whitespace
	Pos   string // coarse part of speech (VERB, NOUN, ...)
	Tag   string // fine-grained tag (VBZ, NNS, ...)
	Lemma string // lowercased lemma
	Dep   string // dependency label (ROOT, nsubj, pobj, ...)
	Head  int    // index of the syntactic head within the Doc
	Sent  int    // sentence index
	Index int    // own index within the Doc
}

// WithWs returns the surface form plus trailing whitespace
func (t Token) WithWs() string { return t.Text + t.Ws }

// IsPunct reports whether the token is punctuation
func (t Token) IsPunct() bool { return t.Pos == POSPunct }

// IsSpace reports whether the token is whitespace-only
func (t Token) IsSpace() bool {
	return t.Pos == POSSpace || strings.TrimSpace(t.Text) == ""
}

// PluralTag reports whether the fine-grained tag marks a plural noun
func (t Token) PluralTag() bool { return t.Tag == "NNS" || t.Tag == "NNPS" }

// Doc is the annotated token sequence for one text snapshot
type Doc struct {
	Tokens []Token
}

// Len returns the token count
func (d Doc) Len() int { return len(d.Tokens) }

// Text reconstructs the exact source text
func (d Doc) Text() string {
	var b strings.Builder
	for _, t := range d.Tokens {
		b.WriteString(t.WithWs())
	}
	return b.String()
}

// Surfaces returns each token's WithWs string; stages edit this slice in
// place and re-join it to build the mutated text
func (d Doc) Surfaces() []string {
	out := make([]string, len(d.Tokens))
	for i, t := range d.Tokens {
		out[i] = t.WithWs()
	}
	return out
}

// SentenceCount returns the number of sentences in the Doc
func (d Doc) SentenceCount() int {
	n := 0
	for _, t := range d.Tokens {
		if t.Sent+1 > n {
			n = t.Sent + 1
		}
	}
	return n
}

// Sentences returns the trimmed text of each sentence in order
func (d Doc) Sentences() []string {
	n := d.SentenceCount()
	parts := make([]strings.Builder, n)
	for _, t := range d.Tokens {
		parts[t.Sent].WriteString(t.WithWs())
	}
	out := make([]string, 0, n)
	for i := range parts {
		if s := strings.TrimSpace(parts[i].String()); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Children returns the indices of tokens whose head is i, in order
func (d Doc) Children(i int) []int {
	var out []int
	for j, t := range d.Tokens {
		if j != i && t.Head == i {
			out = append(out, j)
		}
	}
	return out
}

// Subtree returns i plus all transitive dependents of i, sorted
func (d Doc) Subtree(i int) []int {
	in := map[int]bool{i: i >= 0}
	changed := true
	for changed {
		changed = false
		for j, t := range d.Tokens {
			if !in[j] && in[t.Head] && j != t.Head {
				in[j] = true
				changed = true
			}
		}
	}
	out := make([]int, 0, len(in))
	for j, ok := range in {
		if ok {
			out = append(out, j)
		}
	}
	sort.Ints(out)
	return out
}

// SubtreeText returns the lowercased space-joined surface text of i's subtree
func (d Doc) SubtreeText(i int) string {
	idx := d.Subtree(i)
	words := make([]string, 0, len(idx))
	for _, j := range idx {
		words = append(words, strings.ToLower(d.Tokens[j].Text))
	}
	return strings.Join(words, " ")
}

// CharOffset returns the byte offset of token i within the reconstructed text
func (d Doc) CharOffset(i int) int {
	off := 0
	for j := 0; j < i && j < len(d.Tokens); j++ {
		off += len(d.Tokens[j].WithWs())
	}
	return off
}

// Annotator produces a Doc for a text snapshot.
// Implementations must be safe for concurrent read-only use; the stages share
// one handle constructed at process start
type Annotator interface {
	Annotate(ctx context.Context, text string) (Doc, error)
}
