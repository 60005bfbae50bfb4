// Package annotatetest provides a deterministic lexicon-driven Annotator and
// small checker fakes for stage and pipeline tests. It covers the vocabulary
// the test corpus needs; it is not a general tagger and never ships in a
// binary
package annotatetest

import (
	"context"
	"strings"
	"unicode"

	"prosefix/internal/core/annotate"
)

// Annotator deterministically tokenizes, tags and attaches a flat dependency
// scheme: the first main verb of each sentence is ROOT, the leftmost pre-verb
// noun-ish token outside a prepositional phrase is its nsubj, and pre-verb
// phrase tokens hang off the subject so its subtree spans the whole phrase
type Annotator struct{}

// New returns a ready Annotator
func New() *Annotator { return &Annotator{} }

// Annotate implements annotate.Annotator
func (a *Annotator) Annotate(_ context.Context, text string) (annotate.Doc, error) {
	toks := tokenize(text)
	tagAll(toks)
	attachDeps(toks)
	return annotate.Doc{Tokens: toks}, nil
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '\'' || r == '’' || r == '-'
}

func tokenize(text string) []annotate.Token {
	var toks []annotate.Token
	rs := []rune(text)
	i := 0
	appendWs := func(ws string) {
		if len(toks) > 0 {
			toks[len(toks)-1].Ws += ws
		}
	}
	for i < len(rs) {
		switch {
		case unicode.IsSpace(rs[i]):
			j := i
			for j < len(rs) && unicode.IsSpace(rs[j]) {
				j++
			}
			appendWs(string(rs[i:j]))
			i = j
		case isWordRune(rs[i]):
			j := i
			for j < len(rs) && isWordRune(rs[j]) {
				j++
			}
			toks = append(toks, annotate.Token{Text: string(rs[i:j])})
			i = j
		default:
			toks = append(toks, annotate.Token{Text: string(rs[i])})
			i++
		}
	}
	sent := 0
	for k := range toks {
		toks[k].Index = k
		toks[k].Sent = sent
		switch toks[k].Text {
		case ".", "!", "?":
			sent++
		}
	}
	return toks
}

// surface -> lemma, fine tag; coarse POS is derived from the tag
var verbForms = map[string][2]string{}

func init() {
	// base, 3sg, past, participle, gerund; empty strings skip a slot
	add := func(lemma string, forms ...string) {
		tags := []string{"VBP", "VBZ", "VBD", "VBN", "VBG"}
		for i, f := range forms {
			if f != "" {
				verbForms[f] = [2]string{lemma, tags[i]}
			}
		}
	}
	add("go", "go", "goes", "went", "gone", "going")
	add("eat", "eat", "eats", "ate", "eaten", "eating")
	add("buy", "buy", "buys", "bought", "", "buying")
	add("come", "come", "comes", "came", "", "coming")
	add("see", "see", "sees", "saw", "seen", "seeing")
	add("sleep", "sleep", "sleeps", "slept", "", "sleeping")
	add("bark", "bark", "barks", "barked", "", "barking")
	add("win", "win", "wins", "won", "", "winning")
	add("run", "run", "runs", "ran", "", "running")
	add("play", "play", "plays", "played", "", "playing")
	add("study", "study", "studies", "studied", "", "studying")
	add("fail", "fail", "fails", "failed", "", "failing")
	add("work", "work", "works", "worked", "", "working")
	add("walk", "walk", "walks", "walked", "", "walking")
	add("love", "love", "loves", "loved", "", "loving")
	add("like", "like", "likes", "liked", "", "liking")
	add("make", "make", "makes", "made", "", "making")
	add("take", "take", "takes", "took", "taken", "taking")
	add("give", "give", "gives", "gave", "given", "giving")
	add("know", "know", "knows", "knew", "known", "knowing")
	add("think", "think", "thinks", "thought", "", "thinking")
	add("say", "say", "says", "said", "", "saying")
	add("tell", "tell", "tells", "told", "", "telling")
	add("write", "write", "writes", "wrote", "written", "writing")
	add("drink", "drink", "drinks", "drank", "", "drinking")
	add("drive", "drive", "drives", "drove", "driven", "driving")
	add("sing", "sing", "sings", "sang", "sung", "singing")
	add("swim", "swim", "swims", "swam", "swum", "swimming")
	add("teach", "teach", "teaches", "taught", "", "teaching")
	add("find", "find", "finds", "found", "", "finding")
	add("get", "get", "gets", "got", "gotten", "getting")
	add("leave", "leave", "leaves", "left", "", "leaving")
	add("keep", "keep", "keeps", "kept", "", "keeping")
	add("meet", "meet", "meets", "met", "", "meeting")
	add("speak", "speak", "speaks", "spoke", "spoken", "speaking")
	add("sell", "sell", "sells", "sold", "", "selling")
	add("choose", "choose", "chooses", "chose", "chosen", "choosing")
	add("fall", "fall", "falls", "fell", "fallen", "falling")
	add("fly", "fly", "flies", "flew", "flown", "flying")
	add("grow", "grow", "grows", "grew", "grown", "growing")
	add("wear", "wear", "wears", "wore", "worn", "wearing")
	add("ride", "ride", "rides", "rode", "ridden", "riding")
	add("break", "break", "breaks", "broke", "broken", "breaking")
	add("forget", "forget", "forgets", "forgot", "forgotten", "forgetting")
	add("freeze", "freeze", "freezes", "froze", "frozen", "freezing")
	add("begin", "begin", "begins", "began", "begun", "beginning")
	add("understand", "understand", "understands", "understood", "", "understanding")
	add("chase", "chase", "chases", "chased", "", "chasing")
	add("continue", "continue", "continues", "continued", "", "continuing")
	add("shine", "shine", "shines", "shone", "", "shining")
	add("cry", "cry", "cries", "cried", "", "crying")
	add("smile", "smile", "smiles", "smiled", "", "smiling")
	add("cook", "cook", "cooks", "cooked", "", "cooking")
	add("prepare", "prepare", "prepares", "prepared", "", "preparing")
	add("complete", "complete", "completes", "completed", "", "completing")
	add("show", "show", "shows", "showed", "shown", "showing")
	add("want", "want", "wants", "wanted", "", "wanting")
	add("need", "need", "needs", "needed", "", "needing")
	add("look", "look", "looks", "looked", "", "looking")
	add("help", "help", "helps", "helped", "", "helping")
	add("start", "start", "starts", "started", "", "starting")
	add("stop", "stop", "stops", "stopped", "", "stopping")
	add("visit", "visit", "visits", "visited", "", "visiting")
	add("finish", "finish", "finishes", "finished", "", "finishing")
	add("rain", "", "rains", "rained", "", "raining")
	add("read", "read", "reads", "", "", "reading")
}

var beForms = map[string]string{
	"am": "VBP", "is": "VBZ", "are": "VBP", "was": "VBD",
	"were": "VBD", "be": "VB", "been": "VBN", "being": "VBG",
}

var doContractions = map[string]string{
	"don't": "VBP", "don’t": "VBP",
	"doesn't": "VBZ", "doesn’t": "VBZ",
	"didn't": "VBD", "didn’t": "VBD",
}

var modals = map[string]struct{}{
	"will": {}, "shall": {}, "can": {}, "could": {}, "would": {},
	"should": {}, "may": {}, "might": {}, "must": {},
}

var pronounSet = map[string]string{
	"i": "PRP", "you": "PRP", "he": "PRP", "she": "PRP", "it": "PRP",
	"we": "PRP", "they": "PRP", "me": "PRP", "him": "PRP", "them": "PRP",
	"us": "PRP", "her": "PRP",
	"his": "PRP$", "its": "PRP$", "their": "PRP$", "my": "PRP$",
	"our": "PRP$", "your": "PRP$",
	"each": "DT", "everyone": "NN", "someone": "NN", "nobody": "NN",
	"anyone": "NN", "everybody": "NN", "somebody": "NN", "anybody": "NN",
	"one": "NN", "either": "DT", "neither": "DT", "both": "DT",
	"many": "DT", "several": "DT", "all": "DT", "some": "DT",
}

var determiners = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "this": {}, "that": {},
	"these": {}, "those": {}, "every": {}, "no": {},
}

var prepositions = map[string]struct{}{
	"of": {}, "in": {}, "on": {}, "at": {}, "to": {}, "with": {},
	"from": {}, "by": {}, "for": {}, "into": {}, "onto": {},
	"towards": {}, "toward": {}, "after": {}, "before": {},
	"under": {}, "over": {}, "between": {}, "through": {},
	"during": {}, "about": {}, "against": {},
}

var coordConj = map[string]struct{}{
	"and": {}, "but": {}, "or": {}, "nor": {}, "so": {}, "yet": {},
}

var subordConj = map[string]struct{}{
	"because": {}, "since": {}, "although": {}, "though": {},
	"while": {}, "when": {}, "if": {}, "unless": {},
}

var adjectives = map[string]struct{}{
	"rich": {}, "happy": {}, "sad": {}, "bad": {}, "good": {},
	"great": {}, "bright": {}, "loud": {}, "tired": {}, "honest": {},
	"big": {}, "small": {}, "old": {}, "new": {}, "hot": {}, "cold": {},
	"heavy": {}, "hard": {}, "slow": {}, "fast": {}, "wrong": {},
	"right": {}, "poor": {}, "excellent": {}, "successful": {},
	"consistent": {}, "beautiful": {}, "smart": {}, "strong": {},
	"weak": {}, "angry": {}, "hungry": {}, "busy": {}, "free": {},
	"full": {}, "empty": {}, "young": {}, "unique": {}, "useful": {},
	"european": {}, "first": {}, "next": {}, "last": {}, "late": {},
}

var adverbs = map[string]struct{}{
	"very": {}, "too": {}, "quite": {}, "really": {}, "always": {},
	"never": {}, "usually": {}, "often": {}, "sometimes": {},
	"rarely": {}, "hardly": {}, "soon": {}, "later": {}, "earlier": {},
	"afterwards": {}, "finally": {}, "now": {}, "not": {}, "well": {},
	"ago": {},
}

var irregularPlurals = map[string]string{
	"children": "child", "men": "man", "women": "woman",
	"people": "people", "mice": "mouse", "feet": "foot", "teeth": "tooth",
}

// nouns that end in s but are singular
var sibilantSingulars = map[string]struct{}{
	"news": {}, "mathematics": {}, "physics": {}, "economics": {},
	"statistics": {}, "politics": {}, "ethics": {}, "athletics": {},
	"bus": {}, "class": {}, "glass": {}, "chess": {}, "boss": {},
	"lens": {}, "series": {}, "species": {}, "business": {},
}

func isPunctRune(s string) bool {
	if len(s) == 0 {
		return false
	}
	r := []rune(s)[0]
	return unicode.IsPunct(r) || unicode.IsSymbol(r)
}

func tagOne(t *annotate.Token, sentStart bool) {
	text := t.Text
	lw := strings.ToLower(text)
	set := func(pos, tag, lemma string) {
		t.Pos, t.Tag, t.Lemma = pos, tag, lemma
	}

	switch {
	case isPunctRune(text) && len([]rune(text)) == 1 && !isWordRune([]rune(text)[0]):
		set(annotate.POSPunct, ".", lw)
	case strings.IndexFunc(text, unicode.IsDigit) == 0:
		set("NUM", "CD", lw)
	default:
		if tag, ok := doContractions[lw]; ok {
			set(annotate.POSAux, tag, "do")
			return
		}
		switch lw {
		case "won't", "won’t", "can't", "can’t":
			set(annotate.POSAux, "MD", "will")
			return
		case "isn't", "isn’t", "wasn't", "wasn’t",
			"aren't", "aren’t", "weren't", "weren’t":
			set(annotate.POSAux, "VBD", "be")
			return
		}
		if tag, ok := beForms[lw]; ok {
			set(annotate.POSAux, tag, "be")
			return
		}
		if _, ok := modals[lw]; ok {
			set(annotate.POSAux, "MD", lw)
			return
		}
		if lf, ok := verbForms[lw]; ok {
			// auxiliary uses of have/do keep VERB here; the stages key
			// off lemma and tag, not the aux distinction
			set(annotate.POSVerb, lf[1], lf[0])
			return
		}
		switch lw {
		case "has":
			set(annotate.POSVerb, "VBZ", "have")
			return
		case "have":
			set(annotate.POSVerb, "VBP", "have")
			return
		case "had":
			set(annotate.POSVerb, "VBD", "have")
			return
		case "does":
			set(annotate.POSVerb, "VBZ", "do")
			return
		case "do":
			set(annotate.POSVerb, "VBP", "do")
			return
		case "did":
			set(annotate.POSVerb, "VBD", "do")
			return
		}
		if tag, ok := pronounSet[lw]; ok {
			set(annotate.POSPron, tag, lw)
			return
		}
		if _, ok := determiners[lw]; ok {
			set(annotate.POSDet, "DT", lw)
			return
		}
		if _, ok := prepositions[lw]; ok {
			set(annotate.POSAdp, "IN", lw)
			return
		}
		if _, ok := coordConj[lw]; ok {
			set("CCONJ", "CC", lw)
			return
		}
		if _, ok := subordConj[lw]; ok {
			set("SCONJ", "IN", lw)
			return
		}
		if _, ok := adjectives[lw]; ok {
			set(annotate.POSAdj, "JJ", lw)
			return
		}
		if _, ok := adverbs[lw]; ok {
			set(annotate.POSAdv, "RB", lw)
			return
		}
		if strings.HasSuffix(lw, "ly") && len(lw) > 3 {
			set(annotate.POSAdv, "RB", lw)
			return
		}
		if len(text) >= 2 && text == strings.ToUpper(text) &&
			strings.IndexFunc(text, unicode.IsLetter) == 0 {
			// acronyms read as common nouns so article logic sees them
			set(annotate.POSNoun, "NN", lw)
			return
		}
		if sg, ok := irregularPlurals[lw]; ok {
			set(annotate.POSNoun, "NNS", sg)
			return
		}
		if _, ok := sibilantSingulars[lw]; ok {
			set(annotate.POSNoun, "NN", lw)
			return
		}
		if !sentStart && unicode.IsUpper([]rune(text)[0]) {
			set(annotate.POSProp, "NNP", lw)
			return
		}
		if strings.HasSuffix(lw, "s") && len(lw) > 3 &&
			!strings.HasSuffix(lw, "ss") && !strings.HasSuffix(lw, "us") &&
			!strings.HasSuffix(lw, "is") {
			set(annotate.POSNoun, "NNS", singularOf(lw))
			return
		}
		set(annotate.POSNoun, "NN", lw)
	}
}

func singularOf(plural string) string {
	switch {
	case strings.HasSuffix(plural, "ies") && len(plural) > 4:
		return plural[:len(plural)-3] + "y"
	case strings.HasSuffix(plural, "shes"), strings.HasSuffix(plural, "ches"),
		strings.HasSuffix(plural, "xes"), strings.HasSuffix(plural, "zes"):
		return plural[:len(plural)-2]
	default:
		return strings.TrimSuffix(plural, "s")
	}
}

func tagAll(toks []annotate.Token) {
	sentStart := true
	for i := range toks {
		tagOne(&toks[i], sentStart)
		if toks[i].IsPunct() {
			switch toks[i].Text {
			case ".", "!", "?":
				sentStart = true
			}
		} else {
			sentStart = false
		}
	}
}

func nounish(t annotate.Token) bool {
	switch t.Pos {
	case annotate.POSNoun, annotate.POSProp, annotate.POSPron:
		return true
	}
	return false
}

// inPrepPhrase reports whether i sits right of a preposition with only
// determiners, adjectives or numbers in between, scanning left to start
func inPrepPhrase(toks []annotate.Token, i, start int) bool {
	for j := i - 1; j >= start; j-- {
		switch toks[j].Pos {
		case annotate.POSDet, annotate.POSAdj, "NUM", annotate.POSAdv:
			continue
		case annotate.POSAdp:
			return true
		default:
			return false
		}
	}
	return false
}

func nearestAdpLeft(toks []annotate.Token, i, start int) int {
	for j := i - 1; j >= start; j-- {
		if toks[j].Pos == annotate.POSAdp {
			return j
		}
	}
	return -1
}

func nextNounish(toks []annotate.Token, i, end int) int {
	for j := i + 1; j < end; j++ {
		if nounish(toks[j]) {
			return j
		}
	}
	return -1
}

func attachDeps(toks []annotate.Token) {
	n := len(toks)
	start := 0
	for start < n {
		end := start
		for end < n && toks[end].Sent == toks[start].Sent {
			end++
		}
		attachSentence(toks, start, end)
		start = end
	}
}

func attachSentence(toks []annotate.Token, start, end int) {
	root := -1
	for i := start; i < end; i++ {
		if toks[i].Pos == annotate.POSVerb {
			root = i
			break
		}
	}
	if root < 0 {
		for i := start; i < end; i++ {
			if toks[i].Pos == annotate.POSAux {
				root = i
				break
			}
		}
	}
	if root < 0 {
		root = start
	}
	toks[root].Dep = "ROOT"
	toks[root].Head = root

	subj := -1
	for i := start; i < root; i++ {
		if nounish(toks[i]) && toks[i].Tag != "PRP$" && !inPrepPhrase(toks, i, start) {
			subj = i
			break
		}
	}

	for i := start; i < end; i++ {
		if i == root {
			continue
		}
		t := &toks[i]
		switch {
		case i == subj:
			t.Dep, t.Head = "nsubj", root
		case t.IsPunct():
			t.Dep, t.Head = "punct", root
		case i < root && t.Pos == annotate.POSAux:
			t.Dep, t.Head = "aux", root
		case t.Pos == annotate.POSAdp:
			t.Dep = "prep"
			if subj >= 0 && i > subj && i < root {
				t.Head = subj
			} else {
				t.Head = root
			}
		case nounish(*t) && inPrepPhrase(toks, i, start):
			t.Dep = "pobj"
			if adp := nearestAdpLeft(toks, i, start); adp >= 0 {
				t.Head = adp
			} else {
				t.Head = root
			}
		case t.Tag == "PRP$":
			t.Dep = "poss"
			if nn := nextNounish(toks, i, end); nn >= 0 {
				t.Head = nn
			} else {
				t.Head = root
			}
		case t.Pos == annotate.POSDet || t.Pos == annotate.POSAdj:
			if t.Pos == annotate.POSDet {
				t.Dep = "det"
			} else {
				t.Dep = "amod"
			}
			if nn := nextNounish(toks, i, end); nn >= 0 {
				t.Head = nn
			} else {
				t.Head = root
			}
		case i > root && t.Pos == annotate.POSVerb:
			t.Dep, t.Head = "conj", root
		case i > root && t.Pos == annotate.POSPron:
			t.Dep, t.Head = "dobj", root
		case i > root && nounish(*t):
			t.Dep, t.Head = "dobj", root
		case t.Pos == annotate.POSAdv:
			t.Dep, t.Head = "advmod", root
		default:
			t.Dep, t.Head = "dep", root
		}
	}
}
