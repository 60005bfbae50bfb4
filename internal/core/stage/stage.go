// Package stage defines the contract shared by all correction stages and the
// edit records they emit. Each stage takes a full text snapshot and returns a
// corrected snapshot; stages never share parse state with each other
package stage

import "context"

// Edit is one recorded correction. Stage and StageName are stamped by the
// pipeline; a stage may pre-fill them but does not have to
type Edit struct {
	Stage      int     `json:"stage,omitempty"`
	StageName  string  `json:"stage_name,omitempty"`
	Type       string  `json:"type"`
	Span       [2]int  `json:"span,omitempty"`
	Orig       string  `json:"orig,omitempty"`
	Repl       string  `json:"repl,omitempty"`
	Subject    string  `json:"subject,omitempty"`
	Antecedent string  `json:"antecedent,omitempty"`
	Noun       string  `json:"noun,omitempty"`
	Reason     string  `json:"reason,omitempty"`
	Confidence float64 `json:"confidence,omitempty"`
}

// Result is the outcome of one stage pass over one snapshot
type Result struct {
	Text       string  `json:"corrected_text"`
	Edits      []Edit  `json:"issues_found"`
	Confidence float64 `json:"confidence"`
	Tense      string  `json:"dominant_tense,omitempty"`
}

// Stage is a single correction pass. Correct must treat text as immutable
// input and return the corrected snapshot; an error means the stage produced
// nothing usable and the caller should keep its input snapshot
type Stage interface {
	Name() string
	Correct(ctx context.Context, text string) (Result, error)
}
