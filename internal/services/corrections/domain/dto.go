// Package domain holds DTOs for corrections http and service contracts
package domain

import (
	"time"

	"prosefix/internal/core/stage"
)

// CorrectInput is the input for running the correction pipeline
type CorrectInput struct {
	Text    string `json:"text" validate:"required,min=1,max=20000" example:"The dogs barks loudly."`
	Persist bool   `json:"persist,omitempty" example:"true"`
}

// Run is a single pipeline execution with its full edit trail
type Run struct {
	ID            string       `json:"id" example:"run_4f7c2d1e-9b1a-4c83-a2d0-7f4e8a1b6c3d"`
	InputText     string       `json:"input_text"`
	CorrectedText string       `json:"corrected_text"`
	TotalFixed    int          `json:"total_fixed" example:"2"`
	ConfidenceAvg float64      `json:"confidence_avg" example:"0.98"`
	F1Score       float64      `json:"f1_score" example:"0.95"`
	RuntimeSec    float64      `json:"runtime_sec" example:"0.04"`
	Timestamp     time.Time    `json:"timestamp"`
	DominantTense string       `json:"dominant_tense,omitempty" example:"present"`
	Edits         []stage.Edit `json:"edits"`
}

// RunsInput is the input for listing recent runs
type RunsInput struct {
	Tense string `json:"tense,omitempty" validate:"omitempty,oneof=past present future" example:"present"`
	Limit int    `json:"limit,omitempty" validate:"omitempty,min=1,max=200" example:"50"`
}

// RunSummary is a run row without its edit trail
type RunSummary struct {
	ID            string  `json:"id"`
	InputText     string  `json:"input_text"`
	CorrectedText string  `json:"corrected_text"`
	TotalFixed    int     `json:"total_fixed"`
	ConfidenceAvg float64 `json:"confidence_avg"`
	DominantTense string  `json:"dominant_tense,omitempty"`
	CreatedAt     string  `json:"created_at"`
}
