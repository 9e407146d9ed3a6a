package entity

import (
	"encoding/json"
	"time"
)

// Page is one image handed to the OCR engine.
type Page struct {
	ID    string `json:"id"`
	Path  string `json:"path"`
	Image []byte `json:"-"`
}

// PageResult is the outcome of recognizing a single page.
type PageResult struct {
	PageID string `json:"page_id"`
	Words  []Word `json:"words,omitempty"`
	Err    error  `json:"-"`
}

// PageError is the persisted form of a failed page.
type PageError struct {
	PageID  string `json:"page_id"`
	Message string `json:"error"`
}

// ExtractionRun is the history row written after each processing run.
type ExtractionRun struct {
	ID          string          `json:"id"`
	RootPath    string          `json:"root_path"`
	Status      string          `json:"status"`
	PagesTotal  int             `json:"pages_total"`
	PagesFailed int             `json:"pages_failed"`
	TokenCount  int             `json:"token_count"`
	Record      json.RawMessage `json:"record,omitempty"`
	Assignments []Assignment    `json:"assignments,omitempty"`
	PageErrors  []PageError     `json:"page_errors,omitempty"`
	StartedAt   time.Time       `json:"started_at"`
	FinishedAt  time.Time       `json:"finished_at"`
}
