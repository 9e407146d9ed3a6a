package constants

// RunStatus is the canonical status for rows in extraction_run.
type RunStatus string

// Stable values (store these exact strings in DB).
const (
	RunStatusRunning RunStatus = "RUNNING" // in progress
	RunStatusOK      RunStatus = "OK"      // every page recognized
	RunStatusPartial RunStatus = "PARTIAL" // at least one page failed OCR
	RunStatusFailed  RunStatus = "FAILED"  // terminal failure, no record
)

// TokenClass is how a token is drawn by debug consumers.
type TokenClass string

const (
	TokenClassFieldMatch TokenClass = "field-match"
	TokenClassNumeric    TokenClass = "numeric"
	TokenClassNeither    TokenClass = "neither"
)
