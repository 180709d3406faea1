package harness

import (
	"github.com/roach88/snaphist/internal/history"
)

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if verification, expectations and assertions all hold.
	Pass bool `json:"pass"`

	// HistoryHash is the content hash of the reconstructed history.
	HistoryHash string `json:"history_hash"`

	// Errors contains failure messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// History is the reconstructed history, for golden comparison.
	History *history.History `json:"-"`
}

// NewResult creates a new passing result.
// Used as the starting point for test execution.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Errors: []string{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
