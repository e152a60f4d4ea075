// internal/models/outcome.go
package models

// RowOutcomeStatus is the per-row result of a row-scoped media turn.
type RowOutcomeStatus string

const (
	RowUpdated RowOutcomeStatus = "updated"
	RowSkipped RowOutcomeStatus = "skipped"
	RowFailed  RowOutcomeStatus = "failed"
)

// RowOutcome records what happened to one row during a batch turn. Batches
// never roll back: earlier rows keep their writes when a later row fails.
type RowOutcome struct {
	RowID  interface{}      `json:"rowId"`
	Status RowOutcomeStatus `json:"status"`
	Value  string           `json:"value,omitempty"`
	Error  string           `json:"error,omitempty"`
}
