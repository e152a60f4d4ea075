// internal/tasks/conversation/dispatch-request/models.go
package dispatchrequest

import "db-agent/internal/models"

// Input is one user turn.
type Input struct {
	Text string
}

// Output is the turn's reply material. Message is always set; Rows, Outcomes
// and WriteCount are populated per action kind.
type Output struct {
	Kind       models.ActionKind
	Message    string
	Rows       []map[string]interface{}
	RowCount   int
	Outcomes   []models.RowOutcome
	WriteCount int
}
