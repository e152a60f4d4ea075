// internal/tasks/data-access/table-ops/models.go
package tableops

import "db-agent/internal/models"

type Input struct {
	Verb   models.TableVerb       `json:"verb"`
	Table  string                 `json:"table"`
	Filter models.Filter          `json:"filter,omitempty"`
	Fields map[string]interface{} `json:"fields,omitempty"`
}

type Output struct {
	Rows          []map[string]interface{} `json:"rows,omitempty"`
	RowCount      int                      `json:"rowCount"`
	AffectedCount int64                    `json:"affectedCount"`
	InsertedRow   map[string]interface{}   `json:"insertedRow,omitempty"`
}
