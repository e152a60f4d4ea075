// internal/tasks/data-access/execute-sql/models.go
package executesql

type Input struct {
	SQL string `json:"sql"`
}

type Output struct {
	// IsRead distinguishes a row-returning statement from a write even when
	// the result set is empty.
	IsRead       bool                     `json:"isRead"`
	Rows         []map[string]interface{} `json:"rows,omitempty"`
	RowCount     int                      `json:"rowCount"`
	RowsAffected int64                    `json:"rowsAffected"`
	Statement    string                   `json:"statement"`
	ExecutionMs  int64                    `json:"executionMs"`
}
