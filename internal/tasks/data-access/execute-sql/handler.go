// internal/tasks/data-access/execute-sql/handler.go
package executesql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	apperrors "db-agent/internal/common/errors"
	"db-agent/internal/common/metrics"
)

const (
	TaskType = "execute-sql"
)

// Logger interface definition
type Logger interface {
	Info(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
	With(fields map[string]interface{}) Logger
}

type Handler struct {
	config *Config
	db     *sql.DB
	logger Logger
}

func NewHandler(config *Config, db *sql.DB, log Logger) *Handler {
	return &Handler{
		config: config,
		db:     db,
		logger: log.With(map[string]interface{}{
			"taskType": TaskType,
		}),
	}
}

// readKeywords lead statements that return a row set; anything else goes
// through Exec and reports RowsAffected.
var readKeywords = map[string]bool{
	"SELECT":  true,
	"WITH":    true,
	"SHOW":    true,
	"EXPLAIN": true,
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	statement := strings.TrimSpace(input.SQL)
	// The hosted query endpoint rejects trailing semicolons, so they never
	// reach the wire.
	statement = strings.TrimRight(statement, ";")
	statement = strings.TrimSpace(statement)

	if statement == "" {
		return nil, apperrors.NewDatabaseError(TaskType, fmt.Errorf("empty SQL statement"))
	}

	ctx, cancel := context.WithTimeout(ctx, h.config.Timeout)
	defer cancel()

	h.logger.Info("executing statement", map[string]interface{}{
		"statement": statement,
	})

	start := time.Now()

	leading := strings.ToUpper(firstWord(statement))
	if readKeywords[leading] {
		metrics.AgentDatabaseCalls.WithLabelValues("query").Inc()

		rows, err := h.db.QueryContext(ctx, statement)
		if err != nil {
			return nil, apperrors.NewDatabaseError(TaskType, err)
		}
		defer rows.Close()

		rowMaps, err := scanRows(rows)
		if err != nil {
			return nil, apperrors.NewDatabaseError(TaskType, err)
		}

		return &Output{
			IsRead:      true,
			Rows:        rowMaps,
			RowCount:    len(rowMaps),
			Statement:   statement,
			ExecutionMs: time.Since(start).Milliseconds(),
		}, nil
	}

	metrics.AgentDatabaseCalls.WithLabelValues("exec").Inc()

	result, err := h.db.ExecContext(ctx, statement)
	if err != nil {
		return nil, apperrors.NewDatabaseError(TaskType, err)
	}

	affected, _ := result.RowsAffected()

	return &Output{
		RowsAffected: affected,
		Statement:    statement,
		ExecutionMs:  time.Since(start).Milliseconds(),
	}, nil
}

func firstWord(statement string) string {
	for i, r := range statement {
		if r == ' ' || r == '\t' || r == '\n' {
			return statement[:i]
		}
	}
	return statement
}

// scanRows builds generic row maps since the statement shape is unknown until
// runtime.
func scanRows(rows *sql.Rows) ([]map[string]interface{}, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	// Non-nil even for zero rows: an empty read must stay distinguishable
	// from a write result.
	out := make([]map[string]interface{}, 0)
	for rows.Next() {
		values := make([]interface{}, len(columns))
		pointers := make([]interface{}, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}

		if err := rows.Scan(pointers...); err != nil {
			return nil, err
		}

		rowMap := make(map[string]interface{}, len(columns))
		for i, col := range columns {
			val := values[i]
			if b, ok := val.([]byte); ok {
				val = string(b)
			}
			rowMap[col] = val
		}
		out = append(out, rowMap)
	}

	return out, rows.Err()
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
