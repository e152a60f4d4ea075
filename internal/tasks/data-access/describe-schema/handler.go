// internal/tasks/data-access/describe-schema/handler.go
package describeschema

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	apperrors "db-agent/internal/common/errors"
	"db-agent/internal/common/metrics"
)

const (
	TaskType = "describe-schema"
)

const schemaQuery = `SELECT table_name, column_name
FROM information_schema.columns
WHERE table_schema = 'public'
ORDER BY table_name, ordinal_position`

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

// execute reads the live public schema. It is queried fresh per turn rather
// than cached, so mid-session DDL is visible on the next request.
func (h *Handler) execute(ctx context.Context) (*Output, error) {
	ctx, cancel := context.WithTimeout(ctx, h.config.Timeout)
	defer cancel()

	metrics.AgentDatabaseCalls.WithLabelValues("describe_schema").Inc()

	rows, err := h.db.QueryContext(ctx, schemaQuery)
	if err != nil {
		return nil, apperrors.NewDatabaseError("describe_schema", err)
	}
	defer rows.Close()

	var tables []Table
	for rows.Next() {
		var tableName, columnName string
		if err := rows.Scan(&tableName, &columnName); err != nil {
			return nil, apperrors.NewDatabaseError("describe_schema", err)
		}
		if len(tables) == 0 || tables[len(tables)-1].Name != tableName {
			tables = append(tables, Table{Name: tableName})
		}
		last := &tables[len(tables)-1]
		last.Columns = append(last.Columns, columnName)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewDatabaseError("describe_schema", err)
	}

	h.logger.Info("schema described", map[string]interface{}{
		"tables": len(tables),
	})

	return &Output{
		Tables:      tables,
		PromptBlock: renderPromptBlock(tables),
	}, nil
}

// renderPromptBlock formats the schema the way the interpretation prompt
// expects it: a header line followed by one line per table.
func renderPromptBlock(tables []Table) string {
	var b strings.Builder
	b.WriteString("Here is the database schema:\n")
	for _, table := range tables {
		b.WriteString(fmt.Sprintf("\nTable `%s` with columns: %s", table.Name, strings.Join(table.Columns, ", ")))
	}
	return b.String()
}

func (h *Handler) Execute(ctx context.Context) (*Output, error) {
	return h.execute(ctx)
}
