// internal/tasks/data-access/table-ops/handler.go
package tableops

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	apperrors "db-agent/internal/common/errors"
	"db-agent/internal/common/metrics"
	"db-agent/internal/common/validation"
	"db-agent/internal/models"
)

const (
	TaskType = "table-ops"
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

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	ctx, cancel := context.WithTimeout(ctx, h.config.Timeout)
	defer cancel()

	switch input.Verb {
	case models.VerbInsert:
		row, err := h.Insert(ctx, input.Table, input.Fields)
		if err != nil {
			return nil, err
		}
		return &Output{InsertedRow: row, RowCount: 1, AffectedCount: 1}, nil

	case models.VerbSelect:
		rows, err := h.Select(ctx, input.Table, input.Filter)
		if err != nil {
			return nil, err
		}
		return &Output{Rows: rows, RowCount: len(rows)}, nil

	case models.VerbUpdate:
		count, err := h.Update(ctx, input.Table, input.Filter, input.Fields)
		if err != nil {
			return nil, err
		}
		return &Output{AffectedCount: count}, nil

	case models.VerbDelete:
		count, err := h.Delete(ctx, input.Table, input.Filter)
		if err != nil {
			return nil, err
		}
		return &Output{AffectedCount: count}, nil

	default:
		return nil, apperrors.NewDatabaseError(TaskType, fmt.Errorf("unsupported verb: %q", input.Verb))
	}
}

// Insert writes one record and returns the stored row, server-side defaults
// included.
func (h *Handler) Insert(ctx context.Context, table string, fields map[string]interface{}) (map[string]interface{}, error) {
	if err := validation.ValidateIdentifier(table); err != nil {
		return nil, apperrors.NewDatabaseError("insert", err)
	}
	if len(fields) == 0 {
		return nil, apperrors.NewDatabaseError("insert", fmt.Errorf("no fields to insert"))
	}

	columns := sortedKeys(fields)
	quoted := make([]string, len(columns))
	placeholders := make([]string, len(columns))
	args := make([]interface{}, len(columns))
	for i, col := range columns {
		if err := validation.ValidateIdentifier(col); err != nil {
			return nil, apperrors.NewDatabaseError("insert", err)
		}
		quoted[i] = validation.QuoteIdentifier(col)
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = fields[col]
	}

	statement := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) RETURNING *",
		validation.QuoteIdentifier(table),
		strings.Join(quoted, ", "),
		strings.Join(placeholders, ", "),
	)

	h.logger.Info("inserting record", map[string]interface{}{"table": table})
	metrics.AgentDatabaseCalls.WithLabelValues("insert").Inc()

	rows, err := h.db.QueryContext(ctx, statement, args...)
	if err != nil {
		return nil, apperrors.NewDatabaseError("insert", err)
	}
	defer rows.Close()

	inserted, err := scanRowMaps(rows)
	if err != nil {
		return nil, apperrors.NewDatabaseError("insert", err)
	}
	if len(inserted) == 0 {
		return nil, apperrors.NewDatabaseError("insert", fmt.Errorf("no row returned"))
	}
	return inserted[0], nil
}

// Select reads rows matching the filter. Empty filter selects every row.
func (h *Handler) Select(ctx context.Context, table string, filter models.Filter) ([]map[string]interface{}, error) {
	if err := validation.ValidateIdentifier(table); err != nil {
		return nil, apperrors.NewDatabaseError("select", err)
	}

	where, args, err := buildWhere(filter, 1)
	if err != nil {
		return nil, apperrors.NewDatabaseError("select", err)
	}

	statement := "SELECT * FROM " + validation.QuoteIdentifier(table) + where

	metrics.AgentDatabaseCalls.WithLabelValues("select").Inc()

	rows, err := h.db.QueryContext(ctx, statement, args...)
	if err != nil {
		return nil, apperrors.NewDatabaseError("select", err)
	}
	defer rows.Close()

	out, err := scanRowMaps(rows)
	if err != nil {
		return nil, apperrors.NewDatabaseError("select", err)
	}
	return out, nil
}

// Update mutates the matching rows and returns the affected count.
func (h *Handler) Update(ctx context.Context, table string, filter models.Filter, fields map[string]interface{}) (int64, error) {
	if err := validation.ValidateIdentifier(table); err != nil {
		return 0, apperrors.NewDatabaseError("update", err)
	}
	if len(fields) == 0 {
		return 0, apperrors.NewDatabaseError("update", fmt.Errorf("no fields to update"))
	}

	columns := sortedKeys(fields)
	assignments := make([]string, len(columns))
	args := make([]interface{}, 0, len(columns)+len(filter))
	for i, col := range columns {
		if err := validation.ValidateIdentifier(col); err != nil {
			return 0, apperrors.NewDatabaseError("update", err)
		}
		assignments[i] = fmt.Sprintf("%s = $%d", validation.QuoteIdentifier(col), i+1)
		args = append(args, fields[col])
	}

	where, whereArgs, err := buildWhere(filter, len(columns)+1)
	if err != nil {
		return 0, apperrors.NewDatabaseError("update", err)
	}
	args = append(args, whereArgs...)

	statement := fmt.Sprintf(
		"UPDATE %s SET %s%s",
		validation.QuoteIdentifier(table),
		strings.Join(assignments, ", "),
		where,
	)

	h.logger.Info("updating records", map[string]interface{}{
		"table":   table,
		"columns": columns,
	})
	metrics.AgentDatabaseCalls.WithLabelValues("update").Inc()

	result, err := h.db.ExecContext(ctx, statement, args...)
	if err != nil {
		return 0, apperrors.NewDatabaseError("update", err)
	}
	return result.RowsAffected()
}

// Delete removes the matching rows and returns the deleted count.
func (h *Handler) Delete(ctx context.Context, table string, filter models.Filter) (int64, error) {
	if err := validation.ValidateIdentifier(table); err != nil {
		return 0, apperrors.NewDatabaseError("delete", err)
	}

	where, args, err := buildWhere(filter, 1)
	if err != nil {
		return 0, apperrors.NewDatabaseError("delete", err)
	}

	statement := "DELETE FROM " + validation.QuoteIdentifier(table) + where

	h.logger.Info("deleting records", map[string]interface{}{"table": table})
	metrics.AgentDatabaseCalls.WithLabelValues("delete").Inc()

	result, err := h.db.ExecContext(ctx, statement, args...)
	if err != nil {
		return 0, apperrors.NewDatabaseError("delete", err)
	}
	return result.RowsAffected()
}

// buildWhere renders the filter as a WHERE clause with $n placeholders
// starting at argOffset. Values never enter the SQL text.
func buildWhere(filter models.Filter, argOffset int) (string, []interface{}, error) {
	if len(filter) == 0 {
		return "", nil, nil
	}

	predicates := make([]string, len(filter))
	args := make([]interface{}, len(filter))
	for i, cond := range filter {
		if err := validation.ValidateIdentifier(cond.Column); err != nil {
			return "", nil, err
		}
		if err := validation.ValidateFilterOp(cond.Op); err != nil {
			return "", nil, err
		}
		predicates[i] = fmt.Sprintf(
			"%s %s $%d",
			validation.QuoteIdentifier(cond.Column),
			validation.FilterOps[cond.Op],
			argOffset+i,
		)
		args[i] = cond.Value
	}

	return " WHERE " + strings.Join(predicates, " AND "), args, nil
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func scanRowMaps(rows *sql.Rows) ([]map[string]interface{}, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var out []map[string]interface{}
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
