// internal/tasks/data-access/execute-sql/handler_test.go
package executesql

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "db-agent/internal/common/errors"
)

// ==========================
// Test Logger Implementation
// ==========================

type TestLogger struct {
	t *testing.T
}

func NewTestLogger(t *testing.T) *TestLogger { return &TestLogger{t: t} }

func (l *TestLogger) Info(msg string, fields map[string]interface{}) {
	l.t.Logf("INFO: %s %v", msg, fields)
}
func (l *TestLogger) Error(msg string, fields map[string]interface{}) {
	l.t.Logf("ERROR: %s %v", msg, fields)
}
func (l *TestLogger) With(fields map[string]interface{}) Logger { return l }

func newTestHandler(t *testing.T) (*Handler, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	handler := NewHandler(&Config{Timeout: 5 * time.Second}, db, NewTestLogger(t))
	return handler, mock
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_Select(t *testing.T) {
	handler, mock := newTestHandler(t)

	mock.ExpectQuery("SELECT id, name, salary FROM employees").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "salary"}).
			AddRow(int64(1), "Alice", 90000.0).
			AddRow(int64(2), "Bob", 75000.0))

	output, err := handler.Execute(context.Background(), &Input{
		SQL: "SELECT id, name, salary FROM employees",
	})
	require.NoError(t, err)
	assert.True(t, output.IsRead)
	assert.Equal(t, 2, output.RowCount)
	assert.Equal(t, "Alice", output.Rows[0]["name"])
	assert.Equal(t, int64(2), output.Rows[1]["id"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_SelectWithNoRowsIsStillARead(t *testing.T) {
	handler, mock := newTestHandler(t)

	mock.ExpectQuery(`^SELECT \* FROM employees WHERE 1=0$`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}))

	output, err := handler.Execute(context.Background(), &Input{
		SQL: "SELECT * FROM employees WHERE 1=0",
	})
	require.NoError(t, err)
	assert.True(t, output.IsRead)
	assert.NotNil(t, output.Rows)
	assert.Equal(t, 0, output.RowCount)
	assert.Equal(t, int64(0), output.RowsAffected)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_TrailingSemicolonStripped(t *testing.T) {
	handler, mock := newTestHandler(t)

	// The expectation has no semicolon; the handler must strip it.
	mock.ExpectQuery(`^SELECT \* FROM employees$`).
		WillReturnRows(rowsWithNames("Alice"))

	output, err := handler.Execute(context.Background(), &Input{
		SQL: "SELECT * FROM employees;",
	})
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM employees", output.Statement)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_Write(t *testing.T) {
	handler, mock := newTestHandler(t)

	mock.ExpectExec("UPDATE employees SET salary = 100000 WHERE id = 7").
		WillReturnResult(sqlmock.NewResult(0, 1))

	output, err := handler.Execute(context.Background(), &Input{
		SQL: "UPDATE employees SET salary = 100000 WHERE id = 7",
	})
	require.NoError(t, err)
	assert.False(t, output.IsRead)
	assert.Equal(t, int64(1), output.RowsAffected)
	assert.Empty(t, output.Rows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_CTEIsRead(t *testing.T) {
	handler, mock := newTestHandler(t)

	mock.ExpectQuery(`^WITH top AS`).
		WillReturnRows(rowsWithNames("Alice"))

	output, err := handler.Execute(context.Background(), &Input{
		SQL: "WITH top AS (SELECT * FROM employees) SELECT * FROM top",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, output.RowCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ==========================
// Error Path Tests
// ==========================

func TestHandler_Execute_EmptyStatement(t *testing.T) {
	handler, _ := newTestHandler(t)

	_, err := handler.Execute(context.Background(), &Input{SQL: "  ;  "})
	require.Error(t, err)

	stdErr, ok := err.(*apperrors.StandardError)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeDatabase, stdErr.Code)
}

func TestHandler_Execute_DriverErrorSurfacedVerbatim(t *testing.T) {
	handler, mock := newTestHandler(t)

	mock.ExpectQuery("SELECT bogus FROM employees").
		WillReturnError(errDriver{`column "bogus" does not exist`})

	_, err := handler.Execute(context.Background(), &Input{
		SQL: "SELECT bogus FROM employees",
	})
	require.Error(t, err)

	stdErr, ok := err.(*apperrors.StandardError)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeDatabase, stdErr.Code)
	assert.Contains(t, stdErr.Details, `column "bogus" does not exist`)
}

type errDriver struct{ msg string }

func (e errDriver) Error() string { return e.msg }

func rowsWithNames(names ...string) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"name"})
	for _, n := range names {
		rows.AddRow(n)
	}
	return rows
}
