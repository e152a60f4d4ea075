// internal/tasks/data-access/describe-schema/models.go
package describeschema

// Table is one public table and its column names in ordinal order.
type Table struct {
	Name    string
	Columns []string
}

// Output carries the live schema and its rendering for model prompts.
type Output struct {
	Tables      []Table
	PromptBlock string
}
