// internal/models/action.go
package models

// ActionKind tags the variant of an Action.
type ActionKind string

const (
	ActionQuery        ActionKind = "query"
	ActionTableOp      ActionKind = "table_op"
	ActionAudioTask    ActionKind = "audio_task"
	ActionImageTask    ActionKind = "image_task"
	ActionUnrecognized ActionKind = "unrecognized"
)

// TableVerb identifies a table-scoped operation.
type TableVerb string

const (
	VerbInsert TableVerb = "insert"
	VerbSelect TableVerb = "select"
	VerbUpdate TableVerb = "update"
	VerbDelete TableVerb = "delete"
)

// Condition is one filter predicate; Op is a key of validation.FilterOps.
type Condition struct {
	Column string      `json:"column"`
	Op     string      `json:"op"`
	Value  interface{} `json:"value"`
}

// Filter is a conjunction of conditions. Empty means every row.
type Filter []Condition

// Action is the tagged-variant result of interpreting one user request.
// Exactly one payload field matching Kind is set; everything downstream
// switches on Kind instead of sniffing text.
type Action struct {
	Kind    ActionKind
	Query   *QueryAction
	TableOp *TableOpAction
	Media   *MediaAction
	Reason  string // set for ActionUnrecognized
}

// QueryAction carries raw SQL produced by the model.
type QueryAction struct {
	SQL string
}

// TableOpAction carries a direct table-scoped operation.
type TableOpAction struct {
	Verb   TableVerb
	Table  string
	Filter Filter
	Fields map[string]interface{}
}

// MediaAction carries an audio or image task. When Locator is set the task is
// a single direct run; otherwise Table/Filter select the rows whose
// LocatorColumn cell feeds the pipeline and TargetColumn receives the result.
type MediaAction struct {
	Locator       string
	Table         string
	LocatorColumn string
	TargetColumn  string
	Filter        Filter
}

// RowScoped reports whether the media task iterates database rows.
func (m *MediaAction) RowScoped() bool {
	return m.Locator == ""
}
