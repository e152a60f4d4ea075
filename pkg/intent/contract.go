// Package intent defines the structured document the hosted model is asked to
// return for each user request, plus its schema validation and a parser that
// tolerates the model's formatting habits.
package intent

// Document is the model's interpretation of one request. Action selects which
// payload fields are meaningful; everything else is ignored by the mapper.
type Document struct {
	Action string                 `json:"action"` // "sql" | "table_op" | "audio" | "image" | "unknown"
	SQL    string                 `json:"sql,omitempty"`
	Table  string                 `json:"table,omitempty"`
	Verb   string                 `json:"verb,omitempty"` // "insert" | "select" | "update" | "delete"
	Filter []Condition            `json:"filter,omitempty"`
	Fields map[string]interface{} `json:"fields,omitempty"`
	Media  *MediaPayload          `json:"media,omitempty"`
	Reason string                 `json:"reason,omitempty"`
}

// Condition mirrors the filter predicate shape used by the table operations.
type Condition struct {
	Column string      `json:"column"`
	Op     string      `json:"op"`
	Value  interface{} `json:"value"`
}

// MediaPayload describes an audio or image task. A locator means one direct
// run; a filter (or neither, meaning all rows) means a row-scoped run. That
// distinction is the contract's answer to "summarize many rows" versus
// "transcribe this one recording".
type MediaPayload struct {
	Locator       string      `json:"locator,omitempty"`
	Table         string      `json:"table,omitempty"`
	LocatorColumn string      `json:"locator_column,omitempty"`
	TargetColumn  string      `json:"target_column,omitempty"`
	Filter        []Condition `json:"filter,omitempty"`
}

// ContractDescription is embedded in the interpretation prompt so the model
// knows the exact document shape to return.
const ContractDescription = `Respond with a JSON object of this shape:
{
  "action": one of "sql", "table_op", "audio", "image", "unknown",
  "sql": the SQL statement (action "sql" only),
  "table": target table name (action "table_op"),
  "verb": one of "insert", "select", "update", "delete" (action "table_op"),
  "filter": [{"column": ..., "op": one of "eq","neq","gt","gte","lt","lte","like", "value": ...}],
  "fields": {column: value} for insert/update,
  "media": {"locator": direct URL or storage path if the request names one,
            "table": ..., "locator_column": ..., "target_column": ...,
            "filter": [...]} (actions "audio" and "image"),
  "reason": short explanation (action "unknown" only)
}
Use action "audio" for transcription or audio summarization requests and
"image" for receipt or image reading requests, even when the request also
mentions SQL. Use "unknown" when the request does not clearly match any
action; never guess.`
