// pkg/intent/schema.go
package intent

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// SchemaJSON validates the document before the mapping step runs. It is
// deliberately loose about extra properties: the model sometimes volunteers
// fields and those are harmless.
const SchemaJSON = `{
  "type": "object",
  "properties": {
    "action": {
      "type": "string",
      "enum": ["sql", "table_op", "audio", "image", "unknown"]
    },
    "sql": {"type": "string"},
    "table": {"type": "string"},
    "verb": {
      "type": "string",
      "enum": ["insert", "select", "update", "delete"]
    },
    "filter": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "column": {"type": "string"},
          "op": {
            "type": "string",
            "enum": ["eq", "neq", "gt", "gte", "lt", "lte", "like"]
          },
          "value": {}
        },
        "required": ["column", "op"]
      }
    },
    "fields": {"type": "object"},
    "media": {
      "type": "object",
      "properties": {
        "locator": {"type": "string"},
        "table": {"type": "string"},
        "locator_column": {"type": "string"},
        "target_column": {"type": "string"},
        "filter": {"type": "array"}
      }
    },
    "reason": {"type": "string"}
  },
  "required": ["action"]
}`

var schema = gojsonschema.NewStringLoader(SchemaJSON)

// Validate checks raw document JSON against the contract schema.
func Validate(raw []byte) error {
	result, err := gojsonschema.Validate(schema, gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return fmt.Errorf("schema validation: %w", err)
	}
	if !result.Valid() {
		var problems []string
		for _, e := range result.Errors() {
			problems = append(problems, e.String())
		}
		return fmt.Errorf("document does not match contract: %s", strings.Join(problems, "; "))
	}
	return nil
}
