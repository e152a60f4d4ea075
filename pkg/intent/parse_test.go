// pkg/intent/parse_test.go
package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_BareJSON(t *testing.T) {
	doc, err := Parse(`{"action": "sql", "sql": "SELECT * FROM employees"}`)
	require.NoError(t, err)
	assert.Equal(t, "sql", doc.Action)
	assert.Equal(t, "SELECT * FROM employees", doc.SQL)
}

func TestParse_FencedJSON(t *testing.T) {
	raw := "```json\n{\"action\": \"table_op\", \"verb\": \"delete\", \"table\": \"employees\", \"filter\": [{\"column\": \"id\", \"op\": \"eq\", \"value\": 10}]}\n```"
	doc, err := Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "table_op", doc.Action)
	assert.Equal(t, "delete", doc.Verb)
	assert.Equal(t, "employees", doc.Table)
	require.Len(t, doc.Filter, 1)
	assert.Equal(t, "id", doc.Filter[0].Column)
	assert.Equal(t, "eq", doc.Filter[0].Op)
	assert.EqualValues(t, 10, doc.Filter[0].Value)
}

func TestParse_SurroundingProse(t *testing.T) {
	raw := `Sure! Here is the interpretation you asked for:
{"action": "audio", "media": {"table": "refund_requests", "locator_column": "audio_url", "target_column": "summary"}}
Let me know if you need anything else.`
	doc, err := Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "audio", doc.Action)
	require.NotNil(t, doc.Media)
	assert.Equal(t, "refund_requests", doc.Media.Table)
	assert.Empty(t, doc.Media.Locator)
}

func TestParse_UnknownWithReason(t *testing.T) {
	doc, err := Parse(`{"action": "unknown", "reason": "request is ambiguous"}`)
	require.NoError(t, err)
	assert.Equal(t, "unknown", doc.Action)
	assert.Equal(t, "request is ambiguous", doc.Reason)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"empty reply", ""},
		{"plain prose", "I could not understand the request."},
		{"missing action", `{"sql": "SELECT 1"}`},
		{"invalid action", `{"action": "dance"}`},
		{"invalid filter op", `{"action": "table_op", "verb": "select", "table": "employees", "filter": [{"column": "id", "op": "between"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.raw)
			assert.Error(t, err)
		})
	}
}

func TestValidate_ExtraPropertiesAllowed(t *testing.T) {
	err := Validate([]byte(`{"action": "sql", "sql": "SELECT 1", "confidence": 0.9}`))
	assert.NoError(t, err)
}
