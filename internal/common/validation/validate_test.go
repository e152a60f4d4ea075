// internal/common/validation/validate_test.go
package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateIdentifier(t *testing.T) {
	valid := []string{"employees", "refund_requests", "_private", "Column9"}
	for _, name := range valid {
		assert.NoError(t, ValidateIdentifier(name), name)
	}

	invalid := []string{"", "9lives", "two words", `emp"loyees`, "a-b", "t;DROP TABLE x"}
	for _, name := range invalid {
		assert.Error(t, ValidateIdentifier(name), name)
	}
}

func TestQuoteIdentifier(t *testing.T) {
	assert.Equal(t, `"employees"`, QuoteIdentifier("employees"))
}

func TestValidateFilterOp(t *testing.T) {
	for op, sql := range FilterOps {
		assert.NoError(t, ValidateFilterOp(op))
		assert.NotEmpty(t, sql)
	}
	assert.Error(t, ValidateFilterOp("in"))
	assert.Error(t, ValidateFilterOp(""))
	assert.Error(t, ValidateFilterOp("EQ"))
}

func TestValidateLocator(t *testing.T) {
	assert.NoError(t, ValidateLocator("https://example.com/a.mp3"))
	assert.NoError(t, ValidateLocator("http://example.com/a.mp3"))
	assert.NoError(t, ValidateLocator("receipts/refund_req2.png"))

	assert.Error(t, ValidateLocator(""))
	assert.Error(t, ValidateLocator("../../etc/passwd"))
}

func TestIsURL(t *testing.T) {
	assert.True(t, IsURL("https://example.com/a.mp3"))
	assert.False(t, IsURL("receipts/refund_req2.png"))
}
