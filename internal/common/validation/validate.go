// internal/common/validation/validate.go
package validation

import (
	"fmt"
	"regexp"
	"strings"
)

var identifierPattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// FilterOps maps the accepted filter operators to their SQL form.
var FilterOps = map[string]string{
	"eq":   "=",
	"neq":  "<>",
	"gt":   ">",
	"gte":  ">=",
	"lt":   "<",
	"lte":  "<=",
	"like": "LIKE",
}

// ValidateIdentifier checks a table or column name. The external schema is not
// validated locally; this only guards the quoted identifier against injection.
func ValidateIdentifier(name string) error {
	if name == "" {
		return fmt.Errorf("identifier is empty")
	}
	if !identifierPattern.MatchString(name) {
		return fmt.Errorf("invalid identifier: %q", name)
	}
	return nil
}

// QuoteIdentifier double-quotes a validated identifier for use in SQL text.
func QuoteIdentifier(name string) string {
	return `"` + name + `"`
}

// ValidateFilterOp checks an operator against the accepted set.
func ValidateFilterOp(op string) error {
	if _, ok := FilterOps[op]; !ok {
		return fmt.Errorf("unsupported filter operator: %q", op)
	}
	return nil
}

// ValidateLocator checks a media locator: either an absolute http(s) URL or a
// bare storage object path like "receipts/refund_req2.png".
func ValidateLocator(locator string) error {
	if locator == "" {
		return fmt.Errorf("locator is empty")
	}
	if strings.HasPrefix(locator, "http://") || strings.HasPrefix(locator, "https://") {
		return nil
	}
	if strings.Contains(locator, "..") {
		return fmt.Errorf("invalid locator: %q", locator)
	}
	return nil
}

// IsURL reports whether the locator is already an absolute URL.
func IsURL(locator string) bool {
	return strings.HasPrefix(locator, "http://") || strings.HasPrefix(locator, "https://")
}
