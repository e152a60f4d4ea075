// internal/tasks/media/read-receipt/models.go
package readreceipt

// Input names the receipt image. Locator accepts an absolute URL or a bare
// storage path.
type Input struct {
	Locator string
}

// Output carries the parsed total and the model's raw reply for display.
type Output struct {
	Amount  float64
	RawText string
}
