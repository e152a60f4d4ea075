// internal/tasks/media/read-receipt/config.go
package readreceipt

import "time"

// Config carries the extraction instruction sent with the image and the
// round-trip timeout.
type Config struct {
	Instruction string
	Timeout     time.Duration
}

func DefaultConfig() *Config {
	return &Config{
		Instruction: "What is the total amount in this receipt?",
		Timeout:     60 * time.Second,
	}
}
