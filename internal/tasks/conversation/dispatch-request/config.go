// internal/tasks/conversation/dispatch-request/config.go
package dispatchrequest

import "time"

// Config carries the per-turn timeout and the media defaults applied when the
// intent document leaves them out.
type Config struct {
	Timeout time.Duration

	MediaTable         string
	AudioLocatorColumn string
	AudioTargetColumn  string
	ImageLocatorColumn string
	ImageTargetColumn  string
}

func DefaultConfig() *Config {
	return &Config{
		Timeout:            45 * time.Second,
		MediaTable:         "refund_requests",
		AudioLocatorColumn: "audio_url",
		AudioTargetColumn:  "summary",
		ImageLocatorColumn: "image_url",
		ImageTargetColumn:  "amount",
	}
}
