// internal/tasks/media/fetch-resource/config.go
package fetchresource

import "time"

// Config controls locator resolution and the download timeout.
type Config struct {
	StorageBaseURL string
	Timeout        time.Duration
}

func DefaultConfig() *Config {
	return &Config{
		Timeout: 60 * time.Second,
	}
}
