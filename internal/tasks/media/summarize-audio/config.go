// internal/tasks/media/summarize-audio/config.go
package summarizeaudio

import "time"

type Config struct {
	Timeout time.Duration
}

func DefaultConfig() *Config {
	return &Config{
		Timeout: 180 * time.Second,
	}
}
