// internal/tasks/media/extract-audio/config.go
package extractaudio

import "time"

// AcquirePolicy values accepted in configuration.
const (
	PolicyAuto   = "auto"
	PolicyManual = "manual"
)

// Config controls conversion-tool discovery, acquisition, and the
// conversion timeout.
type Config struct {
	// ToolPath is an explicit path to the converter binary; when set it is
	// checked before PATH lookup.
	ToolPath string
	// ToolDir is where an auto-acquired tool is unpacked.
	ToolDir string
	// AcquirePolicy is "auto" or "manual".
	AcquirePolicy string
	// DownloadURL is the archive fetched under the auto policy.
	DownloadURL string
	Timeout     time.Duration
}

func DefaultConfig() *Config {
	return &Config{
		AcquirePolicy: PolicyAuto,
		Timeout:       120 * time.Second,
	}
}
