// internal/tasks/media/extract-audio/models.go
package extractaudio

// CapabilityState is the tri-state availability of the conversion tool.
type CapabilityState string

const (
	// StatePresent means the tool is on disk and runnable.
	StatePresent CapabilityState = "present"
	// StateInstallable means the tool is absent but the auto policy may
	// acquire it.
	StateInstallable CapabilityState = "installable"
	// StateUnavailable means the tool is absent and acquisition is not an
	// option; Instruction tells the operator what to do.
	StateUnavailable CapabilityState = "unavailable"
)

// Capability reports whether audio conversion can run right now.
type Capability struct {
	State       CapabilityState
	Path        string
	Instruction string
}

// Output carries the path of the converted WAV file. The file lives next to
// the source and is removed with the source's temp directory.
type Output struct {
	Path string
}
