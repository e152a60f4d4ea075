// internal/tasks/media/summarize-audio/models.go
package summarizeaudio

// Input names the audio object to summarize. Locator accepts an absolute URL
// or a bare storage path.
type Input struct {
	Locator string
}

// Output carries the transcript and its summary.
type Output struct {
	Transcript string
	Summary    string
}
