// internal/tasks/media/summarize-audio/handler.go
package summarizeaudio

import (
	"context"
	"fmt"
	"strings"

	extractaudio "db-agent/internal/tasks/media/extract-audio"
	fetchresource "db-agent/internal/tasks/media/fetch-resource"
)

const (
	TaskType = "summarize-audio"
)

const summaryPrompt = "Summarize this customer audio transcript in one or two sentences. Return only the summary.\n\nTranscript:\n%s"

// Logger interface definition
type Logger interface {
	Info(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
	With(fields map[string]interface{}) Logger
}

// Fetcher stages the audio object on local disk.
type Fetcher interface {
	Fetch(ctx context.Context, locator string) (*fetchresource.Resource, error)
}

// Extractor converts staged audio to the transcription format.
type Extractor interface {
	Execute(ctx context.Context, sourcePath string) (*extractaudio.Output, error)
}

// Gateway is the hosted-model surface the pipeline needs.
type Gateway interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
	Summarize(ctx context.Context, prompt string) (string, error)
}

type Handler struct {
	config    *Config
	fetcher   Fetcher
	extractor Extractor
	gateway   Gateway
	logger    Logger
}

func NewHandler(config *Config, fetcher Fetcher, extractor Extractor, gateway Gateway, log Logger) *Handler {
	return &Handler{
		config:    config,
		fetcher:   fetcher,
		extractor: extractor,
		gateway:   gateway,
		logger: log.With(map[string]interface{}{
			"taskType": TaskType,
		}),
	}
}

// execute runs the fetch → extract → transcribe → summarize pipeline. The
// staged file and its conversion output are removed before return on every
// path.
func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	ctx, cancel := context.WithTimeout(ctx, h.config.Timeout)
	defer cancel()

	h.logger.Info("summarizing audio", map[string]interface{}{
		"locator": input.Locator,
	})

	resource, err := h.fetcher.Fetch(ctx, input.Locator)
	if err != nil {
		return nil, err
	}
	defer resource.Release()

	extracted, err := h.extractor.Execute(ctx, resource.Path)
	if err != nil {
		return nil, err
	}

	transcript, err := h.gateway.Transcribe(ctx, extracted.Path)
	if err != nil {
		return nil, err
	}
	transcript = strings.TrimSpace(transcript)

	summary, err := h.gateway.Summarize(ctx, fmt.Sprintf(summaryPrompt, transcript))
	if err != nil {
		return nil, err
	}

	return &Output{
		Transcript: transcript,
		Summary:    strings.TrimSpace(summary),
	}, nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
