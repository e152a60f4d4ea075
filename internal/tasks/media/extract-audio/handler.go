// internal/tasks/media/extract-audio/handler.go
package extractaudio

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	apperrors "db-agent/internal/common/errors"
)

const (
	TaskType = "extract-audio"
)

const manualInstruction = "Audio conversion requires ffmpeg. Install it and either add it to PATH or set MEDIA_TOOL_PATH to the binary."

// Logger interface definition
type Logger interface {
	Info(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
	With(fields map[string]interface{}) Logger
}

// CommandRunner runs the conversion tool. Split out so tests never spawn a
// real process.
type CommandRunner interface {
	Run(ctx context.Context, bin string, args ...string) error
}

// Acquirer downloads and unpacks the tool under the auto policy, returning
// the path of the installed binary.
type Acquirer interface {
	Acquire(ctx context.Context, downloadURL, destDir string) (string, error)
}

type Handler struct {
	config   *Config
	runner   CommandRunner
	acquirer Acquirer
	lookPath func(string) (string, error)
	logger   Logger

	mu       sync.Mutex
	acquired string // path of a tool installed this session
	tried    bool   // acquisition is attempted at most once
}

func NewHandler(config *Config, runner CommandRunner, acquirer Acquirer, log Logger) *Handler {
	return &Handler{
		config:   config,
		runner:   runner,
		acquirer: acquirer,
		lookPath: exec.LookPath,
		logger: log.With(map[string]interface{}{
			"taskType": TaskType,
		}),
	}
}

// DetectTool reports the tool's availability without side effects.
func (h *Handler) DetectTool() Capability {
	h.mu.Lock()
	acquired := h.acquired
	tried := h.tried
	h.mu.Unlock()

	if acquired != "" {
		return Capability{State: StatePresent, Path: acquired}
	}
	if path := h.locate(); path != "" {
		return Capability{State: StatePresent, Path: path}
	}
	if h.config.AcquirePolicy == PolicyAuto && h.config.DownloadURL != "" && !tried {
		return Capability{State: StateInstallable}
	}
	return Capability{State: StateUnavailable, Instruction: manualInstruction}
}

// execute converts the source file to 16 kHz mono PCM WAV next to the
// source. Acquisition under the auto policy happens here, once per process.
func (h *Handler) execute(ctx context.Context, sourcePath string) (*Output, error) {
	ctx, cancel := context.WithTimeout(ctx, h.config.Timeout)
	defer cancel()

	capability := h.DetectTool()
	switch capability.State {
	case StatePresent:
		// ready
	case StateInstallable:
		path, err := h.acquireOnce(ctx)
		if err != nil {
			return nil, err
		}
		capability.Path = path
	default:
		return nil, apperrors.NewToolMissingError(capability.Instruction)
	}

	dest := wavSibling(sourcePath)
	args := []string{"-i", sourcePath, "-vn", "-acodec", "pcm_s16le", "-ar", "16000", "-ac", "1", dest, "-y"}

	h.logger.Info("converting audio", map[string]interface{}{
		"source": sourcePath,
		"dest":   dest,
	})

	if err := h.runner.Run(ctx, capability.Path, args...); err != nil {
		return nil, apperrors.NewExtractionError(err)
	}

	return &Output{Path: dest}, nil
}

func (h *Handler) acquireOnce(ctx context.Context) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.acquired != "" {
		return h.acquired, nil
	}
	if h.tried {
		return "", apperrors.NewToolMissingError(manualInstruction)
	}
	h.tried = true

	h.logger.Info("acquiring conversion tool", map[string]interface{}{
		"url": h.config.DownloadURL,
	})

	path, err := h.acquirer.Acquire(ctx, h.config.DownloadURL, h.config.ToolDir)
	if err != nil {
		h.logger.Error("tool acquisition failed", map[string]interface{}{
			"error": err.Error(),
		})
		return "", apperrors.NewToolMissingError(manualInstruction)
	}

	h.acquired = path
	return path, nil
}

// locate tries the configured path first, then PATH.
func (h *Handler) locate() string {
	if h.config.ToolPath != "" {
		if _, err := os.Stat(h.config.ToolPath); err == nil {
			return h.config.ToolPath
		}
	}
	if path, err := h.lookPath("ffmpeg"); err == nil {
		return path
	}
	return ""
}

// wavSibling names the converted file next to the source. A .wav source
// still goes through the converter (the extension says nothing about codec
// or sample rate), and the tool refuses output == input, so it gets a
// distinct name.
func wavSibling(sourcePath string) string {
	ext := filepath.Ext(sourcePath)
	base := strings.TrimSuffix(sourcePath, ext)
	if strings.EqualFold(ext, ".wav") {
		return base + ".extracted.wav"
	}
	return base + ".wav"
}

func (h *Handler) Execute(ctx context.Context, sourcePath string) (*Output, error) {
	return h.execute(ctx, sourcePath)
}

// ==========================
// Default collaborators
// ==========================

// ExecRunner runs the real binary and folds stderr into the error.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, bin string, args ...string) error {
	cmd := exec.CommandContext(ctx, bin, args...)
	var stderr strings.Builder
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail != "" {
			return fmt.Errorf("%s: %w: %s", filepath.Base(bin), err, lastLines(detail, 5))
		}
		return fmt.Errorf("%s: %w", filepath.Base(bin), err)
	}
	return nil
}

// lastLines keeps the tail of the tool's stderr, where the actual failure
// reason lands.
func lastLines(s string, n int) string {
	lines := strings.Split(s, "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}
