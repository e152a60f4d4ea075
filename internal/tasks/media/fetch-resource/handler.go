// internal/tasks/media/fetch-resource/handler.go
package fetchresource

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	apperrors "db-agent/internal/common/errors"
	"db-agent/internal/common/validation"
)

const (
	TaskType = "fetch-resource"
)

// Logger interface definition
type Logger interface {
	Info(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
	With(fields map[string]interface{}) Logger
}

// HTTPClient is the download transport seam.
type HTTPClient interface {
	Get(ctx context.Context, url string) (*http.Response, error)
}

type Handler struct {
	config *Config
	client HTTPClient
	logger Logger
}

func NewHandler(config *Config, client HTTPClient, log Logger) *Handler {
	return &Handler{
		config: config,
		client: client,
		logger: log.With(map[string]interface{}{
			"taskType": TaskType,
		}),
	}
}

// Fetch downloads the object behind the locator into a fresh temp directory
// and returns a Resource the caller must Release.
func (h *Handler) Fetch(ctx context.Context, locator string) (*Resource, error) {
	if err := validation.ValidateLocator(locator); err != nil {
		return nil, apperrors.NewFetchError(locator, err)
	}

	ctx, cancel := context.WithTimeout(ctx, h.config.Timeout)
	defer cancel()

	url := h.resolve(locator)

	h.logger.Info("fetching resource", map[string]interface{}{
		"locator": locator,
	})

	resp, err := h.client.Get(ctx, url)
	if err != nil {
		return nil, apperrors.NewFetchError(locator, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.NewFetchError(locator, fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	dir, err := os.MkdirTemp("", "db-agent-media-")
	if err != nil {
		return nil, apperrors.NewFetchError(locator, err)
	}

	contentType := resp.Header.Get("Content-Type")
	filename := uuid.New().String() + pickExtension(url, contentType)
	dest := filepath.Join(dir, filename)

	file, err := os.Create(dest)
	if err != nil {
		os.RemoveAll(dir)
		return nil, apperrors.NewFetchError(locator, err)
	}

	size, err := io.Copy(file, resp.Body)
	closeErr := file.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.RemoveAll(dir)
		return nil, apperrors.NewFetchError(locator, err)
	}

	h.logger.Info("resource staged", map[string]interface{}{
		"locator": locator,
		"size":    size,
	})

	return &Resource{
		Path:        dest,
		ContentType: contentType,
		Size:        size,
		dir:         dir,
	}, nil
}

// resolve turns a bare object path into a public storage URL; absolute URLs
// pass through untouched.
func (h *Handler) resolve(locator string) string {
	if validation.IsURL(locator) {
		return locator
	}
	return strings.TrimSuffix(h.config.StorageBaseURL, "/") + "/" + strings.TrimPrefix(locator, "/")
}

// pickExtension prefers the URL's own extension and falls back to the
// Content-Type header so downstream tooling sees a sensible suffix.
func pickExtension(url, contentType string) string {
	if ext := path.Ext(stripQuery(url)); ext != "" {
		return ext
	}
	switch {
	case strings.Contains(contentType, "audio/mpeg"):
		return ".mp3"
	case strings.Contains(contentType, "audio/wav"), strings.Contains(contentType, "audio/x-wav"):
		return ".wav"
	case strings.Contains(contentType, "audio/ogg"):
		return ".ogg"
	case strings.Contains(contentType, "image/png"):
		return ".png"
	case strings.Contains(contentType, "image/jpeg"):
		return ".jpg"
	case strings.Contains(contentType, "image/webp"):
		return ".webp"
	}
	return ""
}

func stripQuery(url string) string {
	if i := strings.IndexByte(url, '?'); i >= 0 {
		return url[:i]
	}
	return url
}
