// internal/tasks/media/fetch-resource/handler_test.go
package fetchresource

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "db-agent/internal/common/errors"
	"db-agent/internal/common/httpclient"
)

// ==========================
// Test Logger Implementation
// ==========================

type TestLogger struct {
	t *testing.T
}

func NewTestLogger(t *testing.T) *TestLogger { return &TestLogger{t: t} }

func (l *TestLogger) Info(msg string, fields map[string]interface{}) {
	l.t.Logf("INFO: %s %v", msg, fields)
}
func (l *TestLogger) Error(msg string, fields map[string]interface{}) {
	l.t.Logf("ERROR: %s %v", msg, fields)
}
func (l *TestLogger) With(fields map[string]interface{}) Logger { return l }

func newTestHandler(t *testing.T, storageBaseURL string) *Handler {
	config := &Config{
		StorageBaseURL: storageBaseURL,
		Timeout:        5 * time.Second,
	}
	return NewHandler(config, httpclient.NewClient(5*time.Second), NewTestLogger(t))
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Fetch_AbsoluteURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "audio/mpeg")
		w.Write([]byte("fake mp3 bytes"))
	}))
	t.Cleanup(server.Close)

	handler := newTestHandler(t, "http://unused")

	resource, err := handler.Fetch(context.Background(), server.URL+"/audio/complaint1.mp3")
	require.NoError(t, err)
	t.Cleanup(resource.Release)

	assert.Equal(t, ".mp3", filepath.Ext(resource.Path))
	assert.Equal(t, "audio/mpeg", resource.ContentType)
	assert.Equal(t, int64(len("fake mp3 bytes")), resource.Size)

	data, err := os.ReadFile(resource.Path)
	require.NoError(t, err)
	assert.Equal(t, "fake mp3 bytes", string(data))
}

func TestHandler_Fetch_BarePathResolvedAgainstStorage(t *testing.T) {
	var requestedPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestedPath = r.URL.Path
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte("png"))
	}))
	t.Cleanup(server.Close)

	handler := newTestHandler(t, server.URL+"/storage/v1/object/public")

	resource, err := handler.Fetch(context.Background(), "receipts/refund_req2.png")
	require.NoError(t, err)
	t.Cleanup(resource.Release)

	assert.Equal(t, "/storage/v1/object/public/receipts/refund_req2.png", requestedPath)
	assert.Equal(t, ".png", filepath.Ext(resource.Path))
}

func TestHandler_Fetch_ExtensionFromContentType(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "audio/wav")
		w.Write([]byte("riff"))
	}))
	t.Cleanup(server.Close)

	handler := newTestHandler(t, "http://unused")

	// No extension on the URL, so the Content-Type decides.
	resource, err := handler.Fetch(context.Background(), server.URL+"/objects/12345")
	require.NoError(t, err)
	t.Cleanup(resource.Release)

	assert.Equal(t, ".wav", filepath.Ext(resource.Path))
}

// ==========================
// Cleanup Tests
// ==========================

func TestResource_Release_RemovesFile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("data"))
	}))
	t.Cleanup(server.Close)

	handler := newTestHandler(t, "http://unused")

	resource, err := handler.Fetch(context.Background(), server.URL+"/file.mp3")
	require.NoError(t, err)

	_, err = os.Stat(resource.Path)
	require.NoError(t, err)

	resource.Release()

	_, err = os.Stat(resource.Path)
	assert.True(t, os.IsNotExist(err))

	// Idempotent.
	resource.Release()
}

// ==========================
// Error Path Tests
// ==========================

func TestHandler_Fetch_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	t.Cleanup(server.Close)

	handler := newTestHandler(t, "http://unused")

	_, err := handler.Fetch(context.Background(), server.URL+"/missing.mp3")
	require.Error(t, err)

	var stdErr *apperrors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, apperrors.ErrCodeFetch, stdErr.Code)
	assert.Contains(t, stdErr.Details, "404")
}

func TestHandler_Fetch_NetworkError(t *testing.T) {
	handler := newTestHandler(t, "http://unused")

	_, err := handler.Fetch(context.Background(), "http://127.0.0.1:1/unreachable.mp3")
	require.Error(t, err)

	var stdErr *apperrors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, apperrors.ErrCodeFetch, stdErr.Code)
}

func TestHandler_Fetch_InvalidLocator(t *testing.T) {
	handler := newTestHandler(t, "http://unused")

	tests := []string{"", "../../etc/passwd"}
	for _, locator := range tests {
		t.Run(strings.ReplaceAll(locator, "/", "_"), func(t *testing.T) {
			_, err := handler.Fetch(context.Background(), locator)
			require.Error(t, err)

			var stdErr *apperrors.StandardError
			require.ErrorAs(t, err, &stdErr)
			assert.Equal(t, apperrors.ErrCodeFetch, stdErr.Code)
		})
	}
}
