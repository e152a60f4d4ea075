// internal/tasks/media/extract-audio/acquirer_test.go
package extractaudio

import (
	"archive/zip"
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"db-agent/internal/common/httpclient"
)

// releaseArchive builds a zip shaped like a real release: docs and presets
// around the one binary we want.
func releaseArchive(t *testing.T) []byte {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)

	readme, err := w.Create("ffmpeg-release/README.txt")
	require.NoError(t, err)
	_, err = readme.Write([]byte("release notes"))
	require.NoError(t, err)

	bin, err := w.Create("ffmpeg-release/bin/" + binaryName())
	require.NoError(t, err)
	_, err = bin.Write([]byte("#!/bin/sh\nexit 0\n"))
	require.NoError(t, err)

	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestZipAcquirer_Acquire(t *testing.T) {
	archive := releaseArchive(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(archive)
	}))
	defer server.Close()

	destDir := t.TempDir()
	// The acquirer carries its own client: archive downloads run on the
	// extraction timeout, not the model call timeout.
	acquirer := NewZipAcquirer(httpclient.NewClient(30 * time.Second))

	path, err := acquirer.Acquire(context.Background(), server.URL+"/tool.zip", destDir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(destDir, binaryName()), path)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.False(t, info.IsDir())

	// The downloaded archive itself is cleaned up.
	_, err = os.Stat(filepath.Join(destDir, "tool-download.zip"))
	assert.True(t, os.IsNotExist(err))
}

func TestZipAcquirer_ArchiveWithoutBinary(t *testing.T) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	entry, err := w.Create("docs/README.txt")
	require.NoError(t, err)
	_, err = entry.Write([]byte("nothing useful"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(buf.Bytes())
	}))
	defer server.Close()

	acquirer := NewZipAcquirer(httpclient.NewClient(30 * time.Second))
	_, err = acquirer.Acquire(context.Background(), server.URL+"/tool.zip", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "archive does not contain")
}

func TestZipAcquirer_DownloadStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	acquirer := NewZipAcquirer(httpclient.NewClient(30 * time.Second))
	_, err := acquirer.Acquire(context.Background(), server.URL+"/tool.zip", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}
