// internal/tasks/media/extract-audio/acquirer.go
package extractaudio

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
)

// HTTPClient is the download transport seam shared with the media fetcher.
type HTTPClient interface {
	Get(ctx context.Context, url string) (*http.Response, error)
}

// ZipAcquirer downloads a release archive and unpacks the converter binary
// into destDir. Used once per process under the auto policy.
type ZipAcquirer struct {
	client HTTPClient
}

func NewZipAcquirer(client HTTPClient) *ZipAcquirer {
	return &ZipAcquirer{client: client}
}

func (a *ZipAcquirer) Acquire(ctx context.Context, downloadURL, destDir string) (string, error) {
	if destDir == "" {
		destDir = filepath.Join(os.TempDir(), "db-agent-tools")
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", err
	}

	archivePath, err := a.download(ctx, downloadURL, destDir)
	if err != nil {
		return "", err
	}
	defer os.Remove(archivePath)

	binary, err := extractBinary(archivePath, destDir)
	if err != nil {
		return "", err
	}
	return binary, nil
}

func (a *ZipAcquirer) download(ctx context.Context, url, destDir string) (string, error) {
	resp, err := a.client.Get(ctx, url)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download failed with status %d", resp.StatusCode)
	}

	archivePath := filepath.Join(destDir, "tool-download.zip")
	file, err := os.Create(archivePath)
	if err != nil {
		return "", err
	}

	_, err = io.Copy(file, resp.Body)
	closeErr := file.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(archivePath)
		return "", err
	}
	return archivePath, nil
}

// extractBinary pulls the converter executable out of the archive, ignoring
// docs and presets bundled alongside it.
func extractBinary(archivePath, destDir string) (string, error) {
	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		return "", err
	}
	defer reader.Close()

	wanted := binaryName()
	for _, entry := range reader.File {
		if entry.FileInfo().IsDir() {
			continue
		}
		if filepath.Base(entry.Name) != wanted {
			continue
		}

		dest := filepath.Join(destDir, wanted)
		if err := writeEntry(entry, dest); err != nil {
			return "", err
		}
		return dest, nil
	}
	return "", fmt.Errorf("archive does not contain %s", wanted)
}

func writeEntry(entry *zip.File, dest string) error {
	src, err := entry.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	file, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o755)
	if err != nil {
		return err
	}

	_, err = io.Copy(file, src)
	closeErr := file.Close()
	if err == nil {
		err = closeErr
	}
	return err
}

func binaryName() string {
	if runtime.GOOS == "windows" {
		return "ffmpeg.exe"
	}
	return "ffmpeg"
}
