// internal/tasks/media/fetch-resource/models.go
package fetchresource

import (
	"os"
	"path/filepath"
	"sync"
)

// Resource is a downloaded media object staged on local disk. Callers own the
// file for the duration of one turn and must call Release when done.
type Resource struct {
	Path        string
	ContentType string
	Size        int64

	dir     string
	release sync.Once
}

// NewStaged wraps an already-staged file whose parent directory is owned by
// the resource. Release removes the whole directory, conversion outputs
// written next to the file included.
func NewStaged(path, contentType string, size int64) *Resource {
	return &Resource{
		Path:        path,
		ContentType: contentType,
		Size:        size,
		dir:         filepath.Dir(path),
	}
}

// Release removes the staged file and its temp directory. Safe to call more
// than once; later calls are no-ops.
func (r *Resource) Release() {
	r.release.Do(func() {
		if r.dir != "" {
			os.RemoveAll(r.dir)
		}
	})
}
