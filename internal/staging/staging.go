// Package staging manages the ephemeral local files pipelines materialize
// while handling a single event. Files are keyed by message id so concurrent
// events never collide, and every staged file is removed exactly once.
package staging

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// DefaultDirName is the staging directory created under the OS temp root
// when no explicit directory is configured.
const DefaultDirName = "vocalis"

// Dir stages per-event temporary files under a dedicated directory.
type Dir struct {
	logger *slog.Logger
	root   string
}

// New creates the staging directory if needed. An empty root selects a
// dedicated directory under os.TempDir.
func New(log *slog.Logger, root string) (*Dir, error) {
	if log == nil {
		log = slog.Default()
	}
	if root == "" {
		root = filepath.Join(os.TempDir(), DefaultDirName)
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create staging dir: %w", err)
	}
	return &Dir{
		logger: log.With(slog.String("service", "staging")),
		root:   root,
	}, nil
}

// Root returns the staging directory path.
func (d *Dir) Root() string {
	return d.root
}

// MessageFile returns the staged path for an attachment of the given
// message: {messageId}-{filename}.
func (d *Dir) MessageFile(messageID, filename string) string {
	return filepath.Join(d.root, messageID+"-"+filepath.Base(filename))
}

// InvertedImage returns the staged path for a generated inverted image:
// inverted_image_{messageId}.png.
func (d *Dir) InvertedImage(messageID string) string {
	return filepath.Join(d.root, "inverted_image_"+messageID+".png")
}

// Stage writes data to path and returns a release function removing the
// file. Callers defer the release so cleanup runs on every exit path.
func (d *Dir) Stage(path string, data []byte) (func(), error) {
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return nil, fmt.Errorf("write staged file: %w", err)
	}
	return d.Release(path), nil
}

// Release returns an idempotent remover for path. A second call is a no-op,
// so success paths and deferred cleanup cannot double-remove.
func (d *Dir) Release(path string) func() {
	var once sync.Once
	return func() {
		once.Do(func() {
			if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
				d.logger.Warn("remove staged file failed",
					slog.String("path", path),
					slog.Any("error", err),
				)
			}
		})
	}
}
