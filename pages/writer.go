package pages

import (
	"context"
	"errors"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"go.uber.org/zap"

	"handwrite/logging"
)

// LockFileName is created in the output directory while a Writer holds it.
const LockFileName = ".handwrite.lock"

// ErrLocked is returned when another process holds the output directory.
var ErrLocked = errors.New("pages: output directory is locked by another process")

const lockRetryDelay = 100 * time.Millisecond

// Writer stores pages as page-<n>.<ext> in one directory.
type Writer struct {
	dir       string
	thumbSize int
	logger    *logging.Logger
}

// WriterOption customizes a Writer.
type WriterOption func(*Writer)

// WithThumbnails also writes page-<n>-thumb.png scaled to maxSide pixels.
func WithThumbnails(maxSide int) WriterOption {
	return func(w *Writer) {
		w.thumbSize = maxSide
	}
}

// WithWriterLogger sets the logger. Defaults to a no-op logger.
func WithWriterLogger(logger *logging.Logger) WriterOption {
	return func(w *Writer) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// NewWriter creates a writer for dir. The directory is created on Write.
func NewWriter(dir string, opts ...WriterOption) *Writer {
	w := &Writer{dir: dir, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Dir returns the output directory.
func (w *Writer) Dir() string {
	return w.dir
}

// PagePath returns the file a page is written to.
func (w *Writer) PagePath(p Page) string {
	return filepath.Join(w.dir, fmt.Sprintf("page-%d%s", p.Number, p.Ext()))
}

// ThumbnailPath returns the thumbnail file for a page.
func (w *Writer) ThumbnailPath(p Page) string {
	return filepath.Join(w.dir, fmt.Sprintf("page-%d-thumb.png", p.Number))
}

// Write stores every page and returns the written paths in page order. The
// directory lock is held for the whole call; Write waits for it until ctx is
// done and then fails with ErrLocked.
func (w *Writer) Write(ctx context.Context, pages []Page) ([]string, error) {
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	lock := flock.New(filepath.Join(w.dir, LockFileName))
	ok, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		return nil, fmt.Errorf("acquire output lock: %w", err)
	}
	if !ok {
		return nil, ErrLocked
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			w.logger.Warn("failed to release output lock", zap.Error(err))
		}
	}()

	paths := make([]string, 0, len(pages))
	for _, p := range pages {
		path := w.PagePath(p)
		if err := writeFileAtomic(path, p.Data); err != nil {
			return paths, fmt.Errorf("write page %d: %w", p.Number, err)
		}
		paths = append(paths, path)
		w.logger.Debug("page written",
			zap.Int("page", p.Number),
			zap.String("path", path),
			zap.Int("width", p.Width),
			zap.Int("height", p.Height))

		if w.thumbSize > 0 {
			thumb, err := w.writeThumbnail(p)
			if err != nil {
				return paths, fmt.Errorf("thumbnail page %d: %w", p.Number, err)
			}
			paths = append(paths, thumb)
		}
	}
	return paths, nil
}

func (w *Writer) writeThumbnail(p Page) (string, error) {
	img, err := p.Image()
	if err != nil {
		return "", err
	}
	thumb, err := Thumbnail(img, w.thumbSize)
	if err != nil {
		return "", err
	}

	path := w.ThumbnailPath(p)
	tmp, err := os.CreateTemp(w.dir, ".thumb-*")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())
	if err := png.Encode(tmp, thumb); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}
	return path, os.Rename(tmp.Name(), path)
}

// writeFileAtomic writes data to a temp file in the same directory and
// renames it over path.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".page-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
