package render

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"auto_slide_deck_generator/metrics"
)

const (
	Extension   = ".pptx"
	ContentType = "application/vnd.openxmlformats-officedocument.presentationml.presentation"

	tempPrefix  = ".partial-"
	maxBaseName = 48
)

var (
	ErrInvalidName = errors.New("invalid file name")
	ErrNotFound    = errors.New("file not found")
)

// FileStore keeps generated decks in one directory for a limited time.
type FileStore struct {
	dir       string
	retention time.Duration
	logger    *slog.Logger
}

func NewFileStore(dir string, retention time.Duration, logger *slog.Logger) (*FileStore, error) {
	if dir == "" {
		return nil, errors.New("output dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &FileStore{dir: dir, retention: retention, logger: logger}, nil
}

func (s *FileStore) Dir() string { return s.dir }

// Save writes data under a new unique name derived from base and returns
// that name. The file only becomes visible once fully written.
func (s *FileStore) Save(base string, data []byte) (string, error) {
	name := UniqueName(base)

	tmp, err := os.CreateTemp(s.dir, tempPrefix+"*"+Extension)
	if err != nil {
		return "", &RenderError{Stage: "persist", Err: err}
	}
	tmpPath := tmp.Name()
	cleanup := func(err error) (string, error) {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return "", &RenderError{Stage: "persist", Err: err}
	}

	if _, err := tmp.Write(data); err != nil {
		return cleanup(err)
	}
	if err := tmp.Sync(); err != nil {
		return cleanup(err)
	}
	if err := tmp.Close(); err != nil {
		return cleanup(err)
	}
	if err := os.Rename(tmpPath, filepath.Join(s.dir, name)); err != nil {
		_ = os.Remove(tmpPath)
		return "", &RenderError{Stage: "persist", Err: err}
	}
	s.logger.Info("deck saved", "file", name, "bytes", len(data))
	return name, nil
}

// Path resolves a name returned by Save. Names that could escape the
// directory, temp files and other extensions are rejected.
func (s *FileStore) Path(name string) (string, error) {
	if name == "" || strings.Contains(name, "..") || strings.ContainsAny(name, `/\`) ||
		strings.HasPrefix(name, ".") || !strings.HasSuffix(name, Extension) {
		return "", ErrInvalidName
	}
	path := filepath.Join(s.dir, name)
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return "", ErrNotFound
	}
	return path, nil
}

// Sweep removes decks older than the retention window and returns how many
// were deleted. Files that vanish concurrently are not errors.
func (s *FileStore) Sweep(now time.Time) (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, fmt.Errorf("read output dir: %w", err)
	}
	removed := 0
	var errs []error
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), Extension) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				errs = append(errs, err)
			}
			continue
		}
		if now.Sub(info.ModTime()) < s.retention {
			continue
		}
		switch err := os.Remove(filepath.Join(s.dir, e.Name())); {
		case err == nil:
			removed++
		case errors.Is(err, fs.ErrNotExist):
			s.logger.Debug("sweep: file already gone", "file", e.Name())
		default:
			errs = append(errs, err)
		}
	}
	if removed > 0 {
		metrics.RecordSwept(removed)
		s.logger.Info("swept expired decks", "removed", removed)
	}
	return removed, errors.Join(errs...)
}

// Run sweeps every interval until ctx is done.
func (s *FileStore) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if _, err := s.Sweep(now); err != nil {
				s.logger.Error("sweep failed", "err", err)
			}
		}
	}
}

// UniqueName returns "<slug>_<12 hex>.pptx".
func UniqueName(base string) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return Slug(base) + "_" + suffix + Extension
}

// Slug reduces s to lower-case ASCII letters, digits and single underscores.
func Slug(s string) string {
	var b strings.Builder
	lastUnderscore := true
	n := 0
	for _, r := range strings.ToLower(s) {
		if n >= maxBaseName {
			break
		}
		if r <= unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
			lastUnderscore = false
			n++
			continue
		}
		if !lastUnderscore {
			b.WriteByte('_')
			lastUnderscore = true
			n++
		}
	}
	out := strings.Trim(b.String(), "_")
	if out == "" {
		return "presentation"
	}
	return out
}
