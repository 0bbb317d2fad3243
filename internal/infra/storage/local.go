package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

var (
	ErrTooLarge        = errors.New("file too large")
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrNotFound        = errors.New("file not found")
)

var allowedExt = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// Local stores uploaded images under <dir>/images.
type Local struct {
	dir     string
	maxSize int64
	maxAge  time.Duration
	log     *zap.Logger
}

func NewLocal(dir string, maxSize int64, maxAge time.Duration, log *zap.Logger) (*Local, error) {
	if err := os.MkdirAll(filepath.Join(dir, "images"), 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Local{dir: dir, maxSize: maxSize, maxAge: maxAge, log: log}, nil
}

func (s *Local) ImagesDir() string { return filepath.Join(s.dir, "images") }

func (s *Local) MaxSize() int64 { return s.maxSize }

// Save copies r to a new uniquely named file keeping the original
// extension, and returns the stored name.
func (s *Local) Save(r io.Reader, originalName string, size int64) (string, error) {
	if size > s.maxSize {
		return "", ErrTooLarge
	}
	ext := strings.ToLower(filepath.Ext(originalName))
	if !allowedExt[ext] {
		return "", ErrUnsupportedType
	}

	name := uuid.NewString() + ext
	path := filepath.Join(s.ImagesDir(), name)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", err
	}

	n, err := io.Copy(f, io.LimitReader(r, s.maxSize+1))
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil && n > s.maxSize {
		err = ErrTooLarge
	}
	if err != nil {
		_ = os.Remove(path)
		return "", err
	}
	return name, nil
}

// Path resolves a stored name, rejecting anything that is not a plain file
// name inside the images directory.
func (s *Local) Path(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", ErrNotFound
	}
	return filepath.Join(s.ImagesDir(), name), nil
}

func (s *Local) Delete(name string) error {
	path, err := s.Path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// Sweep removes images last modified before now - maxAge.
func (s *Local) Sweep(now time.Time) (int, error) {
	entries, err := os.ReadDir(s.ImagesDir())
	if err != nil {
		return 0, err
	}
	cutoff := now.Add(-s.maxAge)
	removed := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(filepath.Join(s.ImagesDir(), e.Name())); err != nil {
				s.log.Warn("sweep: remove failed", zap.String("file", e.Name()), zap.Error(err))
				continue
			}
			removed++
		}
	}
	return removed, nil
}

// StartSweeper schedules Sweep on schedule (robfig/cron syntax, e.g. "@every 24h").
// onSwept receives the number of files removed by each run. Stop the
// returned scheduler to drain it.
func (s *Local) StartSweeper(schedule string, onSwept func(int)) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		n, err := s.Sweep(time.Now())
		if err != nil {
			s.log.Error("upload sweep failed", zap.Error(err))
			return
		}
		if n > 0 {
			s.log.Info("upload sweep", zap.Int("removed", n))
		}
		if onSwept != nil {
			onSwept(n)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("schedule sweeper: %w", err)
	}
	c.Start()
	return c, nil
}
