package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/afero"

	"github.com/hammamikhairi/ottobrew/internal/domain"
	"github.com/hammamikhairi/ottobrew/internal/logger"
	"github.com/hammamikhairi/ottobrew/internal/schema"
)

// Compile-time interface checks.
var (
	_ domain.SnapshotStore = (*FileStore)(nil)
	_ domain.Quarantiner   = (*FileStore)(nil)
)

const fileMode = 0o644

// FileOption configures a FileStore.
type FileOption func(*FileStore)

// WithFs swaps the filesystem the store reads and writes through.
func WithFs(fs afero.Fs) FileOption {
	return func(s *FileStore) {
		s.fs = fs
	}
}

// WithClock overrides the time source used to name quarantined files.
func WithClock(now func() time.Time) FileOption {
	return func(s *FileStore) {
		s.now = now
	}
}

// FileStore keeps the catalog in a single JSON file. Every Save rewrites
// the whole file through a temp file in the same directory followed by a
// rename, so an interrupted write never leaves a partial file behind.
//
// Not safe for use by more than one process at a time.
type FileStore struct {
	fs        afero.Fs
	path      string
	log       *logger.Logger
	validator *schema.Validator
	now       func() time.Time
}

// NewFileStore creates a store backed by the file at path. The file does
// not need to exist yet.
func NewFileStore(path string, log *logger.Logger, opts ...FileOption) *FileStore {
	s := &FileStore{
		fs:        afero.NewOsFs(),
		path:      path,
		log:       log,
		validator: schema.NewValidator(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the canonical data file path.
func (s *FileStore) Path() string { return s.path }

// Load reads the data file. A missing file yields an empty snapshot and no
// error. Unparseable content yields an empty snapshot and an error wrapping
// domain.ErrCorrupted.
func (s *FileStore) Load(ctx context.Context) (domain.Snapshot, error) {
	data, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.log.Debug("data file %s not found, starting empty", s.path)
			return domain.EmptySnapshot(), nil
		}
		s.log.Error("reading %s: %v", s.path, err)
		return domain.EmptySnapshot(), fmt.Errorf("%w: reading %s: %w", domain.ErrPersistence, s.path, err)
	}

	snap, err := s.decode(data)
	if err != nil {
		s.log.Warn("data file %s is unreadable: %v", s.path, err)
		return domain.EmptySnapshot(), fmt.Errorf("%w: %s: %w", domain.ErrCorrupted, s.path, err)
	}

	s.log.Debug("loaded %s (recipes=%d, ingredients=%d)", s.path, len(snap.Recipes), len(snap.Ingredients))
	return snap, nil
}

func (s *FileStore) decode(data []byte) (domain.Snapshot, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return domain.Snapshot{}, errors.New("file is empty")
	}
	if err := s.validator.Validate(data); err != nil {
		return domain.Snapshot{}, err
	}

	var snap domain.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return domain.Snapshot{}, fmt.Errorf("decoding: %w", err)
	}
	snap.Normalize()
	return snap, nil
}

// Save atomically replaces the data file with the encoded snapshot. On any
// failure the previous file content is left untouched.
func (s *FileStore) Save(ctx context.Context, snap domain.Snapshot) error {
	snap = snap.Clone()
	snap.Normalize()
	data, err := Encode(snap)
	if err != nil {
		return fmt.Errorf("%w: encoding snapshot: %w", domain.ErrPersistence, err)
	}

	if err := s.writeAtomic(data); err != nil {
		s.log.Error("saving %s: %v", s.path, err)
		return fmt.Errorf("%w: %w", domain.ErrPersistence, err)
	}

	s.log.Debug("saved %s (%d bytes, recipes=%d, ingredients=%d)", s.path, len(data), len(snap.Recipes), len(snap.Ingredients))
	return nil
}

func (s *FileStore) writeAtomic(data []byte) (err error) {
	dir := filepath.Dir(s.path)
	if err := s.fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	tmp, err := afero.TempFile(s.fs, dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	cleanupTmp := true
	defer func() {
		if cleanupTmp {
			tmp.Close()
			if rmErr := s.fs.Remove(tmpPath); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
				s.log.Warn("removing temp file %s: %v", tmpPath, rmErr)
			}
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := s.fs.Chmod(tmpPath, fileMode); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := s.fs.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("atomic rename: %w", err)
	}

	cleanupTmp = false
	return nil
}

// Quarantine moves the data file aside so the next Save does not overwrite
// content that failed to load. Returns the new path.
func (s *FileStore) Quarantine(ctx context.Context) (string, error) {
	if _, err := s.fs.Stat(s.path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", domain.ErrNotFound
		}
		return "", fmt.Errorf("%w: %w", domain.ErrPersistence, err)
	}

	dst := fmt.Sprintf("%s.corrupt-%s", s.path, s.now().Format("20060102-150405"))
	if err := s.fs.Rename(s.path, dst); err != nil {
		return "", fmt.Errorf("%w: quarantining %s: %w", domain.ErrPersistence, s.path, err)
	}
	s.log.Warn("moved unreadable data file to %s", dst)
	return dst, nil
}

// Encode renders a snapshot the way it is written to disk: stable field
// order, four-space indentation, UTF-8 kept as is, trailing newline.
func Encode(snap domain.Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(snap); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
