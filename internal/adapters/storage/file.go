package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/jsamuelsen/quote-sync/internal/domain"
	"github.com/jsamuelsen/quote-sync/internal/ports"
)

const (
	checkerName = "storage"

	dirPerm  = 0o750
	filePerm = 0o600
)

// slotNamePattern keeps slot names usable as file names.
var slotNamePattern = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// FileStore keeps each slot in its own file under a directory. Writes go to a
// temporary file that is renamed over the slot, so a crash never leaves a
// partially written value behind.
type FileStore struct {
	dir string
	mu  sync.Mutex
}

// Compile-time interface checks.
var (
	_ ports.SlotStore     = (*FileStore)(nil)
	_ ports.HealthChecker = (*FileStore)(nil)
)

// OpenFile opens a file store rooted at dir, creating the directory if needed.
func OpenFile(dir string) (*FileStore, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("storage path is required")
	}

	clean := filepath.Clean(dir)
	if err := os.MkdirAll(clean, dirPerm); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}

	return &FileStore{dir: clean}, nil
}

// Load implements ports.SlotStore.
func (s *FileStore) Load(ctx context.Context, slot string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path, err := s.path(slot)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, domain.NewNotFoundError("slot", slot)
	}

	if err != nil {
		return nil, fmt.Errorf("read slot %q: %w", slot, err)
	}

	return data, nil
}

// Save implements ports.SlotStore.
func (s *FileStore) Save(ctx context.Context, slot string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path, err := s.path(slot)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := os.CreateTemp(s.dir, "."+slot+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file for slot %q: %w", slot, err)
	}

	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(value); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write slot %q: %w", slot, err)
	}

	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync slot %q: %w", slot, err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close slot %q: %w", slot, err)
	}

	if err := os.Chmod(tmpName, filePerm); err != nil {
		return fmt.Errorf("chmod slot %q: %w", slot, err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replace slot %q: %w", slot, err)
	}

	return nil
}

// Name implements ports.HealthChecker.
func (s *FileStore) Name() string {
	return checkerName
}

// Check implements ports.HealthChecker by confirming the directory is still there.
func (s *FileStore) Check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	info, err := os.Stat(s.dir)
	if err != nil {
		return fmt.Errorf("stat storage dir: %w", err)
	}

	if !info.IsDir() {
		return fmt.Errorf("storage path %q is not a directory", s.dir)
	}

	return nil
}

// Close implements io.Closer.
func (s *FileStore) Close() error {
	return nil
}

func (s *FileStore) path(slot string) (string, error) {
	if !slotNamePattern.MatchString(slot) {
		return "", domain.NewValidationError("slot", fmt.Sprintf("invalid slot name %q", slot))
	}

	return filepath.Join(s.dir, slot+".json"), nil
}
