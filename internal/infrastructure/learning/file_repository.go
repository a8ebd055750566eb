package learning

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/doeshing/cmdai-go/internal/domain"
	"github.com/doeshing/cmdai-go/internal/ports"
)

// ErrCorruptStore is returned when persisted entries cannot be decoded.
var ErrCorruptStore = errors.New("learning store is corrupt")

// FileRepository persists learning entries as an indented JSON array.
type FileRepository struct {
	path string
}

// NewFileRepository creates a repository backed by path.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{path: path}
}

// Load implements ports.LearningRepository. A missing file yields no entries.
func (r *FileRepository) Load(context.Context) ([]domain.LearningEntry, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read learning store: %w", err)
	}
	if len(data) == 0 {
		return nil, nil
	}
	var entries []domain.LearningEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptStore, err)
	}
	return entries, nil
}

// Save implements ports.LearningRepository. The file is replaced atomically.
func (r *FileRepository) Save(_ context.Context, entries []domain.LearningEntry) error {
	if entries == nil {
		entries = []domain.LearningEntry{}
	}
	payload, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode learning store: %w", err)
	}
	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, domain.DirectoryPermissions); err != nil {
		return fmt.Errorf("create learning dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".cmdai-learning-*.json")
	if err != nil {
		return fmt.Errorf("create temp learning file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(payload); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write temp learning file: %w", err)
	}
	if err := tmp.Chmod(domain.SecureFilePermissions); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("secure temp learning file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close temp learning file: %w", err)
	}
	if err := os.Rename(tmpPath, r.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("replace learning file: %w", err)
	}
	return nil
}

// Path returns the backing file path.
func (r *FileRepository) Path() string {
	return r.path
}

var _ ports.LearningRepository = (*FileRepository)(nil)
