package photo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"coleta-seletiva/internal/domain"
)

// LocalStorage writes photos below a root directory on the local filesystem.
type LocalStorage struct {
	root string
}

func NewLocalStorage(root string) *LocalStorage {
	return &LocalStorage{root: root}
}

func (s *LocalStorage) abs(rel string) string {
	return filepath.Join(s.root, filepath.FromSlash(rel))
}

func (s *LocalStorage) Save(ctx context.Context, accountID int64, originalName string, r io.Reader, _ int64) (string, error) {
	ext, err := Extension(originalName)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	rel := ObjectPath(accountID, ext)
	target := s.abs(rel)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrStorageIO, err)
	}

	for _, other := range allowedExtensions {
		if other == ext {
			continue
		}
		if err := os.Remove(s.abs(ObjectPath(accountID, other))); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: remove previous photo: %v", domain.ErrStorageIO, err)
		}
	}

	tmp := fmt.Sprintf("%s.%s.tmp", target, uuid.NewString()[:8])
	f, err := os.Create(tmp)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrStorageIO, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(tmp)
		return "", fmt.Errorf("%w: write photo: %v", domain.ErrStorageIO, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("%w: %v", domain.ErrStorageIO, err)
	}
	if err := os.Rename(tmp, target); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("%w: %v", domain.ErrStorageIO, err)
	}

	return rel, nil
}
