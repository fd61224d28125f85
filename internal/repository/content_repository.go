package repository

import (
	"context"
	"fmt"
	"io/fs"

	"gopkg.in/yaml.v3"

	"coleta-seletiva/internal/domain"
)

// ContentRepository serves the educational content document. It is read-only
// and kept apart from the transactional tables.
type ContentRepository interface {
	Load(ctx context.Context) (*domain.EducationalContent, error)
}

type contentRepository struct {
	fsys fs.FS
	path string
}

func NewContentRepository(fsys fs.FS, path string) ContentRepository {
	return &contentRepository{fsys: fsys, path: path}
}

func (r *contentRepository) Load(_ context.Context) (*domain.EducationalContent, error) {
	data, err := fs.ReadFile(r.fsys, r.path)
	if err != nil {
		return nil, fmt.Errorf("%w: read content %s: %v", domain.ErrStorageIO, r.path, err)
	}

	var content domain.EducationalContent
	if err := yaml.Unmarshal(data, &content); err != nil {
		return nil, fmt.Errorf("%w: parse content %s: %v", domain.ErrStorageFormat, r.path, err)
	}
	return &content, nil
}
