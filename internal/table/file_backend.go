package table

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"coleta-seletiva/internal/domain"
)

// FileBackend keeps each table as <dir>/<name>.json. Writes go to a temp file
// that is renamed over the original, so readers see either the old or the new
// contents.
type FileBackend struct {
	dir    string
	locker Locker
}

func NewFileBackend(dir string, locker Locker) (*FileBackend, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: create data dir %s: %v", domain.ErrStorageIO, dir, err)
	}
	if locker == nil {
		locker = NewFlockLocker(dir)
	}
	return &FileBackend{dir: dir, locker: locker}, nil
}

func (b *FileBackend) path(name string) string {
	return filepath.Join(b.dir, name+".json")
}

func (b *FileBackend) Read(_ context.Context, name string) (Snapshot, error) {
	path := b.path(name)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Snapshot{}, nil
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: read %s: %v", domain.ErrStorageIO, path, err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("%w: parse %s: %v", domain.ErrStorageFormat, path, err)
	}
	snap.Exists = true
	return snap, nil
}

func (b *FileBackend) Update(ctx context.Context, name string, fn func(s *Snapshot) (bool, error)) error {
	unlock, err := b.locker.Lock(ctx, name)
	if err != nil {
		return err
	}
	defer unlock()

	snap, err := b.Read(ctx, name)
	if err != nil {
		return err
	}

	changed, err := fn(&snap)
	if err != nil || !changed {
		return err
	}
	return b.write(name, &snap)
}

func (b *FileBackend) write(name string, snap *Snapshot) error {
	if snap.Rows == nil {
		snap.Rows = []json.RawMessage{}
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode %s: %v", domain.ErrStorageFormat, name, err)
	}

	tmp, err := os.CreateTemp(b.dir, name+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: create temp for %s: %v", domain.ErrStorageIO, name, err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%w: write %s: %v", domain.ErrStorageIO, tmpPath, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%w: sync %s: %v", domain.ErrStorageIO, tmpPath, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: close %s: %v", domain.ErrStorageIO, tmpPath, err)
	}
	if err := os.Rename(tmpPath, b.path(name)); err != nil {
		return fmt.Errorf("%w: replace %s: %v", domain.ErrStorageIO, b.path(name), err)
	}
	return nil
}
