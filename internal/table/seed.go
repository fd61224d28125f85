package table

import (
	"fmt"
	"io/fs"

	"gopkg.in/yaml.v3"

	"coleta-seletiva/internal/domain"
)

// YAMLSeed reads the seed rows for a table from a YAML list in fsys.
// The file is parsed on every call so each materialization gets fresh values.
func YAMLSeed[T Record](fsys fs.FS, path string) SeedFunc[T] {
	return func() ([]T, error) {
		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return nil, fmt.Errorf("read seed %s: %w", path, err)
		}

		var rows []T
		if err := yaml.Unmarshal(data, &rows); err != nil {
			return nil, fmt.Errorf("%w: parse seed %s: %v", domain.ErrStorageFormat, path, err)
		}
		for i, row := range rows {
			if isNil(row) {
				return nil, fmt.Errorf("%w: seed %s row %d: null record", domain.ErrStorageFormat, path, i)
			}
		}
		if rows == nil {
			rows = []T{}
		}
		return rows, nil
	}
}
