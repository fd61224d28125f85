// Package table keeps whole collections of typed records behind a backend
// that serializes every read-modify-write cycle per table.
package table

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"

	"coleta-seletiva/internal/domain"
)

// Record is implemented by the pointer types stored in a Table.
type Record interface {
	RecordID() int64
	SetRecordID(id int64)
}

// SeedFunc produces the rows a table is materialized with on first access.
type SeedFunc[T Record] func() ([]T, error)

type Table[T Record] struct {
	name    string
	backend Backend
	seed    SeedFunc[T]
}

func New[T Record](backend Backend, name string, seed SeedFunc[T]) *Table[T] {
	return &Table[T]{name: name, backend: backend, seed: seed}
}

func (t *Table[T]) Name() string {
	return t.name
}

// LoadAll returns every record. A table that does not exist yet is created
// with its seed rows, which are then returned.
func (t *Table[T]) LoadAll(ctx context.Context) ([]T, error) {
	snap, err := t.backend.Read(ctx, t.name)
	if err != nil {
		return nil, err
	}
	if snap.Exists {
		return t.decode(snap.Rows)
	}

	var rows []T
	err = t.backend.Update(ctx, t.name, func(s *Snapshot) (bool, error) {
		current, err := t.current(s)
		if err != nil {
			return false, err
		}
		rows = current
		if s.Exists {
			return false, nil
		}
		return true, t.encodeInto(s, current, 0)
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ReplaceAll overwrites the table with rows. The id counter never moves backwards.
func (t *Table[T]) ReplaceAll(ctx context.Context, rows []T) error {
	return t.backend.Update(ctx, t.name, func(s *Snapshot) (bool, error) {
		return true, t.encodeInto(s, rows, s.Seq)
	})
}

// Mutate runs fn while holding the table lock and persists what it returns.
// Nothing is written when fn fails.
func (t *Table[T]) Mutate(ctx context.Context, fn func(rows []T, ids *Allocator) ([]T, error)) error {
	return t.backend.Update(ctx, t.name, func(s *Snapshot) (bool, error) {
		rows, err := t.current(s)
		if err != nil {
			return false, err
		}

		ids := &Allocator{seq: max(s.Seq, NextID(rows)-1)}
		out, err := fn(rows, ids)
		if err != nil {
			return false, err
		}
		return true, t.encodeInto(s, out, ids.seq)
	})
}

func (t *Table[T]) current(s *Snapshot) ([]T, error) {
	if s.Exists {
		return t.decode(s.Rows)
	}
	if t.seed == nil {
		return []T{}, nil
	}
	rows, err := t.seed()
	if err != nil {
		return nil, fmt.Errorf("seed table %s: %w", t.name, err)
	}
	return rows, nil
}

func (t *Table[T]) decode(raw []json.RawMessage) ([]T, error) {
	rows := make([]T, 0, len(raw))
	for i, r := range raw {
		var row T
		if err := json.Unmarshal(r, &row); err != nil {
			return nil, fmt.Errorf("%w: table %s row %d: %v", domain.ErrStorageFormat, t.name, i, err)
		}
		if isNil(row) {
			return nil, fmt.Errorf("%w: table %s row %d: null record", domain.ErrStorageFormat, t.name, i)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (t *Table[T]) encodeInto(s *Snapshot, rows []T, seq int64) error {
	raw := make([]json.RawMessage, 0, len(rows))
	for _, row := range rows {
		b, err := json.Marshal(row)
		if err != nil {
			return fmt.Errorf("%w: encode table %s: %v", domain.ErrStorageFormat, t.name, err)
		}
		raw = append(raw, b)
	}
	s.Rows = raw
	s.Seq = max(seq, NextID(rows)-1)
	return nil
}

// isNil reports whether a decoded record is absent, as a JSON or YAML null
// leaves a nil pointer behind.
func isNil[T Record](row T) bool {
	v := reflect.ValueOf(row)
	if !v.IsValid() {
		return true
	}
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice:
		return v.IsNil()
	}
	return false
}

// NextID is the max-plus-one policy: 1 for an empty table.
func NextID[T Record](rows []T) int64 {
	var highest int64
	for _, row := range rows {
		if id := row.RecordID(); id > highest {
			highest = id
		}
	}
	return highest + 1
}

// Allocator hands out ids inside a Mutate cycle. Its counter is persisted with
// the rows, so ids stay unique across concurrent writers and after deletes.
type Allocator struct {
	seq int64
}

func (a *Allocator) Next() int64 {
	a.seq++
	return a.seq
}

// Assign gives rec the next id.
func (a *Allocator) Assign(rec Record) int64 {
	id := a.Next()
	rec.SetRecordID(id)
	return id
}
