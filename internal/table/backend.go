package table

import (
	"context"
	"encoding/json"
)

// Snapshot is the persisted form of one table.
type Snapshot struct {
	Seq    int64             `json:"seq"`
	Rows   []json.RawMessage `json:"rows"`
	Exists bool              `json:"-"`
}

// Backend stores named snapshots.
//
// Update must hold an exclusive lock on name from the moment it reads the
// snapshot until the write triggered by fn returning true has completed.
// Read may run without the lock but must never observe a partial write.
type Backend interface {
	Read(ctx context.Context, name string) (Snapshot, error)
	Update(ctx context.Context, name string, fn func(s *Snapshot) (bool, error)) error
}
