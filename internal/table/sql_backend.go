package table

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"

	"coleta-seletiva/internal/domain"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS record_tables (
		name TEXT PRIMARY KEY,
		seq  BIGINT NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS records (
		table_name TEXT    NOT NULL,
		position   INTEGER NOT NULL,
		payload    TEXT    NOT NULL,
		PRIMARY KEY (table_name, position)
	)`,
}

// SQLBackend stores snapshots in postgres or sqlite. Each Update is one
// transaction that starts by writing the table's record_tables row, which
// takes the row lock on postgres and the database write lock on sqlite.
type SQLBackend struct {
	db *sqlx.DB
}

func NewSQLBackend(db *sqlx.DB) *SQLBackend {
	return &SQLBackend{db: db}
}

func (b *SQLBackend) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := b.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("%w: migrate: %v", domain.ErrStorageIO, err)
		}
	}
	return nil
}

type queryer interface {
	sqlx.QueryerContext
	Rebind(query string) string
}

type snapshotRow struct {
	Seq     int64          `db:"seq"`
	Payload sql.NullString `db:"payload"`
}

const selectSnapshot = `
	SELECT t.seq, r.payload
	FROM record_tables t
	LEFT JOIN records r ON r.table_name = t.name
	WHERE t.name = ?
	ORDER BY r.position`

func loadSnapshot(ctx context.Context, q queryer, name string) (Snapshot, error) {
	var rows []snapshotRow
	if err := sqlx.SelectContext(ctx, q, &rows, q.Rebind(selectSnapshot), name); err != nil {
		return Snapshot{}, fmt.Errorf("%w: load %s: %v", domain.ErrStorageIO, name, err)
	}
	if len(rows) == 0 {
		return Snapshot{}, nil
	}

	snap := Snapshot{Seq: rows[0].Seq, Exists: true, Rows: make([]json.RawMessage, 0, len(rows))}
	for _, r := range rows {
		if r.Payload.Valid {
			snap.Rows = append(snap.Rows, json.RawMessage(r.Payload.String))
		}
	}
	return snap, nil
}

func (b *SQLBackend) Read(ctx context.Context, name string) (Snapshot, error) {
	return loadSnapshot(ctx, b.db, name)
}

func (b *SQLBackend) Update(ctx context.Context, name string, fn func(s *Snapshot) (bool, error)) error {
	tx, err := b.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin: %v", domain.ErrStorageIO, err)
	}
	defer tx.Rollback()

	exists, err := b.lock(ctx, tx, name)
	if err != nil {
		return err
	}

	snap := Snapshot{}
	if exists {
		if snap, err = loadSnapshot(ctx, tx, name); err != nil {
			return err
		}
	}

	changed, err := fn(&snap)
	if err != nil {
		return err
	}
	if !changed {
		if !exists {
			// Keep the table absent so the next access still seeds it.
			return nil
		}
		return tx.Commit()
	}
	if err := b.store(ctx, tx, name, &snap); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit %s: %v", domain.ErrStorageIO, name, err)
	}
	return nil
}

// lock reports whether the table existed before this transaction.
func (b *SQLBackend) lock(ctx context.Context, tx *sqlx.Tx, name string) (bool, error) {
	touch := tx.Rebind(`UPDATE record_tables SET seq = seq WHERE name = ?`)

	res, err := tx.ExecContext(ctx, touch, name)
	if err != nil {
		return false, fmt.Errorf("%w: lock %s: %v", domain.ErrStorageIO, name, err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return true, nil
	}

	res, err = tx.ExecContext(ctx, tx.Rebind(`INSERT INTO record_tables (name, seq) VALUES (?, 0) ON CONFLICT (name) DO NOTHING`), name)
	if err != nil {
		return false, fmt.Errorf("%w: create %s: %v", domain.ErrStorageIO, name, err)
	}
	if n, _ := res.RowsAffected(); n == 1 {
		return false, nil
	}

	// Another writer created the row first; wait for its lock.
	if _, err := tx.ExecContext(ctx, touch, name); err != nil {
		return false, fmt.Errorf("%w: lock %s: %v", domain.ErrStorageIO, name, err)
	}
	return true, nil
}

func (b *SQLBackend) store(ctx context.Context, tx *sqlx.Tx, name string, snap *Snapshot) error {
	if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM records WHERE table_name = ?`), name); err != nil {
		return fmt.Errorf("%w: clear %s: %v", domain.ErrStorageIO, name, err)
	}

	stmt, err := tx.PreparexContext(ctx, tx.Rebind(`INSERT INTO records (table_name, position, payload) VALUES (?, ?, ?)`))
	if err != nil {
		return fmt.Errorf("%w: prepare %s: %v", domain.ErrStorageIO, name, err)
	}
	defer stmt.Close()

	for i, row := range snap.Rows {
		if _, err := stmt.ExecContext(ctx, name, i, string(row)); err != nil {
			return fmt.Errorf("%w: insert %s row %d: %v", domain.ErrStorageIO, name, i, err)
		}
	}

	if _, err := tx.ExecContext(ctx, tx.Rebind(`UPDATE record_tables SET seq = ? WHERE name = ?`), snap.Seq, name); err != nil {
		return fmt.Errorf("%w: update seq %s: %v", domain.ErrStorageIO, name, err)
	}
	return nil
}
