// Package catalog stores resolved schema definitions in a queryable SQLite
// database. The default build uses the pure Go driver (modernc.org/sqlite);
// the cgo_sqlite build tag switches to mattn/go-sqlite3.
package catalog

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/FocuswithJustin/dbdef/core/dbd"
)

// schema is applied on every Open; all statements are idempotent.
const schema = `
CREATE TABLE IF NOT EXISTS imports (
	id         TEXT PRIMARY KEY,
	created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS files (
	id        INTEGER PRIMARY KEY AUTOINCREMENT,
	import_id TEXT NOT NULL REFERENCES imports(id),
	name      TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS definitions (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	file_id     INTEGER NOT NULL REFERENCES files(id),
	seq         INTEGER NOT NULL,
	fingerprint TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS builds (
	definition_id INTEGER NOT NULL REFERENCES definitions(id),
	kind          TEXT NOT NULL CHECK (kind IN ('exact', 'range')),
	ver_from      TEXT NOT NULL,
	ver_to        TEXT
);

CREATE TABLE IF NOT EXISTS layouts (
	definition_id INTEGER NOT NULL REFERENCES definitions(id),
	layout        TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS entries (
	definition_id  INTEGER NOT NULL REFERENCES definitions(id),
	seq            INTEGER NOT NULL,
	name           TEXT NOT NULL,
	type           TEXT NOT NULL,
	primary_key    INTEGER NOT NULL,
	inline         INTEGER NOT NULL,
	relation       INTEGER NOT NULL,
	verified       INTEGER NOT NULL,
	comment        TEXT NOT NULL,
	column_comment TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_definitions_fingerprint ON definitions(fingerprint);
CREATE INDEX IF NOT EXISTS idx_entries_name ON entries(name);
`

// Catalog is an open schema catalog database.
type Catalog struct {
	db *sql.DB
}

// ImportStats summarizes one import batch.
type ImportStats struct {
	Files       int
	Definitions int
	Entries     int
}

// Open opens (creating if necessary) a catalog database at path.
func Open(path string) (*Catalog, error) {
	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create catalog schema: %w", err)
	}
	return &Catalog{db: db}, nil
}

// Close closes the underlying database.
func (c *Catalog) Close() error {
	return c.db.Close()
}

// DB exposes the underlying handle for ad-hoc queries.
func (c *Catalog) DB() *sql.DB {
	return c.db
}

// DriverType identifies the SQLite implementation in use, "purego" or
// "cgo".
func DriverType() string {
	return driverType
}

// Import stores a set of resolved files as one batch and returns the batch
// ID with counts of what was written. The whole batch is one transaction:
// either every file lands or none does.
func (c *Catalog) Import(files []*dbd.ResolvedFile) (string, *ImportStats, error) {
	batchID := uuid.NewString()

	tx, err := c.db.Begin()
	if err != nil {
		return "", nil, fmt.Errorf("begin import: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`INSERT INTO imports (id, created_at) VALUES (?, ?)`,
		batchID, time.Now().UTC().Format(time.RFC3339),
	); err != nil {
		return "", nil, fmt.Errorf("insert import: %w", err)
	}

	stats := &ImportStats{}
	for _, f := range files {
		if err := importFile(tx, batchID, f, stats); err != nil {
			return "", nil, fmt.Errorf("import %s: %w", f.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", nil, fmt.Errorf("commit import: %w", err)
	}
	return batchID, stats, nil
}

func importFile(tx *sql.Tx, batchID string, f *dbd.ResolvedFile, stats *ImportStats) error {
	res, err := tx.Exec(
		`INSERT INTO files (import_id, name) VALUES (?, ?)`,
		batchID, f.Name,
	)
	if err != nil {
		return fmt.Errorf("insert file: %w", err)
	}
	fileID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("file id: %w", err)
	}
	stats.Files++

	for seq := range f.Definitions {
		if err := importDefinition(tx, fileID, seq, &f.Definitions[seq], stats); err != nil {
			return err
		}
	}
	return nil
}

func importDefinition(tx *sql.Tx, fileID int64, seq int, d *dbd.ResolvedDefinition, stats *ImportStats) error {
	res, err := tx.Exec(
		`INSERT INTO definitions (file_id, seq, fingerprint) VALUES (?, ?, ?)`,
		fileID, seq, d.Fingerprint(),
	)
	if err != nil {
		return fmt.Errorf("insert definition: %w", err)
	}
	defID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("definition id: %w", err)
	}
	stats.Definitions++

	for _, v := range d.Versions {
		if _, err := tx.Exec(
			`INSERT INTO builds (definition_id, kind, ver_from, ver_to) VALUES (?, 'exact', ?, NULL)`,
			defID, v.String(),
		); err != nil {
			return fmt.Errorf("insert build: %w", err)
		}
	}
	for _, r := range d.Ranges {
		if _, err := tx.Exec(
			`INSERT INTO builds (definition_id, kind, ver_from, ver_to) VALUES (?, 'range', ?, ?)`,
			defID, r.From.String(), r.To.String(),
		); err != nil {
			return fmt.Errorf("insert build range: %w", err)
		}
	}
	for _, l := range d.Layouts {
		if _, err := tx.Exec(
			`INSERT INTO layouts (definition_id, layout) VALUES (?, ?)`,
			defID, l.String(),
		); err != nil {
			return fmt.Errorf("insert layout: %w", err)
		}
	}

	for i := range d.Entries {
		e := &d.Entries[i]
		if _, err := tx.Exec(
			`INSERT INTO entries
			 (definition_id, seq, name, type, primary_key, inline, relation, verified, comment, column_comment)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			defID, i, e.Name, e.Type.String(),
			boolInt(e.PrimaryKey), boolInt(e.Inline), boolInt(e.Relation), boolInt(e.Verified),
			e.Comment, e.ColumnComment,
		); err != nil {
			return fmt.Errorf("insert entry: %w", err)
		}
		stats.Entries++
	}
	return nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
