// Package store persists scan records to a SQLite database.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/bamsammich/fsindex/internal/record"
	"github.com/bamsammich/fsindex/internal/stats"
)

// Table is the name of the record table.
const Table = "FilesystemMetadata"

// Columns lists the record table columns in storage order.
var Columns = []string{
	"File Name",
	"Path",
	"Full Path",
	"File Size",
	"File Owner",
	"File Extension",
	"Is Directory",
	"Is Hidden",
	"Depth",
	"File ID",
	"Link Type",
	"Link Target",
	"Creation Time",
	"Last Access Time",
	"Last Modified Time",
}

var (
	// ErrCommitted is returned by Add and Commit once Commit has run.
	ErrCommitted = errors.New("records already committed")
	// ErrReadOnly is returned when writing to a database opened with Open.
	ErrReadOnly = errors.New("database opened read-only")
)

// Meta describes the scan that produced a database.
type Meta struct {
	ScanID     string
	Root       string
	MaxDepth   int
	SkipHidden bool
	Started    time.Time
}

// DB buffers records during a scan and writes them in a single
// transaction on Commit.
type DB struct {
	db       *sql.DB
	path     string
	writable bool

	mu        sync.Mutex
	pending   []record.FileRecord
	committed bool
}

// Create replaces any database at path and initializes the schema.
func Create(path string, m Meta) (*DB, error) {
	for _, p := range []string{path, path + "-journal", path + "-wal", path + "-shm"} {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("remove existing database: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	s := &DB{db: db, path: path, writable: true}
	if err := s.init(m); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Open opens an existing database for Summary. Writes through the
// returned DB fail with ErrReadOnly.
func Open(path string) (*DB, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	var name string
	err = db.QueryRow("SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", Table).Scan(&name)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("%s is not a scan database: %w", path, err)
	}
	return &DB{db: db, path: path}, nil
}

func (s *DB) init(m Meta) error {
	_, err := s.db.Exec(`
		CREATE TABLE ` + quote(Table) + ` (
			"File Name"          TEXT    NOT NULL,
			"Path"               TEXT    NOT NULL,
			"Full Path"          TEXT    NOT NULL,
			"File Size"          INTEGER NOT NULL,
			"File Owner"         TEXT,
			"File Extension"     TEXT,
			"Is Directory"       BOOLEAN NOT NULL,
			"Is Hidden"          BOOLEAN NOT NULL,
			"Depth"              INTEGER NOT NULL,
			"File ID"            TEXT,
			"Link Type"          TEXT    NOT NULL,
			"Link Target"        TEXT,
			"Creation Time"      TIMESTAMP,
			"Last Access Time"   TIMESTAMP,
			"Last Modified Time" TIMESTAMP
		);
		CREATE TABLE scan_meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("create tables: %w", err)
	}

	return s.putMeta(context.Background(), map[string]string{
		"scan_id":     m.ScanID,
		"root":        m.Root,
		"max_depth":   strconv.Itoa(m.MaxDepth),
		"skip_hidden": strconv.FormatBool(m.SkipHidden),
		"started":     m.Started.Format(time.RFC3339Nano),
	})
}

// Add buffers rec for the commit. Records keep their arrival order.
func (s *DB) Add(rec record.FileRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.writable {
		return ErrReadOnly
	}
	if s.committed {
		return ErrCommitted
	}
	s.pending = append(s.pending, rec)
	return nil
}

// Commit writes every buffered record in one transaction. It runs at most
// once; later calls return ErrCommitted even if the first one failed.
func (s *DB) Commit(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.writable {
		return ErrReadOnly
	}
	if s.committed {
		return ErrCommitted
	}
	s.committed = true

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, insertSQL())
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for _, r := range s.pending {
		if _, err := stmt.ExecContext(ctx,
			r.Name,
			r.ParentPath,
			r.FullPath,
			r.Size,
			r.StoredOwner(),
			r.Extension,
			r.IsDirectory,
			r.IsHidden,
			r.Depth,
			r.StoredFileID(),
			r.LinkType.String(),
			r.StoredLinkTarget(),
			nullTime(r.CreationTime),
			nullTime(r.LastAccessTime),
			nullTime(r.LastModifiedTime),
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("insert %s: %w", r.FullPath, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	s.pending = nil
	return nil
}

// Finish records how the scan ended.
func (s *DB) Finish(ctx context.Context, interrupted bool, snap stats.Snapshot) error {
	if !s.writable {
		return ErrReadOnly
	}
	return s.putMeta(ctx, map[string]string{
		"finished":    time.Now().Format(time.RFC3339Nano),
		"interrupted": strconv.FormatBool(interrupted),
		"nodes":       strconv.FormatInt(snap.Nodes, 10),
		"dirs":        strconv.FormatInt(snap.Dirs, 10),
		"skipped":     strconv.FormatInt(snap.Skipped, 10),
		"errors":      strconv.FormatInt(snap.Errors, 10),
	})
}

// Path returns the database file path.
func (s *DB) Path() string { return s.path }

// Close closes the database. Uncommitted records are discarded.
func (s *DB) Close() error {
	return s.db.Close()
}

func (s *DB) putMeta(ctx context.Context, kv map[string]string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	for k, v := range kv {
		if _, err := tx.ExecContext(ctx,
			"INSERT OR REPLACE INTO scan_meta (key, value) VALUES (?, ?)", k, v); err != nil {
			tx.Rollback()
			return fmt.Errorf("store meta %s: %w", k, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit meta: %w", err)
	}
	return nil
}

func insertSQL() string {
	cols := make([]string, len(Columns))
	for i, c := range Columns {
		cols[i] = quote(c)
	}
	return "INSERT INTO " + quote(Table) + " (" + strings.Join(cols, ", ") +
		") VALUES (?" + strings.Repeat(", ?", len(Columns)-1) + ")"
}

func quote(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

func nullTime(o record.Opt[time.Time]) sql.NullTime {
	t, ok := o.Get()
	return sql.NullTime{Time: t, Valid: ok}
}
