package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"mindmap-share/core"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-sqlite3"
)

const schema = `CREATE TABLE IF NOT EXISTS mindmaps (id TEXT PRIMARY KEY, data TEXT NOT NULL);`

type recordStore struct {
	dataSourceName string
	db             *sql.DB
}

func NewRecordStore(dataSourceName string) core.RecordStore {
	return &recordStore{dataSourceName: dataSourceName}
}

// Init creates the database file, its parent directory and the mindmaps
// table when they are missing. Safe to run on every startup.
func (s *recordStore) Init(ctx context.Context) error {
	if dir := databaseDir(s.dataSourceName); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", s.dataSourceName)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite allows a single writer; one connection avoids SQLITE_BUSY and
	// keeps ":memory:" databases shared.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, stmt := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		schema,
	} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return fmt.Errorf("failed to execute %q: %w", stmt, err)
		}
	}

	s.db = db
	return nil
}

func (s *recordStore) Get(ctx context.Context, id string) ([]byte, error) {
	if s.db == nil {
		return nil, core.ErrNotInitialized
	}
	var data string
	err := s.db.QueryRowContext(ctx, "SELECT data FROM mindmaps WHERE id = ?", id).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.ErrNotFound
		}
		return nil, err
	}
	return []byte(data), nil
}

func (s *recordStore) Insert(ctx context.Context, id string, data []byte) error {
	if s.db == nil {
		return core.ErrNotInitialized
	}
	_, err := s.db.ExecContext(ctx, "INSERT INTO mindmaps (id, data) VALUES (?, ?)", id, string(data))
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey {
			return core.ErrTokenConflict
		}
		return err
	}
	return nil
}

func (s *recordStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// databaseDir returns the directory holding the database file named by
// dsn, or "" for in-memory databases and bare file names.
func databaseDir(dsn string) string {
	path := strings.TrimPrefix(dsn, "file:")
	if i := strings.IndexByte(path, '?'); i >= 0 {
		if strings.Contains(path[i:], "mode=memory") {
			return ""
		}
		path = path[:i]
	}
	if path == "" || path == ":memory:" {
		return ""
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return ""
	}
	return dir
}
