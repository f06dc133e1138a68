package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	"github.com/mwantia/dualcli/settings"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// Store persists settings in a SQLite table keyed by application name,
// so several applications can share one database file.
type Store struct {
	mu  sync.Mutex
	db  *sql.DB
	app string
}

// NewStore opens (or creates) the database at dbPath.
// The dbPath can be ":memory:" for an in-memory database or a file path.
func NewStore(dbPath, app string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	// An in-memory database only lives as long as its connection
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, err
	}

	store := &Store{
		db:  db,
		app: app,
	}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

func (s *Store) initSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS dualcli_settings (
			app           TEXT PRIMARY KEY,
			log_level     TEXT NOT NULL,
			detailed_logs INTEGER NOT NULL DEFAULT 0,
			update_time   INTEGER NOT NULL
		)
	`)
	return err
}

func (s *Store) Load(ctx context.Context) (*settings.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result settings.Settings
	var detailed int
	err := s.db.QueryRowContext(ctx, `
		SELECT log_level, detailed_logs FROM dualcli_settings WHERE app = ?
	`, s.app).Scan(&result.LogLevel, &detailed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, settings.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	result.DetailedLogs = detailed != 0
	return &result, nil
}

func (s *Store) Save(ctx context.Context, value settings.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	detailed := 0
	if value.DetailedLogs {
		detailed = 1
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO dualcli_settings (app, log_level, detailed_logs, update_time)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(app) DO UPDATE SET
			log_level = excluded.log_level,
			detailed_logs = excluded.detailed_logs,
			update_time = excluded.update_time
	`, s.app, value.LogLevel, detailed, time.Now().Unix())
	return err
}

func (s *Store) Close() error {
	return s.db.Close()
}
