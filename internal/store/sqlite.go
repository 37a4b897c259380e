// ABOUTME: SQLite implementation of ConfigStore using modernc.org/sqlite
// ABOUTME: Stores each board as a JSON document with a version column checked on write

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/2389/homarr-board/internal/board"
)

// SQLiteStore implements ConfigStore using SQLite
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger

	// mu serialises read-modify-write cycles so the mutator and guard of one
	// update never interleave with another update.
	mu sync.Mutex
}

// NewSQLiteStore creates a new SQLite store at the given path.
// The schema is automatically created if it doesn't exist.
// Parent directories are created if needed.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	logger := slog.Default().With("component", "store")

	if path != ":memory:" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// A single connection keeps ":memory:" databases shared and matches
	// SQLite's single-writer model.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	s := &SQLiteStore{
		db:     db,
		logger: logger,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	logger.Info("SQLite store initialized", "path", path)
	return s, nil
}

// createSchema creates the database tables if they don't exist
func (s *SQLiteStore) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS boards (
			name       TEXT PRIMARY KEY,
			version    INTEGER NOT NULL,
			document   TEXT NOT NULL,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_boards_updated ON boards(updated_at DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// runMigrations applies schema migrations for existing databases.
// These are idempotent - safe to run multiple times.
func (s *SQLiteStore) runMigrations() error {
	migrations := []struct {
		check    string
		apply    string
		backfill string
		column   string
	}{
		{
			check:    `SELECT 1 FROM pragma_table_info('boards') WHERE name = 'app_count'`,
			apply:    `ALTER TABLE boards ADD COLUMN app_count INTEGER NOT NULL DEFAULT 0`,
			backfill: `UPDATE boards SET app_count = COALESCE(json_array_length(document, '$.apps'), 0)`,
			column:   "app_count",
		},
		{
			check:    `SELECT 1 FROM pragma_table_info('boards') WHERE name = 'widget_count'`,
			apply:    `ALTER TABLE boards ADD COLUMN widget_count INTEGER NOT NULL DEFAULT 0`,
			backfill: `UPDATE boards SET widget_count = COALESCE(json_array_length(document, '$.widgets'), 0)`,
			column:   "widget_count",
		},
	}

	for _, m := range migrations {
		var exists int
		if err := s.db.QueryRow(m.check).Scan(&exists); err == nil {
			continue
		}
		if _, err := s.db.Exec(m.apply); err != nil {
			return fmt.Errorf("adding %s column to boards: %w", m.column, err)
		}
		if _, err := s.db.Exec(m.backfill); err != nil {
			return fmt.Errorf("backfilling %s: %w", m.column, err)
		}
		s.logger.Info("applied migration", "column", m.column, "table", "boards")
	}
	return nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	s.logger.Info("closing SQLite store")
	return s.db.Close()
}

// isConstraintViolation checks if the error is a SQLite UNIQUE constraint violation
func isConstraintViolation(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "UNIQUE constraint failed") ||
		strings.Contains(errStr, "constraint failed")
}

func encodeDocument(cfg *board.Config) (string, error) {
	data, err := json.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("encoding board: %w", err)
	}
	return string(data), nil
}

func decodeDocument(doc string, version uint64) (*board.Config, error) {
	var cfg board.Config
	if err := json.Unmarshal([]byte(doc), &cfg); err != nil {
		return nil, fmt.Errorf("decoding board: %w", err)
	}
	if cfg.Apps == nil {
		cfg.Apps = []board.App{}
	}
	if cfg.Widgets == nil {
		cfg.Widgets = []board.Widget{}
	}
	cfg.Version = version
	return &cfg, nil
}

// Create inserts a new board.
// Returns ErrBoardExists if a board with the same name exists.
func (s *SQLiteStore) Create(ctx context.Context, cfg *board.Config) error {
	next, err := prepareCreate(cfg)
	if err != nil {
		return err
	}
	doc, err := encodeDocument(next)
	if err != nil {
		return err
	}

	now := time.Now().UTC().Format(time.RFC3339)
	query := `
		INSERT INTO boards (name, version, document, created_at, updated_at, app_count, widget_count)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err = s.db.ExecContext(ctx, query,
		next.Name,
		next.Version,
		doc,
		now,
		now,
		len(next.Apps),
		len(next.Widgets),
	)
	if err != nil {
		if isConstraintViolation(err) {
			return ErrBoardExists
		}
		return fmt.Errorf("inserting board: %w", err)
	}

	cfg.Version = next.Version
	s.logger.Debug("created board", "name", next.Name)
	return nil
}

// Get retrieves a board by name.
// Returns ErrNotFound if the board doesn't exist.
func (s *SQLiteStore) Get(ctx context.Context, name string) (*board.Config, error) {
	var version uint64
	var doc string

	err := s.db.QueryRowContext(ctx,
		`SELECT version, document FROM boards WHERE name = ?`, name,
	).Scan(&version, &doc)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying board: %w", err)
	}

	return decodeDocument(doc, version)
}

// List retrieves all boards ordered by name. Item counts come from the count
// columns; documents are not decoded.
func (s *SQLiteStore) List(ctx context.Context) ([]Summary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, version, app_count, widget_count, updated_at FROM boards ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("querying boards: %w", err)
	}
	defer rows.Close()

	out := []Summary{}
	for rows.Next() {
		var name, updatedAtStr string
		var version uint64
		var apps, widgets int
		if err := rows.Scan(&name, &version, &apps, &widgets, &updatedAtStr); err != nil {
			return nil, fmt.Errorf("scanning board row: %w", err)
		}
		updatedAt, err := time.Parse(time.RFC3339, updatedAtStr)
		if err != nil {
			return nil, fmt.Errorf("parsing updated_at: %w", err)
		}
		out = append(out, Summary{
			Name:      name,
			Version:   version,
			Apps:      apps,
			Widgets:   widgets,
			UpdatedAt: updatedAt,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating board rows: %w", err)
	}
	return out, nil
}

// Update runs the read-modify-write inside one transaction and writes back only
// if the stored version is still the one that was read.
func (s *SQLiteStore) Update(ctx context.Context, name string, mutate Mutator, guard Guard) (*board.Config, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var version uint64
	var doc string
	err = tx.QueryRowContext(ctx,
		`SELECT version, document FROM boards WHERE name = ?`, name,
	).Scan(&version, &doc)
	if err == sql.ErrNoRows {
		return nil, false, ErrNotFound
	}
	if err != nil {
		return nil, false, fmt.Errorf("querying board: %w", err)
	}

	prev, err := decodeDocument(doc, version)
	if err != nil {
		return nil, false, err
	}

	next, err := applyUpdate(prev, mutate, guard)
	if err != nil {
		return nil, false, err
	}
	if next == nil {
		return prev, false, nil
	}

	nextDoc, err := encodeDocument(next)
	if err != nil {
		return nil, false, err
	}

	result, err := tx.ExecContext(ctx, `
		UPDATE boards
		SET version = ?, document = ?, updated_at = ?, app_count = ?, widget_count = ?
		WHERE name = ? AND version = ?
	`,
		next.Version,
		nextDoc,
		time.Now().UTC().Format(time.RFC3339),
		len(next.Apps),
		len(next.Widgets),
		name,
		version,
	)
	if err != nil {
		return nil, false, fmt.Errorf("updating board: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, false, fmt.Errorf("getting rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, false, ErrVersionConflict
	}

	if err := tx.Commit(); err != nil {
		return nil, false, fmt.Errorf("committing update: %w", err)
	}

	s.logger.Debug("updated board", "name", name, "version", next.Version)
	return next, true, nil
}

// Delete removes a board.
// Returns ErrNotFound if the board doesn't exist.
func (s *SQLiteStore) Delete(ctx context.Context, name string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM boards WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("deleting board: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	s.logger.Debug("deleted board", "name", name)
	return nil
}
