// Package store provides SQLite persistence for favorite stories.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/abelbrown/hnreader/internal/model"
)

// ErrStoreClosed is returned by every method after Close.
var ErrStoreClosed = errors.New("store: closed")

// Store handles SQLite persistence. NOT an interface - concrete type.
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type Store struct {
	db     *sql.DB
	mu     sync.RWMutex // Protects all database operations
	closed bool

	now func() time.Time // saved_at clock, replaceable in tests
}

// Open creates a new Store with the given database path.
// Creates tables if they don't exist.
// Uses WAL mode for better concurrent read performance (file-based DBs only).
func Open(dbPath string) (*Store, error) {
	connStr := dbPath
	if dbPath == ":memory:" {
		// Shared cache so every pooled connection sees the same database.
		connStr = "file::memory:?cache=shared"
	}

	db, err := sql.Open("sqlite", connStr)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if dbPath != ":memory:" {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("enable WAL mode: %w", err)
		}
	}

	s := &Store{db: db, now: time.Now}

	if err := s.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	return s, nil
}

// createTables creates the required tables and indexes if they don't exist.
func (s *Store) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS favorites (
		id INTEGER PRIMARY KEY,
		type TEXT,
		title TEXT NOT NULL,
		url TEXT,
		text TEXT,
		by TEXT NOT NULL,
		score INTEGER NOT NULL,
		time INTEGER NOT NULL,
		descendants INTEGER,
		saved_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_favorites_time ON favorites(time DESC);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("execute schema: %w", err)
	}

	// Migration: databases created before type/text were stored.
	for _, col := range []string{"type", "text"} {
		exists, err := s.columnExists("favorites", col)
		if err != nil {
			return err
		}
		if !exists {
			if _, err := s.db.Exec("ALTER TABLE favorites ADD COLUMN " + col + " TEXT"); err != nil {
				return fmt.Errorf("add %s column: %w", col, err)
			}
		}
	}
	return nil
}

// columnExists reports whether table has column. table must be a trusted
// identifier; it cannot be bound as a parameter.
func (s *Store) columnExists(table, column string) (bool, error) {
	var count int
	query := fmt.Sprintf("SELECT COUNT(*) FROM pragma_table_info('%s') WHERE name = ?", table)
	if err := s.db.QueryRow(query, column).Scan(&count); err != nil {
		return false, fmt.Errorf("check column %s.%s: %w", table, column, err)
	}
	return count > 0, nil
}

// Close closes the database connection.
// Thread-safe: acquires write lock to prevent closing during in-flight operations.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

// Add upserts story by ID and stamps saved_at with the local clock.
// Thread-safe: acquires write lock.
func (s *Store) Add(story model.Story) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO favorites (id, type, title, url, text, by, score, time, descendants, saved_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		int64(story.ID),
		nullString(story.Type),
		story.Title,
		nullString(story.URL),
		nullString(story.Text),
		story.By,
		story.Score,
		story.Time,
		nullInt(story.Descendants),
		s.now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("add favorite %d: %w", story.ID, err)
	}
	return nil
}

// Remove deletes a favorite. Removing an absent ID is not an error.
// Thread-safe: acquires write lock.
func (s *Store) Remove(id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	if _, err := s.db.Exec("DELETE FROM favorites WHERE id = ?", int64(id)); err != nil {
		return fmt.Errorf("remove favorite %d: %w", id, err)
	}
	return nil
}

// Contains reports whether id is a favorite.
// Thread-safe: acquires read lock.
func (s *Store) Contains(id uint64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return false, ErrStoreClosed
	}

	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM favorites WHERE id = ?", int64(id)).Scan(&count); err != nil {
		return false, fmt.Errorf("check favorite %d: %w", id, err)
	}
	return count > 0, nil
}

// Count returns the number of favorites.
// Thread-safe: acquires read lock.
func (s *Store) Count() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return 0, ErrStoreClosed
	}

	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM favorites").Scan(&count); err != nil {
		return 0, fmt.Errorf("count favorites: %w", err)
	}
	return count, nil
}

// GetAll returns every favorite ordered by story creation time, newest first.
// Ordering is by the story's own time, not by when it was saved.
// Thread-safe: acquires read lock.
func (s *Store) GetAll() ([]model.Story, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	rows, err := s.db.Query(`
		SELECT id, type, title, url, text, by, score, time, descendants
		FROM favorites
		ORDER BY time DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("query favorites: %w", err)
	}
	defer rows.Close()

	var stories []model.Story
	for rows.Next() {
		var (
			story       model.Story
			id          int64
			typ         sql.NullString
			url         sql.NullString
			text        sql.NullString
			descendants sql.NullInt64
		)
		if err := rows.Scan(&id, &typ, &story.Title, &url, &text, &story.By, &story.Score, &story.Time, &descendants); err != nil {
			return nil, fmt.Errorf("scan favorite: %w", err)
		}
		story.ID = uint64(id)
		story.Type = typ.String
		story.URL = url.String
		story.Text = text.String
		if descendants.Valid {
			n := int(descendants.Int64)
			story.Descendants = &n
		}
		stories = append(stories, story)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate favorites: %w", err)
	}

	return stories, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt(n *int) sql.NullInt64 {
	if n == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*n), Valid: true}
}
