package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite3 driver

	"media-resolver/internal/logging"
	"media-resolver/internal/mediaitem"
)

// Default timeout for database operations
const defaultTimeout = 5 * time.Second

// ErrNotFound is returned when the catalog holds no entry for a path.
var ErrNotFound = errors.New("catalog entry not found")

// Entry is the metadata stored for one physical file. Unknown fields use the
// mediaitem sentinels.
type Entry struct {
	Path      string    `json:"path"`
	Title     string    `json:"title,omitempty"`
	Artist    string    `json:"artist,omitempty"`
	Album     string    `json:"album,omitempty"`
	Comment   string    `json:"comment,omitempty"`
	Genre     string    `json:"genre,omitempty"`
	Year      int       `json:"year"`
	Track     int       `json:"track"`
	Duration  int64     `json:"duration"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EntryFromItem returns the catalog entry for a whole-file item. ok is false
// for ranged items, which the catalog does not store.
func EntryFromItem(item *mediaitem.Item) (e Entry, ok bool) {
	if item == nil || item.HasRange {
		return Entry{}, false
	}
	return Entry{
		Path:     item.URL,
		Title:    item.Title,
		Artist:   item.Artist,
		Album:    item.Album,
		Comment:  item.Comment,
		Genre:    item.Genre,
		Year:     item.Year,
		Track:    item.Track,
		Duration: item.Duration,
	}, true
}

// HasTag reports whether any text or numeric tag is known.
func (e *Entry) HasTag() bool {
	return e.Title != "" || e.Artist != "" || e.Album != "" || e.Comment != "" ||
		e.Genre != "" || e.Year >= 0 || e.Track >= 0
}

// HasProperties reports whether the duration is known.
func (e *Entry) HasProperties() bool {
	return e.Duration >= 0
}

// Status summarizes the catalog.
type Status struct {
	Path        string    `json:"path"`
	Entries     int64     `json:"entries"`
	LastUpdated time.Time `json:"last_updated,omitempty"`
}

// Store is the SQLite metadata catalog.
type Store struct {
	db     *sql.DB
	dbPath string
	mu     sync.Mutex
}

// Open opens or creates the catalog at dbPath. The parent directory must
// exist and be writable.
func Open(ctx context.Context, dbPath string) (*Store, error) {
	logging.Debug("Catalog path: %s", dbPath)

	if err := diagnoseDatabasePermissions(dbPath); err != nil {
		logging.Warn("Catalog permission diagnostics: %v", err)
	}

	// busy_timeout helps prevent "database is locked" errors
	connStr := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_temp_store=MEMORY&_busy_timeout=5000", dbPath)

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logging.Error("failed to close catalog after ping failure: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to connect to catalog: %w", err)
	}

	db.SetMaxOpenConns(8)
	db.SetMaxIdleConns(4)
	db.SetConnMaxLifetime(time.Hour)

	s := &Store{db: db, dbPath: dbPath}
	if err := s.initialize(ctx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logging.Error("failed to close catalog after initialization failure: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to initialize catalog schema: %w", err)
	}

	logging.Debug("Catalog opened at %s", dbPath)
	return s, nil
}

func (s *Store) initialize(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS entries (
		path TEXT PRIMARY KEY,
		title TEXT NOT NULL DEFAULT '',
		artist TEXT NOT NULL DEFAULT '',
		album TEXT NOT NULL DEFAULT '',
		comment TEXT NOT NULL DEFAULT '',
		genre TEXT NOT NULL DEFAULT '',
		year INTEGER NOT NULL DEFAULT -1,
		track INTEGER NOT NULL DEFAULT -1,
		duration INTEGER NOT NULL DEFAULT -1,
		updated_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now'))
	);

	CREATE INDEX IF NOT EXISTS idx_entries_artist ON entries(artist COLLATE NOCASE);
	CREATE INDEX IF NOT EXISTS idx_entries_album ON entries(album COLLATE NOCASE);
	`
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// Path returns the database file path.
func (s *Store) Path() string { return s.dbPath }

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Key returns the key an entry for path is stored under: the absolute,
// cleaned path.
func Key(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}

const upsertSQL = `
	INSERT INTO entries (path, title, artist, album, comment, genre, year, track, duration, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(path) DO UPDATE SET
		title = excluded.title,
		artist = excluded.artist,
		album = excluded.album,
		comment = excluded.comment,
		genre = excluded.genre,
		year = excluded.year,
		track = excluded.track,
		duration = excluded.duration,
		updated_at = excluded.updated_at
`

// Put inserts or replaces the entry for e.Path.
func (s *Store) Put(ctx context.Context, e Entry) error {
	_, err := s.PutMany(ctx, []Entry{e})
	return err
}

// PutMany stores entries in one transaction and returns how many were
// written.
func (s *Store) PutMany(ctx context.Context, entries []Entry) (int, error) {
	start := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		recordQuery("put", start, err)
		return 0, err
	}

	n, err := putEntries(ctx, tx, entries)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			err = errors.Join(err, fmt.Errorf("rollback also failed: %w", rbErr))
		}
		recordQuery("put", start, err)
		return 0, err
	}
	err = tx.Commit()
	recordQuery("put", start, err)
	if err != nil {
		return 0, err
	}
	return n, nil
}

func putEntries(ctx context.Context, tx *sql.Tx, entries []Entry) (int, error) {
	stmt, err := tx.PrepareContext(ctx, upsertSQL)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	now := time.Now().Unix()
	for i, e := range entries {
		if e.Path == "" {
			return i, errors.New("catalog entry without path")
		}
		_, err := stmt.ExecContext(ctx, Key(e.Path), e.Title, e.Artist, e.Album, e.Comment, e.Genre,
			e.Year, e.Track, e.Duration, now)
		if err != nil {
			return i, fmt.Errorf("store %s: %w", e.Path, err)
		}
	}
	return len(entries), nil
}

// Get returns the entry for path or ErrNotFound.
func (s *Store) Get(ctx context.Context, path string) (*Entry, error) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var e Entry
	var updated int64
	err := s.db.QueryRowContext(ctx, `
		SELECT path, title, artist, album, comment, genre, year, track, duration, updated_at
		FROM entries WHERE path = ?
	`, Key(path)).Scan(&e.Path, &e.Title, &e.Artist, &e.Album, &e.Comment, &e.Genre,
		&e.Year, &e.Track, &e.Duration, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		recordQuery("get", start, nil)
		return nil, ErrNotFound
	}
	recordQuery("get", start, err)
	if err != nil {
		return nil, err
	}
	e.UpdatedAt = time.Unix(updated, 0)
	return &e, nil
}

// Delete removes the entry for path. It reports whether an entry existed.
func (s *Store) Delete(ctx context.Context, path string) (bool, error) {
	start := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM entries WHERE path = ?`, Key(path))
	recordQuery("delete", start, err)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Clear removes every entry and returns how many were removed.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	start := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM entries`)
	recordQuery("clear", start, err)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Status returns the entry count and the most recent update time.
func (s *Store) Status(ctx context.Context) (Status, error) {
	start := time.Now()
	st := Status{Path: s.dbPath}

	var last sql.NullInt64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*), MAX(updated_at) FROM entries`).Scan(&st.Entries, &last)
	recordQuery("status", start, err)
	if err != nil {
		return st, err
	}
	if last.Valid {
		st.LastUpdated = time.Unix(last.Int64, 0)
	}
	return st, nil
}

// Count returns the number of entries.
func (s *Store) Count(ctx context.Context) (int64, error) {
	st, err := s.Status(ctx)
	return st.Entries, err
}

// diagnoseDatabasePermissions checks database directory and file permissions
func diagnoseDatabasePermissions(dbPath string) error {
	dir := filepath.Dir(dbPath)

	dirInfo, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("cannot stat catalog directory: %w", err)
	}
	logging.Debug("Catalog directory: %s (mode: %v)", dir, dirInfo.Mode())

	if dbInfo, err := os.Stat(dbPath); err == nil {
		logging.Debug("Catalog file exists: %s (mode: %v, size: %d bytes)", dbPath, dbInfo.Mode(), dbInfo.Size())
		if dbInfo.Mode().Perm()&0o200 == 0 {
			logging.Warn("Catalog file is read-only! Mode: %v", dbInfo.Mode())
		}
	}

	// A read-only WAL file makes every write fail.
	walPath := dbPath + "-wal"
	if walInfo, err := os.Stat(walPath); err == nil && walInfo.Mode().Perm()&0o200 == 0 {
		logging.Warn("WAL file is read-only! Mode: %v - this will cause write failures", walInfo.Mode())
		if chmodErr := os.Chmod(walPath, 0o600); chmodErr != nil {
			logging.Error("Failed to fix WAL file permissions: %v", chmodErr)
		} else {
			logging.Info("Fixed WAL file permissions")
		}
	}
	return nil
}

// ImportItems stores the whole-file items among items and returns how many
// were written. Ranged items are skipped.
func (s *Store) ImportItems(ctx context.Context, items []*mediaitem.Item) (int, error) {
	entries := make([]Entry, 0, len(items))
	for _, item := range items {
		if e, ok := EntryFromItem(item); ok {
			entries = append(entries, e)
		}
	}
	if len(entries) == 0 {
		return 0, nil
	}
	return s.PutMany(ctx, entries)
}
