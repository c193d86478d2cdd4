package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const (
	// Fixed-width so that stored timestamps sort lexically in time order.
	timeFormat = "2006-01-02T15:04:05.000000000Z07:00"
	memoryPath = ":memory:"
)

var migrations = []string{
	`CREATE TABLE deliveries (
		id TEXT PRIMARY KEY,
		listener TEXT NOT NULL,
		payload TEXT NOT NULL,
		created_at TEXT NOT NULL
	)`,
	`CREATE INDEX idx_deliveries_listener_created ON deliveries (listener, created_at)`,
}

var _ Store = (*SQLiteStore)(nil)

// SQLiteStore implements Store using modernc.org/sqlite (pure Go, zero CGO).
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) a SQLite database and runs migrations.
// The database file is created with 0600 permissions and its parent directory with 0700.
// The special path ":memory:" opens a private in-memory database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	dsn := memoryPath
	if path != memoryPath {
		if err := prepareFile(path); err != nil {
			return nil, err
		}
		dsn = path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite handles one writer at a time; also pins :memory: to one connection
	db.SetMaxIdleConns(1)

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

func prepareFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating database directory: %w", err)
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0600)
		if err != nil {
			return fmt.Errorf("creating database file: %w", err)
		}
		_ = f.Close()
	}
	return nil
}

func (s *SQLiteStore) migrate() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at TEXT NOT NULL DEFAULT (datetime('now'))
	)`)
	if err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	var current int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version")
	if err := row.Scan(&current); err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}

	for i := current; i < len(migrations); i++ {
		slog.Info("applying migration", "version", i+1)
		if _, err := s.db.Exec(migrations[i]); err != nil {
			return fmt.Errorf("migration %d: %w", i+1, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_version (version) VALUES (?)", i+1); err != nil {
			return fmt.Errorf("recording migration %d: %w", i+1, err)
		}
	}

	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// --- Deliveries ---

func (s *SQLiteStore) RecordDelivery(d *Delivery) error {
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.Exec(`INSERT INTO deliveries (id, listener, payload, created_at) VALUES (?, ?, ?, ?)`,
		d.ID, d.Listener, d.Payload, formatTime(d.CreatedAt))
	if err != nil {
		return fmt.Errorf("inserting delivery: %w", err)
	}
	return nil
}

// ListDeliveries returns matching deliveries, oldest first.
func (s *SQLiteStore) ListDeliveries(f DeliveryFilter) ([]Delivery, error) {
	query := "SELECT id, listener, payload, created_at FROM deliveries WHERE 1=1"
	var args []any

	if f.Listener != "" {
		query += " AND listener = ?"
		args = append(args, f.Listener)
	}
	if !f.Since.IsZero() {
		query += " AND created_at >= ?"
		args = append(args, formatTime(f.Since))
	}

	query += " ORDER BY created_at ASC, rowid ASC"

	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing deliveries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Delivery
	for rows.Next() {
		var d Delivery
		var createdAt string
		if err := rows.Scan(&d.ID, &d.Listener, &d.Payload, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning delivery: %w", err)
		}
		d.CreatedAt = parseTime(createdAt)
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) CountDeliveries(listener string) (int, error) {
	query := "SELECT COUNT(*) FROM deliveries"
	var args []any
	if listener != "" {
		query += " WHERE listener = ?"
		args = append(args, listener)
	}

	var n int
	if err := s.db.QueryRow(query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting deliveries: %w", err)
	}
	return n, nil
}

// --- Maintenance ---

// Cleanup deletes deliveries created before olderThan and returns how many were removed.
func (s *SQLiteStore) Cleanup(olderThan time.Time) (int64, error) {
	res, err := s.db.Exec("DELETE FROM deliveries WHERE created_at < ?", formatTime(olderThan))
	if err != nil {
		return 0, fmt.Errorf("cleaning deliveries: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting cleaned deliveries: %w", err)
	}
	return n, nil
}

// --- Helpers ---

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timeFormat)
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, _ := time.Parse(timeFormat, s)
	return t
}
