package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"social_caption_generator/generator"
)

const busyTimeoutMillis = 5000

// SQLiteStore keeps history in a SQLite table. Prepend and truncate run in one
// transaction, so several processes can share the database without losing
// entries.
type SQLiteStore struct {
	db    *sql.DB
	path  string
	limit int
}

// NewSQLiteStore opens (or creates) the database at path.
func NewSQLiteStore(path string, limit int) (*SQLiteStore, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	db, err := sql.Open("sqlite", sqliteDSN(path))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// one connection per process; other processes wait on busy_timeout
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db, path: path, limit: limit}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// sqliteDSN makes writers from other processes wait for the lock instead of
// failing with SQLITE_BUSY, and takes the write lock at BEGIN so a
// transaction never has to upgrade a read lock mid-way.
func sqliteDSN(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_pragma=busy_timeout(" + strconv.Itoa(busyTimeoutMillis) + ")&_txlock=immediate"
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS history (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		record     TEXT NOT NULL,
		created_at TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Load returns up to limit records, newest first.
func (s *SQLiteStore) Load(ctx context.Context) ([]generator.Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, record FROM history ORDER BY id DESC LIMIT ?`, s.limit)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	defer rows.Close()

	records := []generator.Record{}
	for rows.Next() {
		var (
			id  int64
			raw string
		)
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		var rec generator.Record
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			return nil, &CorruptHistoryError{Path: fmt.Sprintf("%s#%d", s.path, id), Err: err}
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Save inserts entry and drops everything older than the newest limit rows.
func (s *SQLiteStore) Save(ctx context.Context, entry generator.Record) error {
	raw, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO history (record, created_at) VALUES (?, ?)`,
		string(raw), time.Now().UTC().Format(time.RFC3339Nano),
	); err != nil {
		return fmt.Errorf("insert history: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM history WHERE id NOT IN (SELECT id FROM history ORDER BY id DESC LIMIT ?)`,
		s.limit,
	); err != nil {
		return fmt.Errorf("truncate history: %w", err)
	}
	return tx.Commit()
}
