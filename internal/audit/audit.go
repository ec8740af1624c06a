// Package audit keeps a privacy-conscious log of contact delivery attempts.
//
// Only metadata is stored: a salted hash of the client IP, the user agent,
// the outcome and the SMTP session duration. Submission fields never reach
// the database.
package audit

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// DefaultRetention is how long attempts are kept when Config.Retention is unset.
const DefaultRetention = 365 * 24 * time.Hour

// Outcomes of a delivery attempt.
const (
	OutcomeSent   = "sent"
	OutcomeFailed = "failed"
)

// ErrDisabled is returned when the audit store is opened without a database path.
var ErrDisabled = errors.New("audit: no database path configured")

// Config configures the audit store.
type Config struct {
	DBPath    string        `yaml:"db_path"`
	Salt      string        `yaml:"salt"`
	Retention time.Duration `yaml:"retention"`
}

// Enabled reports whether a database path is configured.
func (c Config) Enabled() bool {
	return c.DBPath != ""
}

// Attempt is one delivery attempt.
// ClientIP is hashed on write; HashedIP is filled on read.
type Attempt struct {
	ID        int64         `json:"id"`
	ClientIP  string        `json:"-"`
	HashedIP  string        `json:"hashed_ip"`
	UserAgent string        `json:"user_agent"`
	Outcome   string        `json:"outcome"`
	Duration  time.Duration `json:"duration"`
	CreatedAt time.Time     `json:"created_at"`
}

// Stats summarizes recorded attempts.
type Stats struct {
	Total        int64     `json:"total"`
	Sent         int64     `json:"sent"`
	Failed       int64     `json:"failed"`
	UniqueSender int64     `json:"unique_senders"`
	Today        int64     `json:"today"`
	ThisWeek     int64     `json:"this_week"`
	Recent       []Attempt `json:"recent"`
}

// Store is a SQLite-backed attempt log.
type Store struct {
	db   *sql.DB
	salt string
	now  func() time.Time
}

const schema = `
CREATE TABLE IF NOT EXISTS delivery_attempts (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	hashed_ip TEXT NOT NULL DEFAULT '',
	user_agent TEXT NOT NULL DEFAULT '',
	outcome TEXT NOT NULL,
	duration_ms INTEGER NOT NULL DEFAULT 0,
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_delivery_attempts_created_at ON delivery_attempts (created_at);`

// Open opens (creating if needed) the database at cfg.DBPath.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	if !cfg.Enabled() {
		return nil, ErrDisabled
	}

	db, err := sql.Open("sqlite", cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("audit: open %s: %w", cfg.DBPath, err)
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("audit: create schema: %w", err)
	}

	salt := cfg.Salt
	if salt == "" {
		if salt, err = randomSalt(); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	return &Store{db: db, salt: salt, now: time.Now}, nil
}

func randomSalt() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("audit: generate salt: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// HashIP returns a salted, truncated hash of ip. An empty ip hashes to "".
func (s *Store) HashIP(ip string) string {
	if ip == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(ip + s.salt))
	return hex.EncodeToString(sum[:])[:16]
}

// Record stores one attempt. CreatedAt defaults to now.
func (s *Store) Record(ctx context.Context, a Attempt) error {
	createdAt := a.CreatedAt
	if createdAt.IsZero() {
		createdAt = s.now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO delivery_attempts (hashed_ip, user_agent, outcome, duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, s.HashIP(a.ClientIP), a.UserAgent, a.Outcome, a.Duration.Milliseconds(), createdAt.Unix())
	if err != nil {
		return fmt.Errorf("audit: record attempt: %w", err)
	}
	return nil
}

// Stats returns aggregate counters and the most recent attempts.
func (s *Store) Stats(ctx context.Context, recent int) (*Stats, error) {
	now := s.now().UTC()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	weekStart := now.Add(-7 * 24 * time.Hour)

	stats := &Stats{}
	err := s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN outcome = ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN outcome = ? THEN 1 ELSE 0 END), 0),
			COUNT(DISTINCT NULLIF(hashed_ip, '')),
			COALESCE(SUM(CASE WHEN created_at >= ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN created_at >= ? THEN 1 ELSE 0 END), 0)
		FROM delivery_attempts
	`, OutcomeSent, OutcomeFailed, dayStart.Unix(), weekStart.Unix()).Scan(
		&stats.Total, &stats.Sent, &stats.Failed, &stats.UniqueSender, &stats.Today, &stats.ThisWeek,
	)
	if err != nil {
		return nil, fmt.Errorf("audit: load stats: %w", err)
	}

	if recent <= 0 {
		return stats, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, hashed_ip, user_agent, outcome, duration_ms, created_at
		FROM delivery_attempts
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, recent)
	if err != nil {
		return nil, fmt.Errorf("audit: load recent attempts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			a          Attempt
			durationMS int64
			createdAt  int64
		)
		if err := rows.Scan(&a.ID, &a.HashedIP, &a.UserAgent, &a.Outcome, &durationMS, &createdAt); err != nil {
			return nil, fmt.Errorf("audit: scan attempt: %w", err)
		}
		a.Duration = time.Duration(durationMS) * time.Millisecond
		a.CreatedAt = time.Unix(createdAt, 0).UTC()
		stats.Recent = append(stats.Recent, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("audit: iterate attempts: %w", err)
	}

	return stats, nil
}

// Prune deletes attempts older than retention and returns how many were removed.
// A non-positive retention uses DefaultRetention.
func (s *Store) Prune(ctx context.Context, retention time.Duration) (int64, error) {
	if retention <= 0 {
		retention = DefaultRetention
	}
	cutoff := s.now().Add(-retention).Unix()

	res, err := s.db.ExecContext(ctx, `DELETE FROM delivery_attempts WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("audit: prune: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
