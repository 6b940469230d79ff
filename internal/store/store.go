package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"socialhub/internal/db"
)

var ErrNotFound = errors.New("not found")
var ErrConflict = errors.New("conflict")

type Store struct {
	db     *sql.DB
	driver string
}

func New(sqdb *sql.DB, driver string) *Store { return &Store{db: sqdb, driver: driver} }

// q rebinds ? placeholders for the active driver.
func (s *Store) q(query string) string { return db.Rebind(s.driver, query) }

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) IncrementRateEvent(ctx context.Context, key, route string, windowStart time.Time) (int, error) {
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx, s.q(
		`INSERT INTO rate_limit_events(id,key,route,window_start,count,created_at,updated_at)
		 VALUES(?,?,?,?,?,?,?)
		 ON CONFLICT(key, route, window_start)
		 DO UPDATE SET count = rate_limit_events.count + 1, updated_at = excluded.updated_at`),
		uuid.NewString(), key, route, windowStart, 1, now, now,
	)
	if err != nil {
		return 0, err
	}
	var count int
	if err := s.db.QueryRowContext(ctx, s.q(
		`SELECT count FROM rate_limit_events WHERE key=? AND route=? AND window_start=?`),
		key, route, windowStart).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (s *Store) DeleteRateEvents(ctx context.Context, key, route string) error {
	_, err := s.db.ExecContext(ctx, s.q(`DELETE FROM rate_limit_events WHERE key=? AND route=?`), key, route)
	return err
}

func (s *Store) CleanupRateEventsBefore(ctx context.Context, before time.Time) error {
	_, err := s.db.ExecContext(ctx, s.q(`DELETE FROM rate_limit_events WHERE window_start < ?`), before)
	return err
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
