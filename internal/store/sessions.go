package store

import (
	"context"
	"database/sql"
	"time"

	"socialhub/internal/models"
)

const sessionCols = `id,user_id,token_hash,ip,user_agent,created_at,last_active_at,expires_at`

func (s *Store) CreateSession(ctx context.Context, sess models.Session) error {
	_, err := s.db.ExecContext(ctx, s.q(
		`INSERT INTO sessions(id,user_id,token_hash,ip,user_agent,created_at,last_active_at,expires_at) VALUES(?,?,?,?,?,?,?,?)`),
		sess.ID, sess.UserID, sess.TokenHash, sess.IP, sess.UserAgent, sess.CreatedAt, sess.LastActiveAt, sess.ExpiresAt,
	)
	return err
}

func (s *Store) GetSessionByTokenHash(ctx context.Context, tokenHash string) (models.Session, error) {
	var sess models.Session
	err := s.db.QueryRowContext(ctx, s.q(
		`SELECT `+sessionCols+` FROM sessions WHERE token_hash=?`), tokenHash,
	).Scan(&sess.ID, &sess.UserID, &sess.TokenHash, &sess.IP, &sess.UserAgent, &sess.CreatedAt, &sess.LastActiveAt, &sess.ExpiresAt)
	if err == sql.ErrNoRows {
		return models.Session{}, ErrNotFound
	}
	if err != nil {
		return models.Session{}, err
	}
	return sess, nil
}

func (s *Store) TouchSession(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, s.q(`UPDATE sessions SET last_active_at=? WHERE id=?`), time.Now().UTC(), id)
	return err
}

// DeleteSessionByTokenHash is idempotent: deleting an absent row is not an
// error.
func (s *Store) DeleteSessionByTokenHash(ctx context.Context, tokenHash string) error {
	_, err := s.db.ExecContext(ctx, s.q(`DELETE FROM sessions WHERE token_hash=?`), tokenHash)
	return err
}

// DeleteUserSession removes one session, scoped to its owner.
func (s *Store) DeleteUserSession(ctx context.Context, userID, sessionID string) error {
	res, err := s.db.ExecContext(ctx, s.q(`DELETE FROM sessions WHERE id=? AND user_id=?`), sessionID, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteUserSessionsExcept implements "sign out everywhere": every session
// for the user goes away except the one matching keepTokenHash.
func (s *Store) DeleteUserSessionsExcept(ctx context.Context, userID, keepTokenHash string) (int64, error) {
	res, err := s.db.ExecContext(ctx, s.q(
		`DELETE FROM sessions WHERE user_id=? AND token_hash<>?`), userID, keepTokenHash)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *Store) DeleteUserSessions(ctx context.Context, userID string) error {
	_, err := s.db.ExecContext(ctx, s.q(`DELETE FROM sessions WHERE user_id=?`), userID)
	return err
}

func (s *Store) ListUserSessions(ctx context.Context, userID string, now time.Time) ([]models.Session, error) {
	rows, err := s.db.QueryContext(ctx, s.q(
		`SELECT `+sessionCols+` FROM sessions WHERE user_id=? AND expires_at > ? ORDER BY last_active_at DESC`),
		userID, now,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Session
	for rows.Next() {
		var sess models.Session
		if err := rows.Scan(&sess.ID, &sess.UserID, &sess.TokenHash, &sess.IP, &sess.UserAgent, &sess.CreatedAt, &sess.LastActiveAt, &sess.ExpiresAt); err != nil {
			return nil, err
		}
		out = append(out, sess)
	}
	return out, rows.Err()
}

func (s *Store) DeleteExpiredSessions(ctx context.Context, now time.Time) error {
	_, err := s.db.ExecContext(ctx, s.q(`DELETE FROM sessions WHERE expires_at <= ?`), now)
	return err
}
