package store

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"

	"socialhub/internal/models"
)

const userCols = `id,username,email,display_name,avatar_url,password_hash,role,status,created_at,last_login_at`

func (s *Store) CreateUser(ctx context.Context, username, email, displayName, passwordHash string) (models.User, error) {
	now := time.Now().UTC()
	u := models.User{
		ID:           uuid.NewString(),
		Username:     strings.ToLower(strings.TrimSpace(username)),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		DisplayName:  strings.TrimSpace(displayName),
		PasswordHash: passwordHash,
		Role:         models.RoleUser,
		Status:       models.UserActive,
		CreatedAt:    now,
	}
	if u.DisplayName == "" {
		u.DisplayName = u.Username
	}
	_, err := s.db.ExecContext(ctx, s.q(
		`INSERT INTO users(id,username,email,display_name,avatar_url,password_hash,role,status,created_at) VALUES(?,?,?,?,?,?,?,?,?)`),
		u.ID, u.Username, u.Email, u.DisplayName, nil, u.PasswordHash, u.Role, u.Status, u.CreatedAt,
	)
	if err != nil && isUniqueViolation(err) {
		return models.User{}, ErrConflict
	}
	return u, err
}

// GetUserByLogin resolves a username or an email address.
func (s *Store) GetUserByLogin(ctx context.Context, login string) (models.User, error) {
	login = strings.ToLower(strings.TrimSpace(login))
	row := s.db.QueryRowContext(ctx, s.q(
		`SELECT `+userCols+` FROM users WHERE username=? OR email=?`), login, login)
	return scanUser(row)
}

func (s *Store) GetUserByID(ctx context.Context, id string) (models.User, error) {
	row := s.db.QueryRowContext(ctx, s.q(`SELECT `+userCols+` FROM users WHERE id=?`), id)
	return scanUser(row)
}

func (s *Store) UpdateUserStatus(ctx context.Context, userID string, status models.UserStatus) error {
	_, err := s.db.ExecContext(ctx, s.q(`UPDATE users SET status=? WHERE id=?`), status, userID)
	return err
}

// SetUserRole updates the denormalized role column. Callers keep it in
// sync with the admin grant; it is never the source of truth for
// authorization.
func (s *Store) SetUserRole(ctx context.Context, userID string, role models.Role) error {
	_, err := s.db.ExecContext(ctx, s.q(`UPDATE users SET role=? WHERE id=?`), role, userID)
	return err
}

func (s *Store) TouchUserLastLogin(ctx context.Context, userID string, at time.Time) error {
	_, err := s.db.ExecContext(ctx, s.q(`UPDATE users SET last_login_at=? WHERE id=?`), at, userID)
	return err
}

func (s *Store) ListUsers(ctx context.Context, status string, limit, offset int) ([]models.User, error) {
	query := `SELECT ` + userCols + ` FROM users`
	args := []any{}
	if status != "" {
		query += ` WHERE status=?`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := s.db.QueryContext(ctx, s.q(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (models.User, error) {
	var u models.User
	var avatar sql.NullString
	var lastLogin sql.NullTime
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.DisplayName, &avatar, &u.PasswordHash, &u.Role, &u.Status, &u.CreatedAt, &lastLogin)
	if err == sql.ErrNoRows {
		return models.User{}, ErrNotFound
	}
	if err != nil {
		return models.User{}, err
	}
	if avatar.Valid {
		v := avatar.String
		u.AvatarURL = &v
	}
	if lastLogin.Valid {
		t := lastLogin.Time
		u.LastLoginAt = &t
	}
	return u, nil
}

func isUniqueViolation(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate")
}
