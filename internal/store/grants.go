package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"socialhub/internal/models"
)

// UpsertAdminGrant activates (or reactivates) the grant for a user. One
// grant row per user; promotion of an already-active admin to a higher
// admin role updates the same row.
func (s *Store) UpsertAdminGrant(ctx context.Context, userID string, adminRole models.Role, grantedBy *string) (models.AdminGrant, error) {
	now := time.Now().UTC()
	g := models.AdminGrant{
		ID:        uuid.NewString(),
		UserID:    userID,
		AdminRole: adminRole,
		IsActive:  true,
		GrantedBy: grantedBy,
		CreatedAt: now,
	}
	_, err := s.db.ExecContext(ctx, s.q(
		`INSERT INTO admin_grants(id,user_id,admin_role,is_active,granted_by,created_at)
		 VALUES(?,?,?,?,?,?)
		 ON CONFLICT(user_id)
		 DO UPDATE SET admin_role=excluded.admin_role, is_active=1, granted_by=excluded.granted_by, revoked_at=NULL`),
		g.ID, g.UserID, g.AdminRole, 1, g.GrantedBy, g.CreatedAt,
	)
	return g, err
}

func (s *Store) RevokeAdminGrant(ctx context.Context, userID string) error {
	res, err := s.db.ExecContext(ctx, s.q(
		`UPDATE admin_grants SET is_active=0, revoked_at=? WHERE user_id=? AND is_active=1`),
		time.Now().UTC(), userID,
	)
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

// GetActiveAdminGrant is the authoritative admin capability check. A user
// whose identity row still says admin but whose grant is inactive gets
// ErrNotFound here.
func (s *Store) GetActiveAdminGrant(ctx context.Context, userID string) (models.AdminGrant, error) {
	var g models.AdminGrant
	var active int
	var grantedBy sql.NullString
	var revoked sql.NullTime
	err := s.db.QueryRowContext(ctx, s.q(
		`SELECT id,user_id,admin_role,is_active,granted_by,created_at,revoked_at FROM admin_grants WHERE user_id=? AND is_active=1`),
		userID,
	).Scan(&g.ID, &g.UserID, &g.AdminRole, &active, &grantedBy, &g.CreatedAt, &revoked)
	if err == sql.ErrNoRows {
		return models.AdminGrant{}, ErrNotFound
	}
	if err != nil {
		return models.AdminGrant{}, err
	}
	g.IsActive = active == 1
	if grantedBy.Valid {
		v := grantedBy.String
		g.GrantedBy = &v
	}
	if revoked.Valid {
		t := revoked.Time
		g.RevokedAt = &t
	}
	return g, nil
}
