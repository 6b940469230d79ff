package service

import (
	"context"
	"errors"

	"socialhub/internal/models"
	"socialhub/internal/store"
)

// PromoteAdmin activates an admin grant and re-syncs the denormalized role
// column. Promoting a user who already holds the same active admin role is
// a conflict.
func (s *Service) PromoteAdmin(ctx context.Context, actorID, targetID string, adminRole models.Role) error {
	switch adminRole {
	case models.RoleModerator, models.RoleAdmin, models.RoleSuperAdmin:
	default:
		return errors.New("admin_role must be one of: moderator, admin, super_admin")
	}
	if _, err := s.st.GetUserByID(ctx, targetID); err != nil {
		return err
	}
	if g, err := s.st.GetActiveAdminGrant(ctx, targetID); err == nil && g.AdminRole == adminRole {
		return store.ErrConflict
	}
	if _, err := s.st.UpsertAdminGrant(ctx, targetID, adminRole, &actorID); err != nil {
		return err
	}
	return s.st.SetUserRole(ctx, targetID, adminRole)
}

// DemoteAdmin revokes the grant and resets the role column. Existing admin
// sessions stay in the table; the guard rejects them once the grant is
// gone.
func (s *Service) DemoteAdmin(ctx context.Context, targetID string) error {
	if targetID == "" {
		return store.ErrNotFound
	}
	if err := s.st.RevokeAdminGrant(ctx, targetID); err != nil {
		return err
	}
	return s.st.SetUserRole(ctx, targetID, models.RoleUser)
}

func (s *Service) SuspendUser(ctx context.Context, targetID string) error {
	return s.takedown(ctx, targetID, models.UserSuspended)
}

func (s *Service) BanUser(ctx context.Context, targetID string) error {
	return s.takedown(ctx, targetID, models.UserBanned)
}

// takedown flips the status and deletes the user's sessions. ResolveSession
// re-checks status on every request, so the ban holds even for a session
// row that survives the delete.
func (s *Service) takedown(ctx context.Context, targetID string, status models.UserStatus) error {
	if _, err := s.st.GetUserByID(ctx, targetID); err != nil {
		return err
	}
	if err := s.st.UpdateUserStatus(ctx, targetID, status); err != nil {
		return err
	}
	return s.st.DeleteUserSessions(ctx, targetID)
}

func (s *Service) UnsuspendUser(ctx context.Context, targetID string) error {
	u, err := s.st.GetUserByID(ctx, targetID)
	if err != nil {
		return err
	}
	if u.Status != models.UserSuspended && u.Status != models.UserBanned {
		return store.ErrConflict
	}
	return s.st.UpdateUserStatus(ctx, targetID, models.UserActive)
}

func (s *Service) ListUsers(ctx context.Context, status string, limit, offset int) ([]models.User, error) {
	return s.st.ListUsers(ctx, status, limit, offset)
}

func (s *Service) ListAuthEvents(ctx context.Context, query models.AuthEventQuery) ([]models.AuthEvent, error) {
	return s.st.ListAuthEvents(ctx, query)
}
