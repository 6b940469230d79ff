package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"socialhub/internal/audit"
	"socialhub/internal/auth"
	"socialhub/internal/models"
	"socialhub/internal/store"
)

const (
	LoginTypeUser  = "user"
	LoginTypeAdmin = "admin"
)

// decoyDigest is a parseable argon2id value that matches no password. It
// exists only to give unknown-identifier logins the same key-derivation
// cost as real ones.
const decoyDigest = "$argon2id$v=19$m=65536,t=1,p=2$IPottF9uQWjB7ciPbNxp9g$3/lZN7T2GP2jLDC1glZJDyurHIidbEY+XP4PzyIskQ0"

// Login authenticates against the user namespace. Every attempt, success
// or failure, produces exactly one audit event; the outward error never
// distinguishes an unknown identifier from a wrong password.
func (s *Service) Login(ctx context.Context, login, password, ip, userAgent string) (string, models.User, error) {
	return s.login(ctx, login, password, ip, userAgent, LoginTypeUser)
}

// AdminLogin authenticates against the admin namespace: same identity
// store, but the caller must additionally hold an active admin grant. A
// valid password without a grant fails like a wrong password.
func (s *Service) AdminLogin(ctx context.Context, login, password, ip, userAgent string) (string, models.User, error) {
	return s.login(ctx, login, password, ip, userAgent, LoginTypeAdmin)
}

func (s *Service) login(ctx context.Context, login, password, ip, userAgent, loginType string) (string, models.User, error) {
	login = strings.ToLower(strings.TrimSpace(login))
	fail := func(userID *string, reason string, outErr error) (string, models.User, error) {
		s.rec.Record(ctx, audit.Event{
			UserID:        userID,
			Action:        models.AuthLoginFailure,
			LoginType:     loginType,
			Identifier:    login,
			IP:            ip,
			UserAgent:     userAgent,
			FailureReason: reason,
		})
		return "", models.User{}, outErr
	}

	u, err := s.st.GetUserByLogin(ctx, login)
	if err == store.ErrNotFound {
		// Burn a full verification against a throwaway digest so the
		// timing of unknown identifiers matches known ones.
		auth.VerifyPassword(decoyDigest, password)
		return fail(nil, ReasonUserNotFound, ErrInvalidCredentials)
	}
	if err != nil {
		return "", models.User{}, err
	}
	if !auth.VerifyPassword(u.PasswordHash, password) {
		return fail(&u.ID, ReasonWrongPassword, ErrInvalidCredentials)
	}
	switch u.Status {
	case models.UserActive:
	case models.UserBanned:
		return fail(&u.ID, ReasonBanned, ErrBanned)
	case models.UserSuspended:
		return fail(&u.ID, ReasonSuspended, ErrSuspended)
	default:
		return fail(&u.ID, ReasonNotActive, ErrInvalidCredentials)
	}
	if loginType == LoginTypeAdmin {
		if _, err := s.st.GetActiveAdminGrant(ctx, u.ID); err != nil {
			if err == store.ErrNotFound {
				return fail(&u.ID, ReasonNotAnAdmin, ErrInvalidCredentials)
			}
			return "", models.User{}, err
		}
	}

	raw, tokenHash, err := auth.NewSessionToken()
	if err != nil {
		return "", models.User{}, err
	}
	now := time.Now().UTC()
	sess := models.Session{
		ID:           uuid.NewString(),
		UserID:       u.ID,
		TokenHash:    tokenHash,
		IP:           ip,
		UserAgent:    userAgent,
		CreatedAt:    now,
		LastActiveAt: now,
		ExpiresAt:    now.Add(s.cfg.SessionTTL()),
	}
	if err := s.st.CreateSession(ctx, sess); err != nil {
		return "", models.User{}, err
	}
	_ = s.st.TouchUserLastLogin(ctx, u.ID, now)

	s.rec.Record(ctx, audit.Event{
		UserID:     &u.ID,
		Action:     models.AuthLoginSuccess,
		LoginType:  loginType,
		Identifier: login,
		IP:         ip,
		UserAgent:  userAgent,
		Success:    true,
	})
	return raw, u, nil
}

// ResolveSession turns a presented token into a verified principal. The
// identity status is re-checked on every call, never cached, so a ban
// takes effect on the next request rather than at token expiry.
func (s *Service) ResolveSession(ctx context.Context, rawToken string) (models.User, models.Session, error) {
	sess, err := s.st.GetSessionByTokenHash(ctx, auth.HashToken(rawToken))
	if err != nil {
		return models.User{}, models.Session{}, ErrInvalidCredentials
	}
	if time.Now().UTC().After(sess.ExpiresAt) {
		return models.User{}, models.Session{}, ErrInvalidCredentials
	}
	u, err := s.st.GetUserByID(ctx, sess.UserID)
	if err != nil {
		return models.User{}, models.Session{}, ErrInvalidCredentials
	}
	if u.Status != models.UserActive {
		return models.User{}, models.Session{}, ErrInvalidCredentials
	}
	// Observability only; a failed touch never invalidates the session.
	_ = s.st.TouchSession(ctx, sess.ID)
	return u, sess, nil
}

// ActiveAdminGrant exposes the authoritative capability check to the guard
// layer.
func (s *Service) ActiveAdminGrant(ctx context.Context, userID string) (models.AdminGrant, error) {
	g, err := s.st.GetActiveAdminGrant(ctx, userID)
	if err == store.ErrNotFound {
		return models.AdminGrant{}, ErrForbidden
	}
	return g, err
}

// Logout destroys the presented session. It is idempotent and always
// succeeds outward; the audit trail records whether a token was actually
// present.
func (s *Service) Logout(ctx context.Context, rawToken, loginType, ip, userAgent string) {
	if strings.TrimSpace(rawToken) == "" {
		s.rec.Record(ctx, audit.Event{
			Action:        models.AuthLogoutFailure,
			LoginType:     loginType,
			IP:            ip,
			UserAgent:     userAgent,
			FailureReason: ReasonNoSessionToken,
		})
		return
	}
	hash := auth.HashToken(rawToken)
	var userID *string
	if sess, err := s.st.GetSessionByTokenHash(ctx, hash); err == nil {
		userID = &sess.UserID
	}
	_ = s.st.DeleteSessionByTokenHash(ctx, hash)
	s.rec.Record(ctx, audit.Event{
		UserID:    userID,
		Action:    models.AuthLogoutSuccess,
		LoginType: loginType,
		IP:        ip,
		UserAgent: userAgent,
		Success:   true,
	})
}

// SessionInfo is the self-service view of a session row; the token hash
// never leaves the service.
type SessionInfo struct {
	ID           string    `json:"id"`
	IP           string    `json:"ip"`
	UserAgent    string    `json:"user_agent"`
	CreatedAt    time.Time `json:"created_at"`
	LastActiveAt time.Time `json:"last_active_at"`
	ExpiresAt    time.Time `json:"expires_at"`
	IsCurrent    bool      `json:"is_current"`
}

func (s *Service) ListSessions(ctx context.Context, userID, currentTokenHash string) ([]SessionInfo, error) {
	sessions, err := s.st.ListUserSessions(ctx, userID, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	out := make([]SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		out = append(out, SessionInfo{
			ID:           sess.ID,
			IP:           sess.IP,
			UserAgent:    sess.UserAgent,
			CreatedAt:    sess.CreatedAt,
			LastActiveAt: sess.LastActiveAt,
			ExpiresAt:    sess.ExpiresAt,
			IsCurrent:    sess.TokenHash == currentTokenHash,
		})
	}
	return out, nil
}

// RevokeOtherSessions implements "sign out everywhere": the caller's own
// current session always survives.
func (s *Service) RevokeOtherSessions(ctx context.Context, userID, keepTokenHash string) (int64, error) {
	return s.st.DeleteUserSessionsExcept(ctx, userID, keepTokenHash)
}

func (s *Service) RevokeSession(ctx context.Context, userID, sessionID string) error {
	return s.st.DeleteUserSession(ctx, userID, sessionID)
}
