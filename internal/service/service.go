package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"regexp"
	"strings"

	"socialhub/internal/audit"
	"socialhub/internal/auth"
	"socialhub/internal/config"
	"socialhub/internal/models"
	"socialhub/internal/store"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSuspended          = errors.New("account suspended")
	ErrBanned             = errors.New("account banned")
	ErrForbidden          = errors.New("forbidden")
)

// Internal failure reasons recorded in the audit trail. Never returned to
// callers; the outward error stays generic.
const (
	ReasonUserNotFound   = "user_not_found"
	ReasonWrongPassword  = "wrong_password"
	ReasonBanned         = "account_banned"
	ReasonSuspended      = "account_suspended"
	ReasonNotActive      = "account_not_active"
	ReasonNotAnAdmin     = "not_an_admin"
	ReasonNoSessionToken = "no_session_token"
)

var usernameRx = regexp.MustCompile(`^[a-z0-9_]{3,30}$`)

type Service struct {
	cfg config.Config
	st  *store.Store
	rec *audit.Recorder
}

func New(cfg config.Config, st *store.Store, rec *audit.Recorder) *Service {
	return &Service{cfg: cfg, st: st, rec: rec}
}

func (s *Service) Store() *store.Store { return s.st }

func (s *Service) Signup(ctx context.Context, username, email, displayName, password string) (models.User, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	email = strings.ToLower(strings.TrimSpace(email))
	if !usernameRx.MatchString(username) {
		return models.User{}, errors.New("username must be 3-30 characters of a-z, 0-9 or _")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return models.User{}, errors.New("invalid email address")
	}
	if err := s.ValidatePassword(password); err != nil {
		return models.User{}, err
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return models.User{}, err
	}
	return s.st.CreateUser(ctx, username, email, displayName, hash)
}

// EnsureSuperAdmin bootstraps the initial operator account from config.
// It creates the identity if missing and always leaves an active
// super_admin grant behind, with the denormalized role in sync.
func (s *Service) EnsureSuperAdmin(ctx context.Context, username, email, password string) error {
	username = strings.ToLower(strings.TrimSpace(username))
	email = strings.ToLower(strings.TrimSpace(email))
	if username == "" || email == "" || password == "" {
		return nil
	}
	u, err := s.st.GetUserByLogin(ctx, username)
	if err == store.ErrNotFound {
		hash, herr := auth.HashPassword(password)
		if herr != nil {
			return herr
		}
		u, err = s.st.CreateUser(ctx, username, email, "", hash)
	}
	if err != nil {
		return err
	}
	if err := s.st.SetUserRole(ctx, u.ID, models.RoleSuperAdmin); err != nil {
		return err
	}
	_, err = s.st.UpsertAdminGrant(ctx, u.ID, models.RoleSuperAdmin, nil)
	return err
}

func (s *Service) ValidatePassword(pw string) error {
	pw = strings.TrimSpace(pw)
	if pw == "" {
		return errors.New("password is required")
	}
	if len(pw) < s.cfg.PasswordMinLength {
		return fmt.Errorf("password must be at least %d characters", s.cfg.PasswordMinLength)
	}
	if len(pw) > s.cfg.PasswordMaxLength {
		return fmt.Errorf("password must be at most %d characters", s.cfg.PasswordMaxLength)
	}
	classes := 0
	if strings.IndexFunc(pw, func(r rune) bool { return r >= 'a' && r <= 'z' }) >= 0 {
		classes++
	}
	if strings.IndexFunc(pw, func(r rune) bool { return r >= 'A' && r <= 'Z' }) >= 0 {
		classes++
	}
	if strings.IndexFunc(pw, func(r rune) bool { return r >= '0' && r <= '9' }) >= 0 {
		classes++
	}
	if strings.IndexFunc(pw, func(r rune) bool {
		return (r >= 33 && r <= 47) || (r >= 58 && r <= 64) || (r >= 91 && r <= 96) || (r >= 123 && r <= 126)
	}) >= 0 {
		classes++
	}
	if classes < 3 {
		return errors.New("password must include at least 3 character classes (lower/upper/number/symbol)")
	}
	return nil
}
