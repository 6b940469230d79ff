package models

import "time"

type UserStatus string

const (
	UserActive      UserStatus = "active"
	UserSuspended   UserStatus = "suspended"
	UserBanned      UserStatus = "banned"
	UserDeactivated UserStatus = "deactivated"
	UserSoftDeleted UserStatus = "soft_deleted"
)

type Role string

const (
	RoleUser       Role = "user"
	RoleModerator  Role = "moderator"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

var roleLevels = map[Role]int{
	RoleUser:       0,
	RoleModerator:  1,
	RoleAdmin:      2,
	RoleSuperAdmin: 3,
}

// Level returns the position of the role in the total order
// user < moderator < admin < super_admin. Unknown roles rank below user.
func (r Role) Level() int {
	if lvl, ok := roleLevels[r]; ok {
		return lvl
	}
	return -1
}

func (r Role) AtLeast(min Role) bool { return r.Level() >= min.Level() }

// CanModerate reports whether the role may override ownership checks on
// other users' content.
func (r Role) CanModerate() bool { return r.AtLeast(RoleAdmin) }

// User is the identity row. Role is denormalized for display and cheap
// filtering only; admin authorization always consults the AdminGrant.
type User struct {
	ID           string
	Username     string
	Email        string
	DisplayName  string
	AvatarURL    *string
	PasswordHash string
	Role         Role
	Status       UserStatus
	CreatedAt    time.Time
	LastLoginAt  *time.Time
}

// Session binds a token (by hash, never plaintext) to a user with a fixed
// expiry. Rows are namespace-agnostic; the issuing code path decides which
// cookie carries the token.
type Session struct {
	ID           string
	UserID       string
	TokenHash    string
	IP           string
	UserAgent    string
	CreatedAt    time.Time
	LastActiveAt time.Time
	ExpiresAt    time.Time
}

// AdminGrant is the authoritative record of administrative capability.
type AdminGrant struct {
	ID        string
	UserID    string
	AdminRole Role
	IsActive  bool
	GrantedBy *string
	CreatedAt time.Time
	RevokedAt *time.Time
}

// AuthEvent is an immutable audit record written once per authentication
// attempt.
type AuthEvent struct {
	ID           string    `json:"id"`
	UserID       *string   `json:"user_id"`
	Action       string    `json:"action"`
	IP           string    `json:"ip"`
	UserAgent    string    `json:"user_agent"`
	MetadataJSON string    `json:"metadata_json"`
	CreatedAt    time.Time `json:"created_at"`
}

const (
	AuthLoginSuccess  = "login_success"
	AuthLoginFailure  = "login_failure"
	AuthLogoutSuccess = "logout_success"
	AuthLogoutFailure = "logout_failure"
)

type Post struct {
	ID                string     `json:"id"`
	AuthorID          string     `json:"author_id"`
	AuthorUsername    string     `json:"author_username"`
	AuthorDisplayName string     `json:"author_display_name"`
	AuthorAvatarURL   *string    `json:"author_avatar_url"`
	Body              string     `json:"body"`
	IsIncognito       bool       `json:"is_incognito"`
	CreatedAt         time.Time  `json:"created_at"`
	DeletedAt         *time.Time `json:"-"`
}

type Block struct {
	ID        string
	BlockerID string
	BlockedID string
	CreatedAt time.Time
}

type AuthEventQuery struct {
	Action string
	UserID string
	Limit  int
	Offset int
}
