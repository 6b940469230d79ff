package config

import (
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	ListenAddr string

	DBDriver          string
	DBDSN             string
	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration

	// Two independent cookie namespaces share one session store; which
	// cookie carries a token is decided at issue time.
	UserCookieName      string
	AdminCookieName     string
	UserCSRFCookieName  string
	AdminCSRFCookieName string
	SessionTTLHours     int

	CookieSecureMode   string // always | never | auto
	TrustProxy         bool
	CORSAllowedOrigins []string

	PasswordMinLength int
	PasswordMaxLength int

	AuthRateLimit     int
	AuthRateWindowSec int

	GeoIPEnabled   bool
	GeoIPEndpoint  string
	GeoIPTimeoutMS int

	HTTPReadTimeoutSec       int
	HTTPReadHeaderTimeoutSec int
	HTTPWriteTimeoutSec      int
	HTTPIdleTimeoutSec       int

	BootstrapAdminUsername string
	BootstrapAdminEmail    string
	BootstrapAdminPassword string
}

func Load() (Config, error) {
	cfg := Config{
		ListenAddr:               env("LISTEN_ADDR", ":8080"),
		DBDriver:                 strings.ToLower(env("APP_DB_DRIVER", "sqlite")),
		DBDSN:                    env("APP_DB_DSN", "./data/app.db"),
		DBMaxOpenConns:           envInt("APP_DB_MAX_OPEN_CONNS", 4),
		DBMaxIdleConns:           envInt("APP_DB_MAX_IDLE_CONNS", 2),
		DBConnMaxLifetime:        time.Duration(envInt("APP_DB_CONN_MAX_LIFETIME_MIN", 30)) * time.Minute,
		UserCookieName:           env("SESSION_COOKIE_NAME", "socialhub_session"),
		AdminCookieName:          env("ADMIN_SESSION_COOKIE_NAME", "socialhub_admin_session"),
		UserCSRFCookieName:       env("CSRF_COOKIE_NAME", "socialhub_csrf"),
		AdminCSRFCookieName:      env("ADMIN_CSRF_COOKIE_NAME", "socialhub_admin_csrf"),
		SessionTTLHours:          envInt("SESSION_TTL_HOURS", 168),
		CookieSecureMode:         strings.ToLower(env("COOKIE_SECURE_MODE", "auto")),
		TrustProxy:               envBool("TRUST_PROXY", false),
		CORSAllowedOrigins:       envCSV("CORS_ALLOWED_ORIGINS"),
		PasswordMinLength:        envInt("PASSWORD_MIN_LENGTH", 10),
		PasswordMaxLength:        envInt("PASSWORD_MAX_LENGTH", 128),
		AuthRateLimit:            envInt("AUTH_RATE_LIMIT", 10),
		AuthRateWindowSec:        envInt("AUTH_RATE_WINDOW_SEC", 60),
		GeoIPEnabled:             envBool("GEOIP_ENABLED", false),
		GeoIPEndpoint:            env("GEOIP_ENDPOINT", "http://ip-api.com/json"),
		GeoIPTimeoutMS:           envInt("GEOIP_TIMEOUT_MS", 2000),
		HTTPReadTimeoutSec:       envInt("HTTP_READ_TIMEOUT_SEC", 10),
		HTTPReadHeaderTimeoutSec: envInt("HTTP_READ_HEADER_TIMEOUT_SEC", 5),
		HTTPWriteTimeoutSec:      envInt("HTTP_WRITE_TIMEOUT_SEC", 30),
		HTTPIdleTimeoutSec:       envInt("HTTP_IDLE_TIMEOUT_SEC", 60),
		BootstrapAdminUsername:   env("BOOTSTRAP_ADMIN_USERNAME", ""),
		BootstrapAdminEmail:      env("BOOTSTRAP_ADMIN_EMAIL", ""),
		BootstrapAdminPassword:   env("BOOTSTRAP_ADMIN_PASSWORD", ""),
	}

	switch cfg.DBDriver {
	case "sqlite", "pgx", "mysql":
	default:
		return Config{}, fmt.Errorf("APP_DB_DRIVER must be one of: sqlite, pgx, mysql")
	}
	if cfg.SessionTTLHours <= 0 {
		return Config{}, fmt.Errorf("session TTL must be positive")
	}
	if cfg.DBMaxOpenConns <= 0 || cfg.DBMaxIdleConns < 0 {
		return Config{}, fmt.Errorf("invalid DB pool config")
	}
	if cfg.PasswordMinLength < 8 {
		return Config{}, fmt.Errorf("password min length must be >= 8")
	}
	if cfg.PasswordMaxLength < cfg.PasswordMinLength {
		return Config{}, fmt.Errorf("password max length must be >= min length")
	}
	if cfg.UserCookieName == cfg.AdminCookieName {
		return Config{}, fmt.Errorf("user and admin session cookies must have distinct names")
	}
	switch cfg.CookieSecureMode {
	case "always", "never", "auto":
	default:
		return Config{}, fmt.Errorf("COOKIE_SECURE_MODE must be one of: always, never, auto")
	}
	if cfg.AuthRateLimit <= 0 || cfg.AuthRateWindowSec <= 0 {
		return Config{}, fmt.Errorf("auth rate limit and window must be positive")
	}
	if cfg.GeoIPTimeoutMS <= 0 {
		return Config{}, fmt.Errorf("geoip timeout must be positive")
	}
	return cfg, nil
}

func (c Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLHours) * time.Hour
}

func (c Config) AuthRateWindow() time.Duration {
	return time.Duration(c.AuthRateWindowSec) * time.Second
}

func (c Config) GeoIPTimeout() time.Duration {
	return time.Duration(c.GeoIPTimeoutMS) * time.Millisecond
}

// ResolveCookieSecure decides the Secure attribute for auth cookies. In
// auto mode the request itself tells us whether it arrived over TLS,
// directly or via a trusted proxy.
func (c Config) ResolveCookieSecure(r *http.Request) bool {
	switch c.CookieSecureMode {
	case "always":
		return true
	case "never":
		return false
	}
	if r == nil {
		return true
	}
	if r.TLS != nil {
		return true
	}
	if c.TrustProxy && strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https") {
		return true
	}
	return false
}

func env(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func envInt(k string, d int) int {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return d
	}
	return n
}

func envBool(k string, d bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return d
	}
	return b
}

func envCSV(k string) []string {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
