package api

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"socialhub/internal/audit"
	"socialhub/internal/config"
	"socialhub/internal/db"
	"socialhub/internal/geoip"
	"socialhub/internal/service"
	"socialhub/internal/store"
)

func testConfig() config.Config {
	return config.Config{
		ListenAddr:          ":8080",
		DBDriver:            "sqlite",
		UserCookieName:      "socialhub_session",
		AdminCookieName:     "socialhub_admin_session",
		UserCSRFCookieName:  "socialhub_csrf",
		AdminCSRFCookieName: "socialhub_admin_csrf",
		SessionTTLHours:     24,
		CookieSecureMode:    "never",
		PasswordMinLength:   10,
		PasswordMaxLength:   128,
		AuthRateLimit:       1000,
		AuthRateWindowSec:   60,
	}
}

func newTestRouter(t *testing.T) (http.Handler, *service.Service, *sql.DB) {
	t.Helper()
	sqdb, err := db.Open("sqlite", filepath.Join(t.TempDir(), "app.db"), 1, 1, time.Minute)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = sqdb.Close() })
	if err := db.ApplyMigrationFile(sqdb, filepath.Join("..", "..", "migrations", "001_init.sql")); err != nil {
		t.Fatalf("apply migration: %v", err)
	}

	cfg := testConfig()
	st := store.New(sqdb, "sqlite")
	rec := audit.NewRecorder(st, geoip.NoopResolver{})
	svc := service.New(cfg, st, rec)
	return NewRouter(cfg, svc), svc, sqdb
}

// authClient carries one authenticated namespace through a test: the
// session cookie plus the CSRF token the login response handed out.
type authClient struct {
	router        http.Handler
	sessionCookie *http.Cookie
	csrfCookie    *http.Cookie
	csrfToken     string
}

func (c *authClient) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if c.sessionCookie != nil {
		req.AddCookie(c.sessionCookie)
	}
	if c.csrfCookie != nil {
		req.AddCookie(c.csrfCookie)
		req.Header.Set("X-CSRF-Token", c.csrfToken)
	}
	rec := httptest.NewRecorder()
	c.router.ServeHTTP(rec, req)
	return rec
}

func signupUser(t *testing.T, router http.Handler, username, email, password string) string {
	t.Helper()
	body, _ := json.Marshal(map[string]string{
		"username":     username,
		"email":        email,
		"display_name": username,
		"password":     password,
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/signup", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("signup %s: expected 201, got %d body=%s", username, rec.Code, rec.Body.String())
	}
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode signup response: %v", err)
	}
	id, _ := out["id"].(string)
	if id == "" {
		t.Fatalf("signup %s: missing id in response %s", username, rec.Body.String())
	}
	return id
}

func loginAs(t *testing.T, router http.Handler, path, login, password string, sessionCookieName, csrfCookieName string) *authClient {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"login": login, "password": password})
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("login %s: expected 200, got %d body=%s", login, rec.Code, rec.Body.String())
	}
	c := &authClient{router: router}
	for _, ck := range rec.Result().Cookies() {
		switch ck.Name {
		case sessionCookieName:
			c.sessionCookie = ck
		case csrfCookieName:
			c.csrfCookie = ck
		}
	}
	if c.sessionCookie == nil || c.sessionCookie.Value == "" {
		t.Fatalf("login %s: no session cookie in response", login)
	}
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	c.csrfToken, _ = out["csrf_token"].(string)
	return c
}

func loginUser(t *testing.T, router http.Handler, login, password string) *authClient {
	t.Helper()
	cfg := testConfig()
	return loginAs(t, router, "/api/v1/login", login, password, cfg.UserCookieName, cfg.UserCSRFCookieName)
}

func loginAdmin(t *testing.T, router http.Handler, login, password string) *authClient {
	t.Helper()
	cfg := testConfig()
	return loginAs(t, router, "/api/v1/admin/login", login, password, cfg.AdminCookieName, cfg.AdminCSRFCookieName)
}
