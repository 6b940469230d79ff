package api

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"
)

type sessionDTO struct {
	ID        string `json:"id"`
	IsCurrent bool   `json:"is_current"`
}

func listSessions(t *testing.T, c *authClient) []sessionDTO {
	t.Helper()
	rec := c.do(t, http.MethodGet, "/api/v1/sessions", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list sessions: expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	var out struct {
		Items []sessionDTO `json:"items"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode sessions: %v", err)
	}
	return out.Items
}

func TestListSessionsMarksCurrent(t *testing.T) {
	router, _, _ := newTestRouter(t)
	signupUser(t, router, "alice", "alice@example.com", "SecretPass123!")
	first := loginUser(t, router, "alice", "SecretPass123!")
	loginUser(t, router, "alice", "SecretPass123!")

	items := listSessions(t, first)
	if len(items) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(items))
	}
	current := 0
	for _, s := range items {
		if s.IsCurrent {
			current++
		}
	}
	if current != 1 {
		t.Fatalf("expected exactly one current session, got %d", current)
	}
}

func TestExpiredSessionRowRejected(t *testing.T) {
	router, _, db := newTestRouter(t)
	aliceID := signupUser(t, router, "alice", "alice@example.com", "SecretPass123!")
	alice := loginUser(t, router, "alice", "SecretPass123!")

	// Age the row in place; the token the client holds stays valid-looking.
	if _, err := db.Exec(`UPDATE sessions SET expires_at=? WHERE user_id=?`,
		time.Now().UTC().Add(-time.Minute), aliceID); err != nil {
		t.Fatalf("age session: %v", err)
	}

	rec := alice.do(t, http.MethodGet, "/api/v1/me", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for expired session, got %d body=%s", rec.Code, rec.Body.String())
	}
}

func TestSuspendedStatusRejectsLiveSessionRow(t *testing.T) {
	router, _, db := newTestRouter(t)
	aliceID := signupUser(t, router, "alice", "alice@example.com", "SecretPass123!")
	alice := loginUser(t, router, "alice", "SecretPass123!")

	// Flip the status without touching the session rows, so the refusal
	// can only come from the per-request status re-check.
	if _, err := db.Exec(`UPDATE users SET status='suspended' WHERE id=?`, aliceID); err != nil {
		t.Fatalf("suspend user: %v", err)
	}
	var n int
	if err := db.QueryRow(`SELECT COUNT(1) FROM sessions WHERE user_id=?`, aliceID).Scan(&n); err != nil || n != 1 {
		t.Fatalf("expected the session row to survive, n=%d err=%v", n, err)
	}

	rec := alice.do(t, http.MethodGet, "/api/v1/me", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for suspended user with live session row, got %d body=%s", rec.Code, rec.Body.String())
	}
}

func TestRevokeAllOtherSessions(t *testing.T) {
	router, _, _ := newTestRouter(t)
	signupUser(t, router, "alice", "alice@example.com", "SecretPass123!")
	keeper := loginUser(t, router, "alice", "SecretPass123!")
	other := loginUser(t, router, "alice", "SecretPass123!")
	loginUser(t, router, "alice", "SecretPass123!")

	rec := keeper.do(t, http.MethodDelete, "/api/v1/sessions/all", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("revoke all: expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	var out struct {
		Revoked int64 `json:"revoked"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Revoked != 2 {
		t.Fatalf("expected 2 revoked sessions, got %d", out.Revoked)
	}

	if rec := keeper.do(t, http.MethodGet, "/api/v1/me", nil); rec.Code != http.StatusOK {
		t.Fatalf("current session must survive revoke-all, got %d", rec.Code)
	}
	if rec := other.do(t, http.MethodGet, "/api/v1/me", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("other session must be gone, got %d", rec.Code)
	}
}

func TestRevokeCurrentSessionRejected(t *testing.T) {
	router, _, _ := newTestRouter(t)
	signupUser(t, router, "alice", "alice@example.com", "SecretPass123!")
	c := loginUser(t, router, "alice", "SecretPass123!")

	items := listSessions(t, c)
	var currentID string
	for _, s := range items {
		if s.IsCurrent {
			currentID = s.ID
		}
	}
	rec := c.do(t, http.MethodDelete, "/api/v1/sessions/"+currentID, nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 revoking current session, got %d body=%s", rec.Code, rec.Body.String())
	}
}

func TestRevokeSpecificSession(t *testing.T) {
	router, _, _ := newTestRouter(t)
	signupUser(t, router, "alice", "alice@example.com", "SecretPass123!")
	c1 := loginUser(t, router, "alice", "SecretPass123!")
	c2 := loginUser(t, router, "alice", "SecretPass123!")

	var otherID string
	for _, s := range listSessions(t, c1) {
		if !s.IsCurrent {
			otherID = s.ID
		}
	}
	rec := c1.do(t, http.MethodDelete, "/api/v1/sessions/"+otherID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("revoke: expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	if rec := c2.do(t, http.MethodGet, "/api/v1/me", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("revoked session must be rejected, got %d", rec.Code)
	}

	rec = c1.do(t, http.MethodDelete, "/api/v1/sessions/no-such-session", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown session id, got %d", rec.Code)
	}
}

func TestAdminRevokeAllSpansBothNamespaces(t *testing.T) {
	router, svc, _ := newTestRouter(t)
	if err := svc.EnsureSuperAdmin(context.Background(), "root", "root@example.com", "SuperSecret123!"); err != nil {
		t.Fatalf("ensure super admin: %v", err)
	}
	asUser := loginUser(t, router, "root", "SuperSecret123!")
	asAdmin := loginAdmin(t, router, "root", "SuperSecret123!")

	// Session rows are namespace-agnostic, so "sign out everywhere" from
	// the admin surface also ends the caller's regular user session.
	rec := asAdmin.do(t, http.MethodDelete, "/api/v1/admin/sessions/all", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("revoke all: expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	if rec := asAdmin.do(t, http.MethodGet, "/api/v1/admin/me", nil); rec.Code != http.StatusOK {
		t.Fatalf("admin session must survive, got %d", rec.Code)
	}
	if rec := asUser.do(t, http.MethodGet, "/api/v1/me", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("user session must be revoked, got %d", rec.Code)
	}
}

func TestRevokeSessionScopedToOwner(t *testing.T) {
	router, _, _ := newTestRouter(t)
	signupUser(t, router, "alice", "alice@example.com", "SecretPass123!")
	signupUser(t, router, "bob", "bob@example.com", "SecretPass123!")
	alice := loginUser(t, router, "alice", "SecretPass123!")
	bob := loginUser(t, router, "bob", "SecretPass123!")

	var bobSessionID string
	for _, s := range listSessions(t, bob) {
		bobSessionID = s.ID
	}
	// Session IDs are scoped per owner: another user's id reads as absent.
	rec := alice.do(t, http.MethodDelete, "/api/v1/sessions/"+bobSessionID, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 revoking another user's session, got %d", rec.Code)
	}
	if rec := bob.do(t, http.MethodGet, "/api/v1/me", nil); rec.Code != http.StatusOK {
		t.Fatalf("bob's session must be untouched, got %d", rec.Code)
	}
}
