package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"socialhub/internal/db"
	"socialhub/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	sqdb, err := db.Open("sqlite", filepath.Join(t.TempDir(), "app.db"), 1, 1, time.Minute)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = sqdb.Close() })
	if err := db.ApplyMigrationFile(sqdb, filepath.Join("..", "..", "migrations", "001_init.sql")); err != nil {
		t.Fatalf("apply migration: %v", err)
	}
	return New(sqdb, "sqlite")
}

func mustCreateUser(t *testing.T, st *Store, username string) models.User {
	t.Helper()
	u, err := st.CreateUser(context.Background(), username, username+"@example.com", username, "x")
	if err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return u
}

func mustCreateSession(t *testing.T, st *Store, userID, tokenHash string, expiresAt time.Time) models.Session {
	t.Helper()
	sess := models.Session{
		ID:           uuid.NewString(),
		UserID:       userID,
		TokenHash:    tokenHash,
		CreatedAt:    time.Now().UTC(),
		LastActiveAt: time.Now().UTC(),
		ExpiresAt:    expiresAt,
	}
	if err := st.CreateSession(context.Background(), sess); err != nil {
		t.Fatalf("create session: %v", err)
	}
	return sess
}

func TestCreateUserDuplicateIsConflict(t *testing.T) {
	st := newTestStore(t)
	mustCreateUser(t, st, "alice")
	if _, err := st.CreateUser(context.Background(), "alice", "other@example.com", "Alice", "x"); err != ErrConflict {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if _, err := st.CreateUser(context.Background(), "alice2", "alice@example.com", "Alice", "x"); err != ErrConflict {
		t.Fatalf("expected ErrConflict on duplicate email, got %v", err)
	}
}

func TestGetUserByLoginMatchesUsernameOrEmail(t *testing.T) {
	st := newTestStore(t)
	u := mustCreateUser(t, st, "alice")

	byName, err := st.GetUserByLogin(context.Background(), "alice")
	if err != nil || byName.ID != u.ID {
		t.Fatalf("lookup by username: %v", err)
	}
	byEmail, err := st.GetUserByLogin(context.Background(), "alice@example.com")
	if err != nil || byEmail.ID != u.ID {
		t.Fatalf("lookup by email: %v", err)
	}
	if _, err := st.GetUserByLogin(context.Background(), "nobody"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListUserSessionsExcludesExpired(t *testing.T) {
	st := newTestStore(t)
	u := mustCreateUser(t, st, "alice")
	now := time.Now().UTC()
	mustCreateSession(t, st, u.ID, "live", now.Add(time.Hour))
	mustCreateSession(t, st, u.ID, "stale", now.Add(-time.Hour))

	items, err := st.ListUserSessions(context.Background(), u.ID, now)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 1 || items[0].TokenHash != "live" {
		t.Fatalf("expected only the live session, got %+v", items)
	}
}

func TestDeleteUserSessionsExceptKeepsExactlyOne(t *testing.T) {
	st := newTestStore(t)
	u := mustCreateUser(t, st, "alice")
	now := time.Now().UTC()
	mustCreateSession(t, st, u.ID, "keep", now.Add(time.Hour))
	mustCreateSession(t, st, u.ID, "a", now.Add(time.Hour))
	mustCreateSession(t, st, u.ID, "b", now.Add(time.Hour))

	n, err := st.DeleteUserSessionsExcept(context.Background(), u.ID, "keep")
	if err != nil {
		t.Fatalf("delete except: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 deleted, got %d", n)
	}
	items, err := st.ListUserSessions(context.Background(), u.ID, now)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 1 || items[0].TokenHash != "keep" {
		t.Fatalf("expected only the kept session, got %+v", items)
	}
}

func TestDeleteUserSessionScopedToOwner(t *testing.T) {
	st := newTestStore(t)
	alice := mustCreateUser(t, st, "alice")
	bob := mustCreateUser(t, st, "bob")
	sess := mustCreateSession(t, st, bob.ID, "bobtoken", time.Now().UTC().Add(time.Hour))

	if err := st.DeleteUserSession(context.Background(), alice.ID, sess.ID); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound for foreign session, got %v", err)
	}
	if err := st.DeleteUserSession(context.Background(), bob.ID, sess.ID); err != nil {
		t.Fatalf("owner delete: %v", err)
	}
}

func TestDeleteSessionByTokenHashIsIdempotent(t *testing.T) {
	st := newTestStore(t)
	u := mustCreateUser(t, st, "alice")
	mustCreateSession(t, st, u.ID, "tok", time.Now().UTC().Add(time.Hour))

	if err := st.DeleteSessionByTokenHash(context.Background(), "tok"); err != nil {
		t.Fatalf("first delete: %v", err)
	}
	if err := st.DeleteSessionByTokenHash(context.Background(), "tok"); err != nil {
		t.Fatalf("second delete must be a no-op, got %v", err)
	}
}

func TestAdminGrantLifecycle(t *testing.T) {
	st := newTestStore(t)
	u := mustCreateUser(t, st, "alice")
	granter := mustCreateUser(t, st, "root")

	if _, err := st.GetActiveAdminGrant(context.Background(), u.ID); err != ErrNotFound {
		t.Fatalf("expected no grant, got %v", err)
	}
	if _, err := st.UpsertAdminGrant(context.Background(), u.ID, models.RoleAdmin, &granter.ID); err != nil {
		t.Fatalf("grant: %v", err)
	}
	g, err := st.GetActiveAdminGrant(context.Background(), u.ID)
	if err != nil || g.AdminRole != models.RoleAdmin || !g.IsActive {
		t.Fatalf("expected active admin grant, got %+v err=%v", g, err)
	}

	if err := st.RevokeAdminGrant(context.Background(), u.ID); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if _, err := st.GetActiveAdminGrant(context.Background(), u.ID); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound after revoke, got %v", err)
	}
	if err := st.RevokeAdminGrant(context.Background(), u.ID); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound revoking twice, got %v", err)
	}

	// Re-granting reactivates the same row with the new role.
	if _, err := st.UpsertAdminGrant(context.Background(), u.ID, models.RoleSuperAdmin, &granter.ID); err != nil {
		t.Fatalf("re-grant: %v", err)
	}
	g, err = st.GetActiveAdminGrant(context.Background(), u.ID)
	if err != nil || g.AdminRole != models.RoleSuperAdmin {
		t.Fatalf("expected reactivated super_admin grant, got %+v err=%v", g, err)
	}
}

func TestBlockFilterIsSymmetric(t *testing.T) {
	st := newTestStore(t)
	alice := mustCreateUser(t, st, "alice")
	bob := mustCreateUser(t, st, "bob")
	carol := mustCreateUser(t, st, "carol")

	ap, err := st.CreatePost(context.Background(), alice.ID, "from alice", false)
	if err != nil {
		t.Fatalf("create post: %v", err)
	}
	if _, err := st.CreatePost(context.Background(), bob.ID, "from bob", false); err != nil {
		t.Fatalf("create post: %v", err)
	}

	if err := st.CreateBlock(context.Background(), alice.ID, bob.ID); err != nil {
		t.Fatalf("block: %v", err)
	}
	// Duplicate block is a no-op.
	if err := st.CreateBlock(context.Background(), alice.ID, bob.ID); err != nil {
		t.Fatalf("duplicate block: %v", err)
	}

	for viewer, wantPosts := range map[string]int{alice.ID: 1, bob.ID: 1, carol.ID: 2} {
		feed, err := st.FeedForViewer(context.Background(), viewer, 50, 0)
		if err != nil {
			t.Fatalf("feed: %v", err)
		}
		if len(feed) != wantPosts {
			t.Fatalf("viewer %s: expected %d posts, got %d", viewer, wantPosts, len(feed))
		}
	}

	if _, err := st.GetPostForViewer(context.Background(), ap.ID, bob.ID); err != ErrNotFound {
		t.Fatalf("blocked viewer must see absence, got %v", err)
	}
	// Ownership lookup ignores visibility; moderation needs it.
	if owner, err := st.GetPostOwner(context.Background(), ap.ID); err != nil || owner != alice.ID {
		t.Fatalf("owner lookup: %v %q", err, owner)
	}

	if err := st.DeleteBlock(context.Background(), alice.ID, bob.ID); err != nil {
		t.Fatalf("unblock: %v", err)
	}
	if _, err := st.GetPostForViewer(context.Background(), ap.ID, bob.ID); err != nil {
		t.Fatalf("post must be visible after unblock: %v", err)
	}
}

func TestSoftDeletedPostsDisappear(t *testing.T) {
	st := newTestStore(t)
	alice := mustCreateUser(t, st, "alice")
	p, err := st.CreatePost(context.Background(), alice.ID, "gone soon", false)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := st.SoftDeletePost(context.Background(), p.ID); err != nil {
		t.Fatalf("soft delete: %v", err)
	}
	if _, err := st.GetPostForViewer(context.Background(), p.ID, alice.ID); err != ErrNotFound {
		t.Fatalf("expected deleted post to be absent even for author, got %v", err)
	}
	if _, err := st.GetPostOwner(context.Background(), p.ID); err != ErrNotFound {
		t.Fatalf("expected owner lookup to miss deleted post, got %v", err)
	}
}

func TestRateEventWindowCounting(t *testing.T) {
	st := newTestStore(t)
	window := time.Now().UTC().Truncate(15 * time.Minute)

	for want := 1; want <= 3; want++ {
		n, err := st.IncrementRateEvent(context.Background(), "1.2.3.4|alice", "user_login_failed", window)
		if err != nil {
			t.Fatalf("increment: %v", err)
		}
		if n != want {
			t.Fatalf("expected count %d, got %d", want, n)
		}
	}
	if err := st.DeleteRateEvents(context.Background(), "1.2.3.4|alice", "user_login_failed"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	n, err := st.IncrementRateEvent(context.Background(), "1.2.3.4|alice", "user_login_failed", window)
	if err != nil || n != 1 {
		t.Fatalf("expected fresh window after delete, got %d err=%v", n, err)
	}
}
