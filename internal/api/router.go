package api

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"socialhub/internal/config"
	"socialhub/internal/middleware"
	"socialhub/internal/models"
	"socialhub/internal/obs"
	"socialhub/internal/rate"
	"socialhub/internal/service"
	"socialhub/internal/store"
	"socialhub/internal/util"
)

type Handlers struct {
	cfg     config.Config
	svc     *service.Service
	limiter *rate.Limiter
}

// cookiePair names the session+CSRF cookies of one namespace. The user and
// admin surfaces get separate pairs so holding one never implies the other.
type cookiePair struct {
	session string
	csrf    string
}

func NewRouter(cfg config.Config, svc *service.Service) http.Handler {
	h := &Handlers{
		cfg:     cfg,
		svc:     svc,
		limiter: rate.NewLimiter(),
	}
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.RequestLogger)
	r.Use(obs.Instrument)
	r.Use(middleware.SecurityHeaders)
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.CORSAllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Content-Type", "X-CSRF-Token"},
			AllowCredentials: true,
		}))
	}

	r.Get("/health/live", func(w http.ResponseWriter, r *http.Request) {
		util.WriteJSON(w, 200, map[string]string{"status": "ok"})
	})
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		ready := map[string]any{
			"checked_at": time.Now().UTC().Format(time.RFC3339),
			"components": map[string]any{},
		}
		comps := ready["components"].(map[string]any)
		if err := h.svc.Store().Ping(r.Context()); err != nil {
			comps["database"] = map[string]any{"ok": false, "error": err.Error()}
			ready["status"] = "degraded"
			util.WriteJSON(w, 503, ready)
			return
		}
		comps["database"] = map[string]any{"ok": true}
		ready["status"] = "ready"
		util.WriteJSON(w, 200, ready)
	})
	r.Method("GET", "/metrics", obs.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.With(middleware.RateLimit(h.limiter, "signup", cfg.AuthRateLimit, cfg.AuthRateWindow(), cfg.TrustProxy)).Post("/signup", h.Signup)
		r.With(middleware.RateLimit(h.limiter, "login", cfg.AuthRateLimit, cfg.AuthRateWindow(), cfg.TrustProxy)).Post("/login", h.Login)
		r.Post("/logout", h.Logout)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireUser(h.svc, h.cfg.UserCookieName))
			r.Get("/me", h.Me)
			r.Get("/feed", h.Feed)
			r.Get("/posts/{id}", h.GetPost)
			r.Get("/users/{id}/posts", h.UserPosts)
			r.Get("/sessions", h.ListSessions)

			r.Group(func(r chi.Router) {
				r.Use(middleware.CSRFFromCookie(h.cfg.UserCSRFCookieName))
				r.Post("/posts", h.CreatePost)
				r.Delete("/posts/{id}", h.DeletePost)
				r.Post("/users/{id}/block", h.BlockUser)
				r.Delete("/users/{id}/block", h.UnblockUser)
				r.Delete("/sessions/{id}", h.RevokeSession)
			})
		})

		r.Route("/admin", func(r chi.Router) {
			r.With(middleware.RateLimit(h.limiter, "admin_login", cfg.AuthRateLimit, cfg.AuthRateWindow(), cfg.TrustProxy)).Post("/login", h.AdminLogin)
			r.Post("/logout", h.AdminLogout)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin(h.svc, h.cfg.AdminCookieName))
				r.Get("/me", h.AdminMe)
				r.Get("/sessions", h.AdminListSessions)
				r.Get("/users", h.AdminListUsers)
				r.Get("/audit-log", h.AdminAuditLog)

				r.Group(func(r chi.Router) {
					r.Use(middleware.CSRFFromCookie(h.cfg.AdminCSRFCookieName))
					r.Post("/users/{id}/suspend", h.AdminSuspendUser)
					r.Post("/users/{id}/unsuspend", h.AdminUnsuspendUser)
					r.Post("/users/{id}/ban", h.AdminBanUser)
					r.Post("/users/{id}/promote", h.AdminPromoteUser)
					r.Post("/users/{id}/demote", h.AdminDemoteUser)
					r.Delete("/posts/{id}", h.AdminDeletePost)
					r.Delete("/sessions/{id}", h.AdminRevokeSession)
				})
			})
		})
	})

	return r
}

func (h *Handlers) userCookies() cookiePair {
	return cookiePair{session: h.cfg.UserCookieName, csrf: h.cfg.UserCSRFCookieName}
}

func (h *Handlers) adminCookies() cookiePair {
	return cookiePair{session: h.cfg.AdminCookieName, csrf: h.cfg.AdminCSRFCookieName}
}

type signupRequest struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Password    string `json:"password"`
}

func (h *Handlers) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		util.WriteError(w, 400, "bad_request", "invalid json", middleware.RequestID(r.Context()))
		return
	}
	u, err := h.svc.Signup(r.Context(), req.Username, req.Email, req.DisplayName, req.Password)
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			util.WriteError(w, 409, "already_exists", "username or email is already taken", middleware.RequestID(r.Context()))
			return
		}
		util.WriteError(w, 400, "signup_failed", err.Error(), middleware.RequestID(r.Context()))
		return
	}
	util.WriteJSON(w, 201, userDTO(u))
}

type loginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	h.handleLogin(w, r, service.LoginTypeUser, h.userCookies())
}

func (h *Handlers) AdminLogin(w http.ResponseWriter, r *http.Request) {
	h.handleLogin(w, r, service.LoginTypeAdmin, h.adminCookies())
}

func (h *Handlers) handleLogin(w http.ResponseWriter, r *http.Request, loginType string, cookies cookiePair) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		util.WriteError(w, 400, "bad_request", "invalid json", middleware.RequestID(r.Context()))
		return
	}
	ip := middleware.ClientIP(r, h.cfg.TrustProxy)

	var (
		token string
		user  models.User
		err   error
	)
	if loginType == service.LoginTypeAdmin {
		token, user, err = h.svc.AdminLogin(r.Context(), req.Login, req.Password, ip, r.UserAgent())
	} else {
		token, user, err = h.svc.Login(r.Context(), req.Login, req.Password, ip, r.UserAgent())
	}
	if err != nil {
		normalized := strings.ToLower(strings.TrimSpace(req.Login))
		key := ip + "|" + normalized
		windowStart := time.Now().UTC().Truncate(15 * time.Minute)
		failCount, _ := h.svc.Store().IncrementRateEvent(r.Context(), key, loginType+"_login_failed", windowStart)
		_ = h.svc.Store().CleanupRateEventsBefore(r.Context(), time.Now().UTC().Add(-24*time.Hour))
		if failCount > 3 {
			backoff := time.Duration(1<<(minInt(failCount-3, 5))) * time.Second
			select {
			case <-time.After(backoff):
			case <-r.Context().Done():
			}
		}

		status := 401
		code := "invalid_credentials"
		if failCount > 6 {
			status, code = 429, "rate_limited"
		}
		if errors.Is(err, service.ErrSuspended) {
			status, code = 403, "suspended"
		}
		if errors.Is(err, service.ErrBanned) {
			status, code = 403, "banned"
		}
		util.WriteError(w, status, code, err.Error(), middleware.RequestID(r.Context()))
		return
	}
	normalized := strings.ToLower(strings.TrimSpace(req.Login))
	_ = h.svc.Store().DeleteRateEvents(r.Context(), ip+"|"+normalized, loginType+"_login_failed")

	csrfToken := randomToken()
	h.setAuthCookies(w, r, cookies, token, csrfToken)
	out := userDTO(user)
	out["csrf_token"] = csrfToken
	util.WriteJSON(w, 200, out)
}

func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	h.handleLogout(w, r, service.LoginTypeUser, h.userCookies())
}

func (h *Handlers) AdminLogout(w http.ResponseWriter, r *http.Request) {
	h.handleLogout(w, r, service.LoginTypeAdmin, h.adminCookies())
}

// handleLogout never fails from the caller's point of view: the cookies are
// cleared and 200 returned whether or not a session existed.
func (h *Handlers) handleLogout(w http.ResponseWriter, r *http.Request, loginType string, cookies cookiePair) {
	raw := ""
	if c, err := r.Cookie(cookies.session); err == nil {
		raw = c.Value
	}
	ip := middleware.ClientIP(r, h.cfg.TrustProxy)
	h.svc.Logout(r.Context(), raw, loginType, ip, r.UserAgent())
	h.clearAuthCookies(w, r, cookies)
	util.WriteJSON(w, 200, map[string]string{"status": "ok"})
}

func (h *Handlers) Me(w http.ResponseWriter, r *http.Request) {
	u, _ := middleware.User(r.Context())
	util.WriteJSON(w, 200, userDTO(u))
}

func (h *Handlers) ListSessions(w http.ResponseWriter, r *http.Request) {
	u, _ := middleware.User(r.Context())
	sess, _ := middleware.Session(r.Context())
	items, err := h.svc.ListSessions(r.Context(), u.ID, sess.TokenHash)
	if err != nil {
		util.WriteError(w, 500, "internal_error", err.Error(), middleware.RequestID(r.Context()))
		return
	}
	util.WriteJSON(w, 200, map[string]any{"items": items})
}

func (h *Handlers) RevokeSession(w http.ResponseWriter, r *http.Request) {
	u, _ := middleware.User(r.Context())
	sess, _ := middleware.Session(r.Context())
	id := chi.URLParam(r, "id")

	if id == "all" {
		n, err := h.svc.RevokeOtherSessions(r.Context(), u.ID, sess.TokenHash)
		if err != nil {
			util.WriteError(w, 500, "internal_error", err.Error(), middleware.RequestID(r.Context()))
			return
		}
		util.WriteJSON(w, 200, map[string]any{"status": "ok", "revoked": n})
		return
	}
	if id == sess.ID {
		util.WriteError(w, 409, "current_session", "use logout to end the current session", middleware.RequestID(r.Context()))
		return
	}
	if err := h.svc.RevokeSession(r.Context(), u.ID, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			util.WriteError(w, 404, "not_found", "session not found", middleware.RequestID(r.Context()))
			return
		}
		util.WriteError(w, 500, "internal_error", err.Error(), middleware.RequestID(r.Context()))
		return
	}
	util.WriteJSON(w, 200, map[string]string{"status": "revoked"})
}

type createPostRequest struct {
	Body        string `json:"body"`
	IsIncognito bool   `json:"is_incognito"`
}

func (h *Handlers) CreatePost(w http.ResponseWriter, r *http.Request) {
	u, _ := middleware.User(r.Context())
	var req createPostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		util.WriteError(w, 400, "bad_request", "invalid json", middleware.RequestID(r.Context()))
		return
	}
	p, err := h.svc.CreatePost(r.Context(), u.ID, req.Body, req.IsIncognito)
	if err != nil {
		util.WriteError(w, 400, "create_failed", err.Error(), middleware.RequestID(r.Context()))
		return
	}
	util.WriteJSON(w, 201, p)
}

func (h *Handlers) GetPost(w http.ResponseWriter, r *http.Request) {
	u, _ := middleware.User(r.Context())
	p, err := h.svc.GetPost(r.Context(), chi.URLParam(r, "id"), u.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			util.WriteError(w, 404, "not_found", "post not found", middleware.RequestID(r.Context()))
			return
		}
		util.WriteError(w, 500, "internal_error", err.Error(), middleware.RequestID(r.Context()))
		return
	}
	util.WriteJSON(w, 200, p)
}

func (h *Handlers) DeletePost(w http.ResponseWriter, r *http.Request) {
	u, _ := middleware.User(r.Context())
	if err := h.svc.DeletePost(r.Context(), u, chi.URLParam(r, "id")); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			util.WriteError(w, 404, "not_found", "post not found", middleware.RequestID(r.Context()))
		case errors.Is(err, service.ErrForbidden):
			util.WriteError(w, 403, "forbidden", "not the author of this post", middleware.RequestID(r.Context()))
		default:
			util.WriteError(w, 500, "internal_error", err.Error(), middleware.RequestID(r.Context()))
		}
		return
	}
	util.WriteJSON(w, 200, map[string]string{"status": "deleted"})
}

func (h *Handlers) Feed(w http.ResponseWriter, r *http.Request) {
	u, _ := middleware.User(r.Context())
	page, pageSize := parsePagination(r)
	items, err := h.svc.Feed(r.Context(), u.ID, pageSize, (page-1)*pageSize)
	if err != nil {
		util.WriteError(w, 500, "internal_error", err.Error(), middleware.RequestID(r.Context()))
		return
	}
	util.WriteJSON(w, 200, map[string]any{"items": items, "page": page, "page_size": pageSize})
}

func (h *Handlers) UserPosts(w http.ResponseWriter, r *http.Request) {
	u, _ := middleware.User(r.Context())
	page, pageSize := parsePagination(r)
	items, err := h.svc.UserPosts(r.Context(), chi.URLParam(r, "id"), u.ID, pageSize, (page-1)*pageSize)
	if err != nil {
		util.WriteError(w, 500, "internal_error", err.Error(), middleware.RequestID(r.Context()))
		return
	}
	util.WriteJSON(w, 200, map[string]any{"items": items, "page": page, "page_size": pageSize})
}

func (h *Handlers) BlockUser(w http.ResponseWriter, r *http.Request) {
	u, _ := middleware.User(r.Context())
	if err := h.svc.BlockUser(r.Context(), u.ID, chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			util.WriteError(w, 404, "not_found", "user not found", middleware.RequestID(r.Context()))
			return
		}
		util.WriteError(w, 400, "block_failed", err.Error(), middleware.RequestID(r.Context()))
		return
	}
	util.WriteJSON(w, 200, map[string]string{"status": "blocked"})
}

func (h *Handlers) UnblockUser(w http.ResponseWriter, r *http.Request) {
	u, _ := middleware.User(r.Context())
	if err := h.svc.UnblockUser(r.Context(), u.ID, chi.URLParam(r, "id")); err != nil {
		util.WriteError(w, 500, "internal_error", err.Error(), middleware.RequestID(r.Context()))
		return
	}
	util.WriteJSON(w, 200, map[string]string{"status": "unblocked"})
}

func (h *Handlers) AdminMe(w http.ResponseWriter, r *http.Request) {
	u, _ := middleware.AdminUser(r.Context())
	grant, _ := middleware.AdminGrant(r.Context())
	out := userDTO(u)
	out["admin_role"] = grant.AdminRole
	out["granted_at"] = grant.CreatedAt
	util.WriteJSON(w, 200, out)
}

// AdminListSessions is the admin-namespace flavor of session self-service.
// Session rows are namespace-agnostic, so the listing covers every live
// session the caller holds; is_current marks the admin session presented.
func (h *Handlers) AdminListSessions(w http.ResponseWriter, r *http.Request) {
	u, _ := middleware.AdminUser(r.Context())
	sess, _ := middleware.AdminSession(r.Context())
	items, err := h.svc.ListSessions(r.Context(), u.ID, sess.TokenHash)
	if err != nil {
		util.WriteError(w, 500, "internal_error", err.Error(), middleware.RequestID(r.Context()))
		return
	}
	util.WriteJSON(w, 200, map[string]any{"items": items})
}

func (h *Handlers) AdminRevokeSession(w http.ResponseWriter, r *http.Request) {
	u, _ := middleware.AdminUser(r.Context())
	sess, _ := middleware.AdminSession(r.Context())
	id := chi.URLParam(r, "id")

	if id == "all" {
		n, err := h.svc.RevokeOtherSessions(r.Context(), u.ID, sess.TokenHash)
		if err != nil {
			util.WriteError(w, 500, "internal_error", err.Error(), middleware.RequestID(r.Context()))
			return
		}
		util.WriteJSON(w, 200, map[string]any{"status": "ok", "revoked": n})
		return
	}
	if id == sess.ID {
		util.WriteError(w, 409, "current_session", "use logout to end the current session", middleware.RequestID(r.Context()))
		return
	}
	if err := h.svc.RevokeSession(r.Context(), u.ID, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			util.WriteError(w, 404, "not_found", "session not found", middleware.RequestID(r.Context()))
			return
		}
		util.WriteError(w, 500, "internal_error", err.Error(), middleware.RequestID(r.Context()))
		return
	}
	util.WriteJSON(w, 200, map[string]string{"status": "revoked"})
}

func (h *Handlers) AdminListUsers(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r)
	status := r.URL.Query().Get("status")
	users, err := h.svc.ListUsers(r.Context(), status, pageSize, (page-1)*pageSize)
	if err != nil {
		util.WriteError(w, 500, "internal_error", err.Error(), middleware.RequestID(r.Context()))
		return
	}
	out := make([]map[string]any, 0, len(users))
	for _, u := range users {
		out = append(out, userDTO(u))
	}
	util.WriteJSON(w, 200, map[string]any{"items": out, "page": page, "page_size": pageSize})
}

func (h *Handlers) AdminSuspendUser(w http.ResponseWriter, r *http.Request) {
	h.adminStatusChange(w, r, h.svc.SuspendUser, "suspended")
}

func (h *Handlers) AdminUnsuspendUser(w http.ResponseWriter, r *http.Request) {
	h.adminStatusChange(w, r, h.svc.UnsuspendUser, "active")
}

func (h *Handlers) AdminBanUser(w http.ResponseWriter, r *http.Request) {
	h.adminStatusChange(w, r, h.svc.BanUser, "banned")
}

func (h *Handlers) adminStatusChange(w http.ResponseWriter, r *http.Request, op func(context.Context, string) error, result string) {
	id := chi.URLParam(r, "id")
	if err := op(r.Context(), id); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			util.WriteError(w, 404, "not_found", "user not found", middleware.RequestID(r.Context()))
		case errors.Is(err, store.ErrConflict):
			util.WriteError(w, 409, "conflict", "user is not in a state this action applies to", middleware.RequestID(r.Context()))
		default:
			util.WriteError(w, 500, "internal_error", err.Error(), middleware.RequestID(r.Context()))
		}
		return
	}
	util.WriteJSON(w, 200, map[string]string{"status": result})
}

type promoteRequest struct {
	AdminRole string `json:"admin_role"`
}

// AdminPromoteUser requires the caller to hold the super_admin grant; a
// plain admin guard pass is not enough for grant management.
func (h *Handlers) AdminPromoteUser(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.AdminUser(r.Context())
	grant, _ := middleware.AdminGrant(r.Context())
	if grant.AdminRole != models.RoleSuperAdmin {
		util.WriteError(w, 403, "forbidden", "super_admin role required", middleware.RequestID(r.Context()))
		return
	}
	var req promoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		util.WriteError(w, 400, "bad_request", "invalid json", middleware.RequestID(r.Context()))
		return
	}
	if err := h.svc.PromoteAdmin(r.Context(), actor.ID, chi.URLParam(r, "id"), models.Role(req.AdminRole)); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			util.WriteError(w, 404, "not_found", "user not found", middleware.RequestID(r.Context()))
		case errors.Is(err, store.ErrConflict):
			util.WriteError(w, 409, "already_granted", "user already holds this admin role", middleware.RequestID(r.Context()))
		default:
			util.WriteError(w, 400, "promote_failed", err.Error(), middleware.RequestID(r.Context()))
		}
		return
	}
	util.WriteJSON(w, 200, map[string]string{"status": "promoted"})
}

func (h *Handlers) AdminDemoteUser(w http.ResponseWriter, r *http.Request) {
	grant, _ := middleware.AdminGrant(r.Context())
	if grant.AdminRole != models.RoleSuperAdmin {
		util.WriteError(w, 403, "forbidden", "super_admin role required", middleware.RequestID(r.Context()))
		return
	}
	target := chi.URLParam(r, "id")
	actor, _ := middleware.AdminUser(r.Context())
	if target == actor.ID {
		util.WriteError(w, 409, "conflict", "cannot demote yourself", middleware.RequestID(r.Context()))
		return
	}
	if err := h.svc.DemoteAdmin(r.Context(), target); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			util.WriteError(w, 404, "not_found", "no active admin grant for user", middleware.RequestID(r.Context()))
			return
		}
		util.WriteError(w, 500, "internal_error", err.Error(), middleware.RequestID(r.Context()))
		return
	}
	util.WriteJSON(w, 200, map[string]string{"status": "demoted"})
}

func (h *Handlers) AdminDeletePost(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.AdminUser(r.Context())
	if err := h.svc.DeletePost(r.Context(), actor, chi.URLParam(r, "id")); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			util.WriteError(w, 404, "not_found", "post not found", middleware.RequestID(r.Context()))
		case errors.Is(err, service.ErrForbidden):
			util.WriteError(w, 403, "forbidden", "moderation rights required", middleware.RequestID(r.Context()))
		default:
			util.WriteError(w, 500, "internal_error", err.Error(), middleware.RequestID(r.Context()))
		}
		return
	}
	util.WriteJSON(w, 200, map[string]string{"status": "deleted"})
}

func (h *Handlers) AdminAuditLog(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r)
	items, err := h.svc.ListAuthEvents(r.Context(), models.AuthEventQuery{
		Action: r.URL.Query().Get("action"),
		UserID: r.URL.Query().Get("user_id"),
		Limit:  pageSize,
		Offset: (page - 1) * pageSize,
	})
	if err != nil {
		util.WriteError(w, 500, "internal_error", err.Error(), middleware.RequestID(r.Context()))
		return
	}
	util.WriteJSON(w, 200, map[string]any{"items": items, "page": page, "page_size": pageSize})
}

func userDTO(u models.User) map[string]any {
	return map[string]any{
		"id":           u.ID,
		"username":     u.Username,
		"email":        u.Email,
		"display_name": u.DisplayName,
		"avatar_url":   u.AvatarURL,
		"role":         u.Role,
		"status":       u.Status,
	}
}

func parsePagination(r *http.Request) (int, int) {
	page := 1
	pageSize := 25
	if v := r.URL.Query().Get("page"); v != "" {
		if p, err := strconv.Atoi(v); err == nil && p > 0 {
			page = p
		}
	}
	if v := r.URL.Query().Get("page_size"); v != "" {
		if ps, err := strconv.Atoi(v); err == nil {
			if ps < 1 {
				ps = 1
			}
			if ps > 100 {
				ps = 100
			}
			pageSize = ps
		}
	}
	return page, pageSize
}

func randomToken() string {
	buf := make([]byte, 32)
	_, _ = rand.Read(buf)
	return base64.RawURLEncoding.EncodeToString(buf)
}

func (h *Handlers) setAuthCookies(w http.ResponseWriter, r *http.Request, cookies cookiePair, sessionToken, csrfToken string) {
	secure := h.cfg.ResolveCookieSecure(r)
	maxAge := int(h.cfg.SessionTTL().Seconds())
	http.SetCookie(w, &http.Cookie{
		Name:     cookies.session,
		Value:    sessionToken,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     cookies.csrf,
		Value:    csrfToken,
		Path:     "/",
		HttpOnly: false,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	})
}

func (h *Handlers) clearAuthCookies(w http.ResponseWriter, r *http.Request, cookies cookiePair) {
	secure := h.cfg.ResolveCookieSecure(r)
	expiredAt := time.Unix(1, 0).UTC()
	http.SetCookie(w, &http.Cookie{
		Name:     cookies.session,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
		Expires:  expiredAt,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     cookies.csrf,
		Value:    "",
		Path:     "/",
		HttpOnly: false,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
		Expires:  expiredAt,
	})
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
