package middleware

import (
	"context"

	"socialhub/internal/models"
)

type ctxKey string

const (
	ctxRequestID    ctxKey = "request_id"
	ctxUser         ctxKey = "user"
	ctxSession      ctxKey = "session"
	ctxAdminUser    ctxKey = "admin_user"
	ctxAdminSession ctxKey = "admin_session"
	ctxAdminGrant   ctxKey = "admin_grant"
)

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxRequestID, id)
}

func RequestID(ctx context.Context) string {
	v, _ := ctx.Value(ctxRequestID).(string)
	return v
}

func WithUser(ctx context.Context, u models.User) context.Context {
	return context.WithValue(ctx, ctxUser, u)
}

func User(ctx context.Context) (models.User, bool) {
	u, ok := ctx.Value(ctxUser).(models.User)
	return u, ok
}

func WithSession(ctx context.Context, s models.Session) context.Context {
	return context.WithValue(ctx, ctxSession, s)
}

func Session(ctx context.Context) (models.Session, bool) {
	s, ok := ctx.Value(ctxSession).(models.Session)
	return s, ok
}

// The admin principal travels under separate keys: one person may hold a
// user session and an admin session in the same request, and the guards
// must never read each other's identity.
func WithAdminUser(ctx context.Context, u models.User) context.Context {
	return context.WithValue(ctx, ctxAdminUser, u)
}

func AdminUser(ctx context.Context) (models.User, bool) {
	u, ok := ctx.Value(ctxAdminUser).(models.User)
	return u, ok
}

func WithAdminSession(ctx context.Context, s models.Session) context.Context {
	return context.WithValue(ctx, ctxAdminSession, s)
}

func AdminSession(ctx context.Context) (models.Session, bool) {
	s, ok := ctx.Value(ctxAdminSession).(models.Session)
	return s, ok
}

func WithAdminGrant(ctx context.Context, g models.AdminGrant) context.Context {
	return context.WithValue(ctx, ctxAdminGrant, g)
}

func AdminGrant(ctx context.Context) (models.AdminGrant, bool) {
	g, ok := ctx.Value(ctxAdminGrant).(models.AdminGrant)
	return g, ok
}
