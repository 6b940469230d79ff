// Package audit records authentication-class events. Recording is strictly
// best-effort: a failed audit write or geolocation lookup must never turn
// a successful login or logout into an error.
package audit

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"socialhub/internal/geoip"
	"socialhub/internal/models"
	"socialhub/internal/store"
)

type Event struct {
	UserID        *string
	Action        string // models.AuthLoginSuccess etc.
	LoginType     string // "user" or "admin"
	Identifier    string // login as presented, before resolution
	IP            string
	UserAgent     string
	Success       bool
	FailureReason string // user_not_found, wrong_password, account_banned, ...
}

type Recorder struct {
	st  *store.Store
	geo geoip.Resolver
}

func NewRecorder(st *store.Store, geo geoip.Resolver) *Recorder {
	if geo == nil {
		geo = geoip.NoopResolver{}
	}
	return &Recorder{st: st, geo: geo}
}

// Record resolves geolocation (bounded by the resolver's own timeout) and
// writes exactly one immutable row. Errors are logged and swallowed. The
// write runs on a detached context so a client disconnect mid-request
// cannot cancel it.
func (r *Recorder) Record(ctx context.Context, ev Event) {
	meta := map[string]any{
		"event_type": ev.Action,
		"login_type": ev.LoginType,
		"identifier": ev.Identifier,
		"success":    ev.Success,
	}
	if ev.FailureReason != "" {
		meta["failure_reason"] = ev.FailureReason
	}
	if loc, ok := r.geo.Resolve(ctx, ev.IP); ok {
		meta["geo"] = loc
	}
	raw, err := json.Marshal(meta)
	if err != nil {
		log.Printf("audit marshal failed action=%s err=%v", ev.Action, err)
		raw = []byte(`{}`)
	}

	writeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.st.InsertAuthEvent(writeCtx, models.AuthEvent{
		UserID:       ev.UserID,
		Action:       ev.Action,
		IP:           ev.IP,
		UserAgent:    ev.UserAgent,
		MetadataJSON: string(raw),
	}); err != nil {
		log.Printf("audit write failed action=%s identifier=%s err=%v", ev.Action, ev.Identifier, err)
	}
}
