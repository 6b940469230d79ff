package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"socialhub/internal/models"
)

// InsertAuthEvent writes one immutable audit row. There is no update or
// delete path for auth_events in this codebase.
func (s *Store) InsertAuthEvent(ctx context.Context, ev models.AuthEvent) error {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now().UTC()
	}
	if ev.MetadataJSON == "" {
		ev.MetadataJSON = "{}"
	}
	_, err := s.db.ExecContext(ctx, s.q(
		`INSERT INTO auth_events(id,user_id,action,ip,user_agent,metadata_json,created_at) VALUES(?,?,?,?,?,?,?)`),
		ev.ID, ev.UserID, ev.Action, ev.IP, ev.UserAgent, ev.MetadataJSON, ev.CreatedAt,
	)
	return err
}

func (s *Store) ListAuthEvents(ctx context.Context, query models.AuthEventQuery) ([]models.AuthEvent, error) {
	q := `SELECT id,user_id,action,ip,user_agent,metadata_json,created_at FROM auth_events`
	where := ""
	args := []any{}
	if query.Action != "" {
		where = ` WHERE action=?`
		args = append(args, query.Action)
	}
	if query.UserID != "" {
		if where == "" {
			where = ` WHERE user_id=?`
		} else {
			where += ` AND user_id=?`
		}
		args = append(args, query.UserID)
	}
	limit := query.Limit
	if limit <= 0 {
		limit = 50
	}
	q += where + ` ORDER BY created_at DESC LIMIT ? OFFSET ?`
	args = append(args, limit, query.Offset)

	rows, err := s.db.QueryContext(ctx, s.q(q), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.AuthEvent, 0, limit)
	for rows.Next() {
		var ev models.AuthEvent
		var userID sql.NullString
		if err := rows.Scan(&ev.ID, &userID, &ev.Action, &ev.IP, &ev.UserAgent, &ev.MetadataJSON, &ev.CreatedAt); err != nil {
			return nil, err
		}
		if userID.Valid {
			v := userID.String
			ev.UserID = &v
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}
