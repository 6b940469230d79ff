package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"socialhub/internal/models"
)

const postSelect = `SELECT p.id,p.author_id,u.username,u.display_name,u.avatar_url,p.body,p.is_incognito,p.created_at
	FROM posts p JOIN users u ON u.id = p.author_id`

// blockFilter removes content where the viewer and the author block each
// other in either direction. It lives in the WHERE clause, not in
// post-processing, so LIMIT/OFFSET and counts operate on the visible set
// only.
const blockFilter = ` AND NOT EXISTS (
	SELECT 1 FROM blocks b
	WHERE (b.blocker_id = p.author_id AND b.blocked_id = ?)
	   OR (b.blocker_id = ? AND b.blocked_id = p.author_id))`

func (s *Store) CreatePost(ctx context.Context, authorID, body string, incognito bool) (models.Post, error) {
	now := time.Now().UTC()
	p := models.Post{
		ID:          uuid.NewString(),
		AuthorID:    authorID,
		Body:        body,
		IsIncognito: incognito,
		CreatedAt:   now,
	}
	_, err := s.db.ExecContext(ctx, s.q(
		`INSERT INTO posts(id,author_id,body,is_incognito,created_at) VALUES(?,?,?,?,?)`),
		p.ID, p.AuthorID, p.Body, boolToInt(p.IsIncognito), p.CreatedAt,
	)
	return p, err
}

// GetPostForViewer loads one post through the block filter. A post hidden
// by a block comes back as ErrNotFound, indistinguishable from true
// absence.
func (s *Store) GetPostForViewer(ctx context.Context, postID, viewerID string) (models.Post, error) {
	row := s.db.QueryRowContext(ctx, s.q(
		postSelect+` WHERE p.id=? AND p.deleted_at IS NULL`+blockFilter),
		postID, viewerID, viewerID,
	)
	return scanPost(row)
}

func (s *Store) FeedForViewer(ctx context.Context, viewerID string, limit, offset int) ([]models.Post, error) {
	rows, err := s.db.QueryContext(ctx, s.q(
		postSelect+` WHERE p.deleted_at IS NULL`+blockFilter+` ORDER BY p.created_at DESC LIMIT ? OFFSET ?`),
		viewerID, viewerID, limit, offset,
	)
	if err != nil {
		return nil, err
	}
	return collectPosts(rows)
}

func (s *Store) PostsByAuthorForViewer(ctx context.Context, authorID, viewerID string, limit, offset int) ([]models.Post, error) {
	rows, err := s.db.QueryContext(ctx, s.q(
		postSelect+` WHERE p.author_id=? AND p.deleted_at IS NULL`+blockFilter+` ORDER BY p.created_at DESC LIMIT ? OFFSET ?`),
		authorID, viewerID, viewerID, limit, offset,
	)
	if err != nil {
		return nil, err
	}
	return collectPosts(rows)
}

// GetPostOwner returns the author of a live post without any visibility
// filtering. Callers use it only for ownership decisions, never for
// serving content.
func (s *Store) GetPostOwner(ctx context.Context, postID string) (string, error) {
	var authorID string
	err := s.db.QueryRowContext(ctx, s.q(
		`SELECT author_id FROM posts WHERE id=? AND deleted_at IS NULL`), postID).Scan(&authorID)
	if err == sql.ErrNoRows {
		return "", ErrNotFound
	}
	return authorID, err
}

func (s *Store) SoftDeletePost(ctx context.Context, postID string) error {
	res, err := s.db.ExecContext(ctx, s.q(
		`UPDATE posts SET deleted_at=? WHERE id=? AND deleted_at IS NULL`), time.Now().UTC(), postID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) CreateBlock(ctx context.Context, blockerID, blockedID string) error {
	_, err := s.db.ExecContext(ctx, s.q(
		`INSERT INTO blocks(id,blocker_id,blocked_id,created_at) VALUES(?,?,?,?)
		 ON CONFLICT(blocker_id, blocked_id) DO NOTHING`),
		uuid.NewString(), blockerID, blockedID, time.Now().UTC(),
	)
	return err
}

func (s *Store) DeleteBlock(ctx context.Context, blockerID, blockedID string) error {
	_, err := s.db.ExecContext(ctx, s.q(
		`DELETE FROM blocks WHERE blocker_id=? AND blocked_id=?`), blockerID, blockedID)
	return err
}

func (s *Store) BlockExistsBetween(ctx context.Context, a, b string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, s.q(
		`SELECT COUNT(1) FROM blocks WHERE (blocker_id=? AND blocked_id=?) OR (blocker_id=? AND blocked_id=?)`),
		a, b, b, a,
	).Scan(&n)
	return n > 0, err
}

func scanPost(row rowScanner) (models.Post, error) {
	var p models.Post
	var avatar sql.NullString
	var incognito int
	err := row.Scan(&p.ID, &p.AuthorID, &p.AuthorUsername, &p.AuthorDisplayName, &avatar, &p.Body, &incognito, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return models.Post{}, ErrNotFound
	}
	if err != nil {
		return models.Post{}, err
	}
	p.IsIncognito = incognito == 1
	if avatar.Valid {
		v := avatar.String
		p.AuthorAvatarURL = &v
	}
	return p, nil
}

func collectPosts(rows *sql.Rows) ([]models.Post, error) {
	defer rows.Close()
	var out []models.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
