package service

import (
	"context"
	"errors"
	"strings"

	"socialhub/internal/models"
	"socialhub/internal/store"
	"socialhub/internal/visibility"
)

const maxPostBody = 10_000

func (s *Service) CreatePost(ctx context.Context, authorID, body string, incognito bool) (models.Post, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return models.Post{}, errors.New("post body is required")
	}
	if len(body) > maxPostBody {
		return models.Post{}, errors.New("post body is too long")
	}
	return s.st.CreatePost(ctx, authorID, body, incognito)
}

// GetPost returns a single post as the viewer is allowed to see it: block
// exclusion happens in the query (a blocked post reads as absent), and
// incognito masking is applied before the row leaves the service.
func (s *Service) GetPost(ctx context.Context, postID, viewerID string) (models.Post, error) {
	p, err := s.st.GetPostForViewer(ctx, postID, viewerID)
	if err != nil {
		return models.Post{}, err
	}
	return visibility.MaskPost(p, viewerID), nil
}

func (s *Service) Feed(ctx context.Context, viewerID string, limit, offset int) ([]models.Post, error) {
	posts, err := s.st.FeedForViewer(ctx, viewerID, limit, offset)
	if err != nil {
		return nil, err
	}
	return visibility.MaskPosts(posts, viewerID), nil
}

func (s *Service) UserPosts(ctx context.Context, authorID, viewerID string, limit, offset int) ([]models.Post, error) {
	posts, err := s.st.PostsByAuthorForViewer(ctx, authorID, viewerID, limit, offset)
	if err != nil {
		return nil, err
	}
	return visibility.MaskPosts(posts, viewerID), nil
}

// DeletePost allows the author, or an actor whose role carries moderation
// rights, to remove a post. When the caller and the author block each
// other the post must read as absent, so the refusal is not-found rather
// than forbidden.
func (s *Service) DeletePost(ctx context.Context, actor models.User, postID string) error {
	authorID, err := s.st.GetPostOwner(ctx, postID)
	if err != nil {
		return err
	}
	if authorID != actor.ID && !actor.Role.CanModerate() {
		blocked, err := s.st.BlockExistsBetween(ctx, actor.ID, authorID)
		if err != nil {
			return err
		}
		if blocked {
			return store.ErrNotFound
		}
		return ErrForbidden
	}
	return s.st.SoftDeletePost(ctx, postID)
}

func (s *Service) BlockUser(ctx context.Context, blockerID, blockedID string) error {
	if blockerID == blockedID {
		return errors.New("cannot block yourself")
	}
	if _, err := s.st.GetUserByID(ctx, blockedID); err != nil {
		return err
	}
	return s.st.CreateBlock(ctx, blockerID, blockedID)
}

func (s *Service) UnblockUser(ctx context.Context, blockerID, blockedID string) error {
	return s.st.DeleteBlock(ctx, blockerID, blockedID)
}
