// Package visibility is the single place where authorship masking is
// decided. Every boundary that serializes posts applies it; no handler
// re-derives the branching.
package visibility

import "socialhub/internal/models"

const (
	AnonymousUsername    = "anonymous"
	AnonymousDisplayName = "Anonymous"
)

// MaskPost substitutes authorship fields on incognito content unless the
// viewer is the author. The author always sees their own identity on their
// own content. The function is pure and has no failure mode.
func MaskPost(p models.Post, viewerID string) models.Post {
	if !p.IsIncognito || p.AuthorID == viewerID {
		return p
	}
	p.AuthorID = ""
	p.AuthorUsername = AnonymousUsername
	p.AuthorDisplayName = AnonymousDisplayName
	p.AuthorAvatarURL = nil
	return p
}

// MaskPosts applies MaskPost to a listing. Block exclusion is not handled
// here: it happens in the query predicate so pagination and counts see only
// the visible set.
func MaskPosts(posts []models.Post, viewerID string) []models.Post {
	out := make([]models.Post, len(posts))
	for i, p := range posts {
		out[i] = MaskPost(p, viewerID)
	}
	return out
}
