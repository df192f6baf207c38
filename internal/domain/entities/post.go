package entities

import (
	"time"

	"github.com/google/uuid"
)

// Post is a company feed entry.
type Post struct {
	ID          uuid.UUID   `json:"id"`
	Author      *UserRef    `json:"author"`
	Content     string      `json:"content"`
	Likes       []*PostLike `json:"likes"`
	EditHistory []*PostEdit `json:"editHistory"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// PostLike records one user liking a post.
type PostLike struct {
	User    *UserRef  `json:"user"`
	LikedAt time.Time `json:"likedAt"`
}

// PostEdit records the pre-edit content of a post. Appended before every
// overwrite, never removed.
type PostEdit struct {
	PreviousContent string    `json:"previousContent"`
	EditedBy        *UserRef  `json:"editedBy"`
	EditedAt        time.Time `json:"editedAt"`
}

// CreatePostInput represents a new feed post.
type CreatePostInput struct {
	Content string `json:"content" binding:"required"`
}
