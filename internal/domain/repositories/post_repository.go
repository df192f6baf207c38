package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"leadflow.backend/internal/domain/entities"
)

// PostRepository defines company-feed data operations.
type PostRepository interface {
	Create(ctx context.Context, authorID uuid.UUID, content string) (*entities.Post, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Post, error)
	List(ctx context.Context, limit int) ([]*entities.Post, error)
	AddLike(ctx context.Context, postID, userID uuid.UUID, likedAt time.Time) error
	RemoveLike(ctx context.Context, postID, userID uuid.UUID) error
	// Edit overwrites the content after appending the pre-edit content to the
	// edit history.
	Edit(ctx context.Context, postID uuid.UUID, content string, editedBy uuid.UUID) (*entities.Post, error)
}
