package repositories

import (
	"context"

	"github.com/google/uuid"
	"leadflow.backend/internal/domain/entities"
)

// UserRepository defines user data operations
type UserRepository interface {
	Create(ctx context.Context, user *entities.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.User, error)
	GetByEmail(ctx context.Context, email string) (*entities.User, error)
	// GetRefsByIDs resolves user ids to display references for audit and
	// history enrichment. Unknown ids are simply absent from the result.
	GetRefsByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*entities.UserRef, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, input *entities.UpdateProfileInput) (*entities.User, error)
	EmailTaken(ctx context.Context, email string, excludeID uuid.UUID) (bool, error)
	Count(ctx context.Context) (int64, error)
}
