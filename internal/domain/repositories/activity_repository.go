package repositories

import (
	"context"

	"leadflow.backend/internal/domain/entities"
	"leadflow.backend/pkg/utils"
)

// ActivityRepository defines audit-log operations. Entries are append-only;
// there is no update or delete.
type ActivityRepository interface {
	Create(ctx context.Context, record *entities.ActivityRecord) error
	List(ctx context.Context, pagination utils.PaginationParams) ([]*entities.Activity, int64, error)
}
