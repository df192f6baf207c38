package repositories

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"leadflow.backend/internal/domain/entities"
	"leadflow.backend/internal/infrastructure/models"
	"leadflow.backend/pkg/logger"
	"leadflow.backend/pkg/utils"
)

// ActivityRepository implements the append-only audit log.
type ActivityRepository struct {
	db *gorm.DB
}

// NewActivityRepository creates a new activity repository.
func NewActivityRepository(db *gorm.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// Create appends one audit entry.
func (r *ActivityRepository) Create(ctx context.Context, record *entities.ActivityRecord) error {
	details := "{}"
	if record.Details != nil {
		raw, err := json.Marshal(record.Details)
		if err != nil {
			return err
		}
		details = string(raw)
	}

	m := &models.Activity{
		ID:        uuid.New(),
		UserID:    record.UserID,
		Action:    record.Action,
		Details:   details,
		IPAddress: record.IPAddress,
		UserAgent: record.UserAgent,
		CreatedAt: time.Now(),
	}
	return getDB(ctx, r.db).Create(m).Error
}

// List returns a page of audit entries, newest first, with actor references
// resolved.
func (r *ActivityRepository) List(ctx context.Context, pagination utils.PaginationParams) ([]*entities.Activity, int64, error) {
	db := getDB(ctx, r.db)

	var total int64
	if err := db.Model(&models.Activity{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var activityModels []models.Activity
	err := db.Order("created_at DESC").
		Offset(pagination.CalculateOffset()).
		Limit(pagination.Limit).
		Find(&activityModels).Error
	if err != nil {
		return nil, 0, err
	}

	refs, err := r.actorRefs(ctx, activityModels)
	if err != nil {
		return nil, 0, err
	}

	activities := make([]*entities.Activity, 0, len(activityModels))
	for _, m := range activityModels {
		activity := &entities.Activity{
			ID:        m.ID,
			Action:    m.Action,
			Details:   map[string]interface{}{},
			IPAddress: m.IPAddress,
			UserAgent: m.UserAgent,
			CreatedAt: m.CreatedAt,
		}
		if m.UserID != nil {
			activity.User = refs[*m.UserID]
		}
		if m.Details != "" {
			if err := json.Unmarshal([]byte(m.Details), &activity.Details); err != nil {
				// A malformed payload should not hide the rest of the page.
				logger.Error(ctx, "failed to decode activity details", zap.Error(err), zap.String("activity_id", m.ID.String()))
				activity.Details = map[string]interface{}{}
			}
		}
		activities = append(activities, activity)
	}

	return activities, total, nil
}

func (r *ActivityRepository) actorRefs(ctx context.Context, activityModels []models.Activity) (map[uuid.UUID]*entities.UserRef, error) {
	seen := make(map[uuid.UUID]struct{})
	for _, m := range activityModels {
		if m.UserID != nil {
			seen[*m.UserID] = struct{}{}
		}
	}
	if len(seen) == 0 {
		return map[uuid.UUID]*entities.UserRef{}, nil
	}

	ids := make([]uuid.UUID, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}

	type refRow struct {
		ID    uuid.UUID
		Name  string
		Email string
	}
	var rows []refRow
	err := getDB(ctx, r.db).
		Table("users").
		Select("id, name, email").
		Where("id IN ?", ids).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	refs := make(map[uuid.UUID]*entities.UserRef, len(rows))
	for _, row := range rows {
		refs[row.ID] = &entities.UserRef{ID: row.ID, Name: row.Name, Email: row.Email}
	}
	return refs, nil
}
