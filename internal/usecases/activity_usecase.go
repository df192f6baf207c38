package usecases

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"leadflow.backend/internal/domain/entities"
	domainerrors "leadflow.backend/internal/domain/errors"
	"leadflow.backend/internal/domain/repositories"
	"leadflow.backend/pkg/logger"
	"leadflow.backend/pkg/utils"
)

// ActivityUsecase handles the append-only audit log.
type ActivityUsecase struct {
	activityRepo repositories.ActivityRepository
	userRepo     repositories.UserRepository
}

// NewActivityUsecase creates a new activity usecase.
func NewActivityUsecase(activityRepo repositories.ActivityRepository, userRepo repositories.UserRepository) *ActivityUsecase {
	return &ActivityUsecase{activityRepo: activityRepo, userRepo: userRepo}
}

// Log appends one audit entry. A storage failure never propagates to the
// caller; the audit log must not be able to abort a primary operation.
func (u *ActivityUsecase) Log(ctx context.Context, userID *uuid.UUID, action string, details map[string]interface{}, meta entities.RequestMeta) {
	record := &entities.ActivityRecord{
		UserID:    userID,
		Action:    action,
		Details:   details,
		IPAddress: meta.IPAddress,
		UserAgent: meta.UserAgent,
	}
	if err := u.activityRepo.Create(ctx, record); err != nil {
		logger.Error(ctx, "failed to record activity", zap.String("action", action), zap.Error(err))
	}
}

// List returns a page of audit entries, newest first. Restricted to
// super_admin. Entries tagged lead_assigned get the assignee id inside
// details resolved to a display reference; every other payload stays opaque.
func (u *ActivityUsecase) List(ctx context.Context, actor *entities.Actor, pagination utils.PaginationParams) ([]*entities.Activity, int64, error) {
	if actor.Role != entities.UserRoleSuperAdmin {
		return nil, 0, domainerrors.ErrForbidden
	}

	activities, total, err := u.activityRepo.List(ctx, pagination)
	if err != nil {
		return nil, 0, err
	}

	u.enrichAssignmentDetails(ctx, activities)
	return activities, total, nil
}

// enrichAssignmentDetails resolves the assignedTo id carried in
// lead_assigned details. Best-effort: unresolvable ids stay as raw strings.
func (u *ActivityUsecase) enrichAssignmentDetails(ctx context.Context, activities []*entities.Activity) {
	targets := make(map[uuid.UUID][]*entities.Activity)
	for _, a := range activities {
		if a.Action != entities.ActionLeadAssigned || a.Details == nil {
			continue
		}
		raw, ok := a.Details["assignedTo"].(string)
		if !ok {
			continue
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			continue
		}
		targets[id] = append(targets[id], a)
	}
	if len(targets) == 0 {
		return
	}

	ids := make([]uuid.UUID, 0, len(targets))
	for id := range targets {
		ids = append(ids, id)
	}

	refs, err := u.userRepo.GetRefsByIDs(ctx, ids)
	if err != nil {
		logger.Warn(ctx, "failed to resolve assignment targets in audit log", zap.Error(err))
		return
	}

	for id, entries := range targets {
		ref, ok := refs[id]
		if !ok {
			continue
		}
		for _, a := range entries {
			a.Details["assignedTo"] = map[string]interface{}{
				"id":    ref.ID.String(),
				"name":  ref.Name,
				"email": ref.Email,
			}
		}
	}
}
