package repositories

import (
	"context"

	"github.com/google/uuid"
	"leadflow.backend/internal/domain/entities"
	"leadflow.backend/pkg/utils"
)

// LeadRepository defines lead data operations.
//
// GetByID honors the unit-of-work row lock (see UnitOfWork.WithLock) so the
// lifecycle engine can serialize concurrent read-modify-write cycles on a
// single lead. GetResolved performs deep resolution: assignees and every
// nested history actor reference come back as display references, never raw
// identifiers.
type LeadRepository interface {
	Create(ctx context.Context, data *entities.NewLeadData) (*entities.Lead, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Lead, error)
	GetResolved(ctx context.Context, id uuid.UUID) (*entities.Lead, error)
	// List returns a page of leads with assignees resolved. When restrictTo
	// is non-nil only leads assigned to that user are visible, regardless of
	// filter contents.
	List(ctx context.Context, filter entities.ListLeadsFilter, restrictTo *uuid.UUID, pagination utils.PaginationParams) ([]*entities.Lead, int64, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status entities.LeadStatus) error
	UpdateCategory(ctx context.Context, id uuid.UUID, category entities.LeadCategory) error
	AddAssignee(ctx context.Context, leadID, userID uuid.UUID) error
	RemoveAssignee(ctx context.Context, leadID, userID uuid.UUID) error
	AppendStatusEvent(ctx context.Context, leadID uuid.UUID, status entities.LeadStatus, changedBy uuid.UUID, info string) error
	AppendAssignmentEvent(ctx context.Context, leadID uuid.UUID, record *entities.AssignmentRecord) error
	// Count counts leads, optionally narrowed by status and/or assignee.
	Count(ctx context.Context, status *entities.LeadStatus, assignedTo *uuid.UUID) (int64, error)
}
