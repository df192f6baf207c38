package repositories

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"
	"leadflow.backend/internal/domain/entities"
	domainerrors "leadflow.backend/internal/domain/errors"
	"leadflow.backend/internal/infrastructure/models"
	"leadflow.backend/pkg/utils"
)

// sortColumns whitelists the client-facing sort keys.
var sortColumns = map[string]string{
	"createdAt": "created_at",
	"updatedAt": "updated_at",
	"name":      "name",
	"status":    "status",
}

// LeadRepository implements lead data operations.
type LeadRepository struct {
	db *gorm.DB
}

// NewLeadRepository creates a new lead repository.
func NewLeadRepository(db *gorm.DB) *LeadRepository {
	return &LeadRepository{db: db}
}

// Create inserts a new lead. A duplicate leadgen id maps to
// ErrAlreadyExists so ingestion can treat redelivery as a no-op.
func (r *LeadRepository) Create(ctx context.Context, data *entities.NewLeadData) (*entities.Lead, error) {
	now := time.Now()
	m := &models.Lead{
		ID:        uuid.New(),
		LeadgenID: data.LeadgenID,
		FormID:    data.FormID,
		FormName:  data.FormName.Ptr(),
		Name:      data.Name,
		Email:     data.Email,
		Phone:     data.Phone.Ptr(),
		Budget:    data.Budget.Ptr(),
		PlotSize:  data.PlotSize.Ptr(),
		City:      data.City.Ptr(),
		Status:    string(entities.LeadStatusNew),
		Category:  string(entities.LeadCategoryNone),
		Source:    data.Source.Ptr(),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := getDB(ctx, r.db).Create(m).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, domainerrors.ErrAlreadyExists
		}
		return nil, err
	}
	return leadToEntity(m), nil
}

// GetByID loads a lead with its assignee references, without history. It
// honors the unit-of-work row lock so lifecycle writes can serialize.
func (r *LeadRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Lead, error) {
	db := getDB(ctx, r.db)

	var m models.Lead
	if err := applyLock(ctx, db).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}

	lead := leadToEntity(&m)

	assignees, err := r.assigneesFor(ctx, []uuid.UUID{id})
	if err != nil {
		return nil, err
	}
	lead.Assignees = assignees[id]
	return lead, nil
}

// GetResolved loads a lead with assignees and full history, every actor
// resolved to a display reference.
func (r *LeadRepository) GetResolved(ctx context.Context, id uuid.UUID) (*entities.Lead, error) {
	lead, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	db := getDB(ctx, r.db)

	var assignmentModels []models.LeadAssignmentEvent
	if err := db.Where("lead_id = ?", id).Order("created_at ASC").Find(&assignmentModels).Error; err != nil {
		return nil, err
	}
	var statusModels []models.LeadStatusEvent
	if err := db.Where("lead_id = ?", id).Order("created_at ASC").Find(&statusModels).Error; err != nil {
		return nil, err
	}

	refs, err := r.refsForHistory(ctx, assignmentModels, statusModels)
	if err != nil {
		return nil, err
	}

	lead.AssignmentHistory = make([]*entities.AssignmentEvent, 0, len(assignmentModels))
	for _, m := range assignmentModels {
		ev := &entities.AssignmentEvent{
			ID:         m.ID,
			AssignedBy: refs[m.AssignedBy],
			Note:       m.Note,
			Action:     entities.AssignmentAction(m.Action),
			CreatedAt:  m.CreatedAt,
		}
		if m.AssignedTo != nil {
			ev.AssignedTo = refs[*m.AssignedTo]
		}
		if m.UnassignedFrom != nil {
			ev.UnassignedFrom = refs[*m.UnassignedFrom]
		}
		lead.AssignmentHistory = append(lead.AssignmentHistory, ev)
	}

	lead.StatusHistory = make([]*entities.StatusEvent, 0, len(statusModels))
	for _, m := range statusModels {
		lead.StatusHistory = append(lead.StatusHistory, &entities.StatusEvent{
			ID:        m.ID,
			Status:    entities.LeadStatus(m.Status),
			ChangedBy: refs[m.ChangedBy],
			Info:      m.Info,
			CreatedAt: m.CreatedAt,
		})
	}

	return lead, nil
}

// List returns a filtered, sorted page of leads with assignees resolved.
func (r *LeadRepository) List(ctx context.Context, filter entities.ListLeadsFilter, restrictTo *uuid.UUID, pagination utils.PaginationParams) ([]*entities.Lead, int64, error) {
	db := getDB(ctx, r.db)

	query := db.Model(&models.Lead{})

	if restrictTo != nil {
		query = query.Where(
			"EXISTS (SELECT 1 FROM lead_assignees la WHERE la.lead_id = leads.id AND la.user_id = ?)",
			*restrictTo,
		)
	}
	if filter.Status != "" && filter.Status != "all" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Category != "" && filter.Category != "all" {
		query = query.Where("category = ?", filter.Category)
	}
	switch filter.AssignedTo {
	case "", "all":
	case "unassigned":
		query = query.Where("NOT EXISTS (SELECT 1 FROM lead_assignees la WHERE la.lead_id = leads.id)")
	default:
		assigneeID, err := uuid.Parse(filter.AssignedTo)
		if err != nil {
			return nil, 0, domainerrors.ErrInvalidInput
		}
		query = query.Where(
			"EXISTS (SELECT 1 FROM lead_assignees la WHERE la.lead_id = leads.id AND la.user_id = ?)",
			assigneeID,
		)
	}
	if filter.Search != "" {
		// LOWER + LIKE instead of ILIKE, so the same query runs on both
		// postgres and the sqlite test harness.
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where(
			"(LOWER(name) LIKE ? OR LOWER(email) LIKE ? OR LOWER(COALESCE(phone, '')) LIKE ?)",
			pattern, pattern, pattern,
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	orderBy := "created_at DESC"
	if col, ok := sortColumns[filter.Sort]; ok {
		orderBy = col + " DESC"
	}

	var leadModels []models.Lead
	err := query.Order(orderBy).
		Offset(pagination.CalculateOffset()).
		Limit(pagination.Limit).
		Find(&leadModels).Error
	if err != nil {
		return nil, 0, err
	}

	leads := make([]*entities.Lead, 0, len(leadModels))
	ids := make([]uuid.UUID, 0, len(leadModels))
	for i := range leadModels {
		leads = append(leads, leadToEntity(&leadModels[i]))
		ids = append(ids, leadModels[i].ID)
	}

	assignees, err := r.assigneesFor(ctx, ids)
	if err != nil {
		return nil, 0, err
	}
	for _, lead := range leads {
		lead.Assignees = assignees[lead.ID]
	}

	return leads, total, nil
}

// UpdateStatus sets the lead's pipeline status.
func (r *LeadRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status entities.LeadStatus) error {
	return r.updateLead(ctx, id, map[string]interface{}{"status": string(status)})
}

// UpdateCategory sets the lead's category tag.
func (r *LeadRepository) UpdateCategory(ctx context.Context, id uuid.UUID, category entities.LeadCategory) error {
	return r.updateLead(ctx, id, map[string]interface{}{"category": string(category)})
}

func (r *LeadRepository) updateLead(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()
	result := getDB(ctx, r.db).Model(&models.Lead{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// AddAssignee puts userID into the lead's assignee set. Adding an existing
// member is a no-op.
func (r *LeadRepository) AddAssignee(ctx context.Context, leadID, userID uuid.UUID) error {
	row := &models.LeadAssignee{LeadID: leadID, UserID: userID, CreatedAt: time.Now()}
	if err := getDB(ctx, r.db).Create(row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil
		}
		return err
	}
	return nil
}

// RemoveAssignee takes userID out of the lead's assignee set. Removing a
// non-member is a no-op.
func (r *LeadRepository) RemoveAssignee(ctx context.Context, leadID, userID uuid.UUID) error {
	return getDB(ctx, r.db).
		Where("lead_id = ? AND user_id = ?", leadID, userID).
		Delete(&models.LeadAssignee{}).Error
}

// AppendStatusEvent writes one append-only status history row.
func (r *LeadRepository) AppendStatusEvent(ctx context.Context, leadID uuid.UUID, status entities.LeadStatus, changedBy uuid.UUID, info string) error {
	row := &models.LeadStatusEvent{
		ID:        uuid.New(),
		LeadID:    leadID,
		Status:    string(status),
		ChangedBy: changedBy,
		Info:      info,
		CreatedAt: time.Now(),
	}
	return getDB(ctx, r.db).Create(row).Error
}

// AppendAssignmentEvent writes one append-only assignment history row.
func (r *LeadRepository) AppendAssignmentEvent(ctx context.Context, leadID uuid.UUID, record *entities.AssignmentRecord) error {
	row := &models.LeadAssignmentEvent{
		ID:             uuid.New(),
		LeadID:         leadID,
		AssignedTo:     record.AssignedTo,
		AssignedBy:     record.AssignedBy,
		Note:           record.Note,
		Action:         string(record.Action),
		UnassignedFrom: record.UnassignedFrom,
		CreatedAt:      time.Now(),
	}
	return getDB(ctx, r.db).Create(row).Error
}

// Count counts leads, optionally narrowed by status and/or assignee.
func (r *LeadRepository) Count(ctx context.Context, status *entities.LeadStatus, assignedTo *uuid.UUID) (int64, error) {
	query := getDB(ctx, r.db).Model(&models.Lead{})
	if status != nil {
		query = query.Where("status = ?", string(*status))
	}
	if assignedTo != nil {
		query = query.Where(
			"EXISTS (SELECT 1 FROM lead_assignees la WHERE la.lead_id = leads.id AND la.user_id = ?)",
			*assignedTo,
		)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// assigneesFor resolves assignee display references for a batch of leads in
// one joined query.
func (r *LeadRepository) assigneesFor(ctx context.Context, leadIDs []uuid.UUID) (map[uuid.UUID][]*entities.UserRef, error) {
	result := make(map[uuid.UUID][]*entities.UserRef, len(leadIDs))
	if len(leadIDs) == 0 {
		return result, nil
	}

	type assigneeRow struct {
		LeadID uuid.UUID
		ID     uuid.UUID
		Name   string
		Email  string
	}
	var rows []assigneeRow
	err := getDB(ctx, r.db).
		Table("lead_assignees").
		Select("lead_assignees.lead_id, users.id, users.name, users.email").
		Joins("JOIN users ON users.id = lead_assignees.user_id").
		Where("lead_assignees.lead_id IN ?", leadIDs).
		Order("lead_assignees.created_at ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to resolve assignees: %w", err)
	}

	for _, row := range rows {
		result[row.LeadID] = append(result[row.LeadID], &entities.UserRef{
			ID:    row.ID,
			Name:  row.Name,
			Email: row.Email,
		})
	}
	return result, nil
}

// refsForHistory collects every user id referenced by the history rows and
// resolves them in a single query.
func (r *LeadRepository) refsForHistory(ctx context.Context, assignments []models.LeadAssignmentEvent, statuses []models.LeadStatusEvent) (map[uuid.UUID]*entities.UserRef, error) {
	seen := make(map[uuid.UUID]struct{})
	for _, m := range assignments {
		seen[m.AssignedBy] = struct{}{}
		if m.AssignedTo != nil {
			seen[*m.AssignedTo] = struct{}{}
		}
		if m.UnassignedFrom != nil {
			seen[*m.UnassignedFrom] = struct{}{}
		}
	}
	for _, m := range statuses {
		seen[m.ChangedBy] = struct{}{}
	}

	ids := make([]uuid.UUID, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })

	if len(ids) == 0 {
		return map[uuid.UUID]*entities.UserRef{}, nil
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

func leadToEntity(m *models.Lead) *entities.Lead {
	return &entities.Lead{
		ID:                m.ID,
		LeadgenID:         m.LeadgenID,
		FormID:            m.FormID,
		FormName:          null.StringFromPtr(m.FormName),
		Name:              m.Name,
		Email:             m.Email,
		Phone:             null.StringFromPtr(m.Phone),
		Budget:            null.StringFromPtr(m.Budget),
		PlotSize:          null.StringFromPtr(m.PlotSize),
		City:              null.StringFromPtr(m.City),
		Status:            entities.LeadStatus(m.Status),
		Category:          entities.LeadCategory(m.Category),
		Source:            null.StringFromPtr(m.Source),
		Assignees:         []*entities.UserRef{},
		AssignmentHistory: []*entities.AssignmentEvent{},
		StatusHistory:     []*entities.StatusEvent{},
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}
