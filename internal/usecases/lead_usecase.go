package usecases

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"go.uber.org/zap"
	"leadflow.backend/internal/domain/entities"
	domainerrors "leadflow.backend/internal/domain/errors"
	"leadflow.backend/internal/domain/repositories"
	"leadflow.backend/internal/infrastructure/facebook"
	"leadflow.backend/pkg/crypto"
	"leadflow.backend/pkg/logger"
	"leadflow.backend/pkg/utils"
)

// LeadUsecase drives the lead lifecycle: pipeline transitions, assignment
// bookkeeping, categorization and listing. Every mutation runs inside a
// transaction with the lead row locked, so concurrent updates serialize
// instead of clobbering each other.
type LeadUsecase struct {
	leadRepo repositories.LeadRepository
	userRepo repositories.UserRepository
	activity *ActivityUsecase
	uow      repositories.UnitOfWork
	gateway  FacebookGateway
}

// NewLeadUsecase creates a new lead usecase.
func NewLeadUsecase(
	leadRepo repositories.LeadRepository,
	userRepo repositories.UserRepository,
	activity *ActivityUsecase,
	uow repositories.UnitOfWork,
	gateway FacebookGateway,
) *LeadUsecase {
	return &LeadUsecase{
		leadRepo: leadRepo,
		userRepo: userRepo,
		activity: activity,
		uow:      uow,
		gateway:  gateway,
	}
}

// canModify reports whether the actor may mutate the lead: admins always,
// sales reps only when they are in the assignee set.
func canModify(actor *entities.Actor, lead *entities.Lead) bool {
	return actor.Role.IsAdmin() || lead.IsAssignedTo(actor.ID)
}

// conversionEventName maps a pipeline status to its ad-platform event.
// Statuses without a mapping send nothing.
func conversionEventName(status entities.LeadStatus) string {
	switch status {
	case entities.LeadStatusContacted:
		return "Lead"
	case entities.LeadStatusQualified:
		return "CompleteRegistration"
	case entities.LeadStatusPurchased:
		return "Purchase"
	}
	return ""
}

// List returns a page of leads visible to the actor. Sales reps only ever
// see leads they are assigned to, whatever the filters say.
func (u *LeadUsecase) List(ctx context.Context, actor *entities.Actor, filter entities.ListLeadsFilter, pagination utils.PaginationParams) ([]*entities.Lead, int64, error) {
	var restrictTo *uuid.UUID
	if !actor.Role.IsAdmin() {
		restrictTo = &actor.ID
		// the assignedTo filter belongs to admins; combined with the
		// membership restriction it would shrink a rep's view to an
		// intersection (or nothing, for "unassigned")
		filter.AssignedTo = ""
	}
	return u.leadRepo.List(ctx, filter, restrictTo, pagination)
}

// Get returns one deeply-resolved lead.
func (u *LeadUsecase) Get(ctx context.Context, actor *entities.Actor, leadID uuid.UUID) (*entities.Lead, error) {
	lead, err := u.leadRepo.GetResolved(ctx, leadID)
	if err != nil {
		return nil, err
	}
	if !canModify(actor, lead) {
		return nil, domainerrors.ErrForbidden
	}
	return lead, nil
}

// Create records a manually entered lead.
func (u *LeadUsecase) Create(ctx context.Context, actor *entities.Actor, input *entities.CreateLeadInput, meta entities.RequestMeta) (*entities.Lead, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, domainerrors.BadRequest("name is required")
	}

	manualID := "manual_" + uuid.New().String()
	data := &entities.NewLeadData{
		LeadgenID: manualID,
		FormID:    manualID,
		Name:      name,
		Source:    nullStringFrom("manual_entry"),
		Phone:     nullStringFrom(strings.TrimSpace(input.Phone)),
		City:      nullStringFrom(strings.TrimSpace(input.City)),
	}

	lead, err := u.leadRepo.Create(ctx, data)
	if err != nil {
		return nil, err
	}

	u.activity.Log(ctx, &actor.ID, entities.ActionLeadCreated, map[string]interface{}{
		"leadId": lead.ID.String(),
		"name":   lead.Name,
		"source": "manual_entry",
	}, meta)

	return lead, nil
}

// UpdateStatus advances a lead exactly one step along the pipeline. The
// transition, its history entry and the lead row update commit atomically
// under a row lock; the conversion forward afterwards is best-effort and can
// never fail the update.
func (u *LeadUsecase) UpdateStatus(ctx context.Context, actor *entities.Actor, leadID uuid.UUID, input *entities.UpdateStatusInput, meta entities.RequestMeta) (*entities.Lead, error) {
	if !input.Status.IsValid() {
		return nil, domainerrors.BadRequest("invalid status")
	}
	if strings.TrimSpace(input.Info) == "" {
		return nil, domainerrors.BadRequest("info is required for a status change")
	}

	var oldStatus entities.LeadStatus
	var snapshot *entities.Lead

	err := u.uow.Do(ctx, func(txCtx context.Context) error {
		lockCtx := u.uow.WithLock(txCtx)

		lead, err := u.leadRepo.GetByID(lockCtx, leadID)
		if err != nil {
			return err
		}
		if !canModify(actor, lead) {
			return domainerrors.ErrForbidden
		}
		if !lead.Status.CanAdvanceTo(input.Status) {
			return domainerrors.NewAppError(400, domainerrors.CodeBadRequest,
				fmt.Sprintf("cannot move lead from %s to %s", lead.Status, input.Status),
				domainerrors.ErrInvalidTransition)
		}

		oldStatus = lead.Status
		snapshot = lead

		if err := u.leadRepo.UpdateStatus(txCtx, leadID, input.Status); err != nil {
			return err
		}
		return u.leadRepo.AppendStatusEvent(txCtx, leadID, input.Status, actor.ID, input.Info)
	})
	if err != nil {
		return nil, err
	}

	u.activity.Log(ctx, &actor.ID, entities.ActionLeadStatusChanged, map[string]interface{}{
		"leadId":    leadID.String(),
		"oldStatus": string(oldStatus),
		"newStatus": string(input.Status),
	}, meta)

	u.forwardConversion(ctx, actor, snapshot, input.Status, meta)

	return u.leadRepo.GetResolved(ctx, leadID)
}

// forwardConversion pushes the matching conversion event for a status change.
// Failures are recorded as conversion_failed activities and otherwise
// swallowed.
func (u *LeadUsecase) forwardConversion(ctx context.Context, actor *entities.Actor, lead *entities.Lead, status entities.LeadStatus, meta entities.RequestMeta) {
	eventName := conversionEventName(status)
	if eventName == "" || u.gateway == nil {
		return
	}

	event := &facebook.ConversionEvent{
		EventName: eventName,
		EventTime: time.Now().Unix(),
		CustomData: facebook.ConversionCustomData{
			LeadgenID:  lead.LeadgenID,
			LeadStatus: string(status),
			Value:      budgetValue(lead.Budget.String),
			Currency:   "USD",
		},
	}
	if lead.Email != "" {
		event.UserData.Emails = []string{facebook.HashUserData(lead.Email)}
	}
	if lead.Phone.Valid && lead.Phone.String != "" {
		event.UserData.Phones = []string{facebook.HashUserData(lead.Phone.String)}
	}

	if err := u.gateway.SendConversionEvent(ctx, event); err != nil {
		logger.Warn(ctx, "conversion forward failed",
			zap.String("lead_id", lead.ID.String()),
			zap.String("event_name", eventName),
			zap.Error(err),
		)
		u.activity.Log(ctx, &actor.ID, entities.ActionConversionFailed, map[string]interface{}{
			"leadId":    lead.ID.String(),
			"eventName": eventName,
			"error":     err.Error(),
		}, meta)
		return
	}

	u.activity.Log(ctx, &actor.ID, entities.ActionConversionSent, map[string]interface{}{
		"leadId":    lead.ID.String(),
		"eventName": eventName,
		"status":    string(status),
	}, meta)
}

// budgetValue parses the free-text budget field into an event value.
func budgetValue(budget string) float64 {
	if budget == "" {
		return 0
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(budget), 64)
	if err != nil {
		return 0
	}
	return v
}

// appliedAssignment is one assignment-set change that actually took effect.
type appliedAssignment struct {
	action entities.AssignmentAction
	userID uuid.UUID
}

// Assign applies a batch of unassignments then assignments. Admins may batch
// freely; a sales rep may only hand a lead they hold to exactly one other
// user, and must re-enter their password. No-op changes are skipped
// silently; each applied change gets one history entry and one activity.
func (u *LeadUsecase) Assign(ctx context.Context, actor *entities.Actor, leadID uuid.UUID, input *entities.AssignLeadInput, meta entities.RequestMeta) (*entities.Lead, error) {
	if len(input.Assign) == 0 && len(input.Unassign) == 0 {
		return nil, domainerrors.BadRequest("nothing to assign or unassign")
	}

	if !actor.Role.IsAdmin() {
		if err := u.checkSalesRepReassignment(ctx, actor, input); err != nil {
			return nil, err
		}
	}

	// validate targets up front so a bad id fails the whole batch
	targetIDs := append(append([]uuid.UUID{}, input.Assign...), input.Unassign...)
	refs, err := u.userRepo.GetRefsByIDs(ctx, targetIDs)
	if err != nil {
		return nil, err
	}
	for _, id := range targetIDs {
		if _, ok := refs[id]; !ok {
			return nil, domainerrors.BadRequest("unknown user: " + id.String())
		}
	}

	var applied []appliedAssignment

	err = u.uow.Do(ctx, func(txCtx context.Context) error {
		lockCtx := u.uow.WithLock(txCtx)

		lead, err := u.leadRepo.GetByID(lockCtx, leadID)
		if err != nil {
			return err
		}
		if !canModify(actor, lead) {
			return domainerrors.ErrForbidden
		}

		// unassignments first, so a reassignment within one batch works
		for _, userID := range input.Unassign {
			if !lead.IsAssignedTo(userID) {
				continue
			}
			if err := u.leadRepo.RemoveAssignee(txCtx, leadID, userID); err != nil {
				return err
			}
			uid := userID
			if err := u.leadRepo.AppendAssignmentEvent(txCtx, leadID, &entities.AssignmentRecord{
				AssignedBy:     actor.ID,
				Note:           input.Note,
				Action:         entities.AssignmentActionUnassigned,
				UnassignedFrom: &uid,
			}); err != nil {
				return err
			}
			markUnassigned(lead, userID)
			applied = append(applied, appliedAssignment{entities.AssignmentActionUnassigned, userID})
		}

		for _, userID := range input.Assign {
			if lead.IsAssignedTo(userID) {
				continue
			}
			if err := u.leadRepo.AddAssignee(txCtx, leadID, userID); err != nil {
				return err
			}
			uid := userID
			if err := u.leadRepo.AppendAssignmentEvent(txCtx, leadID, &entities.AssignmentRecord{
				AssignedTo: &uid,
				AssignedBy: actor.ID,
				Note:       input.Note,
				Action:     entities.AssignmentActionAssigned,
			}); err != nil {
				return err
			}
			lead.Assignees = append(lead.Assignees, refs[userID])
			applied = append(applied, appliedAssignment{entities.AssignmentActionAssigned, userID})
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, change := range applied {
		details := map[string]interface{}{
			"leadId": leadID.String(),
			"note":   input.Note,
		}
		action := entities.ActionLeadUnassigned
		if change.action == entities.AssignmentActionAssigned {
			action = entities.ActionLeadAssigned
			details["assignedTo"] = change.userID.String()
		} else {
			details["unassignedFrom"] = change.userID.String()
		}
		u.activity.Log(ctx, &actor.ID, action, details, meta)
	}

	return u.leadRepo.GetResolved(ctx, leadID)
}

// checkSalesRepReassignment enforces the single-target, password-confirmed
// shape of a sales-rep handoff.
func (u *LeadUsecase) checkSalesRepReassignment(ctx context.Context, actor *entities.Actor, input *entities.AssignLeadInput) error {
	if len(input.Assign) != 1 {
		return domainerrors.Forbidden("sales representatives may only reassign to a single user")
	}
	for _, id := range input.Unassign {
		if id != actor.ID {
			return domainerrors.Forbidden("sales representatives may only unassign themselves")
		}
	}
	if input.Password == "" {
		return domainerrors.BadRequest("password confirmation is required")
	}

	self, err := u.userRepo.GetByID(ctx, actor.ID)
	if err != nil {
		return err
	}
	if !crypto.CheckPassword(input.Password, self.PasswordHash) {
		return domainerrors.BadRequest("password confirmation failed")
	}
	return nil
}

// markUnassigned drops a user from the in-memory assignee set so later
// membership checks inside the same batch see the change.
func markUnassigned(lead *entities.Lead, userID uuid.UUID) {
	kept := lead.Assignees[:0]
	for _, ref := range lead.Assignees {
		if ref != nil && ref.ID != userID {
			kept = append(kept, ref)
		}
	}
	lead.Assignees = kept
}

// SetCategory overwrites the hot/warm/cold tag. Category changes carry no
// history, only an audit entry.
func (u *LeadUsecase) SetCategory(ctx context.Context, actor *entities.Actor, leadID uuid.UUID, input *entities.UpdateCategoryInput, meta entities.RequestMeta) (*entities.Lead, error) {
	if !input.Category.IsValid() {
		return nil, domainerrors.BadRequest("invalid category")
	}

	var oldCategory entities.LeadCategory
	err := u.uow.Do(ctx, func(txCtx context.Context) error {
		lockCtx := u.uow.WithLock(txCtx)

		lead, err := u.leadRepo.GetByID(lockCtx, leadID)
		if err != nil {
			return err
		}
		if !canModify(actor, lead) {
			return domainerrors.ErrForbidden
		}

		oldCategory = lead.Category
		return u.leadRepo.UpdateCategory(txCtx, leadID, input.Category)
	})
	if err != nil {
		return nil, err
	}

	u.activity.Log(ctx, &actor.ID, entities.ActionLeadCategoryChanged, map[string]interface{}{
		"leadId":      leadID.String(),
		"oldCategory": string(oldCategory),
		"newCategory": string(input.Category),
	}, meta)

	return u.leadRepo.GetResolved(ctx, leadID)
}

// nullStringFrom maps "" to an absent value instead of an empty one.
func nullStringFrom(s string) null.String {
	if s == "" {
		return null.String{}
	}
	return null.StringFrom(s)
}
