package usecases_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"
	"leadflow.backend/internal/domain/entities"
	domainerrors "leadflow.backend/internal/domain/errors"
	"leadflow.backend/internal/infrastructure/facebook"
	"leadflow.backend/internal/usecases"
	"leadflow.backend/pkg/crypto"
	"leadflow.backend/pkg/utils"
)

type leadFixture struct {
	leadRepo     *MockLeadRepository
	userRepo     *MockUserRepository
	activityRepo *MockActivityRepository
	uow          *MockUnitOfWork
	gateway      *MockFacebookGateway
	uc           *usecases.LeadUsecase
}

func newLeadFixture() *leadFixture {
	f := &leadFixture{
		leadRepo:     new(MockLeadRepository),
		userRepo:     new(MockUserRepository),
		activityRepo: new(MockActivityRepository),
		uow:          new(MockUnitOfWork),
		gateway:      new(MockFacebookGateway),
	}
	activity := usecases.NewActivityUsecase(f.activityRepo, f.userRepo)
	f.uc = usecases.NewLeadUsecase(f.leadRepo, f.userRepo, activity, f.uow, f.gateway)
	return f
}

func (f *leadFixture) expectTx() {
	f.uow.On("Do", mock.Anything, mock.Anything).Return(nil)
	f.uow.On("WithLock", mock.Anything).Return(nil)
}

func (f *leadFixture) expectActivity() {
	f.activityRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
}

func adminActor() *entities.Actor {
	return &entities.Actor{ID: uuid.New(), Email: "admin@leadflow.io", Role: entities.UserRoleAdmin}
}

func repActor() *entities.Actor {
	return &entities.Actor{ID: uuid.New(), Email: "rep@leadflow.io", Role: entities.UserRoleSalesRep}
}

func leadWithStatus(status entities.LeadStatus, assignees ...uuid.UUID) *entities.Lead {
	lead := &entities.Lead{
		ID:        uuid.New(),
		LeadgenID: "lg-1",
		Name:      "John",
		Email:     "john@example.com",
		Phone:     null.StringFrom("+100"),
		Budget:    null.StringFrom("50000"),
		Status:    status,
		Category:  entities.LeadCategoryNone,
	}
	for _, id := range assignees {
		uid := id
		lead.Assignees = append(lead.Assignees, &entities.UserRef{ID: uid, Name: "Rep"})
	}
	return lead
}

func TestLeadUsecase_UpdateStatus_Validation(t *testing.T) {
	f := newLeadFixture()
	actor := adminActor()
	ctx := context.Background()

	_, err := f.uc.UpdateStatus(ctx, actor, uuid.New(), &entities.UpdateStatusInput{Status: "Bogus", Info: "x"}, entities.RequestMeta{})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidInput)

	_, err = f.uc.UpdateStatus(ctx, actor, uuid.New(), &entities.UpdateStatusInput{Status: entities.LeadStatusContacted, Info: "   "}, entities.RequestMeta{})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidInput)
}

func TestLeadUsecase_UpdateStatus_NotFound(t *testing.T) {
	f := newLeadFixture()
	f.expectTx()
	leadID := uuid.New()
	f.leadRepo.On("GetByID", mock.Anything, leadID).Return(nil, domainerrors.ErrNotFound)

	_, err := f.uc.UpdateStatus(context.Background(), adminActor(), leadID, &entities.UpdateStatusInput{Status: entities.LeadStatusContacted, Info: "called"}, entities.RequestMeta{})
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestLeadUsecase_UpdateStatus_ForbiddenForUnassignedRep(t *testing.T) {
	f := newLeadFixture()
	f.expectTx()
	lead := leadWithStatus(entities.LeadStatusNew, uuid.New())
	f.leadRepo.On("GetByID", mock.Anything, lead.ID).Return(lead, nil)

	_, err := f.uc.UpdateStatus(context.Background(), repActor(), lead.ID, &entities.UpdateStatusInput{Status: entities.LeadStatusContacted, Info: "called"}, entities.RequestMeta{})
	assert.ErrorIs(t, err, domainerrors.ErrForbidden)
	f.leadRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestLeadUsecase_UpdateStatus_TransitionRules(t *testing.T) {
	cases := []struct {
		name string
		from entities.LeadStatus
		to   entities.LeadStatus
		ok   bool
	}{
		{"one step forward", entities.LeadStatusNew, entities.LeadStatusContacted, true},
		{"skip a step", entities.LeadStatusNew, entities.LeadStatusQualified, false},
		{"backward", entities.LeadStatusQualified, entities.LeadStatusContacted, false},
		{"same status", entities.LeadStatusVisited, entities.LeadStatusVisited, false},
		{"through visited", entities.LeadStatusContacted, entities.LeadStatusVisited, true},
		{"qualify visited", entities.LeadStatusVisited, entities.LeadStatusQualified, true},
		{"final step", entities.LeadStatusQualified, entities.LeadStatusPurchased, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newLeadFixture()
			f.expectTx()
			f.expectActivity()
			actor := adminActor()
			lead := leadWithStatus(tc.from)

			f.leadRepo.On("GetByID", mock.Anything, lead.ID).Return(lead, nil)
			if tc.ok {
				f.leadRepo.On("UpdateStatus", mock.Anything, lead.ID, tc.to).Return(nil).Once()
				f.leadRepo.On("AppendStatusEvent", mock.Anything, lead.ID, tc.to, actor.ID, "note").Return(nil).Once()
				f.leadRepo.On("GetResolved", mock.Anything, lead.ID).Return(lead, nil)
				f.gateway.On("SendConversionEvent", mock.Anything, mock.Anything).Return(nil).Maybe()
			}

			_, err := f.uc.UpdateStatus(context.Background(), actor, lead.ID, &entities.UpdateStatusInput{Status: tc.to, Info: "note"}, entities.RequestMeta{})
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, domainerrors.ErrInvalidTransition)
				f.leadRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
			}
		})
	}
}

func TestLeadUsecase_UpdateStatus_SendsConversionWithHashedUserData(t *testing.T) {
	f := newLeadFixture()
	f.expectTx()
	f.expectActivity()
	actor := adminActor()
	lead := leadWithStatus(entities.LeadStatusNew)

	f.leadRepo.On("GetByID", mock.Anything, lead.ID).Return(lead, nil)
	f.leadRepo.On("UpdateStatus", mock.Anything, lead.ID, entities.LeadStatusContacted).Return(nil)
	f.leadRepo.On("AppendStatusEvent", mock.Anything, lead.ID, entities.LeadStatusContacted, actor.ID, "called").Return(nil)
	f.leadRepo.On("GetResolved", mock.Anything, lead.ID).Return(lead, nil)

	var sent *facebook.ConversionEvent
	f.gateway.On("SendConversionEvent", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		sent = args.Get(1).(*facebook.ConversionEvent)
	}).Return(nil).Once()

	_, err := f.uc.UpdateStatus(context.Background(), actor, lead.ID, &entities.UpdateStatusInput{Status: entities.LeadStatusContacted, Info: "called"}, entities.RequestMeta{})
	require.NoError(t, err)

	require.NotNil(t, sent)
	assert.Equal(t, "Lead", sent.EventName)
	assert.Equal(t, []string{facebook.HashUserData("john@example.com")}, sent.UserData.Emails)
	assert.Equal(t, []string{facebook.HashUserData("+100")}, sent.UserData.Phones)
	assert.NotContains(t, sent.UserData.Emails, "john@example.com", "raw identifiers never leave the system")
	assert.Equal(t, 50000.0, sent.CustomData.Value)
	assert.Equal(t, "lg-1", sent.CustomData.LeadgenID)
}

func TestLeadUsecase_UpdateStatus_ConversionFailureDoesNotFailUpdate(t *testing.T) {
	f := newLeadFixture()
	f.expectTx()
	actor := adminActor()
	lead := leadWithStatus(entities.LeadStatusQualified)

	f.leadRepo.On("GetByID", mock.Anything, lead.ID).Return(lead, nil)
	f.leadRepo.On("UpdateStatus", mock.Anything, lead.ID, entities.LeadStatusPurchased).Return(nil)
	f.leadRepo.On("AppendStatusEvent", mock.Anything, lead.ID, entities.LeadStatusPurchased, actor.ID, "paid").Return(nil)
	f.leadRepo.On("GetResolved", mock.Anything, lead.ID).Return(lead, nil)
	f.gateway.On("SendConversionEvent", mock.Anything, mock.Anything).Return(errors.New("upstream down"))

	var actions []string
	f.activityRepo.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		actions = append(actions, args.Get(1).(*entities.ActivityRecord).Action)
	}).Return(nil)

	_, err := f.uc.UpdateStatus(context.Background(), actor, lead.ID, &entities.UpdateStatusInput{Status: entities.LeadStatusPurchased, Info: "paid"}, entities.RequestMeta{})
	require.NoError(t, err, "a dead ad platform must not block the pipeline")
	assert.Contains(t, actions, entities.ActionLeadStatusChanged)
	assert.Contains(t, actions, entities.ActionConversionFailed)
	assert.NotContains(t, actions, entities.ActionConversionSent)
}

func TestLeadUsecase_UpdateStatus_NoConversionForVisited(t *testing.T) {
	f := newLeadFixture()
	f.expectTx()
	f.expectActivity()
	actor := adminActor()
	lead := leadWithStatus(entities.LeadStatusContacted)

	f.leadRepo.On("GetByID", mock.Anything, lead.ID).Return(lead, nil)
	f.leadRepo.On("UpdateStatus", mock.Anything, lead.ID, entities.LeadStatusVisited).Return(nil)
	f.leadRepo.On("AppendStatusEvent", mock.Anything, lead.ID, entities.LeadStatusVisited, actor.ID, "site visit").Return(nil)
	f.leadRepo.On("GetResolved", mock.Anything, lead.ID).Return(lead, nil)

	_, err := f.uc.UpdateStatus(context.Background(), actor, lead.ID, &entities.UpdateStatusInput{Status: entities.LeadStatusVisited, Info: "site visit"}, entities.RequestMeta{})
	require.NoError(t, err)
	f.gateway.AssertNotCalled(t, "SendConversionEvent", mock.Anything, mock.Anything)
}

func TestLeadUsecase_Assign_AdminBatchSkipsNoOps(t *testing.T) {
	f := newLeadFixture()
	f.expectTx()
	actor := adminActor()
	already := uuid.New()
	target := uuid.New()
	gone := uuid.New()
	lead := leadWithStatus(entities.LeadStatusNew, already)

	f.userRepo.On("GetRefsByIDs", mock.Anything, mock.Anything).Return(map[uuid.UUID]*entities.UserRef{
		already: {ID: already, Name: "Already"},
		target:  {ID: target, Name: "Target"},
		gone:    {ID: gone, Name: "Gone"},
	}, nil)
	f.leadRepo.On("GetByID", mock.Anything, lead.ID).Return(lead, nil)
	f.leadRepo.On("AddAssignee", mock.Anything, lead.ID, target).Return(nil).Once()
	f.leadRepo.On("AppendAssignmentEvent", mock.Anything, lead.ID, mock.Anything).Return(nil).Once()
	f.leadRepo.On("GetResolved", mock.Anything, lead.ID).Return(lead, nil)

	var actions []string
	f.activityRepo.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		actions = append(actions, args.Get(1).(*entities.ActivityRecord).Action)
	}).Return(nil)

	// target is new, already is already assigned, gone is not assigned
	_, err := f.uc.Assign(context.Background(), actor, lead.ID, &entities.AssignLeadInput{
		Assign:   []uuid.UUID{target, already},
		Unassign: []uuid.UUID{gone},
		Note:     "spread the load",
	}, entities.RequestMeta{})
	require.NoError(t, err)

	f.leadRepo.AssertNotCalled(t, "RemoveAssignee", mock.Anything, mock.Anything, mock.Anything)
	f.leadRepo.AssertNumberOfCalls(t, "AddAssignee", 1)
	assert.Equal(t, []string{entities.ActionLeadAssigned}, actions)
}

func TestLeadUsecase_Assign_UnassignBeforeAssign(t *testing.T) {
	f := newLeadFixture()
	f.expectTx()
	f.expectActivity()
	actor := adminActor()
	old := uuid.New()
	next := uuid.New()
	lead := leadWithStatus(entities.LeadStatusNew, old)

	f.userRepo.On("GetRefsByIDs", mock.Anything, mock.Anything).Return(map[uuid.UUID]*entities.UserRef{
		old:  {ID: old},
		next: {ID: next},
	}, nil)
	f.leadRepo.On("GetByID", mock.Anything, lead.ID).Return(lead, nil)
	f.leadRepo.On("RemoveAssignee", mock.Anything, lead.ID, old).Return(nil).Once()
	f.leadRepo.On("AddAssignee", mock.Anything, lead.ID, next).Return(nil).Once()

	var records []*entities.AssignmentRecord
	f.leadRepo.On("AppendAssignmentEvent", mock.Anything, lead.ID, mock.Anything).Run(func(args mock.Arguments) {
		records = append(records, args.Get(2).(*entities.AssignmentRecord))
	}).Return(nil)
	f.leadRepo.On("GetResolved", mock.Anything, lead.ID).Return(lead, nil)

	_, err := f.uc.Assign(context.Background(), actor, lead.ID, &entities.AssignLeadInput{
		Assign:   []uuid.UUID{next},
		Unassign: []uuid.UUID{old},
	}, entities.RequestMeta{})
	require.NoError(t, err)

	require.Len(t, records, 2)
	assert.Equal(t, entities.AssignmentActionUnassigned, records[0].Action)
	assert.Equal(t, entities.AssignmentActionAssigned, records[1].Action)
}

func TestLeadUsecase_Assign_UnknownUserFailsWholeBatch(t *testing.T) {
	f := newLeadFixture()
	actor := adminActor()
	leadID := uuid.New()
	known := uuid.New()
	unknown := uuid.New()

	f.userRepo.On("GetRefsByIDs", mock.Anything, mock.Anything).Return(map[uuid.UUID]*entities.UserRef{
		known: {ID: known},
	}, nil)

	_, err := f.uc.Assign(context.Background(), actor, leadID, &entities.AssignLeadInput{
		Assign: []uuid.UUID{known, unknown},
	}, entities.RequestMeta{})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidInput)
	f.leadRepo.AssertNotCalled(t, "AddAssignee", mock.Anything, mock.Anything, mock.Anything)
}

func TestLeadUsecase_Assign_EmptyBatch(t *testing.T) {
	f := newLeadFixture()
	_, err := f.uc.Assign(context.Background(), adminActor(), uuid.New(), &entities.AssignLeadInput{}, entities.RequestMeta{})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidInput)
}

func TestLeadUsecase_Assign_SalesRepRules(t *testing.T) {
	hash, err := crypto.HashPassword("correct-horse")
	require.NoError(t, err)

	actor := repActor()
	other := uuid.New()

	t.Run("multiple targets forbidden", func(t *testing.T) {
		f := newLeadFixture()
		_, err := f.uc.Assign(context.Background(), actor, uuid.New(), &entities.AssignLeadInput{
			Assign:   []uuid.UUID{uuid.New(), uuid.New()},
			Password: "correct-horse",
		}, entities.RequestMeta{})
		assert.ErrorIs(t, err, domainerrors.ErrForbidden)
	})

	t.Run("unassigning someone else forbidden", func(t *testing.T) {
		f := newLeadFixture()
		_, err := f.uc.Assign(context.Background(), actor, uuid.New(), &entities.AssignLeadInput{
			Assign:   []uuid.UUID{other},
			Unassign: []uuid.UUID{uuid.New()},
			Password: "correct-horse",
		}, entities.RequestMeta{})
		assert.ErrorIs(t, err, domainerrors.ErrForbidden)
	})

	t.Run("missing password", func(t *testing.T) {
		f := newLeadFixture()
		_, err := f.uc.Assign(context.Background(), actor, uuid.New(), &entities.AssignLeadInput{
			Assign: []uuid.UUID{other},
		}, entities.RequestMeta{})
		assert.ErrorIs(t, err, domainerrors.ErrInvalidInput)
	})

	t.Run("wrong password", func(t *testing.T) {
		f := newLeadFixture()
		f.userRepo.On("GetByID", mock.Anything, actor.ID).Return(&entities.User{ID: actor.ID, PasswordHash: hash}, nil)
		_, err := f.uc.Assign(context.Background(), actor, uuid.New(), &entities.AssignLeadInput{
			Assign:   []uuid.UUID{other},
			Password: "wrong",
		}, entities.RequestMeta{})
		assert.ErrorIs(t, err, domainerrors.ErrInvalidInput)
	})

	t.Run("valid handoff", func(t *testing.T) {
		f := newLeadFixture()
		f.expectTx()
		f.expectActivity()
		lead := leadWithStatus(entities.LeadStatusNew, actor.ID)

		f.userRepo.On("GetByID", mock.Anything, actor.ID).Return(&entities.User{ID: actor.ID, PasswordHash: hash}, nil)
		f.userRepo.On("GetRefsByIDs", mock.Anything, mock.Anything).Return(map[uuid.UUID]*entities.UserRef{
			other:    {ID: other},
			actor.ID: {ID: actor.ID},
		}, nil)
		f.leadRepo.On("GetByID", mock.Anything, lead.ID).Return(lead, nil)
		f.leadRepo.On("RemoveAssignee", mock.Anything, lead.ID, actor.ID).Return(nil).Once()
		f.leadRepo.On("AddAssignee", mock.Anything, lead.ID, other).Return(nil).Once()
		f.leadRepo.On("AppendAssignmentEvent", mock.Anything, lead.ID, mock.Anything).Return(nil)
		f.leadRepo.On("GetResolved", mock.Anything, lead.ID).Return(lead, nil)

		_, err := f.uc.Assign(context.Background(), actor, lead.ID, &entities.AssignLeadInput{
			Assign:   []uuid.UUID{other},
			Unassign: []uuid.UUID{actor.ID},
			Password: "correct-horse",
		}, entities.RequestMeta{})
		assert.NoError(t, err)
	})
}

func TestLeadUsecase_SetCategory(t *testing.T) {
	f := newLeadFixture()
	f.expectTx()
	actor := adminActor()
	lead := leadWithStatus(entities.LeadStatusNew)

	f.leadRepo.On("GetByID", mock.Anything, lead.ID).Return(lead, nil)
	f.leadRepo.On("UpdateCategory", mock.Anything, lead.ID, entities.LeadCategoryHot).Return(nil)
	f.leadRepo.On("GetResolved", mock.Anything, lead.ID).Return(lead, nil)

	var record *entities.ActivityRecord
	f.activityRepo.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		record = args.Get(1).(*entities.ActivityRecord)
	}).Return(nil)

	_, err := f.uc.SetCategory(context.Background(), actor, lead.ID, &entities.UpdateCategoryInput{Category: entities.LeadCategoryHot}, entities.RequestMeta{})
	require.NoError(t, err)

	require.NotNil(t, record)
	assert.Equal(t, entities.ActionLeadCategoryChanged, record.Action)
	assert.Equal(t, "none", record.Details["oldCategory"])
	assert.Equal(t, "hot", record.Details["newCategory"])

	_, err = f.uc.SetCategory(context.Background(), actor, lead.ID, &entities.UpdateCategoryInput{Category: "tepid"}, entities.RequestMeta{})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidInput)
}

func TestLeadUsecase_List_ScopesSalesReps(t *testing.T) {
	f := newLeadFixture()
	actor := repActor()
	page := utils.GetPaginationParams(1, 10)

	var forwarded entities.ListLeadsFilter
	f.leadRepo.On("List", mock.Anything, mock.Anything, &actor.ID, page).Run(func(args mock.Arguments) {
		forwarded = args.Get(1).(entities.ListLeadsFilter)
	}).Return([]*entities.Lead{}, int64(0), nil).Once()
	_, _, err := f.uc.List(context.Background(), actor, entities.ListLeadsFilter{AssignedTo: "all", Status: "New"}, page)
	require.NoError(t, err)
	f.leadRepo.AssertExpectations(t)
	assert.Equal(t, "New", forwarded.Status)
	assert.Empty(t, forwarded.AssignedTo, "reps cannot re-scope by assignee")

	admin := adminActor()
	f.leadRepo.On("List", mock.Anything, mock.Anything, (*uuid.UUID)(nil), page).Run(func(args mock.Arguments) {
		forwarded = args.Get(1).(entities.ListLeadsFilter)
	}).Return([]*entities.Lead{}, int64(0), nil).Once()
	_, _, err = f.uc.List(context.Background(), admin, entities.ListLeadsFilter{AssignedTo: "unassigned"}, page)
	require.NoError(t, err)
	assert.Equal(t, "unassigned", forwarded.AssignedTo)
}

func TestLeadUsecase_List_RepIgnoresAssignedToFilter(t *testing.T) {
	f := newLeadFixture()
	actor := repActor()
	page := utils.GetPaginationParams(1, 10)
	mine := []*entities.Lead{{ID: uuid.New(), Name: "Mine"}}

	// whatever a rep puts in assignedTo, the repo call carries only the
	// membership restriction, so they still see every lead of theirs
	for _, assignedTo := range []string{"unassigned", uuid.NewString()} {
		f.leadRepo.On("List", mock.Anything, entities.ListLeadsFilter{}, &actor.ID, page).
			Return(mine, int64(1), nil).Once()
		leads, total, err := f.uc.List(context.Background(), actor, entities.ListLeadsFilter{AssignedTo: assignedTo}, page)
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, leads, 1)
		assert.Equal(t, "Mine", leads[0].Name)
	}
	f.leadRepo.AssertExpectations(t)
}

func TestLeadUsecase_Get_Permissions(t *testing.T) {
	f := newLeadFixture()
	rep := repActor()
	lead := leadWithStatus(entities.LeadStatusNew, uuid.New())
	f.leadRepo.On("GetResolved", mock.Anything, lead.ID).Return(lead, nil)

	_, err := f.uc.Get(context.Background(), rep, lead.ID)
	assert.ErrorIs(t, err, domainerrors.ErrForbidden)

	_, err = f.uc.Get(context.Background(), adminActor(), lead.ID)
	assert.NoError(t, err)
}

func TestLeadUsecase_Create_ManualDefaults(t *testing.T) {
	f := newLeadFixture()
	f.expectActivity()
	actor := adminActor()

	var data *entities.NewLeadData
	created := leadWithStatus(entities.LeadStatusNew)
	f.leadRepo.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		data = args.Get(1).(*entities.NewLeadData)
	}).Return(created, nil)

	_, err := f.uc.Create(context.Background(), actor, &entities.CreateLeadInput{Name: "  Walk-in ", Phone: "+200", City: "Lahore"}, entities.RequestMeta{})
	require.NoError(t, err)

	require.NotNil(t, data)
	assert.Equal(t, "Walk-in", data.Name)
	assert.True(t, len(data.LeadgenID) > len("manual_"))
	assert.Contains(t, data.LeadgenID, "manual_")
	assert.Equal(t, "manual_entry", data.Source.String)
	assert.Equal(t, "+200", data.Phone.String)

	_, err = f.uc.Create(context.Background(), actor, &entities.CreateLeadInput{Name: "   "}, entities.RequestMeta{})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidInput)
}
