package usecases_test

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"leadflow.backend/internal/domain/entities"
	"leadflow.backend/internal/infrastructure/facebook"
	"leadflow.backend/pkg/utils"
)

// Mock UnitOfWork
type MockUnitOfWork struct {
	mock.Mock
}

func (m *MockUnitOfWork) Do(ctx context.Context, f func(context.Context) error) error {
	m.Called(ctx, f)
	return f(ctx)
}

func (m *MockUnitOfWork) WithLock(ctx context.Context) context.Context {
	m.Called(ctx)
	return ctx
}

// Mock LeadRepository
type MockLeadRepository struct {
	mock.Mock
}

func (m *MockLeadRepository) Create(ctx context.Context, data *entities.NewLeadData) (*entities.Lead, error) {
	args := m.Called(ctx, data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Lead), args.Error(1)
}

func (m *MockLeadRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Lead, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Lead), args.Error(1)
}

func (m *MockLeadRepository) GetResolved(ctx context.Context, id uuid.UUID) (*entities.Lead, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Lead), args.Error(1)
}

func (m *MockLeadRepository) List(ctx context.Context, filter entities.ListLeadsFilter, restrictTo *uuid.UUID, pagination utils.PaginationParams) ([]*entities.Lead, int64, error) {
	args := m.Called(ctx, filter, restrictTo, pagination)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*entities.Lead), args.Get(1).(int64), args.Error(2)
}

func (m *MockLeadRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status entities.LeadStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockLeadRepository) UpdateCategory(ctx context.Context, id uuid.UUID, category entities.LeadCategory) error {
	args := m.Called(ctx, id, category)
	return args.Error(0)
}

func (m *MockLeadRepository) AddAssignee(ctx context.Context, leadID, userID uuid.UUID) error {
	args := m.Called(ctx, leadID, userID)
	return args.Error(0)
}

func (m *MockLeadRepository) RemoveAssignee(ctx context.Context, leadID, userID uuid.UUID) error {
	args := m.Called(ctx, leadID, userID)
	return args.Error(0)
}

func (m *MockLeadRepository) AppendStatusEvent(ctx context.Context, leadID uuid.UUID, status entities.LeadStatus, changedBy uuid.UUID, info string) error {
	args := m.Called(ctx, leadID, status, changedBy, info)
	return args.Error(0)
}

func (m *MockLeadRepository) AppendAssignmentEvent(ctx context.Context, leadID uuid.UUID, record *entities.AssignmentRecord) error {
	args := m.Called(ctx, leadID, record)
	return args.Error(0)
}

func (m *MockLeadRepository) Count(ctx context.Context, status *entities.LeadStatus, assignedTo *uuid.UUID) (int64, error) {
	args := m.Called(ctx, status, assignedTo)
	return args.Get(0).(int64), args.Error(1)
}

// Mock UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *entities.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockUserRepository) GetRefsByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*entities.UserRef, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uuid.UUID]*entities.UserRef), args.Error(1)
}

func (m *MockUserRepository) UpdateProfile(ctx context.Context, id uuid.UUID, input *entities.UpdateProfileInput) (*entities.User, error) {
	args := m.Called(ctx, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockUserRepository) EmailTaken(ctx context.Context, email string, excludeID uuid.UUID) (bool, error) {
	args := m.Called(ctx, email, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// Mock ActivityRepository
type MockActivityRepository struct {
	mock.Mock
}

func (m *MockActivityRepository) Create(ctx context.Context, record *entities.ActivityRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockActivityRepository) List(ctx context.Context, pagination utils.PaginationParams) ([]*entities.Activity, int64, error) {
	args := m.Called(ctx, pagination)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*entities.Activity), args.Get(1).(int64), args.Error(2)
}

// Mock PostRepository
type MockPostRepository struct {
	mock.Mock
}

func (m *MockPostRepository) Create(ctx context.Context, authorID uuid.UUID, content string) (*entities.Post, error) {
	args := m.Called(ctx, authorID, content)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Post), args.Error(1)
}

func (m *MockPostRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Post, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Post), args.Error(1)
}

func (m *MockPostRepository) List(ctx context.Context, limit int) ([]*entities.Post, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Post), args.Error(1)
}

func (m *MockPostRepository) AddLike(ctx context.Context, postID, userID uuid.UUID, likedAt time.Time) error {
	args := m.Called(ctx, postID, userID, likedAt)
	return args.Error(0)
}

func (m *MockPostRepository) RemoveLike(ctx context.Context, postID, userID uuid.UUID) error {
	args := m.Called(ctx, postID, userID)
	return args.Error(0)
}

func (m *MockPostRepository) Edit(ctx context.Context, postID uuid.UUID, content string, editedBy uuid.UUID) (*entities.Post, error) {
	args := m.Called(ctx, postID, content, editedBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Post), args.Error(1)
}

// Mock FacebookGateway
type MockFacebookGateway struct {
	mock.Mock
}

func (m *MockFacebookGateway) FetchLead(ctx context.Context, leadgenID string) (*facebook.LeadDetails, error) {
	args := m.Called(ctx, leadgenID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*facebook.LeadDetails), args.Error(1)
}

func (m *MockFacebookGateway) SendConversionEvent(ctx context.Context, event *facebook.ConversionEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockFacebookGateway) FetchAdAccounts(ctx context.Context) ([]facebook.AdAccount, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]facebook.AdAccount), args.Error(1)
}

func (m *MockFacebookGateway) FetchAdInsights(ctx context.Context, accountID, since, until string) ([]facebook.AdInsight, error) {
	args := m.Called(ctx, accountID, since, until)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]facebook.AdInsight), args.Error(1)
}

func (m *MockFacebookGateway) FetchPages(ctx context.Context) ([]facebook.Page, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]facebook.Page), args.Error(1)
}
