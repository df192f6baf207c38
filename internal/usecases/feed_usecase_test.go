package usecases_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"leadflow.backend/internal/domain/entities"
	domainerrors "leadflow.backend/internal/domain/errors"
	"leadflow.backend/internal/usecases"
)

type feedFixture struct {
	postRepo     *MockPostRepository
	activityRepo *MockActivityRepository
	uc           *usecases.FeedUsecase
	actions      []string
}

func newFeedFixture() *feedFixture {
	f := &feedFixture{
		postRepo:     new(MockPostRepository),
		activityRepo: new(MockActivityRepository),
	}
	f.activityRepo.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		f.actions = append(f.actions, args.Get(1).(*entities.ActivityRecord).Action)
	}).Return(nil)
	activity := usecases.NewActivityUsecase(f.activityRepo, new(MockUserRepository))
	f.uc = usecases.NewFeedUsecase(f.postRepo, activity)
	return f
}

func feedActor() *entities.Actor {
	return &entities.Actor{ID: uuid.New(), Role: entities.UserRoleSalesRep}
}

func TestFeedUsecase_CreateValidatesContent(t *testing.T) {
	f := newFeedFixture()
	_, err := f.uc.Create(context.Background(), feedActor(), &entities.CreatePostInput{Content: "   "}, entities.RequestMeta{})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidInput)
}

func TestFeedUsecase_CreateLogsActivity(t *testing.T) {
	f := newFeedFixture()
	actor := feedActor()
	post := &entities.Post{ID: uuid.New(), Author: &entities.UserRef{ID: actor.ID}, Content: "hello"}

	f.postRepo.On("Create", mock.Anything, actor.ID, "hello").Return(post, nil)

	got, err := f.uc.Create(context.Background(), actor, &entities.CreatePostInput{Content: " hello "}, entities.RequestMeta{})
	require.NoError(t, err)
	assert.Equal(t, post.ID, got.ID)
	assert.Equal(t, []string{entities.ActionFeedPostCreated}, f.actions)
}

func TestFeedUsecase_ToggleLike(t *testing.T) {
	actor := feedActor()
	postID := uuid.New()

	t.Run("like when not yet liked", func(t *testing.T) {
		f := newFeedFixture()
		post := &entities.Post{ID: postID, Likes: []*entities.PostLike{}}
		f.postRepo.On("GetByID", mock.Anything, postID).Return(post, nil)
		f.postRepo.On("AddLike", mock.Anything, postID, actor.ID, mock.AnythingOfType("time.Time")).Return(nil)

		_, err := f.uc.ToggleLike(context.Background(), actor, postID, entities.RequestMeta{})
		require.NoError(t, err)
		f.postRepo.AssertNotCalled(t, "RemoveLike", mock.Anything, mock.Anything, mock.Anything)
		assert.Equal(t, []string{entities.ActionFeedPostLiked}, f.actions)
	})

	t.Run("unlike when already liked", func(t *testing.T) {
		f := newFeedFixture()
		post := &entities.Post{ID: postID, Likes: []*entities.PostLike{
			{User: &entities.UserRef{ID: actor.ID}, LikedAt: time.Now()},
		}}
		f.postRepo.On("GetByID", mock.Anything, postID).Return(post, nil)
		f.postRepo.On("RemoveLike", mock.Anything, postID, actor.ID).Return(nil)

		_, err := f.uc.ToggleLike(context.Background(), actor, postID, entities.RequestMeta{})
		require.NoError(t, err)
		f.postRepo.AssertNotCalled(t, "AddLike", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		assert.Empty(t, f.actions, "unlikes are not audited")
	})
}

func TestFeedUsecase_EditAuthorOnly(t *testing.T) {
	f := newFeedFixture()
	actor := feedActor()
	postID := uuid.New()
	post := &entities.Post{ID: postID, Author: &entities.UserRef{ID: uuid.New()}, Content: "original"}

	f.postRepo.On("GetByID", mock.Anything, postID).Return(post, nil)

	_, err := f.uc.Edit(context.Background(), actor, postID, &entities.CreatePostInput{Content: "rewritten"})
	assert.ErrorIs(t, err, domainerrors.ErrForbidden)
	f.postRepo.AssertNotCalled(t, "Edit", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestFeedUsecase_EditByAuthor(t *testing.T) {
	f := newFeedFixture()
	actor := feedActor()
	postID := uuid.New()
	post := &entities.Post{ID: postID, Author: &entities.UserRef{ID: actor.ID}, Content: "original"}
	edited := &entities.Post{ID: postID, Author: post.Author, Content: "rewritten"}

	f.postRepo.On("GetByID", mock.Anything, postID).Return(post, nil)
	f.postRepo.On("Edit", mock.Anything, postID, "rewritten", actor.ID).Return(edited, nil)

	got, err := f.uc.Edit(context.Background(), actor, postID, &entities.CreatePostInput{Content: " rewritten "})
	require.NoError(t, err)
	assert.Equal(t, "rewritten", got.Content)
}
