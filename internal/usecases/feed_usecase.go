package usecases

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"leadflow.backend/internal/domain/entities"
	domainerrors "leadflow.backend/internal/domain/errors"
	"leadflow.backend/internal/domain/repositories"
)

// feedPageSize is how many posts the feed returns.
const feedPageSize = 20

// FeedUsecase handles the company feed.
type FeedUsecase struct {
	postRepo repositories.PostRepository
	activity *ActivityUsecase
}

// NewFeedUsecase creates a new feed usecase.
func NewFeedUsecase(postRepo repositories.PostRepository, activity *ActivityUsecase) *FeedUsecase {
	return &FeedUsecase{postRepo: postRepo, activity: activity}
}

// List returns the latest posts, fully resolved.
func (u *FeedUsecase) List(ctx context.Context) ([]*entities.Post, error) {
	return u.postRepo.List(ctx, feedPageSize)
}

// Create publishes a post.
func (u *FeedUsecase) Create(ctx context.Context, actor *entities.Actor, input *entities.CreatePostInput, meta entities.RequestMeta) (*entities.Post, error) {
	content := strings.TrimSpace(input.Content)
	if content == "" {
		return nil, domainerrors.BadRequest("content is required")
	}

	post, err := u.postRepo.Create(ctx, actor.ID, content)
	if err != nil {
		return nil, err
	}

	u.activity.Log(ctx, &actor.ID, entities.ActionFeedPostCreated, map[string]interface{}{
		"postId": post.ID.String(),
	}, meta)

	return post, nil
}

// ToggleLike likes a post the actor has not liked yet and unlikes one they
// have. Only the like direction is audited.
func (u *FeedUsecase) ToggleLike(ctx context.Context, actor *entities.Actor, postID uuid.UUID, meta entities.RequestMeta) (*entities.Post, error) {
	post, err := u.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	liked := false
	for _, like := range post.Likes {
		if like.User != nil && like.User.ID == actor.ID {
			liked = true
			break
		}
	}

	if liked {
		if err := u.postRepo.RemoveLike(ctx, postID, actor.ID); err != nil {
			return nil, err
		}
	} else {
		if err := u.postRepo.AddLike(ctx, postID, actor.ID, time.Now()); err != nil {
			return nil, err
		}
		u.activity.Log(ctx, &actor.ID, entities.ActionFeedPostLiked, map[string]interface{}{
			"postId": postID.String(),
		}, meta)
	}

	return u.postRepo.GetByID(ctx, postID)
}

// Edit overwrites a post's content, keeping the pre-edit content in the edit
// history. Author only.
func (u *FeedUsecase) Edit(ctx context.Context, actor *entities.Actor, postID uuid.UUID, input *entities.CreatePostInput) (*entities.Post, error) {
	content := strings.TrimSpace(input.Content)
	if content == "" {
		return nil, domainerrors.BadRequest("content is required")
	}

	post, err := u.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.Author == nil || post.Author.ID != actor.ID {
		return nil, domainerrors.ErrForbidden
	}

	return u.postRepo.Edit(ctx, postID, content, actor.ID)
}
