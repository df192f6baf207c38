package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	domainerrors "leadflow.backend/internal/domain/errors"
)

func TestPostRepository_CreateAndList(t *testing.T) {
	db := newTestDB(t)
	createUserTable(t, db)
	createPostTables(t, db)
	repo := NewPostRepository(db)
	userRepo := NewUserRepository(db)
	ctx := context.Background()

	author := seedUser(t, userRepo, "Author", "author@leadflow.io")

	post, err := repo.Create(ctx, author.ID, "welcome to the team feed")
	require.NoError(t, err)
	require.NotNil(t, post.Author)
	require.Equal(t, author.ID, post.Author.ID)
	require.Equal(t, "welcome to the team feed", post.Content)
	require.Empty(t, post.Likes)
	require.Empty(t, post.EditHistory)

	_, err = repo.Create(ctx, author.ID, "second post")
	require.NoError(t, err)

	posts, err := repo.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	require.Equal(t, "second post", posts[0].Content, "newest first")

	posts, err = repo.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, posts, 1)
}

func TestPostRepository_Likes(t *testing.T) {
	db := newTestDB(t)
	createUserTable(t, db)
	createPostTables(t, db)
	repo := NewPostRepository(db)
	userRepo := NewUserRepository(db)
	ctx := context.Background()

	author := seedUser(t, userRepo, "Author", "author@leadflow.io")
	fan := seedUser(t, userRepo, "Fan", "fan@leadflow.io")

	post, err := repo.Create(ctx, author.ID, "like me")
	require.NoError(t, err)

	now := time.Now()
	require.NoError(t, repo.AddLike(ctx, post.ID, fan.ID, now))
	// liking twice is a no-op
	require.NoError(t, repo.AddLike(ctx, post.ID, fan.ID, now))

	got, err := repo.GetByID(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, got.Likes, 1)
	require.Equal(t, fan.ID, got.Likes[0].User.ID)

	require.NoError(t, repo.RemoveLike(ctx, post.ID, fan.ID))
	require.NoError(t, repo.RemoveLike(ctx, post.ID, fan.ID))

	got, err = repo.GetByID(ctx, post.ID)
	require.NoError(t, err)
	require.Empty(t, got.Likes)

	require.ErrorIs(t, repo.AddLike(ctx, uuid.New(), fan.ID, now), domainerrors.ErrNotFound)
}

func TestPostRepository_EditKeepsHistory(t *testing.T) {
	db := newTestDB(t)
	createUserTable(t, db)
	createPostTables(t, db)
	repo := NewPostRepository(db)
	userRepo := NewUserRepository(db)
	ctx := context.Background()

	author := seedUser(t, userRepo, "Author", "author@leadflow.io")

	post, err := repo.Create(ctx, author.ID, "first draft")
	require.NoError(t, err)

	edited, err := repo.Edit(ctx, post.ID, "second draft", author.ID)
	require.NoError(t, err)
	require.Equal(t, "second draft", edited.Content)
	require.Len(t, edited.EditHistory, 1)
	require.Equal(t, "first draft", edited.EditHistory[0].PreviousContent)
	require.Equal(t, author.ID, edited.EditHistory[0].EditedBy.ID)

	edited, err = repo.Edit(ctx, post.ID, "third draft", author.ID)
	require.NoError(t, err)
	require.Len(t, edited.EditHistory, 2)
	require.Equal(t, "first draft", edited.EditHistory[0].PreviousContent)
	require.Equal(t, "second draft", edited.EditHistory[1].PreviousContent)

	_, err = repo.Edit(ctx, uuid.New(), "x", author.ID)
	require.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestPostRepository_GetByIDNotFound(t *testing.T) {
	db := newTestDB(t)
	createUserTable(t, db)
	createPostTables(t, db)
	repo := NewPostRepository(db)

	_, err := repo.GetByID(context.Background(), uuid.New())
	require.ErrorIs(t, err, domainerrors.ErrNotFound)
}
