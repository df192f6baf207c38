package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"leadflow.backend/internal/domain/entities"
	domainerrors "leadflow.backend/internal/domain/errors"
	"leadflow.backend/internal/infrastructure/models"
)

// PostRepository implements company-feed data operations.
type PostRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository.
func NewPostRepository(db *gorm.DB) *PostRepository {
	return &PostRepository{db: db}
}

// Create inserts a new feed post.
func (r *PostRepository) Create(ctx context.Context, authorID uuid.UUID, content string) (*entities.Post, error) {
	now := time.Now()
	m := &models.Post{
		ID:        uuid.New(),
		AuthorID:  authorID,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := getDB(ctx, r.db).Create(m).Error; err != nil {
		return nil, err
	}
	return r.GetByID(ctx, m.ID)
}

// GetByID loads a post with its author, likes and edit history resolved.
func (r *PostRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Post, error) {
	posts, err := r.resolve(ctx, []models.Post{}, &id)
	if err != nil {
		return nil, err
	}
	if len(posts) == 0 {
		return nil, domainerrors.ErrNotFound
	}
	return posts[0], nil
}

// List returns the newest posts, fully resolved.
func (r *PostRepository) List(ctx context.Context, limit int) ([]*entities.Post, error) {
	var postModels []models.Post
	err := getDB(ctx, r.db).Order("created_at DESC").Limit(limit).Find(&postModels).Error
	if err != nil {
		return nil, err
	}
	return r.resolve(ctx, postModels, nil)
}

// AddLike records a like. Liking twice is a no-op.
func (r *PostRepository) AddLike(ctx context.Context, postID, userID uuid.UUID, likedAt time.Time) error {
	db := getDB(ctx, r.db)

	var count int64
	if err := db.Model(&models.Post{}).Where("id = ?", postID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return domainerrors.ErrNotFound
	}

	row := &models.PostLike{PostID: postID, UserID: userID, LikedAt: likedAt}
	if err := db.Create(row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil
		}
		return err
	}
	return nil
}

// RemoveLike withdraws a like. Removing a non-existent like is a no-op.
func (r *PostRepository) RemoveLike(ctx context.Context, postID, userID uuid.UUID) error {
	return getDB(ctx, r.db).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Delete(&models.PostLike{}).Error
}

// Edit appends the current content to the edit history, then overwrites it.
func (r *PostRepository) Edit(ctx context.Context, postID uuid.UUID, content string, editedBy uuid.UUID) (*entities.Post, error) {
	db := getDB(ctx, r.db)

	var m models.Post
	if err := db.Where("id = ?", postID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}

	edit := &models.PostEdit{
		ID:              uuid.New(),
		PostID:          postID,
		PreviousContent: m.Content,
		EditedBy:        editedBy,
		EditedAt:        time.Now(),
	}
	if err := db.Create(edit).Error; err != nil {
		return nil, err
	}

	err := db.Model(&models.Post{}).Where("id = ?", postID).Updates(map[string]interface{}{
		"content":    content,
		"updated_at": time.Now(),
	}).Error
	if err != nil {
		return nil, err
	}

	return r.GetByID(ctx, postID)
}

// resolve hydrates posts into entities. When id is non-nil the single post is
// loaded first; otherwise the given models are used.
func (r *PostRepository) resolve(ctx context.Context, postModels []models.Post, id *uuid.UUID) ([]*entities.Post, error) {
	db := getDB(ctx, r.db)

	if id != nil {
		var m models.Post
		if err := db.Where("id = ?", *id).First(&m).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return []*entities.Post{}, nil
			}
			return nil, err
		}
		postModels = []models.Post{m}
	}
	if len(postModels) == 0 {
		return []*entities.Post{}, nil
	}

	postIDs := make([]uuid.UUID, 0, len(postModels))
	userIDs := make(map[uuid.UUID]struct{})
	for _, m := range postModels {
		postIDs = append(postIDs, m.ID)
		userIDs[m.AuthorID] = struct{}{}
	}

	var likeModels []models.PostLike
	if err := db.Where("post_id IN ?", postIDs).Order("liked_at ASC").Find(&likeModels).Error; err != nil {
		return nil, err
	}
	var editModels []models.PostEdit
	if err := db.Where("post_id IN ?", postIDs).Order("edited_at ASC").Find(&editModels).Error; err != nil {
		return nil, err
	}

	for _, m := range likeModels {
		userIDs[m.UserID] = struct{}{}
	}
	for _, m := range editModels {
		userIDs[m.EditedBy] = struct{}{}
	}

	refs, err := r.userRefs(ctx, userIDs)
	if err != nil {
		return nil, err
	}

	likesByPost := make(map[uuid.UUID][]*entities.PostLike)
	for _, m := range likeModels {
		likesByPost[m.PostID] = append(likesByPost[m.PostID], &entities.PostLike{
			User:    refs[m.UserID],
			LikedAt: m.LikedAt,
		})
	}
	editsByPost := make(map[uuid.UUID][]*entities.PostEdit)
	for _, m := range editModels {
		editsByPost[m.PostID] = append(editsByPost[m.PostID], &entities.PostEdit{
			PreviousContent: m.PreviousContent,
			EditedBy:        refs[m.EditedBy],
			EditedAt:        m.EditedAt,
		})
	}

	posts := make([]*entities.Post, 0, len(postModels))
	for _, m := range postModels {
		post := &entities.Post{
			ID:          m.ID,
			Author:      refs[m.AuthorID],
			Content:     m.Content,
			Likes:       likesByPost[m.ID],
			EditHistory: editsByPost[m.ID],
			CreatedAt:   m.CreatedAt,
			UpdatedAt:   m.UpdatedAt,
		}
		if post.Likes == nil {
			post.Likes = []*entities.PostLike{}
		}
		if post.EditHistory == nil {
			post.EditHistory = []*entities.PostEdit{}
		}
		posts = append(posts, post)
	}
	return posts, nil
}

func (r *PostRepository) userRefs(ctx context.Context, ids map[uuid.UUID]struct{}) (map[uuid.UUID]*entities.UserRef, error) {
	if len(ids) == 0 {
		return map[uuid.UUID]*entities.UserRef{}, nil
	}

	list := make([]uuid.UUID, 0, len(ids))
	for id := range ids {
		list = append(list, id)
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
		Where("id IN ?", list).
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
