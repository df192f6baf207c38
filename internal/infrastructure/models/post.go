package models

import (
	"time"

	"github.com/google/uuid"
)

type Post struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	AuthorID  uuid.UUID `gorm:"type:uuid;not null;index"`
	Content   string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time
}

type PostLike struct {
	PostID  uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID  uuid.UUID `gorm:"type:uuid;primaryKey"`
	LikedAt time.Time
}

// PostEdit rows are append-only; one row per overwrite, holding the pre-edit
// content.
type PostEdit struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	PostID          uuid.UUID `gorm:"type:uuid;not null;index"`
	PreviousContent string    `gorm:"type:text;not null"`
	EditedBy        uuid.UUID `gorm:"type:uuid;not null"`
	EditedAt        time.Time
}
