package models

import (
	"time"

	"github.com/google/uuid"
)

type Activity struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey"`
	UserID    *uuid.UUID `gorm:"type:uuid;index"`
	Action    string     `gorm:"type:varchar(100);not null;index"`
	Details   string     `gorm:"type:jsonb"`
	IPAddress string     `gorm:"type:varchar(100)"`
	UserAgent string     `gorm:"type:text"`
	CreatedAt time.Time  `gorm:"index"`
}

func (Activity) TableName() string {
	return "activities"
}
