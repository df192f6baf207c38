package models

import (
	"time"

	"github.com/google/uuid"
)

type Lead struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	LeadgenID string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	FormID    string    `gorm:"type:varchar(255);not null"`
	FormName  *string   `gorm:"type:varchar(255)"`
	Name      string    `gorm:"type:varchar(255);not null"`
	Email     string    `gorm:"type:varchar(255);not null;default:''"`
	Phone     *string   `gorm:"type:varchar(50)"`
	Budget    *string   `gorm:"type:varchar(100)"`
	PlotSize  *string   `gorm:"type:varchar(100)"`
	City      *string   `gorm:"type:varchar(100)"`
	Status    string    `gorm:"type:varchar(50);not null;index;default:'New'"`
	Category  string    `gorm:"type:varchar(50);not null;default:'none'"`
	Source    *string   `gorm:"type:varchar(100)"`
	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time
}

// LeadAssignee is the set-valued assignment relation.
type LeadAssignee struct {
	LeadID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey;index"`
	CreatedAt time.Time
}

// LeadAssignmentEvent rows are append-only.
type LeadAssignmentEvent struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey"`
	LeadID         uuid.UUID  `gorm:"type:uuid;not null;index"`
	AssignedTo     *uuid.UUID `gorm:"type:uuid"`
	AssignedBy     uuid.UUID  `gorm:"type:uuid;not null"`
	Note           string     `gorm:"type:text"`
	Action         string     `gorm:"type:varchar(20);not null"`
	UnassignedFrom *uuid.UUID `gorm:"type:uuid"`
	CreatedAt      time.Time
}

// LeadStatusEvent rows are append-only.
type LeadStatusEvent struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	LeadID    uuid.UUID `gorm:"type:uuid;not null;index"`
	Status    string    `gorm:"type:varchar(50);not null"`
	ChangedBy uuid.UUID `gorm:"type:uuid;not null"`
	Info      string    `gorm:"type:text"`
	CreatedAt time.Time
}
