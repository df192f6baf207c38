package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// LeadStatus is a lead's position in the sales pipeline.
type LeadStatus string

const (
	LeadStatusNew       LeadStatus = "New"
	LeadStatusContacted LeadStatus = "Contacted"
	LeadStatusVisited   LeadStatus = "Visited"
	LeadStatusQualified LeadStatus = "Qualified"
	LeadStatusPurchased LeadStatus = "Purchased"
)

// statusOrder is the fixed pipeline order. Transitions only ever move forward,
// one step at a time.
var statusOrder = []LeadStatus{
	LeadStatusNew,
	LeadStatusContacted,
	LeadStatusVisited,
	LeadStatusQualified,
	LeadStatusPurchased,
}

// IsValid reports whether s is a known pipeline status.
func (s LeadStatus) IsValid() bool {
	return s.rank() >= 0
}

func (s LeadStatus) rank() int {
	for i, v := range statusOrder {
		if v == s {
			return i
		}
	}
	return -1
}

// CanAdvanceTo reports whether next is the immediate successor of s.
// Backward and same-status moves are never allowed.
func (s LeadStatus) CanAdvanceTo(next LeadStatus) bool {
	cur, nxt := s.rank(), next.rank()
	if cur < 0 || nxt < 0 {
		return false
	}
	return nxt == cur+1
}

// LeadCategory is the hot/warm/cold tag, orthogonal to status.
type LeadCategory string

const (
	LeadCategoryNone LeadCategory = "none"
	LeadCategoryHot  LeadCategory = "hot"
	LeadCategoryWarm LeadCategory = "warm"
	LeadCategoryCold LeadCategory = "cold"
)

// IsValid reports whether c is a known category.
func (c LeadCategory) IsValid() bool {
	switch c {
	case LeadCategoryNone, LeadCategoryHot, LeadCategoryWarm, LeadCategoryCold:
		return true
	}
	return false
}

// AssignmentAction distinguishes assignment history entries.
type AssignmentAction string

const (
	AssignmentActionAssigned   AssignmentAction = "assigned"
	AssignmentActionUnassigned AssignmentAction = "unassigned"
)

// Lead represents a prospective customer record.
type Lead struct {
	ID                uuid.UUID          `json:"id"`
	LeadgenID         string             `json:"leadgenId"`
	FormID            string             `json:"formId"`
	FormName          null.String        `json:"formName,omitempty"`
	Name              string             `json:"name"`
	Email             string             `json:"email"`
	Phone             null.String        `json:"phone,omitempty"`
	Budget            null.String        `json:"budget,omitempty"`
	PlotSize          null.String        `json:"plotSize,omitempty"`
	City              null.String        `json:"city,omitempty"`
	Status            LeadStatus         `json:"status"`
	Category          LeadCategory       `json:"category"`
	Source            null.String        `json:"source,omitempty"`
	Assignees         []*UserRef         `json:"assignedTo"`
	AssignmentHistory []*AssignmentEvent `json:"assignmentHistory"`
	StatusHistory     []*StatusEvent     `json:"statusHistory"`
	CreatedAt         time.Time          `json:"createdAt"`
	UpdatedAt         time.Time          `json:"updatedAt"`
}

// IsAssignedTo reports whether userID is a member of the assignee set.
func (l *Lead) IsAssignedTo(userID uuid.UUID) bool {
	for _, ref := range l.Assignees {
		if ref != nil && ref.ID == userID {
			return true
		}
	}
	return false
}

// AssignmentEvent is one append-only assignment history entry.
type AssignmentEvent struct {
	ID             uuid.UUID        `json:"id"`
	AssignedTo     *UserRef         `json:"assignedTo,omitempty"`
	AssignedBy     *UserRef         `json:"assignedBy"`
	Note           string           `json:"note"`
	Action         AssignmentAction `json:"action"`
	UnassignedFrom *UserRef         `json:"unassignedFrom,omitempty"`
	CreatedAt      time.Time        `json:"assignedAt"`
}

// StatusEvent is one append-only status history entry.
type StatusEvent struct {
	ID        uuid.UUID  `json:"id"`
	Status    LeadStatus `json:"status"`
	ChangedBy *UserRef   `json:"changedBy"`
	Info      string     `json:"info"`
	CreatedAt time.Time  `json:"changedAt"`
}

// CreateLeadInput represents a manual lead entry.
type CreateLeadInput struct {
	Name  string `json:"name" binding:"required"`
	Phone string `json:"phone"`
	City  string `json:"city"`
}

// UpdateStatusInput represents a status transition request.
type UpdateStatusInput struct {
	Status LeadStatus `json:"status" binding:"required"`
	Info   string     `json:"info"`
}

// AssignLeadInput represents a batch assign/unassign request.
type AssignLeadInput struct {
	Assign   []uuid.UUID `json:"assign"`
	Unassign []uuid.UUID `json:"unassign"`
	Note     string      `json:"note"`
	Password string      `json:"password"`
}

// UpdateCategoryInput represents a category change request.
type UpdateCategoryInput struct {
	Category LeadCategory `json:"category" binding:"required"`
}

// ListLeadsFilter holds the optional listing filters.
type ListLeadsFilter struct {
	Status     string
	Category   string
	AssignedTo string
	Search     string
	Sort       string
}

// AssignmentRecord is the raw-identifier form of an assignment history entry,
// written by the lifecycle engine before read-time resolution.
type AssignmentRecord struct {
	AssignedTo     *uuid.UUID
	AssignedBy     uuid.UUID
	Note           string
	Action         AssignmentAction
	UnassignedFrom *uuid.UUID
}

// NewLeadData is the normalized shape inserted by webhook ingestion and
// manual entry.
type NewLeadData struct {
	LeadgenID string
	FormID    string
	FormName  null.String
	Name      string
	Email     string
	Phone     null.String
	Budget    null.String
	PlotSize  null.String
	City      null.String
	Source    null.String
}
