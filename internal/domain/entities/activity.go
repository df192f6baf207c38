package entities

import (
	"time"

	"github.com/google/uuid"
)

// Activity action tags. The details payload is opaque except where the audit
// view special-cases an action (see ActivityUsecase.List).
const (
	ActionLeadReceived        = "lead_received"
	ActionLeadCreated         = "lead_created"
	ActionLeadProcessingError = "lead_processing_error"
	ActionLeadAssigned        = "lead_assigned"
	ActionLeadUnassigned      = "lead_unassigned"
	ActionLeadStatusChanged   = "lead_status_changed"
	ActionLeadCategoryChanged = "lead_category_changed"
	ActionConversionSent      = "conversion_sent"
	ActionConversionFailed    = "conversion_failed"
	ActionFeedPostCreated     = "feed_post_created"
	ActionFeedPostLiked       = "feed_post_liked"
)

// Activity is one immutable audit-log entry. A nil User means the action was
// system-originated (webhook ingestion, background forwarding).
type Activity struct {
	ID        uuid.UUID              `json:"id"`
	User      *UserRef               `json:"user,omitempty"`
	Action    string                 `json:"action"`
	Details   map[string]interface{} `json:"details"`
	IPAddress string                 `json:"ipAddress,omitempty"`
	UserAgent string                 `json:"userAgent,omitempty"`
	CreatedAt time.Time              `json:"createdAt"`
}

// ActivityRecord is the raw-identifier form written by mutating operations.
type ActivityRecord struct {
	UserID    *uuid.UUID
	Action    string
	Details   map[string]interface{}
	IPAddress string
	UserAgent string
}

// RequestMeta carries request-scoped client metadata into audit entries.
type RequestMeta struct {
	IPAddress string
	UserAgent string
}

// LogActivityInput represents an explicit audit append request.
type LogActivityInput struct {
	Action  string                 `json:"action" binding:"required"`
	Details map[string]interface{} `json:"details"`
}
