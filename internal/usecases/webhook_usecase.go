package usecases

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"go.uber.org/zap"
	"leadflow.backend/internal/domain/entities"
	domainerrors "leadflow.backend/internal/domain/errors"
	"leadflow.backend/internal/domain/repositories"
	"leadflow.backend/pkg/logger"
)

// WebhookPayload is the leadgen notification envelope.
type WebhookPayload struct {
	Object string         `json:"object"`
	Entry  []WebhookEntry `json:"entry"`
}

// WebhookEntry is one page entry inside a notification.
type WebhookEntry struct {
	ID      string          `json:"id"`
	Time    int64           `json:"time"`
	Changes []WebhookChange `json:"changes"`
}

// WebhookChange is one change record; only field == "leadgen" is processed.
type WebhookChange struct {
	Field string `json:"field"`
	Value struct {
		LeadgenID string `json:"leadgen_id"`
		FormID    string `json:"form_id"`
		PageID    string `json:"page_id"`
	} `json:"value"`
}

// leadFieldSpec maps one normalized lead attribute to the form field names
// it may arrive under, in priority order.
type leadFieldSpec struct {
	canonical  string
	candidates []string
}

// Lead forms name their questions inconsistently; this table normalizes the
// common variants.
var leadFieldSpecs = []leadFieldSpec{
	{"name", []string{"full_name", "name"}},
	{"email", []string{"email"}},
	{"phone", []string{"phone_number", "phone"}},
	{"budget", []string{"budget"}},
	{"plot_size", []string{"plot_size", "plot size"}},
	{"city", []string{"city"}},
}

// WebhookUsecase ingests leadgen notifications into the CRM.
type WebhookUsecase struct {
	leadRepo repositories.LeadRepository
	activity *ActivityUsecase
	gateway  FacebookGateway
}

// NewWebhookUsecase creates a new webhook usecase.
func NewWebhookUsecase(leadRepo repositories.LeadRepository, activity *ActivityUsecase, gateway FacebookGateway) *WebhookUsecase {
	return &WebhookUsecase{leadRepo: leadRepo, activity: activity, gateway: gateway}
}

// ProcessNotification handles one verified webhook body. Each leadgen change
// is processed independently: a fetch error, duplicate or malformed payload
// is recorded as a lead_processing_error activity and does not abort the
// rest of the batch. The return value is only non-nil for an unparseable
// body.
func (u *WebhookUsecase) ProcessNotification(ctx context.Context, body []byte) error {
	var payload WebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return domainerrors.BadRequest("malformed webhook payload")
	}

	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			if change.Field != "leadgen" {
				continue
			}
			u.processLeadgen(ctx, change)
		}
	}
	return nil
}

func (u *WebhookUsecase) processLeadgen(ctx context.Context, change WebhookChange) {
	leadgenID := change.Value.LeadgenID
	formID := change.Value.FormID

	logger.Info(ctx, "processing leadgen change",
		zap.String("leadgen_id", leadgenID),
		zap.String("form_id", formID),
	)

	lead, err := u.ingestLead(ctx, leadgenID, formID)
	if err != nil {
		logger.Error(ctx, "lead ingestion failed",
			zap.String("leadgen_id", leadgenID),
			zap.Error(err),
		)
		u.activity.Log(ctx, nil, entities.ActionLeadProcessingError, map[string]interface{}{
			"leadgenId": leadgenID,
			"formId":    formID,
			"error":     err.Error(),
		}, entities.RequestMeta{})
		return
	}

	u.activity.Log(ctx, nil, entities.ActionLeadReceived, map[string]interface{}{
		"leadId":    lead.ID.String(),
		"leadgenId": leadgenID,
		"formId":    formID,
		"source":    "facebook_webhook",
	}, entities.RequestMeta{})
}

func (u *WebhookUsecase) ingestLead(ctx context.Context, leadgenID, formID string) (*entities.Lead, error) {
	if leadgenID == "" {
		return nil, errors.New("missing leadgen id")
	}

	details, err := u.gateway.FetchLead(ctx, leadgenID)
	if err != nil {
		return nil, err
	}

	fields := normalizeLeadFields(details.FieldMap())

	name := fields["name"]
	if name == "" {
		name = "Unknown"
	}

	data := &entities.NewLeadData{
		LeadgenID: leadgenID,
		FormID:    formID,
		Name:      name,
		Email:     fields["email"],
		Phone:     nullStringFrom(fields["phone"]),
		Budget:    nullStringFrom(fields["budget"]),
		PlotSize:  nullStringFrom(fields["plot_size"]),
		City:      nullStringFrom(fields["city"]),
		Source:    nullStringFrom("facebook_webhook"),
	}

	lead, err := u.leadRepo.Create(ctx, data)
	if err != nil {
		if errors.Is(err, domainerrors.ErrAlreadyExists) {
			return nil, errors.New("duplicate leadgen id: " + leadgenID)
		}
		return nil, err
	}
	return lead, nil
}

// normalizeLeadFields maps raw lowercase form answers onto canonical names.
func normalizeLeadFields(raw map[string]string) map[string]string {
	out := make(map[string]string, len(leadFieldSpecs))
	for _, spec := range leadFieldSpecs {
		for _, key := range spec.candidates {
			if v, ok := raw[key]; ok && strings.TrimSpace(v) != "" {
				out[spec.canonical] = strings.TrimSpace(v)
				break
			}
		}
	}
	return out
}
