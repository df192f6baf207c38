package usecases

import (
	"context"

	"leadflow.backend/internal/infrastructure/facebook"
)

// FacebookGateway is the outbound ad-platform surface the usecases depend
// on. *facebook.Client satisfies it; tests substitute mocks.
type FacebookGateway interface {
	FetchLead(ctx context.Context, leadgenID string) (*facebook.LeadDetails, error)
	SendConversionEvent(ctx context.Context, event *facebook.ConversionEvent) error
	FetchAdAccounts(ctx context.Context) ([]facebook.AdAccount, error)
	FetchAdInsights(ctx context.Context, accountID, since, until string) ([]facebook.AdInsight, error)
	FetchPages(ctx context.Context) ([]facebook.Page, error)
}
