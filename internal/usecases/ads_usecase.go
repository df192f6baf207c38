package usecases

import (
	"context"
	"time"

	"go.uber.org/zap"
	"leadflow.backend/internal/domain/entities"
	domainerrors "leadflow.backend/internal/domain/errors"
	"leadflow.backend/internal/infrastructure/facebook"
	"leadflow.backend/pkg/logger"
)

// AdsUsecase exposes ad-platform reads and the manual conversion send.
type AdsUsecase struct {
	gateway  FacebookGateway
	activity *ActivityUsecase
}

// NewAdsUsecase creates a new ads usecase.
func NewAdsUsecase(gateway FacebookGateway, activity *ActivityUsecase) *AdsUsecase {
	return &AdsUsecase{gateway: gateway, activity: activity}
}

// Accounts lists reachable ad accounts. Gateway failures degrade to an empty
// listing so the dashboard never breaks on upstream trouble.
func (u *AdsUsecase) Accounts(ctx context.Context) []facebook.AdAccount {
	if u.gateway == nil {
		return []facebook.AdAccount{}
	}
	accounts, err := u.gateway.FetchAdAccounts(ctx)
	if err != nil {
		logger.Warn(ctx, "ad accounts fetch degraded to empty", zap.Error(err))
		return []facebook.AdAccount{}
	}
	return accounts
}

// Insights returns campaign metrics for a date range, degraded to empty on
// upstream failure.
func (u *AdsUsecase) Insights(ctx context.Context, accountID, since, until string) ([]facebook.AdInsight, error) {
	if accountID == "" {
		return nil, domainerrors.BadRequest("accountId is required")
	}
	if since == "" || until == "" {
		return nil, domainerrors.BadRequest("since and until are required")
	}
	if _, err := time.Parse("2006-01-02", since); err != nil {
		return nil, domainerrors.BadRequest("since must be YYYY-MM-DD")
	}
	if _, err := time.Parse("2006-01-02", until); err != nil {
		return nil, domainerrors.BadRequest("until must be YYYY-MM-DD")
	}

	if u.gateway == nil {
		return []facebook.AdInsight{}, nil
	}
	insights, err := u.gateway.FetchAdInsights(ctx, accountID, since, until)
	if err != nil {
		logger.Warn(ctx, "ad insights fetch degraded to empty", zap.String("account_id", accountID), zap.Error(err))
		return []facebook.AdInsight{}, nil
	}
	return insights, nil
}

// SendConversion forwards a manually assembled conversion event.
func (u *AdsUsecase) SendConversion(ctx context.Context, actor *entities.Actor, event *facebook.ConversionEvent, meta entities.RequestMeta) error {
	if event.EventName == "" {
		return domainerrors.BadRequest("event_name is required")
	}
	if event.EventTime == 0 {
		event.EventTime = time.Now().Unix()
	}
	if u.gateway == nil {
		return domainerrors.BadRequest("ad platform gateway is not configured")
	}

	if err := u.gateway.SendConversionEvent(ctx, event); err != nil {
		u.activity.Log(ctx, &actor.ID, entities.ActionConversionFailed, map[string]interface{}{
			"eventName": event.EventName,
			"error":     err.Error(),
		}, meta)
		return err
	}

	u.activity.Log(ctx, &actor.ID, entities.ActionConversionSent, map[string]interface{}{
		"eventName": event.EventName,
		"manual":    true,
	}, meta)
	return nil
}
