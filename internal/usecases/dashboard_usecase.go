package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"leadflow.backend/internal/domain/entities"
	"leadflow.backend/internal/domain/repositories"
	"leadflow.backend/pkg/logger"
	redispkg "leadflow.backend/pkg/redis"
)

// statsCacheTTL keeps dashboard numbers fresh enough while absorbing reload
// storms.
const statsCacheTTL = 60 * time.Second

// DashboardStats is the aggregate view backing the dashboard landing page.
// TotalUsers is omitted for sales reps.
type DashboardStats struct {
	TotalLeads     int64   `json:"totalLeads"`
	NewLeads       int64   `json:"newLeads"`
	PurchasedLeads int64   `json:"purchasedLeads"`
	ConversionRate float64 `json:"conversionRate"`
	TotalUsers     *int64  `json:"totalUsers,omitempty"`
}

// DashboardUsecase aggregates lead and user counts, cached per role+user in
// Redis.
type DashboardUsecase struct {
	leadRepo repositories.LeadRepository
	userRepo repositories.UserRepository
}

// NewDashboardUsecase creates a new dashboard usecase.
func NewDashboardUsecase(leadRepo repositories.LeadRepository, userRepo repositories.UserRepository) *DashboardUsecase {
	return &DashboardUsecase{leadRepo: leadRepo, userRepo: userRepo}
}

// Stats computes dashboard numbers for the actor. Sales reps see counts
// scoped to their own assigned leads and no user total.
func (u *DashboardUsecase) Stats(ctx context.Context, actor *entities.Actor) (*DashboardStats, error) {
	cacheKey := fmt.Sprintf("dashboard:stats:%s:%s", actor.Role, actor.ID)

	if cached := u.fromCache(ctx, cacheKey); cached != nil {
		return cached, nil
	}

	var scope *uuid.UUID
	if !actor.Role.IsAdmin() {
		scope = &actor.ID
	}

	total, err := u.leadRepo.Count(ctx, nil, scope)
	if err != nil {
		return nil, err
	}
	statusNew := entities.LeadStatusNew
	newCount, err := u.leadRepo.Count(ctx, &statusNew, scope)
	if err != nil {
		return nil, err
	}
	statusPurchased := entities.LeadStatusPurchased
	purchased, err := u.leadRepo.Count(ctx, &statusPurchased, scope)
	if err != nil {
		return nil, err
	}

	stats := &DashboardStats{
		TotalLeads:     total,
		NewLeads:       newCount,
		PurchasedLeads: purchased,
	}
	if total > 0 {
		stats.ConversionRate = float64(purchased) / float64(total) * 100
	}

	if actor.Role.IsAdmin() {
		users, err := u.userRepo.Count(ctx)
		if err != nil {
			return nil, err
		}
		stats.TotalUsers = &users
	}

	u.toCache(ctx, cacheKey, stats)
	return stats, nil
}

func (u *DashboardUsecase) fromCache(ctx context.Context, key string) *DashboardStats {
	if redispkg.GetClient() == nil {
		return nil
	}
	raw, err := redispkg.Get(ctx, key)
	if err != nil {
		return nil
	}
	var stats DashboardStats
	if err := json.Unmarshal([]byte(raw), &stats); err != nil {
		return nil
	}
	return &stats
}

func (u *DashboardUsecase) toCache(ctx context.Context, key string, stats *DashboardStats) {
	if redispkg.GetClient() == nil {
		return
	}
	raw, err := json.Marshal(stats)
	if err != nil {
		return
	}
	if err := redispkg.Set(ctx, key, string(raw), statsCacheTTL); err != nil {
		logger.Debug(ctx, "dashboard stats cache write failed", zap.Error(err))
	}
}
