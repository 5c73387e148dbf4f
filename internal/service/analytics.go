package service

import (
	"context"
	"fmt"

	"github.com/velora/beauty-orders-api/internal/dto"
	"github.com/velora/beauty-orders-api/internal/repository"
)

type AnalyticsService struct {
	analyticsRepo repository.AnalyticsRepository
}

func NewAnalyticsService(analyticsRepo repository.AnalyticsRepository) *AnalyticsService {
	return &AnalyticsService{analyticsRepo: analyticsRepo}
}

func (s *AnalyticsService) Dashboard(ctx context.Context) (*dto.DashboardStats, error) {
	stats, err := s.analyticsRepo.Dashboard(ctx)
	if err != nil {
		return nil, fmt.Errorf("dashboard stats: %w", err)
	}
	return stats, nil
}

func (s *AnalyticsService) RevenueByDay(ctx context.Context, days int) ([]dto.DailyRevenue, error) {
	if days < 1 {
		days = 7
	}
	if days > 365 {
		days = 365
	}
	revenue, err := s.analyticsRepo.RevenueByDay(ctx, days)
	if err != nil {
		return nil, fmt.Errorf("revenue by day: %w", err)
	}
	return revenue, nil
}
