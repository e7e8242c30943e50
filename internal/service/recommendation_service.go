package service

import (
	"context"

	"github.com/expirywise/backend-go/internal/cache"
	"github.com/expirywise/backend-go/internal/domain"
	"github.com/expirywise/backend-go/internal/repository"
	"github.com/expirywise/backend-go/pkg/logger"
)

// RecommendationService serves the dashboard's recommendation views.
type RecommendationService interface {
	List(ctx context.Context, filter domain.RecommendationFilter) ([]domain.Recommendation, int, error)
	ActionSummary(ctx context.Context, filter domain.RecommendationFilter) ([]domain.ActionSummary, error)
	RiskDistribution(ctx context.Context) ([]domain.RiskDistribution, error)
}

type recommendationService struct {
	repo  repository.RecommendationRepository
	cache cache.RecommendationCache
}

func NewRecommendationService(repo repository.RecommendationRepository, c cache.RecommendationCache) RecommendationService {
	return &recommendationService{repo: repo, cache: c}
}

func (s *recommendationService) List(ctx context.Context, filter domain.RecommendationFilter) ([]domain.Recommendation, int, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 || filter.PageSize > 200 {
		filter.PageSize = 50
	}
	return s.repo.List(ctx, filter)
}

func (s *recommendationService) ActionSummary(ctx context.Context, filter domain.RecommendationFilter) ([]domain.ActionSummary, error) {
	summaries, hit, err := s.cache.GetSummary(ctx, filter)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("action summary cache lookup failed, falling back to database")
	} else if hit {
		return summaries, nil
	}

	summaries, err = s.repo.ActionSummary(ctx, filter)
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetSummary(ctx, filter, summaries); err != nil {
		logger.Log.Warn().Err(err).Msg("failed to write action summary cache")
	}

	return summaries, nil
}

func (s *recommendationService) RiskDistribution(ctx context.Context) ([]domain.RiskDistribution, error) {
	return s.repo.RiskDistribution(ctx)
}
