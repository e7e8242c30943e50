package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/expirywise/backend-go/internal/domain"
)

type stubRepo struct {
	listFilter   domain.RecommendationFilter
	summaryCalls int
	summaries    []domain.ActionSummary
}

func (r *stubRepo) List(ctx context.Context, filter domain.RecommendationFilter) ([]domain.Recommendation, int, error) {
	r.listFilter = filter
	return []domain.Recommendation{{ProductID: "P1"}}, 1, nil
}

func (r *stubRepo) ActionSummary(ctx context.Context, filter domain.RecommendationFilter) ([]domain.ActionSummary, error) {
	r.summaryCalls++
	return r.summaries, nil
}

func (r *stubRepo) RiskDistribution(ctx context.Context) ([]domain.RiskDistribution, error) {
	return []domain.RiskDistribution{{RiskLevel: "Low", Count: 3}}, nil
}

type stubCache struct {
	stored map[string][]domain.ActionSummary
	getErr error
	setErr error
}

func newStubCache() *stubCache {
	return &stubCache{stored: make(map[string][]domain.ActionSummary)}
}

func (c *stubCache) key(filter domain.RecommendationFilter) string {
	return filter.Category + "|" + filter.RiskLevel + "|" + filter.Action
}

func (c *stubCache) GetSummary(ctx context.Context, filter domain.RecommendationFilter) ([]domain.ActionSummary, bool, error) {
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	s, ok := c.stored[c.key(filter)]
	return s, ok, nil
}

func (c *stubCache) SetSummary(ctx context.Context, filter domain.RecommendationFilter, summaries []domain.ActionSummary) error {
	if c.setErr != nil {
		return c.setErr
	}
	c.stored[c.key(filter)] = summaries
	return nil
}

func (c *stubCache) InvalidateAll(ctx context.Context) error {
	c.stored = make(map[string][]domain.ActionSummary)
	return nil
}

func TestListNormalizesPagination(t *testing.T) {
	repo := &stubRepo{}
	svc := NewRecommendationService(repo, newStubCache())

	_, _, err := svc.List(context.Background(), domain.RecommendationFilter{Page: -2, PageSize: 100000})
	require.NoError(t, err)

	assert.Equal(t, 1, repo.listFilter.Page)
	assert.Equal(t, 50, repo.listFilter.PageSize)
}

func TestActionSummaryCaches(t *testing.T) {
	repo := &stubRepo{summaries: []domain.ActionSummary{{Action: "Dispose", Count: 2}}}
	cache := newStubCache()
	svc := NewRecommendationService(repo, cache)

	filter := domain.RecommendationFilter{Category: "Dairy"}

	first, err := svc.ActionSummary(context.Background(), filter)
	require.NoError(t, err)
	assert.Equal(t, repo.summaries, first)
	assert.Equal(t, 1, repo.summaryCalls)

	// Second call is served from cache.
	second, err := svc.ActionSummary(context.Background(), filter)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, repo.summaryCalls)
}

func TestActionSummaryCacheErrorFallsBack(t *testing.T) {
	repo := &stubRepo{summaries: []domain.ActionSummary{{Action: "Monitor", Count: 9}}}
	cache := newStubCache()
	cache.getErr = errors.New("redis down")
	cache.setErr = errors.New("redis down")
	svc := NewRecommendationService(repo, cache)

	got, err := svc.ActionSummary(context.Background(), domain.RecommendationFilter{})
	require.NoError(t, err)
	assert.Equal(t, repo.summaries, got)
	assert.Equal(t, 1, repo.summaryCalls)
}
