package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/expirywise/backend-go/internal/domain"
	"github.com/jmoiron/sqlx"
)

// RecommendationRepository serves the final recommendations artifact to
// the dashboard API once the seed command has loaded it into Postgres.
type RecommendationRepository interface {
	List(ctx context.Context, filter domain.RecommendationFilter) ([]domain.Recommendation, int, error)
	ActionSummary(ctx context.Context, filter domain.RecommendationFilter) ([]domain.ActionSummary, error)
	RiskDistribution(ctx context.Context) ([]domain.RiskDistribution, error)
}

type recommendationRepository struct {
	db *sqlx.DB
}

func NewRecommendationRepository(db *sqlx.DB) RecommendationRepository {
	return &recommendationRepository{db: db}
}

func (r *recommendationRepository) List(ctx context.Context, filter domain.RecommendationFilter) ([]domain.Recommendation, int, error) {
	conditions, args := buildConditions(filter)

	countQuery := "SELECT COUNT(*) FROM recommendations" + conditions
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("error counting recommendations: %w", err)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 {
		pageSize = 50
	}

	query := `
		SELECT product_id, product_name, category, supplier_name,
		       stock_quantity, risk_level, predicted_action, predicted_discount_percent
		FROM recommendations` + conditions + fmt.Sprintf(`
		ORDER BY product_id
		LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, pageSize, (page-1)*pageSize)

	var recs []domain.Recommendation
	if err := r.db.SelectContext(ctx, &recs, query, args...); err != nil {
		return nil, 0, fmt.Errorf("error listing recommendations: %w", err)
	}

	return recs, total, nil
}

func (r *recommendationRepository) ActionSummary(ctx context.Context, filter domain.RecommendationFilter) ([]domain.ActionSummary, error) {
	conditions, args := buildConditions(filter)

	query := `
		SELECT predicted_action, COUNT(*) as count
		FROM recommendations` + conditions + `
		GROUP BY predicted_action
		ORDER BY count DESC`

	var summaries []domain.ActionSummary
	if err := r.db.SelectContext(ctx, &summaries, query, args...); err != nil {
		return nil, fmt.Errorf("error getting action summary: %w", err)
	}

	return summaries, nil
}

func (r *recommendationRepository) RiskDistribution(ctx context.Context) ([]domain.RiskDistribution, error) {
	query := `
		SELECT risk_level, COUNT(*) as count
		FROM recommendations
		GROUP BY risk_level
		ORDER BY count DESC`

	var dist []domain.RiskDistribution
	if err := r.db.SelectContext(ctx, &dist, query); err != nil {
		return nil, fmt.Errorf("error getting risk distribution: %w", err)
	}

	return dist, nil
}

func buildConditions(filter domain.RecommendationFilter) (string, []interface{}) {
	var conditions []string
	var args []interface{}
	argCounter := 1

	if filter.Category != "" {
		conditions = append(conditions, fmt.Sprintf("category = $%d", argCounter))
		args = append(args, filter.Category)
		argCounter++
	}
	if filter.RiskLevel != "" {
		conditions = append(conditions, fmt.Sprintf("risk_level = $%d", argCounter))
		args = append(args, filter.RiskLevel)
		argCounter++
	}
	if filter.Action != "" {
		conditions = append(conditions, fmt.Sprintf("predicted_action = $%d", argCounter))
		args = append(args, filter.Action)
		argCounter++
	}

	if len(conditions) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}
