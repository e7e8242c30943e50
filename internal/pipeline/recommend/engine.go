// Package recommend is the final pipeline stage: it bootstraps rule-based
// action and discount labels from the risk-scored table, trains an action
// classifier and a discount regressor on those labels, and writes the final
// per-product recommendations artifact.
package recommend

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/expirywise/backend-go/internal/dataset"
	"github.com/expirywise/backend-go/internal/domain"
	"github.com/expirywise/backend-go/internal/model"
)

// ActionModel is the trained action classifier artifact.
type ActionModel struct {
	Features []string              `json:"features"`
	Risks    *model.LabelEncoder   `json:"risks"`
	Labels   *model.LabelEncoder   `json:"labels"`
	Tree     *model.TreeClassifier `json:"tree"`
}

// DiscountModel is the trained discount regressor artifact.
type DiscountModel struct {
	Features []string             `json:"features"`
	Risks    *model.LabelEncoder  `json:"risks"`
	Tree     *model.TreeRegressor `json:"tree"`
}

// Stage runs the two-phase recommendation engine.
type Stage struct {
	riskScoresPath    string
	outputPath        string
	actionModelPath   string
	discountModelPath string
}

func New(riskScoresPath, outputPath, actionModelPath, discountModelPath string) *Stage {
	return &Stage{
		riskScoresPath:    riskScoresPath,
		outputPath:        outputPath,
		actionModelPath:   actionModelPath,
		discountModelPath: discountModelPath,
	}
}

func (s *Stage) Name() string { return "recommend" }

func (s *Stage) Run(ctx context.Context) error {
	t, err := dataset.ReadCSV(s.riskScoresPath)
	if err != nil {
		return err
	}
	items, err := dataset.ItemsFromTable(t)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		log.Warn().Msg("recommend: risk-scored table is empty, nothing to recommend")
		return dataset.NewTable(recommendationHeader()).WriteCSV(s.outputPath)
	}

	recs, err := s.recommend(items)
	if err != nil {
		return err
	}

	out := dataset.NewTable(recommendationHeader())
	actionCounts := make(map[string]int)
	for _, r := range recs {
		out.Append([]string{
			r.ProductID, r.ProductName, r.Category, r.SupplierName,
			dataset.FormatFloat(r.StockQuantity), r.RiskLevel, r.PredictedAction,
			dataset.FormatFloat(r.PredictedDiscountPercent),
		})
		actionCounts[r.PredictedAction]++
	}
	if err := out.WriteCSV(s.outputPath); err != nil {
		return err
	}

	log.Info().
		Int("rows", len(recs)).
		Interface("action_distribution", actionCounts).
		Str("output", s.outputPath).
		Msg("recommend: recommendations written")
	return nil
}

// recommend bootstraps labels, fits both models, and assembles the final
// rows. The bootstrap rules stay the ground truth; the learned models'
// predictions become the published output.
func (s *Stage) recommend(items []domain.InventoryItem) ([]domain.Recommendation, error) {
	risks := riskLabelEncoder()
	actions := actionLabelEncoder()

	X := make([][]float64, len(items))
	bootstrapActions := make([]domain.Action, len(items))
	bootstrapDiscounts := make([]float64, len(items))
	y := make([]int, len(items))
	for i := range items {
		X[i] = featureVector(&items[i], risks)
		bootstrapActions[i] = BootstrapAction(&items[i])
		bootstrapDiscounts[i] = BootstrapDiscount(&items[i], bootstrapActions[i])

		code, err := actions.Encode(string(bootstrapActions[i]))
		if err != nil {
			return nil, err
		}
		y[i] = code
	}

	classifier := model.FitClassifier(X, y, len(actions.Classes))
	if err := model.SaveArtifact(s.actionModelPath, &ActionModel{
		Features: FeatureColumns,
		Risks:    risks,
		Labels:   actions,
		Tree:     classifier,
	}); err != nil {
		return nil, err
	}

	predicted := make([]domain.Action, len(items))
	var discountIdx []int
	for i := range items {
		predicted[i] = domain.Action(actions.Decode(classifier.Predict(X[i])))
		if predicted[i] == domain.ActionDiscount {
			discountIdx = append(discountIdx, i)
		}
	}

	// The regressor trains only on rows the classifier routed to
	// Discount; with none predicted it is skipped outright and every
	// discount stays zero.
	discounts := make([]float64, len(items))
	if len(discountIdx) > 0 {
		Xd := make([][]float64, len(discountIdx))
		yd := make([]float64, len(discountIdx))
		for j, i := range discountIdx {
			Xd[j] = X[i]
			yd[j] = bootstrapDiscounts[i]
		}

		regressor := model.FitRegressor(Xd, yd)
		if err := model.SaveArtifact(s.discountModelPath, &DiscountModel{
			Features: FeatureColumns,
			Risks:    risks,
			Tree:     regressor,
		}); err != nil {
			return nil, err
		}

		for _, i := range discountIdx {
			discounts[i] = regressor.Predict(X[i])
		}
	} else {
		log.Info().Msg("recommend: no rows predicted Discount, regressor skipped")
	}

	recs := make([]domain.Recommendation, len(items))
	for i, it := range items {
		recs[i] = domain.Recommendation{
			ProductID:                it.ProductID,
			ProductName:              it.ProductName,
			Category:                 it.Category,
			SupplierName:             it.SupplierName,
			StockQuantity:            it.StockQuantity,
			RiskLevel:                string(it.RiskLevel),
			PredictedAction:          string(predicted[i]),
			PredictedDiscountPercent: discounts[i],
		}
	}
	return recs, nil
}

func recommendationHeader() []string {
	return []string{
		dataset.ColProductID,
		dataset.ColProductName,
		dataset.ColCategory,
		dataset.ColSupplierName,
		dataset.ColStockQuantity,
		dataset.ColRiskLevel,
		dataset.ColPredictedAction,
		dataset.ColPredictedDiscPct,
	}
}
