// Package classify fills the Expiry_Class column of the cleaned table
// using the saved expiry model artifact.
package classify

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/expirywise/backend-go/internal/dataset"
	"github.com/expirywise/backend-go/internal/domain"
	"github.com/expirywise/backend-go/internal/model"
)

// Stage predicts Expiry_Class for rows that don't carry one. When every
// row already has a class from the input, the model is never loaded.
type Stage struct {
	processedPath string
	modelPath     string
}

func New(processedPath, modelPath string) *Stage {
	return &Stage{processedPath: processedPath, modelPath: modelPath}
}

func (s *Stage) Name() string { return "classify" }

func (s *Stage) Run(ctx context.Context) error {
	t, err := dataset.ReadCSV(s.processedPath)
	if err != nil {
		return err
	}

	items, err := dataset.ItemsFromTable(t)
	if err != nil {
		return err
	}

	var unlabeled []int
	for i := range items {
		if items[i].ExpiryClass == "" {
			unlabeled = append(unlabeled, i)
		}
	}
	if len(unlabeled) == 0 {
		log.Info().Msg("classify: every row already labeled, skipping prediction")
		return nil
	}

	// The one-hot Category column degrades gracefully on unseen values,
	// but the numeric feature columns are a hard contract.
	var missing []string
	for _, col := range model.ExpiryFeatureColumns {
		if !t.Has(col) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return &domain.FeatureMismatchError{Missing: missing}
	}

	m, err := model.LoadExpiryModel(s.modelPath)
	if err != nil {
		return err
	}

	pending := make([]domain.InventoryItem, len(unlabeled))
	for i, idx := range unlabeled {
		pending[i] = items[idx]
	}
	predicted := m.Predict(pending)
	for i, idx := range unlabeled {
		items[idx].ExpiryClass = predicted[i]
	}

	out := dataset.ItemsToTable(items, dataset.WriteOptions{ExpiryClass: true})
	if err := out.WriteCSV(s.processedPath); err != nil {
		return err
	}

	log.Info().
		Int("predicted", len(unlabeled)).
		Int("rows", len(items)).
		Msg("classify: expiry classes written")
	return nil
}
