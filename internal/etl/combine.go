package etl

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spacesedan/reviewflow/config"
	"github.com/spacesedan/reviewflow/internal/models"
	"github.com/spacesedan/reviewflow/internal/storage"
)

// CombineTarget unions one target's processed reviews across the three
// sources into processed_data/combined_reviews.csv. All sources share the
// final column set, so the union is a plain concatenation.
func CombineTarget(cfg *config.Config, target config.AppTarget, reddit, playStore, appStore []models.NormalizedReview) ([]models.NormalizedReview, error) {
	combined := make([]models.NormalizedReview, 0, len(reddit)+len(playStore)+len(appStore))
	combined = append(combined, reddit...)
	combined = append(combined, playStore...)
	combined = append(combined, appStore...)

	if len(combined) == 0 {
		return nil, fmt.Errorf("no data found for %s", target.AppPath)
	}

	slog.Info("[Combine] Statistics for target",
		slog.String("target", target.AppPath),
		slog.Int("total_reviews", len(combined)),
		slog.Int("reddit_reviews", len(reddit)),
		slog.Int("google_play_reviews", len(playStore)),
		slog.Int("app_store_reviews", len(appStore)))

	dir := filepath.Join(cfg.DataDir, target.AppPath, "processed_data")
	path, err := storage.SaveCSV(dir, "combined_reviews", storage.ReviewDataset(combined))
	if err != nil {
		return nil, err
	}

	slog.Info("[Combine] Combined reviews saved",
		slog.String("target", target.AppPath), slog.String("path", path))
	return combined, nil
}

// AggregateAll concatenates every target's combined reviews into one
// cross-app dataset under <data_dir>/../aggregate.
func AggregateAll(cfg *config.Config, perTarget []TargetReviews) error {
	var all []models.NormalizedReview
	for _, t := range perTarget {
		slog.Info("[Aggregate] Loaded reviews for app",
			slog.String("app", t.AppName), slog.Int("count", len(t.Reviews)))
		all = append(all, t.Reviews...)
	}

	if len(all) == 0 {
		return fmt.Errorf("no review data found to aggregate")
	}

	dir := filepath.Join(filepath.Dir(filepath.Clean(cfg.DataDir)), "aggregate")
	path, err := storage.SaveCSV(dir, "combined_review_data", storage.ReviewDataset(all))
	if err != nil {
		return err
	}

	slog.Info("[Aggregate] Aggregated all review data",
		slog.String("path", path), slog.Int("total_reviews", len(all)))
	return nil
}

// TargetReviews pairs a target with its combined review set.
type TargetReviews struct {
	AppName string
	Reviews []models.NormalizedReview
}
