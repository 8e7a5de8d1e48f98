package etl

import (
	"context"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spacesedan/reviewflow/config"
	"github.com/spacesedan/reviewflow/internal/clients"
	"github.com/spacesedan/reviewflow/internal/models"
	"github.com/spacesedan/reviewflow/internal/storage"
)

// RunAppStoreETL pulls the trailing year of App Store reviews, persists the
// raw snapshot, and returns the persisted normalized reviews.
func RunAppStoreETL(ctx context.Context, cfg *config.Config, target config.AppTarget) ([]models.NormalizedReview, error) {
	slog.Info("[AppStoreETL] Starting raw review fetch", slog.String("app", target.AppName))

	client := clients.NewAppStoreClient(cfg.Collection.AppStoreCountry)
	raw, err := client.FetchReviews(ctx, target.AppStoreID, cfg.Collection.AppStorePages)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	cutoff := now.AddDate(-1, 0, 0)
	reviews := raw[:0]
	for _, r := range raw {
		if r.Date.Before(cutoff) || r.Date.After(now) {
			continue
		}
		reviews = append(reviews, r)
	}
	// oldest first, matching the raw snapshot's historical layout
	sort.SliceStable(reviews, func(i, j int) bool { return reviews[i].Date.Before(reviews[j].Date) })

	slog.Info("[AppStoreETL] Fetched reviews",
		slog.String("app", target.AppName), slog.Int("count", len(reviews)))

	targetDir := filepath.Join(cfg.DataDir, target.AppPath)
	if err := storage.SaveDataset(filepath.Join(targetDir, "raw_data"), "app_store", "raw_data", rawAppStoreDataset(reviews)); err != nil {
		return nil, err
	}

	processed := transformAppStoreReviews(reviews, target.AppName)
	if err := storage.SaveDataset(filepath.Join(targetDir, "processed_data"), "app_store", "processed_data", storage.ReviewDataset(processed)); err != nil {
		return nil, err
	}

	if err := ValidateProcessed("App Store processed data", processed, ValidationOpts{MinRows: 5}); err != nil {
		return nil, err
	}

	slog.Info("[AppStoreETL] Finished ETL pipeline", slog.String("app", target.AppName))
	return processed, nil
}

var rawAppStoreColumns = []string{"id", "username", "title", "review", "rating", "version", "date"}

func rawAppStoreDataset(reviews []models.AppStoreReview) *storage.Dataset {
	ds := &storage.Dataset{Columns: rawAppStoreColumns, Rows: make([][]any, 0, len(reviews))}
	for _, r := range reviews {
		ds.Rows = append(ds.Rows, []any{
			r.ID, r.UserName, r.Title, r.Review, r.Rating, r.Version, r.Date,
		})
	}
	return ds
}

func transformAppStoreReviews(reviews []models.AppStoreReview, appName string) []models.NormalizedReview {
	out := make([]models.NormalizedReview, 0, len(reviews))
	for _, r := range reviews {
		if strings.TrimSpace(r.Review) == "" || r.Date.IsZero() {
			continue
		}
		rating := r.Rating
		out = append(out, models.NormalizedReview{
			Review:         r.Review,
			ReviewDatetime: r.Date,
			DataSource:     models.DataSourceAppStore,
			AppName:        appName,
			AppRating:      &rating,
		})
	}
	return out
}
