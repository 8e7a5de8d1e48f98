package etl

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/spacesedan/reviewflow/config"
	"github.com/spacesedan/reviewflow/internal/clients"
	"github.com/spacesedan/reviewflow/internal/models"
	"github.com/spacesedan/reviewflow/internal/storage"
)

// RunPlayStoreETL pulls the trailing year of Play Store reviews, persists
// the raw snapshot, and returns the persisted normalized reviews.
func RunPlayStoreETL(ctx context.Context, cfg *config.Config, target config.AppTarget) ([]models.NormalizedReview, error) {
	slog.Info("[PlayStoreETL] Extracting reviews",
		slog.String("app", target.AppName), slog.String("package", target.PlayStoreID))

	cutoff := time.Now().UTC().AddDate(0, 0, -cfg.Collection.LookbackDays)

	client := clients.NewPlayStoreClient("en", cfg.Collection.AppStoreCountry)
	reviews, err := client.FetchReviews(ctx, target.PlayStoreID, cutoff)
	if err != nil {
		return nil, err
	}

	slog.Info("[PlayStoreETL] Extracted reviews in last 1 year",
		slog.String("app", target.AppName), slog.Int("count", len(reviews)))

	targetDir := filepath.Join(cfg.DataDir, target.AppPath)
	if err := storage.SaveDataset(filepath.Join(targetDir, "raw_data"), "google_play", "raw_data", rawPlayStoreDataset(reviews)); err != nil {
		return nil, err
	}

	processed := transformPlayStoreReviews(reviews, target.AppName)
	if err := storage.SaveDataset(filepath.Join(targetDir, "processed_data"), "google_play", "processed_data", storage.ReviewDataset(processed)); err != nil {
		return nil, err
	}

	if err := ValidateProcessed("Google Play processed data", processed, ValidationOpts{MinRows: 5}); err != nil {
		return nil, err
	}

	slog.Info("[PlayStoreETL] ETL completed", slog.String("app", target.AppName))
	return processed, nil
}

var rawPlayStoreColumns = []string{
	"review_id", "username", "content", "score", "thumbs_up_count", "app_version", "at",
}

func rawPlayStoreDataset(reviews []models.PlayStoreReview) *storage.Dataset {
	ds := &storage.Dataset{Columns: rawPlayStoreColumns, Rows: make([][]any, 0, len(reviews))}
	for _, r := range reviews {
		ds.Rows = append(ds.Rows, []any{
			r.ReviewID, r.UserName, r.Content, r.Score, r.ThumbsUpCount,
			nilIfEmpty(r.AppVersion), r.At,
		})
	}
	return ds
}

func transformPlayStoreReviews(reviews []models.PlayStoreReview, appName string) []models.NormalizedReview {
	out := make([]models.NormalizedReview, 0, len(reviews))
	for _, r := range reviews {
		if strings.TrimSpace(r.Content) == "" || r.At.IsZero() {
			continue
		}
		rating := r.Score
		// missing thumb counts arrive as 0, which is also the fill value
		thumbs := r.ThumbsUpCount
		out = append(out, models.NormalizedReview{
			Review:         r.Content,
			ReviewDatetime: r.At,
			DataSource:     models.DataSourceGooglePlay,
			AppName:        appName,
			UpvoteCount:    &thumbs,
			AppRating:      &rating,
		})
	}
	return out
}
