package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/spacesedan/reviewflow/config"
	"github.com/spacesedan/reviewflow/internal/etl"
	"github.com/spacesedan/reviewflow/internal/models"
	"github.com/spacesedan/reviewflow/internal/storage"
)

// Run processes every configured app across all three sources, backs the
// data directory up to S3, and aggregates everything into one dataset.
// One target failing is recorded and skipped; it never aborts the batch.
func Run(ctx context.Context, cfg *config.Config) error {
	start := time.Now()

	type targetResult struct {
		appName string
		err     error
	}

	var results []targetResult
	var perTarget []etl.TargetReviews

	for _, target := range cfg.Apps {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		slog.Info("[Pipeline] Starting ETL process", slog.String("app", target.AppName))
		combined, err := processTarget(ctx, cfg, target)
		if err != nil {
			slog.Error("[Pipeline] Error processing app",
				slog.String("app", target.AppName),
				slog.String("error", err.Error()))
			results = append(results, targetResult{target.AppName, err})
			continue
		}

		results = append(results, targetResult{appName: target.AppName})
		perTarget = append(perTarget, etl.TargetReviews{AppName: target.AppName, Reviews: combined})
		slog.Info("[Pipeline] Completed ETL process", slog.String("app", target.AppName))
	}

	for _, r := range results {
		status := "SUCCESS"
		if r.err != nil {
			status = "FAILED"
		}
		slog.Info("[Pipeline] Target result",
			slog.String("app", r.appName), slog.String("status", status))
	}

	slog.Info("[Pipeline] Starting S3 backup before aggregation...")
	if _, err := storage.BackupDataDir(ctx, cfg.AWS.BucketName, cfg.DataDir); err != nil {
		slog.Warn("[Pipeline] S3 backup failed, but continuing with aggregation...",
			slog.String("error", err.Error()))
	}

	slog.Info("[Pipeline] Starting aggregation of all review data...")
	if err := etl.AggregateAll(cfg, perTarget); err != nil {
		slog.Error("[Pipeline] Failed to aggregate review data", slog.String("error", err.Error()))
	}

	slog.Info("[Pipeline] ETL process complete",
		slog.Duration("execution_time", time.Since(start)))
	return nil
}

// processTarget runs the three source ETLs for one app in order, then
// combines their processed outputs. Any source failing fails the target.
func processTarget(ctx context.Context, cfg *config.Config, target config.AppTarget) ([]models.NormalizedReview, error) {
	slog.Info("[Pipeline] Running App Store ETL", slog.String("app", target.AppName))
	appStore, err := etl.RunAppStoreETL(ctx, cfg, target)
	if err != nil {
		return nil, err
	}

	slog.Info("[Pipeline] Running Play Store ETL", slog.String("app", target.AppName))
	playStore, err := etl.RunPlayStoreETL(ctx, cfg, target)
	if err != nil {
		return nil, err
	}

	slog.Info("[Pipeline] Running Reddit ETL", slog.String("app", target.AppName))
	reddit, err := etl.RunRedditETL(ctx, cfg, target)
	if err != nil {
		return nil, err
	}

	slog.Info("[Pipeline] Combining platform reviews", slog.String("app", target.AppName))
	return etl.CombineTarget(cfg, target, reddit, playStore, appStore)
}
