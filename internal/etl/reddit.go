package etl

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/spacesedan/reviewflow/config"
	"github.com/spacesedan/reviewflow/internal/clients"
	"github.com/spacesedan/reviewflow/internal/collector"
	"github.com/spacesedan/reviewflow/internal/models"
	"github.com/spacesedan/reviewflow/internal/storage"
)

// RunRedditETL collects a year of subreddit posts and comments through the
// multi-strategy engine, persists the raw snapshot, and returns the
// normalized reviews after persisting those too.
func RunRedditETL(ctx context.Context, cfg *config.Config, target config.AppTarget) ([]models.NormalizedReview, error) {
	slog.Info("[RedditETL] Starting ETL process",
		slog.String("app", target.AppName),
		slog.String("subreddit", target.Subreddit))

	now := time.Now().UTC()
	cutoff := now.AddDate(0, 0, -cfg.Collection.LookbackDays)
	slog.Info("[RedditETL] Collecting posts",
		slog.String("from", cutoff.Format("2006-01-02")),
		slog.String("to", now.Format("2006-01-02")))

	runCtx, cancel := context.WithTimeout(ctx, cfg.Collection.ParseRunTimeout())
	defer cancel()

	source := clients.GetRedditClient().Subreddit(target.Subreddit)
	col := collector.New(source, cutoff, cfg.Collection.ParseItemDelay())

	result := col.Run(runCtx)
	if result.Partial {
		slog.Warn("[RedditETL] Collection run is PARTIAL: the run timeout cut off remaining strategies",
			slog.String("app", target.AppName),
			slog.Int("records", len(result.Records)))
	}
	logRunSummary(result.Records)

	targetDir := filepath.Join(cfg.DataDir, target.AppPath)
	rawDS := rawRedditDataset(result.Records)
	if err := storage.SaveDataset(filepath.Join(targetDir, "raw_data"), "reddit", "raw_data", rawDS); err != nil {
		return nil, err
	}

	reviews := collector.Normalize(result.Records, target.AppName)
	processedDS := storage.ReviewDataset(reviews)
	if err := storage.SaveDataset(filepath.Join(targetDir, "processed_data"), "reddit", "processed_data", processedDS); err != nil {
		return nil, err
	}

	if err := ValidateProcessed("Reddit processed data", reviews, ValidationOpts{
		MinRows:          10,
		MinReviewLength:  collector.MIN_BODY_LENGTH,
		RequireLowercase: true,
	}); err != nil {
		return nil, err
	}

	slog.Info("[RedditETL] ETL process completed", slog.String("app", target.AppName))
	return reviews, nil
}

var rawRedditColumns = []string{
	"id", "type", "text", "username", "timestamp", "upvotes", "upvote_ratio",
	"total_comments", "url", "permalink", "is_self_post", "flair", "title",
	"parent_id", "parent_title", "source",
}

func rawRedditDataset(records []models.RawRecord) *storage.Dataset {
	ds := &storage.Dataset{Columns: rawRedditColumns, Rows: make([][]any, 0, len(records))}
	for _, rec := range records {
		var ratio any
		if rec.UpvoteRatio != nil {
			ratio = *rec.UpvoteRatio
		}
		var flair any
		if rec.Flair != "" {
			flair = rec.Flair
		}

		ds.Rows = append(ds.Rows, []any{
			rec.ID,
			string(rec.Kind),
			rec.Body,
			rec.Author,
			rec.CreatedAt,
			rec.Score,
			ratio,
			rec.ReplyCount,
			nilIfEmpty(rec.URL),
			rec.Permalink,
			rec.IsSelfPost,
			flair,
			nilIfEmpty(rec.Title),
			nilIfEmpty(rec.ParentID),
			nilIfEmpty(rec.ParentTitle),
			rec.CollectionTag,
		})
	}
	return ds
}

func nilIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func logRunSummary(records []models.RawRecord) {
	posts, comments := 0, 0
	authors := make(map[string]struct{})
	for _, rec := range records {
		if rec.Kind == models.RecordKindPost {
			posts++
		} else {
			comments++
		}
		authors[rec.Author] = struct{}{}
	}

	slog.Info("[RedditETL] ===== DATA SUMMARY =====",
		slog.Int("total_records", len(records)),
		slog.Int("posts", posts),
		slog.Int("comments", comments),
		slog.Int("unique_users", len(authors)))
}
