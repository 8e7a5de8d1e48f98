package collector

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spacesedan/reviewflow/internal/models"
)

// harvestReplies flattens a submission's reply tree into comment records.
// A failed or partial expansion degrades to whatever was materialized; it
// never aborts the strategy that accepted the submission.
func (c *Collector) harvestReplies(ctx context.Context, sub *models.Submission) []models.RawRecord {
	comments, err := c.source.CommentTree(ctx, sub)
	if err != nil {
		slog.Warn("[Collector] Couldn't fully load comments for submission",
			slog.String("submission_id", sub.ID),
			slog.Int("materialized", len(comments)),
			slog.String("error", err.Error()))
	}

	tag := fmt.Sprintf("comment_in_%s", sub.ID)

	var records []models.RawRecord
	for i := range comments {
		rec := ExtractComment(&comments[i], sub, tag)
		if rec == nil {
			continue
		}
		if !c.seen.Add(rec.ID) {
			continue
		}
		records = append(records, *rec)
	}

	return records
}
