package etl

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spacesedan/reviewflow/internal/models"
)

// ValidationOpts tunes the end-of-run sanity checks for one source.
type ValidationOpts struct {
	MinRows          int
	MinReviewLength  int
	RequireLowercase bool
}

// ValidateProcessed runs the aggregate sanity checks on a processed review
// set. A failure fails the target's run; data already persisted for other
// targets is untouched.
func ValidateProcessed(context string, reviews []models.NormalizedReview, opts ValidationOpts) error {
	slog.Info("[Validate] Running sanity checks", slog.String("context", context))

	if len(reviews) == 0 {
		return fmt.Errorf("%s: result set is empty", context)
	}
	if len(reviews) < opts.MinRows {
		return fmt.Errorf("%s: only %d rows, which seems too low (want >= %d)",
			context, len(reviews), opts.MinRows)
	}

	for i, r := range reviews {
		if strings.TrimSpace(r.Review) == "" {
			return fmt.Errorf("%s: row %d has a null review", context, i)
		}
		if r.ReviewDatetime.IsZero() {
			return fmt.Errorf("%s: row %d has a null review_datetime", context, i)
		}
		if r.DataSource == "" || r.AppName == "" {
			return fmt.Errorf("%s: row %d is missing data_source or app_name", context, i)
		}
		if opts.MinReviewLength > 0 && len(r.Review) < opts.MinReviewLength {
			return fmt.Errorf("%s: row %d review is too short (%d chars)", context, i, len(r.Review))
		}
		if opts.RequireLowercase && r.Review != strings.ToLower(r.Review) {
			return fmt.Errorf("%s: row %d review contains uppercase characters", context, i)
		}
	}

	slog.Info("[Validate] All sanity checks passed", slog.String("context", context))
	return nil
}
