package collector

import (
	"strings"

	"github.com/spacesedan/reviewflow/internal/models"
)

// Normalize folds a raw snapshot into the cross-source review schema:
// rows with no text or no timestamp are dropped, text is lowercased, and
// the relative order of the input is preserved. Running it twice over the
// same snapshot yields identical output.
func Normalize(records []models.RawRecord, appName string) []models.NormalizedReview {
	reviews := make([]models.NormalizedReview, 0, len(records))

	for _, rec := range records {
		if strings.TrimSpace(rec.Body) == "" || rec.CreatedAt.IsZero() {
			continue
		}

		upvotes := rec.Score
		replies := rec.ReplyCount

		reviews = append(reviews, models.NormalizedReview{
			Review:         strings.ToLower(rec.Body),
			ReviewDatetime: rec.CreatedAt,
			DataSource:     models.DataSourceReddit,
			AppName:        appName,
			UpvoteCount:    &upvotes,
			TotalComments:  &replies,
		})
	}

	return reviews
}
