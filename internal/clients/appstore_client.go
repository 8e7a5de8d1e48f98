package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/spacesedan/reviewflow/internal/models"
)

const APP_STORE_FEED_URL = "https://itunes.apple.com/%s/rss/customerreviews/page=%d/id=%s/sortby=mostrecent/json"

// AppStoreClient pulls customer reviews from the public iTunes RSS feed.
// The feed caps out at 10 pages of ~50 reviews each.
type AppStoreClient struct {
	client  *http.Client
	limiter *rate.Limiter
	country string
}

func NewAppStoreClient(country string) *AppStoreClient {
	if country == "" {
		country = "us"
	}
	return &AppStoreClient{
		client:  &http.Client{Timeout: 30 * time.Second},
		limiter: rate.NewLimiter(rate.Limit(2), 1),
		country: country,
	}
}

// FetchReviews pulls up to maxPages feed pages for the app. A failing page
// is logged and skipped; the reviews gathered so far are kept.
func (ac *AppStoreClient) FetchReviews(ctx context.Context, appID string, maxPages int) ([]models.AppStoreReview, error) {
	if maxPages <= 0 || maxPages > 10 {
		maxPages = 10
	}

	var reviews []models.AppStoreReview
	for page := 1; page <= maxPages; page++ {
		pageReviews, err := ac.fetchPage(ctx, appID, page)
		if err != nil {
			if ctx.Err() != nil {
				return reviews, ctx.Err()
			}
			slog.Warn("[AppStoreClient] Failed to fetch feed page",
				slog.String("app_id", appID),
				slog.Int("page", page),
				slog.String("error", err.Error()))
			continue
		}
		if len(pageReviews) == 0 {
			break
		}
		reviews = append(reviews, pageReviews...)
	}

	return reviews, nil
}

func (ac *AppStoreClient) fetchPage(ctx context.Context, appID string, page int) ([]models.AppStoreReview, error) {
	if err := ac.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	reqURL := fmt.Sprintf(APP_STORE_FEED_URL, ac.country, page, appID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", USER_AGENT)

	resp, err := ac.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed page %d status %d", page, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var feed models.AppStoreFeedResponse
	if err := json.Unmarshal(body, &feed); err != nil {
		return nil, fmt.Errorf("decode feed page %d: %w", page, err)
	}

	var reviews []models.AppStoreReview
	for _, entry := range feed.Feed.Entry {
		rating, _ := strconv.Atoi(entry.Rating.Label)
		date, err := time.Parse(time.RFC3339, entry.Updated.Label)
		if err != nil {
			continue
		}

		reviews = append(reviews, models.AppStoreReview{
			ID:       entry.ID.Label,
			UserName: entry.Author.Name.Label,
			Title:    entry.Title.Label,
			Review:   entry.Content.Label,
			Rating:   rating,
			Version:  entry.Version.Label,
			Date:     date.UTC(),
		})
	}

	return reviews, nil
}
