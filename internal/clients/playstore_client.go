package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/spacesedan/reviewflow/internal/models"
)

// Google ships no public reviews API; the Play web UI feeds reviews through
// the batchexecute RPC endpoint, so that is what this client speaks.
const (
	PLAY_STORE_BATCH_URL = "https://play.google.com/_/PlayStoreUi/data/batchexecute?hl=%s&gl=%s"
	PLAY_STORE_RPC_ID    = "UsvDTd"

	// newest-first sort in the reviews RPC
	PLAY_SORT_NEWEST = 2

	PLAY_PAGE_SIZE = 199
)

type PlayStoreClient struct {
	client  *http.Client
	limiter *rate.Limiter
	lang    string
	country string
}

func NewPlayStoreClient(lang, country string) *PlayStoreClient {
	if lang == "" {
		lang = "en"
	}
	if country == "" {
		country = "us"
	}
	return &PlayStoreClient{
		client:  &http.Client{Timeout: 30 * time.Second},
		limiter: rate.NewLimiter(rate.Limit(2), 1),
		lang:    lang,
		country: country,
	}
}

// FetchReviews pages through all reviews for the package newest-first until
// the continuation token runs out, since is reached, or the context expires.
// Reviews fetched before a mid-pagination failure are kept.
func (pc *PlayStoreClient) FetchReviews(ctx context.Context, packageID string, since time.Time) ([]models.PlayStoreReview, error) {
	var reviews []models.PlayStoreReview
	token := ""

	for {
		page, next, err := pc.fetchPage(ctx, packageID, token)
		if err != nil {
			if ctx.Err() != nil {
				return reviews, ctx.Err()
			}
			slog.Warn("[PlayStoreClient] Failed to fetch reviews page",
				slog.String("package", packageID),
				slog.String("error", err.Error()))
			return reviews, nil
		}
		if len(page) == 0 {
			break
		}

		done := false
		for _, r := range page {
			if r.At.Before(since) {
				// Pages arrive newest-first; everything after this
				// is older still.
				done = true
				break
			}
			reviews = append(reviews, r)
		}

		if done || next == "" {
			break
		}
		token = next
	}

	return reviews, nil
}

func (pc *PlayStoreClient) fetchPage(ctx context.Context, packageID, token string) ([]models.PlayStoreReview, string, error) {
	if err := pc.limiter.Wait(ctx); err != nil {
		return nil, "", err
	}

	reqURL := fmt.Sprintf(PLAY_STORE_BATCH_URL, pc.lang, pc.country)
	form := url.Values{}
	form.Set("f.req", buildReviewsRPC(packageID, token))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded;charset=UTF-8")
	req.Header.Set("User-Agent", USER_AGENT)

	resp, err := pc.client.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("batchexecute status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", err
	}

	return parseReviewsEnvelope(body)
}

// buildReviewsRPC assembles the nested f.req payload the reviews RPC
// expects. The inner request is itself a JSON string.
func buildReviewsRPC(packageID, token string) string {
	var inner string
	if token == "" {
		inner = fmt.Sprintf(`[null,null,[2,%d,[%d,null,null],null,[]],["%s",7]]`,
			PLAY_SORT_NEWEST, PLAY_PAGE_SIZE, packageID)
	} else {
		inner = fmt.Sprintf(`[null,null,[2,%d,[%d,null,%s],null,[]],["%s",7]]`,
			PLAY_SORT_NEWEST, PLAY_PAGE_SIZE, mustJSON(token), packageID)
	}
	envelope := []any{[]any{[]any{PLAY_STORE_RPC_ID, inner, nil, "generic"}}}
	return mustJSONAny(envelope)
}

// parseReviewsEnvelope unwraps the batchexecute response: an anti-XSSI
// prefix, then a JSON envelope whose [0][2] element is a JSON string holding
// the actual payload. payload[0] is the review list, payload[1][1] the
// continuation token.
func parseReviewsEnvelope(body []byte) ([]models.PlayStoreReview, string, error) {
	text := strings.TrimPrefix(string(body), ")]}'")
	start := strings.Index(text, "[")
	if start < 0 {
		return nil, "", fmt.Errorf("no JSON envelope in response")
	}

	var envelope []any
	if err := json.Unmarshal([]byte(text[start:]), &envelope); err != nil {
		return nil, "", fmt.Errorf("decode envelope: %w", err)
	}

	payloadStr, ok := dig(envelope, 0, 2).(string)
	if !ok || payloadStr == "" {
		// No payload means no (more) reviews.
		return nil, "", nil
	}

	var payload []any
	if err := json.Unmarshal([]byte(payloadStr), &payload); err != nil {
		return nil, "", fmt.Errorf("decode payload: %w", err)
	}

	rawReviews, _ := dig(payload, 0).([]any)
	var reviews []models.PlayStoreReview
	for _, raw := range rawReviews {
		if r := parseReview(raw); r != nil {
			reviews = append(reviews, *r)
		}
	}

	next, _ := dig(payload, 1, 1).(string)
	return reviews, next, nil
}

func parseReview(raw any) *models.PlayStoreReview {
	id, _ := dig(raw, 0).(string)
	content, _ := dig(raw, 4).(string)
	if id == "" || content == "" {
		return nil
	}

	userName, _ := dig(raw, 1, 0).(string)
	version, _ := dig(raw, 10).(string)

	var score, thumbs int
	if f, ok := dig(raw, 2).(float64); ok {
		score = int(f)
	}
	if f, ok := dig(raw, 6).(float64); ok {
		thumbs = int(f)
	}

	var at time.Time
	if secs, ok := dig(raw, 5, 0).(float64); ok {
		at = time.Unix(int64(secs), 0).UTC()
	}

	return &models.PlayStoreReview{
		ReviewID:      id,
		UserName:      userName,
		Content:       content,
		Score:         score,
		ThumbsUpCount: thumbs,
		AppVersion:    version,
		At:            at,
	}
}

// dig walks nested []any values by index, returning nil when any step is
// out of range or not a slice.
func dig(v any, idx ...int) any {
	for _, i := range idx {
		arr, ok := v.([]any)
		if !ok || i < 0 || i >= len(arr) {
			return nil
		}
		v = arr[i]
	}
	return v
}

func mustJSON(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

func mustJSONAny(v any) string {
	b, _ := json.Marshal(v)
	return string(b)
}
