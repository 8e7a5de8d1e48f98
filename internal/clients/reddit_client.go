package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/time/rate"

	"github.com/spacesedan/reviewflow/internal/models"
)

const (
	REDDIT_AUTH_URL = "https://www.reddit.com/api/v1/access_token"
	REDDIT_API_URL  = "https://oauth.reddit.com"
)

var (
	redditClientInstance *RedditClient
	redditClientOnce     sync.Once
)

type RedditClient struct {
	Config  *clientcredentials.Config
	Client  *http.Client
	limiter *rate.Limiter
	mu      *sync.Mutex
}

func GetRedditClient() *RedditClient {
	redditClientOnce.Do(func() {
		oauthConf := &clientcredentials.Config{
			ClientID:     os.Getenv("REDDIT_CLIENT_ID"),
			ClientSecret: os.Getenv("REDDIT_CLIENT_SECRET"),
			TokenURL:     REDDIT_AUTH_URL,
			AuthStyle:    oauth2.AuthStyleInHeader,
		}

		redditClientInstance = &RedditClient{
			Config:  oauthConf,
			Client:  oauthConf.Client(context.Background()),
			limiter: rate.NewLimiter(rate.Limit(REDDIT_REQS_PER_SEC), 1),
			mu:      &sync.Mutex{},
		}
	})

	return redditClientInstance
}

func (rc *RedditClient) RefreshClient() {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.Client = rc.Config.Client(context.Background())
}

// Subreddit binds the client to one subreddit so callers can page through
// its listings without carrying the name around.
func (rc *RedditClient) Subreddit(name string) *SubredditClient {
	return &SubredditClient{rc: rc, name: name}
}

type SubredditClient struct {
	rc   *RedditClient
	name string
}

// ListPage fetches one page of a subreddit listing. It returns the page's
// submissions and the pagination cursor for the next page ("" on the last).
func (sc *SubredditClient) ListPage(ctx context.Context, order models.SortOrder, tf models.TimeFilter, after string) ([]models.Submission, string, error) {
	params := url.Values{}
	params.Set("limit", fmt.Sprintf("%d", PAGE_LIMIT))
	params.Set("raw_json", "1")
	if tf != models.TimeFilterNone {
		params.Set("t", string(tf))
	}
	if after != "" {
		params.Set("after", after)
	}

	var listing models.RedditAPIResponse
	if err := sc.rc.getJSON(ctx, fmt.Sprintf("/r/%s/%s", sc.name, order), params, &listing); err != nil {
		return nil, "", fmt.Errorf("[RedditClient] list r/%s %s: %w", sc.name, order, err)
	}

	return submissionsFromListing(&listing), listing.Data.After, nil
}

// SearchPage fetches one page of subreddit search results.
func (sc *SubredditClient) SearchPage(ctx context.Context, query string, sort models.SortOrder, tf models.TimeFilter, after string) ([]models.Submission, string, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("sort", string(sort))
	params.Set("restrict_sr", "on")
	params.Set("limit", fmt.Sprintf("%d", PAGE_LIMIT))
	params.Set("raw_json", "1")
	if tf != models.TimeFilterNone {
		params.Set("t", string(tf))
	}
	if after != "" {
		params.Set("after", after)
	}

	var listing models.RedditAPIResponse
	if err := sc.rc.getJSON(ctx, fmt.Sprintf("/r/%s/search", sc.name), params, &listing); err != nil {
		return nil, "", fmt.Errorf("[RedditClient] search r/%s %q: %w", sc.name, query, err)
	}

	return submissionsFromListing(&listing), listing.Data.After, nil
}

// CommentTree fetches and flattens the full comment tree of a submission.
// Collapsed "more" stubs are expanded through /api/morechildren. When any
// part of the expansion fails the comments materialized so far are returned
// alongside the error.
func (sc *SubredditClient) CommentTree(ctx context.Context, sub *models.Submission) ([]models.Comment, error) {
	params := url.Values{}
	params.Set("limit", "500")
	params.Set("raw_json", "1")

	var payload []models.RedditAPIResponse
	if err := sc.rc.getJSON(ctx, fmt.Sprintf("/r/%s/comments/%s", sc.name, sub.ID), params, &payload); err != nil {
		return nil, fmt.Errorf("[RedditClient] comments for %s: %w", sub.ID, err)
	}
	if len(payload) < 2 {
		return nil, fmt.Errorf("[RedditClient] comments for %s: unexpected payload shape", sub.ID)
	}

	var comments []models.Comment
	var pending []string

	walkCommentListing(&payload[1].Data, &comments, &pending)

	// Expand collapsed stubs in batches of 100 (the endpoint's cap).
	for len(pending) > 0 {
		batch := pending
		if len(batch) > 100 {
			batch = batch[:100]
		}
		pending = pending[len(batch):]

		more, err := sc.rc.moreChildren(ctx, sub.Name, batch)
		if err != nil {
			return comments, fmt.Errorf("[RedditClient] morechildren for %s: %w", sub.ID, err)
		}
		comments = append(comments, more...)
	}

	return comments, nil
}

func (rc *RedditClient) moreChildren(ctx context.Context, linkFullname string, children []string) ([]models.Comment, error) {
	params := url.Values{}
	params.Set("api_type", "json")
	params.Set("link_id", linkFullname)
	params.Set("children", strings.Join(children, ","))
	params.Set("raw_json", "1")

	var resp struct {
		JSON struct {
			Data struct {
				Things []models.RedditThing `json:"things"`
			} `json:"data"`
		} `json:"json"`
	}
	if err := rc.getJSON(ctx, "/api/morechildren", params, &resp); err != nil {
		return nil, err
	}

	var comments []models.Comment
	for _, thing := range resp.JSON.Data.Things {
		if thing.Kind != models.ThingKindComment {
			continue
		}
		var c models.Comment
		if err := json.Unmarshal(thing.Data, &c); err != nil {
			continue
		}
		comments = append(comments, c)
	}
	return comments, nil
}

// walkCommentListing appends every comment in the listing depth-first and
// collects the IDs hidden behind "more" stubs.
func walkCommentListing(data *models.RedditAPIData, comments *[]models.Comment, pending *[]string) {
	for _, thing := range data.Children {
		switch thing.Kind {
		case models.ThingKindComment:
			var c models.Comment
			if err := json.Unmarshal(thing.Data, &c); err != nil {
				continue
			}
			replies := c.Replies
			c.Replies = nil
			*comments = append(*comments, c)

			// Replies is "" when the comment is a leaf.
			if len(replies) > 0 && replies[0] == '{' {
				var nested models.RedditAPIResponse
				if err := json.Unmarshal(replies, &nested); err == nil {
					walkCommentListing(&nested.Data, comments, pending)
				}
			}
		case models.ThingKindMore:
			var more models.RedditMore
			if err := json.Unmarshal(thing.Data, &more); err == nil {
				*pending = append(*pending, more.Children...)
			}
		}
	}
}

func submissionsFromListing(listing *models.RedditAPIResponse) []models.Submission {
	var subs []models.Submission
	for _, thing := range listing.Data.Children {
		if thing.Kind != models.ThingKindSubmission {
			continue
		}
		var s models.Submission
		if err := json.Unmarshal(thing.Data, &s); err != nil {
			continue
		}
		subs = append(subs, s)
	}
	return subs
}

func (rc *RedditClient) getJSON(ctx context.Context, path string, params url.Values, v any) error {
	body, err := rc.get(ctx, path, params, 0)
	if err != nil {
		return err
	}
	return json.Unmarshal(body, v)
}

func (rc *RedditClient) get(ctx context.Context, path string, params url.Values, attempt int) ([]byte, error) {
	if err := rc.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, REDDIT_API_URL+path+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", USER_AGENT)

	resp, err := rc.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return io.ReadAll(resp.Body)
	case http.StatusUnauthorized:
		if attempt >= 1 {
			return nil, fmt.Errorf("unauthorized after token refresh")
		}
		slog.Warn("[RedditClient] Token expired - Refreshing and Retrying...")
		rc.RefreshClient()
		return rc.get(ctx, path, params, attempt+1)
	case http.StatusTooManyRequests:
		return rc.retryWithBackoff(ctx, path, params)
	default:
		return nil, fmt.Errorf("unexpected status %d for %s", resp.StatusCode, path)
	}
}

func (rc *RedditClient) retryWithBackoff(ctx context.Context, path string, params url.Values) ([]byte, error) {
	backoff := INITIAL_BACKOFF
	for i := 1; i < MAX_RETRIES; i++ {
		slog.Warn("[RedditClient] 429 Too Many Requests - Retrying with backoff",
			slog.Int("attempt", i), slog.Duration("backoff", backoff))

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}

		backoff *= 2
		if backoff > MAX_BACKOFF {
			backoff = MAX_BACKOFF
		}

		data, err := rc.get(ctx, path, params, 1)
		if err == nil {
			return data, nil
		}
	}
	return nil, fmt.Errorf("[RedditClient] Max retries reached request failed")
}
