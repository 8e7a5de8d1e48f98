package clients

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/time/rate"

	"github.com/spacesedan/reviewflow/internal/models"
)

// redditTransport routes requests by path prefix to canned handlers.
type redditTransport struct {
	handlers map[string]func(*url.URL) (int, string)
	requests []*url.URL
}

func (rt *redditTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	rt.requests = append(rt.requests, req.URL)
	for prefix, handler := range rt.handlers {
		if strings.HasPrefix(req.URL.Path, prefix) {
			status, body := handler(req.URL)
			return &http.Response{
				StatusCode: status,
				Body:       io.NopCloser(strings.NewReader(body)),
				Header:     make(http.Header),
			}, nil
		}
	}
	return &http.Response{
		StatusCode: http.StatusNotFound,
		Body:       io.NopCloser(strings.NewReader("")),
		Header:     make(http.Header),
	}, nil
}

func newTestRedditClient(rt *redditTransport) *RedditClient {
	return &RedditClient{
		Config:  &clientcredentials.Config{},
		Client:  &http.Client{Transport: rt},
		limiter: rate.NewLimiter(rate.Inf, 1),
		mu:      &sync.Mutex{},
	}
}

func thing(t *testing.T, kind string, data any) models.RedditThing {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	return models.RedditThing{Kind: kind, Data: raw}
}

func listingJSON(t *testing.T, after string, things ...models.RedditThing) string {
	t.Helper()
	b, err := json.Marshal(models.RedditAPIResponse{
		Kind: "Listing",
		Data: models.RedditAPIData{After: after, Children: things},
	})
	require.NoError(t, err)
	return string(b)
}

func TestListPage_ReturnsSubmissionsAndCursor(t *testing.T) {
	rt := &redditTransport{handlers: map[string]func(*url.URL) (int, string){
		"/r/testsub/new": func(u *url.URL) (int, string) {
			return http.StatusOK, listingJSON(t, "t3_cursor",
				thing(t, models.ThingKindSubmission, models.Submission{ID: "p1", Title: "Late order"}),
				thing(t, models.ThingKindComment, models.Comment{ID: "c1", Body: "not a post"}),
			)
		},
	}}

	sc := newTestRedditClient(rt).Subreddit("testsub")
	subs, after, err := sc.ListPage(context.Background(), models.SortNew, models.TimeFilterNone, "")
	require.NoError(t, err)

	require.Len(t, subs, 1, "non-submission things are dropped")
	assert.Equal(t, "p1", subs[0].ID)
	assert.Equal(t, "t3_cursor", after)

	q := rt.requests[0].Query()
	assert.Equal(t, "100", q.Get("limit"))
	assert.Equal(t, "1", q.Get("raw_json"))
	assert.Empty(t, q.Get("t"))
	assert.Empty(t, q.Get("after"))
}

func TestListPage_SendsTimeFilterAndCursor(t *testing.T) {
	rt := &redditTransport{handlers: map[string]func(*url.URL) (int, string){
		"/r/testsub/top": func(u *url.URL) (int, string) {
			return http.StatusOK, listingJSON(t, "")
		},
	}}

	sc := newTestRedditClient(rt).Subreddit("testsub")
	_, after, err := sc.ListPage(context.Background(), models.SortTop, models.TimeFilterAll, "t3_prev")
	require.NoError(t, err)
	assert.Empty(t, after)

	q := rt.requests[0].Query()
	assert.Equal(t, "all", q.Get("t"))
	assert.Equal(t, "t3_prev", q.Get("after"))
}

func TestSearchPage_RestrictsToSubreddit(t *testing.T) {
	rt := &redditTransport{handlers: map[string]func(*url.URL) (int, string){
		"/r/testsub/search": func(u *url.URL) (int, string) {
			return http.StatusOK, listingJSON(t, "",
				thing(t, models.ThingKindSubmission, models.Submission{ID: "s1", Title: "refund saga"}))
		},
	}}

	sc := newTestRedditClient(rt).Subreddit("testsub")
	subs, _, err := sc.SearchPage(context.Background(), "refund", models.SortNew, models.TimeFilterYear, "")
	require.NoError(t, err)
	require.Len(t, subs, 1)

	q := rt.requests[0].Query()
	assert.Equal(t, "refund", q.Get("q"))
	assert.Equal(t, "on", q.Get("restrict_sr"))
	assert.Equal(t, "new", q.Get("sort"))
	assert.Equal(t, "year", q.Get("t"))
}

func TestWalkCommentListing_FlattensNestedReplies(t *testing.T) {
	leaf := thing(t, models.ThingKindComment, map[string]any{
		"id": "c2", "body": "nested reply", "author": "b",
	})
	repliesListing, err := json.Marshal(models.RedditAPIResponse{
		Kind: "Listing",
		Data: models.RedditAPIData{Children: []models.RedditThing{leaf}},
	})
	require.NoError(t, err)

	top := thing(t, models.ThingKindComment, map[string]any{
		"id": "c1", "body": "top level", "author": "a",
		"replies": json.RawMessage(repliesListing),
	})
	more := thing(t, models.ThingKindMore, models.RedditMore{Children: []string{"c9", "c10"}})

	data := models.RedditAPIData{Children: []models.RedditThing{top, more}}

	var comments []models.Comment
	var pending []string
	walkCommentListing(&data, &comments, &pending)

	require.Len(t, comments, 2)
	assert.Equal(t, "c1", comments[0].ID)
	assert.Equal(t, "c2", comments[1].ID)
	assert.Nil(t, comments[0].Replies, "replies are consumed during the walk")
	assert.Equal(t, []string{"c9", "c10"}, pending)
}

func TestCommentTree_ReturnsPartialOnMoreChildrenFailure(t *testing.T) {
	commentsBody := "[" +
		listingJSON(t, "", thing(t, models.ThingKindSubmission, models.Submission{ID: "p1"})) + "," +
		listingJSON(t, "",
			thing(t, models.ThingKindComment, models.Comment{ID: "c1", Body: "materialized fine"}),
			thing(t, models.ThingKindMore, models.RedditMore{Children: []string{"c9"}}),
		) + "]"

	rt := &redditTransport{handlers: map[string]func(*url.URL) (int, string){
		"/r/testsub/comments/p1": func(u *url.URL) (int, string) {
			return http.StatusOK, commentsBody
		},
		"/api/morechildren": func(u *url.URL) (int, string) {
			return http.StatusInternalServerError, ""
		},
	}}

	sc := newTestRedditClient(rt).Subreddit("testsub")
	comments, err := sc.CommentTree(context.Background(), &models.Submission{ID: "p1", Name: "t3_p1"})

	require.Error(t, err, "a failed stub expansion surfaces as an error")
	require.Len(t, comments, 1, "comments walked before the failure are kept")
	assert.Equal(t, "c1", comments[0].ID)
}

func TestCommentTree_ExpandsMoreStubs(t *testing.T) {
	commentsBody := "[" +
		listingJSON(t, "", thing(t, models.ThingKindSubmission, models.Submission{ID: "p1"})) + "," +
		listingJSON(t, "",
			thing(t, models.ThingKindComment, models.Comment{ID: "c1", Body: "inline comment"}),
			thing(t, models.ThingKindMore, models.RedditMore{Children: []string{"c9"}}),
		) + "]"

	moreBody := `{"json":{"data":{"things":[` +
		`{"kind":"t1","data":{"id":"c9","body":"expanded from stub"}}` +
		`]}}}`

	rt := &redditTransport{handlers: map[string]func(*url.URL) (int, string){
		"/r/testsub/comments/p1": func(u *url.URL) (int, string) {
			return http.StatusOK, commentsBody
		},
		"/api/morechildren": func(u *url.URL) (int, string) {
			assert.Equal(t, "t3_p1", u.Query().Get("link_id"))
			assert.Equal(t, "c9", u.Query().Get("children"))
			return http.StatusOK, moreBody
		},
	}}

	sc := newTestRedditClient(rt).Subreddit("testsub")
	comments, err := sc.CommentTree(context.Background(), &models.Submission{ID: "p1", Name: "t3_p1"})
	require.NoError(t, err)

	require.Len(t, comments, 2)
	assert.Equal(t, "c9", comments[1].ID)
}
