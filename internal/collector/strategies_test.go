package collector

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spacesedan/reviewflow/internal/models"
)

// fakeSource serves canned listing and search pages. Cursors are the
// stringified index of the next page; the last page returns "".
type fakeSource struct {
	listPages   map[string][][]models.Submission // keyed "order|tf"
	searchPages map[string][][]models.Submission // keyed by query
	comments    map[string][]models.Comment      // keyed by submission ID
	commentErrs map[string]error

	listFetches   map[string]int
	searchQueries []string
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		listPages:   make(map[string][][]models.Submission),
		searchPages: make(map[string][][]models.Submission),
		comments:    make(map[string][]models.Comment),
		commentErrs: make(map[string]error),
		listFetches: make(map[string]int),
	}
}

func listKey(order models.SortOrder, tf models.TimeFilter) string {
	return string(order) + "|" + string(tf)
}

func servePage(pages [][]models.Submission, after string) ([]models.Submission, string, error) {
	if len(pages) == 0 {
		return nil, "", nil
	}
	idx := 0
	if after != "" {
		var err error
		idx, err = strconv.Atoi(after)
		if err != nil || idx >= len(pages) {
			return nil, "", nil
		}
	}
	next := ""
	if idx+1 < len(pages) {
		next = strconv.Itoa(idx + 1)
	}
	return pages[idx], next, nil
}

func (f *fakeSource) ListPage(_ context.Context, order models.SortOrder, tf models.TimeFilter, after string) ([]models.Submission, string, error) {
	key := listKey(order, tf)
	f.listFetches[key]++
	return servePage(f.listPages[key], after)
}

func (f *fakeSource) SearchPage(_ context.Context, query string, _ models.SortOrder, _ models.TimeFilter, after string) ([]models.Submission, string, error) {
	f.searchQueries = append(f.searchQueries, query)
	return servePage(f.searchPages[query], after)
}

func (f *fakeSource) CommentTree(_ context.Context, sub *models.Submission) ([]models.Comment, error) {
	return f.comments[sub.ID], f.commentErrs[sub.ID]
}

func makeSub(id, title string, created time.Time) models.Submission {
	return models.Submission{
		ID:         id,
		Name:       "t3_" + id,
		Title:      title,
		IsSelf:     true,
		Author:     "u_" + id,
		CreatedUTC: float64(created.Unix()),
		Permalink:  "/r/testsub/comments/" + id + "/",
	}
}

func newTestCollector(src SubmissionSource, cutoff, now time.Time) *Collector {
	c := New(src, cutoff, 0)
	c.now = func() time.Time { return now }
	return c
}

func TestTimeWindows_ContiguousAndClamped(t *testing.T) {
	now := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)
	cutoff := now.AddDate(0, 0, -100)

	windows := timeWindows(cutoff, now)
	require.NotEmpty(t, windows)

	assert.Equal(t, cutoff, windows[0].start)
	for i := 1; i < len(windows); i++ {
		assert.Equal(t, windows[i-1].end, windows[i].start, "windows must be contiguous")
	}
	last := windows[len(windows)-1]
	assert.Equal(t, now, last.end, "last window must be clamped to now")

	for _, w := range windows[:len(windows)-1] {
		assert.Equal(t, WINDOW_SIZE, w.end.Sub(w.start))
	}
}

func TestTimeWindows_EmptyWhenCutoffNotBeforeNow(t *testing.T) {
	now := time.Now()
	assert.Empty(t, timeWindows(now, now))
	assert.Empty(t, timeWindows(now.Add(time.Hour), now))
}

func TestCollectSortOrder_ChronologicalEarlyExit(t *testing.T) {
	now := time.Now()
	cutoff := now.AddDate(-1, 0, 0)

	src := newFakeSource()
	src.listPages[listKey(models.SortNew, models.TimeFilterNone)] = [][]models.Submission{
		{
			makeSub("fresh1", "delivery took forever", now.Add(-time.Hour)),
			makeSub("stale1", "ancient complaint here", cutoff.AddDate(0, -1, 0)),
		},
		{
			makeSub("fresh2", "never fetched either way", now.Add(-2*time.Hour)),
		},
	}

	c := newTestCollector(src, cutoff, now)
	records := c.collectSortOrder(context.Background(), sortPlans[0])

	ids := recordIDs(records)
	assert.Equal(t, []string{"fresh1"}, ids, "collection must stop at the first pre-cutoff post")
	assert.Equal(t, 1, src.listFetches[listKey(models.SortNew, models.TimeFilterNone)],
		"the second page must never be fetched")
}

func TestCollectSortOrder_NonChronologicalSkipsAndContinues(t *testing.T) {
	now := time.Now()
	cutoff := now.AddDate(-1, 0, 0)

	src := newFakeSource()
	src.listPages[listKey(models.SortTop, models.TimeFilterAll)] = [][]models.Submission{
		{
			makeSub("old_top", "a classic from years back", cutoff.AddDate(-1, 0, 0)),
			makeSub("recent_top", "app charged me twice", now.Add(-time.Hour)),
		},
	}

	plan := sortPlan{order: models.SortTop, timeFilters: []models.TimeFilter{models.TimeFilterAll}}
	c := newTestCollector(src, cutoff, now)
	records := c.collectSortOrder(context.Background(), plan)

	assert.Equal(t, []string{"recent_top"}, recordIDs(records),
		"old posts are skipped but the page keeps being scanned")
}

func TestCollectTimeWindows_VerifiesWindowMembership(t *testing.T) {
	now := time.Date(2026, 8, 23, 0, 0, 0, 0, time.UTC)
	cutoff := now.AddDate(0, 0, -30)

	windows := timeWindows(cutoff, now)
	require.Len(t, windows, 1)
	w := windows[0]

	src := newFakeSource()
	query := "timestamp:" + strconv.FormatInt(w.start.Unix(), 10) + ".." + strconv.FormatInt(w.end.Unix(), 10)
	src.searchPages[query] = [][]models.Submission{
		{
			makeSub("inside", "order arrived cold again", w.start.Add(24*time.Hour)),
			makeSub("outside", "straggler from before the window", w.start.Add(-24*time.Hour)),
		},
	}

	c := newTestCollector(src, cutoff, now)
	records := c.collectTimeWindows(context.Background())

	require.Len(t, records, 1)
	assert.Equal(t, "inside", records[0].ID)
	assert.Equal(t, "monthly_"+w.start.Format("2006-01-02"), records[0].CollectionTag)
}

func TestCollectSearch_SkipsPostsOlderThanCutoff(t *testing.T) {
	now := time.Now()
	cutoff := now.AddDate(-1, 0, 0)

	src := newFakeSource()
	src.searchPages["refund"] = [][]models.Submission{
		{
			makeSub("r1", "still waiting on my refund", now.Add(-48*time.Hour)),
			makeSub("r2", "refund saga from two years ago", cutoff.AddDate(-1, 0, 0)),
		},
	}

	c := newTestCollector(src, cutoff, now)
	records := c.collectSearch(context.Background(), "refund", "search_refund")

	require.Len(t, records, 1)
	assert.Equal(t, "r1", records[0].ID)
	assert.Equal(t, "search_refund", records[0].CollectionTag)
}

func TestProcessSubmission_DuplicateIsNoOp(t *testing.T) {
	now := time.Now()
	src := newFakeSource()
	c := newTestCollector(src, now.AddDate(-1, 0, 0), now)

	sub := makeSub("dup1", "driver ate my fries", now.Add(-time.Hour))

	first := c.processSubmission(context.Background(), &sub, "new")
	require.Len(t, first, 1)

	second := c.processSubmission(context.Background(), &sub, "search_fries")
	assert.Empty(t, second, "a submission already claimed by an earlier strategy yields nothing")
	assert.Equal(t, 1, c.seen.Len())
}

func TestHarvestReplies_FlattensTreeAndDedupes(t *testing.T) {
	now := time.Now()
	src := newFakeSource()
	c := newTestCollector(src, now.AddDate(-1, 0, 0), now)

	sub := makeSub("p1", "late order driver never showed", now.Add(-time.Hour))
	src.comments["p1"] = []models.Comment{
		{ID: "c1", Body: "same thing happened to me", Author: "a", CreatedUTC: float64(now.Unix())},
		{ID: "c2", Body: "ok", Author: "b", CreatedUTC: float64(now.Unix())},
		{ID: "c1", Body: "same thing happened to me", Author: "a", CreatedUTC: float64(now.Unix())},
		{ID: "c3", Body: "[deleted]", Author: "c", CreatedUTC: float64(now.Unix())},
	}

	records := c.harvestReplies(context.Background(), &sub)

	require.Len(t, records, 1)
	assert.Equal(t, "c1", records[0].ID)
	assert.Equal(t, "comment_in_p1", records[0].CollectionTag)
	assert.Equal(t, "p1", records[0].ParentID)
	assert.Equal(t, "late order driver never showed", records[0].ParentTitle)
}

func TestHarvestReplies_KeepsPartialTreeOnError(t *testing.T) {
	now := time.Now()
	src := newFakeSource()
	c := newTestCollector(src, now.AddDate(-1, 0, 0), now)

	sub := makeSub("p1", "late order driver never showed", now.Add(-time.Hour))
	src.comments["p1"] = []models.Comment{
		{ID: "c1", Body: "happened to me too honestly", Author: "a", CreatedUTC: float64(now.Unix())},
		{ID: "c2", Body: "support was useless about it", Author: "b", CreatedUTC: float64(now.Unix())},
	}
	src.commentErrs["p1"] = errors.New("morechildren expansion failed")

	records := c.harvestReplies(context.Background(), &sub)
	assert.Len(t, records, 2, "materialized comments survive a partial expansion failure")
}

func TestCollector_PauseReportsContextExpiry(t *testing.T) {
	c := New(newFakeSource(), time.Now().AddDate(-1, 0, 0), 0)

	ctx, cancel := context.WithCancel(context.Background())
	assert.True(t, c.pause(ctx))
	cancel()
	assert.False(t, c.pause(ctx))
}

func recordIDs(records []models.RawRecord) []string {
	ids := make([]string, 0, len(records))
	for _, rec := range records {
		ids = append(ids, rec.ID)
	}
	return ids
}
