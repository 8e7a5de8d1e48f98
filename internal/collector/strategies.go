package collector

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spacesedan/reviewflow/internal/models"
)

// SubmissionSource is the paged listing/search capability the strategies
// enumerate. clients.SubredditClient is the production implementation.
type SubmissionSource interface {
	ListPage(ctx context.Context, order models.SortOrder, tf models.TimeFilter, after string) ([]models.Submission, string, error)
	SearchPage(ctx context.Context, query string, sort models.SortOrder, tf models.TimeFilter, after string) ([]models.Submission, string, error)
	CommentTree(ctx context.Context, sub *models.Submission) ([]models.Comment, error)
}

const (
	DEFAULT_ITEM_DELAY = 50 * time.Millisecond
	WINDOW_SIZE        = 30 * 24 * time.Hour
)

// sortPlan maps one listing order to its applicable time filters and tells
// whether the listing is chronological, which is what makes the
// older-than-cutoff early exit safe.
type sortPlan struct {
	order         models.SortOrder
	chronological bool
	timeFilters   []models.TimeFilter
}

var sortPlans = []sortPlan{
	{order: models.SortNew, chronological: true, timeFilters: []models.TimeFilter{models.TimeFilterNone}},
	{order: models.SortHot, timeFilters: []models.TimeFilter{models.TimeFilterNone}},
	{order: models.SortTop, timeFilters: []models.TimeFilter{models.TimeFilterAll, models.TimeFilterYear, models.TimeFilterMonth, models.TimeFilterWeek}},
	{order: models.SortControversial, timeFilters: []models.TimeFilter{models.TimeFilterAll, models.TimeFilterYear, models.TimeFilterMonth, models.TimeFilterWeek}},
}

// Collector runs all collection strategies for one subreddit against one
// shared seen-index. It is built per target and discarded with the run.
type Collector struct {
	source    SubmissionSource
	seen      *SeenIndex
	cutoff    time.Time
	itemDelay time.Duration
	now       func() time.Time
}

func New(source SubmissionSource, cutoff time.Time, itemDelay time.Duration) *Collector {
	return &Collector{
		source:    source,
		seen:      NewSeenIndex(),
		cutoff:    cutoff,
		itemDelay: itemDelay,
		now:       time.Now,
	}
}

type window struct {
	start time.Time
	end   time.Time
}

// timeWindows slices [cutoff, now) into contiguous 30-day windows; the last
// window is clamped to now.
func timeWindows(cutoff, now time.Time) []window {
	var windows []window
	for start := cutoff; start.Before(now); {
		end := start.Add(WINDOW_SIZE)
		if end.After(now) {
			end = now
		}
		windows = append(windows, window{start: start, end: end})
		start = end
	}
	return windows
}

// collectTimeWindows searches one 30-day timestamp window at a time so deep
// history survives the listing depth cap.
func (c *Collector) collectTimeWindows(ctx context.Context) []models.RawRecord {
	var data []models.RawRecord

	for _, w := range timeWindows(c.cutoff, c.now()) {
		if ctx.Err() != nil {
			return data
		}

		tag := fmt.Sprintf("monthly_%s", w.start.Format("2006-01-02"))
		query := fmt.Sprintf("timestamp:%d..%d", w.start.Unix(), w.end.Unix())
		slog.Info("[Collector] Collecting time window",
			slog.Time("start", w.start), slog.Time("end", w.end))

		after := ""
		for {
			subs, next, err := c.source.SearchPage(ctx, query, models.SortNew, models.TimeFilterNone, after)
			if err != nil {
				slog.Error("[Collector] Error collecting posts for time window",
					slog.Time("window_start", w.start),
					slog.String("error", err.Error()))
				break
			}

			for i := range subs {
				sub := &subs[i]
				// Verify the post really falls inside the window.
				created := sub.CreatedAt()
				if created.Before(w.start) || created.After(w.end) {
					continue
				}
				data = append(data, c.processSubmission(ctx, sub, tag)...)
				if !c.pause(ctx) {
					return data
				}
			}

			if next == "" {
				break
			}
			after = next
		}
	}

	slog.Info("[Collector] Finished monthly pagination collection", slog.Int("total", len(data)))
	return data
}

// collectSortOrder walks one listing order across its time filters.
func (c *Collector) collectSortOrder(ctx context.Context, plan sortPlan) []models.RawRecord {
	var data []models.RawRecord
	slog.Info("[Collector] Collecting posts from sorting", slog.String("order", string(plan.order)))

	for _, tf := range plan.timeFilters {
		tag := string(plan.order)
		if tf != models.TimeFilterNone {
			tag = fmt.Sprintf("%s_%s", plan.order, tf)
		}

		after := ""
	pages:
		for {
			subs, next, err := c.source.ListPage(ctx, plan.order, tf, after)
			if err != nil {
				slog.Error("[Collector] Error collecting posts from sorting",
					slog.String("order", string(plan.order)),
					slog.String("error", err.Error()))
				break
			}

			for i := range subs {
				sub := &subs[i]
				if sub.CreatedAt().Before(c.cutoff) {
					if plan.chronological {
						// Chronological listings cannot yield anything
						// newer past this point.
						slog.Info("[Collector] Reached posts older than cutoff",
							slog.String("order", string(plan.order)))
						break pages
					}
					continue
				}
				data = append(data, c.processSubmission(ctx, sub, tag)...)
				if !c.pause(ctx) {
					return data
				}
			}

			if next == "" {
				break
			}
			after = next
		}
	}

	slog.Info("[Collector] Finished collecting from sorting",
		slog.String("order", string(plan.order)), slog.Int("total", len(data)))
	return data
}

// collectKeywordSearches runs every vocabulary term as an independent
// year-scoped search.
func (c *Collector) collectKeywordSearches(ctx context.Context) []models.RawRecord {
	var data []models.RawRecord

	for _, term := range searchTerms {
		if ctx.Err() != nil {
			return data
		}
		slog.Info("[Collector] Searching for term", slog.String("term", term))
		data = append(data, c.collectSearch(ctx, term, "search_"+term)...)
	}

	slog.Info("[Collector] Finished collecting from keyword searches", slog.Int("total", len(data)))
	return data
}

// collectFlairSearches runs one search per known flair label.
func (c *Collector) collectFlairSearches(ctx context.Context) []models.RawRecord {
	var data []models.RawRecord

	for _, flair := range flairs {
		if ctx.Err() != nil {
			return data
		}
		slog.Info("[Collector] Searching for posts with flair", slog.String("flair", flair))
		data = append(data, c.collectSearch(ctx, "flair:"+flair, "flair_"+flair)...)
	}

	slog.Info("[Collector] Finished collecting by flair", slog.Int("total", len(data)))
	return data
}

func (c *Collector) collectSearch(ctx context.Context, query, tag string) []models.RawRecord {
	var data []models.RawRecord

	after := ""
	for {
		subs, next, err := c.source.SearchPage(ctx, query, models.SortNew, models.TimeFilterYear, after)
		if err != nil {
			slog.Error("[Collector] Error searching",
				slog.String("query", query), slog.String("error", err.Error()))
			return data
		}

		for i := range subs {
			sub := &subs[i]
			if sub.CreatedAt().Before(c.cutoff) {
				continue
			}
			data = append(data, c.processSubmission(ctx, sub, tag)...)
			if !c.pause(ctx) {
				return data
			}
		}

		if next == "" {
			return data
		}
		after = next
	}
}

// processSubmission turns one accepted candidate into its post record plus
// the flattened records of its reply tree.
func (c *Collector) processSubmission(ctx context.Context, sub *models.Submission, tag string) []models.RawRecord {
	if c.seen.Contains(sub.ID) {
		return nil
	}

	rec := ExtractSubmission(sub, tag)
	if rec == nil {
		return nil
	}
	if !c.seen.Add(sub.ID) {
		return nil
	}

	out := []models.RawRecord{*rec}
	out = append(out, c.harvestReplies(ctx, sub)...)
	return out
}

// pause sleeps the inter-item delay; it reports false once the run context
// is done.
func (c *Collector) pause(ctx context.Context) bool {
	if c.itemDelay <= 0 {
		return ctx.Err() == nil
	}
	select {
	case <-ctx.Done():
		return false
	case <-time.After(c.itemDelay):
		return true
	}
}
