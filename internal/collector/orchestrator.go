package collector

import (
	"context"
	"log/slog"
	"sort"

	"github.com/spacesedan/reviewflow/internal/models"
)

// Result is one run's merged, deduplicated, newest-first record set.
// Partial is set when the run context expired before every strategy
// finished; the records gathered up to that point are still valid.
type Result struct {
	Records []models.RawRecord
	Partial bool
}

// Run executes every strategy in a fixed sequence and merges their output.
// The order is load-bearing: later strategies hit a seen-index already
// populated by earlier ones, which keeps redundant reply harvesting down.
func (c *Collector) Run(ctx context.Context) *Result {
	type pass struct {
		name string
		run  func(context.Context) []models.RawRecord
	}

	passes := []pass{
		{"monthly_pagination", c.collectTimeWindows},
	}
	for _, plan := range sortPlans {
		plan := plan
		passes = append(passes, pass{string(plan.order), func(ctx context.Context) []models.RawRecord {
			return c.collectSortOrder(ctx, plan)
		}})
	}
	passes = append(passes,
		pass{"keyword_search", c.collectKeywordSearches},
		pass{"flair_search", c.collectFlairSearches},
	)

	var all []models.RawRecord
	for _, p := range passes {
		records := p.run(ctx)
		logStrategyCounts(p.name, records)
		all = append(all, records...)

		if ctx.Err() != nil {
			slog.Warn("[Collector] Run deadline reached, keeping partial results",
				slog.String("last_strategy", p.name))
			return finalize(all, true)
		}
	}

	return finalize(all, false)
}

// finalize re-checks uniqueness across the concatenated strategy outputs
// and orders the snapshot newest-first. The in-strategy dedup already
// guarantees uniqueness; this is a cheap final guard before persistence.
func finalize(all []models.RawRecord, partial bool) *Result {
	seen := make(map[string]struct{}, len(all))
	merged := all[:0]
	for _, rec := range all {
		if _, ok := seen[rec.ID]; ok {
			continue
		}
		seen[rec.ID] = struct{}{}
		merged = append(merged, rec)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].CreatedAt.After(merged[j].CreatedAt)
	})

	return &Result{Records: merged, Partial: partial}
}

func logStrategyCounts(name string, records []models.RawRecord) {
	posts, comments := 0, 0
	for _, rec := range records {
		if rec.Kind == models.RecordKindPost {
			posts++
		} else {
			comments++
		}
	}
	slog.Info("[Collector] Strategy finished",
		slog.String("strategy", name),
		slog.Int("items", len(records)),
		slog.Int("posts", posts),
		slog.Int("comments", comments))
}
