package storage

import (
	"time"

	"github.com/spacesedan/reviewflow/internal/models"
)

// Dataset is the tabular shape every snapshot funnels into before it is
// written out. Cells may be nil; writers render nil as an empty value.
type Dataset struct {
	Columns []string
	Rows    [][]any
}

// FinalColumns is the fixed column order of every processed dataset, shared
// across the three sources so combining them is a plain concatenation.
var FinalColumns = []string{
	"review", "review_datetime", "data_source", "app_name",
	"upvote_count", "total_comments", "app_rating",
}

// ReviewDataset lays normalized reviews out over the final column set.
func ReviewDataset(reviews []models.NormalizedReview) *Dataset {
	ds := &Dataset{Columns: FinalColumns, Rows: make([][]any, 0, len(reviews))}
	for _, r := range reviews {
		ds.Rows = append(ds.Rows, []any{
			r.Review,
			r.ReviewDatetime,
			r.DataSource,
			r.AppName,
			intCell(r.UpvoteCount),
			intCell(r.TotalComments),
			intCell(r.AppRating),
		})
	}
	return ds
}

func intCell(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

// TimestampFormat is how datetimes are rendered in CSV, XLSX and SQLite.
const TimestampFormat = "2006-01-02 15:04:05"

// FormatCell renders one cell for a text-oriented sink.
func FormatCell(v any) any {
	if t, ok := v.(time.Time); ok {
		return t.UTC().Format(TimestampFormat)
	}
	return v
}
