package models

import "time"

const (
	DataSourceAppStore   = "App Store"
	DataSourceGooglePlay = "Google Play"
	DataSourceReddit     = "Reddit"
)

// NormalizedReview is the cross-source schema every processed dataset is
// written in. Review and ReviewDatetime are always set; the pointer fields
// are null for sources that do not report them.
type NormalizedReview struct {
	Review         string
	ReviewDatetime time.Time
	DataSource     string
	AppName        string
	UpvoteCount    *int
	TotalComments  *int
	AppRating      *int
}
