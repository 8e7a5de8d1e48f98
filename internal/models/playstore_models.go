package models

import "time"

// PlayStoreReview is one review pulled from the Play Store batchexecute
// endpoint. ThumbsUpCount is 0 when the payload omits it.
type PlayStoreReview struct {
	ReviewID      string
	UserName      string
	Content       string
	Score         int
	ThumbsUpCount int
	AppVersion    string
	At            time.Time
}
