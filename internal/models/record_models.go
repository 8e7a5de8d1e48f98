package models

import "time"

// RecordKind discriminates the two RawRecord variants.
type RecordKind string

const (
	RecordKindPost    RecordKind = "post"
	RecordKindComment RecordKind = "comment"
)

// DeletedAuthor is substituted whenever the source reports no author.
const DeletedAuthor = "[deleted]"

// RawRecord is one collected Reddit post or comment, normalized enough to
// survive the run but still carrying every source column the raw snapshot
// keeps. Created once per remote object, never mutated.
type RawRecord struct {
	ID            string
	Kind          RecordKind
	Body          string
	Author        string
	CreatedAt     time.Time
	Score         int
	CollectionTag string

	// post-only
	UpvoteRatio   *float64
	ReplyCount    int
	URL           string
	Permalink     string
	IsSelfPost    bool
	Flair         string
	Title         string

	// comment-only
	ParentID    string
	ParentTitle string
}
