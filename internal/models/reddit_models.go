package models

import (
	"encoding/json"
	"time"
)

// SortOrder is a subreddit listing order.
type SortOrder string

const (
	SortNew           SortOrder = "new"
	SortHot           SortOrder = "hot"
	SortTop           SortOrder = "top"
	SortControversial SortOrder = "controversial"
)

// TimeFilter restricts a listing or search to a trailing window.
// TimeFilterNone means the endpoint does not take a t parameter.
type TimeFilter string

const (
	TimeFilterNone  TimeFilter = ""
	TimeFilterAll   TimeFilter = "all"
	TimeFilterYear  TimeFilter = "year"
	TimeFilterMonth TimeFilter = "month"
	TimeFilterWeek  TimeFilter = "week"
)

type RedditAPIResponse struct {
	Kind string        `json:"kind"`
	Data RedditAPIData `json:"data"`
}

type RedditAPIData struct {
	After    string        `json:"after"`
	Children []RedditThing `json:"children"`
}

// RedditThing is one polymorphic listing child. Kind is "t3" for
// submissions, "t1" for comments and "more" for collapsed comment stubs.
type RedditThing struct {
	Kind string          `json:"kind"`
	Data json.RawMessage `json:"data"`
}

const (
	ThingKindComment    = "t1"
	ThingKindSubmission = "t3"
	ThingKindMore       = "more"
)

type Submission struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Title         string  `json:"title"`
	Selftext      string  `json:"selftext"`
	IsSelf        bool    `json:"is_self"`
	Author        string  `json:"author"`
	CreatedUTC    float64 `json:"created_utc"`
	Score         int     `json:"score"`
	UpvoteRatio   float64 `json:"upvote_ratio"`
	NumComments   int     `json:"num_comments"`
	URL           string  `json:"url"`
	Permalink     string  `json:"permalink"`
	LinkFlairText string  `json:"link_flair_text"`
	Stickied      bool    `json:"stickied"`
}

func (s *Submission) CreatedAt() time.Time {
	return time.Unix(int64(s.CreatedUTC), 0).UTC()
}

type Comment struct {
	ID         string  `json:"id"`
	Body       string  `json:"body"`
	Author     string  `json:"author"`
	CreatedUTC float64 `json:"created_utc"`
	Score      int     `json:"score"`
	Permalink  string  `json:"permalink"`
	// Replies is either a nested listing or the empty string; it is
	// decoded lazily while walking the tree.
	Replies json.RawMessage `json:"replies"`
}

func (c *Comment) CreatedAt() time.Time {
	return time.Unix(int64(c.CreatedUTC), 0).UTC()
}

// RedditMore is the payload of a "more" thing: the IDs of comments the
// listing collapsed.
type RedditMore struct {
	Count    int      `json:"count"`
	Children []string `json:"children"`
}
