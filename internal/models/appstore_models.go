package models

import "time"

// AppStoreReview is one customer review from the iTunes RSS feed.
type AppStoreReview struct {
	ID       string
	UserName string
	Title    string
	Review   string
	Rating   int
	Version  string
	Date     time.Time
}

// The iTunes RSS JSON wraps every scalar in a {"label": ...} object.

type AppStoreFeedResponse struct {
	Feed AppStoreFeed `json:"feed"`
}

type AppStoreFeed struct {
	Entry []AppStoreFeedEntry `json:"entry"`
}

type AppStoreFeedEntry struct {
	ID      AppStoreLabel  `json:"id"`
	Author  AppStoreAuthor `json:"author"`
	Title   AppStoreLabel  `json:"title"`
	Content AppStoreLabel  `json:"content"`
	Rating  AppStoreLabel  `json:"im:rating"`
	Version AppStoreLabel  `json:"im:version"`
	Updated AppStoreLabel  `json:"updated"`
}

type AppStoreAuthor struct {
	Name AppStoreLabel `json:"name"`
}

type AppStoreLabel struct {
	Label string `json:"label"`
}
