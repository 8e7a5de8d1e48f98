package clients

import "time"

const (
	MAX_RETRIES     = 5
	INITIAL_BACKOFF = 1 * time.Second
	MAX_BACKOFF     = 32 * time.Second
	USER_AGENT      = "reviewflow-client/1.0 (+https://github.com/spacesedan/reviewflow)"

	// Reddit allows ~60 requests/minute for client-credential apps;
	// throttle below that.
	REDDIT_REQS_PER_SEC = 0.9

	PAGE_LIMIT = 100
)
