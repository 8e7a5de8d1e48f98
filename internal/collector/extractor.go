package collector

import (
	"strings"

	"github.com/spacesedan/reviewflow/internal/models"
)

// MIN_BODY_LENGTH is the shortest trimmed text worth keeping.
const MIN_BODY_LENGTH = 5

const redditBaseURL = "https://www.reddit.com"

// ExtractSubmission converts a submission into a post record, or nil when
// the combined title + selftext carries no usable content.
func ExtractSubmission(sub *models.Submission, tag string) *models.RawRecord {
	selftext := ""
	if sub.IsSelf {
		selftext = sub.Selftext
	}

	body := strings.TrimSpace(sub.Title + " " + selftext)
	if len(body) < MIN_BODY_LENGTH {
		return nil
	}

	ratio := sub.UpvoteRatio

	return &models.RawRecord{
		ID:            sub.ID,
		Kind:          models.RecordKindPost,
		Body:          body,
		Author:        authorOrDeleted(sub.Author),
		CreatedAt:     sub.CreatedAt(),
		Score:         sub.Score,
		CollectionTag: tag,
		UpvoteRatio:   &ratio,
		ReplyCount:    sub.NumComments,
		URL:           sub.URL,
		Permalink:     redditBaseURL + sub.Permalink,
		IsSelfPost:    sub.IsSelf,
		Flair:         sub.LinkFlairText,
		Title:         sub.Title,
	}
}

// ExtractComment converts a comment into a comment record, or nil when the
// body is too short or is a deleted/removed placeholder.
func ExtractComment(c *models.Comment, parent *models.Submission, tag string) *models.RawRecord {
	if c.Body == "[deleted]" || c.Body == "[removed]" {
		return nil
	}
	if len(strings.TrimSpace(c.Body)) < MIN_BODY_LENGTH {
		return nil
	}

	return &models.RawRecord{
		ID:            c.ID,
		Kind:          models.RecordKindComment,
		Body:          c.Body,
		Author:        authorOrDeleted(c.Author),
		CreatedAt:     c.CreatedAt(),
		Score:         c.Score,
		CollectionTag: tag,
		Permalink:     redditBaseURL + c.Permalink,
		ParentID:      parent.ID,
		ParentTitle:   parent.Title,
	}
}

// The API reports authors as plain nullable strings, so a missing author is
// an empty string, never an error.
func authorOrDeleted(author string) string {
	if author == "" {
		return models.DeletedAuthor
	}
	return author
}
