package ingest

import (
	"redditimport/internal/adapters/ingest/pushshift"
	perr "redditimport/internal/platform/errors"
	"redditimport/internal/services/importer/domain"
)

// Parser maps Pushshift records onto the declared row shapes
type Parser struct{}

// NewParser returns a Parser
func NewParser() Parser { return Parser{} }

// Parse decodes one line. Malformed lines return an ErrorCodeMalformed error
func (Parser) Parse(k domain.Kind, line []byte) (domain.Row, error) {
	rec, err := NewRecord(line)
	if err != nil {
		return nil, err
	}
	switch k {
	case pushshift.Submissions:
		return Submission(rec), nil
	case pushshift.Comments:
		return Comment(rec), nil
	default:
		return nil, perr.InvalidArgf("parse: unknown kind %d", k)
	}
}

// Submission maps an RS_ record
func Submission(r Record) domain.SubmissionRow {
	return domain.SubmissionRow{
		MessageID:           r.Str("id"),
		UserID:              r.Str("author"),
		Message:             r.Str("selftext"),
		CreatedUTC:          r.Epoch("created_utc"),
		Subreddit:           r.Str("subreddit"),
		SubredditID:         r.Str("subreddit_id"),
		AuthorCreatedUTC:    r.Int("author_created_utc"),
		Score:               r.Int("score"),
		Permalink:           r.Str("permalink"),
		AuthorFlairText:     r.Str("author_flair_text"),
		TotalAwardsReceived: r.Int("total_awards_received"),
		NumComments:         r.Int("num_comments"),
		Title:               r.Str("title"),
	}
}

// Comment maps an RC_ record
func Comment(r Record) domain.CommentRow {
	return domain.CommentRow{
		MessageID:        r.Str("id"),
		UserID:           r.Str("author"),
		Message:          r.Str("body"),
		CreatedUTC:       r.Epoch("created_utc"),
		Subreddit:        r.Str("subreddit"),
		SubredditID:      r.Str("subreddit_id"),
		AuthorCreatedUTC: r.Int("author_created_utc"),
		Controversiality: r.Int("controversiality"),
		LinkID:           r.Str("link_id"),
		ParentID:         r.Str("parent_id"),
		IsSubmitter:      r.Bool("is_submitter"),
		Score:            r.Int("score"),
		Permalink:        r.Str("permalink"),
	}
}
