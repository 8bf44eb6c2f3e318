package domain

import (
	"time"

	"redditimport/internal/adapters/ingest/pushshift"
	ptime "redditimport/internal/platform/time"
)

// SubmissionRow is a link or self post. nil fields are stored as NULL
type SubmissionRow struct {
	MessageID           *string
	UserID              *string
	Message             *string
	CreatedUTC          *string // civil UTC text, see ptime.CivilLayout
	Subreddit           *string
	SubredditID         *string
	AuthorCreatedUTC    *int64
	Score               *int64
	Permalink           *string
	AuthorFlairText     *string
	TotalAwardsReceived *int64
	NumComments         *int64
	Title               *string
}

// Kind implements Row
func (SubmissionRow) Kind() Kind { return pushshift.Submissions }

// Args implements Row
func (r SubmissionRow) Args() []any {
	return []any{
		str(r.MessageID), str(r.UserID), str(r.Message), civil(r.CreatedUTC),
		str(r.Subreddit), str(r.SubredditID), i64(r.AuthorCreatedUTC), i64(r.Score),
		str(r.Permalink), str(r.AuthorFlairText), i64(r.TotalAwardsReceived), i64(r.NumComments),
		str(r.Title),
	}
}

// Fields implements Row
func (r SubmissionRow) Fields() map[string]any {
	return fields(SubmissionSchema, []any{
		str(r.MessageID), str(r.UserID), str(r.Message), str(r.CreatedUTC),
		str(r.Subreddit), str(r.SubredditID), i64(r.AuthorCreatedUTC), i64(r.Score),
		str(r.Permalink), str(r.AuthorFlairText), i64(r.TotalAwardsReceived), i64(r.NumComments),
		str(r.Title),
	})
}

// CommentRow is a reply. nil fields are stored as NULL
type CommentRow struct {
	MessageID        *string
	UserID           *string
	Message          *string
	CreatedUTC       *string
	Subreddit        *string
	SubredditID      *string
	AuthorCreatedUTC *int64
	Controversiality *int64
	LinkID           *string
	ParentID         *string
	IsSubmitter      *bool
	Score            *int64
	Permalink        *string
}

// Kind implements Row
func (CommentRow) Kind() Kind { return pushshift.Comments }

// Args implements Row
func (r CommentRow) Args() []any {
	return []any{
		str(r.MessageID), str(r.UserID), str(r.Message), civil(r.CreatedUTC),
		str(r.Subreddit), str(r.SubredditID), i64(r.AuthorCreatedUTC), i64(r.Controversiality),
		str(r.LinkID), str(r.ParentID), boolean(r.IsSubmitter), i64(r.Score),
		str(r.Permalink),
	}
}

// Fields implements Row
func (r CommentRow) Fields() map[string]any {
	return fields(CommentSchema, []any{
		str(r.MessageID), str(r.UserID), str(r.Message), str(r.CreatedUTC),
		str(r.Subreddit), str(r.SubredditID), i64(r.AuthorCreatedUTC), i64(r.Controversiality),
		str(r.LinkID), str(r.ParentID), boolean(r.IsSubmitter), i64(r.Score),
		str(r.Permalink),
	})
}

// untyped nil so the driver sends NULL
func str(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func i64(p *int64) any {
	if p == nil {
		return nil
	}
	return *p
}

func boolean(p *bool) any {
	if p == nil {
		return nil
	}
	return *p
}

// civil hands the driver a time.Time so TIMESTAMP binds in binary; text that
// does not parse is passed through and left for the server to reject
func civil(p *string) any {
	if p == nil {
		return nil
	}
	t, err := time.Parse(ptime.CivilLayout, *p)
	if err != nil {
		return *p
	}
	return t
}

func fields(s Schema, vals []any) map[string]any {
	out := make(map[string]any, len(vals))
	for i, c := range s.Columns {
		out[c.Name] = vals[i]
	}
	return out
}
