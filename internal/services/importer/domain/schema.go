package domain

import "redditimport/internal/adapters/ingest/pushshift"

// Column is one destination column
type Column struct {
	Name string
	Type string
}

// Schema is the declared column set of a kind, in insert order.
// The surrogate primary key is not part of it
type Schema struct {
	Kind    Kind
	Columns []Column
}

// SubmissionSchema is the column set of sub_YYYY_MM tables
var SubmissionSchema = Schema{Kind: pushshift.Submissions, Columns: []Column{
	{"message_id", "VARCHAR(20)"},
	{"user_id", "VARCHAR(255)"},
	{"message", "TEXT"},
	{"created_utc", "TIMESTAMP"},
	{"subreddit", "VARCHAR(255)"},
	{"subreddit_id", "VARCHAR(20)"},
	{"author_created_utc", "BIGINT"},
	{"score", "INTEGER"},
	{"permalink", "TEXT"},
	{"author_flair_text", "TEXT"},
	{"total_awards_received", "INTEGER"},
	{"num_comments", "INTEGER"},
	{"title", "TEXT"},
}}

// CommentSchema is the column set of com_YYYY_MM tables
var CommentSchema = Schema{Kind: pushshift.Comments, Columns: []Column{
	{"message_id", "VARCHAR(20)"},
	{"user_id", "VARCHAR(255)"},
	{"message", "TEXT"},
	{"created_utc", "TIMESTAMP"},
	{"subreddit", "VARCHAR(255)"},
	{"subreddit_id", "VARCHAR(20)"},
	{"author_created_utc", "BIGINT"},
	{"controversiality", "SMALLINT"},
	{"link_id", "VARCHAR(20)"},
	{"parent_id", "VARCHAR(20)"},
	{"is_submitter", "BOOLEAN"},
	{"score", "INTEGER"},
	{"permalink", "TEXT"},
}}

// SchemaFor returns the schema of k
func SchemaFor(k Kind) Schema {
	if k == pushshift.Comments {
		return CommentSchema
	}
	return SubmissionSchema
}

// Names returns the column names in order
func (s Schema) Names() []string {
	out := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		out[i] = c.Name
	}
	return out
}

// IndexedColumns are the secondary indexes every table carries
var IndexedColumns = []string{"message_id", "subreddit"}
