package pushshift

import (
	"regexp"
	"strconv"
)

// Kind is the content kind of an archive
type Kind uint8

const (
	// Submissions are link and self posts (RS_ archives, sub_ tables)
	Submissions Kind = iota + 1
	// Comments are replies (RC_ archives, com_ tables)
	Comments
)

// String returns "submissions" or "comments"
func (k Kind) String() string {
	switch k {
	case Submissions:
		return "submissions"
	case Comments:
		return "comments"
	default:
		return "unknown"
	}
}

// TablePrefix returns the destination table prefix for the kind
func (k Kind) TablePrefix() string {
	if k == Comments {
		return "com"
	}
	return "sub"
}

// ArchivePrefix returns the Pushshift file prefix for the kind
func (k Kind) ArchivePrefix() string {
	if k == Comments {
		return "RC"
	}
	return "RS"
}

// Format is how a recognized file is loaded
type Format uint8

const (
	// Unrecognized files are skipped silently
	Unrecognized Format = iota
	// SQLDump is a plain .sql file piped to the database client
	SQLDump
	// SQLDumpGz is a gzip-compressed .sql.gz file, decompressed then piped
	SQLDumpGz
	// JSON is a zstd-compressed newline-delimited Pushshift archive
	JSON
)

// String names the format for logs and the ledger
func (f Format) String() string {
	switch f {
	case SQLDump:
		return "sql"
	case SQLDumpGz:
		return "sql.gz"
	case JSON:
		return "json"
	default:
		return "unrecognized"
	}
}

// Classified is the outcome of classifying a recognized file name
type Classified struct {
	Format    Format
	Kind      Kind
	Partition Partition
}

// Table is the destination table for the file
func (c Classified) Table() string { return c.Partition.Table(c.Kind) }

var (
	reSQL   = regexp.MustCompile(`^(sub|com)_(\d{4})_(\d{2})\.sql$`)
	reSQLGz = regexp.MustCompile(`^(sub|com)_(\d{4})_(\d{2})\.sql\.gz$`)
	reJSON  = regexp.MustCompile(`^(RS|RC)_(\d{4})-(\d{2})\.zst$`)
)

// Classify maps a base file name to its format, kind and partition.
// ok is false for anything that is not exactly one of the recognized patterns
func Classify(name string) (Classified, bool) {
	for _, p := range []struct {
		re     *regexp.Regexp
		format Format
	}{
		{reSQL, SQLDump},
		{reSQLGz, SQLDumpGz},
		{reJSON, JSON},
	} {
		m := p.re.FindStringSubmatch(name)
		if m == nil {
			continue
		}
		part, ok := partitionOf(m[2], m[3])
		if !ok {
			return Classified{}, false
		}
		return Classified{Format: p.format, Kind: kindOf(m[1]), Partition: part}, true
	}
	return Classified{}, false
}

func kindOf(prefix string) Kind {
	switch prefix {
	case "com", "RC":
		return Comments
	default:
		return Submissions
	}
}

// partitionOf trusts the regex for digit widths and checks the month range
func partitionOf(year, month string) (Partition, bool) {
	y, err := strconv.Atoi(year)
	if err != nil {
		return Partition{}, false
	}
	m, err := strconv.Atoi(month)
	if err != nil || m < 1 || m > 12 {
		return Partition{}, false
	}
	return Partition{Year: y, Month: m}, true
}
