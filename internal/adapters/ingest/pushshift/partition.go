package pushshift

import (
	"fmt"
	"time"
)

// Partition is the (year, month) an archive covers
type Partition struct {
	Year  int
	Month int // 1..12
}

// String renders YYYY-MM
func (p Partition) String() string { return fmt.Sprintf("%04d-%02d", p.Year, p.Month) }

// Table names the monthly destination table, e.g. sub_2020_10
func (p Partition) Table(k Kind) string {
	return fmt.Sprintf("%s_%04d_%02d", k.TablePrefix(), p.Year, p.Month)
}

// ArchiveName is the Pushshift file name for the kind, e.g. RC_2020-10.zst
func (p Partition) ArchiveName(k Kind) string {
	return fmt.Sprintf("%s_%04d-%02d.zst", k.ArchivePrefix(), p.Year, p.Month)
}

// Next returns the following month
func (p Partition) Next() Partition {
	if p.Month == 12 {
		return Partition{Year: p.Year + 1, Month: 1}
	}
	return Partition{Year: p.Year, Month: p.Month + 1}
}

// Before reports whether p is strictly earlier than q
func (p Partition) Before(q Partition) bool {
	return p.Year < q.Year || (p.Year == q.Year && p.Month < q.Month)
}

// ParsePartition parses YYYY-MM
func ParsePartition(s string) (Partition, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil || len(s) != 7 {
		return Partition{}, fmt.Errorf("pushshift: invalid month %q, want YYYY-MM", s)
	}
	return Partition{Year: t.Year(), Month: int(t.Month())}, nil
}

// MonthRange lists every month from start to end inclusive; empty when end is before start
func MonthRange(start, end Partition) []Partition {
	var out []Partition
	for p := start; !end.Before(p); p = p.Next() {
		out = append(out, p)
	}
	return out
}
