// Package time converts archive epoch timestamps to the civil form stored in the database
package time

import (
	"math"
	"time"
)

// CivilLayout is the UTC "YYYY-MM-DD HH:MM:SS" text written to TIMESTAMP columns
const CivilLayout = "2006-01-02 15:04:05"

// Civil formats t in UTC using CivilLayout
func Civil(t time.Time) string { return t.UTC().Format(CivilLayout) }

// EpochCivil converts seconds since the Unix epoch to civil UTC text.
// Fractional seconds are truncated; NaN, Inf and values outside the int64
// range report ok=false
func EpochCivil(sec float64) (string, bool) {
	if math.IsNaN(sec) || math.Abs(sec) >= 1<<63 {
		return "", false
	}
	return Civil(time.Unix(int64(math.Trunc(sec)), 0)), true
}
