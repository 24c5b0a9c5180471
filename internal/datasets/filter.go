package datasets

import (
	"time"

	"github.com/vinodismyname/leadlens/internal/analysis"
)

// Filter keeps records whose calendar day lies within [from, to]. A zero
// bound is open. With any bound set, undated records are dropped; with none
// set the input slice is returned unchanged.
func Filter(records []analysis.CallRecord, from, to time.Time) []analysis.CallRecord {
	if from.IsZero() && to.IsZero() {
		return records
	}
	lo := dayOf(from)
	hi := dayOf(to)
	out := make([]analysis.CallRecord, 0, len(records))
	for _, r := range records {
		if !r.HasDate() {
			continue
		}
		d := dayOf(r.Date)
		if !from.IsZero() && d.Before(lo) {
			continue
		}
		if !to.IsZero() && d.After(hi) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func dayOf(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
