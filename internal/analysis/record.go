package analysis

import "time"

// Canonical outcome codes attached to every call record at ingestion.
const (
	OutcomeBusy          = "busy"
	OutcomeNoAnswer      = "no_answer"
	OutcomeFailed        = "failed"
	OutcomeUnknown       = "unknown"
	OutcomeFollowUp      = "follow-up"
	OutcomeAgentAssigned = "agent_assigned"
	OutcomeConverted     = "converted"
	OutcomeLost          = "lost"
	OutcomeOther         = "other"
)

// CallRecord is one call attempt from a campaign export. The ingestion layer
// fills every field; absent columns arrive as zero values.
type CallRecord struct {
	Date         time.Time `json:"date"`
	MobileNumber string    `json:"mobile_number"`
	Name         string    `json:"name"`
	Outcome      string    `json:"outcome"`
	OutcomeNorm  string    `json:"outcome_norm"`
	Notes        string    `json:"notes"`
	Duration     float64   `json:"duration"`
	Bot          string    `json:"bot"`
}

// HasDate reports whether the record carries a parsed timestamp.
func (r CallRecord) HasDate() bool { return !r.Date.IsZero() }

// Contacted reports whether the call reached a live decision point.
func (r CallRecord) Contacted() bool { return !IsUncontacted(r.OutcomeNorm) }

// Converted reports whether the call ended in a conversion.
func (r CallRecord) Converted() bool { return r.OutcomeNorm == OutcomeConverted }

// IsUncontacted reports membership in {busy, no_answer, failed, unknown}.
func IsUncontacted(code string) bool {
	switch code {
	case OutcomeBusy, OutcomeNoAnswer, OutcomeFailed, OutcomeUnknown:
		return true
	}
	return false
}
