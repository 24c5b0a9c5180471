package analysis

import "strings"

var outcomeSynonyms = map[string]string{
	"busy":                 OutcomeBusy,
	"no_answer":            OutcomeNoAnswer,
	"no answer":            OutcomeNoAnswer,
	"failed":               OutcomeFailed,
	"unknown":              OutcomeUnknown,
	"follow-up":            OutcomeFollowUp,
	"follow up":            OutcomeFollowUp,
	"assign to live agent": OutcomeAgentAssigned,
	"assigned to agent":    OutcomeAgentAssigned,
	"agent_assigned":       OutcomeAgentAssigned,
	"agent assigned":       OutcomeAgentAssigned,
	"converted":            OutcomeConverted,
	"lost":                 OutcomeLost,
}

// NormalizeOutcome maps a raw outcome label to its canonical code. Labels
// outside the synonym table pass through trimmed and lower-cased; a blank
// label is treated as missing and yields "other".
func NormalizeOutcome(raw string) string {
	v := strings.ToLower(strings.TrimSpace(raw))
	if v == "" {
		return OutcomeOther
	}
	if code, ok := outcomeSynonyms[v]; ok {
		return code
	}
	return v
}

// NormalizeOutcomeValue is NormalizeOutcome for untyped cell values.
// Anything that is not a string normalizes to "other".
func NormalizeOutcomeValue(v any) string {
	s, ok := v.(string)
	if !ok {
		return OutcomeOther
	}
	return NormalizeOutcome(s)
}
