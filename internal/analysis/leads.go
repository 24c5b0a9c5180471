package analysis

// StatusUncontacted is the lead status for leads that never reached a live
// decision point.
const StatusUncontacted = "uncontacted"

// Status orders double as row tie-breaks in the lead funnels.
var (
	initialStatusOrder = []string{OutcomeConverted, OutcomeLost, OutcomeAgentAssigned, OutcomeFollowUp, StatusUncontacted, OutcomeOther}
	finalStatusOrder   = []string{OutcomeConverted, OutcomeLost, OutcomeAgentAssigned, OutcomeFollowUp, OutcomeBusy, OutcomeNoAnswer, StatusUncontacted}
)

// OutcomeSet is the distinct set of canonical outcomes seen for one lead.
type OutcomeSet map[string]struct{}

// Has reports whether code was observed.
func (s OutcomeSet) Has(code string) bool {
	_, ok := s[code]
	return ok
}

// Lead is every call record sharing one mobile number.
type Lead struct {
	MobileNumber string
	// Records indexes into the slice passed to GroupLeads.
	Records  []int
	Outcomes OutcomeSet
}

// GroupLeads groups records by mobile number in first-seen order.
func GroupLeads(records []CallRecord) []Lead {
	idx := make(map[string]int)
	var leads []Lead
	for i, r := range records {
		pos, ok := idx[r.MobileNumber]
		if !ok {
			pos = len(leads)
			idx[r.MobileNumber] = pos
			leads = append(leads, Lead{MobileNumber: r.MobileNumber, Outcomes: OutcomeSet{}})
		}
		l := &leads[pos]
		l.Records = append(l.Records, i)
		l.Outcomes[r.OutcomeNorm] = struct{}{}
	}
	return leads
}

// InitialStatus reduces a lead's outcomes with the initial priority rule.
func InitialStatus(outs OutcomeSet) string {
	for _, code := range []string{OutcomeConverted, OutcomeLost, OutcomeAgentAssigned, OutcomeFollowUp} {
		if outs.Has(code) {
			return code
		}
	}
	for code := range outs {
		if !IsUncontacted(code) {
			return OutcomeOther
		}
	}
	return StatusUncontacted
}

// FinalStatus reduces a lead's outcomes with the final priority rule. Unlike
// InitialStatus it has no "other" bucket.
func FinalStatus(outs OutcomeSet) string {
	for _, code := range []string{OutcomeConverted, OutcomeLost, OutcomeAgentAssigned, OutcomeFollowUp, OutcomeBusy, OutcomeNoAnswer} {
		if outs.Has(code) {
			return code
		}
	}
	return StatusUncontacted
}
