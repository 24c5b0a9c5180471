package analysis

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func outcomes(codes ...string) OutcomeSet {
	s := OutcomeSet{}
	for _, c := range codes {
		s[c] = struct{}{}
	}
	return s
}

func TestInitialStatus_Priority(t *testing.T) {
	require.Equal(t, OutcomeConverted, InitialStatus(outcomes(OutcomeLost, OutcomeConverted)))
	require.Equal(t, OutcomeLost, InitialStatus(outcomes(OutcomeLost, OutcomeAgentAssigned)))
	require.Equal(t, OutcomeAgentAssigned, InitialStatus(outcomes(OutcomeFollowUp, OutcomeAgentAssigned)))
	require.Equal(t, OutcomeFollowUp, InitialStatus(outcomes(OutcomeFollowUp, OutcomeBusy)))
	require.Equal(t, StatusUncontacted, InitialStatus(outcomes(OutcomeBusy, OutcomeNoAnswer)))
	require.Equal(t, OutcomeOther, InitialStatus(outcomes(OutcomeBusy, "voicemail")))
}

func TestFinalStatus_Priority(t *testing.T) {
	require.Equal(t, OutcomeConverted, FinalStatus(outcomes(OutcomeConverted, OutcomeLost)))
	require.Equal(t, OutcomeBusy, FinalStatus(outcomes(OutcomeBusy, OutcomeNoAnswer)))
	require.Equal(t, OutcomeNoAnswer, FinalStatus(outcomes(OutcomeNoAnswer, OutcomeFailed)))
	require.Equal(t, StatusUncontacted, FinalStatus(outcomes(OutcomeFailed)))
	require.Equal(t, StatusUncontacted, FinalStatus(outcomes("voicemail")))
}

func TestStatusRules_ClosedOutputSets(t *testing.T) {
	all := []string{OutcomeBusy, OutcomeNoAnswer, OutcomeFailed, OutcomeUnknown, OutcomeFollowUp, OutcomeAgentAssigned, OutcomeConverted, OutcomeLost, OutcomeOther, "voicemail"}
	// every non-empty subset of up to two codes
	for i := range all {
		for j := i; j < len(all); j++ {
			set := outcomes(all[i], all[j])
			require.Contains(t, initialStatusOrder, InitialStatus(set))
			require.Contains(t, finalStatusOrder, FinalStatus(set))
		}
	}
}

func TestGroupLeads_FirstSeenOrder(t *testing.T) {
	recs := []CallRecord{
		{MobileNumber: "222", OutcomeNorm: OutcomeBusy},
		{MobileNumber: "111", OutcomeNorm: OutcomeBusy},
		{MobileNumber: "222", OutcomeNorm: OutcomeLost},
	}
	leads := GroupLeads(recs)
	require.Len(t, leads, 2)
	require.Equal(t, "222", leads[0].MobileNumber)
	require.Equal(t, []int{0, 2}, leads[0].Records)
	require.True(t, leads[0].Outcomes.Has(OutcomeLost))
	require.Equal(t, "111", leads[1].MobileNumber)
}

func TestTwoUncontactedAttempts(t *testing.T) {
	recs := []CallRecord{
		{MobileNumber: "111", OutcomeNorm: OutcomeBusy},
		{MobileNumber: "111", OutcomeNorm: OutcomeNoAnswer},
	}
	lead := GroupLeads(recs)[0]
	require.Equal(t, StatusUncontacted, InitialStatus(lead.Outcomes))
	require.Equal(t, OutcomeBusy, FinalStatus(lead.Outcomes))
}
