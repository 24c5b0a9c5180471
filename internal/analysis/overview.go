package analysis

// KPIs is the headline summary of a dataset.
type KPIs struct {
	TotalDials     int     `json:"total_dials"`
	UniqueLeads    int     `json:"unique_leads"`
	Conversions    int     `json:"conversions"`
	ContactRatePct float64 `json:"contact_rate_pct"`
	ConvertedLeads int     `json:"converted_leads"`
}

// Overview computes the KPI row shown above the reports.
func Overview(records []CallRecord) KPIs {
	var k KPIs
	k.TotalDials = len(records)
	leads := GroupLeads(records)
	k.UniqueLeads = len(leads)
	contacted := 0
	for _, r := range records {
		if r.Converted() {
			k.Conversions++
		}
		if r.Contacted() {
			contacted++
		}
	}
	for _, l := range leads {
		if l.Outcomes.Has(OutcomeConverted) {
			k.ConvertedLeads++
		}
	}
	if k.TotalDials > 0 {
		k.ContactRatePct = round2(float64(contacted) / float64(k.TotalDials) * 100)
	}
	return k
}

// Recommendations returns the standing campaign playbook.
func Recommendations() []string {
	return []string{
		`Reduce "No Answer" and "Uncontacted" through smart retries in best-performing hours.`,
		`Introduce objection-handling scripts for "Not Interested" leads.`,
		`Enforce an SLA for "Agent Assigned" to ensure fast conversions.`,
		"Train agents to aim for 90+ second conversations for higher conversions.",
		"Improve data hygiene to filter out wrong numbers.",
	}
}
