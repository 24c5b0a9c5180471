package analysis

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// ErrUnknownLostReason is returned when a deep dive names no known category.
var ErrUnknownLostReason = errors.New("analysis: unknown lost reason")

// UnknownBot labels records whose bot column is blank.
const UnknownBot = "(unknown)"

type labelCount struct {
	label string
	n     int
}

// sortCounts orders by count descending, breaking ties by rank and then label.
func sortCounts(cs []labelCount, rank func(string) int) {
	sort.SliceStable(cs, func(i, j int) bool {
		if cs[i].n != cs[j].n {
			return cs[i].n > cs[j].n
		}
		ri, rj := rank(cs[i].label), rank(cs[j].label)
		if ri != rj {
			if ri < 0 {
				return false
			}
			if rj < 0 {
				return true
			}
			return ri < rj
		}
		return cs[i].label < cs[j].label
	})
}

func rankIn(order []string) func(string) int {
	return func(s string) int {
		for i, o := range order {
			if o == s {
				return i
			}
		}
		return -1
	}
}

func tally(m map[string]int) []labelCount {
	out := make([]labelCount, 0, len(m))
	for k, v := range m {
		out = append(out, labelCount{label: k, n: v})
	}
	return out
}

// mode returns the most frequent key, ties resolved to the lexically
// smallest key. An empty map yields "".
func mode(m map[string]int) string {
	best, bestN := "", 0
	for k, n := range m {
		if n > bestN || (n == bestN && k < best) {
			best, bestN = k, n
		}
	}
	return best
}

// CallLevelFunnel splits total dials into uncontacted and contacted.
func CallLevelFunnel(records []CallRecord) Table {
	t := newTable("call_funnel", "Metric", "Count", "% of Total")
	total := len(records)
	if total == 0 {
		return t
	}
	uncontacted := 0
	for _, r := range records {
		if !r.Contacted() {
			uncontacted++
		}
	}
	contacted := total - uncontacted
	t.add("Total Dials", total, percent(total, total))
	t.add("Uncontacted Dials", uncontacted, percent(uncontacted, total))
	t.add("Contacted Dials", contacted, percent(contacted, total))
	return t
}

func leadFunnel(t Table, leads []Lead, rule func(OutcomeSet) string, order []string) Table {
	counts := map[string]int{}
	for _, l := range leads {
		counts[rule(l.Outcomes)]++
	}
	cs := tally(counts)
	sortCounts(cs, rankIn(order))
	for _, c := range cs {
		t.add(c.label, c.n, percent(c.n, len(leads)))
	}
	return t
}

// InitialLeadFunnel counts leads per InitialStatus, preceded by a
// "Unique Leads" total row.
func InitialLeadFunnel(records []CallRecord) Table {
	t := newTable("initial_funnel", "Lead Status", "Count", "% of Unique Leads")
	leads := GroupLeads(records)
	if len(leads) == 0 {
		return t
	}
	t.add("Unique Leads", len(leads), "100%")
	return leadFunnel(t, leads, InitialStatus, initialStatusOrder)
}

// FinalLeadFunnel counts leads per FinalStatus.
func FinalLeadFunnel(records []CallRecord) Table {
	t := newTable("final_funnel", "Lead Status", "Count", "% of Total Unique Leads")
	leads := GroupLeads(records)
	if len(leads) == 0 {
		return t
	}
	return leadFunnel(t, leads, FinalStatus, finalStatusOrder)
}

// DominantLostReasons maps every lead with at least one lost record to the
// most common category among its lost records' notes.
func DominantLostReasons(records []CallRecord) map[string]string {
	perLead := map[string]map[string]int{}
	for _, r := range records {
		if r.OutcomeNorm != OutcomeLost {
			continue
		}
		m, ok := perLead[r.MobileNumber]
		if !ok {
			m = map[string]int{}
			perLead[r.MobileNumber] = m
		}
		m[ClassifyLostReason(r.Notes)]++
	}
	out := make(map[string]string, len(perLead))
	for mobile, m := range perLead {
		out[mobile] = mode(m)
	}
	return out
}

// LostLeadBreakdown counts lost leads by dominant lost reason.
func LostLeadBreakdown(records []CallRecord) Table {
	t := newTable("lost_breakdown", "Lost Reason", "Count", "% of Lost Leads")
	dominant := DominantLostReasons(records)
	if len(dominant) == 0 {
		return t
	}
	counts := map[string]int{}
	for _, reason := range dominant {
		counts[reason]++
	}
	cs := tally(counts)
	sortCounts(cs, reasonRank)
	for _, c := range cs {
		t.add(c.label, c.n, percent(c.n, len(dominant)))
	}
	return t
}

type botStats struct {
	dials     int
	contacted int
	duration  float64
	leads     map[string]struct{}
}

// DeepDiveProfile profiles, per bot, every call made to leads whose dominant
// lost reason is reason.
func DeepDiveProfile(records []CallRecord, reason string) (Table, error) {
	t := newTable("deep_dive", "bot", "dials", "leads", "contact_rate", "avg_duration")
	if !IsLostReason(reason) {
		return t, fmt.Errorf("%w: %q", ErrUnknownLostReason, reason)
	}
	t.Notes = []string{"lost reason: " + reason}
	selected := map[string]struct{}{}
	for mobile, r := range DominantLostReasons(records) {
		if r == reason {
			selected[mobile] = struct{}{}
		}
	}
	if len(selected) == 0 {
		return t, nil
	}
	bots := map[string]*botStats{}
	for _, r := range records {
		if _, ok := selected[r.MobileNumber]; !ok {
			continue
		}
		key := strings.TrimSpace(r.Bot)
		if key == "" {
			key = UnknownBot
		}
		s, ok := bots[key]
		if !ok {
			s = &botStats{leads: map[string]struct{}{}}
			bots[key] = s
		}
		s.dials++
		if r.Contacted() {
			s.contacted++
		}
		s.duration += r.Duration
		s.leads[r.MobileNumber] = struct{}{}
	}
	keys := make([]string, 0, len(bots))
	for k := range bots {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		s := bots[k]
		t.add(k, s.dials, len(s.leads), percent(s.contacted, s.dials), round1(s.duration/float64(s.dials)))
	}
	return t, nil
}

type rateStats struct {
	dials     int
	contacted int
	converted int
}

func (s *rateStats) observe(r CallRecord) {
	s.dials++
	if r.Contacted() {
		s.contacted++
	}
	if r.Converted() {
		s.converted++
	}
}

// TimeBasedImpact returns dial, contact and conversion rates by weekday and
// by hour of day. Undated records are left out of both.
func TimeBasedImpact(records []CallRecord) (byDay, byHour Table) {
	byDay = newTable("time_by_day", "day", "dials", "contact_rate", "conversion_rate")
	byHour = newTable("time_by_hour", "hour", "dials", "contact_rate", "conversion_rate")

	days := map[time.Weekday]*rateStats{}
	hours := map[int]*rateStats{}
	for _, r := range records {
		if !r.HasDate() {
			continue
		}
		wd, h := r.Date.Weekday(), r.Date.Hour()
		if days[wd] == nil {
			days[wd] = &rateStats{}
		}
		if hours[h] == nil {
			hours[h] = &rateStats{}
		}
		days[wd].observe(r)
		hours[h].observe(r)
	}

	wds := make([]time.Weekday, 0, len(days))
	for wd := range days {
		wds = append(wds, wd)
	}
	// Monday-first calendar order breaks ties.
	sort.Slice(wds, func(i, j int) bool {
		a, b := days[wds[i]], days[wds[j]]
		if a.dials != b.dials {
			return a.dials > b.dials
		}
		return (wds[i]+6)%7 < (wds[j]+6)%7
	})
	for _, wd := range wds {
		s := days[wd]
		byDay.add(wd.String(), s.dials, percent(s.contacted, s.dials), percent(s.converted, s.dials))
	}

	hs := make([]int, 0, len(hours))
	for h := range hours {
		hs = append(hs, h)
	}
	sort.Slice(hs, func(i, j int) bool {
		a, b := hours[hs[i]], hours[hs[j]]
		if a.dials != b.dials {
			return a.dials > b.dials
		}
		return hs[i] < hs[j]
	})
	for _, h := range hs {
		s := hours[h]
		byHour.add(h, s.dials, percent(s.contacted, s.dials), percent(s.converted, s.dials))
	}
	return byDay, byHour
}

// DurationAnalysis averages call duration for converted and lost calls only.
func DurationAnalysis(records []CallRecord) Table {
	t := newTable("duration", "Outcome", "Avg Duration (sec)")
	sums := map[string]float64{}
	counts := map[string]int{}
	for _, r := range records {
		if r.OutcomeNorm != OutcomeConverted && r.OutcomeNorm != OutcomeLost {
			continue
		}
		sums[r.OutcomeNorm] += r.Duration
		counts[r.OutcomeNorm]++
	}
	for _, code := range []string{OutcomeConverted, OutcomeLost} {
		if n := counts[code]; n > 0 {
			t.add(code, round2(sums[code]/float64(n)))
		}
	}
	return t
}

// GenderAnalysis buckets leads by the gender inferred from their most
// frequent name and reports each bucket's lead conversion rate.
func GenderAnalysis(records []CallRecord) Table {
	t := newTable("gender", "gender", "leads", "conversion_rate")
	t.Notes = []string{GenderCaveat}
	leads := GroupLeads(records)
	if len(leads) == 0 {
		return t
	}
	type bucket struct{ leads, converted int }
	buckets := map[string]*bucket{}
	for _, l := range leads {
		names := map[string]int{}
		for _, i := range l.Records {
			if n := strings.TrimSpace(records[i].Name); n != "" {
				names[n]++
			}
		}
		g := InferGender(mode(names))
		b, ok := buckets[g]
		if !ok {
			b = &bucket{}
			buckets[g] = b
		}
		b.leads++
		if l.Outcomes.Has(OutcomeConverted) {
			b.converted++
		}
	}
	keys := make([]string, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		b := buckets[k]
		t.add(k, b.leads, percent(b.converted, b.leads))
	}
	return t
}
