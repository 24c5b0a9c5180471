package analysis

import (
	"regexp"
	"strings"
)

// Lost reason categories in classification order, plus the fallback.
const (
	ReasonWrongNumber     = "Wrong Number"
	ReasonNotInterested   = "Not Interested"
	ReasonAlreadyCustomer = "Already Customer"
	ReasonPriceConcern    = "Price Concern"
	ReasonCallLater       = "Call Later/Timing"
	ReasonLocation        = "Location/Eligibility"
	ReasonNetworkIssue    = "Number/Network Issue"
	ReasonOther           = "Other"
)

type reasonRule struct {
	category string
	pattern  *regexp.Regexp
}

// Order matters: the first matching rule decides the category.
var lostReasonRules = []reasonRule{
	{ReasonWrongNumber, regexp.MustCompile(`wrong\s*number`)},
	{ReasonNotInterested, regexp.MustCompile(`not\s*interested|no interest|refuse`)},
	{ReasonAlreadyCustomer, regexp.MustCompile(`already.*customer|enrolled|student`)},
	{ReasonPriceConcern, regexp.MustCompile(`price|cost|fee|expensive|budget`)},
	{ReasonCallLater, regexp.MustCompile(`call.*later|busy.*now|callback`)},
	{ReasonLocation, regexp.MustCompile(`location|eligibility|coverage`)},
	{ReasonNetworkIssue, regexp.MustCompile(`switch|port|network`)},
}

// ClassifyLostReason assigns a free-text note to a lost reason category.
func ClassifyLostReason(note string) string {
	t := strings.ToLower(note)
	if strings.TrimSpace(t) == "" {
		return ReasonOther
	}
	for _, r := range lostReasonRules {
		if r.pattern.MatchString(t) {
			return r.category
		}
	}
	return ReasonOther
}

// LostReasons lists every category, in classification order, ending with Other.
func LostReasons() []string {
	out := make([]string, 0, len(lostReasonRules)+1)
	for _, r := range lostReasonRules {
		out = append(out, r.category)
	}
	return append(out, ReasonOther)
}

// IsLostReason reports whether s names a category exactly.
func IsLostReason(s string) bool {
	return reasonRank(s) >= 0
}

func reasonRank(s string) int {
	for i, r := range LostReasons() {
		if r == s {
			return i
		}
	}
	return -1
}
