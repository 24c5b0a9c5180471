package analysis

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// ErrUnknownReport is returned by Build for names outside the catalog.
var ErrUnknownReport = errors.New("analysis: unknown report")

// Report names accepted by Build.
const (
	ReportCallFunnel    = "call_funnel"
	ReportInitialFunnel = "initial_funnel"
	ReportLostBreakdown = "lost_breakdown"
	ReportDeepDive      = "deep_dive"
	ReportTimeByDay     = "time_by_day"
	ReportTimeByHour    = "time_by_hour"
	ReportDuration      = "duration"
	ReportGender        = "gender"
	ReportFinalFunnel   = "final_funnel"
)

// DefaultDeepDiveReason is used when Params leaves Reason empty.
const DefaultDeepDiveReason = ReasonNotInterested

// Params carries the optional report parameters.
type Params struct {
	// Reason selects the deep dive's lost reason category.
	Reason string
}

var reportOrder = []string{
	ReportCallFunnel,
	ReportInitialFunnel,
	ReportLostBreakdown,
	ReportDeepDive,
	ReportTimeByDay,
	ReportTimeByHour,
	ReportDuration,
	ReportGender,
	ReportFinalFunnel,
}

// ReportNames lists the catalog in presentation order.
func ReportNames() []string {
	out := make([]string, len(reportOrder))
	copy(out, reportOrder)
	return out
}

// IsReport reports whether name is in the catalog.
func IsReport(name string) bool {
	for _, n := range reportOrder {
		if n == name {
			return true
		}
	}
	return false
}

// Build computes one named report over records.
func Build(name string, records []CallRecord, p Params) (Table, error) {
	switch name {
	case ReportCallFunnel:
		return CallLevelFunnel(records), nil
	case ReportInitialFunnel:
		return InitialLeadFunnel(records), nil
	case ReportLostBreakdown:
		return LostLeadBreakdown(records), nil
	case ReportDeepDive:
		reason := p.Reason
		if reason == "" {
			reason = DefaultDeepDiveReason
		}
		return DeepDiveProfile(records, reason)
	case ReportTimeByDay:
		day, _ := TimeBasedImpact(records)
		return day, nil
	case ReportTimeByHour:
		_, hour := TimeBasedImpact(records)
		return hour, nil
	case ReportDuration:
		return DurationAnalysis(records), nil
	case ReportGender:
		return GenderAnalysis(records), nil
	case ReportFinalFunnel:
		return FinalLeadFunnel(records), nil
	}
	return Table{}, fmt.Errorf("%w: %q", ErrUnknownReport, name)
}

// BuildAll computes every catalog report concurrently over the shared,
// read-only records slice. Results are returned in catalog order.
func BuildAll(ctx context.Context, records []CallRecord, p Params, workers int) ([]Table, error) {
	if workers <= 0 {
		workers = len(reportOrder)
	}
	out := make([]Table, len(reportOrder))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, name := range reportOrder {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			t, err := Build(name, records, p)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			out[i] = t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
