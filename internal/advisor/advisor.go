package advisor

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog"
	"github.com/tmc/langchaingo/llms"
	"github.com/vinodismyname/leadlens/internal/analysis"
)

// Sources reported in Advice.
const (
	SourceModel    = "model"
	SourcePlaybook = "playbook"
)

// Advice is the recommendation list returned for a dataset.
type Advice struct {
	Recommendations []string `json:"recommendations"`
	Source          string   `json:"source"`
}

// Advisor turns report results into campaign recommendations, either from a
// language model or the standing playbook.
type Advisor struct {
	model      llms.Model
	maxBullets int
}

// New returns an Advisor. A nil model always yields the playbook.
func New(model llms.Model) *Advisor {
	return &Advisor{model: model, maxBullets: 7}
}

// Recommend builds advice for records. Model failures and empty replies fall
// back to the playbook; only ctx cancellation is returned as an error.
func (a *Advisor) Recommend(ctx context.Context, records []analysis.CallRecord) (Advice, error) {
	playbook := Advice{Recommendations: analysis.Recommendations(), Source: SourcePlaybook}
	if a == nil || a.model == nil || len(records) == 0 {
		return playbook, nil
	}

	prompt, err := Prompt(records)
	if err != nil {
		return playbook, nil
	}
	out, err := llms.GenerateFromSinglePrompt(ctx, a.model, prompt, llms.WithTemperature(0.2), llms.WithMaxTokens(512))
	if err != nil {
		if ctx.Err() != nil {
			return Advice{}, ctx.Err()
		}
		zerolog.Ctx(ctx).Warn().Err(err).Msg("advisor model failed; using playbook")
		return playbook, nil
	}
	lines := ParseBullets(out, a.maxBullets)
	if len(lines) == 0 {
		zerolog.Ctx(ctx).Warn().Msg("advisor model returned no recommendations; using playbook")
		return playbook, nil
	}
	return Advice{Recommendations: lines, Source: SourceModel}, nil
}

// Prompt summarizes the headline reports for the model.
func Prompt(records []analysis.CallRecord) (string, error) {
	var b strings.Builder
	k := analysis.Overview(records)
	b.WriteString("You are advising a call-center campaign manager. Using the campaign results below, ")
	b.WriteString("write 3 to 7 short, concrete recommendations to raise contact and conversion rates. ")
	b.WriteString("Reply with one recommendation per line, each starting with \"- \".\n\n")
	fmt.Fprintf(&b, "Total dials: %d\nUnique leads: %d\nConversions: %d\nConverted leads: %d\nContact rate: %.2f%%\n",
		k.TotalDials, k.UniqueLeads, k.Conversions, k.ConvertedLeads, k.ContactRatePct)

	byDay, byHour := analysis.TimeBasedImpact(records)
	for _, name := range []string{analysis.ReportCallFunnel, analysis.ReportFinalFunnel, analysis.ReportLostBreakdown, analysis.ReportDuration} {
		t, err := analysis.Build(name, records, analysis.Params{})
		if err != nil {
			return "", err
		}
		writeTable(&b, t, 10)
	}
	writeTable(&b, byDay, 7)
	writeTable(&b, byHour, 24)
	return b.String(), nil
}

func writeTable(b *strings.Builder, t analysis.Table, limit int) {
	fmt.Fprintf(b, "\n%s\n%s\n", t.Name, strings.Join(t.Columns, " | "))
	for _, row := range t.Slice(0, limit).Rows {
		cells := make([]string, len(row))
		for i, c := range row {
			cells[i] = analysis.FormatCell(c)
		}
		b.WriteString(strings.Join(cells, " | "))
		b.WriteByte('\n')
	}
}

var bulletPrefix = regexp.MustCompile(`^\s*(?:[-*•]+|\d+[.)])\s*`)

// ParseBullets extracts up to max non-empty lines with list markers removed.
func ParseBullets(text string, max int) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(bulletPrefix.ReplaceAllString(line, ""))
		line = strings.Trim(line, "*")
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		out = append(out, line)
		if max > 0 && len(out) == max {
			break
		}
	}
	return out
}
