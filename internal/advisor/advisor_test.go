package advisor

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
	"github.com/vinodismyname/leadlens/internal/analysis"
)

type fakeModel struct {
	reply   string
	err     error
	prompts []string
}

func (m *fakeModel) GenerateContent(ctx context.Context, msgs []llms.MessageContent, _ ...llms.CallOption) (*llms.ContentResponse, error) {
	for _, msg := range msgs {
		for _, p := range msg.Parts {
			if tc, ok := p.(llms.TextContent); ok {
				m.prompts = append(m.prompts, tc.Text)
			}
		}
	}
	if m.err != nil {
		return nil, m.err
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: m.reply}}}, nil
}

func (m *fakeModel) Call(ctx context.Context, prompt string, opts ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, m, prompt, opts...)
}

func records() []analysis.CallRecord {
	return []analysis.CallRecord{
		{MobileNumber: "1", OutcomeNorm: analysis.OutcomeBusy},
		{MobileNumber: "1", OutcomeNorm: analysis.OutcomeConverted, Duration: 120},
		{MobileNumber: "2", OutcomeNorm: analysis.OutcomeLost, Notes: "too expensive"},
	}
}

func TestRecommend_NoModelUsesPlaybook(t *testing.T) {
	adv, err := New(nil).Recommend(context.Background(), records())
	require.NoError(t, err)
	require.Equal(t, SourcePlaybook, adv.Source)
	require.Equal(t, analysis.Recommendations(), adv.Recommendations)
}

func TestRecommend_ModelBullets(t *testing.T) {
	m := &fakeModel{reply: "Here you go:\n- Retry busy leads after 6pm\n\n2. Shorten the opening pitch\n* **Escalate agent-assigned leads**\n"}
	adv, err := New(m).Recommend(context.Background(), records())
	require.NoError(t, err)
	require.Equal(t, SourceModel, adv.Source)
	require.Equal(t, []string{
		"Here you go:",
		"Retry busy leads after 6pm",
		"Shorten the opening pitch",
		"Escalate agent-assigned leads",
	}, adv.Recommendations)

	require.Len(t, m.prompts, 1)
	require.Contains(t, m.prompts[0], "Total dials: 3")
	require.Contains(t, m.prompts[0], analysis.ReportLostBreakdown)
}

func TestRecommend_FallbacksOnFailure(t *testing.T) {
	for _, m := range []*fakeModel{{err: errors.New("rate limited")}, {reply: "  \n\n"}} {
		adv, err := New(m).Recommend(context.Background(), records())
		require.NoError(t, err)
		require.Equal(t, SourcePlaybook, adv.Source)
	}
}

func TestRecommend_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(&fakeModel{err: context.Canceled}).Recommend(ctx, records())
	require.ErrorIs(t, err, context.Canceled)
}

func TestParseBullets_Limit(t *testing.T) {
	text := strings.Repeat("- tip\n", 10)
	require.Len(t, ParseBullets(text, 3), 3)
	require.Empty(t, ParseBullets("", 3))
}
