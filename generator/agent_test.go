package generator

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const mockAnyCtx = mock.Anything

// MockLLMClient is a testify mock of LLMClient.
type MockLLMClient struct {
	mock.Mock
}

func (m *MockLLMClient) Complete(ctx context.Context, prompt Prompt) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

func newTestAgent(t *testing.T, client LLMClient) *Agent {
	t.Helper()
	retrier := &Retrier{
		MaxAttempts: 3,
		BaseDelay:   time.Millisecond,
		Logger:      discardLogger(),
		Sleep:       func(ctx context.Context, _ time.Duration) error { return ctx.Err() },
	}
	agent, err := NewAgent(client, retrier, DefaultLimits(), discardLogger())
	require.NoError(t, err)
	return agent
}

func TestNewAgent_RequiresClient(t *testing.T) {
	agent, err := NewAgent(nil, nil, DefaultLimits(), nil)
	assert.Error(t, err)
	assert.Nil(t, agent)
}

func TestAgent_Generate(t *testing.T) {
	t.Run("normalizes model output and orders theme hints", func(t *testing.T) {
		client := new(MockLLMClient)
		client.On("Complete", mockAnyCtx, mock.MatchedBy(func(p Prompt) bool {
			return p.System != "" && p.User != ""
		})).Return("```json\n{\"slides\":[{\"title\":\"Forests\",\"points\":[\"Why trees matter\"]},{\"title\":\"Threats\",\"points\":[\"Logging\",\"Fire\"]}],\"theme_suggestions\":[\"Environment\"]}\n```", nil).Once()

		agent := newTestAgent(t, client)
		outline, err := agent.Generate(context.Background(), Spec{Text: "Protecting old growth forests in a changing climate"})

		require.NoError(t, err)
		require.Len(t, outline.Slides, 2)
		assert.Equal(t, "Forests", outline.Slides[0].Title)
		assert.Equal(t, []string{"environment", "nature"}, outline.ThemeHints)
		client.AssertExpectations(t)
	})

	t.Run("retries empty content then succeeds", func(t *testing.T) {
		client := new(MockLLMClient)
		client.On("Complete", mockAnyCtx, mock.Anything).Return("", nil).Once()
		client.On("Complete", mockAnyCtx, mock.Anything).Return(`{"slides":[{"title":"Only"}]}`, nil).Once()

		agent := newTestAgent(t, client)
		outline, err := agent.Generate(context.Background(), Spec{Text: "Quarterly revenue and market strategy review"})

		require.NoError(t, err)
		assert.Equal(t, "Only", outline.Slides[0].Title)
		assert.Equal(t, []string{"business"}, outline.ThemeHints)
		client.AssertNumberOfCalls(t, "Complete", 2)
	})

	t.Run("rejects short input without calling the model", func(t *testing.T) {
		client := new(MockLLMClient)

		agent := newTestAgent(t, client)
		_, err := agent.Generate(context.Background(), Spec{Text: "short"})

		var verr *InputValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "text", verr.Field)
		client.AssertNotCalled(t, "Complete")
	})

	t.Run("surfaces malformed output", func(t *testing.T) {
		client := new(MockLLMClient)
		client.On("Complete", mockAnyCtx, mock.Anything).Return("I cannot help with that.", nil).Once()

		agent := newTestAgent(t, client)
		_, err := agent.Generate(context.Background(), Spec{Text: "A talk about distributed systems"})

		var merr *MalformedOutlineError
		require.ErrorAs(t, err, &merr)
		assert.Equal(t, "invalid json", merr.Reason)
	})

	t.Run("surfaces exhausted upstream", func(t *testing.T) {
		client := new(MockLLMClient)
		client.On("Complete", mockAnyCtx, mock.Anything).Return("", &ProviderError{StatusCode: 503})

		agent := newTestAgent(t, client)
		_, err := agent.Generate(context.Background(), Spec{Text: "A talk about distributed systems"})

		var uerr *UpstreamUnavailableError
		require.ErrorAs(t, err, &uerr)
		assert.True(t, uerr.Exhausted)
		client.AssertNumberOfCalls(t, "Complete", 3)
	})
}

func TestAgent_GenerateWithMockLLM(t *testing.T) {
	agent := newTestAgent(t, MockLLM{})

	outline, err := agent.Generate(context.Background(), Spec{Text: "Cloud Migration Plan\nMove services off the old data center."})

	require.NoError(t, err)
	require.Len(t, outline.Slides, 4)
	assert.Equal(t, "Cloud Migration Plan", outline.Slides[0].Title)
	assert.Equal(t, "business", outline.ThemeHints[0])
}

func TestAgent_Generate_StrongEmphasisCleanup(t *testing.T) {
	const raw = `{"slides":[{"title":"**Launch** Plan","points":["**Ship** it","2*3*4 = 24"]}]}`
	retrier := &Retrier{MaxAttempts: 1, Logger: discardLogger()}

	t.Run("off by default", func(t *testing.T) {
		client := new(MockLLMClient)
		client.On("Complete", mockAnyCtx, mock.Anything).Return(raw, nil)
		agent, err := NewAgent(client, retrier, DefaultLimits(), discardLogger())
		require.NoError(t, err)

		outline, err := agent.Generate(context.Background(), Spec{Text: "Product launch plan for next quarter"})

		require.NoError(t, err)
		assert.Equal(t, "**Launch** Plan", outline.Slides[0].Title)
		assert.Equal(t, []string{"**Ship** it", "2*3*4 = 24"}, outline.Slides[0].Points)
	})

	t.Run("enabled removes paired markers only", func(t *testing.T) {
		client := new(MockLLMClient)
		client.On("Complete", mockAnyCtx, mock.Anything).Return(raw, nil)
		agent, err := NewAgent(client, retrier, DefaultLimits(), discardLogger(), WithStrongEmphasisCleanup(true))
		require.NoError(t, err)

		outline, err := agent.Generate(context.Background(), Spec{Text: "Product launch plan for next quarter"})

		require.NoError(t, err)
		assert.Equal(t, "Launch Plan", outline.Slides[0].Title)
		assert.Equal(t, []string{"Ship it", "2*3*4 = 24"}, outline.Slides[0].Points)
	})
}
