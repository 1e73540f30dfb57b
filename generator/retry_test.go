package generator

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

type recordedSleeps struct {
	delays []time.Duration
}

func (r *recordedSleeps) sleep(ctx context.Context, d time.Duration) error {
	r.delays = append(r.delays, d)
	return ctx.Err()
}

func newTestRetrier(maxAttempts int, sleeps *recordedSleeps) *Retrier {
	return &Retrier{
		MaxAttempts: maxAttempts,
		BaseDelay:   time.Second,
		MaxDelay:    time.Minute,
		Logger:      discardLogger(),
		Sleep:       sleeps.sleep,
	}
}

func TestRetrier_RecoversAfterTwoRetryableFailures(t *testing.T) {
	sleeps := &recordedSleeps{}
	r := newTestRetrier(5, sleeps)

	calls := 0
	text, err := r.FetchOutlineText(context.Background(), func(context.Context) (string, error) {
		calls++
		switch calls {
		case 1:
			return "", &ProviderError{Provider: "openai", StatusCode: 429}
		case 2:
			return "   ", nil
		default:
			return "  {\"slides\":[]}\n", nil
		}
	})

	require.NoError(t, err)
	assert.Equal(t, `{"slides":[]}`, text)
	assert.Equal(t, 3, calls)
	require.Len(t, sleeps.delays, 2)
	assert.Less(t, sleeps.delays[0], sleeps.delays[1])
	assert.Equal(t, time.Second, sleeps.delays[0])
	assert.Equal(t, 2*time.Second, sleeps.delays[1])
}

func TestRetrier_ExhaustsOnEmptyContent(t *testing.T) {
	sleeps := &recordedSleeps{}
	r := newTestRetrier(3, sleeps)

	calls := 0
	_, err := r.FetchOutlineText(context.Background(), func(context.Context) (string, error) {
		calls++
		return "", nil
	})

	var uerr *UpstreamUnavailableError
	require.ErrorAs(t, err, &uerr)
	assert.True(t, uerr.Exhausted)
	assert.Equal(t, 3, uerr.Attempts)
	assert.Equal(t, "empty content", uerr.Reason)
	assert.ErrorIs(t, err, ErrEmptyContent)
	assert.Equal(t, 3, calls)
	assert.Len(t, sleeps.delays, 2)
	assert.Contains(t, err.Error(), "exhausted retries")
}

func TestRetrier_FatalStopsImmediately(t *testing.T) {
	sleeps := &recordedSleeps{}
	r := newTestRetrier(5, sleeps)

	calls := 0
	_, err := r.FetchOutlineText(context.Background(), func(context.Context) (string, error) {
		calls++
		return "", &ProviderError{Provider: "openai", StatusCode: 401, Message: "bad key"}
	})

	var uerr *UpstreamUnavailableError
	require.ErrorAs(t, err, &uerr)
	assert.False(t, uerr.Exhausted)
	assert.Equal(t, 1, uerr.Attempts)
	assert.Equal(t, "authentication failed", uerr.Reason)
	assert.Equal(t, 1, calls)
	assert.Empty(t, sleeps.delays)
	assert.Contains(t, err.Error(), "fatal upstream error")
}

func TestRetrier_DelaysAreCapped(t *testing.T) {
	sleeps := &recordedSleeps{}
	r := newTestRetrier(6, sleeps)
	r.MaxDelay = 4 * time.Second

	_, err := r.FetchOutlineText(context.Background(), func(context.Context) (string, error) {
		return "", &ProviderError{StatusCode: 503}
	})

	require.Error(t, err)
	assert.Equal(t, []time.Duration{
		time.Second, 2 * time.Second, 4 * time.Second, 4 * time.Second, 4 * time.Second,
	}, sleeps.delays)
}

func TestRetrier_ObserveSeesEveryAttempt(t *testing.T) {
	var kinds []OutcomeKind
	r := newTestRetrier(3, &recordedSleeps{})
	r.Observe = func(o Outcome) { kinds = append(kinds, o.Kind) }

	calls := 0
	_, err := r.FetchOutlineText(context.Background(), func(context.Context) (string, error) {
		calls++
		if calls == 1 {
			return "", ErrEmptyContent
		}
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, []OutcomeKind{OutcomeRetryable, OutcomeSuccess}, kinds)
}

func TestRetrier_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	r := &Retrier{MaxAttempts: 3, BaseDelay: time.Hour, Logger: discardLogger()}

	calls := 0
	done := make(chan error, 1)
	go func() {
		_, err := r.FetchOutlineText(ctx, func(context.Context) (string, error) {
			calls++
			return "", nil
		})
		done <- err
	}()
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		var uerr *UpstreamUnavailableError
		require.ErrorAs(t, err, &uerr)
		assert.False(t, uerr.Exhausted)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, calls)
	case <-time.After(2 * time.Second):
		t.Fatal("retry loop did not observe cancellation")
	}
}

func TestRetrier_AttemptTimeoutIsRetryable(t *testing.T) {
	r := newTestRetrier(2, &recordedSleeps{})
	r.AttemptTimeout = 10 * time.Millisecond

	calls := 0
	text, err := r.FetchOutlineText(context.Background(), func(ctx context.Context) (string, error) {
		calls++
		if calls == 1 {
			<-ctx.Done()
			return "", ctx.Err()
		}
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", text)
	assert.Equal(t, 2, calls)
}

func TestRetrier_WaitsOnSharedLimiter(t *testing.T) {
	limiter := rate.NewLimiter(rate.Inf, 1)
	r := newTestRetrier(1, &recordedSleeps{})
	r.Limiter = limiter

	text, err := r.FetchOutlineText(context.Background(), func(context.Context) (string, error) {
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", text)
}

func TestFetchOutlineText_UsesClient(t *testing.T) {
	client := &MockLLMClient{}
	prompt := Prompt{System: "s", User: "u"}
	client.On("Complete", mockAnyCtx, prompt).Return("hello", nil).Once()

	text, err := FetchOutlineText(context.Background(), prompt, client, 3, time.Millisecond)

	require.NoError(t, err)
	assert.Equal(t, "hello", text)
	client.AssertExpectations(t)
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		text string
		err  error
		want OutcomeKind
	}{
		{"success", "{}", nil, OutcomeSuccess},
		{"blank", " \n\t", nil, OutcomeRetryable},
		{"empty sentinel", "", ErrEmptyContent, OutcomeRetryable},
		{"rate limited", "", &ProviderError{StatusCode: 429}, OutcomeRetryable},
		{"request timeout", "", &ProviderError{StatusCode: 408}, OutcomeRetryable},
		{"conflict", "", &ProviderError{StatusCode: 409}, OutcomeRetryable},
		{"server error", "", &ProviderError{StatusCode: 502}, OutcomeRetryable},
		{"bad request", "", &ProviderError{StatusCode: 400}, OutcomeFatal},
		{"unauthorized", "", &ProviderError{StatusCode: 401}, OutcomeFatal},
		{"forbidden", "", &ProviderError{StatusCode: 403}, OutcomeFatal},
		{"not found", "", &ProviderError{StatusCode: 404}, OutcomeFatal},
		{"unprocessable", "", &ProviderError{StatusCode: 422}, OutcomeFatal},
		{"net timeout", "", timeoutErr{}, OutcomeRetryable},
		{"connection refused", "", &net.OpError{Op: "dial", Err: errors.New("connection refused")}, OutcomeRetryable},
		{"deadline", "", context.DeadlineExceeded, OutcomeRetryable},
		{"cancelled", "", context.Canceled, OutcomeFatal},
		{"unknown", "", errors.New("boom"), OutcomeFatal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.text, tt.err).Kind)
		})
	}
}
