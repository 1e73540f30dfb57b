package generator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v5"
	"golang.org/x/time/rate"
)

// OutcomeKind tags the result of one upstream attempt.
type OutcomeKind int

const (
	OutcomeSuccess OutcomeKind = iota
	OutcomeRetryable
	OutcomeFatal
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeRetryable:
		return "retryable"
	case OutcomeFatal:
		return "fatal"
	default:
		return fmt.Sprintf("OutcomeKind(%d)", int(k))
	}
}

// Outcome is the classified result of one attempt.
type Outcome struct {
	Kind   OutcomeKind
	Reason string
}

// RetryState lives for a single FetchOutlineText call.
type RetryState struct {
	Attempt int
	Delay   time.Duration
	LastErr error
}

// Retrier wraps an upstream call with bounded, exponentially spaced retries.
// A Retrier holds configuration only and may be shared by concurrent callers;
// Limiter, when set, is the one budget they share.
type Retrier struct {
	MaxAttempts    int
	BaseDelay      time.Duration
	MaxDelay       time.Duration
	AttemptTimeout time.Duration
	Limiter        *rate.Limiter
	Logger         *slog.Logger

	// Sleep replaces the context-aware timer; tests use it to record delays.
	Sleep func(ctx context.Context, d time.Duration) error
	// Observe is called once per classified attempt.
	Observe func(Outcome)
}

// FetchOutlineText calls fetch until it yields non-blank text, a fatal
// failure occurs, or MaxAttempts is reached. The returned text is trimmed and
// otherwise untouched. Failures are *UpstreamUnavailableError.
func (r *Retrier) FetchOutlineText(ctx context.Context, fetch func(ctx context.Context) (string, error)) (string, error) {
	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}
	maxAttempts := r.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	bo := r.newBackOff()

	var state RetryState
	for state.Attempt = 1; ; state.Attempt++ {
		if r.Limiter != nil {
			if err := r.Limiter.Wait(ctx); err != nil {
				return "", cancelled(state, err)
			}
		}

		text, err := r.attempt(ctx, fetch)
		if ctx.Err() != nil {
			return "", cancelled(state, ctx.Err())
		}
		outcome := Classify(text, err)
		if r.Observe != nil {
			r.Observe(outcome)
		}

		switch outcome.Kind {
		case OutcomeSuccess:
			if state.Attempt > 1 {
				logger.Info("upstream recovered", "attempt", state.Attempt)
			}
			return strings.TrimSpace(text), nil
		case OutcomeFatal:
			logger.Error("upstream failed", "attempt", state.Attempt, "reason", outcome.Reason, "err", err)
			return "", &UpstreamUnavailableError{Attempts: state.Attempt, Reason: outcome.Reason, Err: err}
		}

		state.LastErr = err
		if state.LastErr == nil {
			state.LastErr = ErrEmptyContent
		}
		if state.Attempt >= maxAttempts {
			logger.Error("upstream retries exhausted", "attempts", state.Attempt, "reason", outcome.Reason, "err", state.LastErr)
			return "", &UpstreamUnavailableError{
				Attempts:  state.Attempt,
				Exhausted: true,
				Reason:    outcome.Reason,
				Err:       state.LastErr,
			}
		}

		state.Delay = bo.NextBackOff()
		logger.Warn("upstream attempt failed, retrying",
			"attempt", state.Attempt,
			"delay", state.Delay,
			"reason", outcome.Reason,
			"excerpt", Excerpt(text, excerptLimit),
			"err", err,
		)
		if err := r.sleep(ctx, state.Delay); err != nil {
			return "", cancelled(state, err)
		}
	}
}

func (r *Retrier) attempt(ctx context.Context, fetch func(ctx context.Context) (string, error)) (string, error) {
	if r.AttemptTimeout <= 0 {
		return fetch(ctx)
	}
	attemptCtx, cancel := context.WithTimeout(ctx, r.AttemptTimeout)
	defer cancel()
	return fetch(attemptCtx)
}

// newBackOff returns base, 2*base, 4*base, ... capped at MaxDelay, without
// jitter.
func (r *Retrier) newBackOff() *backoff.ExponentialBackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = r.BaseDelay
	bo.Multiplier = 2
	bo.RandomizationFactor = 0
	bo.MaxInterval = r.MaxDelay
	if bo.MaxInterval < r.BaseDelay {
		bo.MaxInterval = r.BaseDelay << 4
	}
	bo.Reset()
	return bo
}

func (r *Retrier) sleep(ctx context.Context, d time.Duration) error {
	if r.Sleep != nil {
		return r.Sleep(ctx, d)
	}
	return sleepContext(ctx, d)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// ReasonCancelled marks an UpstreamUnavailableError caused by the caller's
// context ending, not by the model.
const ReasonCancelled = "request cancelled"

func cancelled(state RetryState, err error) error {
	return &UpstreamUnavailableError{Attempts: state.Attempt, Reason: ReasonCancelled, Err: err}
}

// FetchOutlineText is the single-call form of Retrier.FetchOutlineText for
// callers that only have a prompt and a client.
func FetchOutlineText(ctx context.Context, prompt Prompt, llm LLMClient, maxAttempts int, baseDelay time.Duration) (string, error) {
	r := &Retrier{MaxAttempts: maxAttempts, BaseDelay: baseDelay}
	return r.FetchOutlineText(ctx, func(ctx context.Context) (string, error) {
		return llm.Complete(ctx, prompt)
	})
}

// Classify decides whether one attempt succeeded, may be retried, or must
// stop the loop. Unknown errors are fatal.
func Classify(text string, err error) Outcome {
	if err == nil {
		if strings.TrimSpace(text) == "" {
			return Outcome{Kind: OutcomeRetryable, Reason: "empty content"}
		}
		return Outcome{Kind: OutcomeSuccess}
	}

	if errors.Is(err, ErrEmptyContent) {
		return Outcome{Kind: OutcomeRetryable, Reason: "empty content"}
	}
	if errors.Is(err, context.Canceled) {
		return Outcome{Kind: OutcomeFatal, Reason: "request cancelled"}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return Outcome{Kind: OutcomeRetryable, Reason: "attempt timed out"}
	}

	var perr *ProviderError
	if errors.As(err, &perr) {
		return classifyStatus(perr.StatusCode)
	}

	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return Outcome{Kind: OutcomeRetryable, Reason: "network timeout"}
	}
	var opErr *net.OpError
	var dnsErr *net.DNSError
	switch {
	case errors.As(err, &opErr), errors.As(err, &dnsErr),
		errors.Is(err, syscall.ECONNRESET), errors.Is(err, syscall.ECONNREFUSED),
		errors.Is(err, io.ErrUnexpectedEOF), errors.Is(err, io.EOF):
		return Outcome{Kind: OutcomeRetryable, Reason: "network error"}
	}

	return Outcome{Kind: OutcomeFatal, Reason: "unexpected error"}
}

func classifyStatus(code int) Outcome {
	switch {
	case code == http.StatusTooManyRequests:
		return Outcome{Kind: OutcomeRetryable, Reason: "rate limited"}
	case code == http.StatusRequestTimeout, code == http.StatusConflict:
		return Outcome{Kind: OutcomeRetryable, Reason: fmt.Sprintf("transient status %d", code)}
	case code >= 500:
		return Outcome{Kind: OutcomeRetryable, Reason: fmt.Sprintf("server error %d", code)}
	case code == http.StatusUnauthorized, code == http.StatusForbidden:
		return Outcome{Kind: OutcomeFatal, Reason: "authentication failed"}
	case code >= 400:
		return Outcome{Kind: OutcomeFatal, Reason: fmt.Sprintf("request rejected with status %d", code)}
	default:
		return Outcome{Kind: OutcomeFatal, Reason: fmt.Sprintf("unexpected status %d", code)}
	}
}
