package generator

import (
	"errors"
	"fmt"
)

// ConfigurationError means the upstream model cannot be used at all, e.g.
// credentials were missing at startup.
type ConfigurationError struct {
	Reason string
	Err    error
}

func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("llm not configured: %s: %v", e.Reason, e.Err)
	}
	return "llm not configured: " + e.Reason
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// InputValidationError is a caller mistake; it is never retried.
type InputValidationError struct {
	Field  string
	Reason string
}

func (e *InputValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// UpstreamUnavailableError is returned by the retry loop when the model could
// not produce usable text. Exhausted distinguishes "ran out of attempts" from
// a single fatal failure.
type UpstreamUnavailableError struct {
	Attempts  int
	Exhausted bool
	Reason    string
	Err       error
}

func (e *UpstreamUnavailableError) Error() string {
	kind := "fatal upstream error"
	if e.Exhausted {
		kind = "exhausted retries"
	}
	msg := fmt.Sprintf("upstream unavailable after %d attempt(s) (%s): %s", e.Attempts, kind, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *UpstreamUnavailableError) Unwrap() error { return e.Err }

// MalformedOutlineError means the model answered but the content could not be
// coerced into an outline.
type MalformedOutlineError struct {
	Reason  string
	Excerpt string
	Err     error
}

func (e *MalformedOutlineError) Error() string {
	msg := "malformed outline: " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *MalformedOutlineError) Unwrap() error { return e.Err }

// ProviderError is the provider-neutral form of an HTTP-level failure from a
// model API. Adapters convert their SDK errors into it so retry policy does
// not depend on any one SDK.
type ProviderError struct {
	Provider   string
	StatusCode int
	Message    string
	Err        error
}

func (e *ProviderError) Error() string {
	msg := fmt.Sprintf("%s: status %d", e.Provider, e.StatusCode)
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

func (e *ProviderError) Unwrap() error { return e.Err }

// ErrEmptyContent marks a response with no usable text.
var ErrEmptyContent = errors.New("model returned empty content")

// Excerpt caps s for logs and error payloads.
func Excerpt(s string, limit int) string {
	if limit <= 0 || len(s) <= limit {
		return s
	}
	cut := limit
	// keep the cut on a rune boundary
	for cut > 0 && !isRuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}

func isRuneStart(b byte) bool { return b&0xC0 != 0x80 }
