package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"auto_slide_deck_generator/deck"
	"auto_slide_deck_generator/generator"
	"auto_slide_deck_generator/render"
)

// apiError is the JSON error envelope: {"error": {"code": ..., "message": ...}}.
type apiError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *apiError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Code, e.Err)
	}
	return e.Code + ": " + e.Message
}

func (e *apiError) Unwrap() error { return e.Err }

type errorBody struct {
	Error *apiError `json:"error"`
}

// mapError converts a generation failure into its HTTP form.
func mapError(err error) *apiError {
	var (
		ae          *apiError
		cfgErr      *generator.ConfigurationError
		inputErr    *generator.InputValidationError
		upstreamErr *generator.UpstreamUnavailableError
		malformed   *generator.MalformedOutlineError
		renderErr   *render.RenderError
	)
	switch {
	case errors.As(err, &ae):
		return ae
	case errors.As(err, &cfgErr):
		return &apiError{http.StatusServiceUnavailable, "service_unavailable",
			"AI service is not configured or failed to initialize", err}
	case errors.As(err, &inputErr):
		return &apiError{http.StatusBadRequest, "invalid_input", inputErr.Error(), err}
	case errors.As(err, &upstreamErr):
		switch {
		case upstreamErr.Exhausted:
			return &apiError{http.StatusBadGateway, "upstream_exhausted",
				fmt.Sprintf("model unavailable after %d attempts: %s", upstreamErr.Attempts, upstreamErr.Reason), err}
		case upstreamErr.Reason == generator.ReasonCancelled && errors.Is(err, context.DeadlineExceeded):
			return &apiError{http.StatusGatewayTimeout, "timeout", "generation took too long", err}
		}
		return &apiError{http.StatusBadGateway, "upstream_unavailable", "model request failed: " + upstreamErr.Reason, err}
	case errors.As(err, &malformed):
		return &apiError{http.StatusInternalServerError, "malformed_outline", "model returned an unusable outline", err}
	case errors.Is(err, deck.ErrEmptyOutline):
		return &apiError{http.StatusBadGateway, "empty_outline", err.Error(), err}
	case errors.As(err, &renderErr):
		return &apiError{http.StatusInternalServerError, "render_failed", "presentation could not be built", err}
	case errors.Is(err, context.DeadlineExceeded):
		return &apiError{http.StatusGatewayTimeout, "timeout", "generation took too long", err}
	case errors.Is(err, render.ErrInvalidName):
		return &apiError{http.StatusBadRequest, "invalid_name", "invalid file name", err}
	case errors.Is(err, render.ErrNotFound):
		return &apiError{http.StatusNotFound, "not_found", "file not found or expired", err}
	default:
		return &apiError{http.StatusInternalServerError, "internal_error", "internal error", err}
	}
}

// handleError writes every failure, including echo's own, in the envelope.
func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	var (
		out *apiError
		he  *echo.HTTPError
	)
	switch {
	case errors.As(err, &out):
	case errors.As(err, &he):
		out = &apiError{Status: he.Code, Code: statusCode(he.Code), Message: fmt.Sprint(he.Message)}
	default:
		out = mapError(err)
	}
	if out.Status >= http.StatusInternalServerError {
		s.logger.ErrorContext(c.Request().Context(), "request error", "code", out.Code, "err", err)
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(out.Status)
	} else {
		err = c.JSON(out.Status, errorBody{Error: out})
	}
	if err != nil {
		s.logger.ErrorContext(c.Request().Context(), "write error response", "err", err)
	}
}

// statusCode turns 429 into "too_many_requests".
func statusCode(status int) string {
	text := http.StatusText(status)
	if text == "" {
		return "error"
	}
	return strings.ReplaceAll(strings.ToLower(text), " ", "_")
}
