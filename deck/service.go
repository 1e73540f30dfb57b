// Package deck runs one generation request end to end: outline, theme,
// render and, optionally, persistence.
package deck

import (
	"context"
	"errors"
	"log/slog"

	"auto_slide_deck_generator/generator"
	"auto_slide_deck_generator/metrics"
	"auto_slide_deck_generator/render"
	"auto_slide_deck_generator/theme"
)

// ErrEmptyOutline is returned when the model produced no slides and the
// service is configured to reject that instead of rendering a placeholder.
var ErrEmptyOutline = errors.New("model returned an outline without slides")

type OutlineGenerator interface {
	Generate(ctx context.Context, spec generator.Spec) (generator.Outline, error)
}

type Renderer interface {
	Render(ctx context.Context, outline generator.Outline, def theme.Definition) ([]byte, error)
}

type Store interface {
	Save(base string, data []byte) (string, error)
}

// Result is a finished deck.
type Result struct {
	Outline  generator.Outline
	Theme    theme.Definition
	Data     []byte
	FileName string
}

// SlideCount is the number of slides in the document, including the
// placeholder slide of an empty outline.
func (r Result) SlideCount() int {
	if n := len(r.Outline.Slides); n > 0 {
		return n
	}
	return 1
}

type Options struct {
	RejectEmptyOutline bool
	// Unavailable, when set, is returned by every Build call. It carries the
	// startup failure of the model client.
	Unavailable error
	Logger      *slog.Logger
}

type Service struct {
	gen      OutlineGenerator
	renderer Renderer
	store    Store
	opts     Options
	logger   *slog.Logger
}

func NewService(gen OutlineGenerator, renderer Renderer, store Store, opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if gen == nil && opts.Unavailable == nil {
		opts.Unavailable = &generator.ConfigurationError{Reason: "no outline generator configured"}
	}
	return &Service{gen: gen, renderer: renderer, store: store, opts: opts, logger: logger}
}

// Available reports whether generation can be attempted at all.
func (s *Service) Available() error {
	if s.gen == nil {
		return s.opts.Unavailable
	}
	return nil
}

// Build generates the deck in memory.
func (s *Service) Build(ctx context.Context, spec generator.Spec) (Result, error) {
	res, err := s.build(ctx, spec)
	metrics.RecordGeneration(Outcome(err))
	return res, err
}

// BuildFile generates the deck and stores it; Result.FileName is set.
func (s *Service) BuildFile(ctx context.Context, spec generator.Spec) (Result, error) {
	res, err := s.build(ctx, spec)
	if err == nil {
		res.FileName, err = s.store.Save(BaseName(res.Outline), res.Data)
	}
	metrics.RecordGeneration(Outcome(err))
	if err != nil {
		return Result{}, err
	}
	return res, nil
}

func (s *Service) build(ctx context.Context, spec generator.Spec) (Result, error) {
	if err := s.Available(); err != nil {
		return Result{}, err
	}
	logger := s.logger

	outline, err := s.gen.Generate(ctx, spec)
	if err != nil {
		logger.WarnContext(ctx, "outline generation failed", "err", err)
		return Result{}, err
	}
	if len(outline.Slides) == 0 {
		if s.opts.RejectEmptyOutline {
			return Result{}, ErrEmptyOutline
		}
		logger.WarnContext(ctx, "model returned no slides, rendering placeholder deck")
	}

	def := theme.Select(outline.ThemeHints)
	metrics.RecordTheme(def.Name)
	logger.InfoContext(ctx, "theme selected", "theme", def.Name, "hints", outline.ThemeHints, "slides", len(outline.Slides))

	data, err := s.renderer.Render(ctx, outline, def)
	if err != nil {
		logger.ErrorContext(ctx, "render failed", "err", err)
		return Result{}, err
	}
	return Result{Outline: outline, Theme: def, Data: data}, nil
}

// BaseName derives a file name stem from the deck title.
func BaseName(outline generator.Outline) string {
	if cover, ok := outline.Cover(); ok {
		return render.Slug(cover.Title)
	}
	return render.Slug("")
}

// Outcome labels err for metrics and logs.
func Outcome(err error) string {
	var (
		cfgErr       *generator.ConfigurationError
		inputErr     *generator.InputValidationError
		upstreamErr  *generator.UpstreamUnavailableError
		malformedErr *generator.MalformedOutlineError
		renderErr    *render.RenderError
	)
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, context.Canceled):
		return "cancelled"
	case errors.As(err, &cfgErr):
		return "unconfigured"
	case errors.As(err, &inputErr):
		return "invalid_input"
	case errors.As(err, &upstreamErr):
		switch {
		case upstreamErr.Exhausted:
			return "upstream_exhausted"
		case upstreamErr.Reason == generator.ReasonCancelled && errors.Is(err, context.DeadlineExceeded):
			return "timeout"
		}
		return "upstream_failed"
	case errors.As(err, &malformedErr):
		return "malformed_outline"
	case errors.Is(err, ErrEmptyOutline):
		return "empty_outline"
	case errors.As(err, &renderErr):
		return "render_failed"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	default:
		return "error"
	}
}
