package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"auto_slide_deck_generator/deck"
	"auto_slide_deck_generator/generator"
	"auto_slide_deck_generator/render"
	"auto_slide_deck_generator/theme"
)

const downloadPrefix = "/api/decks/"

// deckRequest accepts "topic" as an alias of "text".
type deckRequest struct {
	Text      string `json:"text"`
	Topic     string `json:"topic"`
	Tone      string `json:"tone"`
	NumSlides int    `json:"num_slides"`
}

func (r deckRequest) spec() generator.Spec {
	text := r.Text
	if strings.TrimSpace(text) == "" {
		text = r.Topic
	}
	return generator.Spec{Text: text, Tone: r.Tone, NumSlides: r.NumSlides}
}

type deckResponse struct {
	RequestID   string `json:"request_id"`
	Message     string `json:"message"`
	FileName    string `json:"file_name"`
	DownloadURL string `json:"download_url"`
	Theme       string `json:"theme"`
	SlideCount  int    `json:"slide_count"`
}

func (s *Server) handleRoot(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"message": "Slide deck generator is running. POST /api/decks to create a presentation.",
	})
}

func (s *Server) handleHealth(c echo.Context) error {
	llm := "ready"
	if s.decks.Available() != nil {
		llm = "unavailable"
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok", "llm": llm})
}

func (s *Server) handleThemes(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{"themes": theme.All()})
}

func (s *Server) handleCreate(c echo.Context) error {
	spec, err := s.bindSpec(c)
	if err != nil {
		return err
	}
	ctx, cancel := s.requestContext(c)
	defer cancel()

	res, err := s.decks.BuildFile(ctx, spec)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, deckResponse{
		RequestID:   c.Response().Header().Get(echo.HeaderXRequestID),
		Message:     "Presentation generated successfully",
		FileName:    res.FileName,
		DownloadURL: downloadPrefix + res.FileName,
		Theme:       res.Theme.Name,
		SlideCount:  res.SlideCount(),
	})
}

func (s *Server) handleStream(c echo.Context) error {
	spec, err := s.bindSpec(c)
	if err != nil {
		return err
	}
	ctx, cancel := s.requestContext(c)
	defer cancel()

	res, err := s.decks.Build(ctx, spec)
	if err != nil {
		return mapError(err)
	}
	h := c.Response().Header()
	h.Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", deck.BaseName(res.Outline)+render.Extension))
	h.Set("X-Deck-Theme", res.Theme.Name)
	return c.Blob(http.StatusOK, render.ContentType, res.Data)
}

func (s *Server) handleDownload(c echo.Context) error {
	name := c.Param("name")
	path, err := s.files.Path(name)
	if err != nil {
		return mapError(err)
	}
	c.Response().Header().Set(echo.HeaderContentType, render.ContentType)
	return c.Attachment(path, name)
}

// bindSpec decodes the body and fails fast with 503 when no model is
// configured, before any input checks run.
func (s *Server) bindSpec(c echo.Context) (generator.Spec, error) {
	if err := s.decks.Available(); err != nil {
		return generator.Spec{}, mapError(err)
	}
	var req deckRequest
	if err := c.Bind(&req); err != nil {
		return generator.Spec{}, &apiError{Status: http.StatusBadRequest, Code: "invalid_input", Message: "request body must be JSON", Err: err}
	}
	return req.spec(), nil
}

func (s *Server) requestContext(c echo.Context) (context.Context, context.CancelFunc) {
	ctx := c.Request().Context()
	if s.cfg.RequestTimeout > 0 {
		return context.WithTimeout(ctx, s.cfg.RequestTimeout)
	}
	return context.WithCancel(ctx)
}
