package render

import (
	"context"
	"time"

	"golang.org/x/sync/semaphore"

	"auto_slide_deck_generator/generator"
	"auto_slide_deck_generator/metrics"
	"auto_slide_deck_generator/theme"
)

// Pool bounds how many renders run at once. Rendering is CPU-bound, so
// request goroutines wait on the pool instead of competing for cores.
type Pool struct {
	sem      *semaphore.Weighted
	renderer *Renderer
}

func NewPool(workers int, renderer *Renderer) *Pool {
	if workers < 1 {
		workers = 1
	}
	return &Pool{sem: semaphore.NewWeighted(int64(workers)), renderer: renderer}
}

type renderResult struct {
	data []byte
	err  error
}

// Render waits for a free worker and renders outline. If ctx ends first the
// caller gets ctx.Err() and the finished bytes, if any, are discarded.
func (p *Pool) Render(ctx context.Context, outline generator.Outline, def theme.Definition) ([]byte, error) {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	done := make(chan renderResult, 1)
	go func() {
		defer p.sem.Release(1)
		start := time.Now()
		data, err := p.renderer.Render(outline, def)
		metrics.RecordRender(time.Since(start))
		done <- renderResult{data: data, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-done:
		return res.data, res.err
	}
}
