package render

import "fmt"

// RenderError means the document could not be produced. No partial output is
// ever returned alongside it.
type RenderError struct {
	Stage string
	Err   error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render failed during %s: %v", e.Stage, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }
