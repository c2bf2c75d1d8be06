// Package courseform is the entry point for embedding the course
// registration form: build a Component, edit it through its store and row
// editor, and render it with the built-in HTML page.
package courseform

import (
	"context"
	"io/fs"

	"github.com/goliatone/go-courseform/pkg/registration"
	"github.com/goliatone/go-courseform/pkg/render"
	"github.com/goliatone/go-courseform/pkg/renderers/html"
)

// Form is an immutable snapshot of the registration form.
type Form = registration.Form

// CourseRow is one course entry.
type CourseRow = registration.CourseRow

// Component owns the form state and the submit lifecycle.
type Component = registration.Component

// RenderOptions describes per-request overrides for renderers.
type RenderOptions = render.RenderOptions

// New creates a component with one blank row.
func New(options ...registration.Option) *Component {
	return registration.New(options...)
}

// RenderHTML draws component with the built-in page template.
func RenderHTML(ctx context.Context, component *Component, options RenderOptions) ([]byte, error) {
	renderer, err := html.New()
	if err != nil {
		return nil, err
	}
	return renderer.Render(ctx, render.ViewOf(component), options)
}

// EmbeddedTemplates exposes the built-in page templates so callers can reuse
// or extend them without importing the renderer package directly.
func EmbeddedTemplates() fs.FS {
	return html.TemplatesFS()
}

// AssetsFS exposes the stylesheet referenced by the default theme.
//
// Typical mount:
//
//	mux.Handle("/assets/",
//	  http.StripPrefix("/assets/",
//	    http.FileServerFS(courseform.AssetsFS()),
//	  ),
//	)
func AssetsFS() fs.FS {
	return html.AssetsFS()
}
