package render

import (
	"context"

	"github.com/goliatone/go-courseform/pkg/registration"
)

// Renderer converts a form view into a byte representation (HTML, text,
// JSON).
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, view View, options RenderOptions) ([]byte, error)
}

// View is the read-only state a renderer draws: the current snapshot plus the
// outcome of the last submit.
type View struct {
	Form    registration.Form   `json:"form"`
	Status  registration.Status `json:"status"`
	Summary string              `json:"summary,omitempty"`
	Result  registration.Result `json:"result"`
}

// ViewOf captures the current state of component.
func ViewOf(component *registration.Component) View {
	if component == nil {
		return View{Form: registration.NewForm(), Status: registration.StatusUnsubmitted}
	}
	return View{
		Form:    component.Snapshot(),
		Status:  component.Status(),
		Summary: component.Summary(),
		Result:  component.LastResult(),
	}
}
