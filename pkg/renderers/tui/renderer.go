package tui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"

	"github.com/goliatone/go-courseform/pkg/config"
	"github.com/goliatone/go-courseform/pkg/registration"
	"github.com/goliatone/go-courseform/pkg/render"
)

// Renderer implements render.Renderer for terminal sessions. Render writes a
// finished (or in-progress) registration in the configured output format;
// Run drives the interactive prompt loop.
type Renderer struct {
	driver       PromptDriver
	outputFormat OutputFormat
	out          io.Writer
	labels       config.Labels
	theme        Theme
	logger       *zap.Logger
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs a TUI renderer with defaults (survey driver, pretty output).
func New(options ...Option) (*Renderer, error) {
	r := &Renderer{
		outputFormat: OutputFormatPrettyText,
		out:          os.Stdout,
		logger:       zap.NewNop(),
	}

	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}

	switch r.outputFormat {
	case OutputFormatJSON, OutputFormatPrettyText:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownOutputFormat, r.outputFormat)
	}

	if r.driver == nil {
		r.driver = newSurveyDriver(r.out)
	}
	r.labels = render.RenderOptions{Labels: r.labels}.LabelsOrDefault()
	return r, nil
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return "tui"
}

// ContentType reports the serialization format used by Render.
func (r *Renderer) ContentType() string {
	if r.outputFormat == OutputFormatJSON {
		return "application/json"
	}
	return "text/plain; charset=utf-8"
}

type jsonPayload struct {
	Status  registration.Status `json:"status"`
	Form    registration.Form   `json:"form"`
	Summary string              `json:"summary,omitempty"`
	Missing []string            `json:"missing,omitempty"`
}

// Render serializes view. Pretty output is the summary sentence when one
// exists, otherwise a field listing.
func (r *Renderer) Render(ctx context.Context, view render.View, options render.RenderOptions) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("tui: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if r.outputFormat == OutputFormatJSON {
		payload := jsonPayload{
			Status:  view.Status,
			Form:    view.Form,
			Summary: view.Summary,
		}
		if !view.Result.Valid {
			payload.Missing = view.Result.Missing
		}
		out, err := json.MarshalIndent(payload, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("tui: encode json: %w", err)
		}
		return append(out, '\n'), nil
	}

	if view.Summary != "" {
		return []byte(view.Summary + "\n"), nil
	}
	labels := r.labels
	if options.Labels != (config.Labels{}) {
		labels = options.LabelsOrDefault()
	}
	return []byte(listing(view.Form, labels)), nil
}

func listing(form registration.Form, labels config.Labels) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", plainLabel(labels.Name), form.Name)
	fmt.Fprintf(&b, "%s %s\n", plainLabel(labels.Email), form.Email)
	fmt.Fprintf(&b, "%s\n", plainLabel(labels.Courses))
	for i, row := range form.Rows {
		fmt.Fprintf(&b, "  %d. %s %s\n", i+1, plainLabel(labels.CourseName), row.CourseName)
		fmt.Fprintf(&b, "     %s %s\n", plainLabel(labels.Date), row.Date)
		fmt.Fprintf(&b, "     %s %s\n", plainLabel(labels.Credits), row.Credits)
		fmt.Fprintf(&b, "     %s %s\n", plainLabel(labels.Instructor), row.Instructor)
	}
	return b.String()
}

var (
	stripPolicyOnce sync.Once
	stripPolicy     *bluemonday.Policy
)

// plainLabel removes any markup a configured caption carries; terminals show
// text only.
func plainLabel(raw string) string {
	stripPolicyOnce.Do(func() {
		stripPolicy = bluemonday.StrictPolicy()
	})
	return strings.TrimSpace(html.UnescapeString(stripPolicy.Sanitize(raw)))
}
