// Package html renders the course registration form as a server-side HTML
// page using the pongo2 template engine.
package html

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/goliatone/go-courseform/pkg/registration"
	"github.com/goliatone/go-courseform/pkg/render"
	rendertemplate "github.com/goliatone/go-courseform/pkg/render/template"
	"github.com/goliatone/go-courseform/pkg/render/template/pongo"
)

const (
	pageTemplate = "form.tmpl"
	// acknowledgeLabel closes the rejection notice.
	acknowledgeLabel = "Aceptar"
)

type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateRenderer rendertemplate.TemplateRenderer
	stylesheetURL    string
}

// WithTemplatesFS supplies an alternate template bundle via fs.FS.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		cfg.templateFS = os.DirFS(path)
	}
}

// WithTemplateRenderer injects a custom template renderer implementation.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithStylesheetURL links a stylesheet when the theme does not provide one.
func WithStylesheetURL(url string) Option {
	return func(cfg *config) {
		cfg.stylesheetURL = strings.TrimSpace(url)
	}
}

type Renderer struct {
	templates     rendertemplate.TemplateRenderer
	stylesheetURL string
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the HTML renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{templateFS: TemplatesFS()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}

	renderer := cfg.templateRenderer
	if renderer == nil {
		engine, err := pongo.New(
			pongo.WithFS(cfg.templateFS),
			pongo.WithExtension(".tmpl"),
		)
		if err != nil {
			return nil, fmt.Errorf("html renderer: configure template renderer: %w", err)
		}
		renderer = engine
	}

	return &Renderer{templates: renderer, stylesheetURL: cfg.stylesheetURL}, nil
}

func (r *Renderer) Name() string {
	return "html"
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

func (r *Renderer) Render(ctx context.Context, view render.View, options render.RenderOptions) ([]byte, error) {
	if r.templates == nil {
		return nil, errors.New("html renderer: template renderer is nil")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result, err := r.templates.RenderTemplate(pageTemplate, map[string]any{
		"page": r.buildPage(view, options),
	})
	if err != nil {
		return nil, fmt.Errorf("html renderer: render template: %w", err)
	}
	return []byte(result), nil
}

type control struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Type     string   `json:"type"`
	Label    string   `json:"label"`
	Value    string   `json:"value"`
	Required bool     `json:"required"`
	Invalid  bool     `json:"invalid"`
	Errors   []string `json:"errors,omitempty"`
}

type row struct {
	Index    int       `json:"index"`
	Controls []control `json:"controls"`
}

type page struct {
	Title       string               `json:"title"`
	TitleText   string               `json:"titleText"`
	Action      string               `json:"action"`
	Status      string               `json:"status"`
	Stylesheet  string               `json:"stylesheet,omitempty"`
	ThemeName   string               `json:"themeName,omitempty"`
	Variant     string               `json:"variant,omitempty"`
	CSSVars     []render.CSSVar      `json:"cssVars,omitempty"`
	Scalars     []control            `json:"scalars"`
	CoursesText string               `json:"coursesText"`
	Rows        []row                `json:"rows"`
	Hidden      []render.HiddenField `json:"hidden,omitempty"`
	AddRow      string               `json:"addRow"`
	Submit      string               `json:"submit"`
	Notice      string               `json:"notice,omitempty"`
	Acknowledge string               `json:"acknowledge"`
	FormErrors  []string             `json:"formErrors,omitempty"`
	Summary     string               `json:"summary,omitempty"`
	Classes     map[string]string    `json:"classes"`
}

func (r *Renderer) buildPage(view render.View, options render.RenderOptions) page {
	labels := options.LabelsOrDefault()
	form := view.Form

	p := page{
		Title:       sanitizeLabel(labels.Title),
		TitleText:   plainText(labels.Title),
		Action:      options.Action,
		Status:      string(view.Status),
		Stylesheet:  r.stylesheetURL,
		CoursesText: sanitizeLabel(labels.Courses),
		AddRow:      sanitizeLabel(labels.AddRow),
		Submit:      sanitizeLabel(labels.Submit),
		Notice:      strings.TrimSpace(options.Notice),
		Acknowledge: acknowledgeLabel,
		FormErrors:  options.FormErrors,
		Summary:     view.Summary,
		Classes: map[string]string{
			"form":    string(ClassForm),
			"field":   string(ClassField),
			"row":     string(ClassRow),
			"actions": string(ClassActions),
			"errors":  string(ClassErrors),
			"notice":  string(ClassNotice),
			"summary": string(ClassSummary),
		},
	}

	if t := options.Theme; t != nil {
		p.ThemeName = t.Name
		p.Variant = t.Variant
		p.CSSVars = t.SortedCSSVars()
		if t.AssetURL != nil {
			if url := t.AssetURL("stylesheet"); url != "" {
				p.Stylesheet = url
			}
		}
	}

	p.Scalars = []control{
		newControl("name", "name", "text", labels.Name, form.Name, options.Errors),
		newControl("email", "email", "email", labels.Email, form.Email, options.Errors),
	}

	rowLabels := map[registration.RowField]string{
		registration.FieldCourseName: labels.CourseName,
		registration.FieldDate:       labels.Date,
		registration.FieldCredits:    labels.Credits,
		registration.FieldInstructor: labels.Instructor,
	}
	p.Rows = make([]row, 0, form.Len())
	for i, course := range form.Rows {
		controls := make([]control, 0, len(registration.RowFields))
		for _, field := range registration.RowFields {
			controls = append(controls, newControl(
				registration.RowPath(i, field),
				controlName(i, field),
				inputType(field),
				rowLabels[field],
				course.Value(field),
				options.Errors,
			))
		}
		p.Rows = append(p.Rows, row{Index: i, Controls: controls})
	}

	hidden := render.MergeHiddenFields(options.Hidden, render.RowCountField(form.Len()))
	p.Hidden = render.SortedHiddenFields(hidden)
	return p
}

func newControl(path, name, kind, label, value string, errs map[string][]string) control {
	messages := errs[path]
	return control{
		ID:       controlID(path),
		Name:     name,
		Type:     kind,
		Label:    sanitizeLabel(label),
		Value:    value,
		Required: true,
		Invalid:  len(messages) > 0,
		Errors:   messages,
	}
}
