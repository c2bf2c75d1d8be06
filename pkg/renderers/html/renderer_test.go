package html_test

import (
	"context"
	"io/fs"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-courseform/pkg/config"
	"github.com/goliatone/go-courseform/pkg/registration"
	"github.com/goliatone/go-courseform/pkg/render"
	"github.com/goliatone/go-courseform/pkg/renderers/html"
	"github.com/goliatone/go-courseform/pkg/testsupport"
)

func renderView(t *testing.T, view render.View, options render.RenderOptions) string {
	t.Helper()
	renderer, err := html.New()
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	out, err := renderer.Render(context.Background(), view, options)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	return string(out)
}

func TestRenderer_Contract(t *testing.T) {
	renderer, err := html.New()
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	if renderer.Name() != "html" {
		t.Fatalf("unexpected name %q", renderer.Name())
	}
	if renderer.ContentType() != "text/html; charset=utf-8" {
		t.Fatalf("unexpected content type %q", renderer.ContentType())
	}
}

func TestRenderer_InitialForm(t *testing.T) {
	out := renderView(t, render.ViewOf(registration.New()), render.RenderOptions{})

	for _, want := range []string{
		"<h1>Formulario de Registro</h1>",
		`<label for="cf-name">Nombre:</label>`,
		`<input type="email" id="cf-email" name="email" value="" required>`,
		`name="courses[0][courseName]"`,
		`<input type="date" id="cf-courses-0-date"`,
		`<input type="number" id="cf-courses-0-credits"`,
		`name="courses[0][instructor]"`,
		`<input type="hidden" name="rows" value="1">`,
		`value="add" formnovalidate>Agregar Materia</button>`,
		`value="submit">Enviar</button>`,
		`data-status="unsubmitted"`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "<dialog") || strings.Contains(out, "courseform-summary") {
		t.Fatalf("initial page should have neither notice nor summary:\n%s", out)
	}
}

func TestRenderer_RowsInOrder(t *testing.T) {
	c := registration.New()
	c.Editor().AppendRow()
	c.Editor().AppendRow()
	c.Editor().SetCourseName(2, "Física")

	out := renderView(t, render.ViewOf(c), render.RenderOptions{})
	first := strings.Index(out, `name="courses[0][courseName]"`)
	second := strings.Index(out, `name="courses[1][courseName]"`)
	third := strings.Index(out, `name="courses[2][courseName]" value="Física"`)
	if first < 0 || second < 0 || third < 0 || !(first < second && second < third) {
		t.Fatalf("rows missing or out of order (%d, %d, %d):\n%s", first, second, third, out)
	}
	if !strings.Contains(out, `data-row="3"`) {
		t.Fatalf("expected 1-based row numbers:\n%s", out)
	}
	if !strings.Contains(out, `name="rows" value="3"`) {
		t.Fatalf("row count hidden field not updated:\n%s", out)
	}
}

func TestRenderer_EscapesValues(t *testing.T) {
	c := registration.New()
	c.Store().SetScalarField(registration.FieldName, `<script>alert("x")</script>`)

	out := renderView(t, render.ViewOf(c), render.RenderOptions{})
	if strings.Contains(out, "<script>") {
		t.Fatalf("value was not escaped:\n%s", out)
	}
	if !strings.Contains(out, "&lt;script&gt;") {
		t.Fatalf("expected escaped value:\n%s", out)
	}
}

func TestRenderer_SanitizesLabels(t *testing.T) {
	labels := config.DefaultLabels()
	labels.Name = `<strong>Nombre</strong><img src=x onerror=alert(1)>:`

	out := renderView(t, render.ViewOf(registration.New()), render.RenderOptions{Labels: labels})
	if !strings.Contains(out, "<strong>Nombre</strong>:") {
		t.Fatalf("inline markup dropped:\n%s", out)
	}
	if strings.Contains(out, "<img") || strings.Contains(out, "onerror") {
		t.Fatalf("unsafe markup kept:\n%s", out)
	}
}

func TestRenderer_NoticeAndErrors(t *testing.T) {
	c := registration.New()
	if _, err := c.Submit(context.Background()); err != nil {
		t.Fatalf("submit: %v", err)
	}
	view := render.ViewOf(c)

	out := renderView(t, view, render.RenderOptions{
		Notice: registration.DefaultNoticeMessage,
		Errors: render.FieldErrors(view.Result, "Campo obligatorio"),
	})
	if !strings.Contains(out, "<dialog open") || !strings.Contains(out, "Por favor, completa todos los campos obligatorios.") {
		t.Fatalf("notice missing:\n%s", out)
	}
	if !strings.Contains(out, `id="cf-courses-0-credits" name="courses[0][credits]" value="" required aria-invalid="true"`) {
		t.Fatalf("missing field not flagged:\n%s", out)
	}
	if !strings.Contains(out, "Campo obligatorio") {
		t.Fatalf("inline error missing:\n%s", out)
	}
}

func TestRenderer_Summary(t *testing.T) {
	c := testsupport.FilledComponent(testsupport.CompleteForm())
	if _, err := c.Submit(context.Background()); err != nil {
		t.Fatalf("submit: %v", err)
	}

	out := renderView(t, render.ViewOf(c), render.RenderOptions{})
	want := `<p class="courseform-summary" id="courseform-summary">Gracias, Ana. Has cursado las siguientes materias: Cálculo (Créditos: 4, Docente: Dr. Pérez, Fecha: 2024-01-10).</p>`
	if !strings.Contains(out, want) {
		t.Fatalf("summary missing:\n%s", out)
	}
}

func TestRenderer_Theme(t *testing.T) {
	selector, err := render.NewThemeSelector()
	if err != nil {
		t.Fatalf("selector: %v", err)
	}
	resolved, err := render.ResolveTheme(selector, config.ThemeConfig{Name: "taller", Variant: "dark"})
	if err != nil {
		t.Fatalf("resolve theme: %v", err)
	}

	out := renderView(t, render.ViewOf(registration.New()), render.RenderOptions{
		Theme:  resolved,
		Hidden: map[string]string{"session": "abc"},
		Action: "/",
	})
	for _, want := range []string{
		`data-variant="dark"`,
		`<link rel="stylesheet" href="/assets/courseform.css">`,
		"--surface: #111827;",
		`<input type="hidden" name="session" value="abc">`,
		`action="/"`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderer_CustomTemplates(t *testing.T) {
	files := fstest.MapFS{
		"form.tmpl": {Data: []byte(`{{ page.status }}:{% for r in page.rows %}[{{ r.index|rownumber }}]{% endfor %}`)},
	}
	renderer, err := html.New(html.WithTemplatesFS(files))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}

	c := registration.New()
	c.Editor().AppendRow()
	out, err := renderer.Render(context.Background(), render.ViewOf(c), render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got := string(out); got != "unsubmitted:[1][2]" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestRenderer_HonoursCancelledContext(t *testing.T) {
	renderer, err := html.New()
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := renderer.Render(ctx, render.ViewOf(nil), render.RenderOptions{}); err == nil {
		t.Fatalf("expected context error")
	}
}

func TestAssetsFS_ContainsStylesheet(t *testing.T) {
	data, err := fs.ReadFile(html.AssetsFS(), html.StylesheetName)
	if err != nil {
		t.Fatalf("read stylesheet: %v", err)
	}
	if !strings.Contains(string(data), ".courseform-field") {
		t.Fatalf("unexpected stylesheet contents")
	}
}
