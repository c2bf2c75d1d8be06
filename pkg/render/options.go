package render

import "github.com/goliatone/go-courseform/pkg/config"

// RenderOptions describe per-request data renderers use to customise output
// without touching the form state.
type RenderOptions struct {
	// Labels holds captions for every control. Zero values fall back to
	// config.DefaultLabels.
	Labels config.Labels
	// Notice is the blocking message shown after a rejected submit. Empty
	// means no notice is pending.
	Notice string
	// Errors maps dotted field paths (e.g. "courses.0.credits") to messages
	// the renderer can surface inline.
	Errors map[string][]string
	// FormErrors carries messages not bound to a single field.
	FormErrors []string
	// Hidden adds hidden inputs (session, csrf) to HTML output.
	Hidden map[string]string
	// Action overrides the form action URL.
	Action string
	// Theme carries resolved tokens for styling.
	Theme *ThemeConfig
}

// ThemeConfig is the resolved theme handed to renderers.
type ThemeConfig struct {
	Name    string
	Variant string
	Tokens  map[string]string
	CSSVars map[string]string
	// AssetURL maps an asset key (e.g. "stylesheet") to its public URL.
	// Unknown keys resolve to "".
	AssetURL func(key string) string
}

// LabelsOrDefault fills empty captions from config.DefaultLabels.
func (o RenderOptions) LabelsOrDefault() config.Labels {
	defaults := config.DefaultLabels()
	labels := o.Labels
	pick := func(value, fallback string) string {
		if value == "" {
			return fallback
		}
		return value
	}
	labels.Title = pick(labels.Title, defaults.Title)
	labels.Name = pick(labels.Name, defaults.Name)
	labels.Email = pick(labels.Email, defaults.Email)
	labels.Courses = pick(labels.Courses, defaults.Courses)
	labels.CourseName = pick(labels.CourseName, defaults.CourseName)
	labels.Date = pick(labels.Date, defaults.Date)
	labels.Credits = pick(labels.Credits, defaults.Credits)
	labels.Instructor = pick(labels.Instructor, defaults.Instructor)
	labels.AddRow = pick(labels.AddRow, defaults.AddRow)
	labels.Submit = pick(labels.Submit, defaults.Submit)
	return labels
}
