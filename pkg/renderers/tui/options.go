package tui

import (
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-courseform/pkg/config"
)

// OutputFormat controls how a finished registration is serialized.
type OutputFormat string

const (
	// OutputFormatJSON emits the form and summary as application/json.
	OutputFormatJSON OutputFormat = "json"
	// OutputFormatPrettyText emits the summary sentence.
	OutputFormatPrettyText OutputFormat = "pretty"
)

// ParseOutputFormat accepts "json" or "pretty" (case-insensitive).
func ParseOutputFormat(raw string) (OutputFormat, error) {
	switch OutputFormat(strings.ToLower(strings.TrimSpace(raw))) {
	case OutputFormatJSON:
		return OutputFormatJSON, nil
	case OutputFormatPrettyText, "":
		return OutputFormatPrettyText, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownOutputFormat, raw)
	}
}

// Theme captures optional formatting hints the driver can apply when printing
// messages. Keep minimal to avoid coupling session logic to ANSI specifics.
type Theme struct {
	PromptPrefix string
	InfoPrefix   string
	ErrorPrefix  string
}

// Option configures the TUI renderer.
type Option func(*Renderer)

// WithPromptDriver overrides the prompt driver used by the renderer.
func WithPromptDriver(driver PromptDriver) Option {
	return func(r *Renderer) {
		if driver != nil {
			r.driver = driver
		}
	}
}

// WithOutputFormat selects the output serialization format.
func WithOutputFormat(format OutputFormat) Option {
	return func(r *Renderer) {
		if format != "" {
			r.outputFormat = format
		}
	}
}

// WithOutput sets where the survey driver prints notices. Ignored when a
// custom driver is supplied.
func WithOutput(out io.Writer) Option {
	return func(r *Renderer) {
		if out != nil {
			r.out = out
		}
	}
}

// WithLabels overrides the prompt captions.
func WithLabels(labels config.Labels) Option {
	return func(r *Renderer) {
		r.labels = labels
	}
}

// WithTheme applies optional message prefixes.
func WithTheme(theme Theme) Option {
	return func(r *Renderer) {
		r.theme = theme
	}
}

// WithLogger attaches a logger for session events.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Renderer) {
		if logger != nil {
			r.logger = logger
		}
	}
}
