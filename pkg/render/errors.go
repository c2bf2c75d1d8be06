package render

import (
	"strings"

	"github.com/goliatone/go-courseform/pkg/registration"
)

// FieldErrors turns the advisory Missing list of a rejected result into
// per-path messages renderers can attach to controls. Valid results yield nil.
func FieldErrors(result registration.Result, message string) map[string][]string {
	if result.Valid || len(result.Missing) == 0 {
		return nil
	}
	message = strings.TrimSpace(message)
	if message == "" {
		message = result.Reason
	}
	out := make(map[string][]string, len(result.Missing))
	for _, path := range result.Missing {
		path = strings.TrimSpace(path)
		if path == "" {
			continue
		}
		out[path] = normalizeMessages(append(out[path], message))
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// MergeFormErrors concatenates and normalises multiple form-level error
// slices, trimming whitespace and removing duplicates while preserving order.
func MergeFormErrors(existing []string, extras ...string) []string {
	combined := make([]string, 0, len(existing)+len(extras))
	combined = append(combined, existing...)
	combined = append(combined, extras...)
	return normalizeMessages(combined)
}

func normalizeMessages(messages []string) []string {
	if len(messages) == 0 {
		return nil
	}

	out := make([]string, 0, len(messages))
	seen := make(map[string]struct{}, len(messages))

	for _, message := range messages {
		trimmed := strings.TrimSpace(message)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}

	if len(out) == 0 {
		return nil
	}
	return out
}
