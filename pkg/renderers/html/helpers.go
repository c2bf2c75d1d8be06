package html

import (
	"strconv"
	"strings"

	"github.com/goliatone/go-courseform/pkg/registration"
)

// controlName is the form input name posted back to the server, e.g.
// "courses[2][credits]".
func controlName(row int, field registration.RowField) string {
	return "courses[" + strconv.Itoa(row) + "][" + field.String() + "]"
}

func controlID(path string) string {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return ""
	}
	return "cf-" + strings.ReplaceAll(trimmed, ".", "-")
}

// inputType picks the HTML input type for a row attribute. Types only
// affect browser widgets; the server never validates shape.
func inputType(field registration.RowField) string {
	switch field {
	case registration.FieldDate:
		return "date"
	case registration.FieldCredits:
		return "number"
	default:
		return "text"
	}
}
