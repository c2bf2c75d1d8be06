package registration

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrIncompleteSubmission is reported by rejected submits: at least one
	// required field was empty.
	ErrIncompleteSubmission = errors.New("registration: required fields missing")
	// ErrUnknownField is returned when a wire field name does not map to a
	// known scalar or row attribute.
	ErrUnknownField = errors.New("registration: unknown field")
)

// CourseRow is a single course entry. Credits are kept as raw text and never
// parsed.
type CourseRow struct {
	CourseName string `json:"courseName"`
	Date       string `json:"date"`
	Credits    string `json:"credits"`
	Instructor string `json:"instructor"`
}

// Form is an immutable snapshot of the registration form. Rows always holds
// at least one entry and preserves entry order.
type Form struct {
	Name  string      `json:"name"`
	Email string      `json:"email"`
	Rows  []CourseRow `json:"courses"`
}

// NewForm returns the initial form: empty scalars and one blank row.
func NewForm() Form {
	return Form{Rows: []CourseRow{{}}}
}

// Len reports the number of course rows.
func (f Form) Len() int {
	return len(f.Rows)
}

// Clone returns a deep copy that shares no backing storage with f.
func (f Form) Clone() Form {
	out := f
	out.Rows = append([]CourseRow(nil), f.Rows...)
	return out
}

// ScalarField identifies one of the single-valued form fields.
type ScalarField int

const (
	FieldName ScalarField = iota + 1
	FieldEmail
)

// RowField identifies one attribute of a course row.
type RowField int

const (
	FieldCourseName RowField = iota + 1
	FieldDate
	FieldCredits
	FieldInstructor
)

// RowFields lists the row attributes in display order.
var RowFields = []RowField{FieldCourseName, FieldDate, FieldCredits, FieldInstructor}

func (f ScalarField) String() string {
	switch f {
	case FieldName:
		return "name"
	case FieldEmail:
		return "email"
	default:
		return fmt.Sprintf("ScalarField(%d)", int(f))
	}
}

func (f RowField) valid() bool {
	return f >= FieldCourseName && f <= FieldInstructor
}

func (f RowField) String() string {
	switch f {
	case FieldCourseName:
		return "courseName"
	case FieldDate:
		return "date"
	case FieldCredits:
		return "credits"
	case FieldInstructor:
		return "instructor"
	default:
		return fmt.Sprintf("RowField(%d)", int(f))
	}
}

// ParseScalarField maps a wire name ("name", "email") to its ScalarField.
func ParseScalarField(raw string) (ScalarField, error) {
	switch strings.TrimSpace(raw) {
	case "name":
		return FieldName, nil
	case "email":
		return FieldEmail, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownField, raw)
	}
}

// ParseRowField maps a wire name ("courseName", "date", "credits",
// "instructor") to its RowField.
func ParseRowField(raw string) (RowField, error) {
	for _, field := range RowFields {
		if field.String() == strings.TrimSpace(raw) {
			return field, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownField, raw)
}

// Value returns the attribute of row identified by field.
func (r CourseRow) Value(field RowField) string {
	switch field {
	case FieldCourseName:
		return r.CourseName
	case FieldDate:
		return r.Date
	case FieldCredits:
		return r.Credits
	case FieldInstructor:
		return r.Instructor
	default:
		panic(fmt.Sprintf("registration: unknown row field %v", field))
	}
}

func (r CourseRow) with(field RowField, value string) CourseRow {
	switch field {
	case FieldCourseName:
		r.CourseName = value
	case FieldDate:
		r.Date = value
	case FieldCredits:
		r.Credits = value
	case FieldInstructor:
		r.Instructor = value
	default:
		panic(fmt.Sprintf("registration: unknown row field %v", field))
	}
	return r
}

// RowPath returns the dotted path used for a row attribute, e.g.
// "courses.1.credits".
func RowPath(row int, field RowField) string {
	return fmt.Sprintf("courses.%d.%s", row, field)
}
