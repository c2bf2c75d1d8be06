package registration

import "strings"

// BuildSummary renders the confirmation message for a valid form. The output
// format is consumed verbatim by the presentation layers:
//
//	Gracias, {name}. Has cursado las siguientes materias: {row}, {row}.
//
// where each row is "{course} (Créditos: {credits}, Docente: {instructor}, Fecha: {date})".
func BuildSummary(form Form) string {
	details := make([]string, 0, len(form.Rows))
	for _, row := range form.Rows {
		details = append(details, describeRow(row))
	}

	var b strings.Builder
	b.WriteString("Gracias, ")
	b.WriteString(form.Name)
	b.WriteString(". Has cursado las siguientes materias: ")
	b.WriteString(strings.Join(details, ", "))
	b.WriteString(".")
	return b.String()
}

func describeRow(row CourseRow) string {
	var b strings.Builder
	b.WriteString(row.CourseName)
	b.WriteString(" (Créditos: ")
	b.WriteString(row.Credits)
	b.WriteString(", Docente: ")
	b.WriteString(row.Instructor)
	b.WriteString(", Fecha: ")
	b.WriteString(row.Date)
	b.WriteString(")")
	return b.String()
}
