package html

// ChromeClass is a typed identifier for the semantic CSS classes emitted by
// the page template.
type ChromeClass string

const (
	ClassForm    ChromeClass = "courseform-form"
	ClassField   ChromeClass = "courseform-field"
	ClassRow     ChromeClass = "courseform-row"
	ClassActions ChromeClass = "courseform-actions"
	ClassErrors  ChromeClass = "courseform-errors"
	ClassNotice  ChromeClass = "courseform-notice"
	ClassSummary ChromeClass = "courseform-summary"
)
