// Package registration implements the course registration form: a field
// store holding the person's name and email plus an ordered list of course
// rows, a row editor over it, a completeness validator, and the summary
// builder that renders the confirmation message on a successful submit.
//
// State is published as immutable Form snapshots. The store never writes
// through a slice it has already handed out, so a snapshot observed by a
// renderer stays valid after later edits. Presentation layers (HTML, TUI)
// subscribe to the store and redraw; they supply the Notifier used to surface
// the blocking notice when a submit is rejected.
package registration
