package tui

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("tui: aborted")
	// ErrQuit is returned by Session.Run when the user leaves without a
	// successful submit.
	ErrQuit = errors.New("tui: quit without submitting")
	// ErrUnknownOutputFormat rejects output formats other than json and
	// pretty.
	ErrUnknownOutputFormat = errors.New("tui: unknown output format")
)
