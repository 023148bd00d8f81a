package console

import "errors"

var (
	ErrBlankGuestName   = errors.New("every guest needs a name")
	ErrAlreadySubmitted = errors.New("rsvp already submitted")
	ErrSubmitFailed     = errors.New("rsvp submission failed")
	ErrUnauthorized     = errors.New("not signed in")
	ErrEditorClosed     = errors.New("editor is closed")
	ErrPromptClosed     = errors.New("delete prompt is closed")
	ErrNotLoaded        = errors.New("records not loaded")
)
