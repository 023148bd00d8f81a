package console

import (
	"context"

	rsvpdomain "wedding-rsvp/internal/domain/rsvp"
)

// Editor edits one cached record. Save replaces name, email, primary dietary
// note and the whole guest list.
type Editor struct {
	Form

	dash *Dashboard
	id   string
	open bool
}

func (e *Editor) ID() string {
	return e.id
}

func (e *Editor) Open() bool {
	return e.open
}

// CanSave is false while any guest row has a blank name.
func (e *Editor) CanSave() bool {
	return !e.HasBlankGuest()
}

// Save issues one update. On success the cached record is patched in place
// and the editor closes; on failure it stays open and the cache is untouched.
func (e *Editor) Save(ctx context.Context) error {
	if !e.open {
		return ErrEditorClosed
	}
	if !e.CanSave() {
		return ErrBlankGuestName
	}

	updated, err := e.dash.store.Update(ctx, rsvpdomain.UpdateInput{
		ID:             e.id,
		Input:          e.Input(),
		ReplaceDietary: true,
	})
	if err != nil {
		e.dash.log.InternalError("console.editor: update rsvp failed", err, "rsvp_id", e.id)
		return err
	}

	e.dash.replace(*updated)
	e.open = false
	return nil
}

func (e *Editor) Cancel() {
	e.open = false
}
