package console

import (
	"context"
	"fmt"
)

// DeletePrompt asks for confirmation before removing one record.
type DeletePrompt struct {
	dash *Dashboard
	id   string
	name string
	open bool
}

func (p *DeletePrompt) ID() string {
	return p.id
}

// Name is the display name the prompt asks about.
func (p *DeletePrompt) Name() string {
	return p.name
}

func (p *DeletePrompt) Open() bool {
	return p.open
}

// Confirm issues one delete and closes the prompt whatever the outcome. Only
// a successful delete removes the record from the cache; a failure is logged
// and returned.
func (p *DeletePrompt) Confirm(ctx context.Context) error {
	if !p.open {
		return ErrPromptClosed
	}
	p.open = false

	if err := p.dash.store.Delete(ctx, p.id); err != nil {
		p.dash.log.InternalError("console.delete: delete rsvp failed", err, "rsvp_id", p.id)
		return fmt.Errorf("delete rsvp %s: %w", p.id, err)
	}

	p.dash.remove(p.id)
	return nil
}

func (p *DeletePrompt) Cancel() {
	p.open = false
}
