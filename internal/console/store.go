package console

import (
	"context"

	rsvpdomain "wedding-rsvp/internal/domain/rsvp"
)

// Store is the record access the admin tools and the submission form need.
// DirectStore calls the service in process; HTTPStore goes through the API.
type Store interface {
	Insert(ctx context.Context, input rsvpdomain.Input) (*rsvpdomain.RSVP, error)
	Select(ctx context.Context) ([]rsvpdomain.RSVP, error)
	Update(ctx context.Context, input rsvpdomain.UpdateInput) (*rsvpdomain.RSVP, error)
	Delete(ctx context.Context, id string) error
}

type DirectStore struct {
	rsvps *rsvpdomain.Service
}

func NewDirectStore(rsvps *rsvpdomain.Service) *DirectStore {
	return &DirectStore{rsvps: rsvps}
}

func (s *DirectStore) Insert(ctx context.Context, input rsvpdomain.Input) (*rsvpdomain.RSVP, error) {
	return s.rsvps.Submit(ctx, input)
}

func (s *DirectStore) Select(ctx context.Context) ([]rsvpdomain.RSVP, error) {
	return s.rsvps.List(ctx)
}

func (s *DirectStore) Update(ctx context.Context, input rsvpdomain.UpdateInput) (*rsvpdomain.RSVP, error) {
	return s.rsvps.Update(ctx, input)
}

func (s *DirectStore) Delete(ctx context.Context, id string) error {
	return s.rsvps.Delete(ctx, id)
}
