package rsvp

import "context"

// Repository is the Record Store. Implementations assign ID and CreatedAt on
// Create and return List ordered by CreatedAt, newest first.
type Repository interface {
	Transaction(ctx context.Context, fn func(Repository) error) error
	Create(ctx context.Context, record *RSVP) error
	List(ctx context.Context) ([]RSVP, error)
	GetByID(ctx context.Context, id string) (*RSVP, error)
	Update(ctx context.Context, record *RSVP) error
	Delete(ctx context.Context, id string) (bool, error)
}
