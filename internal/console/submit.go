package console

import (
	"context"
	"fmt"

	rsvpdomain "wedding-rsvp/internal/domain/rsvp"
	"wedding-rsvp/pkg/logger"
)

// Submitter sends a Form once. After a successful submit it stays in the
// submitted state and refuses further sends. A failed submit leaves the form
// as it was so it can be retried.
type Submitter struct {
	store     Store
	form      *Form
	log       logger.Logger
	submitted *rsvpdomain.RSVP
}

func NewSubmitter(store Store, form *Form, log logger.Logger) *Submitter {
	return &Submitter{store: store, form: form, log: log}
}

func (s *Submitter) Submit(ctx context.Context) (*rsvpdomain.RSVP, error) {
	if s.submitted != nil {
		return nil, ErrAlreadySubmitted
	}
	if err := s.form.ValidateSubmit(); err != nil {
		return nil, err
	}

	record, err := s.store.Insert(ctx, s.form.Input())
	if err != nil {
		s.log.InternalError("console.submit: insert rsvp failed", err)
		return nil, fmt.Errorf("%w: %w", ErrSubmitFailed, err)
	}

	s.submitted = record
	return record, nil
}

func (s *Submitter) Submitted() bool {
	return s.submitted != nil
}

func (s *Submitter) Result() (*rsvpdomain.RSVP, bool) {
	return s.submitted, s.submitted != nil
}
