package rsvps

import (
	rsvpdomain "wedding-rsvp/internal/domain/rsvp"
	"wedding-rsvp/pkg/logger"
)

type Handlers struct {
	RSVPs *rsvpdomain.Service
	log   logger.Logger
}

func New(rsvps *rsvpdomain.Service, log logger.Logger) *Handlers {
	return &Handlers{
		RSVPs: rsvps,
		log:   log,
	}
}
