package handler

import (
	"wedding-rsvp/internal/transport/httpserver/handler/common"
	"wedding-rsvp/internal/transport/httpserver/handler/rsvps"
)

type Handlers struct {
	Common *common.Handlers
	RSVPs  *rsvps.Handlers
}

func New(common *common.Handlers, rsvps *rsvps.Handlers) *Handlers {
	return &Handlers{
		Common: common,
		RSVPs:  rsvps,
	}
}
