package rsvp

import "errors"

var (
	ErrRSVPNotFound = errors.New("rsvp not found")
	ErrInvalidInput = errors.New("invalid rsvp input")
)
