package rsvp

import (
	"time"

	"gorm.io/datatypes"
)

// Guest is an additional attendee embedded in an RSVP. It is stored inside the
// guests JSON column, never as its own row.
type Guest struct {
	Name                string  `json:"name" validate:"required"`
	DietaryRestrictions *string `json:"dietary_restrictions"`
}

// RSVP is one submission: the primary guest plus any additional guests.
type RSVP struct {
	ID             string                     `gorm:"type:uuid;primaryKey"`
	Name           string                     `gorm:"not null"`
	Email          string                     `gorm:"not null"`
	PrimaryDietary *string                    `gorm:"column:primary_dietary"`
	Guests         datatypes.JSONSlice[Guest] `gorm:"not null;default:'[]'"`
	CreatedAt      time.Time                  `gorm:"autoCreateTime;index"`
}

func (RSVP) TableName() string {
	return "rsvps"
}

// HeadCount is the primary guest plus every additional guest.
func (r RSVP) HeadCount() int {
	return 1 + len(r.Guests)
}

// Input carries the caller-editable fields of an RSVP for inserts and updates.
type Input struct {
	Name           string `validate:"required"`
	Email          string `validate:"required,email"`
	PrimaryDietary *string
	Guests         []Guest `validate:"dive"`
}

// UpdateInput replaces name, email and the whole guest list of one RSVP.
// PrimaryDietary is only written when ReplaceDietary is set.
type UpdateInput struct {
	ID string
	Input
	ReplaceDietary bool
}

// Summary holds the dashboard aggregates.
type Summary struct {
	Submissions int
	Guests      int
}

func Summarize(records []RSVP) Summary {
	summary := Summary{Submissions: len(records)}
	for _, record := range records {
		summary.Guests += record.HeadCount()
	}
	return summary
}

// Clone returns a deep copy so cached records never share pointers with callers.
func (r RSVP) Clone() RSVP {
	cloned := r
	cloned.PrimaryDietary = cloneString(r.PrimaryDietary)
	cloned.Guests = make(datatypes.JSONSlice[Guest], len(r.Guests))
	for i, guest := range r.Guests {
		cloned.Guests[i] = Guest{
			Name:                guest.Name,
			DietaryRestrictions: cloneString(guest.DietaryRestrictions),
		}
	}
	return cloned
}

func cloneString(value *string) *string {
	if value == nil {
		return nil
	}
	copied := *value
	return &copied
}
