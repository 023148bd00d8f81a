package console

import (
	"fmt"
	"strings"

	rsvpdomain "wedding-rsvp/internal/domain/rsvp"

	"github.com/go-playground/validator/v10"
)

var emailValidator = validator.New()

// GuestRow is one editable guest line. Key identifies the row across edits,
// so removing a row never shifts the identity of the others.
type GuestRow struct {
	Key                 int
	Name                string
	DietaryRestrictions string
}

// Form holds the fields of an RSVP being composed or edited.
type Form struct {
	Name           string
	Email          string
	PrimaryDietary string

	guests  []GuestRow
	nextKey int
}

// AddGuest appends an empty guest row and returns its key.
func (f *Form) AddGuest() int {
	f.nextKey++
	f.guests = append(f.guests, GuestRow{Key: f.nextKey})
	return f.nextKey
}

func (f *Form) RemoveGuest(key int) bool {
	for i, row := range f.guests {
		if row.Key == key {
			f.guests = append(f.guests[:i:i], f.guests[i+1:]...)
			return true
		}
	}
	return false
}

func (f *Form) SetGuest(key int, name, dietary string) bool {
	for i := range f.guests {
		if f.guests[i].Key == key {
			f.guests[i].Name = name
			f.guests[i].DietaryRestrictions = dietary
			return true
		}
	}
	return false
}

func (f *Form) Guests() []GuestRow {
	rows := make([]GuestRow, len(f.guests))
	copy(rows, f.guests)
	return rows
}

// HasBlankGuest reports whether any guest row lacks a name.
func (f *Form) HasBlankGuest() bool {
	for _, row := range f.guests {
		if strings.TrimSpace(row.Name) == "" {
			return true
		}
	}
	return false
}

// ValidateSubmit applies the checks the submission form enforces before any
// store call.
func (f *Form) ValidateSubmit() error {
	if strings.TrimSpace(f.Name) == "" {
		return fmt.Errorf("%w: name is required", rsvpdomain.ErrInvalidInput)
	}
	if err := emailValidator.Var(strings.TrimSpace(f.Email), "required,email"); err != nil {
		return fmt.Errorf("%w: email must be a valid email", rsvpdomain.ErrInvalidInput)
	}
	if f.HasBlankGuest() {
		return ErrBlankGuestName
	}
	return nil
}

// Input maps empty optional text to nil.
func (f *Form) Input() rsvpdomain.Input {
	guests := make([]rsvpdomain.Guest, 0, len(f.guests))
	for _, row := range f.guests {
		guests = append(guests, rsvpdomain.Guest{
			Name:                strings.TrimSpace(row.Name),
			DietaryRestrictions: rsvpdomain.OptionalText(strings.TrimSpace(row.DietaryRestrictions)),
		})
	}
	return rsvpdomain.Input{
		Name:           strings.TrimSpace(f.Name),
		Email:          strings.TrimSpace(f.Email),
		PrimaryDietary: rsvpdomain.OptionalText(strings.TrimSpace(f.PrimaryDietary)),
		Guests:         guests,
	}
}

func formFromRecord(record rsvpdomain.RSVP) Form {
	form := Form{
		Name:  record.Name,
		Email: record.Email,
	}
	if record.PrimaryDietary != nil {
		form.PrimaryDietary = *record.PrimaryDietary
	}
	for _, guest := range record.Guests {
		key := form.AddGuest()
		dietary := ""
		if guest.DietaryRestrictions != nil {
			dietary = *guest.DietaryRestrictions
		}
		form.SetGuest(key, guest.Name, dietary)
	}
	return form
}
