package console

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	rsvpdomain "wedding-rsvp/internal/domain/rsvp"
	"wedding-rsvp/pkg/logger"

	"gorm.io/datatypes"
)

type fakeStore struct {
	records []rsvpdomain.RSVP

	insertErr error
	selectErr error
	updateErr error
	deleteErr error

	inserts []rsvpdomain.Input
	updates []rsvpdomain.UpdateInput
	deletes []string
	nextID  int
}

func (f *fakeStore) Insert(_ context.Context, input rsvpdomain.Input) (*rsvpdomain.RSVP, error) {
	f.inserts = append(f.inserts, input)
	if f.insertErr != nil {
		return nil, f.insertErr
	}
	f.nextID++
	record := rsvpdomain.RSVP{
		ID:             fmt.Sprintf("new-%d", f.nextID),
		Name:           input.Name,
		Email:          input.Email,
		PrimaryDietary: input.PrimaryDietary,
		Guests:         datatypes.JSONSlice[rsvpdomain.Guest](input.Guests),
		CreatedAt:      time.Now().UTC(),
	}
	f.records = append([]rsvpdomain.RSVP{record}, f.records...)
	return &record, nil
}

func (f *fakeStore) Select(context.Context) ([]rsvpdomain.RSVP, error) {
	if f.selectErr != nil {
		return nil, f.selectErr
	}
	out := make([]rsvpdomain.RSVP, 0, len(f.records))
	for _, record := range f.records {
		out = append(out, record.Clone())
	}
	return out, nil
}

func (f *fakeStore) Update(_ context.Context, input rsvpdomain.UpdateInput) (*rsvpdomain.RSVP, error) {
	f.updates = append(f.updates, input)
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	for i := range f.records {
		if f.records[i].ID != input.ID {
			continue
		}
		f.records[i].Name = input.Name
		f.records[i].Email = input.Email
		f.records[i].Guests = datatypes.JSONSlice[rsvpdomain.Guest](input.Guests)
		if input.ReplaceDietary {
			f.records[i].PrimaryDietary = input.PrimaryDietary
		}
		updated := f.records[i].Clone()
		return &updated, nil
	}
	return nil, rsvpdomain.ErrRSVPNotFound
}

func (f *fakeStore) Delete(_ context.Context, id string) error {
	f.deletes = append(f.deletes, id)
	if f.deleteErr != nil {
		return f.deleteErr
	}
	for i := range f.records {
		if f.records[i].ID == id {
			f.records = append(f.records[:i], f.records[i+1:]...)
			return nil
		}
	}
	return rsvpdomain.ErrRSVPNotFound
}

func testLogger() logger.Logger {
	return logger.New(io.Discard, slog.LevelError, "text")
}

func strPtr(value string) *string {
	return &value
}

// seedRecords is newest first, as the store returns them.
func seedRecords() []rsvpdomain.RSVP {
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	return []rsvpdomain.RSVP{
		{
			ID:        "c",
			Name:      "Carol",
			Email:     "carol@example.com",
			CreatedAt: base.Add(2 * time.Hour),
		},
		{
			ID:             "a",
			Name:           "Alice",
			Email:          "alice@example.com",
			PrimaryDietary: strPtr("vegan"),
			Guests: datatypes.JSONSlice[rsvpdomain.Guest]{
				{Name: "Kid", DietaryRestrictions: strPtr("nuts")},
				{Name: "Partner"},
			},
			CreatedAt: base.Add(time.Hour),
		},
		{
			ID:        "b",
			Name:      "Bob",
			Email:     "bob@example.com",
			Guests:    datatypes.JSONSlice[rsvpdomain.Guest]{{Name: "Plus One"}},
			CreatedAt: base,
		},
	}
}

func ids(records []rsvpdomain.RSVP) []string {
	out := make([]string, 0, len(records))
	for _, record := range records {
		out = append(out, record.ID)
	}
	return out
}
