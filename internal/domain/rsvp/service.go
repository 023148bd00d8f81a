package rsvp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Service struct {
	repo     Repository
	validate *validator.Validate
}

func NewService(repo Repository) *Service {
	return &Service{
		repo:     repo,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Submit inserts one RSVP. Empty optional text is stored as NULL.
func (s *Service) Submit(ctx context.Context, input Input) (*RSVP, error) {
	input = normalizeInput(input)
	if err := s.validateInput(input); err != nil {
		return nil, err
	}

	record := RSVP{
		Name:           input.Name,
		Email:          input.Email,
		PrimaryDietary: input.PrimaryDietary,
		Guests:         datatypes.JSONSlice[Guest](input.Guests),
	}
	if err := s.repo.Create(ctx, &record); err != nil {
		return nil, err
	}

	return &record, nil
}

func (s *Service) List(ctx context.Context) ([]RSVP, error) {
	records, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if records == nil {
		return []RSVP{}, nil
	}
	for i := range records {
		if records[i].Guests == nil {
			records[i].Guests = datatypes.JSONSlice[Guest]{}
		}
	}
	return records, nil
}

func (s *Service) Get(ctx context.Context, id string) (*RSVP, error) {
	id, ok := NormalizeID(id)
	if !ok {
		return nil, ErrRSVPNotFound
	}

	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if record.Guests == nil {
		record.Guests = datatypes.JSONSlice[Guest]{}
	}
	return record, nil
}

// Update overwrites name, email and the full guest list of one RSVP. There is no
// conflict detection: the last update to reach the store wins.
func (s *Service) Update(ctx context.Context, input UpdateInput) (*RSVP, error) {
	id, ok := NormalizeID(input.ID)
	if !ok {
		return nil, ErrRSVPNotFound
	}

	fields := normalizeInput(input.Input)
	if err := s.validateInput(fields); err != nil {
		return nil, err
	}

	var updated RSVP
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		record, err := tx.GetByID(ctx, id)
		if err != nil {
			return err
		}

		record.Name = fields.Name
		record.Email = fields.Email
		record.Guests = datatypes.JSONSlice[Guest](fields.Guests)
		if input.ReplaceDietary {
			record.PrimaryDietary = fields.PrimaryDietary
		}

		if err := tx.Update(ctx, record); err != nil {
			return err
		}

		updated = *record
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &updated, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	id, ok := NormalizeID(id)
	if !ok {
		return ErrRSVPNotFound
	}

	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrRSVPNotFound
	}
	return nil
}

func (s *Service) validateInput(input Input) error {
	err := s.validate.Struct(input)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	messages := make([]string, 0, len(validationErrors))
	for _, fieldErr := range validationErrors {
		messages = append(messages, describeFieldError(fieldErr))
	}
	return fmt.Errorf("%w: %s", ErrInvalidInput, strings.Join(messages, "; "))
}

func describeFieldError(fieldErr validator.FieldError) string {
	field := strings.TrimPrefix(fieldErr.Namespace(), "Input.")
	field = toSnakeField(field)
	switch fieldErr.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	default:
		return field + " is invalid"
	}
}

// toSnakeField turns "Guests[0].Name" into "guests[0].name".
func toSnakeField(field string) string {
	var builder strings.Builder
	builder.Grow(len(field) + 4)
	for i, r := range field {
		if r >= 'A' && r <= 'Z' {
			if i > 0 && field[i-1] != '.' {
				builder.WriteByte('_')
			}
			builder.WriteRune(r + ('a' - 'A'))
			continue
		}
		builder.WriteRune(r)
	}
	return builder.String()
}

func normalizeInput(input Input) Input {
	normalized := Input{
		Name:           singleLine(input.Name),
		Email:          singleLine(input.Email),
		PrimaryDietary: optionalText(input.PrimaryDietary),
		Guests:         make([]Guest, 0, len(input.Guests)),
	}
	for _, guest := range input.Guests {
		normalized.Guests = append(normalized.Guests, Guest{
			Name:                singleLine(guest.Name),
			DietaryRestrictions: optionalText(guest.DietaryRestrictions),
		})
	}
	return normalized
}

func optionalText(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := singleLine(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// singleLine trims value and folds each run of control characters (CR, LF,
// tab) into one space, keeping every stored field on one line.
func singleLine(value string) string {
	var builder strings.Builder
	builder.Grow(len(value))
	pendingSpace := false
	for _, r := range value {
		if unicode.IsControl(r) {
			pendingSpace = true
			continue
		}
		if pendingSpace {
			builder.WriteByte(' ')
			pendingSpace = false
		}
		builder.WriteRune(r)
	}
	return strings.TrimSpace(builder.String())
}

// OptionalText maps "" to nil, matching how the store persists absent notes.
func OptionalText(value string) *string {
	return optionalText(&value)
}

// NormalizeID returns the canonical lower-case form of a uuid id, trimming
// surrounding space. ok is false when id is not a uuid.
func NormalizeID(id string) (string, bool) {
	parsed, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return "", false
	}
	return parsed.String(), true
}
