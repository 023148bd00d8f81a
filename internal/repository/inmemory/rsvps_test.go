package inmemory

import (
	"context"
	"errors"
	"testing"
	"time"

	rsvpdomain "wedding-rsvp/internal/domain/rsvp"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestRSVPRepositoryCreateAndList(t *testing.T) {
	repo := NewInMemoryRSVPRepository()
	ctx := context.Background()
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	older := &rsvpdomain.RSVP{Name: "older", Email: "o@example.com", CreatedAt: base}
	newer := &rsvpdomain.RSVP{Name: "newer", Email: "n@example.com", CreatedAt: base.Add(time.Minute)}
	require.NoError(t, repo.Create(ctx, older))
	require.NoError(t, repo.Create(ctx, newer))
	assert.NotEmpty(t, older.ID)
	assert.NotEqual(t, older.ID, newer.ID)

	records, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "newer", records[0].Name)
	assert.Equal(t, "older", records[1].Name)
}

func TestRSVPRepositoryIsolatesCallers(t *testing.T) {
	repo := NewInMemoryRSVPRepository()
	ctx := context.Background()

	record := &rsvpdomain.RSVP{
		Name:   "ana",
		Email:  "ana@example.com",
		Guests: datatypes.JSONSlice[rsvpdomain.Guest]{{Name: "kid"}},
	}
	require.NoError(t, repo.Create(ctx, record))
	record.Guests[0].Name = "mutated"

	stored, err := repo.GetByID(ctx, record.ID)
	require.NoError(t, err)
	assert.Equal(t, "kid", stored.Guests[0].Name)
	assert.False(t, stored.CreatedAt.IsZero())
}

func TestRSVPRepositoryUpdateKeepsCreatedAt(t *testing.T) {
	repo := NewInMemoryRSVPRepository()
	ctx := context.Background()
	record := &rsvpdomain.RSVP{Name: "ana", Email: "ana@example.com"}
	require.NoError(t, repo.Create(ctx, record))
	createdAt := record.CreatedAt

	updated := *record
	updated.Name = "Ana"
	updated.CreatedAt = time.Time{}
	require.NoError(t, repo.Update(ctx, &updated))

	stored, err := repo.GetByID(ctx, record.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana", stored.Name)
	assert.True(t, createdAt.Equal(stored.CreatedAt))

	err = repo.Update(ctx, &rsvpdomain.RSVP{ID: "missing"})
	assert.ErrorIs(t, err, rsvpdomain.ErrRSVPNotFound)
}

func TestRSVPRepositoryDelete(t *testing.T) {
	repo := NewInMemoryRSVPRepository()
	ctx := context.Background()
	keep := &rsvpdomain.RSVP{Name: "keep", Email: "k@example.com"}
	drop := &rsvpdomain.RSVP{Name: "drop", Email: "d@example.com"}
	require.NoError(t, repo.Create(ctx, keep))
	require.NoError(t, repo.Create(ctx, drop))

	deleted, err := repo.Delete(ctx, "unknown")
	require.NoError(t, err)
	assert.False(t, deleted)

	deleted, err = repo.Delete(ctx, drop.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	records, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, keep.ID, records[0].ID)
}

func TestRSVPRepositoryTransactionRestoresOnError(t *testing.T) {
	repo := NewInMemoryRSVPRepository()
	ctx := context.Background()
	record := &rsvpdomain.RSVP{Name: "ana", Email: "ana@example.com"}
	require.NoError(t, repo.Create(ctx, record))

	failure := errors.New("boom")
	err := repo.Transaction(ctx, func(tx rsvpdomain.Repository) error {
		changed := *record
		changed.Name = "changed"
		require.NoError(t, tx.Update(ctx, &changed))
		return failure
	})
	require.ErrorIs(t, err, failure)

	stored, err := repo.GetByID(ctx, record.ID)
	require.NoError(t, err)
	assert.Equal(t, "ana", stored.Name)
}

func TestRSVPRepositoryFailedTransactionKeepsConcurrentInsert(t *testing.T) {
	repo := NewInMemoryRSVPRepository()
	svc := rsvpdomain.NewService(repo)
	ctx := context.Background()
	record := &rsvpdomain.RSVP{Name: "ana", Email: "ana@example.com"}
	require.NoError(t, repo.Create(ctx, record))

	var submitted *rsvpdomain.RSVP
	failure := errors.New("boom")
	err := repo.Transaction(ctx, func(tx rsvpdomain.Repository) error {
		changed := *record
		changed.Name = "changed"
		require.NoError(t, tx.Update(ctx, &changed))

		done := make(chan error, 1)
		go func() {
			var submitErr error
			submitted, submitErr = svc.Submit(ctx, rsvpdomain.Input{Name: "ben", Email: "ben@example.com"})
			done <- submitErr
		}()
		require.NoError(t, <-done)
		return failure
	})
	require.ErrorIs(t, err, failure)

	records, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)

	kept, err := repo.GetByID(ctx, submitted.ID)
	require.NoError(t, err)
	assert.Equal(t, "ben", kept.Name)

	restored, err := repo.GetByID(ctx, record.ID)
	require.NoError(t, err)
	assert.Equal(t, "ana", restored.Name)
}

func TestRSVPRepositoryFailedTransactionKeepsLaterWrites(t *testing.T) {
	repo := NewInMemoryRSVPRepository()
	ctx := context.Background()
	record := &rsvpdomain.RSVP{Name: "ana", Email: "ana@example.com"}
	require.NoError(t, repo.Create(ctx, record))
	other := &rsvpdomain.RSVP{Name: "cleo", Email: "cleo@example.com"}
	require.NoError(t, repo.Create(ctx, other))

	var created rsvpdomain.RSVP
	failure := errors.New("boom")
	err := repo.Transaction(ctx, func(tx rsvpdomain.Repository) error {
		changed := *record
		changed.Name = "from tx"
		require.NoError(t, tx.Update(ctx, &changed))

		fresh := &rsvpdomain.RSVP{Name: "tx insert", Email: "tx@example.com"}
		require.NoError(t, tx.Create(ctx, fresh))
		created = *fresh

		deleted, err := tx.Delete(ctx, other.ID)
		require.NoError(t, err)
		require.True(t, deleted)

		outside := *record
		outside.Name = "from outside"
		require.NoError(t, repo.Update(ctx, &outside))
		return failure
	})
	require.ErrorIs(t, err, failure)

	stored, err := repo.GetByID(ctx, record.ID)
	require.NoError(t, err)
	assert.Equal(t, "from outside", stored.Name)

	_, err = repo.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, rsvpdomain.ErrRSVPNotFound)

	back, err := repo.GetByID(ctx, other.ID)
	require.NoError(t, err)
	assert.Equal(t, "cleo", back.Name)
}

func TestRSVPRepositoryHonoursCancelledContext(t *testing.T) {
	repo := NewInMemoryRSVPRepository()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := repo.List(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
