package rsvp

import (
	"context"
	"errors"

	rsvpdomain "wedding-rsvp/internal/domain/rsvp"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// PostgresRepository is the gorm-backed Record Store. It only issues portable
// SQL, so the sqlite dialector works too.
type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Transaction(ctx context.Context, fn func(rsvpdomain.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PostgresRepository{db: tx})
	})
}

func (r *PostgresRepository) Create(ctx context.Context, record *rsvpdomain.RSVP) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.Guests == nil {
		record.Guests = datatypes.JSONSlice[rsvpdomain.Guest]{}
	}
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *PostgresRepository) List(ctx context.Context) ([]rsvpdomain.RSVP, error) {
	var records []rsvpdomain.RSVP
	if err := r.db.WithContext(ctx).
		Order("created_at desc, id asc").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*rsvpdomain.RSVP, error) {
	var record rsvpdomain.RSVP
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, rsvpdomain.ErrRSVPNotFound
		}
		return nil, err
	}
	return &record, nil
}

func (r *PostgresRepository) Update(ctx context.Context, record *rsvpdomain.RSVP) error {
	guests := record.Guests
	if guests == nil {
		guests = datatypes.JSONSlice[rsvpdomain.Guest]{}
	}

	result := r.db.WithContext(ctx).
		Model(&rsvpdomain.RSVP{}).
		Where("id = ?", record.ID).
		Updates(map[string]interface{}{
			"name":            record.Name,
			"email":           record.Email,
			"primary_dietary": record.PrimaryDietary,
			"guests":          guests,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return rsvpdomain.ErrRSVPNotFound
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) (bool, error) {
	result := r.db.WithContext(ctx).Delete(&rsvpdomain.RSVP{}, "id = ?", id)
	return result.RowsAffected > 0, result.Error
}
