package repositories

import (
	"errors"

	"localpulse/models"

	"gorm.io/gorm"
)

type LocationRepository interface {
	WithTx(tx *gorm.DB) LocationRepository
	// FindByTuple looks up a location by its exact (country, state, city)
	// identity. Absent state or city must match absence, not act as a
	// wildcard.
	FindByTuple(country string, state, city *string) (*models.Location, error)
	Create(location *models.Location) error
	GetByID(id uint) (*models.Location, error)
}

type locationRepository struct {
	db *gorm.DB
}

func NewLocationRepository(db *gorm.DB) LocationRepository {
	return &locationRepository{db: db}
}

func (r *locationRepository) WithTx(tx *gorm.DB) LocationRepository {
	return &locationRepository{db: tx}
}

func (r *locationRepository) FindByTuple(country string, state, city *string) (*models.Location, error) {
	query := r.db.Where("country = ?", country)

	if state != nil {
		query = query.Where("state_province = ?", *state)
	} else {
		query = query.Where("state_province IS NULL")
	}

	if city != nil {
		query = query.Where("city = ?", *city)
	} else {
		query = query.Where("city IS NULL")
	}

	var location models.Location
	if err := query.First(&location).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &location, nil
}

func (r *locationRepository) Create(location *models.Location) error {
	return r.db.Create(location).Error
}

func (r *locationRepository) GetByID(id uint) (*models.Location, error) {
	var location models.Location
	err := r.db.First(&location, id).Error
	return &location, err
}
