package repository

import (
	"parkbay/internal/models"

	"gorm.io/gorm"
)

type CarParkRepository interface {
	Create(cp *models.CarPark) error
	GetByID(id uint) (*models.CarPark, error)
	Update(cp *models.CarPark) error
	SoftDelete(id uint) error
	ListByOwner(userID uint) ([]models.CarPark, error)
	// Search matches postcode or city; empty query returns all live car parks.
	Search(query string) ([]models.CarPark, error)
}

type gormCarParkRepository struct {
	db *gorm.DB
}

func NewCarParkRepository(db *gorm.DB) CarParkRepository {
	return &gormCarParkRepository{db: db}
}

func (r *gormCarParkRepository) Create(cp *models.CarPark) error {
	return r.db.Create(cp).Error
}

func (r *gormCarParkRepository) GetByID(id uint) (*models.CarPark, error) {
	var cp models.CarPark
	if err := r.db.Preload("Bays").First(&cp, id).Error; err != nil {
		return nil, err
	}
	return &cp, nil
}

func (r *gormCarParkRepository) Update(cp *models.CarPark) error {
	return r.db.Save(cp).Error
}

func (r *gormCarParkRepository) SoftDelete(id uint) error {
	return r.db.Delete(&models.CarPark{}, id).Error
}

func (r *gormCarParkRepository) ListByOwner(userID uint) ([]models.CarPark, error) {
	var out []models.CarPark
	err := r.db.Preload("Bays").Where("user_id = ?", userID).Order("created_at DESC").Find(&out).Error
	return out, err
}

func (r *gormCarParkRepository) Search(query string) ([]models.CarPark, error) {
	q := r.db.Preload("Bays")
	if query != "" {
		like := "%" + query + "%"
		q = q.Where("postcode LIKE ? OR city LIKE ?", like, like)
	}
	var out []models.CarPark
	err := q.Order("created_at DESC").Find(&out).Error
	return out, err
}
