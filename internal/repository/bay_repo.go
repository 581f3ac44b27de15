package repository

import (
	"parkbay/internal/models"

	"gorm.io/gorm"
)

type BayRepository interface {
	CreateBatch(bays []models.Bay) error
	GetByID(id uint) (*models.Bay, error)
	ListByCarPark(carparkID uint) ([]models.Bay, error)
	Update(b *models.Bay) error
	SetAvailability(id uint, available bool) error
}

type gormBayRepository struct {
	db *gorm.DB
}

func NewBayRepository(db *gorm.DB) BayRepository {
	return &gormBayRepository{db: db}
}

func (r *gormBayRepository) CreateBatch(bays []models.Bay) error {
	if len(bays) == 0 {
		return nil
	}
	return r.db.Create(&bays).Error
}

func (r *gormBayRepository) GetByID(id uint) (*models.Bay, error) {
	var b models.Bay
	if err := r.db.First(&b, id).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *gormBayRepository) ListByCarPark(carparkID uint) ([]models.Bay, error) {
	var out []models.Bay
	err := r.db.Where("car_park_id = ?", carparkID).Order("bay_number ASC").Find(&out).Error
	return out, err
}

func (r *gormBayRepository) Update(b *models.Bay) error {
	return r.db.Save(b).Error
}

func (r *gormBayRepository) SetAvailability(id uint, available bool) error {
	return r.db.Model(&models.Bay{}).Where("id = ?", id).Update("is_available", available).Error
}
