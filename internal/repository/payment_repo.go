package repository

import (
	"parkbay/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PaymentRepository interface {
	Create(p *models.Payment) error
	GetByID(id uint) (*models.Payment, error)
	// GetByIDForUpdate locks the row so concurrent refund requests against the
	// same payment serialize on it.
	GetByIDForUpdate(id uint) (*models.Payment, error)
	ListByUser(userID uint) ([]models.Payment, error)
	Update(p *models.Payment) error
}

type gormPaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &gormPaymentRepository{db: db}
}

func (r *gormPaymentRepository) Create(p *models.Payment) error {
	return r.db.Create(p).Error
}

func (r *gormPaymentRepository) GetByIDForUpdate(id uint) (*models.Payment, error) {
	var p models.Payment
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *gormPaymentRepository) GetByID(id uint) (*models.Payment, error) {
	var p models.Payment
	if err := r.db.Preload("Refund").First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *gormPaymentRepository) ListByUser(userID uint) ([]models.Payment, error) {
	var out []models.Payment
	err := r.db.Preload("Refund").Where("user_id = ?", userID).Order("created_at DESC").Find(&out).Error
	return out, err
}

func (r *gormPaymentRepository) Update(p *models.Payment) error {
	return r.db.Save(p).Error
}
