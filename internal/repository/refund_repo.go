package repository

import (
	"parkbay/internal/domain"
	"parkbay/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RefundRepository interface {
	Create(rf *models.Refund) error
	GetByID(id uint) (*models.Refund, error)
	// GetByIDForUpdate locks the row for the admin decision paths.
	GetByIDForUpdate(id uint) (*models.Refund, error)
	Update(rf *models.Refund) error
	ListByRequester(userID uint) ([]models.Refund, error)
	// ListByStatus with an empty status returns all refunds, newest first.
	ListByStatus(status string) ([]models.Refund, error)
	// GetOpenByPayment returns a refund that is still in flight (requested or
	// reviewing) for the payment, or gorm.ErrRecordNotFound.
	GetOpenByPayment(paymentID uint) (*models.Refund, error)
}

type gormRefundRepository struct {
	db *gorm.DB
}

func NewRefundRepository(db *gorm.DB) RefundRepository {
	return &gormRefundRepository{db: db}
}

func (r *gormRefundRepository) Create(rf *models.Refund) error {
	return r.db.Create(rf).Error
}

func (r *gormRefundRepository) GetByID(id uint) (*models.Refund, error) {
	var rf models.Refund
	if err := r.db.First(&rf, id).Error; err != nil {
		return nil, err
	}
	return &rf, nil
}

func (r *gormRefundRepository) GetByIDForUpdate(id uint) (*models.Refund, error) {
	var rf models.Refund
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&rf, id).Error; err != nil {
		return nil, err
	}
	return &rf, nil
}

func (r *gormRefundRepository) Update(rf *models.Refund) error {
	return r.db.Save(rf).Error
}

func (r *gormRefundRepository) ListByRequester(userID uint) ([]models.Refund, error) {
	var out []models.Refund
	err := r.db.Where("created_by = ?", userID).Order("created_at DESC").Find(&out).Error
	return out, err
}

func (r *gormRefundRepository) ListByStatus(status string) ([]models.Refund, error) {
	q := r.db.Order("created_at DESC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var out []models.Refund
	err := q.Find(&out).Error
	return out, err
}

func (r *gormRefundRepository) GetOpenByPayment(paymentID uint) (*models.Refund, error) {
	var rf models.Refund
	err := r.db.
		Where("payment_id = ? AND status IN ?", paymentID,
			[]string{domain.RefundRequested, domain.RefundReviewing}).
		First(&rf).Error
	if err != nil {
		return nil, err
	}
	return &rf, nil
}
