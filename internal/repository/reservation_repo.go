package repository

import (
	"time"

	"parkbay/internal/domain"
	"parkbay/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ReservationRepository interface {
	Create(res *models.Reservation) error
	GetByID(id uint) (*models.Reservation, error)
	// GetByIDForUpdate locks the row; mutating paths read through this so two
	// concurrent status transitions on one reservation serialize.
	GetByIDForUpdate(id uint) (*models.Reservation, error)
	GetByPaymentID(paymentID uint) (*models.Reservation, error)
	ListByUser(userID uint) ([]models.Reservation, error)
	ListByCarPark(carparkID uint) ([]models.Reservation, error)
	Update(res *models.Reservation) error

	// CountOverlapping counts non-cancelled reservations on the bay whose
	// [start_time, end_time) interval intersects [start, end). Read-only probe.
	CountOverlapping(bayID uint, start, end time.Time) (int64, error)
	// CountOverlappingForUpdate is the same check with the candidate rows (and,
	// on MySQL, the index gap) locked, so the check-then-insert pair inside one
	// transaction is serialized against concurrent bookings on the same bay.
	CountOverlappingForUpdate(bayID uint, start, end time.Time) (int64, error)

	// FindExpired returns reservations whose window has passed but whose status
	// has not been finalized yet.
	FindExpired(now time.Time) ([]models.Reservation, error)
	MarkCompleted(ids []uint) error
	// CountActive counts reservations still holding the bay at t.
	CountActive(bayID uint, t time.Time) (int64, error)
}

type gormReservationRepository struct {
	db *gorm.DB
}

func NewReservationRepository(db *gorm.DB) ReservationRepository {
	return &gormReservationRepository{db: db}
}

func (r *gormReservationRepository) Create(res *models.Reservation) error {
	return r.db.Create(res).Error
}

func (r *gormReservationRepository) GetByID(id uint) (*models.Reservation, error) {
	var res models.Reservation
	if err := r.db.Preload("Payment").First(&res, id).Error; err != nil {
		return nil, err
	}
	return &res, nil
}

func (r *gormReservationRepository) GetByIDForUpdate(id uint) (*models.Reservation, error) {
	var res models.Reservation
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&res, id).Error; err != nil {
		return nil, err
	}
	return &res, nil
}

func (r *gormReservationRepository) GetByPaymentID(paymentID uint) (*models.Reservation, error) {
	var res models.Reservation
	if err := r.db.Where("payment_id = ?", paymentID).First(&res).Error; err != nil {
		return nil, err
	}
	return &res, nil
}

func (r *gormReservationRepository) ListByUser(userID uint) ([]models.Reservation, error) {
	var out []models.Reservation
	err := r.db.Preload("Payment").Where("user_id = ?", userID).Order("start_time DESC").Find(&out).Error
	return out, err
}

func (r *gormReservationRepository) ListByCarPark(carparkID uint) ([]models.Reservation, error) {
	var out []models.Reservation
	err := r.db.Preload("Payment").Where("car_park_id = ?", carparkID).Order("start_time DESC").Find(&out).Error
	return out, err
}

func (r *gormReservationRepository) Update(res *models.Reservation) error {
	return r.db.Save(res).Error
}

func (r *gormReservationRepository) overlapQuery(bayID uint, start, end time.Time) *gorm.DB {
	return r.db.Model(&models.Reservation{}).
		Where("bay_id = ? AND status <> ?", bayID, domain.ReservationCancelled).
		Where("start_time < ? AND end_time > ?", end, start)
}

func (r *gormReservationRepository) CountOverlapping(bayID uint, start, end time.Time) (int64, error) {
	var n int64
	err := r.overlapQuery(bayID, start, end).Count(&n).Error
	return n, err
}

func (r *gormReservationRepository) CountOverlappingForUpdate(bayID uint, start, end time.Time) (int64, error) {
	var rows []models.Reservation
	err := r.overlapQuery(bayID, start, end).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Find(&rows).Error
	if err != nil {
		return 0, err
	}
	return int64(len(rows)), nil
}

func (r *gormReservationRepository) FindExpired(now time.Time) ([]models.Reservation, error) {
	var out []models.Reservation
	err := r.db.
		Where("end_time < ?", now).
		Where("status NOT IN ?", []string{
			domain.ReservationCancelled,
			domain.ReservationRefunded,
			domain.ReservationCompleted,
		}).
		Find(&out).Error
	return out, err
}

func (r *gormReservationRepository) MarkCompleted(ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	// Repeat the status predicate: a reservation cancelled or refunded after
	// the sweep's snapshot read must not be flipped to completed.
	return r.db.Model(&models.Reservation{}).
		Where("id IN ?", ids).
		Where("status NOT IN ?", []string{
			domain.ReservationCancelled,
			domain.ReservationRefunded,
			domain.ReservationCompleted,
		}).
		Update("status", domain.ReservationCompleted).Error
}

func (r *gormReservationRepository) CountActive(bayID uint, t time.Time) (int64, error) {
	var n int64
	err := r.db.Model(&models.Reservation{}).
		Where("bay_id = ? AND start_time <= ? AND end_time > ?", bayID, t, t).
		Where("status NOT IN ?", []string{domain.ReservationCancelled, domain.ReservationRefunded}).
		Count(&n).Error
	return n, err
}
