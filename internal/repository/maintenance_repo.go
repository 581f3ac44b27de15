package repository

import (
	"time"

	"gorm.io/gorm"
)

// MaintenanceRepository backs the daily purge: records tombstoned longer than
// the retention period are removed for good, dependents first.
type MaintenanceRepository interface {
	PurgeCarParksDeletedBefore(cutoff time.Time) (int64, error)
	PurgeUsersDeletedBefore(cutoff time.Time) (int64, error)
}

type gormMaintenanceRepository struct {
	db *gorm.DB
}

func NewMaintenanceRepository(db *gorm.DB) MaintenanceRepository {
	return &gormMaintenanceRepository{db: db}
}

func (r *gormMaintenanceRepository) PurgeCarParksDeletedBefore(cutoff time.Time) (int64, error) {
	doomed := "SELECT id FROM car_parks WHERE deleted_at IS NOT NULL AND deleted_at < ?"
	steps := []string{
		"DELETE FROM refunds WHERE reservation_id IN (SELECT id FROM reservations WHERE car_park_id IN (" + doomed + "))",
		"DELETE FROM payments WHERE id IN (SELECT payment_id FROM reservations WHERE payment_id IS NOT NULL AND car_park_id IN (" + doomed + "))",
		"DELETE FROM reservations WHERE car_park_id IN (" + doomed + ")",
		"DELETE FROM bays WHERE car_park_id IN (" + doomed + ")",
	}
	for _, stmt := range steps {
		if err := r.db.Exec(stmt, cutoff).Error; err != nil {
			return 0, err
		}
	}
	res := r.db.Exec("DELETE FROM car_parks WHERE deleted_at IS NOT NULL AND deleted_at < ?", cutoff)
	return res.RowsAffected, res.Error
}

func (r *gormMaintenanceRepository) PurgeUsersDeletedBefore(cutoff time.Time) (int64, error) {
	doomed := "SELECT id FROM users WHERE deleted_at IS NOT NULL AND deleted_at < ?"
	ownedParks := "SELECT id FROM car_parks WHERE user_id IN (" + doomed + ")"
	steps := []string{
		// everything hanging off car parks the user owns
		"DELETE FROM refunds WHERE reservation_id IN (SELECT id FROM reservations WHERE car_park_id IN (" + ownedParks + "))",
		"DELETE FROM payments WHERE id IN (SELECT payment_id FROM reservations WHERE payment_id IS NOT NULL AND car_park_id IN (" + ownedParks + "))",
		"DELETE FROM reservations WHERE car_park_id IN (" + ownedParks + ")",
		"DELETE FROM bays WHERE car_park_id IN (" + ownedParks + ")",
		"DELETE FROM car_parks WHERE user_id IN (" + doomed + ")",
		// everything the user did as a renter
		"DELETE FROM refunds WHERE created_by IN (" + doomed + ")",
		"DELETE FROM reservations WHERE user_id IN (" + doomed + ")",
		"DELETE FROM payments WHERE user_id IN (" + doomed + ")",
	}
	for _, stmt := range steps {
		if err := r.db.Exec(stmt, cutoff).Error; err != nil {
			return 0, err
		}
	}
	res := r.db.Exec("DELETE FROM users WHERE deleted_at IS NOT NULL AND deleted_at < ?", cutoff)
	return res.RowsAffected, res.Error
}
