package repository

import "gorm.io/gorm"

// Store aggregates the per-entity repositories so services can run multi-entity
// work in one database transaction.
type Store struct {
	db *gorm.DB

	Users        UserRepository
	CarParks     CarParkRepository
	Bays         BayRepository
	Reservations ReservationRepository
	Payments     PaymentRepository
	Refunds      RefundRepository
	Maintenance  MaintenanceRepository
}

func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:           db,
		Users:        NewUserRepository(db),
		CarParks:     NewCarParkRepository(db),
		Bays:         NewBayRepository(db),
		Reservations: NewReservationRepository(db),
		Payments:     NewPaymentRepository(db),
		Refunds:      NewRefundRepository(db),
		Maintenance:  NewMaintenanceRepository(db),
	}
}

// Transaction runs fn against a transaction-scoped Store. Any error rolls the
// whole transaction back. Stores assembled without a DB (in-memory test stores)
// run fn against themselves.
func (s *Store) Transaction(fn func(tx *Store) error) error {
	if s.db == nil {
		return fn(s)
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}
