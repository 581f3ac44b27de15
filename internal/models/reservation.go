package models

import (
	"time"

	"parkbay/internal/domain"
)

// Reservation is a time-bounded booking of one bay. The interval is half-open:
// start inclusive, end exclusive, so back-to-back bookings do not overlap.
type Reservation struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	BayID       uint       `gorm:"not null;index:idx_reservations_bay_start" json:"bay_id"`
	CarParkID   uint       `gorm:"not null;index" json:"carpark_id"`
	UserID      uint       `gorm:"not null;index" json:"user_id"`
	PaymentID   *uint      `gorm:"index" json:"payment_id"`
	StartTime   time.Time  `gorm:"not null;index:idx_reservations_bay_start" json:"start_time"`
	EndTime     time.Time  `gorm:"not null;index" json:"end_time"`
	CostPence   int64      `gorm:"not null" json:"cost_pence"`
	Status      string     `gorm:"size:20;not null;index;default:'reserved'" json:"status"` // reserved | active | cancelled | completed | refunded
	CancelledAt *time.Time `json:"cancelled_at"` // set exactly once, on the transition into cancelled
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	Payment *Payment `gorm:"foreignKey:PaymentID" json:"payment,omitempty"`
}

// Overlaps reports whether [start, end) intersects this reservation's window.
func (r *Reservation) Overlaps(start, end time.Time) bool {
	return r.StartTime.Before(end) && r.EndTime.After(start)
}

// Active reports whether the reservation holds the bay at t, meaning its
// window covers t and it has not been cancelled or refunded.
func (r *Reservation) Active(t time.Time) bool {
	return r.Status != domain.ReservationCancelled &&
		r.Status != domain.ReservationRefunded &&
		!r.StartTime.After(t) && r.EndTime.After(t)
}
