package models

import "time"

type Bay struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	CarParkID     uint      `gorm:"not null;index" json:"carpark_id"`
	BayNumber     int       `gorm:"not null" json:"bay_number"`
	VehicleSize   string    `gorm:"size:20;default:'medium'" json:"vehicle_size"`
	HasEVCharging bool      `gorm:"default:false" json:"has_ev_charging"`
	Accessible    bool      `gorm:"default:false" json:"accessible"`
	Description   string    `gorm:"size:255" json:"description"`
	// Cached hint maintained by the sweeper and the booking path. Booking
	// decisions always go through the live overlap query instead.
	IsAvailable bool      `gorm:"default:true" json:"is_available"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
