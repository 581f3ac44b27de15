package models

import (
	"time"

	"parkbay/internal/domain"

	"gorm.io/gorm"
)

type User struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	Email           string         `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash    string         `gorm:"size:255;not null" json:"-"`
	FirstName       string         `gorm:"size:100" json:"first_name"`
	LastName        string         `gorm:"size:100" json:"last_name"`
	Phone           string         `gorm:"size:32" json:"phone"`
	CarRegistration string         `gorm:"size:16" json:"car_registration"`
	DateOfBirth     *time.Time     `json:"date_of_birth"`
	Role            string         `gorm:"size:20;not null;index;default:'user'" json:"role"` // user | admin
	StripeAccountID *string        `gorm:"size:255" json:"-"`                                 // payout sub-account; nil until owner onboards
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"` // tombstone; hard-deleted by the daily purge

	CarParks []CarPark `gorm:"foreignKey:UserID" json:"car_parks,omitempty"`
}

func (u *User) IsAdmin() bool { return u.Role == domain.RoleAdmin }

// HasPayoutAccount reports whether the user has linked a gateway sub-account.
// Whether charges are actually enabled is the gateway's call, not ours.
func (u *User) HasPayoutAccount() bool {
	return u.StripeAccountID != nil && *u.StripeAccountID != ""
}
