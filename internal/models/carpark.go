package models

import (
	"time"

	"gorm.io/gorm"
)

type CarPark struct {
	ID                 uint           `gorm:"primaryKey" json:"id"`
	UserID             uint           `gorm:"not null;index" json:"user_id"`
	AddressLine1       string         `gorm:"size:255;not null" json:"address_line1"`
	AddressLine2       string         `gorm:"size:255" json:"address_line2"`
	City               string         `gorm:"size:100;not null;index" json:"city"`
	Postcode           string         `gorm:"size:16;not null;index" json:"postcode"`
	Latitude           *float64       `json:"latitude"`
	Longitude          *float64       `json:"longitude"`
	OpenTime           string         `gorm:"size:5" json:"open_time"`  // "HH:MM", 24h
	CloseTime          string         `gorm:"size:5" json:"close_time"` // "HH:MM"; "00:00"/"24:00" pair means always open
	AccessInstructions string         `gorm:"type:text" json:"access_instructions"`
	Pricing            string         `gorm:"type:json" json:"pricing"` // rate table keyed by duration band
	PhotoURL           string         `gorm:"size:512" json:"photo_url"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`

	Bays []Bay `gorm:"foreignKey:CarParkID" json:"bays,omitempty"`
}

func (CarPark) TableName() string {
	return "car_parks"
}
