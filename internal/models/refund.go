package models

import "time"

type Refund struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	PaymentID      uint       `gorm:"not null;index" json:"payment_id"`
	ReservationID  uint       `gorm:"not null;index" json:"reservation_id"`
	AmountPence    int64      `gorm:"not null" json:"amount_pence"`
	StripeRefundID string     `gorm:"size:255" json:"-"`
	ReceiptURL     string     `gorm:"size:512" json:"receipt_url"`
	Status         string     `gorm:"size:20;not null;index;default:'requested'" json:"status"` // requested | reviewing | approved | processed | denied
	Reason         string     `gorm:"type:text" json:"reason"`
	Decision       string     `gorm:"type:text" json:"decision"` // reviewer's note, or "automatic"
	CreatedBy      uint       `gorm:"not null;index" json:"created_by"`
	UpdatedBy      *uint      `json:"updated_by"`
	ProcessedAt    *time.Time `json:"processed_at"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}
