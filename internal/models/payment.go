package models

import "time"

type Payment struct {
	ID                 uint       `gorm:"primaryKey" json:"id"`
	UserID             uint       `gorm:"not null;index" json:"user_id"`
	AmountPence        int64      `gorm:"not null" json:"amount_pence"` // total charged: cost + processing fee
	ProcessingFeePence int64      `gorm:"not null;default:0" json:"processing_fee_pence"`
	PlatformFeePence   int64      `gorm:"not null;default:0" json:"platform_fee_pence"` // withheld from the owner's payout
	Currency           string     `gorm:"size:3;default:'GBP'" json:"currency"`
	StripeChargeID     string     `gorm:"size:255;uniqueIndex" json:"-"`
	ReceiptURL         string     `gorm:"size:512" json:"receipt_url"`
	Status             string     `gorm:"size:20;not null;index;default:'pending'" json:"status"` // pending | completed | failed | refunded
	PaidAt             *time.Time `json:"paid_at"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`

	Refund *Refund `gorm:"foreignKey:PaymentID" json:"refund,omitempty"`
}

func (Payment) TableName() string {
	return "payments"
}
