package models

import (
	"time"

	"gorm.io/gorm"
)

// PaymentLink records one external gateway charge. OrderNumber is derived from
// the student's national ID plus a timestamp and is the idempotency key for
// every provider call. Status uses the numeric vocabulary from
// domain.LinkStatus*. Links are never deleted on their own; they go away only
// when their transaction is deleted.
type PaymentLink struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	StudentID     uint           `gorm:"not null;index" json:"student_id"`
	TransactionID *uint          `gorm:"index" json:"transaction_id"`
	ProviderID    string         `gorm:"size:64" json:"provider_id"`
	OrderNumber   string         `gorm:"uniqueIndex;size:40;not null" json:"order_number"`
	Status        int            `gorm:"not null;default:1;index" json:"status"` // 1 pending, 2 paid, 3 cancelled
	URL           string         `gorm:"size:512" json:"url"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	Student Student `gorm:"foreignKey:StudentID" json:"-"`
}

func (PaymentLink) TableName() string { return "payment_links" }
