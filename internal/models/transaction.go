package models

import (
	"time"

	"drivehub/internal/domain"

	"gorm.io/gorm"
)

// Transaction is one purchase event: one or more courses sold as a bundle with
// a single total value. Course lines and the discount are immutable once the
// transaction is PAID.
type Transaction struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	StudentID       uint           `gorm:"not null;index" json:"student_id"`
	ValueCents      int64          `gorm:"not null" json:"value_cents"`
	PaymentMethod   string         `gorm:"size:20;not null" json:"payment_method"`
	Installments    int            `gorm:"not null;default:1" json:"installments"`
	Status          string         `gorm:"size:20;not null;index" json:"status"` // PENDING, PARTIAL, PAID, CANCELLED
	PaymentDate     *time.Time     `json:"payment_date"`
	ForecastDate    *time.Time     `json:"forecast_date"`
	DiscountCents   int64          `gorm:"not null;default:0" json:"discount_cents"`
	CommissionCents int64          `gorm:"not null;default:0" json:"commission_cents"`
	CouponID        *uint          `gorm:"index" json:"coupon_id"`
	CreatedByID     uint           `gorm:"not null;index" json:"created_by_id"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`

	Student   Student             `gorm:"foreignKey:StudentID" json:"-"`
	Coupon    *Coupon             `gorm:"foreignKey:CouponID" json:"coupon,omitempty"`
	CreatedBy User                `gorm:"foreignKey:CreatedByID" json:"-"`
	Courses   []TransactionCourse `gorm:"foreignKey:TransactionID" json:"courses,omitempty"`
}

func (Transaction) TableName() string { return "transactions" }

func (t *Transaction) IsPaid() bool    { return t.Status == domain.PaymentStatusPaid }
func (t *Transaction) IsPending() bool { return t.Status == domain.PaymentStatusPending }

// TransactionCourse binds a transaction to a (course, modality) pair. The
// bundle is priced as a whole; lines carry no per-course value.
type TransactionCourse struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	TransactionID uint           `gorm:"not null;index" json:"transaction_id"`
	CourseID      uint           `gorm:"not null;index" json:"course_id"`
	ModalityID    uint           `gorm:"not null" json:"modality_id"`
	CreatedAt     time.Time      `json:"created_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	Course   Course         `gorm:"foreignKey:CourseID" json:"course,omitempty"`
	Modality CourseModality `gorm:"foreignKey:ModalityID" json:"modality,omitempty"`
}

func (TransactionCourse) TableName() string { return "transaction_courses" }
