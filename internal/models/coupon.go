package models

import (
	"time"

	"gorm.io/gorm"
)

// Coupon is a promotional code. Code is system-generated and immutable; Name
// is an optional display label used only as a lookup fallback. A user owns at
// most one active coupon at a time.
type Coupon struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	Code       string         `gorm:"uniqueIndex;size:20;not null" json:"code"`
	Name       string         `gorm:"size:128" json:"name"`
	Mode       string         `gorm:"size:20;not null" json:"mode"` // GENERAL | SPECIFIC
	Active     bool           `gorm:"default:true;index" json:"active"`
	OwnerID    *uint          `gorm:"index" json:"owner_id"`
	ExpiresAt  *time.Time     `json:"expires_at"`
	UsageLimit *int           `json:"usage_limit"`
	UsageCount int            `gorm:"not null;default:0" json:"usage_count"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`

	Owner          *User                 `gorm:"foreignKey:OwnerID" json:"-"`
	Configurations []CouponConfiguration `gorm:"foreignKey:CouponID" json:"configurations,omitempty"`
}

func (Coupon) TableName() string { return "coupons" }

// Exhausted reports whether the usage limit, if any, has been reached.
func (c *Coupon) Exhausted() bool {
	return c.UsageLimit != nil && c.UsageCount >= *c.UsageLimit
}

// Expired reports whether the expiration date, if any, is in the past.
func (c *Coupon) Expired(now time.Time) bool {
	return c.ExpiresAt != nil && c.ExpiresAt.Before(now)
}

// CouponConfiguration is one discount/commission rule. Exactly one of
// {DiscountCents, DiscountPercent} and one of {CommissionCents,
// CommissionPercent} is set. ModalityID keys GENERAL-mode rules, CourseID
// keys SPECIFIC-mode rules.
type CouponConfiguration struct {
	ID                uint           `gorm:"primaryKey" json:"id"`
	CouponID          uint           `gorm:"not null;index" json:"coupon_id"`
	ModalityID        *uint          `gorm:"index" json:"modality_id"`
	CourseID          *uint          `gorm:"index" json:"course_id"`
	DiscountCents     *int64         `json:"discount_cents"`
	DiscountPercent   *float64       `json:"discount_percent"`
	CommissionCents   *int64         `json:"commission_cents"`
	CommissionPercent *float64       `json:"commission_percent"`
	CreatedAt         time.Time      `json:"created_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`
}

func (CouponConfiguration) TableName() string { return "coupon_configurations" }
