package repository

import (
	"crypto/rand"
	"errors"
	"fmt"

	"drivehub/internal/domain"
	"drivehub/internal/models"

	"gorm.io/gorm"
)

type CouponRepository struct {
	db *gorm.DB
}

func NewCouponRepository(db *gorm.DB) *CouponRepository {
	return &CouponRepository{db: db}
}

const couponCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// generateCouponCode returns a code like "PROMO-AB12".
func generateCouponCode() (string, error) {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	for i := range b {
		b[i] = couponCodeAlphabet[int(b[i])%len(couponCodeAlphabet)]
	}
	return "PROMO-" + string(b), nil
}

// Create persists a coupon and its configurations, generating a unique code.
// Enforces the one-active-coupon-per-owner rule.
func (r *CouponRepository) Create(c *models.Coupon) error {
	if c.OwnerID != nil && c.Active {
		owned, err := r.HasActiveByOwner(*c.OwnerID)
		if err != nil {
			return err
		}
		if owned {
			return domain.ErrOwnerHasActiveCoupon
		}
	}
	return createWithFreshCode(func(code string) error {
		c.Code = code
		return r.db.Create(c).Error
	})
}

// createWithFreshCode retries the insert with a new code on a unique-index
// collision. Any other error (constraint, connection) surfaces immediately.
func createWithFreshCode(create func(code string) error) error {
	for i := 0; i < 10; i++ {
		code, err := generateCouponCode()
		if err != nil {
			return err
		}
		err = create(code)
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return err
		}
	}
	return fmt.Errorf("failed to generate a unique coupon code after retries")
}

func (r *CouponRepository) GetByID(id uint) (*models.Coupon, error) {
	var c models.Coupon
	if err := r.db.Preload("Configurations").First(&c, id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// GetByCode matches the immutable code exactly, active or not.
func (r *CouponRepository) GetByCode(code string) (*models.Coupon, error) {
	var c models.Coupon
	err := r.db.Preload("Configurations").Where("code = ?", code).First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// FindByName returns all coupons whose display name matches case-insensitively.
// MySQL's default collation compares case-insensitively already; LOWER keeps
// the behavior explicit.
func (r *CouponRepository) FindByName(name string) ([]models.Coupon, error) {
	var list []models.Coupon
	err := r.db.Preload("Configurations").
		Where("LOWER(name) = LOWER(?)", name).
		Order("created_at").
		Find(&list).Error
	return list, err
}

func (r *CouponRepository) HasActiveByOwner(ownerID uint) (bool, error) {
	var n int64
	err := r.db.Model(&models.Coupon{}).
		Where("owner_id = ? AND active = ?", ownerID, true).
		Count(&n).Error
	return n > 0, err
}

func (r *CouponRepository) List(limit, offset int) ([]models.Coupon, error) {
	var list []models.Coupon
	err := r.db.Preload("Configurations").
		Order("created_at DESC").Limit(limit).Offset(offset).Find(&list).Error
	return list, err
}

// SetActive toggles the active flag, enforcing the one-active-per-owner rule
// on activation.
func (r *CouponRepository) SetActive(id uint, active bool) error {
	if active {
		c, err := r.GetByID(id)
		if err != nil {
			return err
		}
		if c.OwnerID != nil {
			var n int64
			err := r.db.Model(&models.Coupon{}).
				Where("owner_id = ? AND active = ? AND id <> ?", *c.OwnerID, true, id).
				Count(&n).Error
			if err != nil {
				return err
			}
			if n > 0 {
				return domain.ErrOwnerHasActiveCoupon
			}
		}
	}
	return r.db.Model(&models.Coupon{}).Where("id = ?", id).Update("active", active).Error
}

// IncrementUsage atomically bumps the usage counter, honoring the usage limit.
func (r *CouponRepository) IncrementUsage(id uint) error {
	return incrementCouponUsage(r.db, id)
}

// DecrementUsage atomically releases one usage, never going below zero.
func (r *CouponRepository) DecrementUsage(id uint) error {
	return decrementCouponUsage(r.db, id)
}

// incrementCouponUsage is the single write path for consuming a coupon. The
// WHERE guard makes increment-past-the-limit impossible even under concurrent
// creates; callers run it inside the same transaction that consumes the coupon.
func incrementCouponUsage(tx *gorm.DB, id uint) error {
	res := tx.Model(&models.Coupon{}).
		Where("id = ? AND (usage_limit IS NULL OR usage_count < usage_limit)", id).
		UpdateColumn("usage_count", gorm.Expr("usage_count + 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrCouponExhausted
	}
	return nil
}

func decrementCouponUsage(tx *gorm.DB, id uint) error {
	return tx.Model(&models.Coupon{}).
		Where("id = ? AND usage_count > 0", id).
		UpdateColumn("usage_count", gorm.Expr("usage_count - 1")).Error
}
