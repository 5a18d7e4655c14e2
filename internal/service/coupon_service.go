package service

import (
	"errors"
	"time"

	"drivehub/internal/domain"
	"drivehub/internal/models"

	"gorm.io/gorm"
)

type couponStore interface {
	GetByCode(code string) (*models.Coupon, error)
	FindByName(name string) ([]models.Coupon, error)
}

// CouponService resolves and validates coupons. Both operations are
// read-only; usage counting belongs to the transaction lifecycle.
type CouponService struct {
	coupons couponStore
	now     func() time.Time
}

func NewCouponService(coupons couponStore) *CouponService {
	return &CouponService{coupons: coupons, now: time.Now}
}

// Resolve looks a coupon up by its immutable code first, then falls back to a
// case-insensitive display-name match. When several coupons share a name, the
// first active one wins; a name that only matches inactive coupons resolves to
// nothing (the single-match case is returned as-is and left to Validate).
func (s *CouponService) Resolve(identifier string) (*models.Coupon, error) {
	c, err := s.coupons.GetByCode(identifier)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	matches, err := s.coupons.FindByName(identifier)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, domain.ErrCouponNotFound
	}
	if len(matches) == 1 {
		return &matches[0], nil
	}
	for i := range matches {
		if matches[i].Active {
			return &matches[i], nil
		}
	}
	return nil, domain.ErrCouponNotFound
}

// Validate reports whether the coupon can be consumed right now. Resolution
// alone does not guarantee usability; callers always validate after resolving.
func (s *CouponService) Validate(c *models.Coupon) error {
	if !c.Active {
		return domain.ErrCouponInactive
	}
	if c.Expired(s.now()) {
		return domain.ErrCouponExpired
	}
	if c.Exhausted() {
		return domain.ErrCouponExhausted
	}
	return nil
}

// ResolveAndValidate is the combined lookup used by transaction creation.
func (s *CouponService) ResolveAndValidate(identifier string) (*models.Coupon, error) {
	c, err := s.Resolve(identifier)
	if err != nil {
		return nil, err
	}
	if err := s.Validate(c); err != nil {
		return nil, err
	}
	return c, nil
}
