package service

import (
	"math"

	"drivehub/internal/domain"
	"drivehub/internal/models"
)

// PricedVia records which configuration branch produced a price, so callers
// can tell an exact course match from the first-configuration fallback.
const (
	PricedViaModality = "MODALITY"
	PricedViaExact    = "EXACT_COURSE"
	PricedViaFallback = "FALLBACK"
)

// PriceResult is the outcome of applying a coupon to a purchase. Applicable
// distinguishes "no configuration matched" from "matched with zero discount".
type PriceResult struct {
	Applicable      bool
	Via             string
	DiscountCents   int64
	CommissionCents int64
	FinalCents      int64
}

// PricingService computes discount and commission from a coupon's
// configurations. Pure computation, no persistence.
type PricingService struct{}

func NewPricingService() *PricingService { return &PricingService{} }

// Price selects the applicable configuration for the purchase context and
// computes discount, commission and the final payable amount. GENERAL coupons
// match on modality and ignore the course; SPECIFIC coupons prefer the exact
// course and fall back to the coupon's first configuration when none matches.
// The final amount never goes below zero.
func (s *PricingService) Price(c *models.Coupon, courseID, modalityID uint, amountCents int64) PriceResult {
	cfg, via := selectConfiguration(c, courseID, modalityID)
	if cfg == nil {
		return PriceResult{Applicable: false, FinalCents: amountCents}
	}
	discount := applyRule(cfg.DiscountCents, cfg.DiscountPercent, amountCents)
	commission := applyRule(cfg.CommissionCents, cfg.CommissionPercent, amountCents)
	final := amountCents - discount
	if final < 0 {
		final = 0
	}
	return PriceResult{
		Applicable:      true,
		Via:             via,
		DiscountCents:   discount,
		CommissionCents: commission,
		FinalCents:      final,
	}
}

func selectConfiguration(c *models.Coupon, courseID, modalityID uint) (*models.CouponConfiguration, string) {
	if c.Mode == domain.CouponModeGeneral {
		for i := range c.Configurations {
			cfg := &c.Configurations[i]
			if cfg.ModalityID != nil && *cfg.ModalityID == modalityID {
				return cfg, PricedViaModality
			}
		}
		return nil, ""
	}
	for i := range c.Configurations {
		cfg := &c.Configurations[i]
		if cfg.CourseID != nil && *cfg.CourseID == courseID {
			return cfg, PricedViaExact
		}
	}
	if len(c.Configurations) > 0 {
		return &c.Configurations[0], PricedViaFallback
	}
	return nil, ""
}

// applyRule resolves a fixed-or-percent pair: the fixed value wins when set,
// otherwise the percentage of the purchase amount, rounded to the cent.
func applyRule(fixed *int64, percent *float64, amountCents int64) int64 {
	if fixed != nil {
		return *fixed
	}
	if percent != nil {
		return int64(math.Round(float64(amountCents) * *percent / 100))
	}
	return 0
}
