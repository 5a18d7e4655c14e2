package handler

import (
	"net/http"
	"strconv"
	"time"

	"drivehub/internal/models"
	"drivehub/internal/repository"
	"drivehub/internal/service"

	"github.com/gin-gonic/gin"
)

type CouponHandler struct {
	repo       *repository.CouponRepository
	courseRepo *repository.CourseRepository
	couponSvc  *service.CouponService
	pricingSvc *service.PricingService
}

func NewCouponHandler(
	repo *repository.CouponRepository,
	courseRepo *repository.CourseRepository,
	couponSvc *service.CouponService,
	pricingSvc *service.PricingService,
) *CouponHandler {
	return &CouponHandler{repo: repo, courseRepo: courseRepo, couponSvc: couponSvc, pricingSvc: pricingSvc}
}

type couponConfigurationRequest struct {
	ModalityID        *uint    `json:"modality_id"`
	CourseID          *uint    `json:"course_id"`
	DiscountCents     *int64   `json:"discount_cents"`
	DiscountPercent   *float64 `json:"discount_percent"`
	CommissionCents   *int64   `json:"commission_cents"`
	CommissionPercent *float64 `json:"commission_percent"`
}

func (r *couponConfigurationRequest) valid() bool {
	discountOK := (r.DiscountCents != nil) != (r.DiscountPercent != nil)
	commissionOK := (r.CommissionCents != nil) != (r.CommissionPercent != nil)
	return discountOK && commissionOK
}

type createCouponRequest struct {
	Name           string                       `json:"name"`
	Mode           string                       `json:"mode" binding:"required,oneof=GENERAL SPECIFIC"`
	OwnerID        *uint                        `json:"owner_id"`
	ExpiresAt      *time.Time                   `json:"expires_at"`
	UsageLimit     *int                         `json:"usage_limit"`
	Configurations []couponConfigurationRequest `json:"configurations" binding:"required,min=1"`
}

func (h *CouponHandler) Create(c *gin.Context) {
	var req createCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	coupon := &models.Coupon{
		Name:       req.Name,
		Mode:       req.Mode,
		Active:     true,
		OwnerID:    req.OwnerID,
		ExpiresAt:  req.ExpiresAt,
		UsageLimit: req.UsageLimit,
	}
	for _, cfg := range req.Configurations {
		if !cfg.valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "each configuration needs exactly one discount and one commission rule"})
			return
		}
		coupon.Configurations = append(coupon.Configurations, models.CouponConfiguration{
			ModalityID:        cfg.ModalityID,
			CourseID:          cfg.CourseID,
			DiscountCents:     cfg.DiscountCents,
			DiscountPercent:   cfg.DiscountPercent,
			CommissionCents:   cfg.CommissionCents,
			CommissionPercent: cfg.CommissionPercent,
		})
	}
	if err := h.repo.Create(coupon); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, coupon)
}

func (h *CouponHandler) Get(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	coupon, err := h.repo.GetByID(uint(id))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, coupon)
}

func (h *CouponHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	list, err := h.repo.List(limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

type setActiveRequest struct {
	Active *bool `json:"active" binding:"required"`
}

func (h *CouponHandler) SetActive(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	var req setActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.repo.SetActive(uint(id), *req.Active); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Resolve looks a coupon up by code or display name and reports whether it is
// currently usable.
func (h *CouponHandler) Resolve(c *gin.Context) {
	identifier := c.Query("identifier")
	if identifier == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "identifier is required"})
		return
	}
	coupon, err := h.couponSvc.Resolve(identifier)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.couponSvc.Validate(coupon); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, coupon)
}

type priceRequest struct {
	Identifier  string `json:"identifier" binding:"required"`
	CourseID    uint   `json:"course_id" binding:"required"`
	AmountCents int64  `json:"amount_cents" binding:"required"`
}

// Price previews discount and commission for a purchase without creating
// anything.
func (h *CouponHandler) Price(c *gin.Context) {
	var req priceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	coupon, err := h.couponSvc.ResolveAndValidate(req.Identifier)
	if err != nil {
		respondError(c, err)
		return
	}
	course, err := h.courseRepo.GetByID(req.CourseID)
	if err != nil {
		respondError(c, err)
		return
	}
	result := h.pricingSvc.Price(coupon, course.ID, course.ModalityID, req.AmountCents)
	c.JSON(http.StatusOK, result)
}
