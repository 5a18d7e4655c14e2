package handler

import (
	"errors"
	"net/http"

	"drivehub/internal/domain"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// respondError maps core errors to HTTP. Domain errors carry their stable
// reason code to the client; anything else is a generic persistence/provider
// failure and stays opaque.
func respondError(c *gin.Context, err error) {
	var derr *domain.Error
	if errors.As(err, &derr) {
		c.JSON(statusFor(derr), gin.H{"error": derr.Message, "code": derr.Code})
		return
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}

func statusFor(err *domain.Error) int {
	switch err.Code {
	case "STUDENT_NOT_FOUND", "COURSE_NOT_FOUND", "TRANSACTION_NOT_FOUND", "COUPON_NOT_FOUND":
		return http.StatusNotFound
	case "PENDING_TRANSACTION_EXISTS", "OWNER_HAS_ACTIVE_COUPON", "PAYMENT_LINK_PENDING", "TRANSACTION_PAID":
		return http.StatusConflict
	default:
		return http.StatusUnprocessableEntity
	}
}
