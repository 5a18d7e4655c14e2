package domain

const (
	RoleAdmin     = "ADMIN"
	RoleSeller    = "SELLER"
	RoleAffiliate = "AFFILIATE"
)

const (
	PaymentStatusPending   = "PENDING"
	PaymentStatusPartial   = "PARTIAL"
	PaymentStatusPaid      = "PAID"
	PaymentStatusCancelled = "CANCELLED"
)

const (
	PaymentMethodCash   = "CASH"
	PaymentMethodCard   = "CARD"
	PaymentMethodPix    = "PIX"
	PaymentMethodBoleto = "BOLETO"
)

// Coupon matching modes: GENERAL keys pricing on course modality,
// SPECIFIC keys on the exact course.
const (
	CouponModeGeneral  = "GENERAL"
	CouponModeSpecific = "SPECIFIC"
)

// Numeric payment-link statuses, stored locally and reported to clients.
const (
	LinkStatusPending   = 1
	LinkStatusPaid      = 2
	LinkStatusCancelled = 3
)

// ValidPaymentStatus reports whether s is one of the transaction payment statuses.
func ValidPaymentStatus(s string) bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPartial, PaymentStatusPaid, PaymentStatusCancelled:
		return true
	}
	return false
}
