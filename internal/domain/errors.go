package domain

import "fmt"

// Error is a precondition/validation failure with a stable reason code.
// Callers can correct the input and resubmit; these are never retried
// automatically.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string { return fmt.Sprintf("%s: %s", e.Code, e.Message) }

// Reason-coded domain errors. Persistence and gateway failures are NOT wrapped
// in these; they surface as plain errors and abort the whole atomic unit.
var (
	ErrStudentNotFound      = &Error{Code: "STUDENT_NOT_FOUND", Message: "student not found"}
	ErrCourseNotFound       = &Error{Code: "COURSE_NOT_FOUND", Message: "referenced course not found"}
	ErrTransactionNotFound  = &Error{Code: "TRANSACTION_NOT_FOUND", Message: "transaction not found"}
	ErrPendingConflict      = &Error{Code: "PENDING_TRANSACTION_EXISTS", Message: "student already has a pending transaction"}
	ErrPaidImmutable        = &Error{Code: "TRANSACTION_PAID", Message: "courses and discount cannot change after payment"}
	ErrDeletePaid           = &Error{Code: "TRANSACTION_PAID", Message: "paid transactions cannot be deleted"}
	ErrCouponNotFound       = &Error{Code: "COUPON_NOT_FOUND", Message: "coupon not found"}
	ErrCouponInactive       = &Error{Code: "COUPON_INACTIVE", Message: "coupon is not active"}
	ErrCouponExpired        = &Error{Code: "COUPON_EXPIRED", Message: "coupon has expired"}
	ErrCouponExhausted      = &Error{Code: "COUPON_USAGE_EXCEEDED", Message: "coupon usage limit reached"}
	ErrCouponNotApplicable  = &Error{Code: "COUPON_NOT_APPLICABLE", Message: "coupon has no configuration for this purchase"}
	ErrOwnerHasActiveCoupon = &Error{Code: "OWNER_HAS_ACTIVE_COUPON", Message: "user already owns an active coupon"}
	ErrLinkPendingExists    = &Error{Code: "PAYMENT_LINK_PENDING", Message: "transaction already has a pending payment link"}
)
