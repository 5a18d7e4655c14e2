package service

import (
	"errors"
	"time"

	"drivehub/internal/domain"
	"drivehub/internal/models"

	"gorm.io/gorm"
)

type transactionStore interface {
	CreateAtomic(student *models.Student, t *models.Transaction, lines []models.TransactionCourse) error
	GetByID(id uint) (*models.Transaction, error)
	UpdateAtomic(t *models.Transaction, prevCouponID *uint) error
	DeleteCascade(t *models.Transaction) error
}

type studentStore interface {
	GetByID(id uint) (*models.Student, error)
	GetByNationalID(nationalID string) (*models.Student, error)
}

type courseStore interface {
	GetByIDs(ids []uint) ([]models.Course, error)
}

type couponResolver interface {
	ResolveAndValidate(identifier string) (*models.Coupon, error)
}

// Actor is the authenticated user performing an operation, as handed over by
// the HTTP layer.
type Actor struct {
	ID   uint
	Role string
}

// StudentInput carries the enrollee identity for a fresh purchase.
type StudentInput struct {
	Name       string
	NationalID string
	Email      string
	Phone      string
	BirthDate  *time.Time
}

// CreateTransactionInput is one purchase: a course bundle with a single total
// value, an optional coupon and the requested payment terms.
type CreateTransactionInput struct {
	Student       StudentInput
	CourseIDs     []uint
	ValueCents    int64
	PaymentMethod string
	Installments  int
	Status        string
	ForecastDate  *time.Time
	CouponCode    string
}

// UpdateTransactionInput mutates an existing transaction. Nil fields are left
// untouched. CouponCode set to the empty string clears the coupon.
type UpdateTransactionInput struct {
	Status        *string
	PaymentMethod *string
	Installments  *int
	ForecastDate  *time.Time
	CouponCode    *string
}

// TransactionService owns the purchase lifecycle: creation, update, deletion
// and the coupon bookkeeping tied to each of them.
type TransactionService struct {
	transactions transactionStore
	students     studentStore
	courses      courseStore
	coupons      couponResolver
	pricing      *PricingService
	now          func() time.Time
}

func NewTransactionService(
	transactions transactionStore,
	students studentStore,
	courses courseStore,
	coupons couponResolver,
	pricing *PricingService,
) *TransactionService {
	return &TransactionService{
		transactions: transactions,
		students:     students,
		courses:      courses,
		coupons:      coupons,
		pricing:      pricing,
		now:          time.Now,
	}
}

// Create registers a purchase. The student row is reused when the national ID
// is already known, created otherwise — in the latter case inside the same
// atomic unit as the transaction, its course lines and the coupon increment.
// A student with an unresolved pending transaction cannot start another one.
// Sellers are always forced to PENDING.
func (s *TransactionService) Create(actor Actor, in CreateTransactionInput) (*models.Transaction, error) {
	student, err := s.students.GetByNationalID(in.Student.NationalID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		student = &models.Student{
			Name:       in.Student.Name,
			NationalID: in.Student.NationalID,
			Email:      in.Student.Email,
			Phone:      in.Student.Phone,
			BirthDate:  in.Student.BirthDate,
		}
	}
	return s.create(actor, student, in)
}

// AddCourses opens a new transaction for an existing student. Historical
// purchases accumulate; only one open negotiation is allowed at a time, so the
// pending-exclusivity precondition applies here too.
func (s *TransactionService) AddCourses(actor Actor, studentID uint, in CreateTransactionInput) (*models.Transaction, error) {
	student, err := s.students.GetByID(studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrStudentNotFound
		}
		return nil, err
	}
	return s.create(actor, student, in)
}

func (s *TransactionService) create(actor Actor, student *models.Student, in CreateTransactionInput) (*models.Transaction, error) {
	lines, firstCourse, err := s.buildCourseLines(in.CourseIDs)
	if err != nil {
		return nil, err
	}

	t := &models.Transaction{
		ValueCents:    in.ValueCents,
		PaymentMethod: in.PaymentMethod,
		Installments:  in.Installments,
		Status:        requestedStatus(actor, in.Status),
		ForecastDate:  in.ForecastDate,
		CreatedByID:   actor.ID,
	}
	if t.Installments <= 0 {
		t.Installments = 1
	}

	// Coupon resolution and validation happen before the atomic unit; the
	// usage increment happens inside it, so a failed commit never consumes
	// the coupon.
	if in.CouponCode != "" {
		coupon, err := s.coupons.ResolveAndValidate(in.CouponCode)
		if err != nil {
			return nil, err
		}
		priced := s.pricing.Price(coupon, firstCourse.ID, firstCourse.ModalityID, in.ValueCents)
		if !priced.Applicable {
			return nil, domain.ErrCouponNotApplicable
		}
		t.CouponID = &coupon.ID
		t.DiscountCents = priced.DiscountCents
		t.CommissionCents = priced.CommissionCents
	}

	if err := s.transactions.CreateAtomic(student, t, lines); err != nil {
		return nil, err
	}
	return t, nil
}

// Update mutates payment terms, status and coupon of an existing transaction.
// Once PAID, courses and discount are frozen: a coupon change is refused. A
// status change remains possible (explicit operator override, e.g.
// PAID -> CANCELLED). Sellers cannot change status.
func (s *TransactionService) Update(actor Actor, id uint, in UpdateTransactionInput) (*models.Transaction, error) {
	t, err := s.transactions.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, err
	}

	prevCouponID := t.CouponID
	if in.CouponCode != nil {
		if t.IsPaid() {
			return nil, domain.ErrPaidImmutable
		}
		if *in.CouponCode == "" {
			t.CouponID = nil
			t.Coupon = nil
			t.DiscountCents = 0
			t.CommissionCents = 0
		} else {
			coupon, err := s.coupons.ResolveAndValidate(*in.CouponCode)
			if err != nil {
				return nil, err
			}
			if len(t.Courses) == 0 {
				return nil, domain.ErrCourseNotFound
			}
			priced := s.pricing.Price(coupon, t.Courses[0].CourseID, t.Courses[0].ModalityID, t.ValueCents)
			if !priced.Applicable {
				return nil, domain.ErrCouponNotApplicable
			}
			t.CouponID = &coupon.ID
			t.Coupon = coupon
			t.DiscountCents = priced.DiscountCents
			t.CommissionCents = priced.CommissionCents
		}
	}

	if in.PaymentMethod != nil {
		t.PaymentMethod = *in.PaymentMethod
	}
	if in.Installments != nil && *in.Installments > 0 {
		t.Installments = *in.Installments
	}
	if in.ForecastDate != nil {
		t.ForecastDate = in.ForecastDate
	}
	if in.Status != nil && actor.Role != domain.RoleSeller {
		if !domain.ValidPaymentStatus(*in.Status) {
			return nil, &domain.Error{Code: "INVALID_STATUS", Message: "unknown payment status"}
		}
		applyStatus(t, *in.Status, s.now())
	}

	if err := s.transactions.UpdateAtomic(t, prevCouponID); err != nil {
		return nil, err
	}
	return t, nil
}

// Delete removes a transaction that has not been paid, releasing its coupon
// usage and cascading over payment links and course lines in one unit.
func (s *TransactionService) Delete(actor Actor, id uint) error {
	t, err := s.transactions.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrTransactionNotFound
		}
		return err
	}
	if t.IsPaid() {
		return domain.ErrDeletePaid
	}
	return s.transactions.DeleteCascade(t)
}

func (s *TransactionService) buildCourseLines(courseIDs []uint) ([]models.TransactionCourse, *models.Course, error) {
	if len(courseIDs) == 0 {
		return nil, nil, domain.ErrCourseNotFound
	}
	courses, err := s.courses.GetByIDs(courseIDs)
	if err != nil {
		return nil, nil, err
	}
	byID := make(map[uint]models.Course, len(courses))
	for _, c := range courses {
		byID[c.ID] = c
	}
	lines := make([]models.TransactionCourse, 0, len(courseIDs))
	var first *models.Course
	for _, id := range courseIDs {
		c, ok := byID[id]
		if !ok {
			return nil, nil, domain.ErrCourseNotFound
		}
		if first == nil {
			cc := c
			first = &cc
		}
		lines = append(lines, models.TransactionCourse{CourseID: c.ID, ModalityID: c.ModalityID})
	}
	return lines, first, nil
}

// requestedStatus forces sellers to PENDING; unknown statuses also collapse
// to PENDING.
func requestedStatus(actor Actor, requested string) string {
	if actor.Role == domain.RoleSeller || !domain.ValidPaymentStatus(requested) {
		return domain.PaymentStatusPending
	}
	return requested
}

// applyStatus sets the payment status and keeps the payment date coherent
// with it, mirroring the reconciler's propagation rules.
func applyStatus(t *models.Transaction, status string, now time.Time) {
	t.Status = status
	switch status {
	case domain.PaymentStatusPaid:
		if t.PaymentDate == nil {
			t.PaymentDate = &now
		}
	case domain.PaymentStatusCancelled:
		t.PaymentDate = nil
	}
}
