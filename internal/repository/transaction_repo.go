package repository

import (
	"time"

	"drivehub/internal/domain"
	"drivehub/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TransactionFilter enumerates the supported listing filters. Zero values
// mean "not filtered".
type TransactionFilter struct {
	StudentID uint
	Status    string
	CouponID  uint
	From      *time.Time
	To        *time.Time
	Limit     int
	Offset    int
}

// NewTransactionFilter returns a filter with the default page size.
func NewTransactionFilter() TransactionFilter {
	return TransactionFilter{Limit: 20}
}

type TransactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// CreateAtomic persists the student (when not yet saved), the transaction,
// its course lines and the coupon usage increment as one unit. A failure
// anywhere, including the usage-limit guard, rolls back everything. For an
// existing student the pending-exclusivity check runs inside the unit under a
// row lock, so two concurrent creates cannot both commit a PENDING
// transaction.
func (r *TransactionRepository) CreateAtomic(student *models.Student, t *models.Transaction, lines []models.TransactionCourse) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if student != nil && student.ID == 0 {
			if err := tx.Create(student).Error; err != nil {
				return err
			}
		} else if student != nil {
			var locked models.Student
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&locked, student.ID).Error; err != nil {
				return err
			}
			var n int64
			if err := tx.Model(&models.Transaction{}).
				Where("student_id = ? AND status = ?", student.ID, domain.PaymentStatusPending).
				Count(&n).Error; err != nil {
				return err
			}
			if n > 0 {
				return domain.ErrPendingConflict
			}
		}
		if student != nil {
			t.StudentID = student.ID
		}
		if err := tx.Create(t).Error; err != nil {
			return err
		}
		for i := range lines {
			lines[i].TransactionID = t.ID
			if err := tx.Create(&lines[i]).Error; err != nil {
				return err
			}
		}
		if t.CouponID != nil {
			if err := incrementCouponUsage(tx, *t.CouponID); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *TransactionRepository) GetByID(id uint) (*models.Transaction, error) {
	var t models.Transaction
	err := r.db.Preload("Courses").Preload("Coupon").First(&t, id).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// UpdateAtomic saves the transaction and settles any coupon change in the same
// unit: the new coupon (if any) is consumed under its limit guard and the old
// one (if any) released. prevCouponID is the coupon attached before the update.
// Associations are omitted from the save; a Coupon preloaded by GetByID would
// otherwise write the old coupon_id back over a swap or clear.
func (r *TransactionRepository) UpdateAtomic(t *models.Transaction, prevCouponID *uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if !couponRefEqual(prevCouponID, t.CouponID) {
			if t.CouponID != nil {
				if err := incrementCouponUsage(tx, *t.CouponID); err != nil {
					return err
				}
			}
			if prevCouponID != nil {
				if err := decrementCouponUsage(tx, *prevCouponID); err != nil {
					return err
				}
			}
		}
		return tx.Omit(clause.Associations).Save(t).Error
	})
}

// DeleteCascade removes the transaction and everything hanging off it:
// coupon usage is released first, then payment links, then course lines, then
// the transaction row. The order follows the referential constraints; the
// whole sequence is all-or-nothing.
func (r *TransactionRepository) DeleteCascade(t *models.Transaction) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if t.CouponID != nil {
			if err := decrementCouponUsage(tx, *t.CouponID); err != nil {
				return err
			}
		}
		if err := tx.Where("transaction_id = ?", t.ID).Delete(&models.PaymentLink{}).Error; err != nil {
			return err
		}
		if err := tx.Where("transaction_id = ?", t.ID).Delete(&models.TransactionCourse{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Transaction{}, t.ID).Error
	})
}

func (r *TransactionRepository) List(f TransactionFilter) ([]models.Transaction, error) {
	q := r.db.Model(&models.Transaction{}).Preload("Courses").Preload("Coupon")
	if f.StudentID != 0 {
		q = q.Where("student_id = ?", f.StudentID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.CouponID != 0 {
		q = q.Where("coupon_id = ?", f.CouponID)
	}
	if f.From != nil {
		q = q.Where("created_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("created_at <= ?", *f.To)
	}
	if f.Limit <= 0 {
		f.Limit = 20
	}
	var list []models.Transaction
	err := q.Order("created_at DESC").Limit(f.Limit).Offset(f.Offset).Find(&list).Error
	return list, err
}

func couponRefEqual(a, b *uint) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
