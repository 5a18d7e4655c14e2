package repository

import (
	"time"

	"drivehub/internal/domain"
	"drivehub/internal/models"

	"gorm.io/gorm"
)

type PaymentLinkRepository struct {
	db *gorm.DB
}

func NewPaymentLinkRepository(db *gorm.DB) *PaymentLinkRepository {
	return &PaymentLinkRepository{db: db}
}

func (r *PaymentLinkRepository) Create(l *models.PaymentLink) error {
	return r.db.Create(l).Error
}

func (r *PaymentLinkRepository) GetByID(id uint) (*models.PaymentLink, error) {
	var l models.PaymentLink
	if err := r.db.First(&l, id).Error; err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *PaymentLinkRepository) GetByOrderNumber(orderNumber string) (*models.PaymentLink, error) {
	var l models.PaymentLink
	err := r.db.Where("order_number = ?", orderNumber).First(&l).Error
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *PaymentLinkRepository) HasPendingByTransaction(transactionID uint) (bool, error) {
	var n int64
	err := r.db.Model(&models.PaymentLink{}).
		Where("transaction_id = ? AND status = ?", transactionID, domain.LinkStatusPending).
		Count(&n).Error
	return n > 0, err
}

// ListPending returns every link still awaiting settlement, preloading the
// student so the reconciler can log who the charge belongs to.
func (r *PaymentLinkRepository) ListPending() ([]models.PaymentLink, error) {
	var list []models.PaymentLink
	err := r.db.Preload("Student").
		Where("status = ?", domain.LinkStatusPending).
		Order("created_at").
		Find(&list).Error
	return list, err
}

func (r *PaymentLinkRepository) ListPendingByStudent(studentID uint) ([]models.PaymentLink, error) {
	var list []models.PaymentLink
	err := r.db.Where("student_id = ? AND status = ?", studentID, domain.LinkStatusPending).
		Order("created_at").
		Find(&list).Error
	return list, err
}

func (r *PaymentLinkRepository) ListByTransaction(transactionID uint) ([]models.PaymentLink, error) {
	var list []models.PaymentLink
	err := r.db.Where("transaction_id = ?", transactionID).Order("created_at").Find(&list).Error
	return list, err
}

// ApplyStatus moves a link to newStatus and, when the link is bound to a
// transaction, propagates the matching payment status in the same unit.
// Paid stamps paidAt as the payment date, cancelled clears it, pending leaves
// it untouched.
func (r *PaymentLinkRepository) ApplyStatus(l *models.PaymentLink, newStatus int, paidAt time.Time) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.PaymentLink{}).Where("id = ?", l.ID).
			Update("status", newStatus).Error; err != nil {
			return err
		}
		if l.TransactionID == nil {
			return nil
		}
		updates := map[string]interface{}{}
		switch newStatus {
		case domain.LinkStatusPaid:
			updates["status"] = domain.PaymentStatusPaid
			updates["payment_date"] = paidAt
		case domain.LinkStatusCancelled:
			updates["status"] = domain.PaymentStatusCancelled
			updates["payment_date"] = nil
		case domain.LinkStatusPending:
			updates["status"] = domain.PaymentStatusPending
		}
		return tx.Model(&models.Transaction{}).Where("id = ?", *l.TransactionID).
			Updates(updates).Error
	})
}
