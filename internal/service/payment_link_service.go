package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"drivehub/internal/domain"
	"drivehub/internal/models"
	"drivehub/pkg/gateway"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type linkStore interface {
	Create(l *models.PaymentLink) error
	HasPendingByTransaction(transactionID uint) (bool, error)
	ListByTransaction(transactionID uint) ([]models.PaymentLink, error)
}

// PaymentLinkService requests charges from the gateway and persists the
// resulting links. At most one pending link may exist per transaction.
type PaymentLinkService struct {
	links    linkStore
	students studentStore
	provider gateway.Provider
	methods  []string
	now      func() time.Time
}

func NewPaymentLinkService(links linkStore, students studentStore, provider gateway.Provider, methods []string) *PaymentLinkService {
	return &PaymentLinkService{
		links:    links,
		students: students,
		provider: provider,
		methods:  methods,
		now:      time.Now,
	}
}

// Generate opens a charge at the gateway and records it. The order number is
// derived from the student's national ID plus the current timestamp and acts
// as the idempotency key for every later provider call.
func (s *PaymentLinkService) Generate(ctx context.Context, studentID uint, transactionID *uint, amountCents int64, description string) (*models.PaymentLink, error) {
	student, err := s.students.GetByID(studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrStudentNotFound
		}
		return nil, err
	}
	if transactionID != nil {
		pending, err := s.links.HasPendingByTransaction(*transactionID)
		if err != nil {
			return nil, err
		}
		if pending {
			return nil, domain.ErrLinkPendingExists
		}
	}

	orderNumber := buildOrderNumber(student.NationalID, s.now())
	charge, err := s.provider.CreateCharge(ctx, gateway.ChargeRequest{
		OrderNumber:    orderNumber,
		AmountCents:    amountCents,
		Description:    description,
		PaymentMethods: s.methods,
	})
	if err != nil {
		return nil, err
	}

	link := &models.PaymentLink{
		StudentID:     student.ID,
		TransactionID: transactionID,
		ProviderID:    charge.ChargeID,
		OrderNumber:   orderNumber,
		Status:        MapProviderStatus(charge.Status),
		URL:           charge.LinkURL,
	}
	if err := s.links.Create(link); err != nil {
		return nil, err
	}
	log.Info().Str("component", "payment_link").
		Str("order_number", orderNumber).Uint("student_id", student.ID).
		Int64("amount_cents", amountCents).Msg("payment link created")
	return link, nil
}

// ListByTransaction exposes a transaction's link history.
func (s *PaymentLinkService) ListByTransaction(transactionID uint) ([]models.PaymentLink, error) {
	return s.links.ListByTransaction(transactionID)
}

// buildOrderNumber packs the national ID digits and a unix timestamp into the
// provider idempotency key.
func buildOrderNumber(nationalID string, now time.Time) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, nationalID)
	return fmt.Sprintf("%s%d", digits, now.Unix())
}
