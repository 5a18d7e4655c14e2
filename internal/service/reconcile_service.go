package service

import (
	"context"
	"strings"
	"time"

	"drivehub/internal/domain"
	"drivehub/internal/metrics"
	"drivehub/internal/models"
	"drivehub/pkg/gateway"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

type reconcileLinkStore interface {
	ListPending() ([]models.PaymentLink, error)
	ListPendingByStudent(studentID uint) ([]models.PaymentLink, error)
	ApplyStatus(l *models.PaymentLink, newStatus int, paidAt time.Time) error
}

// LinkDetail is the per-link outcome of a reconciliation sweep.
type LinkDetail struct {
	LinkID      uint   `json:"link_id"`
	OrderNumber string `json:"order_number"`
	FromStatus  int    `json:"from_status"`
	ToStatus    int    `json:"to_status"`
	Updated     bool   `json:"updated"`
	Error       string `json:"error,omitempty"`
}

// Report aggregates a sweep. One link failing never aborts the others; its
// error lands here instead.
type Report struct {
	Checked int          `json:"checked"`
	Updated int          `json:"updated"`
	Errors  int          `json:"errors"`
	Details []LinkDetail `json:"details"`
}

// statusTable normalizes the provider's known status vocabulary. Strings not
// in the table fall through to keyword matching, and anything still
// unrecognized stays Pending: an unknown provider string must never fail a
// purchase.
var statusTable = map[string]int{
	"paid":            domain.LinkStatusPaid,
	"approved":        domain.LinkStatusPaid,
	"confirmed":       domain.LinkStatusPaid,
	"available":       domain.LinkStatusPaid,
	"settled":         domain.LinkStatusPaid,
	"pending":         domain.LinkStatusPending,
	"waiting_payment": domain.LinkStatusPending,
	"in_analysis":     domain.LinkStatusPending,
	"processing":      domain.LinkStatusPending,
	"created":         domain.LinkStatusPending,
	"cancelled":       domain.LinkStatusCancelled,
	"canceled":        domain.LinkStatusCancelled,
	"refunded":        domain.LinkStatusCancelled,
	"denied":          domain.LinkStatusCancelled,
	"rejected":        domain.LinkStatusCancelled,
	"expired":         domain.LinkStatusCancelled,
	"failed":          domain.LinkStatusCancelled,
}

// MapProviderStatus maps the gateway's free-text status to a link status.
func MapProviderStatus(s string) int {
	norm := strings.ToLower(strings.TrimSpace(s))
	if st, ok := statusTable[norm]; ok {
		return st
	}
	if strings.Contains(norm, "approv") || strings.Contains(norm, "paid") {
		return domain.LinkStatusPaid
	}
	if strings.Contains(norm, "cancel") || strings.Contains(norm, "denied") || strings.Contains(norm, "reject") {
		return domain.LinkStatusCancelled
	}
	return domain.LinkStatusPending
}

// ReconcileService keeps local payment status eventually consistent with the
// gateway, which is the source of truth for whether money moved.
type ReconcileService struct {
	links       reconcileLinkStore
	provider    gateway.Provider
	callTimeout time.Duration
	sweeps      singleflight.Group
	now         func() time.Time
}

func NewReconcileService(links reconcileLinkStore, provider gateway.Provider, callTimeout time.Duration) *ReconcileService {
	if callTimeout <= 0 {
		callTimeout = 15 * time.Second
	}
	return &ReconcileService{
		links:       links,
		provider:    provider,
		callTimeout: callTimeout,
		now:         time.Now,
	}
}

// ReconcileOne checks a single link against the gateway and, when the mapped
// status differs from the stored one, applies link and transaction updates as
// one unit. Applying an unchanged status is a no-op, which makes the operation
// idempotent. The provider call is bounded so one slow link cannot stall a
// sweep.
func (s *ReconcileService) ReconcileOne(ctx context.Context, link *models.PaymentLink) (bool, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()
	raw, err := s.provider.GetChargeStatus(callCtx, link.OrderNumber)
	if err != nil {
		return false, err
	}
	mapped := MapProviderStatus(raw)
	if mapped == link.Status {
		return false, nil
	}
	if err := s.links.ApplyStatus(link, mapped, s.now()); err != nil {
		return false, err
	}
	log.Info().Str("component", "reconciler").
		Str("order_number", link.OrderNumber).
		Str("provider_status", raw).
		Int("from", link.Status).Int("to", mapped).
		Msg("payment link status updated")
	link.Status = mapped
	return true, nil
}

// ReconcileAll sweeps every pending link. Concurrent calls (periodic tick plus
// a manual trigger) collapse into a single in-flight sweep.
func (s *ReconcileService) ReconcileAll(ctx context.Context) (*Report, error) {
	v, err, _ := s.sweeps.Do("all", func() (interface{}, error) {
		start := s.now()
		links, err := s.links.ListPending()
		if err != nil {
			return nil, err
		}
		report := s.reconcileLinks(ctx, links)
		metrics.ReconcileDuration.Observe(time.Since(start).Seconds())
		return report, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Report), nil
}

// ReconcileStudent is the targeted manual check; it shares the per-link logic
// with the periodic sweep and may run alongside it, since re-applying an
// unchanged final status is a no-op.
func (s *ReconcileService) ReconcileStudent(ctx context.Context, studentID uint) (*Report, error) {
	links, err := s.links.ListPendingByStudent(studentID)
	if err != nil {
		return nil, err
	}
	return s.reconcileLinks(ctx, links), nil
}

func (s *ReconcileService) reconcileLinks(ctx context.Context, links []models.PaymentLink) *Report {
	report := &Report{Details: make([]LinkDetail, 0, len(links))}
	for i := range links {
		link := &links[i]
		detail := LinkDetail{LinkID: link.ID, OrderNumber: link.OrderNumber, FromStatus: link.Status}
		updated, err := s.ReconcileOne(ctx, link)
		detail.ToStatus = link.Status
		report.Checked++
		metrics.ReconcileChecked.Inc()
		if err != nil {
			report.Errors++
			detail.Error = err.Error()
			metrics.ReconcileErrors.Inc()
			log.Warn().Str("component", "reconciler").
				Str("order_number", link.OrderNumber).Err(err).
				Msg("link reconciliation failed")
		} else if updated {
			report.Updated++
			detail.Updated = true
			metrics.ReconcileUpdated.Inc()
		}
		report.Details = append(report.Details, detail)
	}
	return report
}

// Run fires a sweep on a fixed interval until the context is cancelled. Each
// tick runs detached so a slow sweep never blocks the ticker; the singleflight
// group in ReconcileAll guarantees an unfinished sweep is not started twice.
func (s *ReconcileService) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	log.Info().Str("component", "reconciler").Dur("interval", interval).Msg("periodic reconciliation started")
	for {
		select {
		case <-ctx.Done():
			log.Info().Str("component", "reconciler").Msg("periodic reconciliation stopped")
			return
		case <-ticker.C:
			go func() {
				if _, err := s.ReconcileAll(ctx); err != nil {
					log.Error().Str("component", "reconciler").Err(err).Msg("sweep failed")
				}
			}()
		}
	}
}
