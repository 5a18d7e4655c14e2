package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"drivehub/internal/domain"
	"drivehub/internal/models"

	"drivehub/pkg/gateway"
)

type fakeReconcileStore struct {
	pending []models.PaymentLink
	applied []appliedStatus
}

type appliedStatus struct {
	linkID uint
	status int
	paidAt time.Time
}

func (f *fakeReconcileStore) ListPending() ([]models.PaymentLink, error) {
	out := make([]models.PaymentLink, len(f.pending))
	copy(out, f.pending)
	return out, nil
}

func (f *fakeReconcileStore) ListPendingByStudent(studentID uint) ([]models.PaymentLink, error) {
	var out []models.PaymentLink
	for _, l := range f.pending {
		if l.StudentID == studentID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f *fakeReconcileStore) ApplyStatus(l *models.PaymentLink, newStatus int, paidAt time.Time) error {
	f.applied = append(f.applied, appliedStatus{linkID: l.ID, status: newStatus, paidAt: paidAt})
	return nil
}

type fakeProvider struct {
	statuses map[string]string
	fail     map[string]error
	calls    int
}

func (f *fakeProvider) CreateCharge(ctx context.Context, req gateway.ChargeRequest) (*gateway.ChargeResponse, error) {
	return &gateway.ChargeResponse{
		ChargeID: "ch_" + req.OrderNumber,
		Status:   "waiting_payment",
		LinkURL:  "https://pay.example/" + req.OrderNumber,
	}, nil
}

func (f *fakeProvider) GetChargeStatus(ctx context.Context, orderNumber string) (string, error) {
	f.calls++
	if err, ok := f.fail[orderNumber]; ok {
		return "", err
	}
	return f.statuses[orderNumber], nil
}

func TestMapProviderStatus(t *testing.T) {
	cases := []struct {
		raw  string
		want int
	}{
		{"paid", domain.LinkStatusPaid},
		{"APPROVED", domain.LinkStatusPaid},
		{" settled ", domain.LinkStatusPaid},
		{"payment_approved", domain.LinkStatusPaid}, // keyword fallback
		{"waiting_payment", domain.LinkStatusPending},
		{"in_analysis", domain.LinkStatusPending},
		{"cancelled", domain.LinkStatusCancelled},
		{"canceled", domain.LinkStatusCancelled},
		{"charge_rejected", domain.LinkStatusCancelled}, // keyword fallback
		{"refunded", domain.LinkStatusCancelled},
		{"", domain.LinkStatusPending},
		{"some_new_state", domain.LinkStatusPending},
	}
	for _, c := range cases {
		if got := MapProviderStatus(c.raw); got != c.want {
			t.Errorf("MapProviderStatus(%q) = %d, want %d", c.raw, got, c.want)
		}
	}
}

func TestReconcileOneAppliesChange(t *testing.T) {
	store := &fakeReconcileStore{}
	provider := &fakeProvider{statuses: map[string]string{"ORD1": "approved"}}
	svc := NewReconcileService(store, provider, time.Second)
	now := time.Date(2026, 4, 2, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	link := &models.PaymentLink{ID: 1, OrderNumber: "ORD1", Status: domain.LinkStatusPending}
	updated, err := svc.ReconcileOne(context.Background(), link)
	if err != nil {
		t.Fatalf("ReconcileOne: %v", err)
	}
	if !updated {
		t.Fatal("expected status change")
	}
	if link.Status != domain.LinkStatusPaid {
		t.Fatalf("link.Status = %d, want Paid", link.Status)
	}
	if len(store.applied) != 1 || store.applied[0].status != domain.LinkStatusPaid || !store.applied[0].paidAt.Equal(now) {
		t.Fatalf("ApplyStatus calls = %+v", store.applied)
	}
}

func TestReconcileOneIdempotent(t *testing.T) {
	store := &fakeReconcileStore{}
	provider := &fakeProvider{statuses: map[string]string{"ORD1": "waiting_payment"}}
	svc := NewReconcileService(store, provider, time.Second)

	link := &models.PaymentLink{ID: 1, OrderNumber: "ORD1", Status: domain.LinkStatusPending}
	updated, err := svc.ReconcileOne(context.Background(), link)
	if err != nil {
		t.Fatalf("ReconcileOne: %v", err)
	}
	if updated {
		t.Fatal("unchanged status must be a no-op")
	}
	if len(store.applied) != 0 {
		t.Fatal("ApplyStatus called for an unchanged status")
	}
}

func TestReconcileAllIsolatesErrors(t *testing.T) {
	store := &fakeReconcileStore{pending: []models.PaymentLink{
		{ID: 1, OrderNumber: "ORD1", Status: domain.LinkStatusPending},
		{ID: 2, OrderNumber: "ORD2", Status: domain.LinkStatusPending},
		{ID: 3, OrderNumber: "ORD3", Status: domain.LinkStatusPending},
	}}
	provider := &fakeProvider{
		statuses: map[string]string{"ORD1": "paid", "ORD3": "waiting_payment"},
		fail:     map[string]error{"ORD2": errors.New("gateway timeout")},
	}
	svc := NewReconcileService(store, provider, time.Second)

	report, err := svc.ReconcileAll(context.Background())
	if err != nil {
		t.Fatalf("ReconcileAll: %v", err)
	}
	if report.Checked != 3 {
		t.Fatalf("Checked = %d, want 3", report.Checked)
	}
	if report.Updated != 1 {
		t.Fatalf("Updated = %d, want 1", report.Updated)
	}
	if report.Errors != 1 {
		t.Fatalf("Errors = %d, want 1", report.Errors)
	}
	if provider.calls != 3 {
		t.Fatalf("provider calls = %d, a failing link must not stop the sweep", provider.calls)
	}
	var failed *LinkDetail
	for i := range report.Details {
		if report.Details[i].OrderNumber == "ORD2" {
			failed = &report.Details[i]
		}
	}
	if failed == nil || failed.Error == "" {
		t.Fatalf("failing link missing from details: %+v", report.Details)
	}
}

func TestReconcileStudentTargetsOneStudent(t *testing.T) {
	store := &fakeReconcileStore{pending: []models.PaymentLink{
		{ID: 1, StudentID: 7, OrderNumber: "ORD1", Status: domain.LinkStatusPending},
		{ID: 2, StudentID: 8, OrderNumber: "ORD2", Status: domain.LinkStatusPending},
	}}
	provider := &fakeProvider{statuses: map[string]string{"ORD1": "cancelled", "ORD2": "paid"}}
	svc := NewReconcileService(store, provider, time.Second)

	report, err := svc.ReconcileStudent(context.Background(), 7)
	if err != nil {
		t.Fatalf("ReconcileStudent: %v", err)
	}
	if report.Checked != 1 || report.Updated != 1 {
		t.Fatalf("report = %+v, want one checked and updated link", report)
	}
	if len(store.applied) != 1 || store.applied[0].linkID != 1 || store.applied[0].status != domain.LinkStatusCancelled {
		t.Fatalf("ApplyStatus calls = %+v", store.applied)
	}
}
