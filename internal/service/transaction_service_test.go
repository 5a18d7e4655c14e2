package service

import (
	"errors"
	"testing"
	"time"

	"drivehub/internal/domain"
	"drivehub/internal/models"

	"gorm.io/gorm"
)

// fakeTransactionStore mirrors the repository contract, including the coupon
// usage bookkeeping performed inside each atomic unit, so lifecycle tests can
// observe counter effects without a database.
type fakeTransactionStore struct {
	nextID     uint
	byID       map[uint]*models.Transaction
	usage      map[uint]int
	limit      map[uint]int // 0 = unlimited
	failCreate error
	deleted    []uint
	lastSaved  *models.Transaction
}

func newFakeTransactionStore() *fakeTransactionStore {
	return &fakeTransactionStore{
		byID:  map[uint]*models.Transaction{},
		usage: map[uint]int{},
		limit: map[uint]int{},
	}
}

func (f *fakeTransactionStore) consume(couponID uint) error {
	if lim := f.limit[couponID]; lim > 0 && f.usage[couponID] >= lim {
		return domain.ErrCouponExhausted
	}
	f.usage[couponID]++
	return nil
}

// CreateAtomic enforces pending-exclusivity for known students inside the
// unit, as the repository does under its row lock.
func (f *fakeTransactionStore) CreateAtomic(student *models.Student, t *models.Transaction, lines []models.TransactionCourse) error {
	if f.failCreate != nil {
		return f.failCreate
	}
	if student != nil && student.ID != 0 {
		for _, existing := range f.byID {
			if existing.StudentID == student.ID && existing.Status == domain.PaymentStatusPending {
				return domain.ErrPendingConflict
			}
		}
	}
	if t.CouponID != nil {
		if err := f.consume(*t.CouponID); err != nil {
			return err
		}
	}
	if student != nil && student.ID == 0 {
		f.nextID++
		student.ID = f.nextID
	}
	if student != nil {
		t.StudentID = student.ID
	}
	f.nextID++
	t.ID = f.nextID
	t.Courses = lines
	f.byID[t.ID] = t
	return nil
}

func (f *fakeTransactionStore) GetByID(id uint) (*models.Transaction, error) {
	t, ok := f.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *t
	return &cp, nil
}

func (f *fakeTransactionStore) UpdateAtomic(t *models.Transaction, prevCouponID *uint) error {
	changed := !((prevCouponID == nil && t.CouponID == nil) ||
		(prevCouponID != nil && t.CouponID != nil && *prevCouponID == *t.CouponID))
	if changed {
		if t.CouponID != nil {
			if err := f.consume(*t.CouponID); err != nil {
				return err
			}
		}
		if prevCouponID != nil && f.usage[*prevCouponID] > 0 {
			f.usage[*prevCouponID]--
		}
	}
	cp := *t
	f.lastSaved = &cp
	f.byID[t.ID] = t
	return nil
}

func (f *fakeTransactionStore) DeleteCascade(t *models.Transaction) error {
	if t.CouponID != nil && f.usage[*t.CouponID] > 0 {
		f.usage[*t.CouponID]--
	}
	delete(f.byID, t.ID)
	f.deleted = append(f.deleted, t.ID)
	return nil
}

type fakeStudentStore struct {
	byID         map[uint]*models.Student
	byNationalID map[string]*models.Student
}

func (f *fakeStudentStore) GetByID(id uint) (*models.Student, error) {
	if s, ok := f.byID[id]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeStudentStore) GetByNationalID(nid string) (*models.Student, error) {
	if s, ok := f.byNationalID[nid]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type fakeCourseStore struct {
	courses []models.Course
}

func (f *fakeCourseStore) GetByIDs(ids []uint) ([]models.Course, error) {
	var out []models.Course
	for _, c := range f.courses {
		for _, id := range ids {
			if c.ID == id {
				out = append(out, c)
			}
		}
	}
	return out, nil
}

type fakeResolver struct {
	coupons map[string]*models.Coupon
	err     error
}

func (f *fakeResolver) ResolveAndValidate(identifier string) (*models.Coupon, error) {
	if f.err != nil {
		return nil, f.err
	}
	if c, ok := f.coupons[identifier]; ok {
		return c, nil
	}
	return nil, domain.ErrCouponNotFound
}

func newLifecycleFixture() (*TransactionService, *fakeTransactionStore, *fakeStudentStore, *fakeResolver) {
	txStore := newFakeTransactionStore()
	students := &fakeStudentStore{byID: map[uint]*models.Student{}, byNationalID: map[string]*models.Student{}}
	courses := &fakeCourseStore{courses: []models.Course{
		{ID: 1, Name: "First License A", ModalityID: 5},
		{ID: 2, Name: "First License B", ModalityID: 6},
	}}
	resolver := &fakeResolver{coupons: map[string]*models.Coupon{
		"PROMO-ABC1": {
			ID:   10,
			Code: "PROMO-ABC1",
			Mode: domain.CouponModeGeneral,
			Configurations: []models.CouponConfiguration{
				{ModalityID: uintPtr(5), DiscountPercent: floatPtr(15), CommissionPercent: floatPtr(10)},
			},
			Active: true,
		},
	}}
	svc := NewTransactionService(txStore, students, courses, resolver, NewPricingService())
	return svc, txStore, students, resolver
}

var admin = Actor{ID: 1, Role: domain.RoleAdmin}
var seller = Actor{ID: 2, Role: domain.RoleSeller}

func createInput() CreateTransactionInput {
	return CreateTransactionInput{
		Student:       StudentInput{Name: "Ana Souza", NationalID: "123.456.789-01"},
		CourseIDs:     []uint{1},
		ValueCents:    10000,
		PaymentMethod: domain.PaymentMethodPix,
		Installments:  1,
	}
}

func TestCreateWithCouponIncrementsUsage(t *testing.T) {
	svc, txStore, _, _ := newLifecycleFixture()
	in := createInput()
	in.CouponCode = "PROMO-ABC1"

	txn, err := svc.Create(seller, in)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if txStore.usage[10] != 1 {
		t.Fatalf("coupon usage = %d, want 1", txStore.usage[10])
	}
	if txn.DiscountCents != 1500 {
		t.Fatalf("DiscountCents = %d, want 1500", txn.DiscountCents)
	}
	if txn.CommissionCents != 1000 {
		t.Fatalf("CommissionCents = %d, want 1000", txn.CommissionCents)
	}
	if txn.StudentID == 0 {
		t.Fatal("student was not persisted with the transaction")
	}
}

func TestCreateSellerForcedPending(t *testing.T) {
	svc, _, _, _ := newLifecycleFixture()
	in := createInput()
	in.Status = domain.PaymentStatusPaid

	txn, err := svc.Create(seller, in)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if txn.Status != domain.PaymentStatusPending {
		t.Fatalf("Status = %s, want PENDING for seller", txn.Status)
	}
}

func TestCreateAdminKeepsRequestedStatus(t *testing.T) {
	svc, _, _, _ := newLifecycleFixture()
	in := createInput()
	in.Status = domain.PaymentStatusPaid

	txn, err := svc.Create(admin, in)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if txn.Status != domain.PaymentStatusPaid {
		t.Fatalf("Status = %s, want PAID for admin", txn.Status)
	}
}

func TestCreateRejectsSecondPending(t *testing.T) {
	svc, txStore, students, _ := newLifecycleFixture()
	student := &models.Student{ID: 42, NationalID: "12345678901"}
	students.byID[42] = student
	students.byNationalID["123.456.789-01"] = student
	txStore.byID[1] = &models.Transaction{ID: 1, StudentID: 42, Status: domain.PaymentStatusPending}

	_, err := svc.Create(seller, createInput())
	if !errors.Is(err, domain.ErrPendingConflict) {
		t.Fatalf("Create = %v, want ErrPendingConflict", err)
	}
	if len(txStore.byID) != 1 {
		t.Fatalf("stored transactions = %d, conflict must abort the unit", len(txStore.byID))
	}
}

func TestCreateInvalidCouponNothingPersisted(t *testing.T) {
	svc, txStore, _, resolver := newLifecycleFixture()
	resolver.err = domain.ErrCouponExpired
	in := createInput()
	in.CouponCode = "PROMO-ABC1"

	_, err := svc.Create(seller, in)
	if !errors.Is(err, domain.ErrCouponExpired) {
		t.Fatalf("Create = %v, want ErrCouponExpired", err)
	}
	if len(txStore.byID) != 0 {
		t.Fatal("transaction persisted despite invalid coupon")
	}
	if txStore.usage[10] != 0 {
		t.Fatal("coupon consumed despite invalid coupon")
	}
}

func TestCreateCouponNotApplicable(t *testing.T) {
	svc, _, _, _ := newLifecycleFixture()
	in := createInput()
	in.CourseIDs = []uint{2} // modality 6, coupon only configures modality 5
	in.CouponCode = "PROMO-ABC1"

	_, err := svc.Create(seller, in)
	if !errors.Is(err, domain.ErrCouponNotApplicable) {
		t.Fatalf("Create = %v, want ErrCouponNotApplicable", err)
	}
}

func TestCreateAtomicFailureConsumesNothing(t *testing.T) {
	svc, txStore, _, _ := newLifecycleFixture()
	txStore.failCreate = errors.New("connection reset")
	in := createInput()
	in.CouponCode = "PROMO-ABC1"

	if _, err := svc.Create(seller, in); err == nil {
		t.Fatal("expected persistence error")
	}
	if txStore.usage[10] != 0 {
		t.Fatal("coupon consumed despite aborted unit")
	}
}

func TestCreateUnknownCourse(t *testing.T) {
	svc, _, _, _ := newLifecycleFixture()
	in := createInput()
	in.CourseIDs = []uint{99}

	if _, err := svc.Create(seller, in); !errors.Is(err, domain.ErrCourseNotFound) {
		t.Fatalf("Create = %v, want ErrCourseNotFound", err)
	}
}

func TestAddCoursesUnknownStudent(t *testing.T) {
	svc, _, _, _ := newLifecycleFixture()
	if _, err := svc.AddCourses(seller, 99, createInput()); !errors.Is(err, domain.ErrStudentNotFound) {
		t.Fatalf("AddCourses = %v, want ErrStudentNotFound", err)
	}
}

func TestDeleteRestoresCouponUsage(t *testing.T) {
	svc, txStore, _, _ := newLifecycleFixture()
	in := createInput()
	in.CouponCode = "PROMO-ABC1"
	txn, err := svc.Create(seller, in)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if txStore.usage[10] != 1 {
		t.Fatalf("usage = %d after create, want 1", txStore.usage[10])
	}

	if err := svc.Delete(admin, txn.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if txStore.usage[10] != 0 {
		t.Fatalf("usage = %d after delete, want 0", txStore.usage[10])
	}
	if len(txStore.byID) != 0 {
		t.Fatal("transaction still present after delete")
	}
}

func TestDeletePaidRejected(t *testing.T) {
	svc, txStore, _, _ := newLifecycleFixture()
	couponID := uint(10)
	txStore.usage[10] = 1
	txStore.byID[7] = &models.Transaction{ID: 7, Status: domain.PaymentStatusPaid, CouponID: &couponID}

	if err := svc.Delete(admin, 7); !errors.Is(err, domain.ErrDeletePaid) {
		t.Fatalf("Delete = %v, want ErrDeletePaid", err)
	}
	if _, ok := txStore.byID[7]; !ok {
		t.Fatal("paid transaction was removed")
	}
	if txStore.usage[10] != 1 {
		t.Fatal("coupon usage changed on rejected delete")
	}
}

func TestUpdateCouponSwap(t *testing.T) {
	svc, txStore, _, resolver := newLifecycleFixture()
	oldID, newID := uint(10), uint(11)
	resolver.coupons["PROMO-NEW1"] = &models.Coupon{
		ID:   newID,
		Mode: domain.CouponModeGeneral,
		Configurations: []models.CouponConfiguration{
			{ModalityID: uintPtr(5), DiscountCents: int64Ptr(2500), CommissionCents: int64Ptr(0)},
		},
		Active: true,
	}
	txStore.usage[oldID] = 1
	txStore.byID[7] = &models.Transaction{
		ID:         7,
		Status:     domain.PaymentStatusPending,
		ValueCents: 10000,
		CouponID:   &oldID,
		Coupon:     &models.Coupon{ID: oldID, Code: "PROMO-ABC1"},
		Courses:    []models.TransactionCourse{{CourseID: 1, ModalityID: 5}},
	}

	code := "PROMO-NEW1"
	txn, err := svc.Update(admin, 7, UpdateTransactionInput{CouponCode: &code})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if txStore.usage[oldID] != 0 {
		t.Fatalf("old coupon usage = %d, want 0", txStore.usage[oldID])
	}
	if txStore.usage[newID] != 1 {
		t.Fatalf("new coupon usage = %d, want 1", txStore.usage[newID])
	}
	if txn.DiscountCents != 2500 {
		t.Fatalf("DiscountCents = %d, want 2500", txn.DiscountCents)
	}
	saved := txStore.lastSaved
	if saved == nil || saved.CouponID == nil || *saved.CouponID != newID {
		t.Fatalf("saved CouponID = %v, want %d", saved.CouponID, newID)
	}
	if saved.Coupon == nil || saved.Coupon.ID != newID {
		t.Fatalf("saved Coupon association = %+v, old coupon must not survive the swap", saved.Coupon)
	}
}

func TestUpdateClearCoupon(t *testing.T) {
	svc, txStore, _, _ := newLifecycleFixture()
	oldID := uint(10)
	txStore.usage[oldID] = 1
	txStore.byID[7] = &models.Transaction{
		ID:            7,
		Status:        domain.PaymentStatusPending,
		ValueCents:    10000,
		DiscountCents: 1500,
		CouponID:      &oldID,
		Coupon:        &models.Coupon{ID: oldID, Code: "PROMO-ABC1"},
	}

	empty := ""
	txn, err := svc.Update(admin, 7, UpdateTransactionInput{CouponCode: &empty})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if txn.CouponID != nil {
		t.Fatal("coupon still attached after clear")
	}
	if txn.DiscountCents != 0 {
		t.Fatalf("DiscountCents = %d, want 0", txn.DiscountCents)
	}
	if txStore.usage[oldID] != 0 {
		t.Fatalf("old coupon usage = %d, want 0", txStore.usage[oldID])
	}
	saved := txStore.lastSaved
	if saved == nil || saved.CouponID != nil || saved.Coupon != nil {
		t.Fatalf("saved row = %+v, cleared coupon must not be written back", saved)
	}
}

func TestUpdateCouponOnPaidRejected(t *testing.T) {
	svc, txStore, _, _ := newLifecycleFixture()
	txStore.byID[7] = &models.Transaction{ID: 7, Status: domain.PaymentStatusPaid, ValueCents: 10000}

	code := "PROMO-ABC1"
	if _, err := svc.Update(admin, 7, UpdateTransactionInput{CouponCode: &code}); !errors.Is(err, domain.ErrPaidImmutable) {
		t.Fatalf("Update = %v, want ErrPaidImmutable", err)
	}
}

func TestUpdateStatusStampsPaymentDate(t *testing.T) {
	svc, txStore, _, _ := newLifecycleFixture()
	now := time.Date(2026, 4, 2, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	txStore.byID[7] = &models.Transaction{ID: 7, Status: domain.PaymentStatusPending, ValueCents: 10000}

	paid := domain.PaymentStatusPaid
	txn, err := svc.Update(admin, 7, UpdateTransactionInput{Status: &paid})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if txn.PaymentDate == nil || !txn.PaymentDate.Equal(now) {
		t.Fatalf("PaymentDate = %v, want %v", txn.PaymentDate, now)
	}

	cancelled := domain.PaymentStatusCancelled
	txn, err = svc.Update(admin, 7, UpdateTransactionInput{Status: &cancelled})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if txn.PaymentDate != nil {
		t.Fatal("PaymentDate not cleared on cancel")
	}
}

func TestUpdateSellerCannotChangeStatus(t *testing.T) {
	svc, txStore, _, _ := newLifecycleFixture()
	txStore.byID[7] = &models.Transaction{ID: 7, Status: domain.PaymentStatusPending, ValueCents: 10000}

	paid := domain.PaymentStatusPaid
	txn, err := svc.Update(seller, 7, UpdateTransactionInput{Status: &paid})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if txn.Status != domain.PaymentStatusPending {
		t.Fatalf("Status = %s, seller must not change status", txn.Status)
	}
}
