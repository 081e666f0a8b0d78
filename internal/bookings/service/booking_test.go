package service

import (
	"context"
	bookingserrors "locomotion/internal/bookings/errors"
	"locomotion/internal/bookings/repository"
	"locomotion/internal/bookings/validator"
	"locomotion/pkg/config"
	mongotx "locomotion/pkg/db/mongo"
	apperrors "locomotion/pkg/errors"
	"locomotion/pkg/logger"
	"locomotion/pkg/middleware"
	"locomotion/pkg/model"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
)

const (
	testSlotID    = "507f1f77bcf86cd799439021"
	testCreatorID = "507f1f77bcf86cd799439011"
	testBookingID = "507f1f77bcf86cd799439031"
)

type mockBookingRepository struct {
	createFunc      func(ctx context.Context, booking *model.Booking) error
	findByIDFunc    func(ctx context.Context, id string) (*model.Booking, error)
	setProofFunc    func(ctx context.Context, id string, proofURL string) error
	setStatusFunc   func(ctx context.Context, id string, status string) error
	bookedDatesFunc func(ctx context.Context, creatorID string) ([]string, error)
}

func (m *mockBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, booking)
	}
	booking.ID = testBookingID
	return nil
}

func (m *mockBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, bookingserrors.ErrNotFound
}

func (m *mockBookingRepository) FindByBusiness(ctx context.Context, businessID string, filter repository.Filter, limit int, offset int64) ([]*model.Booking, error) {
	return []*model.Booking{}, nil
}

func (m *mockBookingRepository) CountByBusiness(ctx context.Context, businessID string, filter repository.Filter) (int64, error) {
	return 0, nil
}

func (m *mockBookingRepository) FindByCreator(ctx context.Context, creatorID string, filter repository.Filter, limit int, offset int64) ([]*model.Booking, error) {
	return []*model.Booking{}, nil
}

func (m *mockBookingRepository) CountByCreator(ctx context.Context, creatorID string, filter repository.Filter) (int64, error) {
	return 0, nil
}

func (m *mockBookingRepository) FindBySlot(ctx context.Context, slotID string) (*model.Booking, error) {
	return nil, bookingserrors.ErrNotFound
}

func (m *mockBookingRepository) SetProofURL(ctx context.Context, id string, proofURL string) error {
	if m.setProofFunc != nil {
		return m.setProofFunc(ctx, id, proofURL)
	}
	return nil
}

func (m *mockBookingRepository) SetStatus(ctx context.Context, id string, status string) error {
	if m.setStatusFunc != nil {
		return m.setStatusFunc(ctx, id, status)
	}
	return nil
}

func (m *mockBookingRepository) BookedDatesByCreator(ctx context.Context, creatorID string) ([]string, error) {
	if m.bookedDatesFunc != nil {
		return m.bookedDatesFunc(ctx, creatorID)
	}
	return nil, nil
}

func (m *mockBookingRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(nil)
}

type mockLockRepository struct {
	createFunc func(ctx context.Context, lock *model.SlotLock) (*model.SlotLock, error)
	deleteFunc func(ctx context.Context, lockID string) error
	created    []string
	released   []string
}

func (m *mockLockRepository) Create(ctx context.Context, lock *model.SlotLock) (*model.SlotLock, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, lock)
	}
	m.created = append(m.created, lock.ID)
	return lock, nil
}

func (m *mockLockRepository) Delete(ctx context.Context, lockID string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, lockID)
	}
	m.released = append(m.released, lockID)
	return nil
}

type mockSlotStore struct {
	findByIDFunc        func(ctx context.Context, id string) (*model.AdSlot, error)
	setAvailabilityFunc func(ctx context.Context, id string, available bool) error
	findCalls           int
	flips               []bool
}

func (m *mockSlotStore) FindByID(ctx context.Context, id string) (*model.AdSlot, error) {
	m.findCalls++
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return &model.AdSlot{
		ID:        id,
		CreatorID: testCreatorID,
		Type:      model.SlotTypeStory,
		Price:     100,
		Date:      "2026-02-15",
		Available: true,
	}, nil
}

func (m *mockSlotStore) SetAvailability(ctx context.Context, id string, available bool) error {
	m.flips = append(m.flips, available)
	if m.setAvailabilityFunc != nil {
		return m.setAvailabilityFunc(ctx, id, available)
	}
	return nil
}

type mockCreatorStore struct {
	findByIDFunc func(ctx context.Context, id string) (*model.Creator, error)
}

func (m *mockCreatorStore) FindByID(ctx context.Context, id string) (*model.Creator, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return &model.Creator{ID: id, UserID: "creator-user", Name: "Dana Levi"}, nil
}

type mockPublisher struct {
	events []string
}

func (m *mockPublisher) PublishBookingEvent(ctx context.Context, eventType string, booking *model.Booking) error {
	m.events = append(m.events, eventType)
	return nil
}

func (m *mockPublisher) Close() error { return nil }

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	log := logger.New(logger.Config{
		Level:     "info",
		Format:    logger.JSON,
		AddSource: false,
		Service:   "test",
	})
	return &config.Config{
		Log:                log,
		ReadTimeout:        5 * time.Second,
		WriteTimeout:       5 * time.Second,
		PlatformFeePercent: 10,
	}
}

type fixture struct {
	svc       *bookingService
	repo      *mockBookingRepository
	locks     *mockLockRepository
	slots     *mockSlotStore
	creators  *mockCreatorStore
	publisher *mockPublisher
}

func newFixture(t *testing.T) *fixture {
	cfg := testConfig(t)
	f := &fixture{
		repo:      &mockBookingRepository{},
		locks:     &mockLockRepository{},
		slots:     &mockSlotStore{},
		creators:  &mockCreatorStore{},
		publisher: &mockPublisher{},
	}
	f.svc = &bookingService{
		repo:      f.repo,
		lockRepo:  f.locks,
		slots:     f.slots,
		creators:  f.creators,
		publisher: f.publisher,
		validator: validator.NewBookingValidator(cfg.Log),
		cfg:       cfg,
		now:       func() time.Time { return time.Date(2026, time.February, 1, 9, 0, 0, 0, time.UTC) },
	}
	return f
}

func businessIdentity() *middleware.Identity {
	return &middleware.Identity{
		UserID: "biz-1",
		Name:   "Cafe Aroma",
		Email:  "owner@aroma.example",
		Roles:  []string{middleware.RoleBusiness},
	}
}

func creatorOwnerIdentity() *middleware.Identity {
	return &middleware.Identity{UserID: "creator-user", Roles: []string{middleware.RoleCreator}}
}

func adminIdentity() *middleware.Identity {
	return &middleware.Identity{UserID: "admin-1", Roles: []string{middleware.RoleAdmin}}
}

func validCheckout() *model.Checkout {
	return &model.Checkout{
		SlotID:        testSlotID,
		BusinessName:  "Cafe Aroma",
		BusinessEmail: "owner@aroma.example",
	}
}

func TestCheckoutBuildsBookingFromSlot(t *testing.T) {
	f := newFixture(t)

	booking, err := f.svc.Checkout(context.Background(), businessIdentity(), validCheckout())
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}

	if booking.Status != model.StatusPending {
		t.Errorf("status = %s, want pending", booking.Status)
	}
	if booking.BusinessID != "biz-1" {
		t.Errorf("business_id = %s, want identity subject", booking.BusinessID)
	}
	if booking.CreatorID != testCreatorID || booking.CreatorName != "Dana Levi" {
		t.Errorf("creator fields not denormalized: %s / %s", booking.CreatorID, booking.CreatorName)
	}
	if booking.Date != "2026-02-15" || booking.SlotType != model.SlotTypeStory {
		t.Errorf("slot fields not denormalized: %s / %s", booking.Date, booking.SlotType)
	}
	if booking.Price != 100 || booking.PlatformFee != 10 || booking.Total != 110 {
		t.Errorf("pricing = %v/%v/%v, want 100/10/110", booking.Price, booking.PlatformFee, booking.Total)
	}

	if len(f.slots.flips) != 1 || f.slots.flips[0] != false {
		t.Errorf("slot availability flips = %v, want single flip to false", f.slots.flips)
	}
	if len(f.locks.created) != 1 || len(f.locks.released) != 1 {
		t.Errorf("lock lifecycle: created=%v released=%v", f.locks.created, f.locks.released)
	}
	if len(f.publisher.events) != 1 || f.publisher.events[0] != "booking.created" {
		t.Errorf("events = %v, want [booking.created]", f.publisher.events)
	}
}

func TestCheckoutFeeRounding(t *testing.T) {
	tests := []struct {
		price float64
		fee   float64
		total float64
	}{
		{100, 10, 110},
		{55, 6, 61}, // 5.5 rounds half away from zero
		{80, 8, 88},
		{54, 5, 59}, // 5.4 rounds down
	}
	for _, tt := range tests {
		f := newFixture(t)
		f.slots.findByIDFunc = func(ctx context.Context, id string) (*model.AdSlot, error) {
			return &model.AdSlot{
				ID:        id,
				CreatorID: testCreatorID,
				Type:      model.SlotTypePost,
				Price:     tt.price,
				Date:      "2026-02-15",
				Available: true,
			}, nil
		}

		booking, err := f.svc.Checkout(context.Background(), businessIdentity(), validCheckout())
		if err != nil {
			t.Fatalf("price %v: %v", tt.price, err)
		}
		if booking.PlatformFee != tt.fee || booking.Total != tt.total {
			t.Errorf("price %v: fee/total = %v/%v, want %v/%v", tt.price, booking.PlatformFee, booking.Total, tt.fee, tt.total)
		}
	}
}

func TestCheckoutRejectsUnavailableSlot(t *testing.T) {
	f := newFixture(t)
	f.slots.findByIDFunc = func(ctx context.Context, id string) (*model.AdSlot, error) {
		return &model.AdSlot{ID: id, CreatorID: testCreatorID, Type: model.SlotTypeStory, Price: 100, Date: "2026-02-15", Available: false}, nil
	}

	_, err := f.svc.Checkout(context.Background(), businessIdentity(), validCheckout())
	appErr, ok := apperrors.AsAppError(err)
	if !ok || appErr.Code != apperrors.CodeConflict {
		t.Fatalf("err = %v, want CONFLICT", err)
	}
	if len(f.locks.created) != 0 {
		t.Error("lock acquired for an unavailable slot")
	}
}

func TestCheckoutRejectsBlockedDate(t *testing.T) {
	f := newFixture(t)
	f.creators.findByIDFunc = func(ctx context.Context, id string) (*model.Creator, error) {
		return &model.Creator{ID: id, UserID: "creator-user", Name: "Dana Levi", BlockedDates: []string{"2026-02-15"}}, nil
	}

	_, err := f.svc.Checkout(context.Background(), businessIdentity(), validCheckout())
	appErr, ok := apperrors.AsAppError(err)
	if !ok || appErr.Code != apperrors.CodeConflict {
		t.Fatalf("err = %v, want CONFLICT", err)
	}
}

func TestCheckoutRejectsBadInputBeforeAnyRead(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name     string
		checkout *model.Checkout
	}{
		{"empty name", &model.Checkout{SlotID: testSlotID, BusinessEmail: "owner@aroma.example"}},
		{"empty email", &model.Checkout{SlotID: testSlotID, BusinessName: "Cafe Aroma"}},
		{"malformed email", &model.Checkout{SlotID: testSlotID, BusinessName: "Cafe Aroma", BusinessEmail: "not-an-email"}},
	}
	for _, tt := range tests {
		_, err := f.svc.Checkout(context.Background(), businessIdentity(), tt.checkout)
		appErr, ok := apperrors.AsAppError(err)
		if !ok || appErr.Code != apperrors.CodeValidation {
			t.Errorf("%s: err = %v, want VALIDATION_ERROR", tt.name, err)
		}
	}
	if f.slots.findCalls != 0 {
		t.Error("slot store touched before validation passed")
	}
	if len(f.locks.created) != 0 {
		t.Error("lock acquired before validation passed")
	}
}

func TestCheckoutLockContention(t *testing.T) {
	f := newFixture(t)
	f.locks.createFunc = func(ctx context.Context, lock *model.SlotLock) (*model.SlotLock, error) {
		return nil, mongo.WriteException{WriteErrors: mongo.WriteErrors{
			mongo.WriteError{Code: 11000},
		}}
	}

	_, err := f.svc.Checkout(context.Background(), businessIdentity(), validCheckout())
	appErr, ok := apperrors.AsAppError(err)
	if !ok || appErr.Code != apperrors.CodeConflict {
		t.Fatalf("err = %v, want CONFLICT", err)
	}
	if len(f.slots.flips) != 0 {
		t.Error("slot flipped despite lock contention")
	}
}

func TestCheckoutLockExpiryUsesServiceClock(t *testing.T) {
	f := newFixture(t)
	var captured *model.SlotLock
	f.locks.createFunc = func(ctx context.Context, lock *model.SlotLock) (*model.SlotLock, error) {
		captured = lock
		return lock, nil
	}

	if _, err := f.svc.Checkout(context.Background(), businessIdentity(), validCheckout()); err != nil {
		t.Fatalf("Checkout: %v", err)
	}

	if captured == nil {
		t.Fatal("no slot lock created")
	}
	want := f.svc.now().Add(10 * time.Second)
	if !captured.ExpiresAt.Equal(want) {
		t.Errorf("lock ExpiresAt = %v, want %v", captured.ExpiresAt, want)
	}
}

func TestCheckoutRechecksAvailabilityInTransaction(t *testing.T) {
	f := newFixture(t)
	calls := 0
	f.slots.findByIDFunc = func(ctx context.Context, id string) (*model.AdSlot, error) {
		calls++
		// Available on the first read, taken by the time the
		// transaction re-reads it.
		return &model.AdSlot{
			ID:        id,
			CreatorID: testCreatorID,
			Type:      model.SlotTypeStory,
			Price:     100,
			Date:      "2026-02-15",
			Available: calls == 1,
		}, nil
	}

	_, err := f.svc.Checkout(context.Background(), businessIdentity(), validCheckout())
	appErr, ok := apperrors.AsAppError(err)
	if !ok || appErr.Code != apperrors.CodeConflict {
		t.Fatalf("err = %v, want CONFLICT", err)
	}
	if len(f.slots.flips) != 0 {
		t.Error("slot flipped despite losing the race")
	}
	if len(f.locks.released) != 1 {
		t.Error("lock not released after failed transaction")
	}
}

func TestCheckoutRequiresBusinessRole(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Checkout(context.Background(), creatorOwnerIdentity(), validCheckout())
	appErr, ok := apperrors.AsAppError(err)
	if !ok || appErr.Code != apperrors.CodeForbidden {
		t.Fatalf("err = %v, want FORBIDDEN", err)
	}
}

func TestSubmitProofKeepsStatusPending(t *testing.T) {
	f := newFixture(t)
	statusChanged := false
	f.repo.findByIDFunc = func(ctx context.Context, id string) (*model.Booking, error) {
		return &model.Booking{ID: id, CreatorID: testCreatorID, SlotID: testSlotID, Status: model.StatusPending}, nil
	}
	f.repo.setStatusFunc = func(ctx context.Context, id string, status string) error {
		statusChanged = true
		return nil
	}

	var storedProof string
	f.repo.setProofFunc = func(ctx context.Context, id string, proofURL string) error {
		storedProof = proofURL
		return nil
	}

	booking, err := f.svc.SubmitProof(context.Background(), creatorOwnerIdentity(), testBookingID, "http://www.instagram.com/p/xyz/")
	if err != nil {
		t.Fatalf("SubmitProof: %v", err)
	}

	if booking.Status != model.StatusPending {
		t.Errorf("status = %s, proof must not complete a booking", booking.Status)
	}
	if statusChanged {
		t.Error("SetStatus called during proof submission")
	}
	if storedProof != "https://instagram.com/p/xyz" {
		t.Errorf("stored proof = %s, want normalized https URL", storedProof)
	}
	if len(f.publisher.events) != 1 || f.publisher.events[0] != "booking.proof_submitted" {
		t.Errorf("events = %v, want [booking.proof_submitted]", f.publisher.events)
	}
}

func TestSubmitProofOnlyCreatorOwner(t *testing.T) {
	f := newFixture(t)
	f.repo.findByIDFunc = func(ctx context.Context, id string) (*model.Booking, error) {
		return &model.Booking{ID: id, CreatorID: testCreatorID, Status: model.StatusPending}, nil
	}

	_, err := f.svc.SubmitProof(context.Background(), businessIdentity(), testBookingID, "https://instagram.com/p/xyz")
	appErr, ok := apperrors.AsAppError(err)
	if !ok || appErr.Code != apperrors.CodeForbidden {
		t.Fatalf("err = %v, want FORBIDDEN", err)
	}
}

func TestCompleteAdminOnlyAndIrreversible(t *testing.T) {
	f := newFixture(t)
	status := model.StatusPending
	f.repo.findByIDFunc = func(ctx context.Context, id string) (*model.Booking, error) {
		return &model.Booking{ID: id, CreatorID: testCreatorID, SlotID: testSlotID, Status: status}, nil
	}
	f.repo.setStatusFunc = func(ctx context.Context, id string, newStatus string) error {
		status = newStatus
		return nil
	}

	_, err := f.svc.Complete(context.Background(), creatorOwnerIdentity(), testBookingID)
	appErr, ok := apperrors.AsAppError(err)
	if !ok || appErr.Code != apperrors.CodeForbidden {
		t.Fatalf("creator complete: err = %v, want FORBIDDEN", err)
	}

	booking, err := f.svc.Complete(context.Background(), adminIdentity(), testBookingID)
	if err != nil {
		t.Fatalf("admin complete: %v", err)
	}
	if booking.Status != model.StatusCompleted {
		t.Errorf("status = %s, want completed", booking.Status)
	}

	_, err = f.svc.Complete(context.Background(), adminIdentity(), testBookingID)
	appErr, ok = apperrors.AsAppError(err)
	if !ok || appErr.Code != apperrors.CodeConflict {
		t.Fatalf("second complete: err = %v, want CONFLICT", err)
	}
}

func TestCompleteWithoutProofAllowed(t *testing.T) {
	f := newFixture(t)
	f.repo.findByIDFunc = func(ctx context.Context, id string) (*model.Booking, error) {
		return &model.Booking{ID: id, CreatorID: testCreatorID, Status: model.StatusPending, ProofURL: ""}, nil
	}

	if _, err := f.svc.Complete(context.Background(), adminIdentity(), testBookingID); err != nil {
		t.Fatalf("Complete without proof: %v", err)
	}
}

func TestGetByIDParticipantsOnly(t *testing.T) {
	f := newFixture(t)
	f.repo.findByIDFunc = func(ctx context.Context, id string) (*model.Booking, error) {
		return &model.Booking{ID: id, BusinessID: "biz-1", CreatorID: testCreatorID, Status: model.StatusPending}, nil
	}

	for _, identity := range []*middleware.Identity{businessIdentity(), creatorOwnerIdentity(), adminIdentity()} {
		if _, err := f.svc.GetByID(context.Background(), identity, testBookingID); err != nil {
			t.Errorf("participant %s denied: %v", identity.UserID, err)
		}
	}

	outsider := &middleware.Identity{UserID: "other-biz", Roles: []string{middleware.RoleBusiness}}
	_, err := f.svc.GetByID(context.Background(), outsider, testBookingID)
	appErr, ok := apperrors.AsAppError(err)
	if !ok || appErr.Code != apperrors.CodeForbidden {
		t.Fatalf("outsider: err = %v, want FORBIDDEN", err)
	}
}

func TestListRejectsUnknownFilters(t *testing.T) {
	f := newFixture(t)

	cases := []struct {
		name   string
		filter repository.Filter
	}{
		{"bad status", repository.Filter{Status: "cancelled"}},
		{"bad review", repository.Filter{Review: "done"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := f.svc.ListForBusiness(context.Background(), businessIdentity(), tc.filter, 10, 0)
			appErr, ok := apperrors.AsAppError(err)
			if !ok || appErr.Code != apperrors.CodeInvalidInput {
				t.Fatalf("err = %v, want INVALID_INPUT", err)
			}
		})
	}
}

func TestListAcceptsKnownFilters(t *testing.T) {
	f := newFixture(t)

	filters := []repository.Filter{
		{},
		{Status: model.StatusPending},
		{Status: model.StatusCompleted},
		{Review: repository.ReviewReady},
		{Review: repository.ReviewAwaiting},
	}

	for _, filter := range filters {
		if _, _, err := f.svc.ListForBusiness(context.Background(), businessIdentity(), filter, 10, 0); err != nil {
			t.Errorf("filter %+v rejected: %v", filter, err)
		}
	}
}
