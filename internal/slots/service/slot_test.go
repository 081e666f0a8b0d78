package service

import (
	"context"
	"locomotion/internal/slots/validator"
	"locomotion/pkg/config"
	"locomotion/pkg/datekey"
	mongotx "locomotion/pkg/db/mongo"
	apperrors "locomotion/pkg/errors"
	"locomotion/pkg/logger"
	"locomotion/pkg/middleware"
	"locomotion/pkg/model"
	"testing"
	"time"
)

type mockSlotRepository struct {
	createFunc          func(ctx context.Context, slot *model.AdSlot) error
	createManyFunc      func(ctx context.Context, slots []*model.AdSlot) error
	findByIDFunc        func(ctx context.Context, id string) (*model.AdSlot, error)
	findByCreatorFunc   func(ctx context.Context, creatorID string, onlyAvailable bool, limit int, offset int64) ([]*model.AdSlot, error)
	countByCreatorFunc  func(ctx context.Context, creatorID string, onlyAvailable bool) (int64, error)
	setAvailabilityFunc func(ctx context.Context, id string, available bool) error
	deleteFunc          func(ctx context.Context, id string) error
}

func (m *mockSlotRepository) Create(ctx context.Context, slot *model.AdSlot) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, slot)
	}
	return nil
}

func (m *mockSlotRepository) CreateMany(ctx context.Context, slots []*model.AdSlot) error {
	if m.createManyFunc != nil {
		return m.createManyFunc(ctx, slots)
	}
	return nil
}

func (m *mockSlotRepository) FindByID(ctx context.Context, id string) (*model.AdSlot, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return &model.AdSlot{}, nil
}

func (m *mockSlotRepository) FindByCreator(ctx context.Context, creatorID string, onlyAvailable bool, limit int, offset int64) ([]*model.AdSlot, error) {
	if m.findByCreatorFunc != nil {
		return m.findByCreatorFunc(ctx, creatorID, onlyAvailable, limit, offset)
	}
	return []*model.AdSlot{}, nil
}

func (m *mockSlotRepository) CountByCreator(ctx context.Context, creatorID string, onlyAvailable bool) (int64, error) {
	if m.countByCreatorFunc != nil {
		return m.countByCreatorFunc(ctx, creatorID, onlyAvailable)
	}
	return 0, nil
}

func (m *mockSlotRepository) SetAvailability(ctx context.Context, id string, available bool) error {
	if m.setAvailabilityFunc != nil {
		return m.setAvailabilityFunc(ctx, id, available)
	}
	return nil
}

func (m *mockSlotRepository) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

func (m *mockSlotRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(nil)
}

type mockCreatorStore struct {
	findByIDFunc func(ctx context.Context, id string) (*model.Creator, error)
}

func (m *mockCreatorStore) FindByID(ctx context.Context, id string) (*model.Creator, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return &model.Creator{ID: id, UserID: "user-1"}, nil
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	log := logger.New(logger.Config{
		Level:     "info",
		Format:    logger.JSON,
		AddSource: false,
		Service:   "test",
	})
	return &config.Config{
		Log:              log,
		ReadTimeout:      5 * time.Second,
		WriteTimeout:     5 * time.Second,
		DefaultSlotPrice: 50,
		SeedSlotOffsets:  []int{2, 4, 6},
	}
}

func newTestSlotService(cfg *config.Config, repo *mockSlotRepository, creators *mockCreatorStore) *slotService {
	return &slotService{
		repo:      repo,
		creators:  creators,
		validator: validator.NewSlotValidator(cfg.Log),
		cfg:       cfg,
	}
}

func futureKey(days int) string {
	return datekey.Format(time.Now().AddDate(0, 0, days))
}

func creatorIdentity(userID string) *middleware.Identity {
	return &middleware.Identity{UserID: userID, Roles: []string{middleware.RoleCreator}}
}

func adminIdentity() *middleware.Identity {
	return &middleware.Identity{UserID: "admin-1", Roles: []string{middleware.RoleAdmin}}
}

func TestCreateForcesAvailable(t *testing.T) {
	cfg := testConfig(t)
	var stored *model.AdSlot
	repo := &mockSlotRepository{
		createFunc: func(ctx context.Context, slot *model.AdSlot) error {
			stored = slot
			return nil
		},
	}
	svc := newTestSlotService(cfg, repo, &mockCreatorStore{})

	slot := &model.AdSlot{
		CreatorID: "507f1f77bcf86cd799439011",
		Type:      model.SlotTypeStory,
		Price:     80,
		Date:      futureKey(3),
		Available: false, // caller tries to create an unavailable slot
	}
	if err := svc.Create(context.Background(), creatorIdentity("user-1"), slot); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if stored == nil || !stored.Available {
		t.Error("new slot was not forced available")
	}
}

func TestCreateDefaultsPriceFromCreator(t *testing.T) {
	cfg := testConfig(t)
	storyPrice := 120.0
	creators := &mockCreatorStore{
		findByIDFunc: func(ctx context.Context, id string) (*model.Creator, error) {
			return &model.Creator{ID: id, UserID: "user-1", StoryPrice: &storyPrice}, nil
		},
	}
	var stored *model.AdSlot
	repo := &mockSlotRepository{
		createFunc: func(ctx context.Context, slot *model.AdSlot) error {
			stored = slot
			return nil
		},
	}
	svc := newTestSlotService(cfg, repo, creators)

	slot := &model.AdSlot{
		CreatorID: "507f1f77bcf86cd799439011",
		Type:      model.SlotTypeStory,
		Date:      futureKey(3),
	}
	if err := svc.Create(context.Background(), creatorIdentity("user-1"), slot); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if stored.Price != 120 {
		t.Errorf("price = %v, want creator story price 120", stored.Price)
	}
}

func TestCreateRejectsForeignCreator(t *testing.T) {
	cfg := testConfig(t)
	svc := newTestSlotService(cfg, &mockSlotRepository{}, &mockCreatorStore{})

	slot := &model.AdSlot{
		CreatorID: "507f1f77bcf86cd799439011",
		Type:      model.SlotTypePost,
		Price:     60,
		Date:      futureKey(3),
	}
	err := svc.Create(context.Background(), creatorIdentity("someone-else"), slot)
	appErr, ok := apperrors.AsAppError(err)
	if !ok || appErr.Code != apperrors.CodeForbidden {
		t.Fatalf("err = %v, want FORBIDDEN", err)
	}
}

func TestCreateRejectsPastDate(t *testing.T) {
	cfg := testConfig(t)
	svc := newTestSlotService(cfg, &mockSlotRepository{}, &mockCreatorStore{})

	slot := &model.AdSlot{
		CreatorID: "507f1f77bcf86cd799439011",
		Type:      model.SlotTypeReel,
		Price:     60,
		Date:      datekey.Format(time.Now().AddDate(0, 0, -1)),
	}
	err := svc.Create(context.Background(), creatorIdentity("user-1"), slot)
	appErr, ok := apperrors.AsAppError(err)
	if !ok || appErr.Code != apperrors.CodeValidation {
		t.Fatalf("err = %v, want VALIDATION_ERROR", err)
	}
}

func TestSetAvailabilityAdminOnly(t *testing.T) {
	cfg := testConfig(t)
	called := false
	repo := &mockSlotRepository{
		setAvailabilityFunc: func(ctx context.Context, id string, available bool) error {
			called = true
			return nil
		},
	}
	svc := newTestSlotService(cfg, repo, &mockCreatorStore{})

	err := svc.SetAvailability(context.Background(), creatorIdentity("user-1"), "507f1f77bcf86cd799439011", true)
	appErr, ok := apperrors.AsAppError(err)
	if !ok || appErr.Code != apperrors.CodeForbidden {
		t.Fatalf("creator override: err = %v, want FORBIDDEN", err)
	}
	if called {
		t.Error("repository reached despite forbidden identity")
	}

	if err := svc.SetAvailability(context.Background(), adminIdentity(), "507f1f77bcf86cd799439011", true); err != nil {
		t.Fatalf("admin override: %v", err)
	}
	if !called {
		t.Error("repository not reached for admin override")
	}
}

func TestDeleteOwnership(t *testing.T) {
	cfg := testConfig(t)
	repo := &mockSlotRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.AdSlot, error) {
			return &model.AdSlot{ID: id, CreatorID: "507f1f77bcf86cd799439011", Type: model.SlotTypeStory}, nil
		},
	}
	svc := newTestSlotService(cfg, repo, &mockCreatorStore{})

	err := svc.Delete(context.Background(), creatorIdentity("intruder"), "507f1f77bcf86cd799439012")
	appErr, ok := apperrors.AsAppError(err)
	if !ok || appErr.Code != apperrors.CodeForbidden {
		t.Fatalf("foreign delete: err = %v, want FORBIDDEN", err)
	}

	if err := svc.Delete(context.Background(), creatorIdentity("user-1"), "507f1f77bcf86cd799439012"); err != nil {
		t.Fatalf("owner delete: %v", err)
	}
	if err := svc.Delete(context.Background(), adminIdentity(), "507f1f77bcf86cd799439012"); err != nil {
		t.Fatalf("admin delete: %v", err)
	}
}

func TestSeedDefaults(t *testing.T) {
	cfg := testConfig(t)
	postPrice := 90.0
	var stored []*model.AdSlot
	repo := &mockSlotRepository{
		createManyFunc: func(ctx context.Context, slots []*model.AdSlot) error {
			stored = slots
			return nil
		},
	}
	svc := newTestSlotService(cfg, repo, &mockCreatorStore{})

	creator := &model.Creator{ID: "507f1f77bcf86cd799439011", UserID: "user-1", PostPrice: &postPrice}
	seeded, err := svc.SeedDefaults(context.Background(), creator)
	if err != nil {
		t.Fatalf("SeedDefaults: %v", err)
	}
	if len(seeded) != 3 || len(stored) != 3 {
		t.Fatalf("seeded %d slots, want 3", len(seeded))
	}

	wantDates := map[string]string{
		model.SlotTypeStory: futureKey(2),
		model.SlotTypePost:  futureKey(4),
		model.SlotTypeReel:  futureKey(6),
	}
	wantPrices := map[string]float64{
		model.SlotTypeStory: 50, // config default, creator has no story price
		model.SlotTypePost:  90,
		model.SlotTypeReel:  50,
	}
	for _, slot := range stored {
		if !slot.Available {
			t.Errorf("%s slot seeded unavailable", slot.Type)
		}
		if slot.Date != wantDates[slot.Type] {
			t.Errorf("%s slot date = %s, want %s", slot.Type, slot.Date, wantDates[slot.Type])
		}
		if slot.Price != wantPrices[slot.Type] {
			t.Errorf("%s slot price = %v, want %v", slot.Type, slot.Price, wantPrices[slot.Type])
		}
	}
}
