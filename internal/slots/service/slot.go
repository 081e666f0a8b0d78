package service

import (
	"context"
	"errors"
	slotserrors "locomotion/internal/slots/errors"
	"locomotion/internal/slots/repository"
	"locomotion/internal/slots/validator"
	"locomotion/pkg/config"
	"locomotion/pkg/datekey"
	apperrors "locomotion/pkg/errors"
	"locomotion/pkg/middleware"
	"locomotion/pkg/model"
	"sync"
	"time"
)

// CreatorStore resolves creator profiles for ownership checks and
// default pricing. Implemented by the creators repository.
type CreatorStore interface {
	FindByID(ctx context.Context, id string) (*model.Creator, error)
}

type SlotService interface {
	Create(ctx context.Context, identity *middleware.Identity, slot *model.AdSlot) error
	GetByID(ctx context.Context, id string) (*model.AdSlot, error)
	ListByCreator(ctx context.Context, creatorID string, onlyAvailable bool, limit int, offset int64) ([]*model.AdSlot, int64, error)
	SetAvailability(ctx context.Context, identity *middleware.Identity, id string, available bool) error
	Delete(ctx context.Context, identity *middleware.Identity, id string) error
	SeedDefaults(ctx context.Context, creator *model.Creator) ([]*model.AdSlot, error)
}

type slotService struct {
	repo      repository.SlotRepository
	creators  CreatorStore
	validator *validator.SlotValidator
	cfg       *config.Config
}

func NewSlotService(
	repo repository.SlotRepository,
	creators CreatorStore,
	validator *validator.SlotValidator,
	cfg *config.Config,
) SlotService {
	return &slotService{
		repo:      repo,
		creators:  creators,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *slotService) Create(ctx context.Context, identity *middleware.Identity, slot *model.AdSlot) error {
	creator, err := s.resolveCreator(ctx, slot.CreatorID)
	if err != nil {
		return err
	}
	if err := s.authorizeOwner(identity, creator); err != nil {
		return err
	}

	s.applyDefaults(slot, creator)
	// New slots always start open for booking. Availability is only
	// cleared by checkout or an explicit admin override.
	slot.Available = true

	if err := s.validate(slot); err != nil {
		return err
	}

	if err := s.repo.Create(ctx, slot); err != nil {
		s.cfg.Log.Error("Failed to create ad slot", "creator_id", slot.CreatorID, "error", err)
		return apperrors.Internal("Failed to create ad slot", err)
	}

	s.cfg.Log.Info("Ad slot created successfully",
		"id", slot.ID,
		"creator_id", slot.CreatorID,
		"type", slot.Type,
		"date", slot.Date,
	)
	return nil
}

func (s *slotService) GetByID(ctx context.Context, id string) (*model.AdSlot, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Ad slot ID cannot be empty")
	}

	slot, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, slotserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Ad slot", id)
		}
		if errors.Is(err, slotserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid ad slot ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve ad slot", err)
	}

	return slot, nil
}

func (s *slotService) ListByCreator(ctx context.Context, creatorID string, onlyAvailable bool, limit int, offset int64) ([]*model.AdSlot, int64, error) {
	if creatorID == "" {
		return nil, 0, apperrors.InvalidInput("Creator ID cannot be empty")
	}

	var count int64
	var slots []*model.AdSlot
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.CountByCreator(ctx, creatorID, onlyAvailable)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count ad slots", "creator_id", creatorID, "error", errCount)
			errCount = apperrors.Internal("Failed to count ad slots", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		slots, errFind = s.repo.FindByCreator(ctx, creatorID, onlyAvailable, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list ad slots", "creator_id", creatorID, "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve ad slots", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return slots, count, nil
}

func (s *slotService) SetAvailability(ctx context.Context, identity *middleware.Identity, id string, available bool) error {
	if id == "" {
		return apperrors.InvalidInput("Ad slot ID cannot be empty")
	}
	if identity == nil || !identity.HasRole(middleware.RoleAdmin) {
		return apperrors.Forbidden("Only admins can override slot availability")
	}

	err := s.repo.SetAvailability(ctx, id, available)
	if err != nil {
		if errors.Is(err, slotserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Ad slot", id)
		}
		if errors.Is(err, slotserrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid ad slot ID format")
		}
		s.cfg.Log.Error("Failed to update ad slot availability", "id", id, "error", err)
		return apperrors.Internal("Failed to update ad slot availability", err)
	}

	s.cfg.Log.Info("Ad slot availability updated", "id", id, "available", available)
	return nil
}

func (s *slotService) Delete(ctx context.Context, identity *middleware.Identity, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Ad slot ID cannot be empty")
	}

	slot, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	creator, err := s.resolveCreator(ctx, slot.CreatorID)
	if err != nil {
		return err
	}
	if err := s.authorizeOwner(identity, creator); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, slotserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Ad slot", id)
		}
		s.cfg.Log.Error("Failed to delete ad slot", "id", id, "error", err)
		return apperrors.Internal("Failed to delete ad slot", err)
	}

	s.cfg.Log.Info("Ad slot deleted successfully", "id", id, "creator_id", slot.CreatorID)
	return nil
}

// SeedDefaults creates one starter slot per format for a newly onboarded
// creator, spaced out over the coming week so the profile is bookable
// immediately.
func (s *slotService) SeedDefaults(ctx context.Context, creator *model.Creator) ([]*model.AdSlot, error) {
	if creator == nil || creator.ID == "" {
		return nil, apperrors.InvalidInput("Creator is required for slot seeding")
	}

	offsets := s.cfg.SeedSlotOffsets
	types := []string{model.SlotTypeStory, model.SlotTypePost, model.SlotTypeReel}
	if len(offsets) < len(types) {
		return nil, apperrors.Internal("Seed slot offsets misconfigured", nil)
	}

	now := time.Now()
	slots := make([]*model.AdSlot, 0, len(types))
	for i, slotType := range types {
		slots = append(slots, &model.AdSlot{
			CreatorID: creator.ID,
			Type:      slotType,
			Price:     s.priceFor(creator, slotType),
			Date:      datekey.Format(now.AddDate(0, 0, offsets[i])),
			Available: true,
		})
	}

	if err := s.repo.CreateMany(ctx, slots); err != nil {
		s.cfg.Log.Error("Failed to seed default ad slots", "creator_id", creator.ID, "error", err)
		return nil, apperrors.Internal("Failed to seed default ad slots", err)
	}

	s.cfg.Log.Info("Seeded default ad slots", "creator_id", creator.ID, "count", len(slots))
	return slots, nil
}

// --- Helpers ---

func (s *slotService) applyDefaults(slot *model.AdSlot, creator *model.Creator) {
	if slot.Price == 0 {
		slot.Price = s.priceFor(creator, slot.Type)
	}
}

func (s *slotService) priceFor(creator *model.Creator, slotType string) float64 {
	var price *float64
	switch slotType {
	case model.SlotTypeStory:
		price = creator.StoryPrice
	case model.SlotTypePost:
		price = creator.PostPrice
	case model.SlotTypeReel:
		price = creator.ReelPrice
	}
	if price != nil && *price > 0 {
		return *price
	}
	return s.cfg.DefaultSlotPrice
}

func (s *slotService) resolveCreator(ctx context.Context, creatorID string) (*model.Creator, error) {
	if creatorID == "" {
		return nil, apperrors.InvalidInput("Creator ID cannot be empty")
	}
	creator, err := s.creators.FindByID(ctx, creatorID)
	if err != nil {
		return nil, apperrors.NotFoundWithID("Creator", creatorID)
	}
	return creator, nil
}

func (s *slotService) authorizeOwner(identity *middleware.Identity, creator *model.Creator) error {
	if identity == nil {
		return apperrors.Unauthorized("Authentication required")
	}
	if identity.HasRole(middleware.RoleAdmin) {
		return nil
	}
	if identity.HasRole(middleware.RoleCreator) && identity.UserID == creator.UserID {
		return nil
	}
	return apperrors.Forbidden("You do not manage this creator profile")
}

func (s *slotService) validate(slot *model.AdSlot) error {
	if err := s.validator.Validate(slot); err != nil {
		s.cfg.Log.Warn("Ad slot validation failed", "error", err)
		return apperrors.Validation("Ad slot validation failed", map[string]any{"error": err.Error()})
	}
	return nil
}
