package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"locomotion/internal/calendar"
	creatorserrors "locomotion/internal/creators/errors"
	"locomotion/internal/creators/repository"
	"locomotion/internal/creators/validator"
	"locomotion/pkg/config"
	"locomotion/pkg/datekey"
	apperrors "locomotion/pkg/errors"
	"locomotion/pkg/middleware"
	"locomotion/pkg/model"
	"locomotion/pkg/sanitizer"
)

// SlotSeeder provisions starter ad slots for a freshly onboarded
// creator. Implemented by the slots service.
type SlotSeeder interface {
	SeedDefaults(ctx context.Context, creator *model.Creator) ([]*model.AdSlot, error)
}

// BookingDates exposes the dates a creator already has confirmed
// bookings on. Implemented by the bookings repository.
type BookingDates interface {
	BookedDatesByCreator(ctx context.Context, creatorID string) ([]string, error)
}

type CreatorService interface {
	Onboard(ctx context.Context, identity *middleware.Identity, creator *model.Creator) error
	GetByID(ctx context.Context, id string) (*model.Creator, error)
	GetByUserID(ctx context.Context, userID string) (*model.Creator, error)
	List(ctx context.Context, city string, approvedOnly bool, limit int, offset int64) ([]*model.Creator, int64, error)
	Update(ctx context.Context, identity *middleware.Identity, id string, updates *model.CreatorUpdate) error
	Approve(ctx context.Context, identity *middleware.Identity, id string, approved bool) error
	ToggleBlockedDate(ctx context.Context, identity *middleware.Identity, id string, dateKey string) ([]string, error)
	Availability(ctx context.Context, id string, year int, month time.Month, mode calendar.Mode, selected string) (*calendar.Month, error)
}

type creatorService struct {
	repo      repository.CreatorRepository
	seeder    SlotSeeder
	bookings  BookingDates
	validator *validator.CreatorValidator
	cfg       *config.Config
	now       func() time.Time
}

func NewCreatorService(
	repo repository.CreatorRepository,
	seeder SlotSeeder,
	bookings BookingDates,
	validator *validator.CreatorValidator,
	cfg *config.Config,
) CreatorService {
	return &creatorService{
		repo:      repo,
		seeder:    seeder,
		bookings:  bookings,
		validator: validator,
		cfg:       cfg,
		now:       time.Now,
	}
}

func (s *creatorService) Onboard(ctx context.Context, identity *middleware.Identity, creator *model.Creator) error {
	if identity == nil {
		return apperrors.Unauthorized("Authentication required")
	}
	if !identity.HasRole(middleware.RoleCreator) && !identity.HasRole(middleware.RoleAdmin) {
		return apperrors.Forbidden("Only creators can onboard a profile")
	}

	// The profile always belongs to the authenticated user.
	creator.UserID = identity.UserID
	creator.Approved = false

	s.applyDefaults(creator, identity)
	s.sanitize(creator)
	if err := s.validate(creator); err != nil {
		return err
	}

	if existing, err := s.repo.FindByUserID(ctx, identity.UserID); err == nil && existing != nil {
		return apperrors.Conflict("A creator profile already exists for this user")
	}

	if err := s.repo.Create(ctx, creator); err != nil {
		s.cfg.Log.Error("Failed to create creator", "user_id", identity.UserID, "error", err)
		return apperrors.Internal("Failed to create creator", err)
	}

	if s.cfg.SeedDefaultSlots && s.seeder != nil {
		// Seeding is best effort; the profile exists either way and the
		// creator can add slots manually.
		if _, err := s.seeder.SeedDefaults(ctx, creator); err != nil {
			s.cfg.Log.Warn("Failed to seed starter slots", "creator_id", creator.ID, "error", err)
		}
	}

	s.cfg.Log.Info("Creator onboarded successfully",
		"id", creator.ID,
		"user_id", creator.UserID,
		"city", creator.City,
		"platform", creator.Platform,
	)
	return nil
}

func (s *creatorService) GetByID(ctx context.Context, id string) (*model.Creator, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Creator ID cannot be empty")
	}

	creator, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, creatorserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Creator", id)
		}
		if errors.Is(err, creatorserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid creator ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve creator", err)
	}

	return creator, nil
}

func (s *creatorService) GetByUserID(ctx context.Context, userID string) (*model.Creator, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("User ID cannot be empty")
	}

	creator, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, creatorserrors.ErrNotFound) {
			return nil, apperrors.NotFound("Creator profile")
		}
		return nil, apperrors.Internal("Failed to retrieve creator profile", err)
	}

	return creator, nil
}

func (s *creatorService) List(ctx context.Context, city string, approvedOnly bool, limit int, offset int64) ([]*model.Creator, int64, error) {
	city = sanitizer.SanitizeCity(city)

	var count int64
	var creators []*model.Creator
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx, city, approvedOnly)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count creators", "city", city, "error", errCount)
			errCount = apperrors.Internal("Failed to count creators", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		creators, errFind = s.repo.FindAll(ctx, city, approvedOnly, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list creators", "city", city, "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve creators", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return creators, count, nil
}

func (s *creatorService) Update(ctx context.Context, identity *middleware.Identity, id string, updates *model.CreatorUpdate) error {
	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authorizeOwner(identity, existing); err != nil {
		return err
	}

	if err := s.validator.ValidateUpdate(updates); err != nil {
		s.cfg.Log.Warn("Creator update validation failed", "id", id, "error", err)
		return apperrors.Validation("Invalid update input", map[string]any{"error": err.Error()})
	}

	merged := s.mergeCreatorUpdates(existing, updates)
	s.sanitize(merged)
	if err := s.validate(merged); err != nil {
		return err
	}

	if _, err := s.repo.Update(ctx, id, merged); err != nil {
		if errors.Is(err, creatorserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Creator", id)
		}
		s.cfg.Log.Error("Failed to update creator", "id", id, "error", err)
		return apperrors.Internal("Failed to update creator", err)
	}

	s.cfg.Log.Info("Creator updated successfully", "id", id)
	return nil
}

func (s *creatorService) Approve(ctx context.Context, identity *middleware.Identity, id string, approved bool) error {
	if identity == nil || !identity.HasRole(middleware.RoleAdmin) {
		return apperrors.Forbidden("Only admins can approve creators")
	}
	if id == "" {
		return apperrors.InvalidInput("Creator ID cannot be empty")
	}

	err := s.repo.SetApproved(ctx, id, approved)
	if err != nil {
		if errors.Is(err, creatorserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Creator", id)
		}
		if errors.Is(err, creatorserrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid creator ID format")
		}
		s.cfg.Log.Error("Failed to update creator approval", "id", id, "error", err)
		return apperrors.Internal("Failed to update creator approval", err)
	}

	s.cfg.Log.Info("Creator approval updated", "id", id, "approved", approved)
	return nil
}

// ToggleBlockedDate flips a date in the creator's blocked set and returns
// the persisted set. Dates with a confirmed booking can never be toggled.
func (s *creatorService) ToggleBlockedDate(ctx context.Context, identity *middleware.Identity, id string, dateKey string) ([]string, error) {
	creator, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeOwner(identity, creator); err != nil {
		return nil, err
	}

	day, err := datekey.Parse(dateKey)
	if err != nil {
		return nil, apperrors.InvalidInput("Date must be a valid YYYY-MM-DD key")
	}

	booked, err := s.bookedDates(ctx, id)
	if err != nil {
		return nil, err
	}

	grid := calendar.Grid(calendar.Input{
		Year:    day.Year(),
		Month:   day.Month(),
		Blocked: creator.BlockedDates,
		Booked:  booked,
		Mode:    calendar.ModeBlock,
		Today:   s.now(),
	})

	updated, ok := grid.Toggle(creator.BlockedDates, dateKey)
	if !ok {
		return nil, s.toggleRefusal(grid, dateKey)
	}

	if err := s.repo.SetBlockedDates(ctx, id, updated); err != nil {
		if errors.Is(err, creatorserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Creator", id)
		}
		s.cfg.Log.Error("Failed to persist blocked dates", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to update blocked dates", err)
	}

	s.cfg.Log.Info("Blocked dates updated", "id", id, "date", dateKey, "blocked_count", len(updated))
	return updated, nil
}

func (s *creatorService) Availability(ctx context.Context, id string, year int, month time.Month, mode calendar.Mode, selected string) (*calendar.Month, error) {
	creator, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if mode != calendar.ModeBlock && mode != calendar.ModeBook {
		return nil, apperrors.InvalidInput("Mode must be 'block' or 'book'")
	}
	if month < time.January || month > time.December {
		return nil, apperrors.InvalidInput("Month must be between 1 and 12")
	}
	if selected != "" && !datekey.Valid(selected) {
		return nil, apperrors.InvalidInput("Selected date must be a valid YYYY-MM-DD key")
	}

	booked, err := s.bookedDates(ctx, id)
	if err != nil {
		return nil, err
	}

	grid := calendar.Grid(calendar.Input{
		Year:     year,
		Month:    month,
		Blocked:  creator.BlockedDates,
		Booked:   booked,
		Mode:     mode,
		Selected: selected,
		Today:    s.now(),
	})

	return &grid, nil
}

// --- Helpers ---

func (s *creatorService) applyDefaults(creator *model.Creator, identity *middleware.Identity) {
	if creator.City == "" {
		creator.City = s.cfg.DefaultCity
	}
	if creator.Platform == "" {
		creator.Platform = model.PlatformInstagram
	}
	if creator.Name == "" {
		creator.Name = identity.Name
	}
	if creator.Email == "" {
		creator.Email = identity.Email
	}
	if creator.Handle == "" {
		creator.Handle = sanitizer.SanitizeHandle(creator.Name)
	}
	if creator.BlockedDates == nil {
		creator.BlockedDates = []string{}
	}
}

func (s *creatorService) sanitize(creator *model.Creator) {
	creator.Name = sanitizer.NormalizeName(creator.Name)
	creator.Email = sanitizer.NormalizeEmail(creator.Email)
	creator.Handle = sanitizer.SanitizeHandle(creator.Handle)
	creator.City = sanitizer.SanitizeCity(creator.City)
	creator.Photo = sanitizer.SanitizeURL(creator.Photo)
	creator.Bio = sanitizer.TrimAndNormalize(creator.Bio)
}

func (s *creatorService) mergeCreatorUpdates(existing *model.Creator, updates *model.CreatorUpdate) *model.Creator {
	merged := *existing

	if updates.Name != "" {
		merged.Name = updates.Name
	}
	if updates.Handle != "" {
		merged.Handle = updates.Handle
	}
	if updates.Photo != "" {
		merged.Photo = updates.Photo
	}
	if updates.Bio != "" {
		merged.Bio = updates.Bio
	}
	if updates.FollowerCount != nil {
		merged.FollowerCount = *updates.FollowerCount
	}
	if updates.EngagementRate != nil {
		merged.EngagementRate = *updates.EngagementRate
	}
	if updates.StoryPrice != nil {
		merged.StoryPrice = updates.StoryPrice
	}
	if updates.PostPrice != nil {
		merged.PostPrice = updates.PostPrice
	}
	if updates.ReelPrice != nil {
		merged.ReelPrice = updates.ReelPrice
	}

	return &merged
}

func (s *creatorService) validate(creator *model.Creator) error {
	if err := s.validator.Validate(creator); err != nil {
		s.cfg.Log.Warn("Creator validation failed", "error", err)
		return apperrors.Validation("Creator validation failed", map[string]any{"error": err.Error()})
	}
	return nil
}

func (s *creatorService) authorizeOwner(identity *middleware.Identity, creator *model.Creator) error {
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

func (s *creatorService) bookedDates(ctx context.Context, creatorID string) ([]string, error) {
	if s.bookings == nil {
		return nil, nil
	}
	booked, err := s.bookings.BookedDatesByCreator(ctx, creatorID)
	if err != nil {
		s.cfg.Log.Error("Failed to load booked dates", "creator_id", creatorID, "error", err)
		return nil, apperrors.Internal("Failed to load booked dates", err)
	}
	return booked, nil
}

func (s *creatorService) toggleRefusal(grid calendar.Month, dateKey string) error {
	for _, cell := range grid.Cells {
		if cell.Key != dateKey {
			continue
		}
		switch cell.State {
		case calendar.StateBooked:
			return apperrors.Conflict("Date has a confirmed booking and cannot be blocked or unblocked")
		case calendar.StatePast:
			return apperrors.InvalidInput("Past dates cannot be toggled")
		default:
			return apperrors.InvalidInput("Date cannot be toggled")
		}
	}
	return apperrors.InvalidInput("Date is outside the calendar month")
}
