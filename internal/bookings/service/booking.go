package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	bookingserrors "locomotion/internal/bookings/errors"
	"locomotion/internal/bookings/events"
	"locomotion/internal/bookings/repository"
	"locomotion/internal/bookings/validator"
	creatorserrors "locomotion/internal/creators/errors"
	slotserrors "locomotion/internal/slots/errors"
	"locomotion/pkg/config"
	"locomotion/pkg/datekey"
	apperrors "locomotion/pkg/errors"
	"locomotion/pkg/middleware"
	"locomotion/pkg/model"
	"locomotion/pkg/sanitizer"

	"go.mongodb.org/mongo-driver/mongo"
)

// SlotStore is the slice of the slots repository checkout needs: read a
// slot and flip its availability inside the checkout transaction.
type SlotStore interface {
	FindByID(ctx context.Context, id string) (*model.AdSlot, error)
	SetAvailability(ctx context.Context, id string, available bool) error
}

// CreatorStore resolves the creator behind a slot for denormalization
// and ownership checks.
type CreatorStore interface {
	FindByID(ctx context.Context, id string) (*model.Creator, error)
}

type BookingService interface {
	Checkout(ctx context.Context, identity *middleware.Identity, checkout *model.Checkout) (*model.Booking, error)
	GetByID(ctx context.Context, identity *middleware.Identity, id string) (*model.Booking, error)
	ListForBusiness(ctx context.Context, identity *middleware.Identity, filter repository.Filter, limit int, offset int64) ([]*model.Booking, int64, error)
	ListForCreator(ctx context.Context, identity *middleware.Identity, creatorID string, filter repository.Filter, limit int, offset int64) ([]*model.Booking, int64, error)
	SubmitProof(ctx context.Context, identity *middleware.Identity, id string, proofURL string) (*model.Booking, error)
	Complete(ctx context.Context, identity *middleware.Identity, id string) (*model.Booking, error)
}

type bookingService struct {
	repo      repository.BookingRepository
	lockRepo  repository.SlotLockRepository
	slots     SlotStore
	creators  CreatorStore
	publisher events.Publisher
	validator *validator.BookingValidator
	cfg       *config.Config
	now       func() time.Time
}

func NewBookingService(
	repo repository.BookingRepository,
	lockRepo repository.SlotLockRepository,
	slots SlotStore,
	creators CreatorStore,
	publisher events.Publisher,
	validator *validator.BookingValidator,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		repo:      repo,
		lockRepo:  lockRepo,
		slots:     slots,
		creators:  creators,
		publisher: publisher,
		validator: validator,
		cfg:       cfg,
		now:       time.Now,
	}
}

// Checkout books one ad slot. The slot flip and the booking insert
// happen in a single transaction; an advisory lock on the slot keeps
// concurrent checkouts from racing ahead of it.
func (s *bookingService) Checkout(ctx context.Context, identity *middleware.Identity, checkout *model.Checkout) (*model.Booking, error) {
	if identity == nil {
		return nil, apperrors.Unauthorized("Authentication required")
	}
	if !identity.HasRole(middleware.RoleBusiness) && !identity.HasRole(middleware.RoleAdmin) {
		return nil, apperrors.Forbidden("Only businesses can book ad slots")
	}

	// The booking belongs to the authenticated business.
	checkout.BusinessID = identity.UserID
	checkout.BusinessName = sanitizer.NormalizeName(checkout.BusinessName)
	checkout.BusinessEmail = sanitizer.NormalizeEmail(checkout.BusinessEmail)

	// Reject bad input before touching the slot or the lock collection.
	if err := s.validator.ValidateCheckout(checkout); err != nil {
		s.cfg.Log.Warn("Checkout validation failed", "slot_id", checkout.SlotID, "error", err)
		return nil, apperrors.Validation("Checkout validation failed", map[string]any{"error": err.Error()})
	}

	slot, err := s.findSlot(ctx, checkout.SlotID)
	if err != nil {
		return nil, err
	}
	if err := s.checkBookable(ctx, slot); err != nil {
		return nil, err
	}

	creator, err := s.findCreator(ctx, slot.CreatorID)
	if err != nil {
		return nil, err
	}
	if isBlocked(creator, slot.Date) {
		return nil, apperrors.Conflict("The creator has blocked this date")
	}

	lockID, err := s.acquireSlotLock(ctx, slot.ID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if releaseErr := s.releaseSlotLock(ctx, lockID); releaseErr != nil {
			s.cfg.Log.Warn("Failed to release slot lock", "lock_id", lockID, "error", releaseErr)
		}
	}()

	booking := s.buildBooking(checkout, slot, creator)
	if err := s.validate(booking); err != nil {
		return nil, err
	}

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		// Re-read inside the transaction; the lock covers the window
		// between the earlier read and this point.
		current, err := s.slots.FindByID(sessCtx, slot.ID)
		if err != nil {
			return apperrors.Internal("Failed to re-check ad slot", err)
		}
		if !current.Available {
			return apperrors.Conflict("Ad slot is no longer available")
		}

		if err := s.slots.SetAvailability(sessCtx, slot.ID, false); err != nil {
			return apperrors.Internal("Failed to reserve ad slot", err)
		}

		if err := s.repo.Create(sessCtx, booking); err != nil {
			if mongo.IsDuplicateKeyError(errors.Unwrap(err)) || mongo.IsDuplicateKeyError(err) {
				return apperrors.Conflict("Ad slot is already booked")
			}
			return apperrors.Internal("Failed to create booking", err)
		}

		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Checkout failed", "slot_id", slot.ID, "business_id", checkout.BusinessID, "error", err)
		return nil, err
	}

	s.publish(ctx, events.EventBookingCreated, booking)

	s.cfg.Log.Info("Booking created successfully",
		"id", booking.ID,
		"slot_id", booking.SlotID,
		"creator_id", booking.CreatorID,
		"business_id", booking.BusinessID,
		"date", booking.Date,
		"total", booking.Total,
	)
	return booking, nil
}

func (s *bookingService) GetByID(ctx context.Context, identity *middleware.Identity, id string) (*model.Booking, error) {
	booking, err := s.findBooking(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.authorizeParticipant(ctx, identity, booking); err != nil {
		return nil, err
	}

	return booking, nil
}

func (s *bookingService) ListForBusiness(ctx context.Context, identity *middleware.Identity, filter repository.Filter, limit int, offset int64) ([]*model.Booking, int64, error) {
	if identity == nil {
		return nil, 0, apperrors.Unauthorized("Authentication required")
	}
	if err := validateFilter(filter); err != nil {
		return nil, 0, err
	}

	businessID := identity.UserID

	var count int64
	var bookings []*model.Booking
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.CountByBusiness(ctx, businessID, filter)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count bookings", "business_id", businessID, "error", errCount)
			errCount = apperrors.Internal("Failed to count bookings", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		bookings, errFind = s.repo.FindByBusiness(ctx, businessID, filter, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list bookings", "business_id", businessID, "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve bookings", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return bookings, count, nil
}

func (s *bookingService) ListForCreator(ctx context.Context, identity *middleware.Identity, creatorID string, filter repository.Filter, limit int, offset int64) ([]*model.Booking, int64, error) {
	if creatorID == "" {
		return nil, 0, apperrors.InvalidInput("Creator ID cannot be empty")
	}
	if err := validateFilter(filter); err != nil {
		return nil, 0, err
	}

	creator, err := s.findCreator(ctx, creatorID)
	if err != nil {
		return nil, 0, err
	}
	if err := s.authorizeCreatorOwner(identity, creator); err != nil {
		return nil, 0, err
	}

	var count int64
	var bookings []*model.Booking
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.CountByCreator(ctx, creatorID, filter)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count bookings", "creator_id", creatorID, "error", errCount)
			errCount = apperrors.Internal("Failed to count bookings", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		bookings, errFind = s.repo.FindByCreator(ctx, creatorID, filter, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list bookings", "creator_id", creatorID, "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve bookings", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return bookings, count, nil
}

// SubmitProof attaches the creator's proof-of-post link. The booking
// status is untouched; review and completion stay with the admin.
func (s *bookingService) SubmitProof(ctx context.Context, identity *middleware.Identity, id string, proofURL string) (*model.Booking, error) {
	booking, err := s.findBooking(ctx, id)
	if err != nil {
		return nil, err
	}

	creator, err := s.findCreator(ctx, booking.CreatorID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeCreatorOwner(identity, creator); err != nil {
		return nil, err
	}

	if booking.Status == model.StatusCompleted {
		return nil, apperrors.Conflict("Booking is already completed")
	}

	cleaned := sanitizer.SanitizeURL(proofURL)
	if cleaned == "" {
		return nil, apperrors.InvalidInput("Proof URL must be a valid link")
	}

	if err := s.repo.SetProofURL(ctx, id, cleaned); err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", id)
		}
		s.cfg.Log.Error("Failed to store proof URL", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to store proof URL", err)
	}

	booking.ProofURL = cleaned
	s.publish(ctx, events.EventBookingProofSubmitted, booking)

	s.cfg.Log.Info("Proof submitted", "id", id, "creator_id", booking.CreatorID)
	return booking, nil
}

// Complete marks the booking fulfilled. Admin only and irreversible.
// Proof is not a precondition; admins confirm posts out of band when no
// link was submitted.
func (s *bookingService) Complete(ctx context.Context, identity *middleware.Identity, id string) (*model.Booking, error) {
	if identity == nil || !identity.HasRole(middleware.RoleAdmin) {
		return nil, apperrors.Forbidden("Only admins can complete bookings")
	}

	booking, err := s.findBooking(ctx, id)
	if err != nil {
		return nil, err
	}

	if booking.Status == model.StatusCompleted {
		return nil, apperrors.Conflict("Booking is already completed")
	}

	if err := s.repo.SetStatus(ctx, id, model.StatusCompleted); err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", id)
		}
		s.cfg.Log.Error("Failed to complete booking", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to complete booking", err)
	}

	booking.Status = model.StatusCompleted
	s.publish(ctx, events.EventBookingCompleted, booking)

	s.cfg.Log.Info("Booking completed", "id", id, "slot_id", booking.SlotID)
	return booking, nil
}

// --- Helpers ---

func (s *bookingService) buildBooking(checkout *model.Checkout, slot *model.AdSlot, creator *model.Creator) *model.Booking {
	fee := s.platformFee(slot.Price)
	return &model.Booking{
		BusinessID:    checkout.BusinessID,
		BusinessName:  checkout.BusinessName,
		BusinessEmail: checkout.BusinessEmail,
		CreatorID:     slot.CreatorID,
		CreatorName:   creator.Name,
		SlotID:        slot.ID,
		SlotType:      slot.Type,
		Date:          slot.Date,
		Price:         slot.Price,
		PlatformFee:   fee,
		Total:         slot.Price + fee,
		Status:        model.StatusPending,
	}
}

// platformFee rounds to the nearest whole currency unit, half away
// from zero. A 55 price at 10 percent charges 6, not 5.5.
func (s *bookingService) platformFee(price float64) float64 {
	return math.Round(price * float64(s.cfg.PlatformFeePercent) / 100)
}

func (s *bookingService) findSlot(ctx context.Context, slotID string) (*model.AdSlot, error) {
	slot, err := s.slots.FindByID(ctx, slotID)
	if err != nil {
		if errors.Is(err, slotserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Ad slot", slotID)
		}
		if errors.Is(err, slotserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid ad slot ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve ad slot", err)
	}
	return slot, nil
}

func (s *bookingService) checkBookable(ctx context.Context, slot *model.AdSlot) error {
	if !slot.Available {
		return apperrors.Conflict("Ad slot is no longer available")
	}

	day, err := datekey.Parse(slot.Date)
	if err != nil {
		return apperrors.Internal("Ad slot has a malformed date", err)
	}
	if datekey.BeforeDay(day, s.now()) {
		return apperrors.InvalidInput("Ad slot date has already passed")
	}
	return nil
}

func (s *bookingService) findCreator(ctx context.Context, creatorID string) (*model.Creator, error) {
	creator, err := s.creators.FindByID(ctx, creatorID)
	if err != nil {
		if errors.Is(err, creatorserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Creator", creatorID)
		}
		return nil, apperrors.Internal("Failed to retrieve creator", err)
	}
	return creator, nil
}

func (s *bookingService) findBooking(ctx context.Context, id string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", id)
		}
		if errors.Is(err, bookingserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid booking ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve booking", err)
	}

	return booking, nil
}

func (s *bookingService) validate(booking *model.Booking) error {
	if err := s.validator.Validate(booking); err != nil {
		s.cfg.Log.Warn("Booking validation failed", "error", err)
		return apperrors.Validation("Booking validation failed", map[string]any{"error": err.Error()})
	}
	return nil
}

func (s *bookingService) authorizeParticipant(ctx context.Context, identity *middleware.Identity, booking *model.Booking) error {
	if identity == nil {
		return apperrors.Unauthorized("Authentication required")
	}
	if identity.HasRole(middleware.RoleAdmin) {
		return nil
	}
	if identity.UserID == booking.BusinessID {
		return nil
	}

	creator, err := s.findCreator(ctx, booking.CreatorID)
	if err == nil && identity.UserID == creator.UserID {
		return nil
	}
	return apperrors.Forbidden("You are not a participant in this booking")
}

func (s *bookingService) authorizeCreatorOwner(identity *middleware.Identity, creator *model.Creator) error {
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

func validateFilter(filter repository.Filter) error {
	if filter.Status != "" && filter.Status != model.StatusPending && filter.Status != model.StatusCompleted {
		return apperrors.InvalidInput("Status filter must be 'pending' or 'completed'")
	}
	if filter.Review != "" && filter.Review != repository.ReviewReady && filter.Review != repository.ReviewAwaiting {
		return apperrors.InvalidInput("Review filter must be 'ready' or 'awaiting'")
	}
	return nil
}

func isBlocked(creator *model.Creator, dateKey string) bool {
	for _, blocked := range creator.BlockedDates {
		if blocked == dateKey {
			return true
		}
	}
	return false
}

// acquireSlotLock creates the advisory lock for a slot. A duplicate key
// error means another checkout holds it.
func (s *bookingService) acquireSlotLock(ctx context.Context, slotID string) (string, error) {
	lockID := fmt.Sprintf("slot_lock_%s", slotID)

	lock := &model.SlotLock{
		ID:        lockID,
		ExpiresAt: s.now().Add(10 * time.Second),
	}

	_, err := s.lockRepo.Create(ctx, lock)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", apperrors.Conflict("This ad slot is currently being booked by another request. Please try again.")
		}
		return "", apperrors.Internal("Failed to acquire slot lock", err)
	}

	return lockID, nil
}

func (s *bookingService) releaseSlotLock(ctx context.Context, lockID string) error {
	return s.lockRepo.Delete(ctx, lockID)
}

func (s *bookingService) publish(ctx context.Context, eventType string, booking *model.Booking) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishBookingEvent(ctx, eventType, booking); err != nil {
		s.cfg.Log.Warn("Failed to publish booking event",
			"event_type", eventType,
			"booking_id", booking.ID,
			"error", err,
		)
	}
}
