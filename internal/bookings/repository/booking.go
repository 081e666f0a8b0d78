package repository

import (
	"context"
	"errors"
	"fmt"
	bookingserrors "locomotion/internal/bookings/errors"
	"locomotion/pkg/config"
	mongotx "locomotion/pkg/db/mongo"
	"locomotion/pkg/model"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Bookings"
)

type mongoBookingRepository struct {
	cfg        *config.Config
	db         *mongo.Database
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

// Filter narrows booking lists. Status matches the stored status;
// Review derives the sub-state from proof_url: "ready" is pending with
// proof submitted, "awaiting" is pending without it.
type Filter struct {
	Status string
	Review string
}

const (
	ReviewReady    = "ready"
	ReviewAwaiting = "awaiting"
)

type BookingRepository interface {
	Create(ctx context.Context, booking *model.Booking) error
	FindByID(ctx context.Context, id string) (*model.Booking, error)
	FindByBusiness(ctx context.Context, businessID string, filter Filter, limit int, offset int64) ([]*model.Booking, error)
	CountByBusiness(ctx context.Context, businessID string, filter Filter) (int64, error)
	FindByCreator(ctx context.Context, creatorID string, filter Filter, limit int, offset int64) ([]*model.Booking, error)
	CountByCreator(ctx context.Context, creatorID string, filter Filter) (int64, error)
	FindBySlot(ctx context.Context, slotID string) (*model.Booking, error)
	SetProofURL(ctx context.Context, id string, proofURL string) error
	SetStatus(ctx context.Context, id string, status string) error
	BookedDatesByCreator(ctx context.Context, creatorID string) ([]string, error)
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

func NewMongoBookingRepository(cfg *config.Config) BookingRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoBookingRepository{
		cfg:        cfg,
		db:         db,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

func (r *mongoBookingRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}

	deadline, hasDeadline := ctx.Deadline()
	if !hasDeadline {
		return context.WithTimeout(ctx, timeout)
	}

	remaining := time.Until(deadline)
	if remaining < timeout {
		return context.WithTimeout(ctx, remaining)
	}

	return context.WithTimeout(ctx, timeout)
}

func (r *mongoBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	booking.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, booking)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		booking.ID = oid.Hex()
	}
	return nil
}

func (r *mongoBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}

	var booking model.Booking
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, bookingserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find booking: %w", err)
	}

	return &booking, nil
}

func (r *mongoBookingRepository) FindByBusiness(ctx context.Context, businessID string, filter Filter, limit int, offset int64) ([]*model.Booking, error) {
	return r.findByField(ctx, "business_id", businessID, filter, limit, offset)
}

func (r *mongoBookingRepository) CountByBusiness(ctx context.Context, businessID string, filter Filter) (int64, error) {
	return r.countByField(ctx, "business_id", businessID, filter)
}

func (r *mongoBookingRepository) FindByCreator(ctx context.Context, creatorID string, filter Filter, limit int, offset int64) ([]*model.Booking, error) {
	return r.findByField(ctx, "creator_id", creatorID, filter, limit, offset)
}

func (r *mongoBookingRepository) CountByCreator(ctx context.Context, creatorID string, filter Filter) (int64, error) {
	return r.countByField(ctx, "creator_id", creatorID, filter)
}

func buildFilter(field, value string, filter Filter) bson.M {
	query := bson.M{field: value}

	if filter.Status != "" {
		query["status"] = filter.Status
	}

	switch filter.Review {
	case ReviewReady:
		query["status"] = model.StatusPending
		query["proof_url"] = bson.M{"$exists": true, "$ne": ""}
	case ReviewAwaiting:
		query["status"] = model.StatusPending
		query["$or"] = bson.A{
			bson.M{"proof_url": bson.M{"$exists": false}},
			bson.M{"proof_url": ""},
		}
	}

	return query
}

func (r *mongoBookingRepository) findByField(ctx context.Context, field, value string, filter Filter, limit int, offset int64) ([]*model.Booking, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "date", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, buildFilter(field, value, filter), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []*model.Booking
	if err = cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}

	return bookings, nil
}

func (r *mongoBookingRepository) countByField(ctx context.Context, field, value string, filter Filter) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, buildFilter(field, value, filter))
	if err != nil {
		return 0, fmt.Errorf("failed to count bookings: %w", err)
	}
	return count, nil
}

func (r *mongoBookingRepository) FindBySlot(ctx context.Context, slotID string) (*model.Booking, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var booking model.Booking
	err := r.collection.FindOne(ctx, bson.M{"slot_id": slotID}).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, bookingserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find booking by slot: %w", err)
	}

	return &booking, nil
}

func (r *mongoBookingRepository) SetProofURL(ctx context.Context, id string, proofURL string) error {
	return r.setField(ctx, id, "proof_url", proofURL)
}

func (r *mongoBookingRepository) SetStatus(ctx context.Context, id string, status string) error {
	return r.setField(ctx, id, "status", status)
}

func (r *mongoBookingRepository) setField(ctx context.Context, id, field string, value string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": objectID},
		bson.M{"$set": bson.M{field: value}},
	)
	if err != nil {
		return fmt.Errorf("failed to update booking %s: %w", field, err)
	}

	if result.MatchedCount == 0 {
		return bookingserrors.ErrNotFound
	}

	return nil
}

// BookedDatesByCreator returns the distinct dates the creator has
// pending or completed bookings on. These dates render as booked on the
// availability calendar and can never be toggled by the creator.
func (r *mongoBookingRepository) BookedDatesByCreator(ctx context.Context, creatorID string) ([]string, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"creator_id": creatorID,
		"status":     bson.M{"$in": []string{model.StatusPending, model.StatusCompleted}},
	}

	values, err := r.collection.Distinct(ctx, "date", filter)
	if err != nil {
		return nil, fmt.Errorf("failed to load booked dates: %w", err)
	}

	dates := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok {
			dates = append(dates, s)
		}
	}
	return dates, nil
}

func (r *mongoBookingRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
