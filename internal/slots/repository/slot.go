package repository

import (
	"context"
	"errors"
	"fmt"
	slotserrors "locomotion/internal/slots/errors"
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
	CollectionName = "Ad_slots"
)

type mongoSlotRepository struct {
	cfg        *config.Config
	db         *mongo.Database
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

type SlotRepository interface {
	Create(ctx context.Context, slot *model.AdSlot) error
	CreateMany(ctx context.Context, slots []*model.AdSlot) error
	FindByID(ctx context.Context, id string) (*model.AdSlot, error)
	FindByCreator(ctx context.Context, creatorID string, onlyAvailable bool, limit int, offset int64) ([]*model.AdSlot, error)
	CountByCreator(ctx context.Context, creatorID string, onlyAvailable bool) (int64, error)
	SetAvailability(ctx context.Context, id string, available bool) error
	Delete(ctx context.Context, id string) error
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

func NewMongoSlotRepository(cfg *config.Config) SlotRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoSlotRepository{
		cfg:        cfg,
		db:         db,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

// withTimeout wraps the context with a timeout unless we are already inside
// a transaction. A SessionContext must not be re-wrapped, so it is returned
// unchanged with a no-op cancel.
func (r *mongoSlotRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
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

func (r *mongoSlotRepository) Create(ctx context.Context, slot *model.AdSlot) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	slot.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, slot)
	if err != nil {
		return fmt.Errorf("failed to create ad slot: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		slot.ID = oid.Hex()
	}
	return nil
}

func (r *mongoSlotRepository) CreateMany(ctx context.Context, slots []*model.AdSlot) error {
	if len(slots) == 0 {
		return nil
	}

	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	docs := make([]interface{}, 0, len(slots))
	for _, slot := range slots {
		slot.CreatedAt = now
		docs = append(docs, slot)
	}

	result, err := r.collection.InsertMany(ctx, docs)
	if err != nil {
		return fmt.Errorf("failed to create ad slots: %w", err)
	}

	for i, inserted := range result.InsertedIDs {
		if oid, ok := inserted.(primitive.ObjectID); ok && i < len(slots) {
			slots[i].ID = oid.Hex()
		}
	}
	return nil
}

func (r *mongoSlotRepository) FindByID(ctx context.Context, id string) (*model.AdSlot, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", slotserrors.ErrInvalidID, id)
	}

	var slot model.AdSlot
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&slot)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, slotserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find ad slot: %w", err)
	}

	return &slot, nil
}

func (r *mongoSlotRepository) FindByCreator(ctx context.Context, creatorID string, onlyAvailable bool, limit int, offset int64) ([]*model.AdSlot, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "date", Value: 1}, {Key: "type", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, r.buildCreatorFilter(creatorID, onlyAvailable), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find ad slots: %w", err)
	}
	defer cursor.Close(ctx)

	var slots []*model.AdSlot
	if err = cursor.All(ctx, &slots); err != nil {
		return nil, fmt.Errorf("failed to decode ad slots: %w", err)
	}

	return slots, nil
}

func (r *mongoSlotRepository) CountByCreator(ctx context.Context, creatorID string, onlyAvailable bool) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, r.buildCreatorFilter(creatorID, onlyAvailable))
	if err != nil {
		return 0, fmt.Errorf("failed to count ad slots: %w", err)
	}
	return count, nil
}

func (r *mongoSlotRepository) buildCreatorFilter(creatorID string, onlyAvailable bool) bson.M {
	filter := bson.M{"creator_id": creatorID}
	if onlyAvailable {
		filter["available"] = true
	}
	return filter
}

func (r *mongoSlotRepository) SetAvailability(ctx context.Context, id string, available bool) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", slotserrors.ErrInvalidID, id)
	}

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": objectID},
		bson.M{"$set": bson.M{"available": available}},
	)
	if err != nil {
		return fmt.Errorf("failed to update ad slot availability: %w", err)
	}

	if result.MatchedCount == 0 {
		return slotserrors.ErrNotFound
	}

	return nil
}

func (r *mongoSlotRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", slotserrors.ErrInvalidID, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete ad slot: %w", err)
	}

	if result.DeletedCount == 0 {
		return slotserrors.ErrNotFound
	}

	return nil
}

func (r *mongoSlotRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
