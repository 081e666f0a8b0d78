package repository

import (
	"context"
	"errors"
	"fmt"
	creatorserrors "locomotion/internal/creators/errors"
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
	CollectionName = "Creators"
)

type mongoCreatorRepository struct {
	cfg        *config.Config
	db         *mongo.Database
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

type CreatorRepository interface {
	Create(ctx context.Context, creator *model.Creator) error
	FindByID(ctx context.Context, id string) (*model.Creator, error)
	FindByUserID(ctx context.Context, userID string) (*model.Creator, error)
	FindAll(ctx context.Context, city string, approvedOnly bool, limit int, offset int64) ([]*model.Creator, error)
	Count(ctx context.Context, city string, approvedOnly bool) (int64, error)
	Update(ctx context.Context, id string, creator *model.Creator) (*mongo.UpdateResult, error)
	SetBlockedDates(ctx context.Context, id string, dates []string) error
	SetApproved(ctx context.Context, id string, approved bool) error
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

func NewMongoCreatorRepository(cfg *config.Config) CreatorRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoCreatorRepository{
		cfg:        cfg,
		db:         db,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

func (r *mongoCreatorRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
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

func (r *mongoCreatorRepository) Create(ctx context.Context, creator *model.Creator) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	creator.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, creator)
	if err != nil {
		return fmt.Errorf("failed to create creator: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		creator.ID = oid.Hex()
	}
	return nil
}

func (r *mongoCreatorRepository) FindByID(ctx context.Context, id string) (*model.Creator, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", creatorserrors.ErrInvalidID, id)
	}

	var creator model.Creator
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&creator)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, creatorserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find creator: %w", err)
	}

	return &creator, nil
}

func (r *mongoCreatorRepository) FindByUserID(ctx context.Context, userID string) (*model.Creator, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var creator model.Creator
	err := r.collection.FindOne(ctx, bson.M{"user_id": userID}).Decode(&creator)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, creatorserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find creator by user: %w", err)
	}

	return &creator, nil
}

func (r *mongoCreatorRepository) FindAll(ctx context.Context, city string, approvedOnly bool, limit int, offset int64) ([]*model.Creator, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "follower_count", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, r.buildListFilter(city, approvedOnly), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find creators: %w", err)
	}
	defer cursor.Close(ctx)

	var creators []*model.Creator
	if err = cursor.All(ctx, &creators); err != nil {
		return nil, fmt.Errorf("failed to decode creators: %w", err)
	}

	return creators, nil
}

func (r *mongoCreatorRepository) Count(ctx context.Context, city string, approvedOnly bool) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, r.buildListFilter(city, approvedOnly))
	if err != nil {
		return 0, fmt.Errorf("failed to count creators: %w", err)
	}
	return count, nil
}

func (r *mongoCreatorRepository) buildListFilter(city string, approvedOnly bool) bson.M {
	filter := bson.M{}
	if city != "" {
		filter["city"] = city
	}
	if approvedOnly {
		filter["approved"] = true
	}
	return filter
}

func (r *mongoCreatorRepository) Update(ctx context.Context, id string, creator *model.Creator) (*mongo.UpdateResult, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", creatorserrors.ErrInvalidID, id)
	}

	update := bson.M{
		"$set": bson.M{
			"name":             creator.Name,
			"instagram_handle": creator.Handle,
			"photo":            creator.Photo,
			"platform":         creator.Platform,
			"follower_count":   creator.FollowerCount,
			"engagement_rate":  creator.EngagementRate,
			"bio":              creator.Bio,
			"city":             creator.City,
			"story_price":      creator.StoryPrice,
			"post_price":       creator.PostPrice,
			"reel_price":       creator.ReelPrice,
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return nil, fmt.Errorf("failed to update creator: %w", err)
	}

	if result.MatchedCount == 0 {
		return nil, creatorserrors.ErrNotFound
	}

	return result, nil
}

func (r *mongoCreatorRepository) SetBlockedDates(ctx context.Context, id string, dates []string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", creatorserrors.ErrInvalidID, id)
	}

	if dates == nil {
		dates = []string{}
	}
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": objectID},
		bson.M{"$set": bson.M{"blocked_dates": dates}},
	)
	if err != nil {
		return fmt.Errorf("failed to update blocked dates: %w", err)
	}

	if result.MatchedCount == 0 {
		return creatorserrors.ErrNotFound
	}

	return nil
}

func (r *mongoCreatorRepository) SetApproved(ctx context.Context, id string, approved bool) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", creatorserrors.ErrInvalidID, id)
	}

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": objectID},
		bson.M{"$set": bson.M{"approved": approved}},
	)
	if err != nil {
		return fmt.Errorf("failed to update approval: %w", err)
	}

	if result.MatchedCount == 0 {
		return creatorserrors.ErrNotFound
	}

	return nil
}

func (r *mongoCreatorRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
