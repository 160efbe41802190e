package repository

import (
	"context"
	"errors"
	"fmt"
	bidserrors "tms/internal/bids/errors"
	"tms/pkg/config"
	"tms/pkg/db"
	mongotx "tms/pkg/db/mongo"
	"tms/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "bids"
)

type BidRepository interface {
	Create(ctx context.Context, bid *model.Bid) error
	FindByID(ctx context.Context, id string) (*model.Bid, error)
	// FindAll returns bids oldest first. A limit of 0 returns every match.
	FindAll(ctx context.Context, filter model.BidFilter, limit int, offset int64) ([]*model.Bid, error)
	Count(ctx context.Context, filter model.BidFilter) (int64, error)
	// UpdateStatus moves bid to status iff the stored bid is still in
	// bid.Status, otherwise db.ErrVersionConflict.
	UpdateStatus(ctx context.Context, bid *model.Bid, status model.BidStatus) error
}

type mongoBidRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoBidRepository(cfg *config.Config) BidRepository {
	database := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoBidRepository{
		cfg:        cfg,
		collection: database.Collection(CollectionName),
	}
}

func (r *mongoBidRepository) Create(ctx context.Context, bid *model.Bid) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if _, err := r.collection.InsertOne(ctx, bid); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return bidserrors.ErrDuplicateID
		}
		return fmt.Errorf("failed to create bid: %w", err)
	}
	return nil
}

func (r *mongoBidRepository) FindByID(ctx context.Context, id string) (*model.Bid, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var bid model.Bid
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&bid)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, bidserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find bid: %w", err)
	}

	return &bid, nil
}

func (r *mongoBidRepository) FindAll(ctx context.Context, filter model.BidFilter, limit int, offset int64) ([]*model.Bid, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "date_submitted", Value: 1}, {Key: "_id", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, buildFilter(filter), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find bids: %w", err)
	}
	defer cursor.Close(ctx)

	bids := []*model.Bid{}
	if err = cursor.All(ctx, &bids); err != nil {
		return nil, fmt.Errorf("failed to decode bids: %w", err)
	}

	return bids, nil
}

func (r *mongoBidRepository) Count(ctx context.Context, filter model.BidFilter) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, buildFilter(filter))
	if err != nil {
		return 0, fmt.Errorf("failed to count bids: %w", err)
	}
	return count, nil
}

func (r *mongoBidRepository) UpdateStatus(ctx context.Context, bid *model.Bid, status model.BidStatus) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	filter := bson.M{"_id": bid.ID, "status": bid.Status}
	update := bson.M{"$set": bson.M{"status": status}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		if mapped := mongotx.MapWriteError(err); errors.Is(mapped, db.ErrVersionConflict) {
			return mapped
		}
		return fmt.Errorf("failed to update bid status: %w", err)
	}
	if result.MatchedCount == 0 {
		return db.ErrVersionConflict
	}

	bid.Status = status
	return nil
}

func buildFilter(f model.BidFilter) bson.M {
	filter := bson.M{}
	if f.LoadID != "" {
		filter["load_id"] = f.LoadID
	}
	if f.TransporterID != "" {
		filter["transporter_id"] = f.TransporterID
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	return filter
}
