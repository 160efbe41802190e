package repository

import (
	"context"
	"errors"
	"fmt"
	loadserrors "tms/internal/loads/errors"
	"tms/pkg/config"
	"tms/pkg/db"
	mongotx "tms/pkg/db/mongo"
	"tms/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "loads"
)

type LoadRepository interface {
	Create(ctx context.Context, load *model.Load) error
	FindByID(ctx context.Context, id string) (*model.Load, error)
	FindAll(ctx context.Context, filter model.LoadFilter, limit int, offset int64) ([]*model.Load, error)
	Count(ctx context.Context, filter model.LoadFilter) (int64, error)
	// UpdateStatus sets the status iff the stored version still equals
	// load.Version. On success load carries the new status and version.
	UpdateStatus(ctx context.Context, load *model.Load, status model.LoadStatus) error
}

type mongoLoadRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoLoadRepository(cfg *config.Config) LoadRepository {
	database := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoLoadRepository{
		cfg:        cfg,
		collection: database.Collection(CollectionName),
	}
}

func (r *mongoLoadRepository) Create(ctx context.Context, load *model.Load) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if _, err := r.collection.InsertOne(ctx, load); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return loadserrors.ErrDuplicateID
		}
		return fmt.Errorf("failed to create load: %w", err)
	}
	return nil
}

func (r *mongoLoadRepository) FindByID(ctx context.Context, id string) (*model.Load, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var load model.Load
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&load)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, loadserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find load: %w", err)
	}

	return &load, nil
}

func (r *mongoLoadRepository) FindAll(ctx context.Context, filter model.LoadFilter, limit int, offset int64) ([]*model.Load, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "date_posted", Value: -1}, {Key: "_id", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, buildFilter(filter), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find loads: %w", err)
	}
	defer cursor.Close(ctx)

	loads := []*model.Load{}
	if err = cursor.All(ctx, &loads); err != nil {
		return nil, fmt.Errorf("failed to decode loads: %w", err)
	}

	return loads, nil
}

func (r *mongoLoadRepository) Count(ctx context.Context, filter model.LoadFilter) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, buildFilter(filter))
	if err != nil {
		return 0, fmt.Errorf("failed to count loads: %w", err)
	}
	return count, nil
}

func (r *mongoLoadRepository) UpdateStatus(ctx context.Context, load *model.Load, status model.LoadStatus) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	filter := bson.M{"_id": load.ID, "version": load.Version}
	update := bson.M{
		"$set": bson.M{"status": status},
		"$inc": bson.M{"version": 1},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		if mapped := mongotx.MapWriteError(err); errors.Is(mapped, db.ErrVersionConflict) {
			return mapped
		}
		return fmt.Errorf("failed to update load status: %w", err)
	}
	if result.MatchedCount == 0 {
		return db.ErrVersionConflict
	}

	load.Status = status
	load.Version++
	return nil
}

func buildFilter(f model.LoadFilter) bson.M {
	filter := bson.M{}
	if f.ShipperID != "" {
		filter["shipper_id"] = f.ShipperID
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	return filter
}
