package repository

import (
	"context"
	"errors"
	"fmt"
	transporterserrors "tms/internal/transporters/errors"
	"tms/pkg/config"
	"tms/pkg/db"
	mongotx "tms/pkg/db/mongo"
	"tms/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	CollectionName = "transporters"
)

type TransporterRepository interface {
	Create(ctx context.Context, transporter *model.Transporter) error
	FindByID(ctx context.Context, id string) (*model.Transporter, error)
	FindByIDs(ctx context.Context, ids []string) (map[string]*model.Transporter, error)
	// UpdateCapacity writes AvailableTrucks and FleetTrucks iff the stored
	// version still equals transporter.Version, then bumps the version on
	// both sides.
	UpdateCapacity(ctx context.Context, transporter *model.Transporter) error
}

type mongoTransporterRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoTransporterRepository(cfg *config.Config) TransporterRepository {
	database := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoTransporterRepository{
		cfg:        cfg,
		collection: database.Collection(CollectionName),
	}
}

func (r *mongoTransporterRepository) Create(ctx context.Context, transporter *model.Transporter) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if _, err := r.collection.InsertOne(ctx, transporter); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return transporterserrors.ErrDuplicateID
		}
		return fmt.Errorf("failed to create transporter: %w", err)
	}
	return nil
}

func (r *mongoTransporterRepository) FindByID(ctx context.Context, id string) (*model.Transporter, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var transporter model.Transporter
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&transporter)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, transporterserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find transporter: %w", err)
	}

	return &transporter, nil
}

func (r *mongoTransporterRepository) FindByIDs(ctx context.Context, ids []string) (map[string]*model.Transporter, error) {
	out := make(map[string]*model.Transporter, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("failed to find transporters: %w", err)
	}
	defer cursor.Close(ctx)

	var transporters []*model.Transporter
	if err = cursor.All(ctx, &transporters); err != nil {
		return nil, fmt.Errorf("failed to decode transporters: %w", err)
	}
	for _, t := range transporters {
		out[t.ID] = t
	}
	return out, nil
}

func (r *mongoTransporterRepository) UpdateCapacity(ctx context.Context, transporter *model.Transporter) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	filter := bson.M{"_id": transporter.ID, "version": transporter.Version}
	update := bson.M{
		"$set": bson.M{
			"available_trucks": transporter.AvailableTrucks,
			"fleet_trucks":     transporter.FleetTrucks,
		},
		"$inc": bson.M{"version": 1},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		if mapped := mongotx.MapWriteError(err); errors.Is(mapped, db.ErrVersionConflict) {
			return mapped
		}
		return fmt.Errorf("failed to update transporter capacity: %w", err)
	}
	if result.MatchedCount == 0 {
		return db.ErrVersionConflict
	}

	transporter.Version++
	return nil
}
