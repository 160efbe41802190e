package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	bidsrepo "tms/internal/bids/repository"
	bookingsrepo "tms/internal/bookings/repository"
	loadsrepo "tms/internal/loads/repository"
	"tms/internal/migrations/mongo/validators"
	transportersrepo "tms/internal/transporters/repository"
	"tms/pkg/logger"
)

var (
	LoadsIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "shipper_id", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "date_posted", Value: -1}}},
	}

	BidsIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "load_id", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "transporter_id", Value: 1}, {Key: "status", Value: 1}}},
	}

	BookingsIndexes = []mongo.IndexModel{
		// At most one booking per bid.
		{
			Keys:    bson.D{{Key: "bid_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "load_id", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "transporter_id", Value: 1}}},
	}
)

type CollectionDef struct {
	Indexes   []mongo.IndexModel
	Validator bson.M
}

func Collections() map[string]CollectionDef {
	return map[string]CollectionDef{
		loadsrepo.CollectionName: {
			Indexes:   LoadsIndexes,
			Validator: validators.LoadValidator,
		},
		bidsrepo.CollectionName: {
			Indexes:   BidsIndexes,
			Validator: validators.BidValidator,
		},
		bookingsrepo.CollectionName: {
			Indexes:   BookingsIndexes,
			Validator: validators.BookingValidator,
		},
		transportersrepo.CollectionName: {
			Validator: validators.TransporterValidator,
		},
	}
}

func RunMigration(ctx context.Context, client *mongo.Client, dbName string, log *logger.Logger) error {
	db := client.Database(dbName)
	log.Info("Running Mongo migrations", "database", dbName)

	for name, def := range Collections() {
		if err := ensureCollection(ctx, db, name, def.Validator, log); err != nil {
			return fmt.Errorf("failed to ensure collection %s: %w", name, err)
		}
		if err := ensureIndexes(ctx, db, name, def.Indexes, log); err != nil {
			return fmt.Errorf("failed to ensure indexes for %s: %w", name, err)
		}
	}

	log.Info("All migrations applied successfully")
	return nil
}

func ensureCollection(ctx context.Context, db *mongo.Database, name string, validator bson.M, log *logger.Logger) error {
	existing, err := db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: name}})
	if err != nil {
		return err
	}

	if len(existing) == 0 {
		log.Info("Creating collection", "collection", name)
		opts := options.CreateCollection().SetValidator(validator)
		if err := db.CreateCollection(ctx, name, opts); err != nil {
			return fmt.Errorf("failed creating %s: %w", name, err)
		}
	} else {
		log.Info("Collection already exists, updating validator", "collection", name)
		command := bson.D{
			{Key: "collMod", Value: name},
			{Key: "validator", Value: validator},
		}
		if err := db.RunCommand(ctx, command).Err(); err != nil {
			log.Warn("Failed updating validator", "collection", name, "error", err)
		}
	}

	return nil
}

func ensureIndexes(ctx context.Context, db *mongo.Database, name string, models []mongo.IndexModel, log *logger.Logger) error {
	if len(models) == 0 {
		return nil
	}
	coll := db.Collection(name)
	if _, err := coll.Indexes().CreateMany(ctx, models); err != nil {
		return err
	}
	log.Info("Ensured indexes", "collection", name, "count", len(models))
	return nil
}
