package mongo

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	mgo "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/phenrril/newmobile/internal/domain"
)

const (
	purchasesColl = "purchases"
	usersColl     = "users"
	productsColl  = "products"
)

// Connect dials the cluster and pings the primary before handing the database back.
func Connect(ctx context.Context, uri, dbName string) (*mgo.Client, *mgo.Database, error) {
	cctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	client, err := mgo.Connect(cctx, options.Client().ApplyURI(uri).SetAppName("newmobile"))
	if err != nil {
		return nil, nil, errors.Wrap(err, "mongo connect")
	}
	if err := client.Ping(cctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, errors.Wrap(err, "mongo ping")
	}
	return client, client.Database(dbName), nil
}

// EnsureIndexes creates the unique email index and the date indexes the
// recent-purchase and newest-user reads sort on.
func EnsureIndexes(ctx context.Context, db *mgo.Database) error {
	if _, err := db.Collection(usersColl).Indexes().CreateMany(ctx, []mgo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true).SetName("uniq_email")},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
	}); err != nil {
		return domain.Persistence(err, "create user indexes")
	}
	if _, err := db.Collection(purchasesColl).Indexes().CreateMany(ctx, []mgo.IndexModel{
		{Keys: bson.D{{Key: "purchaseDate", Value: -1}}},
		{Keys: bson.D{{Key: "customerId", Value: 1}}},
	}); err != nil {
		return domain.Persistence(err, "create purchase indexes")
	}
	if _, err := db.Collection(productsColl).Indexes().CreateOne(ctx, mgo.IndexModel{
		Keys:    bson.D{{Key: "slug", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		log.Warn().Err(err).Msg("mongo product slug index")
	}
	return nil
}

func Disconnect(ctx context.Context, client *mgo.Client) error {
	if client == nil {
		return nil
	}
	return client.Disconnect(ctx)
}

func translate(err error, op string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mgo.ErrNoDocuments):
		return domain.ErrNotFound
	case mgo.IsDuplicateKeyError(err):
		return domain.DuplicateKey(op+": duplicate key", err)
	default:
		return domain.Persistence(err, op)
	}
}
