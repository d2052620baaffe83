package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	mgo "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/phenrril/newmobile/internal/domain"
)

type PurchaseRepo struct{ coll *mgo.Collection }

func NewPurchaseRepo(db *mgo.Database) *PurchaseRepo {
	return &PurchaseRepo{coll: db.Collection(purchasesColl)}
}

var _ domain.PurchaseRepo = (*PurchaseRepo)(nil)

// Create writes the purchase and its items as one document.
func (r *PurchaseRepo) Create(ctx context.Context, p *domain.Purchase) error {
	doc, err := toPurchaseDoc(p)
	if err != nil {
		return domain.Persistence(err, "encode purchase")
	}
	_, err = r.coll.InsertOne(ctx, doc)
	return translate(err, "create purchase")
}

func (r *PurchaseRepo) ListRecent(ctx context.Context, limit int) ([]domain.Purchase, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "purchaseDate", Value: -1}}).
		SetLimit(int64(limit))
	return r.find(ctx, bson.D{}, opts, "list recent purchases")
}

func (r *PurchaseRepo) ListInRange(ctx context.Context, from, to time.Time) ([]domain.Purchase, error) {
	filter := bson.D{{Key: "purchaseDate", Value: bson.D{
		{Key: "$gte", Value: from},
		{Key: "$lte", Value: to},
	}}}
	opts := options.Find().SetSort(bson.D{{Key: "purchaseDate", Value: -1}})
	return r.find(ctx, filter, opts, "list purchases in range")
}

func (r *PurchaseRepo) find(ctx context.Context, filter bson.D, opts *options.FindOptions, op string) ([]domain.Purchase, error) {
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, translate(err, op)
	}
	var docs []purchaseDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, translate(err, op)
	}
	out := make([]domain.Purchase, 0, len(docs))
	for i := range docs {
		p, err := docs[i].toDomain()
		if err != nil {
			return nil, domain.Persistence(err, "decode purchase")
		}
		out = append(out, p)
	}
	return out, nil
}
