package mongo

import (
	"context"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	mgo "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/phenrril/newmobile/internal/domain"
)

type ProductRepo struct{ coll *mgo.Collection }

func NewProductRepo(db *mgo.Database) *ProductRepo {
	return &ProductRepo{coll: db.Collection(productsColl)}
}

var _ domain.ProductRepo = (*ProductRepo)(nil)

func (r *ProductRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	var doc productDoc
	if err := r.coll.FindOne(ctx, bson.D{{Key: "_id", Value: id.String()}}).Decode(&doc); err != nil {
		return nil, translate(err, "find product")
	}
	p, err := doc.toDomain()
	if err != nil {
		return nil, domain.Persistence(err, "decode product")
	}
	return &p, nil
}

func productFilter(f domain.ProductFilter) bson.D {
	filter := bson.D{{Key: "active", Value: true}}
	if f.Brand != "" {
		filter = append(filter, bson.E{Key: "brand", Value: primitive.Regex{
			Pattern: "^" + regexp.QuoteMeta(f.Brand) + "$", Options: "i",
		}})
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		like := primitive.Regex{Pattern: regexp.QuoteMeta(q), Options: "i"}
		or := bson.A{
			bson.D{{Key: "name", Value: like}},
			bson.D{{Key: "brand", Value: like}},
			bson.D{{Key: "model", Value: like}},
		}
		if strings.EqualFold(q, "moto") {
			or = bson.A{
				bson.D{{Key: "name", Value: like}},
				bson.D{{Key: "brand", Value: primitive.Regex{Pattern: "^motorola$", Options: "i"}}},
			}
		}
		filter = append(filter, bson.E{Key: "$or", Value: or})
	}
	return filter
}

func (r *ProductRepo) List(ctx context.Context, f domain.ProductFilter) ([]domain.Product, int64, error) {
	filter := productFilter(f)
	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, translate(err, "count products")
	}
	var sort bson.D
	switch f.Sort {
	case "price_desc":
		sort = bson.D{{Key: "price", Value: -1}}
	case "price_asc":
		sort = bson.D{{Key: "price", Value: 1}}
	case "newest":
		sort = bson.D{{Key: "createdAt", Value: -1}}
	default:
		sort = bson.D{{Key: "name", Value: 1}}
	}
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.PageSize <= 0 {
		f.PageSize = 20
	}
	opts := options.Find().
		SetSort(sort).
		SetSkip(int64((f.Page - 1) * f.PageSize)).
		SetLimit(int64(f.PageSize))
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, translate(err, "list products")
	}
	var docs []productDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, 0, translate(err, "list products")
	}
	out := make([]domain.Product, 0, len(docs))
	for i := range docs {
		p, err := docs[i].toDomain()
		if err != nil {
			return nil, 0, domain.Persistence(err, "decode product")
		}
		out = append(out, p)
	}
	return out, total, nil
}

// Seed inserts the catalog when the collection is empty.
func (r *ProductRepo) Seed(ctx context.Context, products []domain.Product) error {
	n, err := r.coll.CountDocuments(ctx, bson.D{})
	if err != nil {
		return translate(err, "count products")
	}
	if n > 0 || len(products) == 0 {
		return nil
	}
	docs := make([]interface{}, 0, len(products))
	for i := range products {
		d, err := toProductDoc(&products[i])
		if err != nil {
			return domain.Persistence(err, "encode product")
		}
		docs = append(docs, d)
	}
	_, err = r.coll.InsertMany(ctx, docs)
	return translate(err, "seed products")
}
