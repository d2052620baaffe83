package mongo

import (
	"context"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	mgo "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/phenrril/newmobile/internal/domain"
)

type UserRepo struct{ coll *mgo.Collection }

func NewUserRepo(db *mgo.Database) *UserRepo {
	return &UserRepo{coll: db.Collection(usersColl)}
}

var _ domain.UserRepo = (*UserRepo)(nil)

func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	u.Email = domain.NormalizeEmail(u.Email)
	_, err := r.coll.InsertOne(ctx, toUserDoc(u))
	return translate(err, "create user")
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	e := domain.NormalizeEmail(email)
	if e == "" {
		return nil, domain.Validation("email is required")
	}
	var doc userDoc
	if err := r.coll.FindOne(ctx, bson.D{{Key: "email", Value: e}}).Decode(&doc); err != nil {
		return nil, translate(err, "find user")
	}
	u, err := doc.toDomain()
	if err != nil {
		return nil, domain.Persistence(err, "decode user")
	}
	return &u, nil
}

func (r *UserRepo) List(ctx context.Context) ([]domain.User, error) {
	cur, err := r.coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, translate(err, "list users")
	}
	var docs []userDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, translate(err, "list users")
	}
	out := make([]domain.User, 0, len(docs))
	for i := range docs {
		u, err := docs[i].toDomain()
		if err != nil {
			return nil, domain.Persistence(err, "decode user")
		}
		out = append(out, u)
	}
	return out, nil
}
