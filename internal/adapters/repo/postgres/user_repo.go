package postgres

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/phenrril/newmobile/internal/domain"
)

type UserRepo struct{ db *gorm.DB }

func NewUserRepo(db *gorm.DB) *UserRepo { return &UserRepo{db: db} }

var _ domain.UserRepo = (*UserRepo)(nil)

// Create relies on the unique index on email; a concurrent duplicate surfaces
// as a DuplicateKey error instead of being checked beforehand.
func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	u.Email = strings.ToLower(u.Email)
	return translate(r.db.WithContext(ctx).Create(u).Error, "create user")
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	e := strings.ToLower(strings.TrimSpace(email))
	if e == "" {
		return nil, domain.Validation("email is required")
	}
	if err := r.db.WithContext(ctx).First(&u, "email = ?", e).Error; err != nil {
		return nil, translate(err, "find user")
	}
	return &u, nil
}

func (r *UserRepo) List(ctx context.Context) ([]domain.User, error) {
	var list []domain.User
	if err := r.db.WithContext(ctx).Order("created_at desc").Find(&list).Error; err != nil {
		return nil, translate(err, "list users")
	}
	return list, nil
}
