package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type PurchaseRepo interface {
	Create(ctx context.Context, p *Purchase) error
	// ListRecent returns at most limit purchases, newest purchaseDate first.
	ListRecent(ctx context.Context, limit int) ([]Purchase, error)
	ListInRange(ctx context.Context, from, to time.Time) ([]Purchase, error)
}

type UserRepo interface {
	Create(ctx context.Context, u *User) error
	FindByEmail(ctx context.Context, email string) (*User, error)
	// List returns every user, newest createdAt first.
	List(ctx context.Context) ([]User, error)
}

type ProductRepo interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)
	List(ctx context.Context, f ProductFilter) ([]Product, int64, error)
}

type PurchaseNotifier interface {
	PurchaseRecorded(ctx context.Context, p *Purchase) error
}
