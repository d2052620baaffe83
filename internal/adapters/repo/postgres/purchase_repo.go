package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/phenrril/newmobile/internal/domain"
)

// PurchaseRepo keeps each purchase in one row; items live in a jsonb column so
// the write is a single insert.
type PurchaseRepo struct{ db *gorm.DB }

func NewPurchaseRepo(db *gorm.DB) *PurchaseRepo { return &PurchaseRepo{db: db} }

var _ domain.PurchaseRepo = (*PurchaseRepo)(nil)

func (r *PurchaseRepo) Create(ctx context.Context, p *domain.Purchase) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return translate(r.db.WithContext(ctx).Create(p).Error, "create purchase")
}

func (r *PurchaseRepo) ListRecent(ctx context.Context, limit int) ([]domain.Purchase, error) {
	var list []domain.Purchase
	q := r.db.WithContext(ctx).Order("purchase_date desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&list).Error; err != nil {
		return nil, translate(err, "list recent purchases")
	}
	return list, nil
}

func (r *PurchaseRepo) ListInRange(ctx context.Context, from, to time.Time) ([]domain.Purchase, error) {
	var list []domain.Purchase
	if err := r.db.WithContext(ctx).
		Where("purchase_date BETWEEN ? AND ?", from, to).
		Order("purchase_date desc").
		Find(&list).Error; err != nil {
		return nil, translate(err, "list purchases in range")
	}
	return list, nil
}
