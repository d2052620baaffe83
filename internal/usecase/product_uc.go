package usecase

import (
	"context"

	"github.com/google/uuid"

	"github.com/phenrril/newmobile/internal/domain"
)

type ProductUC struct {
	Products domain.ProductRepo
}

func (uc *ProductUC) List(ctx context.Context, f domain.ProductFilter) ([]domain.Product, int64, error) {
	if f.PageSize <= 0 {
		f.PageSize = 20
	}
	if f.PageSize > 100 {
		f.PageSize = 100
	}
	list, total, err := uc.Products.List(ctx, f)
	if err != nil {
		return nil, 0, domain.AsPersistence(err, "list products")
	}
	return list, total, nil
}

func (uc *ProductUC) Get(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	if id == uuid.Nil {
		return nil, domain.Validation("product id is required")
	}
	p, err := uc.Products.FindByID(ctx, id)
	if err != nil {
		if domain.IsKind(err, domain.KindNotFound) {
			return nil, domain.NotFound("product %s not found", id)
		}
		return nil, domain.AsPersistence(err, "find product")
	}
	return p, nil
}
