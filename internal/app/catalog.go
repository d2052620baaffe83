package app

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/phenrril/newmobile/internal/domain"
)

type seedPhone struct {
	brand, model, price, cost string
	stock                     int
	specs                     map[string]string
}

var seedPhones = []seedPhone{
	{"Samsung", "Galaxy A15", "289999", "231000", 12, map[string]string{"storage": "128GB", "ram": "4GB", "screen": "6.5\""}},
	{"Samsung", "Galaxy S24", "1299999", "1040000", 4, map[string]string{"storage": "256GB", "ram": "8GB", "screen": "6.2\""}},
	{"Motorola", "Moto G84", "459999", "368000", 9, map[string]string{"storage": "256GB", "ram": "12GB", "screen": "6.55\""}},
	{"Motorola", "Edge 40 Neo", "649999", "520000", 6, map[string]string{"storage": "256GB", "ram": "8GB", "screen": "6.55\""}},
	{"Xiaomi", "Redmi Note 13", "379999", "300000", 15, map[string]string{"storage": "256GB", "ram": "8GB", "screen": "6.67\""}},
	{"Apple", "iPhone 15", "1899999", "1560000", 3, map[string]string{"storage": "128GB", "screen": "6.1\""}},
}

func slugify(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), " ", "-")
}

func seedCatalog() []domain.Product {
	now := time.Now().UTC()
	out := make([]domain.Product, 0, len(seedPhones))
	for _, p := range seedPhones {
		name := p.brand + " " + p.model
		out = append(out, domain.Product{
			ID:             uuid.New(),
			Slug:           slugify(name),
			Name:           name,
			Brand:          p.brand,
			Model:          p.model,
			Category:       "celulares",
			Price:          decimal.RequireFromString(p.price),
			CostPrice:      decimal.RequireFromString(p.cost),
			Stock:          p.stock,
			Active:         true,
			Specifications: p.specs,
			CreatedAt:      now,
			UpdatedAt:      now,
		})
	}
	return out
}
