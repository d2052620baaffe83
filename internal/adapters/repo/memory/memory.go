// Package memory holds process-local repositories used by the dev store driver and by tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/phenrril/newmobile/internal/domain"
)

type PurchaseRepo struct {
	mu   sync.RWMutex
	list []domain.Purchase
}

func NewPurchaseRepo() *PurchaseRepo { return &PurchaseRepo{} }

var _ domain.PurchaseRepo = (*PurchaseRepo)(nil)

func (r *PurchaseRepo) Create(ctx context.Context, p *domain.Purchase) error {
	if err := ctx.Err(); err != nil {
		return domain.Persistence(err, "create purchase")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.list = append(r.list, clonePurchase(*p))
	return nil
}

func (r *PurchaseRepo) ListRecent(ctx context.Context, limit int) ([]domain.Purchase, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.Persistence(err, "list purchases")
	}
	r.mu.RLock()
	out := make([]domain.Purchase, 0, len(r.list))
	for _, p := range r.list {
		out = append(out, clonePurchase(p))
	}
	r.mu.RUnlock()
	sortByDateDesc(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *PurchaseRepo) ListInRange(ctx context.Context, from, to time.Time) ([]domain.Purchase, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.Persistence(err, "list purchases")
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []domain.Purchase{}
	for _, p := range r.list {
		if p.PurchaseDate.Before(from) || p.PurchaseDate.After(to) {
			continue
		}
		out = append(out, clonePurchase(p))
	}
	sortByDateDesc(out)
	return out, nil
}

func sortByDateDesc(list []domain.Purchase) {
	sort.SliceStable(list, func(i, j int) bool { return list[i].PurchaseDate.After(list[j].PurchaseDate) })
}

func clonePurchase(p domain.Purchase) domain.Purchase {
	p.PurchaseItems = append([]domain.PurchaseItem(nil), p.PurchaseItems...)
	if p.CustomerID != nil {
		id := *p.CustomerID
		p.CustomerID = &id
	}
	return p
}

type UserRepo struct {
	mu      sync.RWMutex
	byEmail map[string]domain.User
}

func NewUserRepo() *UserRepo { return &UserRepo{byEmail: map[string]domain.User{}} }

var _ domain.UserRepo = (*UserRepo)(nil)

func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	if err := ctx.Err(); err != nil {
		return domain.Persistence(err, "create user")
	}
	key := domain.NormalizeEmail(u.Email)
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byEmail[key]; ok {
		return domain.DuplicateKey("email already registered", nil)
	}
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	r.byEmail[key] = *u
	return nil
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.Persistence(err, "find user")
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byEmail[domain.NormalizeEmail(email)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &u, nil
}

func (r *UserRepo) List(ctx context.Context) ([]domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.Persistence(err, "list users")
	}
	r.mu.RLock()
	out := make([]domain.User, 0, len(r.byEmail))
	for _, u := range r.byEmail {
		out = append(out, u)
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

type ProductRepo struct {
	mu   sync.RWMutex
	byID map[uuid.UUID]domain.Product
}

func NewProductRepo(seed ...domain.Product) *ProductRepo {
	r := &ProductRepo{byID: map[uuid.UUID]domain.Product{}}
	for _, p := range seed {
		r.byID[p.ID] = p
	}
	return r
}

var _ domain.ProductRepo = (*ProductRepo)(nil)

func (r *ProductRepo) Save(_ context.Context, p *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.byID[p.ID] = *p
	return nil
}

func (r *ProductRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.Persistence(err, "find product")
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

// matchesQuery mirrors the SQL and mongo filters: "moto" also means the Motorola brand.
func matchesQuery(p domain.Product, q string) bool {
	if q == "moto" {
		return strings.Contains(strings.ToLower(p.Name), q) || strings.EqualFold(p.Brand, "motorola")
	}
	return strings.Contains(strings.ToLower(p.Name+" "+p.Brand+" "+p.Model), q)
}

func (r *ProductRepo) List(ctx context.Context, f domain.ProductFilter) ([]domain.Product, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, domain.Persistence(err, "list products")
	}
	r.mu.RLock()
	all := []domain.Product{}
	q := strings.ToLower(strings.TrimSpace(f.Query))
	for _, p := range r.byID {
		if !p.Active {
			continue
		}
		if f.Brand != "" && !strings.EqualFold(p.Brand, f.Brand) {
			continue
		}
		if q != "" && !matchesQuery(p, q) {
			continue
		}
		all = append(all, p)
	}
	r.mu.RUnlock()

	switch f.Sort {
	case "price_desc":
		sort.Slice(all, func(i, j int) bool { return all[i].Price.GreaterThan(all[j].Price) })
	case "price_asc":
		sort.Slice(all, func(i, j int) bool { return all[i].Price.LessThan(all[j].Price) })
	case "newest":
		sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	default:
		sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	}
	total := int64(len(all))
	page, size := f.Page, f.PageSize
	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = 20
	}
	start := (page - 1) * size
	if start >= len(all) {
		return []domain.Product{}, total, nil
	}
	end := start + size
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}
