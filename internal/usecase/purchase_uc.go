package usecase

import (
	"context"
	"math/rand/v2"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/phenrril/newmobile/internal/domain"
)

const (
	DefaultRecentLimit = 5
	maxRecentLimit     = 100
)

type ItemInput struct {
	ProductID   uuid.UUID `json:"productId" validate:"required"`
	ProductName string    `json:"productName" validate:"required"`
	Brand       string    `json:"brand" validate:"required"`
	Quantity    int       `json:"quantity" validate:"gt=0"`
	// Prices are nullable so an omitted price is told apart from an explicit zero.
	CostPrice    decimal.NullDecimal `json:"costPrice"`
	SellingPrice decimal.NullDecimal `json:"sellingPrice"`
}

type RecordPurchaseInput struct {
	CustomerID     *uuid.UUID  `json:"customerId,omitempty"`
	CustomerName   string      `json:"customerName" validate:"required"`
	CustomerMobile string      `json:"customerMobile" validate:"required"`
	Items          []ItemInput `json:"items" validate:"required,min=1,dive"`
	PaymentMethod  string      `json:"paymentMethod" validate:"required"`
}

// DisplayStatus is what the dashboard shows next to a purchase. It is drawn
// at random on every read and is never stored.
type DisplayStatus string

const (
	StatusCompleted DisplayStatus = "completed"
	StatusShipped   DisplayStatus = "shipped"
	StatusPending   DisplayStatus = "pending"
)

var displayStatuses = []DisplayStatus{StatusCompleted, StatusShipped, StatusPending}

// Labels are assigned by rank in the result, not by elapsed time.
var rankLabels = []string{"2 minutes ago", "15 minutes ago", "1 hour ago", "3 hours ago", "5 hours ago"}

const fallbackLabel = "Recently"

type PurchaseSummary struct {
	ID       uuid.UUID       `json:"id"`
	Customer string          `json:"customer"`
	Amount   decimal.Decimal `json:"amount"`
	Status   DisplayStatus   `json:"status"`
	Date     string          `json:"date"`
	Products []string        `json:"products"`
}

type PurchaseUC struct {
	Purchases domain.PurchaseRepo
	Notifier  domain.PurchaseNotifier

	// Now and Pick default to time.Now and rand.IntN.
	Now  func() time.Time
	Pick func(n int) int
}

func (uc *PurchaseUC) now() time.Time {
	if uc.Now != nil {
		return uc.Now()
	}
	return time.Now()
}

func (uc *PurchaseUC) pick(n int) int {
	if uc.Pick != nil {
		return uc.Pick(n)
	}
	return rand.IntN(n)
}

func (uc *PurchaseUC) RecordPurchase(ctx context.Context, in RecordPurchaseInput) (*domain.Purchase, error) {
	in.CustomerName = strings.TrimSpace(in.CustomerName)
	in.CustomerMobile = strings.TrimSpace(in.CustomerMobile)
	for i := range in.Items {
		in.Items[i].ProductName = strings.TrimSpace(in.Items[i].ProductName)
		in.Items[i].Brand = strings.TrimSpace(in.Items[i].Brand)
	}
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	method, err := domain.ParsePaymentMethod(in.PaymentMethod)
	if err != nil {
		return nil, err
	}
	items := make([]domain.PurchaseItem, 0, len(in.Items))
	for i, it := range in.Items {
		if !it.CostPrice.Valid {
			return nil, domain.Validation("Items[%d].CostPrice is required", i)
		}
		if !it.SellingPrice.Valid {
			return nil, domain.Validation("Items[%d].SellingPrice is required", i)
		}
		if it.CostPrice.Decimal.IsNegative() {
			return nil, domain.Validation("Items[%d].CostPrice must not be negative", i)
		}
		if it.SellingPrice.Decimal.IsNegative() {
			return nil, domain.Validation("Items[%d].SellingPrice must not be negative", i)
		}
		items = append(items, domain.NewPurchaseItem(it.ProductID, it.ProductName, it.Brand, it.Quantity, it.CostPrice.Decimal, it.SellingPrice.Decimal))
	}
	var customerID *uuid.UUID
	if in.CustomerID != nil && *in.CustomerID != uuid.Nil {
		id := *in.CustomerID
		customerID = &id
	}

	p := domain.NewPurchase(customerID, in.CustomerName, in.CustomerMobile, items, method, uc.now())
	if err := uc.Purchases.Create(ctx, p); err != nil {
		return nil, domain.AsPersistence(err, "record purchase")
	}
	log.Info().Str("purchase_id", p.ID.String()).Str("revenue", p.TotalRevenue.String()).Str("payment", string(p.PaymentMethod)).Int("items", len(p.PurchaseItems)).Msg("purchase recorded")

	if uc.Notifier != nil {
		cp := *p
		go func() {
			if err := uc.Notifier.PurchaseRecorded(context.Background(), &cp); err != nil {
				log.Warn().Err(err).Str("purchase_id", cp.ID.String()).Msg("purchase notification")
			}
		}()
	}
	return p, nil
}

// ListRecentPurchases returns the newest purchases as dashboard rows. Status is
// random on every call; see DisplayStatus.
func (uc *PurchaseUC) ListRecentPurchases(ctx context.Context, limit int) ([]PurchaseSummary, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	if limit > maxRecentLimit {
		limit = maxRecentLimit
	}
	list, err := uc.Purchases.ListRecent(ctx, limit)
	if err != nil {
		return nil, domain.AsPersistence(err, "list recent purchases")
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].PurchaseDate.After(list[j].PurchaseDate) })
	if len(list) > limit {
		list = list[:limit]
	}
	out := make([]PurchaseSummary, 0, len(list))
	for i := range list {
		p := &list[i]
		out = append(out, PurchaseSummary{
			ID:       p.ID,
			Customer: p.CustomerName,
			Amount:   p.TotalRevenue,
			Status:   displayStatuses[uc.pick(len(displayStatuses))],
			Date:     RankLabel(i),
			Products: p.ProductNames(),
		})
	}
	return out, nil
}

func RankLabel(rank int) string {
	if rank >= 0 && rank < len(rankLabels) {
		return rankLabels[rank]
	}
	return fallbackLabel
}

// ListInRange returns the full purchases recorded between from and to, newest first.
func (uc *PurchaseUC) ListInRange(ctx context.Context, from, to time.Time) ([]domain.Purchase, error) {
	if from.After(to) {
		from, to = to, from
	}
	list, err := uc.Purchases.ListInRange(ctx, from, to)
	if err != nil {
		return nil, domain.AsPersistence(err, "list purchases")
	}
	return list, nil
}

type ProductSales struct {
	Name     string          `json:"name"`
	Brand    string          `json:"brand"`
	Quantity int             `json:"quantity"`
	Revenue  decimal.Decimal `json:"revenue"`
	Profit   decimal.Decimal `json:"profit"`
}

type DaySales struct {
	Day       string          `json:"day"`
	Revenue   decimal.Decimal `json:"revenue"`
	Purchases int             `json:"purchases"`
}

type SalesReport struct {
	From            time.Time                    `json:"from"`
	To              time.Time                    `json:"to"`
	Purchases       int                          `json:"purchases"`
	TotalRevenue    decimal.Decimal              `json:"totalRevenue"`
	TotalCost       decimal.Decimal              `json:"totalCost"`
	Profit          decimal.Decimal              `json:"profit"`
	AvgOrderValue   decimal.Decimal              `json:"avgOrderValue"`
	ByPaymentMethod map[domain.PaymentMethod]int `json:"byPaymentMethod"`
	TopProducts     []ProductSales               `json:"topProducts"`
	Daily           []DaySales                   `json:"daily"`
}

const topProductsLimit = 25

func (uc *PurchaseUC) SalesReport(ctx context.Context, from, to time.Time) (*SalesReport, error) {
	if from.After(to) {
		from, to = to, from
	}
	list, err := uc.ListInRange(ctx, from, to)
	if err != nil {
		return nil, err
	}
	rep := &SalesReport{From: from, To: to, Purchases: len(list), ByPaymentMethod: map[domain.PaymentMethod]int{}}
	products := map[string]*ProductSales{}
	days := map[string]*DaySales{}
	for _, p := range list {
		rep.TotalRevenue = rep.TotalRevenue.Add(p.TotalRevenue)
		rep.TotalCost = rep.TotalCost.Add(p.TotalCost)
		rep.Profit = rep.Profit.Add(p.Profit)
		rep.ByPaymentMethod[p.PaymentMethod]++

		dayKey := p.PurchaseDate.Format("2006-01-02")
		d, ok := days[dayKey]
		if !ok {
			d = &DaySales{Day: dayKey}
			days[dayKey] = d
		}
		d.Revenue = d.Revenue.Add(p.TotalRevenue)
		d.Purchases++

		for _, it := range p.PurchaseItems {
			key := it.ProductID.String()
			ps, ok := products[key]
			if !ok {
				ps = &ProductSales{Name: it.ProductName, Brand: it.Brand}
				products[key] = ps
			}
			ps.Quantity += it.Quantity
			ps.Revenue = ps.Revenue.Add(it.TotalRevenue)
			ps.Profit = ps.Profit.Add(it.Profit)
		}
	}
	if rep.Purchases > 0 {
		rep.AvgOrderValue = rep.TotalRevenue.Div(decimal.NewFromInt(int64(rep.Purchases))).Round(2)
	}

	rep.TopProducts = make([]ProductSales, 0, len(products))
	for _, ps := range products {
		rep.TopProducts = append(rep.TopProducts, *ps)
	}
	sort.Slice(rep.TopProducts, func(i, j int) bool {
		a, b := rep.TopProducts[i], rep.TopProducts[j]
		if a.Quantity == b.Quantity {
			if c := a.Revenue.Cmp(b.Revenue); c != 0 {
				return c > 0
			}
			return a.Name < b.Name
		}
		return a.Quantity > b.Quantity
	})
	if len(rep.TopProducts) > topProductsLimit {
		rep.TopProducts = rep.TopProducts[:topProductsLimit]
	}

	rep.Daily = make([]DaySales, 0, len(days))
	for _, d := range days {
		rep.Daily = append(rep.Daily, *d)
	}
	sort.Slice(rep.Daily, func(i, j int) bool { return rep.Daily[i].Day < rep.Daily[j].Day })
	return rep, nil
}
