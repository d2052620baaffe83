package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	PaymentCash PaymentMethod = "cash"
	PaymentUPI  PaymentMethod = "upi"
	PaymentCard PaymentMethod = "card"
)

var PaymentMethods = []PaymentMethod{PaymentCash, PaymentUPI, PaymentCard}

func ParsePaymentMethod(s string) (PaymentMethod, error) {
	m := PaymentMethod(strings.ToLower(strings.TrimSpace(s)))
	for _, v := range PaymentMethods {
		if m == v {
			return m, nil
		}
	}
	return "", Validation("payment method %q is not one of cash, upi, card", s)
}

// PurchaseItem is one product line of a purchase. Name, brand and prices are a
// snapshot taken at sale time; totals are stored, not derived on read.
type PurchaseItem struct {
	ProductID    uuid.UUID       `json:"productId"`
	ProductName  string          `json:"productName"`
	Brand        string          `json:"brand"`
	Quantity     int             `json:"quantity"`
	CostPrice    decimal.Decimal `json:"costPrice"`
	SellingPrice decimal.Decimal `json:"sellingPrice"`
	TotalCost    decimal.Decimal `json:"totalCost"`
	TotalRevenue decimal.Decimal `json:"totalRevenue"`
	Profit       decimal.Decimal `json:"profit"`
}

func NewPurchaseItem(productID uuid.UUID, name, brand string, qty int, cost, selling decimal.Decimal) PurchaseItem {
	it := PurchaseItem{
		ProductID:    productID,
		ProductName:  name,
		Brand:        brand,
		Quantity:     qty,
		CostPrice:    cost,
		SellingPrice: selling,
	}
	q := decimal.NewFromInt(int64(qty))
	it.TotalCost = cost.Mul(q)
	it.TotalRevenue = selling.Mul(q)
	it.Profit = it.TotalRevenue.Sub(it.TotalCost)
	return it
}

type Purchase struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	CustomerID     *uuid.UUID      `gorm:"type:uuid;index" json:"customerId,omitempty"`
	CustomerName   string          `gorm:"size:140;not null" json:"customerName"`
	CustomerMobile string          `gorm:"size:60;not null" json:"customerMobile"`
	PurchaseItems  []PurchaseItem  `gorm:"type:jsonb;serializer:json" json:"purchaseItems"`
	TotalRevenue   decimal.Decimal `gorm:"type:numeric;not null" json:"totalRevenue"`
	TotalCost      decimal.Decimal `gorm:"type:numeric;not null" json:"totalCost"`
	Profit         decimal.Decimal `gorm:"type:numeric;not null" json:"profit"`
	PaymentMethod  PaymentMethod   `gorm:"type:varchar(10);index" json:"paymentMethod"`
	PurchaseDate   time.Time       `gorm:"index" json:"purchaseDate"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// NewPurchase builds a purchase from already computed items and sums the aggregates.
func NewPurchase(customerID *uuid.UUID, name, mobile string, items []PurchaseItem, method PaymentMethod, at time.Time) *Purchase {
	p := &Purchase{
		ID:             uuid.New(),
		CustomerID:     customerID,
		CustomerName:   name,
		CustomerMobile: mobile,
		PurchaseItems:  items,
		PaymentMethod:  method,
		PurchaseDate:   at,
		CreatedAt:      at,
		UpdatedAt:      at,
	}
	p.TotalRevenue, p.TotalCost, p.Profit = sumItems(items)
	return p
}

func sumItems(items []PurchaseItem) (revenue, cost, profit decimal.Decimal) {
	for _, it := range items {
		revenue = revenue.Add(it.TotalRevenue)
		cost = cost.Add(it.TotalCost)
		profit = profit.Add(it.Profit)
	}
	return revenue, cost, profit
}

// CheckTotals verifies the stored per-item and aggregate totals.
func (p *Purchase) CheckTotals() error {
	for i, it := range p.PurchaseItems {
		q := decimal.NewFromInt(int64(it.Quantity))
		if !it.TotalCost.Equal(it.CostPrice.Mul(q)) ||
			!it.TotalRevenue.Equal(it.SellingPrice.Mul(q)) ||
			!it.Profit.Equal(it.TotalRevenue.Sub(it.TotalCost)) {
			return Validation("item %d totals are inconsistent", i)
		}
	}
	rev, cost, profit := sumItems(p.PurchaseItems)
	if !p.TotalRevenue.Equal(rev) || !p.TotalCost.Equal(cost) || !p.Profit.Equal(profit) {
		return Validation("purchase totals do not match its items")
	}
	return nil
}

func (p *Purchase) ProductNames() []string {
	names := make([]string, 0, len(p.PurchaseItems))
	for _, it := range p.PurchaseItems {
		names = append(names, it.ProductName)
	}
	return names
}
