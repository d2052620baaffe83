package mongo

import (
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/phenrril/newmobile/internal/domain"
)

// Documents mirror the domain types with camelCase fields, string ids and
// Decimal128 money so amounts survive the round trip exactly.

type purchaseItemDoc struct {
	ProductID    string               `bson:"productId"`
	ProductName  string               `bson:"productName"`
	Brand        string               `bson:"brand"`
	Quantity     int                  `bson:"quantity"`
	CostPrice    primitive.Decimal128 `bson:"costPrice"`
	SellingPrice primitive.Decimal128 `bson:"sellingPrice"`
	TotalCost    primitive.Decimal128 `bson:"totalCost"`
	TotalRevenue primitive.Decimal128 `bson:"totalRevenue"`
	Profit       primitive.Decimal128 `bson:"profit"`
}

type purchaseDoc struct {
	ID             string               `bson:"_id"`
	CustomerID     *string              `bson:"customerId,omitempty"`
	CustomerName   string               `bson:"customerName"`
	CustomerMobile string               `bson:"customerMobile"`
	PurchaseItems  []purchaseItemDoc    `bson:"purchaseItems"`
	TotalRevenue   primitive.Decimal128 `bson:"totalRevenue"`
	TotalCost      primitive.Decimal128 `bson:"totalCost"`
	Profit         primitive.Decimal128 `bson:"profit"`
	PaymentMethod  string               `bson:"paymentMethod"`
	PurchaseDate   time.Time            `bson:"purchaseDate"`
	CreatedAt      time.Time            `bson:"createdAt"`
	UpdatedAt      time.Time            `bson:"updatedAt"`
}

type userDoc struct {
	ID            string    `bson:"_id"`
	Name          string    `bson:"name"`
	Email         string    `bson:"email"`
	Mobile        string    `bson:"mobile"`
	Address       string    `bson:"address,omitempty"`
	OAuthProvider string    `bson:"oauthProvider"`
	OAuthID       *string   `bson:"oauthId,omitempty"`
	CreatedAt     time.Time `bson:"createdAt"`
	UpdatedAt     time.Time `bson:"updatedAt"`
}

type productDoc struct {
	ID             string               `bson:"_id"`
	Slug           string               `bson:"slug"`
	Name           string               `bson:"name"`
	Brand          string               `bson:"brand"`
	Model          string               `bson:"model"`
	Category       string               `bson:"category"`
	Price          primitive.Decimal128 `bson:"price"`
	CostPrice      primitive.Decimal128 `bson:"costPrice"`
	Stock          int                  `bson:"stock"`
	Active         bool                 `bson:"active"`
	Specifications map[string]string    `bson:"specifications,omitempty"`
	CreatedAt      time.Time            `bson:"createdAt"`
	UpdatedAt      time.Time            `bson:"updatedAt"`
}

func toDec128(d decimal.Decimal) (primitive.Decimal128, error) {
	v, err := primitive.ParseDecimal128(d.String())
	if err != nil {
		return primitive.Decimal128{}, errors.Wrapf(err, "decimal %s", d)
	}
	return v, nil
}

func fromDec128(v primitive.Decimal128) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(v.String())
	if err != nil {
		return decimal.Zero, errors.Wrapf(err, "decimal128 %s", v)
	}
	return d, nil
}

// decs converts several amounts at once, stopping at the first failure.
func decs(ds ...decimal.Decimal) ([]primitive.Decimal128, error) {
	out := make([]primitive.Decimal128, len(ds))
	for i, d := range ds {
		v, err := toDec128(d)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func undecs(vs ...primitive.Decimal128) ([]decimal.Decimal, error) {
	out := make([]decimal.Decimal, len(vs))
	for i, v := range vs {
		d, err := fromDec128(v)
		if err != nil {
			return nil, err
		}
		out[i] = d
	}
	return out, nil
}

func parseID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, errors.Wrapf(err, "id %q", s)
	}
	return id, nil
}

func toPurchaseDoc(p *domain.Purchase) (*purchaseDoc, error) {
	totals, err := decs(p.TotalRevenue, p.TotalCost, p.Profit)
	if err != nil {
		return nil, err
	}
	doc := &purchaseDoc{
		ID:             p.ID.String(),
		CustomerName:   p.CustomerName,
		CustomerMobile: p.CustomerMobile,
		TotalRevenue:   totals[0],
		TotalCost:      totals[1],
		Profit:         totals[2],
		PaymentMethod:  string(p.PaymentMethod),
		PurchaseDate:   p.PurchaseDate,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
	if p.CustomerID != nil {
		cid := p.CustomerID.String()
		doc.CustomerID = &cid
	}
	doc.PurchaseItems = make([]purchaseItemDoc, 0, len(p.PurchaseItems))
	for _, it := range p.PurchaseItems {
		m, err := decs(it.CostPrice, it.SellingPrice, it.TotalCost, it.TotalRevenue, it.Profit)
		if err != nil {
			return nil, err
		}
		doc.PurchaseItems = append(doc.PurchaseItems, purchaseItemDoc{
			ProductID:    it.ProductID.String(),
			ProductName:  it.ProductName,
			Brand:        it.Brand,
			Quantity:     it.Quantity,
			CostPrice:    m[0],
			SellingPrice: m[1],
			TotalCost:    m[2],
			TotalRevenue: m[3],
			Profit:       m[4],
		})
	}
	return doc, nil
}

func (d *purchaseDoc) toDomain() (domain.Purchase, error) {
	id, err := parseID(d.ID)
	if err != nil {
		return domain.Purchase{}, err
	}
	totals, err := undecs(d.TotalRevenue, d.TotalCost, d.Profit)
	if err != nil {
		return domain.Purchase{}, err
	}
	p := domain.Purchase{
		ID:             id,
		CustomerName:   d.CustomerName,
		CustomerMobile: d.CustomerMobile,
		TotalRevenue:   totals[0],
		TotalCost:      totals[1],
		Profit:         totals[2],
		PaymentMethod:  domain.PaymentMethod(d.PaymentMethod),
		PurchaseDate:   d.PurchaseDate,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
		PurchaseItems:  make([]domain.PurchaseItem, 0, len(d.PurchaseItems)),
	}
	// a customer id that no longer parses is dropped; the snapshot stays readable
	if d.CustomerID != nil {
		if cid, err := uuid.Parse(*d.CustomerID); err == nil {
			p.CustomerID = &cid
		}
	}
	for _, it := range d.PurchaseItems {
		m, err := undecs(it.CostPrice, it.SellingPrice, it.TotalCost, it.TotalRevenue, it.Profit)
		if err != nil {
			return domain.Purchase{}, err
		}
		// same tolerance for the product id: the line keeps its name and prices
		pid, err := uuid.Parse(it.ProductID)
		if err != nil {
			log.Warn().Str("purchase_id", d.ID).Str("product_id", it.ProductID).Msg("unparsable product id in purchase item")
		}
		p.PurchaseItems = append(p.PurchaseItems, domain.PurchaseItem{
			ProductID:    pid,
			ProductName:  it.ProductName,
			Brand:        it.Brand,
			Quantity:     it.Quantity,
			CostPrice:    m[0],
			SellingPrice: m[1],
			TotalCost:    m[2],
			TotalRevenue: m[3],
			Profit:       m[4],
		})
	}
	return p, nil
}

func toUserDoc(u *domain.User) *userDoc {
	return &userDoc{
		ID:            u.ID.String(),
		Name:          u.Name,
		Email:         u.Email,
		Mobile:        u.Mobile,
		Address:       u.Address,
		OAuthProvider: string(u.OAuthProvider),
		OAuthID:       u.OAuthID,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}

func (d *userDoc) toDomain() (domain.User, error) {
	id, err := parseID(d.ID)
	if err != nil {
		return domain.User{}, err
	}
	return domain.User{
		ID:            id,
		Name:          d.Name,
		Email:         d.Email,
		Mobile:        d.Mobile,
		Address:       d.Address,
		OAuthProvider: domain.OAuthProvider(d.OAuthProvider),
		OAuthID:       d.OAuthID,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}, nil
}

func toProductDoc(p *domain.Product) (*productDoc, error) {
	m, err := decs(p.Price, p.CostPrice)
	if err != nil {
		return nil, err
	}
	return &productDoc{
		ID:             p.ID.String(),
		Slug:           p.Slug,
		Name:           p.Name,
		Brand:          p.Brand,
		Model:          p.Model,
		Category:       p.Category,
		Price:          m[0],
		CostPrice:      m[1],
		Stock:          p.Stock,
		Active:         p.Active,
		Specifications: p.Specifications,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}, nil
}

func (d *productDoc) toDomain() (domain.Product, error) {
	id, err := parseID(d.ID)
	if err != nil {
		return domain.Product{}, err
	}
	m, err := undecs(d.Price, d.CostPrice)
	if err != nil {
		return domain.Product{}, err
	}
	return domain.Product{
		ID:             id,
		Slug:           d.Slug,
		Name:           d.Name,
		Brand:          d.Brand,
		Model:          d.Model,
		Category:       d.Category,
		Price:          m[0],
		CostPrice:      m[1],
		Stock:          d.Stock,
		Active:         d.Active,
		Specifications: d.Specifications,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}, nil
}
