package usecase

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/phenrril/newmobile/internal/cart"
	"github.com/phenrril/newmobile/internal/domain"
)

type CheckoutInput struct {
	CustomerName   string `json:"customerName"`
	CustomerMobile string `json:"customerMobile"`
	PaymentMethod  string `json:"paymentMethod"`
	// CustomerEmail comes from the signed-in session, never from the request body.
	CustomerEmail string `json:"-"`
}

// CheckoutUC turns staged cart lines into a recorded purchase, copying name,
// brand and prices from the catalog as they are right now.
type CheckoutUC struct {
	Products  domain.ProductRepo
	Users     domain.UserRepo
	Purchases *PurchaseUC
}

func (uc *CheckoutUC) Checkout(ctx context.Context, lines []cart.Line, in CheckoutInput) (*domain.Purchase, error) {
	if len(lines) == 0 {
		return nil, domain.Validation("cart is empty")
	}
	items := make([]ItemInput, 0, len(lines))
	for _, l := range lines {
		p, err := uc.Products.FindByID(ctx, l.ProductID)
		if err != nil {
			if domain.IsKind(err, domain.KindNotFound) {
				return nil, domain.NotFound("product %s is no longer in the catalog", l.ProductID)
			}
			return nil, domain.AsPersistence(err, "load product")
		}
		if !p.Active {
			return nil, domain.NotFound("product %s is no longer for sale", p.ID)
		}
		items = append(items, ItemInput{
			ProductID:    p.ID,
			ProductName:  p.Name,
			Brand:        p.Brand,
			Quantity:     l.Quantity,
			CostPrice:    decimal.NewNullDecimal(p.CostPrice),
			SellingPrice: decimal.NewNullDecimal(p.Price),
		})
	}

	var customerID *uuid.UUID
	if in.CustomerEmail != "" && uc.Users != nil {
		u, err := uc.Users.FindByEmail(ctx, in.CustomerEmail)
		switch {
		case err == nil:
			customerID = &u.ID
		case domain.IsKind(err, domain.KindNotFound):
			log.Debug().Str("email", in.CustomerEmail).Msg("checkout as guest, no user for session email")
		default:
			return nil, domain.AsPersistence(err, "find customer")
		}
	}

	return uc.Purchases.RecordPurchase(ctx, RecordPurchaseInput{
		CustomerID:     customerID,
		CustomerName:   in.CustomerName,
		CustomerMobile: in.CustomerMobile,
		Items:          items,
		PaymentMethod:  in.PaymentMethod,
	})
}
