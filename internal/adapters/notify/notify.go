// Package notify tells the shop about recorded purchases.
package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/phenrril/newmobile/internal/domain"
)

// LogNotifier only writes the sale to the log. Used when no mail provider is configured.
type LogNotifier struct{}

func (LogNotifier) PurchaseRecorded(_ context.Context, p *domain.Purchase) error {
	log.Info().Str("purchase_id", p.ID.String()).Str("customer", p.CustomerName).Str("revenue", p.TotalRevenue.String()).Msg("new sale")
	return nil
}

type mailSender interface {
	Send(email *mail.SGMailV3) (int, error)
}

type sgClient struct{ c *sendgrid.Client }

func (s sgClient) Send(email *mail.SGMailV3) (int, error) {
	resp, err := s.c.Send(email)
	if err != nil {
		return 0, err
	}
	return resp.StatusCode, nil
}

// SendGridNotifier mails a sale summary to the shop owner.
type SendGridNotifier struct {
	from   *mail.Email
	to     *mail.Email
	sender mailSender
}

func NewSendGrid(apiKey, from, to string) (*SendGridNotifier, error) {
	if apiKey == "" || from == "" || to == "" {
		return nil, errors.New("sendgrid needs api key, from and to addresses")
	}
	return &SendGridNotifier{
		from:   mail.NewEmail("NewMobile", from),
		to:     mail.NewEmail("", to),
		sender: sgClient{c: sendgrid.NewSendClient(apiKey)},
	}, nil
}

func (n *SendGridNotifier) PurchaseRecorded(_ context.Context, p *domain.Purchase) error {
	subject := fmt.Sprintf("Nueva venta %s - %s", p.ID.String()[:8], p.TotalRevenue.StringFixed(2))
	msg := mail.NewSingleEmail(n.from, subject, n.to, purchaseText(p), "")
	code, err := n.sender.Send(msg)
	if err != nil {
		return errors.Wrap(err, "sendgrid send")
	}
	if code >= 300 {
		return errors.Errorf("sendgrid status %d", code)
	}
	return nil
}

func purchaseText(p *domain.Purchase) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Cliente: %s (%s)\n", p.CustomerName, p.CustomerMobile)
	fmt.Fprintf(&b, "Pago: %s\n", p.PaymentMethod)
	fmt.Fprintf(&b, "Fecha: %s\n\n", p.PurchaseDate.Format("2006-01-02 15:04"))
	for _, it := range p.PurchaseItems {
		fmt.Fprintf(&b, "%d x %s (%s) @ %s = %s\n", it.Quantity, it.ProductName, it.Brand, it.SellingPrice.StringFixed(2), it.TotalRevenue.StringFixed(2))
	}
	fmt.Fprintf(&b, "\nTotal: %s\nCosto: %s\nGanancia: %s\n", p.TotalRevenue.StringFixed(2), p.TotalCost.StringFixed(2), p.Profit.StringFixed(2))
	return b.String()
}
