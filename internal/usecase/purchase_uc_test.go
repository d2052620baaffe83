package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/phenrril/newmobile/internal/adapters/repo/memory"
	"github.com/phenrril/newmobile/internal/domain"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func nd(s string) decimal.NullDecimal { return decimal.NewNullDecimal(d(s)) }

func validInput() RecordPurchaseInput {
	return RecordPurchaseInput{
		CustomerName:   "Lucía Gómez",
		CustomerMobile: "+54 341 555 0101",
		PaymentMethod:  "card",
		Items: []ItemInput{
			{ProductID: uuid.New(), ProductName: "Galaxy A15", Brand: "Samsung", Quantity: 2, CostPrice: nd("150.25"), SellingPrice: nd("199.99")},
			{ProductID: uuid.New(), ProductName: "Cargador 25W", Brand: "Samsung", Quantity: 1, CostPrice: nd("8"), SellingPrice: nd("19.5")},
		},
	}
}

func newPurchaseUC(now time.Time) (*PurchaseUC, *memory.PurchaseRepo) {
	repo := memory.NewPurchaseRepo()
	return &PurchaseUC{Purchases: repo, Now: func() time.Time { return now }}, repo
}

func TestRecordPurchase_ComputesTotals(t *testing.T) {
	now := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	uc, repo := newPurchaseUC(now)

	p, err := uc.RecordPurchase(context.Background(), validInput())
	require.NoError(t, err)

	require.Len(t, p.PurchaseItems, 2)
	first := p.PurchaseItems[0]
	assert.True(t, first.TotalCost.Equal(d("300.5")))
	assert.True(t, first.TotalRevenue.Equal(d("399.98")))
	assert.True(t, first.Profit.Equal(d("99.48")))
	assert.Equal(t, "Galaxy A15", first.ProductName, "items keep cart order")

	assert.True(t, p.TotalRevenue.Equal(d("419.48")))
	assert.True(t, p.TotalCost.Equal(d("308.5")))
	assert.True(t, p.Profit.Equal(d("110.98")))
	assert.Equal(t, domain.PaymentCard, p.PaymentMethod)
	assert.Equal(t, now, p.PurchaseDate)
	assert.Nil(t, p.CustomerID)
	require.NoError(t, p.CheckTotals())

	stored, err := repo.ListRecent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, p.ID, stored[0].ID)
}

func TestRecordPurchase_KeepsCustomerReference(t *testing.T) {
	uc, _ := newPurchaseUC(time.Now())
	in := validInput()
	cid := uuid.New()
	in.CustomerID = &cid
	p, err := uc.RecordPurchase(context.Background(), in)
	require.NoError(t, err)
	require.NotNil(t, p.CustomerID)
	assert.Equal(t, cid, *p.CustomerID)
}

func TestRecordPurchase_ValidationErrors(t *testing.T) {
	cases := map[string]func(in *RecordPurchaseInput){
		"no items":          func(in *RecordPurchaseInput) { in.Items = nil },
		"empty items":       func(in *RecordPurchaseInput) { in.Items = []ItemInput{} },
		"zero quantity":     func(in *RecordPurchaseInput) { in.Items[0].Quantity = 0 },
		"negative quantity": func(in *RecordPurchaseInput) { in.Items[1].Quantity = -1 },
		"negative cost":     func(in *RecordPurchaseInput) { in.Items[0].CostPrice = nd("-0.01") },
		"negative price":    func(in *RecordPurchaseInput) { in.Items[1].SellingPrice = nd("-5") },
		"missing cost":      func(in *RecordPurchaseInput) { in.Items[0].CostPrice = decimal.NullDecimal{} },
		"missing price":     func(in *RecordPurchaseInput) { in.Items[1].SellingPrice = decimal.NullDecimal{} },
		"missing name":      func(in *RecordPurchaseInput) { in.CustomerName = "   " },
		"missing mobile":    func(in *RecordPurchaseInput) { in.CustomerMobile = "" },
		"missing product":   func(in *RecordPurchaseInput) { in.Items[0].ProductID = uuid.Nil },
		"missing item name": func(in *RecordPurchaseInput) { in.Items[0].ProductName = "" },
		"bad payment":       func(in *RecordPurchaseInput) { in.PaymentMethod = "paypal" },
		"no payment":        func(in *RecordPurchaseInput) { in.PaymentMethod = "" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			repo := &mockPurchaseRepo{}
			uc := &PurchaseUC{Purchases: repo}
			in := validInput()
			mutate(&in)
			_, err := uc.RecordPurchase(context.Background(), in)
			require.Error(t, err)
			assert.Equal(t, domain.KindValidation, domain.KindOf(err), err.Error())
			repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestRecordPurchase_ZeroPricesAllowed(t *testing.T) {
	uc, _ := newPurchaseUC(time.Now())
	in := validInput()
	in.Items[0].CostPrice = decimal.NewNullDecimal(decimal.Zero)
	in.Items[0].SellingPrice = decimal.NewNullDecimal(decimal.Zero)
	_, err := uc.RecordPurchase(context.Background(), in)
	assert.NoError(t, err)
}

func TestRecordPurchase_PersistenceError(t *testing.T) {
	repo := &mockPurchaseRepo{}
	repo.On("Create", mock.Anything, mock.Anything).Return(errors.New("connection refused"))
	uc := &PurchaseUC{Purchases: repo}

	_, err := uc.RecordPurchase(context.Background(), validInput())
	require.Error(t, err)
	assert.Equal(t, domain.KindPersistence, domain.KindOf(err))
	repo.AssertNumberOfCalls(t, "Create", 1)
}

func TestRecordPurchase_NotifiesAsync(t *testing.T) {
	got := make(chan uuid.UUID, 1)
	uc, _ := newPurchaseUC(time.Now())
	uc.Notifier = notifierFunc(func(_ context.Context, p *domain.Purchase) error {
		got <- p.ID
		return errors.New("mail down")
	})
	p, err := uc.RecordPurchase(context.Background(), validInput())
	require.NoError(t, err, "notification failures never reach the caller")
	select {
	case id := <-got:
		assert.Equal(t, p.ID, id)
	case <-time.After(2 * time.Second):
		t.Fatal("notifier not called")
	}
}

func seedPurchases(t *testing.T, uc *PurchaseUC, base time.Time, n int) []*domain.Purchase {
	t.Helper()
	var out []*domain.Purchase
	for i := 0; i < n; i++ {
		at := base.Add(time.Duration(i) * time.Hour)
		uc.Now = func() time.Time { return at }
		in := validInput()
		in.CustomerName = "customer " + string(rune('A'+i))
		p, err := uc.RecordPurchase(context.Background(), in)
		require.NoError(t, err)
		out = append(out, p)
	}
	return out
}

func TestListRecentPurchases_LimitAndOrder(t *testing.T) {
	base := time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)
	uc, _ := newPurchaseUC(base)
	seeded := seedPurchases(t, uc, base, 7)

	got, err := uc.ListRecentPurchases(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, got, 5)
	for i := range got {
		assert.Equal(t, seeded[6-i].ID, got[i].ID, "row %d", i)
		assert.Equal(t, seeded[6-i].CustomerName, got[i].Customer)
		assert.True(t, got[i].Amount.Equal(seeded[6-i].TotalRevenue))
		assert.Equal(t, []string{"Galaxy A15", "Cargador 25W"}, got[i].Products)
		assert.Contains(t, []DisplayStatus{StatusCompleted, StatusShipped, StatusPending}, got[i].Status)
	}
	assert.Equal(t, "2 minutes ago", got[0].Date)
	assert.Equal(t, "5 hours ago", got[4].Date)

	all, err := uc.ListRecentPurchases(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, all, DefaultRecentLimit)
}

func TestListRecentPurchases_StatusDrawnPerRead(t *testing.T) {
	base := time.Now()
	uc, _ := newPurchaseUC(base)
	seedPurchases(t, uc, base, 3)

	var calls []int
	uc.Pick = func(n int) int {
		assert.Equal(t, 3, n)
		calls = append(calls, n)
		return len(calls) % n
	}
	got, err := uc.ListRecentPurchases(context.Background(), 5)
	require.NoError(t, err)
	assert.Len(t, calls, 3)
	assert.Equal(t, StatusShipped, got[0].Status)
	assert.Equal(t, StatusPending, got[1].Status)
	assert.Equal(t, StatusCompleted, got[2].Status)

	_, err = uc.ListRecentPurchases(context.Background(), 5)
	require.NoError(t, err)
	assert.Len(t, calls, 6, "status is recomputed on every read")
}

func TestRankLabel(t *testing.T) {
	assert.Equal(t, "2 minutes ago", RankLabel(0))
	assert.Equal(t, "15 minutes ago", RankLabel(1))
	assert.Equal(t, "Recently", RankLabel(5))
	assert.Equal(t, "Recently", RankLabel(40))
}

func TestListRecentPurchases_PersistenceError(t *testing.T) {
	repo := &mockPurchaseRepo{}
	repo.On("ListRecent", mock.Anything, 5).Return(nil, errors.New("timeout"))
	uc := &PurchaseUC{Purchases: repo}
	got, err := uc.ListRecentPurchases(context.Background(), 5)
	assert.Nil(t, got)
	assert.Equal(t, domain.KindPersistence, domain.KindOf(err))
}

func TestSalesReport(t *testing.T) {
	base := time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)
	uc, _ := newPurchaseUC(base)
	seedPurchases(t, uc, base, 3)

	uc.Now = func() time.Time { return base.AddDate(0, 0, 1) }
	in := validInput()
	in.PaymentMethod = "cash"
	in.Items = in.Items[1:]
	_, err := uc.RecordPurchase(context.Background(), in)
	require.NoError(t, err)

	rep, err := uc.SalesReport(context.Background(), base.AddDate(0, 0, 2), base.Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 4, rep.Purchases)
	assert.True(t, rep.TotalRevenue.Equal(d("1277.94")), rep.TotalRevenue.String())
	assert.True(t, rep.Profit.Equal(rep.TotalRevenue.Sub(rep.TotalCost)))
	assert.Equal(t, 3, rep.ByPaymentMethod[domain.PaymentCard])
	assert.Equal(t, 1, rep.ByPaymentMethod[domain.PaymentCash])
	assert.True(t, rep.AvgOrderValue.Equal(d("319.49")), rep.AvgOrderValue.String())
	require.Len(t, rep.Daily, 2)
	assert.Equal(t, "2026-09-01", rep.Daily[0].Day)
	assert.Equal(t, 3, rep.Daily[0].Purchases)
	require.NotEmpty(t, rep.TopProducts)
}
