package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phenrril/newmobile/internal/adapters/auth"
	"github.com/phenrril/newmobile/internal/adapters/repo/memory"
	"github.com/phenrril/newmobile/internal/cart"
	"github.com/phenrril/newmobile/internal/domain"
	"github.com/phenrril/newmobile/internal/usecase"
)

type testEnv struct {
	h       http.Handler
	product domain.Product
	cookies map[string]*http.Cookie
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	product := domain.Product{
		ID:        uuid.New(),
		Slug:      "moto-g84",
		Name:      "Moto G84",
		Brand:     "Motorola",
		Price:     decimal.NewFromInt(1000),
		CostPrice: decimal.NewFromInt(800),
		Stock:     5,
		Active:    true,
	}
	products := memory.NewProductRepo(product)
	users := memory.NewUserRepo()
	purchaseUC := &usecase.PurchaseUC{Purchases: memory.NewPurchaseRepo(), Pick: func(int) int { return 0 }}
	userUC := &usecase.UserUC{Users: users}
	issuer, err := auth.NewJWTIssuer("test-secret")
	require.NoError(t, err)

	h, err := New(Deps{
		Purchases:  purchaseUC,
		Users:      userUC,
		Products:   &usecase.ProductUC{Products: products},
		Checkout:   &usecase.CheckoutUC{Products: products, Users: users, Purchases: purchaseUC},
		Auth:       &usecase.AuthUC{Tokens: issuer, AdminEmail: "owner@shop.com", AdminPass: "secret"},
		Tokens:     issuer,
		SessionKey: "test-session-key",
	})
	require.NoError(t, err)
	return &testEnv{h: h, product: product, cookies: map[string]*http.Cookie{}}
}

// do sends a request carrying every cookie the env has seen so far.
func (e *testEnv) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for _, c := range e.cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	e.h.ServeHTTP(rec, req)
	for _, c := range rec.Result().Cookies() {
		if c.MaxAge < 0 {
			delete(e.cookies, c.Name)
			continue
		}
		e.cookies[c.Name] = c
	}
	return rec
}

func (e *testEnv) adminToken(t *testing.T) string {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/api/auth/token", map[string]string{"email": "owner@shop.com", "password": "secret"}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var tok usecase.Token
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tok))
	require.NotEmpty(t, tok.Token)
	delete(e.cookies, adminCookie)
	return tok.Token
}

func decodeErr(t *testing.T, rec *httptest.ResponseRecorder) errorDetail {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error
}

func purchaseBody(e *testEnv, qty int) map[string]any {
	return map[string]any{
		"customerName":   "Ana",
		"customerMobile": "555-0101",
		"paymentMethod":  "card",
		"items": []map[string]any{{
			"productId":    e.product.ID,
			"productName":  e.product.Name,
			"brand":        e.product.Brand,
			"quantity":     qty,
			"costPrice":    "800",
			"sellingPrice": "1000",
		}},
	}
}

func TestHealthz(t *testing.T) {
	e := newTestEnv(t)
	rec := e.do(t, http.MethodGet, "/healthz", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))
}

func TestAdminRoutesRequireToken(t *testing.T) {
	e := newTestEnv(t)
	for _, path := range []string{"/api/admin/purchases/recent", "/api/admin/users", "/api/admin/sales"} {
		rec := e.do(t, http.MethodGet, path, nil, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
		assert.Equal(t, string(domain.KindUnauthorized), decodeErr(t, rec).Kind)
	}
	rec := e.do(t, http.MethodGet, "/api/admin/users", nil, "not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestIssueToken_EmailPasswordPair(t *testing.T) {
	e := newTestEnv(t)
	rec := e.do(t, http.MethodPost, "/api/auth/token", map[string]string{"email": "Owner@Shop.com", "password": "secret"}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var tok usecase.Token
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tok))
	assert.Equal(t, "owner@shop.com", tok.Email)
	assert.Equal(t, usecase.RoleAdmin, tok.Role)

	rec = e.do(t, http.MethodPost, "/api/auth/token", map[string]string{"email": "other@shop.com", "password": "secret"}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = e.do(t, http.MethodPost, "/api/auth/token", map[string]string{"password": "secret"}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestIssueToken_WrongPassword(t *testing.T) {
	e := newTestEnv(t)
	rec := e.do(t, http.MethodPost, "/api/auth/token", map[string]string{"email": "owner@shop.com", "password": "nope"}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRecordPurchaseAndListRecent(t *testing.T) {
	e := newTestEnv(t)
	tok := e.adminToken(t)

	rec := e.do(t, http.MethodPost, "/api/purchases", purchaseBody(e, 2), tok)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var p domain.Purchase
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	assert.True(t, p.TotalRevenue.Equal(decimal.NewFromInt(2000)))
	assert.True(t, p.Profit.Equal(decimal.NewFromInt(400)))

	rec = e.do(t, http.MethodGet, "/api/admin/purchases/recent?limit=3", nil, tok)
	require.Equal(t, http.StatusOK, rec.Code)
	var rows []usecase.PurchaseSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "Ana", rows[0].Customer)
	assert.Equal(t, "2 minutes ago", rows[0].Date)
	assert.Equal(t, usecase.StatusCompleted, rows[0].Status)
	assert.Equal(t, []string{"Moto G84"}, rows[0].Products)
}

func TestRecordPurchase_Validation(t *testing.T) {
	e := newTestEnv(t)
	tok := e.adminToken(t)

	body := purchaseBody(e, 0)
	rec := e.do(t, http.MethodPost, "/api/purchases", body, tok)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, string(domain.KindValidation), decodeErr(t, rec).Kind)

	body = purchaseBody(e, 1)
	body["items"] = []map[string]any{}
	rec = e.do(t, http.MethodPost, "/api/purchases", body, tok)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	body = purchaseBody(e, 1)
	item := body["items"].([]map[string]any)[0]
	delete(item, "costPrice")
	delete(item, "sellingPrice")
	rec = e.do(t, http.MethodPost, "/api/purchases", body, tok)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "prices omitted")
	assert.Equal(t, string(domain.KindValidation), decodeErr(t, rec).Kind)

	rec = e.do(t, http.MethodGet, "/api/admin/purchases/recent", nil, tok)
	assert.JSONEq(t, "[]", rec.Body.String())

	rec = e.do(t, http.MethodGet, "/api/admin/purchases/recent?limit=abc", nil, tok)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateUserAndSummary(t *testing.T) {
	e := newTestEnv(t)
	tok := e.adminToken(t)

	rec := e.do(t, http.MethodPost, "/api/users", map[string]string{
		"name": "Ana", "email": "ana@example.com", "mobile": "555", "oauthProvider": "google", "oauthId": "sub-1",
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = e.do(t, http.MethodPost, "/api/users", map[string]string{
		"name": "Ana 2", "email": "ANA@example.com", "mobile": "556", "oauthProvider": "local",
	}, "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, string(domain.KindDuplicateKey), decodeErr(t, rec).Kind)

	rec = e.do(t, http.MethodGet, "/api/admin/users", nil, tok)
	require.Equal(t, http.StatusOK, rec.Code)
	var sum usecase.UserSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sum))
	assert.Equal(t, 1, sum.Metrics.TotalUsers)
	assert.Equal(t, 1, sum.Metrics.OAuthUsers)
	assert.Equal(t, 1, sum.Metrics.NewUsersThisWeek)
	require.Len(t, sum.Users, 1)
	assert.Equal(t, "red", sum.Users[0].Badge.Color)
}

func TestCartCheckoutFlow(t *testing.T) {
	e := newTestEnv(t)

	rec := e.do(t, http.MethodPost, "/api/cart/checkout", map[string]string{
		"customerName": "Ana", "customerMobile": "555", "paymentMethod": "cash",
	}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code, "empty cart")

	rec = e.do(t, http.MethodPost, "/api/cart/items", map[string]any{"productId": e.product.ID, "quantity": 2}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = e.do(t, http.MethodPost, "/api/cart/items", map[string]any{"productId": uuid.New(), "quantity": 1}, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = e.do(t, http.MethodGet, "/api/cart", nil, "")
	var view cartView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, 2, view.Count)

	rec = e.do(t, http.MethodPost, "/api/cart/checkout", map[string]string{
		"customerName": "Ana", "customerMobile": "555", "paymentMethod": "upi",
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var p domain.Purchase
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	assert.Nil(t, p.CustomerID)
	assert.True(t, p.TotalRevenue.Equal(decimal.NewFromInt(2000)))
	assert.True(t, p.TotalCost.Equal(decimal.NewFromInt(1600)))
	require.Len(t, p.PurchaseItems, 1)
	assert.Equal(t, "Motorola", p.PurchaseItems[0].Brand)

	rec = e.do(t, http.MethodGet, "/api/cart", nil, "")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Zero(t, view.Count)
}

func TestCheckoutLinksSignedInUser(t *testing.T) {
	e := newTestEnv(t)
	rec := e.do(t, http.MethodPost, "/api/users", map[string]string{
		"name": "Ana", "email": "ana@example.com", "mobile": "555", "oauthProvider": "local",
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code)
	var u domain.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &u))
	require.Contains(t, e.cookies, sessionCookie)

	e.do(t, http.MethodPost, "/api/cart/items", map[string]any{"productId": e.product.ID, "quantity": 1}, "")
	rec = e.do(t, http.MethodPost, "/api/cart/checkout", map[string]string{
		"customerName": "Ana", "customerMobile": "555", "paymentMethod": "card",
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var p domain.Purchase
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	require.NotNil(t, p.CustomerID)
	assert.Equal(t, u.ID, *p.CustomerID)
}

func TestFavoritesToggle(t *testing.T) {
	e := newTestEnv(t)
	path := "/api/favorites/" + e.product.ID.String() + "/toggle"

	rec := e.do(t, http.MethodPost, path, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"favorite":true`)

	rec = e.do(t, http.MethodGet, "/api/favorites", nil, "")
	var favs []domain.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &favs))
	require.Len(t, favs, 1)
	assert.Equal(t, e.product.ID, favs[0].ID)

	rec = e.do(t, http.MethodPost, path, nil, "")
	assert.Contains(t, rec.Body.String(), `"favorite":false`)

	rec = e.do(t, http.MethodPost, "/api/favorites/not-an-id/toggle", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFavoritesCap(t *testing.T) {
	e := newTestEnv(t)
	for i := 0; i < cart.MaxFavorites; i++ {
		rec := e.do(t, http.MethodPost, "/api/favorites/"+uuid.NewString()+"/toggle", nil, "")
		require.Equal(t, http.StatusOK, rec.Code)
	}
	rec := e.do(t, http.MethodPost, "/api/favorites/"+e.product.ID.String()+"/toggle", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, string(domain.KindValidation), decodeErr(t, rec).Kind)
}

func TestCartAddIncrements(t *testing.T) {
	e := newTestEnv(t)
	add := map[string]any{"productId": e.product.ID, "quantity": 1}

	rec := e.do(t, http.MethodPost, "/api/cart/add", add, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = e.do(t, http.MethodPost, "/api/cart/add", add, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var view cartView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, 2, view.Count)
	assert.Equal(t, []cart.Line{{ProductID: e.product.ID, Quantity: 2}}, view.Lines)

	rec = e.do(t, http.MethodPost, "/api/cart/add", map[string]any{"productId": uuid.New(), "quantity": 1}, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = e.do(t, http.MethodPost, "/api/cart/add", map[string]any{"productId": e.product.ID, "quantity": 0}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTamperedCartCookieIsIgnored(t *testing.T) {
	e := newTestEnv(t)
	e.do(t, http.MethodPost, "/api/cart/items", map[string]any{"productId": e.product.ID, "quantity": 3}, "")
	c := e.cookies[cartCookie]
	require.NotNil(t, c)
	c.Value = "x" + c.Value

	rec := e.do(t, http.MethodGet, "/api/cart", nil, "")
	var view cartView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Zero(t, view.Count)
}

func TestSalesReportAndExport(t *testing.T) {
	e := newTestEnv(t)
	tok := e.adminToken(t)
	rec := e.do(t, http.MethodPost, "/api/purchases", purchaseBody(e, 1), tok)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = e.do(t, http.MethodGet, "/api/admin/sales", nil, tok)
	require.Equal(t, http.StatusOK, rec.Code)
	var rep usecase.SalesReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rep))
	assert.Equal(t, 1, rep.Purchases)
	assert.True(t, rep.Profit.Equal(decimal.NewFromInt(200)))

	rec = e.do(t, http.MethodGet, "/api/admin/sales?from=2024-13-01", nil, tok)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = e.do(t, http.MethodGet, "/api/admin/purchases/export.xlsx", nil, tok)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, xlsxContentType, rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")))
}

func TestReportRange(t *testing.T) {
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	req := httptest.NewRequest(http.MethodGet, "/x?from=2026-10-01&to=2026-10-02", nil)
	from, to, err := reportRange(req, now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2026, 10, 2, 23, 59, 59, 999999999, time.UTC), to)

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	from, to, err = reportRange(req, now)
	require.NoError(t, err)
	assert.Equal(t, now, to)
	assert.Equal(t, now.Add(-30*24*time.Hour), from)

	req = httptest.NewRequest(http.MethodGet, "/x?from=2026-10-05&to=2026-10-01", nil)
	_, _, err = reportRange(req, now)
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
}

func TestHealthzReportsStoreFailure(t *testing.T) {
	issuer, err := auth.NewJWTIssuer("k")
	require.NoError(t, err)
	purchases := &usecase.PurchaseUC{Purchases: memory.NewPurchaseRepo()}
	h, err := New(Deps{
		Purchases: purchases, Users: &usecase.UserUC{Users: memory.NewUserRepo()},
		Products: &usecase.ProductUC{Products: memory.NewProductRepo()},
		Checkout: &usecase.CheckoutUC{Purchases: purchases, Products: memory.NewProductRepo()},
		Auth:     &usecase.AuthUC{Tokens: issuer}, Tokens: issuer, SessionKey: "k",
		Ping: func(context.Context) error { return assert.AnError },
	})
	require.NoError(t, err)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
