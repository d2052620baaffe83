// Package httpserver exposes the purchase, user, catalog and cart operations over JSON HTTP.
package httpserver

import (
	"context"
	"net/http"

	"github.com/pkg/errors"
	"golang.org/x/oauth2"

	"github.com/phenrril/newmobile/internal/adapters/auth"
	"github.com/phenrril/newmobile/internal/usecase"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v3/userinfo"

type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

type Deps struct {
	Purchases *usecase.PurchaseUC
	Users     *usecase.UserUC
	Products  *usecase.ProductUC
	Checkout  *usecase.CheckoutUC
	Auth      *usecase.AuthUC
	Tokens    TokenVerifier
	// OAuth is nil when Google sign-in is not configured.
	OAuth        *oauth2.Config
	SessionKey   string
	AdminAllowed []string
	// Ping reports store health for /healthz. Optional.
	Ping func(ctx context.Context) error
	// UserInfoURL overrides the Google userinfo endpoint.
	UserInfoURL string
}

type Server struct {
	mux     *http.ServeMux
	deps    Deps
	cookies cookieSigner

	adminAllowed map[string]struct{}
	userInfoURL  string
}

func New(d Deps) (http.Handler, error) {
	if d.Purchases == nil || d.Users == nil || d.Products == nil || d.Checkout == nil || d.Auth == nil || d.Tokens == nil {
		return nil, errors.New("httpserver: missing dependency")
	}
	if d.SessionKey == "" {
		return nil, errors.New("httpserver: session key is required")
	}
	s := &Server{
		mux:          http.NewServeMux(),
		deps:         d,
		cookies:      cookieSigner{key: []byte(d.SessionKey)},
		adminAllowed: map[string]struct{}{},
		userInfoURL:  d.UserInfoURL,
	}
	for _, e := range d.AdminAllowed {
		s.adminAllowed[e] = struct{}{}
	}
	if s.userInfoURL == "" {
		s.userInfoURL = googleUserInfoURL
	}
	s.routes()
	return Chain(s.mux,
		RequestID,
		Recovery,
		Logging,
		SecurityHeaders,
	), nil
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /healthz", s.handleHealth)

	s.mux.HandleFunc("GET /api/products", s.apiProducts)
	s.mux.HandleFunc("GET /api/products/{id}", s.apiProductByID)

	s.mux.HandleFunc("POST /api/users", s.apiCreateUser)
	s.mux.HandleFunc("POST /api/auth/token", s.apiIssueToken)

	s.mux.HandleFunc("GET /api/cart", s.apiCart)
	s.mux.HandleFunc("POST /api/cart/items", s.apiCartSetItem)
	s.mux.HandleFunc("POST /api/cart/add", s.apiCartAddItem)
	s.mux.HandleFunc("DELETE /api/cart/items/{productId}", s.apiCartRemoveItem)
	s.mux.HandleFunc("POST /api/cart/checkout", s.apiCartCheckout)
	s.mux.HandleFunc("GET /api/favorites", s.apiFavorites)
	s.mux.HandleFunc("POST /api/favorites/{productId}/toggle", s.apiToggleFavorite)

	s.mux.Handle("POST /api/purchases", s.requireAdmin(http.HandlerFunc(s.apiRecordPurchase)))
	s.mux.Handle("GET /api/admin/purchases/recent", s.requireAdmin(http.HandlerFunc(s.apiRecentPurchases)))
	s.mux.Handle("GET /api/admin/purchases/export.xlsx", s.requireAdmin(http.HandlerFunc(s.apiExportPurchases)))
	s.mux.Handle("GET /api/admin/users", s.requireAdmin(http.HandlerFunc(s.apiUserSummary)))
	s.mux.Handle("GET /api/admin/sales", s.requireAdmin(http.HandlerFunc(s.apiSalesReport)))

	s.mux.HandleFunc("GET /auth/google/login", s.handleGoogleLogin)
	s.mux.HandleFunc("GET /auth/google/callback", s.handleGoogleCallback)
	s.mux.HandleFunc("POST /logout", s.handleLogout)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.deps.Ping != nil {
		if err := s.deps.Ping(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
