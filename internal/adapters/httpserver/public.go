package httpserver

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/phenrril/newmobile/internal/cart"
	"github.com/phenrril/newmobile/internal/domain"
	"github.com/phenrril/newmobile/internal/usecase"
)

func pathID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		return uuid.Nil, domain.Validation("%s is not a valid id", name)
	}
	return id, nil
}

func atoiDefault(s string, def int) int {
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}

func (s *Server) apiProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := domain.ProductFilter{
		Brand:    strings.TrimSpace(q.Get("brand")),
		Query:    strings.TrimSpace(q.Get("q")),
		Sort:     q.Get("sort"),
		Page:     atoiDefault(q.Get("page"), 1),
		PageSize: atoiDefault(q.Get("pageSize"), 20),
	}
	list, total, err := s.deps.Products.List(r.Context(), f)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": list, "total": total, "page": f.Page})
}

func (s *Server) apiProductByID(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	p, err := s.deps.Products.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) apiCreateUser(w http.ResponseWriter, r *http.Request) {
	var in usecase.CreateUserInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	u, err := s.deps.Users.CreateUser(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.writeUserSession(w, r, &sessionUser{Email: u.Email, Name: u.Name})
	writeJSON(w, http.StatusCreated, u)
}

func (s *Server) apiIssueToken(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	tok, err := s.deps.Auth.IssueToken(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     adminCookie,
		Value:    tok.Token,
		Path:     "/",
		Expires:  tok.ExpiresAt,
		HttpOnly: true,
		Secure:   isSecure(r),
		SameSite: http.SameSiteStrictMode,
	})
	writeJSON(w, http.StatusOK, tok)
}

type cartView struct {
	Lines     []cart.Line `json:"lines"`
	Favorites []uuid.UUID `json:"favorites"`
	Count     int         `json:"count"`
}

func viewOf(st *cart.State) cartView {
	v := cartView{Lines: st.Lines, Favorites: st.Favorites, Count: st.Count()}
	if v.Lines == nil {
		v.Lines = []cart.Line{}
	}
	if v.Favorites == nil {
		v.Favorites = []uuid.UUID{}
	}
	return v
}

func (s *Server) apiCart(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, viewOf(s.readCart(r)))
}

func (s *Server) apiCartSetItem(w http.ResponseWriter, r *http.Request) {
	var req cart.Line
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.Quantity > 0 {
		if _, err := s.deps.Products.Get(r.Context(), req.ProductID); err != nil {
			writeError(w, r, err)
			return
		}
	}
	st := s.readCart(r)
	if err := st.SetQuantity(req.ProductID, req.Quantity); err != nil {
		writeError(w, r, err)
		return
	}
	s.writeCart(w, r, st)
	writeJSON(w, http.StatusOK, viewOf(st))
}

// apiCartAddItem increments a line, the "add to cart" button.
func (s *Server) apiCartAddItem(w http.ResponseWriter, r *http.Request) {
	var req cart.Line
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if _, err := s.deps.Products.Get(r.Context(), req.ProductID); err != nil {
		writeError(w, r, err)
		return
	}
	st := s.readCart(r)
	if err := st.Add(req.ProductID, req.Quantity); err != nil {
		writeError(w, r, err)
		return
	}
	s.writeCart(w, r, st)
	writeJSON(w, http.StatusOK, viewOf(st))
}

func (s *Server) apiCartRemoveItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "productId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	st := s.readCart(r)
	st.Remove(id)
	s.writeCart(w, r, st)
	writeJSON(w, http.StatusOK, viewOf(st))
}

func (s *Server) apiCartCheckout(w http.ResponseWriter, r *http.Request) {
	var in usecase.CheckoutInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	st := s.readCart(r)
	lines, err := st.Stage()
	if err != nil {
		writeError(w, r, err)
		return
	}
	if u := s.readUserSession(r); u != nil {
		in.CustomerEmail = u.Email
	}
	p, err := s.deps.Checkout.Checkout(r.Context(), lines, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	st.Clear()
	s.writeCart(w, r, st)
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) apiToggleFavorite(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "productId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	st := s.readCart(r)
	fav, err := st.ToggleFavorite(id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.writeCart(w, r, st)
	writeJSON(w, http.StatusOK, map[string]any{"productId": id, "favorite": fav})
}

// apiFavorites resolves favorites against the catalog, skipping products that are gone.
func (s *Server) apiFavorites(w http.ResponseWriter, r *http.Request) {
	st := s.readCart(r)
	out := make([]domain.Product, 0, len(st.Favorites))
	for _, id := range st.Favorites {
		p, err := s.deps.Products.Get(r.Context(), id)
		if err != nil {
			if domain.IsKind(err, domain.KindNotFound) {
				continue
			}
			writeError(w, r, err)
			return
		}
		out = append(out, *p)
	}
	writeJSON(w, http.StatusOK, out)
}
