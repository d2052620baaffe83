package httpserver

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/phenrril/newmobile/internal/cart"
)

const (
	cartCookie    = "cart"
	sessionCookie = "sess"
	adminCookie   = "admin_token"
	stateCookie   = "oauth_state"
	cookieMaxAge  = 60 * 60 * 24 * 7
)

// cookieSigner stores JSON values in cookies as base64(sig).base64(payload).
type cookieSigner struct{ key []byte }

func (c cookieSigner) sign(payload []byte) string {
	h := hmac.New(sha256.New, c.key)
	h.Write(payload)
	return base64.RawURLEncoding.EncodeToString(h.Sum(nil)) + "." + base64.RawURLEncoding.EncodeToString(payload)
}

func (c cookieSigner) verify(value string) ([]byte, bool) {
	parts := strings.SplitN(value, ".", 2)
	if len(parts) != 2 {
		return nil, false
	}
	sig, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return nil, false
	}
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, false
	}
	h := hmac.New(sha256.New, c.key)
	h.Write(payload)
	if !hmac.Equal(sig, h.Sum(nil)) {
		return nil, false
	}
	return payload, true
}

// read decodes a signed cookie into v. Missing or tampered cookies report false.
func (c cookieSigner) read(r *http.Request, name string, v any) bool {
	ck, err := r.Cookie(name)
	if err != nil || ck.Value == "" {
		return false
	}
	payload, ok := c.verify(ck.Value)
	if !ok {
		return false
	}
	return json.Unmarshal(payload, v) == nil
}

func (c cookieSigner) write(w http.ResponseWriter, r *http.Request, name string, v any) {
	b, _ := json.Marshal(v)
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    c.sign(b),
		Path:     "/",
		MaxAge:   cookieMaxAge,
		HttpOnly: true,
		Secure:   isSecure(r),
		SameSite: http.SameSiteLaxMode,
	})
}

func clearCookie(w http.ResponseWriter, r *http.Request, name string) {
	http.SetCookie(w, &http.Cookie{Name: name, Value: "", Path: "/", MaxAge: -1, HttpOnly: true, Secure: isSecure(r)})
}

func isSecure(r *http.Request) bool {
	return r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}

func (s *Server) readCart(r *http.Request) *cart.State {
	st := &cart.State{}
	if !s.cookies.read(r, cartCookie, st) {
		return &cart.State{}
	}
	return st
}

func (s *Server) writeCart(w http.ResponseWriter, r *http.Request, st *cart.State) {
	s.cookies.write(w, r, cartCookie, st)
}

type sessionUser struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

func (s *Server) readUserSession(r *http.Request) *sessionUser {
	var u sessionUser
	if !s.cookies.read(r, sessionCookie, &u) || u.Email == "" {
		return nil
	}
	return &u
}

func (s *Server) writeUserSession(w http.ResponseWriter, r *http.Request, u *sessionUser) {
	if u == nil {
		clearCookie(w, r, sessionCookie)
		return
	}
	s.cookies.write(w, r, sessionCookie, u)
}
