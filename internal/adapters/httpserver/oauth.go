package httpserver

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"

	"github.com/phenrril/newmobile/internal/domain"
	"github.com/phenrril/newmobile/internal/usecase"
)

type googleUserInfo struct {
	Sub   string `json:"sub"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

func (s *Server) handleGoogleLogin(w http.ResponseWriter, r *http.Request) {
	if s.deps.OAuth == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: errorDetail{Kind: "unavailable", Message: "google sign-in is not configured"}})
		return
	}
	state := uuid.NewString()
	http.SetCookie(w, &http.Cookie{Name: stateCookie, Value: state, Path: "/", MaxAge: 300, HttpOnly: true, Secure: isSecure(r), SameSite: http.SameSiteLaxMode})
	http.Redirect(w, r, s.deps.OAuth.AuthCodeURL(state, oauth2.AccessTypeOnline), http.StatusFound)
}

func (s *Server) fetchGoogleUser(r *http.Request, code string) (*googleUserInfo, error) {
	tok, err := s.deps.OAuth.Exchange(r.Context(), code)
	if err != nil {
		return nil, errors.Wrap(err, "exchange code")
	}
	resp, err := s.deps.OAuth.Client(r.Context(), tok).Get(s.userInfoURL)
	if err != nil {
		return nil, errors.Wrap(err, "userinfo")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("userinfo status %d", resp.StatusCode)
	}
	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, errors.Wrap(err, "decode userinfo")
	}
	return &info, nil
}

func (s *Server) handleGoogleCallback(w http.ResponseWriter, r *http.Request) {
	if s.deps.OAuth == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: errorDetail{Kind: "unavailable", Message: "google sign-in is not configured"}})
		return
	}
	q := r.URL.Query()
	c, _ := r.Cookie(stateCookie)
	if c == nil || c.Value == "" || c.Value != q.Get("state") {
		writeError(w, r, domain.Validation("oauth state mismatch"))
		return
	}
	clearCookie(w, r, stateCookie)

	info, err := s.fetchGoogleUser(r, q.Get("code"))
	if err != nil {
		log.Error().Err(err).Msg("google sign-in")
		writeError(w, r, domain.Unauthorized("google sign-in failed"))
		return
	}
	if info.Email == "" || info.Sub == "" {
		writeError(w, r, domain.Unauthorized("google account has no email"))
		return
	}

	u, err := s.deps.Users.FindOrCreateFederated(r.Context(), usecase.FederatedLogin{
		Provider: domain.ProviderGoogle,
		OAuthID:  info.Sub,
		Email:    info.Email,
		Name:     info.Name,
	})
	if errors.Is(err, usecase.ErrSignupRequired) {
		writeJSON(w, http.StatusOK, map[string]any{
			"signupRequired": true,
			"email":          domain.NormalizeEmail(info.Email),
			"name":           info.Name,
			"oauthProvider":  domain.ProviderGoogle,
			"oauthId":        info.Sub,
		})
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.writeUserSession(w, r, &sessionUser{Email: u.Email, Name: u.Name})
	http.Redirect(w, r, "/", http.StatusFound)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.writeUserSession(w, r, nil)
	clearCookie(w, r, adminCookie)
	w.WriteHeader(http.StatusNoContent)
}
