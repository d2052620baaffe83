package usecase

import (
	"context"
	"crypto/subtle"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/phenrril/newmobile/internal/domain"
)

const RoleAdmin = "admin"

type TokenIssuer interface {
	Issue(email, role string) (string, time.Time, error)
}

// AuthUC checks the configured email and password and hands out signed tokens.
type AuthUC struct {
	Tokens     TokenIssuer
	AdminEmail string
	AdminPass  string
	// Allowed restricts which emails may receive an admin token. Empty means any.
	Allowed []string
}

type Token struct {
	Token     string    `json:"token"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (uc *AuthUC) IssueToken(_ context.Context, email, pass string) (*Token, error) {
	email = domain.NormalizeEmail(email)
	if email == "" || pass == "" {
		return nil, domain.Validation("email and password are required")
	}
	if !secureEqual(email, domain.NormalizeEmail(uc.AdminEmail)) || !secureEqual(pass, uc.AdminPass) {
		log.Warn().Str("email", email).Msg("rejected token request")
		return nil, domain.Unauthorized("invalid credentials")
	}
	if len(uc.Allowed) > 0 && !contains(uc.Allowed, email) {
		return nil, domain.Unauthorized("email not allowed")
	}
	tok, exp, err := uc.Tokens.Issue(email, RoleAdmin)
	if err != nil {
		return nil, domain.Persistence(err, "sign token")
	}
	return &Token{Token: tok, Email: email, Role: RoleAdmin, ExpiresAt: exp}, nil
}

func secureEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func contains(list []string, v string) bool {
	for _, e := range list {
		if e == v {
			return true
		}
	}
	return false
}
