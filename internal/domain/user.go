package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type OAuthProvider string

const (
	ProviderGoogle   OAuthProvider = "google"
	ProviderFacebook OAuthProvider = "facebook"
	ProviderGithub   OAuthProvider = "github"
	ProviderLocal    OAuthProvider = "local"
)

func ParseProvider(s string) (OAuthProvider, error) {
	switch p := OAuthProvider(strings.ToLower(strings.TrimSpace(s))); p {
	case ProviderGoogle, ProviderFacebook, ProviderGithub, ProviderLocal:
		return p, nil
	}
	return "", Validation("oauth provider %q is not one of google, facebook, github, local", s)
}

// Identity says which system vouched for a user. A local identity has no
// oauth id; a federated one always has both provider and id.
type Identity struct {
	provider OAuthProvider
	oauthID  string
}

func LocalIdentity() Identity { return Identity{provider: ProviderLocal} }

func FederatedIdentity(provider OAuthProvider, oauthID string) (Identity, error) {
	if provider == ProviderLocal || provider == "" {
		return Identity{}, Validation("federated identity needs an external provider")
	}
	id := strings.TrimSpace(oauthID)
	if id == "" {
		return Identity{}, Validation("oauth id is required for provider %s", provider)
	}
	return Identity{provider: provider, oauthID: id}, nil
}

func (i Identity) Provider() OAuthProvider { return i.provider }
func (i Identity) OAuthID() string         { return i.oauthID }
func (i Identity) IsLocal() bool           { return i.provider == ProviderLocal }

type User struct {
	ID            uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	Name          string        `gorm:"size:140;not null" json:"name"`
	Email         string        `gorm:"size:140;not null;uniqueIndex" json:"email"`
	Mobile        string        `gorm:"size:60;not null" json:"mobile"`
	Address       string        `gorm:"size:255" json:"address,omitempty"`
	OAuthProvider OAuthProvider `gorm:"column:oauth_provider;type:varchar(20);index" json:"oauthProvider"`
	OAuthID       *string       `gorm:"column:oauth_id;size:120" json:"oauthId,omitempty"`
	CreatedAt     time.Time     `gorm:"index" json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

func NewUser(name, email, mobile, address string, id Identity, at time.Time) *User {
	u := &User{
		ID:            uuid.New(),
		Name:          name,
		Email:         NormalizeEmail(email),
		Mobile:        mobile,
		Address:       address,
		OAuthProvider: id.provider,
		CreatedAt:     at,
		UpdatedAt:     at,
	}
	if !id.IsLocal() {
		oid := id.oauthID
		u.OAuthID = &oid
	}
	return u
}

func (u *User) IsLocal() bool { return u.OAuthProvider == ProviderLocal }

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

type Badge struct {
	Symbol string `json:"symbol"`
	Color  string `json:"color"`
}

const badgeSymbol = "●"

var providerBadgeColors = map[OAuthProvider]string{
	ProviderGoogle:   "red",
	ProviderFacebook: "blue",
	ProviderGithub:   "black",
	ProviderLocal:    "green",
}

// ProviderBadge maps any provider string, case-insensitively, to its badge.
// Unknown providers get the white badge.
func ProviderBadge(provider string) Badge {
	c, ok := providerBadgeColors[OAuthProvider(strings.ToLower(strings.TrimSpace(provider)))]
	if !ok {
		c = "white"
	}
	return Badge{Symbol: badgeSymbol, Color: c}
}
