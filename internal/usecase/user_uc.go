package usecase

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/phenrril/newmobile/internal/domain"
)

const newUserWindow = 7 * 24 * time.Hour

type CreateUserInput struct {
	Name          string `json:"name" validate:"required"`
	Email         string `json:"email" validate:"required,email"`
	Mobile        string `json:"mobile" validate:"required"`
	OAuthProvider string `json:"oauthProvider" validate:"required"`
	OAuthID       string `json:"oauthId,omitempty"`
	Address       string `json:"address,omitempty"`
}

type UserMetrics struct {
	TotalUsers       int `json:"totalUsers"`
	OAuthUsers       int `json:"oauthUsers"`
	LocalUsers       int `json:"localUsers"`
	NewUsersThisWeek int `json:"newUsersThisWeek"`
}

type UserView struct {
	ID       uuid.UUID            `json:"id"`
	Name     string               `json:"name"`
	Email    string               `json:"email"`
	Mobile   string               `json:"mobile"`
	Address  string               `json:"address,omitempty"`
	Provider domain.OAuthProvider `json:"provider"`
	Badge    domain.Badge         `json:"badge"`
	JoinedAt time.Time            `json:"joinedAt"`
}

type UserSummary struct {
	Metrics UserMetrics `json:"metrics"`
	Users   []UserView  `json:"users"`
}

type UserUC struct {
	Users domain.UserRepo
	Now   func() time.Time
}

func (uc *UserUC) now() time.Time {
	if uc.Now != nil {
		return uc.Now()
	}
	return time.Now()
}

func (uc *UserUC) CreateUser(ctx context.Context, in CreateUserInput) (*domain.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = domain.NormalizeEmail(in.Email)
	in.Mobile = strings.TrimSpace(in.Mobile)
	in.Address = strings.TrimSpace(in.Address)
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	provider, err := domain.ParseProvider(in.OAuthProvider)
	if err != nil {
		return nil, err
	}
	id := domain.LocalIdentity()
	if provider != domain.ProviderLocal {
		if id, err = domain.FederatedIdentity(provider, in.OAuthID); err != nil {
			return nil, err
		}
	}

	u := domain.NewUser(in.Name, in.Email, in.Mobile, in.Address, id, uc.now())
	if err := uc.Users.Create(ctx, u); err != nil {
		if domain.IsKind(err, domain.KindDuplicateKey) {
			return nil, domain.DuplicateKey("email "+in.Email+" is already registered", err)
		}
		return nil, domain.AsPersistence(err, "create user")
	}
	log.Info().Str("user_id", u.ID.String()).Str("provider", string(u.OAuthProvider)).Msg("user created")
	return u, nil
}

// FindByEmail returns NotFoundError when no user owns the email.
func (uc *UserUC) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	e := domain.NormalizeEmail(email)
	if e == "" {
		return nil, domain.Validation("email is required")
	}
	u, err := uc.Users.FindByEmail(ctx, e)
	if err != nil {
		if domain.IsKind(err, domain.KindNotFound) {
			return nil, domain.NotFound("no user with email %s", e)
		}
		return nil, domain.AsPersistence(err, "find user")
	}
	return u, nil
}

// ErrSignupRequired means a federated sign-in found no account and lacks the
// mobile number needed to create one.
var ErrSignupRequired = domain.Validation("mobile is required to complete sign-up")

type FederatedLogin struct {
	Provider domain.OAuthProvider
	OAuthID  string
	Email    string
	Name     string
	Mobile   string
}

// FindOrCreateFederated returns the user owning the email, creating a
// federated account when there is none and a mobile number was given.
func (uc *UserUC) FindOrCreateFederated(ctx context.Context, in FederatedLogin) (*domain.User, error) {
	u, err := uc.FindByEmail(ctx, in.Email)
	if err == nil {
		return u, nil
	}
	if !domain.IsKind(err, domain.KindNotFound) {
		return nil, err
	}
	if strings.TrimSpace(in.Mobile) == "" {
		return nil, ErrSignupRequired
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = strings.SplitN(domain.NormalizeEmail(in.Email), "@", 2)[0]
	}
	return uc.CreateUser(ctx, CreateUserInput{
		Name:          name,
		Email:         in.Email,
		Mobile:        in.Mobile,
		OAuthProvider: string(in.Provider),
		OAuthID:       in.OAuthID,
	})
}

// SummarizeUsers computes membership metrics over all users. The new-user
// window is the 7 days ending at the moment of the call.
func (uc *UserUC) SummarizeUsers(ctx context.Context) (*UserSummary, error) {
	users, err := uc.Users.List(ctx)
	if err != nil {
		return nil, domain.AsPersistence(err, "list users")
	}
	sort.SliceStable(users, func(i, j int) bool { return users[i].CreatedAt.After(users[j].CreatedAt) })

	since := uc.now().Add(-newUserWindow)
	sum := &UserSummary{Users: make([]UserView, 0, len(users))}
	sum.Metrics.TotalUsers = len(users)
	for _, u := range users {
		if u.IsLocal() {
			sum.Metrics.LocalUsers++
		}
		if !u.CreatedAt.Before(since) {
			sum.Metrics.NewUsersThisWeek++
		}
		sum.Users = append(sum.Users, UserView{
			ID:       u.ID,
			Name:     u.Name,
			Email:    u.Email,
			Mobile:   u.Mobile,
			Address:  u.Address,
			Provider: u.OAuthProvider,
			Badge:    domain.ProviderBadge(string(u.OAuthProvider)),
			JoinedAt: u.CreatedAt,
		})
	}
	sum.Metrics.OAuthUsers = sum.Metrics.TotalUsers - sum.Metrics.LocalUsers
	return sum, nil
}
