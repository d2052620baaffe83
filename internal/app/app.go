package app

import (
	"context"
	"net/http"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"gorm.io/gorm"

	"github.com/phenrril/newmobile/internal/adapters/auth"
	"github.com/phenrril/newmobile/internal/adapters/httpserver"
	"github.com/phenrril/newmobile/internal/adapters/notify"
	"github.com/phenrril/newmobile/internal/adapters/repo/memory"
	mongorepo "github.com/phenrril/newmobile/internal/adapters/repo/mongo"
	"github.com/phenrril/newmobile/internal/adapters/repo/postgres"
	"github.com/phenrril/newmobile/internal/config"
	"github.com/phenrril/newmobile/internal/domain"
	"github.com/phenrril/newmobile/internal/usecase"
)

// store bundles one backend's repositories with its lifecycle hooks.
type store struct {
	purchases domain.PurchaseRepo
	users     domain.UserRepo
	products  domain.ProductRepo

	migrate func(ctx context.Context) error
	seed    func(ctx context.Context, products []domain.Product) error
	ping    func(ctx context.Context) error
	close   func(ctx context.Context) error
}

type App struct {
	Config      *config.Config
	ProductUC   *usecase.ProductUC
	PurchaseUC  *usecase.PurchaseUC
	UserUC      *usecase.UserUC
	CheckoutUC  *usecase.CheckoutUC
	AuthUC      *usecase.AuthUC
	Tokens      *auth.JWTIssuer
	OAuthConfig *oauth2.Config

	store store
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	st, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	tokens, err := auth.NewJWTIssuer(cfg.JWTSecret)
	if err != nil {
		_ = st.close(ctx)
		return nil, err
	}

	var notifier domain.PurchaseNotifier = notify.LogNotifier{}
	if cfg.SendGridKey != "" {
		sg, err := notify.NewSendGrid(cfg.SendGridKey, cfg.MailFrom, cfg.MailTo)
		if err != nil {
			log.Warn().Err(err).Msg("sendgrid disabled, falling back to log notifier")
		} else {
			notifier = sg
		}
	}

	var oauthCfg *oauth2.Config
	if cfg.GoogleID != "" && cfg.GoogleSecret != "" {
		oauthCfg = &oauth2.Config{
			ClientID:     cfg.GoogleID,
			ClientSecret: cfg.GoogleSecret,
			RedirectURL:  cfg.BaseURL + "/auth/google/callback",
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		}
	}

	a := &App{Config: cfg, Tokens: tokens, OAuthConfig: oauthCfg, store: st}
	a.ProductUC = &usecase.ProductUC{Products: st.products}
	a.PurchaseUC = &usecase.PurchaseUC{Purchases: st.purchases, Notifier: notifier}
	a.UserUC = &usecase.UserUC{Users: st.users}
	a.CheckoutUC = &usecase.CheckoutUC{Products: st.products, Users: st.users, Purchases: a.PurchaseUC}
	a.AuthUC = &usecase.AuthUC{Tokens: tokens, AdminEmail: cfg.AdminEmail, AdminPass: cfg.AdminPass, Allowed: cfg.AdminAllowed}
	return a, nil
}

func openStore(ctx context.Context, cfg *config.Config) (store, error) {
	switch cfg.StoreDriver {
	case config.DriverMemory:
		products := memory.NewProductRepo()
		return store{
			purchases: memory.NewPurchaseRepo(),
			users:     memory.NewUserRepo(),
			products:  products,
			migrate:   func(context.Context) error { return nil },
			seed: func(ctx context.Context, list []domain.Product) error {
				for i := range list {
					if err := products.Save(ctx, &list[i]); err != nil {
						return err
					}
				}
				return nil
			},
			ping:  func(context.Context) error { return nil },
			close: func(context.Context) error { return nil },
		}, nil

	case config.DriverMongo:
		client, db, err := mongorepo.Connect(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return store{}, err
		}
		products := mongorepo.NewProductRepo(db)
		return store{
			purchases: mongorepo.NewPurchaseRepo(db),
			users:     mongorepo.NewUserRepo(db),
			products:  products,
			migrate:   func(ctx context.Context) error { return mongorepo.EnsureIndexes(ctx, db) },
			seed:      products.Seed,
			ping:      func(ctx context.Context) error { return client.Ping(ctx, nil) },
			close:     func(ctx context.Context) error { return mongorepo.Disconnect(ctx, client) },
		}, nil

	case config.DriverPostgres:
		db, err := postgres.Open(cfg.DSN)
		if err != nil {
			return store{}, err
		}
		products := postgres.NewProductRepo(db)
		return store{
			purchases: postgres.NewPurchaseRepo(db),
			users:     postgres.NewUserRepo(db),
			products:  products,
			migrate:   func(ctx context.Context) error { return postgres.Migrate(ctx, db) },
			seed:      products.Seed,
			ping:      func(ctx context.Context) error { return pingSQL(ctx, db) },
			close:     func(context.Context) error { return postgres.Close(db) },
		}, nil
	}
	return store{}, errors.Errorf("unknown store driver %q", cfg.StoreDriver)
}

func pingSQL(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (a *App) HTTPHandler() (http.Handler, error) {
	return httpserver.New(httpserver.Deps{
		Purchases:    a.PurchaseUC,
		Users:        a.UserUC,
		Products:     a.ProductUC,
		Checkout:     a.CheckoutUC,
		Auth:         a.AuthUC,
		Tokens:       a.Tokens,
		OAuth:        a.OAuthConfig,
		SessionKey:   a.Config.SessionKey,
		AdminAllowed: a.Config.AdminAllowed,
		Ping:         a.store.ping,
	})
}

// MigrateAndSeed prepares the schema or indexes and loads the demo catalog
// when SEED_STORE is on and the catalog is empty.
func (a *App) MigrateAndSeed(ctx context.Context) error {
	if err := a.store.migrate(ctx); err != nil {
		return errors.Wrap(err, "migrate")
	}
	if !a.Config.SeedStore {
		return nil
	}
	if err := a.store.seed(ctx, seedCatalog()); err != nil {
		return errors.Wrap(err, "seed catalog")
	}
	return nil
}

func (a *App) Close(ctx context.Context) error {
	return a.store.close(ctx)
}
