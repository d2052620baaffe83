package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

const (
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
	DriverMemory   = "memory"
)

type Config struct {
	Env         string
	Port        string
	BaseURL     string
	StoreDriver string

	DSN       string
	MongoURI  string
	MongoDB   string
	SeedStore bool

	JWTSecret    string
	SessionKey   string
	AdminEmail   string
	AdminPass    string
	AdminAllowed []string
	GoogleID     string
	GoogleSecret string
	SendGridKey  string
	MailFrom     string
	MailTo       string
	LogLevel     string
	LogPretty    bool
}

// Load reads the process environment. Call godotenv.Load before it to pick up a .env file.
func Load() (*Config, error) {
	return load(os.Getenv)
}

func load(getenv func(string) string) (*Config, error) {
	get := func(key, def string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return def
	}
	cfg := &Config{
		Env:          strings.ToLower(get("APP_ENV", "development")),
		Port:         get("PORT", "8080"),
		BaseURL:      strings.TrimRight(get("BASE_URL", "http://localhost:8080"), "/"),
		StoreDriver:  strings.ToLower(get("STORE_DRIVER", DriverPostgres)),
		MongoURI:     get("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:      get("MONGO_DB", "newmobile"),
		JWTSecret:    get("JWT_SECRET", get("SECRET_KEY", "")),
		SessionKey:   get("SESSION_KEY", ""),
		AdminPass:    get("ADMIN_PASS", ""),
		GoogleID:     getenv("GOOGLE_CLIENT_ID"),
		GoogleSecret: getenv("GOOGLE_CLIENT_SECRET"),
		SendGridKey:  getenv("SENDGRID_API_KEY"),
		MailFrom:     get("MAIL_FROM", "ventas@newmobile.com.ar"),
		LogLevel:     get("LOG_LEVEL", "info"),
	}
	cfg.DSN = postgresDSN(get)
	cfg.AdminAllowed = splitList(getenv("ADMIN_ALLOWED_EMAILS"))
	cfg.MailTo = get("MAIL_TO", first(cfg.AdminAllowed))
	cfg.AdminEmail = strings.ToLower(get("ADMIN_EMAIL", first(cfg.AdminAllowed)))
	if cfg.AdminEmail == "" {
		cfg.AdminEmail = "admin@local"
	}

	var err error
	if cfg.LogPretty, err = parseBool(get("LOG_PRETTY", "false")); err != nil {
		return nil, errors.Wrap(err, "LOG_PRETTY")
	}
	if cfg.SeedStore, err = parseBool(get("SEED_STORE", "true")); err != nil {
		return nil, errors.Wrap(err, "SEED_STORE")
	}

	switch cfg.StoreDriver {
	case DriverPostgres, DriverMongo, DriverMemory:
	default:
		return nil, errors.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}

	if cfg.IsProduction() {
		if cfg.JWTSecret == "" || cfg.SessionKey == "" || cfg.AdminPass == "" {
			return nil, errors.New("JWT_SECRET, SESSION_KEY and ADMIN_PASS are required in production")
		}
	} else {
		if cfg.JWTSecret == "" {
			cfg.JWTSecret = "dev-jwt-secret"
		}
		if cfg.SessionKey == "" {
			cfg.SessionKey = "dev-insecure"
		}
		if cfg.AdminPass == "" {
			cfg.AdminPass = "admin123"
		}
	}
	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

func postgresDSN(get func(key, def string) string) string {
	if dsn := get("DB_DSN", ""); dsn != "" {
		return dsn
	}
	host := get("DB_HOST", "localhost")
	port := get("DB_PORT", "5432")
	user := get("DB_USER", get("POSTGRES_USER", "postgres"))
	pass := get("DB_PASSWORD", get("POSTGRES_PASSWORD", "postgres"))
	name := get("DB_NAME", get("POSTGRES_DB", "newmobile"))
	ssl := get("DB_SSLMODE", "disable")
	return "host=" + host + " user=" + user + " password=" + pass + " dbname=" + name + " port=" + port + " sslmode=" + ssl
}

func splitList(raw string) []string {
	var out []string
	for _, e := range strings.Split(raw, ",") {
		e = strings.ToLower(strings.TrimSpace(e))
		if e != "" {
			out = append(out, e)
		}
	}
	return out
}

func first(list []string) string {
	if len(list) == 0 {
		return ""
	}
	return list[0]
}

func parseBool(s string) (bool, error) {
	return strconv.ParseBool(s)
}
