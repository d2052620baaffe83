// Package postgres implements the repositories on PostgreSQL through gorm.
package postgres

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	pgdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/phenrril/newmobile/internal/domain"
)

// Open connects once per process; the handle is shared by every repository.
func Open(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(pgdriver.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, errors.Wrap(err, "open postgres")
	}
	return db, nil
}

func Migrate(ctx context.Context, db *gorm.DB) error {
	if err := db.WithContext(ctx).AutoMigrate(&domain.Product{}, &domain.User{}, &domain.Purchase{}); err != nil {
		return errors.Wrap(err, "automigrate")
	}
	stmts := []string{
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email_lower ON users (LOWER(email))",
		"CREATE INDEX IF NOT EXISTS idx_purchases_items_gin ON purchases USING gin (purchase_items)",
		"ALTER TABLE users DROP CONSTRAINT IF EXISTS chk_users_oauth_provider",
		"ALTER TABLE users ADD CONSTRAINT chk_users_oauth_provider CHECK (oauth_provider IN ('google','facebook','github','local'))",
		"ALTER TABLE purchases DROP CONSTRAINT IF EXISTS chk_purchases_payment_method",
		"ALTER TABLE purchases ADD CONSTRAINT chk_purchases_payment_method CHECK (payment_method IN ('cash','upi','card'))",
	}
	for _, s := range stmts {
		if err := db.WithContext(ctx).Exec(s).Error; err != nil {
			log.Warn().Err(err).Str("stmt", s).Msg("migration statement")
		}
	}
	return nil
}

func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
