package migration

import (
	"github.com/smallbiznis/dukaan/internal/config"
	"github.com/smallbiznis/dukaan/internal/seed"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		// The embedded migrations target postgres; other dialects manage
		// schema externally.
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		}

		if cfg.Environment == "development" {
			return seed.EnsureDemoCatalog(conn)
		}
		return nil
	}),
)
