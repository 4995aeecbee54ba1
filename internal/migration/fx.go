package migration

import (
	"github.com/IAmRubenNavarro/doula-life/internal/config"
	"github.com/IAmRubenNavarro/doula-life/internal/seed"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(migrateAndSeed),
)

// migrateAndSeed brings the schema up to date on startup and, when the
// seed flag is set, plants the demo fixtures for local development.
func migrateAndSeed(conn *gorm.DB, cfg config.Config) error {
	sqlDB, err := conn.DB()
	if err != nil {
		return err
	}
	if err := RunMigrations(sqlDB); err != nil {
		return err
	}

	if cfg.SeedDemoData {
		return seed.EnsureDemoData(conn)
	}
	return nil
}
