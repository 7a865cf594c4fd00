package migration

import (
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(Run),
)

func Run(conn *gorm.DB, log *zap.Logger) error {
	dialect := conn.Dialector.Name()
	log = log.Named("migrations").With(zap.String("dialect", dialect))

	if dialect != "postgres" {
		if err := AutoMigrate(conn); err != nil {
			return err
		}
		log.Info("schema auto migrated")
		return nil
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return err
	}
	if err := RunMigrations(sqlDB); err != nil {
		return err
	}
	log.Info("migrations applied")
	return nil
}
