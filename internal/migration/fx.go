package migration

import (
	"github.com/globaledutech/payments/internal/config"
	"github.com/globaledutech/payments/internal/payment/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType != "postgres" {
			// sqlite (local/tests) has no versioned migration driver here
			return conn.AutoMigrate(&domain.PaymentRequest{}, &domain.PaymentStatusSnapshot{})
		}

		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		return RunMigrations(sqlDB)
	}),
)
