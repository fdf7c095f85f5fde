package initializers

import (
	"fmt"

	"github.com/Kariqs/storefront-api/models"
	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ConnectToDB opens the database named by cfg. MySQL is the production engine;
// sqlite is accepted for local runs and tests.
func ConnectToDB(cfg Config) (*gorm.DB, error) {
	if cfg.DBURL == "" {
		return nil, fmt.Errorf("DB_URL is not set")
	}

	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case "mysql":
		dialector = mysql.Open(cfg.DBURL)
	case "sqlite":
		dialector = sqlite.Open(cfg.DBURL)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if cfg.DBDriver == "sqlite" {
		// sqlite allows a single writer; one connection keeps transactions from
		// tripping over each other.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}
	return db, nil
}

func SyncDatabase(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.ProductSpec{},
		&models.Cart{},
		&models.CartItem{},
		&models.PaymentMethod{},
		&models.Order{},
		&models.OrderItem{},
	)
	if err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}
	zap.L().Info("database synced")
	return nil
}
