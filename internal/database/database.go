package database

import (
	"strings"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	_ "modernc.org/sqlite"

	"workshop/internal/domain"
	"workshop/internal/pkg/logger"
)

func Connect(dsn string) (*gorm.DB, error) {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		logger.Get().Info("connecting to PostgreSQL")
		return gorm.Open(postgres.Open(dsn), &gorm.Config{})
	}

	logger.Get().Info("using SQLite for local development", zap.String("dsn", dsn))

	return gorm.Open(
		gormsqlite.New(gormsqlite.Config{
			DriverName: "sqlite",
			DSN:        dsn,
		}),
		&gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Warn)},
	)
}

// Migrate applies the schema for every entity owned by the booking core.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.Sparepart{},
		&domain.ServiceOffering{},
		&domain.Technician{},
		&domain.TimeSlot{},
		&domain.CartLine{},
		&domain.Booking{},
		&domain.BookingItem{},
		&domain.GatewayPayment{},
	)
}
