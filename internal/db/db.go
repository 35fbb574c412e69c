package db

import (
	"fmt"
	"strings"
	"time"

	"github.com/mbet-dev/mbet-adera-backend/internal/config"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func BuildDSN(cfg *config.Config) string {
	addr := cfg.DBHost

	// Prefer Cloud SQL unix socket when INSTANCE_CONNECTION_NAME is provided.
	if cfg.InstanceConnectionName != "" {
		addr = fmt.Sprintf("unix(/cloudsql/%s)", cfg.InstanceConnectionName)
	} else if strings.HasPrefix(cfg.DBHost, "tcp(") {
		// already includes tcp()
	} else if strings.HasPrefix(cfg.DBHost, "unix(") {
		// already includes unix()
	} else if strings.HasPrefix(cfg.DBHost, "/") {
		addr = fmt.Sprintf("unix(%s)", cfg.DBHost)
	} else {
		addr = fmt.Sprintf("tcp(%s:%s)", cfg.DBHost, cfg.DBPort)
	}

	return fmt.Sprintf("%s:%s@%s/%s?charset=utf8mb4&parseTime=True&loc=Local", cfg.DBUser, cfg.DBPassword, addr, cfg.DBName)
}

func Connect(cfg *config.Config) (*gorm.DB, error) {
	dsn := BuildDSN(cfg)
	gcfg := &gorm.Config{
		PrepareStmt: true,
		Logger:      logger.Default.LogMode(logger.Warn),
	}
	db, err := gorm.Open(mysql.Open(dsn), gcfg)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetConnMaxLifetime(5 * time.Minute)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetMaxOpenConns(10)

	return db, nil
}

// EnsureViews (re)creates the derived read models. active_deliveries is
// the aggregated view the dashboard reads first; queries fall back to
// the base tables when it is missing or broken.
func EnsureViews(db *gorm.DB) error {
	return db.Exec(`
		CREATE OR REPLACE VIEW active_deliveries AS
		SELECT p.id, p.tracking_code, p.sender_uid, p.receiver_uid, p.status,
		       p.size, p.created_at, p.updated_at,
		       pa.city AS pickup_city, da.city AS dropoff_city
		FROM parcels p
		LEFT JOIN addresses pa ON pa.id = p.pickup_address_id
		LEFT JOIN addresses da ON da.id = p.dropoff_address_id
		WHERE p.status IN ('pending', 'confirmed', 'picked_up', 'in_transit')
	`).Error
}
