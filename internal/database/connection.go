// internal/database/connection.go
package database

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/madatrans/license-backend/internal/config"
	"github.com/madatrans/license-backend/internal/models"
)

var DB *gorm.DB

func Initialize(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var err error

	logLevel := logger.Warn
	switch cfg.LogLevel {
	case "silent":
		logLevel = logger.Silent
	case "info":
		logLevel = logger.Info
	}

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
		// TranslateError maps driver unique-violation errors to
		// gorm.ErrDuplicatedKey, which the issuer relies on.
		TranslateError: true,
	}

	DB, err = gorm.Open(postgres.Open(cfg.DSN()), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.MaxLifetime) * time.Second)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("Database connection established successfully")
	return DB, nil
}

func Close(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		log.Printf("Error getting underlying sql.DB: %v", err)
		return
	}

	if err := sqlDB.Close(); err != nil {
		log.Printf("Error closing database connection: %v", err)
	} else {
		log.Println("Database connection closed successfully")
	}
}

func RunMigrations(db *gorm.DB) error {
	log.Println("Running database migrations...")

	// Enable pgcrypto for gen_random_uuid()
	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS \"pgcrypto\"").Error; err != nil {
		return fmt.Errorf("failed to create pgcrypto extension: %w", err)
	}

	err := db.AutoMigrate(
		&models.Person{},
		&models.Location{},
		&models.SequenceCounter{},
		&models.FeeStructure{},
		&models.Application{},
		&models.StatusHistory{},
		&models.ApplicationAuthorization{},
		&models.Transaction{},
		&models.TransactionItem{},
		&models.CardOrder{},
		&models.License{},
		&models.AuditEvent{},
	)

	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := createIndexes(db); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	log.Println("Database migrations completed successfully")
	return nil
}

func createIndexes(db *gorm.DB) error {
	indexes := []string{
		// Application indexes
		"CREATE INDEX IF NOT EXISTS idx_applications_person ON applications(person_id)",
		"CREATE INDEX IF NOT EXISTS idx_applications_type_status ON applications(application_type, status)",
		"CREATE INDEX IF NOT EXISTS idx_applications_draft_expiry ON applications(draft_expires_at) WHERE status = 'DRAFT'",
		"CREATE INDEX IF NOT EXISTS idx_applications_created_at ON applications(created_at DESC)",

		// Status history
		"CREATE INDEX IF NOT EXISTS idx_status_history_application ON application_status_history(application_id, created_at)",

		// Transactions
		"CREATE INDEX IF NOT EXISTS idx_transactions_person ON transactions(person_id)",
		"CREATE INDEX IF NOT EXISTS idx_transactions_location_paid ON transactions(location_id, paid_at)",
		"CREATE INDEX IF NOT EXISTS idx_transaction_items_application ON transaction_items(application_id)",

		// Licenses
		"CREATE INDEX IF NOT EXISTS idx_licenses_person ON licenses(person_id)",

		// Audit
		"CREATE INDEX IF NOT EXISTS idx_audit_events_entity ON audit_events(entity_type, entity_id)",
		"CREATE INDEX IF NOT EXISTS idx_audit_events_created ON audit_events(created_at DESC)",
	}

	for _, index := range indexes {
		if err := db.Exec(index).Error; err != nil {
			log.Printf("Warning: Failed to create index: %s, Error: %v", index, err)
			// Continue with other indexes instead of failing completely
		}
	}

	return nil
}

// SeedInitialData inserts the fee schedule and a head-office location when
// the tables are empty.
func SeedInitialData(db *gorm.DB) error {
	log.Println("Seeding initial data...")

	for _, fee := range models.DefaultFeeSchedule() {
		var count int64
		db.Model(&models.FeeStructure{}).Where("fee_type = ?", fee.FeeType).Count(&count)
		if count == 0 {
			fee.IsActive = true
			if err := db.Create(&fee).Error; err != nil {
				return fmt.Errorf("failed to seed fee %s: %w", fee.FeeType, err)
			}
		}
	}

	var locationCount int64
	db.Model(&models.Location{}).Count(&locationCount)
	if locationCount == 0 {
		head := &models.Location{
			Code:     "ATN",
			Name:     "Antananarivo Central Office",
			Region:   "Analamanga",
			IsActive: true,
		}
		if err := db.Create(head).Error; err != nil {
			return fmt.Errorf("failed to seed head office: %w", err)
		}
	}

	log.Println("Initial data seeding completed")
	return nil
}

// Transaction helper
func WithTransaction(db *gorm.DB, fn func(*gorm.DB) error) error {
	tx := db.Begin()
	if tx.Error != nil {
		return tx.Error
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit().Error
}
