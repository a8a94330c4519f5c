package database

import (
	"log"
	"os"
	"time"

	"crm/internal/config"
	"crm/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewConnection opens the postgres pool and migrates the schema
func NewConnection(cfg config.DatabaseConfig) (*gorm.DB, error) {
	level := logger.Warn
	if cfg.LogQueries {
		level = logger.Info
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN()), NewGormConfig(level))
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	if err := Migrate(db); err != nil {
		log.Println("WARNING: Failed to auto-migrate models:", err)
	}

	return db, nil
}

// NewGormConfig is shared by the postgres connection and the test databases.
// TranslateError turns unique violations into gorm.ErrDuplicatedKey.
func NewGormConfig(level logger.LogLevel) *gorm.Config {
	return &gorm.Config{
		TranslateError: true,
		Logger: logger.New(log.New(os.Stdout, "\r\n", log.LstdFlags), logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		}),
	}
}

// Migrate creates or updates every CRM table
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Lead{},
		&model.LeadStatusHistory{},
		&model.Client{},
		&model.Company{},
		&model.Product{},
		&model.Quote{},
		&model.QuoteItem{},
		&model.Sale{},
		&model.AuditLog{},
	)
}
