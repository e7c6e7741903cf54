package db

import (
	"log"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"palmcash-backend/internal/domain/approval"
	"palmcash-backend/internal/domain/loan"
	"palmcash-backend/internal/domain/payment"
)

func OpenGorm(dsn string) (*gorm.DB, error) {
	return OpenGormWithDialector(mysql.Open(dsn))
}

func OpenGormWithDialector(dial gorm.Dialector) (*gorm.DB, error) {
	cfg := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}
	db, err := gorm.Open(dial, cfg)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(30)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, err
	}
	log.Println("gorm: connected")
	return db, nil
}

// Migrate brings the schema up to date for every table the service owns.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&loan.Product{},
		&loan.Loan{},
		&loan.BorrowerGroup{},
		&payment.Schedule{},
		&payment.Payment{},
		&payment.SecurityDeposit{},
		&payment.Collection{},
		&approval.Record{},
	)
}
