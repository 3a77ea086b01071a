package db

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/ectroshop9/coinshop/internal/models"
)

// Migrate creates or updates the schema for all persisted models.
func Migrate(conn *gorm.DB) error {
	if conn == nil {
		return fmt.Errorf("db: nil connection")
	}
	return conn.AutoMigrate(
		&models.Customer{},
		&models.Wallet{},
		&models.Transaction{},
		&models.SubscriptionPackage{},
		&models.ChargeCode{},
		&models.Category{},
		&models.TechnicalFile{},
		&models.Purchase{},
		&models.DownloadLink{},
		&models.Notification{},
		&models.Admin{},
	)
}
