package repository

import (
	"fmt"

	"go-inventory-ledger/internal/model"

	"gorm.io/gorm"
)

// Migrate creates or updates the users, products and transactions tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&model.User{}, &model.Product{}, &model.LedgerEntry{}); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
