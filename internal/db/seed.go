package db

import (
	"log/slog"

	"gorm.io/gorm"

	"github.com/example/reqdesk/backend/internal/models"
)

// defaultCategories provision the category reference table for fresh
// environments. Production deployments own this table; seeding only runs
// when it is empty.
var defaultCategories = []models.Category{
	{CategoryName: "Hardware"},
	{CategoryName: "Software"},
	{CategoryName: "Network"},
	{CategoryName: "Accounts"},
	{CategoryName: "Other"},
}

// SeedCategories inserts the default categories when the table is empty.
func SeedCategories(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Category{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	cats := make([]models.Category, len(defaultCategories))
	copy(cats, defaultCategories)
	if err := db.Create(&cats).Error; err != nil {
		return err
	}
	slog.Info("seeded category reference data", "count", len(defaultCategories))
	return nil
}
