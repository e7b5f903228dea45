package database

import (
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/yeremiapane/bakery-app/models"
	"github.com/yeremiapane/bakery-app/utils"
)

// DefaultSizeName is the size option every product is sold in unless the
// buyer picks another.
const DefaultSizeName = "regular"

// Migrate creates or updates the schema and the rows the engines rely on.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.Tables...); err != nil {
		return err
	}
	utils.InfoLogger.Println("AutoMigrate completed.")

	return Seed(db)
}

// Seed inserts the walk-in customer and the default size if they are missing.
func Seed(db *gorm.DB) error {
	walkIn := models.User{
		Name:  "Walk-in customer",
		Email: models.WalkInEmail,
		Role:  models.RoleCustomer,
	}
	if err := firstOrCreate(db, &walkIn, "email = ?", models.WalkInEmail); err != nil {
		return err
	}

	size := models.SizeOption{
		Name:       DefaultSizeName,
		Factor:     decimal.NewFromInt(1),
		PriceDelta: decimal.Zero,
	}
	if err := firstOrCreate(db, &size, "name = ?", DefaultSizeName); err != nil {
		return err
	}

	utils.InfoLogger.Printf("Seed verified: walk-in customer #%d, default size #%d", walkIn.ID, size.ID)
	return nil
}

func firstOrCreate(db *gorm.DB, dest interface{}, query string, args ...interface{}) error {
	err := db.Where(query, args...).First(dest).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return db.Create(dest).Error
}
