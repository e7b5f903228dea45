package services

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/yeremiapane/bakery-app/models"
	"github.com/yeremiapane/bakery-app/utils"
)

// RecipeLineInput is one requested line of a recipe replacement.
type RecipeLineInput struct {
	IngredientID    uint            `json:"ingredient_id"`
	QuantityPerUnit decimal.Decimal `json:"quantity_per_unit"`
}

// RecipeCatalog maps finished goods to their ingredient requirements.
type RecipeCatalog struct {
	db *gorm.DB
}

func NewRecipeCatalog(db *gorm.DB) *RecipeCatalog {
	return &RecipeCatalog{db: db}
}

// Lines loads the recipe of a good within tx, in a stable order.
func (rc *RecipeCatalog) Lines(tx *gorm.DB, goodID uint) ([]models.RecipeLine, error) {
	var lines []models.RecipeLine
	if err := tx.Where("finished_good_id = ?", goodID).Order("id ASC").Find(&lines).Error; err != nil {
		return nil, wrapf(err, "load recipe for good %d", goodID)
	}
	return lines, nil
}

// GetRecipe returns the recipe with its ingredients for display.
func (rc *RecipeCatalog) GetRecipe(ctx context.Context, goodID uint) ([]models.RecipeLine, error) {
	db := rc.db.WithContext(ctx)
	if _, err := loadGood(db, goodID); err != nil {
		return nil, err
	}

	var lines []models.RecipeLine
	if err := db.Preload("Ingredient").
		Where("finished_good_id = ?", goodID).
		Order("id ASC").
		Find(&lines).Error; err != nil {
		return nil, wrapf(err, "load recipe for good %d", goodID)
	}
	return lines, nil
}

// SetRecipe replaces a good's recipe as one unit.
func (rc *RecipeCatalog) SetRecipe(ctx context.Context, goodID uint, inputs []RecipeLineInput) ([]models.RecipeLine, error) {
	if len(inputs) == 0 {
		return nil, ErrInvalidArgument("a recipe needs at least one ingredient")
	}
	seen := make(map[uint]bool, len(inputs))
	for _, in := range inputs {
		if in.IngredientID == 0 {
			return nil, ErrInvalidArgument("invalid ingredient id")
		}
		if in.QuantityPerUnit.Sign() <= 0 {
			return nil, ErrInvalidArgument("quantity for ingredient %d must be greater than 0", in.IngredientID)
		}
		if seen[in.IngredientID] {
			return nil, ErrInvalidArgument("ingredient %d listed twice", in.IngredientID)
		}
		seen[in.IngredientID] = true
	}

	err := WithTransaction(ctx, rc.db, func(tx *gorm.DB) error {
		if _, err := loadGood(tx, goodID); err != nil {
			return err
		}

		ids := make([]uint, 0, len(inputs))
		for _, in := range inputs {
			ids = append(ids, in.IngredientID)
		}
		var count int64
		if err := tx.Model(&models.Ingredient{}).Where("id IN ?", ids).Count(&count).Error; err != nil {
			return wrapf(err, "check ingredients")
		}
		if int(count) != len(ids) {
			return ErrInvalidArgument("recipe references an unknown ingredient")
		}

		if err := tx.Where("finished_good_id = ?", goodID).Delete(&models.RecipeLine{}).Error; err != nil {
			return wrapf(err, "clear recipe for good %d", goodID)
		}
		lines := make([]models.RecipeLine, 0, len(inputs))
		for _, in := range inputs {
			lines = append(lines, models.RecipeLine{
				FinishedGoodID:  goodID,
				IngredientID:    in.IngredientID,
				QuantityPerUnit: in.QuantityPerUnit,
			})
		}
		if err := tx.Create(&lines).Error; err != nil {
			return wrapf(err, "save recipe for good %d", goodID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	utils.InfoLogger.WithField("good_id", goodID).Infof("recipe replaced with %d lines", len(inputs))
	return rc.GetRecipe(ctx, goodID)
}

func loadGood(tx *gorm.DB, goodID uint) (*models.FinishedGood, error) {
	var good models.FinishedGood
	err := tx.First(&good, goodID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound("finished good", goodID)
	}
	if err != nil {
		return nil, wrapf(err, "load good %d", goodID)
	}
	return &good, nil
}
