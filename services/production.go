package services

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/yeremiapane/bakery-app/models"
	"github.com/yeremiapane/bakery-app/utils"
)

// ProductionRequest asks for BatchSize units of a good, optionally in a size.
type ProductionRequest struct {
	FinishedGoodID uint
	BatchSize      int
	SizeOptionID   *uint
}

// IngredientUsage is what one recipe line consumed.
type IngredientUsage struct {
	IngredientID uint            `json:"ingredient_id"`
	Name         string          `json:"name"`
	Unit         models.Unit     `json:"unit"`
	Consumed     decimal.Decimal `json:"consumed"`
	Remaining    decimal.Decimal `json:"remaining"`
	LowStock     bool            `json:"low_stock"`
}

type ProductionResult struct {
	FinishedGoodID uint              `json:"finished_good_id"`
	Name           string            `json:"name"`
	Produced       int               `json:"produced"`
	StockOnHand    int               `json:"stock_on_hand"`
	Factor         decimal.Decimal   `json:"factor"`
	Ingredients    []IngredientUsage `json:"ingredients"`
}

// requirement is one validated line waiting to be committed.
type requirement struct {
	ingredient models.Ingredient
	required   decimal.Decimal
}

// ProductionService converts ingredient stock into finished-good stock.
type ProductionService struct {
	db      *gorm.DB
	recipes *RecipeCatalog
}

func NewProductionService(db *gorm.DB, recipes *RecipeCatalog) *ProductionService {
	return &ProductionService{db: db, recipes: recipes}
}

// RequiredQuantity scales a per-unit requirement by batch size and size
// factor. Discrete units are rounded up to the next whole unit.
func RequiredQuantity(perUnit decimal.Decimal, batchSize int, factor decimal.Decimal, unit models.Unit) decimal.Decimal {
	total := perUnit.Mul(decimal.NewFromInt(int64(batchSize))).Mul(factor)
	if unit.Discrete() {
		return total.Ceil()
	}
	return total
}

// Produce validates every ingredient before touching any stock, then moves
// ingredients into the finished good in the same transaction.
func (s *ProductionService) Produce(ctx context.Context, req ProductionRequest) (*ProductionResult, error) {
	if req.FinishedGoodID == 0 {
		return nil, ErrInvalidArgument("finished good is required")
	}
	if req.BatchSize <= 0 {
		return nil, ErrInvalidArgument("batch size must be greater than 0")
	}

	var result *ProductionResult
	err := WithTransaction(ctx, s.db, func(tx *gorm.DB) error {
		var good models.FinishedGood
		if err := forUpdate(tx).First(&good, req.FinishedGoodID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound("finished good", req.FinishedGoodID)
			}
			return wrapf(err, "load good %d", req.FinishedGoodID)
		}

		lines, err := s.recipes.Lines(tx, good.ID)
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			return ErrNoRecipeConfigured(good.Name)
		}

		factor, err := s.scaleFactor(tx, req.SizeOptionID)
		if err != nil {
			return err
		}

		// validate phase: nothing is written until every line passes
		reqs := make([]requirement, 0, len(lines))
		for _, line := range lines {
			var ing models.Ingredient
			if err := forUpdate(tx).First(&ing, line.IngredientID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrMisconfigured("recipe for %s references missing ingredient %d", good.Name, line.IngredientID)
				}
				return wrapf(err, "load ingredient %d", line.IngredientID)
			}
			if ing.StockOnHand.Sign() < 0 {
				return ErrConsistency(CodeNegativeStock, "ingredient %s has negative stock", ing.Name)
			}

			required := RequiredQuantity(line.QuantityPerUnit, req.BatchSize, factor, ing.Unit)
			if required.GreaterThan(ing.StockOnHand) {
				return ErrInsufficientIngredient(ing.Name, required, ing.StockOnHand)
			}
			reqs = append(reqs, requirement{ingredient: ing, required: required})
		}

		// commit phase
		usage := make([]IngredientUsage, 0, len(reqs))
		for _, r := range reqs {
			remaining := r.ingredient.StockOnHand.Sub(r.required)
			if err := tx.Model(&models.Ingredient{}).
				Where("id = ?", r.ingredient.ID).
				Update("stock_on_hand", remaining).Error; err != nil {
				return wrapf(err, "consume ingredient %d", r.ingredient.ID)
			}
			usage = append(usage, IngredientUsage{
				IngredientID: r.ingredient.ID,
				Name:         r.ingredient.Name,
				Unit:         r.ingredient.Unit,
				Consumed:     r.required,
				Remaining:    remaining,
				LowStock:     remaining.LessThan(r.ingredient.MinimumThreshold),
			})
		}

		if err := tx.Model(&models.FinishedGood{}).
			Where("id = ?", good.ID).
			UpdateColumn("stock_on_hand", gorm.Expr("stock_on_hand + ?", req.BatchSize)).Error; err != nil {
			return wrapf(err, "add stock to good %d", good.ID)
		}

		result = &ProductionResult{
			FinishedGoodID: good.ID,
			Name:           good.Name,
			Produced:       req.BatchSize,
			StockOnHand:    good.StockOnHand + req.BatchSize,
			Factor:         factor,
			Ingredients:    usage,
		}
		return nil
	})
	if err != nil {
		logAbort("production", logrus.Fields{
			"good_id":    req.FinishedGoodID,
			"batch_size": req.BatchSize,
		}, err)
		return nil, err
	}

	utils.InfoLogger.WithFields(logrus.Fields{
		"good_id":    result.FinishedGoodID,
		"batch_size": result.Produced,
		"stock":      result.StockOnHand,
	}).Info("production committed")
	return result, nil
}

func (s *ProductionService) scaleFactor(tx *gorm.DB, sizeOptionID *uint) (decimal.Decimal, error) {
	if sizeOptionID == nil {
		return decimal.NewFromInt(1), nil
	}
	var size models.SizeOption
	if err := tx.First(&size, *sizeOptionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return decimal.Zero, ErrNotFound("size option", *sizeOptionID)
		}
		return decimal.Zero, wrapf(err, "load size option %d", *sizeOptionID)
	}
	if size.Factor.Sign() <= 0 {
		return decimal.Zero, ErrMisconfigured("size option %s has a non-positive factor", size.Name)
	}
	return size.Factor, nil
}
