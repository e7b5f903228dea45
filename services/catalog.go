package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/yeremiapane/bakery-app/models"
)

// ProductView is a finished good with its availability quote.
type ProductView struct {
	models.FinishedGood
	AvailableToSell int `json:"available_to_sell"`
}

type ProductDetail struct {
	ProductView
	Sizes []models.SizeOption `json:"sizes"`
}

// ProductCatalog quotes sellable goods. Quotes are advisory only.
type ProductCatalog struct {
	db     *gorm.DB
	policy AvailabilityPolicy
}

func NewProductCatalog(db *gorm.DB, policy AvailabilityPolicy) *ProductCatalog {
	return &ProductCatalog{db: db, policy: policy}
}

// ListProducts returns active goods only.
func (c *ProductCatalog) ListProducts(ctx context.Context) ([]ProductView, error) {
	var goods []models.FinishedGood
	if err := c.db.WithContext(ctx).Where("active = ?", true).Order("name ASC").Find(&goods).Error; err != nil {
		return nil, wrapf(err, "list products")
	}
	views := make([]ProductView, 0, len(goods))
	for _, g := range goods {
		views = append(views, ProductView{FinishedGood: g, AvailableToSell: c.policy.AvailableToSell(g)})
	}
	return views, nil
}

func (c *ProductCatalog) GetProduct(ctx context.Context, goodID uint) (*ProductDetail, error) {
	db := c.db.WithContext(ctx)
	good, err := loadGood(db, goodID)
	if err != nil {
		return nil, err
	}
	var sizes []models.SizeOption
	if err := db.Order("factor ASC").Find(&sizes).Error; err != nil {
		return nil, wrapf(err, "list size options")
	}
	return &ProductDetail{
		ProductView: ProductView{FinishedGood: *good, AvailableToSell: c.policy.AvailableToSell(*good)},
		Sizes:       sizes,
	}, nil
}
