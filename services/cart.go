package services

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yeremiapane/bakery-app/models"
)

// MaxCartQuantity caps a single cart line and the combined demand for one
// good at checkout.
const MaxCartQuantity = 1000

// CartLineView is a cart item with its current price quote.
type CartLineView struct {
	models.CartItem
	UnitPrice       decimal.Decimal `json:"unit_price"`
	LineTotal       decimal.Decimal `json:"line_total"`
	AvailableToSell int             `json:"available_to_sell"`
}

type CartView struct {
	Items    []CartLineView  `json:"items"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

// CartService is the cart-management boundary. Checkout only reads what it
// stores; adding an item never reserves stock.
type CartService struct {
	db     *gorm.DB
	policy AvailabilityPolicy
}

func NewCartService(db *gorm.DB, policy AvailabilityPolicy) *CartService {
	return &CartService{db: db, policy: policy}
}

// AddItem appends a line to the user's cart.
func (s *CartService) AddItem(ctx context.Context, userID, goodID uint, sizeOptionID *uint, quantity int, customization map[string]interface{}) (*models.CartItem, error) {
	if quantity <= 0 {
		return nil, ErrInvalidArgument("quantity must be greater than 0")
	}
	if quantity > MaxCartQuantity {
		return nil, ErrInvalidArgument("quantity cannot exceed %d", MaxCartQuantity)
	}
	db := s.db.WithContext(ctx)

	good, err := loadGood(db, goodID)
	if err != nil {
		return nil, err
	}
	if !good.Active {
		return nil, ErrInvalidArgument("%s is not for sale", good.Name)
	}
	if sizeOptionID != nil {
		if err := db.First(&models.SizeOption{}, *sizeOptionID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrNotFound("size option", *sizeOptionID)
			}
			return nil, wrapf(err, "load size option %d", *sizeOptionID)
		}
	}

	item := models.CartItem{
		UserID:         userID,
		FinishedGoodID: goodID,
		SizeOptionID:   sizeOptionID,
		Quantity:       quantity,
		Customization:  datatypes.JSONMap(customization),
	}
	if err := db.Create(&item).Error; err != nil {
		return nil, wrapf(err, "add item to cart")
	}
	return &item, nil
}

// SetQuantity changes a line's quantity; zero or less removes the line.
func (s *CartService) SetQuantity(ctx context.Context, userID, itemID uint, quantity int) error {
	if quantity <= 0 {
		return s.RemoveItem(ctx, userID, itemID)
	}
	if quantity > MaxCartQuantity {
		return ErrInvalidArgument("quantity cannot exceed %d", MaxCartQuantity)
	}
	res := s.db.WithContext(ctx).Model(&models.CartItem{}).
		Where("id = ? AND user_id = ?", itemID, userID).
		Update("quantity", quantity)
	if res.Error != nil {
		return wrapf(res.Error, "update cart item %d", itemID)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound("cart item", itemID)
	}
	return nil
}

func (s *CartService) RemoveItem(ctx context.Context, userID, itemID uint) error {
	res := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", itemID, userID).Delete(&models.CartItem{})
	if res.Error != nil {
		return wrapf(res.Error, "remove cart item %d", itemID)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound("cart item", itemID)
	}
	return nil
}

func (s *CartService) ClearCart(ctx context.Context, userID uint) error {
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.CartItem{}).Error; err != nil {
		return wrapf(err, "clear cart")
	}
	return nil
}

// ListCart returns the user's cart priced at current prices.
func (s *CartService) ListCart(ctx context.Context, userID uint) (*CartView, error) {
	items, err := loadCart(s.db.WithContext(ctx), userID)
	if err != nil {
		return nil, err
	}

	view := &CartView{Items: make([]CartLineView, 0, len(items)), Subtotal: decimal.Zero}
	for _, item := range items {
		price := UnitPrice(item.FinishedGood, item.SizeOption)
		line := price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		view.Items = append(view.Items, CartLineView{
			CartItem:        item,
			UnitPrice:       price,
			LineTotal:       line,
			AvailableToSell: s.policy.AvailableToSell(item.FinishedGood),
		})
		view.Subtotal = view.Subtotal.Add(line)
	}
	return view, nil
}

// UnitPrice is the current sale price of a good in the given size.
func UnitPrice(good models.FinishedGood, size *models.SizeOption) decimal.Decimal {
	price := good.BasePrice
	if size != nil {
		price = price.Add(size.PriceDelta)
	}
	return price.Round(2)
}

func loadCart(tx *gorm.DB, userID uint) ([]models.CartItem, error) {
	var items []models.CartItem
	if err := tx.Preload("FinishedGood").
		Preload("SizeOption").
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&items).Error; err != nil {
		return nil, wrapf(err, "load cart for user %d", userID)
	}
	return items, nil
}
