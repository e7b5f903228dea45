package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/yeremiapane/bakery-app/models"
	"github.com/yeremiapane/bakery-app/utils"
)

// totalTolerance absorbs rounding differences between client and server totals.
var totalTolerance = decimal.New(1, -2)

// CheckoutRequest is what the buyer submits. Total (and Discount, when set)
// is the figure the client displayed; the engine recomputes both and rejects
// the checkout when they disagree.
type CheckoutRequest struct {
	PaymentMethod string
	CashTendered  *decimal.Decimal
	Total         decimal.Decimal
	Discount      *decimal.Decimal
}

type CheckoutResult struct {
	Order          models.Order           `json:"order"`
	RewardRedeemed *models.CustomerReward `json:"reward_redeemed,omitempty"`
	RewardGranted  *models.CustomerReward `json:"reward_granted,omitempty"`
}

// OrderNotifier is told about orders after they are committed.
type OrderNotifier interface {
	OrderCommitted(order models.Order)
	OrderStatusChanged(order models.Order)
}

// CheckoutService turns a cart into a committed order, or fails with no
// visible effect.
type CheckoutService struct {
	db       *gorm.DB
	policy   AvailabilityPolicy
	rewards  *RewardLedger
	notifier OrderNotifier
}

func NewCheckoutService(db *gorm.DB, policy AvailabilityPolicy, rewards *RewardLedger, notifier OrderNotifier) *CheckoutService {
	return &CheckoutService{db: db, policy: policy, rewards: rewards, notifier: notifier}
}

// goodDemand aggregates every cart line that draws on the same good.
type goodDemand struct {
	goodID   uint
	quantity int
}

// Checkout runs the whole sale in one transaction: stock check, stock
// decrement, reward redemption, order write and cart clear. Reward assignment
// for the new total happens after commit.
func (s *CheckoutService) Checkout(ctx context.Context, p Principal, req CheckoutRequest) (*CheckoutResult, error) {
	if err := validatePayment(req); err != nil {
		return nil, err
	}

	fields := logrus.Fields{"principal": describePrincipal(p)}
	result := &CheckoutResult{}

	err := WithTransaction(ctx, s.db, func(tx *gorm.DB) error {
		buyerID, staffID, err := s.identifyBuyer(tx, p)
		if err != nil {
			return err
		}

		items, err := loadCart(tx, p.UserID())
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return ErrEmptyCart()
		}

		demand, err := aggregateDemand(items)
		if err != nil {
			return err
		}
		if err := s.checkStock(tx, demand); err != nil {
			return err
		}
		if err := s.decrementStock(tx, demand); err != nil {
			return err
		}

		subtotal := decimal.Zero
		lines := make([]models.OrderItem, 0, len(items))
		for _, item := range items {
			price := UnitPrice(item.FinishedGood, item.SizeOption)
			subtotal = subtotal.Add(price.Mul(decimal.NewFromInt(int64(item.Quantity))))
			lines = append(lines, models.OrderItem{
				FinishedGoodID: item.FinishedGoodID,
				SizeOptionID:   item.SizeOptionID,
				Name:           item.FinishedGood.Name,
				Quantity:       item.Quantity,
				UnitPrice:      price,
				Customization:  item.Customization,
			})
		}

		discount := decimal.Zero
		var rewardID *uint
		if customer, ok := p.(Customer); ok {
			redeemed, err := s.rewards.Consume(tx, customer.ID)
			if err != nil {
				return err
			}
			if redeemed != nil {
				discount = Discount(redeemed.Rule, subtotal)
				rewardID = &redeemed.ID
				result.RewardRedeemed = redeemed
			}
		}
		total := ApplyDiscount(subtotal, discount)

		if !withinTolerance(req.Total, total) ||
			(req.Discount != nil && !withinTolerance(*req.Discount, discount)) {
			return ErrTotalMismatch(subtotal, discount, total)
		}

		change := decimal.Zero
		if req.PaymentMethod == models.PaymentCash {
			if req.CashTendered.LessThan(total.Sub(totalTolerance)) {
				return ErrInsufficientPayment(*req.CashTendered, total)
			}
			change = req.CashTendered.Sub(total)
			if change.Sign() < 0 {
				change = decimal.Zero
			}
		}

		status := models.OrderStatusPending
		if _, ok := p.(Staff); ok {
			status = models.OrderStatusCompleted
		}

		order := models.Order{
			Number:           uuid.NewString(),
			BuyerID:          buyerID,
			StaffID:          staffID,
			Subtotal:         subtotal,
			Discount:         discount,
			Total:            total,
			PaymentMethod:    req.PaymentMethod,
			CashTendered:     req.CashTendered,
			Change:           change,
			Status:           status,
			CustomerRewardID: rewardID,
			OrderItems:       lines,
		}
		if err := tx.Create(&order).Error; err != nil {
			return wrapf(err, "write order")
		}

		if err := tx.Where("user_id = ?", p.UserID()).Delete(&models.CartItem{}).Error; err != nil {
			return wrapf(err, "clear cart")
		}

		result.Order = order
		return nil
	})
	if err != nil {
		logAbort("checkout", fields, err)
		return nil, err
	}

	fields["order_id"] = result.Order.ID
	fields["total"] = utils.FormatCurrency(result.Order.Total)
	utils.InfoLogger.WithFields(fields).Info("checkout committed")

	// the order stands even if granting fails; the next checkout re-evaluates
	granted, err := s.rewards.EvaluateAndAssign(ctx, p, result.Order.Total)
	if err != nil {
		utils.ErrorLogger.WithFields(fields).Errorf("reward assignment failed: %v", err)
	}
	result.RewardGranted = granted

	if s.notifier != nil {
		s.notifier.OrderCommitted(result.Order)
	}
	return result, nil
}

func (s *CheckoutService) identifyBuyer(tx *gorm.DB, p Principal) (uint, *uint, error) {
	switch v := p.(type) {
	case Customer:
		var user models.User
		if err := tx.First(&user, v.ID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return 0, nil, ErrNotFound("customer", v.ID)
			}
			return 0, nil, wrapf(err, "load customer %d", v.ID)
		}
		if user.Role != models.RoleCustomer || user.Email == models.WalkInEmail {
			return 0, nil, ErrInvalidArgument("user %d cannot buy as a customer", v.ID)
		}
		return user.ID, nil, nil
	case Staff:
		var walkIn models.User
		if err := tx.Where("email = ?", models.WalkInEmail).First(&walkIn).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return 0, nil, ErrMisconfigured("walk-in customer is not configured")
			}
			return 0, nil, wrapf(err, "load walk-in customer")
		}
		staffID := v.ID
		return walkIn.ID, &staffID, nil
	default:
		return 0, nil, ErrInvalidArgument("unsupported principal")
	}
}

// checkStock validates every good against stock re-read under lock before
// any stock is written.
func (s *CheckoutService) checkStock(tx *gorm.DB, demand []goodDemand) error {
	for _, d := range demand {
		var good models.FinishedGood
		if err := forUpdate(tx).First(&good, d.goodID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound("finished good", d.goodID)
			}
			return wrapf(err, "load good %d", d.goodID)
		}
		if good.StockOnHand < 0 {
			return ErrConsistency(CodeNegativeStock, "good %s has negative stock", good.Name)
		}
		if available := s.policy.AvailableToSell(good); d.quantity > available {
			return ErrInsufficientStock(good.Name, available)
		}
	}
	return nil
}

// decrementStock writes conditionally so a concurrent writer can never push
// stock into the display buffer or below zero.
func (s *CheckoutService) decrementStock(tx *gorm.DB, demand []goodDemand) error {
	for _, d := range demand {
		res := tx.Model(&models.FinishedGood{}).
			Where("id = ? AND stock_on_hand >= ?", d.goodID, d.quantity+s.policy.Buffer()).
			UpdateColumn("stock_on_hand", gorm.Expr("stock_on_hand - ?", d.quantity))
		if res.Error != nil {
			return wrapf(res.Error, "decrement good %d", d.goodID)
		}
		if res.RowsAffected != 1 {
			var good models.FinishedGood
			if err := tx.First(&good, d.goodID).Error; err != nil {
				return wrapf(err, "reload good %d", d.goodID)
			}
			return ErrInsufficientStock(good.Name, s.policy.AvailableToSell(good))
		}
	}
	return nil
}

// aggregateDemand sums cart lines per good. Each line and each sum stays
// within MaxCartQuantity, so the sums cannot overflow.
func aggregateDemand(items []models.CartItem) ([]goodDemand, error) {
	index := make(map[uint]int, len(items))
	demand := make([]goodDemand, 0, len(items))
	for _, item := range items {
		if item.Quantity <= 0 || item.Quantity > MaxCartQuantity {
			return nil, ErrInvalidArgument("cart line for %s has invalid quantity %d", item.FinishedGood.Name, item.Quantity)
		}
		i, ok := index[item.FinishedGoodID]
		if !ok {
			index[item.FinishedGoodID] = len(demand)
			demand = append(demand, goodDemand{goodID: item.FinishedGoodID, quantity: item.Quantity})
			continue
		}
		if demand[i].quantity+item.Quantity > MaxCartQuantity {
			return nil, ErrInvalidArgument("cannot buy more than %d of %s in one order", MaxCartQuantity, item.FinishedGood.Name)
		}
		demand[i].quantity += item.Quantity
	}
	return demand, nil
}

func validatePayment(req CheckoutRequest) error {
	switch req.PaymentMethod {
	case models.PaymentCash:
		if req.CashTendered == nil {
			return ErrInvalidArgument("cash tendered is required for cash payments")
		}
		if req.CashTendered.Sign() < 0 {
			return ErrInvalidArgument("cash tendered cannot be negative")
		}
	case models.PaymentCard, models.PaymentTransfer:
		if req.CashTendered != nil {
			return ErrInvalidArgument("cash tendered is only accepted for cash payments")
		}
	default:
		return ErrInvalidArgument("unsupported payment method %q", req.PaymentMethod)
	}
	if req.Total.Sign() < 0 {
		return ErrInvalidArgument("total cannot be negative")
	}
	return nil
}

func withinTolerance(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(totalTolerance)
}
