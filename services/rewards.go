package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/yeremiapane/bakery-app/models"
	"github.com/yeremiapane/bakery-app/utils"
)

var hundred = decimal.NewFromInt(100)

// RewardLedger tracks, per customer, at most one active reward plus any number
// of redeemed ones.
type RewardLedger struct {
	db *gorm.DB
}

func NewRewardLedger(db *gorm.DB) *RewardLedger {
	return &RewardLedger{db: db}
}

// FindActiveReward returns the customer's active reward, or nil when there is none.
func (l *RewardLedger) FindActiveReward(tx *gorm.DB, customerID uint) (*models.CustomerReward, error) {
	var rewards []models.CustomerReward
	err := forUpdate(tx).
		Preload("Rule").
		Where("customer_id = ? AND state = ?", customerID, models.RewardStateActive).
		Limit(2).
		Find(&rewards).Error
	if err != nil {
		return nil, wrapf(err, "load active reward for customer %d", customerID)
	}

	switch len(rewards) {
	case 0:
		return nil, nil
	case 1:
		return &rewards[0], nil
	default:
		utils.ErrorLogger.WithField("customer_id", customerID).Error("more than one active reward")
		return nil, ErrConsistency(CodeDuplicateActiveReward, "customer %d has more than one active reward", customerID)
	}
}

// Consume moves the customer's active reward to redeemed and returns it. It is
// a no-op returning nil when the customer has no active reward.
func (l *RewardLedger) Consume(tx *gorm.DB, customerID uint) (*models.CustomerReward, error) {
	reward, err := l.FindActiveReward(tx, customerID)
	if err != nil || reward == nil {
		return nil, err
	}

	now := time.Now()
	res := tx.Model(&models.CustomerReward{}).
		Where("id = ? AND state = ?", reward.ID, models.RewardStateActive).
		Updates(map[string]interface{}{
			"state":              models.RewardStateRedeemed,
			"active_customer_id": nil,
			"redeemed_at":        now,
		})
	if res.Error != nil {
		return nil, wrapf(res.Error, "redeem reward %d", reward.ID)
	}
	if res.RowsAffected != 1 {
		return nil, ErrConsistency(CodeDuplicateActiveReward, "reward %d changed state during redemption", reward.ID)
	}

	reward.State = models.RewardStateRedeemed
	reward.ActiveCustomerID = nil
	reward.RedeemedAt = &now
	return reward, nil
}

// EvaluateAndAssign grants the richest rule the order total qualifies for.
// Only customers earn rewards, and only while they hold no active one. It
// returns the granted reward, or nil when nothing was granted.
func (l *RewardLedger) EvaluateAndAssign(ctx context.Context, p Principal, orderTotal decimal.Decimal) (*models.CustomerReward, error) {
	customer, ok := p.(Customer)
	if !ok {
		return nil, nil
	}

	var granted *models.CustomerReward
	err := WithTransaction(ctx, l.db, func(tx *gorm.DB) error {
		active, err := l.FindActiveReward(tx, customer.ID)
		if err != nil {
			return err
		}
		if active != nil {
			return nil
		}

		var rules []models.RewardRule
		if err := tx.Where("active = ?", true).
			Order("minimum_purchase DESC").
			Order("id ASC").
			Find(&rules).Error; err != nil {
			return ErrMisconfigured("reward rule catalog unavailable: %v", err)
		}

		rule := selectRule(rules, orderTotal)
		if rule == nil {
			return nil
		}

		slot := customer.ID
		reward := models.CustomerReward{
			CustomerID:       customer.ID,
			RuleID:           rule.ID,
			State:            models.RewardStateActive,
			ActiveCustomerID: &slot,
		}
		if err := tx.Create(&reward).Error; err != nil {
			return wrapf(err, "assign reward to customer %d", customer.ID)
		}
		reward.Rule = *rule
		granted = &reward
		return nil
	})
	if err != nil {
		if isUniqueViolation(err) {
			// a concurrent checkout granted one first
			return nil, nil
		}
		return nil, err
	}

	if granted != nil {
		utils.InfoLogger.WithFields(logrus.Fields{
			"customer_id": customer.ID,
			"rule_id":     granted.RuleID,
			"order_total": orderTotal.StringFixed(2),
		}).Info("reward granted")
	}
	return granted, nil
}

// ActiveRewardFor is the read-only view used by the customer rewards page.
func (l *RewardLedger) ActiveRewardFor(ctx context.Context, customerID uint) (*models.CustomerReward, error) {
	var reward models.CustomerReward
	err := l.db.WithContext(ctx).
		Preload("Rule").
		Where("customer_id = ? AND state = ?", customerID, models.RewardStateActive).
		First(&reward).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapf(err, "load active reward for customer %d", customerID)
	}
	return &reward, nil
}

// selectRule expects rules ordered by threshold descending and returns the
// first one the total reaches.
func selectRule(rules []models.RewardRule, total decimal.Decimal) *models.RewardRule {
	for i := range rules {
		if total.GreaterThanOrEqual(rules[i].MinimumPurchase) {
			return &rules[i]
		}
	}
	return nil
}

// Discount computes the amount a rule takes off subtotal, never more than the
// subtotal itself.
func Discount(rule models.RewardRule, subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.Sign() <= 0 {
		return decimal.Zero
	}

	var discount decimal.Decimal
	switch rule.Type {
	case models.RewardPercentage:
		discount = subtotal.Mul(rule.Value).Div(hundred)
	case models.RewardFixed:
		discount = rule.Value
	default:
		return decimal.Zero
	}

	discount = discount.Round(2)
	if discount.Sign() < 0 {
		return decimal.Zero
	}
	if discount.GreaterThan(subtotal) {
		return subtotal
	}
	return discount
}

// ApplyDiscount returns max(0, subtotal - discount).
func ApplyDiscount(subtotal, discount decimal.Decimal) decimal.Decimal {
	total := subtotal.Sub(discount)
	if total.Sign() < 0 {
		return decimal.Zero
	}
	return total
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate entry") ||
		strings.Contains(msg, "duplicate key")
}
