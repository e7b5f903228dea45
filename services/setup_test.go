package services

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yeremiapane/bakery-app/database"
	"github.com/yeremiapane/bakery-app/models"
)

var fixtureSeq int64

// setupTestDB -> sqlite in-memory, migrated and seeded like production
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func nextSeq() int64 {
	return atomic.AddInt64(&fixtureSeq, 1)
}

func createUser(t *testing.T, db *gorm.DB, role string) models.User {
	t.Helper()
	n := nextSeq()
	user := models.User{
		Name:  fmt.Sprintf("%s %d", role, n),
		Email: fmt.Sprintf("%s%d@example.com", role, n),
		Role:  role,
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func createGood(t *testing.T, db *gorm.DB, name, price string, stock int) models.FinishedGood {
	t.Helper()
	good := models.FinishedGood{
		SKU:         fmt.Sprintf("FG-%d", nextSeq()),
		Name:        name,
		BasePrice:   dec(price),
		StockOnHand: stock,
		Active:      true,
	}
	require.NoError(t, db.Create(&good).Error)
	return good
}

func createIngredient(t *testing.T, db *gorm.DB, name string, unit models.Unit, stock, minimum string) models.Ingredient {
	t.Helper()
	ing := models.Ingredient{
		SKU:              fmt.Sprintf("ING-%d", nextSeq()),
		Name:             name,
		Unit:             unit,
		StockOnHand:      dec(stock),
		MinimumThreshold: dec(minimum),
	}
	require.NoError(t, db.Create(&ing).Error)
	return ing
}

func createRule(t *testing.T, db *gorm.DB, ruleType, value, minimum string) models.RewardRule {
	t.Helper()
	rule := models.RewardRule{
		Name:            fmt.Sprintf("%s %s over %s", ruleType, value, minimum),
		Type:            ruleType,
		Value:           dec(value),
		MinimumPurchase: dec(minimum),
		Active:          true,
	}
	require.NoError(t, db.Create(&rule).Error)
	return rule
}

func grantReward(t *testing.T, db *gorm.DB, customerID uint, rule models.RewardRule) models.CustomerReward {
	t.Helper()
	slot := customerID
	reward := models.CustomerReward{
		CustomerID:       customerID,
		RuleID:           rule.ID,
		State:            models.RewardStateActive,
		ActiveCustomerID: &slot,
	}
	require.NoError(t, db.Create(&reward).Error)
	return reward
}

func addToCart(t *testing.T, db *gorm.DB, userID, goodID uint, qty int) {
	t.Helper()
	require.NoError(t, db.Create(&models.CartItem{
		UserID:         userID,
		FinishedGoodID: goodID,
		Quantity:       qty,
	}).Error)
}

func reloadGood(t *testing.T, db *gorm.DB, id uint) models.FinishedGood {
	t.Helper()
	var good models.FinishedGood
	require.NoError(t, db.First(&good, id).Error)
	return good
}

func reloadIngredient(t *testing.T, db *gorm.DB, id uint) models.Ingredient {
	t.Helper()
	var ing models.Ingredient
	require.NoError(t, db.First(&ing, id).Error)
	return ing
}

// recordingNotifier captures board notifications.
type recordingNotifier struct {
	mu        sync.Mutex
	committed []models.Order
	changed   []models.Order
}

func (n *recordingNotifier) OrderCommitted(order models.Order) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.committed = append(n.committed, order)
}

func (n *recordingNotifier) OrderStatusChanged(order models.Order) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.changed = append(n.changed, order)
}

func defaultPolicy() AvailabilityPolicy {
	return NewAvailabilityPolicy(DefaultConfig())
}

func newCheckout(db *gorm.DB, buffer int) (*CheckoutService, *recordingNotifier) {
	notifier := &recordingNotifier{}
	policy := NewAvailabilityPolicy(Config{DisplayBuffer: buffer})
	return NewCheckoutService(db, policy, NewRewardLedger(db), notifier), notifier
}
