package services

import (
	"context"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeremiapane/bakery-app/kds"
	"github.com/yeremiapane/bakery-app/models"
)

func cardRequest(total string) CheckoutRequest {
	return CheckoutRequest{PaymentMethod: models.PaymentCard, Total: dec(total)}
}

func TestCheckoutCustomerOrder(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc, notifier := newCheckout(db, 2)

	customer := createUser(t, db, models.RoleCustomer)
	croissant := createGood(t, db, "Croissant", "2.50", 10)
	tart := createGood(t, db, "Tart", "4.25", 5)
	addToCart(t, db, customer.ID, croissant.ID, 2)
	addToCart(t, db, customer.ID, tart.ID, 1)

	result, err := svc.Checkout(ctx, Customer{ID: customer.ID}, cardRequest("9.25"))
	require.NoError(t, err)

	order := result.Order
	assert.NotZero(t, order.ID)
	assert.NotEmpty(t, order.Number)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, customer.ID, order.BuyerID)
	assert.Nil(t, order.StaffID)
	assert.True(t, dec("9.25").Equal(order.Total))
	assert.Len(t, order.OrderItems, 2)

	assert.Equal(t, 8, reloadGood(t, db, croissant.ID).StockOnHand)
	assert.Equal(t, 4, reloadGood(t, db, tart.ID).StockOnHand)

	var cartCount int64
	db.Model(&models.CartItem{}).Where("user_id = ?", customer.ID).Count(&cartCount)
	assert.Zero(t, cartCount)

	require.Len(t, notifier.committed, 1)
	assert.Equal(t, order.ID, notifier.committed[0].ID)
}

func TestCheckoutRejectsQuantityInsideDisplayBuffer(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc, notifier := newCheckout(db, 2)

	customer := createUser(t, db, models.RoleCustomer)
	cake := createGood(t, db, "Cake", "30", 5)
	addToCart(t, db, customer.ID, cake.ID, 4)

	_, err := svc.Checkout(ctx, Customer{ID: customer.ID}, cardRequest("120"))
	require.Error(t, err)
	svcErr, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, KindValidation, svcErr.Kind)
	assert.Equal(t, CodeInsufficientStock, svcErr.Code)
	assert.Equal(t, "Cake", svcErr.Detail["item"])
	assert.Equal(t, 3, svcErr.Detail["available"])

	assert.Equal(t, 5, reloadGood(t, db, cake.ID).StockOnHand)
	var orders int64
	db.Model(&models.Order{}).Count(&orders)
	assert.Zero(t, orders)
	assert.Empty(t, notifier.committed)
}

func TestCheckoutAggregatesLinesOfTheSameGood(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc, _ := newCheckout(db, 2)

	customer := createUser(t, db, models.RoleCustomer)
	cake := createGood(t, db, "Cake", "30", 5)
	addToCart(t, db, customer.ID, cake.ID, 2)
	addToCart(t, db, customer.ID, cake.ID, 2)

	_, err := svc.Checkout(ctx, Customer{ID: customer.ID}, cardRequest("120"))
	assert.True(t, IsCode(err, CodeInsufficientStock))
	assert.Equal(t, 5, reloadGood(t, db, cake.ID).StockOnHand)
}

func TestCheckoutRejectsOversizedCartLines(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc, _ := newCheckout(db, 2)

	customer := createUser(t, db, models.RoleCustomer)
	cake := createGood(t, db, "Cake", "1", 5)

	// two lines whose sum wraps a signed int
	addToCart(t, db, customer.ID, cake.ID, math.MaxInt64/2+1)
	addToCart(t, db, customer.ID, cake.ID, math.MaxInt64/2+1)
	_, err := svc.Checkout(ctx, Customer{ID: customer.ID}, cardRequest("9223372036854775808"))
	assert.True(t, IsCode(err, CodeInvalidArgument))
	assert.Equal(t, 5, reloadGood(t, db, cake.ID).StockOnHand)

	require.NoError(t, db.Where("user_id = ?", customer.ID).Delete(&models.CartItem{}).Error)
	addToCart(t, db, customer.ID, cake.ID, MaxCartQuantity)
	addToCart(t, db, customer.ID, cake.ID, 1)
	_, err = svc.Checkout(ctx, Customer{ID: customer.ID}, cardRequest("1001"))
	assert.True(t, IsCode(err, CodeInvalidArgument))
	assert.Equal(t, 5, reloadGood(t, db, cake.ID).StockOnHand)

	var orders int64
	db.Model(&models.Order{}).Count(&orders)
	assert.Zero(t, orders)
}

func TestCheckoutRejectsNonCustomerBuyers(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc, _ := newCheckout(db, 0)

	rule := createRule(t, db, models.RewardFixed, "2", "1")
	bun := createGood(t, db, "Bun", "5", 20)

	var walkIn models.User
	require.NoError(t, db.Where("email = ?", models.WalkInEmail).First(&walkIn).Error)
	cashier := createUser(t, db, models.RoleCashier)

	for _, user := range []models.User{walkIn, cashier} {
		addToCart(t, db, user.ID, bun.ID, 1)
		_, err := svc.Checkout(ctx, Customer{ID: user.ID}, cardRequest("5"))
		assert.True(t, IsCode(err, CodeInvalidArgument), user.Email)
	}

	assert.Equal(t, 20, reloadGood(t, db, bun.ID).StockOnHand)
	var rewards int64
	db.Model(&models.CustomerReward{}).Where("rule_id = ?", rule.ID).Count(&rewards)
	assert.Zero(t, rewards)
}

func TestCheckoutIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc, _ := newCheckout(db, 0)

	customer := createUser(t, db, models.RoleCustomer)
	rule := createRule(t, db, models.RewardPercentage, "10", "1")
	reward := grantReward(t, db, customer.ID, rule)
	bread := createGood(t, db, "Bread", "4", 10)
	pie := createGood(t, db, "Pie", "12", 1)
	addToCart(t, db, customer.ID, bread.ID, 3)
	addToCart(t, db, customer.ID, pie.ID, 2)

	_, err := svc.Checkout(ctx, Customer{ID: customer.ID}, cardRequest("32.40"))
	require.Error(t, err)
	assert.True(t, IsCode(err, CodeInsufficientStock))

	assert.Equal(t, 10, reloadGood(t, db, bread.ID).StockOnHand)
	assert.Equal(t, 1, reloadGood(t, db, pie.ID).StockOnHand)

	var stored models.CustomerReward
	require.NoError(t, db.First(&stored, reward.ID).Error)
	assert.Equal(t, models.RewardStateActive, stored.State)

	var cartCount int64
	db.Model(&models.CartItem{}).Where("user_id = ?", customer.ID).Count(&cartCount)
	assert.Equal(t, int64(2), cartCount)
}

func TestCheckoutRedeemsAndEarnsRewards(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc, _ := newCheckout(db, 0)

	customer := createUser(t, db, models.RoleCustomer)
	tenOff := createRule(t, db, models.RewardPercentage, "10", "1000")
	threshold := createRule(t, db, models.RewardFixed, "25", "300")
	reward := grantReward(t, db, customer.ID, tenOff)

	cake := createGood(t, db, "Cake", "100", 10)
	addToCart(t, db, customer.ID, cake.ID, 2)

	first, err := svc.Checkout(ctx, Customer{ID: customer.ID}, CheckoutRequest{
		PaymentMethod: models.PaymentCard,
		Total:         dec("180"),
		Discount:      decPtr("20"),
	})
	require.NoError(t, err)
	assert.True(t, dec("200").Equal(first.Order.Subtotal))
	assert.True(t, dec("20").Equal(first.Order.Discount))
	assert.True(t, dec("180").Equal(first.Order.Total))
	require.NotNil(t, first.RewardRedeemed)
	assert.Equal(t, reward.ID, first.RewardRedeemed.ID)
	require.NotNil(t, first.Order.CustomerRewardID)
	assert.Equal(t, reward.ID, *first.Order.CustomerRewardID)
	assert.Nil(t, first.RewardGranted)

	var stored models.CustomerReward
	require.NoError(t, db.First(&stored, reward.ID).Error)
	assert.Equal(t, models.RewardStateRedeemed, stored.State)

	addToCart(t, db, customer.ID, cake.ID, 5)
	second, err := svc.Checkout(ctx, Customer{ID: customer.ID}, cardRequest("500"))
	require.NoError(t, err)
	assert.Nil(t, second.RewardRedeemed)
	assert.True(t, second.Order.Discount.IsZero())
	require.NotNil(t, second.RewardGranted)
	assert.Equal(t, threshold.ID, second.RewardGranted.RuleID)

	active, err := NewRewardLedger(db).ActiveRewardFor(ctx, customer.ID)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, second.RewardGranted.ID, active.ID)
}

func TestCheckoutFixedDiscountClampsTotalToZero(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc, _ := newCheckout(db, 0)

	customer := createUser(t, db, models.RoleCustomer)
	rule := createRule(t, db, models.RewardFixed, "50", "1000")
	grantReward(t, db, customer.ID, rule)
	muffin := createGood(t, db, "Muffin", "10", 10)
	addToCart(t, db, customer.ID, muffin.ID, 3)

	result, err := svc.Checkout(ctx, Customer{ID: customer.ID}, cardRequest("0"))
	require.NoError(t, err)
	assert.True(t, dec("30").Equal(result.Order.Discount))
	assert.True(t, result.Order.Total.IsZero())
}

func TestCheckoutWalkInSaleByStaff(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc, _ := newCheckout(db, 2)

	cashier := createUser(t, db, models.RoleCashier)
	createRule(t, db, models.RewardFixed, "5", "1")
	bun := createGood(t, db, "Bun", "1.20", 20)
	addToCart(t, db, cashier.ID, bun.ID, 5)

	result, err := svc.Checkout(ctx, Staff{ID: cashier.ID}, CheckoutRequest{
		PaymentMethod: models.PaymentCash,
		CashTendered:  decPtr("10"),
		Total:         dec("6.00"),
	})
	require.NoError(t, err)

	var walkIn models.User
	require.NoError(t, db.Where("email = ?", models.WalkInEmail).First(&walkIn).Error)
	assert.Equal(t, walkIn.ID, result.Order.BuyerID)
	require.NotNil(t, result.Order.StaffID)
	assert.Equal(t, cashier.ID, *result.Order.StaffID)
	assert.Equal(t, models.OrderStatusCompleted, result.Order.Status)
	assert.True(t, dec("4").Equal(result.Order.Change))
	assert.Nil(t, result.RewardRedeemed)
	assert.Nil(t, result.RewardGranted)

	var rewards int64
	db.Model(&models.CustomerReward{}).Count(&rewards)
	assert.Zero(t, rewards)
}

func TestCheckoutWithoutWalkInCustomerIsMisconfigured(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc, _ := newCheckout(db, 0)
	require.NoError(t, db.Where("email = ?", models.WalkInEmail).Delete(&models.User{}).Error)

	cashier := createUser(t, db, models.RoleCashier)
	bun := createGood(t, db, "Bun", "1", 5)
	addToCart(t, db, cashier.ID, bun.ID, 1)

	_, err := svc.Checkout(ctx, Staff{ID: cashier.ID}, cardRequest("1"))
	svcErr, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, KindConfiguration, svcErr.Kind)
	assert.Equal(t, 5, reloadGood(t, db, bun.ID).StockOnHand)
}

func TestCheckoutValidation(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc, _ := newCheckout(db, 0)

	customer := createUser(t, db, models.RoleCustomer)
	p := Customer{ID: customer.ID}

	_, err := svc.Checkout(ctx, p, cardRequest("0"))
	assert.True(t, IsCode(err, CodeEmptyCart))

	_, err = svc.Checkout(ctx, p, CheckoutRequest{PaymentMethod: "cheque", Total: dec("1")})
	assert.True(t, IsCode(err, CodeInvalidArgument))

	_, err = svc.Checkout(ctx, p, CheckoutRequest{PaymentMethod: models.PaymentCash, Total: dec("1")})
	assert.True(t, IsCode(err, CodeInvalidArgument))

	_, err = svc.Checkout(ctx, p, CheckoutRequest{PaymentMethod: models.PaymentCard, CashTendered: decPtr("5"), Total: dec("1")})
	assert.True(t, IsCode(err, CodeInvalidArgument))

	scone := createGood(t, db, "Scone", "3.10", 10)
	addToCart(t, db, customer.ID, scone.ID, 2)

	_, err = svc.Checkout(ctx, p, cardRequest("5.00"))
	require.True(t, IsCode(err, CodeTotalMismatch))
	svcErr, _ := AsError(err)
	assert.Equal(t, "6.20", svcErr.Detail["total"])

	_, err = svc.Checkout(ctx, p, CheckoutRequest{PaymentMethod: models.PaymentCash, CashTendered: decPtr("6"), Total: dec("6.20")})
	assert.True(t, IsCode(err, CodeInsufficientPayment))
	assert.Equal(t, 10, reloadGood(t, db, scone.ID).StockOnHand)

	// within one cent is accepted
	result, err := svc.Checkout(ctx, p, cardRequest("6.21"))
	require.NoError(t, err)
	assert.True(t, dec("6.2").Equal(result.Order.Total))
}

func TestCheckoutInactiveGoodIsNotSellable(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc, _ := newCheckout(db, 0)

	customer := createUser(t, db, models.RoleCustomer)
	stollen := createGood(t, db, "Stollen", "15", 10)
	addToCart(t, db, customer.ID, stollen.ID, 1)
	require.NoError(t, db.Model(&stollen).Update("active", false).Error)

	_, err := svc.Checkout(ctx, Customer{ID: customer.ID}, cardRequest("15"))
	assert.True(t, IsCode(err, CodeInsufficientStock))
}

func TestConcurrentCheckoutsNeverOversell(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc, _ := newCheckout(db, 2)

	cake := createGood(t, db, "Cake", "30", 7)
	buyers := make([]models.User, 10)
	for i := range buyers {
		buyers[i] = createUser(t, db, models.RoleCustomer)
		addToCart(t, db, buyers[i].ID, cake.ID, 1)
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		rejected  int
	)
	for _, buyer := range buyers {
		wg.Add(1)
		go func(id uint) {
			defer wg.Done()
			_, err := svc.Checkout(ctx, Customer{ID: id}, cardRequest("30"))
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				succeeded++
			} else if IsCode(err, CodeInsufficientStock) {
				rejected++
			}
		}(buyer.ID)
	}
	wg.Wait()

	assert.Equal(t, 5, succeeded)
	assert.Equal(t, 5, rejected)
	assert.Equal(t, 2, reloadGood(t, db, cake.ID).StockOnHand)
}

func TestCheckoutWithUnsetHub(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	var hub *kds.Hub
	svc := NewCheckoutService(db, defaultPolicy(), NewRewardLedger(db), hub)
	orders := NewOrderService(db, hub)

	customer := createUser(t, db, models.RoleCustomer)
	roll := createGood(t, db, "Roll", "1.50", 10)
	addToCart(t, db, customer.ID, roll.ID, 2)

	result, err := svc.Checkout(ctx, Customer{ID: customer.ID}, cardRequest("3"))
	require.NoError(t, err)
	_, err = orders.UpdateStatus(ctx, result.Order.ID, models.OrderStatusInPreparation)
	require.NoError(t, err)
}
