package services

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/yeremiapane/bakery-app/models"
	"github.com/yeremiapane/bakery-app/utils"
)

// orderTransitions lists the statuses each status may move to.
var orderTransitions = map[string][]string{
	models.OrderStatusPending:       {models.OrderStatusInPreparation, models.OrderStatusCancelled},
	models.OrderStatusInPreparation: {models.OrderStatusReady, models.OrderStatusCancelled},
	models.OrderStatusReady:         {models.OrderStatusCompleted, models.OrderStatusCancelled},
	models.OrderStatusCompleted:     nil,
	models.OrderStatusCancelled:     nil,
}

// CanTransition reports whether an order may move from one status to another.
func CanTransition(from, to string) bool {
	for _, next := range orderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// OrderService handles everything that happens to an order after checkout.
// Status is the only field that ever changes.
type OrderService struct {
	db       *gorm.DB
	notifier OrderNotifier
}

func NewOrderService(db *gorm.DB, notifier OrderNotifier) *OrderService {
	return &OrderService{db: db, notifier: notifier}
}

func (s *OrderService) GetOrder(ctx context.Context, orderID uint) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).Preload("OrderItems").First(&order, orderID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound("order", orderID)
	}
	if err != nil {
		return nil, wrapf(err, "load order %d", orderID)
	}
	return &order, nil
}

// ListOrders returns orders newest first, optionally filtered by status.
func (s *OrderService) ListOrders(ctx context.Context, status string) ([]models.Order, error) {
	q := s.db.WithContext(ctx).Preload("OrderItems").Order("created_at DESC").Order("id DESC")
	if status != "" {
		if _, ok := orderTransitions[status]; !ok {
			return nil, ErrInvalidArgument("unknown order status %q", status)
		}
		q = q.Where("status = ?", status)
	}
	var orders []models.Order
	if err := q.Find(&orders).Error; err != nil {
		return nil, wrapf(err, "list orders")
	}
	return orders, nil
}

// CustomerHistory lists the orders a customer placed.
func (s *OrderService) CustomerHistory(ctx context.Context, customerID uint) ([]models.Order, error) {
	var orders []models.Order
	if err := s.db.WithContext(ctx).
		Preload("OrderItems").
		Where("buyer_id = ?", customerID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&orders).Error; err != nil {
		return nil, wrapf(err, "load history for customer %d", customerID)
	}
	return orders, nil
}

// UpdateStatus moves an order along its lifecycle. Cancelling does not
// restock: finished-good stock only moves through checkout and production.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID uint, status string) (*models.Order, error) {
	if _, ok := orderTransitions[status]; !ok {
		return nil, ErrInvalidArgument("unknown order status %q", status)
	}

	var order models.Order
	err := WithTransaction(ctx, s.db, func(tx *gorm.DB) error {
		if err := forUpdate(tx).First(&order, orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound("order", orderID)
			}
			return wrapf(err, "load order %d", orderID)
		}
		if !CanTransition(order.Status, status) {
			return ErrInvalidTransition(order.Status, status)
		}
		res := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", order.ID, order.Status).
			Update("status", status)
		if res.Error != nil {
			return wrapf(res.Error, "update order %d", orderID)
		}
		if res.RowsAffected != 1 {
			return ErrInvalidTransition(order.Status, status)
		}
		order.Status = status
		return nil
	})
	if err != nil {
		logAbort("order status update", logrus.Fields{"order_id": orderID, "status": status}, err)
		return nil, err
	}

	utils.InfoLogger.WithFields(logrus.Fields{"order_id": order.ID, "status": order.Status}).Info("order status updated")
	if s.notifier != nil {
		s.notifier.OrderStatusChanged(order)
	}
	return &order, nil
}
