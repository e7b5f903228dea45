package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/yeremiapane/bakery-app/services"
	"github.com/yeremiapane/bakery-app/utils"
)

type OrderController struct {
	Checkout *services.CheckoutService
	Orders   *services.OrderService
}

func NewOrderController(checkout *services.CheckoutService, orders *services.OrderService) *OrderController {
	return &OrderController{Checkout: checkout, Orders: orders}
}

// CreateOrder checks out the caller's cart.
func (oc *OrderController) CreateOrder(c *gin.Context) {
	p, ok := principalOrAbort(c)
	if !ok {
		return
	}

	type ReqBody struct {
		PaymentMethod string           `json:"payment_method" binding:"required"`
		CashTendered  *decimal.Decimal `json:"cash_tendered"`
		Total         decimal.Decimal  `json:"total"`
		Discount      *decimal.Decimal `json:"discount"`
	}
	var body ReqBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	result, err := oc.Checkout.Checkout(c.Request.Context(), p, services.CheckoutRequest{
		PaymentMethod: body.PaymentMethod,
		CashTendered:  body.CashTendered,
		Total:         body.Total,
		Discount:      body.Discount,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "Order created", gin.H{
		"order_id":        result.Order.ID,
		"number":          result.Order.Number,
		"status":          result.Order.Status,
		"subtotal":        result.Order.Subtotal,
		"discount":        result.Order.Discount,
		"total":           result.Order.Total,
		"change":          result.Order.Change,
		"reward_redeemed": result.RewardRedeemed,
		"reward_granted":  result.RewardGranted,
	})
}

// GetMyHistory lists the calling customer's orders, newest first.
func (oc *OrderController) GetMyHistory(c *gin.Context) {
	p, ok := principalOrAbort(c)
	if !ok {
		return
	}

	orders, err := oc.Orders.CustomerHistory(c.Request.Context(), p.UserID())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order history", orders)
}

// GetAllOrders -> list orders, optionally filtered with ?status=
func (oc *OrderController) GetAllOrders(c *gin.Context) {
	orders, err := oc.Orders.ListOrders(c.Request.Context(), c.Query("status"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of orders", orders)
}

func (oc *OrderController) GetOrderByID(c *gin.Context) {
	id, ok := parseIDParam(c, "order_id")
	if !ok {
		return
	}

	order, err := oc.Orders.GetOrder(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order detail", order)
}

func (oc *OrderController) UpdateOrderStatus(c *gin.Context) {
	id, ok := parseIDParam(c, "order_id")
	if !ok {
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	order, err := oc.Orders.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order status updated", order)
}
