package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/bakery-app/services"
	"github.com/yeremiapane/bakery-app/utils"
)

type CartController struct {
	Carts *services.CartService
}

func NewCartController(carts *services.CartService) *CartController {
	return &CartController{Carts: carts}
}

func (cc *CartController) GetCart(c *gin.Context) {
	p, ok := principalOrAbort(c)
	if !ok {
		return
	}

	cart, err := cc.Carts.ListCart(c.Request.Context(), p.UserID())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Cart", cart)
}

func (cc *CartController) AddItem(c *gin.Context) {
	p, ok := principalOrAbort(c)
	if !ok {
		return
	}

	type request struct {
		FinishedGoodID uint                   `json:"finished_good_id" binding:"required"`
		SizeOptionID   *uint                  `json:"size_option_id"`
		Quantity       int                    `json:"quantity" binding:"required"`
		Customization  map[string]interface{} `json:"customization"`
	}
	var req request
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	item, err := cc.Carts.AddItem(c.Request.Context(), p.UserID(), req.FinishedGoodID, req.SizeOptionID, req.Quantity, req.Customization)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Item added to cart", item)
}

// UpdateItem sets the quantity of one line; zero or less removes it.
func (cc *CartController) UpdateItem(c *gin.Context) {
	p, ok := principalOrAbort(c)
	if !ok {
		return
	}
	itemID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if err := cc.Carts.SetQuantity(c.Request.Context(), p.UserID(), itemID, req.Quantity); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Cart item updated", nil)
}

func (cc *CartController) RemoveItem(c *gin.Context) {
	p, ok := principalOrAbort(c)
	if !ok {
		return
	}
	itemID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := cc.Carts.RemoveItem(c.Request.Context(), p.UserID(), itemID); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Cart item removed", nil)
}

func (cc *CartController) ClearCart(c *gin.Context) {
	p, ok := principalOrAbort(c)
	if !ok {
		return
	}

	if err := cc.Carts.ClearCart(c.Request.Context(), p.UserID()); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Cart cleared", nil)
}
