package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/bakery-app/services"
	"github.com/yeremiapane/bakery-app/utils"
)

type ProductController struct {
	Catalog *services.ProductCatalog
}

func NewProductController(catalog *services.ProductCatalog) *ProductController {
	return &ProductController{Catalog: catalog}
}

// GetAllProducts lists active goods with what can still be sold.
func (pc *ProductController) GetAllProducts(c *gin.Context) {
	products, err := pc.Catalog.ListProducts(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of products", products)
}

func (pc *ProductController) GetProductByID(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	product, err := pc.Catalog.GetProduct(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Product detail", product)
}
