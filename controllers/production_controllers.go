package controllers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/bakery-app/kds"
	"github.com/yeremiapane/bakery-app/services"
	"github.com/yeremiapane/bakery-app/utils"
)

type ProductionController struct {
	Production *services.ProductionService
	Hub        *kds.Hub
}

func NewProductionController(production *services.ProductionService, hub *kds.Hub) *ProductionController {
	return &ProductionController{Production: production, Hub: hub}
}

// Produce records a baked batch and consumes its ingredients.
func (pc *ProductionController) Produce(c *gin.Context) {
	var req struct {
		FinishedGoodID uint  `json:"finished_good_id" binding:"required"`
		BatchSize      int   `json:"batch_size"`
		SizeOptionID   *uint `json:"size_option_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	result, err := pc.Production.Produce(c.Request.Context(), services.ProductionRequest{
		FinishedGoodID: req.FinishedGoodID,
		BatchSize:      req.BatchSize,
		SizeOptionID:   req.SizeOptionID,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	if pc.Hub != nil {
		pc.Hub.BroadcastProduction(result)
		for _, usage := range result.Ingredients {
			if usage.LowStock {
				pc.Hub.BroadcastStaffNotification(fmt.Sprintf("%s is running low: %s %s left", usage.Name, usage.Remaining.String(), usage.Unit))
			}
		}
	}
	utils.RespondJSON(c, http.StatusCreated, "Production recorded", result)
}
