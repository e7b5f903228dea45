package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/bakery-app/services"
	"github.com/yeremiapane/bakery-app/utils"
)

type RecipeController struct {
	Recipes *services.RecipeCatalog
}

func NewRecipeController(recipes *services.RecipeCatalog) *RecipeController {
	return &RecipeController{Recipes: recipes}
}

func (rc *RecipeController) GetRecipe(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	lines, err := rc.Recipes.GetRecipe(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Recipe", lines)
}

// SetRecipe replaces the whole recipe of a finished good.
func (rc *RecipeController) SetRecipe(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		Lines []services.RecipeLineInput `json:"lines" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	lines, err := rc.Recipes.SetRecipe(c.Request.Context(), id, req.Lines)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Recipe saved", lines)
}
