package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/bakery-app/services"
	"github.com/yeremiapane/bakery-app/utils"
)

type RewardController struct {
	Rewards *services.RewardLedger
}

func NewRewardController(rewards *services.RewardLedger) *RewardController {
	return &RewardController{Rewards: rewards}
}

// GetMyReward returns the caller's active reward, or null data when there is none.
func (rc *RewardController) GetMyReward(c *gin.Context) {
	p, ok := principalOrAbort(c)
	if !ok {
		return
	}

	reward, err := rc.Rewards.ActiveRewardFor(c.Request.Context(), p.UserID())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if reward == nil {
		utils.RespondJSON(c, http.StatusOK, "No active reward", nil)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Active reward", reward)
}
