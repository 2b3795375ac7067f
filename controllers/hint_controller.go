// file: controllers/hint_controller.go
package controllers

import (
	"errors"
	"strconv"

	"NebulaCTF/database"
	"NebulaCTF/dto"
	"NebulaCTF/models"
	"NebulaCTF/services"
	"NebulaCTF/utils"
	"github.com/gin-gonic/gin"
)

// ListChallengeHints returns the hints of a challenge with cost and
// ownership; content is revealed only for owned hints.
func ListChallengeHints(c *gin.Context) {
	challengeID, _ := strconv.Atoi(c.Param("id"))
	teamID, _, ok := currentTeamID(c)
	if !ok {
		return
	}

	unlocked, err := services.IsUnlocked(database.DB, teamID, uint32(challengeID))
	if err != nil {
		utils.Error(c, 5000, "Query failed")
		return
	}
	if !unlocked {
		utils.Error(c, 4005, "Challenge is locked")
		return
	}

	var hints []models.Hint
	if err := database.DB.Where("challenge_id = ?", challengeID).Order("ordinal asc").Find(&hints).Error; err != nil {
		utils.Error(c, 5000, "Query failed")
		return
	}

	items := make([]dto.HintResp, 0, len(hints))
	for _, h := range hints {
		owned, err := services.TeamOwnsHint(teamID, h.ID)
		if err != nil {
			utils.Error(c, 5000, "Query failed")
			return
		}
		resp := dto.HintResp{ID: h.ID, Ordinal: h.Ordinal, Cost: h.Cost, Owned: owned}
		if owned {
			resp.Content = h.Content
		}
		items = append(items, resp)
	}

	utils.Success(c, "success", gin.H{"hints": items})
}

// PurchaseHint buys a hint for the team. Repeat purchases re-reveal the
// content without a second debit.
func PurchaseHint(c *gin.Context) {
	hintID, _ := strconv.Atoi(c.Param("hint_id"))
	teamID, _, ok := currentTeamID(c)
	if !ok {
		return
	}

	outcome, hint, err := services.PurchaseHint(teamID, uint32(hintID))
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			utils.Error(c, 4004, "Hint not found")
			return
		}
		utils.Error(c, 5000, "Purchase failed")
		return
	}

	switch outcome {
	case services.PurchaseInsufficientPoints:
		utils.Success(c, "Insufficient points", gin.H{"outcome": outcome})
	case services.PurchaseAlreadyOwned:
		utils.Success(c, "Hint already owned", gin.H{"outcome": outcome, "content": hint.Content, "cost": hint.Cost})
	default:
		utils.Success(c, "Hint purchased", gin.H{"outcome": outcome, "content": hint.Content, "cost": hint.Cost})
	}
}
