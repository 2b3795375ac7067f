// file: controllers/admin_controller.go
package controllers

import (
	"strconv"

	"NebulaCTF/config"
	"NebulaCTF/database"
	"NebulaCTF/models"
	"NebulaCTF/services"
	"NebulaCTF/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// TriggerIngest runs an ingestion pass over the configured challenge tree
// (or an explicit dir). Per-challenge validation failures are reported, not
// fatal; aborting the request rolls back only the challenge in flight.
func TriggerIngest(c *gin.Context) {
	root := c.DefaultQuery("dir", config.C.ChallengeDir)

	report, err := services.Ingest(c.Request.Context(), root)
	if err != nil {
		if report != nil {
			// Cancelled mid-run: everything committed so far stands.
			utils.Success(c, "ingest aborted: "+err.Error(), report)
			return
		}
		utils.Error(c, 5000, "Ingest failed: "+err.Error())
		return
	}

	utils.Success(c, "Ingest completed", report)
}

// AdjustTeamScore applies a manual correction as a new ledger entry.
// History is never rewritten; mistakes are offset by further entries.
func AdjustTeamScore(c *gin.Context) {
	teamID, _ := strconv.Atoi(c.Param("id"))

	var req struct {
		Delta int    `json:"delta" binding:"required"`
		Note  string `json:"note"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 1001, "Invalid request body")
		return
	}

	var team models.Team
	if err := database.DB.First(&team, teamID).Error; err != nil {
		utils.Error(c, 4004, "Team not found")
		return
	}

	var entryID uint64
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		entryID, err = services.AppendPointEntry(tx, team.ID, req.Delta, models.ReasonAdminAdjust, 0, req.Note)
		return err
	})
	if err != nil {
		utils.Error(c, 5000, "Adjustment failed: "+err.Error())
		return
	}

	services.UpdateScoreboardCache()
	utils.Success(c, "Score adjusted", gin.H{"entry_id": entryID})
}
