// file: controllers/record_controller.go
package controllers

import (
	"strconv"
	"time"

	"NebulaCTF/database"
	"NebulaCTF/models"
	"NebulaCTF/services"
	"NebulaCTF/utils"
	"github.com/gin-gonic/gin"
)

// GetTeamSolves returns a team's correct credits, oldest first.
func GetTeamSolves(c *gin.Context) {
	teamID, _ := strconv.Atoi(c.Param("id"))

	var solves []models.Submission
	database.DB.Where("team_id = ?", teamID).Order("solved_at asc").Find(&solves)

	type SolveInfo struct {
		ChallengeID uint32 `json:"challenge_id"`
		Challenge   string `json:"challenge"`
		PartIndex   uint16 `json:"part_index"`
		Points      uint   `json:"points"`
		SolvedAt    string `json:"solved_at"`
	}
	result := make([]SolveInfo, 0, len(solves))
	for _, solve := range solves {
		var chal models.Challenge
		database.DB.Select("title").First(&chal, solve.ChallengeID)
		var spec models.FlagSpec
		database.DB.Select("part_index").First(&spec, solve.FlagSpecID)
		result = append(result, SolveInfo{
			ChallengeID: solve.ChallengeID,
			Challenge:   chal.Title,
			PartIndex:   spec.PartIndex,
			Points:      solve.Points,
			SolvedAt:    solve.SolvedAt.Format("2006-01-02 15:04:05"),
		})
	}

	utils.Success(c, "success", result)
}

// GetTeamHistory returns the team's full point timeline from the ledger,
// together with the derived current score.
func GetTeamHistory(c *gin.Context) {
	teamID, _ := strconv.Atoi(c.Param("id"))

	entries, err := services.TeamHistory(uint32(teamID))
	if err != nil {
		utils.Error(c, 5000, "Query failed")
		return
	}
	score, err := services.CurrentScore(database.DB, uint32(teamID))
	if err != nil {
		utils.Error(c, 5000, "Query failed")
		return
	}

	type HistoryEntry struct {
		Delta     int    `json:"delta"`
		Reason    string `json:"reason"`
		Note      string `json:"note,omitempty"`
		Timestamp string `json:"timestamp"`
	}
	timeline := make([]HistoryEntry, 0, len(entries))
	for _, e := range entries {
		timeline = append(timeline, HistoryEntry{
			Delta:     e.Delta,
			Reason:    string(e.Reason),
			Note:      e.Note,
			Timestamp: e.CreatedAt.Format(time.RFC3339),
		})
	}

	utils.Success(c, "success", gin.H{
		"score":   score,
		"history": timeline,
	})
}

// GetFlagLogs lets admins inspect the raw submission log with filters.
func GetFlagLogs(c *gin.Context) {
	db := database.DB.Model(&models.SubmissionLog{})

	if teamID := c.Query("team_id"); teamID != "" {
		db = db.Where("team_id = ?", teamID)
	}
	if challengeID := c.Query("challenge_id"); challengeID != "" {
		db = db.Where("challenge_id = ?", challengeID)
	}
	if userID := c.Query("user_id"); userID != "" {
		db = db.Where("user_id = ?", userID)
	}
	if result := c.Query("result"); result != "" {
		db = db.Where("flag_result = ?", result)
	}
	if suspected := c.Query("suspected"); suspected == "1" {
		db = db.Where("suspected = ?", true)
	}

	var results []models.SubmissionLog
	db.Order("submission_time desc").Limit(500).Find(&results)

	utils.Success(c, "success", results)
}

// MarkSuspectSubmission flags a log row for anti-cheat review.
func MarkSuspectSubmission(c *gin.Context) {
	logID, _ := strconv.Atoi(c.Param("id"))

	var req struct {
		Suspected bool `json:"suspected"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 1001, "Invalid request body")
		return
	}

	result := database.DB.Model(&models.SubmissionLog{}).Where("id = ?", logID).Update("suspected", req.Suspected)
	if result.Error != nil {
		utils.Error(c, 5000, "Database update failed: "+result.Error.Error())
		return
	}
	if result.RowsAffected == 0 {
		utils.Error(c, 4004, "Submission log not found")
		return
	}

	utils.Success(c, "Submission marked", nil)
}
