// file: controllers/challenge_controller.go
package controllers

import (
	"errors"
	"strconv"

	"NebulaCTF/database"
	"NebulaCTF/dto"
	"NebulaCTF/mappers"
	"NebulaCTF/models"
	"NebulaCTF/services"
	"NebulaCTF/utils"
	"github.com/gin-gonic/gin"
)

// currentTeamID resolves the authenticated user's team. Every scoring
// operation is scoped to a team, not a user.
func currentTeamID(c *gin.Context) (uint32, uint32, bool) {
	userIDAny, exists := c.Get("user_id")
	if !exists {
		utils.Error(c, 4001, "Not logged in")
		return 0, 0, false
	}
	userID := userIDAny.(uint32)

	var membership models.TeamMember
	if err := database.DB.Where("user_id = ?", userID).First(&membership).Error; err != nil {
		utils.Error(c, 3001, "You must join a team first")
		return 0, 0, false
	}
	return membership.TeamID, userID, true
}

func creditedSpecsForTeam(teamID, challengeID uint32) map[uint32]bool {
	var ids []uint32
	database.DB.Model(&models.Submission{}).
		Where("team_id = ? AND challenge_id = ?", teamID, challengeID).
		Pluck("flag_spec_id", &ids)
	set := make(map[uint32]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

// ListChallenges returns every challenge with the team's solve progress.
// Locked challenges appear in the list but their detail stays gated.
func ListChallenges(c *gin.Context) {
	teamID, _, ok := currentTeamID(c)
	if !ok {
		return
	}

	var challenges []models.Challenge
	if err := database.DB.Preload("FlagSpecs").Order("category asc, points asc").Find(&challenges).Error; err != nil {
		utils.Error(c, 5000, "Query failed")
		return
	}

	items := make([]dto.ChallengeItemResp, 0, len(challenges))
	for _, ch := range challenges {
		unlocked, err := services.IsUnlocked(database.DB, teamID, ch.ID)
		if err != nil {
			utils.Error(c, 5000, "Query failed")
			return
		}
		credited := creditedSpecsForTeam(teamID, ch.ID)
		items = append(items, mappers.MapChallengeToItem(ch, credited, unlocked))
	}

	utils.Success(c, "success", gin.H{
		"total":      len(items),
		"challenges": items,
	})
}

// GetChallengeDetail returns the full challenge once unlocked. For a locked
// challenge only the unmet conditions are revealed, never the description
// or flag structure.
func GetChallengeDetail(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))
	teamID, _, ok := currentTeamID(c)
	if !ok {
		return
	}

	var challenge models.Challenge
	err := database.DB.Preload("FlagSpecs").Preload("Hints").First(&challenge, id).Error
	if err != nil {
		utils.Error(c, 4004, "Challenge not found")
		return
	}

	unmet, err := services.RemainingConditions(database.DB, teamID, challenge.ID)
	if err != nil {
		utils.Error(c, 5000, "Query failed")
		return
	}
	if len(unmet) > 0 {
		slugByID := make(map[uint32]string)
		for _, cond := range unmet {
			if cond.RequiredChallengeID == nil {
				continue
			}
			var required models.Challenge
			if err := database.DB.Select("slug").First(&required, *cond.RequiredChallengeID).Error; err == nil {
				slugByID[*cond.RequiredChallengeID] = required.Slug
			}
		}
		utils.Success(c, "challenge locked", gin.H{
			"locked": true,
			"challenge": dto.LockedChallengeResp{
				ID:                  challenge.ID,
				Slug:                challenge.Slug,
				Title:               challenge.Title,
				RemainingConditions: mappers.MapUnlockConditions(unmet, slugByID),
			},
		})
		return
	}

	credited := creditedSpecsForTeam(teamID, challenge.ID)

	ownedHints := make(map[uint32]bool)
	var purchases []models.TeamHint
	database.DB.Where("team_id = ?", teamID).Find(&purchases)
	for _, p := range purchases {
		ownedHints[p.HintID] = true
	}

	utils.Success(c, "success", gin.H{
		"locked":    false,
		"challenge": mappers.MapChallengeToDetail(challenge, credited, ownedHints),
	})
}

// SubmitFlag validates an answer for the team and reports one of
// accepted / already_solved / incorrect / locked.
func SubmitFlag(c *gin.Context) {
	challengeID, _ := strconv.Atoi(c.Param("id"))
	teamID, userID, ok := currentTeamID(c)
	if !ok {
		return
	}

	var req dto.SubmitFlagReq
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 1001, "Invalid request body: "+err.Error())
		return
	}
	req.Normalize()
	if req.Flag == "" {
		utils.Error(c, 1001, "flag is required")
		return
	}

	result, err := services.SubmitFlag(teamID, userID, uint32(challengeID), req.Flag, c.ClientIP())
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			utils.Error(c, 4004, "Challenge not found")
			return
		}
		utils.Error(c, 5000, "Submission failed")
		return
	}

	switch result.Outcome {
	case services.OutcomeAccepted:
		utils.Success(c, "Flag accepted", result)
	case services.OutcomeAlreadySolved:
		utils.Success(c, "Already solved", result)
	case services.OutcomeLocked:
		utils.Success(c, "Challenge is locked", result)
	default:
		utils.Success(c, "Incorrect flag", result)
	}
}
