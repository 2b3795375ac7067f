// file: controllers/team_controller.go
package controllers

import (
	"strconv"
	"time"

	"NebulaCTF/database"
	"NebulaCTF/models"
	"NebulaCTF/services"
	"NebulaCTF/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func isUserInTeam(userID uint32) (bool, error) {
	var count int64
	err := database.DB.Model(&models.TeamMember{}).Where("user_id = ?", userID).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func CreateTeam(c *gin.Context) {
	userIDAny, _ := c.Get("user_id")
	userID := userIDAny.(uint32)

	inTeam, err := isUserInTeam(userID)
	if err != nil {
		utils.Error(c, 5000, "Database error")
		return
	}
	if inTeam {
		utils.Error(c, 3001, "User already in a team")
		return
	}

	var req struct {
		TeamName     string `json:"team_name" binding:"required"`
		TeamDescribe string `json:"team_describe"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 1001, "Invalid request body")
		return
	}

	var existingTeam models.Team
	if err := database.DB.Where("team_name = ?", req.TeamName).First(&existingTeam).Error; err == nil {
		utils.Error(c, 3001, "Team name already exists")
		return
	}

	newTeam := models.Team{
		TeamName:       req.TeamName,
		LeaderID:       userID,
		InvitationCode: utils.GenerateInvitationCode(12),
		TeamDescribe:   req.TeamDescribe,
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&newTeam).Error; err != nil {
			return err
		}
		leaderMember := models.TeamMember{
			TeamID:   newTeam.ID,
			UserID:   userID,
			Role:     models.TeamRoleLeader,
			JoinedAt: time.Now(),
		}
		return tx.Create(&leaderMember).Error
	})
	if err != nil {
		utils.Error(c, 5000, "Failed to create team: "+err.Error())
		return
	}

	utils.Success(c, "Team created successfully", gin.H{
		"id":              newTeam.ID,
		"team_name":       newTeam.TeamName,
		"leader_id":       newTeam.LeaderID,
		"invitation_code": newTeam.InvitationCode,
	})
}

func JoinTeam(c *gin.Context) {
	userIDAny, _ := c.Get("user_id")
	userID := userIDAny.(uint32)

	var req struct {
		InvitationCode string `json:"invitation_code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 1001, "Invalid request body")
		return
	}

	inTeam, err := isUserInTeam(userID)
	if err != nil {
		utils.Error(c, 5000, "Database error")
		return
	}
	if inTeam {
		utils.Error(c, 3001, "User already in a team")
		return
	}

	var targetTeam models.Team
	if err := database.DB.Where("invitation_code = ?", req.InvitationCode).First(&targetTeam).Error; err != nil {
		utils.Error(c, 3004, "Invalid invitation code")
		return
	}
	if targetTeam.TeamStatus == models.TeamStatusBanned {
		utils.Error(c, 3005, "Team is banned")
		return
	}

	member := models.TeamMember{
		TeamID:   targetTeam.ID,
		UserID:   userID,
		Role:     models.TeamRoleMember,
		JoinedAt: time.Now(),
	}
	if err := database.DB.Create(&member).Error; err != nil {
		utils.Error(c, 5000, "Failed to join team: "+err.Error())
		return
	}

	utils.Success(c, "Joined team successfully", gin.H{"team_id": targetTeam.ID})
}

func LeaveTeam(c *gin.Context) {
	userIDAny, _ := c.Get("user_id")
	userID := userIDAny.(uint32)

	var membership models.TeamMember
	if err := database.DB.Where("user_id = ?", userID).First(&membership).Error; err != nil {
		utils.Error(c, 3002, "You are not in a team")
		return
	}
	if membership.Role == models.TeamRoleLeader {
		utils.Error(c, 3003, "Leader must disband the team instead of leaving")
		return
	}

	if err := database.DB.Delete(&membership).Error; err != nil {
		utils.Error(c, 5000, "Failed to leave team")
		return
	}
	utils.Success(c, "Left team successfully", nil)
}

func DisbandTeam(c *gin.Context) {
	teamID, _ := strconv.Atoi(c.Param("id"))
	userIDAny, _ := c.Get("user_id")
	userID := userIDAny.(uint32)

	var team models.Team
	if err := database.DB.First(&team, teamID).Error; err != nil {
		utils.Error(c, 4004, "Team not found")
		return
	}
	if team.LeaderID != userID {
		utils.Error(c, 4003, "Only the leader can disband the team")
		return
	}

	// The team row and memberships go; submissions and ledger entries are
	// permanent records and stay.
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("team_id = ?", team.ID).Delete(&models.TeamMember{}).Error; err != nil {
			return err
		}
		return tx.Delete(&team).Error
	})
	if err != nil {
		utils.Error(c, 5000, "Failed to disband team")
		return
	}
	utils.Success(c, "Team disbanded", nil)
}

func KickMember(c *gin.Context) {
	teamID, _ := strconv.Atoi(c.Param("id"))
	targetID, _ := strconv.Atoi(c.Param("user_id"))
	userIDAny, _ := c.Get("user_id")
	userID := userIDAny.(uint32)

	var team models.Team
	if err := database.DB.First(&team, teamID).Error; err != nil {
		utils.Error(c, 4004, "Team not found")
		return
	}
	if team.LeaderID != userID {
		utils.Error(c, 4003, "Only the leader can kick members")
		return
	}
	if uint32(targetID) == userID {
		utils.Error(c, 3003, "Leader cannot kick themselves")
		return
	}

	result := database.DB.Where("team_id = ? AND user_id = ?", teamID, targetID).Delete(&models.TeamMember{})
	if result.Error != nil {
		utils.Error(c, 5000, "Failed to kick member")
		return
	}
	if result.RowsAffected == 0 {
		utils.Error(c, 4004, "Member not found in this team")
		return
	}
	utils.Success(c, "Member kicked", nil)
}

func UpdateTeam(c *gin.Context) {
	teamID, _ := strconv.Atoi(c.Param("id"))
	userIDAny, _ := c.Get("user_id")
	userID := userIDAny.(uint32)

	var team models.Team
	if err := database.DB.First(&team, teamID).Error; err != nil {
		utils.Error(c, 4004, "Team not found")
		return
	}
	if team.LeaderID != userID {
		utils.Error(c, 4003, "Only the leader can update the team")
		return
	}

	var req struct {
		TeamDescribe *string `json:"team_describe"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 1001, "Invalid request body")
		return
	}
	if req.TeamDescribe != nil {
		if err := database.DB.Model(&team).Update("team_describe", *req.TeamDescribe).Error; err != nil {
			utils.Error(c, 5000, "Failed to update team")
			return
		}
	}
	utils.Success(c, "Team updated", nil)
}

// GetTeamDetail returns the team with its ledger-derived score.
func GetTeamDetail(c *gin.Context) {
	teamID, _ := strconv.Atoi(c.Param("id"))

	var team models.Team
	if err := database.DB.Preload("Members.User").First(&team, teamID).Error; err != nil {
		utils.Error(c, 4004, "Team not found")
		return
	}

	score, err := services.CurrentScore(database.DB, team.ID)
	if err != nil {
		utils.Error(c, 5000, "Query failed")
		return
	}

	utils.Success(c, "success", gin.H{
		"team":  team,
		"score": score,
	})
}
