// file: controllers/user_controller.go
package controllers

import (
	"strconv"

	"NebulaCTF/database"
	"NebulaCTF/models"
	"NebulaCTF/utils"
	"github.com/gin-gonic/gin"
)

func Register(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required,min=8"`
		Email    string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 1001, "Invalid request body: "+err.Error())
		return
	}

	var existing models.User
	if err := database.DB.Where("username = ? OR email = ?", req.Username, req.Email).First(&existing).Error; err == nil {
		utils.Error(c, 2001, "Username or email already taken")
		return
	}

	user := models.User{
		Username: req.Username,
		Password: req.Password,
		Email:    req.Email,
	}
	if err := database.DB.Create(&user).Error; err != nil {
		utils.Error(c, 5000, "Failed to register: "+err.Error())
		return
	}

	utils.Success(c, "Registered successfully", gin.H{"id": user.ID, "username": user.Username})
}

func Login(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 1001, "Invalid request body")
		return
	}

	var user models.User
	if err := database.DB.Where("username = ?", req.Username).First(&user).Error; err != nil {
		utils.Error(c, 2002, "Invalid username or password")
		return
	}
	if !user.CheckPassword(req.Password) {
		utils.Error(c, 2002, "Invalid username or password")
		return
	}
	if user.Status == models.StatusBanned {
		utils.Error(c, 2003, "Account is banned")
		return
	}

	token, err := utils.GenerateToken(user)
	if err != nil {
		utils.Error(c, 5000, "Failed to issue token")
		return
	}

	utils.Success(c, "Login successful", gin.H{
		"token": token,
		"user":  user,
	})
}

func GetUserDetail(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))

	var user models.User
	if err := database.DB.First(&user, id).Error; err != nil {
		utils.Error(c, 4004, "User not found")
		return
	}
	utils.Success(c, "success", user)
}

func UpdateUser(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))
	userIDAny, _ := c.Get("user_id")
	if userIDAny.(uint32) != uint32(id) {
		utils.Error(c, 4003, "Cannot update another user's profile")
		return
	}

	var req struct {
		Email    *string `json:"email"`
		Password *string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 1001, "Invalid request body")
		return
	}

	var user models.User
	if err := database.DB.First(&user, id).Error; err != nil {
		utils.Error(c, 4004, "User not found")
		return
	}

	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.Password != nil {
		user.Password = *req.Password
	}
	if err := database.DB.Save(&user).Error; err != nil {
		utils.Error(c, 5000, "Failed to update user")
		return
	}
	utils.Success(c, "User updated", nil)
}

// ===== Admin operations =====

func GetUserList(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	var total int64
	database.DB.Model(&models.User{}).Count(&total)

	var users []models.User
	database.DB.Order("id asc").Offset((page - 1) * limit).Limit(limit).Find(&users)

	utils.Success(c, "success", gin.H{
		"total": total,
		"page":  page,
		"users": users,
	})
}

func DeleteUser(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))

	result := database.DB.Delete(&models.User{}, id)
	if result.Error != nil {
		utils.Error(c, 5000, "Failed to delete user")
		return
	}
	if result.RowsAffected == 0 {
		utils.Error(c, 4004, "User not found")
		return
	}
	utils.Success(c, "User deleted", nil)
}

func UpdateUserStatus(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))

	var req struct {
		Status models.UserStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 1001, "Invalid request body")
		return
	}
	if req.Status != models.StatusActive && req.Status != models.StatusBanned {
		utils.Error(c, 1001, "status must be active or banned")
		return
	}

	result := database.DB.Model(&models.User{}).Where("id = ?", id).Update("status", req.Status)
	if result.Error != nil {
		utils.Error(c, 5000, "Failed to update status")
		return
	}
	if result.RowsAffected == 0 {
		utils.Error(c, 4004, "User not found")
		return
	}
	utils.Success(c, "Status updated", nil)
}

func UpdateUserRole(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))

	var req struct {
		Role models.UserRole `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 1001, "Invalid request body")
		return
	}
	if req.Role != models.RoleUser && req.Role != models.RoleAdmin {
		utils.Error(c, 1001, "role must be user or admin")
		return
	}

	result := database.DB.Model(&models.User{}).Where("id = ?", id).Update("role", req.Role)
	if result.Error != nil {
		utils.Error(c, 5000, "Failed to update role")
		return
	}
	if result.RowsAffected == 0 {
		utils.Error(c, 4004, "User not found")
		return
	}
	utils.Success(c, "Role updated", nil)
}
