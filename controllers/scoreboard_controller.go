// file: controllers/scoreboard_controller.go
package controllers

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"NebulaCTF/database"
	"NebulaCTF/models"
	"NebulaCTF/utils"
	"github.com/gin-gonic/gin"
)

// GetScoreboard serves the leaderboard from the materialized cache table,
// fronted by a short-lived redis entry so it is cheap to poll.
func GetScoreboard(c *gin.Context) {
	limitStr := c.DefaultQuery("limit", "10")
	limit, _ := strconv.Atoi(limitStr)
	if limit <= 0 || limit > 100 {
		limit = 10
	}

	cacheKey := fmt.Sprintf("scoreboard:%d", limit)
	if database.RDB != nil {
		val, err := database.RDB.Get(database.Ctx, cacheKey).Result()
		if err == nil {
			var results []models.Scoreboard
			if json.Unmarshal([]byte(val), &results) == nil {
				utils.Success(c, "success (from cache)", results)
				return
			}
		}
	}

	var results []models.Scoreboard
	if err := database.DB.Order("`rank` asc").Limit(limit).Find(&results).Error; err != nil {
		utils.Error(c, 5000, "Query failed")
		return
	}

	if database.RDB != nil {
		if jsonData, err := json.Marshal(results); err == nil {
			// Short TTL keeps the board near-realtime between refreshes.
			database.RDB.Set(database.Ctx, cacheKey, jsonData, 15*time.Second)
		}
	}

	utils.Success(c, "success", results)
}

// GetSolveFeed returns the most recent correct credits.
func GetSolveFeed(c *gin.Context) {
	limitStr := c.DefaultQuery("limit", "20")
	limit, _ := strconv.Atoi(limitStr)
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	var results []models.SolveFeed
	if err := database.DB.Order("solving_time desc").Limit(limit).Find(&results).Error; err != nil {
		utils.Error(c, 5000, "Query failed")
		return
	}

	utils.Success(c, "success", results)
}
