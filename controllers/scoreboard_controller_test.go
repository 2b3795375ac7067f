// file: controllers/scoreboard_controller_test.go
package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"NebulaCTF/database"
	"NebulaCTF/models"
	"NebulaCTF/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newHandlerDB(t *testing.T) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000", path)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&models.Scoreboard{}, &models.SolveFeed{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	database.DB = db
	database.RDB = nil
	return db
}

func performGet(t *testing.T, handler gin.HandlerFunc, target string) utils.Response {
	t.Helper()

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, target, nil)
	handler(c)

	var resp utils.Response
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	return resp
}

func TestGetScoreboardServesCachedTable(t *testing.T) {
	newHandlerDB(t)
	database.DB.Create(&models.Scoreboard{TeamID: 1, TeamName: "alpha", Score: 100, Rank: 1})

	resp := performGet(t, GetScoreboard, "/api/v1/scoreboard")
	if resp.Code != 0 {
		t.Fatalf("code = %d, want 0", resp.Code)
	}
	if resp.Data == nil {
		t.Fatalf("scoreboard response missing data")
	}
}

func TestGetScoreboardReportsQueryFailure(t *testing.T) {
	db := newHandlerDB(t)
	if err := db.Migrator().DropTable(&models.Scoreboard{}); err != nil {
		t.Fatalf("failed to drop scoreboard table: %v", err)
	}

	resp := performGet(t, GetScoreboard, "/api/v1/scoreboard")
	if resp.Code == 0 {
		t.Fatalf("broken scoreboard read must not report success")
	}
}

func TestGetSolveFeedReportsQueryFailure(t *testing.T) {
	db := newHandlerDB(t)
	if err := db.Migrator().DropTable(&models.SolveFeed{}); err != nil {
		t.Fatalf("failed to drop solve feed table: %v", err)
	}

	resp := performGet(t, GetSolveFeed, "/api/v1/solves/feed")
	if resp.Code == 0 {
		t.Fatalf("broken feed read must not report success")
	}
}
