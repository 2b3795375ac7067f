// file: services/testutil_test.go
package services

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"NebulaCTF/config"
	"NebulaCTF/database"
	"NebulaCTF/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a throwaway sqlite database and points the global handle
// at it. _txlock=immediate makes write transactions take the lock up front
// so the concurrency tests exercise the unique-index guard, not sqlite
// deadlocks.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_txlock=immediate", path)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Team{},
		&models.TeamMember{},
		&models.Challenge{},
		&models.FlagSpec{},
		&models.UnlockCondition{},
		&models.Hint{},
		&models.TeamHint{},
		&models.Submission{},
		&models.SubmissionLog{},
		&models.PointHistory{},
		&models.Scoreboard{},
		&models.SolveFeed{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	database.DB = db
	database.RDB = nil

	config.C.CompetitionStart = time.Now().Add(-1 * time.Hour)
	config.C.CompetitionEnd = time.Now().Add(24 * time.Hour)
	config.C.AssetDir = filepath.Join(t.TempDir(), "assets")

	return db
}

func createTestTeam(t *testing.T, name string) models.Team {
	t.Helper()

	user := models.User{
		Username: name + "-leader",
		Password: "test-password-123",
		Email:    name + "-leader@example.com",
	}
	if err := database.DB.Create(&user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	team := models.Team{
		TeamName:       name,
		LeaderID:       user.ID,
		InvitationCode: name + "-code",
	}
	if err := database.DB.Create(&team).Error; err != nil {
		t.Fatalf("failed to create team: %v", err)
	}
	member := models.TeamMember{TeamID: team.ID, UserID: user.ID, Role: models.TeamRoleLeader, JoinedAt: time.Now()}
	if err := database.DB.Create(&member).Error; err != nil {
		t.Fatalf("failed to create team member: %v", err)
	}
	return team
}

type testPart struct {
	value  string
	points uint
}

func createTestChallenge(t *testing.T, slug string, parts ...testPart) models.Challenge {
	t.Helper()

	var total uint
	for _, p := range parts {
		total += p.points
	}
	challenge := models.Challenge{
		Slug:        slug,
		Title:       slug,
		Category:    models.CategoryMisc,
		Difficulty:  models.ChallengeDifficultyEasy,
		Description: "test challenge " + slug,
		Points:      total,
	}
	if err := database.DB.Create(&challenge).Error; err != nil {
		t.Fatalf("failed to create challenge: %v", err)
	}
	for i, p := range parts {
		spec := models.FlagSpec{
			ChallengeID: challenge.ID,
			PartIndex:   uint16(i),
			Value:       p.value,
			Points:      p.points,
		}
		if err := database.DB.Create(&spec).Error; err != nil {
			t.Fatalf("failed to create flag spec: %v", err)
		}
		challenge.FlagSpecs = append(challenge.FlagSpecs, spec)
	}
	return challenge
}

func requireSolved(t *testing.T, teamID, challengeID uint32, want bool) {
	t.Helper()
	solved, err := ChallengeFullySolved(database.DB, teamID, challengeID)
	if err != nil {
		t.Fatalf("ChallengeFullySolved failed: %v", err)
	}
	if solved != want {
		t.Fatalf("ChallengeFullySolved = %v, want %v", solved, want)
	}
}

func countRows(t *testing.T, model interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var count int64
	db := database.DB.Model(model)
	if query != "" {
		db = db.Where(query, args...)
	}
	if err := db.Count(&count).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	return count
}
