// file: services/unlock_service_test.go
package services

import (
	"testing"
	"time"

	"NebulaCTF/config"
	"NebulaCTF/database"
	"NebulaCTF/models"
)

func TestUnlockedWithoutConditions(t *testing.T) {
	newTestDB(t)
	team := createTestTeam(t, "team-open")
	challenge := createTestChallenge(t, "open", testPart{"flag{open}", 10})

	unlocked, err := IsUnlocked(database.DB, team.ID, challenge.ID)
	if err != nil {
		t.Fatalf("IsUnlocked failed: %v", err)
	}
	if !unlocked {
		t.Fatalf("challenge with no conditions should be unlocked")
	}
}

func TestChallengeSolvedCondition(t *testing.T) {
	newTestDB(t)
	team := createTestTeam(t, "team-prereq")
	prereq := createTestChallenge(t, "prereq",
		testPart{"flag{p1}", 30},
		testPart{"flag{p2}", 70},
	)
	gated := createTestChallenge(t, "gated", testPart{"flag{gated}", 200})

	requiredID := prereq.ID
	cond := models.UnlockCondition{
		ChallengeID:         gated.ID,
		Type:                models.UnlockChallengeSolved,
		RequiredChallengeID: &requiredID,
	}
	if err := database.DB.Create(&cond).Error; err != nil {
		t.Fatalf("failed to create condition: %v", err)
	}

	unlocked, err := IsUnlocked(database.DB, team.ID, gated.ID)
	if err != nil {
		t.Fatalf("IsUnlocked failed: %v", err)
	}
	if unlocked {
		t.Fatalf("challenge should be locked before the prerequisite is solved")
	}

	// Partial credit on the prerequisite is not enough.
	if _, err := SubmitFlag(team.ID, team.LeaderID, prereq.ID, "flag{p1}", ""); err != nil {
		t.Fatalf("SubmitFlag failed: %v", err)
	}
	unlocked, _ = IsUnlocked(database.DB, team.ID, gated.ID)
	if unlocked {
		t.Fatalf("partial prerequisite credit must not unlock")
	}
	unmet, err := RemainingConditions(database.DB, team.ID, gated.ID)
	if err != nil {
		t.Fatalf("RemainingConditions failed: %v", err)
	}
	if len(unmet) != 1 {
		t.Fatalf("remaining conditions = %d, want 1", len(unmet))
	}

	if _, err := SubmitFlag(team.ID, team.LeaderID, prereq.ID, "flag{p2}", ""); err != nil {
		t.Fatalf("SubmitFlag failed: %v", err)
	}
	unlocked, _ = IsUnlocked(database.DB, team.ID, gated.ID)
	if !unlocked {
		t.Fatalf("challenge should unlock once the prerequisite is fully solved")
	}
	unmet, _ = RemainingConditions(database.DB, team.ID, gated.ID)
	if len(unmet) != 0 {
		t.Fatalf("remaining conditions = %d, want 0", len(unmet))
	}
}

func TestSolveStateIsPerTeam(t *testing.T) {
	newTestDB(t)
	solver := createTestTeam(t, "team-solver")
	other := createTestTeam(t, "team-other")
	prereq := createTestChallenge(t, "solo-prereq", testPart{"flag{solo}", 50})
	gated := createTestChallenge(t, "solo-gated", testPart{"flag{g}", 100})

	requiredID := prereq.ID
	database.DB.Create(&models.UnlockCondition{
		ChallengeID:         gated.ID,
		Type:                models.UnlockChallengeSolved,
		RequiredChallengeID: &requiredID,
	})

	if _, err := SubmitFlag(solver.ID, solver.LeaderID, prereq.ID, "flag{solo}", ""); err != nil {
		t.Fatalf("SubmitFlag failed: %v", err)
	}

	if unlocked, _ := IsUnlocked(database.DB, solver.ID, gated.ID); !unlocked {
		t.Fatalf("solver's unlock should be granted")
	}
	if unlocked, _ := IsUnlocked(database.DB, other.ID, gated.ID); unlocked {
		t.Fatalf("another team's solve must not unlock for this team")
	}
}

func TestTimeRemainderCondition(t *testing.T) {
	newTestDB(t)
	team := createTestTeam(t, "team-time")
	challenge := createTestChallenge(t, "endgame", testPart{"flag{end}", 500})

	threshold := int64(3600)
	cond := models.UnlockCondition{
		ChallengeID:          challenge.ID,
		Type:                 models.UnlockTimeRemainder,
		TimeThresholdSeconds: &threshold,
	}
	if err := database.DB.Create(&cond).Error; err != nil {
		t.Fatalf("failed to create condition: %v", err)
	}

	// Two hours left: locked.
	config.C.CompetitionEnd = time.Now().Add(2 * time.Hour)
	if unlocked, _ := IsUnlocked(database.DB, team.ID, challenge.ID); unlocked {
		t.Fatalf("challenge should stay locked until the final hour")
	}

	// Thirty minutes left: unlocked.
	config.C.CompetitionEnd = time.Now().Add(30 * time.Minute)
	if unlocked, _ := IsUnlocked(database.DB, team.ID, challenge.ID); !unlocked {
		t.Fatalf("challenge should unlock inside the threshold")
	}
}

func TestFullySolvedRequiresFlagSpecs(t *testing.T) {
	newTestDB(t)
	team := createTestTeam(t, "team-empty")

	challenge := models.Challenge{
		Slug: "no-specs", Title: "no specs", Category: models.CategoryMisc,
		Difficulty: models.ChallengeDifficultyEasy, Description: "x", Points: 10,
	}
	database.DB.Create(&challenge)

	requireSolved(t, team.ID, challenge.ID, false)
}
