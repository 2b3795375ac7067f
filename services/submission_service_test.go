// file: services/submission_service_test.go
package services

import (
	"errors"
	"sync"
	"testing"

	"NebulaCTF/database"
	"NebulaCTF/models"
	"NebulaCTF/utils"
)

func TestSubmitFlagWarmupScenario(t *testing.T) {
	newTestDB(t)
	teamA := createTestTeam(t, "team-a")
	teamB := createTestTeam(t, "team-b")
	warmup := createTestChallenge(t, "warmup", testPart{"flag{hello}", 100})

	res, err := SubmitFlag(teamA.ID, teamA.LeaderID, warmup.ID, "flag{hello}", "127.0.0.1")
	if err != nil {
		t.Fatalf("SubmitFlag failed: %v", err)
	}
	if res.Outcome != OutcomeAccepted {
		t.Fatalf("outcome = %s, want accepted", res.Outcome)
	}
	if res.CreditedPoints != 100 {
		t.Fatalf("credited points = %d, want 100", res.CreditedPoints)
	}
	if !res.ChallengeSolved {
		t.Fatalf("expected challenge to be fully solved")
	}

	score, err := CurrentScore(database.DB, teamA.ID)
	if err != nil {
		t.Fatalf("CurrentScore failed: %v", err)
	}
	if score != 100 {
		t.Fatalf("score = %d, want 100", score)
	}

	// Replay by the same team credits nothing.
	res, err = SubmitFlag(teamA.ID, teamA.LeaderID, warmup.ID, "flag{hello}", "127.0.0.1")
	if err != nil {
		t.Fatalf("SubmitFlag failed: %v", err)
	}
	if res.Outcome != OutcomeAlreadySolved {
		t.Fatalf("outcome = %s, want already_solved", res.Outcome)
	}
	score, _ = CurrentScore(database.DB, teamA.ID)
	if score != 100 {
		t.Fatalf("score after replay = %d, want 100", score)
	}

	// Wrong answer for another team scores nothing.
	res, err = SubmitFlag(teamB.ID, teamB.LeaderID, warmup.ID, "flag{wrong}", "127.0.0.1")
	if err != nil {
		t.Fatalf("SubmitFlag failed: %v", err)
	}
	if res.Outcome != OutcomeIncorrect {
		t.Fatalf("outcome = %s, want incorrect", res.Outcome)
	}
	score, _ = CurrentScore(database.DB, teamB.ID)
	if score != 0 {
		t.Fatalf("team B score = %d, want 0", score)
	}

	if n := countRows(t, &models.Submission{}, ""); n != 1 {
		t.Fatalf("submissions = %d, want 1", n)
	}
	if n := countRows(t, &models.SubmissionLog{}, ""); n != 3 {
		t.Fatalf("submission logs = %d, want 3", n)
	}
}

func TestSubmitFlagIsCaseSensitive(t *testing.T) {
	newTestDB(t)
	team := createTestTeam(t, "team-case")
	challenge := createTestChallenge(t, "case", testPart{"flag{Hello}", 50})

	res, err := SubmitFlag(team.ID, team.LeaderID, challenge.ID, "flag{hello}", "")
	if err != nil {
		t.Fatalf("SubmitFlag failed: %v", err)
	}
	if res.Outcome != OutcomeIncorrect {
		t.Fatalf("outcome = %s, want incorrect", res.Outcome)
	}
}

func TestSubmitFlagMultiPart(t *testing.T) {
	newTestDB(t)
	team := createTestTeam(t, "team-multi")
	challenge := createTestChallenge(t, "two-parts",
		testPart{"flag{part1}", 40},
		testPart{"flag{part2}", 60},
	)

	res, err := SubmitFlag(team.ID, team.LeaderID, challenge.ID, "flag{part1}", "")
	if err != nil {
		t.Fatalf("SubmitFlag failed: %v", err)
	}
	if res.Outcome != OutcomeAccepted || res.CreditedPoints != 40 {
		t.Fatalf("part 1: outcome %s points %d, want accepted 40", res.Outcome, res.CreditedPoints)
	}
	if res.ChallengeSolved {
		t.Fatalf("challenge should not be fully solved after one part")
	}
	requireSolved(t, team.ID, challenge.ID, false)

	// Re-submitting the credited part does not credit again.
	res, _ = SubmitFlag(team.ID, team.LeaderID, challenge.ID, "flag{part1}", "")
	if res.Outcome != OutcomeIncorrect {
		t.Fatalf("replaying credited part: outcome %s, want incorrect", res.Outcome)
	}
	if score, _ := CurrentScore(database.DB, team.ID); score != 40 {
		t.Fatalf("score = %d, want 40", score)
	}

	res, err = SubmitFlag(team.ID, team.LeaderID, challenge.ID, "flag{part2}", "")
	if err != nil {
		t.Fatalf("SubmitFlag failed: %v", err)
	}
	if res.Outcome != OutcomeAccepted || res.CreditedPoints != 60 {
		t.Fatalf("part 2: outcome %s points %d, want accepted 60", res.Outcome, res.CreditedPoints)
	}
	if !res.ChallengeSolved {
		t.Fatalf("challenge should be fully solved after both parts")
	}
	requireSolved(t, team.ID, challenge.ID, true)

	if score, _ := CurrentScore(database.DB, team.ID); score != 100 {
		t.Fatalf("final score = %d, want 100", score)
	}
	if n := countRows(t, &models.PointHistory{}, "team_id = ?", team.ID); n != 2 {
		t.Fatalf("ledger entries = %d, want 2", n)
	}

	res, _ = SubmitFlag(team.ID, team.LeaderID, challenge.ID, "flag{part2}", "")
	if res.Outcome != OutcomeAlreadySolved {
		t.Fatalf("after full solve: outcome %s, want already_solved", res.Outcome)
	}
}

func TestSubmitFlagLockedChallenge(t *testing.T) {
	newTestDB(t)
	team := createTestTeam(t, "team-locked")
	gate := createTestChallenge(t, "gate", testPart{"flag{gate}", 50})
	locked := createTestChallenge(t, "locked", testPart{"flag{locked}", 100})

	requiredID := gate.ID
	cond := models.UnlockCondition{
		ChallengeID:         locked.ID,
		Type:                models.UnlockChallengeSolved,
		RequiredChallengeID: &requiredID,
	}
	if err := database.DB.Create(&cond).Error; err != nil {
		t.Fatalf("failed to create condition: %v", err)
	}

	// A correct answer is still rejected while locked.
	res, err := SubmitFlag(team.ID, team.LeaderID, locked.ID, "flag{locked}", "")
	if err != nil {
		t.Fatalf("SubmitFlag failed: %v", err)
	}
	if res.Outcome != OutcomeLocked {
		t.Fatalf("outcome = %s, want locked", res.Outcome)
	}
	if n := countRows(t, &models.PointHistory{}, "team_id = ?", team.ID); n != 0 {
		t.Fatalf("ledger entries = %d, want 0", n)
	}

	if _, err := SubmitFlag(team.ID, team.LeaderID, gate.ID, "flag{gate}", ""); err != nil {
		t.Fatalf("SubmitFlag failed: %v", err)
	}

	res, err = SubmitFlag(team.ID, team.LeaderID, locked.ID, "flag{locked}", "")
	if err != nil {
		t.Fatalf("SubmitFlag failed: %v", err)
	}
	if res.Outcome != OutcomeAccepted {
		t.Fatalf("outcome after unlocking = %s, want accepted", res.Outcome)
	}
	if score, _ := CurrentScore(database.DB, team.ID); score != 150 {
		t.Fatalf("score = %d, want 150", score)
	}
}

func TestSubmitFlagConcurrentDuplicates(t *testing.T) {
	newTestDB(t)
	team := createTestTeam(t, "team-race")
	challenge := createTestChallenge(t, "race", testPart{"flag{race}", 100})

	const attempts = 8
	outcomes := make([]SubmissionOutcome, attempts)
	errs := make([]error, attempts)

	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := SubmitFlag(team.ID, team.LeaderID, challenge.ID, "flag{race}", "")
			outcomes[i] = res.Outcome
			errs[i] = err
		}(i)
	}
	wg.Wait()

	accepted := 0
	for i := 0; i < attempts; i++ {
		if errs[i] != nil {
			t.Fatalf("SubmitFlag %d failed: %v", i, errs[i])
		}
		if outcomes[i] == OutcomeAccepted {
			accepted++
		} else if outcomes[i] != OutcomeAlreadySolved {
			t.Fatalf("SubmitFlag %d: outcome %s, want accepted or already_solved", i, outcomes[i])
		}
	}
	if accepted != 1 {
		t.Fatalf("accepted = %d, want exactly 1", accepted)
	}

	if n := countRows(t, &models.Submission{}, "team_id = ?", team.ID); n != 1 {
		t.Fatalf("correct submissions = %d, want 1", n)
	}
	if n := countRows(t, &models.PointHistory{}, "team_id = ?", team.ID); n != 1 {
		t.Fatalf("ledger entries = %d, want 1", n)
	}
	if score, _ := CurrentScore(database.DB, team.ID); score != 100 {
		t.Fatalf("score = %d, want 100", score)
	}
}

func TestSubmitFlagUnknownChallenge(t *testing.T) {
	newTestDB(t)
	team := createTestTeam(t, "team-missing")

	_, err := SubmitFlag(team.ID, team.LeaderID, 9999, "flag{x}", "")
	if !errors.Is(err, utils.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
