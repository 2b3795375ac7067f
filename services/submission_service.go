// file: services/submission_service.go
package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"NebulaCTF/database"
	"NebulaCTF/models"
	"NebulaCTF/utils"
	"gorm.io/gorm"
)

type SubmissionOutcome string

const (
	OutcomeAccepted      SubmissionOutcome = "accepted"
	OutcomeAlreadySolved SubmissionOutcome = "already_solved"
	OutcomeIncorrect     SubmissionOutcome = "incorrect"
	OutcomeLocked        SubmissionOutcome = "locked"
)

type SubmitResult struct {
	Outcome         SubmissionOutcome `json:"outcome"`
	CreditedPoints  uint              `json:"credited_points,omitempty"`
	CreditedPart    uint16            `json:"credited_part,omitempty"`
	ChallengeSolved bool              `json:"challenge_solved"`
}

// SubmitFlag validates one answer for the team. Order of checks: unlock gate,
// already-fully-credited short circuit, exact match against each uncredited
// flag part. A match writes the Submission and its ledger credit in one
// transaction; the unique index on (team_id, flag_spec_id) guarantees that
// of N concurrent identical submissions exactly one commits and the rest
// observe a duplicate key, reported as already solved.
func SubmitFlag(teamID, userID, challengeID uint32, answer, ip string) (SubmitResult, error) {
	var challenge models.Challenge
	err := database.DB.Preload("FlagSpecs").First(&challenge, challengeID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return SubmitResult{}, utils.ErrNotFound
		}
		return SubmitResult{}, err
	}

	unlocked, err := IsUnlocked(database.DB, teamID, challengeID)
	if err != nil {
		return SubmitResult{}, err
	}
	if !unlocked {
		logAttempt(challengeID, teamID, userID, answer, models.FlagResultLocked, ip)
		return SubmitResult{Outcome: OutcomeLocked}, nil
	}

	credited, err := creditedSpecIDs(database.DB, teamID, challengeID)
	if err != nil {
		return SubmitResult{}, err
	}
	if len(credited) >= len(challenge.FlagSpecs) && len(challenge.FlagSpecs) > 0 {
		logAttempt(challengeID, teamID, userID, answer, models.FlagResultDuplicate, ip)
		return SubmitResult{Outcome: OutcomeAlreadySolved, ChallengeSolved: true}, nil
	}

	// Exact, case-sensitive comparison against each uncredited part.
	var matched *models.FlagSpec
	for i := range challenge.FlagSpecs {
		spec := &challenge.FlagSpecs[i]
		if credited[spec.ID] {
			continue
		}
		if spec.Value == answer {
			matched = spec
			break
		}
	}

	if matched == nil {
		logAttempt(challengeID, teamID, userID, answer, models.FlagResultWrong, ip)
		return SubmitResult{Outcome: OutcomeIncorrect}, nil
	}

	submission := models.Submission{
		ChallengeID: challengeID,
		FlagSpecID:  matched.ID,
		TeamID:      teamID,
		UserID:      userID,
		Points:      matched.Points,
		SolvedAt:    time.Now(),
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		// Atomic check-and-insert: the unique index decides the winner.
		if err := tx.Create(&submission).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return utils.ErrConflict
			}
			return err
		}
		note := fmt.Sprintf("solved %s (part %d)", challenge.Slug, matched.PartIndex)
		_, err := AppendPointEntry(tx, teamID, int(matched.Points), models.ReasonFlagCredit, submission.ID, note)
		return err
	})
	if err != nil {
		if errors.Is(err, utils.ErrConflict) {
			// A concurrent duplicate won the race; this part is credited.
			logAttempt(challengeID, teamID, userID, answer, models.FlagResultDuplicate, ip)
			return SubmitResult{Outcome: OutcomeAlreadySolved}, nil
		}
		return SubmitResult{}, err
	}

	logAttempt(challengeID, teamID, userID, answer, models.FlagResultCorrect, ip)

	var team models.Team
	if err := database.DB.First(&team, teamID).Error; err == nil {
		AddSolveToFeed(submission, challenge, team)
	}
	UpdateScoreboardCache()

	solved, err := ChallengeFullySolved(database.DB, teamID, challengeID)
	if err != nil {
		solved = false
	}

	return SubmitResult{
		Outcome:         OutcomeAccepted,
		CreditedPoints:  matched.Points,
		CreditedPart:    matched.PartIndex,
		ChallengeSolved: solved,
	}, nil
}

// creditedSpecIDs returns the set of flag spec IDs already credited to the
// team for the challenge.
func creditedSpecIDs(db *gorm.DB, teamID, challengeID uint32) (map[uint32]bool, error) {
	var ids []uint32
	err := db.Model(&models.Submission{}).
		Where("challenge_id = ? AND team_id = ?", challengeID, teamID).
		Pluck("flag_spec_id", &ids).Error
	if err != nil {
		return nil, err
	}
	set := make(map[uint32]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

// logAttempt records every attempt for auditing. Failures to log never block
// the submission flow.
func logAttempt(challengeID, teamID, userID uint32, flag string, result models.FlagResult, ip string) {
	entry := models.SubmissionLog{
		ChallengeID:    challengeID,
		TeamID:         teamID,
		UserID:         userID,
		SubmittedFlag:  flag,
		FlagResult:     result,
		SubmissionTime: time.Now(),
		IPAddress:      ip,
	}
	if err := database.DB.Create(&entry).Error; err != nil {
		log.Printf("Failed to record submission log: %v", err)
	}
}
