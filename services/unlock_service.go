// file: services/unlock_service.go
package services

import (
	"time"

	"NebulaCTF/config"
	"NebulaCTF/models"
	"gorm.io/gorm"
)

// Unlock evaluation is a pure read-side projection over the team's credited
// flag parts and the competition clock. It is re-evaluated on every access,
// never cached, because solve state changes under it all the time.

// IsUnlocked reports whether every unlock condition of the challenge holds
// for the team. A challenge with no conditions is unconditionally unlocked.
func IsUnlocked(db *gorm.DB, teamID uint32, challengeID uint32) (bool, error) {
	unmet, err := RemainingConditions(db, teamID, challengeID)
	if err != nil {
		return false, err
	}
	return len(unmet) == 0, nil
}

// RemainingConditions returns the conditions the team has not met yet, for
// UI messaging.
func RemainingConditions(db *gorm.DB, teamID uint32, challengeID uint32) ([]models.UnlockCondition, error) {
	var conditions []models.UnlockCondition
	if err := db.Where("challenge_id = ?", challengeID).Find(&conditions).Error; err != nil {
		return nil, err
	}

	var unmet []models.UnlockCondition
	for _, cond := range conditions {
		met, err := conditionMet(db, teamID, cond)
		if err != nil {
			return nil, err
		}
		if !met {
			unmet = append(unmet, cond)
		}
	}
	return unmet, nil
}

func conditionMet(db *gorm.DB, teamID uint32, cond models.UnlockCondition) (bool, error) {
	switch cond.Type {
	case models.UnlockChallengeSolved:
		if cond.RequiredChallengeID == nil {
			// Unresolved reference, treat as unmet rather than open.
			return false, nil
		}
		return ChallengeFullySolved(db, teamID, *cond.RequiredChallengeID)
	case models.UnlockTimeRemainder:
		if cond.TimeThresholdSeconds == nil || config.C.CompetitionEnd.IsZero() {
			return false, nil
		}
		remaining := time.Until(config.C.CompetitionEnd)
		return remaining <= time.Duration(*cond.TimeThresholdSeconds)*time.Second, nil
	}
	return false, nil
}

// ChallengeFullySolved reports whether the team has been credited for every
// flag part of the challenge. Partial credit on a multi-part challenge does
// not count as solved.
func ChallengeFullySolved(db *gorm.DB, teamID uint32, challengeID uint32) (bool, error) {
	var totalParts int64
	if err := db.Model(&models.FlagSpec{}).
		Where("challenge_id = ?", challengeID).
		Count(&totalParts).Error; err != nil {
		return false, err
	}
	if totalParts == 0 {
		return false, nil
	}

	var credited int64
	if err := db.Model(&models.Submission{}).
		Where("challenge_id = ? AND team_id = ?", challengeID, teamID).
		Count(&credited).Error; err != nil {
		return false, err
	}
	return credited == totalParts, nil
}
