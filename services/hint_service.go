// file: services/hint_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"NebulaCTF/database"
	"NebulaCTF/models"
	"NebulaCTF/utils"
	"gorm.io/gorm"
)

type PurchaseOutcome string

const (
	PurchaseGranted            PurchaseOutcome = "granted"
	PurchaseAlreadyOwned       PurchaseOutcome = "already_owned"
	PurchaseInsufficientPoints PurchaseOutcome = "insufficient_points"
)

// PurchaseHint deducts the hint cost exactly once per (team, hint) and
// returns the hint content. Re-purchase is idempotent: owners get the
// content again with no new debit. The funds check happens before the
// insert; the unique index on (team_id, hint_id) plus the single
// TeamHint+ledger transaction is what prevents a double debit under
// concurrent purchases.
func PurchaseHint(teamID, hintID uint32) (PurchaseOutcome, *models.Hint, error) {
	var hint models.Hint
	if err := database.DB.First(&hint, hintID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, utils.ErrNotFound
		}
		return "", nil, err
	}

	var existing models.TeamHint
	err := database.DB.Where("team_id = ? AND hint_id = ?", teamID, hintID).First(&existing).Error
	if err == nil {
		return PurchaseAlreadyOwned, &hint, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil, err
	}

	score, err := CurrentScore(database.DB, teamID)
	if err != nil {
		return "", nil, err
	}
	if score < int(hint.Cost) {
		return PurchaseInsufficientPoints, nil, nil
	}

	purchase := models.TeamHint{
		TeamID:      teamID,
		HintID:      hintID,
		PurchasedAt: time.Now(),
	}
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&purchase).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return utils.ErrConflict
			}
			return err
		}
		note := fmt.Sprintf("hint %d purchased", hint.ID)
		_, err := AppendPointEntry(tx, teamID, -int(hint.Cost), models.ReasonHintPurchase, uint64(hint.ID), note)
		return err
	})
	if err != nil {
		if errors.Is(err, utils.ErrConflict) {
			// Lost a concurrent purchase race; the hint is owned and was
			// debited exactly once by the winner.
			return PurchaseAlreadyOwned, &hint, nil
		}
		return "", nil, err
	}

	UpdateScoreboardCache()
	return PurchaseGranted, &hint, nil
}

// TeamOwnsHint reports whether the team already purchased the hint.
func TeamOwnsHint(teamID, hintID uint32) (bool, error) {
	var count int64
	err := database.DB.Model(&models.TeamHint{}).
		Where("team_id = ? AND hint_id = ?", teamID, hintID).
		Count(&count).Error
	return count > 0, err
}
