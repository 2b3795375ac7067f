// file: models/submission_log.go
package models

import (
	"time"
)

type FlagResult string

const (
	FlagResultCorrect   FlagResult = "correct"
	FlagResultWrong     FlagResult = "wrong"
	FlagResultDuplicate FlagResult = "duplicate"
	FlagResultLocked    FlagResult = "locked"
)

// SubmissionLog keeps every attempt, correct or not, for auditing and
// anti-cheat review. Append-only.
type SubmissionLog struct {
	ID             uint64     `gorm:"primarykey"`
	ChallengeID    uint32     `gorm:"index;not null"`
	TeamID         uint32     `gorm:"index;not null"`
	UserID         uint32     `gorm:"not null"`
	SubmittedFlag  string     `gorm:"size:255;not null"`
	FlagResult     FlagResult `gorm:"size:20;not null"`
	SubmissionTime time.Time
	IPAddress      string `gorm:"size:45"`
	Suspected      bool   `gorm:"default:false"`
}

func (SubmissionLog) TableName() string {
	return "nebulactf_submission_log"
}
