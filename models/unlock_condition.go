// file: models/unlock_condition.go
package models

import (
	"time"
)

type UnlockConditionType string

const (
	// UnlockChallengeSolved gates on another challenge being fully credited
	// (every FlagSpec of it) by the team.
	UnlockChallengeSolved UnlockConditionType = "CHALLENGE_SOLVED"
	// UnlockTimeRemainder gates on the remaining competition time having
	// dropped to the threshold or below.
	UnlockTimeRemainder UnlockConditionType = "TIME_REMAINDER"
)

type UnlockCondition struct {
	ID                   uint32              `gorm:"primarykey"`
	ChallengeID          uint32              `gorm:"index;not null"`
	Type                 UnlockConditionType `gorm:"size:30;not null"`
	RequiredChallengeID  *uint32
	TimeThresholdSeconds *int64
	CreatedAt            time.Time
}

func (UnlockCondition) TableName() string {
	return "nebulactf_unlock_condition"
}
