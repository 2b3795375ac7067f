// file: models/submission.go
package models

import (
	"time"
)

// Submission records a correct credit for one flag part. At most one row may
// exist per (team, flag spec): the unique_team_flag_spec index is what turns
// a concurrent duplicate submission into a duplicate-key error instead of a
// double credit.
type Submission struct {
	ID          uint64 `gorm:"primarykey"`
	ChallengeID uint32 `gorm:"index;not null"`
	FlagSpecID  uint32 `gorm:"uniqueIndex:unique_team_flag_spec;not null"`
	TeamID      uint32 `gorm:"uniqueIndex:unique_team_flag_spec;not null"`
	UserID      uint32 `gorm:"not null"`
	Points      uint   `gorm:"not null"`
	SolvedAt    time.Time
}

func (Submission) TableName() string {
	return "nebulactf_submission"
}
