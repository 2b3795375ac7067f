// file: models/solve_feed.go
package models

import (
	"time"
)

// SolveFeed is a denormalized cache of recent correct credits for the
// public activity feed.
type SolveFeed struct {
	ID            uint64    `gorm:"primarykey"`
	ChallengeID   uint32    `gorm:"not null"`
	ChallengeName string    `gorm:"size:100;not null"`
	TeamID        uint32    `gorm:"not null"`
	TeamName      string    `gorm:"size:100;not null"`
	Points        uint      `gorm:"not null"`
	SolvingTime   time.Time `gorm:"index"`
}

func (SolveFeed) TableName() string {
	return "nebulactf_solve_feed"
}
