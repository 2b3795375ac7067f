// file: models/scoreboard.go
package models

import (
	"time"
)

// Scoreboard is a materialized cache of the leaderboard derived from the
// point history ledger. It is rebuilt wholesale by the ledger service; the
// ledger itself stays the single source of truth.
type Scoreboard struct {
	ID            uint    `gorm:"primarykey"`
	TeamID        uint32  `gorm:"not null"`
	TeamName      string  `gorm:"size:100;not null"`
	Score         int     `gorm:"not null"`
	LastScoreTime *time.Time
	Rank          uint `gorm:"not null"`
	UpdatedAt     time.Time
}

func (Scoreboard) TableName() string {
	return "nebulactf_scoreboard"
}
