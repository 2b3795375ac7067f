// file: models/hint.go
package models

import (
	"time"
)

type Hint struct {
	ID          uint32 `gorm:"primarykey"`
	ChallengeID uint32 `gorm:"uniqueIndex:unique_challenge_hint;not null"`
	Ordinal     uint16 `gorm:"uniqueIndex:unique_challenge_hint;not null"`
	Content     string `gorm:"type:text;not null"`
	Cost        uint   `gorm:"not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (Hint) TableName() string {
	return "nebulactf_hint"
}

// TeamHint marks a hint as purchased by a team. Creation is the only
// mutation; purchases are never reversed. The composite unique index is the
// guard that makes a concurrent double purchase resolve to a single debit.
type TeamHint struct {
	ID          uint64 `gorm:"primarykey"`
	TeamID      uint32 `gorm:"uniqueIndex:unique_team_hint;not null"`
	HintID      uint32 `gorm:"uniqueIndex:unique_team_hint;not null"`
	PurchasedAt time.Time
}

func (TeamHint) TableName() string {
	return "nebulactf_team_hint"
}
