// file: models/flag_spec.go
package models

import (
	"time"
)

// FlagSpec is one unit of a challenge's expected answer with its own point
// weight. Single-flag challenges have exactly one spec carrying the full
// point value. Parts keep a stable ordinal so re-ingestion updates the same
// row and credited submissions stay attached.
type FlagSpec struct {
	ID          uint32 `gorm:"primarykey"`
	ChallengeID uint32 `gorm:"uniqueIndex:unique_challenge_part;not null"`
	PartIndex   uint16 `gorm:"uniqueIndex:unique_challenge_part;not null"`
	Value       string `gorm:"size:255;not null"`
	Points      uint   `gorm:"not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (FlagSpec) TableName() string {
	return "nebulactf_flag_spec"
}
