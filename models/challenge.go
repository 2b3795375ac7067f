// file: models/challenge.go
package models

import (
	"time"
)

type ChallengeCategory string
type ChallengeDifficulty string

const (
	CategoryWeb       ChallengeCategory = "web"
	CategoryCrypto    ChallengeCategory = "crypto"
	CategoryPwn       ChallengeCategory = "pwn"
	CategoryReverse   ChallengeCategory = "reverse"
	CategoryForensics ChallengeCategory = "forensics"
	CategoryMisc      ChallengeCategory = "misc"

	ChallengeDifficultyEasy   ChallengeDifficulty = "easy"
	ChallengeDifficultyMedium ChallengeDifficulty = "medium"
	ChallengeDifficultyHard   ChallengeDifficulty = "hard"
)

// ValidCategory reports whether s is one of the descriptor category values.
func ValidCategory(s string) bool {
	switch ChallengeCategory(s) {
	case CategoryWeb, CategoryCrypto, CategoryPwn, CategoryReverse, CategoryForensics, CategoryMisc:
		return true
	}
	return false
}

func ValidDifficulty(s string) bool {
	switch ChallengeDifficulty(s) {
	case ChallengeDifficultyEasy, ChallengeDifficultyMedium, ChallengeDifficultyHard:
		return true
	}
	return false
}

// Challenge is created and updated only by the ingestion engine. The runtime
// submission flow never mutates it.
type Challenge struct {
	ID               uint32              `gorm:"primarykey"`
	Slug             string              `gorm:"size:100;uniqueIndex;not null"`
	Title            string              `gorm:"size:100;not null"`
	Category         ChallengeCategory   `gorm:"size:20;not null"`
	Difficulty       ChallengeDifficulty `gorm:"size:20;not null;default:'medium'"`
	Description      string              `gorm:"type:text;not null"`
	Points           uint                `gorm:"not null"`
	Link             string              `gorm:"size:255"`
	SourcePath       string              `gorm:"size:255"`
	FlagSpecs        []FlagSpec          `gorm:"foreignKey:ChallengeID"`
	Hints            []Hint              `gorm:"foreignKey:ChallengeID"`
	UnlockConditions []UnlockCondition   `gorm:"foreignKey:ChallengeID"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (Challenge) TableName() string {
	return "nebulactf_challenge"
}
