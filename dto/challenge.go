// file: dto/challenge.go
package dto

import "strings"

// ========== Request DTOs ==========

type SubmitFlagReq struct {
	Flag string `json:"flag"`
}

func (r *SubmitFlagReq) Normalize() {
	// Flags are matched case-sensitively; only surrounding whitespace from
	// copy-paste is stripped.
	r.Flag = strings.TrimSpace(r.Flag)
}

// ========== Response DTOs ==========

type ChallengeItemResp struct {
	ID          uint32 `json:"id"`
	Slug        string `json:"slug"`
	Title       string `json:"title"`
	Category    string `json:"category"`
	Difficulty  string `json:"difficulty"`
	Points      uint   `json:"points"`
	PartCount   int    `json:"part_count"`
	SolvedParts int    `json:"solved_parts"`
	Solved      bool   `json:"solved"`
	Unlocked    bool   `json:"unlocked"`
}

type UnlockConditionResp struct {
	Type                 string `json:"type"`
	RequiredChallenge    string `json:"required_challenge,omitempty"`
	TimeThresholdSeconds *int64 `json:"time_threshold_seconds,omitempty"`
}

type HintResp struct {
	ID      uint32 `json:"id"`
	Ordinal uint16 `json:"ordinal"`
	Cost    uint   `json:"cost"`
	Owned   bool   `json:"owned"`
	// Content is only populated once the team owns the hint.
	Content string `json:"content,omitempty"`
}

type FlagPartResp struct {
	PartIndex uint16 `json:"part_index"`
	Points    uint   `json:"points"`
	Credited  bool   `json:"credited"`
}

type ChallengeDetailResp struct {
	ID          uint32         `json:"id"`
	Slug        string         `json:"slug"`
	Title       string         `json:"title"`
	Category    string         `json:"category"`
	Difficulty  string         `json:"difficulty"`
	Description string         `json:"description"`
	Points      uint           `json:"points"`
	Link        string         `json:"link,omitempty"`
	Parts       []FlagPartResp `json:"parts"`
	Hints       []HintResp     `json:"hints"`
	Solved      bool           `json:"solved"`
}

// LockedChallengeResp is returned instead of the detail when the unlock
// gate denies access; it carries only the unmet conditions, never the
// challenge content.
type LockedChallengeResp struct {
	ID                  uint32                `json:"id"`
	Slug                string                `json:"slug"`
	Title               string                `json:"title"`
	RemainingConditions []UnlockConditionResp `json:"remaining_conditions"`
}
