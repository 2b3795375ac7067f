// file: models/point_history.go
package models

import (
	"time"
)

type PointReason string

const (
	ReasonFlagCredit   PointReason = "flag_credit"
	ReasonHintPurchase PointReason = "hint_purchase"
	ReasonAdminAdjust  PointReason = "admin_adjust"
)

// PointHistory is the append-only scoring ledger. A team's current score is
// always the sum of its deltas; rows are never updated or deleted, and
// corrections are written as new offsetting entries.
type PointHistory struct {
	ID        uint64      `gorm:"primarykey"`
	TeamID    uint32      `gorm:"index:idx_team_time;not null"`
	Delta     int         `gorm:"not null"`
	Reason    PointReason `gorm:"size:30;not null"`
	RefID     uint64      `gorm:"default:0"`
	Note      string      `gorm:"size:255"`
	CreatedAt time.Time   `gorm:"index:idx_team_time"`
}

func (PointHistory) TableName() string {
	return "nebulactf_point_history"
}
