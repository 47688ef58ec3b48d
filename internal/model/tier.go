package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TrackingTier string

const (
	TierDaily  TrackingTier = "DIARIO"
	TierClose  TrackingTier = "CERCANO"
	TierWeekly TrackingTier = "SEMANAL"
)

func (t TrackingTier) Valid() bool {
	switch t {
	case TierDaily, TierClose, TierWeekly:
		return true
	}
	return false
}

// TrackingTierRule classifies follow-up urgency from a driver's prior-week
// total earnings. Rules are evaluated in position order; the first rule whose
// bounds contain the total (and whose shift scope, if any, matches) wins.
type TrackingTierRule struct {
	ID         uuid.UUID        `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	Position   int              `gorm:"not null" json:"position"`
	LowerBound decimal.Decimal  `gorm:"type:decimal(12,2);not null;default:0" json:"lower_bound"`
	UpperBound *decimal.Decimal `gorm:"type:decimal(12,2)" json:"upper_bound"`
	Tier       TrackingTier     `gorm:"type:varchar(16);not null" json:"tier"`
	Color      string           `gorm:"type:varchar(16);not null" json:"color"`
	Shift      *AssignmentShift `gorm:"type:assignment_shift" json:"shift"`
}

func (TrackingTierRule) TableName() string {
	return "tracking_tier_rules"
}

// Matches reports whether the rule applies to the given prior-week total and
// shift. An open upper bound matches everything at or above the lower bound.
func (r TrackingTierRule) Matches(total decimal.Decimal, shift *AssignmentShift) bool {
	if r.Shift != nil {
		if shift == nil || *shift != *r.Shift {
			return false
		}
	}
	if total.LessThan(r.LowerBound) {
		return false
	}
	if r.UpperBound != nil && total.GreaterThan(*r.UpperBound) {
		return false
	}
	return true
}
