package model

import (
	"time"

	"github.com/google/uuid"
)

type GuideBrief struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

type DriverBrief struct {
	ID             uuid.UUID `json:"id"`
	FullName       string    `json:"full_name"`
	DocumentNumber string    `json:"document_number"`
}

type ActionBrief struct {
	ID   uuid.UUID `json:"id"`
	Code string    `json:"code"`
	Name string    `json:"name"`
}

type GuideLoadView struct {
	Guide GuideBrief `json:"guide"`
	Load  int64      `json:"load"`
}

type TierView struct {
	Tier       TrackingTier `json:"tier"`
	Color      string       `json:"color"`
	Overridden bool         `json:"overridden"`
}

type WeeklyRecordView struct {
	ID            uuid.UUID          `json:"id"`
	WeekLabel     string             `json:"week_label"`
	Driver        DriverBrief        `json:"driver"`
	Guide         GuideBrief         `json:"guide"`
	CallDate      *time.Time         `json:"call_date"`
	Action        *ActionBrief       `json:"action"`
	CashEarnings  EarningsAmount     `json:"cash_earnings"`
	AppEarnings   EarningsAmount     `json:"app_earnings"`
	TotalEarnings EarningsAmount     `json:"total_earnings"`
	Tier          *TierView          `json:"tier"`
	SchoolStarted bool               `json:"school_started"`
	Annotations   []RecordAnnotation `json:"annotations"`
}

// DistributionReport summarizes one session bootstrap: the synchronizer's
// clone pass followed by the distributor's two phases.
type DistributionReport struct {
	Week        string `json:"week"`
	Suppressed  bool   `json:"suppressed"`
	SyncSkipped bool   `json:"sync_skipped"`
	Cloned      int64  `json:"cloned"`
	Assigned    int64  `json:"assigned"`
	Created     int64  `json:"created"`
	Rescued     int64  `json:"rescued"`
	NoGuides    bool   `json:"no_guides"`
}
