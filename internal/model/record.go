package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DefaultActionCode is the seeded onboarding-training action every record
// falls back to when no action was ever implemented for the driver.
const DefaultActionCode = "capacitacion_escuela"

type ImplementedAction struct {
	ID   uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	Code string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"code"`
	Name string    `gorm:"type:varchar(255);not null" json:"name"`
}

func (ImplementedAction) TableName() string {
	return "implemented_actions"
}

// WeeklyHistoryRecord is the per-driver, per-week tracking row. At most one
// row may exist per (driver_id, week_label); the schema enforces it and batch
// inserts treat conflicts as no-ops, so concurrent week initialization stays
// additive.
type WeeklyHistoryRecord struct {
	ID            uuid.UUID        `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	DriverID      uuid.UUID        `gorm:"type:uuid;not null" json:"driver_id"`
	GuideID       uuid.UUID        `gorm:"type:uuid;not null" json:"guide_id"`
	WeekLabel     string           `gorm:"type:varchar(8);not null" json:"week_label"`
	CallDate      *time.Time       `json:"call_date"`
	ActionID      *uuid.UUID       `gorm:"type:uuid" json:"action_id"`
	CashEarnings  *decimal.Decimal `gorm:"type:decimal(12,2)" json:"cash_earnings"`
	AppEarnings   *decimal.Decimal `gorm:"type:decimal(12,2)" json:"app_earnings"`
	TotalEarnings *decimal.Decimal `gorm:"type:decimal(12,2)" json:"total_earnings"`
	TierOverride  *TrackingTier    `gorm:"type:varchar(16)" json:"tier_override"`
	SchoolStarted bool             `gorm:"not null;default:false" json:"school_started"`
	CreatedAt     time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time        `gorm:"autoUpdateTime" json:"updated_at"`

	Driver      *Driver            `gorm:"foreignKey:DriverID"`
	Guide       *Guide             `gorm:"foreignKey:GuideID"`
	Action      *ImplementedAction `gorm:"foreignKey:ActionID"`
	Annotations []RecordAnnotation `gorm:"foreignKey:RecordID"`
}

func (WeeklyHistoryRecord) TableName() string {
	return "weekly_history_records"
}

func (r *WeeklyHistoryRecord) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

type RecordAnnotation struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	RecordID  uuid.UUID `gorm:"type:uuid;not null" json:"record_id"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	AuthorID  uuid.UUID `gorm:"type:uuid;not null" json:"author_id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (RecordAnnotation) TableName() string {
	return "weekly_record_annotations"
}

func (a *RecordAnnotation) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

type EarningsFeedEntry struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	DocNumber     string          `gorm:"type:varchar(32)" json:"doc_number"`
	FullName      string          `gorm:"type:varchar(255)" json:"full_name"`
	CashAmount    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"cash_amount"`
	AppAmount     decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"app_amount"`
	TransactionAt time.Time       `gorm:"not null" json:"transaction_at"`
}

func (EarningsFeedEntry) TableName() string {
	return "earnings_feed"
}
