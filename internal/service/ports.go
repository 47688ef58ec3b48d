package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"guias-service/internal/model"
	"guias-service/internal/repository"
)

// The engines depend on narrow store interfaces instead of the concrete gorm
// repositories so their invariants can be tested against in-memory fakes.

type GuideStore interface {
	ListGuides(ctx context.Context) ([]model.Guide, error)
	ActiveAssignedCounts(ctx context.Context) (map[uuid.UUID]int64, error)
}

type DriverStore interface {
	ListEligibleUnassigned(ctx context.Context) ([]model.Driver, error)
	ListEligibleAssigned(ctx context.Context) ([]model.Driver, error)
	AssignToGuide(ctx context.Context, driverID, guideID uuid.UUID) error
}

type RecordStore interface {
	CountByWeek(ctx context.Context, weekLabel string) (int64, error)
	List(ctx context.Context, filter repository.RecordFilter) ([]model.WeeklyHistoryRecord, error)
	ListCloneCandidates(ctx context.Context, weekLabel string) ([]model.WeeklyHistoryRecord, error)
	DriverIDsWithWeek(ctx context.Context, weekLabel string) (map[uuid.UUID]struct{}, error)
	InsertBatch(ctx context.Context, records []model.WeeklyHistoryRecord) (int64, error)
	ApplyEarnings(ctx context.Context, updates []repository.EarningsUpdate) error
	LatestForDriver(ctx context.Context, driverID uuid.UUID) (*model.WeeklyHistoryRecord, error)
	GetByID(ctx context.Context, scope model.Scope, id uuid.UUID) (*model.WeeklyHistoryRecord, error)
	UpdateCallDate(ctx context.Context, id uuid.UUID, callDate *time.Time) error
	UpdateAction(ctx context.Context, id uuid.UUID, actionID uuid.UUID) error
	UpdateTierOverride(ctx context.Context, id uuid.UUID, tier *model.TrackingTier) error
	AddAnnotation(ctx context.Context, annotation *model.RecordAnnotation) error
}

type FeedStore interface {
	QueryWindow(ctx context.Context, startUTC, endUTC time.Time) ([]model.EarningsFeedEntry, error)
}

type TierStore interface {
	ListRules(ctx context.Context) ([]model.TrackingTierRule, error)
}

type ActionStore interface {
	ByCode(ctx context.Context, code string) (*model.ImplementedAction, error)
	ByID(ctx context.Context, id uuid.UUID) (*model.ImplementedAction, error)
}
