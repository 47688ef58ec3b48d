package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"guias-service/internal/model"
)

type RecordRepository struct {
	db *gorm.DB
}

func NewRecordRepository(db *gorm.DB) *RecordRepository {
	return &RecordRepository{db: db}
}

// defaultListLimit caps record listings that do not ask for a limit.
const defaultListLimit = 500

// NoLimit disables the default cap; fleet-wide internal scans use it.
const NoLimit = -1

type RecordFilter struct {
	Scope   model.Scope
	Week    string
	GuideID *uuid.UUID
	Search  string
	Limit   int
	Offset  int
}

// EarningsUpdate is one staged correction from a reconciliation pass.
type EarningsUpdate struct {
	RecordID uuid.UUID
	Cash     decimal.Decimal
	App      decimal.Decimal
	Total    decimal.Decimal
}

func (r *RecordRepository) CountByWeek(ctx context.Context, weekLabel string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&model.WeeklyHistoryRecord{}).
		Where("week_label = ?", weekLabel).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *RecordRepository) List(ctx context.Context, filter RecordFilter) ([]model.WeeklyHistoryRecord, error) {
	query := r.db.WithContext(ctx).
		Model(&model.WeeklyHistoryRecord{}).
		Where("weekly_history_records.week_label = ?", filter.Week)

	query = applyScopeFilter(query, filter.Scope)

	if filter.GuideID != nil {
		query = query.Where("weekly_history_records.guide_id = ?", *filter.GuideID)
	}
	if filter.Search != "" {
		search := "%" + filter.Search + "%"
		query = query.Joins("JOIN drivers d ON d.id = weekly_history_records.driver_id").
			Where("(d.first_name ILIKE ? OR d.last_name ILIKE ? OR d.document_number ILIKE ?)", search, search, search)
	}

	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}
	switch {
	case filter.Limit > 0:
		query = query.Limit(filter.Limit)
	case filter.Limit == 0:
		query = query.Limit(defaultListLimit)
	}

	var records []model.WeeklyHistoryRecord
	if err := query.
		Order("weekly_history_records.created_at ASC").
		Preload("Driver").
		Preload("Driver.Assignments", "status IN ?", []string{model.AssignmentStateActiveM, model.AssignmentStateActiveF}).
		Preload("Guide").
		Preload("Action").
		Preload("Annotations", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// ListCloneCandidates returns the given week's records whose driver is still
// active and holds an active vehicle assignment. Modality and shift do not
// matter here, only that an assignment exists.
func (r *RecordRepository) ListCloneCandidates(ctx context.Context, weekLabel string) ([]model.WeeklyHistoryRecord, error) {
	var records []model.WeeklyHistoryRecord
	if err := r.db.WithContext(ctx).
		Model(&model.WeeklyHistoryRecord{}).
		Joins("JOIN drivers ON drivers.id = weekly_history_records.driver_id").
		Joins("JOIN vehicle_assignments va ON va.driver_id = drivers.id").
		Where("weekly_history_records.week_label = ?", weekLabel).
		Where("drivers.status = ?", model.DriverStatusActive).
		Where("va.status IN ?", []string{model.AssignmentStateActiveM, model.AssignmentStateActiveF}).
		Distinct("weekly_history_records.*").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (r *RecordRepository) DriverIDsWithWeek(ctx context.Context, weekLabel string) (map[uuid.UUID]struct{}, error) {
	var ids []uuid.UUID
	if err := r.db.WithContext(ctx).
		Model(&model.WeeklyHistoryRecord{}).
		Where("week_label = ?", weekLabel).
		Pluck("driver_id", &ids).Error; err != nil {
		return nil, err
	}
	set := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set, nil
}

// InsertBatch inserts records in one statement, skipping rows that collide
// with the (driver_id, week_label) uniqueness. The returned count reflects
// rows actually inserted, so concurrent week initialization stays visible in
// the report instead of double-counting.
func (r *RecordRepository) InsertBatch(ctx context.Context, records []model.WeeklyHistoryRecord) (int64, error) {
	if len(records) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "driver_id"}, {Name: "week_label"}},
			DoNothing: true,
		}).
		Create(&records)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (r *RecordRepository) ApplyEarnings(ctx context.Context, updates []EarningsUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, u := range updates {
			if err := tx.Model(&model.WeeklyHistoryRecord{}).
				Where("id = ?", u.RecordID).
				Updates(map[string]interface{}{
					"cash_earnings":  u.Cash,
					"app_earnings":   u.App,
					"total_earnings": u.Total,
				}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// LatestForDriver returns the driver's newest weekly record across all
// weeks, or nil when the driver has no history at all.
func (r *RecordRepository) LatestForDriver(ctx context.Context, driverID uuid.UUID) (*model.WeeklyHistoryRecord, error) {
	var record model.WeeklyHistoryRecord
	err := r.db.WithContext(ctx).
		Model(&model.WeeklyHistoryRecord{}).
		Where("driver_id = ?", driverID).
		Order("week_label DESC").
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

func (r *RecordRepository) GetByID(ctx context.Context, scope model.Scope, id uuid.UUID) (*model.WeeklyHistoryRecord, error) {
	query := r.db.WithContext(ctx).
		Model(&model.WeeklyHistoryRecord{}).
		Where("weekly_history_records.id = ?", id)
	query = applyScopeFilter(query, scope)

	var record model.WeeklyHistoryRecord
	if err := query.
		Preload("Driver").
		Preload("Guide").
		Preload("Action").
		First(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *RecordRepository) UpdateCallDate(ctx context.Context, id uuid.UUID, callDate *time.Time) error {
	return r.db.WithContext(ctx).
		Model(&model.WeeklyHistoryRecord{}).
		Where("id = ?", id).
		Update("call_date", callDate).Error
}

func (r *RecordRepository) UpdateAction(ctx context.Context, id uuid.UUID, actionID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&model.WeeklyHistoryRecord{}).
		Where("id = ?", id).
		Update("action_id", actionID).Error
}

func (r *RecordRepository) UpdateTierOverride(ctx context.Context, id uuid.UUID, tier *model.TrackingTier) error {
	return r.db.WithContext(ctx).
		Model(&model.WeeklyHistoryRecord{}).
		Where("id = ?", id).
		Update("tier_override", tier).Error
}

func (r *RecordRepository) AddAnnotation(ctx context.Context, annotation *model.RecordAnnotation) error {
	return r.db.WithContext(ctx).Create(annotation).Error
}

func applyScopeFilter(query *gorm.DB, scope model.Scope) *gorm.DB {
	switch scope.Type {
	case model.ScopeAll:
		return query
	case model.ScopeGuide:
		if scope.GuideID == nil {
			return query.Where("1=0")
		}
		return query.Where("weekly_history_records.guide_id = ?", *scope.GuideID)
	default:
		return query.Where("1=0")
	}
}
