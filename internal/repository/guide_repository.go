package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"guias-service/internal/model"
)

type GuideRepository struct {
	db *gorm.DB
}

func NewGuideRepository(db *gorm.DB) *GuideRepository {
	return &GuideRepository{db: db}
}

func (r *GuideRepository) ListGuides(ctx context.Context) ([]model.Guide, error) {
	var guides []model.Guide
	if err := r.db.WithContext(ctx).
		Model(&model.Guide{}).
		Where("active = ?", true).
		Order("name ASC").
		Find(&guides).Error; err != nil {
		return nil, err
	}
	return guides, nil
}

// ActiveAssignedCounts returns the current load per guide: active drivers
// flagged as assigned, bucketed by guide. Guides with no drivers are simply
// absent from the map.
func (r *GuideRepository) ActiveAssignedCounts(ctx context.Context) (map[uuid.UUID]int64, error) {
	type row struct {
		GuideID uuid.UUID
		Count   int64
	}
	var rows []row
	if err := r.db.WithContext(ctx).
		Model(&model.Driver{}).
		Select("guide_id, COUNT(*) AS count").
		Where("status = ? AND guide_assigned = ? AND guide_id IS NOT NULL", model.DriverStatusActive, true).
		Group("guide_id").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	counts := make(map[uuid.UUID]int64, len(rows))
	for _, b := range rows {
		counts[b.GuideID] = b.Count
	}
	return counts, nil
}
