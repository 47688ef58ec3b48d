package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"guias-service/internal/model"
)

// FeedRepository reads the earnings feed landed by the ride-hailing
// integration. This service never writes to it.
type FeedRepository struct {
	db *gorm.DB
}

func NewFeedRepository(db *gorm.DB) *FeedRepository {
	return &FeedRepository{db: db}
}

func (r *FeedRepository) QueryWindow(ctx context.Context, startUTC, endUTC time.Time) ([]model.EarningsFeedEntry, error) {
	var entries []model.EarningsFeedEntry
	if err := r.db.WithContext(ctx).
		Model(&model.EarningsFeedEntry{}).
		Where("transaction_at >= ? AND transaction_at <= ?", startUTC, endUTC).
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
