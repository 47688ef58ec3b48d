package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"guias-service/internal/model"
)

type TierRepository struct {
	db *gorm.DB
}

func NewTierRepository(db *gorm.DB) *TierRepository {
	return &TierRepository{db: db}
}

func (r *TierRepository) ListRules(ctx context.Context) ([]model.TrackingTierRule, error) {
	var rules []model.TrackingTierRule
	if err := r.db.WithContext(ctx).
		Model(&model.TrackingTierRule{}).
		Order("position ASC").
		Find(&rules).Error; err != nil {
		return nil, err
	}
	return rules, nil
}

type ActionRepository struct {
	db *gorm.DB
}

func NewActionRepository(db *gorm.DB) *ActionRepository {
	return &ActionRepository{db: db}
}

func (r *ActionRepository) ByCode(ctx context.Context, code string) (*model.ImplementedAction, error) {
	var action model.ImplementedAction
	err := r.db.WithContext(ctx).
		Model(&model.ImplementedAction{}).
		Where("code = ?", code).
		First(&action).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &action, nil
}

func (r *ActionRepository) ByID(ctx context.Context, id uuid.UUID) (*model.ImplementedAction, error) {
	var action model.ImplementedAction
	err := r.db.WithContext(ctx).
		Model(&model.ImplementedAction{}).
		Where("id = ?", id).
		First(&action).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &action, nil
}
