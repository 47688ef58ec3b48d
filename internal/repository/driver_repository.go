package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"guias-service/internal/model"
)

type DriverRepository struct {
	db *gorm.DB
}

func NewDriverRepository(db *gorm.DB) *DriverRepository {
	return &DriverRepository{db: db}
}

// withLiveVehicle narrows a driver query to drivers holding at least one
// active vehicle assignment that resolves to a concrete vehicle. A driver
// without a live vehicle is never distributed.
func withLiveVehicle(query *gorm.DB) *gorm.DB {
	return query.
		Joins("JOIN vehicle_assignments va ON va.driver_id = drivers.id").
		Joins("JOIN vehicles v ON v.id = va.vehicle_id").
		Where("va.status IN ?", []string{model.AssignmentStateActiveM, model.AssignmentStateActiveF}).
		Where("v.plate_number IS NOT NULL AND v.plate_number <> ''").
		Distinct("drivers.*")
}

// ListEligibleUnassigned returns active drivers without a guide that are
// eligible for distribution.
func (r *DriverRepository) ListEligibleUnassigned(ctx context.Context) ([]model.Driver, error) {
	var drivers []model.Driver
	query := r.db.WithContext(ctx).
		Model(&model.Driver{}).
		Where("drivers.status = ?", model.DriverStatusActive).
		Where("drivers.guide_assigned = ?", false)
	if err := withLiveVehicle(query).
		Order("drivers.created_at ASC").
		Find(&drivers).Error; err != nil {
		return nil, err
	}
	return drivers, nil
}

// ListEligibleAssigned returns active drivers that already have a guide and a
// live vehicle; the rescue pass checks these for missing weekly records.
func (r *DriverRepository) ListEligibleAssigned(ctx context.Context) ([]model.Driver, error) {
	var drivers []model.Driver
	query := r.db.WithContext(ctx).
		Model(&model.Driver{}).
		Where("drivers.status = ?", model.DriverStatusActive).
		Where("drivers.guide_assigned = ? AND drivers.guide_id IS NOT NULL", true)
	if err := withLiveVehicle(query).
		Order("drivers.created_at ASC").
		Find(&drivers).Error; err != nil {
		return nil, err
	}
	return drivers, nil
}

func (r *DriverRepository) AssignToGuide(ctx context.Context, driverID, guideID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&model.Driver{}).
		Where("id = ?", driverID).
		Updates(map[string]interface{}{
			"guide_id":       guideID,
			"guide_assigned": true,
		}).Error
}
