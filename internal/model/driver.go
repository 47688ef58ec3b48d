package model

import (
	"time"

	"github.com/google/uuid"
)

type DriverStatus string

const (
	DriverStatusActive    DriverStatus = "activo"
	DriverStatusInactive  DriverStatus = "inactivo"
	DriverStatusSuspended DriverStatus = "suspendido"
)

type AssignmentModality string

const (
	ModalityCargo AssignmentModality = "CARGO"
	ModalityTurno AssignmentModality = "TURNO"
)

type AssignmentShift string

const (
	ShiftDay   AssignmentShift = "diurno"
	ShiftNight AssignmentShift = "nocturno"
)

// Assignment states come from the upstream fleet system, which uses both
// gendered forms depending on the modality row's origin.
const (
	AssignmentStateActiveM  = "activo"
	AssignmentStateActiveF  = "activa"
	AssignmentStateFinished = "finalizado"
)

type Driver struct {
	ID              uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	FirstName       string       `gorm:"type:varchar(128)" json:"first_name"`
	LastName        string       `gorm:"type:varchar(128)" json:"last_name"`
	DocumentNumber  string       `gorm:"type:varchar(32)" json:"document_number"`
	Status          DriverStatus `gorm:"type:varchar(32);not null;default:'activo'" json:"status"`
	GuideID         *uuid.UUID   `gorm:"type:uuid" json:"guide_id"`
	GuideAssigned   bool         `gorm:"not null;default:false" json:"guide_assigned"`
	SchoolStartDate *time.Time   `json:"school_start_date"`
	CreatedAt       time.Time    `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time    `gorm:"autoUpdateTime" json:"updated_at"`

	Guide       *Guide              `gorm:"foreignKey:GuideID"`
	Assignments []VehicleAssignment `gorm:"foreignKey:DriverID"`
}

func (Driver) TableName() string {
	return "drivers"
}

func (d Driver) FullName() string {
	if d.FirstName == "" {
		return d.LastName
	}
	if d.LastName == "" {
		return d.FirstName
	}
	return d.FirstName + " " + d.LastName
}

type Guide struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	Active    bool      `gorm:"not null;default:true" json:"active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Guide) TableName() string {
	return "guides"
}

type Vehicle struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	PlateNumber string    `gorm:"type:varchar(32)" json:"plate_number"`
	Brand       string    `gorm:"type:varchar(64)" json:"brand"`
	Model       string    `gorm:"type:varchar(64)" json:"model"`
}

func (Vehicle) TableName() string {
	return "vehicles"
}

type VehicleAssignment struct {
	ID        uuid.UUID          `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	DriverID  uuid.UUID          `gorm:"type:uuid;not null" json:"driver_id"`
	VehicleID *uuid.UUID         `gorm:"type:uuid" json:"vehicle_id"`
	Modality  AssignmentModality `gorm:"type:assignment_modality;not null" json:"modality"`
	Shift     *AssignmentShift   `gorm:"type:assignment_shift" json:"shift"`
	Status    string             `gorm:"type:varchar(32);not null" json:"status"`
	CreatedAt time.Time          `gorm:"autoCreateTime" json:"created_at"`

	Vehicle *Vehicle `gorm:"foreignKey:VehicleID"`
}

func (VehicleAssignment) TableName() string {
	return "vehicle_assignments"
}
