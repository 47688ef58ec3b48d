package model

import "github.com/google/uuid"

type UserRole string

const (
	UserRoleAdmin       UserRole = "ADMIN"
	UserRoleCoordinator UserRole = "COORDINATOR"
	UserRoleGuide       UserRole = "GUIDE"
)

type Principal struct {
	UserID    uuid.UUID
	SessionID uuid.UUID
	Role      UserRole
	GuideID   *uuid.UUID
}

func (p Principal) IsAdmin() bool {
	return p.Role == UserRoleAdmin
}

func (p Principal) IsCoordinator() bool {
	return p.Role == UserRoleCoordinator
}

func (p Principal) IsGuide() bool {
	return p.Role == UserRoleGuide
}
