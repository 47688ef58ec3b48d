package model

import "github.com/google/uuid"

type ScopeType string

const (
	ScopeAll   ScopeType = "ALL"
	ScopeGuide ScopeType = "GUIDE"
)

// Scope bounds what a principal may see. Admins and coordinators see the
// whole fleet; guide principals are pinned to their own guide id.
type Scope struct {
	Type    ScopeType
	GuideID *uuid.UUID
}

func (s Scope) AllowsGuide(guideID uuid.UUID) bool {
	if s.Type == ScopeAll {
		return true
	}
	if s.GuideID == nil {
		return false
	}
	return *s.GuideID == guideID
}
