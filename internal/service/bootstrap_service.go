package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"guias-service/internal/model"
	"guias-service/internal/week"
)

// BootstrapService runs the session-start warm-up: weekly history
// synchronization, then distribution with its rescue pass, in that order.
// The guard gives each session one run per ISO week; failures are logged and
// swallowed because every effect is idempotent or additive and the next
// session converges the state.
type BootstrapService struct {
	guard       *SessionGuard
	sync        *SyncService
	distributor *DistributionService
	log         zerolog.Logger
	now         func() time.Time
}

func NewBootstrapService(guard *SessionGuard, sync *SyncService, distributor *DistributionService, log zerolog.Logger) *BootstrapService {
	return &BootstrapService{
		guard:       guard,
		sync:        sync,
		distributor: distributor,
		log:         log,
		now:         time.Now,
	}
}

// Run triggers the warm-up for the caller's session. Guide principals only
// consume distribution results, they never trigger it.
func (s *BootstrapService) Run(ctx context.Context, principal model.Principal) (model.DistributionReport, error) {
	report := model.DistributionReport{}

	switch {
	case principal.IsAdmin(), principal.IsCoordinator():
	default:
		return report, ErrPermissionDenied
	}

	current := week.CurrentLabel(s.now())
	report.Week = current

	if !s.guard.TryBegin(principal.SessionID, current) {
		report.Suppressed = true
		return report, nil
	}

	syncResult, err := s.sync.Run(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("weekly synchronization failed")
	}
	report.SyncSkipped = syncResult.Skipped
	report.Cloned = syncResult.Cloned

	// Distribution runs even when sync failed: its phases recompute their
	// own inputs and the rescue pass is how dropped clones get recovered.
	distResult, err := s.distributor.Run(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("driver distribution failed")
	}
	report.Assigned = distResult.Assigned
	report.Created = distResult.Created
	report.Rescued = distResult.Rescued
	report.NoGuides = distResult.NoGuides

	return report, nil
}
