package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"guias-service/internal/balance"
	"guias-service/internal/metrics"
	"guias-service/internal/model"
	"guias-service/internal/week"
)

// DistributionService assigns unassigned drivers to guides and guarantees
// every assigned driver has a current-week tracking record. Both phases are
// idempotent: guide loads are recomputed from scratch on every run and
// record inserts collapse on the (driver, week) uniqueness.
type DistributionService struct {
	guides   GuideStore
	drivers  DriverStore
	records  RecordStore
	actions  ActionStore
	balancer *balance.Balancer
	log      zerolog.Logger
	now      func() time.Time
}

func NewDistributionService(
	guides GuideStore,
	drivers DriverStore,
	records RecordStore,
	actions ActionStore,
	balancer *balance.Balancer,
	log zerolog.Logger,
) *DistributionService {
	return &DistributionService{
		guides:   guides,
		drivers:  drivers,
		records:  records,
		actions:  actions,
		balancer: balancer,
		log:      log,
		now:      time.Now,
	}
}

type DistributionResult struct {
	Week     string
	Assigned int64
	Created  int64
	Rescued  int64
	NoGuides bool
}

// Run executes the fresh-distribution phase followed by the rescue pass.
// Fetch errors abort before any write so a failed run never leaves partial
// guide mutations; write errors are logged and left for the next run to
// converge.
func (s *DistributionService) Run(ctx context.Context) (DistributionResult, error) {
	current := week.CurrentLabel(s.now())
	result := DistributionResult{Week: current}

	if err := s.distribute(ctx, current, &result); err != nil {
		return result, err
	}
	if err := s.rescue(ctx, current, &result); err != nil {
		return result, err
	}
	return result, nil
}

func (s *DistributionService) distribute(ctx context.Context, currentWeek string, result *DistributionResult) error {
	guides, err := s.guides.ListGuides(ctx)
	if err != nil {
		return err
	}
	if len(guides) == 0 {
		// Expected transient state, e.g. no guides configured yet.
		result.NoGuides = true
		s.log.Info().Str("week", currentWeek).Msg("no guides available, distribution skipped")
		return nil
	}

	loads, err := s.guides.ActiveAssignedCounts(ctx)
	if err != nil {
		return err
	}
	eligible, err := s.drivers.ListEligibleUnassigned(ctx)
	if err != nil {
		return err
	}
	covered, err := s.records.DriverIDsWithWeek(ctx, currentWeek)
	if err != nil {
		return err
	}
	defaultActionID, err := s.defaultActionID(ctx)
	if err != nil {
		return err
	}

	guideIDs := make([]uuid.UUID, 0, len(guides))
	for _, g := range guides {
		guideIDs = append(guideIDs, g.ID)
	}
	driverIDs := make([]uuid.UUID, 0, len(eligible))
	for _, d := range eligible {
		driverIDs = append(driverIDs, d.ID)
	}

	plan := s.balancer.Assign(guideIDs, loads, driverIDs)

	newRecords := make([]model.WeeklyHistoryRecord, 0, len(plan))
	for _, a := range plan {
		if err := s.drivers.AssignToGuide(ctx, a.DriverID, a.GuideID); err != nil {
			s.log.Warn().Err(err).Str("driver_id", a.DriverID.String()).Msg("guide assignment write failed")
			continue
		}
		result.Assigned++

		if _, ok := covered[a.DriverID]; ok {
			continue
		}
		record := model.WeeklyHistoryRecord{
			ID:        uuid.New(),
			DriverID:  a.DriverID,
			GuideID:   a.GuideID,
			WeekLabel: currentWeek,
			ActionID:  defaultActionID,
		}
		// Carry forward the driver's newest known call date and action so a
		// guide change does not reset their call status.
		latest, err := s.records.LatestForDriver(ctx, a.DriverID)
		if err != nil {
			s.log.Warn().Err(err).Str("driver_id", a.DriverID.String()).Msg("prior history lookup failed")
		} else if latest != nil {
			record.CallDate = latest.CallDate
			record.ActionID = resolveFirst(latest.ActionID, defaultActionID)
		}
		newRecords = append(newRecords, record)
	}

	metrics.DriversAssigned.Add(float64(result.Assigned))

	inserted, err := s.records.InsertBatch(ctx, newRecords)
	if err != nil {
		s.log.Warn().Err(err).Str("week", currentWeek).Msg("distribution record insert failed")
		return nil
	}
	result.Created = inserted
	if len(plan) > 0 {
		s.log.Info().Str("week", currentWeek).
			Int64("assigned", result.Assigned).
			Int64("created", inserted).
			Msg("drivers distributed")
	}
	return nil
}

// rescue inserts current-week records for drivers that already have a guide
// but lost their record to a prior partial failure or an out-of-band guide
// reassignment. It only ever adds rows; existing records and assignments are
// untouched.
func (s *DistributionService) rescue(ctx context.Context, currentWeek string, result *DistributionResult) error {
	covered, err := s.records.DriverIDsWithWeek(ctx, currentWeek)
	if err != nil {
		return err
	}
	assigned, err := s.drivers.ListEligibleAssigned(ctx)
	if err != nil {
		return err
	}
	defaultActionID, err := s.defaultActionID(ctx)
	if err != nil {
		return err
	}

	missing := make([]model.WeeklyHistoryRecord, 0)
	for _, d := range assigned {
		if _, ok := covered[d.ID]; ok {
			continue
		}
		if d.GuideID == nil {
			continue
		}
		missing = append(missing, model.WeeklyHistoryRecord{
			ID:        uuid.New(),
			DriverID:  d.ID,
			GuideID:   *d.GuideID,
			WeekLabel: currentWeek,
			ActionID:  defaultActionID,
		})
	}
	if len(missing) == 0 {
		return nil
	}

	inserted, err := s.records.InsertBatch(ctx, missing)
	if err != nil {
		s.log.Warn().Err(err).Str("week", currentWeek).Msg("rescue insert failed")
		return nil
	}
	result.Rescued = inserted
	metrics.RecordsRescued.Add(float64(inserted))
	s.log.Info().Str("week", currentWeek).Int64("rescued", inserted).Msg("missing weekly records rescued")
	return nil
}

// GuideLoads returns every active guide with its current driver count, for
// the supervision overview.
func (s *DistributionService) GuideLoads(ctx context.Context) ([]model.GuideLoadView, error) {
	guides, err := s.guides.ListGuides(ctx)
	if err != nil {
		return nil, err
	}
	counts, err := s.guides.ActiveAssignedCounts(ctx)
	if err != nil {
		return nil, err
	}
	views := make([]model.GuideLoadView, 0, len(guides))
	for _, g := range guides {
		views = append(views, model.GuideLoadView{
			Guide: model.GuideBrief{ID: g.ID, Name: g.Name},
			Load:  counts[g.ID],
		})
	}
	return views, nil
}

func (s *DistributionService) defaultActionID(ctx context.Context) (*uuid.UUID, error) {
	action, err := s.actions.ByCode(ctx, model.DefaultActionCode)
	if err != nil {
		return nil, err
	}
	if action == nil {
		return nil, nil
	}
	id := action.ID
	return &id, nil
}
