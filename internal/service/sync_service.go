package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"guias-service/internal/metrics"
	"guias-service/internal/model"
	"guias-service/internal/week"
)

// SyncService carries each driver's weekly tracking record forward into a
// new ISO week. It runs at session start, before distribution, and is a
// best-effort warm-up: every failure is tolerated because the rescue pass
// and the (driver, week) uniqueness make reruns converge.
type SyncService struct {
	records RecordStore
	actions ActionStore
	log     zerolog.Logger
	now     func() time.Time
}

func NewSyncService(records RecordStore, actions ActionStore, log zerolog.Logger) *SyncService {
	return &SyncService{
		records: records,
		actions: actions,
		log:     log,
		now:     time.Now,
	}
}

type SyncResult struct {
	Week    string
	Skipped bool
	Cloned  int64
}

// Run clones the prior week's records into the current week for drivers that
// are still active and hold an active vehicle assignment. If the current
// week already has any record the whole pass is a no-op; that guard keeps
// repeated session starts from re-cloning.
func (s *SyncService) Run(ctx context.Context) (SyncResult, error) {
	current := week.CurrentLabel(s.now())
	result := SyncResult{Week: current}

	count, err := s.records.CountByWeek(ctx, current)
	if err != nil {
		return result, err
	}
	if count > 0 {
		result.Skipped = true
		metrics.SyncSkipped.Inc()
		return result, nil
	}

	source, err := week.PreviousLabel(current)
	if err != nil {
		return result, err
	}

	candidates, err := s.records.ListCloneCandidates(ctx, source)
	if err != nil {
		return result, err
	}
	if len(candidates) == 0 {
		s.log.Info().Str("week", current).Str("source", source).Msg("no records to clone")
		return result, nil
	}

	defaultActionID, err := s.defaultActionID(ctx)
	if err != nil {
		return result, err
	}

	clones := make([]model.WeeklyHistoryRecord, 0, len(candidates))
	for _, src := range candidates {
		clones = append(clones, model.WeeklyHistoryRecord{
			ID:        uuid.New(),
			DriverID:  src.DriverID,
			GuideID:   src.GuideID,
			WeekLabel: current,
			// Carried over verbatim so a call logged near the week boundary
			// is not lost.
			CallDate: src.CallDate,
			ActionID: resolveFirst(src.ActionID, defaultActionID),
		})
	}

	inserted, err := s.records.InsertBatch(ctx, clones)
	if err != nil {
		// Best effort: the next session's rescue pass recovers missing rows.
		s.log.Warn().Err(err).Str("week", current).Msg("weekly clone insert failed")
		return result, nil
	}

	result.Cloned = inserted
	metrics.RecordsCloned.Add(float64(inserted))
	s.log.Info().Str("week", current).Str("source", source).Int64("cloned", inserted).Msg("weekly history synchronized")
	return result, nil
}

func (s *SyncService) defaultActionID(ctx context.Context) (*uuid.UUID, error) {
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
