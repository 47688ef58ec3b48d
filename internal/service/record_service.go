package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"guias-service/internal/currency"
	"guias-service/internal/model"
	"guias-service/internal/repository"
	"guias-service/internal/week"
)

// RecordService serves the weekly tracking screens: listing records with
// resolved tiers and self-healing earnings, and the per-record edits the UI
// makes (call date, implemented action, tier override, annotations).
type RecordService struct {
	records    RecordStore
	tiers      TierStore
	actions    ActionStore
	reconciler *ReconcileService
	log        zerolog.Logger
	now        func() time.Time
}

func NewRecordService(
	records RecordStore,
	tiers TierStore,
	actions ActionStore,
	reconciler *ReconcileService,
	log zerolog.Logger,
) *RecordService {
	return &RecordService{
		records:    records,
		tiers:      tiers,
		actions:    actions,
		reconciler: reconciler,
		log:        log,
		now:        time.Now,
	}
}

type ListRecordsOptions struct {
	Week    string
	GuideID *uuid.UUID
	Search  string
	Limit   int
	Offset  int
}

func (s *RecordService) List(ctx context.Context, principal model.Principal, opts ListRecordsOptions) ([]model.WeeklyRecordView, error) {
	scope, err := resolveScope(principal)
	if err != nil {
		return nil, err
	}

	current := week.CurrentLabel(s.now())
	weekLabel := opts.Week
	if weekLabel == "" {
		weekLabel = current
	} else if _, _, err := week.Parse(weekLabel); err != nil {
		return nil, ErrInvalidInput
	}

	records, err := s.records.List(ctx, repository.RecordFilter{
		Scope:   scope,
		Week:    weekLabel,
		GuideID: opts.GuideID,
		Search:  opts.Search,
		Limit:   opts.Limit,
		Offset:  opts.Offset,
	})
	if err != nil {
		return nil, err
	}

	// Viewing the current week refreshes its monetary columns against the
	// feed; corrections are overlaid in memory so the response reflects them
	// without a second query.
	if weekLabel == current {
		applied := s.reconciler.ReconcileWeek(ctx, weekLabel, records)
		if len(applied) > 0 {
			overlay := make(map[uuid.UUID]repository.EarningsUpdate, len(applied))
			for _, u := range applied {
				overlay[u.RecordID] = u
			}
			for i := range records {
				if u, ok := overlay[records[i].ID]; ok {
					cash, app, total := u.Cash, u.App, u.Total
					records[i].CashEarnings = &cash
					records[i].AppEarnings = &app
					records[i].TotalEarnings = &total
				}
			}
		}
	}

	rules, err := s.tiers.ListRules(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("tier rules unavailable")
		rules = nil
	}
	priorTotals, err := s.priorWeekTotals(ctx, weekLabel)
	if err != nil {
		s.log.Warn().Err(err).Msg("prior week totals unavailable")
		priorTotals = nil
	}

	views := make([]model.WeeklyRecordView, 0, len(records))
	for _, r := range records {
		views = append(views, buildRecordView(r, rules, priorTotals))
	}
	return views, nil
}

// priorWeekTotals maps driver id to the previous week's total earnings.
// Looked up fleet-wide on purpose: a driver who changed guides still has a
// prior-week total, just under another guide.
func (s *RecordService) priorWeekTotals(ctx context.Context, weekLabel string) (map[uuid.UUID]decimal.Decimal, error) {
	prev, err := week.PreviousLabel(weekLabel)
	if err != nil {
		return nil, err
	}
	priorRecords, err := s.records.List(ctx, repository.RecordFilter{
		Scope: model.Scope{Type: model.ScopeAll},
		Week:  prev,
		Limit: repository.NoLimit,
	})
	if err != nil {
		return nil, err
	}
	totals := make(map[uuid.UUID]decimal.Decimal, len(priorRecords))
	for _, r := range priorRecords {
		if r.TotalEarnings != nil {
			totals[r.DriverID] = *r.TotalEarnings
		}
	}
	return totals, nil
}

func buildRecordView(r model.WeeklyHistoryRecord, rules []model.TrackingTierRule, priorTotals map[uuid.UUID]decimal.Decimal) model.WeeklyRecordView {
	view := model.WeeklyRecordView{
		ID:            r.ID,
		WeekLabel:     r.WeekLabel,
		CallDate:      r.CallDate,
		CashEarnings:  model.AmountFromColumn(r.CashEarnings),
		AppEarnings:   model.AmountFromColumn(r.AppEarnings),
		TotalEarnings: model.AmountFromColumn(r.TotalEarnings),
		SchoolStarted: r.SchoolStarted,
		Annotations:   r.Annotations,
	}
	if view.Annotations == nil {
		view.Annotations = []model.RecordAnnotation{}
	}
	if r.Driver != nil {
		view.Driver = model.DriverBrief{
			ID:             r.Driver.ID,
			FullName:       r.Driver.FullName(),
			DocumentNumber: r.Driver.DocumentNumber,
		}
	}
	if r.Guide != nil {
		view.Guide = model.GuideBrief{ID: r.Guide.ID, Name: r.Guide.Name}
	}
	if r.Action != nil {
		view.Action = &model.ActionBrief{
			ID:   r.Action.ID,
			Code: r.Action.Code,
			Name: r.Action.Name,
		}
	}
	view.Tier = resolveTier(r, rules, priorTotals)
	return view
}

// resolveTier prefers the record's explicit override; otherwise the driver's
// prior-week total is classified against the configured rules. A driver with
// no prior total classifies as zero, which lands in the most urgent tier.
func resolveTier(r model.WeeklyHistoryRecord, rules []model.TrackingTierRule, priorTotals map[uuid.UUID]decimal.Decimal) *model.TierView {
	if len(rules) == 0 {
		return nil
	}
	if r.TierOverride != nil && r.TierOverride.Valid() {
		view := &model.TierView{Tier: *r.TierOverride, Overridden: true}
		for _, rule := range rules {
			if rule.Tier == *r.TierOverride {
				view.Color = rule.Color
				break
			}
		}
		return view
	}

	total := decimal.Zero
	if priorTotals != nil {
		if t, ok := priorTotals[r.DriverID]; ok {
			total = currency.Parse(t)
		}
	}
	shift := driverShift(r.Driver)
	for _, rule := range rules {
		if rule.Matches(total, shift) {
			return &model.TierView{Tier: rule.Tier, Color: rule.Color}
		}
	}
	return nil
}

func driverShift(d *model.Driver) *model.AssignmentShift {
	if d == nil {
		return nil
	}
	for _, a := range d.Assignments {
		if a.Shift != nil {
			return a.Shift
		}
	}
	return nil
}

func (s *RecordService) SetCallDate(ctx context.Context, principal model.Principal, id uuid.UUID, callDate *time.Time) error {
	if _, err := s.visibleRecord(ctx, principal, id); err != nil {
		return err
	}
	return s.records.UpdateCallDate(ctx, id, callDate)
}

func (s *RecordService) SetAction(ctx context.Context, principal model.Principal, id uuid.UUID, actionID uuid.UUID) error {
	if _, err := s.visibleRecord(ctx, principal, id); err != nil {
		return err
	}
	action, err := s.actions.ByID(ctx, actionID)
	if err != nil {
		return err
	}
	if action == nil {
		return ErrInvalidInput
	}
	return s.records.UpdateAction(ctx, id, actionID)
}

func (s *RecordService) SetTierOverride(ctx context.Context, principal model.Principal, id uuid.UUID, tier *model.TrackingTier) error {
	if tier != nil && !tier.Valid() {
		return ErrInvalidInput
	}
	if _, err := s.visibleRecord(ctx, principal, id); err != nil {
		return err
	}
	return s.records.UpdateTierOverride(ctx, id, tier)
}

func (s *RecordService) Annotate(ctx context.Context, principal model.Principal, id uuid.UUID, text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrInvalidInput
	}
	if _, err := s.visibleRecord(ctx, principal, id); err != nil {
		return err
	}
	return s.records.AddAnnotation(ctx, &model.RecordAnnotation{
		RecordID: id,
		Text:     strings.TrimSpace(text),
		AuthorID: principal.UserID,
	})
}

func (s *RecordService) visibleRecord(ctx context.Context, principal model.Principal, id uuid.UUID) (*model.WeeklyHistoryRecord, error) {
	scope, err := resolveScope(principal)
	if err != nil {
		return nil, err
	}
	record, err := s.records.GetByID(ctx, scope, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return record, nil
}

func resolveScope(principal model.Principal) (model.Scope, error) {
	switch {
	case principal.IsAdmin(), principal.IsCoordinator():
		return model.Scope{Type: model.ScopeAll}, nil
	case principal.IsGuide():
		if principal.GuideID == nil {
			return model.Scope{}, ErrPermissionDenied
		}
		return model.Scope{Type: model.ScopeGuide, GuideID: principal.GuideID}, nil
	default:
		return model.Scope{}, ErrPermissionDenied
	}
}
