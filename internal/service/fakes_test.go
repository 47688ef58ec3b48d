package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"guias-service/internal/model"
	"guias-service/internal/repository"
)

// fakeStore is an in-memory backend implementing every store port, so the
// engines can be exercised without a database while keeping the repository
// semantics that matter: eligibility filters and the (driver, week)
// uniqueness on insert.
type fakeStore struct {
	mu sync.Mutex

	guides  []model.Guide
	drivers map[uuid.UUID]*model.Driver
	records map[uuid.UUID]*model.WeeklyHistoryRecord
	actions []model.ImplementedAction
	rules   []model.TrackingTierRule
	feed    []model.EarningsFeedEntry

	// drivers listed here count as having no live vehicle
	noVehicle map[uuid.UUID]bool

	feedErr     error
	insertErr   error
	feedQueries int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		drivers:   make(map[uuid.UUID]*model.Driver),
		records:   make(map[uuid.UUID]*model.WeeklyHistoryRecord),
		noVehicle: make(map[uuid.UUID]bool),
	}
}

func (f *fakeStore) addGuide(name string) uuid.UUID {
	id := uuid.New()
	f.guides = append(f.guides, model.Guide{ID: id, Name: name, Active: true})
	return id
}

func (f *fakeStore) addDriver(d model.Driver) uuid.UUID {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	if d.Status == "" {
		d.Status = model.DriverStatusActive
	}
	cp := d
	f.drivers[d.ID] = &cp
	return d.ID
}

func (f *fakeStore) addRecord(r model.WeeklyHistoryRecord) uuid.UUID {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	cp := r
	f.records[r.ID] = &cp
	return r.ID
}

func (f *fakeStore) addAction(code, name string) uuid.UUID {
	id := uuid.New()
	f.actions = append(f.actions, model.ImplementedAction{ID: id, Code: code, Name: name})
	return id
}

func (f *fakeStore) hasVehicle(driverID uuid.UUID) bool {
	return !f.noVehicle[driverID]
}

// GuideStore

func (f *fakeStore) ListGuides(ctx context.Context) ([]model.Guide, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.Guide(nil), f.guides...), nil
}

func (f *fakeStore) ActiveAssignedCounts(ctx context.Context) (map[uuid.UUID]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	counts := make(map[uuid.UUID]int64)
	for _, d := range f.drivers {
		if d.Status == model.DriverStatusActive && d.GuideAssigned && d.GuideID != nil {
			counts[*d.GuideID]++
		}
	}
	return counts, nil
}

// DriverStore

func (f *fakeStore) ListEligibleUnassigned(ctx context.Context) ([]model.Driver, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Driver
	for _, d := range f.drivers {
		if d.Status == model.DriverStatusActive && !d.GuideAssigned && f.hasVehicle(d.ID) {
			out = append(out, *d)
		}
	}
	sortDrivers(out)
	return out, nil
}

func (f *fakeStore) ListEligibleAssigned(ctx context.Context) ([]model.Driver, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Driver
	for _, d := range f.drivers {
		if d.Status == model.DriverStatusActive && d.GuideAssigned && d.GuideID != nil && f.hasVehicle(d.ID) {
			out = append(out, *d)
		}
	}
	sortDrivers(out)
	return out, nil
}

func (f *fakeStore) AssignToGuide(ctx context.Context, driverID, guideID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.drivers[driverID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	g := guideID
	d.GuideID = &g
	d.GuideAssigned = true
	return nil
}

// RecordStore

func (f *fakeStore) CountByWeek(ctx context.Context, weekLabel string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, r := range f.records {
		if r.WeekLabel == weekLabel {
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) List(ctx context.Context, filter repository.RecordFilter) ([]model.WeeklyHistoryRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.WeeklyHistoryRecord
	for _, r := range f.records {
		if r.WeekLabel != filter.Week {
			continue
		}
		if filter.Scope.Type == model.ScopeGuide {
			if filter.Scope.GuideID == nil || r.GuideID != *filter.Scope.GuideID {
				continue
			}
		}
		if filter.GuideID != nil && r.GuideID != *filter.GuideID {
			continue
		}
		cp := *r
		if d, ok := f.drivers[r.DriverID]; ok {
			dc := *d
			cp.Driver = &dc
		}
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	limit := filter.Limit
	if limit == 0 {
		limit = 500
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeStore) ListCloneCandidates(ctx context.Context, weekLabel string) ([]model.WeeklyHistoryRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.WeeklyHistoryRecord
	for _, r := range f.records {
		if r.WeekLabel != weekLabel {
			continue
		}
		d, ok := f.drivers[r.DriverID]
		if !ok || d.Status != model.DriverStatusActive || !f.hasVehicle(d.ID) {
			continue
		}
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	return out, nil
}

func (f *fakeStore) DriverIDsWithWeek(ctx context.Context, weekLabel string) (map[uuid.UUID]struct{}, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	set := make(map[uuid.UUID]struct{})
	for _, r := range f.records {
		if r.WeekLabel == weekLabel {
			set[r.DriverID] = struct{}{}
		}
	}
	return set, nil
}

func (f *fakeStore) InsertBatch(ctx context.Context, records []model.WeeklyHistoryRecord) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return 0, f.insertErr
	}
	var inserted int64
	for _, r := range records {
		if f.weekRecordExists(r.DriverID, r.WeekLabel) {
			continue
		}
		if r.ID == uuid.Nil {
			r.ID = uuid.New()
		}
		cp := r
		f.records[r.ID] = &cp
		inserted++
	}
	return inserted, nil
}

func (f *fakeStore) weekRecordExists(driverID uuid.UUID, weekLabel string) bool {
	for _, r := range f.records {
		if r.DriverID == driverID && r.WeekLabel == weekLabel {
			return true
		}
	}
	return false
}

func (f *fakeStore) ApplyEarnings(ctx context.Context, updates []repository.EarningsUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range updates {
		r, ok := f.records[u.RecordID]
		if !ok {
			return gorm.ErrRecordNotFound
		}
		cash, app, total := u.Cash, u.App, u.Total
		r.CashEarnings = &cash
		r.AppEarnings = &app
		r.TotalEarnings = &total
	}
	return nil
}

func (f *fakeStore) LatestForDriver(ctx context.Context, driverID uuid.UUID) (*model.WeeklyHistoryRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var latest *model.WeeklyHistoryRecord
	for _, r := range f.records {
		if r.DriverID != driverID {
			continue
		}
		if latest == nil || r.WeekLabel > latest.WeekLabel {
			latest = r
		}
	}
	if latest == nil {
		return nil, nil
	}
	cp := *latest
	return &cp, nil
}

func (f *fakeStore) GetByID(ctx context.Context, scope model.Scope, id uuid.UUID) (*model.WeeklyHistoryRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.records[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	if scope.Type == model.ScopeGuide {
		if scope.GuideID == nil || r.GuideID != *scope.GuideID {
			return nil, gorm.ErrRecordNotFound
		}
	}
	cp := *r
	return &cp, nil
}

func (f *fakeStore) UpdateCallDate(ctx context.Context, id uuid.UUID, callDate *time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.records[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	r.CallDate = callDate
	return nil
}

func (f *fakeStore) UpdateAction(ctx context.Context, id uuid.UUID, actionID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.records[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	a := actionID
	r.ActionID = &a
	return nil
}

func (f *fakeStore) UpdateTierOverride(ctx context.Context, id uuid.UUID, tier *model.TrackingTier) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.records[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	r.TierOverride = tier
	return nil
}

func (f *fakeStore) AddAnnotation(ctx context.Context, annotation *model.RecordAnnotation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.records[annotation.RecordID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if annotation.ID == uuid.Nil {
		annotation.ID = uuid.New()
	}
	r.Annotations = append(r.Annotations, *annotation)
	return nil
}

// FeedStore

func (f *fakeStore) QueryWindow(ctx context.Context, startUTC, endUTC time.Time) ([]model.EarningsFeedEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.feedQueries++
	if f.feedErr != nil {
		return nil, f.feedErr
	}
	var out []model.EarningsFeedEntry
	for _, e := range f.feed {
		if !e.TransactionAt.Before(startUTC) && !e.TransactionAt.After(endUTC) {
			out = append(out, e)
		}
	}
	return out, nil
}

// TierStore

func (f *fakeStore) ListRules(ctx context.Context) ([]model.TrackingTierRule, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.TrackingTierRule(nil), f.rules...), nil
}

// ActionStore

func (f *fakeStore) ByCode(ctx context.Context, code string) (*model.ImplementedAction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.actions {
		if a.Code == code {
			cp := a
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) ByID(ctx context.Context, id uuid.UUID) (*model.ImplementedAction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.actions {
		if a.ID == id {
			cp := a
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) recordsForWeek(weekLabel string) []model.WeeklyHistoryRecord {
	out, _ := f.List(context.Background(), repository.RecordFilter{
		Scope: model.Scope{Type: model.ScopeAll},
		Week:  weekLabel,
	})
	return out
}

func sortDrivers(drivers []model.Driver) {
	sort.Slice(drivers, func(i, j int) bool {
		return drivers[i].ID.String() < drivers[j].ID.String()
	})
}

var errStoreDown = errors.New("store down")
