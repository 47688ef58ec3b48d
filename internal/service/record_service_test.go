package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"guias-service/internal/model"
)

func newRecordForTest(store *fakeStore) *RecordService {
	s := NewRecordService(store, store, store, newReconcileForTest(store), zerolog.Nop())
	s.now = fixedNow
	return s
}

func defaultTierRules() []model.TrackingTierRule {
	upper1 := decimal.NewFromInt(150)
	upper2 := decimal.NewFromInt(400)
	return []model.TrackingTierRule{
		{ID: uuid.New(), Position: 1, LowerBound: decimal.Zero, UpperBound: &upper1, Tier: model.TierDaily, Color: "red"},
		{ID: uuid.New(), Position: 2, LowerBound: decimal.NewFromFloat(150.01), UpperBound: &upper2, Tier: model.TierClose, Color: "yellow"},
		{ID: uuid.New(), Position: 3, LowerBound: decimal.NewFromFloat(400.01), Tier: model.TierWeekly, Color: "green"},
	}
}

func adminPrincipal() model.Principal {
	return model.Principal{UserID: uuid.New(), SessionID: uuid.New(), Role: model.UserRoleAdmin}
}

func guidePrincipal(guideID uuid.UUID) model.Principal {
	return model.Principal{UserID: uuid.New(), SessionID: uuid.New(), Role: model.UserRoleGuide, GuideID: &guideID}
}

func TestListResolvesTierFromPriorWeek(t *testing.T) {
	store := newFakeStore()
	store.rules = defaultTierRules()
	guideID := store.addGuide("Guia Norte")

	lowID := store.addDriver(model.Driver{FirstName: "Ana", GuideID: &guideID, GuideAssigned: true})
	midID := store.addDriver(model.Driver{FirstName: "Luis", GuideID: &guideID, GuideAssigned: true})
	highID := store.addDriver(model.Driver{FirstName: "Eva", GuideID: &guideID, GuideAssigned: true})
	freshID := store.addDriver(model.Driver{FirstName: "Raul", GuideID: &guideID, GuideAssigned: true})

	store.addRecord(model.WeeklyHistoryRecord{DriverID: lowID, GuideID: guideID, WeekLabel: "2025-W09", TotalEarnings: amt(120)})
	store.addRecord(model.WeeklyHistoryRecord{DriverID: midID, GuideID: guideID, WeekLabel: "2025-W09", TotalEarnings: amt(300)})
	store.addRecord(model.WeeklyHistoryRecord{DriverID: highID, GuideID: guideID, WeekLabel: "2025-W09", TotalEarnings: amt(900)})

	for _, id := range []uuid.UUID{lowID, midID, highID, freshID} {
		store.addRecord(model.WeeklyHistoryRecord{DriverID: id, GuideID: guideID, WeekLabel: "2025-W10"})
	}

	views, err := newRecordForTest(store).List(context.Background(), adminPrincipal(), ListRecordsOptions{})
	require.NoError(t, err)
	require.Len(t, views, 4)

	tiers := make(map[uuid.UUID]*model.TierView)
	for _, v := range views {
		tiers[v.Driver.ID] = v.Tier
	}

	require.NotNil(t, tiers[lowID])
	assert.Equal(t, model.TierDaily, tiers[lowID].Tier)
	assert.Equal(t, "red", tiers[lowID].Color)
	require.NotNil(t, tiers[midID])
	assert.Equal(t, model.TierClose, tiers[midID].Tier)
	require.NotNil(t, tiers[highID])
	assert.Equal(t, model.TierWeekly, tiers[highID].Tier)

	// No prior week classifies as zero, the most urgent tier.
	require.NotNil(t, tiers[freshID])
	assert.Equal(t, model.TierDaily, tiers[freshID].Tier)
	assert.False(t, tiers[freshID].Overridden)
}

// Tier resolution reads the whole prior week, not a capped page; otherwise
// drivers past the default listing limit would classify as zero earners.
func TestListPriorWeekTotalsNotTruncated(t *testing.T) {
	store := newFakeStore()
	store.rules = defaultTierRules()
	guideID := store.addGuide("Guia Norte")

	const fleet = 520
	for i := 0; i < fleet; i++ {
		driverID := store.addDriver(model.Driver{FirstName: "Titular", GuideID: &guideID, GuideAssigned: true})
		store.addRecord(model.WeeklyHistoryRecord{DriverID: driverID, GuideID: guideID, WeekLabel: "2025-W09", TotalEarnings: amt(900)})
		store.addRecord(model.WeeklyHistoryRecord{DriverID: driverID, GuideID: guideID, WeekLabel: "2025-W10"})
	}

	views, err := newRecordForTest(store).List(context.Background(), adminPrincipal(), ListRecordsOptions{Limit: fleet})
	require.NoError(t, err)
	require.Len(t, views, fleet)
	for _, v := range views {
		require.NotNil(t, v.Tier)
		assert.Equal(t, model.TierWeekly, v.Tier.Tier)
	}
}

func TestListHonorsTierOverride(t *testing.T) {
	store := newFakeStore()
	store.rules = defaultTierRules()
	guideID := store.addGuide("Guia Norte")
	driverID := store.addDriver(model.Driver{FirstName: "Ana", GuideID: &guideID, GuideAssigned: true})
	override := model.TierWeekly
	store.addRecord(model.WeeklyHistoryRecord{DriverID: driverID, GuideID: guideID, WeekLabel: "2025-W10", TierOverride: &override})

	views, err := newRecordForTest(store).List(context.Background(), adminPrincipal(), ListRecordsOptions{})
	require.NoError(t, err)
	require.Len(t, views, 1)
	require.NotNil(t, views[0].Tier)
	assert.Equal(t, model.TierWeekly, views[0].Tier.Tier)
	assert.True(t, views[0].Tier.Overridden)
	assert.Equal(t, "green", views[0].Tier.Color)
}

func TestListScopesGuideToOwnRecords(t *testing.T) {
	store := newFakeStore()
	mine := store.addGuide("Guia Norte")
	other := store.addGuide("Guia Sur")
	myDriver := store.addDriver(model.Driver{FirstName: "Ana", GuideID: &mine, GuideAssigned: true})
	otherDriver := store.addDriver(model.Driver{FirstName: "Luis", GuideID: &other, GuideAssigned: true})
	store.addRecord(model.WeeklyHistoryRecord{DriverID: myDriver, GuideID: mine, WeekLabel: "2025-W10"})
	store.addRecord(model.WeeklyHistoryRecord{DriverID: otherDriver, GuideID: other, WeekLabel: "2025-W10"})

	views, err := newRecordForTest(store).List(context.Background(), guidePrincipal(mine), ListRecordsOptions{})
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, myDriver, views[0].Driver.ID)
}

func TestListRejectsGuideWithoutAssignment(t *testing.T) {
	store := newFakeStore()
	principal := model.Principal{UserID: uuid.New(), Role: model.UserRoleGuide}

	_, err := newRecordForTest(store).List(context.Background(), principal, ListRecordsOptions{})
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestListRejectsMalformedWeek(t *testing.T) {
	store := newFakeStore()

	_, err := newRecordForTest(store).List(context.Background(), adminPrincipal(), ListRecordsOptions{Week: "2025W10"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestListOverlaysReconciledEarnings(t *testing.T) {
	store := newFakeStore()
	guideID := store.addGuide("Guia Norte")
	driverID := store.addDriver(model.Driver{FirstName: "Ana", LastName: "Gomez", DocumentNumber: "12345678", GuideID: &guideID, GuideAssigned: true})
	recordID := store.addRecord(model.WeeklyHistoryRecord{DriverID: driverID, GuideID: guideID, WeekLabel: "2025-W10"})
	store.feed = append(store.feed, feedEntry("12345678", "Ana Gomez", 40, 110))

	views, err := newRecordForTest(store).List(context.Background(), adminPrincipal(), ListRecordsOptions{})
	require.NoError(t, err)
	require.Len(t, views, 1)

	total, known := views[0].TotalEarnings.Value()
	assert.True(t, known)
	assert.True(t, total.Equal(decimal.NewFromInt(150)))
	require.NotNil(t, store.records[recordID].TotalEarnings)
	assert.True(t, store.records[recordID].TotalEarnings.Equal(decimal.NewFromInt(150)))
}

func TestListPastWeekKeepsStoredEarnings(t *testing.T) {
	store := newFakeStore()
	guideID := store.addGuide("Guia Norte")
	driverID := store.addDriver(model.Driver{FirstName: "Ana", DocumentNumber: "12345678", GuideID: &guideID, GuideAssigned: true})
	store.addRecord(model.WeeklyHistoryRecord{DriverID: driverID, GuideID: guideID, WeekLabel: "2025-W09", TotalEarnings: amt(80)})
	store.feed = append(store.feed, feedEntry("12345678", "Ana", 0, 999))

	views, err := newRecordForTest(store).List(context.Background(), adminPrincipal(), ListRecordsOptions{Week: "2025-W09"})
	require.NoError(t, err)
	require.Len(t, views, 1)
	total, known := views[0].TotalEarnings.Value()
	assert.True(t, known)
	assert.True(t, total.Equal(decimal.NewFromInt(80)))
	assert.Zero(t, store.feedQueries)
}

func TestSetCallDate(t *testing.T) {
	store := newFakeStore()
	guideID := store.addGuide("Guia Norte")
	driverID := store.addDriver(model.Driver{FirstName: "Ana", GuideID: &guideID, GuideAssigned: true})
	recordID := store.addRecord(model.WeeklyHistoryRecord{DriverID: driverID, GuideID: guideID, WeekLabel: "2025-W10"})
	svc := newRecordForTest(store)

	called := time.Date(2025, time.March, 4, 9, 0, 0, 0, time.UTC)
	require.NoError(t, svc.SetCallDate(context.Background(), adminPrincipal(), recordID, &called))
	require.NotNil(t, store.records[recordID].CallDate)
	assert.True(t, store.records[recordID].CallDate.Equal(called))

	require.NoError(t, svc.SetCallDate(context.Background(), adminPrincipal(), recordID, nil))
	assert.Nil(t, store.records[recordID].CallDate)
}

func TestSetActionValidatesAction(t *testing.T) {
	store := newFakeStore()
	actionID := store.addAction("llamada_seguimiento", "Llamada de seguimiento")
	guideID := store.addGuide("Guia Norte")
	driverID := store.addDriver(model.Driver{FirstName: "Ana", GuideID: &guideID, GuideAssigned: true})
	recordID := store.addRecord(model.WeeklyHistoryRecord{DriverID: driverID, GuideID: guideID, WeekLabel: "2025-W10"})
	svc := newRecordForTest(store)

	assert.ErrorIs(t, svc.SetAction(context.Background(), adminPrincipal(), recordID, uuid.New()), ErrInvalidInput)

	require.NoError(t, svc.SetAction(context.Background(), adminPrincipal(), recordID, actionID))
	require.NotNil(t, store.records[recordID].ActionID)
	assert.Equal(t, actionID, *store.records[recordID].ActionID)
}

func TestSetTierOverride(t *testing.T) {
	store := newFakeStore()
	guideID := store.addGuide("Guia Norte")
	driverID := store.addDriver(model.Driver{FirstName: "Ana", GuideID: &guideID, GuideAssigned: true})
	recordID := store.addRecord(model.WeeklyHistoryRecord{DriverID: driverID, GuideID: guideID, WeekLabel: "2025-W10"})
	svc := newRecordForTest(store)

	bogus := model.TrackingTier("URGENTE")
	assert.ErrorIs(t, svc.SetTierOverride(context.Background(), adminPrincipal(), recordID, &bogus), ErrInvalidInput)

	tier := model.TierClose
	require.NoError(t, svc.SetTierOverride(context.Background(), adminPrincipal(), recordID, &tier))
	require.NotNil(t, store.records[recordID].TierOverride)
	assert.Equal(t, model.TierClose, *store.records[recordID].TierOverride)

	require.NoError(t, svc.SetTierOverride(context.Background(), adminPrincipal(), recordID, nil))
	assert.Nil(t, store.records[recordID].TierOverride)
}

func TestAnnotateRequiresTextAndVisibility(t *testing.T) {
	store := newFakeStore()
	mine := store.addGuide("Guia Norte")
	other := store.addGuide("Guia Sur")
	driverID := store.addDriver(model.Driver{FirstName: "Ana", GuideID: &mine, GuideAssigned: true})
	recordID := store.addRecord(model.WeeklyHistoryRecord{DriverID: driverID, GuideID: mine, WeekLabel: "2025-W10"})
	svc := newRecordForTest(store)

	assert.ErrorIs(t, svc.Annotate(context.Background(), adminPrincipal(), recordID, "   "), ErrInvalidInput)
	assert.ErrorIs(t, svc.Annotate(context.Background(), guidePrincipal(other), recordID, "fuera de alcance"), ErrNotFound)

	author := guidePrincipal(mine)
	require.NoError(t, svc.Annotate(context.Background(), author, recordID, "  llamado, retoma el lunes  "))
	annotations := store.records[recordID].Annotations
	require.Len(t, annotations, 1)
	assert.Equal(t, "llamado, retoma el lunes", annotations[0].Text)
	assert.Equal(t, author.UserID, annotations[0].AuthorID)
}

func TestEditsOnMissingRecordReturnNotFound(t *testing.T) {
	store := newFakeStore()
	svc := newRecordForTest(store)

	err := svc.SetCallDate(context.Background(), adminPrincipal(), uuid.New(), nil)
	assert.ErrorIs(t, err, ErrNotFound)
}
