package service

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"guias-service/internal/currency"
	"guias-service/internal/metrics"
	"guias-service/internal/model"
	"guias-service/internal/repository"
	"guias-service/internal/week"
)

// ReconcileService keeps current-week earnings in step with the external
// feed. It only ever corrects the current week; past weeks trust their
// stored values because the feed is not assumed to retain historical
// corrections.
type ReconcileService struct {
	feed      FeedStore
	records   RecordStore
	tolerance decimal.Decimal
	log       zerolog.Logger
	now       func() time.Time
}

func NewReconcileService(feed FeedStore, records RecordStore, tolerance float64, log zerolog.Logger) *ReconcileService {
	return &ReconcileService{
		feed:      feed,
		records:   records,
		tolerance: decimal.NewFromFloat(tolerance),
		log:       log,
		now:       time.Now,
	}
}

type feedTotals struct {
	cash decimal.Decimal
	app  decimal.Decimal
}

// ReconcileWeek compares each record's stored earnings against the feed and
// applies corrections in one batch. It returns the corrections that were
// persisted so callers rendering the same records can overlay them without a
// refetch. Feed or write failures degrade to the stored values; nothing here
// blocks the caller.
func (s *ReconcileService) ReconcileWeek(ctx context.Context, weekLabel string, records []model.WeeklyHistoryRecord) []repository.EarningsUpdate {
	if weekLabel != week.CurrentLabel(s.now()) {
		return nil
	}

	start, end, err := week.Bounds(weekLabel)
	if err != nil {
		s.log.Warn().Err(err).Msg("reconcile skipped")
		return nil
	}

	entries, err := s.feed.QueryWindow(ctx, start, end)
	if err != nil {
		s.log.Warn().Err(err).Str("week", weekLabel).Msg("earnings feed unavailable, keeping stored values")
		return nil
	}

	// A driver can have many feed rows in a week; both maps accumulate.
	byDoc := make(map[string]*feedTotals)
	byName := make(map[string]*feedTotals)
	for _, e := range entries {
		if doc := normalizeDoc(e.DocNumber); doc != "" {
			accumulate(byDoc, doc, e)
		}
		if name := normalizeName(e.FullName); name != "" {
			accumulate(byName, name, e)
		}
	}

	updates := make([]repository.EarningsUpdate, 0)
	for _, r := range records {
		if r.Driver == nil {
			continue
		}
		// Document match wins unconditionally; the name is only a fallback
		// for feed rows with missing or mistyped documents.
		totals := byDoc[normalizeDoc(r.Driver.DocumentNumber)]
		if totals == nil {
			totals = byName[normalizeName(r.Driver.FullName())]
		}
		if totals == nil {
			// No feed data: the record stays unknown rather than becoming a
			// false zero.
			continue
		}

		total := totals.app.Add(totals.cash)
		// A matched record with any NULL column is always written: the feed
		// just confirmed the amount, even when it is zero, and NULL-as-zero
		// comparison would otherwise leave a confirmed zero looking unknown.
		confirmed := r.CashEarnings != nil && r.AppEarnings != nil && r.TotalEarnings != nil
		if confirmed &&
			s.withinTolerance(r.CashEarnings, totals.cash) &&
			s.withinTolerance(r.AppEarnings, totals.app) &&
			s.withinTolerance(r.TotalEarnings, total) {
			continue
		}
		updates = append(updates, repository.EarningsUpdate{
			RecordID: r.ID,
			Cash:     totals.cash,
			App:      totals.app,
			Total:    total,
		})
	}

	if len(updates) == 0 {
		return nil
	}
	if err := s.records.ApplyEarnings(ctx, updates); err != nil {
		s.log.Warn().Err(err).Str("week", weekLabel).Msg("earnings update batch failed")
		return nil
	}
	metrics.EarningsCorrections.Add(float64(len(updates)))
	s.log.Info().Str("week", weekLabel).Int("corrected", len(updates)).Msg("earnings reconciled")
	return updates
}

func (s *ReconcileService) withinTolerance(stored *decimal.Decimal, computed decimal.Decimal) bool {
	return currency.Parse(stored).Sub(currency.Parse(computed)).Abs().LessThanOrEqual(s.tolerance)
}

func accumulate(m map[string]*feedTotals, key string, e model.EarningsFeedEntry) {
	t := m[key]
	if t == nil {
		t = &feedTotals{cash: decimal.Zero, app: decimal.Zero}
		m[key] = t
	}
	t.cash = t.cash.Add(e.CashAmount)
	t.app = t.app.Add(e.AppAmount)
}

var docCleaner = regexp.MustCompile(`[^0-9A-Za-z]`)

func normalizeDoc(doc string) string {
	return docCleaner.ReplaceAllString(strings.TrimSpace(doc), "")
}

func normalizeName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}
