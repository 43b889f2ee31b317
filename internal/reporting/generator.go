// Package reporting composes per-position and per-group summaries from the
// aggregation core and renders them for delivery.
package reporting

import (
	"time"

	"lp-yield-reporter/internal/domain"
	"lp-yield-reporter/internal/metrics"
)

// Seconds in a (non-leap) year, used to annualize custom windows.
const yearSeconds = 365 * 24 * 3600

// Config tunes report composition. All cadence constants are injected here;
// nothing is hard-coded in the computation.
type Config struct {
	Location             *time.Location // report timezone
	PeriodEndHour        int            // daily cutoff hour in Location
	DailyPeriodsPerYear  float64
	WeeklyPeriodsPerYear float64
}

// DefaultConfig matches the production reporting cadence: 09:00 UTC+9
// cutoffs, 365 daily periods, 52 weekly periods per year.
func DefaultConfig() Config {
	return Config{
		Location:             time.FixedZone("JST", 9*3600),
		PeriodEndHour:        9,
		DailyPeriodsPerYear:  365,
		WeeklyPeriodsPerYear: 52,
	}
}

// Generator produces group reports from normalized position snapshots.
// It holds no state across invocations; each report is a pure fold over an
// immutable snapshot and a time window.
type Generator struct {
	cfg Config
	now func() time.Time // injectable clock for deterministic output
}

// NewGenerator creates a report generator.
func NewGenerator(cfg Config) *Generator {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.DailyPeriodsPerYear == 0 {
		cfg.DailyPeriodsPerYear = 365
	}
	if cfg.WeeklyPeriodsPerYear == 0 {
		cfg.WeeklyPeriodsPerYear = 52
	}
	return &Generator{
		cfg: cfg,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// CurrentPeriodEnd returns the daily cutoff the next daily/weekly report
// will close on, used as the ledger period key.
func (g *Generator) CurrentPeriodEnd() time.Time {
	return PeriodEnd(g.now(), g.cfg.Location, g.cfg.PeriodEndHour)
}

// Daily composes the 24h report ending at the most recent daily cutoff.
// Fee capture uses the broad matching policy; accrued (unclaimed) fee value
// joins both the per-position and the group APR numerator.
func (g *Generator) Daily(group domain.Group, open, exited []domain.Position) *domain.GroupReport {
	end := PeriodEnd(g.now(), g.cfg.Location, g.cfg.PeriodEndHour)
	return g.compose(composeParams{
		group: group, open: open, exited: exited,
		window:         DailyWindow(end),
		periodEnd:      end,
		cadence:        domain.CadenceDaily,
		policy:         metrics.MatchBroad,
		periodsPerYear: g.cfg.DailyPeriodsPerYear,
		includeAccrued: true,
	})
}

// Weekly composes the 7d report ending at the most recent daily cutoff.
// Attribution is strict (auditable event types only) and the APR numerator
// is realized income alone. Includes prior-week and all-time comparisons.
func (g *Generator) Weekly(group domain.Group, open, exited []domain.Position) *domain.GroupReport {
	end := PeriodEnd(g.now(), g.cfg.Location, g.cfg.PeriodEndHour)
	w := WeeklyWindow(end)
	r := g.compose(composeParams{
		group: group, open: open, exited: exited,
		window:         w,
		periodEnd:      end,
		cadence:        domain.CadenceWeekly,
		policy:         metrics.MatchStrict,
		periodsPerYear: g.cfg.WeeklyPeriodsPerYear,
	})

	all := concat(open, exited)
	prevWindow := domain.Window{Start: w.Start - 7*24*3600, End: w.Start}
	prev := metrics.AggregateFees(all, prevWindow, metrics.MatchStrict).TotalUSD
	delta := r.RealizedFeesUSD - prev
	allTime := metrics.AggregateFees(all, AllTimeWindow(end), metrics.MatchStrict).TotalUSD

	r.PrevRealizedFeesUSD = &prev
	r.RealizedDeltaUSD = &delta
	r.AllTimeRealizedUSD = &allTime
	return r
}

// Historical composes a report over an explicit [start, end) window, for
// backfills. Strict attribution; APR is annualized by the window length.
func (g *Generator) Historical(group domain.Group, open, exited []domain.Position, w domain.Window) *domain.GroupReport {
	periodsPerYear := 0.0
	if w.Seconds() > 0 {
		periodsPerYear = float64(yearSeconds) / float64(w.Seconds())
	}
	return g.compose(composeParams{
		group: group, open: open, exited: exited,
		window:         w,
		periodEnd:      time.Unix(w.End, 0).In(g.cfg.Location),
		cadence:        domain.CadenceBackfill,
		policy:         metrics.MatchStrict,
		periodsPerYear: periodsPerYear,
	})
}

type composeParams struct {
	group          domain.Group
	open, exited   []domain.Position
	window         domain.Window
	periodEnd      time.Time
	cadence        string
	policy         metrics.MatchPolicy
	periodsPerYear float64
	includeAccrued bool
}

// compose folds the aggregation core over one snapshot and window.
// Realized income is aggregated across open and exited positions; position
// lines and net/accrued totals cover the currently-open ones.
func (g *Generator) compose(p composeParams) *domain.GroupReport {
	agg := metrics.AggregateFees(concat(p.open, p.exited), p.window, p.policy)

	r := &domain.GroupReport{
		GroupName:        p.group.Name,
		GroupAddress:     p.group.Address,
		Cadence:          p.cadence,
		Window:           p.window,
		PeriodEnd:        p.periodEnd,
		RealizedFeesUSD:  agg.TotalUSD,
		TransactionCount: agg.Count,
		Positions:        make([]domain.PositionReport, 0, len(p.open)),
	}

	for i := range p.open {
		pos := &p.open[i]

		status := domain.StatusActive
		if pos.OutOfRange() {
			status = domain.StatusOutOfRange
		}

		net := metrics.NetValueUSD(*pos)
		if net != nil {
			// Undefined net stays N/A on the line but counts as 0 here.
			r.NetTotalUSD += *net
		}
		r.AccruedTotalUSD += pos.FeesValueUSD

		realized := agg.ByPosition[pos.ID]
		aprBase := realized
		if p.includeAccrued {
			aprBase += pos.FeesValueUSD
		}

		r.Positions = append(r.Positions, domain.PositionReport{
			ID:              pos.ID,
			PairLabel:       pos.Token0Symbol + "/" + pos.Token1Symbol,
			Status:          status,
			NetUSD:          net,
			AccruedFeesUSD:  pos.FeesValueUSD,
			RealizedFeesUSD: realized,
			FeeAPRPct:       metrics.FeeAPRPct(aprBase, net, p.periodsPerYear),
		})
	}

	r.EstimatedTotalUSD = r.RealizedFeesUSD
	if p.includeAccrued {
		r.EstimatedTotalUSD += r.AccruedTotalUSD
	}
	net := r.NetTotalUSD
	r.FeeAPRPct = metrics.FeeAPRPct(r.EstimatedTotalUSD, &net, p.periodsPerYear)

	return r
}

func concat(open, exited []domain.Position) []domain.Position {
	all := make([]domain.Position, 0, len(open)+len(exited))
	all = append(all, open...)
	return append(all, exited...)
}
