package reporting

import (
	"math"
	"strings"
	"testing"
	"time"

	"lp-yield-reporter/internal/domain"
	"lp-yield-reporter/internal/normalization"
)

func fp(v float64) *float64 { return &v }

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// testNow is after the 09:00 JST cutoff on 2024-05-10, so the daily window
// is [2024-05-09 09:00, 2024-05-10 09:00) JST.
var testNow = time.Date(2024, 5, 10, 12, 0, 0, 0, jst)

func newTestGenerator() *Generator {
	return NewGenerator(DefaultConfig()).WithClock(fixedClock(testNow))
}

func feeEvent(typ string, ts int64, usd float64) domain.CashFlowEvent {
	return domain.CashFlowEvent{Type: typ, Timestamp: ts, TimestampOK: true, AmountUSD: fp(usd)}
}

func TestGeneratorDaily(t *testing.T) {
	g := newTestGenerator()
	end := PeriodEnd(testNow, jst, 9)
	inWindow := end.Unix() - 3600
	group := domain.Group{Name: "main", Address: "0xabc"}

	inRange := true
	open := []domain.Position{{
		ID:                 "111",
		Token0Symbol:       "WETH",
		Token1Symbol:       "USDC",
		UnderlyingValueUSD: fp(1000),
		FeesValueUSD:       2,
		InRange:            &inRange,
		CashFlows: []domain.CashFlowEvent{
			feeEvent(domain.EventTypeFeesCollected, inWindow, 10),
			feeEvent(domain.EventTypeFeesCollected, end.Unix(), 50), // at cutoff: next period
		},
	}}

	r := g.Daily(group, open, nil)

	if r.Cadence != domain.CadenceDaily {
		t.Errorf("unexpected cadence %q", r.Cadence)
	}
	if r.RealizedFeesUSD != 10 {
		t.Errorf("expected realized 10, got %f", r.RealizedFeesUSD)
	}
	if r.AccruedTotalUSD != 2 {
		t.Errorf("expected accrued 2, got %f", r.AccruedTotalUSD)
	}
	if r.NetTotalUSD != 1000 {
		t.Errorf("expected net 1000, got %f", r.NetTotalUSD)
	}
	if r.EstimatedTotalUSD != 12 {
		t.Errorf("expected estimated 12, got %f", r.EstimatedTotalUSD)
	}
	// (10 + 2) / 1000 * 365 * 100
	if r.FeeAPRPct == nil || !near(*r.FeeAPRPct, 438) {
		t.Errorf("expected APR 438, got %v", r.FeeAPRPct)
	}
	if len(r.Positions) != 1 {
		t.Fatalf("expected 1 position line, got %d", len(r.Positions))
	}
	line := r.Positions[0]
	if line.PairLabel != "WETH/USDC" {
		t.Errorf("unexpected pair %q", line.PairLabel)
	}
	if line.Status != domain.StatusActive {
		t.Errorf("unexpected status %q", line.Status)
	}
	if line.FeeAPRPct == nil || !near(*line.FeeAPRPct, 438) {
		t.Errorf("expected position APR 438, got %v", line.FeeAPRPct)
	}
}

func TestGeneratorDaily_BroadMatching(t *testing.T) {
	g := newTestGenerator()
	end := PeriodEnd(testNow, jst, 9)
	ts := end.Unix() - 10

	open := []domain.Position{{
		ID:                 "1",
		UnderlyingValueUSD: fp(100),
		CashFlows: []domain.CashFlowEvent{
			feeEvent("unlabeled-collect", ts, 3),
			feeEvent("swap", ts, 100),
		},
	}}

	r := g.Daily(domain.Group{Name: "g"}, open, nil)
	if r.RealizedFeesUSD != 3 {
		t.Errorf("expected broad-matched 3, got %f", r.RealizedFeesUSD)
	}
}

func TestGeneratorDaily_MissingNetRendersUndefined(t *testing.T) {
	g := newTestGenerator()
	open := []domain.Position{{ID: "1", FeesValueUSD: 5}}

	r := g.Daily(domain.Group{Name: "g"}, open, nil)
	if r.Positions[0].NetUSD != nil {
		t.Error("expected nil net on line")
	}
	if r.Positions[0].FeeAPRPct != nil {
		t.Error("expected nil APR on line")
	}
	if r.NetTotalUSD != 0 {
		t.Errorf("expected net total 0, got %f", r.NetTotalUSD)
	}
	// Group APR undefined when the net total is not strictly positive.
	if r.FeeAPRPct != nil {
		t.Error("expected nil group APR")
	}
}

func TestGeneratorWeekly(t *testing.T) {
	g := newTestGenerator()
	end := PeriodEnd(testNow, jst, 9)
	w := WeeklyWindow(end)

	open := []domain.Position{{
		ID:                 "1",
		UnderlyingValueUSD: fp(520),
		FeesValueUSD:       3,
		CashFlows: []domain.CashFlowEvent{
			feeEvent(domain.EventTypeFeesCollected, w.Start+100, 10),
			feeEvent("unlabeled-collect", w.Start+200, 99), // strict: excluded
			feeEvent(domain.EventTypeClaimedFees, w.Start-100, 4),  // previous week
			feeEvent(domain.EventTypeFeesCollected, w.Start-8*24*3600, 6), // older
		},
	}}

	r := g.Weekly(domain.Group{Name: "g"}, open, nil)

	if r.RealizedFeesUSD != 10 {
		t.Errorf("expected strict realized 10, got %f", r.RealizedFeesUSD)
	}
	if r.PrevRealizedFeesUSD == nil || *r.PrevRealizedFeesUSD != 4 {
		t.Errorf("expected prev 4, got %v", r.PrevRealizedFeesUSD)
	}
	if r.RealizedDeltaUSD == nil || *r.RealizedDeltaUSD != 6 {
		t.Errorf("expected delta 6, got %v", r.RealizedDeltaUSD)
	}
	if r.AllTimeRealizedUSD == nil || *r.AllTimeRealizedUSD != 20 {
		t.Errorf("expected all-time 20, got %v", r.AllTimeRealizedUSD)
	}
	// Weekly APR is realized-only: 10 / 520 * 52 * 100 = 100.
	if r.FeeAPRPct == nil || !near(*r.FeeAPRPct, 100) {
		t.Errorf("expected APR 100, got %v", r.FeeAPRPct)
	}
	// Accrued is reported but stays out of the weekly estimate.
	if r.EstimatedTotalUSD != 10 {
		t.Errorf("expected estimated 10, got %f", r.EstimatedTotalUSD)
	}
}

func TestGeneratorWeekly_ExitedPositionsCountTowardRealized(t *testing.T) {
	g := newTestGenerator()
	end := PeriodEnd(testNow, jst, 9)
	w := WeeklyWindow(end)

	exited := []domain.Position{{
		ID: "gone",
		CashFlows: []domain.CashFlowEvent{
			feeEvent(domain.EventTypeFeesCollected, w.Start+50, 7),
		},
	}}

	r := g.Weekly(domain.Group{Name: "g"}, nil, exited)
	if r.RealizedFeesUSD != 7 {
		t.Errorf("expected realized 7 from exited position, got %f", r.RealizedFeesUSD)
	}
	if len(r.Positions) != 0 {
		t.Errorf("exited positions must not get report lines, got %d", len(r.Positions))
	}
}

func TestGeneratorHistorical(t *testing.T) {
	g := newTestGenerator()
	// A 73-day window annualizes by a factor of 5.
	w := domain.Window{Start: 1_700_000_000, End: 1_700_000_000 + 73*24*3600}

	open := []domain.Position{{
		ID:                 "1",
		UnderlyingValueUSD: fp(100),
		CashFlows: []domain.CashFlowEvent{
			feeEvent(domain.EventTypeFeesCollected, w.Start, 2),
		},
	}}

	r := g.Historical(domain.Group{Name: "g"}, open, nil, w)
	if r.Cadence != domain.CadenceBackfill {
		t.Errorf("unexpected cadence %q", r.Cadence)
	}
	if r.RealizedFeesUSD != 2 {
		t.Errorf("expected realized 2, got %f", r.RealizedFeesUSD)
	}
	// 2 / 100 * 5 * 100
	if r.FeeAPRPct == nil || !near(*r.FeeAPRPct, 1000) {
		t.Errorf("expected APR 1000, got %v", r.FeeAPRPct)
	}
	if r.PeriodEnd.Unix() != w.End {
		t.Errorf("expected period end %d, got %d", w.End, r.PeriodEnd.Unix())
	}
}

func TestGeneratorDaily_NonFiniteAmountsStayOutOfTotals(t *testing.T) {
	g := newTestGenerator()
	end := PeriodEnd(testNow, jst, 9)
	ts := float64(end.Unix() - 3600)

	raw := map[string]any{
		"positions": []any{
			map[string]any{
				"nft_id":           float64(111),
				"underlying_value": float64(1000),
				"cash_flows": []any{
					map[string]any{"type": "fees-collected", "timestamp": ts, "amount_usd": "NaN"},
					map[string]any{"type": "fees-collected", "timestamp": ts, "amount_usd": "Inf"},
					map[string]any{"type": "fees-collected", "timestamp": ts, "amount_usd": float64(3)},
				},
			},
		},
	}
	open := normalization.ParsePositions(raw, nil)

	r := g.Daily(domain.Group{Name: "g"}, open, nil)
	if r.RealizedFeesUSD != 3 {
		t.Errorf("expected realized 3, got %f", r.RealizedFeesUSD)
	}

	out := RenderReport(r)
	if !strings.Contains(out, "Realized Fees (24h): $3.00") {
		t.Errorf("report missing realized line\n%s", out)
	}
}

func TestGeneratorOutOfRangeStatus(t *testing.T) {
	g := newTestGenerator()
	out := false
	open := []domain.Position{{ID: "1", UnderlyingValueUSD: fp(10), InRange: &out}}

	r := g.Daily(domain.Group{Name: "g"}, open, nil)
	if r.Positions[0].Status != domain.StatusOutOfRange {
		t.Errorf("unexpected status %q", r.Positions[0].Status)
	}
}
