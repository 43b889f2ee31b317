package metrics

import (
	"math"
	"testing"

	"lp-yield-reporter/internal/domain"
)

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestNetValueUSD_NilPooledValue(t *testing.T) {
	if got := NetValueUSD(domain.Position{}); got != nil {
		t.Errorf("expected nil net, got %v", *got)
	}
}

func TestNetValueUSD_SubtractsDebt(t *testing.T) {
	pos := domain.Position{
		UnderlyingValueUSD: fp(1000),
		CashFlows: []domain.CashFlowEvent{
			debtEvent(domain.EventTypeBorrow, 1, 250, nil),
		},
	}
	if got := NetValueUSD(pos); got == nil || *got != 750 {
		t.Errorf("expected 750, got %v", got)
	}
}

func TestNetValueUSD_NegativeAllowed(t *testing.T) {
	pos := domain.Position{
		UnderlyingValueUSD: fp(100),
		CashFlows: []domain.CashFlowEvent{
			debtEvent(domain.EventTypeBorrow, 1, 0, fp(300)),
		},
	}
	if got := NetValueUSD(pos); got == nil || *got != -200 {
		t.Errorf("expected -200, got %v", got)
	}
}

func TestFeeAPRPct(t *testing.T) {
	if got := FeeAPRPct(5, fp(100), 365); got == nil || !near(*got, 1825) {
		t.Errorf("expected 1825, got %v", got)
	}
	if got := FeeAPRPct(5, nil, 365); got != nil {
		t.Errorf("expected nil for missing net, got %v", *got)
	}
	if got := FeeAPRPct(5, fp(0), 365); got != nil {
		t.Errorf("expected nil for zero net, got %v", *got)
	}
	if got := FeeAPRPct(5, fp(-10), 365); got != nil {
		t.Errorf("expected nil for negative net, got %v", *got)
	}
}

func TestReconstructUSD(t *testing.T) {
	ev := domain.CashFlowEvent{
		Token0Amount: fp(-2), Price0USD: 1.5,
		Token1Amount: fp(3), Price1USD: 2,
	}
	if got := ReconstructUSD(ev); got != 9 {
		t.Errorf("expected 9, got %f", got)
	}
	if got := ReconstructUSD(domain.CashFlowEvent{}); got != 0 {
		t.Errorf("expected 0 for empty event, got %f", got)
	}
}
