// Package metrics computes windowed financial aggregates from normalized
// position snapshots: realized fee income, outstanding debt, net value and
// annualized yield. Everything here is a pure fold over immutable inputs.
package metrics

import (
	"strings"

	"lp-yield-reporter/internal/domain"
)

// MatchPolicy selects which cash-flow event types count as fee income.
type MatchPolicy int

const (
	// MatchBroad accepts any event whose type contains a fee marker
	// ("fee", "collect", "claim"). Used for the daily window, where the
	// upstream taxonomy is partially unlabeled.
	MatchBroad MatchPolicy = iota

	// MatchStrict accepts the canonical collected-fee types only
	// (fees-collected, claimed-fees). Used for weekly and all-time
	// rollups, where attribution must be auditable.
	MatchStrict
)

var broadMarkers = []string{"fee", "collect", "claim"}

// Matches reports whether an event type counts as fee income under the
// policy. Event types are expected lowercased by normalization.
func (p MatchPolicy) Matches(eventType string) bool {
	if p == MatchStrict {
		return eventType == domain.EventTypeFeesCollected || eventType == domain.EventTypeClaimedFees
	}
	for _, marker := range broadMarkers {
		if strings.Contains(eventType, marker) {
			return true
		}
	}
	return false
}

// FeeAggregate is the realized fee income over one window.
type FeeAggregate struct {
	TotalUSD        float64
	Count           int
	ByPosition      map[string]float64
	CountByPosition map[string]int
}

// AggregateFees sums the USD value of matching cash-flow events across all
// given positions inside the half-open window [w.Start, w.End). Events
// without a parseable timestamp are excluded. Amounts that do not resolve
// strictly positive contribute nothing, to the total or the count.
func AggregateFees(positions []domain.Position, w domain.Window, policy MatchPolicy) FeeAggregate {
	agg := FeeAggregate{
		ByPosition:      make(map[string]float64),
		CountByPosition: make(map[string]int),
	}
	for i := range positions {
		pos := &positions[i]
		id := pos.ID
		if id == "" {
			id = domain.UnknownPositionID
		}
		for _, ev := range pos.CashFlows {
			if !policy.Matches(ev.Type) {
				continue
			}
			if !ev.TimestampOK || !w.Contains(ev.Timestamp) {
				continue
			}
			amt := ResolveUSD(ev)
			if amt <= 0 {
				continue
			}
			agg.TotalUSD += amt
			agg.Count++
			agg.ByPosition[id] += amt
			agg.CountByPosition[id]++
		}
	}
	return agg
}

// ResolveUSD returns the USD value of one event: the explicit amount when
// the upstream carried one, otherwise the amount reconstructed from token
// quantities and the embedded price snapshot.
func ResolveUSD(ev domain.CashFlowEvent) float64 {
	if ev.AmountUSD != nil {
		return *ev.AmountUSD
	}
	return ReconstructUSD(ev)
}
