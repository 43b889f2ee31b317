package metrics

import (
	"math"

	"lp-yield-reporter/internal/domain"
)

// OutstandingDebt derives a position's current debt from its borrow/repay
// event history, floored at zero.
//
// When any borrow/repay event carries a total_debt running balance, the one
// with the greatest timestamp is authoritative and overrides summed flows;
// ties go to the later event in scan order. Events without a parseable
// timestamp compete with timestamp 0.
//
// Without any balance snapshot, debt = Σ|borrow USD| − Σ|repay USD|.
// Fully or over-repaid positions yield zero, never negative.
func OutstandingDebt(pos domain.Position) float64 {
	var latest *float64
	latestTS := int64(-1)

	for _, ev := range pos.CashFlows {
		if ev.Type != domain.EventTypeBorrow && ev.Type != domain.EventTypeRepay {
			continue
		}
		if ev.TotalDebt == nil {
			continue
		}
		ts := int64(0)
		if ev.TimestampOK {
			ts = ev.Timestamp
		}
		if ts >= latestTS {
			latestTS = ts
			latest = ev.TotalDebt
		}
	}
	if latest != nil {
		return math.Max(*latest, 0)
	}

	var borrowUSD, repayUSD float64
	for _, ev := range pos.CashFlows {
		if ev.Type != domain.EventTypeBorrow && ev.Type != domain.EventTypeRepay {
			continue
		}
		if ev.AmountUSD == nil {
			continue
		}
		v := math.Abs(*ev.AmountUSD)
		if ev.Type == domain.EventTypeBorrow {
			borrowUSD += v
		} else {
			repayUSD += v
		}
	}
	if debt := borrowUSD - repayUSD; debt > 0 {
		return debt
	}
	return 0
}
