package metrics

import (
	"math"

	"lp-yield-reporter/internal/domain"
)

// ReconstructUSD derives a USD amount for an event that lacks an explicit
// one: |qty0|·price0 + |qty1|·price1 against the event's price snapshot.
// Missing quantities and prices count as 0. The result is never negative;
// a zero result means "no contribution", not an error.
func ReconstructUSD(ev domain.CashFlowEvent) float64 {
	var q0, q1 float64
	if ev.Token0Amount != nil {
		q0 = math.Abs(*ev.Token0Amount)
	}
	if ev.Token1Amount != nil {
		q1 = math.Abs(*ev.Token1Amount)
	}
	amt := q0*ev.Price0USD + q1*ev.Price1USD
	if amt < 0 {
		return 0
	}
	return amt
}
