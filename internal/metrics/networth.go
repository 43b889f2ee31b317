package metrics

import "lp-yield-reporter/internal/domain"

// NetValueUSD returns pooled value minus outstanding debt, or nil when the
// pooled value is absent upstream. Undefined propagates as nil (rendered
// "N/A" at the report boundary), never coerced to 0. A negative net is
// meaningful: debt exceeding pooled value.
func NetValueUSD(pos domain.Position) *float64 {
	if pos.UnderlyingValueUSD == nil {
		return nil
	}
	net := *pos.UnderlyingValueUSD - OutstandingDebt(pos)
	return &net
}

// FeeAPRPct annualizes fee income against net value as a percentage:
// income / net × periodsPerYear × 100. Returns nil when net is nil or not
// strictly positive; the yield is undefined there, not zero.
func FeeAPRPct(feeIncomeUSD float64, netUSD *float64, periodsPerYear float64) *float64 {
	if netUSD == nil || *netUSD <= 0 {
		return nil
	}
	apr := feeIncomeUSD / *netUSD * periodsPerYear * 100
	return &apr
}
