package domain

import "time"

// Report cadences.
const (
	CadenceDaily    = "daily"
	CadenceWeekly   = "weekly"
	CadenceBackfill = "backfill"
)

// Position status values.
const (
	StatusActive     = "ACTIVE"
	StatusOutOfRange = "OUT_OF_RANGE"
)

// PositionReport is one per-position line of a group report.
type PositionReport struct {
	ID              string
	PairLabel       string // e.g. "WETH/USDC", empty when symbols are unknown
	Status          string // ACTIVE | OUT_OF_RANGE
	NetUSD          *float64
	AccruedFeesUSD  float64
	RealizedFeesUSD float64 // this position's share of in-window fee income
	FeeAPRPct       *float64
}

// GroupReport is the computed summary for one group over one window.
type GroupReport struct {
	GroupName    string
	GroupAddress string
	Cadence      string
	Window       Window
	PeriodEnd    time.Time

	NetTotalUSD       float64
	AccruedTotalUSD   float64
	RealizedFeesUSD   float64
	EstimatedTotalUSD float64 // realized + accrued, the APR numerator
	TransactionCount  int
	FeeAPRPct         *float64

	Positions []PositionReport

	// Weekly-only comparisons, nil for other cadences.
	PrevRealizedFeesUSD *float64
	RealizedDeltaUSD    *float64
	AllTimeRealizedUSD  *float64
}
