package domain

// CashFlowEvent is one ledger entry on a position: a fee collection, borrow
// or repay action reported by the upstream positions API. All fields are
// resolved by the normalization layer; aggregation code never sees raw maps.
type CashFlowEvent struct {
	Type string // lowercased upstream type tag, e.g. "fees-collected"

	// Timestamp is epoch seconds. TimestampOK is false when the raw value
	// could not be parsed; such events are excluded from window aggregates.
	Timestamp   int64
	TimestampOK bool

	// AmountUSD is the explicit signed USD amount, nil when absent or
	// unparsable upstream.
	AmountUSD *float64

	// Token quantities, first present value among the upstream alias lists
	// (collected_fees_tokenN, claimed_tokenN, feesN, amountN).
	Token0Amount *float64
	Token1Amount *float64

	// USD prices from the event's embedded price snapshot, 0 when absent.
	Price0USD float64
	Price1USD float64

	// TotalDebt is the running debt balance carried by some borrow/repay
	// events. Authoritative over summed flows when present.
	TotalDebt *float64
}

// Canonical cash-flow type tags used by the aggregation core.
const (
	EventTypeFeesCollected = "fees-collected"
	EventTypeClaimedFees   = "claimed-fees"
	EventTypeBorrow        = "lendor-borrow"
	EventTypeRepay         = "lendor-repay"
)

// UnknownPositionID keys events whose position carries no id.
const UnknownPositionID = "UNKNOWN"

// Position is an immutable snapshot of one liquidity position.
type Position struct {
	ID                 string
	UnderlyingValueUSD *float64 // pooled value, nil when upstream omits it
	FeesValueUSD       float64  // accrued, not yet collected fee value
	InRange            *bool    // nil or true means the position is in range
	Token0Symbol       string
	Token1Symbol       string
	CashFlows          []CashFlowEvent
}

// OutOfRange reports whether the position carries an explicit in_range=false
// flag. Absence of the flag counts as in range.
func (p *Position) OutOfRange() bool { return p.InRange != nil && !*p.InRange }

// Group is one custodial account being reported on.
type Group struct {
	Name    string
	Address string
	ChatID  string // notification destination, empty means the default chat
}
