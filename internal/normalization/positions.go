package normalization

import (
	"lp-yield-reporter/internal/domain"
)

// Alias lists for monetary fields, in upstream preference order.
var (
	amountUSDAliases = []string{"amount_usd", "usd", "value_usd", "valueUsd", "amountUsd"}
	token0Aliases    = []string{"collected_fees_token0", "claimed_token0", "fees0", "amount0"}
	token1Aliases    = []string{"collected_fees_token1", "claimed_token1", "fees1", "amount1"}

	underlyingAliases = []string{"underlying_value", "underlying_value_usd"}
	feesValueAliases  = []string{"fees_value", "fees_value_usd"}
)

// ExtractPositionRecords pulls the list of position records out of a raw
// decoded API response. Accepted shapes: a bare list, or an object with a
// "positions" or "data" list. Non-record elements are discarded. Any other
// shape yields an empty list; malformed upstream payloads are never an error.
func ExtractPositionRecords(raw any) []map[string]any {
	switch v := raw.(type) {
	case []any:
		return filterRecords(v)
	case map[string]any:
		if inner, ok := v["positions"]; ok {
			if list, ok := inner.([]any); ok {
				return filterRecords(list)
			}
			return nil
		}
		if inner, ok := v["data"]; ok {
			if list, ok := inner.([]any); ok {
				return filterRecords(list)
			}
		}
		return nil
	default:
		return nil
	}
}

func filterRecords(list []any) []map[string]any {
	var records []map[string]any
	for _, el := range list {
		if m, ok := el.(map[string]any); ok {
			records = append(records, m)
		}
	}
	return records
}

// ParsePositions normalizes a raw API response into typed positions.
func ParsePositions(raw any, symbols SymbolMap) []domain.Position {
	records := ExtractPositionRecords(raw)
	positions := make([]domain.Position, 0, len(records))
	for _, rec := range records {
		positions = append(positions, ParsePosition(rec, symbols))
	}
	return positions
}

// ParsePosition normalizes one raw position record.
func ParsePosition(rec map[string]any, symbols SymbolMap) domain.Position {
	pos := domain.Position{
		ID:           domain.UnknownPositionID,
		Token0Symbol: ResolveSymbol(rec, "token0", symbols),
		Token1Symbol: ResolveSymbol(rec, "token1", symbols),
	}

	if id, ok := asString(rec["nft_id"]); ok && id != "" {
		pos.ID = id
	}
	pos.UnderlyingValueUSD = firstFloat(rec, underlyingAliases...)
	if fv := firstFloat(rec, feesValueAliases...); fv != nil {
		pos.FeesValueUSD = *fv
	}
	if b, ok := rec["in_range"].(bool); ok {
		pos.InRange = &b
	}

	if cfs, ok := rec["cash_flows"].([]any); ok {
		for _, el := range cfs {
			m, ok := el.(map[string]any)
			if !ok {
				continue
			}
			pos.CashFlows = append(pos.CashFlows, parseCashFlow(m))
		}
	}
	return pos
}

func parseCashFlow(m map[string]any) domain.CashFlowEvent {
	ev := domain.CashFlowEvent{Type: lower(m["type"])}
	ev.Timestamp, ev.TimestampOK = NormalizeTimestamp(m["timestamp"])
	ev.AmountUSD = firstFloat(m, amountUSDAliases...)
	ev.Token0Amount = firstFloat(m, token0Aliases...)
	ev.Token1Amount = firstFloat(m, token1Aliases...)
	ev.Price0USD, ev.Price1USD = parsePrices(m["prices"])
	ev.TotalDebt = firstFloat(m, "total_debt")
	return ev
}

// parsePrices extracts the per-token USD prices from an embedded price
// snapshot of the shape {"token0": {"usd": x}, "token1": {"usd": y}}.
// Missing pieces default to 0.
func parsePrices(raw any) (p0, p1 float64) {
	prices, ok := raw.(map[string]any)
	if !ok {
		return 0, 0
	}
	return tokenPrice(prices["token0"]), tokenPrice(prices["token1"])
}

func tokenPrice(raw any) float64 {
	m, ok := raw.(map[string]any)
	if !ok {
		return 0
	}
	if f, ok := toFloat(m["usd"]); ok {
		return f
	}
	return 0
}
