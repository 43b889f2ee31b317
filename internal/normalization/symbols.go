package normalization

import "strings"

// SymbolMap maps lowercased token contract addresses to display symbols.
// It is injected at construction time from configuration, never read from
// package state.
type SymbolMap map[string]string

// Lookup resolves an address to a symbol, tolerating case and whitespace.
func (m SymbolMap) Lookup(addr string) (string, bool) {
	s, ok := m[strings.ToLower(strings.TrimSpace(addr))]
	return s, ok
}

// unknownSymbol labels tokens that resolve to nothing.
const unknownSymbol = "TOKEN"

// ResolveSymbol derives a display symbol for one side of the pool. which is
// "token0" or "token1". Preference order: a symbol/ticker/name field on the
// token object, the configured address map, the parallel "tokens" list, then
// the generic placeholder.
func ResolveSymbol(rec map[string]any, which string, symbols SymbolMap) string {
	switch v := rec[which].(type) {
	case map[string]any:
		if s := symbolFromToken(v, symbols); s != "" {
			return s
		}
	case string:
		if s, ok := symbols.Lookup(v); ok {
			return s
		}
	}

	if toks, ok := rec["tokens"].([]any); ok && len(toks) >= 2 {
		idx := 0
		if which == "token1" {
			idx = 1
		}
		if t, ok := toks[idx].(map[string]any); ok {
			if s := symbolFromToken(t, symbols); s != "" {
				return s
			}
		}
	}
	return unknownSymbol
}

func symbolFromToken(tok map[string]any, symbols SymbolMap) string {
	for _, k := range []string{"symbol", "ticker", "name"} {
		if s, ok := tok[k].(string); ok && s != "" {
			return s
		}
	}
	for _, k := range []string{"address", "token_address", "tokenAddress"} {
		if addr, ok := asString(tok[k]); ok && addr != "" {
			if s, ok := symbols.Lookup(addr); ok {
				return s
			}
			return unknownSymbol
		}
	}
	return ""
}
