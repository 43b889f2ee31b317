package ledger

import (
	"context"
	"sync"
)

// Memory is an in-memory Ledger with the same pivot semantics as the sheet
// client. Used in tests and dry runs.
type Memory struct {
	mu    sync.Mutex
	table [][]string
}

// NewMemory creates an empty in-memory ledger.
func NewMemory() *Memory {
	return &Memory{}
}

// RecordPeriod upserts one period row.
func (m *Memory) RecordPeriod(_ context.Context, periodKey string, values []GroupValue) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.table = applyPeriod(m.table, periodKey, values)
	return nil
}

// Snapshot returns a copy of the current table.
func (m *Memory) Snapshot() [][]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]string, len(m.table))
	for i, row := range m.table {
		out[i] = append([]string(nil), row...)
	}
	return out
}
