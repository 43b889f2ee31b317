// Package ledger appends computed report aggregates to an external
// wide/pivoted period ledger: row 1 numeric group ids, row 2 display names,
// row 3 addresses, rows 4+ one row per reporting period with one value
// column per group.
package ledger

import (
	"context"
	"strconv"
	"strings"
)

// GroupValue is one group's aggregate for a reporting period.
type GroupValue struct {
	Name    string
	Address string
	Value   float64
}

// Ledger records period aggregates. Implementations must update an existing
// period row in place rather than duplicating it, and append a new column
// for a previously unseen group.
type Ledger interface {
	RecordPeriod(ctx context.Context, periodKey string, values []GroupValue) error
}

// Header labels in column A of the three header rows.
const (
	headerID      = "id"
	headerName    = "group"
	headerAddress = "address"
)

// applyPeriod returns table with the period row upserted. The input table is
// not mutated; rows are copied before modification. A table without the
// three header rows is (re)initialized.
func applyPeriod(table [][]string, periodKey string, values []GroupValue) [][]string {
	out := make([][]string, len(table))
	for i, row := range table {
		out[i] = append([]string(nil), row...)
	}

	if len(out) < 3 {
		out = [][]string{{headerID}, {headerName}, {headerAddress}}
	}

	width := 0
	for _, row := range out {
		if len(row) > width {
			width = len(row)
		}
	}

	for _, gv := range values {
		col := findColumn(out[2], gv.Address)
		if col < 0 {
			col = width
			width++
			out[0] = padTo(out[0], width)
			out[1] = padTo(out[1], width)
			out[2] = padTo(out[2], width)
			out[0][col] = strconv.Itoa(nextGroupID(out[0]))
			out[1][col] = gv.Name
			out[2][col] = gv.Address
		}

		rowIdx := findPeriodRow(out, periodKey)
		if rowIdx < 0 {
			rowIdx = len(out)
			out = append(out, []string{periodKey})
		}
		out[rowIdx] = padTo(out[rowIdx], width)
		out[rowIdx][col] = strconv.FormatFloat(gv.Value, 'f', 2, 64)
	}

	// Keep every row rectangular so range writes stay aligned.
	for i, row := range out {
		out[i] = padTo(row, width)
	}
	return out
}

// findColumn locates a group column by address in the address header row.
func findColumn(addressRow []string, address string) int {
	needle := strings.ToLower(strings.TrimSpace(address))
	for i := 1; i < len(addressRow); i++ {
		if strings.ToLower(strings.TrimSpace(addressRow[i])) == needle {
			return i
		}
	}
	return -1
}

// findPeriodRow locates an existing period row by its key in column A.
func findPeriodRow(table [][]string, periodKey string) int {
	for i := 3; i < len(table); i++ {
		if len(table[i]) > 0 && table[i][0] == periodKey {
			return i
		}
	}
	return -1
}

// nextGroupID returns one past the greatest numeric id in the id header row.
func nextGroupID(idRow []string) int {
	max := 0
	for i := 1; i < len(idRow); i++ {
		if id, err := strconv.Atoi(strings.TrimSpace(idRow[i])); err == nil && id > max {
			max = id
		}
	}
	return max + 1
}

func padTo(row []string, width int) []string {
	for len(row) < width {
		row = append(row, "")
	}
	return row
}
