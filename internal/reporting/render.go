package reporting

import (
	"fmt"
	"html"
	"strings"
	"time"

	"lp-yield-reporter/internal/domain"
)

const (
	divider         = "────────────────"
	positionURLBase = "https://app.uniswap.org/positions/v3/base/"
)

// RenderReport renders a group report as Telegram-safe HTML text.
func RenderReport(r *domain.GroupReport) string {
	switch r.Cadence {
	case domain.CadenceWeekly:
		return renderWeekly(r)
	case domain.CadenceBackfill:
		return renderBackfill(r)
	default:
		return renderDaily(r)
	}
}

func renderDaily(r *domain.GroupReport) string {
	var sb strings.Builder

	sb.WriteString("<b>Liquidity Mining — Daily</b>\n")
	fmt.Fprintf(&sb, "Period End: %s\n", r.PeriodEnd.Format("2006-01-02 15:04 MST"))
	sb.WriteString(divider + "\n")
	renderGroupHeader(&sb, r)

	fmt.Fprintf(&sb, "• Est. Total Earnings (24h + Unclaimed): %s\n", fmtMoney(r.EstimatedTotalUSD))
	fmt.Fprintf(&sb, "• Realized Fees (24h): %s\n", fmtMoney(r.RealizedFeesUSD))
	fmt.Fprintf(&sb, "• Accrued Fees (Unclaimed): %s\n", fmtMoney(r.AccruedTotalUSD))
	fmt.Fprintf(&sb, "• Group Fee APR: %s\n", fmtPctPtr(r.FeeAPRPct))
	fmt.Fprintf(&sb, "• Net Total: %s\n", fmtMoney(r.NetTotalUSD))
	fmt.Fprintf(&sb, "• Transactions: %d\n", r.TransactionCount)

	renderPositionLines(&sb, r.Positions)
	return sb.String()
}

func renderWeekly(r *domain.GroupReport) string {
	var sb strings.Builder

	sb.WriteString("<b>Liquidity Mining — Weekly</b>\n")
	fmt.Fprintf(&sb, "Week Ending: %s\n", r.PeriodEnd.Format("2006-01-02 15:04 MST"))
	fmt.Fprintf(&sb, "Period: %s → %s\n",
		formatWindowBound(r, r.Window.Start), formatWindowBound(r, r.Window.End))
	sb.WriteString(divider + "\n")
	renderGroupHeader(&sb, r)

	fmt.Fprintf(&sb, "• Realized Fees (7d): %s\n", fmtMoney(r.RealizedFeesUSD))
	fmt.Fprintf(&sb, "• Weekly Fee APR: %s\n", fmtPctPtr(r.FeeAPRPct))
	fmt.Fprintf(&sb, "• Transactions (7d): %d\n", r.TransactionCount)
	fmt.Fprintf(&sb, "• Prev Week Realized: %s\n", fmtMoneyPtr(r.PrevRealizedFeesUSD))
	fmt.Fprintf(&sb, "• Week-over-Week: %s\n", fmtMoneyDelta(r.RealizedDeltaUSD))
	fmt.Fprintf(&sb, "• All-Time Realized: %s\n", fmtMoneyPtr(r.AllTimeRealizedUSD))

	renderPositionLines(&sb, r.Positions)
	return sb.String()
}

func renderBackfill(r *domain.GroupReport) string {
	var sb strings.Builder

	sb.WriteString("<b>Liquidity Mining — Historical</b>\n")
	fmt.Fprintf(&sb, "Period: %s → %s\n",
		formatWindowBound(r, r.Window.Start), formatWindowBound(r, r.Window.End))
	sb.WriteString(divider + "\n")
	renderGroupHeader(&sb, r)

	fmt.Fprintf(&sb, "• Realized Fees: %s\n", fmtMoney(r.RealizedFeesUSD))
	fmt.Fprintf(&sb, "• Annualized Fee APR: %s\n", fmtPctPtr(r.FeeAPRPct))
	fmt.Fprintf(&sb, "• Transactions: %d\n", r.TransactionCount)

	return sb.String()
}

// RenderError builds the best-effort failure notification for one group.
func RenderError(group domain.Group, err error) string {
	return fmt.Sprintf("<b>REPORT ERROR</b>\nGroup: %s\nAddress: %s\n\n%s",
		html.EscapeString(group.Name),
		html.EscapeString(group.Address),
		html.EscapeString(err.Error()))
}

func renderGroupHeader(sb *strings.Builder, r *domain.GroupReport) {
	fmt.Fprintf(sb, "GROUP %s\n<code>%s</code>\n\n",
		html.EscapeString(r.GroupName), html.EscapeString(r.GroupAddress))
}

func renderPositionLines(sb *strings.Builder, positions []domain.PositionReport) {
	for _, p := range positions {
		id := html.EscapeString(p.ID)
		sb.WriteString("\n")
		fmt.Fprintf(sb, "NFT <a href=\"%s%s\">%s</a>\n", positionURLBase, id, id)
		fmt.Fprintf(sb, "Pair: %s\n", html.EscapeString(p.PairLabel))
		fmt.Fprintf(sb, "Status: %s\n", strings.ReplaceAll(p.Status, "_", " "))
		fmt.Fprintf(sb, "Net: %s\n", fmtMoneyPtr(p.NetUSD))
		fmt.Fprintf(sb, "Accrued Fees: %s\n", fmtMoney(p.AccruedFeesUSD))
		fmt.Fprintf(sb, "Fee APR: %s\n", fmtPctPtr(p.FeeAPRPct))
	}
}

func formatWindowBound(r *domain.GroupReport, unix int64) string {
	return time.Unix(unix, 0).In(r.PeriodEnd.Location()).Format("2006-01-02 15:04 MST")
}

// fmtMoney renders a USD amount with thousands grouping, e.g. $1,234.56.
func fmtMoney(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	parts := strings.SplitN(s, ".", 2)
	out := "$" + parts[0]
	if len(parts) == 2 {
		out = "$" + groupThousands(parts[0]) + "." + parts[1]
	}
	if neg {
		out = "-" + out
	}
	return out
}

// fmtMoneyPtr renders N/A for undefined amounts.
func fmtMoneyPtr(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return fmtMoney(*v)
}

// fmtMoneyDelta renders a signed delta, N/A when undefined.
func fmtMoneyDelta(v *float64) string {
	if v == nil {
		return "N/A"
	}
	if *v >= 0 {
		return "+" + fmtMoney(*v)
	}
	return fmtMoney(*v)
}

// fmtPctPtr renders a percentage, N/A when undefined.
func fmtPctPtr(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.2f%%", *v)
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var sb strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		sb.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if sb.Len() > 0 {
			sb.WriteString(",")
		}
		sb.WriteString(digits[i : i+3])
	}
	return sb.String()
}
