// Package app wires configuration into a ready-to-run orchestrator.
package app

import (
	"lp-yield-reporter/internal/config"
	"lp-yield-reporter/internal/domain"
	"lp-yield-reporter/internal/ledger"
	"lp-yield-reporter/internal/normalization"
	"lp-yield-reporter/internal/notify"
	"lp-yield-reporter/internal/orchestrator"
	"lp-yield-reporter/internal/reporting"
	"lp-yield-reporter/internal/revert"
)

// BuildOrchestrator constructs the full pipeline from configuration.
func BuildOrchestrator(cfg config.Config) *orchestrator.Orchestrator {
	source := revert.NewClient(
		revert.WithBaseURL(cfg.Upstream.Endpoint),
		revert.WithTimeout(cfg.Upstream.Timeout),
		revert.WithMaxRetries(cfg.Upstream.MaxRetries),
		revert.WithV4Positions(cfg.Upstream.WithV4),
	)

	generator := reporting.NewGenerator(reporting.Config{
		Location:             cfg.Location(),
		PeriodEndHour:        cfg.Report.PeriodEndHour,
		DailyPeriodsPerYear:  cfg.Report.DailyPeriodsPerYear,
		WeeklyPeriodsPerYear: cfg.Report.WeeklyPeriodsPerYear,
	})

	var notifier orchestrator.Notifier
	if cfg.Telegram.Enabled {
		notifier = notify.NewNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
	}

	var sink ledger.Ledger
	if cfg.Ledger.Enabled {
		sink = ledger.NewSheetClient(cfg.Ledger.Endpoint, cfg.Ledger.SpreadsheetID, cfg.Ledger.SheetName)
	}

	groups := make([]domain.Group, 0, len(cfg.Groups))
	for _, g := range cfg.Groups {
		groups = append(groups, domain.Group{Name: g.Name, Address: g.Address, ChatID: g.ChatID})
	}

	return orchestrator.New(orchestrator.Options{
		Source:         source,
		Notifier:       notifier,
		Ledger:         sink,
		Generator:      generator,
		Symbols:        normalization.SymbolMap(cfg.TokenSymbols),
		Groups:         groups,
		NotifyBackfill: cfg.Report.NotifyBackfill,
		Verbose:        cfg.Verbose,
	})
}
