// Package orchestrator coordinates one report run end to end:
// fetch → normalize → compute → render → notify → ledger append.
package orchestrator

import (
	"context"
	"fmt"
	"log"
	"time"

	"lp-yield-reporter/internal/domain"
	"lp-yield-reporter/internal/ledger"
	"lp-yield-reporter/internal/normalization"
	"lp-yield-reporter/internal/observability"
	"lp-yield-reporter/internal/reporting"
)

// PositionSource fetches raw position payloads for one account.
type PositionSource interface {
	FetchPositions(ctx context.Context, account string, active bool) (any, error)
}

// Notifier delivers rendered report text.
type Notifier interface {
	Enabled() bool
	Send(ctx context.Context, chatID, text string) error
}

// Options for creating an Orchestrator.
type Options struct {
	Source    PositionSource
	Notifier  Notifier      // optional
	Ledger    ledger.Ledger // optional
	Generator *reporting.Generator
	Symbols   normalization.SymbolMap
	Groups    []domain.Group

	// NotifyBackfill sends notifications for backfill runs too; by default
	// backfills only write the ledger.
	NotifyBackfill bool
	Verbose        bool
}

// Orchestrator runs reports for a set of groups. Groups are independent: a
// failure in one is caught at the group boundary, reported, and the run
// continues with the rest.
type Orchestrator struct {
	source    PositionSource
	notifier  Notifier
	ledger    ledger.Ledger
	generator *reporting.Generator
	symbols   normalization.SymbolMap
	groups    []domain.Group

	notifyBackfill bool
	verbose        bool
}

// New creates an Orchestrator.
func New(opts Options) *Orchestrator {
	return &Orchestrator{
		source:         opts.Source,
		notifier:       opts.Notifier,
		ledger:         opts.Ledger,
		generator:      opts.Generator,
		symbols:        opts.Symbols,
		groups:         opts.Groups,
		notifyBackfill: opts.NotifyBackfill,
		verbose:        opts.Verbose,
	}
}

// RunResult contains the outcome of one run.
type RunResult struct {
	GroupsProcessed int
	GroupsFailed    int
	Errors          []string
}

// Run executes one report run for every configured group. window is only
// consulted for the backfill cadence; daily and weekly derive their own
// windows from the clock. The returned error covers setup problems only;
// per-group failures land in RunResult.Errors.
func (o *Orchestrator) Run(ctx context.Context, cadence string, window *domain.Window) (*RunResult, error) {
	if cadence == domain.CadenceBackfill && window == nil {
		return nil, fmt.Errorf("backfill cadence requires an explicit window")
	}

	started := time.Now()
	result := &RunResult{}
	var values []ledger.GroupValue

	for _, group := range o.groups {
		report, err := o.runGroup(ctx, group, cadence, window)
		if err != nil {
			result.GroupsFailed++
			result.Errors = append(result.Errors, fmt.Sprintf("group %s: %v", group.Name, err))
			observability.RecordGroupFailure()
			log.Printf("orchestrator: group %s (%s): %v", group.Name, group.Address, err)
			o.notifyError(ctx, group, err)
			continue
		}
		result.GroupsProcessed++
		values = append(values, ledger.GroupValue{
			Name:    group.Name,
			Address: group.Address,
			Value:   report.RealizedFeesUSD,
		})
	}

	if o.ledger != nil && len(values) > 0 {
		periodKey := o.periodKey(cadence, window)
		if err := o.ledger.RecordPeriod(ctx, periodKey, values); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("ledger: %v", err))
			log.Printf("orchestrator: ledger write for period %s: %v", periodKey, err)
		} else {
			o.log("recorded period %s for %d group(s)", periodKey, len(values))
		}
	}

	status := "ok"
	if len(result.Errors) > 0 {
		status = "partial"
	}
	if result.GroupsProcessed == 0 && result.GroupsFailed > 0 {
		status = "failed"
	}
	observability.RecordReportRun(cadence, status, time.Since(started).Seconds())
	if status == "ok" {
		observability.SetLastSuccessfulRun(time.Now().Unix())
	}
	return result, nil
}

// runGroup produces and delivers one group's report. A panic anywhere in
// the fetch/compute/deliver path surfaces as this group's error so the run
// continues with the remaining groups.
func (o *Orchestrator) runGroup(ctx context.Context, group domain.Group, cadence string, window *domain.Window) (report *domain.GroupReport, err error) {
	defer func() {
		if r := recover(); r != nil {
			report = nil
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	open, exited, err := o.fetchGroup(ctx, group)
	if err != nil {
		return nil, err
	}
	o.log("group %s: %d open, %d exited position(s)", group.Name, len(open), len(exited))

	switch cadence {
	case domain.CadenceWeekly:
		report = o.generator.Weekly(group, open, exited)
	case domain.CadenceBackfill:
		report = o.generator.Historical(group, open, exited, *window)
	default:
		report = o.generator.Daily(group, open, exited)
	}

	if o.notifier != nil && o.notifier.Enabled() && (cadence != domain.CadenceBackfill || o.notifyBackfill) {
		if err := o.notifier.Send(ctx, group.ChatID, reporting.RenderReport(report)); err != nil {
			return nil, fmt.Errorf("deliver report: %w", err)
		}
	}
	return report, nil
}

func (o *Orchestrator) fetchGroup(ctx context.Context, group domain.Group) (open, exited []domain.Position, err error) {
	rawOpen, err := o.source.FetchPositions(ctx, group.Address, true)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch open positions: %w", err)
	}
	rawExited, err := o.source.FetchPositions(ctx, group.Address, false)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch exited positions: %w", err)
	}
	open = normalization.ParsePositions(rawOpen, o.symbols)
	exited = normalization.ParsePositions(rawExited, o.symbols)
	return open, exited, nil
}

// notifyError sends a best-effort failure notification; its own failure is
// only logged.
func (o *Orchestrator) notifyError(ctx context.Context, group domain.Group, groupErr error) {
	if o.notifier == nil || !o.notifier.Enabled() {
		return
	}
	if err := o.notifier.Send(ctx, group.ChatID, reporting.RenderError(group, groupErr)); err != nil {
		log.Printf("orchestrator: error notification for group %s: %v", group.Name, err)
	}
}

// periodKey builds the ledger row key. The cadence is part of the key so a
// daily and a weekly run closing on the same period end land in distinct
// rows instead of overwriting each other's figures.
func (o *Orchestrator) periodKey(cadence string, window *domain.Window) string {
	if cadence == domain.CadenceBackfill && window != nil {
		return cadence + " " + reporting.PeriodKey(time.Unix(window.End, 0).UTC())
	}
	return cadence + " " + reporting.PeriodKey(o.generator.CurrentPeriodEnd())
}

func (o *Orchestrator) log(format string, args ...any) {
	if o.verbose {
		log.Printf("orchestrator: "+format, args...)
	}
}
