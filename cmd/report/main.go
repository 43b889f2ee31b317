package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"lp-yield-reporter/internal/app"
	"lp-yield-reporter/internal/config"
	"lp-yield-reporter/internal/domain"
)

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to config file")
	mode := flag.String("mode", "", "report cadence: daily|weekly|backfill (default from REPORT_MODE or daily)")
	start := flag.String("start", "", "backfill window start (RFC3339)")
	end := flag.String("end", "", "backfill window end (RFC3339, exclusive)")
	flag.Parse()

	cfg, err := config.LoadFile(*cfgPath)
	if err != nil {
		log.Printf("warning: config file: %v, using defaults", err)
		cfg = config.Default()
	}
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	cadence := resolveCadence(*mode)

	var window *domain.Window
	if cadence == domain.CadenceBackfill {
		w, err := parseWindow(*start, *end)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		window = w
	}

	orch := app.BuildOrchestrator(cfg)

	log.Printf("report run starting (mode=%s groups=%d)", cadence, len(cfg.Groups))
	result, err := orch.Run(context.Background(), cadence, window)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	log.Printf("report run finished: %d processed, %d failed", result.GroupsProcessed, result.GroupsFailed)
	for _, e := range result.Errors {
		log.Printf("  error: %s", e)
	}
	if result.GroupsProcessed == 0 && result.GroupsFailed > 0 {
		os.Exit(1)
	}
}

func resolveCadence(mode string) string {
	if mode == "" {
		mode = os.Getenv("REPORT_MODE")
	}
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "weekly":
		return domain.CadenceWeekly
	case "backfill":
		return domain.CadenceBackfill
	default:
		return domain.CadenceDaily
	}
}

func parseWindow(start, end string) (*domain.Window, error) {
	if start == "" || end == "" {
		return nil, fmt.Errorf("backfill mode requires --start and --end")
	}
	s, err := time.Parse(time.RFC3339, start)
	if err != nil {
		return nil, fmt.Errorf("invalid --start: %w", err)
	}
	e, err := time.Parse(time.RFC3339, end)
	if err != nil {
		return nil, fmt.Errorf("invalid --end: %w", err)
	}
	if !e.After(s) {
		return nil, fmt.Errorf("--end must be after --start")
	}
	return &domain.Window{Start: s.Unix(), End: e.Unix()}, nil
}
