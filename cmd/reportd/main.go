package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"

	"lp-yield-reporter/internal/app"
	"lp-yield-reporter/internal/config"
	"lp-yield-reporter/internal/domain"
	"lp-yield-reporter/internal/observability"
	"lp-yield-reporter/internal/orchestrator"
)

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to config file")
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

	orch := app.BuildOrchestrator(cfg)

	scheduler := cron.New(cron.WithLocation(cfg.Location()))
	if _, err := scheduler.AddFunc(cfg.Report.DailyCron, runFunc(orch, domain.CadenceDaily)); err != nil {
		log.Fatalf("invalid daily cron %q: %v", cfg.Report.DailyCron, err)
	}
	if _, err := scheduler.AddFunc(cfg.Report.WeeklyCron, runFunc(orch, domain.CadenceWeekly)); err != nil {
		log.Fatalf("invalid weekly cron %q: %v", cfg.Report.WeeklyCron, err)
	}

	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", observability.Handler())
		go func() {
			if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil && err != http.ErrServerClosed {
				log.Printf("metrics server: %v", err)
			}
		}()
		log.Printf("metrics listening on %s", cfg.MetricsAddr)
	}

	log.Printf("reportd starting (daily=%q weekly=%q tz=%s groups=%d)",
		cfg.Report.DailyCron, cfg.Report.WeeklyCron, cfg.Location(), len(cfg.Groups))
	scheduler.Start()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Printf("reportd stopping")
	<-scheduler.Stop().Done()
}

// runFunc adapts one cadence to a cron job. Each invocation is a fresh,
// stateless run; failures are already isolated per group inside Run.
func runFunc(orch *orchestrator.Orchestrator, cadence string) func() {
	return func() {
		result, err := orch.Run(context.Background(), cadence, nil)
		if err != nil {
			log.Printf("%s run: %v", cadence, err)
			return
		}
		log.Printf("%s run finished: %d processed, %d failed", cadence, result.GroupsProcessed, result.GroupsFailed)
		for _, e := range result.Errors {
			log.Printf("  error: %s", e)
		}
	}
}
