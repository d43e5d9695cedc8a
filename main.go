package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/soloq-tracker/internal/config"
	"github.com/mauv0809/soloq-tracker/internal/dispatcher"
	server "github.com/mauv0809/soloq-tracker/internal/http"
	"github.com/mauv0809/soloq-tracker/internal/metrics"
	"github.com/mauv0809/soloq-tracker/internal/notifier"
	"github.com/mauv0809/soloq-tracker/internal/notifier/discord"
	"github.com/mauv0809/soloq-tracker/internal/notifier/slack"
	"github.com/mauv0809/soloq-tracker/internal/pubsub"
	"github.com/mauv0809/soloq-tracker/internal/riot"
	"github.com/mauv0809/soloq-tracker/internal/scheduler"
	"github.com/mauv0809/soloq-tracker/internal/state"
	"github.com/mauv0809/soloq-tracker/internal/tracker"
	"github.com/spf13/cobra"
)

var (
	runOnce bool
	dryRun  bool
)

var rootCmd = &cobra.Command{
	Use:   "soloq-tracker",
	Short: "Posts ranked solo/duo results for a roster of League of Legends players",
	RunE: func(cmd *cobra.Command, args []string) error {
		return run()
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.Flags().BoolVar(&runOnce, "once", false, "Run a single poll cycle and exit (overrides RUN_ONCE)")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Log notifications instead of sending them")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	// Start profiling timer
	startTime := time.Now()
	log.SetFormatter(log.JSONFormatter)
	cfg := config.Load()
	if level, err := log.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	} else {
		log.Warn("Unknown LOG_LEVEL, keeping default", "level", cfg.LogLevel)
	}
	if runOnce {
		cfg.RunOnce = true
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := state.Open(ctx, cfg.State)
	if err != nil {
		return fmt.Errorf("failed to open state backend: %w", err)
	}
	defer func() {
		log.Info("Closing state backend")
		if err := store.Close(); err != nil {
			log.Error("Failed to close state backend", "error", err)
		}
	}()
	stateInitDuration := time.Since(startTime)
	log.Info("State backend initialized", "backend", cfg.State.Backend, "duration_ms", stateInitDuration.Milliseconds())

	metricsSvc := metrics.NewService()
	metricsHandler := metrics.NewMetricsHandler()
	riotClient := riot.NewClient(cfg.Riot)

	chat, err := newNotifier(cfg, metricsSvc)
	if err != nil {
		return err
	}

	ps, err := pubsub.New(ctx, cfg.ProjectID)
	if err != nil {
		return fmt.Errorf("failed to create pubsub client: %w", err)
	}
	defer ps.Close()

	t := tracker.New(ctx, riotClient, store, metricsSvc, cfg.FetchConcurrency)
	summary := t.Initialize(ctx, cfg.RiotIDs())
	if len(summary) > 0 {
		if err := chat.SendStartupSummary(ctx, summary, dryRun); err != nil {
			log.Error("Failed to send startup summary", "error", err)
		}
	}

	d := dispatcher.New(chat, dispatcher.NewFlavor(cfg.PraisesPath, cfg.RoastsPath))
	sched := scheduler.New(t, d, chat, ps, metricsSvc, scheduler.Options{
		Interval:     cfg.PollInterval,
		CycleTimeout: cfg.CycleTimeout,
		RunOnce:      cfg.RunOnce,
		DryRun:       dryRun,
	})

	// --- Record startup time ---
	startupDuration := time.Since(startTime)
	metricsSvc.SetStartupTime(startupDuration.Seconds())
	log.Info("Startup time recorded", "duration_ms", startupDuration.Milliseconds(), "players", t.Len())

	var srv *http.Server
	serverErrors := make(chan error, 1)
	if cfg.Port != "" {
		srv = &http.Server{
			Addr:    ":" + cfg.Port,
			Handler: server.NewServer(t, sched, metricsSvc, metricsHandler),
		}
		go func() {
			log.Info("Server started", "port", cfg.Port)
			serverErrors <- srv.ListenAndServe()
		}()
	}

	schedulerDone := make(chan error, 1)
	go func() { schedulerDone <- sched.Run(ctx) }()

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Server error", "error", err)
		}
		stop()
		<-schedulerDone
	case err := <-schedulerDone:
		if err != nil {
			log.Error("Scheduler stopped with error", "error", err)
		}
	}

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("Server shutdown failed", "error", err)
		} else {
			log.Info("Server gracefully stopped")
		}
	}

	log.Info("Tracker process shutting down")
	return nil
}

func newNotifier(cfg config.Config, m metrics.Metrics) (notifier.Notifier, error) {
	switch cfg.Notifier {
	case config.NotifierSlack:
		return slack.NewNotifier(cfg.Slack.Token, cfg.Slack.ChannelID, m), nil
	default:
		n, err := discord.NewNotifier(cfg.Discord.Token, cfg.Discord.ChannelID, m)
		if err != nil {
			return nil, fmt.Errorf("failed to create discord notifier: %w", err)
		}
		return n, nil
	}
}
