package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/yairfalse/virta/internal/config"
	"github.com/yairfalse/virta/internal/daemon"
	"github.com/yairfalse/virta/internal/emitter"
	"github.com/yairfalse/virta/internal/pipeline"
	"github.com/yairfalse/virta/internal/telemetry"
	"github.com/yairfalse/virta/providers/azure"
)

var (
	daemonConfigPath  string
	daemonInterval    time.Duration
	daemonMetricsAddr string
	daemonDebug       bool
)

// daemonCmd represents the daemon command
var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run the collector continuously on an interval",
	Long: `Run the collection pass on an interval and serve Prometheus
metrics. Each pass is a fresh snapshot - the daemon keeps no state
between runs, it only keeps the Diode session open.`,
	Example: `  virta daemon                      # 15m interval, metrics on :9090
  virta daemon --interval 5m        # Faster cadence
  virta daemon --metrics :8081      # Different metrics port`,
	RunE: runDaemon,
}

func init() {
	rootCmd.AddCommand(daemonCmd)

	daemonCmd.Flags().StringVarP(&daemonConfigPath, "config", "c", "", "Path to YAML config file")
	daemonCmd.Flags().DurationVarP(&daemonInterval, "interval", "i", 0, "Run interval (default from config)")
	daemonCmd.Flags().StringVar(&daemonMetricsAddr, "metrics", "", "Metrics server address (default from config)")
	daemonCmd.Flags().BoolVar(&daemonDebug, "debug", false, "Enable debug output")
}

func runDaemon(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := loadDaemonConfig()
	if err != nil {
		return err
	}

	telemetry.SetupLogger(cfg.Log.Level, daemonDebug, false)

	tp, err := telemetry.NewProvider(ctx, cfg.OTEL, true)
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	defer func() { _ = tp.Shutdown(context.Background()) }()

	provider, err := azure.New(cfg.Azure)
	if err != nil {
		return err
	}

	diodeSink, err := emitter.NewDiodeSink(cfg.Diode, "virta", version)
	if err != nil {
		return err
	}
	metricsSink, err := emitter.NewMetricsSink()
	if err != nil {
		_ = diodeSink.Close()
		return err
	}
	sink := emitter.NewMultiSink(diodeSink, metricsSink)
	defer func() { _ = sink.Close() }()

	recorder, err := telemetry.NewRunRecorder()
	if err != nil {
		_ = sink.Close()
		return fmt.Errorf("init run metrics: %w", err)
	}

	pipe := pipeline.New(provider, sink, pipeline.Options{BatchMode: cfg.Ingest.BatchMode})

	log.Info().
		Dur("interval", cfg.Daemon.Interval).
		Str("metrics", cfg.Daemon.MetricsAddr).
		Str("target", cfg.Diode.Target).
		Msg("virta daemon starting")

	d := daemon.New(daemon.Config{
		Interval:    cfg.Daemon.Interval,
		MetricsAddr: cfg.Daemon.MetricsAddr,
	}, func(runCtx context.Context) (pipeline.Summary, error) {
		spanCtx, span := tp.Tracer().Start(runCtx, "virta.run")
		defer span.End()
		summary, err := pipe.Run(spanCtx)
		recorder.Record(runCtx, summary.Skipped, summary.Duration, err)
		return summary, err
	})

	return d.Start(ctx)
}

func loadDaemonConfig() (*config.Config, error) {
	cfg, err := config.Load(daemonConfigPath)
	if err != nil {
		return nil, err
	}
	if daemonInterval > 0 {
		cfg.Daemon.Interval = daemonInterval
	}
	if daemonMetricsAddr != "" {
		cfg.Daemon.MetricsAddr = daemonMetricsAddr
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
