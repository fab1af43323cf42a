package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/yairfalse/virta/internal/config"
	"github.com/yairfalse/virta/internal/emitter"
	"github.com/yairfalse/virta/internal/pipeline"
	"github.com/yairfalse/virta/internal/telemetry"
	"github.com/yairfalse/virta/providers/azure"
)

// IngestCommand implements the 'virta ingest' command
type IngestCommand struct {
	ConfigPath string
	BatchMode  string
	DryRun     bool
	Debug      bool
	Quiet      bool
}

// Run executes one collection pass
func (cmd *IngestCommand) Run() error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := cmd.loadConfig()
	if err != nil {
		return err
	}

	telemetry.SetupLogger(cfg.Log.Level, cmd.Debug, cmd.Quiet)

	tp, err := telemetry.NewProvider(ctx, cfg.OTEL, false)
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	defer func() { _ = tp.Shutdown(context.Background()) }()

	provider, err := azure.New(cfg.Azure)
	if err != nil {
		return err
	}

	sink, err := cmd.buildSink(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = sink.Close() }()

	recorder, err := telemetry.NewRunRecorder()
	if err != nil {
		return fmt.Errorf("init run metrics: %w", err)
	}

	pipe := pipeline.New(provider, sink, pipeline.Options{BatchMode: cfg.Ingest.BatchMode})

	runCtx, span := tp.Tracer().Start(ctx, "virta.ingest")
	summary, err := pipe.Run(runCtx)
	span.End()
	recorder.Record(ctx, summary.Skipped, summary.Duration, err)
	if err != nil {
		return err
	}

	log.Info().
		Int("vms", summary.VMs).
		Int("skipped", summary.Skipped).
		Int("sets", summary.Sets).
		Int("records", summary.Records).
		Dur("duration", summary.Duration).
		Msg("ingestion complete")

	return nil
}

func (cmd *IngestCommand) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cmd.ConfigPath)
	if err != nil {
		return nil, err
	}
	if cmd.BatchMode != "" {
		cfg.Ingest.BatchMode = cmd.BatchMode
	}

	// A dry run never opens a Diode session, so only the Azure side
	// of the configuration has to be complete.
	if cmd.DryRun {
		if err := cfg.Azure.Validate(); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (cmd *IngestCommand) buildSink(cfg *config.Config) (emitter.Sink, error) {
	if cmd.DryRun {
		return emitter.NewLogSink(log.Logger), nil
	}

	diodeSink, err := emitter.NewDiodeSink(cfg.Diode, "virta", version)
	if err != nil {
		return nil, err
	}

	metricsSink, err := emitter.NewMetricsSink()
	if err != nil {
		_ = diodeSink.Close()
		return nil, err
	}

	sinks := []emitter.Sink{diodeSink, metricsSink}
	if cmd.Debug {
		sinks = append(sinks, emitter.NewLogSink(log.Logger))
	}
	return emitter.NewMultiSink(sinks...), nil
}
