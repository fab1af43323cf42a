// Package daemon re-runs the collection pipeline on an interval.
package daemon

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/yairfalse/virta/internal/pipeline"
)

// RunFunc executes one collection pass.
type RunFunc func(ctx context.Context) (pipeline.Summary, error)

// Config holds daemon settings.
type Config struct {
	Interval    time.Duration
	MetricsAddr string
}

// Daemon drives periodic runs and serves Prometheus metrics.
type Daemon struct {
	interval    time.Duration
	metricsAddr string
	run         RunFunc

	startTime time.Time
	runCount  atomic.Int64
}

// New creates a daemon.
func New(cfg Config, run RunFunc) *Daemon {
	return &Daemon{
		interval:    cfg.Interval,
		metricsAddr: cfg.MetricsAddr,
		run:         run,
		startTime:   time.Now(),
	}
}

// Start runs immediately, then on every interval tick until the context
// is cancelled. A failed run is logged and does not stop the daemon.
func (d *Daemon) Start(ctx context.Context) error {
	srv := d.serveMetrics()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	d.runOnce(ctx)

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Int64("runs", d.runCount.Load()).Msg("daemon shutting down")
			return nil
		case <-ticker.C:
			d.runOnce(ctx)
		}
	}
}

func (d *Daemon) runOnce(ctx context.Context) {
	d.runCount.Add(1)

	summary, err := d.run(ctx)
	if err != nil {
		log.Error().Err(err).Msg("run failed")
		return
	}

	log.Info().
		Int("vms", summary.VMs).
		Int("skipped", summary.Skipped).
		Int("records", summary.Records).
		Dur("duration", summary.Duration).
		Msg("run complete")
}

func (d *Daemon) serveMetrics() *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	srv := &http.Server{
		Addr:              d.metricsAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info().Str("addr", d.metricsAddr).Msg("starting metrics server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("metrics server error")
		}
	}()

	return srv
}

// RunCount returns the number of runs started.
func (d *Daemon) RunCount() int64 {
	return d.runCount.Load()
}

// Uptime returns time since the daemon was created.
func (d *Daemon) Uptime() time.Duration {
	return time.Since(d.startTime)
}
