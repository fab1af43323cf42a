// Package pipeline runs the collection pass: enumerate, map, emit.
// One linear synchronous pass per run; no state survives it.
package pipeline

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/yairfalse/virta/internal/config"
	"github.com/yairfalse/virta/internal/mapper"
	"github.com/yairfalse/virta/pkg/inventory"
	"github.com/yairfalse/virta/pkg/record"
)

// ResourceLister enumerates cloud resources into a snapshot.
type ResourceLister interface {
	Snapshot(ctx context.Context) (inventory.Snapshot, error)
}

// RecordSink consumes record sets.
type RecordSink interface {
	Emit(ctx context.Context, set record.Set) error
	Close() error
}

// Options configures a pipeline run.
type Options struct {
	// BatchMode is config.BatchAll (one set for the whole run) or
	// config.BatchPerVM (one set per virtual machine).
	BatchMode string
}

// Summary reports what one run did.
type Summary struct {
	VMs      int           // VMs enumerated
	Skipped  int           // VMs dropped for missing IP configuration
	Sets     int           // sink Emit calls
	Records  int           // records transmitted, including nested components
	Duration time.Duration // wall time of the whole pass
}

// Pipeline wires an enumerator to a sink.
type Pipeline struct {
	lister ResourceLister
	sink   RecordSink
	opts   Options
}

// New creates a pipeline.
func New(lister ResourceLister, sink RecordSink, opts Options) *Pipeline {
	if opts.BatchMode == "" {
		opts.BatchMode = config.BatchAll
	}
	return &Pipeline{lister: lister, sink: sink, opts: opts}
}

// Run executes one collection pass. Cluster infrastructure is emitted
// before any VM set. Errors propagate to the caller; nothing is retried.
func (p *Pipeline) Run(ctx context.Context) (Summary, error) {
	start := time.Now()
	summary := Summary{}

	snap, err := p.lister.Snapshot(ctx)
	if err != nil {
		return summary, err
	}
	summary.VMs = len(snap.VMs)

	mapped := mapper.Map(snap)
	summary.Skipped = len(mapped.Skipped)
	for _, name := range mapped.Skipped {
		log.Warn().Str("vm", name).Msg("skipping vm without ip configuration")
	}

	for _, set := range p.batches(mapped) {
		if set.Empty() {
			continue
		}
		if err := p.sink.Emit(ctx, set); err != nil {
			summary.Duration = time.Since(start)
			return summary, err
		}
		summary.Sets++
		summary.Records += set.Len()
	}

	summary.Duration = time.Since(start)
	return summary, nil
}

func (p *Pipeline) batches(mapped mapper.Result) []record.Set {
	batches := []record.Set{mapped.Infra}

	if p.opts.BatchMode == config.BatchPerVM {
		return append(batches, mapped.VMs...)
	}

	var all record.Set
	for _, set := range mapped.VMs {
		all.VirtualMachines = append(all.VirtualMachines, set.VirtualMachines...)
	}
	return append(batches, all)
}
