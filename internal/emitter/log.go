package emitter

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/yairfalse/virta/pkg/record"
)

// LogSink writes every record set to the log instead of a remote sink.
// Used for dry runs and debug output.
type LogSink struct {
	log zerolog.Logger
}

// NewLogSink creates a log sink.
func NewLogSink(log zerolog.Logger) *LogSink {
	return &LogSink{log: log}
}

// Emit logs the set, one line per virtual machine.
func (s *LogSink) Emit(_ context.Context, set record.Set) error {
	for _, c := range set.Clusters {
		s.log.Info().
			Str("cluster", c.Name).
			Str("type", c.Type.Name).
			Str("group", c.Group.Name).
			Msg("cluster record")
	}

	for _, vm := range set.VirtualMachines {
		event := s.log.Info().
			Str("vm", vm.Name).
			Str("status", string(vm.Status)).
			Str("cluster", vm.Cluster.Name).
			Int("disks", len(vm.Disks)).
			Int("interfaces", len(vm.Interfaces))
		if vm.VCPUs > 0 {
			event = event.Int64("vcpus", vm.VCPUs)
		}
		if vm.MemoryMB > 0 {
			event = event.Int64("memory_mb", vm.MemoryMB)
		}

		var addrs []string
		for _, iface := range vm.Interfaces {
			for _, ip := range iface.IPs {
				addrs = append(addrs, ip.Address)
			}
		}
		event.Strs("addresses", addrs).Msg("vm record")
	}

	return nil
}

// Close is a no-op for the log sink.
func (s *LogSink) Close() error {
	return nil
}
