package pipeline

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yairfalse/virta/internal/config"
	"github.com/yairfalse/virta/internal/errdefs"
	"github.com/yairfalse/virta/pkg/inventory"
	"github.com/yairfalse/virta/pkg/record"
)

// fakeLister implements ResourceLister for testing.
type fakeLister struct {
	snap inventory.Snapshot
	err  error
}

func (f *fakeLister) Snapshot(_ context.Context) (inventory.Snapshot, error) {
	return f.snap, f.err
}

// fakeSink implements RecordSink and records everything it receives.
type fakeSink struct {
	sets    []record.Set
	emitErr error
	closed  bool
}

func (f *fakeSink) Emit(_ context.Context, set record.Set) error {
	if f.emitErr != nil {
		return f.emitErr
	}
	f.sets = append(f.sets, set)
	return nil
}

func (f *fakeSink) Close() error {
	f.closed = true
	return nil
}

func (f *fakeSink) vmRecords() int {
	n := 0
	for _, set := range f.sets {
		n += len(set.VirtualMachines)
	}
	return n
}

func vmWithIP(name, ip string) inventory.VM {
	vm := inventory.VM{
		ID:            "/subscriptions/sub/resourceGroups/rg/providers/Microsoft.Compute/virtualMachines/" + name,
		Name:          name,
		Location:      "westeurope",
		ResourceGroup: "rg",
		Size:          "Standard_B2s",
		PowerState:    "running",
	}
	if ip != "" {
		vm.NICs = []inventory.NIC{{
			Name:      name + "-nic",
			Resolved:  true,
			IPConfigs: []inventory.IPConfig{{Name: "ipconfig1", PrivateIP: ip}},
		}}
	}
	return vm
}

func threeVMSnapshot() inventory.Snapshot {
	return inventory.Snapshot{
		SubscriptionID: "sub",
		TakenAt:        time.Now(),
		VMs: []inventory.VM{
			vmWithIP("web-1", "10.0.0.4"),
			vmWithIP("web-2", "10.0.0.5"),
			vmWithIP("broken", ""), // no network interface details
		},
	}
}

func TestRun_PerVM(t *testing.T) {
	lister := &fakeLister{snap: threeVMSnapshot()}
	sink := &fakeSink{}

	p := New(lister, sink, Options{BatchMode: config.BatchPerVM})
	summary, err := p.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 3, summary.VMs)
	assert.Equal(t, 1, summary.Skipped)

	// Cluster infra first, then one set per ingestible VM.
	require.Len(t, sink.sets, 3)
	assert.NotEmpty(t, sink.sets[0].ClusterTypes)
	assert.Equal(t, "web-1", sink.sets[1].VirtualMachines[0].Name)
	assert.Equal(t, "web-2", sink.sets[2].VirtualMachines[0].Name)
	assert.Equal(t, 2, sink.vmRecords())
}

func TestRun_BatchAll(t *testing.T) {
	lister := &fakeLister{snap: threeVMSnapshot()}
	sink := &fakeSink{}

	p := New(lister, sink, Options{BatchMode: config.BatchAll})
	summary, err := p.Run(context.Background())

	require.NoError(t, err)
	require.Len(t, sink.sets, 2) // infra set + one combined set
	assert.Len(t, sink.sets[1].VirtualMachines, 2)
	assert.Equal(t, 2, summary.Sets)
	assert.Equal(t, 2, sink.vmRecords())
}

func TestRun_DefaultsToBatchAll(t *testing.T) {
	lister := &fakeLister{snap: threeVMSnapshot()}
	sink := &fakeSink{}

	p := New(lister, sink, Options{})
	_, err := p.Run(context.Background())

	require.NoError(t, err)
	require.Len(t, sink.sets, 2)
}

func TestRun_ZeroResources(t *testing.T) {
	lister := &fakeLister{snap: inventory.Snapshot{SubscriptionID: "sub"}}
	sink := &fakeSink{}

	p := New(lister, sink, Options{})
	summary, err := p.Run(context.Background())

	require.NoError(t, err)
	assert.Empty(t, sink.sets)
	assert.Equal(t, 0, summary.Records)
	assert.Equal(t, 0, summary.Sets)
}

func TestRun_ListerErrorPropagates(t *testing.T) {
	apiErr := fmt.Errorf("%w: list virtual machines: throttled", errdefs.ErrAPI)
	lister := &fakeLister{err: apiErr}
	sink := &fakeSink{}

	p := New(lister, sink, Options{})
	_, err := p.Run(context.Background())

	require.Error(t, err)
	assert.True(t, errdefs.IsAPI(err))
	assert.Empty(t, sink.sets)
}

func TestRun_SinkErrorPropagates(t *testing.T) {
	ingestErr := fmt.Errorf("%w: connection refused", errdefs.ErrIngestion)
	lister := &fakeLister{snap: threeVMSnapshot()}
	sink := &fakeSink{emitErr: ingestErr}

	p := New(lister, sink, Options{})
	_, err := p.Run(context.Background())

	require.Error(t, err)
	assert.True(t, errdefs.IsIngestion(err))
	assert.False(t, errors.Is(err, errdefs.ErrAPI))
}

func TestRun_SummaryCountsRecords(t *testing.T) {
	lister := &fakeLister{snap: threeVMSnapshot()}
	sink := &fakeSink{}

	p := New(lister, sink, Options{})
	summary, err := p.Run(context.Background())

	require.NoError(t, err)
	// Infra: type + group + cluster. VMs: 2 VMs with one NIC and one IP each.
	assert.Equal(t, 3+2*3, summary.Records)
	assert.Positive(t, summary.Duration)
}
