package mapper

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yairfalse/virta/pkg/inventory"
	"github.com/yairfalse/virta/pkg/record"
)

func testVM(name, region, privateIP string) inventory.VM {
	vm := inventory.VM{
		ID:            "/subscriptions/sub/resourceGroups/rg-prod/providers/Microsoft.Compute/virtualMachines/" + name,
		Name:          name,
		Location:      region,
		ResourceGroup: "rg-prod",
		Size:          "Standard_B2s",
		OSType:        "Linux",
		PowerState:    "running",
		VCPUs:         2,
		MemoryMB:      4096,
	}
	if privateIP != "" {
		vm.NICs = []inventory.NIC{{
			ID:       "/subscriptions/sub/resourceGroups/rg-prod/providers/Microsoft.Network/networkInterfaces/" + name + "-nic",
			Name:     name + "-nic",
			Resolved: true,
			IPConfigs: []inventory.IPConfig{{
				Name:         "ipconfig1",
				PrivateIP:    privateIP,
				SubnetPrefix: "10.0.0.0/24",
			}},
		}}
	}
	return vm
}

func snapshotOf(vms ...inventory.VM) inventory.Snapshot {
	return inventory.Snapshot{
		SubscriptionID: "sub",
		TakenAt:        time.Now(),
		VMs:            vms,
	}
}

func TestMapStatus(t *testing.T) {
	tests := []struct {
		power string
		want  record.Status
	}{
		{"running", record.StatusActive},
		{"starting", record.StatusStaging},
		{"stopping", record.StatusDecommissioning},
		{"stopped", record.StatusOffline},
		{"deallocating", record.StatusDecommissioning},
		{"deallocated", record.StatusOffline},
		{"Running", record.StatusActive},
		{"unknown", record.StatusOffline},
		{"", record.StatusOffline},
	}

	for _, tt := range tests {
		t.Run("power_"+tt.power, func(t *testing.T) {
			assert.Equal(t, tt.want, MapStatus(tt.power))
		})
	}
}

func TestJoinPrefix(t *testing.T) {
	tests := []struct {
		name   string
		ip     string
		prefix string
		want   string
	}{
		{"with subnet prefix", "10.0.0.4", "10.0.0.0/24", "10.0.0.4/24"},
		{"no prefix ipv4", "10.0.0.4", "", "10.0.0.4/32"},
		{"no prefix ipv6", "fd00::4", "", "fd00::4/128"},
		{"prefix without slash", "10.0.0.4", "broken", "10.0.0.4/32"},
		{"empty ip", "", "10.0.0.0/24", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, JoinPrefix(tt.ip, tt.prefix))
		})
	}
}

func TestMap_EmptySnapshot(t *testing.T) {
	res := Map(snapshotOf())

	assert.True(t, res.Infra.Empty())
	assert.Empty(t, res.VMs)
	assert.Empty(t, res.Skipped)
}

func TestMap_ClusterInfra(t *testing.T) {
	res := Map(snapshotOf(
		testVM("web-1", "westeurope", "10.0.0.4"),
		testVM("web-2", "westeurope", "10.0.0.5"),
		testVM("db-1", "northeurope", "10.1.0.4"),
	))

	require.Len(t, res.Infra.ClusterTypes, 1)
	require.Len(t, res.Infra.ClusterGroups, 1)
	assert.Equal(t, "Azure", res.Infra.ClusterTypes[0].Name)
	assert.Equal(t, "Azure", res.Infra.ClusterGroups[0].Name)

	require.Len(t, res.Infra.Clusters, 2)
	assert.Equal(t, "Azure-westeurope", res.Infra.Clusters[0].Name)
	assert.Equal(t, "Azure-northeurope", res.Infra.Clusters[1].Name)
	assert.Equal(t, "Azure", res.Infra.Clusters[0].Type.Name)
}

func TestMap_SkipsVMWithoutIP(t *testing.T) {
	res := Map(snapshotOf(
		testVM("web-1", "westeurope", "10.0.0.4"),
		testVM("web-2", "westeurope", "10.0.0.5"),
		testVM("orphan", "westeurope", ""),
	))

	assert.Len(t, res.VMs, 2)
	assert.Equal(t, []string{"orphan"}, res.Skipped)
}

func TestMap_UnresolvedNICIsNotIngestible(t *testing.T) {
	vm := testVM("web-1", "westeurope", "")
	vm.NICs = []inventory.NIC{{ID: "/some/nic", Name: "web-1-nic", Resolved: false}}

	res := Map(snapshotOf(vm))

	assert.Empty(t, res.VMs)
	assert.Equal(t, []string{"web-1"}, res.Skipped)
}

func TestMap_IdentityPreservingIP(t *testing.T) {
	res := Map(snapshotOf(testVM("web-1", "westeurope", "10.0.0.4")))

	require.Len(t, res.VMs, 1)
	require.Len(t, res.VMs[0].VirtualMachines, 1)
	vm := res.VMs[0].VirtualMachines[0]

	require.Len(t, vm.Interfaces, 1)
	require.Len(t, vm.Interfaces[0].IPs, 1)
	assert.Equal(t, "10.0.0.4/24", vm.Interfaces[0].IPs[0].Address)
}

func TestMap_VMRecord(t *testing.T) {
	src := testVM("web-1", "westeurope", "10.0.0.4")
	src.Disks = []inventory.Disk{
		{Name: "web-1-os", SizeGB: 64, OS: true},
		{Name: "web-1-data", SizeGB: 256},
		{Name: "web-1-ghost", SizeGB: 0}, // no size information
	}
	src.NICs[0].IPConfigs[0].PublicIP = "40.1.2.3"

	res := Map(snapshotOf(src))
	require.Len(t, res.VMs, 1)
	vm := res.VMs[0].VirtualMachines[0]

	assert.Equal(t, "web-1", vm.Name)
	assert.Equal(t, record.StatusActive, vm.Status)
	assert.Equal(t, "Azure-westeurope", vm.Cluster.Name)
	assert.Equal(t, int64(2), vm.VCPUs)
	assert.Equal(t, int64(4096), vm.MemoryMB)
	assert.Equal(t, "Azure VM ID: "+src.ID, vm.Comments)
	assert.Equal(t, []string{"Azure", "rg-rg-prod", "size-Standard_B2s"}, vm.Tags)

	require.Len(t, vm.Disks, 2)
	assert.Equal(t, int64(64*1024), vm.Disks[0].SizeMB)
	assert.Equal(t, int64(256*1024), vm.Disks[1].SizeMB)

	require.Len(t, vm.Interfaces, 1)
	iface := vm.Interfaces[0]
	assert.Equal(t, "web-1-nic", iface.Name)
	assert.True(t, iface.Enabled)

	require.Len(t, iface.IPs, 2)
	assert.Equal(t, "10.0.0.4/24", iface.IPs[0].Address)
	assert.Equal(t, []string{"Azure", "Private"}, iface.IPs[0].Tags)
	assert.Equal(t, "40.1.2.3/32", iface.IPs[1].Address)
	assert.Equal(t, []string{"Azure", "Public"}, iface.IPs[1].Tags)
}

func TestMap_InterfaceNameFallback(t *testing.T) {
	src := testVM("web-1", "westeurope", "10.0.0.4")
	src.NICs[0].Name = ""

	res := Map(snapshotOf(src))
	require.Len(t, res.VMs, 1)

	vm := res.VMs[0].VirtualMachines[0]
	require.Len(t, vm.Interfaces, 1)
	assert.Equal(t, "eth1", vm.Interfaces[0].Name)
}

func TestMap_IsPure(t *testing.T) {
	snap := snapshotOf(testVM("web-1", "westeurope", "10.0.0.4"))

	first := Map(snap)
	second := Map(snap)

	assert.Equal(t, first, second)
	assert.Equal(t, "web-1", snap.VMs[0].Name)
}
