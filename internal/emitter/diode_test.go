package emitter

import (
	"testing"

	"github.com/netboxlabs/diode-sdk-go/diode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yairfalse/virta/pkg/record"
)

func fullVM() record.VirtualMachine {
	return record.VirtualMachine{
		Name:     "web-1",
		Status:   record.StatusActive,
		Cluster:  record.Cluster{Name: "Azure-westeurope"},
		VCPUs:    2,
		MemoryMB: 4096,
		Comments: "Azure VM ID: /subscriptions/sub-000/.../web-1",
		Tags:     []string{"Azure", "rg-prod"},
		Disks: []record.VirtualDisk{
			{Name: "web-1-os", SizeMB: 65536},
		},
		Interfaces: []record.Interface{
			{
				Name:    "web-1-nic",
				Enabled: true,
				IPs: []record.IPAddress{
					{Address: "10.0.0.4/24"},
					{Address: "40.1.2.3/32"},
				},
			},
		},
	}
}

func TestToEntities_FlattensInSinkOrder(t *testing.T) {
	set := record.Set{
		ClusterTypes:    []record.ClusterType{{Name: "Azure"}},
		ClusterGroups:   []record.ClusterGroup{{Name: "Azure"}},
		Clusters:        []record.Cluster{{Name: "Azure-westeurope"}},
		VirtualMachines: []record.VirtualMachine{fullVM()},
	}

	entities := toEntities(set)

	// type, group, cluster, vm, disk, interface, two addresses
	require.Len(t, entities, 8)
	assert.IsType(t, &diode.ClusterType{}, entities[0])
	assert.IsType(t, &diode.ClusterGroup{}, entities[1])
	assert.IsType(t, &diode.Cluster{}, entities[2])
	assert.IsType(t, &diode.VirtualMachine{}, entities[3])
	assert.IsType(t, &diode.VirtualDisk{}, entities[4])
	assert.IsType(t, &diode.VMInterface{}, entities[5])
	assert.IsType(t, &diode.IPAddress{}, entities[6])
	assert.IsType(t, &diode.IPAddress{}, entities[7])
}

func TestToEntities_EmptySet(t *testing.T) {
	assert.Empty(t, toEntities(record.Set{}))
}

func TestVMEntities_AddressesAssignedToInterface(t *testing.T) {
	entities := vmEntities(fullVM())

	iface, ok := entities[2].(*diode.VMInterface)
	require.True(t, ok)
	ip, ok := entities[3].(*diode.IPAddress)
	require.True(t, ok)
	assert.Same(t, iface, ip.AssignedObject)
	assert.Equal(t, "10.0.0.4/24", *ip.Address)
	assert.Equal(t, "active", *ip.Status)
}

func TestVMEntities_DisksReferenceVM(t *testing.T) {
	entities := vmEntities(fullVM())

	vm, ok := entities[0].(*diode.VirtualMachine)
	require.True(t, ok)
	disk, ok := entities[1].(*diode.VirtualDisk)
	require.True(t, ok)
	assert.Same(t, vm, disk.VirtualMachine)
	assert.Equal(t, int64(65536), *disk.Size)
}

func TestVMEntities_UnknownSizeOmitted(t *testing.T) {
	vm := fullVM()
	vm.VCPUs = 0
	vm.MemoryMB = 0

	entities := vmEntities(vm)

	entity := entities[0].(*diode.VirtualMachine)
	assert.Nil(t, entity.Vcpus)
	assert.Nil(t, entity.Memory)
}

func TestVMEntities_KnownSizeSet(t *testing.T) {
	entities := vmEntities(fullVM())

	entity := entities[0].(*diode.VirtualMachine)
	require.NotNil(t, entity.Vcpus)
	assert.Equal(t, float64(2), *entity.Vcpus)
	require.NotNil(t, entity.Memory)
	assert.Equal(t, int64(4096), *entity.Memory)
}

func TestTagEntities(t *testing.T) {
	assert.Nil(t, tagEntities(nil))

	tags := tagEntities([]string{"Azure", "rg-prod"})
	require.Len(t, tags, 2)
	assert.Equal(t, "Azure", *tags[0].Name)
	assert.Equal(t, "rg-prod", *tags[1].Name)
}
