package azure

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/arm"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/compute/armcompute/v6"
	"github.com/rs/zerolog/log"

	"github.com/yairfalse/virta/internal/errdefs"
	"github.com/yairfalse/virta/pkg/inventory"
)

// Snapshot enumerates every virtual machine in the subscription.
// Cloud API failures abort the run; per-item lookups (disk size, VM size,
// NIC details, subnet prefix, public IP) degrade to warnings instead.
func (p *Provider) Snapshot(ctx context.Context) (inventory.Snapshot, error) {
	snap := inventory.Snapshot{
		SubscriptionID: p.subscriptionID,
		TakenAt:        time.Now(),
	}

	pager := p.vmClient.NewListAllPager(nil)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return snap, fmt.Errorf("%w: list virtual machines: %v", errdefs.ErrAPI, err)
		}
		for _, raw := range page.Value {
			if raw == nil || raw.ID == nil || raw.Name == nil {
				continue
			}
			vm, err := p.describeVM(ctx, *raw.ID, *raw.Name)
			if err != nil {
				return snap, err
			}
			snap.VMs = append(snap.VMs, vm)
		}
	}

	log.Debug().Int("vms", len(snap.VMs)).Msg("enumeration complete")
	return snap, nil
}

func (p *Provider) describeVM(ctx context.Context, id, name string) (inventory.VM, error) {
	rid, err := arm.ParseResourceID(id)
	if err != nil {
		return inventory.VM{}, fmt.Errorf("%w: parse vm id %q: %v", errdefs.ErrAPI, id, err)
	}
	resourceGroup := rid.ResourceGroupName

	resp, err := p.vmClient.Get(ctx, resourceGroup, name, &armcompute.VirtualMachinesClientGetOptions{
		Expand: to.Ptr(armcompute.InstanceViewTypesInstanceView),
	})
	if err != nil {
		return inventory.VM{}, fmt.Errorf("%w: get virtual machine %s: %v", errdefs.ErrAPI, name, err)
	}

	detail := resp.VirtualMachine
	vm := inventory.VM{
		ID:            id,
		Name:          name,
		Location:      toString(detail.Location),
		ResourceGroup: resourceGroup,
		PowerState:    powerState(detail.Properties),
	}

	if props := detail.Properties; props != nil {
		if props.HardwareProfile != nil && props.HardwareProfile.VMSize != nil {
			vm.Size = string(*props.HardwareProfile.VMSize)
		}
		if props.StorageProfile != nil {
			if osDisk := props.StorageProfile.OSDisk; osDisk != nil && osDisk.OSType != nil {
				vm.OSType = string(*osDisk.OSType)
			}
			vm.Disks = p.collectDisks(ctx, resourceGroup, name, props.StorageProfile)
		}
		if props.NetworkProfile != nil {
			vm.NICs = p.resolveNICs(ctx, name, props.NetworkProfile.NetworkInterfaces)
		}
	}

	vm.VCPUs, vm.MemoryMB = p.lookupSize(ctx, vm.Location, vm.Size)
	return vm, nil
}

// powerState extracts the PowerState/* suffix from the instance view.
func powerState(props *armcompute.VirtualMachineProperties) string {
	if props == nil || props.InstanceView == nil {
		return "unknown"
	}
	for _, status := range props.InstanceView.Statuses {
		if status == nil || status.Code == nil {
			continue
		}
		if state, ok := strings.CutPrefix(*status.Code, "PowerState/"); ok {
			return state
		}
	}
	return "unknown"
}

// collectDisks gathers the OS disk and data disks. The OS disk size lives on
// the managed disk resource, so it takes one extra Get; a failure there keeps
// the disk with size 0 rather than failing the VM.
func (p *Provider) collectDisks(ctx context.Context, resourceGroup, vmName string, profile *armcompute.StorageProfile) []inventory.Disk {
	var disks []inventory.Disk

	if profile.OSDisk != nil && profile.OSDisk.Name != nil {
		osDisk := inventory.Disk{Name: *profile.OSDisk.Name, OS: true}
		resp, err := p.diskClient.Get(ctx, resourceGroup, osDisk.Name, nil)
		if err != nil {
			log.Warn().Err(err).
				Str("vm", vmName).
				Str("disk", osDisk.Name).
				Msg("could not fetch os disk size")
		} else if resp.Properties != nil {
			osDisk.SizeGB = toInt64(resp.Properties.DiskSizeGB)
		}
		disks = append(disks, osDisk)
	}

	for _, dataDisk := range profile.DataDisks {
		if dataDisk == nil || dataDisk.Name == nil {
			continue
		}
		disks = append(disks, inventory.Disk{
			Name:   *dataDisk.Name,
			SizeGB: toInt64(dataDisk.DiskSizeGB),
		})
	}

	return disks
}

// lookupSize resolves vCPU and memory figures from the region size catalog.
// The catalog is fetched once per region per run.
func (p *Provider) lookupSize(ctx context.Context, location, sizeName string) (int64, int64) {
	if location == "" || sizeName == "" {
		return 0, 0
	}

	catalog, ok := p.sizesByRegion[location]
	if !ok {
		catalog = p.fetchSizeCatalog(ctx, location)
		p.sizesByRegion[location] = catalog
	}

	size, ok := catalog[sizeName]
	if !ok {
		return 0, 0
	}
	return size.cores, size.memoryMB
}

func (p *Provider) fetchSizeCatalog(ctx context.Context, location string) map[string]vmSize {
	catalog := make(map[string]vmSize)

	pager := p.sizeClient.NewListPager(location, nil)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			log.Warn().Err(err).Str("location", location).Msg("could not fetch vm size catalog")
			return catalog
		}
		for _, size := range page.Value {
			if size == nil || size.Name == nil {
				continue
			}
			catalog[*size.Name] = vmSize{
				cores:    toInt64(size.NumberOfCores),
				memoryMB: toInt64(size.MemoryInMB),
			}
		}
	}

	return catalog
}
