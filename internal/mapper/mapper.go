// Package mapper converts Azure inventory snapshots into ingestion records.
// Mapping is a pure function: no I/O, no clock, no logging.
package mapper

import (
	"fmt"
	"strings"

	"github.com/yairfalse/virta/pkg/inventory"
	"github.com/yairfalse/virta/pkg/record"
)

const providerTag = "Azure"

// statusByPower maps Azure power states to ingestion statuses.
// Unknown states default to offline.
var statusByPower = map[string]record.Status{
	"running":      record.StatusActive,
	"starting":     record.StatusStaging,
	"stopping":     record.StatusDecommissioning,
	"stopped":      record.StatusOffline,
	"deallocating": record.StatusDecommissioning,
	"deallocated":  record.StatusOffline,
}

// Result is the mapper output for one snapshot.
type Result struct {
	Infra   record.Set   // cluster type, cluster group, per-region clusters
	VMs     []record.Set // one set per ingestible virtual machine
	Skipped []string     // names of VMs dropped for missing IP configuration
}

// Map normalizes a snapshot. A VM without any private IP on a resolved NIC
// is skipped rather than failing the run. An empty snapshot maps to an
// empty result - nothing is transmitted for it.
func Map(snap inventory.Snapshot) Result {
	var res Result
	if len(snap.VMs) == 0 {
		return res
	}

	clusterType := record.ClusterType{
		Name:        providerTag,
		Description: "Azure Virtual Machine Clusters",
	}
	clusterGroup := record.ClusterGroup{
		Name:        providerTag,
		Description: "Azure Virtual Machines",
	}

	res.Infra.ClusterTypes = []record.ClusterType{clusterType}
	res.Infra.ClusterGroups = []record.ClusterGroup{clusterGroup}

	clusters := make(map[string]record.Cluster)
	for _, region := range snap.Regions() {
		cluster := record.Cluster{
			Name:        providerTag + "-" + region,
			Type:        clusterType,
			Group:       clusterGroup,
			Description: fmt.Sprintf("Azure VMs in %s region", region),
			Tags:        []string{providerTag},
		}
		clusters[region] = cluster
		res.Infra.Clusters = append(res.Infra.Clusters, cluster)
	}

	for _, vm := range snap.VMs {
		if !vm.HasPrivateIP() {
			res.Skipped = append(res.Skipped, vm.Name)
			continue
		}
		mapped := mapVM(vm, clusters[vm.Location])
		res.VMs = append(res.VMs, record.Set{VirtualMachines: []record.VirtualMachine{mapped}})
	}

	return res
}

// MapStatus converts an Azure power state to an ingestion status.
func MapStatus(powerState string) record.Status {
	if status, ok := statusByPower[strings.ToLower(powerState)]; ok {
		return status
	}
	return record.StatusOffline
}

// JoinPrefix combines an IP with its subnet prefix length into CIDR
// notation. Without a prefix it defaults to /32 for IPv4 and /128 for IPv6.
func JoinPrefix(ip, subnetPrefix string) string {
	if ip == "" {
		return ""
	}
	if subnetPrefix != "" {
		if idx := strings.LastIndex(subnetPrefix, "/"); idx >= 0 {
			return ip + subnetPrefix[idx:]
		}
	}
	if strings.Contains(ip, ":") {
		return ip + "/128"
	}
	return ip + "/32"
}

func mapVM(vm inventory.VM, cluster record.Cluster) record.VirtualMachine {
	out := record.VirtualMachine{
		Name:     vm.Name,
		Status:   MapStatus(vm.PowerState),
		Cluster:  cluster,
		VCPUs:    vm.VCPUs,
		MemoryMB: vm.MemoryMB,
		Comments: "Azure VM ID: " + vm.ID,
		Tags: []string{
			providerTag,
			"rg-" + vm.ResourceGroup,
			"size-" + vm.Size,
		},
	}

	for _, disk := range vm.Disks {
		// Disks without size information cannot be ingested.
		if disk.SizeGB == 0 {
			continue
		}
		out.Disks = append(out.Disks, record.VirtualDisk{
			Name:   disk.Name,
			SizeMB: disk.SizeGB * 1024,
			Tags:   []string{providerTag},
		})
	}

	for i, nic := range vm.NICs {
		name := nic.Name
		if name == "" {
			name = fmt.Sprintf("eth%d", i+1)
		}
		iface := record.Interface{
			Name:        name,
			Enabled:     nic.Resolved,
			Description: "Azure NIC: " + nic.ID,
			Tags:        []string{providerTag},
		}

		for _, cfg := range nic.IPConfigs {
			if cfg.PrivateIP != "" {
				iface.IPs = append(iface.IPs, record.IPAddress{
					Address:     JoinPrefix(cfg.PrivateIP, cfg.SubnetPrefix),
					Description: fmt.Sprintf("Private IP for %s - %s", vm.Name, name),
					Tags:        []string{providerTag, "Private"},
				})
			}
			if cfg.PublicIP != "" {
				iface.IPs = append(iface.IPs, record.IPAddress{
					Address:     cfg.PublicIP + "/32",
					Description: fmt.Sprintf("Public IP for %s - %s", vm.Name, name),
					Tags:        []string{providerTag, "Public"},
				})
			}
		}

		out.Interfaces = append(out.Interfaces, iface)
	}

	return out
}
