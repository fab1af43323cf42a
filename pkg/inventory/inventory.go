// Package inventory defines the Azure-side snapshot model for Virta.
package inventory

import "time"

// VM is an immutable snapshot of an Azure virtual machine.
type VM struct {
	ID            string `json:"id"`             // Full ARM resource ID
	Name          string `json:"name"`           // VM name
	Location      string `json:"location"`       // Azure region (e.g., "westeurope")
	ResourceGroup string `json:"resource_group"` // Parsed from the resource ID
	Size          string `json:"size"`           // VM size (e.g., "Standard_B2s")
	OSType        string `json:"os_type"`        // "Linux" or "Windows"
	PowerState    string `json:"power_state"`    // PowerState/* suffix, or "unknown"
	VCPUs         int64  `json:"vcpus"`          // 0 when the size lookup failed
	MemoryMB      int64  `json:"memory_mb"`      // 0 when the size lookup failed
	Disks         []Disk `json:"disks"`
	NICs          []NIC  `json:"nics"`
}

// Disk is an OS or data disk attached to a VM.
type Disk struct {
	Name   string `json:"name"`
	SizeGB int64  `json:"size_gb"` // 0 when size could not be determined
	OS     bool   `json:"os"`
}

// NIC is a network interface attached to a VM.
// Resolved is false when the interface details could not be fetched;
// such NICs carry no IP configurations.
type NIC struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Primary   bool       `json:"primary"`
	Resolved  bool       `json:"resolved"`
	IPConfigs []IPConfig `json:"ip_configs"`
}

// IPConfig is a single IP configuration on a NIC.
type IPConfig struct {
	Name         string `json:"name"`
	PrivateIP    string `json:"private_ip"`
	Allocation   string `json:"allocation"` // "Static" or "Dynamic"
	SubnetID     string `json:"subnet_id"`
	Subnet       string `json:"subnet"`
	SubnetPrefix string `json:"subnet_prefix"` // CIDR, empty when unresolved
	PublicIP     string `json:"public_ip"`
}

// Snapshot holds one enumeration run.
type Snapshot struct {
	SubscriptionID string    `json:"subscription_id"`
	TakenAt        time.Time `json:"taken_at"`
	VMs            []VM      `json:"vms"`
}

// HasPrivateIP reports whether the VM exposes at least one private IP
// through a resolved NIC. VMs without one are not ingestible.
func (v *VM) HasPrivateIP() bool {
	for _, nic := range v.NICs {
		for _, cfg := range nic.IPConfigs {
			if cfg.PrivateIP != "" {
				return true
			}
		}
	}
	return false
}

// Regions returns the distinct set of regions seen in the snapshot.
func (s *Snapshot) Regions() []string {
	seen := make(map[string]bool)
	var regions []string
	for _, vm := range s.VMs {
		if vm.Location == "" || seen[vm.Location] {
			continue
		}
		seen[vm.Location] = true
		regions = append(regions, vm.Location)
	}
	return regions
}
