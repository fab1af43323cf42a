// Package record defines the normalized records Virta sends to an
// ingestion sink. Records are created by the mapper, consumed exactly
// once by a sink, then discarded - there is no state across runs.
package record

// Status is the lifecycle status of an ingested virtual machine.
type Status string

const (
	StatusActive          Status = "active"
	StatusStaging         Status = "staging"
	StatusOffline         Status = "offline"
	StatusDecommissioning Status = "decommissioning"
)

// ClusterType groups clusters by virtualization technology.
type ClusterType struct {
	Name        string
	Description string
}

// ClusterGroup groups clusters administratively.
type ClusterGroup struct {
	Name        string
	Description string
}

// Cluster is a per-region VM cluster.
type Cluster struct {
	Name        string
	Type        ClusterType
	Group       ClusterGroup
	Description string
	Tags        []string
}

// VirtualDisk is a disk attached to a virtual machine record.
type VirtualDisk struct {
	Name   string
	SizeMB int64
	Tags   []string
}

// IPAddress is an address assigned to an interface, in CIDR notation.
type IPAddress struct {
	Address     string
	Description string
	Tags        []string
}

// Interface is a virtual machine network interface.
type Interface struct {
	Name        string
	Enabled     bool
	Description string
	Tags        []string
	IPs         []IPAddress
}

// VirtualMachine is one ingestible device with its nested components.
type VirtualMachine struct {
	Name       string
	Status     Status
	Cluster    Cluster
	VCPUs      int64 // 0 = unknown, omitted from ingestion
	MemoryMB   int64 // 0 = unknown, omitted from ingestion
	Comments   string
	Tags       []string
	Disks      []VirtualDisk
	Interfaces []Interface
}

// Set is an ordered batch of records transmitted in one sink call.
type Set struct {
	ClusterTypes    []ClusterType
	ClusterGroups   []ClusterGroup
	Clusters        []Cluster
	VirtualMachines []VirtualMachine
}

// Empty reports whether the set carries no records at all.
func (s Set) Empty() bool {
	return len(s.ClusterTypes) == 0 &&
		len(s.ClusterGroups) == 0 &&
		len(s.Clusters) == 0 &&
		len(s.VirtualMachines) == 0
}

// Len counts every record in the set, including nested components.
func (s Set) Len() int {
	n := len(s.ClusterTypes) + len(s.ClusterGroups) + len(s.Clusters)
	for _, vm := range s.VirtualMachines {
		n++ // the VM itself
		n += len(vm.Disks)
		for _, iface := range vm.Interfaces {
			n++
			n += len(iface.IPs)
		}
	}
	return n
}
