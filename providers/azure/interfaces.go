package azure

import (
	"context"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/compute/armcompute/v6"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/network/armnetwork/v6"
)

// VirtualMachinesAPI defines the compute operations used by the enumerator.
type VirtualMachinesAPI interface {
	NewListAllPager(options *armcompute.VirtualMachinesClientListAllOptions) *runtime.Pager[armcompute.VirtualMachinesClientListAllResponse]
	Get(ctx context.Context, resourceGroupName string, vmName string, options *armcompute.VirtualMachinesClientGetOptions) (armcompute.VirtualMachinesClientGetResponse, error)
}

// DisksAPI defines the managed-disk operations used by the enumerator.
type DisksAPI interface {
	Get(ctx context.Context, resourceGroupName string, diskName string, options *armcompute.DisksClientGetOptions) (armcompute.DisksClientGetResponse, error)
}

// VirtualMachineSizesAPI defines the size-catalog operations used by the enumerator.
type VirtualMachineSizesAPI interface {
	NewListPager(location string, options *armcompute.VirtualMachineSizesClientListOptions) *runtime.Pager[armcompute.VirtualMachineSizesClientListResponse]
}

// InterfacesAPI defines the NIC operations used by the enumerator.
type InterfacesAPI interface {
	Get(ctx context.Context, resourceGroupName string, networkInterfaceName string, options *armnetwork.InterfacesClientGetOptions) (armnetwork.InterfacesClientGetResponse, error)
}

// SubnetsAPI defines the subnet operations used by the enumerator.
type SubnetsAPI interface {
	Get(ctx context.Context, resourceGroupName string, virtualNetworkName string, subnetName string, options *armnetwork.SubnetsClientGetOptions) (armnetwork.SubnetsClientGetResponse, error)
}

// PublicIPAddressesAPI defines the public IP operations used by the enumerator.
type PublicIPAddressesAPI interface {
	Get(ctx context.Context, resourceGroupName string, publicIPAddressName string, options *armnetwork.PublicIPAddressesClientGetOptions) (armnetwork.PublicIPAddressesClientGetResponse, error)
}
