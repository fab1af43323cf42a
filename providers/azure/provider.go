// Package azure enumerates Azure compute and network resources for Virta.
package azure

import (
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/compute/armcompute/v6"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/network/armnetwork/v6"

	"github.com/yairfalse/virta/internal/config"
	"github.com/yairfalse/virta/internal/errdefs"
)

// Provider enumerates one subscription. Clients are interfaces for testability.
type Provider struct {
	subscriptionID string

	vmClient       VirtualMachinesAPI
	diskClient     DisksAPI
	sizeClient     VirtualMachineSizesAPI
	nicClient      InterfacesAPI
	subnetClient   SubnetsAPI
	publicIPClient PublicIPAddressesAPI

	// Per-run caches. The provider is used by a single goroutine.
	subnetPrefixes map[string]string
	sizesByRegion  map[string]map[string]vmSize
}

type vmSize struct {
	cores    int64
	memoryMB int64
}

// New authenticates with the service principal and builds the management
// clients. Missing or rejected credentials fail fast - no retry.
func New(cfg config.AzureConfig) (*Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cred, err := azidentity.NewClientSecretCredential(cfg.TenantID, cfg.ClientID, cfg.ClientSecret, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: client secret credential: %v", errdefs.ErrAuthentication, err)
	}

	computeClients, err := armcompute.NewClientFactory(cfg.SubscriptionID, cred, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: create compute clients: %v", errdefs.ErrAPI, err)
	}

	networkClients, err := armnetwork.NewClientFactory(cfg.SubscriptionID, cred, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: create network clients: %v", errdefs.ErrAPI, err)
	}

	return &Provider{
		subscriptionID: cfg.SubscriptionID,
		vmClient:       computeClients.NewVirtualMachinesClient(),
		diskClient:     computeClients.NewDisksClient(),
		sizeClient:     computeClients.NewVirtualMachineSizesClient(),
		nicClient:      networkClients.NewInterfacesClient(),
		subnetClient:   networkClients.NewSubnetsClient(),
		publicIPClient: networkClients.NewPublicIPAddressesClient(),
		subnetPrefixes: make(map[string]string),
		sizesByRegion:  make(map[string]map[string]vmSize),
	}, nil
}

// Name returns the provider identifier.
func (p *Provider) Name() string {
	return "azure"
}

func toString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func toInt64(i *int32) int64 {
	if i == nil {
		return 0
	}
	return int64(*i)
}

func toBool(b *bool) bool {
	if b == nil {
		return false
	}
	return *b
}
