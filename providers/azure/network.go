package azure

import (
	"context"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/arm"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/compute/armcompute/v6"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/network/armnetwork/v6"
	"github.com/rs/zerolog/log"

	"github.com/yairfalse/virta/pkg/inventory"
)

// resolveNICs fetches interface details for each NIC reference on a VM.
// A NIC that cannot be fetched is kept with Resolved=false and no IP
// configurations so one broken interface never drops the whole VM.
func (p *Provider) resolveNICs(ctx context.Context, vmName string, refs []*armcompute.NetworkInterfaceReference) []inventory.NIC {
	var nics []inventory.NIC

	for _, ref := range refs {
		if ref == nil || ref.ID == nil {
			continue
		}

		nic := inventory.NIC{ID: *ref.ID}
		if ref.Properties != nil {
			nic.Primary = toBool(ref.Properties.Primary)
		}

		rid, err := arm.ParseResourceID(nic.ID)
		if err != nil {
			log.Warn().Err(err).Str("vm", vmName).Str("nic_id", nic.ID).Msg("could not parse nic id")
			nics = append(nics, nic)
			continue
		}
		nic.Name = rid.Name

		resp, err := p.nicClient.Get(ctx, rid.ResourceGroupName, rid.Name, nil)
		if err != nil {
			log.Warn().Err(err).Str("vm", vmName).Str("nic", nic.Name).Msg("could not fetch nic details")
			nics = append(nics, nic)
			continue
		}

		nic.Resolved = true
		if resp.Properties != nil {
			for _, cfg := range resp.Properties.IPConfigurations {
				if cfg == nil {
					continue
				}
				nic.IPConfigs = append(nic.IPConfigs, p.convertIPConfig(ctx, vmName, nic.Name, cfg))
			}
		}

		nics = append(nics, nic)
	}

	return nics
}

func (p *Provider) convertIPConfig(ctx context.Context, vmName, nicName string, cfg *armnetwork.InterfaceIPConfiguration) inventory.IPConfig {
	out := inventory.IPConfig{Name: toString(cfg.Name)}

	props := cfg.Properties
	if props == nil {
		return out
	}

	out.PrivateIP = toString(props.PrivateIPAddress)
	if props.PrivateIPAllocationMethod != nil {
		out.Allocation = string(*props.PrivateIPAllocationMethod)
	}

	if props.Subnet != nil && props.Subnet.ID != nil {
		out.SubnetID = *props.Subnet.ID
		out.Subnet, out.SubnetPrefix = p.resolveSubnet(ctx, *props.Subnet.ID)
	}

	if props.PublicIPAddress != nil && props.PublicIPAddress.ID != nil {
		out.PublicIP = p.resolvePublicIP(ctx, vmName, nicName, *props.PublicIPAddress.ID)
	}

	return out
}

// resolveSubnet returns the subnet name and address prefix, consulting the
// per-run cache first. Subnets are shared across many NICs, so the cache
// saves most of the subnet Gets in a typical subscription.
func (p *Provider) resolveSubnet(ctx context.Context, subnetID string) (string, string) {
	rid, err := arm.ParseResourceID(subnetID)
	if err != nil {
		log.Warn().Err(err).Str("subnet_id", subnetID).Msg("could not parse subnet id")
		return "", ""
	}
	name := rid.Name

	if prefix, ok := p.subnetPrefixes[subnetID]; ok {
		return name, prefix
	}

	vnet := ""
	if rid.Parent != nil {
		vnet = rid.Parent.Name
	}

	resp, err := p.subnetClient.Get(ctx, rid.ResourceGroupName, vnet, name, nil)
	if err != nil {
		log.Warn().Err(err).Str("subnet_id", subnetID).Msg("could not fetch subnet details")
		return name, ""
	}

	prefix := ""
	if resp.Properties != nil {
		prefix = toString(resp.Properties.AddressPrefix)
	}
	p.subnetPrefixes[subnetID] = prefix
	return name, prefix
}

func (p *Provider) resolvePublicIP(ctx context.Context, vmName, nicName, publicIPID string) string {
	rid, err := arm.ParseResourceID(publicIPID)
	if err != nil {
		log.Warn().Err(err).Str("public_ip_id", publicIPID).Msg("could not parse public ip id")
		return ""
	}

	resp, err := p.publicIPClient.Get(ctx, rid.ResourceGroupName, rid.Name, nil)
	if err != nil {
		log.Warn().Err(err).
			Str("vm", vmName).
			Str("nic", nicName).
			Str("public_ip", rid.Name).
			Msg("could not fetch public ip")
		return ""
	}

	if resp.Properties == nil {
		return ""
	}
	return toString(resp.Properties.IPAddress)
}
