package emitter

import (
	"context"
	"fmt"

	"github.com/netboxlabs/diode-sdk-go/diode"
	"github.com/rs/zerolog/log"

	"github.com/yairfalse/virta/internal/config"
	"github.com/yairfalse/virta/internal/errdefs"
	"github.com/yairfalse/virta/pkg/record"
)

// DiodeSink transmits record sets to a NetBox Diode ingestion endpoint
// over the vendor gRPC client. One Emit call is one Ingest RPC.
type DiodeSink struct {
	client diode.Client
	target string
}

// NewDiodeSink opens the ingestion session with OAuth2 client
// credentials. The SDK also reads DIODE_CLIENT_ID / DIODE_CLIENT_SECRET
// from the environment when the options are absent.
func NewDiodeSink(cfg config.DiodeConfig, appName, appVersion string) (*DiodeSink, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var opts []diode.ClientOption
	if cfg.ClientID != "" {
		opts = append(opts, diode.WithClientID(cfg.ClientID))
	}
	if cfg.ClientSecret != "" {
		opts = append(opts, diode.WithClientSecret(cfg.ClientSecret))
	}

	client, err := diode.NewClient(cfg.Target, appName, appVersion, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: connect %s: %v", errdefs.ErrIngestion, cfg.Target, err)
	}

	log.Info().Str("target", cfg.Target).Msg("diode session opened")
	return &DiodeSink{client: client, target: cfg.Target}, nil
}

// Emit converts the set to Diode entities and transmits them.
// Per-record rejections reported by the sink fail the call - they are
// never silently dropped.
func (s *DiodeSink) Emit(ctx context.Context, set record.Set) error {
	entities := toEntities(set)
	if len(entities) == 0 {
		return nil
	}

	resp, err := s.client.Ingest(ctx, entities)
	if err != nil {
		return fmt.Errorf("%w: ingest %d entities: %v", errdefs.ErrIngestion, len(entities), err)
	}
	if resp != nil && len(resp.GetErrors()) > 0 {
		return fmt.Errorf("%w: sink rejected records: %v", errdefs.ErrIngestion, resp.GetErrors())
	}

	log.Debug().Int("entities", len(entities)).Str("target", s.target).Msg("set ingested")
	return nil
}

// Close releases the gRPC channel.
func (s *DiodeSink) Close() error {
	return s.client.Close()
}

func toEntities(set record.Set) []diode.Entity {
	entities := make([]diode.Entity, 0, set.Len())

	for _, ct := range set.ClusterTypes {
		entities = append(entities, clusterTypeEntity(ct))
	}
	for _, cg := range set.ClusterGroups {
		entities = append(entities, clusterGroupEntity(cg))
	}
	for _, c := range set.Clusters {
		entities = append(entities, clusterEntity(c))
	}
	for _, vm := range set.VirtualMachines {
		entities = append(entities, vmEntities(vm)...)
	}

	return entities
}

// vmEntities flattens a VM record into the entity sequence the sink
// expects: the VM first, then its disks, then each interface followed by
// the addresses assigned to it.
func vmEntities(vm record.VirtualMachine) []diode.Entity {
	vmEntity := &diode.VirtualMachine{
		Name:     diode.String(vm.Name),
		Status:   diode.String(string(vm.Status)),
		Cluster:  clusterEntity(vm.Cluster),
		Comments: diode.String(vm.Comments),
		Tags:     tagEntities(vm.Tags),
	}
	if vm.VCPUs > 0 {
		vmEntity.Vcpus = diode.Float64(float64(vm.VCPUs))
	}
	if vm.MemoryMB > 0 {
		vmEntity.Memory = diode.Int64(vm.MemoryMB)
	}

	entities := []diode.Entity{vmEntity}

	for _, disk := range vm.Disks {
		entities = append(entities, &diode.VirtualDisk{
			Name:           diode.String(disk.Name),
			VirtualMachine: vmEntity,
			Size:           diode.Int64(disk.SizeMB),
			Tags:           tagEntities(disk.Tags),
		})
	}

	for _, iface := range vm.Interfaces {
		ifaceEntity := &diode.VMInterface{
			Name:           diode.String(iface.Name),
			VirtualMachine: vmEntity,
			Enabled:        diode.Bool(iface.Enabled),
			Description:    diode.String(iface.Description),
			Tags:           tagEntities(iface.Tags),
		}
		entities = append(entities, ifaceEntity)

		for _, ip := range iface.IPs {
			entities = append(entities, &diode.IPAddress{
				Address:        diode.String(ip.Address),
				Status:         diode.String("active"),
				Description:    diode.String(ip.Description),
				AssignedObject: ifaceEntity,
				Tags:           tagEntities(ip.Tags),
			})
		}
	}

	return entities
}

func clusterTypeEntity(ct record.ClusterType) *diode.ClusterType {
	return &diode.ClusterType{
		Name:        diode.String(ct.Name),
		Description: diode.String(ct.Description),
	}
}

func clusterGroupEntity(cg record.ClusterGroup) *diode.ClusterGroup {
	return &diode.ClusterGroup{
		Name:        diode.String(cg.Name),
		Description: diode.String(cg.Description),
	}
}

func clusterEntity(c record.Cluster) *diode.Cluster {
	return &diode.Cluster{
		Name:        diode.String(c.Name),
		Type:        clusterTypeEntity(c.Type),
		Group:       clusterGroupEntity(c.Group),
		Description: diode.String(c.Description),
		Tags:        tagEntities(c.Tags),
	}
}

func tagEntities(tags []string) []*diode.Tag {
	if len(tags) == 0 {
		return nil
	}
	out := make([]*diode.Tag, 0, len(tags))
	for _, tag := range tags {
		out = append(out, &diode.Tag{Name: diode.String(tag)})
	}
	return out
}
