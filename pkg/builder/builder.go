// Package builder orchestrates one topology build: it creates the location
// hierarchy and racks, materializes devices and their interfaces, and
// persists the rack allocation the allocator computes. All platform access
// goes through the ObjectService it is handed; the builder itself holds no
// transport state.
package builder

import (
	"context"
	"fmt"
	"strings"

	"github.com/braunma/topology-builder/internal/constants"
	"github.com/braunma/topology-builder/pkg/client"
	"github.com/braunma/topology-builder/pkg/models"
	"github.com/braunma/topology-builder/pkg/naming"
	"github.com/braunma/topology-builder/pkg/utils"
)

// ObjectService is the narrow surface of the inventory platform the builder
// depends on.
type ObjectService interface {
	Apply(kind string, lookup, payload map[string]interface{}) (client.Object, error)
	Update(kind, id string, data map[string]interface{}) error
	AllocateNextIP(poolID, identifier string, data map[string]interface{}) (client.Object, error)
	Store() *client.Store
	Logger() *utils.Logger
}

// Builder drives the build of one topology
type Builder struct {
	svc      ObjectService
	store    *client.Store
	logger   *utils.Logger
	topology *models.Topology
	gen      *naming.Generator
	devices  []*models.Device
}

// New creates a builder for one topology build
func New(svc ObjectService, topology *models.Topology) *Builder {
	return &Builder{
		svc:      svc,
		store:    svc.Store(),
		logger:   svc.Logger(),
		topology: topology,
		gen:      naming.NewGenerator(topology.Name),
	}
}

// Devices returns the devices generated for this build
func (b *Builder) Devices() []*models.Device {
	return b.devices
}

// Build runs the full topology build in dependency order.
func (b *Builder) Build(ctx context.Context) error {
	b.devices = b.gen.Generate(b.topology.Design.Elements)

	steps := []struct {
		name string
		run  func(context.Context) error
	}{
		{"site", b.createSite},
		{"location hierarchy", b.createLocationHierarchy},
		{"racks", b.createRacks},
		{"device groups", b.createGroups},
		{"address pools", b.createAddressPools},
		{"devices", b.createDevices},
		{"interfaces", b.createInterfaces},
		{"rack assignment", b.assignDevicesToRacks},
		{"management connections", b.managementConnections},
		{"console connections", b.consoleConnections},
	}

	for _, step := range steps {
		if err := step.run(ctx); err != nil {
			return fmt.Errorf("failed to build %s for %s: %w", step.name, b.topology.Name, err)
		}
	}

	return nil
}

// createSite creates the topology's building under its parent location
func (b *Builder) createSite(context.Context) error {
	name := b.topology.Name
	b.logger.Info("Create site %s", name)

	if b.topology.Location.ID == "" {
		return fmt.Errorf("no location found in topology data for %s", name)
	}

	obj, err := b.svc.Apply(constants.KindSite,
		map[string]interface{}{"name": name},
		map[string]interface{}{
			"name":      name,
			"shortname": name,
			"parent":    b.topology.Location.ID,
		})
	if err != nil {
		return err
	}

	b.store.Set(constants.KindSite, name, utils.GetIDFromObject(obj))
	return nil
}

// createLocationHierarchy creates the pod and row below the building
func (b *Builder) createLocationHierarchy(context.Context) error {
	name := b.topology.Name
	b.logger.Info("Creating location hierarchy for %s", name)

	buildingID, err := b.store.MustGet(constants.KindSite, name)
	if err != nil {
		return err
	}

	pod, err := b.svc.Apply(constants.KindPod,
		map[string]interface{}{"name": constants.DefaultPodName},
		map[string]interface{}{
			"name":      constants.DefaultPodName,
			"shortname": constants.DefaultPodName,
			"parent":    buildingID,
		})
	if err != nil {
		return err
	}
	podID := utils.GetIDFromObject(pod)
	b.store.Set(constants.KindPod, fmt.Sprintf("%s-%s", name, constants.DefaultPodName), podID)

	row, err := b.svc.Apply(constants.KindRow,
		map[string]interface{}{"name": constants.DefaultRowName},
		map[string]interface{}{
			"name":      constants.DefaultRowName,
			"shortname": constants.DefaultRowName,
			"parent":    podID,
		})
	if err != nil {
		return err
	}
	b.store.Set(constants.KindRow, fmt.Sprintf("%s-%s", name, constants.DefaultRowName), utils.GetIDFromObject(row))

	return nil
}

// createRacks creates one rack per leaf device in the design
func (b *Builder) createRacks(context.Context) error {
	name := b.topology.Name
	numRacks := b.topology.LeafCount()
	b.logger.Info("Creating %d racks for %s", numRacks, name)

	rowID, err := b.store.MustGet(constants.KindRow, fmt.Sprintf("%s-%s", name, constants.DefaultRowName))
	if err != nil {
		return err
	}

	for i := 1; i <= numRacks; i++ {
		rackName := fmt.Sprintf("Rack-%d", i)
		obj, err := b.svc.Apply(constants.KindRack,
			map[string]interface{}{"name": rackName, "parent": rowID},
			map[string]interface{}{
				"name":      rackName,
				"shortname": rackName,
				"parent":    rowID,
			})
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", rackName, err)
		}
		b.store.Set(constants.KindRack, fmt.Sprintf("%s-%s", name, rackName), utils.GetIDFromObject(obj))
	}

	return nil
}

// createGroups ensures every device group the build references exists
func (b *Builder) createGroups(context.Context) error {
	groups := b.gen.Groups()
	b.logger.Info("Creating %d device groups", len(groups))

	for _, group := range groups {
		obj, err := b.svc.Apply(constants.KindGroup,
			map[string]interface{}{"name": group},
			map[string]interface{}{"name": group})
		if err != nil {
			return fmt.Errorf("failed to create group %s: %w", group, err)
		}
		b.store.Set(constants.KindGroup, group, utils.GetIDFromObject(obj))
	}

	return nil
}

// createAddressPools creates one IP address pool per subnet reference
func (b *Builder) createAddressPools(context.Context) error {
	if len(b.topology.Subnets) == 0 {
		return nil
	}
	b.logger.Info("Creating address pools")

	for _, subnet := range b.topology.Subnets {
		poolName := fmt.Sprintf("%s-%s-pool", b.topology.Name, subnet.Type)
		obj, err := b.svc.Apply(constants.KindAddressPool,
			map[string]interface{}{"name": poolName},
			map[string]interface{}{
				"name":                 poolName,
				"default_address_type": "IpamIPAddress",
				"description":          fmt.Sprintf("%s IP Pool", subnet.Type),
				"ip_namespace":         "default",
				"resources":            []string{subnet.PrefixID},
			})
		if err != nil {
			return fmt.Errorf("failed to create pool %s: %w", poolName, err)
		}
		b.store.Set(constants.KindAddressPool,
			fmt.Sprintf("%s_ip_pool", strings.ToLower(subnet.Type)),
			utils.GetIDFromObject(obj))
	}

	return nil
}
