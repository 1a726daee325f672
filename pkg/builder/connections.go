package builder

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/braunma/topology-builder/internal/constants"
	"github.com/braunma/topology-builder/pkg/ifrange"
	"github.com/braunma/topology-builder/pkg/models"
	"github.com/braunma/topology-builder/pkg/utils"
)

// managementConnections cables every device's management interface to a port
// on an out-of-band switch.
func (b *Builder) managementConnections(ctx context.Context) error {
	return b.createConnections(ctx,
		constants.InterfaceRoleManagement, constants.RoleMarkerOOB, constants.KindInterface)
}

// consoleConnections cables every device's console interface to a port on a
// console server.
func (b *Builder) consoleConnections(ctx context.Context) error {
	return b.createConnections(ctx,
		constants.InterfaceRoleConsole, constants.RoleMarkerConsole, constants.KindConsoleInterface)
}

// endpoint is one free port on a provider device.
type endpoint struct {
	device *models.Device
	iface  string
}

// createConnections pairs consumer interfaces of the given role with free
// ports on provider devices, matching odd-numbered consumers to odd-numbered
// providers and even to even so each rack half cables to its nearest
// provider. Updates are applied to both ends; a consumer with no free port
// left is warned about and skipped.
func (b *Builder) createConnections(ctx context.Context, role, marker, kind string) error {
	providers, consumers := b.splitByMarker(marker)
	if len(providers) == 0 {
		return nil
	}

	b.logger.Info("Creating %s connections for %s", role, b.topology.Name)

	ports := map[int][]endpoint{0: nil, 1: nil}
	for _, provider := range providers {
		ordinal, err := utils.DeviceOrdinal(provider.Name)
		if err != nil {
			return err
		}
		for _, iface := range b.interfacesForRole(provider, role) {
			ports[ordinal%2] = append(ports[ordinal%2], endpoint{provider, iface})
		}
	}

	for _, consumer := range consumers {
		if err := ctx.Err(); err != nil {
			return err
		}

		ifaces := b.interfacesForRole(consumer, role)
		if len(ifaces) == 0 {
			continue
		}

		ordinal, err := utils.DeviceOrdinal(consumer.Name)
		if err != nil {
			return err
		}

		parity := ordinal % 2
		if len(ports[parity]) == 0 {
			parity = 1 - parity
		}
		if len(ports[parity]) == 0 {
			b.logger.Warning("No free %s port left for %s", role, consumer.Name)
			continue
		}

		port := ports[parity][0]
		ports[parity] = ports[parity][1:]

		if err := b.connect(kind, port, consumer, ifaces[0]); err != nil {
			return err
		}
	}

	return nil
}

// connect wires one provider port to one consumer interface.
func (b *Builder) connect(kind string, port endpoint, consumer *models.Device, iface string) error {
	portID, err := b.store.MustGet(kind, fmt.Sprintf("%s-%s", port.device.Name, port.iface))
	if err != nil {
		return err
	}
	ifaceID, err := b.store.MustGet(kind, fmt.Sprintf("%s-%s", consumer.Name, iface))
	if err != nil {
		return err
	}

	err = b.svc.Update(kind, portID, map[string]interface{}{
		"connector":   ifaceID,
		"status":      constants.StatusActive,
		"description": fmt.Sprintf("Connection to %s", consumer.Name),
	})
	if err != nil {
		return fmt.Errorf("failed to connect %s/%s to %s: %w", port.device.Name, port.iface, consumer.Name, err)
	}

	err = b.svc.Update(kind, ifaceID, map[string]interface{}{
		"status":      constants.StatusActive,
		"description": fmt.Sprintf("Connection to %s", port.device.Name),
	})
	if err != nil {
		return fmt.Errorf("failed to update %s/%s: %w", consumer.Name, iface, err)
	}

	b.logger.Info("Connected %s/%s -> %s/%s", consumer.Name, iface, port.device.Name, port.iface)
	return nil
}

// splitByMarker partitions the generated devices into providers whose role
// carries the marker and all remaining consumers, both sorted by name.
func (b *Builder) splitByMarker(marker string) (providers, consumers []*models.Device) {
	for _, device := range b.devices {
		if strings.Contains(strings.ToLower(device.Role), marker) {
			providers = append(providers, device)
		} else {
			consumers = append(consumers, device)
		}
	}
	sort.Slice(providers, func(i, j int) bool { return providers[i].Name < providers[j].Name })
	sort.Slice(consumers, func(i, j int) bool { return consumers[i].Name < consumers[j].Name })
	return providers, consumers
}

// interfacesForRole returns a device's interface names carrying the given
// role, in natural port order.
func (b *Builder) interfacesForRole(device *models.Device, role string) []string {
	specs, ok := b.gen.ExpandedInterfaces(device.Template)
	if !ok {
		return nil
	}

	var names []string
	for _, spec := range specs {
		if spec.Role == role {
			names = append(names, spec.Name)
		}
	}
	return ifrange.SortNames(names)
}
