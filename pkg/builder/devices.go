package builder

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/braunma/topology-builder/internal/constants"
	"github.com/braunma/topology-builder/pkg/models"
	"github.com/braunma/topology-builder/pkg/utils"
)

// createDevices creates all generated devices on the platform. Creation is
// batched across a small worker pool; device order inside the slice is
// stable so names stay deterministic regardless of completion order.
func (b *Builder) createDevices(ctx context.Context) error {
	b.logger.Info("Creating %d devices for %s", len(b.devices), b.topology.Name)

	buildingID, err := b.store.MustGet(constants.KindSite, b.topology.Name)
	if err != nil {
		return err
	}

	mgmtPoolID, hasMgmtPool := b.store.Get(constants.KindAddressPool, constants.ManagementPoolKey)
	if !hasMgmtPool {
		b.logger.Warning("No management address pool, devices get no primary address")
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(constants.CreateWorkers)

	for _, device := range b.devices {
		device := device
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			groupID, err := b.store.MustGet(constants.KindGroup, device.Group)
			if err != nil {
				return err
			}

			payload := map[string]interface{}{
				"name":             device.Name,
				"device_type":      device.DeviceTypeID,
				"status":           constants.StatusActive,
				"role":             device.Role,
				"location":         buildingID,
				"topology":         b.topology.ID,
				"member_of_groups": []string{groupID},
			}
			if device.PlatformID != "" {
				payload["platform"] = device.PlatformID
			}

			if hasMgmtPool {
				addr, err := b.svc.AllocateNextIP(mgmtPoolID,
					fmt.Sprintf("%s-management", device.Name),
					map[string]interface{}{
						"description": fmt.Sprintf("%s Management IP", device.Name),
					})
				if err != nil {
					return fmt.Errorf("failed to allocate management IP for %s: %w", device.Name, err)
				}
				payload["primary_address"] = utils.GetIDFromObject(addr)
			}

			obj, err := b.svc.Apply(device.Kind,
				map[string]interface{}{"name": device.Name},
				payload)
			if err != nil {
				return fmt.Errorf("failed to create device %s: %w", device.Name, err)
			}

			device.ID = utils.GetIDFromObject(obj)
			b.store.Set(device.Kind, device.Name, device.ID)

			return nil
		})
	}

	return g.Wait()
}

// createInterfaces creates every interface of every device, expanding range
// notation through the generator's template cache.
func (b *Builder) createInterfaces(ctx context.Context) error {
	b.logger.Info("Creating interfaces for %s", b.topology.Name)

	for _, device := range b.devices {
		specs, ok := b.gen.ExpandedInterfaces(device.Template)
		if !ok {
			b.logger.Warning("No interface template %q for device %s", device.Template, device.Name)
			continue
		}
		for _, spec := range specs {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := b.createInterface(device, spec); err != nil {
				return err
			}
		}
	}

	return nil
}

func (b *Builder) createInterface(device *models.Device, spec models.InterfaceSpec) error {
	kind := constants.KindInterface
	payload := map[string]interface{}{
		"name":   spec.Name,
		"device": device.ID,
		"status": constants.StatusActive,
		"role":   spec.Role,
	}

	if spec.Role == constants.InterfaceRoleConsole {
		kind = constants.KindConsoleInterface
		port := spec.Port
		if port == 0 {
			port = constants.DefaultConsolePort
		}
		speed := spec.Speed
		if speed == 0 {
			speed = constants.DefaultConsoleSpeed
		}
		payload["port"] = port
		payload["speed"] = speed
	}

	obj, err := b.svc.Apply(kind,
		map[string]interface{}{"name": spec.Name, "device": device.ID},
		payload)
	if err != nil {
		return fmt.Errorf("failed to create interface %s on %s: %w", spec.Name, device.Name, err)
	}

	b.store.Set(kind, fmt.Sprintf("%s-%s", device.Name, spec.Name), utils.GetIDFromObject(obj))
	return nil
}
