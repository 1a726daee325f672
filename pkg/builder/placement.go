package builder

import (
	"context"
	"fmt"
	"sort"

	"github.com/braunma/topology-builder/internal/constants"
	"github.com/braunma/topology-builder/pkg/allocator"
)

// assignDevicesToRacks computes the rack layout for all generated devices and
// persists each placement. Allocation warnings are surfaced but never fail
// the build; a device the allocator skipped simply keeps no rack assignment.
func (b *Builder) assignDevicesToRacks(ctx context.Context) error {
	b.logger.Info("Assigning devices to racks for %s", b.topology.Name)

	alloc, err := allocator.Allocate(b.devices, allocator.DefaultHeight)
	if err != nil {
		return err
	}

	for _, warning := range alloc.Warnings {
		b.logger.Warning("%s", warning)
	}

	rackNumbers := make([]int, 0, len(alloc.Racks))
	for rack := range alloc.Racks {
		rackNumbers = append(rackNumbers, rack)
	}
	sort.Ints(rackNumbers)

	for _, rack := range rackNumbers {
		rackID, err := b.store.MustGet(constants.KindRack,
			fmt.Sprintf("%s-Rack-%d", b.topology.Name, rack))
		if err != nil {
			return err
		}

		for _, placement := range alloc.Racks[rack] {
			if err := ctx.Err(); err != nil {
				return err
			}

			device := placement.Device
			device.Rack = rack
			device.Position = placement.Position

			err := b.svc.Update(device.Kind, device.ID, map[string]interface{}{
				"location": rackID,
				"position": placement.Position,
			})
			if err != nil {
				return fmt.Errorf("failed to assign %s to Rack-%d: %w", device.Name, rack, err)
			}

			b.logger.Info("Assigned %s to Rack-%d at position U%d (%dU device)",
				device.Name, rack, placement.Position, placement.Height)
		}
	}

	return nil
}
