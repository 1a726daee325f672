// Package allocator computes rack and U-position assignments for the devices
// of one topology build.
//
// The row holds one rack per leaf device. Leaves are pinned to the rack
// matching their name ordinal and sit at the top of it. Spines, border
// leaves, console servers and out-of-band gear share a band of "middle
// racks" centered on the row, stacking downward below whatever already
// occupies a rack. The computation is pure and deterministic: the same
// device list always yields the same allocation.
package allocator

import (
	"fmt"
	"strings"

	"github.com/braunma/topology-builder/internal/constants"
	"github.com/braunma/topology-builder/pkg/models"
	"github.com/braunma/topology-builder/pkg/utils"
)

// Placement records one device in a rack. Position is the lowest rack unit
// the device occupies; an H-unit device spans Position..Position+H-1.
type Placement struct {
	Device   *models.Device
	Position int
	Height   int
}

// Allocation is the result of one allocation pass. Racks holds only occupied
// rack indices. Warnings records every device that was skipped rather than
// placed; the caller decides how to surface them.
type Allocation struct {
	TotalRacks  int
	MiddleRacks []int
	Racks       map[int][]Placement
	Warnings    []string
}

// HeightFunc resolves a device's height in rack units. Implementations must
// never fail; unknown heights default to 1U.
type HeightFunc func(*models.Device) int

// DefaultHeight reads the height recorded on the device, treating anything
// below 1U as unknown.
func DefaultHeight(device *models.Device) int {
	if device.Height < 1 {
		return 1
	}
	return device.Height
}

// Allocate computes the rack assignment for a device list. Devices with
// roles outside the placement rules are ignored. The only hard failure is a
// leaf device whose name carries no numeric ordinal; every capacity problem
// degrades to a warning instead.
func Allocate(devices []*models.Device, heightOf HeightFunc) (*Allocation, error) {
	if heightOf == nil {
		heightOf = DefaultHeight
	}

	var leafs, borderLeafs, spines, consoles, oobs []*models.Device
	for _, device := range devices {
		if device.Role == constants.RoleLeaf {
			leafs = append(leafs, device)
		}
		if device.Role == constants.RoleBorderLeaf {
			borderLeafs = append(borderLeafs, device)
		}
		if device.Role == constants.RoleSpine {
			spines = append(spines, device)
		}
		role := strings.ToLower(device.Role)
		if strings.Contains(role, constants.RoleMarkerConsole) {
			consoles = append(consoles, device)
		}
		if strings.Contains(role, constants.RoleMarkerOOB) {
			oobs = append(oobs, device)
		}
	}

	alloc := &Allocation{
		TotalRacks: len(leafs),
		Racks:      make(map[int][]Placement),
	}

	if alloc.TotalRacks == 0 {
		alloc.warnf("no leaf devices found, skipping rack assignment")
		return alloc, nil
	}

	alloc.MiddleRacks = middleBand(alloc.TotalRacks, middleCount(spines, borderLeafs, consoles, oobs))

	// Leaves are pinned 1:1 to racks by name ordinal
	for _, device := range leafs {
		ordinal, err := utils.DeviceOrdinal(device.Name)
		if err != nil {
			return nil, fmt.Errorf("cannot place leaf device: %w", err)
		}
		if ordinal > alloc.TotalRacks {
			alloc.warnf("device %s number (%d) exceeds rack count (%d), skipping",
				device.Name, ordinal, alloc.TotalRacks)
			continue
		}
		if ordinal < 1 {
			alloc.warnf("device %s number (%d) is not a valid rack index, skipping",
				device.Name, ordinal)
			continue
		}
		height := heightOf(device)
		alloc.place(ordinal, device, topOfRack(height), height)
	}

	// Middle-rack groups in fixed claim order; each group round-robins the
	// shared band with its own cursor, so groups can stack in the same rack.
	groups := []struct {
		label   string
		devices []*models.Device
	}{
		{"border leaf", borderLeafs},
		{"spine", spines},
		{"console device", consoles},
		{"OOB device", oobs},
	}

	for _, group := range groups {
		cursor := 0
		for _, device := range group.devices {
			if cursor >= len(alloc.MiddleRacks) {
				alloc.warnf("not enough middle racks for %s %s", group.label, device.Name)
				break
			}
			rack := alloc.MiddleRacks[cursor]
			cursor++

			if rack < 1 || rack > alloc.TotalRacks {
				alloc.warnf("middle rack %d for %s %s is outside the row (1..%d), skipping",
					rack, group.label, device.Name, alloc.TotalRacks)
				continue
			}

			height := heightOf(device)
			position := topOfRack(height)
			if occupants := alloc.Racks[rack]; len(occupants) > 0 {
				position = lowestPosition(occupants) - height
			}
			alloc.place(rack, device, position, height)
		}
	}

	return alloc, nil
}

// middleCount sizes the middle band: it must fit the larger of the spine
// group and the combined border-leaf/console/OOB group.
func middleCount(spines, borderLeafs, consoles, oobs []*models.Device) int {
	count := len(borderLeafs) + len(consoles) + len(oobs)
	if len(spines) > count {
		count = len(spines)
	}
	return count
}

// middleBand returns a contiguous run of rack indices centered on the row.
// The band is not clamped; indices outside 1..totalRacks are possible when
// the band outgrows the row and are skipped at placement time.
func middleBand(totalRacks, count int) []int {
	start := totalRacks/2 - count/2
	band := make([]int, 0, count)
	for i := start + 1; i <= start+count; i++ {
		band = append(band, i)
	}
	return band
}

// topOfRack is the position of an H-unit device sitting at the very top.
func topOfRack(height int) int {
	return constants.RackHeightU - (height - 1)
}

func lowestPosition(occupants []Placement) int {
	lowest := occupants[0].Position
	for _, placement := range occupants[1:] {
		if placement.Position < lowest {
			lowest = placement.Position
		}
	}
	return lowest
}

func (a *Allocation) place(rack int, device *models.Device, position, height int) {
	a.Racks[rack] = append(a.Racks[rack], Placement{
		Device:   device,
		Position: position,
		Height:   height,
	})
}

func (a *Allocation) warnf(format string, args ...interface{}) {
	a.Warnings = append(a.Warnings, fmt.Sprintf(format, args...))
}
