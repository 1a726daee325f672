package allocator

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/braunma/topology-builder/pkg/models"
)

func leaf(n int) *models.Device {
	return &models.Device{Name: fmt.Sprintf("dc-leaf-%02d", n), Role: "leaf", Height: 1}
}

func device(role string, n, height int) *models.Device {
	return &models.Device{
		Name:   fmt.Sprintf("dc-%s-%02d", role, n),
		Role:   role,
		Height: height,
	}
}

func leafs(count int) []*models.Device {
	devices := make([]*models.Device, 0, count)
	for i := 1; i <= count; i++ {
		devices = append(devices, leaf(i))
	}
	return devices
}

func find(alloc *Allocation, name string) (int, Placement, bool) {
	for rack, placements := range alloc.Racks {
		for _, placement := range placements {
			if placement.Device.Name == name {
				return rack, placement, true
			}
		}
	}
	return 0, Placement{}, false
}

func TestLeafPinnedToRackByOrdinal(t *testing.T) {
	devices := leafs(10)
	devices[2].Height = 2 // dc-leaf-03

	alloc, err := Allocate(devices, DefaultHeight)
	require.NoError(t, err)

	assert.Equal(t, 10, alloc.TotalRacks)

	rack, placement, ok := find(alloc, "dc-leaf-03")
	require.True(t, ok)
	assert.Equal(t, 3, rack)
	assert.Equal(t, 41, placement.Position) // 42 - (2-1)
	assert.Equal(t, 2, placement.Height)

	rack, placement, ok = find(alloc, "dc-leaf-01")
	require.True(t, ok)
	assert.Equal(t, 1, rack)
	assert.Equal(t, 42, placement.Position)
}

func TestLeafOrdinalBeyondRackCountSkipped(t *testing.T) {
	devices := leafs(10)
	devices[9].Name = "dc-leaf-11" // ordinal past the row

	alloc, err := Allocate(devices, DefaultHeight)
	require.NoError(t, err)

	_, _, ok := find(alloc, "dc-leaf-11")
	assert.False(t, ok, "over-capacity leaf must be absent from the allocation")

	require.NotEmpty(t, alloc.Warnings)
	assert.Contains(t, alloc.Warnings[0], "dc-leaf-11")
	assert.Contains(t, alloc.Warnings[0], "exceeds rack count")
}

func TestMalformedLeafNameIsHardError(t *testing.T) {
	devices := leafs(2)
	devices[1].Name = "dc-leaf-unnumbered"

	_, err := Allocate(devices, DefaultHeight)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dc-leaf-unnumbered")
}

func TestZeroLeafShortCircuit(t *testing.T) {
	alloc, err := Allocate([]*models.Device{
		device("spine", 1, 1),
		device("border_leaf", 1, 1),
	}, DefaultHeight)
	require.NoError(t, err)

	assert.Equal(t, 0, alloc.TotalRacks)
	assert.Empty(t, alloc.Racks)
	require.Len(t, alloc.Warnings, 1)
	assert.Contains(t, alloc.Warnings[0], "no leaf devices")
}

func TestMiddleBandCentering(t *testing.T) {
	devices := append(leafs(10),
		device("spine", 1, 1),
		device("spine", 2, 1),
	)

	alloc, err := Allocate(devices, DefaultHeight)
	require.NoError(t, err)

	// middle_start = 10/2 - 2/2 = 4, band = [5,6]
	assert.Equal(t, []int{5, 6}, alloc.MiddleRacks)

	rack, _, ok := find(alloc, "dc-spine-01")
	require.True(t, ok)
	assert.Equal(t, 5, rack)

	rack, _, ok = find(alloc, "dc-spine-02")
	require.True(t, ok)
	assert.Equal(t, 6, rack)
}

func TestMiddleGroupsStackInSharedRacks(t *testing.T) {
	devices := append(leafs(10),
		device("border_leaf", 1, 1),
		device("spine", 1, 2),
		device("console_server", 1, 1),
	)

	alloc, err := Allocate(devices, DefaultHeight)
	require.NoError(t, err)

	// band fits max(1 spine, 1 border + 1 console) = 2 racks: [5,6]
	require.Equal(t, []int{5, 6}, alloc.MiddleRacks)

	// Rack 5 holds leaf 05 at the top, then border leaf, spine and console
	// stacking below in claim order.
	rack, placement, ok := find(alloc, "dc-leaf-05")
	require.True(t, ok)
	assert.Equal(t, 5, rack)
	assert.Equal(t, 42, placement.Position)

	rack, placement, ok = find(alloc, "dc-border_leaf-01")
	require.True(t, ok)
	assert.Equal(t, 5, rack)
	assert.Equal(t, 41, placement.Position) // 42 - 1U

	rack, placement, ok = find(alloc, "dc-spine-01")
	require.True(t, ok)
	assert.Equal(t, 5, rack)
	assert.Equal(t, 39, placement.Position) // 41 - 2U

	rack, placement, ok = find(alloc, "dc-console_server-01")
	require.True(t, ok)
	assert.Equal(t, 5, rack)
	assert.Equal(t, 38, placement.Position) // 39 - 1U
}

func TestMiddleBandOverflowSkipsRemainder(t *testing.T) {
	devices := append(leafs(4),
		device("spine", 1, 1),
		device("spine", 2, 1),
		device("spine", 3, 1),
		device("spine", 4, 1),
		device("spine", 5, 1),
		device("spine", 6, 1),
	)

	alloc, err := Allocate(devices, DefaultHeight)
	require.NoError(t, err)

	// middle_start = 4/2 - 6/2 = -1, band = [0..5]: indices 0 and 5 are
	// outside the 4-rack row and their spines are skipped with a warning.
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5}, alloc.MiddleRacks)

	_, _, ok := find(alloc, "dc-spine-01")
	assert.False(t, ok, "spine aimed at rack 0 must be skipped")
	_, _, ok = find(alloc, "dc-spine-06")
	assert.False(t, ok, "spine aimed at rack 5 must be skipped")

	for n := 2; n <= 5; n++ {
		rack, _, ok := find(alloc, fmt.Sprintf("dc-spine-%02d", n))
		require.True(t, ok)
		assert.Equal(t, n-1, rack)
	}

	skips := 0
	for _, warning := range alloc.Warnings {
		if strings.Contains(warning, "outside the row") {
			skips++
		}
	}
	assert.Equal(t, 2, skips)
}

func TestGroupExhaustsBandWithWarning(t *testing.T) {
	devices := append(leafs(2),
		device("border_leaf", 1, 1),
		device("console_server", 1, 1),
		device("oob_switch", 1, 1),
		device("oob_switch", 2, 1),
	)

	alloc, err := Allocate(devices, DefaultHeight)
	require.NoError(t, err)

	// band size = 1 border + 1 console + 2 oob = 4; cursors are independent
	// per group, so each group starts at the band's first rack.
	require.Len(t, alloc.MiddleRacks, 4)

	warned := false
	for _, warning := range alloc.Warnings {
		if strings.Contains(warning, "not enough middle racks") {
			warned = true
		}
	}
	assert.False(t, warned)
}

func TestConsoleAndOOBMatchedBySubstring(t *testing.T) {
	devices := append(leafs(4),
		device("console_server", 1, 1),
		device("oob_switch", 1, 1),
	)

	alloc, err := Allocate(devices, DefaultHeight)
	require.NoError(t, err)

	_, _, ok := find(alloc, "dc-console_server-01")
	assert.True(t, ok)
	_, _, ok = find(alloc, "dc-oob_switch-01")
	assert.True(t, ok)
}

func TestUnknownHeightDefaultsToOneUnit(t *testing.T) {
	devices := []*models.Device{
		{Name: "dc-leaf-01", Role: "leaf", Height: 0},
	}

	alloc, err := Allocate(devices, DefaultHeight)
	require.NoError(t, err)

	_, placement, ok := find(alloc, "dc-leaf-01")
	require.True(t, ok)
	assert.Equal(t, 42, placement.Position)
	assert.Equal(t, 1, placement.Height)
}

func TestBorderLeafClaimsBeforeSpine(t *testing.T) {
	devices := append(leafs(9),
		device("spine", 1, 1),
		device("border_leaf", 1, 1),
	)

	alloc, err := Allocate(devices, DefaultHeight)
	require.NoError(t, err)

	// Both groups start at the band's first rack; border leaf is processed
	// first and takes the higher slot.
	_, borderPlacement, ok := find(alloc, "dc-border_leaf-01")
	require.True(t, ok)
	_, spinePlacement, ok := find(alloc, "dc-spine-01")
	require.True(t, ok)

	assert.Greater(t, borderPlacement.Position, spinePlacement.Position)
}
