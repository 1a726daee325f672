// Package naming turns design elements into uniquely named devices and binds
// each device to the interface template its element references.
package naming

import (
	"fmt"
	"sort"
	"strings"

	"github.com/braunma/topology-builder/internal/constants"
	"github.com/braunma/topology-builder/pkg/ifrange"
	"github.com/braunma/topology-builder/pkg/models"
	"github.com/braunma/topology-builder/pkg/utils"
)

// Generator produces device names for one topology build. Counters are
// per-role, start at 1 and are independent across roles; each template's
// interface ranges are expanded exactly once and cached for the build.
type Generator struct {
	topology       string
	counters       map[string]int
	templates      map[string][]models.InterfaceSpec
	deviceTemplate map[string]string
}

// NewGenerator creates a generator for the given topology name.
func NewGenerator(topology string) *Generator {
	return &Generator{
		topology:       topology,
		counters:       make(map[string]int),
		templates:      make(map[string][]models.InterfaceSpec),
		deviceTemplate: make(map[string]string),
	}
}

// Generate materializes the device list for the given design elements, one
// device per unit of quantity. Names follow
// "{topology}-{role}-{NN}" with the topology lowercased and the counter
// zero-padded to two digits; counters past 99 keep their natural width.
func (g *Generator) Generate(elements []models.DesignElement) []*models.Device {
	var devices []*models.Device

	for _, element := range elements {
		role := element.Role
		g.cacheTemplate(element.Template)

		for i := 0; i < element.Quantity; i++ {
			g.counters[role]++
			name := fmt.Sprintf("%s-%s-%02d", strings.ToLower(g.topology), role, g.counters[role])

			g.deviceTemplate[name] = element.Template.Name

			devices = append(devices, &models.Device{
				Name:         name,
				Role:         role,
				Kind:         deviceKind(element),
				Height:       element.DeviceType.Height,
				Template:     element.Template.Name,
				Group:        GroupForRole(role),
				DeviceTypeID: element.DeviceType.ID,
				PlatformID:   element.DeviceType.Platform.ID,
			})
		}
	}

	return devices
}

// cacheTemplate expands a template's interface ranges once per build. A spec
// whose name fails to expand is kept verbatim.
func (g *Generator) cacheTemplate(template models.Template) {
	if _, ok := g.templates[template.Name]; ok {
		return
	}

	var expanded []models.InterfaceSpec
	for _, spec := range template.Interfaces {
		for _, name := range ifrange.ExpandName(spec.Name) {
			entry := spec
			entry.Name = name
			expanded = append(expanded, entry)
		}
	}
	g.templates[template.Name] = expanded
}

// TemplateFor returns the template name bound to a generated device name.
func (g *Generator) TemplateFor(device string) (string, bool) {
	name, ok := g.deviceTemplate[device]
	return name, ok
}

// ExpandedInterfaces returns the cached, range-expanded interface list of a
// template. Two devices sharing a template see the same name list but get
// independently created interface records.
func (g *Generator) ExpandedInterfaces(template string) ([]models.InterfaceSpec, bool) {
	specs, ok := g.templates[template]
	return specs, ok
}

// Groups returns the sorted set of group names the generated devices belong to.
func (g *Generator) Groups() []string {
	seen := make(map[string]bool)
	for role := range g.counters {
		seen[GroupForRole(role)] = true
	}

	groups := make([]string, 0, len(seen))
	for group := range seen {
		groups = append(groups, group)
	}
	sort.Strings(groups)
	return groups
}

// GroupForRole maps a design role to its device group. Firewall roles share
// one fixed group; every other role gets the role name with an "s" appended,
// no irregular pluralization.
func GroupForRole(role string) string {
	if utils.Contains(constants.FirewallRoles, role) {
		return constants.FirewallGroupName
	}
	return role + "s"
}

// deviceKind picks the platform kind a device materializes as.
func deviceKind(element models.DesignElement) string {
	if strings.Contains(element.Template.TypeName, "Virtual") {
		return constants.KindVirtualDevice
	}
	if utils.Contains(constants.FirewallRoles, element.Role) {
		return constants.KindFirewall
	}
	return constants.KindDevice
}
