package models

import "github.com/braunma/topology-builder/internal/constants"

// InterfaceSpec describes one interface entry in a device template. Name may
// carry bracket-range notation ("Ethernet[1-48]") which is expanded before
// any device consumes the template.
type InterfaceSpec struct {
	Name  string `yaml:"name" json:"name" validate:"required"`
	Role  string `yaml:"role,omitempty" json:"role,omitempty"`
	Port  int    `yaml:"port,omitempty" json:"port,omitempty"`
	Speed int    `yaml:"speed,omitempty" json:"speed,omitempty"`
}

// Template is a named ordered list of interface specs bound to a design element
type Template struct {
	Name       string          `yaml:"template_name" json:"template_name" validate:"required"`
	TypeName   string          `yaml:"typename,omitempty" json:"typename,omitempty"`
	Interfaces []InterfaceSpec `yaml:"interfaces" json:"interfaces" validate:"dive"`
}

// PlatformRef is an opaque reference to a platform record (NOS flavour)
type PlatformRef struct {
	ID string `yaml:"id" json:"id"`
}

// DeviceTypeRef identifies the hardware model a design element materializes
// as. Height is the vertical size in rack units; zero means unknown and is
// treated as 1U during placement.
type DeviceTypeRef struct {
	ID       string      `yaml:"id" json:"id" validate:"required"`
	Name     string      `yaml:"name,omitempty" json:"name,omitempty"`
	Height   int         `yaml:"height,omitempty" json:"height,omitempty"`
	Platform PlatformRef `yaml:"platform,omitempty" json:"platform,omitempty"`
}

// DesignElement is one role slot in a topology design: how many devices of
// which type, and which interface template they consume. Immutable input,
// consumed once per build.
type DesignElement struct {
	Name       string        `yaml:"name,omitempty" json:"name,omitempty"`
	Role       string        `yaml:"role" json:"role" validate:"required"`
	Quantity   int           `yaml:"quantity" json:"quantity" validate:"required,min=1"`
	DeviceType DeviceTypeRef `yaml:"device_type" json:"device_type" validate:"required"`
	Template   Template      `yaml:"template" json:"template" validate:"required"`
}

// LocationRef is an opaque reference to the parent location of a topology
type LocationRef struct {
	ID   string `yaml:"id" json:"id" validate:"required"`
	Name string `yaml:"name,omitempty" json:"name,omitempty"`
}

// SubnetRef is an opaque reference to a prefix used to seed an address pool
type SubnetRef struct {
	Type     string `yaml:"type" json:"type" validate:"required"`
	PrefixID string `yaml:"prefix_id" json:"prefix_id" validate:"required"`
}

// Design holds the ordered design elements of a topology
type Design struct {
	Elements []DesignElement `yaml:"elements" json:"elements" validate:"required,min=1,dive"`
}

// Topology is the parsed design document for one datacenter build
type Topology struct {
	ID       string      `yaml:"id,omitempty" json:"id,omitempty"`
	Name     string      `yaml:"name" json:"name" validate:"required"`
	Location LocationRef `yaml:"location" json:"location" validate:"required"`
	Subnets  []SubnetRef `yaml:"subnets,omitempty" json:"subnets,omitempty" validate:"dive"`
	Design   Design      `yaml:"design" json:"design" validate:"required"`
}

// LeafCount returns the number of leaf devices the design calls for, which
// also fixes the number of racks in the row.
func (t *Topology) LeafCount() int {
	count := 0
	for _, element := range t.Design.Elements {
		if element.Role == constants.RoleLeaf {
			count += element.Quantity
		}
	}
	return count
}
