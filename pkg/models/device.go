package models

// Device is a materialized device record. Name, Role, Kind, Height, Template
// and Group are fixed at generation time; ID is filled in when the platform
// creates the record; Rack and Position are set exactly once by the caller
// after allocation.
type Device struct {
	ID           string
	Name         string
	Role         string
	Kind         string
	Height       int // rack units, 0 when the device type does not say
	Template     string
	Group        string
	DeviceTypeID string
	PlatformID   string

	Rack     int // 1-based rack index, 0 = unassigned
	Position int // rack unit of the device's lowest U, counted down from the top
}
