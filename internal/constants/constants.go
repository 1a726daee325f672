package constants

// Rack geometry
const (
	// RackHeightU is the usable height of every rack in rack units.
	RackHeightU = 42
)

// Device roles with dedicated placement rules
const (
	RoleLeaf       = "leaf"
	RoleBorderLeaf = "border_leaf"
	RoleSpine      = "spine"
)

// Role substring markers for management gear placed in the middle racks
const (
	RoleMarkerConsole = "console"
	RoleMarkerOOB     = "oob"
)

// Device group names
const (
	FirewallGroupName = "juniper_firewall"
)

// FirewallRoles join the shared firewall group instead of the per-role group
var FirewallRoles = []string{"dc_firewall", "edge_firewall"}

// Console interface defaults
const (
	DefaultConsolePort  = 0
	DefaultConsoleSpeed = 9600
)

// Object kinds on the inventory platform
const (
	KindSite             = "LocationBuilding"
	KindPod              = "LocationPod"
	KindRow              = "LocationRow"
	KindRack             = "LocationRack"
	KindGroup            = "CoreStandardGroup"
	KindDevice           = "DcimDevice"
	KindVirtualDevice    = "DcimVirtualDevice"
	KindFirewall         = "SecurityFirewall"
	KindInterface        = "InterfacePhysical"
	KindConsoleInterface = "DcimConsoleInterface"
	KindAddressPool      = "CoreIPAddressPool"
)

// ManagementPoolKey is the store key of the management address pool device
// primary addresses are drawn from.
const ManagementPoolKey = "management_ip_pool"

// Location hierarchy defaults
const (
	DefaultPodName = "Pod-1"
	DefaultRowName = "Row-1"
)

// Object status values
const (
	StatusActive = "active"
)

// Environment variables read at startup
const (
	EnvPlatformURL   = "PLATFORM_URL"
	EnvPlatformToken = "PLATFORM_TOKEN"
	EnvBranch        = "PLATFORM_BRANCH"
)

// Interface roles with special materialization handling
const (
	InterfaceRoleConsole    = "console"
	InterfaceRoleManagement = "management"
)

// CreateWorkers bounds the number of concurrent object-creation requests.
const CreateWorkers = 4
