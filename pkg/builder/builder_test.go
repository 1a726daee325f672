package builder

import (
	"context"
	"fmt"
	"io"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/braunma/topology-builder/internal/constants"
	"github.com/braunma/topology-builder/pkg/client"
	"github.com/braunma/topology-builder/pkg/models"
	"github.com/braunma/topology-builder/pkg/utils"
)

type updateCall struct {
	kind string
	id   string
	data map[string]interface{}
}

// fakeService records every Apply and Update instead of talking to a
// platform. Apply always creates, handing out sequential object IDs.
type allocation struct {
	poolID     string
	identifier string
}

type fakeService struct {
	mu          sync.Mutex
	store       *client.Store
	logger      *utils.Logger
	applies     map[string][]map[string]interface{}
	updates     []updateCall
	allocations []allocation
	nextID      int
}

func newFakeService() *fakeService {
	logger := utils.NewLogger(false)
	logger.SetOutput(io.Discard)
	return &fakeService{
		store:   client.NewStore(),
		logger:  logger,
		applies: make(map[string][]map[string]interface{}),
	}
}

func (f *fakeService) Apply(kind string, lookup, payload map[string]interface{}) (client.Object, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.applies[kind] = append(f.applies[kind], payload)
	f.nextID++
	return client.Object{"id": fmt.Sprintf("obj-%d", f.nextID)}, nil
}

func (f *fakeService) Update(kind, id string, data map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.updates = append(f.updates, updateCall{kind: kind, id: id, data: data})
	return nil
}

func (f *fakeService) AllocateNextIP(poolID, identifier string, data map[string]interface{}) (client.Object, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.allocations = append(f.allocations, allocation{poolID: poolID, identifier: identifier})
	return client.Object{"id": fmt.Sprintf("addr-%d", len(f.allocations))}, nil
}

func (f *fakeService) Store() *client.Store  { return f.store }
func (f *fakeService) Logger() *utils.Logger { return f.logger }

func (f *fakeService) appliedNames(kind string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	var names []string
	for _, payload := range f.applies[kind] {
		if name, ok := payload["name"].(string); ok {
			names = append(names, name)
		}
	}
	return names
}

func switchTemplate(name string) models.Template {
	return models.Template{
		Name:     name,
		TypeName: "TemplateDcimPhysicalDevice",
		Interfaces: []models.InterfaceSpec{
			{Name: "Ethernet[1-2]", Role: "uplink"},
			{Name: "Management0", Role: "management"},
			{Name: "Console0", Role: "console", Speed: 115200},
		},
	}
}

func testTopology() *models.Topology {
	return &models.Topology{
		ID:       "topo-1",
		Name:     "DC1",
		Location: models.LocationRef{ID: "loc-1"},
		Subnets: []models.SubnetRef{
			{Type: "management", PrefixID: "prefix-1"},
		},
		Design: models.Design{
			Elements: []models.DesignElement{
				{
					Name: "leaf-switches", Role: "leaf", Quantity: 2,
					DeviceType: models.DeviceTypeRef{ID: "dt-leaf", Height: 1, Platform: models.PlatformRef{ID: "plat-eos"}},
					Template:   switchTemplate("leaf-template"),
				},
				{
					Name: "spine-switches", Role: "spine", Quantity: 1,
					DeviceType: models.DeviceTypeRef{ID: "dt-spine", Height: 1},
					Template:   switchTemplate("spine-template"),
				},
				{
					Name: "border-leafs", Role: "border_leaf", Quantity: 1,
					DeviceType: models.DeviceTypeRef{ID: "dt-border", Height: 1},
					Template:   switchTemplate("border-template"),
				},
				{
					Name: "oob-switches", Role: "oob", Quantity: 1,
					DeviceType: models.DeviceTypeRef{ID: "dt-oob", Height: 1},
					Template: models.Template{
						Name:     "oob-template",
						TypeName: "TemplateDcimPhysicalDevice",
						Interfaces: []models.InterfaceSpec{
							{Name: "Ethernet[1-8]", Role: "management"},
						},
					},
				},
				{
					Name: "console-servers", Role: "console", Quantity: 1,
					DeviceType: models.DeviceTypeRef{ID: "dt-console", Height: 1},
					Template: models.Template{
						Name:     "console-template",
						TypeName: "TemplateDcimPhysicalDevice",
						Interfaces: []models.InterfaceSpec{
							{Name: "Console[1-8]", Role: "console", Speed: 9600},
						},
					},
				},
			},
		},
	}
}

func TestBuildCreatesFullTopology(t *testing.T) {
	svc := newFakeService()
	b := New(svc, testTopology())

	require.NoError(t, b.Build(context.Background()))

	assert.Equal(t, []string{"DC1"}, svc.appliedNames(constants.KindSite))
	assert.Equal(t, []string{"Pod-1"}, svc.appliedNames(constants.KindPod))
	assert.Equal(t, []string{"Row-1"}, svc.appliedNames(constants.KindRow))

	// one rack per leaf
	assert.Equal(t, []string{"Rack-1", "Rack-2"}, svc.appliedNames(constants.KindRack))

	assert.Equal(t,
		[]string{"border_leafs", "consoles", "leafs", "oobs", "spines"},
		svc.appliedNames(constants.KindGroup))

	assert.Equal(t, []string{"DC1-management-pool"}, svc.appliedNames(constants.KindAddressPool))

	names := svc.appliedNames(constants.KindDevice)
	assert.ElementsMatch(t, []string{
		"dc1-leaf-01", "dc1-leaf-02",
		"dc1-spine-01", "dc1-border_leaf-01",
		"dc1-oob-01", "dc1-console-01",
	}, names)

	// 3 physical interfaces per switch template plus the 8 ports of the
	// out-of-band switch; console interfaces are a separate kind
	assert.Len(t, svc.applies[constants.KindInterface], 2*3+3+3+8)
	assert.Len(t, svc.applies[constants.KindConsoleInterface], 2+1+1+8)
}

func TestBuildAssignsLeafsToTheirRacks(t *testing.T) {
	svc := newFakeService()
	b := New(svc, testTopology())

	require.NoError(t, b.Build(context.Background()))

	byName := make(map[string]*models.Device)
	for _, device := range b.Devices() {
		byName[device.Name] = device
	}

	assert.Equal(t, 1, byName["dc1-leaf-01"].Rack)
	assert.Equal(t, 2, byName["dc1-leaf-02"].Rack)
	assert.Equal(t, 42, byName["dc1-leaf-01"].Position)
	assert.Equal(t, 42, byName["dc1-leaf-02"].Position)

	rack1ID, err := svc.store.MustGet(constants.KindRack, "DC1-Rack-1")
	require.NoError(t, err)

	var found bool
	for _, update := range svc.updates {
		if update.id == byName["dc1-leaf-01"].ID && update.data["position"] == 42 {
			assert.Equal(t, rack1ID, update.data["location"])
			found = true
		}
	}
	assert.True(t, found, "no rack assignment update for dc1-leaf-01")
}

func TestBuildStacksMiddleRackDevices(t *testing.T) {
	svc := newFakeService()
	b := New(svc, testTopology())

	require.NoError(t, b.Build(context.Background()))

	byName := make(map[string]*models.Device)
	for _, device := range b.Devices() {
		byName[device.Name] = device
	}

	// border leaf, spine, console server and OOB switch all start their
	// round-robin at the first middle rack and stack below the leaf
	assert.Equal(t, 1, byName["dc1-border_leaf-01"].Rack)
	assert.Equal(t, 41, byName["dc1-border_leaf-01"].Position)
	assert.Equal(t, 40, byName["dc1-spine-01"].Position)
	assert.Equal(t, 39, byName["dc1-console-01"].Position)
	assert.Equal(t, 38, byName["dc1-oob-01"].Position)
}

func TestBuildCreatesConnections(t *testing.T) {
	svc := newFakeService()
	b := New(svc, testTopology())

	require.NoError(t, b.Build(context.Background()))

	var mgmtConnectors, consoleConnectors int
	for _, update := range svc.updates {
		if _, ok := update.data["connector"]; !ok {
			continue
		}
		switch update.kind {
		case constants.KindInterface:
			mgmtConnectors++
		case constants.KindConsoleInterface:
			consoleConnectors++
		}
	}

	// leafs, spine and border leaf each get one management and one console
	// uplink; the OOB switch has no console interface of its own
	assert.Equal(t, 4, mgmtConnectors)
	assert.Equal(t, 4, consoleConnectors)
}

func TestBuildAllocatesManagementAddresses(t *testing.T) {
	svc := newFakeService()
	b := New(svc, testTopology())

	require.NoError(t, b.Build(context.Background()))

	poolID, err := svc.store.MustGet(constants.KindAddressPool, constants.ManagementPoolKey)
	require.NoError(t, err)

	var identifiers []string
	for _, alloc := range svc.allocations {
		assert.Equal(t, poolID, alloc.poolID)
		identifiers = append(identifiers, alloc.identifier)
	}
	assert.ElementsMatch(t, []string{
		"dc1-leaf-01-management", "dc1-leaf-02-management",
		"dc1-spine-01-management", "dc1-border_leaf-01-management",
		"dc1-oob-01-management", "dc1-console-01-management",
	}, identifiers)

	for _, payload := range svc.applies[constants.KindDevice] {
		assert.NotEmpty(t, payload["primary_address"], "device %v has no primary address", payload["name"])
	}
}

func TestBuildWithoutManagementPool(t *testing.T) {
	svc := newFakeService()
	topo := testTopology()
	topo.Subnets = nil

	b := New(svc, topo)
	require.NoError(t, b.Build(context.Background()))

	assert.Empty(t, svc.allocations)
	for _, payload := range svc.applies[constants.KindDevice] {
		_, ok := payload["primary_address"]
		assert.False(t, ok, "device %v got a primary address without a pool", payload["name"])
	}
}

func TestBuildConsoleInterfaceDefaults(t *testing.T) {
	svc := newFakeService()
	b := New(svc, testTopology())

	require.NoError(t, b.Build(context.Background()))

	for _, payload := range svc.applies[constants.KindConsoleInterface] {
		assert.NotNil(t, payload["speed"])
		assert.NotNil(t, payload["port"])
	}
}

func TestBuildFailsWithoutLocation(t *testing.T) {
	svc := newFakeService()
	topo := testTopology()
	topo.Location.ID = ""

	err := New(svc, topo).Build(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no location found")
}
