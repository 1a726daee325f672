// Package client talks to the inventory platform's object API. It is a thin
// transport: create, update, filter and idempotent apply on typed object
// kinds, scoped to a branch. Everything the build computes flows through it;
// nothing in here knows about racks or templates.
package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/braunma/topology-builder/pkg/utils"
)

// Object represents a generic platform object
type Object map[string]interface{}

// PlatformClient handles all object API operations
type PlatformClient struct {
	baseURL    string
	token      string
	branch     string
	httpClient *http.Client
	store      *Store
	logger     *utils.Logger
	dryRun     bool
}

// NewClient creates a new platform API client. All calls operate on the
// given branch; dry-run mode logs mutations and mints placeholder IDs
// instead of sending them.
func NewClient(baseURL, token, branch string, dryRun bool) *PlatformClient {
	return &PlatformClient{
		baseURL: baseURL,
		token:   token,
		branch:  branch,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		store:  NewStore(),
		logger: utils.NewLogger(dryRun),
		dryRun: dryRun,
	}
}

// Request makes an HTTP request to the platform API
func (c *PlatformClient) Request(method, path string, body interface{}) (Object, error) {
	requestURL := c.baseURL + path

	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequest(method, requestURL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Token "+c.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	if c.dryRun && method != http.MethodGet {
		c.logger.DryRun(method, path)
		return Object{"id": newObjectID()}, nil
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("API error %d: %s", resp.StatusCode, string(respBody))
	}

	if len(respBody) == 0 {
		return nil, nil
	}

	var result Object
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return result, nil
}

// Filter retrieves objects of a kind matching the given filters
func (c *PlatformClient) Filter(kind string, filters map[string]interface{}) ([]Object, error) {
	query := url.Values{}
	query.Set("branch", c.branch)
	for k, v := range filters {
		query.Set(k, fmt.Sprintf("%v", v))
	}

	requestURL := fmt.Sprintf("%s/api/objects/%s/?%s", c.baseURL, kind, query.Encode())

	req, err := http.NewRequest(http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Token "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("API error %d: %s", resp.StatusCode, string(respBody))
	}

	var result struct {
		Results []Object `json:"results"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		// Some endpoints return a bare array
		var direct []Object
		if err2 := json.Unmarshal(respBody, &direct); err2 == nil {
			return direct, nil
		}
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return result.Results, nil
}

// Create creates a new object of the given kind
func (c *PlatformClient) Create(kind string, data map[string]interface{}) (Object, error) {
	path := fmt.Sprintf("/api/objects/%s/?branch=%s", kind, url.QueryEscape(c.branch))
	return c.Request(http.MethodPost, path, data)
}

// Update patches an existing object
func (c *PlatformClient) Update(kind, id string, data map[string]interface{}) error {
	path := fmt.Sprintf("/api/objects/%s/%s/?branch=%s", kind, id, url.QueryEscape(c.branch))
	_, err := c.Request(http.MethodPatch, path, data)
	return err
}

// AllocateNextIP allocates the next free address from a resource pool. The
// identifier keys the allocation: repeating a request with the same
// identifier returns the already-allocated address instead of a new one.
func (c *PlatformClient) AllocateNextIP(poolID, identifier string, data map[string]interface{}) (Object, error) {
	path := fmt.Sprintf("/api/resource-pools/%s/allocate/?branch=%s", poolID, url.QueryEscape(c.branch))
	body := map[string]interface{}{
		"identifier": identifier,
	}
	if len(data) > 0 {
		body["data"] = data
	}
	return c.Request(http.MethodPost, path, body)
}

// Delete removes an object
func (c *PlatformClient) Delete(kind, id string) error {
	path := fmt.Sprintf("/api/objects/%s/%s/?branch=%s", kind, id, url.QueryEscape(c.branch))
	_, err := c.Request(http.MethodDelete, path, nil)
	return err
}

// Apply creates or updates an object (idempotent upsert): the lookup keys
// identify the object, the payload is the desired state. Only changed fields
// are patched.
func (c *PlatformClient) Apply(kind string, lookup, payload map[string]interface{}) (Object, error) {
	c.logger.Debug("  → Applying %s with lookup: %v", kind, lookup)

	existing, err := c.Filter(kind, lookup)
	if err != nil {
		return nil, fmt.Errorf("failed to filter objects: %w", err)
	}

	if len(existing) == 0 {
		c.logger.Success("  ✓ Creating %s: %v", kind, formatLookup(lookup))
		return c.Create(kind, payload)
	}

	obj := existing[0]
	objID := utils.GetIDFromObject(obj)
	if objID == "" {
		return nil, fmt.Errorf("existing %s object has no ID", kind)
	}

	changes := calculateDiff(obj, payload)
	if len(changes) > 0 {
		c.logger.Info("  ⟳ Updating %s (%s): %v", kind, objID, formatLookup(lookup))
		if err := c.Update(kind, objID, changes); err != nil {
			return nil, fmt.Errorf("failed to update object: %w", err)
		}
	} else {
		c.logger.Debug("  = No changes for %s (%s)", kind, objID)
	}

	return obj, nil
}

// Store returns the build's object store
func (c *PlatformClient) Store() *Store {
	return c.store
}

// Logger returns the logger
func (c *PlatformClient) Logger() *utils.Logger {
	return c.logger
}

// IsDryRun returns the dry-run status
func (c *PlatformClient) IsDryRun() bool {
	return c.dryRun
}

// Branch returns the branch every call is scoped to
func (c *PlatformClient) Branch() string {
	return c.branch
}

// formatLookup formats lookup criteria for display
func formatLookup(lookup map[string]interface{}) string {
	if name, ok := lookup["name"]; ok {
		return fmt.Sprintf("name=%v", name)
	}
	for k, v := range lookup {
		return fmt.Sprintf("%s=%v", k, v)
	}
	return "{}"
}

// calculateDiff compares an existing object with the desired state
func calculateDiff(existing Object, desired map[string]interface{}) map[string]interface{} {
	changes := make(map[string]interface{})

	for key, desiredValue := range desired {
		if desiredValue == nil {
			continue
		}

		existingValue, exists := existing[key]
		if !exists {
			changes[key] = desiredValue
			continue
		}

		// List-valued fields (group memberships, pool resources) compare
		// as unordered ID sets
		switch desiredValue.(type) {
		case []string, []interface{}:
			if !membersEqual(existingValue, desiredValue) {
				changes[key] = desiredValue
			}
			continue
		}

		// Nested relationship objects compare by ID
		if existingMap, ok := existingValue.(map[string]interface{}); ok {
			existingValue = utils.GetIDFromObject(existingMap)
		}

		if !valuesEqual(existingValue, desiredValue) {
			changes[key] = desiredValue
		}
	}

	return changes
}

// membersEqual compares two membership lists as unordered ID sets
func membersEqual(existing, desired interface{}) bool {
	existingIDs := extractMemberIDs(existing)
	desiredIDs := extractMemberIDs(desired)

	if len(existingIDs) != len(desiredIDs) {
		return false
	}

	seen := make(map[string]bool)
	for _, id := range existingIDs {
		seen[id] = true
	}
	for _, id := range desiredIDs {
		if !seen[id] {
			return false
		}
	}

	return true
}

// extractMemberIDs pulls IDs out of the list formats the API uses: bare ID
// strings or nested objects
func extractMemberIDs(list interface{}) []string {
	var ids []string

	switch v := list.(type) {
	case []interface{}:
		for _, item := range v {
			if id := utils.GetIDFromObject(item); id != "" {
				ids = append(ids, id)
			}
		}
	case []string:
		ids = v
	}

	return ids
}

// valuesEqual compares two values for equality across JSON type mismatches
func valuesEqual(a, b interface{}) bool {
	switch av := a.(type) {
	case float64:
		if bv, ok := b.(int); ok {
			return av == float64(bv)
		}
	case int:
		if bv, ok := b.(float64); ok {
			return float64(av) == bv
		}
	case string:
		if bv, ok := b.(string); ok {
			return av == bv
		}
	}

	return a == b
}

// newObjectID mints a placeholder object ID for dry-run responses.
func newObjectID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}
