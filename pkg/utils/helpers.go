package utils

import (
	"fmt"
	"strconv"
	"strings"
)

// Slugify converts a string to a URL-safe slug
func Slugify(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, " ", "-")
	// Remove any characters that aren't alphanumeric or hyphens
	var result strings.Builder
	for _, char := range s {
		if (char >= 'a' && char <= 'z') || (char >= '0' && char <= '9') || char == '-' {
			result.WriteRune(char)
		}
	}
	return result.String()
}

// GetIDFromObject extracts an object ID from the formats the platform returns:
// a bare ID string, a numeric ID, or a nested object carrying an "id" field.
func GetIDFromObject(obj interface{}) string {
	if obj == nil {
		return ""
	}

	switch v := obj.(type) {
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case float64:
		return strconv.FormatInt(int64(v), 10)
	case map[string]interface{}:
		if id, ok := v["id"].(string); ok {
			return id
		}
		if id, ok := v["id"].(float64); ok {
			return strconv.FormatInt(int64(id), 10)
		}
		if id, ok := v["id"].(int); ok {
			return strconv.Itoa(id)
		}
	}

	return ""
}

// DeviceOrdinal extracts the per-role counter from a generated device name.
// Names look like "dc-3-leaf-01"; the trailing dash-separated token is the
// ordinal. A name without a numeric tail is a hard error, not a skip: a
// device that cannot be numbered cannot be placed.
func DeviceOrdinal(name string) (int, error) {
	parts := strings.Split(name, "-")
	last := parts[len(parts)-1]
	n, err := strconv.Atoi(last)
	if err != nil {
		return 0, fmt.Errorf("device name %q has no numeric ordinal: %w", name, err)
	}
	return n, nil
}

// Contains checks if a string slice contains a specific string
func Contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
