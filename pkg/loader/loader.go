// Package loader reads topology design documents from YAML files.
package loader

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/braunma/topology-builder/pkg/models"
	"github.com/braunma/topology-builder/pkg/utils"
)

// DesignLoader loads and validates topology design documents. A document
// that parses but misses required fields (location, quantity, template name)
// is rejected before any build step runs.
type DesignLoader struct {
	logger   *utils.Logger
	validate *validator.Validate
}

// NewDesignLoader creates a new design loader
func NewDesignLoader(logger *utils.Logger) *DesignLoader {
	return &DesignLoader{
		logger:   logger,
		validate: validator.New(),
	}
}

// Load reads a single topology design document
func (dl *DesignLoader) Load(path string) (*models.Topology, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read design document: %w", err)
	}

	var topology models.Topology
	if err := yaml.Unmarshal(content, &topology); err != nil {
		return nil, fmt.Errorf("failed to unmarshal design document %s: %w", path, err)
	}

	if err := dl.validate.Struct(&topology); err != nil {
		return nil, fmt.Errorf("invalid design document %s: %w", path, err)
	}

	dl.logger.Debug("Loaded design %s with %d elements", topology.Name, len(topology.Design.Elements))
	return &topology, nil
}

// LoadDir loads every design document found under a directory, recursively.
func (dl *DesignLoader) LoadDir(dir string) ([]*models.Topology, error) {
	files, err := dl.findYAMLFiles(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to find design documents in %s: %w", dir, err)
	}

	if len(files) == 0 {
		dl.logger.Warning("No design documents found in %s", dir)
		return nil, nil
	}

	topologies := make([]*models.Topology, 0, len(files))
	for _, file := range files {
		topology, err := dl.Load(file)
		if err != nil {
			return nil, err
		}
		topologies = append(topologies, topology)
	}

	return topologies, nil
}

// findYAMLFiles recursively finds all YAML files in a directory
func (dl *DesignLoader) findYAMLFiles(dir string) ([]string, error) {
	var files []string

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if !info.IsDir() {
			ext := filepath.Ext(path)
			if ext == ".yaml" || ext == ".yml" {
				files = append(files, path)
			}
		}

		return nil
	})

	return files, err
}
