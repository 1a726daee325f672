package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/braunma/topology-builder/internal/constants"
	"github.com/braunma/topology-builder/pkg/builder"
	"github.com/braunma/topology-builder/pkg/client"
	"github.com/braunma/topology-builder/pkg/loader"
	"github.com/braunma/topology-builder/pkg/models"
	"github.com/braunma/topology-builder/pkg/utils"
)

var (
	dryRun     bool
	verbose    bool
	configFile string
	designPath string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "topology-builder",
		Short: "Data Center Topology Builder",
		Long:  `Builds data center topologies from YAML design documents: devices, interfaces, rack placement and cabling`,
		RunE:  runBuild,
	}

	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Simulate changes without applying them")
	rootCmd.Flags().BoolVar(&verbose, "verbose", false, "Enable debug output")
	rootCmd.Flags().StringVar(&configFile, "config", ".env", "Configuration file path")
	rootCmd.Flags().StringVar(&designPath, "design", "designs", "Design document file or directory")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runBuild(cmd *cobra.Command, args []string) error {
	logger := utils.NewLogger(dryRun)
	logger.SetVerbose(verbose)

	// Load environment variables, flag values win over the config file
	if err := godotenv.Load(configFile); err != nil && !os.IsNotExist(err) {
		logger.Error("Failed to load configuration file", err)
		return err
	}

	platformURL := os.Getenv(constants.EnvPlatformURL)
	platformToken := os.Getenv(constants.EnvPlatformToken)
	branch := os.Getenv(constants.EnvBranch)

	if platformURL == "" || platformToken == "" {
		logger.Error(fmt.Sprintf("%s and %s environment variables must be set",
			constants.EnvPlatformURL, constants.EnvPlatformToken), nil)
		return fmt.Errorf("missing required environment variables")
	}

	logger.Info("Initializing platform client...")
	c := client.NewClient(platformURL, platformToken, branch, dryRun)
	c.Logger().SetVerbose(verbose)

	topologies, err := loadDesigns(designPath, logger)
	if err != nil {
		logger.Error("Failed to load design documents", err)
		return err
	}
	if len(topologies) == 0 {
		logger.Warning("No design documents found in %s", designPath)
		return nil
	}
	logger.Info("Loaded %d topology designs from %s", len(topologies), designPath)

	ctx := context.Background()

	for _, topology := range topologies {
		logger.Info("═══════════════════════════════════════════════════════")
		logger.Info("Building topology: %s", topology.Name)
		logger.Info("═══════════════════════════════════════════════════════")

		b := builder.New(c, topology)
		if err := b.Build(ctx); err != nil {
			logger.Error("Failed to build topology "+topology.Name, err)
			return err
		}

		logger.Success("Topology %s: %d devices built", topology.Name, len(b.Devices()))
	}

	logger.Info("═══════════════════════════════════════════════════════")
	if dryRun {
		logger.Warning("DRY RUN COMPLETE: No changes applied")
	} else {
		logger.Success("BUILD COMPLETE: Changes applied successfully")
	}
	logger.Info("═══════════════════════════════════════════════════════")

	return nil
}

// loadDesigns accepts either a single design document or a directory tree of
// them.
func loadDesigns(path string, logger *utils.Logger) ([]*models.Topology, error) {
	dl := loader.NewDesignLoader(logger)

	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return dl.LoadDir(path)
	}

	topology, err := dl.Load(path)
	if err != nil {
		return nil, err
	}
	return []*models.Topology{topology}, nil
}
