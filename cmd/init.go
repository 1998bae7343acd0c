package cmd

import (
	"fmt"

	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/portlint/portlint/internal/search"
	"github.com/portlint/portlint/verify"
)

// initCmd: portlint init
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new verifier configuration file",
	Run: func(cmd *cobra.Command, args []string) {
		if err := initConfigurationFile(cfgFile); err != nil {
			logger.Error("Error initializing config file", zap.Error(err))
			os.Exit(1)
		}
		fmt.Printf("Configuration file created/updated: %s\n", cfgFile)
	},
}

func initConfigurationFile(configurationPath string) error {
	if configurationPath == "" {
		configurationPath = verify.DefaultConfigFile
	}

	// Starter config: discover reference modules next to the repo and search
	// the usual declaration and implementation trees.
	config := verify.DefaultConfig()
	config.Reference.Root = "reference"
	config.Reference.Discover.Enabled = true
	config.Candidates = []search.Target{
		{Root: "include", Patterns: []string{"*.hpp", "*.h"}},
		{Root: "src", Patterns: []string{"*.cpp", "*.cc"}},
	}

	d, err := yaml.Marshal(config)
	if err != nil {
		return err
	}

	f, err := os.Create(configurationPath)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.Write(d)
	if err != nil {
		return err
	}

	return nil
}
