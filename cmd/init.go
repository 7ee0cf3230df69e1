package cmd

import (
	"fmt"

	"os"

	"github.com/dexopt/apiremap/remap"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// initCmd: apiremap init
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new remapping configuration file",
	Run: func(cmd *cobra.Command, args []string) {
		if err := initConfigurationFile(cfgFile); err != nil {
			logger.Error("Error initializing config file", zap.Error(err))
			return
		}
		if cfgFile == "" {
			cfgFile = remap.DefaultConfigPath
		}
		fmt.Printf("Configuration file created/updated: %s\n", cfgFile)
	},
}

func initConfigurationFile(configurationPath string) error {
	if configurationPath == "" {
		configurationPath = remap.DefaultConfigPath
	}

	// Create a yaml file with the default remapping knobs
	config := remap.Config{
		Name:          "apiremap",
		APIFile:       "framework.api",
		ReleasePrefix: "Landroidx",
		SkipPackages:  []string{},
		Exclude:       []string{},
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
