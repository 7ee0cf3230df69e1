package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dexopt/apiremap/formatter"
	"github.com/dexopt/apiremap/internal"
	tt "github.com/dexopt/apiremap/internal/types"
	"github.com/dexopt/apiremap/remap"
)

var (
	apiFile         string
	checkJsonOutput bool
	outPath         string
	cacheDir        string
)

var checkCmd = &cobra.Command{
	Use:   "check [program dumps...]",
	Short: "Compute the release to framework class remapping",
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			fmt.Println("error: Please provide program dump paths")
			os.Exit(1)
		}

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		config, err := remap.ParseConfig(cfgFile)
		if err != nil {
			logger.Fatal("Failed to read configuration", zap.Error(err))
		}
		if apiFile != "" {
			config.APIFile = apiFile
		}

		runCheckProcess(ctx, logger, config, args, checkJsonOutput, outPath)
	},
}

func init() {
	checkCmd.Flags().StringVar(&apiFile, "api-file", "", "Framework API catalog file (overrides configuration)")
	checkCmd.Flags().BoolVar(&checkJsonOutput, "json", false, "Output the report in JSON format")
	checkCmd.Flags().StringVarP(&outPath, "output", "o", "", "Output path (when using JSON)")
	checkCmd.Flags().StringVar(&cacheDir, "cache-dir", "", "Directory for cached reports")
}

func runCheckProcess(ctx context.Context, logger *zap.Logger, config remap.Config, paths []string, isJson bool, jsonOutput string) {
	cache := openCache(config, paths)
	if cache != nil {
		if report, ok := cache.Get(paths[0]); ok {
			logger.Info("Using cached report", zap.String("dump", paths[0]))
			printReport(logger, report, isJson, jsonOutput)
			return
		}
	}

	prog, err := remap.LoadPrograms(ctx, logger, paths)
	if err != nil {
		logger.Error("Error loading program dumps", zap.Error(err))
		os.Exit(1)
	}

	engine := remap.New(prog, config)
	report, err := remap.Run(ctx, logger, engine, config)
	if err != nil {
		logger.Error("Error computing remapping", zap.Error(err))
		os.Exit(1)
	}

	if cache != nil {
		if err := cache.Set(paths[0], report); err != nil {
			logger.Warn("Failed to cache report", zap.Error(err))
		}
	}

	printReport(logger, report, isJson, jsonOutput)
}

// openCache returns a report cache when one is configured and the run is
// cacheable: a single dump file whose metadata can key the entry.
func openCache(config remap.Config, paths []string) *internal.Cache {
	if cacheDir == "" || len(paths) != 1 {
		return nil
	}
	info, err := os.Stat(paths[0])
	if err != nil || info.IsDir() {
		return nil
	}

	var deps []string
	if config.APIFile != "" {
		deps = append(deps, config.APIFile)
	}
	// the config file read for this run is a dependency like the catalog
	cfgPath := cfgFile
	if cfgPath == "" {
		cfgPath = remap.DefaultConfigPath
	}
	if _, err := os.Stat(cfgPath); err == nil {
		deps = append(deps, cfgPath)
	}
	cache, err := internal.NewCache(cacheDir, deps...)
	if err != nil {
		logger.Warn("Failed to open report cache", zap.Error(err))
		return nil
	}
	return cache
}

func printReport(logger *zap.Logger, report tt.Report, isJson bool, jsonOutput string) {
	if !isJson {
		fmt.Println(formatter.GenerateFormattedReport(report))
		return
	}

	d, err := json.Marshal(report)
	if err != nil {
		logger.Error("Error marshalling report to JSON", zap.Error(err))
		return
	}
	if jsonOutput == "" {
		fmt.Println(string(d))
	} else {
		f, err := os.Create(jsonOutput)
		if err != nil {
			logger.Error("Error creating JSON output file", zap.Error(err))
			return
		}
		defer f.Close()
		_, err = f.Write(d)
		if err != nil {
			logger.Error("Error writing JSON output file", zap.Error(err))
			return
		}
	}
}
