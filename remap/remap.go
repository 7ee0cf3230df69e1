// Package remap is the public surface of the release to framework
// class remapping pipeline: configuration, program loading and the
// engine run itself.
package remap

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/dexopt/apiremap/internal"
	"github.com/dexopt/apiremap/internal/catalog"
	"github.com/dexopt/apiremap/internal/program"
	tt "github.com/dexopt/apiremap/internal/types"
)

// DefaultConfigPath is consulted when no config file is given.
const DefaultConfigPath = ".apiremap.yaml"

// Engine is the mapping engine surface the command layer drives.
type Engine interface {
	LoadMapping(cat *catalog.Catalog) error
	Exclude(types []string) error
	Report() tt.Report
	Removals() []int
}

// Config drives one remapping run.
type Config struct {
	Name          string   `yaml:"name"`
	APIFile       string   `yaml:"api-file"`
	ReleasePrefix string   `yaml:"release-prefix"`
	SkipPackages  []string `yaml:"skip-packages"`
	Exclude       []string `yaml:"exclude"`
}

// New builds an engine over the given program, configured by config.
func New(prog *program.Program, config Config) *internal.Engine {
	return internal.NewEngine(prog, internal.Options{
		ReleasePrefix: config.ReleasePrefix,
		SkipPackages:  config.SkipPackages,
	})
}

// Run executes the pipeline on eng: load the API catalog, seed and
// validate the mapping, then apply the configured exclusions. The
// returned report reflects the final converged mapping.
func Run(ctx context.Context, logger *zap.Logger, eng Engine, config Config) (tt.Report, error) {
	if config.APIFile == "" {
		return tt.Report{}, fmt.Errorf("no API catalog file configured")
	}
	if err := ctx.Err(); err != nil {
		return tt.Report{}, err
	}

	cat, err := catalog.Load(config.APIFile)
	if err != nil {
		return tt.Report{}, err
	}
	if logger != nil {
		logger.Info("catalog loaded",
			zap.String("file", config.APIFile),
			zap.Int("classes", cat.Len()))
	}

	if err := eng.LoadMapping(cat); err != nil {
		return tt.Report{}, fmt.Errorf("failed to build mapping: %w", err)
	}
	report := eng.Report()
	if logger != nil {
		logger.Info("mapping converged",
			zap.Int("seeded", report.Seeded),
			zap.Int("retained", report.Retained),
			zap.Int("rounds", report.Rounds),
			zap.Ints("removals", eng.Removals()))
	}

	if len(config.Exclude) > 0 {
		if err := eng.Exclude(config.Exclude); err != nil {
			return tt.Report{}, fmt.Errorf("failed to apply exclusions: %w", err)
		}
		report = eng.Report()
		if logger != nil {
			logger.Info("exclusions applied",
				zap.Int("excluded", len(config.Exclude)),
				zap.Int("retained", report.Retained))
		}
	}

	return report, nil
}

// ParseConfig reads the YAML config at path. An empty path falls back
// to DefaultConfigPath and tolerates its absence; an explicit path
// must exist.
func ParseConfig(path string) (Config, error) {
	var config Config

	explicit := path != ""
	if !explicit {
		path = DefaultConfigPath
	}

	f, err := os.Open(path)
	if err != nil {
		if !explicit && os.IsNotExist(err) {
			return config, nil
		}
		return config, err
	}
	defer f.Close()

	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&config); err != nil {
		return config, fmt.Errorf("error parsing configuration file %s: %w", path, err)
	}

	return config, nil
}
