package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dexopt/apiremap/formatter"
	"github.com/dexopt/apiremap/internal"
	tt "github.com/dexopt/apiremap/internal/types"
	"github.com/dexopt/apiremap/remap"
)

// watchCmd: apiremap watch
var watchCmd = &cobra.Command{
	Use:   "watch [program dumps...]",
	Short: "Recompute the remapping whenever a program dump changes",
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			fmt.Println("error: Please provide program dump paths")
			os.Exit(1)
		}

		config, err := remap.ParseConfig(cfgFile)
		if err != nil {
			logger.Fatal("Failed to read configuration", zap.Error(err))
		}
		if apiFile != "" {
			config.APIFile = apiFile
		}

		rerun := func(changed string) (tt.Report, error) {
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()

			prog, err := remap.LoadPrograms(ctx, nil, args)
			if err != nil {
				return tt.Report{}, err
			}
			return remap.Run(ctx, nil, remap.New(prog, config), config)
		}

		// The catalog is watched too: a framework API update changes the
		// mapping just as much as a dump change does.
		watchPaths := args
		if config.APIFile != "" {
			watchPaths = append(append([]string{}, args...), config.APIFile)
		}

		watcher, err := internal.NewWatcher(watchPaths, rerun)
		if err != nil {
			logger.Fatal("Failed to create watcher", zap.Error(err))
		}
		if err := watcher.StartWatching(); err != nil {
			logger.Fatal("Failed to start watching", zap.Error(err))
		}
		defer watcher.StopWatching()

		// run once up front so the first report does not wait for a change
		if report, err := rerun(""); err != nil {
			logger.Error("Error computing remapping", zap.Error(err))
		} else {
			fmt.Println(formatter.GenerateFormattedReport(report))
		}

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
	},
}

func init() {
	watchCmd.Flags().StringVar(&apiFile, "api-file", "", "Framework API catalog file (overrides configuration)")
}
