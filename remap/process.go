package remap

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"sort"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	"github.com/dexopt/apiremap/internal/program"
	"github.com/dexopt/apiremap/scanner"
)

// LoadPrograms loads the program dump shards named by paths into one
// merged Program. Each path may be a single dump file or a directory of
// shards; directories are scanned recursively. Shards are parsed
// concurrently but always merged in sorted path order, so a class
// defined twice is reported against the same shard on every run.
func LoadPrograms(ctx context.Context, logger *zap.Logger, paths []string) (*program.Program, error) {
	files, err := collectDumpFiles(paths)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no program dump files found under %v", paths)
	}

	if len(files) == 1 {
		return program.Load(files[0])
	}

	type shardResult struct {
		index int
		prog  *program.Program
		err   error
	}
	resultChan := make(chan shardResult, len(files))

	maxWorkers := runtime.NumCPU()
	sem := make(chan struct{}, maxWorkers)

	bar := progressbar.NewOptions(len(files),
		progressbar.OptionSetDescription(fmt.Sprintf("loading %d shards", len(files))),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))

	for i, filePath := range files {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
			sem <- struct{}{}
			go func(index int, fp string) {
				defer func() { <-sem }()

				prog, err := program.Load(fp)
				if err != nil && logger != nil {
					logger.Error("Error loading shard", zap.String("file", fp), zap.Error(err))
				}
				resultChan <- shardResult{index: index, prog: prog, err: err}
				bar.Add(1)
			}(i, filePath)
		}
	}

	shards := make([]*program.Program, len(files))
	errs := make([]error, len(files))
	for range files {
		res := <-resultChan
		shards[res.index] = res.prog
		errs[res.index] = res.err
	}
	fmt.Println()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	merged := program.New()
	for i, shard := range shards {
		for _, cls := range shard.Classes() {
			if err := merged.Add(cls); err != nil {
				return nil, fmt.Errorf("shard %s: %w", files[i], err)
			}
		}
	}

	if logger != nil {
		logger.Info("program loaded",
			zap.Int("shards", len(files)),
			zap.Int("classes", merged.Len()))
	}
	return merged, nil
}

// collectDumpFiles expands the given paths into the sorted list of dump
// files they name. Directories are scanned for dump extensions; explicit
// file paths are taken as-is regardless of extension.
func collectDumpFiles(paths []string) ([]string, error) {
	var files []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("error accessing %s: %w", path, err)
		}
		if info.IsDir() {
			found, err := scanner.New(path, ".yaml", ".yml").Scan()
			if err != nil {
				return nil, err
			}
			for _, f := range found {
				files = append(files, f.Path)
			}
		} else {
			files = append(files, path)
		}
	}
	sort.Strings(files)
	return files, nil
}
