// Command hrtf-gen flattens a KEMAR-style HRTF measurement tree into
// generated C++ constant-data files: a header declaring the impulse-array
// and elevation-table shapes, and a source file with the literal values.
//
// Usage:
//
//	hrtf-gen [options] <dataset-directory>
//
// Options:
//
//	-config     Read dataset/output settings from a YAML file
//	-header     Destination path for the generated header
//	-source     Destination path for the generated source file
//	-normalize  Normalize the set's peak amplitude to -1.0dB
//	-minphase   Convert impulses to minimum phase before emitting
//	-verbose    Show progress and details
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"hrtf-gen/internal/config"
	"hrtf-gen/internal/kemar"
	"hrtf-gen/pkg/codegen"
	"hrtf-gen/pkg/hrtfdata"
)

var (
	configPath = flag.String("config", "", "Read dataset/output settings from a YAML file")
	headerPath = flag.String("header", "include/synthizer/data/hrtf.hpp", "Destination path for the generated header")
	sourcePath = flag.String("source", "src/data/hrtf.cpp", "Destination path for the generated source file")
	normalize  = flag.Bool("normalize", false, "Normalize the set's peak amplitude to -1.0dB")
	minPhase   = flag.Bool("minphase", false, "Convert impulses to minimum phase before emitting")
	verbose    = flag.Bool("verbose", false, "Show progress and details")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] <dataset-directory>\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Flattens an HRTF dataset into generated C++ constant data.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s ./data/kemar\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -config hrtf-gen.yaml\n", os.Args[0])
	}
	flag.Parse()

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelInfo
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	datasetDir := ""
	opts := kemar.Options{Normalize: *normalize, MinPhase: *minPhase}
	header, source := *headerPath, *sourcePath

	if *configPath != "" {
		cfg, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		datasetDir = cfg.Dataset.Dir
		opts = kemar.Options{Normalize: cfg.Dataset.Normalize, MinPhase: cfg.Dataset.MinPhase}

		if cfg.Output.Header != "" {
			header = cfg.Output.Header
		}

		if cfg.Output.Source != "" {
			source = cfg.Output.Source
		}
	}

	// A positional dataset directory overrides the config file.
	if flag.NArg() == 1 {
		datasetDir = flag.Arg(0)
	} else if flag.NArg() > 1 || datasetDir == "" {
		flag.Usage()
		os.Exit(1)
	}

	if err := run(datasetDir, header, source, opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(datasetDir, headerPath, sourcePath string, opts kemar.Options) error {
	slog.Info("Loading dataset", "dir", datasetDir, "normalize", opts.Normalize, "minPhase", opts.MinPhase)

	dataset, err := kemar.Load(datasetDir, opts)
	if err != nil {
		return fmt.Errorf("failed to load dataset: %w", err)
	}

	slog.Info("Dataset loaded",
		"elevations", dataset.NumElevations(),
		"elevMin", dataset.ElevMin,
		"elevIncrement", dataset.ElevIncrement,
		"impulseLength", dataset.ImpulseLength)

	table, err := hrtfdata.Flatten(dataset)
	if err != nil {
		return fmt.Errorf("failed to flatten dataset: %w", err)
	}

	slog.Info("Dataset flattened", "totalImpulses", table.TotalImpulses)

	artifacts, err := codegen.Render(table)
	if err != nil {
		return fmt.Errorf("failed to render artifacts: %w", err)
	}

	if err := artifacts.Write(headerPath, sourcePath); err != nil {
		return err
	}

	if *verbose {
		fmt.Printf("Wrote %s (%d bytes)\n", headerPath, len(artifacts.Header))
		fmt.Printf("Wrote %s (%d bytes)\n", sourcePath, len(artifacts.Source))
		fmt.Printf("  Elevations: %d\n", len(table.Elevations))
		fmt.Printf("  Impulses:   %d x %d samples\n", table.TotalImpulses, table.ImpulseLength)
	}

	return nil
}
