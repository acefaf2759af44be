// Package main provides the convert-items binary, which converts MMOItems or
// ItemsAdder item definitions into MythicCrucible item files.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/crucible-convert/internal/config"
	"github.com/cory-johannsen/crucible-convert/internal/importer"
	"github.com/cory-johannsen/crucible-convert/internal/importer/itemsadder"
	"github.com/cory-johannsen/crucible-convert/internal/importer/mmoitems"
	"github.com/cory-johannsen/crucible-convert/internal/mapping"
	"github.com/cory-johannsen/crucible-convert/internal/observability"
	"github.com/cory-johannsen/crucible-convert/internal/scripting"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "", "path to configuration file with mapping sections")
	format := flag.String("format", "", "source format: mmoitems or itemsadder (overrides convert.format)")
	sourceDir := flag.String("source", "", "path to source item directory (overrides paths.source)")
	outputDir := flag.String("output", "", "path to output directory (overrides paths.output)")
	workers := flag.Int("workers", -1, "parallel item translations; 0 = GOMAXPROCS (overrides convert.workers)")
	script := flag.String("script", "", "optional Lua classifier script (overrides convert.script_file)")
	flag.Parse()

	v, err := config.Open(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	if *format != "" {
		v.Set("convert.format", *format)
	}
	if *sourceDir != "" {
		v.Set("paths.source", *sourceDir)
	}
	if *outputDir != "" {
		v.Set("paths.output", *outputDir)
	}
	if *workers >= 0 {
		v.Set("convert.workers", *workers)
	}
	if *script != "" {
		v.Set("convert.script_file", *script)
	}
	cfg, err := config.LoadFromViper(v)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	if cfg.Paths.Source == "" || cfg.Paths.Output == "" {
		fmt.Fprintln(os.Stderr, "usage: convert-items -format <mmoitems|itemsadder> -source <dir> -output <dir> [-config <file>] [-workers <n>] [-script <file.lua>]")
		os.Exit(1)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	var src importer.Source
	switch cfg.Convert.Format {
	case config.FormatMMOItems:
		src = mmoitems.NewSource(logger.Named("mmoitems"))
	case config.FormatItemsAdder:
		src = itemsadder.NewSource(logger.Named("itemsadder"))
	}

	store := mapping.NewStore(mapping.FromViper(v, logger.Named("mapping")), logger.Named("mapping"))

	n := cfg.Convert.Workers
	if n == 0 {
		n = runtime.GOMAXPROCS(0)
	}
	opts := []importer.Option{importer.WithWorkers(n)}
	if cfg.Convert.ScriptFile != "" {
		cls, err := scripting.LoadClassifier(cfg.Convert.ScriptFile, cfg.Convert.ScriptInstructionLimit, logger.Named("scripting"))
		if err != nil {
			logger.Fatal("loading classifier script", zap.Error(err))
		}
		defer cls.Close()
		opts = append(opts, importer.WithHook(cls))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	imp := importer.New(src, store, importer.NewDirWriter(cfg.Paths.Output), logger, opts...)
	sum, err := imp.Run(ctx, cfg.Paths.Source)
	if err != nil {
		logger.Error("conversion failed", zap.Error(err))
		stop()
		logger.Sync() //nolint:errcheck
		os.Exit(1)
	}

	for _, f := range sum.Failures {
		fmt.Printf("FAILED %s/%s: %s\n", f.Document, f.ID, f.Reason)
	}
	for _, r := range sum.Rejected {
		fmt.Printf("NOT WRITTEN %s: %s\n", r.Name, r.Reason)
	}
	fmt.Printf("converted %d of %d items (%d failed) into %d files in %s\n",
		sum.Converted, sum.Seen, sum.Failed, sum.Written, time.Since(start).Round(time.Millisecond))
}
