package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/jamesainslie/photodedup/pkg/photodedup/config"
	"github.com/jamesainslie/photodedup/pkg/photodedup/dedup"
	"github.com/jamesainslie/photodedup/pkg/photodedup/hasher"
	"github.com/jamesainslie/photodedup/pkg/photodedup/manifest"
	"github.com/jamesainslie/photodedup/pkg/photodedup/output"
	"github.com/jamesainslie/photodedup/pkg/photodedup/scanner"
	"github.com/jamesainslie/photodedup/pkg/photodedup/tuner"
	"github.com/jamesainslie/photodedup/pkg/photodedup/types"
)

// runScan is the root command handler: scan, detect, report, record.
func runScan(cmd *cobra.Command, args []string) error {
	cfg := appConfig
	if cfg == nil {
		return errors.New("configuration not loaded")
	}

	scanPath := cfg.DefaultPath
	if len(args) > 0 {
		scanPath = args[0]
	}
	if scanPath == "" {
		scanPath = config.DefaultPath
	}
	root, err := config.ExpandPath(scanPath)
	if err != nil {
		return fmt.Errorf("failed to expand path: %w", err)
	}

	formatter, err := selectFormatter(cfg.Output, templateStr)
	if err != nil {
		return err
	}

	policy, err := dedup.ParsePolicy(cfg.Policy)
	if err != nil {
		return err
	}

	sortField, descending, err := sortOrder(cfg.Sort, reverse)
	if err != nil {
		return err
	}

	f, err := buildFilter(cfg, typeGroups)
	if err != nil {
		return fmt.Errorf("failed to build filter: %w", err)
	}

	partialSize, err := cfg.PartialSizeBytes()
	if err != nil {
		return err
	}
	chunkSize, err := cfg.ChunkSizeBytes()
	if err != nil {
		return err
	}

	workers := tunedWorkers(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	progress := newProgressLine(!quiet && isatty.IsTerminal(os.Stderr.Fd()))

	s, err := scanner.New(scanner.Options{
		Root:       root,
		Filter:     f,
		Workers:    workers.ScanWorkers,
		OnProgress: progress.scan,
	})
	if err != nil {
		return err
	}

	scanResult, err := s.Scan(ctx)
	progress.clear()
	if err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			printInfo("Scan cancelled")
			return nil
		}
		return err
	}
	printVerbose("Scanned %d directories, %d images in %v",
		scanResult.DirsScanned, len(scanResult.Files), scanResult.Elapsed)

	h := hasher.New(hasher.Options{
		PartialSize: int(partialSize),
		ChunkSize:   int(chunkSize),
	})
	grouper := dedup.NewGrouperFromHasher(h,
		dedup.WithWorkers(workers.HashWorkers),
		dedup.WithProgress(progress.hash),
	)

	det, err := dedup.NewDetector(grouper, policy).Detect(ctx, scanResult.Files)
	progress.clear()
	if err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			printInfo("Scan cancelled")
			return nil
		}
		return fmt.Errorf("duplicate detection failed: %w", err)
	}

	result := output.NewResult(scanResult, det, output.Options{
		Policy:     policy.String(),
		SortBy:     sortField,
		Ascending:  !descending,
		Limit:      cfg.Limit,
		ShowImages: showImages,
	})

	var buf bytes.Buffer
	if err := formatter.Format(&buf, result); err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}
	if _, err := cmd.OutOrStdout().Write(buf.Bytes()); err != nil {
		return err
	}

	if cfg.Manifest.Enabled {
		recordRun(cfg, result)
	}
	return nil
}

// selectFormatter resolves an output format name. The template format takes
// its template from --template.
func selectFormatter(name, tmpl string) (output.Formatter, error) {
	if name == "" {
		name = config.DefaultOutput
	}
	if name == "template" {
		if tmpl == "" {
			return nil, errors.New("--template is required when using -o template")
		}
		return output.NewTemplateFormatter(tmpl), nil
	}

	formatter, err := output.Get(name)
	if err != nil {
		return nil, fmt.Errorf("unknown output format %q: available formats are %v", name, output.Available())
	}
	return formatter, nil
}

// tunedWorkers sizes both stages from the host, honoring configured counts.
func tunedWorkers(cfg *config.Config) tuner.OptimalConfig {
	resources, err := tuner.Detect()
	if err != nil {
		printVerbose("Failed to detect system resources, using defaults: %v", err)
		resources = tuner.SystemResources{
			CPUCores:     4,
			TotalRAM:     8 * types.GiB,
			AvailableRAM: 4 * types.GiB,
		}
	}

	workers := tuner.CalculateWithOverrides(resources, cfg.Workers.Scan, cfg.Workers.Hash)
	printVerbose("System: %d CPUs, %s RAM, %s available",
		resources.CPUCores,
		types.FormatSize(resources.TotalRAM),
		types.FormatSize(resources.AvailableRAM))
	printVerbose("Workers: %d scan, %d hash", workers.ScanWorkers, workers.HashWorkers)
	return workers
}

// recordRun appends the run to the history. Failures never fail the scan.
func recordRun(cfg *config.Config, result *output.Result) {
	m, err := manifest.New(cfg.Manifest.Path)
	if err != nil {
		cliLogger.Warn("manifest disabled", "err", err)
		return
	}
	if err := m.EnsureDir(); err != nil {
		cliLogger.Warn("failed to create manifest directory", "dir", m.Dir(), "err", err)
		return
	}

	entry, err := m.Record(result)
	if err != nil {
		cliLogger.Warn("failed to record run", "err", err)
		return
	}
	printVerbose("Recorded run %s", entry.ID)

	removed, err := m.Cleanup(cfg.Manifest.RetentionDays)
	if err != nil {
		cliLogger.Warn("failed to clean up history", "err", err)
		return
	}
	if removed > 0 {
		printVerbose("Removed %d expired history entries", removed)
	}
}

// progressLine rewrites a single status line on stderr.
type progressLine struct {
	enabled bool
}

func newProgressLine(enabled bool) *progressLine {
	return &progressLine{enabled: enabled}
}

func (p *progressLine) scan(sp types.ScanProgress) {
	if !p.enabled {
		return
	}
	fmt.Fprintf(os.Stderr, "\r\033[KScanning: %s dirs, %s files, %s images",
		humanize.Comma(sp.DirsScanned),
		humanize.Comma(sp.FilesScanned),
		humanize.Comma(sp.Images))
}

func (p *progressLine) hash(hp dedup.Progress) {
	if !p.enabled {
		return
	}
	fmt.Fprintf(os.Stderr, "\r\033[KHashing (%s): %s/%s",
		hp.Method, humanize.Comma(hp.Hashed+hp.Failed), humanize.Comma(hp.Total))
}

func (p *progressLine) clear() {
	if p.enabled {
		fmt.Fprint(os.Stderr, "\r\033[K")
	}
}
