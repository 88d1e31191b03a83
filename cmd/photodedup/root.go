package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jamesainslie/photodedup/pkg/photodedup/config"
	"github.com/jamesainslie/photodedup/pkg/photodedup/dedup"
	"github.com/jamesainslie/photodedup/pkg/photodedup/output"
)

var (
	cfgFile string
	quiet   bool
	verbose bool

	// appConfig is loaded by initializeLogging before any command runs.
	appConfig *config.Config

	rootCmd = &cobra.Command{
		Use:   "photodedup [path]",
		Short: "Find duplicate images by content",
		Long: `Photodedup walks a folder tree, collects image files and reports groups
of files with identical content.

Files are first grouped by size; only files sharing a size are hashed.
The default policy hashes a short prefix first and confirms survivors
with a full-content hash.

Examples:
  photodedup                        # Scan the current directory
  photodedup ~/Pictures             # Scan a specific directory
  photodedup --policy exact .       # Hash full contents only
  photodedup --limit 0 -o plain .   # Show every group as plain text
  photodedup -o json . | jq         # Machine-readable output
  photodedup history                # List previous runs`,
		Args:          cobra.MaximumNArgs(1),
		RunE:          runScan,
		SilenceErrors: true,
		SilenceUsage:  true,
	}
)

// flagBindings maps config keys to the flags that override them.
var flagBindings = map[string]string{
	"policy":               "policy",
	"hash.partial_size":    "partial-size",
	"hash.chunk_size":      "chunk-size",
	"workers.hash":         "workers",
	"workers.scan":         "scan-workers",
	"scan.extensions":      "ext",
	"scan.ignore_prefixes": "ignore",
	"scan.exclude":         "exclude",
	"scan.min_size":        "min-size",
	"output":               "output",
	"limit":                "limit",
	"sort":                 "sort",
	"manifest.enabled":     "manifest",
}

func init() {
	// Assigned here rather than in the literal to avoid an initialization
	// cycle: initializeLogging reads rootCmd's flags.
	rootCmd.PersistentPreRunE = initializeLogging

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default: ~/.config/photodedup/config.yaml)")
	flags.BoolVarP(&quiet, "quiet", "q", false, "minimal output")
	flags.BoolVarP(&verbose, "verbose", "v", false, "debug output")

	scanFlags := rootCmd.Flags()
	scanFlags.String("policy", config.DefaultPolicy,
		"detection policy ("+strings.Join(dedup.PolicyNames(), ", ")+")")
	scanFlags.String("partial-size", config.DefaultPartialSize, "bytes hashed by the partial strategy (e.g. 4KiB)")
	scanFlags.String("chunk-size", config.DefaultChunkSize, "read buffer of the full strategy (e.g. 8KiB)")
	scanFlags.IntP("workers", "w", 0, "concurrent hash operations (0=auto)")
	scanFlags.Int("scan-workers", 0, "concurrent directory readers (0=auto)")
	scanFlags.StringSlice("ext", nil, "image extensions to scan (default: common image formats)")
	scanFlags.StringVar(&typeGroups, "type", "", "extension groups to scan (image, raw, web, all)")
	scanFlags.StringSlice("ignore", nil, "ignored directory name prefixes (default: _ . node_modules)")
	scanFlags.StringSliceP("exclude", "e", nil, "glob patterns of files to leave out")
	scanFlags.String("min-size", config.DefaultMinSize, "ignore images smaller than this size")
	scanFlags.StringP("output", "o", config.DefaultOutput,
		"output format ("+strings.Join(output.Available(), ", ")+")")
	scanFlags.StringVar(&templateStr, "template", "", "Go template used with -o template")
	scanFlags.IntP("limit", "l", config.DefaultLimit, "groups shown by text formats (0=all)")
	scanFlags.String("sort", config.DefaultSort, "group order (size, count, path)")
	scanFlags.BoolVarP(&reverse, "reverse", "r", false, "reverse the natural sort order")
	scanFlags.BoolVar(&showImages, "show-images", false, "list every scanned image")
	scanFlags.Bool("manifest", true, "record the run in the history")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// printVerbose prints a message if verbose mode is enabled.
func printVerbose(format string, args ...interface{}) {
	if verbose && !quiet {
		fmt.Fprintf(os.Stderr, "[DEBUG] "+format+"\n", args...)
	}
}

// printInfo prints a message to stderr if quiet mode is not enabled.
func printInfo(format string, args ...interface{}) {
	if !quiet {
		fmt.Fprintf(os.Stderr, format+"\n", args...)
	}
}

// printError prints an error message to stderr.
func printError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
}
