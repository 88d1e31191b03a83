package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jamesainslie/photodedup/pkg/photodedup/config"
	"github.com/jamesainslie/photodedup/pkg/photodedup/manifest"
	"github.com/jamesainslie/photodedup/pkg/photodedup/types"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View previous runs",
	Long: `View the history of duplicate scans.

Every completed scan is recorded with its summary and the paths of each
duplicate group. Entries older than manifest.retention_days are removed
after each run or with 'photodedup history clean'.`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show the groups of a recorded run",
	Long:  `Display a recorded run. The id may be any unique prefix.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historyCleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove expired history entries",
	Long:  `Remove history entries older than the retention period.`,
	Args:  cobra.NoArgs,
	RunE:  runHistoryClean,
}

var historyLimit int

// historyShowPaths caps the paths listed per group by 'history show'.
const historyShowPaths = 50

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "l", 20, "maximum number of entries to show (0=all)")

	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyCleanCmd)
	rootCmd.AddCommand(historyCmd)
}

// getManifest returns a manifest for the configured history directory.
func getManifest() (*manifest.Manifest, error) {
	dir := ""
	if appConfig != nil {
		dir = appConfig.Manifest.Path
	}
	if dir == "" {
		d, err := config.ManifestDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get manifest directory: %w", err)
		}
		dir = d
	}
	return manifest.New(dir)
}

// runHistory lists recent runs, newest first.
func runHistory(cmd *cobra.Command, _ []string) error {
	m, err := getManifest()
	if err != nil {
		return fmt.Errorf("failed to initialize manifest: %w", err)
	}

	entries, err := m.List(historyLimit)
	if err != nil {
		return fmt.Errorf("failed to list history: %w", err)
	}

	w := cmd.OutOrStdout()
	if len(entries) == 0 {
		fmt.Fprintln(w, "No history entries found.")
		fmt.Fprintln(w, "Run 'photodedup [path]' to scan for duplicate images.")
		return nil
	}

	writeHistoryTable(w, entries)
	fmt.Fprintln(w, "\nUse 'photodedup history show <id>' for details on a specific run.")
	return nil
}

func writeHistoryTable(w io.Writer, entries []manifest.Entry) {
	fmt.Fprintf(w, "%-8s  %-19s  %-6s  %-10s  %s\n", "ID", "TIME", "GROUPS", "WASTED", "ROOT")
	fmt.Fprintln(w, strings.Repeat("-", 80))
	for _, e := range entries {
		fmt.Fprintf(w, "%-8s  %-19s  %-6d  %-10s  %s\n",
			shortID(e.ID),
			e.Timestamp.Local().Format("2006-01-02 15:04:05"),
			e.Summary.Groups,
			types.FormatSize(e.Summary.WastedSpace),
			e.Root,
		)
	}
}

// runHistoryShow displays one run and its groups.
func runHistoryShow(cmd *cobra.Command, args []string) error {
	m, err := getManifest()
	if err != nil {
		return fmt.Errorf("failed to initialize manifest: %w", err)
	}

	entry, err := m.Get(args[0])
	if err != nil {
		return fmt.Errorf("failed to get entry: %w", err)
	}

	writeHistoryEntry(cmd.OutOrStdout(), entry)
	return nil
}

func writeHistoryEntry(w io.Writer, e *manifest.Entry) {
	fmt.Fprintf(w, "ID:         %s\n", e.ID)
	fmt.Fprintf(w, "Timestamp:  %s\n", e.Timestamp.Local().Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(w, "Root:       %s\n", e.Root)
	fmt.Fprintf(w, "Policy:     %s\n", e.Policy)
	if e.Method != "" {
		fmt.Fprintf(w, "Method:     %s\n", e.Method)
	}
	fmt.Fprintf(w, "Images:     %d\n", e.Summary.Images)
	fmt.Fprintf(w, "Groups:     %d\n", e.Summary.Groups)
	fmt.Fprintf(w, "Duplicates: %d\n", e.Summary.ExtraFiles)
	fmt.Fprintf(w, "Wasted:     %s\n", types.FormatSize(e.Summary.WastedSpace))
	fmt.Fprintf(w, "Errors:     %d\n", e.Summary.Errors)

	for i, g := range e.Groups {
		fmt.Fprintf(w, "\nGroup %d - %d identical files of %s\n", i+1, len(g.Paths), types.FormatSize(g.Size))
		shown := min(len(g.Paths), historyShowPaths)
		for _, p := range g.Paths[:shown] {
			fmt.Fprintf(w, "  %s\n", p)
		}
		if hidden := len(g.Paths) - shown; hidden > 0 {
			fmt.Fprintf(w, "  ... and %d more\n", hidden)
		}
	}
}

// runHistoryClean removes entries older than the retention period.
func runHistoryClean(cmd *cobra.Command, _ []string) error {
	m, err := getManifest()
	if err != nil {
		return fmt.Errorf("failed to initialize manifest: %w", err)
	}

	retentionDays := config.DefaultRetentionDays
	if appConfig != nil && appConfig.Manifest.RetentionDays > 0 {
		retentionDays = appConfig.Manifest.RetentionDays
	}

	removed, err := m.Cleanup(retentionDays)
	if err != nil {
		return fmt.Errorf("failed to clean history: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Removed %d entries older than %d days.\n", removed, retentionDays)
	return nil
}

// shortID returns the leading characters of an entry id, enough for
// 'history show' in practice.
func shortID(id string) string {
	const n = 8
	if len(id) <= n {
		return id
	}
	return id[:n]
}
