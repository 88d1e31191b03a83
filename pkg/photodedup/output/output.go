// Package output provides formatters for photodedup reports in various
// formats (pretty, plain, json, jsonl, yaml, csv, ...).
//
// The package uses a registry pattern to allow registration of multiple
// formatter implementations that can be selected at runtime.
//
// Basic usage:
//
//	result := output.NewResult(scan, detection, output.Options{Limit: 5})
//	formatter, err := output.Get("pretty")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	var buf bytes.Buffer
//	if err := formatter.Format(&buf, result); err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Print(buf.String())
package output

import (
	"bytes"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jamesainslie/photodedup/pkg/photodedup/dedup"
	"github.com/jamesainslie/photodedup/pkg/photodedup/filter"
	"github.com/jamesainslie/photodedup/pkg/photodedup/logging"
	"github.com/jamesainslie/photodedup/pkg/photodedup/scanner"
	"github.com/jamesainslie/photodedup/pkg/photodedup/types"
)

var logger = logging.Get("output")

// Long list sections are shortened: a section with at least
// SectionTruncateAt entries shows only the first SectionShown.
const (
	SectionTruncateAt = 20
	SectionShown      = 10
)

// File is one member of a duplicate group.
type File struct {
	Path      string    `json:"path" yaml:"path"`
	Size      int64     `json:"size" yaml:"size"`
	SizeHuman string    `json:"size_human" yaml:"size_human"`
	ModTime   time.Time `json:"mod_time" yaml:"mod_time"`
}

// Group is a duplicate group prepared for display.
type Group struct {
	// Index is the 1-based position of the group in the sorted report.
	Index       int    `json:"index" yaml:"index"`
	Digest      string `json:"digest" yaml:"digest"`
	Method      string `json:"method" yaml:"method"`
	Size        int64  `json:"size" yaml:"size"`
	SizeHuman   string `json:"size_human" yaml:"size_human"`
	Count       int    `json:"count" yaml:"count"`
	ExtraFiles  int    `json:"extra_files" yaml:"extra_files"`
	WastedSpace int64  `json:"wasted_space" yaml:"wasted_space"`
	WastedHuman string `json:"wasted_human" yaml:"wasted_human"`
	Files       []File `json:"files" yaml:"files"`
}

// ErrorEntry is a recoverable per-path failure from scanning or hashing.
type ErrorEntry struct {
	Stage   string `json:"stage" yaml:"stage"`
	Path    string `json:"path" yaml:"path"`
	Kind    string `json:"kind,omitempty" yaml:"kind,omitempty"`
	Message string `json:"message" yaml:"message"`
}

// Stats summarizes a run.
type Stats struct {
	DirsScanned  int64         `json:"dirs_scanned" yaml:"dirs_scanned"`
	FilesScanned int64         `json:"files_scanned" yaml:"files_scanned"`
	Images       int           `json:"images" yaml:"images"`
	Candidates   int           `json:"candidates" yaml:"candidates"`
	FilesHashed  int64         `json:"files_hashed" yaml:"files_hashed"`
	Groups       int           `json:"groups" yaml:"groups"`
	ExtraFiles   int           `json:"extra_files" yaml:"extra_files"`
	WastedSpace  int64         `json:"wasted_space" yaml:"wasted_space"`
	ScanDuration time.Duration `json:"scan_duration" yaml:"scan_duration"`
	HashDuration time.Duration `json:"hash_duration" yaml:"hash_duration"`
}

// Result contains the complete report data for formatting.
type Result struct {
	// Source is the root path that was scanned.
	Source string

	// Policy is the detection policy used.
	Policy string

	// Method is the hash method behind the reported groups.
	Method string

	// Groups holds every duplicate group in report order.
	Groups []Group

	// Limit caps the groups shown by human-readable formatters.
	// Zero shows all of them.
	Limit int

	Stats Stats

	Errors       []ErrorEntry
	SkippedDirs  []string
	SkippedFiles []string

	// Images lists every scanned image; only rendered when ShowImages is set.
	Images     []File
	ShowImages bool

	// Warnings contains advisory messages for the user.
	Warnings []string
}

// Options controls how NewResult builds a Result.
type Options struct {
	Policy     string
	SortBy     filter.SortField
	Ascending  bool
	Limit      int
	ShowImages bool
}

// NewResult combines a scan and a detection pass into a report. Groups are
// sorted by opts.SortBy, descending unless opts.Ascending is set.
func NewResult(scan *types.ScanResult, det *dedup.Result, opts Options) *Result {
	r := &Result{
		Policy:     opts.Policy,
		Limit:      opts.Limit,
		ShowImages: opts.ShowImages,
		Groups:     []Group{},
	}
	if r.Limit < 0 {
		r.Limit = 0
	}

	if scan != nil {
		r.Source = scan.Root
		r.Stats.DirsScanned = scan.DirsScanned
		r.Stats.FilesScanned = scan.FilesScanned
		r.Stats.Images = len(scan.Files)
		r.Stats.ScanDuration = scan.Elapsed
		r.SkippedDirs = scan.SkippedDirs
		r.SkippedFiles = scan.SkippedFiles
		for _, e := range scan.Errors {
			r.Errors = append(r.Errors, ErrorEntry{Stage: "scan", Path: e.Path, Kind: string(e.Kind), Message: e.Error})
		}
		if opts.ShowImages {
			for _, f := range scan.Files {
				r.Images = append(r.Images, newFile(f))
			}
		}
	}

	if det != nil {
		r.Method = det.Method.String()
		r.Stats.Candidates = det.Candidates
		r.Stats.FilesHashed = det.FilesHashed
		r.Stats.HashDuration = det.Elapsed
		r.Stats.Groups = len(det.Groups)
		r.Stats.ExtraFiles = det.ExtraFiles()
		r.Stats.WastedSpace = det.WastedSpace()

		for i, g := range filter.Sort(det.Groups, opts.SortBy, !opts.Ascending) {
			r.Groups = append(r.Groups, newGroup(i+1, g))
		}
		for _, e := range det.Errors {
			r.Errors = append(r.Errors, newHashErrorEntry(e))
		}
		if det.Method == dedup.MethodPartial && len(det.Groups) > 0 {
			r.Warnings = append(r.Warnings, "groups are based on a partial hash; members may differ after the first bytes")
		}
	}

	logger.Debug("report built", "groups", len(r.Groups), "errors", len(r.Errors), "limit", r.Limit)
	return r
}

func newFile(f types.FileInfo) File {
	return File{Path: f.Path, Size: f.Size, SizeHuman: types.FormatSize(f.Size), ModTime: f.ModTime}
}

func newGroup(index int, g dedup.DuplicateGroup) Group {
	files := make([]File, len(g.Files))
	for i, f := range g.Files {
		files[i] = newFile(f)
	}
	return Group{
		Index:       index,
		Digest:      g.Digest,
		Method:      g.Method.String(),
		Size:        g.Size(),
		SizeHuman:   types.FormatSize(g.Size()),
		Count:       len(g.Files),
		ExtraFiles:  g.ExtraFiles(),
		WastedSpace: g.WastedSpace(),
		WastedHuman: types.FormatSize(g.WastedSpace()),
		Files:       files,
	}
}

func newHashErrorEntry(e dedup.HashError) ErrorEntry {
	entry := ErrorEntry{Stage: "hash", Path: e.Path, Kind: string(types.ErrorIO), Message: "unknown error"}
	if e.Err != nil {
		entry.Kind = string(scanner.ClassifyError(e.Err))
		entry.Message = e.Err.Error()
	}
	return entry
}

// VisibleGroups returns the groups a human-readable report shows.
func (r *Result) VisibleGroups() []Group {
	if r.Limit <= 0 || len(r.Groups) <= r.Limit {
		return r.Groups
	}
	return r.Groups[:r.Limit]
}

// HiddenGroups returns how many groups VisibleGroups leaves out.
func (r *Result) HiddenGroups() int {
	return len(r.Groups) - len(r.VisibleGroups())
}

// Truncate applies the section display rule to a list of n entries and
// returns how many to show.
func Truncate(n int) int {
	if n >= SectionTruncateAt {
		return SectionShown
	}
	return n
}

// moreGroupsLine renders the "... N more groups" trailer.
func moreGroupsLine(hidden int) string {
	if hidden == 1 {
		return "... 1 more group"
	}
	return fmt.Sprintf("... %d more groups", hidden)
}

// Formatter is the interface that all output formatters must implement.
type Formatter interface {
	// Format writes the formatted output to the buffer.
	// It returns an error if formatting fails.
	Format(w *bytes.Buffer, r *Result) error
}

// FormatterFactory is a function that creates a new Formatter instance.
type FormatterFactory func() Formatter

// Registry manages formatter registration and lookup.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]FormatterFactory
}

// NewRegistry creates a new formatter registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]FormatterFactory),
	}
}

// Register adds a formatter factory to the registry.
// It will replace any existing formatter with the same name.
func (r *Registry) Register(name string, factory FormatterFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// Get returns a new formatter instance by name.
// It returns an error if the formatter is not found.
func (r *Registry) Get(name string) (Formatter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("unknown formatter: %s", name)
	}
	return factory(), nil
}

// Available returns a sorted list of all registered formatter names.
func (r *Registry) Available() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry is the global formatter registry.
var DefaultRegistry = NewRegistry()

// Register adds a formatter factory to the default registry.
func Register(name string, factory FormatterFactory) {
	DefaultRegistry.Register(name, factory)
}

// Get returns a new formatter instance from the default registry.
func Get(name string) (Formatter, error) {
	return DefaultRegistry.Get(name)
}

// Available returns all formatter names from the default registry.
func Available() []string {
	return DefaultRegistry.Available()
}
