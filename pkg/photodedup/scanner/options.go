// Package scanner walks a directory tree with fastwalk and yields the image
// files that are candidates for duplicate detection, together with the
// folders and files it skipped and the per-path errors it recovered from.
package scanner

import (
	"runtime"

	"github.com/jamesainslie/photodedup/pkg/photodedup/filter"
	"github.com/jamesainslie/photodedup/pkg/photodedup/types"
)

// DefaultRoot is scanned when Options.Root is empty.
const DefaultRoot = "."

// Options configures the scanner behavior.
type Options struct {
	// Root is the starting directory for the scan.
	Root string

	// Filter selects ignored directories and candidate files.
	// If nil, filter.New() defaults are used.
	Filter *filter.Filter

	// Workers is the number of concurrent directory readers.
	Workers int

	// OnProgress is called periodically with scan progress updates.
	// It must be safe to call from multiple goroutines.
	OnProgress func(types.ScanProgress)
}

// DefaultOptions returns options with sensible defaults for most systems.
func DefaultOptions() Options {
	return Options{
		Root:    DefaultRoot,
		Filter:  filter.MustNew(),
		Workers: defaultWorkers(),
	}
}

// Validate applies defaults for empty or invalid values.
func (o *Options) Validate() error {
	if o.Root == "" {
		o.Root = DefaultRoot
	}
	if o.Workers < 1 {
		o.Workers = defaultWorkers()
	}
	if o.Filter == nil {
		f, err := filter.New()
		if err != nil {
			return err
		}
		o.Filter = f
	}
	return nil
}

func defaultWorkers() int {
	n := runtime.NumCPU()
	if n < 4 {
		return 4
	}
	return n
}
