package filter

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/gobwas/glob"
)

// DefaultIgnorePrefixes are directory name prefixes that are never descended
// into: hidden folders, underscore-prefixed build or cache folders and
// node_modules.
var DefaultIgnorePrefixes = []string{"_", ".", "node_modules"}

// Filter decides which directories are walked and which files are candidate
// images. A Filter is immutable after New and safe for concurrent use.
type Filter struct {
	// Extensions contains lowercase extensions with a leading dot.
	// An empty list matches every file.
	Extensions []string

	// IgnorePrefixes holds directory name prefixes that are skipped.
	IgnorePrefixes []string

	// Exclude contains glob patterns matched against the full path.
	Exclude []string

	// MinSize is the minimum file size in bytes. Files smaller are excluded.
	MinSize int64

	extSet   map[string]struct{}
	excludes []glob.Glob
}

// Option is a functional option for configuring a Filter.
type Option func(*Filter)

// New creates a Filter. Without options it matches the image type group and
// ignores DefaultIgnorePrefixes. An invalid exclude pattern is an error.
func New(opts ...Option) (*Filter, error) {
	f := &Filter{
		Extensions:     slices.Clone(TypeGroups[DefaultTypeGroup]),
		IgnorePrefixes: slices.Clone(DefaultIgnorePrefixes),
	}

	for _, opt := range opts {
		opt(f)
	}

	f.extSet = make(map[string]struct{}, len(f.Extensions))
	for _, ext := range f.Extensions {
		f.extSet[ext] = struct{}{}
	}

	for _, pattern := range f.Exclude {
		g, err := glob.Compile(pattern, filepath.Separator)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrInvalidPattern, pattern, err)
		}
		f.excludes = append(f.excludes, g)
	}

	return f, nil
}

// MustNew is like New but panics on an invalid pattern.
func MustNew(opts ...Option) *Filter {
	f, err := New(opts...)
	if err != nil {
		panic(err)
	}
	return f
}

// WithExtensions replaces the accepted extensions.
// Extensions are normalized: lowercase and prefixed with "." if missing.
func WithExtensions(extensions ...string) Option {
	return func(f *Filter) {
		f.Extensions = normalizeExtensions(extensions)
	}
}

// WithTypeGroups expands type group names to their extensions and sets them.
// Unknown group names are silently ignored.
func WithTypeGroups(groups ...string) Option {
	return func(f *Filter) {
		var extensions []string
		for _, group := range groups {
			if exts, ok := TypeGroups[strings.ToLower(group)]; ok {
				extensions = append(extensions, exts...)
			}
		}
		f.Extensions = extensions
	}
}

// WithIgnorePrefixes replaces the ignored directory name prefixes.
// Empty entries are dropped since they would match every directory.
func WithIgnorePrefixes(prefixes ...string) Option {
	return func(f *Filter) {
		kept := make([]string, 0, len(prefixes))
		for _, p := range prefixes {
			if p = strings.TrimSpace(p); p != "" {
				kept = append(kept, p)
			}
		}
		f.IgnorePrefixes = kept
	}
}

// WithExclude sets glob patterns for paths to leave out.
// Patterns use the path separator as the segment delimiter, so "*" stays
// within a segment and "**" crosses them.
func WithExclude(patterns ...string) Option {
	return func(f *Filter) {
		f.Exclude = patterns
	}
}

// WithMinSize sets the minimum file size in bytes.
// If minSize < 0, it is set to 0.
func WithMinSize(minSize int64) Option {
	return func(f *Filter) {
		if minSize < 0 {
			minSize = 0
		}
		f.MinSize = minSize
	}
}

// IsIgnoredDir reports whether a directory with the given base name is
// skipped.
func (f *Filter) IsIgnoredDir(name string) bool {
	for _, prefix := range f.IgnorePrefixes {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}

// MatchFile reports whether path has an accepted extension and is not
// excluded by a pattern. The comparison is case-insensitive.
func (f *Filter) MatchFile(path string) bool {
	if len(f.extSet) > 0 {
		if _, ok := f.extSet[strings.ToLower(filepath.Ext(path))]; !ok {
			return false
		}
	}
	return !f.IsExcluded(path)
}

// IsExcluded reports whether path matches an exclude pattern.
func (f *Filter) IsExcluded(path string) bool {
	for _, g := range f.excludes {
		if g.Match(path) {
			return true
		}
	}
	return false
}

// MatchSize reports whether a file of n bytes meets the minimum size.
func (f *Filter) MatchSize(n int64) bool {
	return f.MinSize <= 0 || n >= f.MinSize
}

func normalizeExtensions(extensions []string) []string {
	normalized := make([]string, 0, len(extensions))
	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		normalized = append(normalized, ext)
	}
	return normalized
}
