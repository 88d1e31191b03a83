// Package filter selects the directories and files a scan visits and orders
// duplicate groups for reporting. It supports extension sets, named type
// groups, ignored directory prefixes, exclude patterns and a minimum size.
package filter

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/jamesainslie/photodedup/pkg/photodedup/dedup"
)

// ErrInvalidPattern indicates that an exclude glob could not be compiled.
var ErrInvalidPattern = errors.New("invalid exclude pattern")

// DefaultTypeGroup is the group used when no extensions are configured.
const DefaultTypeGroup = "image"

// TypeGroups maps file type group names to their associated file extensions.
var TypeGroups = map[string][]string{
	"image": {
		".jpg", ".jpeg", ".png", ".gif", ".webp", ".heic", ".tiff", ".tif", ".bmp", ".svg",
	},
	"raw": {
		".raw", ".dng", ".cr2", ".cr3", ".nef", ".arw", ".orf", ".rw2", ".raf", ".srw",
	},
	"web": {
		".jpg", ".jpeg", ".png", ".gif", ".webp", ".svg", ".avif",
	},
	"all": {
		".jpg", ".jpeg", ".png", ".gif", ".webp", ".heic", ".heif", ".tiff", ".tif", ".bmp", ".svg",
		".avif", ".ico", ".raw", ".dng", ".cr2", ".cr3", ".nef", ".arw", ".orf", ".rw2", ".raf", ".srw",
	},
}

// TypeGroupNames returns the known group names in sorted order.
func TypeGroupNames() []string {
	names := make([]string, 0, len(TypeGroups))
	for name := range TypeGroups {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// SortField specifies how duplicate groups are ordered.
type SortField int

const (
	// SortSize sorts groups by wasted space.
	SortSize SortField = iota
	// SortCount sorts groups by number of members.
	SortCount
	// SortPath sorts groups by the path of their first member.
	SortPath
)

// Sort field string constants.
const (
	sortFieldSize  = "size"
	sortFieldCount = "count"
	sortFieldPath  = "path"
)

// String returns the string representation of the sort field.
func (s SortField) String() string {
	switch s {
	case SortSize:
		return sortFieldSize
	case SortCount:
		return sortFieldCount
	case SortPath:
		return sortFieldPath
	default:
		return sortFieldSize
	}
}

// ErrInvalidSortField indicates that the sort field string could not be parsed.
var ErrInvalidSortField = errors.New("invalid sort field")

// ParseSortField parses a string into a SortField.
// Valid values are "size", "count", and "path" (case-insensitive).
func ParseSortField(s string) (SortField, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case sortFieldSize:
		return SortSize, nil
	case sortFieldCount:
		return SortCount, nil
	case sortFieldPath:
		return SortPath, nil
	default:
		return SortSize, fmt.Errorf("%w: %q", ErrInvalidSortField, s)
	}
}

// Sort returns a sorted copy of groups. Ties fall back to the first member
// path so the order is stable across runs. The input is not modified.
func Sort(groups []dedup.DuplicateGroup, field SortField, descending bool) []dedup.DuplicateGroup {
	sorted := slices.Clone(groups)
	if sorted == nil {
		return []dedup.DuplicateGroup{}
	}

	slices.SortStableFunc(sorted, func(a, b dedup.DuplicateGroup) int {
		var result int
		switch field {
		case SortCount:
			result = cmp.Compare(len(a.Files), len(b.Files))
		case SortPath:
			result = cmp.Compare(firstPath(a), firstPath(b))
		default:
			result = cmp.Compare(a.WastedSpace(), b.WastedSpace())
		}
		if descending {
			result = -result
		}
		if result == 0 {
			return cmp.Compare(firstPath(a), firstPath(b))
		}
		return result
	})

	return sorted
}

func firstPath(g dedup.DuplicateGroup) string {
	if len(g.Files) == 0 {
		return ""
	}
	return g.Files[0].Path
}
