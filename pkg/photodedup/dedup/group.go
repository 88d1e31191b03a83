// Package dedup is the duplicate detection engine. It narrows a flat list of
// file descriptors down to groups of byte-identical files: files are first
// bucketed by exact size, and only members of a shared size bucket are hashed
// and grouped by digest.
package dedup

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jamesainslie/photodedup/pkg/photodedup/types"
)

// Method identifies the hashing strategy that produced a group.
type Method int

const (
	// MethodPartial digests only a leading prefix of each file. Groups
	// produced this way are candidates, not proven duplicates.
	MethodPartial Method = iota

	// MethodExact digests the entire content of each file.
	MethodExact
)

const (
	methodPartial = "partial"
	methodExact   = "exact"
)

// ErrInvalidMethod indicates that a method name could not be parsed.
var ErrInvalidMethod = errors.New("invalid hash method")

// String returns "partial" or "exact".
func (m Method) String() string {
	switch m {
	case MethodPartial:
		return methodPartial
	case MethodExact:
		return methodExact
	default:
		return fmt.Sprintf("method(%d)", int(m))
	}
}

// ParseMethod parses "partial", "exact" or its alias "full".
func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case methodPartial:
		return MethodPartial, nil
	case methodExact, "full":
		return MethodExact, nil
	default:
		return MethodExact, fmt.Errorf("%w: %q", ErrInvalidMethod, s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (m Method) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Method) UnmarshalText(text []byte) error {
	parsed, err := ParseMethod(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Errors returned by NewDuplicateGroup.
var (
	ErrGroupTooSmall = errors.New("duplicate group needs at least two files")
	ErrMixedSizes    = errors.New("duplicate group members differ in size")
)

// DuplicateGroup is a set of two or more files sharing a content digest.
// All members have the same size. Groups are not modified after
// construction.
type DuplicateGroup struct {
	// Digest is the hex digest shared by every member.
	Digest string `json:"digest" yaml:"digest"`

	// Files are the members in the order they were discovered.
	Files []types.FileInfo `json:"files" yaml:"files"`

	// Method is the hashing strategy that produced the digest.
	Method Method `json:"method" yaml:"method"`
}

// NewDuplicateGroup validates and builds a group. The files slice is copied.
func NewDuplicateGroup(digest string, files []types.FileInfo, method Method) (DuplicateGroup, error) {
	if len(files) < 2 {
		return DuplicateGroup{}, fmt.Errorf("%w: got %d", ErrGroupTooSmall, len(files))
	}
	size := files[0].Size
	for _, f := range files[1:] {
		if f.Size != size {
			return DuplicateGroup{}, fmt.Errorf("%w: %s is %d bytes, expected %d", ErrMixedSizes, f.Path, f.Size, size)
		}
	}

	members := make([]types.FileInfo, len(files))
	copy(members, files)

	return DuplicateGroup{
		Digest: digest,
		Files:  members,
		Method: method,
	}, nil
}

// Size returns the byte size shared by every member.
func (g DuplicateGroup) Size() int64 {
	if len(g.Files) == 0 {
		return 0
	}
	return g.Files[0].Size
}

// ExtraFiles returns the number of members beyond the first copy.
func (g DuplicateGroup) ExtraFiles() int {
	if len(g.Files) == 0 {
		return 0
	}
	return len(g.Files) - 1
}

// WastedSpace returns the total bytes occupied by the group, the kept copy
// included: member size times member count.
func (g DuplicateGroup) WastedSpace() int64 {
	return g.Size() * int64(len(g.Files))
}

// Paths returns the member paths in order.
func (g DuplicateGroup) Paths() []string {
	paths := make([]string, len(g.Files))
	for i, f := range g.Files {
		paths[i] = f.Path
	}
	return paths
}

// HashError records a file that could not be hashed. The file is left out of
// grouping; the run continues.
type HashError struct {
	Path string `json:"path" yaml:"path"`
	Err  error  `json:"-" yaml:"-"`
}

func (e HashError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e HashError) Unwrap() error {
	return e.Err
}
