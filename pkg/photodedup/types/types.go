// Package types provides core data types for the photodedup duplicate finder.
// It includes the file descriptor handed from the scanner to the detection
// engine, scan results and errors, along with utility functions for parsing
// and formatting file sizes.
package types

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// Size constants for binary (IEC) units.
const (
	KiB int64 = 1024
	MiB int64 = 1024 * KiB
	GiB int64 = 1024 * MiB
	TiB int64 = 1024 * GiB
)

// FileInfo describes a discovered image file.
// Values are treated as immutable once the scanner has produced them. Two
// descriptors are never considered equal because of Path or ModTime; the
// detection engine compares Size and then content digests only.
type FileInfo struct {
	// Path is the absolute path to the file.
	Path string `json:"path" yaml:"path"`

	// Size is the file size in bytes.
	Size int64 `json:"size" yaml:"size"`

	// ModTime is the last modification time of the file. Informational only.
	ModTime time.Time `json:"mod_time" yaml:"mod_time"`
}

// Name returns the base name of the file (e.g. "cat.jpg").
func (f FileInfo) Name() string {
	return filepath.Base(f.Path)
}

// Ext returns the lowercase extension including the dot (e.g. ".jpg").
func (f FileInfo) Ext() string {
	return strings.ToLower(filepath.Ext(f.Path))
}

// HumanSize returns the file size formatted as a human-readable string.
// It uses binary (IEC) units (KiB, MiB, GiB, TiB).
func (f FileInfo) HumanSize() string {
	return FormatSize(f.Size)
}

// ErrorKind classifies a per-path scan error.
type ErrorKind string

// Scan error kinds.
const (
	ErrorPermission ErrorKind = "permission"
	ErrorNotFound   ErrorKind = "not_found"
	ErrorNotDir     ErrorKind = "not_dir"
	ErrorIO         ErrorKind = "io"
)

// ScanError represents an error encountered during scanning.
// It pairs a file path with the error message for debugging and reporting.
type ScanError struct {
	// Path is the file or directory path where the error occurred.
	Path string `json:"path" yaml:"path"`

	// Kind classifies the failure.
	Kind ErrorKind `json:"kind" yaml:"kind"`

	// Error is the error message describing what went wrong.
	Error string `json:"error" yaml:"error"`
}

// ScanResult contains the aggregated results of a scan operation.
type ScanResult struct {
	// Root is the absolute path that was scanned.
	Root string `json:"root"`

	// Files contains all image files that matched the scan criteria.
	Files []FileInfo `json:"files"`

	// DirsScanned is the total number of directories traversed.
	DirsScanned int64 `json:"dirs_scanned"`

	// FilesScanned is the total number of regular files examined.
	FilesScanned int64 `json:"files_scanned"`

	// TotalSize is the sum of the sizes of Files.
	TotalSize int64 `json:"total_size"`

	// SkippedDirs lists directories pruned by an ignore rule.
	SkippedDirs []string `json:"skipped_dirs,omitempty"`

	// SkippedFiles lists files that were not images, symlinks or special files.
	SkippedFiles []string `json:"skipped_files,omitempty"`

	// Elapsed is the total time taken to complete the scan.
	Elapsed time.Duration `json:"elapsed"`

	// Errors contains any errors encountered during scanning.
	Errors []ScanError `json:"errors,omitempty"`
}

// ScanProgress reports real-time scan progress.
type ScanProgress struct {
	// DirsScanned is the number of directories processed so far.
	DirsScanned int64 `json:"dirs_scanned"`

	// FilesScanned is the number of files examined so far.
	FilesScanned int64 `json:"files_scanned"`

	// Images is the number of supported image files found so far.
	Images int64 `json:"images"`

	// CurrentPath is the path currently being scanned.
	CurrentPath string `json:"current_path"`

	// WalkComplete indicates that directory traversal is finished.
	WalkComplete bool `json:"walk_complete,omitempty"`
}

// sizePattern matches size strings like "100M", "2G", "500K", "1.5GB", etc.
var sizePattern = regexp.MustCompile(`(?i)^\s*([0-9]+(?:\.[0-9]+)?)\s*([KMGT]?(?:i?B)?)\s*$`)

// ErrInvalidSize indicates that the size string could not be parsed.
var ErrInvalidSize = errors.New("invalid size format")

// ErrNegativeSize indicates that a negative size value was provided.
var ErrNegativeSize = errors.New("size cannot be negative")

// ParseSize parses a human-readable size string and returns the size in bytes.
// It supports plain bytes ("1024") and the K, M, G and T suffixes with an
// optional "B" or "iB" (all binary multiples). Decimal values are truncated to
// the nearest byte and surrounding whitespace is ignored.
//
// Returns ErrInvalidSize if the format is not recognized.
// Returns ErrNegativeSize if the value is negative.
func ParseSize(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty string", ErrInvalidSize)
	}

	if strings.HasPrefix(s, "-") {
		return 0, ErrNegativeSize
	}

	matches := sizePattern.FindStringSubmatch(s)
	if matches == nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSize, s)
	}

	value, err := strconv.ParseFloat(matches[1], 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSize, s)
	}

	suffix := strings.ToUpper(matches[2])
	suffix = strings.TrimSuffix(suffix, "IB")
	suffix = strings.TrimSuffix(suffix, "B")

	var multiplier int64
	switch suffix {
	case "":
		multiplier = 1
	case "K":
		multiplier = KiB
	case "M":
		multiplier = MiB
	case "G":
		multiplier = GiB
	case "T":
		multiplier = TiB
	default:
		return 0, fmt.Errorf("%w: unknown suffix %q", ErrInvalidSize, suffix)
	}

	return int64(value * float64(multiplier)), nil
}

// FormatSize converts a size in bytes to a human-readable string.
// It uses binary (IEC) units (KiB, MiB, GiB, TiB).
//
// Examples:
//   - FormatSize(0) returns "0 B"
//   - FormatSize(1024) returns "1.0 KiB"
//   - FormatSize(1536*1024) returns "1.5 MiB"
func FormatSize(bytes int64) string {
	if bytes < 0 {
		bytes = 0
	}
	return humanize.IBytes(uint64(bytes))
}
