// Package manifest keeps a history of photodedup runs on the filesystem.
//
// Each completed run is stored as one JSON file holding the run summary and
// the paths of every duplicate group. Entries are write-once; digests are
// kept for reference and never read back for detection.
package manifest

import "time"

// Entry represents a single recorded run.
type Entry struct {
	ID        string        `json:"id"`
	Timestamp time.Time     `json:"timestamp"`
	Root      string        `json:"root"`
	Policy    string        `json:"policy"`
	Method    string        `json:"method,omitempty"`
	Groups    []GroupRecord `json:"groups"`
	Summary   Summary       `json:"summary"`
}

// GroupRecord is the stored form of a duplicate group.
type GroupRecord struct {
	Digest string   `json:"digest"`
	Size   int64    `json:"size"`
	Paths  []string `json:"paths"`
}

// Summary contains run totals.
type Summary struct {
	Images      int   `json:"images"`
	Groups      int   `json:"groups"`
	ExtraFiles  int   `json:"extra_files"`
	WastedSpace int64 `json:"wasted_space"`
	Errors      int   `json:"errors"`
}
