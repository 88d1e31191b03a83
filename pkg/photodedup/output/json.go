package output

import (
	"bytes"
	"encoding/json"
	"time"
)

// document is the full machine-readable report shared by the JSON and YAML
// formatters. Machine formats carry every group regardless of Result.Limit.
type document struct {
	Groups       []Group      `json:"groups" yaml:"groups"`
	Errors       []ErrorEntry `json:"errors" yaml:"errors"`
	SkippedDirs  []string     `json:"skipped_dirs" yaml:"skipped_dirs"`
	SkippedFiles []string     `json:"skipped_files" yaml:"skipped_files"`
	Images       []File       `json:"images,omitempty" yaml:"images,omitempty"`
	Stats        docStats     `json:"stats" yaml:"stats"`
	Meta         docMeta      `json:"meta" yaml:"meta"`
}

// docStats mirrors Stats with durations rendered as strings.
type docStats struct {
	DirsScanned  int64  `json:"dirs_scanned" yaml:"dirs_scanned"`
	FilesScanned int64  `json:"files_scanned" yaml:"files_scanned"`
	Images       int    `json:"images" yaml:"images"`
	Candidates   int    `json:"candidates" yaml:"candidates"`
	FilesHashed  int64  `json:"files_hashed" yaml:"files_hashed"`
	Groups       int    `json:"groups" yaml:"groups"`
	ExtraFiles   int    `json:"extra_files" yaml:"extra_files"`
	WastedSpace  int64  `json:"wasted_space" yaml:"wasted_space"`
	ScanDuration string `json:"scan_duration,omitempty" yaml:"scan_duration,omitempty"`
	HashDuration string `json:"hash_duration,omitempty" yaml:"hash_duration,omitempty"`
}

// docMeta describes how the report was produced.
type docMeta struct {
	Source   string   `json:"source" yaml:"source"`
	Policy   string   `json:"policy" yaml:"policy"`
	Method   string   `json:"method,omitempty" yaml:"method,omitempty"`
	Warnings []string `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// buildDocument converts a Result to the machine-readable structure.
// Nil slices become empty ones so consumers always see arrays.
func buildDocument(r *Result) document {
	doc := document{
		Groups:       nonNil(r.Groups),
		Errors:       nonNil(r.Errors),
		SkippedDirs:  nonNil(r.SkippedDirs),
		SkippedFiles: nonNil(r.SkippedFiles),
		Stats: docStats{
			DirsScanned:  r.Stats.DirsScanned,
			FilesScanned: r.Stats.FilesScanned,
			Images:       r.Stats.Images,
			Candidates:   r.Stats.Candidates,
			FilesHashed:  r.Stats.FilesHashed,
			Groups:       r.Stats.Groups,
			ExtraFiles:   r.Stats.ExtraFiles,
			WastedSpace:  r.Stats.WastedSpace,
			ScanDuration: formatDurationString(r.Stats.ScanDuration),
			HashDuration: formatDurationString(r.Stats.HashDuration),
		},
		Meta: docMeta{
			Source:   r.Source,
			Policy:   r.Policy,
			Method:   r.Method,
			Warnings: r.Warnings,
		},
	}
	if r.ShowImages {
		doc.Images = nonNil(r.Images)
	}
	return doc
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// formatDurationString formats a duration as a string for machine output.
func formatDurationString(d time.Duration) string {
	if d == 0 {
		return ""
	}
	return d.String()
}

// JSONFormatter formats output as a single indented JSON object.
type JSONFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *JSONFormatter) Format(w *bytes.Buffer, r *Result) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(buildDocument(r))
}

func init() {
	Register("json", func() Formatter {
		return &JSONFormatter{}
	})
}

// Ensure JSONFormatter implements Formatter.
var _ Formatter = (*JSONFormatter)(nil)

// JSONLFormatter formats output as newline-delimited JSON, one duplicate
// group per line. This format is suitable for streaming with tools like jq.
type JSONLFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *JSONLFormatter) Format(w *bytes.Buffer, r *Result) error {
	for _, g := range r.Groups {
		data, err := json.Marshal(g)
		if err != nil {
			return err
		}
		w.Write(data)
		w.WriteByte('\n')
	}
	return nil
}

func init() {
	Register("jsonl", func() Formatter {
		return &JSONLFormatter{}
	})
}

// Ensure JSONLFormatter implements Formatter.
var _ Formatter = (*JSONLFormatter)(nil)
