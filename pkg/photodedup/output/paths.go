package output

import (
	"bytes"
)

// PathsFormatter writes the members of every duplicate group one path per
// line, with a blank line between groups.
type PathsFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *PathsFormatter) Format(w *bytes.Buffer, r *Result) error {
	for i, g := range r.Groups {
		if i > 0 {
			w.WriteByte('\n')
		}
		for _, file := range g.Files {
			w.WriteString(file.Path)
			w.WriteByte('\n')
		}
	}
	return nil
}

func init() {
	Register("paths", func() Formatter {
		return &PathsFormatter{}
	})
}

// Ensure PathsFormatter implements Formatter.
var _ Formatter = (*PathsFormatter)(nil)

// NullFormatter writes the redundant copies of each group, every member
// except the first, separated by null bytes for use with xargs -0.
type NullFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *NullFormatter) Format(w *bytes.Buffer, r *Result) error {
	for _, g := range r.Groups {
		for _, file := range g.Files[1:] {
			w.WriteString(file.Path)
			w.WriteByte(0)
		}
	}
	return nil
}

func init() {
	Register("null", func() Formatter {
		return &NullFormatter{}
	})
}

// Ensure NullFormatter implements Formatter.
var _ Formatter = (*NullFormatter)(nil)
