package output

import (
	"bytes"
	"fmt"
	"text/tabwriter"

	"github.com/jamesainslie/photodedup/pkg/photodedup/types"
)

// PlainFormatter formats the report as unstyled text suitable for logs and
// piping. The layout matches the pretty formatter without colors or boxes.
type PlainFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *PlainFormatter) Format(w *bytes.Buffer, r *Result) error {
	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)
	summary := []struct {
		label string
		value string
	}{
		{"Source:", r.Source},
		{"Policy:", r.Policy},
		{"Images scanned:", fmt.Sprintf("%d", r.Stats.Images)},
		{"Duplicate groups:", fmt.Sprintf("%d", r.Stats.Groups)},
		{"Duplicate files:", fmt.Sprintf("%d", r.Stats.ExtraFiles)},
		{"Wasted space:", types.FormatSize(r.Stats.WastedSpace)},
	}
	for _, row := range summary {
		if _, err := fmt.Fprintf(tw, "%s\t%s\n", row.label, row.value); err != nil {
			return err
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	w.WriteString("\n")

	if len(r.Groups) == 0 {
		w.WriteString("No duplicate images found\n")
	}
	for _, g := range r.VisibleGroups() {
		w.WriteString(groupTitle(g))
		w.WriteString("\n")
		for _, file := range g.Files {
			fmt.Fprintf(w, "  -> %s (%s)\n", file.Path, file.SizeHuman)
		}
		w.WriteString("\n")
	}
	if hidden := r.HiddenGroups(); hidden > 0 {
		w.WriteString(moreGroupsLine(hidden))
		w.WriteString("\n")
	}

	for _, s := range r.sections() {
		fmt.Fprintf(w, "\n%s (%d)\n", s.title, len(s.lines))
		if len(s.lines) == 0 {
			fmt.Fprintf(w, "  %s\n", s.empty)
			continue
		}
		lines, more := s.visible()
		for _, line := range lines {
			fmt.Fprintf(w, "  %s\n", line)
		}
		if more != "" {
			fmt.Fprintf(w, "  %s\n", more)
		}
	}

	for _, warning := range r.Warnings {
		fmt.Fprintf(w, "\nwarning: %s\n", warning)
	}
	return nil
}

func init() {
	Register("plain", func() Formatter {
		return &PlainFormatter{}
	})
}

// Ensure PlainFormatter implements Formatter.
var _ Formatter = (*PlainFormatter)(nil)
