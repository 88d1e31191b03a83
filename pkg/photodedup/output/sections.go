package output

import (
	"fmt"
	"strings"
)

const timeLayout = "2006-01-02 15:04:05"

// section is a titled list rendered after the duplicate groups.
type section struct {
	title string
	empty string
	lines []string
}

// sections returns the listing sections of a report in display order.
func (r *Result) sections() []section {
	var out []section

	if r.ShowImages {
		lines := make([]string, len(r.Images))
		for i, img := range r.Images {
			lines[i] = fmt.Sprintf("%s (%s, modified %s)", img.Path, img.SizeHuman, img.ModTime.Format(timeLayout))
		}
		out = append(out, section{title: "Images", empty: "No images found", lines: lines})
	}

	errs := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		errs[i] = formatErrorEntry(e)
	}
	out = append(out,
		section{title: "Errors", empty: "No errors", lines: errs},
		section{title: "Skipped folders", empty: "No skipped folders", lines: r.SkippedDirs},
		section{title: "Skipped files", empty: "No skipped files", lines: r.SkippedFiles},
	)
	return out
}

// visible applies the truncation rule and returns the shown lines plus the
// trailer for the hidden remainder, if any.
func (s section) visible() ([]string, string) {
	n := Truncate(len(s.lines))
	if n == len(s.lines) {
		return s.lines, ""
	}
	return s.lines[:n], fmt.Sprintf("... and %d more", len(s.lines)-n)
}

func formatErrorEntry(e ErrorEntry) string {
	var sb strings.Builder
	sb.WriteString(e.Path)
	sb.WriteString(": ")
	if e.Kind != "" {
		fmt.Fprintf(&sb, "[%s %s] ", e.Stage, e.Kind)
	}
	sb.WriteString(e.Message)
	return sb.String()
}

func groupTitle(g Group) string {
	return fmt.Sprintf("Group %d - %d identical files (%s wasted)", g.Index, g.Count, g.WastedHuman)
}
