package output

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// PrettyFormatter formats output with colors and styling using lipgloss.
// It produces a visually appealing output suitable for terminal display.
type PrettyFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *PrettyFormatter) Format(w *bytes.Buffer, r *Result) error {
	w.WriteString(f.formatHeader(r))
	w.WriteString("\n")

	w.WriteString(f.formatGroups(r))

	for _, s := range r.sections() {
		w.WriteString("\n")
		w.WriteString(f.formatSection(s))
	}

	w.WriteString(f.formatFooter(r))
	w.WriteString("\n")

	if len(r.Warnings) > 0 {
		w.WriteString("\n")
		w.WriteString(f.formatWarnings(r.Warnings))
	}

	return nil
}

// formatHeader builds the header box with scan metadata.
func (f *PrettyFormatter) formatHeader(r *Result) string {
	var lines []string

	lines = append(lines, fmt.Sprintf("%s %s", LabelStyle.Render("Source:"), ValueStyle.Render(r.Source)))

	policy := fmt.Sprintf("%s %s", LabelStyle.Render("Policy:"), ValueStyle.Render(r.Policy))
	if r.Method != "" {
		policy += MutedStyle.Render(" (" + r.Method + " hash)")
	}
	lines = append(lines, policy)

	scanned := fmt.Sprintf("%s images in %s folders (%s files) in %s",
		humanize.Comma(int64(r.Stats.Images)),
		humanize.Comma(r.Stats.DirsScanned),
		humanize.Comma(r.Stats.FilesScanned),
		formatDuration(r.Stats.ScanDuration))
	lines = append(lines, fmt.Sprintf("%s %s", LabelStyle.Render("Scanned:"), ValueStyle.Render(scanned)))

	if r.Stats.Candidates > 0 {
		hashed := fmt.Sprintf("%s candidates, %s hashes in %s",
			humanize.Comma(int64(r.Stats.Candidates)),
			humanize.Comma(r.Stats.FilesHashed),
			formatDuration(r.Stats.HashDuration))
		lines = append(lines, fmt.Sprintf("%s %s", LabelStyle.Render("Hashed:"), ValueStyle.Render(hashed)))
	}

	return HeaderBox.Render(strings.Join(lines, "\n"))
}

// formatGroups renders the visible duplicate groups.
func (f *PrettyFormatter) formatGroups(r *Result) string {
	if len(r.Groups) == 0 {
		return SuccessStyle.Render("No duplicate images found") + "\n"
	}

	var sb strings.Builder
	for _, g := range r.VisibleGroups() {
		sb.WriteString(GroupTitleStyle.Render(groupTitle(g)))
		sb.WriteString("\n")
		for _, file := range g.Files {
			fmt.Fprintf(&sb, "  -> %s %s\n",
				PathStyle.Render(file.Path),
				SizeStyle.Render("("+file.SizeHuman+")"))
		}
		sb.WriteString("\n")
	}

	if hidden := r.HiddenGroups(); hidden > 0 {
		sb.WriteString(MutedStyle.Render(moreGroupsLine(hidden)))
		sb.WriteString("\n")
	}
	return sb.String()
}

// formatSection renders one listing section.
func (f *PrettyFormatter) formatSection(s section) string {
	var sb strings.Builder

	sb.WriteString(TitleStyle.Render(fmt.Sprintf("%s (%d)", s.title, len(s.lines))))
	sb.WriteString("\n")

	if len(s.lines) == 0 {
		sb.WriteString("  " + MutedStyle.Render(s.empty) + "\n")
		return sb.String()
	}

	style := PathStyle
	if s.title == "Errors" {
		style = ErrorStyle
	}
	lines, more := s.visible()
	for _, line := range lines {
		sb.WriteString("  " + style.Render(line) + "\n")
	}
	if more != "" {
		sb.WriteString("  " + MutedStyle.Render(more) + "\n")
	}
	return sb.String()
}

// formatFooter builds the footer box with duplicate totals.
func (f *PrettyFormatter) formatFooter(r *Result) string {
	parts := []string{
		fmt.Sprintf("%s %s", LabelStyle.Render("Groups:"), ValueStyle.Render(humanize.Comma(int64(r.Stats.Groups)))),
		fmt.Sprintf("%s %s", LabelStyle.Render("Duplicates:"), ValueStyle.Render(humanize.Comma(int64(r.Stats.ExtraFiles)))),
		fmt.Sprintf("%s %s", LabelStyle.Render("Wasted:"), WarningStyle.Render(humanize.IBytes(uint64(r.Stats.WastedSpace)))),
	}
	if len(r.Errors) > 0 {
		parts = append(parts, ErrorStyle.Render(fmt.Sprintf("%d errors", len(r.Errors))))
	}
	parts = append(parts, MutedStyle.Render("Use -o plain for unformatted output"))

	return FooterBox.Render(strings.Join(parts, "  "))
}

// formatWarnings builds a warning block.
func (f *PrettyFormatter) formatWarnings(warnings []string) string {
	var sb strings.Builder

	sb.WriteString(WarningStyle.Bold(true).Render("Warnings:"))
	sb.WriteString("\n")

	for _, warning := range warnings {
		sb.WriteString(WarningStyle.Render("  " + warning))
		sb.WriteString("\n")
	}

	return sb.String()
}

// formatDuration formats a duration in a human-friendly way.
func formatDuration(d time.Duration) string {
	sec := d.Seconds()
	if sec < 1 {
		return fmt.Sprintf("%.0fms", sec*1000)
	}
	if sec < 60 {
		return fmt.Sprintf("%.1fs", sec)
	}
	minutes := int(sec) / 60
	seconds := int(sec) % 60
	if minutes < 60 {
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}
	return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
}

func init() {
	Register("pretty", func() Formatter {
		return &PrettyFormatter{}
	})
}

// Ensure PrettyFormatter implements Formatter.
var _ Formatter = (*PrettyFormatter)(nil)
