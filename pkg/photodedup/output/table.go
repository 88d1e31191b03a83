package output

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
)

var tableHeader = []string{"GROUP", "DIGEST", "SIZE", "PATH"}

// tableRows flattens the groups into one row per member file.
func tableRows(r *Result) [][]string {
	var rows [][]string
	for _, g := range r.Groups {
		for _, file := range g.Files {
			rows = append(rows, []string{strconv.Itoa(g.Index), g.Digest, strconv.FormatInt(file.Size, 10), file.Path})
		}
	}
	return rows
}

// TSVFormatter formats output as tab-separated values, one row per member
// of each duplicate group.
type TSVFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *TSVFormatter) Format(w *bytes.Buffer, r *Result) error {
	w.WriteString(strings.Join(tableHeader, "\t"))
	w.WriteByte('\n')

	for _, row := range tableRows(r) {
		w.WriteString(strings.Join(row, "\t"))
		w.WriteByte('\n')
	}

	return nil
}

func init() {
	Register("tsv", func() Formatter {
		return &TSVFormatter{}
	})
}

// Ensure TSVFormatter implements Formatter.
var _ Formatter = (*TSVFormatter)(nil)

// CSVFormatter formats output as comma-separated values with proper quoting.
// It uses encoding/csv for RFC 4180 compliant output.
type CSVFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *CSVFormatter) Format(w *bytes.Buffer, r *Result) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(tableHeader); err != nil {
		return err
	}
	for _, row := range tableRows(r) {
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func init() {
	Register("csv", func() Formatter {
		return &CSVFormatter{}
	})
}

// Ensure CSVFormatter implements Formatter.
var _ Formatter = (*CSVFormatter)(nil)

// MarkdownFormatter formats output as a GitHub-flavored Markdown table.
type MarkdownFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *MarkdownFormatter) Format(w *bytes.Buffer, r *Result) error {
	w.WriteString("| GROUP | DIGEST | SIZE | PATH |\n")
	w.WriteString("|-------|--------|------|------|\n")

	for _, g := range r.Groups {
		for _, file := range g.Files {
			fmt.Fprintf(w, "| %d | %s | %s | %s |\n",
				g.Index, g.Digest, escapeMarkdownPipe(file.SizeHuman), escapeMarkdownPipe(file.Path))
		}
	}

	return nil
}

// escapeMarkdownPipe escapes pipe characters in a string for Markdown tables.
func escapeMarkdownPipe(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

func init() {
	Register("markdown", func() Formatter {
		return &MarkdownFormatter{}
	})
}

// Ensure MarkdownFormatter implements Formatter.
var _ Formatter = (*MarkdownFormatter)(nil)
