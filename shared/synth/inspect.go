package synth

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// OutputReport describes what the model actually returned. It never
// changes the output.
type OutputReport struct {
	Caption    string   `json:"caption,omitempty"`
	Columns    []string `json:"columns,omitempty"`
	Rows       int      `json:"rows"`
	Consistent bool     `json:"consistent"`
	Warnings   []string `json:"warnings,omitempty"`
}

func (r OutputReport) OK() bool { return len(r.Warnings) == 0 }

// Inspect checks text against the expected layout: a caption line, a header
// and TargetRows comma-separated rows. caption is the title the prompt asked
// for; it lets a title containing commas be told apart from a header.
func Inspect(text, caption string) OutputReport {
	var report OutputReport

	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")

	start := 0
	for start < len(lines) && strings.TrimSpace(lines[start]) == "" {
		start++
	}
	if start < len(lines) && isCaptionLine(lines[start:], caption) {
		report.Caption = trimCaption(lines[start])
		start++
	}
	if report.Caption == "" {
		report.Warnings = append(report.Warnings, "missing caption line")
	}

	body := strings.Join(lines[min(start, len(lines)):], "\n")
	r := csv.NewReader(strings.NewReader(body))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		report.Warnings = append(report.Warnings, "no header row")
		return report
	}
	report.Columns = header
	if len(header) < 2 {
		report.Warnings = append(report.Warnings, "header row is not comma separated")
	}

	ragged, broken := false, false
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			report.Warnings = append(report.Warnings, fmt.Sprintf("unparseable row after row %d: %v", report.Rows, err))
			broken = true
			break
		}

		report.Rows++
		if len(record) != len(header) {
			ragged = true
		}
	}

	if ragged {
		report.Warnings = append(report.Warnings, "row widths do not match the header")
	}
	report.Consistent = !ragged && !broken
	if report.Rows != TargetRows {
		report.Warnings = append(report.Warnings, fmt.Sprintf("expected %d data rows, got %d", TargetRows, report.Rows))
	}

	return report
}

func trimCaption(line string) string {
	return strings.TrimSpace(strings.TrimLeft(line, "# "))
}

// isCaptionLine reports whether lines[0] is a title rather than the header.
func isCaptionLine(lines []string, caption string) bool {
	first := lines[0]
	if !strings.Contains(first, ",") {
		return true
	}
	if caption != "" && strings.EqualFold(trimCaption(first), strings.TrimSpace(caption)) {
		return true
	}

	// a title with commas rarely has the same width as the header below it
	for _, next := range lines[1:] {
		if strings.TrimSpace(next) == "" {
			continue
		}
		return fieldCount(first) != fieldCount(next)
	}

	return false
}

func fieldCount(line string) int {
	r := csv.NewReader(strings.NewReader(line))
	r.LazyQuotes = true
	record, err := r.Read()
	if err != nil {
		return -1
	}

	return len(record)
}
