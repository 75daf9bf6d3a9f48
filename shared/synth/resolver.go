package synth

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
)

// SampleRows is how many existing rows are echoed back into the prompt.
const SampleRows = 3

var candidateDelimiters = []rune{',', ';', '\t', '|'}

// Upload is an uploaded tabular file.
type Upload struct {
	Filename string
	Data     []byte
}

// Request is what the caller sends: an optional file and an optional
// description. At least one must be usable.
type Request struct {
	File        *Upload
	Description string
}

// SchemaPreview describes an uploaded table well enough to steer generation.
type SchemaPreview struct {
	Columns   []string
	Delimiter rune
	Rows      int
	// Sample holds the header plus the first SampleRows rows as comma-separated text.
	Sample string
}

// Input is a validated request.
type Input struct {
	Schema      *SchemaPreview
	Description string
}

func (in *Input) HasSchema() bool { return in.Schema != nil }

// Resolve validates the request. A file takes precedence: if one is
// present it must be a usable table, even when a description is also given.
func Resolve(req Request) (*Input, error) {
	description := strings.TrimSpace(req.Description)

	if req.File != nil {
		schema, err := ParseSchema(req.File.Data)
		if err != nil {
			return nil, err
		}

		return &Input{Schema: schema, Description: description}, nil
	}

	if description != "" {
		return &Input{Description: description}, nil
	}

	return nil, newError(KindMissingInput, nil)
}

// ParseSchema reads a delimited table with a header row.
func ParseSchema(data []byte) (*SchemaPreview, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	if len(bytes.TrimSpace(data)) == 0 {
		return nil, newError(KindInvalidCSV, errors.New("file is empty"))
	}

	if err := checkText(data); err != nil {
		return nil, newError(KindInvalidCSV, err)
	}

	delim, ok := detectDelimiter(data)
	if !ok {
		// a lone header line without a delimiter says nothing about the layout
		if countNonBlankLines(data) < 2 {
			return nil, newError(KindInvalidCSV, errors.New("no delimiter detected in header row"))
		}
		delim = ','
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = delim
	r.FieldsPerRecord = -1
	// with a tab delimiter this would merge empty cells
	r.TrimLeadingSpace = delim != '\t'

	header, err := r.Read()
	if err != nil {
		return nil, newError(KindInvalidCSV, fmt.Errorf("read header: %w", err))
	}

	columns := make([]string, 0, len(header))
	for _, h := range header {
		if name := strings.TrimSpace(h); name != "" {
			columns = append(columns, name)
		}
	}

	var sample [][]string
	rows := 0
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, newError(KindInvalidCSV, fmt.Errorf("read row %d: %w", rows+1, err))
		}
		if isBlankRecord(record) {
			continue
		}
		if len(record) > len(header) {
			return nil, newError(KindInvalidCSV, fmt.Errorf("row %d has %d fields, header has %d", rows+1, len(record), len(header)))
		}
		// exporters drop trailing empty cells
		for len(record) < len(header) {
			record = append(record, "")
		}

		rows++
		if len(sample) < SampleRows {
			sample = append(sample, record)
		}
	}

	if len(columns) == 0 || rows == 0 {
		return nil, newError(KindNoColumns, nil)
	}

	rendered, err := renderSample(header, sample)
	if err != nil {
		return nil, newError(KindInvalidCSV, err)
	}

	return &SchemaPreview{
		Columns:   columns,
		Delimiter: delim,
		Rows:      rows,
		Sample:    rendered,
	}, nil
}

func checkText(data []byte) error {
	if !utf8.Valid(data) {
		return errors.New("file is not UTF-8 text")
	}

	mtype := mimetype.Detect(data)
	for m := mtype; m != nil; m = m.Parent() {
		if m.Is("text/plain") {
			return nil
		}
	}

	return fmt.Errorf("file content looks like %s", mtype.String())
}

// detectDelimiter picks the candidate that occurs most often in the header
// line, ignoring quoted sections.
func detectDelimiter(data []byte) (rune, bool) {
	line := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		line = data[:i]
	}

	counts := make(map[rune]int, len(candidateDelimiters))
	quoted := false
	for _, c := range string(line) {
		if c == '"' {
			quoted = !quoted
			continue
		}
		if quoted {
			continue
		}
		for _, d := range candidateDelimiters {
			if c == d {
				counts[d]++
			}
		}
	}

	var best rune
	for _, d := range candidateDelimiters {
		if counts[d] > counts[best] {
			best = d
		}
	}

	return best, counts[best] > 0
}

func countNonBlankLines(data []byte) int {
	n := 0
	for _, line := range bytes.Split(data, []byte("\n")) {
		if len(bytes.TrimSpace(line)) > 0 {
			n++
		}
	}

	return n
}

func isBlankRecord(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}

	return true
}

func renderSample(header []string, rows [][]string) (string, error) {
	var buf bytes.Buffer

	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return "", fmt.Errorf("render sample header: %w", err)
	}
	if err := w.WriteAll(rows); err != nil {
		return "", fmt.Errorf("render sample rows: %w", err)
	}

	return buf.String(), nil
}
