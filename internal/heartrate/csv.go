package heartrate

import (
	"errors"
	"fmt"
	"math"
	"os"
	"regexp"
	"strconv"
	"strings"
)

// Series is an ordered run of heart-rate samples in beats per minute,
// chronological as they appeared in the source.
type Series []float64

// BPMColumn is the header name the local extractor looks for, compared
// after trimming and upper-casing.
const BPMColumn = "BPM"

// Extraction errors. Their messages are shown to the user verbatim.
var (
	ErrEmptyFile           = errors.New("File is empty.")
	ErrMissingHeaderOrData = errors.New("CSV must have a header and at least one data row.")
	ErrMissingBPMColumn    = errors.New(`CSV must contain a "BPM" column.`)
	ErrNoValidData         = errors.New("No valid BPM data found in the file.")
)

// leadingNumber matches the numeric prefix of a field, so "72bpm" reads as 72
var leadingNumber = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?`)

// ParseCSV extracts the BPM column from raw CSV text.
//
// Blank lines are ignored. The first remaining line is the header and must
// contain a field named exactly "BPM" (any case). Data rows that are too
// short or hold a non-numeric value in that column are skipped.
func ParseCSV(raw string) (Series, error) {
	lines := nonBlankLines(raw)

	if len(lines) == 0 {
		return nil, ErrEmptyFile
	}
	if len(lines) < 2 {
		return nil, ErrMissingHeaderOrData
	}

	bpmIndex := headerIndex(lines[0], BPMColumn)
	if bpmIndex == -1 {
		return nil, ErrMissingBPMColumn
	}

	series := make(Series, 0, len(lines)-1)
	for _, line := range lines[1:] {
		fields := strings.Split(line, ",")
		if len(fields) <= bpmIndex {
			continue
		}

		value, ok := parseLeadingFloat(strings.TrimSpace(fields[bpmIndex]))
		if !ok {
			continue
		}
		series = append(series, value)
	}

	if len(series) == 0 {
		return nil, ErrNoValidData
	}

	return series, nil
}

// ReadCSVFile reads path and parses it with ParseCSV.
func ReadCSVFile(path string) (Series, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading csv: %w", err)
	}
	return ParseCSV(string(data))
}

// Tail returns the last n samples of s. A non-positive n, or one larger
// than the series, returns s unchanged.
func Tail(s Series, n int) Series {
	if n <= 0 || n >= len(s) {
		return s
	}
	return s[len(s)-n:]
}

// nonBlankLines splits on LF or CRLF and drops lines that are only whitespace
func nonBlankLines(raw string) []string {
	var lines []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

// headerIndex returns the position of the first header field equal to name,
// or -1.
func headerIndex(header, name string) int {
	for i, field := range strings.Split(header, ",") {
		if strings.ToUpper(strings.TrimSpace(field)) == name {
			return i
		}
	}
	return -1
}

// parseLeadingFloat parses the numeric prefix of s. Non-finite results are
// rejected.
func parseLeadingFloat(s string) (float64, bool) {
	prefix := leadingNumber.FindString(s)
	if prefix == "" {
		return 0, false
	}

	v, err := strconv.ParseFloat(prefix, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}
