// Package xy reads delimited two-column (wavenumber, intensity) exports from FTIR
// instruments. The file shape is not known in advance: leading metadata rows, an
// optional column header and trailing footers are detected and dropped.
package xy

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/ChrisMcGann/FTIRKit/pkg/core"
	"golang.org/x/text/encoding/charmap"
)

// FormatName is stored in core.Spectrum.SourceFormat.
const FormatName = "xy"

// Whitespace splits fields on any run of spaces or tabs.
const Whitespace = ' '

// autoDelimiters are tried in order when Options.Delimiter is zero.
var autoDelimiters = []rune{',', '\t', ';', Whitespace}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Options controls how a file is read.
type Options struct {
	Delimiter rune // Field separator; 0 tries comma, tab, semicolon, whitespace
	SkipRows  int  // Physical lines dropped before detection starts
}

// rowState is the position of the scanner relative to the data block.
type rowState int

const (
	stateHeader rowState = iota
	stateData
	stateTrailer
)

// Reader reads a single spectrum from a delimited text stream
type Reader struct {
	r      io.Reader
	source string
	opts   Options
}

// NewReader creates a new reader. source identifies the spectrum, usually the
// uploaded file name.
func NewReader(r io.Reader, source string, opts Options) *Reader {
	return &Reader{
		r:      r,
		source: source,
		opts:   opts,
	}
}

// Read consumes the stream and returns the cleaned spectrum.
func (r *Reader) Read() (*core.Spectrum, error) {
	data, err := io.ReadAll(r.r)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", r.source, err)
	}
	return Parse(r.source, data, r.opts)
}

// Parse turns raw file bytes into a spectrum sorted by wavenumber, descending.
// Any failure is a *core.MalformedInputError.
func Parse(source string, data []byte, opts Options) (*core.Spectrum, error) {
	text, err := decode(data)
	if err != nil {
		return nil, &core.MalformedInputError{Source: source, Reason: err.Error()}
	}

	lines, err := splitLines(text)
	if err != nil {
		return nil, &core.MalformedInputError{Source: source, Reason: err.Error()}
	}
	if isBlank(lines) {
		return nil, &core.MalformedInputError{Source: source, Reason: "empty file"}
	}

	if opts.Delimiter != 0 {
		return parseLines(source, lines, opts.Delimiter, opts.SkipRows)
	}

	var firstErr error
	for _, delim := range autoDelimiters {
		spec, err := parseLines(source, lines, delim, opts.SkipRows)
		if err == nil {
			return spec, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return nil, firstErr
}

// parseLines runs the header/data/trailer state machine over lines.
func parseLines(source string, lines []string, delim rune, skipRows int) (*core.Spectrum, error) {
	state := stateHeader
	samples := []core.Sample{}
	metadata := make(map[string]string)
	dataStart := 0

scan:
	for i, raw := range lines {
		if i < skipRows {
			continue
		}
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		x, y, ok := ParseRow(line, delim)

		switch state {
		case stateHeader:
			if !ok {
				collectMetadata(metadata, line)
				continue
			}
			state = stateData
			dataStart = i + 1
			samples = append(samples, core.Sample{Wavenumber: x, Intensity: y})
		case stateData:
			if !ok {
				state = stateTrailer
				break scan
			}
			samples = append(samples, core.Sample{Wavenumber: x, Intensity: y})
		}
	}

	if len(samples) == 0 {
		return nil, &core.MalformedInputError{Source: source, Reason: "no numeric data rows found"}
	}
	if len(samples) < 2 {
		return nil, &core.MalformedInputError{
			Source: source,
			Line:   dataStart,
			Reason: fmt.Sprintf("need at least 2 data points, found %d", len(samples)),
		}
	}

	core.SortSamples(samples)

	spec := &core.Spectrum{
		ID:           source,
		SourceFile:   source,
		Samples:      samples,
		SourceFormat: FormatName,
	}
	if len(metadata) > 0 {
		spec.Metadata = metadata
	}
	return spec, nil
}

// IsDataRow reports whether the first two fields of line both parse as finite
// numbers.
func IsDataRow(line string, delim rune) bool {
	_, _, ok := ParseRow(line, delim)
	return ok
}

// ParseRow returns the first two numeric fields of line. ok is false when the
// row is not a data row.
func ParseRow(line string, delim rune) (x, y float64, ok bool) {
	fields := splitFields(line, delim)
	if len(fields) < 2 {
		return 0, 0, false
	}

	x, err := parseNumber(fields[0])
	if err != nil {
		return 0, 0, false
	}
	y, err = parseNumber(fields[1])
	if err != nil {
		return 0, 0, false
	}
	return x, y, true
}

func parseNumber(field string) (float64, error) {
	v, err := strconv.ParseFloat(field, 64)
	if err != nil {
		return 0, err
	}
	if !core.IsFinite(v) {
		return 0, fmt.Errorf("non-finite value %q", field)
	}
	return v, nil
}

func splitFields(line string, delim rune) []string {
	var fields []string
	if delim == Whitespace {
		fields = strings.Fields(line)
	} else {
		fields = strings.Split(line, string(delim))
	}
	for i, f := range fields {
		fields[i] = strings.Trim(strings.TrimSpace(f), `"`)
	}
	return fields
}

// collectMetadata keeps "key: value" and "key=value" header lines.
func collectMetadata(metadata map[string]string, line string) {
	idx := strings.IndexAny(line, ":=")
	if idx <= 0 {
		return
	}
	key := strings.Trim(strings.TrimSpace(line[:idx]), `"`)
	value := strings.Trim(strings.TrimSpace(line[idx+1:]), `",`)
	if key == "" {
		return
	}
	metadata[key] = value
}

// decode strips a UTF-8 byte order mark and falls back to Latin-1, which older
// instrument software still writes.
func decode(data []byte) (string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if utf8.Valid(data) {
		return string(data), nil
	}
	out, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("failed to decode Latin-1 input: %w", err)
	}
	return string(out), nil
}

func splitLines(text string) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

func isBlank(lines []string) bool {
	for _, l := range lines {
		if strings.TrimSpace(l) != "" {
			return false
		}
	}
	return true
}
