// Package jcamp provides a streaming reader for JCAMP-DX infrared spectra
package jcamp

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ChrisMcGann/FTIRKit/pkg/core"
)

// FormatName is stored in core.Spectrum.SourceFormat.
const FormatName = "jcamp"

type dataMode int

const (
	modeNone dataMode = iota
	modeXYData
	modeXYPoints
)

// Reader provides streaming access to the blocks of a JCAMP-DX file
type Reader struct {
	scanner     *bufio.Scanner
	source      string
	lineNum     int
	blockNum    int
	currentSpec *core.Spectrum
	err         error
}

// block accumulates one ##TITLE= ... ##END= section.
type block struct {
	metadata  map[string]string
	samples   []core.Sample
	mode      dataMode
	hasData   bool
	xFactor   float64
	yFactor   float64
	firstX    *float64
	lastX     *float64
	nPoints   int
	xyIndex   int
	startLine int
}

// NewReader creates a new JCAMP-DX reader
func NewReader(r io.Reader, source string) *Reader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &Reader{
		scanner: scanner,
		source:  source,
	}
}

// Next advances to the next spectrum. Returns false when no more spectra or error.
func (r *Reader) Next() bool {
	r.currentSpec = nil

	spec, err := r.readSpectrum()
	if err != nil {
		if err != io.EOF {
			r.err = err
		}
		return false
	}

	r.currentSpec = spec
	return true
}

// Spectrum returns the current spectrum
func (r *Reader) Spectrum() *core.Spectrum {
	return r.currentSpec
}

// Err returns any error encountered during reading
func (r *Reader) Err() error {
	return r.err
}

// ReadAll returns every spectrum in data. A file without any data block is a
// *core.MalformedInputError.
func ReadAll(source string, r io.Reader) ([]*core.Spectrum, error) {
	reader := NewReader(r, source)
	var spectra []*core.Spectrum
	for reader.Next() {
		spectra = append(spectra, reader.Spectrum())
	}
	if err := reader.Err(); err != nil {
		return nil, err
	}
	if len(spectra) == 0 {
		return nil, &core.MalformedInputError{Source: source, Reason: "no ##XYDATA or ##XYPOINTS block found"}
	}
	return spectra, nil
}

// readSpectrum reads blocks until one carries data
func (r *Reader) readSpectrum() (*core.Spectrum, error) {
	b := newBlock()

	for r.scanner.Scan() {
		r.lineNum++
		line := stripComment(r.scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "##") {
			label, value := parseLabel(line)
			if b.startLine == 0 {
				b.startLine = r.lineNum
			}

			if label == "END" {
				if !b.hasData {
					// Link blocks and blocks without data are skipped.
					b = newBlock()
					continue
				}
				return r.finish(b)
			}

			if err := r.applyLabel(b, label, value); err != nil {
				return nil, err
			}
			continue
		}

		if err := r.parseData(b, line); err != nil {
			return nil, err
		}
	}

	if err := r.scanner.Err(); err != nil {
		return nil, err
	}

	// A final block without ##END= is still returned
	if b.hasData {
		return r.finish(b)
	}

	return nil, io.EOF
}

func newBlock() *block {
	return &block{
		metadata: make(map[string]string),
		xFactor:  1,
		yFactor:  1,
	}
}

// applyLabel handles a labelled data record (LDR)
func (r *Reader) applyLabel(b *block, label, value string) error {
	var err error

	switch label {
	case "XFACTOR":
		b.xFactor, err = strconv.ParseFloat(value, 64)
	case "YFACTOR":
		b.yFactor, err = strconv.ParseFloat(value, 64)
	case "FIRSTX":
		var v float64
		v, err = strconv.ParseFloat(value, 64)
		b.firstX = &v
	case "LASTX":
		var v float64
		v, err = strconv.ParseFloat(value, 64)
		b.lastX = &v
	case "NPOINTS":
		b.nPoints, err = strconv.Atoi(value)
	case "XYDATA":
		if !strings.Contains(strings.ReplaceAll(value, " ", ""), "X++(Y..Y)") {
			return r.malformed(fmt.Sprintf("unsupported XYDATA form %q", value))
		}
		if b.firstX == nil || b.lastX == nil || b.nPoints < 2 {
			return r.malformed("XYDATA requires FIRSTX, LASTX and NPOINTS >= 2")
		}
		b.mode = modeXYData
		b.hasData = true
		return nil
	case "XYPOINTS":
		b.mode = modeXYPoints
		b.hasData = true
		return nil
	default:
		b.mode = modeNone
		b.metadata[label] = value
		return nil
	}

	if err != nil {
		return r.malformed(fmt.Sprintf("invalid %s value %q", label, value))
	}
	return nil
}

// parseData parses one data line of the current section
func (r *Reader) parseData(b *block, line string) error {
	switch b.mode {
	case modeXYData:
		fields := strings.Fields(strings.ReplaceAll(line, ",", " "))
		if len(fields) == 0 {
			return nil
		}
		// The leading X is a line abscissa; sample positions come from FIRSTX/LASTX.
		if _, err := strconv.ParseFloat(fields[0], 64); err != nil {
			return r.malformed("compressed (ASDF) data is not supported")
		}
		if len(fields) < 2 {
			return r.malformed("XYDATA line needs an X value and at least one Y value")
		}
		deltaX := (*b.lastX - *b.firstX) / float64(b.nPoints-1)
		for _, f := range fields[1:] {
			y, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return r.malformed("compressed (ASDF) data is not supported")
			}
			x := *b.firstX + float64(b.xyIndex)*deltaX
			b.samples = append(b.samples, core.Sample{Wavenumber: x, Intensity: y * b.yFactor})
			b.xyIndex++
		}

	case modeXYPoints:
		line = strings.NewReplacer(";", " ", ",", " ").Replace(line)
		fields := strings.Fields(line)
		if len(fields)%2 != 0 {
			return r.malformed("XYPOINTS line has an unpaired value")
		}
		for i := 0; i < len(fields); i += 2 {
			x, errX := strconv.ParseFloat(fields[i], 64)
			y, errY := strconv.ParseFloat(fields[i+1], 64)
			if errX != nil || errY != nil {
				return r.malformed(fmt.Sprintf("invalid XYPOINTS pair %q %q", fields[i], fields[i+1]))
			}
			b.samples = append(b.samples, core.Sample{Wavenumber: x * b.xFactor, Intensity: y * b.yFactor})
		}
	}

	return nil
}

// finish converts a completed block into a spectrum
func (r *Reader) finish(b *block) (*core.Spectrum, error) {
	r.blockNum++

	if b.nPoints > 0 && len(b.samples) != b.nPoints {
		return nil, &core.MalformedInputError{
			Source: r.source,
			Line:   b.startLine,
			Reason: fmt.Sprintf("NPOINTS is %d but %d values were read", b.nPoints, len(b.samples)),
		}
	}

	for _, smp := range b.samples {
		if !core.IsFinite(smp.Wavenumber) || !core.IsFinite(smp.Intensity) {
			return nil, &core.MalformedInputError{Source: r.source, Line: b.startLine, Reason: "non-finite sample value"}
		}
	}

	if len(b.samples) < 2 {
		return nil, &core.MalformedInputError{
			Source: r.source,
			Line:   b.startLine,
			Reason: fmt.Sprintf("need at least 2 data points, found %d", len(b.samples)),
		}
	}

	core.SortSamples(b.samples)

	id := r.source
	if r.blockNum > 1 {
		id = fmt.Sprintf("%s#%d", r.source, r.blockNum)
	}

	return &core.Spectrum{
		ID:           id,
		SourceFile:   r.source,
		Samples:      b.samples,
		SourceFormat: FormatName,
		Metadata:     b.metadata,
	}, nil
}

func (r *Reader) malformed(reason string) error {
	return &core.MalformedInputError{Source: r.source, Line: r.lineNum, Reason: reason}
}

// parseLabel splits "##LABEL= value" and normalizes the label: upper case with
// spaces, dashes, slashes and underscores removed.
func parseLabel(line string) (string, string) {
	body := strings.TrimPrefix(line, "##")
	label, value, _ := strings.Cut(body, "=")
	label = strings.ToUpper(label)
	label = strings.NewReplacer(" ", "", "-", "", "_", "", "/", "").Replace(label)
	return label, strings.TrimSpace(value)
}

// stripComment removes a trailing "$$" comment and surrounding space.
func stripComment(line string) string {
	if idx := strings.Index(line, "$$"); idx >= 0 {
		line = line[:idx]
	}
	return strings.TrimSpace(line)
}
