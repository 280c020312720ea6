// Package pipeline runs a batch of uploaded files through parsing, cropping,
// normalization, band detection and alignment, collecting a per-file report.
package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/ChrisMcGann/FTIRKit/pkg/align"
	"github.com/ChrisMcGann/FTIRKit/pkg/core"
	"github.com/ChrisMcGann/FTIRKit/pkg/filter"
	"github.com/ChrisMcGann/FTIRKit/pkg/normalize"
	"github.com/ChrisMcGann/FTIRKit/pkg/peaks"
	"github.com/ChrisMcGann/FTIRKit/pkg/reader/jcamp"
	"github.com/ChrisMcGann/FTIRKit/pkg/reader/xy"
	"github.com/ChrisMcGann/FTIRKit/pkg/view"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Input is one uploaded file.
type Input struct {
	Name string
	Data []byte
	Err  error // Set when the file could not be read; it is reported as failed
}

// Recorder receives batch counters. *metrics.PipelineMetrics satisfies it.
type Recorder interface {
	RecordFile(format, status string)
	RecordFileError(errorType string)
	RecordSpectrum(samples int)
	RecordBands(polarity string, count int)
	RecordBatchDuration(seconds float64)
}

// Options configures a batch run.
type Options struct {
	Reader    xy.Options
	Range     filter.Config
	Normalize bool
	Aligner   align.Aligner
	Peaks     peaks.Config
	View      view.Options

	Workers int // Parallel file workers; 0 uses GOMAXPROCS
	Logger  *slog.Logger
	Metrics Recorder
}

// FileResult is the outcome for one input file. Exactly one of Spectra and
// Err is set.
type FileResult struct {
	Source  string
	Format  string
	Spectra []*core.Spectrum
	Bands   [][]core.Band // Bands[i] belongs to Spectra[i]
	Err     error
}

// OK reports whether the file produced spectra.
func (r *FileResult) OK() bool {
	return r.Err == nil
}

// Report is the result of one batch run.
type Report struct {
	RunID   string
	Files   []FileResult // Upload order
	Display []core.DisplaySpectrum
	Bands   [][]core.Band // Bands[i] belongs to Display[i]
	Rows    []core.BandRow
	Model   *view.Model
}

// Succeeded returns the number of files that produced spectra.
func (r *Report) Succeeded() int {
	n := 0
	for i := range r.Files {
		if r.Files[i].OK() {
			n++
		}
	}
	return n
}

// Failed returns the files that were rejected, in upload order.
func (r *Report) Failed() []FileResult {
	var failed []FileResult
	for _, f := range r.Files {
		if !f.OK() {
			failed = append(failed, f)
		}
	}
	return failed
}

// Run processes inputs. Files fail independently; a failed file is reported in
// Report.Files and never stops its siblings. When no file yields a spectrum the
// report is returned together with a *core.EmptyBatchError. Other errors come
// only from ctx.
func Run(ctx context.Context, inputs []Input, opts Options) (*Report, error) {
	start := time.Now()

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	report := &Report{
		RunID: uuid.NewString(),
		Files: make([]FileResult, len(inputs)),
	}
	logger = logger.With("run_id", report.RunID)

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, in := range inputs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			report.Files[i] = processFile(in, &opts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("batch %s interrupted: %w", report.RunID, err)
	}

	var spectra []*core.Spectrum
	for _, f := range report.Files {
		opts.recordFile(f)
		if !f.OK() {
			logger.Warn("file rejected", "source", f.Source, "format", f.Format, "error", f.Err)
			continue
		}
		logger.Debug("file accepted", "source", f.Source, "format", f.Format, "spectra", len(f.Spectra))
		spectra = append(spectra, f.Spectra...)
		report.Bands = append(report.Bands, f.Bands...)
	}

	if len(spectra) == 0 {
		logger.Error("no valid spectra", "files", len(inputs))
		return report, &core.EmptyBatchError{Attempted: len(inputs)}
	}

	report.Display = opts.Aligner.Align(spectra)
	report.Rows = core.BandTable(report.Display, report.Bands)
	report.Model = view.Build(report.Display, report.Bands, opts.View)
	report.Model.RunID = report.RunID

	elapsed := time.Since(start)
	if opts.Metrics != nil {
		opts.Metrics.RecordBatchDuration(elapsed.Seconds())
	}
	logger.Info("batch processed",
		"files", len(inputs),
		"failed", len(inputs)-report.Succeeded(),
		"spectra", len(spectra),
		"bands", len(report.Rows),
		"mode", opts.Aligner.Mode.String(),
		"duration", elapsed)

	return report, nil
}

// processFile runs every per-spectrum stage for one input.
func processFile(in Input, opts *Options) FileResult {
	res := FileResult{Source: in.Name, Format: DetectFormat(in.Name, in.Data)}

	parsed, err := Parse(in, res.Format, opts.Reader)
	if err != nil {
		res.Err = err
		return res
	}

	for _, spec := range parsed {
		cropped, err := opts.Range.Apply(spec)
		if err != nil {
			res.Err = err
			res.Spectra, res.Bands = nil, nil
			return res
		}
		if opts.Normalize {
			cropped = normalize.MinMax(cropped)
		}
		res.Spectra = append(res.Spectra, cropped)
		res.Bands = append(res.Bands, opts.Peaks.Detect(cropped))
	}
	return res
}

func (o *Options) recordFile(f FileResult) {
	if o.Metrics == nil {
		return
	}
	if !f.OK() {
		o.Metrics.RecordFile(f.Format, "error")
		o.Metrics.RecordFileError(errorType(f.Err))
		return
	}
	o.Metrics.RecordFile(f.Format, "ok")
	for i, spec := range f.Spectra {
		o.Metrics.RecordSpectrum(spec.Len())
		o.Metrics.RecordBands(o.Peaks.Polarity.String(), len(f.Bands[i]))
	}
}

func errorType(err error) string {
	var merr *core.MalformedInputError
	var rerr *core.RangeError
	var perr *fs.PathError
	switch {
	case errors.As(err, &merr):
		return "malformed"
	case errors.As(err, &rerr):
		return "range"
	case errors.As(err, &perr):
		return "io"
	default:
		return "other"
	}
}

// DetectFormat picks the reader for a file: JCAMP-DX by extension or by a
// leading "##" label, delimited text otherwise.
func DetectFormat(name string, data []byte) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jdx", ".dx", ".jcamp":
		return jcamp.FormatName
	}
	trimmed := bytes.TrimLeft(bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF}), " \t\r\n")
	if bytes.HasPrefix(trimmed, []byte("##")) {
		return jcamp.FormatName
	}
	return xy.FormatName
}

// Parse reads every spectrum in one input using the given format. An input
// carrying a read error fails with that error.
func Parse(in Input, format string, opts xy.Options) ([]*core.Spectrum, error) {
	if in.Err != nil {
		return nil, in.Err
	}

	switch format {
	case jcamp.FormatName:
		return jcamp.ReadAll(in.Name, bytes.NewReader(in.Data))
	case xy.FormatName:
		spec, err := xy.Parse(in.Name, in.Data, opts)
		if err != nil {
			return nil, err
		}
		return []*core.Spectrum{spec}, nil
	default:
		return nil, fmt.Errorf("unsupported format %q for %s", format, in.Name)
	}
}
