package pipeline

import (
	"context"
	"fmt"
	"io/fs"
	"strings"
	"sync"
	"testing"

	"github.com/ChrisMcGann/FTIRKit/pkg/align"
	"github.com/ChrisMcGann/FTIRKit/pkg/core"
	"github.com/ChrisMcGann/FTIRKit/pkg/filter"
	"github.com/ChrisMcGann/FTIRKit/pkg/peaks"
	"github.com/ChrisMcGann/FTIRKit/pkg/view"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const validCSV = "Instrument: X\nDate: 2024-01-01\n4000,0.95\n3000,0.40\n2000,0.90\n1000,0.93\n"

const metadataOnly = "Instrument: X\nDate: 2024-01-01\nOperator: Y\n"

const jcampTwoBlocks = `##TITLE= first
##XYPOINTS=(XY..XY)
3000,1 2500,0.2 2000,1
##END=
##TITLE= second
##XYPOINTS=(XY..XY)
3000,0.5 2500,0.1 2000,0.5
##END=
`

func defaultOptions() Options {
	return Options{
		Aligner: align.Aligner{Mode: align.Overlay, SpacingFactor: 1.1},
		Peaks:   peaks.Config{MinProminence: 0.3, MinSpacing: 500},
		View:    view.DefaultOptions(),
		Workers: 4,
	}
}

func TestRunPartialFailure(t *testing.T) {
	inputs := []Input{
		{Name: "meta.csv", Data: []byte(metadataOnly)},
		{Name: "good.csv", Data: []byte(validCSV)},
	}

	report, err := Run(context.Background(), inputs, defaultOptions())
	require.NoError(t, err)
	require.Len(t, report.Files, 2)

	bad := report.Files[0]
	assert.False(t, bad.OK())
	var merr *core.MalformedInputError
	require.ErrorAs(t, bad.Err, &merr)
	assert.Equal(t, "meta.csv", merr.Source)

	good := report.Files[1]
	require.True(t, good.OK())
	require.Len(t, good.Spectra, 1)
	assert.Equal(t, 4, good.Spectra[0].Len())

	assert.Equal(t, 1, report.Succeeded())
	assert.Len(t, report.Failed(), 1)
	require.Len(t, report.Display, 1)
	assert.Equal(t, "good", report.Display[0].Label)
	assert.Empty(t, report.Rows)
	require.NotNil(t, report.Model)
	assert.Equal(t, report.RunID, report.Model.RunID)
	assert.NotEmpty(t, report.RunID)
}

func TestRunPreservesUploadOrder(t *testing.T) {
	var inputs []Input
	for i := 0; i < 25; i++ {
		data := fmt.Sprintf("4000,%d\n3000,%d.5\n2000,%d\n", i, i, i)
		inputs = append(inputs, Input{Name: fmt.Sprintf("s%02d.csv", i), Data: []byte(data)})
	}

	opts := defaultOptions()
	opts.Aligner.Mode = align.Stacked
	opts.Workers = 8

	report, err := Run(context.Background(), inputs, opts)
	require.NoError(t, err)
	require.Len(t, report.Display, 25)

	step := opts.Aligner.StepFor([]*core.Spectrum{report.Display[0].Spectrum})
	for i, ds := range report.Display {
		assert.Equal(t, fmt.Sprintf("s%02d", i), ds.Label)
		assert.InDelta(t, float64(i)*step, ds.Offset, 1e-9)
		assert.Equal(t, report.Files[i].Source, ds.Spectrum.ID)
	}
}

func TestRunEmptyBatch(t *testing.T) {
	inputs := []Input{
		{Name: "a.csv", Data: []byte(metadataOnly)},
		{Name: "b.csv", Data: nil},
	}

	report, err := Run(context.Background(), inputs, defaultOptions())
	var eerr *core.EmptyBatchError
	require.ErrorAs(t, err, &eerr)
	assert.Equal(t, 2, eerr.Attempted)
	require.NotNil(t, report)
	assert.Len(t, report.Failed(), 2)
	assert.Nil(t, report.Model)
}

func TestRunNoInputs(t *testing.T) {
	_, err := Run(context.Background(), nil, defaultOptions())
	var eerr *core.EmptyBatchError
	assert.ErrorAs(t, err, &eerr)
}

func TestRunRangeError(t *testing.T) {
	opts := defaultOptions()
	opts.Range = filter.Config{MinWavenumber: 400, MaxWavenumber: 1500}

	inputs := []Input{
		{Name: "narrow.csv", Data: []byte("4000,1\n3000,2\n1000,3\n")},
		{Name: "wide.csv", Data: []byte("1400,1\n1000,0.5\n800,1\n500,0.9\n")},
	}
	report, err := Run(context.Background(), inputs, opts)
	require.NoError(t, err)

	var rerr *core.RangeError
	require.ErrorAs(t, report.Files[0].Err, &rerr)
	assert.Equal(t, 1, rerr.Kept)
	assert.True(t, report.Files[1].OK())
}

func TestRunNormalizesAndDetects(t *testing.T) {
	opts := defaultOptions()
	opts.Normalize = true
	opts.Peaks = peaks.Config{MinProminence: 0.02, Polarity: peaks.Minima}

	inputs := []Input{{Name: "film.csv", Data: []byte(validCSV)}}
	report, err := Run(context.Background(), inputs, opts)
	require.NoError(t, err)

	spec := report.Display[0].Spectrum
	assert.True(t, spec.Normalized)
	lo, hi := spec.IntensityRange()
	assert.Equal(t, 0.0, lo)
	assert.Equal(t, 1.0, hi)

	require.Len(t, report.Rows, 1)
	assert.Equal(t, core.BandRow{Series: "film", SpectrumID: "film.csv", SourceFile: "film.csv", Wavenumber: 3000, Intensity: 0}, report.Rows[0])
	require.Len(t, report.Model.Series[0].Markers, 1)
}

func TestRunJCAMPMultiBlock(t *testing.T) {
	opts := defaultOptions()
	opts.Peaks = peaks.Config{Polarity: peaks.Minima}

	inputs := []Input{
		{Name: "pair.jdx", Data: []byte(jcampTwoBlocks)},
		{Name: "after.csv", Data: []byte(validCSV)},
	}
	report, err := Run(context.Background(), inputs, opts)
	require.NoError(t, err)

	require.Len(t, report.Files[0].Spectra, 2)
	require.Len(t, report.Display, 3)
	assert.Equal(t, "pair.jdx", report.Display[0].Spectrum.ID)
	assert.Equal(t, "pair.jdx#2", report.Display[1].Spectrum.ID)
	assert.Equal(t, "after.csv", report.Display[2].Spectrum.ID)
	require.Len(t, report.Bands, 3)
	assert.Len(t, report.Bands[0], 1)

	// Rows for the second block name the uploaded file, not the block id.
	require.Len(t, report.Rows, 3)
	assert.Equal(t, "pair.jdx#2", report.Rows[1].SpectrumID)
	assert.Equal(t, "pair.jdx", report.Rows[1].SourceFile)
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, []Input{{Name: "a.csv", Data: []byte(validCSV)}}, defaultOptions())
	assert.ErrorIs(t, err, context.Canceled)
}

type fakeRecorder struct {
	mu      sync.Mutex
	files   map[string]int
	errors  map[string]int
	spectra int
	bands   int
	batches int
}

func (f *fakeRecorder) RecordFile(format, status string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.files[format+"/"+status]++
}

func (f *fakeRecorder) RecordFileError(errorType string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errors[errorType]++
}

func (f *fakeRecorder) RecordSpectrum(int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.spectra++
}

func (f *fakeRecorder) RecordBands(_ string, count int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bands += count
}

func (f *fakeRecorder) RecordBatchDuration(float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batches++
}

func TestRunRecordsMetrics(t *testing.T) {
	rec := &fakeRecorder{files: map[string]int{}, errors: map[string]int{}}
	opts := defaultOptions()
	opts.Metrics = rec
	opts.Peaks = peaks.Config{Polarity: peaks.Minima}

	inputs := []Input{
		{Name: "good.csv", Data: []byte(validCSV)},
		{Name: "bad.csv", Data: []byte(metadataOnly)},
		{Name: "pair.jdx", Data: []byte(jcampTwoBlocks)},
	}
	_, err := Run(context.Background(), inputs, opts)
	require.NoError(t, err)

	assert.Equal(t, 1, rec.files["xy/ok"])
	assert.Equal(t, 1, rec.files["xy/error"])
	assert.Equal(t, 1, rec.files["jcamp/ok"])
	assert.Equal(t, 1, rec.errors["malformed"])
	assert.Equal(t, 3, rec.spectra)
	assert.Equal(t, 3, rec.bands)
	assert.Equal(t, 1, rec.batches)
}

func TestRunUnreadableInput(t *testing.T) {
	rec := &fakeRecorder{files: map[string]int{}, errors: map[string]int{}}
	opts := defaultOptions()
	opts.Metrics = rec

	readErr := fmt.Errorf("failed to read gone.csv: %w", &fs.PathError{Op: "open", Path: "gone.csv", Err: fs.ErrNotExist})
	inputs := []Input{
		{Name: "gone.csv", Err: readErr},
		{Name: "good.csv", Data: []byte(validCSV)},
	}
	report, err := Run(context.Background(), inputs, opts)
	require.NoError(t, err)

	require.Len(t, report.Files, 2)
	assert.Equal(t, 1, report.Succeeded())
	failed := report.Failed()
	require.Len(t, failed, 1)
	assert.Equal(t, "gone.csv", failed[0].Source)
	assert.ErrorIs(t, failed[0].Err, fs.ErrNotExist)
	assert.Equal(t, 1, rec.errors["io"])

	// Alone, the unreadable file is still counted as attempted.
	_, err = Run(context.Background(), inputs[:1], defaultOptions())
	var eerr *core.EmptyBatchError
	require.ErrorAs(t, err, &eerr)
	assert.Equal(t, 1, eerr.Attempted)
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{"film.jdx", "", "jcamp"},
		{"FILM.DX", "", "jcamp"},
		{"export.txt", "\n  ##TITLE= x\n", "jcamp"},
		{"export.csv", "4000,1\n", "xy"},
		{"noext", "Instrument: X\n", "xy"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, DetectFormat(tt.name, []byte(tt.data)), tt.name)
	}
}

func TestParseUnknownFormat(t *testing.T) {
	_, err := Parse(Input{Name: "x.bin"}, "spc", defaultOptions().Reader)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "unsupported format"))
}
