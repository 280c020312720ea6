package view

import (
	"testing"

	"github.com/ChrisMcGann/FTIRKit/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDisplay() []core.DisplaySpectrum {
	a := &core.Spectrum{ID: "a.csv", Samples: []core.Sample{
		{Wavenumber: 3000, Intensity: 0.9},
		{Wavenumber: 2000, Intensity: 0.2},
		{Wavenumber: 1000, Intensity: 0.8},
	}}
	b := &core.Spectrum{ID: "b.csv", Samples: []core.Sample{
		{Wavenumber: 3500, Intensity: 0.5},
		{Wavenumber: 1500, Intensity: 0.25},
		{Wavenumber: 500, Intensity: 0.75},
	}}
	return []core.DisplaySpectrum{
		{Spectrum: a, Offset: 0, Label: "a", Color: "#1f77b4", LineStyle: "-"},
		{Spectrum: b, Offset: 2, Label: "Sample B", Color: "#ff7f0e", LineStyle: "--"},
	}
}

func TestBuildPublicationLook(t *testing.T) {
	m := Build(testDisplay(), nil, DefaultOptions())

	assert.True(t, m.XAxis.Inverted)
	assert.True(t, m.XAxis.TickLabels)
	assert.False(t, m.YAxis.TickLabels)
	assert.False(t, m.Grid)
	assert.Equal(t, Spines{Bottom: true, Left: true}, m.Spines)
	assert.Equal(t, 300, m.Figure.DPI)
	assert.Equal(t, 12.0, m.XAxis.FontSize)
	assert.Equal(t, Legend{Location: LegendBest, FontSize: 9}, m.Legend)
	assert.True(t, m.Legend.Visible())
}

func TestBuildSeries(t *testing.T) {
	m := Build(testDisplay(), nil, DefaultOptions())
	require.Len(t, m.Series, 2)

	a, b := m.Series[0], m.Series[1]
	assert.Equal(t, "a", a.Label)
	assert.Equal(t, "a.csv", a.SpectrumID)
	assert.Equal(t, 1.2, a.LineWidth)
	assert.Equal(t, []Point{{3000, 0.9}, {2000, 0.2}, {1000, 0.8}}, a.Points)

	assert.Equal(t, "Sample B", b.Label)
	assert.Equal(t, "--", b.LineStyle)
	assert.Equal(t, 2.0, b.Offset)
	assert.Equal(t, []Point{{3500, 2.5}, {1500, 2.25}, {500, 2.75}}, b.Points)

	// Data extent when no range is configured.
	assert.Equal(t, 500.0, m.XAxis.Min)
	assert.Equal(t, 3500.0, m.XAxis.Max)
	assert.Equal(t, 0.2, m.YAxis.Min)
	assert.Equal(t, 2.75, m.YAxis.Max)
}

func TestBuildMarkersIncludeOffset(t *testing.T) {
	display := testDisplay()
	bands := [][]core.Band{
		{{SpectrumID: "a.csv", Wavenumber: 3000, Intensity: 0.9, Index: 0}},
		{{SpectrumID: "b.csv", Wavenumber: 1500.4, Intensity: 0.25, Index: 1}},
	}

	m := Build(display, bands, DefaultOptions())
	require.Len(t, m.Series[1].Markers, 1)
	assert.Equal(t, Marker{X: 1500.4, Y: 2.25, Text: "1500"}, m.Series[1].Markers[0])

	opts := DefaultOptions()
	opts.BandMarkers = false
	m = Build(display, bands, opts)
	assert.Empty(t, m.Series[0].Markers)
}

func TestBuildConfiguredRange(t *testing.T) {
	opts := DefaultOptions()
	opts.MinWavenumber = 400
	opts.MaxWavenumber = 4000
	opts.LegendLocation = LegendNone

	m := Build(testDisplay(), nil, opts)
	assert.Equal(t, 400.0, m.XAxis.Min)
	assert.Equal(t, 4000.0, m.XAxis.Max)
	assert.False(t, m.Legend.Visible())
}

func TestBuildDoesNotReorderPoints(t *testing.T) {
	spec := &core.Spectrum{ID: "asc.csv", Samples: []core.Sample{
		{Wavenumber: 100, Intensity: 1},
		{Wavenumber: 200, Intensity: 2},
	}}
	m := Build([]core.DisplaySpectrum{{Spectrum: spec}}, nil, DefaultOptions())
	assert.Equal(t, []Point{{100, 1}, {200, 2}}, m.Series[0].Points)
}

func TestBuildEmpty(t *testing.T) {
	m := Build(nil, nil, Options{})
	assert.NotNil(t, m.Series)
	assert.Empty(t, m.Series)
	assert.Equal(t, LegendBest, m.Legend.Location)
	assert.Zero(t, m.XAxis.Min)
	assert.Zero(t, m.XAxis.Max)
}

func TestParseLegendLocation(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"best", LegendBest, false},
		{"Upper Right", LegendUpperRight, false},
		{"", LegendBest, false},
		{"none", LegendNone, false},
		{"center", "", true},
	}

	for _, tt := range tests {
		got, err := ParseLegendLocation(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}
