package view

import (
	"fmt"
	"math"

	"github.com/ChrisMcGann/FTIRKit/pkg/core"
)

// Options controls the presentation of a figure.
type Options struct {
	XLabel         string
	YLabel         string
	MinWavenumber  float64 // Fixed x limits; 0 uses the data extent
	MaxWavenumber  float64
	AxisFontSize   float64
	LegendFontSize float64
	LegendLocation string
	LineWidth      float64
	Width, Height  float64 // inches
	DPI            int
	BandMarkers    bool
}

// DefaultOptions returns the publication look: 10x6 in at 300 DPI, axis font
// 12, legend font 9, 1.2 pt lines.
func DefaultOptions() Options {
	return Options{
		XLabel:         "Wavenumber (cm-1)",
		YLabel:         "Transmittance (a.u.)",
		AxisFontSize:   12,
		LegendFontSize: 9,
		LegendLocation: LegendBest,
		LineWidth:      1.2,
		Width:          10,
		Height:         6,
		DPI:            300,
		BandMarkers:    true,
	}
}

// Build maps display spectra and their bands to a Model. bands[i] belongs to
// display[i] and may be shorter than display.
func Build(display []core.DisplaySpectrum, bands [][]core.Band, opts Options) *Model {
	m := &Model{
		Figure: Figure{Width: opts.Width, Height: opts.Height, DPI: opts.DPI},
		XAxis: Axis{
			Label:      opts.XLabel,
			Inverted:   true,
			TickLabels: true,
			FontSize:   opts.AxisFontSize,
		},
		YAxis: Axis{
			Label:    opts.YLabel,
			FontSize: opts.AxisFontSize,
		},
		Spines: Spines{Bottom: true, Left: true},
		Legend: Legend{
			Location: opts.LegendLocation,
			FontSize: opts.LegendFontSize,
		},
		Series: make([]Series, 0, len(display)),
	}
	if m.Legend.Location == "" {
		m.Legend.Location = LegendBest
	}

	xLo, xHi := math.Inf(1), math.Inf(-1)
	yLo, yHi := math.Inf(1), math.Inf(-1)

	for i, ds := range display {
		s := Series{
			Label:      ds.Label,
			SpectrumID: ds.Spectrum.ID,
			Color:      ds.Color,
			LineStyle:  ds.LineStyle,
			LineWidth:  opts.LineWidth,
			Offset:     ds.Offset,
			Points:     make([]Point, len(ds.Spectrum.Samples)),
		}
		for j, smp := range ds.Spectrum.Samples {
			p := Point{X: smp.Wavenumber, Y: smp.Intensity + ds.Offset}
			s.Points[j] = p
			xLo, xHi = math.Min(xLo, p.X), math.Max(xHi, p.X)
			yLo, yHi = math.Min(yLo, p.Y), math.Max(yHi, p.Y)
		}

		if opts.BandMarkers && i < len(bands) {
			for _, b := range bands[i] {
				s.Markers = append(s.Markers, Marker{
					X:    b.Wavenumber,
					Y:    b.Intensity + ds.Offset,
					Text: fmt.Sprintf("%.0f", b.Wavenumber),
				})
			}
		}

		m.Series = append(m.Series, s)
	}

	if !math.IsInf(xLo, 1) {
		m.XAxis.Min, m.XAxis.Max = xLo, xHi
		m.YAxis.Min, m.YAxis.Max = yLo, yHi
	}
	if opts.MinWavenumber > 0 {
		m.XAxis.Min = opts.MinWavenumber
	}
	if opts.MaxWavenumber > 0 {
		m.XAxis.Max = opts.MaxWavenumber
	}

	return m
}
