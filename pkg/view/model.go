// Package view maps aligned spectra and their bands onto the plot description
// handed to the renderer and the image exporter.
//
// The model is plain data. Renderers draw exactly what it says and never
// recompute offsets, normalization or axis direction.
package view

import (
	"fmt"
	"strings"
)

// Legend locations understood by the renderer.
const (
	LegendBest       = "best"
	LegendUpperRight = "upper right"
	LegendUpperLeft  = "upper left"
	LegendLowerRight = "lower right"
	LegendNone       = "none"
)

var legendLocations = []string{LegendBest, LegendUpperRight, LegendUpperLeft, LegendLowerRight, LegendNone}

// Model is a complete, renderer-independent description of one figure.
type Model struct {
	RunID  string   `json:"run_id,omitempty" yaml:"run_id,omitempty"`
	Figure Figure   `json:"figure" yaml:"figure"`
	XAxis  Axis     `json:"x_axis" yaml:"x_axis"`
	YAxis  Axis     `json:"y_axis" yaml:"y_axis"`
	Grid   bool     `json:"grid" yaml:"grid"`
	Spines Spines   `json:"spines" yaml:"spines"`
	Legend Legend   `json:"legend" yaml:"legend"`
	Series []Series `json:"series" yaml:"series"`
}

// Figure holds the canvas size and export resolution.
type Figure struct {
	Width  float64 `json:"width_in" yaml:"width_in"`
	Height float64 `json:"height_in" yaml:"height_in"`
	DPI    int     `json:"dpi" yaml:"dpi"`
}

// Axis describes one plot axis. With Inverted set, Max is drawn at the left
// (or bottom) end.
type Axis struct {
	Label      string  `json:"label" yaml:"label"`
	Min        float64 `json:"min" yaml:"min"`
	Max        float64 `json:"max" yaml:"max"`
	Inverted   bool    `json:"inverted" yaml:"inverted"`
	TickLabels bool    `json:"tick_labels" yaml:"tick_labels"`
	FontSize   float64 `json:"font_size" yaml:"font_size"`
}

// Spines lists which frame edges are drawn.
type Spines struct {
	Top    bool `json:"top" yaml:"top"`
	Right  bool `json:"right" yaml:"right"`
	Bottom bool `json:"bottom" yaml:"bottom"`
	Left   bool `json:"left" yaml:"left"`
}

// Legend describes the series legend. Location LegendNone hides it.
type Legend struct {
	Location string  `json:"location" yaml:"location"`
	FontSize float64 `json:"font_size" yaml:"font_size"`
	Frame    bool    `json:"frame" yaml:"frame"`
}

// Visible reports whether the legend is drawn.
func (l Legend) Visible() bool {
	return l.Location != LegendNone
}

// Series is one drawn spectrum. Point and marker Y values already include
// Offset.
type Series struct {
	Label      string   `json:"label" yaml:"label"`
	SpectrumID string   `json:"spectrum_id" yaml:"spectrum_id"`
	Color      string   `json:"color" yaml:"color"`
	LineStyle  string   `json:"line_style" yaml:"line_style"`
	LineWidth  float64  `json:"line_width" yaml:"line_width"`
	Offset     float64  `json:"offset" yaml:"offset"`
	Points     []Point  `json:"points" yaml:"points"`
	Markers    []Marker `json:"markers,omitempty" yaml:"markers,omitempty"`
}

// Point is a vertex of a series line.
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Marker annotates a detected band.
type Marker struct {
	X    float64 `json:"x" yaml:"x"`
	Y    float64 `json:"y" yaml:"y"`
	Text string  `json:"text" yaml:"text"`
}

// ParseLegendLocation validates a legend location name.
func ParseLegendLocation(s string) (string, error) {
	loc := strings.ToLower(strings.TrimSpace(s))
	if loc == "" {
		return LegendBest, nil
	}
	for _, l := range legendLocations {
		if loc == l {
			return l, nil
		}
	}
	return "", fmt.Errorf("invalid legend location %q, must be one of %s", s, strings.Join(legendLocations, ", "))
}
