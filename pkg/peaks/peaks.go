// Package peaks finds absorption bands in a spectrum.
//
// A band is a strict local extremum whose prominence reaches a threshold. Bands
// closer than a minimum spacing compete and the more intense one wins.
package peaks

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/ChrisMcGann/FTIRKit/pkg/core"
)

// Polarity selects which extrema are reported.
type Polarity int

const (
	// Maxima reports intensity peaks (absorbance spectra).
	Maxima Polarity = iota
	// Minima reports intensity valleys (transmittance spectra).
	Minima
)

func (p Polarity) String() string {
	switch p {
	case Maxima:
		return "maxima"
	case Minima:
		return "minima"
	default:
		return fmt.Sprintf("Polarity(%d)", int(p))
	}
}

// ParsePolarity accepts "maxima" or "minima" and their common aliases.
func ParsePolarity(s string) (Polarity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "maxima", "max", "peaks", "absorbance", "":
		return Maxima, nil
	case "minima", "min", "valleys", "transmittance":
		return Minima, nil
	default:
		return Maxima, fmt.Errorf("invalid polarity %q, must be maxima or minima", s)
	}
}

// DefaultMinProminence is the threshold used when none is configured. Normalized
// spectra live in [0,1] and need a much smaller value than raw %T data.
func DefaultMinProminence(normalized bool) float64 {
	if normalized {
		return 0.02
	}
	return 0.5
}

// Config holds the detection parameters.
type Config struct {
	MinProminence float64 // Minimum drop to the higher valley, intensity units
	MinSpacing    float64 // Minimum distance between bands, cm-1
	Polarity      Polarity
}

// Validate checks the parameters
func (c *Config) Validate() error {
	if c.MinProminence < 0 || math.IsNaN(c.MinProminence) {
		return fmt.Errorf("minimum prominence must be non-negative, got %g", c.MinProminence)
	}
	if c.MinSpacing < 0 || math.IsNaN(c.MinSpacing) {
		return fmt.Errorf("minimum spacing must be non-negative, got %g", c.MinSpacing)
	}
	if c.Polarity != Maxima && c.Polarity != Minima {
		return fmt.Errorf("unknown polarity %d", int(c.Polarity))
	}
	return nil
}

// candidate is a local extremum in polarity space.
type candidate struct {
	index      int
	value      float64
	prominence float64
}

// Detect returns the bands of spec ordered by ascending wavenumber. A spectrum
// with fewer than three samples has no interior points and yields an empty,
// non-nil slice.
func (c *Config) Detect(spec *core.Spectrum) []core.Band {
	bands := []core.Band{}
	if spec == nil || spec.Len() < 3 {
		return bands
	}

	values := spec.Intensities()
	if c.Polarity == Minima {
		for i := range values {
			values[i] = -values[i]
		}
	}

	var candidates []candidate
	for i := 1; i < len(values)-1; i++ {
		if values[i] <= values[i-1] || values[i] <= values[i+1] {
			continue
		}
		p := prominence(values, i)
		if p >= c.MinProminence {
			candidates = append(candidates, candidate{index: i, value: values[i], prominence: p})
		}
	}

	for _, cand := range c.enforceSpacing(spec, candidates) {
		smp := spec.Samples[cand.index]
		bands = append(bands, core.Band{
			SpectrumID: spec.ID,
			Wavenumber: smp.Wavenumber,
			Intensity:  smp.Intensity,
			Prominence: cand.prominence,
			Index:      cand.index,
		})
	}

	sort.Slice(bands, func(i, j int) bool {
		return bands[i].Wavenumber < bands[j].Wavenumber
	})
	return bands
}

// prominence walks outward from peak on each side until a strictly higher
// sample or the series edge. The valley on a side is the lowest sample walked;
// prominence is the height above the higher of the two valleys.
func prominence(values []float64, peak int) float64 {
	height := values[peak]

	leftMin := height
	for i := peak - 1; i >= 0; i-- {
		if values[i] > height {
			break
		}
		if values[i] < leftMin {
			leftMin = values[i]
		}
	}

	rightMin := height
	for i := peak + 1; i < len(values); i++ {
		if values[i] > height {
			break
		}
		if values[i] < rightMin {
			rightMin = values[i]
		}
	}

	return height - math.Max(leftMin, rightMin)
}

// enforceSpacing accepts candidates from most to least intense, ties going to
// the lower sample index, and drops any candidate within MinSpacing of one
// already accepted. Equal wavenumbers always conflict.
func (c *Config) enforceSpacing(spec *core.Spectrum, candidates []candidate) []candidate {
	ranked := make([]candidate, len(candidates))
	copy(ranked, candidates)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].value != ranked[j].value {
			return ranked[i].value > ranked[j].value
		}
		return ranked[i].index < ranked[j].index
	})

	accepted := make([]candidate, 0, len(ranked))
	for _, cand := range ranked {
		wn := spec.Samples[cand.index].Wavenumber
		tooClose := false
		for _, kept := range accepted {
			d := math.Abs(wn - spec.Samples[kept.index].Wavenumber)
			if d == 0 || d < c.MinSpacing {
				tooClose = true
				break
			}
		}
		if !tooClose {
			accepted = append(accepted, cand)
		}
	}
	return accepted
}
