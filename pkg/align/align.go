// Package align places several spectra on a shared plot, either overlaid on
// one intensity axis or stacked with a vertical offset per spectrum.
package align

import (
	"fmt"
	"strings"

	"github.com/ChrisMcGann/FTIRKit/pkg/core"
)

// Mode selects how spectra share the intensity axis.
type Mode int

const (
	// Overlay draws every spectrum with zero offset.
	Overlay Mode = iota
	// Stacked shifts spectrum i up by i steps.
	Stacked
)

func (m Mode) String() string {
	switch m {
	case Overlay:
		return "overlay"
	case Stacked:
		return "stacked"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode accepts "overlay" or "stacked" (also "offset" and "stack").
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "overlay", "":
		return Overlay, nil
	case "stacked", "stack", "offset":
		return Stacked, nil
	default:
		return Overlay, fmt.Errorf("invalid display mode %q, must be overlay or stacked", s)
	}
}

// Aligner computes display offsets and styles.
type Aligner struct {
	Mode Mode
	// SpacingFactor scales the largest intensity range of the batch into the
	// stacked step. Values above 1 keep neighbouring spectra apart.
	SpacingFactor float64
	// Step, when positive, is used as the stacked step as-is.
	Step float64
	// Styles overrides labels, colors and line styles per file. May be nil.
	Styles *core.StyleTable
}

// Validate checks the stacked parameters.
func (a *Aligner) Validate() error {
	if a.Mode != Overlay && a.Mode != Stacked {
		return fmt.Errorf("unknown display mode %d", int(a.Mode))
	}
	if a.SpacingFactor < 0 {
		return fmt.Errorf("spacing factor must be non-negative, got %g", a.SpacingFactor)
	}
	if a.Step < 0 {
		return fmt.Errorf("step must be non-negative, got %g", a.Step)
	}
	if a.Mode == Stacked && a.Step == 0 && a.SpacingFactor == 0 {
		return fmt.Errorf("stacked mode needs a positive spacing factor or step")
	}
	return nil
}

// StepFor returns the stacked step for spectra. It is zero in overlay mode.
func (a *Aligner) StepFor(spectra []*core.Spectrum) float64 {
	if a.Mode != Stacked {
		return 0
	}
	if a.Step > 0 {
		return a.Step
	}

	globalRange := 0.0
	for _, spec := range spectra {
		lo, hi := spec.IntensityRange()
		if r := hi - lo; r > globalRange {
			globalRange = r
		}
	}
	// A batch of flat spectra still needs separation.
	if globalRange == 0 {
		globalRange = 1
	}
	return globalRange * a.SpacingFactor
}

// Align returns one DisplaySpectrum per input, in input order. Spectrum 0 sits
// at the bottom with offset 0.
func (a *Aligner) Align(spectra []*core.Spectrum) []core.DisplaySpectrum {
	step := a.StepFor(spectra)

	out := make([]core.DisplaySpectrum, len(spectra))
	for i, spec := range spectra {
		style := a.Styles.Resolve(spec, i)
		out[i] = core.DisplaySpectrum{
			Spectrum:  spec,
			Offset:    float64(i) * step,
			Label:     style.Label,
			Color:     style.Color,
			LineStyle: style.LineStyle,
		}
	}
	return out
}
