package core

import "fmt"

// MalformedInputError reports a file that could not be turned into a spectrum.
// It is scoped to a single file and never aborts a batch.
type MalformedInputError struct {
	Source string
	Line   int // 1-based line number, 0 when the error is not tied to a line
	Reason string
}

func (e *MalformedInputError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("malformed input %s: line %d: %s", e.Source, e.Line, e.Reason)
	}
	return fmt.Sprintf("malformed input %s: %s", e.Source, e.Reason)
}

// RangeError reports a spectrum with too few samples inside the selected
// wavenumber window.
type RangeError struct {
	Source   string
	Min, Max float64
	Kept     int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%s has %d samples between %.1f and %.1f cm-1, need at least 2",
		e.Source, e.Kept, e.Min, e.Max)
}

// EmptyBatchError is returned when no file in a batch produced a usable spectrum.
type EmptyBatchError struct {
	Attempted int
}

func (e *EmptyBatchError) Error() string {
	return fmt.Sprintf("no valid spectra in batch of %d file(s)", e.Attempted)
}
