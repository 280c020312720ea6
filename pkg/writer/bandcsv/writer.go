// Package bandcsv writes the detected band table as CSV
package bandcsv

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/ChrisMcGann/FTIRKit/pkg/core"
)

// Header is the first CSV record.
var Header = []string{"series", "wavenumber_cm-1", "intensity", "source_file"}

// Write writes rows to w with a header line. Wavenumbers keep 2 decimals and
// intensities 4, matching the rounding of core.BandTable.
func Write(w io.Writer, rows []core.BandRow) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, row := range rows {
		record := []string{
			row.Series,
			strconv.FormatFloat(row.Wavenumber, 'f', 2, 64),
			strconv.FormatFloat(row.Intensity, 'f', 4, 64),
			row.SourceFile,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("row %d: %w", i+1, err)
		}
	}

	cw.Flush()
	return cw.Error()
}
