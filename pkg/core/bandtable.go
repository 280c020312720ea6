package core

// BandRow is one row of the band export table.
type BandRow struct {
	Series     string  // Display label
	SpectrumID string  // Source spectrum identity
	SourceFile string  // File the spectrum was read from
	Wavenumber float64 // Rounded to 2 decimals
	Intensity  float64 // Rounded to 4 decimals, without display offset
}

// BandTable flattens the bands of each display spectrum into export rows.
// bands[i] belongs to display[i]; rows keep series order, then wavenumber order.
func BandTable(display []DisplaySpectrum, bands [][]Band) []BandRow {
	var rows []BandRow
	for i, ds := range display {
		if i >= len(bands) {
			break
		}
		source := ds.Spectrum.SourceFile
		if source == "" {
			source = ds.Spectrum.ID
		}
		for _, b := range bands[i] {
			rows = append(rows, BandRow{
				Series:     ds.Label,
				SpectrumID: ds.Spectrum.ID,
				SourceFile: source,
				Wavenumber: RoundFloat(b.Wavenumber, 2),
				Intensity:  RoundFloat(b.Intensity, 4),
			})
		}
	}
	return rows
}
