// Package sqlite writes processed spectra and their bands to a SQLite results
// database
package sqlite

import (
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/ChrisMcGann/FTIRKit/pkg/core"
	_ "github.com/mattn/go-sqlite3"
)

const (
	// Date format for HeaderTable (ISO 8601)
	headerDateFormat = "2006-01-02"
	schemaVersion    = 1
)

// Writer handles writing one batch run to a SQLite database file
type Writer struct {
	db           *sql.DB
	outputPath   string
	runID        string
	spectrumStmt *sql.Stmt
	bandStmt     *sql.Stmt
	spectrumID   int
	bandCount    int
}

// NewWriter creates a new SQLite writer. runID tags every row so several runs
// can share one file.
func NewWriter(outputPath, runID string) (*Writer, error) {
	db, err := sql.Open("sqlite3", outputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	w := &Writer{
		db:         db,
		outputPath: outputPath,
		runID:      runID,
	}

	if err := w.createTables(); err != nil {
		db.Close()
		return nil, err
	}

	if err := w.db.QueryRow(`SELECT COALESCE(MAX(SpectrumId), 0) FROM SpectrumTable`).Scan(&w.spectrumID); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to read last spectrum id: %w", err)
	}
	w.spectrumID++

	if err := w.prepareStatements(); err != nil {
		db.Close()
		return nil, err
	}

	return w, nil
}

// createTables creates the required database schema
func (w *Writer) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS SpectrumTable (
		SpectrumId INTEGER PRIMARY KEY,
		RunId TEXT NOT NULL,
		Source TEXT NOT NULL,
		Label TEXT,
		SourceFormat TEXT,
		Normalized BOOL,
		DisplayOffset DOUBLE,
		Color TEXT,
		LineStyle TEXT,
		NPoints INTEGER,
		MinWavenumber DOUBLE,
		MaxWavenumber DOUBLE,
		blobWavenumber BLOB,
		blobIntensity BLOB,
		Metadata TEXT
	);

	CREATE TABLE IF NOT EXISTS BandTable (
		BandId INTEGER PRIMARY KEY AUTOINCREMENT,
		SpectrumId INTEGER REFERENCES SpectrumTable(SpectrumId),
		Wavenumber DOUBLE,
		Intensity DOUBLE,
		Prominence DOUBLE,
		SampleIndex INTEGER
	);

	CREATE TABLE IF NOT EXISTS HeaderTable (
		version INTEGER NOT NULL DEFAULT 0,
		RunId TEXT,
		CreationDate TEXT,
		SpectrumCount INTEGER,
		BandCount INTEGER,
		Description TEXT
	);
	`

	_, err := w.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}

	return nil
}

// prepareStatements prepares SQL statements for batch insertion
func (w *Writer) prepareStatements() error {
	var err error

	w.spectrumStmt, err = w.db.Prepare(`
		INSERT INTO SpectrumTable (
			SpectrumId, RunId, Source, Label, SourceFormat, Normalized,
			DisplayOffset, Color, LineStyle, NPoints, MinWavenumber,
			MaxWavenumber, blobWavenumber, blobIntensity, Metadata
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare spectrum statement: %w", err)
	}

	w.bandStmt, err = w.db.Prepare(`
		INSERT INTO BandTable (SpectrumId, Wavenumber, Intensity, Prominence, SampleIndex)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare band statement: %w", err)
	}

	return nil
}

// WriteSpectrum writes one displayed spectrum and its bands
func (w *Writer) WriteSpectrum(ds core.DisplaySpectrum, bands []core.Band) error {
	spec := ds.Spectrum

	var metadata interface{} = nil
	if len(spec.Metadata) > 0 {
		raw, err := json.Marshal(spec.Metadata)
		if err != nil {
			return fmt.Errorf("failed to encode metadata of %s: %w", spec.ID, err)
		}
		metadata = string(raw)
	}

	lo, hi := spec.WavenumberRange()

	_, err := w.spectrumStmt.Exec(
		w.spectrumID,                      // SpectrumId
		w.runID,                           // RunId
		spec.ID,                           // Source
		ds.Label,                          // Label
		spec.SourceFormat,                 // SourceFormat
		spec.Normalized,                   // Normalized
		ds.Offset,                         // DisplayOffset
		ds.Color,                          // Color
		ds.LineStyle,                      // LineStyle
		spec.Len(),                        // NPoints
		lo,                                // MinWavenumber
		hi,                                // MaxWavenumber
		EncodeFloat64(spec.Wavenumbers()), // blobWavenumber
		EncodeFloat64(spec.Intensities()), // blobIntensity
		metadata,                          // Metadata
	)
	if err != nil {
		return fmt.Errorf("failed to insert spectrum %s: %w", spec.ID, err)
	}

	for _, b := range bands {
		if _, err := w.bandStmt.Exec(w.spectrumID, b.Wavenumber, b.Intensity, b.Prominence, b.Index); err != nil {
			return fmt.Errorf("failed to insert band %.2f of %s: %w", b.Wavenumber, spec.ID, err)
		}
	}

	w.spectrumID++
	w.bandCount += len(bands)
	return nil
}

// EncodeFloat64 encodes values as a little-endian float64 blob
func EncodeFloat64(values []float64) []byte {
	buf := make([]byte, len(values)*8)
	for i, v := range values {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(v))
	}
	return buf
}

// DecodeFloat64 is the inverse of EncodeFloat64
func DecodeFloat64(blob []byte) ([]float64, error) {
	if len(blob)%8 != 0 {
		return nil, fmt.Errorf("blob length %d is not a multiple of 8", len(blob))
	}
	out := make([]float64, len(blob)/8)
	for i := range out {
		out[i] = math.Float64frombits(binary.LittleEndian.Uint64(blob[i*8:]))
	}
	return out, nil
}

// Finalize writes the header row for this run and closes the database
func (w *Writer) Finalize(description string) error {
	_, err := w.db.Exec(`
		INSERT INTO HeaderTable (version, RunId, CreationDate, SpectrumCount, BandCount, Description)
		VALUES (?, ?, ?, ?, ?, ?)
	`, schemaVersion, w.runID, time.Now().Format(headerDateFormat), w.written(), w.bandCount, description)
	if err != nil {
		return fmt.Errorf("failed to insert header: %w", err)
	}

	return w.Close()
}

// Close closes the statements and the database without writing a header
func (w *Writer) Close() error {
	if w.spectrumStmt != nil {
		w.spectrumStmt.Close()
	}
	if w.bandStmt != nil {
		w.bandStmt.Close()
	}

	if err := w.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	return nil
}

// written counts the spectra this writer inserted
func (w *Writer) written() int {
	var n int
	if err := w.db.QueryRow(`SELECT COUNT(*) FROM SpectrumTable WHERE RunId = ?`, w.runID).Scan(&n); err != nil {
		return 0
	}
	return n
}
