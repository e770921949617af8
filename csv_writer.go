package rdata

import (
	"encoding/csv"
	"io"
)

// A CSVWriter writes Series data as CSV.
type CSVWriter struct {

	// Written for missing values.
	NAText string

	w *csv.Writer
}

// NewCSVWriter returns a CSVWriter writing to w.  Missing values are
// written as NA, which CSVReader reads back as missing.
func NewCSVWriter(w io.Writer) *CSVWriter {
	return &CSVWriter{NAText: "NA", w: csv.NewWriter(w)}
}

// WriteHeader writes the column names.
func (cw *CSVWriter) WriteHeader(names []string) error {
	return cw.w.Write(names)
}

// WriteChunk writes the rows of a chunk of columns of equal length.
func (cw *CSVWriter) WriteChunk(cols []*Series) error {

	if len(cols) == 0 {
		return nil
	}

	text := make([][]string, len(cols))
	for j, c := range cols {
		text[j] = c.ToString(cw.NAText).Data().([]string)
	}

	row := make([]string, len(cols))
	for i := 0; i < cols[0].Length(); i++ {
		for j := range cols {
			row[j] = text[j][i]
		}
		if err := cw.w.Write(row); err != nil {
			return err
		}
	}

	return nil
}

// Flush writes any buffered data to the underlying writer.
func (cw *CSVWriter) Flush() error {
	cw.w.Flush()
	return cw.w.Error()
}

// WriteCSV writes the whole table, header first.
func WriteCSV(w io.Writer, t *Table) error {

	cw := NewCSVWriter(w)
	if err := cw.WriteHeader(t.ColumnNames()); err != nil {
		return err
	}
	if err := cw.WriteChunk(t.Columns); err != nil {
		return err
	}

	return cw.Flush()
}
