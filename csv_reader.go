package rdata

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// A CSVReader specifies how a data set in CSV format can be read from
// a text file.
type CSVReader struct {

	// Skip this number of rows before reading the header.
	SkipRows int

	// If true, there is a header to read, otherwise default column names are used
	HasHeader bool

	// Cells equal to one of these strings are missing.  Empty cells
	// are always missing in float64 columns.
	NAStrings []string

	// The column names, in the order that they appear in the
	// file.  Can be set by caller.
	ColumnNames []string

	// User-specified data types (maps column name to type name).
	// Recognized types are "float64", "int32" and "string".
	TypeHintsName map[string]string

	// User-specified data types (indexed by column number).
	TypeHintsPos []string

	// The data type for each column.
	DataTypes []string

	// Has the init method been run yet?
	initRun bool

	// Cached lines
	lines [][]string

	// The underlying csv Reader object
	csvreader *csv.Reader

	// Rows returned so far.
	rowsRead int
}

// NewCSVReader returns a CSVReader that reads CSV data from the given io.reader,
// with type inference and chunking.
func NewCSVReader(r io.Reader) *CSVReader {

	rdr := new(CSVReader)
	rdr.HasHeader = true
	rdr.NAStrings = []string{"NA"}

	rdr.csvreader = csv.NewReader(r)
	rdr.csvreader.FieldsPerRecord = -1

	return rdr
}

// ReadCSVTable reads a whole CSV file into a table with the given
// name.  hints maps column names to data types.
func ReadCSVTable(r io.Reader, name string, hints map[string]string) (*Table, error) {

	rdr := NewCSVReader(r)
	rdr.TypeHintsName = hints

	cols, err := rdr.Read(-1)
	if err == io.EOF {
		// Header only.
		cols = rdr.emptyColumns()
	} else if err != nil {
		return nil, err
	}

	return NewTable(name, cols)
}

func (rdr *CSVReader) getColumnNames() {

	if rdr.HasHeader {
		rdr.ColumnNames = rdr.lines[0]
		rdr.lines = rdr.lines[1:]
		return
	}

	// Default names
	m := len(rdr.lines[0])
	rdr.ColumnNames = make([]string, m)
	for k := 0; k < m; k++ {
		rdr.ColumnNames[k] = fmt.Sprintf("Column %d", k+1)
	}
}

func (rdr *CSVReader) isNA(s string) bool {
	for _, na := range rdr.NAStrings {
		if s == na {
			return true
		}
	}
	return false
}

func (rdr *CSVReader) sniffTypes() {

	nFloats, nObs := rdr.countFloats()

	rdr.DataTypes = make([]string, len(rdr.ColumnNames))
	for j, col := range rdr.ColumnNames {

		// Check for a type hint
		t := "infer"
		if tm, ok := rdr.TypeHintsName[col]; ok {
			t = tm
		} else if len(rdr.TypeHintsPos) >= j+1 && rdr.TypeHintsPos[j] != "" {
			t = rdr.TypeHintsPos[j]
		}

		switch {
		case t != "infer":
			rdr.DataTypes[j] = t
		case j < len(nObs) && nFloats[j] == nObs[j] && nObs[j] > 0:
			rdr.DataTypes[j] = "float64"
		default:
			rdr.DataTypes[j] = "string"
		}
	}
}

// init reads up to 100 lines to find the column names and types.
func (rdr *CSVReader) init() error {

	rdr.lines = make([][]string, 0, 100)
	for k := 0; k < 100+rdr.SkipRows; k++ {
		v, err := rdr.csvreader.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			return err
		}
		if k >= rdr.SkipRows {
			rdr.lines = append(rdr.lines, v)
		}
	}

	if len(rdr.lines) == 0 {
		return fmt.Errorf("file appears to be empty")
	}

	if rdr.ColumnNames == nil {
		rdr.getColumnNames()
	}

	if rdr.DataTypes == nil {
		rdr.sniffTypes()
	}

	rdr.initRun = true

	return nil
}

func (rdr *CSVReader) emptyColumns() []*Series {
	cols := make([]*Series, len(rdr.ColumnNames))
	for j, name := range rdr.ColumnNames {
		var data interface{}
		switch rdr.DataTypes[j] {
		case "float64":
			data = []float64{}
		case "int32":
			data = []int32{}
		default:
			data = []string{}
		}
		cols[j], _ = NewSeries(name, data, []bool{})
	}
	return cols
}

// Read reads up lines rows of data and returns the results as an
// array of Series objects.  If lines is negative the whole file is
// read.  Data types of the Series objects are inferred from the file.
// Use type hints in the CSVReader struct to control the types
// directly.  When no rows remain Read returns nil, io.EOF.
func (rdr *CSVReader) Read(lines int) ([]*Series, error) {

	if !rdr.initRun {
		if err := rdr.init(); err != nil {
			return nil, err
		}
	}

	ncol := len(rdr.ColumnNames)
	floats := make([][]float64, ncol)
	ints := make([][]int32, ncol)
	strs := make([][]string, ncol)
	miss := make([][]bool, ncol)

	nread := 0
	for lines < 0 || nread < lines {

		var line []string
		if len(rdr.lines) > 0 {
			line = rdr.lines[0]
			rdr.lines = rdr.lines[1:]
		} else {
			var err error
			line, err = rdr.csvreader.Read()
			if err == io.EOF {
				break
			} else if err != nil {
				return nil, err
			}
		}

		for j := 0; j < ncol; j++ {
			cell := ""
			present := j < len(line)
			if present {
				cell = line[j]
			}
			switch rdr.DataTypes[j] {
			case "float64":
				x, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
				floats[j] = append(floats[j], x)
				miss[j] = append(miss[j], !present || err != nil)
			case "int32":
				x, err := strconv.ParseInt(strings.TrimSpace(cell), 10, 32)
				ints[j] = append(ints[j], int32(x))
				miss[j] = append(miss[j], !present || err != nil)
			default:
				strs[j] = append(strs[j], cell)
				miss[j] = append(miss[j], !present || rdr.isNA(cell))
			}
		}
		nread++
	}

	if nread == 0 {
		return nil, io.EOF
	}
	rdr.rowsRead += nread

	dataSeries := make([]*Series, ncol)
	for j := 0; j < ncol; j++ {
		var data interface{}
		switch rdr.DataTypes[j] {
		case "float64":
			data = floats[j]
		case "int32":
			data = ints[j]
		default:
			data = strs[j]
		}
		var err error
		dataSeries[j], err = NewSeries(rdr.ColumnNames[j], data, miss[j])
		if err != nil {
			return nil, err
		}
	}

	return dataSeries, nil
}

// countFloats returns the number of elements of each column of array
// that can be converted to float64 type.
func (rdr *CSVReader) countFloats() ([]int, []int) {

	// Find the longest record in the cache
	m := 0
	for _, v := range rdr.lines {
		if len(v) > m {
			m = len(v)
		}
	}

	numFloats := make([]int, m)
	numObs := make([]int, m)

	for _, x := range rdr.lines {
		for j, y := range x {
			y = strings.TrimSpace(y)
			// Skip blanks and NA
			if len(y) == 0 || rdr.isNA(y) {
				continue
			}
			numObs[j]++
			if _, err := strconv.ParseFloat(y, 64); err == nil {
				numFloats[j]++
			}
		}
	}

	return numFloats, numObs
}
