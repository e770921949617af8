package rdata

import (
	"fmt"
)

// A Table is a named data set: an ordered list of columns of equal
// length.  It is the Go form of an R data frame.
type Table struct {

	// The name the table is stored under in its file.
	Name string

	// The columns, in order.
	Columns SeriesArray

	// Character row names, or nil when the rows are unnamed.
	RowNames []string

	// Number of rows, needed for tables without columns.
	nrow int

	// Attributes of the data frame other than names and row.names,
	// e.g. class c("tbl_df", "tbl", "data.frame").
	attr []pairNode
}

// NewTable returns a table holding the given columns, which must all
// have the same length.
func NewTable(name string, cols []*Series) (*Table, error) {

	t := &Table{Name: name}
	for j, c := range cols {
		if j > 0 && c.Length() != t.nrow {
			return nil, fmt.Errorf("column %s has %d rows, expected %d: %w",
				c.Name, c.Length(), t.nrow, ErrLengthMismatch)
		}
		t.nrow = c.Length()
		t.Columns = append(t.Columns, c)
	}

	return t, nil
}

// NumRows returns the number of rows in the table.
func (t *Table) NumRows() int {
	return t.nrow
}

// ColumnNames returns the names of the columns in order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for j, c := range t.Columns {
		names[j] = c.Name
	}
	return names
}

// ColumnTypes returns the R type of each column.
func (t *Table) ColumnTypes() []ColumnTypeT {
	types := make([]ColumnTypeT, len(t.Columns))
	for j, c := range t.Columns {
		types[j] = c.Type()
	}
	return types
}

// ColumnIndex returns the position of the named column, or -1.
func (t *Table) ColumnIndex(name string) int {
	for j, c := range t.Columns {
		if c.Name == name {
			return j
		}
	}
	return -1
}

// Column returns the named column.
func (t *Table) Column(name string) (*Series, error) {
	j := t.ColumnIndex(name)
	if j < 0 {
		return nil, fmt.Errorf("table %s: %q: %w", t.Name, name, ErrColumnNotFound)
	}
	return t.Columns[j], nil
}

// SetColumn stores s under its name.  An existing column of that name
// is replaced in place, otherwise s is appended.  The return value
// reports whether a column was replaced.
func (t *Table) SetColumn(s *Series) (bool, error) {

	if len(t.Columns) > 0 && s.Length() != t.nrow {
		return false, fmt.Errorf("column %s has %d rows, table %s has %d: %w",
			s.Name, s.Length(), t.Name, t.nrow, ErrLengthMismatch)
	}
	if len(t.Columns) == 0 {
		t.nrow = s.Length()
	}

	if j := t.ColumnIndex(s.Name); j >= 0 {
		t.Columns[j] = s
		return true, nil
	}
	t.Columns = append(t.Columns, s)
	return false, nil
}

// Clone returns a copy of the table that can have columns set
// without affecting t.  The column data are shared.
func (t *Table) Clone() *Table {
	c := *t
	c.Columns = make(SeriesArray, len(t.Columns))
	copy(c.Columns, t.Columns)
	return &c
}
