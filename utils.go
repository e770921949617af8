package rdata

import (
	"errors"
)

// StatfileReader is satisfied by RDataReader.  Read
// returns chunks of at most the given number of rows; a negative
// count reads everything that remains.  After the last chunk Read
// returns nil, io.EOF.
type StatfileReader interface {
	ColumnNames() []string
	ColumnTypes() []ColumnTypeT
	RowCount() int
	Read(int) ([]*Series, error)
}

// ColumnTypeT is the type of a data column as R sees it.
type ColumnTypeT uint16

const (
	LogicalType ColumnTypeT = iota
	IntegerType
	NumericType
	CharacterType
	FactorType
	DateType
	DateTimeType
)

var columnTypeNames = map[ColumnTypeT]string{
	LogicalType:   "logical",
	IntegerType:   "integer",
	NumericType:   "numeric",
	CharacterType: "character",
	FactorType:    "factor",
	DateType:      "Date",
	DateTimeType:  "POSIXct",
}

func (t ColumnTypeT) String() string {
	if s, ok := columnTypeNames[t]; ok {
		return s
	}
	return "unknown"
}

var (
	ErrColumnNotFound    = errors.New("column not found")
	ErrTableNotFound     = errors.New("table not found")
	ErrNotDataFrame      = errors.New("object is not a data frame")
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrLengthMismatch    = errors.New("column length does not match table")
)
