package rdata

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/source"
	"github.com/xitongsys/parquet-go/writer"
)

// parquetName removes the characters that the parquet-go schema tag
// syntax cannot carry.
func parquetName(name string) string {
	return strings.NewReplacer(",", "_", "=", "_").Replace(name)
}

// parquetSchema returns one parquet-go schema tag per column.  All
// columns are optional so that missing values can be stored as nulls.
func parquetSchema(t *Table) ([]string, error) {

	md := make([]string, len(t.Columns))
	for j, c := range t.Columns {
		name := parquetName(c.Name)
		var typ string
		switch c.Type() {
		case LogicalType:
			typ = "type=BOOLEAN"
		case IntegerType:
			typ = "type=INT32"
		case NumericType:
			typ = "type=DOUBLE"
		case CharacterType, FactorType:
			typ = "type=BYTE_ARRAY, convertedtype=UTF8"
		case DateType:
			typ = "type=INT32, convertedtype=DATE"
		case DateTimeType:
			typ = "type=INT64, convertedtype=TIMESTAMP_MILLIS"
		default:
			return nil, fmt.Errorf("column %s: no parquet type for %v", c.Name, c.Type())
		}
		md[j] = fmt.Sprintf("name=%s, %s, repetitiontype=OPTIONAL", name, typ)
	}

	return md, nil
}

// parquetValues returns a function giving the parquet value of row i
// of s, or nil when the value is missing.
func parquetValues(s *Series) func(i int) interface{} {

	if s.Type() == FactorType {
		labels := s.ToString("").Data()
		s, _ = NewSeries(s.Name, labels, copyMissing(s.missing))
	}

	switch x := s.Data().(type) {
	case []bool:
		return func(i int) interface{} {
			if s.isMissing(i) {
				return nil
			}
			return x[i]
		}
	case []int32:
		return func(i int) interface{} {
			if s.isMissing(i) {
				return nil
			}
			return x[i]
		}
	case []string:
		return func(i int) interface{} {
			if s.isMissing(i) {
				return nil
			}
			return x[i]
		}
	case []time.Time:
		return func(i int) interface{} {
			if s.isMissing(i) {
				return nil
			}
			return x[i].UnixMilli()
		}
	case []float64:
		isDate, isTime := s.inherits("Date"), s.inherits("POSIXct")
		return func(i int) interface{} {
			if s.isMissing(i) || ((isDate || isTime) && (math.IsNaN(x[i]) || math.IsInf(x[i], 0))) {
				return nil
			}
			switch {
			case isDate:
				return int32(math.Floor(x[i]))
			case isTime:
				return int64(math.Round(x[i] * 1000))
			}
			return x[i]
		}
	}

	return func(int) interface{} { return nil }
}

// WriteParquet writes the table to a parquet file, one row at a time.
func WriteParquet(pf source.ParquetFile, t *Table) error {

	md, err := parquetSchema(t)
	if err != nil {
		return err
	}

	pw, err := writer.NewCSVWriter(md, pf, 4)
	if err != nil {
		return fmt.Errorf("can't create parquet writer: %w", err)
	}
	pw.RowGroupSize = 128 * 1024 * 1024 //128M
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	values := make([]func(int) interface{}, len(t.Columns))
	for j, c := range t.Columns {
		values[j] = parquetValues(c)
	}

	for i := 0; i < t.NumRows(); i++ {
		rec := make([]interface{}, len(values))
		for j, v := range values {
			rec[j] = v(i)
		}
		if err := pw.Write(rec); err != nil {
			return fmt.Errorf("parquet write error at row %d: %w", i, err)
		}
	}

	if err := pw.WriteStop(); err != nil {
		return fmt.Errorf("parquet WriteStop error: %w", err)
	}

	return nil
}

// WriteParquetFile writes the table to a local parquet file.
func WriteParquetFile(path string, t *Table) error {

	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return fmt.Errorf("can't create local file: %w", err)
	}

	if err := WriteParquet(fw, t); err != nil {
		fw.Close()
		return err
	}

	return fw.Close()
}
