package main

// Convert a data frame in an R data file (.rda, .RData) to a CSV
// file.  The CSV contents are sent to standard output.  Factors are
// written as their labels and Date and POSIXct columns as ISO dates.
// Missing values are written as NA.

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/pflag"

	"github.com/kshedden/rdata"
)

func doConversion(rdr rdata.StatfileReader, w io.Writer, naText string) error {

	cw := rdata.NewCSVWriter(w)
	cw.NAText = naText

	if err := cw.WriteHeader(rdr.ColumnNames()); err != nil {
		return err
	}

	for {
		chunk, err := rdr.Read(1000)
		if err == io.EOF {
			break
		} else if err != nil {
			return err
		}
		if err := cw.WriteChunk(chunk); err != nil {
			return err
		}
	}

	return cw.Flush()
}

func run(args []string, stdout, stderr io.Writer) int {

	fs := pflag.NewFlagSet("rdatocsv", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	table := fs.String("table", "", "data frame to convert (default: the first one)")
	naText := fs.String("na", "NA", "text written for missing values")
	raw := fs.Bool("raw", false, "write factor codes and day counts instead of labels and dates")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if fs.NArg() != 1 {
		fmt.Fprintf(stderr, "usage: rdatocsv [flags] filename\n")
		return 2
	}

	fname := fs.Arg(0)
	fl := strings.ToLower(fname)
	if !strings.HasSuffix(fl, ".rda") && !strings.HasSuffix(fl, ".rdata") {
		fmt.Fprintf(stderr, "%s file cannot be read\n", fname)
		return 1
	}

	f, err := os.Open(fname)
	if err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return 1
	}
	defer f.Close()

	rdr, err := rdata.NewRDataReader(f)
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", fname, err)
		return 1
	}
	rdr.ConvertFactors = !*raw
	rdr.ConvertDates = !*raw
	if *table != "" {
		if err := rdr.SelectTable(*table); err != nil {
			fmt.Fprintf(stderr, "%s: %v\n", fname, err)
			return 1
		}
	}

	if err := doConversion(rdr, stdout, *naText); err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", fname, err)
		return 1
	}

	return 0
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}
