// rdatoparquet converts a data frame of an R data file to a parquet
// file.  The parquet file is written to outdir, with the name of the
// R data file and the extension replaced by ".parquet".  Every column
// is optional, so R's missing values become nulls.  Factors are
// stored as their labels, Date columns as DATE and POSIXct columns as
// TIMESTAMP_MILLIS.
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"

	"github.com/kshedden/rdata"
)

// outName returns the parquet file written for rdafile.
func outName(rdafile, outdir string) string {
	base := filepath.Base(rdafile)
	return filepath.Join(outdir, strings.TrimSuffix(base, filepath.Ext(base))+".parquet")
}

func run(args []string, stdout, stderr io.Writer) int {

	fs := pflag.NewFlagSet("rdatoparquet", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	rdafile := fs.String("rdafile", "", "Path to the R data file")
	table := fs.String("table", "", "Data frame to convert (default: the first one)")
	outdir := fs.String("outdir", ".", "Path where the output parquet file is written")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if *rdafile == "" {
		io.WriteString(stderr, "'rdafile' is a required argument\n")
		return 1
	}

	// Make sure the destination directory exists.
	if fi, err := os.Stat(*outdir); err != nil || !fi.IsDir() {
		fmt.Fprintf(stderr, "Directory '%s' does not exist, exiting.\n", *outdir)
		return 1
	}

	rf, err := rdata.ReadRDataFile(*rdafile)
	if err != nil {
		fmt.Fprintf(stderr, "Cannot read file '%s': %v\n", *rdafile, err)
		return 1
	}
	rf.ConvertFactors = true

	name := *table
	if name == "" {
		tables := rf.Tables()
		if len(tables) == 0 {
			fmt.Fprintf(stderr, "No data frame in '%s'.\n", *rdafile)
			return 1
		}
		name = tables[0]
	}

	t, err := rf.Table(name)
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", *rdafile, err)
		return 1
	}

	outfile := outName(*rdafile, *outdir)
	if err := rdata.WriteParquetFile(outfile, t); err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", outfile, err)
		return 1
	}
	fmt.Fprintf(stdout, "Wrote %d rows of %s to %s\n", t.NumRows(), name, outfile)

	return 0
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}
