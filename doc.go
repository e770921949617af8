// Copyright 2015 Kerby Shedden

/*
Package rdata reads and writes the data files of the R statistical
environment (.rda and .RData files written by save()).  The XDR
serialization format versions 2 and 3 are supported, compressed with
gzip, bzip2 (read only) or xz, or uncompressed.

Data frames are returned as Tables, holding a column-oriented data
container called a Series for each variable.  Objects that are not
data frames are carried along untouched, so a file can be read, one
of its tables replaced, and the file written back without loss.

Package rdata also includes a function that reads CSV files, infers
the datatype of each column, and places them into an array of Series
objects, and writers for CSV and Parquet output.

RDataReader satisfies the StatfileReader interface.  It and the CSV
reader can read a table by chunks (ranges of consecutive records).
*/
package rdata
