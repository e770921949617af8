package main

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kshedden/rdata"
)

func writeFile(t *testing.T, path string) {

	name, err := rdata.NewSeries("name", []string{"地龙", "x"}, []bool{false, true})
	require.NoError(t, err)
	dose, err := rdata.NewSeries("dose", []float64{1.5, 0}, []bool{false, true})
	require.NoError(t, err)
	when, err := rdata.NewSeries("when", []time.Time{
		time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC), {},
	}, []bool{false, true})
	require.NoError(t, err)
	herbs, err := rdata.NewTable("herbs", []*rdata.Series{name, dose, when})
	require.NoError(t, err)

	id, err := rdata.NewSeries("id", []int32{7, 8, 9}, nil)
	require.NoError(t, err)
	ids, err := rdata.NewTable("ids", []*rdata.Series{id})
	require.NoError(t, err)

	rf := &rdata.RDataFile{}
	rf.SetTable(herbs)
	rf.SetTable(ids)
	require.NoError(t, rdata.WriteRDataFile(path, rf, rdata.CompressXz))
}

func TestConvert(t *testing.T) {

	path := filepath.Join(t.TempDir(), "herbs.rda")
	writeFile(t, path)

	var stdout, stderr bytes.Buffer
	require.Equal(t, 0, run([]string{path}, &stdout, &stderr), stderr.String())
	require.Equal(t, "name,dose,when\n地龙,1.5,2020-01-02 03:04:05\nNA,NA,NA\n", stdout.String())

	stdout.Reset()
	require.Equal(t, 0, run([]string{"--table", "ids", "--na", "", path}, &stdout, &stderr), stderr.String())
	require.Equal(t, "id\n7\n8\n9\n", stdout.String())
}

func TestConvertErrors(t *testing.T) {

	dir := t.TempDir()
	path := filepath.Join(dir, "herbs.rda")
	writeFile(t, path)

	var stdout, stderr bytes.Buffer
	require.Equal(t, 2, run(nil, &stdout, &stderr))
	require.Equal(t, 1, run([]string{filepath.Join(dir, "herbs.sav")}, &stdout, &stderr))
	require.Equal(t, 1, run([]string{filepath.Join(dir, "none.rda")}, &stdout, &stderr))
	require.Equal(t, 1, run([]string{"--table", "nope", path}, &stdout, &stderr))
}
