package augment

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/kshedden/rdata"
)

// A Store loads a table from a file and saves it back.
type Store interface {
	Load(path string) (*rdata.Table, error)
	Save(path string, t *rdata.Table) error
}

// StoreOptions configures StoreFor.
type StoreOptions struct {

	// Name of the table in files that hold several; empty selects
	// the first data frame.
	TableName string

	// Output compression for RData files.
	Compression rdata.Compression

	// Serialization version for RData files, 0 to keep the input's.
	Version int

	// Columns that must be read as text from CSV files.
	TextColumns []string
}

// StoreFor picks a Store by the file extension of path.
func StoreFor(path string, opts StoreOptions) (Store, error) {

	switch strings.ToLower(filepath.Ext(path)) {
	case ".rda", ".rdata":
		return &RDataStore{
			TableName:   opts.TableName,
			Compression: opts.Compression,
			Version:     opts.Version,
		}, nil
	case ".csv":
		hints := make(map[string]string)
		for _, c := range opts.TextColumns {
			hints[c] = "string"
		}
		return &CSVStore{TableName: opts.TableName, Hints: hints}, nil
	}

	return nil, fmt.Errorf("%s: %w", path, rdata.ErrUnsupportedFormat)
}

// RDataStore keeps the whole R data file between Load and Save, so
// that every other object in it is written back unchanged.
type RDataStore struct {
	TableName   string
	Compression rdata.Compression
	Version     int

	file *rdata.RDataFile
}

func (s *RDataStore) Load(path string) (*rdata.Table, error) {

	f, err := rdata.ReadRDataFile(path)
	if err != nil {
		return nil, err
	}

	name := s.TableName
	if name == "" {
		tables := f.Tables()
		if len(tables) == 0 {
			return nil, fmt.Errorf("no data frame in %s: %w", path, rdata.ErrTableNotFound)
		}
		name = tables[0]
	}

	t, err := f.Table(name)
	if err != nil {
		return nil, err
	}
	s.file = f

	return t, nil
}

func (s *RDataStore) Save(path string, t *rdata.Table) error {

	if s.file == nil {
		s.file = &rdata.RDataFile{}
	}
	s.file.SetTable(t)

	return writeAtomic(path, func(w io.Writer) error {
		wr := rdata.NewRDataWriter(w)
		if s.Compression != "" {
			wr.Compression = s.Compression
		}
		wr.Version = s.Version
		return wr.Write(s.file)
	})
}

// CSVStore reads and writes a single table as CSV.
type CSVStore struct {

	// Name given to the table; defaults to the file's base name.
	TableName string

	// Type hints by column name.
	Hints map[string]string
}

func (s *CSVStore) Load(path string) (*rdata.Table, error) {

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	name := s.TableName
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	return rdata.ReadCSVTable(f, name, s.Hints)
}

func (s *CSVStore) Save(path string, t *rdata.Table) error {
	return writeAtomic(path, func(w io.Writer) error {
		return rdata.WriteCSV(w, t)
	})
}

// writeAtomic writes to a temporary file next to path and renames it
// over path once write has succeeded.
func writeAtomic(path string, write func(io.Writer) error) (err error) {

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if err = write(tmp); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}

	if fi, serr := os.Stat(path); serr == nil {
		if err = os.Chmod(tmp.Name(), fi.Mode().Perm()); err != nil {
			return err
		}
	}

	return os.Rename(tmp.Name(), path)
}
