// Package augment adds a pinyin column to a table of Chinese names.
//
// The Augmenter reads a table, coerces the source column to text,
// derives the target column by transliterating every value, and
// writes the table back where it came from.  Row count and row order
// never change.
package augment

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/kshedden/rdata"
)

// A Transliterator renders text as romanized syllables joined by sep.
// It must be deterministic.
type Transliterator interface {
	Join(text, sep string) string
}

// An Augmenter derives Target from Source.
type Augmenter struct {

	// Column holding the Chinese names.
	Source string

	// Column to create or overwrite with the transliteration.
	Target string

	// Text that missing source values become.
	NAText string

	// Placed between syllables, usually empty.
	Separator string

	Translit Transliterator

	// Optional; nothing is logged when nil.
	Logger *slog.Logger
}

// Result describes a completed augmentation.
type Result struct {
	Table     string
	Rows      int
	Columns   []string
	Coerced   int
	Overwrote bool

	// The derived column.
	Derived *rdata.Series

	// The augmented table.
	Augmented *rdata.Table
}

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func (a *Augmenter) logger() *slog.Logger {
	if a.Logger == nil {
		return discard
	}
	return a.Logger
}

// Apply coerces the source column of t to text, replacing it in
// place, and sets the derived column.  If the source column does not
// exist t is left unchanged.
func (a *Augmenter) Apply(t *rdata.Table) (*Result, error) {

	if a.Source == "" || a.Target == "" {
		return nil, errors.New("source and target columns must be named")
	}
	if a.Source == a.Target {
		return nil, fmt.Errorf("target column %q would overwrite the source column", a.Target)
	}
	if a.Translit == nil {
		return nil, errors.New("no transliterator")
	}

	src, err := t.Column(a.Source)
	if err != nil {
		return nil, err
	}

	coerced := src.CountMissing()
	text := src.ToString(a.NAText)
	if _, err := t.SetColumn(text); err != nil {
		return nil, err
	}
	a.logger().Debug("coerced column to text",
		"column", a.Source, "from", src.Type().String(), "missing", coerced)

	derived := text.StringFunc(func(s string) string {
		return a.Translit.Join(s, a.Separator)
	})
	derived.Name = a.Target

	overwrote, err := t.SetColumn(derived)
	if err != nil {
		return nil, err
	}
	a.logger().Debug("derived column", "column", a.Target, "overwrote", overwrote)

	res := &Result{
		Table:     t.Name,
		Rows:      t.NumRows(),
		Columns:   t.ColumnNames(),
		Coerced:   coerced,
		Overwrote: overwrote,
		Derived:   derived,
		Augmented: t,
	}

	return res, nil
}

// Run loads the table at path from store, applies the augmentation
// and saves the table back to path.  Nothing is written unless the
// load and the augmentation succeed.
func (a *Augmenter) Run(path string, store Store) (*Result, error) {

	start := time.Now()
	log := a.logger().With("path", path)

	t, err := store.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	log.Info("loaded table", "table", t.Name, "rows", t.NumRows(), "columns", len(t.Columns))

	res, err := a.Apply(t)
	if err != nil {
		return nil, fmt.Errorf("augment %s: %w", path, err)
	}

	if err := store.Save(path, t); err != nil {
		return nil, fmt.Errorf("save %s: %w", path, err)
	}
	log.Info("saved table", "table", t.Name, "rows", res.Rows,
		"target", a.Target, "overwrote", res.Overwrote, "elapsed", time.Since(start))

	return res, nil
}
