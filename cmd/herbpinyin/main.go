// herbpinyin adds a pinyin transliteration of the Chinese herb names
// in an R data file, writing the file back in place.
//
// usage: herbpinyin [flags] [path]
//
// Settings come from flags, HERBPINYIN_* environment variables and an
// optional YAML file named by --config.  By default the data frame
// herb_data in ./herb_data.rda gets a column Herb_pinyin_name derived
// from Herb_cn_name.
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/pflag"

	"github.com/kshedden/rdata"
	"github.com/kshedden/rdata/augment"
	"github.com/kshedden/rdata/internal/config"
	"github.com/kshedden/rdata/internal/logging"
	"github.com/kshedden/rdata/pinyin"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {

	fs := pflag.NewFlagSet("herbpinyin", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	config.RegisterFlags(fs)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "usage: herbpinyin [flags] [path]\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}
	switch {
	case fs.NArg() > 1:
		fs.Usage()
		return 2
	case fs.NArg() == 1 && !fs.Changed("path"):
		if err := fs.Set("path", fs.Arg(0)); err != nil {
			fmt.Fprintf(stderr, "herbpinyin: %v\n", err)
			return 2
		}
	}

	cfg, err := config.Load(fs)
	if err != nil {
		fmt.Fprintf(stderr, "herbpinyin: %v\n", err)
		return 1
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "herbpinyin: %v\n", err)
		return 1
	}

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		fmt.Fprintf(stderr, "herbpinyin: %v\n", err)
		return 1
	}
	log, done := logging.Setup(stderr, level, cfg.Log.SeqURL)
	defer done()
	log = log.With("run_id", uuid.NewString())

	if err := augmentFile(cfg, log, stdout); err != nil {
		log.Error("augmentation failed", "path", cfg.Path, "error", err)
		fmt.Fprintf(stderr, "herbpinyin: %v\n", err)
		return 1
	}

	return 0
}

func augmentFile(cfg *config.Config, log *slog.Logger, stdout io.Writer) error {

	// Validate has already vetted these.
	style, _ := pinyin.ParseStyle(cfg.Pinyin.Style)
	nonHan, _ := pinyin.ParseNonHan(cfg.Pinyin.NonHan)
	comp, _ := rdata.ParseCompression(cfg.Output.Compression)

	aug := &augment.Augmenter{
		Source:    cfg.Source,
		Target:    cfg.Target,
		NAText:    cfg.NAText,
		Separator: cfg.Separator,
		Translit:  pinyin.New(style, nonHan, cfg.Pinyin.Phrases),
		Logger:    log,
	}

	store, err := augment.StoreFor(cfg.Path, augment.StoreOptions{
		TableName:   cfg.Table,
		Compression: comp,
		Version:     cfg.Output.Version,
		TextColumns: []string{cfg.Source},
	})
	if err != nil {
		return err
	}

	if cfg.Output.DryRun {
		t, err := store.Load(cfg.Path)
		if err != nil {
			return fmt.Errorf("load %s: %w", cfg.Path, err)
		}
		res, err := aug.Apply(t)
		if err != nil {
			return err
		}
		log.Info("dry run, nothing written", "table", res.Table, "rows", res.Rows)
		return res.Derived.Write(stdout)
	}

	res, err := aug.Run(cfg.Path, store)
	if err != nil {
		return err
	}

	if cfg.Output.Parquet != "" {
		if err := rdata.WriteParquetFile(cfg.Output.Parquet, res.Augmented); err != nil {
			return fmt.Errorf("export %s: %w", cfg.Output.Parquet, err)
		}
		log.Info("exported parquet", "path", cfg.Output.Parquet, "rows", res.Rows)
	}

	return nil
}
