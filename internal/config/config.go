package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/kshedden/rdata"
	"github.com/kshedden/rdata/pinyin"
)

type Config struct {
	Path      string `mapstructure:"path"`
	Table     string `mapstructure:"table"`
	Source    string `mapstructure:"source"`
	Target    string `mapstructure:"target"`
	Separator string `mapstructure:"separator"`
	NAText    string `mapstructure:"na_text"`

	Pinyin struct {
		Style   string              `mapstructure:"style"`
		NonHan  string              `mapstructure:"non_han"`
		Phrases map[string][]string `mapstructure:"phrases"`
	} `mapstructure:"pinyin"`

	Output struct {
		Compression string `mapstructure:"compression"`
		Version     int    `mapstructure:"version"`
		Parquet     string `mapstructure:"parquet"`
		DryRun      bool   `mapstructure:"dry_run"`
	} `mapstructure:"output"`

	Log struct {
		Level  string `mapstructure:"level"`
		SeqURL string `mapstructure:"seq_url"`
	} `mapstructure:"log"`
}

var defaults = map[string]interface{}{
	"path":               "./herb_data.rda",
	"table":              "herb_data",
	"source":             "Herb_cn_name",
	"target":             "Herb_pinyin_name",
	"separator":          "",
	"na_text":            "NA",
	"pinyin.style":       "normal",
	"pinyin.non_han":     "keep",
	"output.compression": "auto",
	"output.version":     0,
	"output.parquet":     "",
	"output.dry_run":     false,
	"log.level":          "warn",
	"log.seq_url":        "",
}

// flagKeys maps command line flags to configuration keys.
var flagKeys = map[string]string{
	"path":        "path",
	"table":       "table",
	"source":      "source",
	"target":      "target",
	"separator":   "separator",
	"na-text":     "na_text",
	"style":       "pinyin.style",
	"non-han":     "pinyin.non_han",
	"compression": "output.compression",
	"version":     "output.version",
	"parquet":     "output.parquet",
	"dry-run":     "output.dry_run",
	"log-level":   "log.level",
	"seq-url":     "log.seq_url",
}

// RegisterFlags defines the flags understood by Load on fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "YAML configuration file")
	fs.String("path", "", "data file to augment (.rda, .RData or .csv)")
	fs.String("table", "", "name of the table inside the data file")
	fs.String("source", "", "column holding the Chinese names")
	fs.String("target", "", "column to write the pinyin to")
	fs.String("separator", "", "text placed between syllables")
	fs.String("na-text", "", "text that missing names become")
	fs.String("style", "", "pinyin style: normal, tone, tone2, tone3, initials, first_letter, finals")
	fs.String("non-han", "", "what to do with non-Chinese text: keep or drop")
	fs.String("compression", "", "output compression: auto, gzip, xz, none")
	fs.Int("version", 0, "RData serialization version, 2 or 3 (0 keeps the input's)")
	fs.String("parquet", "", "also export the augmented table to this Parquet file")
	fs.Bool("dry-run", false, "print the derived column instead of writing the file")
	fs.String("log-level", "", "debug, info, warn or error")
	fs.String("seq-url", "", "Seq server to send logs to")
}

// Load builds the configuration from defaults, the optional config
// file named by the --config flag, HERBPINYIN_* environment variables
// and the flags that were set, in increasing order of precedence.
func Load(fs *pflag.FlagSet) (*Config, error) {

	v := viper.New()
	for k, d := range defaults {
		v.SetDefault(k, d)
	}

	if fs != nil {
		if f := fs.Lookup("config"); f != nil && f.Value.String() != "" {
			v.SetConfigFile(f.Value.String())
			v.SetConfigType("yaml")
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	v.SetEnvPrefix("HERBPINYIN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if fs != nil {
		for name, key := range flagKeys {
			f := fs.Lookup(name)
			if f == nil || !f.Changed {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("bind flag %s: %w", name, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}

// Validate checks the values that would otherwise fail late.
func (c *Config) Validate() error {

	if c.Path == "" {
		return errors.New("no data file given")
	}
	if c.Source == "" || c.Target == "" {
		return errors.New("source and target columns must be named")
	}
	if c.Source == c.Target {
		return fmt.Errorf("target column %q is the source column", c.Target)
	}
	if _, err := pinyin.ParseStyle(c.Pinyin.Style); err != nil {
		return err
	}
	if _, err := pinyin.ParseNonHan(c.Pinyin.NonHan); err != nil {
		return err
	}
	comp, err := rdata.ParseCompression(c.Output.Compression)
	if err != nil {
		return err
	}
	if comp == rdata.CompressBzip2 {
		return errors.New("bzip2 output is not supported, use gzip or xz")
	}
	if v := c.Output.Version; v != 0 && v != 2 && v != 3 {
		return fmt.Errorf("serialization version must be 2 or 3, not %d", v)
	}

	return nil
}
