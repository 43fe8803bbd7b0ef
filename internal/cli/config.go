package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// defaultConfigPath is read when --config is not given and the file exists.
const defaultConfigPath = ".csv2sql.yaml"

// envPrefix prefixes the environment variable of every flag, e.g.
// CSV2SQL_US_DATES for --us-dates.
const envPrefix = "CSV2SQL_"

// FileConfig represents .csv2sql.yaml. Keys match the flag names.
type FileConfig struct {
	Schema      *string `yaml:"schema,omitempty"`
	Inference   *string `yaml:"inference,omitempty"`
	USDates     *bool   `yaml:"us-dates,omitempty"`
	Delimiter   *string `yaml:"delimiter,omitempty"`
	Encoding    *string `yaml:"encoding,omitempty"`
	Compression *string `yaml:"compression,omitempty"`
	Sheet       *string `yaml:"sheet,omitempty"`
	LazyQuotes  *bool   `yaml:"lazy-quotes,omitempty"`
	Verify      *bool   `yaml:"verify,omitempty"`
	DSN         *string `yaml:"dsn,omitempty"`
	LogLevel    *string `yaml:"log-level,omitempty"`
	LogFormat   *string `yaml:"log-format,omitempty"`
}

// LoadFileConfig reads the config file at path. When explicit is false a
// missing file yields an empty config.
func LoadFileConfig(path string, explicit bool) (*FileConfig, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided path is necessary for config loading
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return &FileConfig{}, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg FileConfig
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return &cfg, nil
}

// values returns the set keys as flag values.
func (c *FileConfig) values() map[string]string {
	out := make(map[string]string)
	putString := func(key string, v *string) {
		if v != nil {
			out[key] = *v
		}
	}
	putBool := func(key string, v *bool) {
		if v != nil {
			out[key] = strconv.FormatBool(*v)
		}
	}

	putString(flagSchema, c.Schema)
	putString(flagInference, c.Inference)
	putBool(flagUSDates, c.USDates)
	putString(flagDelimiter, c.Delimiter)
	putString(flagEncoding, c.Encoding)
	putString(flagCompression, c.Compression)
	putString(flagSheet, c.Sheet)
	putBool(flagLazyQuotes, c.LazyQuotes)
	putBool(flagVerify, c.Verify)
	putString(flagDSN, c.DSN)
	putString(flagLogLevel, c.LogLevel)
	putString(flagLogFormat, c.LogFormat)
	return out
}

// envName returns the environment variable for a flag.
func envName(flag string) string {
	return envPrefix + strings.ToUpper(strings.ReplaceAll(flag, "-", "_"))
}
