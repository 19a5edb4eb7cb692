// Copyright 2024 The Cockroach Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/multierr"

	"github.com/cockroachdb/dict/internal/logging"
	"github.com/cockroachdb/dict/internal/wordcount"
)

const (
	formatText = "text"
	formatYAML = "yaml"
)

var defaultWords = []string{"alice", "rabbit", "cheshire", "mad", "hatter"}

// Config holds the settings of a run, assembled from flags, WORDFREQ_*
// environment variables and an optional YAML config file.
type Config struct {
	Words    []string `mapstructure:"words"`
	Top      int      `mapstructure:"top"`
	Format   string   `mapstructure:"format"`
	Capacity int      `mapstructure:"capacity"`
	LogLevel string   `mapstructure:"log-level"`
	LogJSON  bool     `mapstructure:"log-json"`
}

func newRootCmd() *cobra.Command {
	v := viper.New()
	var configFile string

	cmd := &cobra.Command{
		Use:   "wordfreq [file...]",
		Short: "Count word frequencies",
		Long: `Count how often each word occurs in the given files, or in standard
input if no files are given, and report the counts of selected words.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PreRunE: func(*cobra.Command, []string) error {
			return loadConfigFile(v, configFile)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := loadConfig(v)
			if err != nil {
				return err
			}
			return run(cmd.InOrStdin(), cmd.OutOrStdout(), args, conf)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&configFile, "conf", "f", "", "YAML config file")
	flags.StringSliceP("words", "w", defaultWords, "Words to report counts for")
	flags.IntP("top", "t", 0, "Number of most frequent words to report")
	flags.StringP("format", "o", formatText, "Output format: text or yaml")
	flags.Int("capacity", 0, "Initial table capacity, 0 for the default")
	flags.String("log-level", logging.DefaultLogLevel.String(), "Log level: debug, info, warn or error")
	flags.BoolP("log-json", "j", false, "Print logs in JSON format")

	// Flags are registered above, so binding cannot fail.
	_ = v.BindPFlags(flags)
	v.SetEnvPrefix("WORDFREQ")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	return cmd
}

func loadConfigFile(v *viper.Viper, configFile string) error {
	if configFile == "" {
		return nil
	}
	v.SetConfigType("yaml")
	v.SetConfigFile(configFile)
	if err := v.ReadInConfig(); err != nil {
		return errors.Wrapf(err, "failed to read config file %s", configFile)
	}
	return nil
}

func loadConfig(v *viper.Viper) (Config, error) {
	var conf Config
	if err := v.Unmarshal(&conf); err != nil {
		return conf, errors.Wrap(err, "failed to load config")
	}
	switch conf.Format {
	case formatText, formatYAML:
	default:
		return conf, errors.Errorf("unknown format %q, expected %s or %s", conf.Format, formatText, formatYAML)
	}
	if conf.Capacity < 0 {
		return conf, errors.Errorf("capacity must not be negative: %d", conf.Capacity)
	}
	return conf, nil
}

func run(stdin io.Reader, stdout io.Writer, files []string, conf Config) error {
	level, err := logging.ParseLogLevel(conf.LogLevel)
	if err != nil {
		return err
	}
	logging.ConfigureLogger(level, conf.LogJSON)

	counter := wordcount.NewCounter(conf.Capacity)
	if len(files) == 0 {
		n, err := counter.Scan(stdin)
		if err != nil {
			return errors.Wrap(err, "failed to read standard input")
		}
		slog.Debug("Scanned standard input", slog.Int("tokens", n))
	}
	for _, name := range files {
		err = multierr.Append(err, scanFile(counter, name))
	}
	if err != nil {
		return err
	}

	slog.Debug(
		"Counted words",
		slog.Int("tokens", counter.Total()),
		slog.Int("distinct", counter.Distinct()),
		slog.Int("capacity", counter.Capacity()),
	)

	report, err := counter.Report(conf.Words, conf.Top)
	if err != nil {
		return err
	}
	if conf.Format == formatYAML {
		return report.WriteYAML(stdout)
	}
	return report.WriteText(stdout)
}

func scanFile(counter *wordcount.Counter, name string) (err error) {
	f, err := os.Open(name)
	if err != nil {
		return errors.Wrapf(err, "failed to open %s", name)
	}
	defer func() {
		err = multierr.Append(err, f.Close())
	}()

	n, err := counter.Scan(f)
	if err != nil {
		return errors.Wrapf(err, "failed to read %s", name)
	}
	slog.Info("Scanned file", slog.String("file", name), slog.Int("tokens", n))
	return nil
}
