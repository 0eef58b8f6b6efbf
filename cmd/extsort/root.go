// Copyright 2025 walteh LLC
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

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/extsort/pkg/config"
	"github.com/walteh/extsort/pkg/log"
	"github.com/walteh/extsort/pkg/operation"
	"github.com/walteh/extsort/pkg/status"
	"gitlab.com/tozd/go/errors"
)

// rootOpts holds the flag values of the root command
type rootOpts struct {
	configFile       string
	jobs             int
	foldCase         bool
	ignore           []string
	noFollowSymlinks bool
	strict           bool
	summary          bool
	debug            bool
	logFormat        string

	stdout io.Writer
	stderr io.Writer
}

// 🌳 newRootCmd creates the extsort command writing results to stdout and
// logs to stderr
func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	o := &rootOpts{stdout: stdout, stderr: stderr}

	cmd := &cobra.Command{
		Use:   "extsort [flags] <source> <output>",
		Short: "Sort files into folders named after their extension",
		Long: `Extsort walks the source directory tree and copies every file into the
output directory, inside a folder named after the file's extension.
Files without an extension go into the no_extension folder.

The source is never modified. A file whose name is already present in its
folder is overwritten.`,
		Args:          usageArgs(cobra.ExactArgs(2)),
		Version:       buildVersion(),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run(cmd, args[0], args[1])
		},
	}

	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &usageError{err: err}
	})

	addRootFlags(cmd, o)
	cmd.SetVersionTemplate("🚀 {{.Name}} {{.Version}}\n")

	return cmd
}

// usageArgs marks argument validation failures of check as usage errors
func usageArgs(check cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := check(cmd, args); err != nil {
			return &usageError{err: err}
		}
		return nil
	}
}

// addRootFlags adds the flags of the root command
func addRootFlags(cmd *cobra.Command, o *rootOpts) {
	flags := cmd.Flags()
	flags.StringVarP(&o.configFile, "config", "c", "", "config file path (.yaml, .yml, .json or .hcl)")
	flags.IntVarP(&o.jobs, "jobs", "j", 0, "max concurrent copies, 0 is unbounded")
	flags.BoolVar(&o.foldCase, "fold-case", false, "lower-case folder names")
	flags.StringArrayVar(&o.ignore, "ignore", nil, "doublestar pattern of source paths to skip (repeatable)")
	flags.BoolVar(&o.noFollowSymlinks, "no-follow-symlinks", false, "skip symlinks instead of following them")
	flags.BoolVar(&o.strict, "strict", false, "exit with code 3 when any file failed to copy")
	flags.BoolVar(&o.summary, "summary", false, "print a per-folder table when done")
	flags.BoolVarP(&o.debug, "debug", "d", false, "enable debug logging")
	flags.StringVar(&o.logFormat, "log-format", string(log.FormatText), "log format, text or json")
}

// applyFlags overrides cfg with every flag that was set on the command line
func (o *rootOpts) applyFlags(cmd *cobra.Command, cfg *config.Config) {
	changed := cmd.Flags().Changed

	if changed("jobs") {
		cfg.Jobs = o.jobs
	}
	if changed("fold-case") {
		cfg.FoldCase = o.foldCase
	}
	if changed("ignore") {
		cfg.Ignore = append(cfg.Ignore, o.ignore...)
	}
	if changed("no-follow-symlinks") {
		cfg.NoFollowSymlinks = o.noFollowSymlinks
	}
	if changed("strict") {
		cfg.Strict = o.strict
	}
	if o.debug {
		cfg.LogLevel = zerolog.LevelDebugValue
	}
	if changed("log-format") {
		cfg.LogFormat = o.logFormat
	}
}

// newLogger builds the logger described by cfg. Invalid values fall back to
// text at info level; they are reported by Validate.
func newLogger(w io.Writer, cfg *config.Config) zerolog.Logger {
	level, err := cfg.Level()
	if err != nil {
		level = zerolog.InfoLevel
	}
	format, err := log.ParseFormat(cfg.LogFormat)
	if err != nil {
		format = log.FormatText
	}
	return log.New(w, level, format)
}

// loadConfig reads the config file, if any, and applies the flags on top
func (o *rootOpts) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := &config.Config{}
	o.applyFlags(cmd, cfg)

	if o.configFile != "" {
		logger := newLogger(o.stderr, cfg)
		loaded, err := config.Load(logger.WithContext(cmd.Context()), o.configFile)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
		o.applyFlags(cmd, cfg)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, errors.Errorf("validating options: %w", err)
	}
	return cfg, nil
}

// run sorts source into destination
func (o *rootOpts) run(cmd *cobra.Command, source, destination string) error {
	cfg, err := o.loadConfig(cmd)
	logger := newLogger(o.stderr, cfg)
	if err != nil {
		logger.Error().Err(err).Str("path", o.configFile).Msg("invalid configuration")
		return &exitError{code: exitFailure, err: err}
	}

	ctx := logger.WithContext(cmd.Context())
	logger.Debug().Str("config", cfg.String()).Msg("configuration loaded")

	summary, err := operation.Run(ctx, source, destination, operation.Options{
		Jobs:             cfg.Jobs,
		FoldCase:         cfg.FoldCase,
		Exclude:          cfg.Ignore,
		NoFollowSymlinks: cfg.NoFollowSymlinks,
	})

	var verr *operation.ValidationError
	if errors.As(err, &verr) {
		logger.Error().Err(verr.Err).Str("path", verr.Path).Msg(verr.Reason)
		return &exitError{code: exitFailure, err: err}
	}

	if summary != nil {
		status.Print(o.stdout, summary, status.NewDefaultFormatter())
		if o.summary {
			table, terr := status.BucketTable(summary)
			if terr != nil {
				logger.Warn().Err(terr).Msg("printing summary table")
			} else {
				_, _ = io.WriteString(o.stdout, table+"\n")
			}
		}
	}

	if err != nil {
		logger.Error().Err(err).Msg("sorting interrupted")
		return &exitError{code: exitInterrupted, err: err}
	}

	if cfg.Strict && summary.HasFailures() {
		err := errors.Errorf("%d files failed to copy", summary.Counts().Failed)
		logger.Error().Err(err).Msg("strict mode")
		return &exitError{code: exitPartial, err: err}
	}

	return nil
}
