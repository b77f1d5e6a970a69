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
	"context"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/degit/pkg/config"
	"github.com/walteh/degit/pkg/degit"
	"github.com/walteh/degit/pkg/destination"
	"github.com/walteh/degit/pkg/log"
	"github.com/walteh/degit/pkg/provider"
	"github.com/walteh/degit/pkg/refs"
	"github.com/walteh/degit/pkg/repo"
	"github.com/walteh/degit/pkg/status"
	"gitlab.com/tozd/go/errors"
)

const longHelp = `degit downloads a repository, or one directory of it, at a given
revision without any git history.

Accepted sources:
  owner/name                     GitHub
  github:owner/name, gh:         GitHub
  gitlab:owner/name, gl:         GitLab (gitlab.com)
  bitbucket:owner/name, bb:      BitBucket
  example.org:owner/name         self hosted GitLab
  https://github.com/owner/name  full URL, any host
  git@gitlab.com:owner/name      SSH style

Append /sub/dir to copy one directory and #ref for a branch, tag or commit:
  degit octocat/Spoon-Knife/docs#v1.0.0 my-docs`

// rootOpts holds the command line state
type rootOpts struct {
	verbosity  int
	lister     string
	gitBinary  string
	exclude    []string
	noProgress bool
	configFile string

	stdout io.Writer
	stderr io.Writer
	run    func(ctx context.Context, src string, opts degit.Options) error
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &rootOpts{
		stdout: stdout,
		stderr: stderr,
		run:    degit.Run,
	}
	return opts.command()
}

func (o *rootOpts) command() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "degit <src> [dest]",
		Short:         "Copy a git repository without its history",
		Long:          longHelp,
		Args:          validateArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		Version:       GetVersionInfo().Version,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.execute(cmd, args)
		},
	}

	cmd.SetOut(o.stdout)
	cmd.SetErr(o.stderr)
	cmd.SetVersionTemplate(FormatVersion())

	addRootFlags(cmd, o)
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// addRootFlags adds the flags of the root command
func addRootFlags(cmd *cobra.Command, o *rootOpts) {
	cmd.Flags().CountVarP(&o.verbosity, "verbose", "v", "increase log verbosity (-v info, -vv debug, -vvv trace)")
	cmd.Flags().StringVar(&o.lister, "lister", "", "how to list remote refs: git, go-git or github (default git)")
	cmd.Flags().StringVar(&o.gitBinary, "git-binary", "", "git executable used by the git lister")
	cmd.Flags().StringArrayVar(&o.exclude, "exclude", nil, "skip paths matching a glob pattern (repeatable)")
	cmd.Flags().BoolVar(&o.noProgress, "no-progress", false, "disable the progress bar")
	cmd.Flags().StringVarP(&o.configFile, "config", "c", "", "config file (default $"+config.EnvPath+")")
}

// validateArgs rejects bad input before any network call
func validateArgs(cmd *cobra.Command, args []string) error {
	if err := cobra.RangeArgs(1, 2)(cmd, args); err != nil {
		return err
	}

	if _, err := repo.Parse(args[0]); err != nil {
		return err
	}

	return destination.Validate(destArg(args))
}

func destArg(args []string) string {
	if len(args) > 1 {
		return args[1]
	}
	return "."
}

func (o *rootOpts) execute(cmd *cobra.Command, args []string) error {
	logger := setupLogging(o.stderr, o.verbosity)
	ctx := logger.WithContext(cmd.Context())
	ctx = log.NewContext(ctx, log.New(o.stdout, logger))

	cfg, err := o.loadConfig(ctx, cmd)
	if err != nil {
		return err
	}

	lister, err := refs.NewLister(cfg.Lister, refs.ListerOptions{GitBinary: cfg.GitBinary})
	if err != nil {
		return err
	}

	provider.UserAgent = "degit/" + GetVersionInfo().Version

	progress := status.ForTerminal(o.stderr)
	if cfg.NoProgress {
		progress = func(int64) status.Reporter { return status.Noop() }
	}

	return o.run(ctx, args[0], degit.Options{
		Dest:     destArg(args),
		Lister:   lister,
		Exclude:  cfg.Exclude,
		Progress: progress,
	})
}

// loadConfig reads the optional config file and lets flags override it
func (o *rootOpts) loadConfig(ctx context.Context, cmd *cobra.Command) (*config.Config, error) {
	cfg := &config.Config{}

	path := o.configFile
	if path == "" {
		path = os.Getenv(config.EnvPath)
	}
	if path != "" {
		loaded, err := config.Load(ctx, path)
		if err != nil {
			return nil, errors.Errorf("loading config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("lister") {
		cfg.Lister = o.lister
	}
	if flags.Changed("git-binary") {
		cfg.GitBinary = o.gitBinary
	}
	if flags.Changed("no-progress") {
		cfg.NoProgress = o.noProgress
	}
	cfg.Exclude = append(cfg.Exclude, o.exclude...)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setupLogging builds the diagnostic logger for the given -v count
func setupLogging(w io.Writer, verbosity int) zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: w}).
		Level(levelFor(verbosity)).
		With().Timestamp().Logger()
}

func levelFor(verbosity int) zerolog.Level {
	switch {
	case verbosity <= 0:
		return zerolog.WarnLevel
	case verbosity == 1:
		return zerolog.InfoLevel
	case verbosity == 2:
		return zerolog.DebugLevel
	default:
		return zerolog.TraceLevel
	}
}
