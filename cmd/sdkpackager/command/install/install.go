// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

package install

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/isomorphic-tools/sdkpackager/cmd/sdkpackager/command/build"
	"github.com/isomorphic-tools/sdkpackager/pkg/act"
	"github.com/isomorphic-tools/sdkpackager/pkg/act/cli"
	"github.com/isomorphic-tools/sdkpackager/pkg/maven"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// Config holds all configuration for the install command.
type Config struct {
	build.Selection
	// Repository overrides the configured local repository.
	Repository string
}

// Validate ensures the configuration is valid.
func (c Config) Validate() error {
	return c.Selection.Validate()
}

// Handler prepares a build and installs its modules into a local repository.
func Handler(ctx context.Context, cfg Config, deps *build.Deps) (*act.NoOutput, error) {
	repo := cfg.Repository
	if repo == "" {
		repo = deps.Config.Repository.Local
	}
	if repo == "" {
		return nil, errors.New("no local repository configured")
	}
	if err := os.MkdirAll(repo, 0o755); err != nil {
		return nil, errors.Wrapf(err, "creating %s", repo)
	}
	install := func(ctx context.Context, root billy.Filesystem, modules []*maven.Module) error {
		in := maven.Installer{Src: root, Repo: osfs.New(repo), Now: time.Now}
		return in.Install(ctx, modules)
	}
	if _, err := deps.Run(ctx, cfg.Selection, install); err != nil {
		return nil, err
	}
	return &act.NoOutput{}, nil
}

// Command creates a new install command instance.
func Command() *cobra.Command {
	cfg := Config{}
	cmd := &cobra.Command{
		Use:   "install --build-number <N> [--product P] [--license L] [--repository <dir>]",
		Short: "Install a build's artifacts into a local Maven repository",
		Args:  cobra.NoArgs,
		RunE: cli.RunE(
			&cfg,
			cli.SkipArgs[Config],
			build.InitDeps,
			Handler,
		),
	}
	cmd.Flags().AddGoFlagSet(flagSet(cmd.Name(), &cfg))
	return cmd
}

// flagSet returns the command-line flags for the Config struct.
func flagSet(name string, cfg *Config) *flag.FlagSet {
	set := flag.NewFlagSet(name, flag.ContinueOnError)
	cfg.Selection.AddFlags(set)
	set.StringVar(&cfg.Repository, "repository", "", "the local repository directory (default from repository.local)")
	return set
}
