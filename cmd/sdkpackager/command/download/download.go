// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

package download

import (
	"context"
	"flag"

	"github.com/isomorphic-tools/sdkpackager/cmd/sdkpackager/command/build"
	"github.com/isomorphic-tools/sdkpackager/pkg/act"
	"github.com/isomorphic-tools/sdkpackager/pkg/act/cli"
	"github.com/spf13/cobra"
)

// Config holds all configuration for the download command.
type Config struct {
	build.Selection
	Output string
}

// Validate ensures the configuration is valid.
func (c Config) Validate() error {
	if err := build.ValidateOutput(c.Output); err != nil {
		return err
	}
	return c.Selection.Validate()
}

// Handler downloads and unpacks a build, then lists the modules found.
func Handler(ctx context.Context, cfg Config, deps *build.Deps) (*act.NoOutput, error) {
	res, err := deps.Run(ctx, cfg.Selection, nil)
	if err != nil {
		return nil, err
	}
	return &act.NoOutput{}, build.PrintModules(deps.IO.Out, res.Modules, cfg.Output)
}

// Command creates a new download command instance.
func Command() *cobra.Command {
	cfg := Config{}
	cmd := &cobra.Command{
		Use:   "download --build-number <N> [--product P] [--license L] [--build-date yyyy-MM-dd] [--output text|yaml]",
		Short: "Download and unpack a build into the work directory",
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
	set.StringVar(&cfg.Output, "output", build.OutputText, "module listing format [text, yaml]")
	return set
}
