// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

package builds

import (
	"context"
	"flag"
	"fmt"

	"github.com/isomorphic-tools/sdkpackager/cmd/sdkpackager/command/build"
	"github.com/isomorphic-tools/sdkpackager/pkg/act"
	"github.com/isomorphic-tools/sdkpackager/pkg/act/cli"
	"github.com/isomorphic-tools/sdkpackager/pkg/distribution"
	"github.com/isomorphic-tools/sdkpackager/pkg/remoteindex"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Config holds all configuration for the builds command.
type Config struct {
	Product     string
	License     string
	BuildNumber string
}

// Validate ensures the configuration is valid.
func (c Config) Validate() error {
	if c.BuildNumber == "" {
		return errors.New("build-number is required")
	}
	if _, err := distribution.ParseProduct(c.Product); err != nil {
		return err
	}
	_, err := distribution.ParseLicense(c.License)
	return err
}

// Handler lists the dated builds published for a build number.
func Handler(ctx context.Context, cfg Config, deps *build.Deps) (*act.NoOutput, error) {
	p, _ := distribution.ParseProduct(cfg.Product)
	l, _ := distribution.ParseLicense(cfg.License)
	spec, err := deps.Catalog.Get(p, l)
	if err != nil {
		return nil, err
	}
	if err := deps.Session.Login(ctx); err != nil {
		return nil, err
	}
	defer func() {
		if err := deps.Session.Logout(context.WithoutCancel(ctx)); err != nil {
			log.Debugf("Error at logout: %v", err)
		}
	}()
	d := spec.Resolve(cfg.BuildNumber, "")
	dates, err := remoteindex.Client{Client: deps.Session}.Builds(ctx, d.URL)
	if errors.Is(err, remoteindex.ErrNoLinks) {
		deps.IO.Notef("no builds of %s %s %s found", p, l, cfg.BuildNumber)
		return &act.NoOutput{}, nil
	} else if err != nil {
		return nil, err
	}
	for _, date := range dates {
		fmt.Fprintln(deps.IO.Out, date)
	}
	return &act.NoOutput{}, nil
}

// Command creates a new builds command instance.
func Command() *cobra.Command {
	cfg := Config{}
	cmd := &cobra.Command{
		Use:   "builds [BUILD_NUMBER] [--product P] [--license L]",
		Short: "List the dated builds available for a build number",
		Args:  cobra.MaximumNArgs(1),
		RunE: cli.RunE(
			&cfg,
			cli.OptionalArg(func(cfg *Config, bn string) { cfg.BuildNumber = bn }),
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
	set.StringVar(&cfg.Product, "product", distribution.SmartGWT.Label(), "the product, one of SmartClient, SmartGWT, SmartGWT.mobile")
	set.StringVar(&cfg.License, "license", distribution.LGPL.Label(), "the license, e.g. LGPL, Eval, Pro, PowerEdition, Enterprise")
	set.StringVar(&cfg.BuildNumber, "build-number", "", "the build number, e.g. 13.1p")
	return set
}
