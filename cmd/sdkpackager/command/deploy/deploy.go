// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

package deploy

import (
	"context"
	"flag"
	"net/http"
	"net/url"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/isomorphic-tools/sdkpackager/cmd/sdkpackager/command/build"
	"github.com/isomorphic-tools/sdkpackager/internal/httpx"
	"github.com/isomorphic-tools/sdkpackager/pkg/act"
	"github.com/isomorphic-tools/sdkpackager/pkg/act/cli"
	"github.com/isomorphic-tools/sdkpackager/pkg/maven"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// Config holds all configuration for the deploy command.
type Config struct {
	build.Selection
	// RepositoryURL overrides the configured remote repository.
	RepositoryURL string
}

// Validate ensures the configuration is valid.
func (c Config) Validate() error {
	if c.RepositoryURL != "" {
		if u, err := url.Parse(c.RepositoryURL); err != nil || u.Host == "" {
			return errors.Errorf("repository URL %q is not absolute", c.RepositoryURL)
		}
	}
	return c.Selection.Validate()
}

// Deps holds dependencies for the command.
type Deps struct {
	*build.Deps
	// Client sends repository requests.
	Client httpx.BasicClient
}

// InitDeps initializes Deps.
func InitDeps(ctx context.Context) (*Deps, error) {
	d, err := build.InitDeps(ctx)
	if err != nil {
		return nil, err
	}
	return &Deps{Deps: d, Client: &httpx.WithUserAgent{BasicClient: http.DefaultClient, UserAgent: build.UserAgent}}, nil
}

// Handler prepares a build and uploads its modules to a remote repository.
func Handler(ctx context.Context, cfg Config, deps *Deps) (*act.NoOutput, error) {
	raw := cfg.RepositoryURL
	if raw == "" {
		raw = deps.Config.Repository.URL
	}
	if raw == "" {
		return nil, errors.New("no repository URL configured")
	}
	repo, err := url.Parse(raw)
	if err != nil {
		return nil, errors.Wrap(err, "parsing repository URL")
	}
	deploy := func(ctx context.Context, root billy.Filesystem, modules []*maven.Module) error {
		d := maven.Deployer{
			Client:   deps.Client,
			URL:      repo,
			Username: deps.Config.Repository.Username,
			Password: deps.Config.Repository.Password,
			Src:      root,
			Now:      time.Now,
		}
		return d.Deploy(ctx, modules)
	}
	if _, err := deps.Run(ctx, cfg.Selection, deploy); err != nil {
		return nil, err
	}
	return &act.NoOutput{}, nil
}

// Command creates a new deploy command instance.
func Command() *cobra.Command {
	cfg := Config{}
	cmd := &cobra.Command{
		Use:   "deploy --build-number <N> [--product P] [--license L] [--repository-url <url>]",
		Short: "Deploy a build's artifacts to a remote Maven repository",
		Args:  cobra.NoArgs,
		RunE: cli.RunE(
			&cfg,
			cli.SkipArgs[Config],
			InitDeps,
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
	set.StringVar(&cfg.RepositoryURL, "repository-url", "", "the remote repository root (default from repository.url)")
	return set
}
