// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

package catalog

import (
	"context"
	"flag"
	"fmt"

	"github.com/fatih/color"
	"github.com/isomorphic-tools/sdkpackager/cmd/sdkpackager/command/build"
	"github.com/isomorphic-tools/sdkpackager/pkg/act"
	"github.com/isomorphic-tools/sdkpackager/pkg/act/cli"
	"github.com/isomorphic-tools/sdkpackager/pkg/distribution"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the catalog command.
type Config struct {
	Output string
	// Verbose includes the content rules in text output.
	Verbose bool
}

// Validate ensures the configuration is valid.
func (c Config) Validate() error {
	return build.ValidateOutput(c.Output)
}

// Deps holds dependencies for the command.
type Deps struct {
	IO      cli.IO
	Catalog *distribution.Catalog
}

func (d *Deps) SetIO(cio cli.IO) { d.IO = cio }

// InitDeps initializes Deps.
func InitDeps(context.Context) (*Deps, error) {
	return &Deps{Catalog: distribution.DefaultCatalog()}, nil
}

type ruleView struct {
	Target   string   `yaml:"target"`
	Includes []string `yaml:"includes,omitempty"`
	Excludes []string `yaml:"excludes,omitempty"`
}

type specView struct {
	Product      string     `yaml:"product"`
	License      string     `yaml:"license"`
	RemoteIndex  string     `yaml:"remoteIndex"`
	LicenseToken string     `yaml:"licenseToken,omitempty"`
	Selectors    []string   `yaml:"selectors"`
	Contents     []ruleView `yaml:"contents"`
}

func view(s *distribution.Spec) specView {
	v := specView{
		Product:      s.Product.Label(),
		License:      s.License.Label(),
		RemoteIndex:  s.RemoteIndex,
		LicenseToken: s.LicenseToken,
		Selectors:    s.Selectors,
	}
	for _, r := range s.Contents {
		v.Contents = append(v.Contents, ruleView{Target: r.Target, Includes: r.Filter.Includes, Excludes: r.Filter.Excludes})
	}
	return v
}

// Handler prints the known distributions.
func Handler(ctx context.Context, cfg Config, deps *Deps) (*act.NoOutput, error) {
	specs := deps.Catalog.All()
	if cfg.Output == build.OutputYAML {
		views := make([]specView, 0, len(specs))
		for _, s := range specs {
			views = append(views, view(s))
		}
		enc := yaml.NewEncoder(deps.IO.Out)
		enc.SetIndent(2)
		if err := enc.Encode(views); err != nil {
			return nil, errors.Wrap(err, "encoding catalog")
		}
		return &act.NoOutput{}, enc.Close()
	}
	bold := color.New(color.Bold).SprintFunc()
	for _, s := range specs {
		fmt.Fprintf(deps.IO.Out, "%s %s\n", bold(s.Key()), s.Resolve("<version>", "<date>").URL)
		if !cfg.Verbose {
			continue
		}
		for _, r := range s.Contents {
			fmt.Fprintf(deps.IO.Out, "  %s <- %s\n", r.Target, r.Filter)
		}
	}
	return &act.NoOutput{}, nil
}

// Command creates a new catalog command instance.
func Command() *cobra.Command {
	cfg := Config{}
	cmd := &cobra.Command{
		Use:   "catalog [--output text|yaml] [--verbose]",
		Short: "List the known product and license distributions",
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
	set.StringVar(&cfg.Output, "output", build.OutputText, "output format [text, yaml]")
	set.BoolVar(&cfg.Verbose, "verbose", false, "include the content rules of each distribution")
	return set
}
