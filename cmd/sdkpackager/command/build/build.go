// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

// Package build holds the build selection flags and dependencies shared by
// the commands that run the packager.
package build

import (
	"context"
	"flag"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/isomorphic-tools/sdkpackager/internal/config"
	"github.com/isomorphic-tools/sdkpackager/internal/progress"
	"github.com/isomorphic-tools/sdkpackager/pkg/act/cli"
	"github.com/isomorphic-tools/sdkpackager/pkg/distribution"
	"github.com/isomorphic-tools/sdkpackager/pkg/maven"
	"github.com/isomorphic-tools/sdkpackager/pkg/packager"
	"github.com/isomorphic-tools/sdkpackager/pkg/site"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// UserAgent identifies the tool to remote servers.
const UserAgent = "sdkpackager/1.0"

var (
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
)

// Selection identifies a build and how to prepare it.
type Selection struct {
	Product     string
	License     string
	BuildNumber string
	BuildDate   string

	Overwrite    bool
	SkipDownload bool
	SkipExtract  bool

	IncludeAnalytics bool
	IncludeMessaging bool
	IncludeAI        bool

	Snapshots    bool
	CopyToLatest bool
}

// AddFlags registers the selection flags on set.
func (s *Selection) AddFlags(set *flag.FlagSet) {
	set.StringVar(&s.Product, "product", distribution.SmartGWT.Label(), "the product, one of SmartClient, SmartGWT, SmartGWT.mobile")
	set.StringVar(&s.License, "license", distribution.LGPL.Label(), "the license, e.g. LGPL, Eval, Pro, PowerEdition, Enterprise")
	set.StringVar(&s.BuildNumber, "build-number", "", "the build number, e.g. 13.1p or 14.0d")
	set.StringVar(&s.BuildDate, "build-date", "", "the build date as yyyy-MM-dd; the most recent build when empty")
	set.BoolVar(&s.Overwrite, "overwrite", false, "download files even when already present")
	set.BoolVar(&s.SkipDownload, "skip-download", false, "use the archives already in the work directory")
	set.BoolVar(&s.SkipExtract, "skip-extract", false, "use the tree already unpacked in the work directory")
	set.BoolVar(&s.IncludeAnalytics, "include-analytics", false, "add the analytics module (Power and Enterprise only)")
	set.BoolVar(&s.IncludeMessaging, "include-messaging", false, "add the realtime messaging module (Power and Enterprise only)")
	set.BoolVar(&s.IncludeAI, "include-ai", false, "add the AI module (Power and Enterprise only)")
	set.BoolVar(&s.Snapshots, "snapshots", false, "keep -SNAPSHOT versions of development builds")
	set.BoolVar(&s.CopyToLatest, "copy-to-latest", false, "mirror the result into a sibling latest directory")
}

// Validate ensures the selection names a valid build.
func (s Selection) Validate() error {
	_, err := s.PackagerConfig()
	return err
}

// PackagerConfig converts the flags into a validated packager.Config.
func (s Selection) PackagerConfig() (packager.Config, error) {
	p, err := distribution.ParseProduct(s.Product)
	if err != nil {
		return packager.Config{}, errors.Wrap(packager.ErrInvalidConfig, err.Error())
	}
	l, err := distribution.ParseLicense(s.License)
	if err != nil {
		return packager.Config{}, errors.Wrap(packager.ErrInvalidConfig, err.Error())
	}
	cfg := packager.Config{
		Product:          p,
		License:          l,
		BuildNumber:      s.BuildNumber,
		BuildDate:        s.BuildDate,
		Overwrite:        s.Overwrite,
		SkipDownload:     s.SkipDownload,
		SkipExtract:      s.SkipExtract,
		IncludeAnalytics: s.IncludeAnalytics,
		IncludeMessaging: s.IncludeMessaging,
		IncludeAI:        s.IncludeAI,
		Snapshots:        s.Snapshots,
		CopyToLatest:     s.CopyToLatest,
	}
	return cfg, cfg.Validate()
}

// Deps holds dependencies for the packaging commands.
type Deps struct {
	IO      cli.IO
	Config  *config.Config
	Session *site.Client
	Catalog *distribution.Catalog
}

func (d *Deps) SetIO(cio cli.IO) { d.IO = cio }

// InitDeps opens a site session from the configuration in ctx.
func InitDeps(ctx context.Context) (*Deps, error) {
	cfg, err := config.FromContext(ctx)
	if err != nil {
		return nil, err
	}
	session, err := site.New(cfg.Site(UserAgent))
	if err != nil {
		return nil, errors.Wrap(err, "creating site session")
	}
	return &Deps{Config: cfg, Session: session, Catalog: distribution.DefaultCatalog()}, nil
}

// Run prepares the selected build under the configured work directory and
// passes the collected modules to h.
func (d *Deps) Run(ctx context.Context, s Selection, h packager.Handler) (*packager.Result, error) {
	cfg, err := s.PackagerConfig()
	if err != nil {
		return nil, err
	}
	p := &packager.Packager{
		Catalog:  d.Catalog,
		Session:  d.Session,
		Workdir:  d.Config.Workdir,
		Progress: progress.Bars{Output: d.IO.Err},
	}
	res, err := p.Run(ctx, cfg, h)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(d.IO.Err, "%s %s/%s/%s (%d modules)\n", green("Prepared"), cfg.Product, cfg.License, res.BuildDate, len(res.Modules))
	return res, nil
}

// Output formats for module listings.
const (
	OutputText = "text"
	OutputYAML = "yaml"
)

// ValidateOutput rejects unknown output formats.
func ValidateOutput(format string) error {
	switch format {
	case OutputText, OutputYAML:
		return nil
	default:
		return errors.Errorf("unknown output format %q", format)
	}
}

// PrintModules lists modules as coordinates or as YAML.
func PrintModules(w io.Writer, modules []*maven.Module, format string) error {
	if format == OutputYAML {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(modules); err != nil {
			return errors.Wrap(err, "encoding modules")
		}
		return enc.Close()
	}
	for _, m := range modules {
		fmt.Fprintf(w, "%s %s\n", m, yellow(m.File))
		for _, a := range m.Attachments {
			fmt.Fprintf(w, "  %s %s\n", attachmentLabel(a), yellow(a.File))
		}
	}
	return nil
}

func attachmentLabel(a maven.Artifact) string {
	if a.Classifier == "" {
		return a.Extension
	}
	return a.Classifier + ":" + a.Extension
}
