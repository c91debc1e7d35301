// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

package distribution

import (
	"regexp"
	"strings"

	"github.com/pkg/errors"
)

const (
	// DefaultRemoteIndex is the download page template of a build.
	DefaultRemoteIndex = "/builds/#product/#version/#license/#date/"
	// DefaultSelector matches links to downloadable archives.
	DefaultSelector = `(?i)\.(zip|jar)`
)

// ContentRule relocates every path accepted by Filter to Target.
// See RewritePath for the Target syntax.
type ContentRule struct {
	Target string
	Filter *Filter
}

// Spec describes where a (Product, License) pair is published and how its
// archives are laid out. Specs are shared through a Catalog and must not
// be modified once registered.
type Spec struct {
	Product Product
	License License
	// RemoteIndex is a site-relative URL template with the tokens #product,
	// #version, #license and #date.
	RemoteIndex string
	// LicenseToken replaces the license label in RemoteIndex when set.
	LicenseToken string
	// Selectors are regular expressions matched against link targets.
	Selectors []string
	// Contents is evaluated in order.
	Contents []ContentRule
}

// Key identifies the spec within a catalog.
func (s *Spec) Key() string {
	return s.Product.Label() + "/" + s.License.Label()
}

// Validate checks that the selectors compile and every rule is complete.
func (s *Spec) Validate() error {
	if s.RemoteIndex == "" {
		return errors.Errorf("%s: missing remote index", s.Key())
	}
	if len(s.Selectors) == 0 {
		return errors.Errorf("%s: no link selectors", s.Key())
	}
	for _, sel := range s.Selectors {
		if _, err := regexp.Compile(sel); err != nil {
			return errors.Wrapf(err, "%s: selector %q", s.Key(), sel)
		}
	}
	for i, r := range s.Contents {
		if r.Target == "" || r.Filter == nil {
			return errors.Errorf("%s: incomplete content rule %d", s.Key(), i)
		}
	}
	return nil
}

// Resolve returns a new Distribution for a build of this spec. An empty date
// yields the index listing the builds of version.
func (s *Spec) Resolve(version, date string) *Distribution {
	license := s.License.Label()
	if s.LicenseToken != "" {
		license = s.LicenseToken
	}
	url := s.RemoteIndex
	if date == "" {
		url = strings.Replace(url, "#date/", "", 1)
	}
	url = strings.NewReplacer(
		"#product", s.Product.Label(),
		"#version", version,
		"#license", license,
		"#date", date,
	).Replace(url)
	return &Distribution{Spec: s, Version: version, Date: date, URL: url}
}

// Distribution is one build of a Spec.
type Distribution struct {
	Spec    *Spec
	Version string
	Date    string
	// URL is the resolved site-relative index location.
	URL string
	// Files are the local archive names, relative to the download directory.
	Files []string
}
