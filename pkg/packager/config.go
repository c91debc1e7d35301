// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

package packager

import (
	"regexp"
	"time"

	"github.com/isomorphic-tools/sdkpackager/pkg/distribution"
	"github.com/pkg/errors"
)

// ErrInvalidConfig is returned for parameters rejected before any network activity.
var ErrInvalidConfig = errors.New("invalid configuration")

// DateLayout is the format of build dates, e.g. 2013-11-20.
const DateLayout = "2006-01-02"

var buildNumberPattern = regexp.MustCompile(`^\d.*\.\d.*[d|p]$`)

// Config selects a build and what to do with it.
type Config struct {
	Product     distribution.Product
	License     distribution.License
	BuildNumber string
	// BuildDate is discovered from the site when empty.
	BuildDate string

	Overwrite    bool
	SkipDownload bool
	SkipExtract  bool

	// Optional modules, honoured for Power and Enterprise licenses.
	IncludeAnalytics bool
	IncludeMessaging bool
	IncludeAI        bool

	// Snapshots keeps -SNAPSHOT versions of development builds.
	Snapshots    bool
	CopyToLatest bool
}

// Validate checks the parameter formats.
func (c Config) Validate() error {
	if !buildNumberPattern.MatchString(c.BuildNumber) {
		return errors.Wrapf(ErrInvalidConfig, "buildNumber '%s' must take the form [major].[minor].[d|p], e.g. 4.1d", c.BuildNumber)
	}
	if c.BuildDate == "" {
		if c.SkipDownload {
			return errors.Wrap(ErrInvalidConfig, "a buildDate value is required when skipping downloads")
		}
		return nil
	}
	return validateDate(c.BuildDate)
}

func validateDate(date string) error {
	if _, err := time.Parse(DateLayout, date); err != nil {
		return errors.Wrapf(ErrInvalidConfig, "buildDate '%s' must take the form yyyy-MM-dd", date)
	}
	return nil
}

// Licenses lists the license of the build followed by the requested modules.
func (c Config) Licenses() []distribution.License {
	out := []distribution.License{c.License}
	if c.License != distribution.Power && c.License != distribution.Enterprise {
		return out
	}
	if c.IncludeAnalytics {
		out = append(out, distribution.AnalyticsModule)
	}
	if c.IncludeMessaging {
		out = append(out, distribution.MessagingModule)
	}
	if c.IncludeAI {
		out = append(out, distribution.AIModule)
	}
	return out
}

// StripSnapshots reports whether POM versions lose their -SNAPSHOT qualifier.
func (c Config) StripSnapshots() bool {
	return len(c.BuildNumber) > 0 && c.BuildNumber[len(c.BuildNumber)-1] == 'd' && !c.Snapshots
}
