// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

package distribution

import (
	"strings"

	"github.com/isomorphic-tools/sdkpackager/internal/glob"
	"github.com/pkg/errors"
)

// Filter accepts slash-separated paths by Ant-style include and exclude
// patterns. Excludes take precedence over includes.
type Filter struct {
	Includes []string
	Excludes []string
}

// NewFilter builds a filter from comma-separated pattern lists.
// Each pattern is trimmed; blank patterns are dropped.
func NewFilter(includes, excludes string) (*Filter, error) {
	f := &Filter{Includes: splitPatterns(includes), Excludes: splitPatterns(excludes)}
	for _, p := range append(append([]string{}, f.Includes...), f.Excludes...) {
		if err := glob.Validate(p); err != nil {
			return nil, errors.Wrap(err, "building filter")
		}
	}
	return f, nil
}

// MustFilter is NewFilter for static tables. It panics on an invalid pattern.
func MustFilter(includes, excludes string) *Filter {
	f, err := NewFilter(includes, excludes)
	if err != nil {
		panic(err)
	}
	return f
}

// Accept reports whether name matches an include and no exclude.
// A filter without includes accepts nothing.
func (f *Filter) Accept(name string) bool {
	for _, p := range f.Excludes {
		if match(p, name) {
			return false
		}
	}
	for _, p := range f.Includes {
		if match(p, name) {
			return true
		}
	}
	return false
}

func (f *Filter) String() string {
	s := strings.Join(f.Includes, ",")
	if len(f.Excludes) > 0 {
		s += " excluding " + strings.Join(f.Excludes, ",")
	}
	return s
}

func match(pattern, name string) bool {
	// Patterns were validated on construction.
	ok, _ := glob.Match(pattern, name)
	return ok
}

func splitPatterns(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
