// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

// Package glob provides Ant-style path matching on top of path.Match.
package glob

import (
	"path"
	"strings"

	"github.com/pkg/errors"
)

// ErrBadPattern is returned for patterns that can never match.
var ErrBadPattern = errors.New("invalid pattern")

// Match reports whether name matches the Ant-style pattern.
//   - '*', '?' and character classes match within a single path segment,
//     as with path.Match
//   - '**' matches zero or more whole path segments and may appear any
//     number of times
//   - '**' must occupy a whole segment: it is preceded and succeeded by '/'
//     or by the beginning/end of the pattern
func Match(pattern, name string) (bool, error) {
	segments, err := compile(pattern)
	if err != nil {
		return false, err
	}
	return matchSegments(segments, strings.Split(name, "/")), nil
}

// Validate reports whether pattern is well formed.
func Validate(pattern string) error {
	_, err := compile(pattern)
	return err
}

func compile(pattern string) ([]string, error) {
	segments := strings.Split(pattern, "/")
	for _, s := range segments {
		if s == "**" {
			continue
		}
		if strings.Contains(s, "**") {
			return nil, errors.Wrapf(ErrBadPattern, "'**' must be surrounded by slashes or be at start/end of pattern: %q", pattern)
		}
		// path.Match validates the full pattern even on mismatch.
		if _, err := path.Match(s, ""); err != nil {
			return nil, errors.Wrapf(ErrBadPattern, "%q", pattern)
		}
	}
	return segments, nil
}

func matchSegments(pattern, name []string) bool {
	for len(pattern) > 0 {
		if pattern[0] == "**" {
			for len(pattern) > 1 && pattern[1] == "**" {
				pattern = pattern[1:]
			}
			if len(pattern) == 1 {
				return true
			}
			for i := 0; i <= len(name); i++ {
				if matchSegments(pattern[1:], name[i:]) {
					return true
				}
			}
			return false
		}
		if len(name) == 0 {
			return false
		}
		// Patterns were validated by compile.
		if ok, _ := path.Match(pattern[0], name[0]); !ok {
			return false
		}
		pattern, name = pattern[1:], name[1:]
	}
	return len(name) == 0
}
