// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

package distribution

import (
	"path"
	"strings"

	"github.com/pkg/errors"
)

var (
	// ErrAnchorNotFound is returned when a target's anchor does not occur in the source path.
	ErrAnchorNotFound = errors.New("anchor not found in path")
	// ErrPathEscapesRoot is returned when a rewritten path leaves the target tree.
	ErrPathEscapesRoot = errors.New("rewritten path escapes target root")
)

// RewritePath computes where the entry at old lands for a rule target.
//
// A target without an extension names a directory and keeps the base name
// of old. A target with an extension also renames the file. The directory
// may hold one "prefix#anchor/suffix" token: the directory part of old
// following the first occurrence of anchor is placed between prefix and
// suffix, re-rooting a nested subtree. For example old
// "sdk/doc/javadoc/com/x/Y.html" under "doc/api/#javadoc" becomes
// "doc/api/com/x/Y.html".
func RewritePath(old, target string) (string, error) {
	dir, name := target, path.Base(old)
	if path.Ext(target) != "" {
		dir, name = path.Dir(target), path.Base(target)
	}
	if i := strings.Index(dir, "#"); i >= 0 {
		prefix := dir[:i]
		anchor, suffix, hasSuffix := strings.Cut(dir[i+1:], "/")
		j := strings.Index(old, anchor)
		if anchor == "" || j < 0 {
			return "", errors.Wrapf(ErrAnchorNotFound, "anchor %q of %q in %q", anchor, target, old)
		}
		rest := old[j+len(anchor):]
		if k := strings.LastIndex(rest, "/"); k >= 0 {
			rest = rest[:k+1]
		} else {
			rest = ""
		}
		dir = prefix + "/" + rest
		if hasSuffix {
			dir += "/" + suffix
		}
	}
	result := strings.TrimPrefix(path.Join(dir, name), "/")
	if result == ".." || strings.HasPrefix(result, "../") {
		return "", errors.Wrapf(ErrPathEscapesRoot, "%q under %q", old, target)
	}
	return result, nil
}
