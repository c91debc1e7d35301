// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

package maven

import (
	"bytes"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// ErrNoFiles is returned when a tree holds no candidate artifacts.
var ErrNoFiles = errors.New("no files to work with")

// Directories searched for artifacts, besides the top level.
var artifactDirs = map[string]bool{"lib": true, "pom": true, "assembly": true}

var artifactExts = map[string]bool{".jar": true, ".xml": true, ".zip": true}

const (
	docDir    = "doc"
	docLibDir = "lib"
	snapshot  = "-SNAPSHOT"
)

// Collector pairs the artifacts of an unpacked tree with their POMs.
type Collector struct {
	// StripSnapshots rewrites every POM read to drop the -SNAPSHOT qualifier.
	StripSnapshots bool
}

// Collect returns the modules found in root, sorted by coordinates.
//
// Candidates are the jar, xml and zip files at the top level of root or
// inside lib, pom and assembly directories. An xml file is a standalone
// POM. A jar or zip is described by the single file named <base>.pom found
// anywhere in root, base being the file name with underscores turned into
// hyphens and the extension removed; artifacts with zero or several
// matches are skipped. A javadoc jar under doc/ sharing the base's first
// hyphen-delimited token is attached when it is unique.
func (c Collector) Collect(root billy.Filesystem) ([]*Module, error) {
	candidates, err := listFiles(root, "", func(name string) bool { return artifactDirs[name] })
	if err != nil {
		return nil, err
	}
	var files []string
	for _, f := range candidates {
		if artifactExts[strings.ToLower(path.Ext(f))] {
			files = append(files, f)
		}
	}
	if len(files) == 0 {
		return nil, errors.Wrapf(ErrNoFiles, "at %s", root.Root())
	}
	poms, err := c.indexPOMs(root)
	if err != nil {
		return nil, err
	}
	var result []*Module
	for _, file := range files {
		name := path.Base(file)
		base := strings.TrimSuffix(strings.ReplaceAll(name, "_", "-"), path.Ext(name))
		if strings.EqualFold(path.Ext(name), ".xml") {
			p, err := c.readPOM(root, file)
			if err != nil {
				return nil, err
			}
			result = append(result, NewModule(p, file, file))
			continue
		}
		matches := poms[strings.ToLower(base+".pom")]
		if len(matches) != 1 {
			log.Warnf("Expected to find exactly 1 POM matching artifact with name '%s', but found %d. Skipping installation.", base, len(matches))
			continue
		}
		p, err := c.readPOM(root, matches[0])
		if err != nil {
			return nil, err
		}
		m := NewModule(p, matches[0], file)
		prefix, _, _ := strings.Cut(base, "-")
		docs, err := javadocs(root, prefix)
		if err != nil {
			return nil, err
		}
		if len(docs) != 1 {
			log.Debugf("Found %d javadoc attachments with prefix '%s'. Skipping attachment.", len(docs), prefix)
		} else {
			m.Attach(docs[0], "javadoc")
		}
		result = append(result, m)
	}
	return sortModules(result), nil
}

// indexPOMs maps lower-cased file names ending in .pom to their paths.
func (c Collector) indexPOMs(root billy.Filesystem) (map[string][]string, error) {
	index := make(map[string][]string)
	err := util.Walk(root, ".", func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		name := strings.ToLower(info.Name())
		if !info.IsDir() && strings.HasSuffix(name, ".pom") {
			index[name] = append(index[name], relative(p))
		}
		return nil
	})
	return index, errors.Wrap(err, "searching for POMs")
}

func (c Collector) readPOM(root billy.Filesystem, name string) (*Project, error) {
	b, err := util.ReadFile(root, name)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", name)
	}
	if c.StripSnapshots && bytes.Contains(b, []byte(snapshot)) {
		log.Infof("Rewriting file to remove SNAPSHOT qualifier from development POM '%s'", path.Base(name))
		b = bytes.ReplaceAll(b, []byte(snapshot), nil)
		if err := util.WriteFile(root, name, b, 0o644); err != nil {
			return nil, errors.Wrapf(err, "rewriting %s", name)
		}
	}
	p, err := ParsePOM(bytes.NewReader(b))
	if err != nil {
		return nil, &POMError{Path: name, Err: err}
	}
	return p, nil
}

// javadocs lists files under doc/ named with prefix, descending only into
// lib directories.
func javadocs(root billy.Filesystem, prefix string) ([]string, error) {
	if _, err := root.Stat(docDir); err != nil {
		return nil, nil
	}
	files, err := listFiles(root, docDir, func(name string) bool { return name == docLibDir })
	if err != nil {
		return nil, err
	}
	var out []string
	for _, f := range files {
		if strings.HasPrefix(path.Base(f), prefix) {
			out = append(out, f)
		}
	}
	return out, nil
}

// listFiles returns the files of dir and, recursively, of the
// subdirectories whose name satisfies descend.
func listFiles(fs billy.Filesystem, dir string, descend func(string) bool) ([]string, error) {
	name := dir
	if name == "" {
		name = "."
	}
	infos, err := fs.ReadDir(name)
	if err != nil {
		return nil, errors.Wrapf(err, "listing %s", name)
	}
	var out []string
	for _, info := range infos {
		p := path.Join(dir, info.Name())
		if !info.IsDir() {
			out = append(out, p)
			continue
		}
		if !descend(info.Name()) {
			continue
		}
		sub, err := listFiles(fs, p, descend)
		if err != nil {
			return nil, err
		}
		out = append(out, sub...)
	}
	return out, nil
}

func relative(p string) string {
	return strings.TrimPrefix(path.Clean("/"+filepath.ToSlash(p)), "/")
}
