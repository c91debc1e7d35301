// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

// Package archive builds zip and jar bundles from directory trees.
package archive

import (
	"archive/zip"
	"bytes"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"github.com/pkg/errors"
)

// ZipEntry represents an entry in a zip archive.
type ZipEntry struct {
	*zip.FileHeader
	Body []byte
}

// WriteTo writes the ZipEntry to a zip writer.
func (e ZipEntry) WriteTo(zw *zip.Writer) error {
	fw, err := zw.CreateHeader(e.FileHeader)
	if err != nil {
		return err
	}
	if _, err := io.Copy(fw, bytes.NewReader(e.Body)); err != nil {
		return err
	}
	return nil
}

// WriteZip archives every file and directory below dir in fsys into w.
// Entry names are relative to dir, slash separated; directories are
// recorded with a trailing slash.
func WriteZip(w io.Writer, fsys billy.Filesystem, dir string) error {
	zw := zip.NewWriter(w)
	if err := addTree(zw, fsys, dir, nil); err != nil {
		zw.Close()
		return err
	}
	return errors.Wrap(zw.Close(), "closing zip")
}

// WriteJar is WriteZip preceded by the META-INF/MANIFEST.MF entry for m.
// A manifest already present in the tree is replaced.
func WriteJar(w io.Writer, fsys billy.Filesystem, dir string, m *Manifest) error {
	zw := zip.NewWriter(w)
	if err := writeManifestEntry(zw, m); err != nil {
		zw.Close()
		return err
	}
	skip := map[string]bool{"META-INF/": true, ManifestPath: true}
	if err := addTree(zw, fsys, dir, skip); err != nil {
		zw.Close()
		return err
	}
	return errors.Wrap(zw.Close(), "closing jar")
}

// CreateZip writes the tree below dir to the file target, both in fsys.
func CreateZip(fsys billy.Filesystem, dir, target string) error {
	return create(fsys, target, func(w io.Writer) error { return WriteZip(w, fsys, dir) })
}

// CreateJar writes the tree below dir as a jar to the file target, both in fsys.
func CreateJar(fsys billy.Filesystem, dir, target string, m *Manifest) error {
	return create(fsys, target, func(w io.Writer) error { return WriteJar(w, fsys, dir, m) })
}

func create(fsys billy.Filesystem, target string, write func(io.Writer) error) error {
	if err := fsys.MkdirAll(path.Dir(target), 0o755); err != nil {
		return errors.Wrapf(err, "creating parent of %s", target)
	}
	f, err := fsys.Create(target)
	if err != nil {
		return errors.Wrapf(err, "creating %s", target)
	}
	if err := write(f); err != nil {
		f.Close()
		return errors.Wrapf(err, "writing %s", target)
	}
	return errors.Wrapf(f.Close(), "closing %s", target)
}

func writeManifestEntry(zw *zip.Writer, m *Manifest) error {
	if _, err := zw.CreateHeader(&zip.FileHeader{Name: "META-INF/", Method: zip.Store}); err != nil {
		return errors.Wrap(err, "adding META-INF")
	}
	fw, err := zw.CreateHeader(&zip.FileHeader{Name: ManifestPath, Method: zip.Deflate})
	if err != nil {
		return errors.Wrap(err, "adding manifest")
	}
	return errors.Wrap(WriteManifest(fw, m), "writing manifest")
}

func addTree(zw *zip.Writer, fsys billy.Filesystem, dir string, skip map[string]bool) error {
	return util.Walk(fsys, dir, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		name := filepath.ToSlash(rel)
		if info.IsDir() {
			name += "/"
		}
		if skip[name] {
			return nil
		}
		hdr, err := zip.FileInfoHeader(info)
		if err != nil {
			return errors.Wrapf(err, "describing %s", p)
		}
		hdr.Name = name
		if info.IsDir() {
			hdr.Method = zip.Store
			_, err := zw.CreateHeader(hdr)
			return errors.Wrapf(err, "adding %s", name)
		}
		hdr.Method = zip.Deflate
		fw, err := zw.CreateHeader(hdr)
		if err != nil {
			return errors.Wrapf(err, "adding %s", name)
		}
		f, err := fsys.Open(p)
		if err != nil {
			return err
		}
		defer f.Close()
		_, err = io.Copy(fw, f)
		return errors.Wrapf(err, "copying %s", name)
	})
}

// IsZip reports whether name carries a zip extension. Jars are treated as
// opaque files, never opened.
func IsZip(name string) bool {
	return strings.EqualFold(path.Ext(name), ".zip")
}
