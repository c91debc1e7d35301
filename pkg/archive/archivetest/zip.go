// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

// Package archivetest builds and inspects in-memory archives for tests.
package archivetest

import (
	"archive/zip"
	"bytes"
	"io"
	"sort"

	"github.com/isomorphic-tools/sdkpackager/pkg/archive"
)

// ZipFile writes entries, in order, to a new in-memory zip.
func ZipFile(entries []archive.ZipEntry) (*bytes.Buffer, error) {
	buf := new(bytes.Buffer)
	zw := zip.NewWriter(buf)
	for _, entry := range entries {
		if err := entry.WriteTo(zw); err != nil {
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf, nil
}

// Files is a convenience for ZipFile taking name to content pairs.
// Names ending in "/" become directory entries.
func Files(files map[string]string) (*bytes.Buffer, error) {
	var names []string
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)
	var entries []archive.ZipEntry
	for _, name := range names {
		entries = append(entries, archive.ZipEntry{
			FileHeader: &zip.FileHeader{Name: name, Method: zip.Deflate},
			Body:       []byte(files[name]),
		})
	}
	return ZipFile(entries)
}

// Contents reads a zip and returns its entry names in archive order
// alongside a name to content map for the regular files.
func Contents(r io.ReaderAt, size int64) ([]string, map[string]string, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, nil, err
	}
	var names []string
	content := make(map[string]string)
	for _, f := range zr.File {
		names = append(names, f.Name)
		if f.FileInfo().IsDir() {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, nil, err
		}
		b, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, nil, err
		}
		content[f.Name] = string(b)
	}
	return names, content, nil
}
