// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

package distribution

import (
	"bytes"
	"errors"
	"io"
	"os"
	"sort"
	"testing"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/google/go-cmp/cmp"
	"github.com/isomorphic-tools/sdkpackager/pkg/archive/archivetest"
)

func must(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatal(err)
	}
}

func writeZip(t *testing.T, fs billy.Filesystem, name string, files map[string]string) {
	t.Helper()
	buf, err := archivetest.Files(files)
	must(t, err)
	must(t, util.WriteFile(fs, name, buf.Bytes(), 0o644))
}

func listFiles(t *testing.T, fs billy.Filesystem) []string {
	t.Helper()
	var out []string
	must(t, util.Walk(fs, "/", func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			out = append(out, trimRoot(p))
		}
		return nil
	}))
	sort.Strings(out)
	return out
}

func trimRoot(p string) string {
	for len(p) > 0 && p[0] == '/' {
		p = p[1:]
	}
	return p
}

func readFile(t *testing.T, fs billy.Filesystem, name string) string {
	t.Helper()
	b, err := util.ReadFile(fs, name)
	must(t, err)
	return string(b)
}

func testSpec(rules ...ContentRule) *Spec {
	return &Spec{
		Product:     SmartGWT,
		License:     LGPL,
		RemoteIndex: DefaultRemoteIndex,
		Selectors:   []string{DefaultSelector},
		Contents:    rules,
	}
}

func TestUnpackFirstMatchForLooseFiles(t *testing.T) {
	src, dst := memfs.New(), memfs.New()
	must(t, util.WriteFile(src, "a.jar", []byte("loose"), 0o644))
	must(t, util.WriteFile(src, "readme.txt", []byte("unmatched"), 0o644))
	writeZip(t, src, "bundle.zip", map[string]string{"x/b.jar": "zipped"})
	d := testSpec(rule("first", "**/*.jar", ""), rule("second", "**/*.jar", "")).Resolve("4.1d", "2013-11-20")
	d.Files = []string{"a.jar", "readme.txt", "bundle.zip"}

	must(t, Unpacker{Src: src, Dst: dst}.Unpack(d))

	want := []string{"first/a.jar", "first/b.jar", "lib/readme.txt", "second/b.jar"}
	if diff := cmp.Diff(want, listFiles(t, dst)); diff != "" {
		t.Errorf("unpacked files mismatch (-want +got):\n%s", diff)
	}
	if got := readFile(t, dst, "second/b.jar"); got != "zipped" {
		t.Errorf("second/b.jar = %q, want zipped", got)
	}
}

func TestUnpackRelocatesAndRenames(t *testing.T) {
	src, dst := memfs.New(), memfs.New()
	writeZip(t, src, "smartgwtee-4.1d.zip", map[string]string{
		"smartgwtee-4.1d/":                          "",
		"smartgwtee-4.1d/lib/smartgwtee.jar":        "ee",
		"smartgwtee-4.1d/lib/isomorphic_core.jar":   "core",
		"smartgwtee-4.1d/samples/lib/isc-extra.jar": "sample",
	})
	d := testSpec(
		rule("lib/smartgwt-enterprise.jar", "**/smartgwtee.jar", ""),
		rule("lib", jarIncludes, jarExcludes+", "+jarConflicts),
	).Resolve("4.1d", "2013-11-20")
	d.Files = []string{"smartgwtee-4.1d.zip"}

	must(t, Unpacker{Src: src, Dst: dst}.Unpack(d))

	want := []string{"lib/isomorphic_core.jar", "lib/smartgwt-enterprise.jar"}
	if diff := cmp.Diff(want, listFiles(t, dst)); diff != "" {
		t.Errorf("unpacked files mismatch (-want +got):\n%s", diff)
	}
}

func TestUnpackBundlesAssembliesAndJavadoc(t *testing.T) {
	src, dst := memfs.New(), memfs.New()
	writeZip(t, src, "sdk.zip", map[string]string{
		"sdk/selenium/user-extensions.js":       "ext",
		"sdk/batchReport.template":              "tpl",
		"sdk/doc/javadoc/index.html":            "client",
		"sdk/doc/javadoc/com/smartgwt/Foo.html": "foo",
		"sdk/doc/server/javadoc/index.html":     "server",
	})
	d := testSpec(
		rule("doc/api/client/#javadoc", smartGWTClientJavadoc, ""),
		rule("doc/api/server/#javadoc", smartGWTServerJavadoc, ""),
		rule("assembly/isc-selenium-resources", seleniumIncludes, ""),
	).Resolve("4.1d", "2013-11-20")
	d.Files = []string{"sdk.zip"}

	must(t, Unpacker{Src: src, Dst: dst}.Unpack(d))

	want := []string{
		"assembly/isc-selenium-resources.zip",
		"doc/api/client/com/smartgwt/Foo.html",
		"doc/api/client/index.html",
		"doc/api/server/index.html",
		"doc/lib/isomorphic-javadoc.jar",
		"doc/lib/smartgwt-javadoc.jar",
	}
	if diff := cmp.Diff(want, listFiles(t, dst)); diff != "" {
		t.Errorf("unpacked files mismatch (-want +got):\n%s", diff)
	}
	b, err := util.ReadFile(dst, "assembly/isc-selenium-resources.zip")
	must(t, err)
	names, _, err := archivetest.Contents(bytes.NewReader(b), int64(len(b)))
	must(t, err)
	if diff := cmp.Diff([]string{"batchReport.template", "user-extensions.js"}, names); diff != "" {
		t.Errorf("assembly entries mismatch (-want +got):\n%s", diff)
	}
	b, err = util.ReadFile(dst, "doc/lib/smartgwt-javadoc.jar")
	must(t, err)
	names, content, err := archivetest.Contents(bytes.NewReader(b), int64(len(b)))
	must(t, err)
	if len(names) == 0 || names[0] != "META-INF/" {
		t.Errorf("javadoc jar entries = %v, want META-INF first", names)
	}
	if content["index.html"] != "client" {
		t.Errorf("javadoc index.html = %q", content["index.html"])
	}
}

func TestUnpackMissingAnchorFails(t *testing.T) {
	src, dst := memfs.New(), memfs.New()
	writeZip(t, src, "bundle.zip", map[string]string{"x/a.jar": "a"})
	d := testSpec(rule("doc/#javadoc", "**/*.jar", "")).Resolve("4.1d", "2013-11-20")
	d.Files = []string{"bundle.zip"}
	err := Unpacker{Src: src, Dst: dst}.Unpack(d)
	if !errors.Is(err, ErrAnchorNotFound) {
		t.Errorf("Unpack() error = %v, want ErrAnchorNotFound", err)
	}
}

func TestUnpackOverwritesExisting(t *testing.T) {
	src, dst := memfs.New(), memfs.New()
	must(t, util.WriteFile(dst, "lib/a.jar", []byte("a much longer stale body"), 0o644))
	must(t, util.WriteFile(src, "a.jar", []byte("new"), 0o644))
	d := testSpec().Resolve("4.1d", "2013-11-20")
	d.Files = []string{"a.jar"}
	must(t, Unpacker{Src: src, Dst: dst}.Unpack(d))
	f, err := dst.Open("lib/a.jar")
	must(t, err)
	defer f.Close()
	b, err := io.ReadAll(f)
	must(t, err)
	if string(b) != "new" {
		t.Errorf("lib/a.jar = %q, want new", b)
	}
}
