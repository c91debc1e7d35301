// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

package packager

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/google/go-cmp/cmp"
	"github.com/isomorphic-tools/sdkpackager/internal/httpx/httpxtest"
	"github.com/isomorphic-tools/sdkpackager/pkg/archive/archivetest"
	"github.com/isomorphic-tools/sdkpackager/pkg/distribution"
	"github.com/isomorphic-tools/sdkpackager/pkg/download"
	"github.com/isomorphic-tools/sdkpackager/pkg/maven"
)

const (
	baseDir    = "SmartGWT/LGPL/4.1d/2013-11-20"
	buildsURL  = "/builds/SmartGWT/4.1d/LGPL/"
	datedURL   = buildsURL + "2013-11-20/"
	bundleName = "smartgwt-4.1d.zip"
)

func must(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatal(err)
	}
}

// fakeSession counts logins and logouts around a scripted client.
type fakeSession struct {
	*httpxtest.MockClient
	logins, logouts int
	loginErr        error
}

func (s *fakeSession) Login(context.Context) error {
	s.logins++
	return s.loginErr
}

func (s *fakeSession) Logout(context.Context) error {
	s.logouts++
	return errors.New("logout is ignored")
}

func testCatalog(t *testing.T) *distribution.Catalog {
	t.Helper()
	c, err := distribution.NewCatalog(&distribution.Spec{
		Product:     distribution.SmartGWT,
		License:     distribution.LGPL,
		RemoteIndex: distribution.DefaultRemoteIndex,
		Selectors:   []string{distribution.DefaultSelector},
		Contents: []distribution.ContentRule{
			{Target: distribution.LibDir, Filter: distribution.MustFilter("**/*.jar", "")},
			{Target: distribution.PomDir, Filter: distribution.MustFilter("**/*.pom", "")},
			{Target: "scripts", Filter: distribution.MustFilter("**/*.sh", "")},
		},
	})
	must(t, err)
	return c
}

const smartgwtPOM = `<project><groupId>com.isomorphic.smartgwt</groupId>` +
	`<artifactId>smartgwt-lgpl</artifactId><version>4.1-SNAPSHOT</version></project>`

func bundle(t *testing.T) []byte {
	t.Helper()
	buf, err := archivetest.Files(map[string]string{
		"smartgwt-4.1d/lib/smartgwt-lgpl.jar": "jar",
		"smartgwt-4.1d/lib/smartgwt-lgpl.pom": smartgwtPOM,
		"smartgwt-4.1d/samples/build.sh":      "#!/bin/sh",
		"smartgwt-4.1d/samples/README.txt":    "dropped",
	})
	must(t, err)
	return buf.Bytes()
}

const indexPage = `<html><body><a href="` + datedURL + bundleName + `">download</a></body></html>`

const buildsPage = `<html><body>
<a href="../">up</a>
<a href="2013-11-20/">2013-11-20/</a>
<a href="2013-11-18/">2013-11-18/</a>
</body></html>`

var wantModules = []*maven.Module{{
	GroupID:     "com.isomorphic.smartgwt",
	ArtifactID:  "smartgwt-lgpl",
	Version:     "4.1",
	Extension:   "jar",
	File:        "lib/smartgwt-lgpl.jar",
	Attachments: []maven.Artifact{{Extension: "pom", File: "pom/smartgwt-lgpl.pom"}},
}}

func lgplConfig() Config {
	return Config{Product: distribution.SmartGWT, License: distribution.LGPL, BuildNumber: "4.1d"}
}

func TestRun(t *testing.T) {
	for _, tc := range []struct {
		name  string
		date  string
		calls []httpxtest.Call
	}{
		{
			name: "given date",
			date: "2013-11-20",
			calls: []httpxtest.Call{
				{Method: "GET", URL: datedURL, Response: httpxtest.Response(200, indexPage)},
				{Method: "GET", URL: datedURL + bundleName, Response: httpxtest.Response(200, string(bundle(t)))},
			},
		},
		{
			name: "discovered date",
			calls: []httpxtest.Call{
				{Method: "GET", URL: buildsURL, Response: httpxtest.Response(200, buildsPage)},
				{Method: "GET", URL: datedURL, Response: httpxtest.Response(200, indexPage)},
				{Method: "GET", URL: datedURL + bundleName, Response: httpxtest.Response(200, string(bundle(t)))},
			},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			session := &fakeSession{MockClient: &httpxtest.MockClient{Calls: tc.calls, URLValidator: httpxtest.NewURLValidator(t)}}
			fs := memfs.New()
			p := &Packager{Catalog: testCatalog(t), Session: session, FS: fs}
			cfg := lgplConfig()
			cfg.BuildDate = tc.date
			var handled []*maven.Module
			var jar string
			res, err := p.Run(context.Background(), cfg, func(_ context.Context, root billy.Filesystem, modules []*maven.Module) error {
				handled = modules
				b, err := util.ReadFile(root, modules[0].File)
				jar = string(b)
				return err
			})
			must(t, err)
			if res.BaseDir != baseDir || res.BuildDate != "2013-11-20" {
				t.Errorf("Run() = %+v, want base %s", res, baseDir)
			}
			if diff := cmp.Diff(wantModules, handled); diff != "" {
				t.Errorf("handled modules mismatch (-want +got):\n%s", diff)
			}
			if jar != "jar" {
				t.Errorf("handler read %q, want %q", jar, "jar")
			}
			if session.MockClient.CallCount() != len(tc.calls) {
				t.Errorf("CallCount() = %d, want %d", session.MockClient.CallCount(), len(tc.calls))
			}
			if session.logins != 1 || session.logouts != 1 {
				t.Errorf("logins, logouts = %d, %d; want 1, 1", session.logins, session.logouts)
			}
			for _, name := range []string{"zip/" + bundleName, "scripts/build.sh", "pom/smartgwt-lgpl.pom"} {
				if _, err := fs.Stat(baseDir + "/" + name); err != nil {
					t.Errorf("Stat(%s) = %v", name, err)
				}
			}
		})
	}
}

func TestRunSkipDownload(t *testing.T) {
	fs := memfs.New()
	must(t, util.WriteFile(fs, baseDir+"/zip/"+bundleName, bundle(t), 0o644))
	p := &Packager{Catalog: testCatalog(t), FS: fs}
	cfg := lgplConfig()
	cfg.BuildDate = "2013-11-20"
	cfg.SkipDownload = true
	res, err := p.Run(context.Background(), cfg, nil)
	must(t, err)
	if diff := cmp.Diff(wantModules, res.Modules); diff != "" {
		t.Errorf("Modules mismatch (-want +got):\n%s", diff)
	}
}

func TestRunSkipDownloadIgnoresPartialDownloads(t *testing.T) {
	fs := memfs.New()
	must(t, util.WriteFile(fs, baseDir+"/zip/"+bundleName, bundle(t), 0o644))
	must(t, util.WriteFile(fs, baseDir+"/zip/.smartgwt.jar.part-123", []byte("partial"), 0o644))
	p := &Packager{Catalog: testCatalog(t), FS: fs}
	cfg := lgplConfig()
	cfg.BuildDate = "2013-11-20"
	cfg.SkipDownload = true
	res, err := p.Run(context.Background(), cfg, nil)
	must(t, err)
	if diff := cmp.Diff(wantModules, res.Modules); diff != "" {
		t.Errorf("Modules mismatch (-want +got):\n%s", diff)
	}
	if _, err := fs.Stat(baseDir + "/lib/.smartgwt.jar.part-123"); err == nil {
		t.Error("partial download copied into lib/")
	}
}

func TestRunSkipDownloadWithoutArchives(t *testing.T) {
	p := &Packager{Catalog: testCatalog(t), FS: memfs.New()}
	cfg := lgplConfig()
	cfg.BuildDate = "2013-11-20"
	cfg.SkipDownload = true
	if _, err := p.Run(context.Background(), cfg, nil); !errors.Is(err, maven.ErrNoFiles) {
		t.Errorf("Run() = %v, want ErrNoFiles", err)
	}
}

func TestRunSnapshots(t *testing.T) {
	fs := memfs.New()
	must(t, util.WriteFile(fs, baseDir+"/zip/"+bundleName, bundle(t), 0o644))
	p := &Packager{Catalog: testCatalog(t), FS: fs}
	cfg := lgplConfig()
	cfg.BuildDate = "2013-11-20"
	cfg.SkipDownload = true
	cfg.Snapshots = true
	res, err := p.Run(context.Background(), cfg, nil)
	must(t, err)
	if got := res.Modules[0].Version; got != "4.1-SNAPSHOT" {
		t.Errorf("Version = %q, want 4.1-SNAPSHOT", got)
	}
}

func TestRunRejectsConfig(t *testing.T) {
	session := &fakeSession{MockClient: &httpxtest.MockClient{URLValidator: httpxtest.NewURLValidator(t)}}
	p := &Packager{Catalog: testCatalog(t), Session: session, FS: memfs.New()}
	cfg := lgplConfig()
	cfg.BuildNumber = "4.1"
	if _, err := p.Run(context.Background(), cfg, nil); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Run() = %v, want ErrInvalidConfig", err)
	}
	cfg = lgplConfig()
	cfg.License = distribution.Enterprise
	if _, err := p.Run(context.Background(), cfg, nil); !errors.Is(err, distribution.ErrUnknownDistribution) {
		t.Errorf("Run() = %v, want ErrUnknownDistribution", err)
	}
	if session.logins != 0 {
		t.Errorf("logins = %d, want 0", session.logins)
	}
}

func TestRunNoBuild(t *testing.T) {
	session := &fakeSession{MockClient: &httpxtest.MockClient{
		Calls:        []httpxtest.Call{{Method: "GET", URL: buildsURL, Response: httpxtest.Response(200, "<html></html>")}},
		URLValidator: httpxtest.NewURLValidator(t),
	}}
	p := &Packager{Catalog: testCatalog(t), Session: session, FS: memfs.New()}
	if _, err := p.Run(context.Background(), lgplConfig(), nil); !errors.Is(err, download.ErrNoBuild) {
		t.Errorf("Run() = %v, want ErrNoBuild", err)
	}
	if session.logouts != 1 {
		t.Errorf("logouts = %d, want 1", session.logouts)
	}
}

func TestRunLoginFailure(t *testing.T) {
	session := &fakeSession{
		MockClient: &httpxtest.MockClient{URLValidator: httpxtest.NewURLValidator(t)},
		loginErr:   errors.New("bad credentials"),
	}
	p := &Packager{Catalog: testCatalog(t), Session: session, FS: memfs.New()}
	cfg := lgplConfig()
	cfg.BuildDate = "2013-11-20"
	if _, err := p.Run(context.Background(), cfg, nil); err == nil {
		t.Fatal("Run() = nil, want error")
	}
	if session.logouts != 1 || session.MockClient.CallCount() != 0 {
		t.Errorf("logouts, calls = %d, %d; want 1, 0", session.logouts, session.MockClient.CallCount())
	}
}

func TestRunCopyToLatest(t *testing.T) {
	dir := t.TempDir()
	must(t, os.MkdirAll(filepath.Join(dir, baseDir, "zip"), 0o755))
	must(t, os.WriteFile(filepath.Join(dir, baseDir, "zip", bundleName), bundle(t), 0o644))
	stale := filepath.Join(dir, "SmartGWT/LGPL/4.1d/latest/stale.txt")
	must(t, os.MkdirAll(filepath.Dir(stale), 0o755))
	must(t, os.WriteFile(stale, []byte("old"), 0o644))

	p := &Packager{Catalog: testCatalog(t), Workdir: dir}
	cfg := lgplConfig()
	cfg.BuildDate = "2013-11-20"
	cfg.SkipDownload = true
	cfg.CopyToLatest = true
	_, err := p.Run(context.Background(), cfg, nil)
	must(t, err)

	latest := filepath.Join(dir, "SmartGWT/LGPL/4.1d/latest")
	if _, err := os.Stat(filepath.Join(latest, "lib", "smartgwt-lgpl.jar")); err != nil {
		t.Errorf("latest jar: %v", err)
	}
	if _, err := os.Stat(filepath.Join(latest, "zip")); !os.IsNotExist(err) {
		t.Errorf("latest/zip: err = %v, want not exist", err)
	}
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Errorf("stale file: err = %v, want not exist", err)
	}
	for _, dir := range []string{filepath.Join(dir, baseDir), latest} {
		info, err := os.Stat(filepath.Join(dir, "scripts", "build.sh"))
		must(t, err)
		if info.Mode().Perm()&0o111 != 0o111 {
			t.Errorf("%s mode = %v, want executable", dir, info.Mode())
		}
	}
}

func TestRunDefaultCatalog(t *testing.T) {
	extras := func(artifact, version, packaging string) string {
		return `<project><groupId>com.isomorphic.extras</groupId><artifactId>` + artifact +
			`</artifactId><version>` + version + `</version><packaging>` + packaging + `</packaging></project>`
	}
	sdk, err := archivetest.Files(map[string]string{
		"smartgwt-4.1d/smartgwt.jar":                           "core",
		"smartgwt-4.1d/smartgwt-skins.jar":                     "skins",
		"smartgwt-4.1d/lib/isc-jakarta-oro-2.0.8.jar":          "oro",
		"smartgwt-4.1d/lib/smartgwt-lgpl.pom":                  smartgwtPOM,
		"smartgwt-4.1d/lib/smartgwt-skins.pom":                 strings.ReplaceAll(smartgwtPOM, "smartgwt-lgpl", "smartgwt-skins"),
		"smartgwt-4.1d/lib/isc-jakarta-oro.pom":                extras("isc-jakarta-oro", "2.0.8", "jar"),
		"smartgwt-4.1d/lib/isc-selenium-resources.pom":         extras("isc-selenium-resources", "4.1", "zip"),
		"smartgwt-4.1d/selenium/user-extensions.js":            "selenium",
		"smartgwt-4.1d/doc/javadoc/index.html":                 "javadoc",
		"smartgwt-4.1d/doc/smartgwt-quickstart.pdf":            "quickstart",
		"smartgwt-4.1d/samples/showcase/smartgwt-showcase.jar": "excluded sample",
	})
	must(t, err)
	page := `<html><body>
<a href="` + datedURL + bundleName + `">bundle</a>
<a href="` + datedURL + `smartgwt.jar">loose copy</a>
</body></html>`
	session := &fakeSession{MockClient: &httpxtest.MockClient{
		Calls: []httpxtest.Call{
			{Method: "GET", URL: datedURL, Response: httpxtest.Response(200, page)},
			{Method: "GET", URL: datedURL + bundleName, Response: httpxtest.Response(200, sdk.String())},
		},
		URLValidator: httpxtest.NewURLValidator(t),
	}}
	fs := memfs.New()
	p := &Packager{Catalog: distribution.DefaultCatalog(), Session: session, FS: fs}
	cfg := lgplConfig()
	cfg.BuildDate = "2013-11-20"
	res, err := p.Run(context.Background(), cfg, nil)
	must(t, err)

	javadoc := maven.Artifact{Classifier: "javadoc", Extension: "jar", File: "doc/lib/smartgwt-javadoc.jar"}
	want := []*maven.Module{
		{
			GroupID: "com.isomorphic.extras", ArtifactID: "isc-jakarta-oro", Version: "2.0.8", Extension: "jar",
			File:        "lib/isc-jakarta-oro.jar",
			Attachments: []maven.Artifact{{Extension: "pom", File: "pom/isc-jakarta-oro.pom"}},
		},
		{
			GroupID: "com.isomorphic.extras", ArtifactID: "isc-selenium-resources", Version: "4.1", Extension: "zip",
			File:        "assembly/isc-selenium-resources.zip",
			Attachments: []maven.Artifact{{Extension: "pom", File: "pom/isc-selenium-resources.pom"}},
		},
		{
			GroupID: "com.isomorphic.smartgwt", ArtifactID: "smartgwt-lgpl", Version: "4.1", Extension: "jar",
			File:        "lib/smartgwt-lgpl.jar",
			Attachments: []maven.Artifact{{Extension: "pom", File: "pom/smartgwt-lgpl.pom"}, javadoc},
		},
		{
			GroupID: "com.isomorphic.smartgwt", ArtifactID: "smartgwt-skins", Version: "4.1", Extension: "jar",
			File:        "lib/smartgwt-skins.jar",
			Attachments: []maven.Artifact{{Extension: "pom", File: "pom/smartgwt-skins.pom"}, javadoc},
		},
	}
	if diff := cmp.Diff(want, res.Modules); diff != "" {
		t.Errorf("Modules mismatch (-want +got):\n%s", diff)
	}
	for _, name := range []string{"doc/user/smartgwt-quickstart.pdf", "zip/" + bundleName} {
		if _, err := fs.Stat(baseDir + "/" + name); err != nil {
			t.Errorf("Stat(%s) = %v", name, err)
		}
	}
	for _, name := range []string{"zip/smartgwt.jar", "lib/smartgwt-showcase.jar", "assembly/isc-selenium-resources"} {
		if _, err := fs.Stat(baseDir + "/" + name); err == nil {
			t.Errorf("Stat(%s) succeeded, want missing", name)
		}
	}
}
