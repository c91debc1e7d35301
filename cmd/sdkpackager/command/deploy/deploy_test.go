// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

package deploy

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/isomorphic-tools/sdkpackager/cmd/sdkpackager/command/build"
	"github.com/isomorphic-tools/sdkpackager/cmd/sdkpackager/command/build/buildtest"
	"github.com/isomorphic-tools/sdkpackager/internal/config"
	"github.com/isomorphic-tools/sdkpackager/pkg/act/cli"
)

type fakeRepo struct {
	mu       sync.Mutex
	requests []string
	files    map[string]string
}

func (f *fakeRepo) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if user, pass, ok := r.BasicAuth(); !ok || user != "deployer" || pass != "pw" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	f.requests = append(f.requests, r.Method+" "+r.URL.Path)
	switch r.Method {
	case http.MethodGet:
		http.NotFound(w, r)
	case http.MethodPut:
		b, _ := io.ReadAll(r.Body)
		f.files[r.URL.Path] = string(b)
		w.WriteHeader(http.StatusCreated)
	}
}

func TestHandler(t *testing.T) {
	dir := buildtest.BuildDir("SmartGWT", "4.1d", "LGPL", "2013-11-20")
	site := buildtest.NewSite(map[string][]byte{dir + "smartgwt-4.1d.zip": buildtest.SmartGWTBundle()})
	defer site.Close()
	repo := &fakeRepo{files: map[string]string{}}
	repoSrv := httptest.NewServer(repo)
	defer repoSrv.Close()

	cfg := site.Config(t.TempDir())
	cfg.Repository.Username = "deployer"
	cfg.Repository.Password = "pw"
	ctx := config.NewContext(context.Background(), cfg)
	deps, err := InitDeps(ctx)
	if err != nil {
		t.Fatal(err)
	}
	deps.SetIO(cli.IO{Out: io.Discard, Err: io.Discard})
	in := Config{
		Selection:     build.Selection{Product: "SmartGWT", License: "LGPL", BuildNumber: "4.1d", BuildDate: "2013-11-20"},
		RepositoryURL: repoSrv.URL + "/releases",
	}
	if err := in.Validate(); err != nil {
		t.Fatal(err)
	}
	if _, err := Handler(ctx, in, deps); err != nil {
		t.Fatalf("Handler() = %v", err)
	}
	base := "/releases/com/isomorphic/smartgwt/smartgwt-lgpl/"
	want := []string{
		"PUT " + base + "4.1/smartgwt-lgpl-4.1.jar",
		"PUT " + base + "4.1/smartgwt-lgpl-4.1.jar.sha1",
		"PUT " + base + "4.1/smartgwt-lgpl-4.1.jar.md5",
		"PUT " + base + "4.1/smartgwt-lgpl-4.1.pom",
		"PUT " + base + "4.1/smartgwt-lgpl-4.1.pom.sha1",
		"PUT " + base + "4.1/smartgwt-lgpl-4.1.pom.md5",
		"GET " + base + "maven-metadata.xml",
		"PUT " + base + "maven-metadata.xml",
		"PUT " + base + "maven-metadata.xml.sha1",
		"PUT " + base + "maven-metadata.xml.md5",
	}
	if diff := cmp.Diff(want, repo.requests); diff != "" {
		t.Errorf("repository requests mismatch (-want +got):\n%s", diff)
	}
	if got := repo.files[base+"4.1/smartgwt-lgpl-4.1.jar"]; got != "core" {
		t.Errorf("uploaded jar = %q, want core", got)
	}
}

func TestHandlerRequiresRepository(t *testing.T) {
	deps := &Deps{Deps: &build.Deps{Config: &config.Config{}}}
	in := Config{Selection: build.Selection{Product: "SmartGWT", License: "LGPL", BuildNumber: "4.1d"}}
	if _, err := Handler(context.Background(), in, deps); err == nil {
		t.Error("Handler() = nil, want error without a repository URL")
	}
}

func TestConfigValidate(t *testing.T) {
	in := Config{
		Selection:     build.Selection{Product: "SmartGWT", License: "LGPL", BuildNumber: "4.1d"},
		RepositoryURL: "releases",
	}
	if err := in.Validate(); err == nil {
		t.Error("Validate() = nil, want error for a relative URL")
	}
}
