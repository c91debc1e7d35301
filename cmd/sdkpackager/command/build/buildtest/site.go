// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

// Package buildtest provides a fake vendor site for command tests.
package buildtest

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/isomorphic-tools/sdkpackager/internal/config"
	"github.com/isomorphic-tools/sdkpackager/pkg/archive/archivetest"
	"github.com/isomorphic-tools/sdkpackager/pkg/site"
)

const (
	Username = "dev"
	Password = "s3cret"
)

// Site serves Files with generated index pages for every directory.
type Site struct {
	*httptest.Server
	Files map[string][]byte

	mu       sync.Mutex
	requests []string
}

// NewSite starts a site serving files, keyed by absolute path.
func NewSite(files map[string][]byte) *Site {
	s := &Site{Files: files}
	s.Server = httptest.NewServer(s)
	return s
}

// Requests lists "METHOD path" for every request served.
func (s *Site) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests...)
}

func (s *Site) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.requests = append(s.requests, r.Method+" "+r.URL.Path)
	s.mu.Unlock()
	switch r.URL.Path {
	case site.DefaultLoginPath:
		if r.PostFormValue("USERNAME") != Username || r.PostFormValue("PASSWORD") != Password {
			http.Error(w, "denied", http.StatusForbidden)
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "JSESSIONID", Value: "session", Path: "/"})
		return
	case site.DefaultLogoutPath:
		return
	}
	if _, err := r.Cookie("JSESSIONID"); err != nil {
		http.Error(w, "login required", http.StatusUnauthorized)
		return
	}
	if b, ok := s.Files[r.URL.Path]; ok {
		w.Write(b)
		return
	}
	children := s.children(r.URL.Path)
	if !strings.HasSuffix(r.URL.Path, "/") || len(children) == 0 {
		http.NotFound(w, r)
		return
	}
	fmt.Fprint(w, "<html><body><ul>\n")
	for _, c := range children {
		fmt.Fprintf(w, "<li><a href=\"%s\">%s</a></li>\n", c, c)
	}
	fmt.Fprint(w, "</ul></body></html>\n")
}

// children lists the entries of dir, newest first when named by date.
func (s *Site) children(dir string) []string {
	seen := map[string]bool{}
	var out []string
	for name := range s.Files {
		rest, ok := strings.CutPrefix(name, dir)
		if !ok || rest == "" {
			continue
		}
		child, _, isDir := strings.Cut(rest, "/")
		if isDir {
			child += "/"
		}
		if !seen[child] {
			seen[child] = true
			out = append(out, child)
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(out)))
	return out
}

// Config returns settings pointing at the site with valid credentials.
func (s *Site) Config(workdir string) *config.Config {
	return &config.Config{
		Host:       s.URL,
		LoginPath:  site.DefaultLoginPath,
		LogoutPath: site.DefaultLogoutPath,
		Username:   Username,
		Password:   Password,
		Workdir:    workdir,
		LogLevel:   "info",
	}
}

// BuildDir is the site directory of a build.
func BuildDir(product, version, license, date string) string {
	return path.Join("/builds", product, version, license, date) + "/"
}

const smartgwtPOM = `<project><groupId>com.isomorphic.smartgwt</groupId>` +
	`<artifactId>smartgwt-lgpl</artifactId><version>4.1-SNAPSHOT</version></project>`

// SmartGWTBundle is a minimal LGPL SmartGWT archive yielding the single
// module com.isomorphic.smartgwt:smartgwt-lgpl:jar:4.1 with its POM.
func SmartGWTBundle() []byte {
	buf, err := archivetest.Files(map[string]string{
		"smartgwt-4.1d/smartgwt.jar":          "core",
		"smartgwt-4.1d/lib/smartgwt-lgpl.pom": smartgwtPOM,
		"smartgwt-4.1d/README.txt":            "dropped",
	})
	if err != nil {
		panic(err)
	}
	return buf.Bytes()
}
