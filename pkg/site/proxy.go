// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

package site

import (
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Proxy is an HTTP proxy with optional basic credentials.
type Proxy struct {
	Host     string
	Port     int
	Username string
	Password string
	// NonProxyHosts lists host patterns reached directly, separated by any
	// of ",;|". Patterns may use shell wildcards, e.g. "*.example.com".
	NonProxyHosts string
}

// URL returns the proxy address, credentials included.
func (p *Proxy) URL() (*url.URL, error) {
	if p.Host == "" {
		return nil, errors.New("proxy host is empty")
	}
	u := &url.URL{Scheme: "http", Host: p.Host}
	if p.Port != 0 {
		u.Host += ":" + strconv.Itoa(p.Port)
	}
	if p.Username != "" {
		u.User = url.UserPassword(p.Username, p.Password)
	}
	return u, nil
}

// Bypass reports whether host is reached without the proxy.
func (p *Proxy) Bypass(host string) bool {
	for _, pattern := range strings.FieldsFunc(p.NonProxyHosts, func(r rune) bool { return strings.ContainsRune(",;|", r) }) {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}
		if ok, err := path.Match(strings.ToLower(pattern), strings.ToLower(host)); err == nil && ok {
			return true
		}
	}
	return false
}

// Func returns a transport proxy function honouring the bypass list.
func (p *Proxy) Func() (func(*http.Request) (*url.URL, error), error) {
	u, err := p.URL()
	if err != nil {
		return nil, err
	}
	return func(req *http.Request) (*url.URL, error) {
		if p.Bypass(req.URL.Hostname()) {
			return nil, nil
		}
		return u, nil
	}, nil
}
