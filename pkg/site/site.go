// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

// Package site maintains an authenticated session with the vendor web site.
package site

import (
	"context"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"

	"github.com/isomorphic-tools/sdkpackager/internal/httpx"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const (
	DefaultHost       = "https://www.smartclient.com"
	DefaultLoginPath  = "/devlogin/login.jsp"
	DefaultLogoutPath = "/logout.jsp"
)

// Config describes how to reach and authenticate with the site.
type Config struct {
	Host       string
	LoginPath  string
	LogoutPath string
	Username   string
	Password   string
	UserAgent  string
	Proxy      *Proxy
	// Transport overrides the default transport, mostly for tests.
	Transport http.RoundTripper
}

// Client is a cookie-carrying session with the site. Relative request URLs
// are resolved against the configured host.
type Client struct {
	cfg      Config
	host     *url.URL
	client   httpx.BasicClient
	loggedIn bool
}

var _ httpx.BasicClient = &Client{}

// New creates a session. Nothing is sent until the first request.
func New(cfg Config) (*Client, error) {
	if cfg.Host == "" {
		cfg.Host = DefaultHost
	}
	if cfg.LoginPath == "" {
		cfg.LoginPath = DefaultLoginPath
	}
	if cfg.LogoutPath == "" {
		cfg.LogoutPath = DefaultLogoutPath
	}
	host, err := url.Parse(cfg.Host)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing host %q", cfg.Host)
	}
	if host.Scheme == "" || host.Host == "" {
		return nil, errors.Errorf("host %q must be an absolute URL", cfg.Host)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, errors.Wrap(err, "creating cookie jar")
	}
	transport := cfg.Transport
	if transport == nil {
		t := http.DefaultTransport.(*http.Transport).Clone()
		if cfg.Proxy != nil {
			proxy, err := cfg.Proxy.Func()
			if err != nil {
				return nil, err
			}
			t.Proxy = proxy
		}
		transport = t
	}
	var client httpx.BasicClient = &http.Client{Jar: jar, Transport: transport}
	if cfg.UserAgent != "" {
		client = &httpx.WithUserAgent{BasicClient: client, UserAgent: cfg.UserAgent}
	}
	return &Client{
		cfg:    cfg,
		host:   host,
		client: &httpx.WithBaseURL{BasicClient: client, Base: host},
	}, nil
}

// Host returns the site root.
func (c *Client) Host() *url.URL {
	return c.host
}

// Do sends req within the session.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	return c.client.Do(req)
}

// Login submits the credentials once per client. Without credentials it
// does nothing.
func (c *Client) Login(ctx context.Context) error {
	if c.cfg.Username == "" || c.loggedIn {
		return nil
	}
	log.Debugf("Authenticating to '%s%s' with username: '%s'", c.host.Host, c.cfg.LoginPath, c.cfg.Username)
	form := url.Values{"USERNAME": {c.cfg.Username}, "PASSWORD": {c.cfg.Password}}
	if err := c.post(ctx, c.cfg.LoginPath, form); err != nil {
		return errors.Wrap(err, "authenticating")
	}
	c.loggedIn = true
	return nil
}

// Logout ends the session. Callers usually log the error and move on.
func (c *Client) Logout(ctx context.Context) error {
	log.Debugf("Logging off at '%s%s'", c.host.Host, c.cfg.LogoutPath)
	c.loggedIn = false
	return errors.Wrap(c.post(ctx, c.cfg.LogoutPath, nil), "logging out")
}

func (c *Client) post(ctx context.Context, target string, form url.Values) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := c.Do(req)
	if err != nil {
		return err
	}
	if err := httpx.CheckResponse(resp, "POST "+target); err != nil {
		return err
	}
	defer resp.Body.Close()
	_, err = io.Copy(io.Discard, resp.Body)
	return err
}
