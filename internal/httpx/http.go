// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

// Package httpx provides a simpler http.Client abstraction and derivative uses.
package httpx

import (
	"net/http"
	"net/url"

	"github.com/pkg/errors"
)

// BasicClient is a simpler http.Client that only requires a Do method.
type BasicClient interface {
	Do(*http.Request) (*http.Response, error)
}

var _ BasicClient = http.DefaultClient

// WithUserAgent is a basic HTTP client that adds a User-Agent header.
type WithUserAgent struct {
	BasicClient
	UserAgent string
}

var _ BasicClient = &WithUserAgent{}

// Do adds the User-Agent header and sends the request.
func (c *WithUserAgent) Do(req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", c.UserAgent)
	return c.BasicClient.Do(req)
}

// WithBaseURL resolves relative request URLs against Base before sending.
//
// Requests built from site-relative links (e.g. "/builds/SmartGWT/") carry
// no scheme or host; absolute URLs pass through untouched.
type WithBaseURL struct {
	BasicClient
	Base *url.URL
}

var _ BasicClient = &WithBaseURL{}

// Do resolves the request URL and sends the request.
func (c *WithBaseURL) Do(req *http.Request) (*http.Response, error) {
	if !req.URL.IsAbs() {
		req.URL = c.Base.ResolveReference(req.URL)
		req.Host = req.URL.Host
	}
	return c.BasicClient.Do(req)
}

// CheckResponse returns an error describing action when resp is not a 2xx.
// The body is closed on error.
func CheckResponse(resp *http.Response, action string) error {
	if resp.StatusCode >= 200 && resp.StatusCode <= 299 {
		return nil
	}
	resp.Body.Close()
	return errors.Wrap(errors.New(resp.Status), action)
}
