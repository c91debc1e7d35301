// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

package httpx

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/isomorphic-tools/sdkpackager/internal/httpx/httpxtest"
)

func TestWithBaseURL(t *testing.T) {
	for _, tc := range []struct {
		name string
		url  string
		want string
	}{
		{"relative", "/builds/SmartGWT/4.1d/LGPL/", "GET https://www.smartclient.com/builds/SmartGWT/4.1d/LGPL/"},
		{"absolute", "http://mirror.example.com/a.zip", "GET http://mirror.example.com/a.zip"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			mock := &httpxtest.MockClient{
				Calls:        []httpxtest.Call{{Method: "GET", URL: tc.want[len("GET "):], Response: httpxtest.Response(200, "")}},
				URLValidator: httpxtest.NewURLValidator(t),
			}
			c := &WithBaseURL{BasicClient: mock, Base: &url.URL{Scheme: "https", Host: "www.smartclient.com"}}
			req, err := http.NewRequest(http.MethodGet, tc.url, nil)
			if err != nil {
				t.Fatal(err)
			}
			if _, err := c.Do(req); err != nil {
				t.Fatalf("Do() = %v", err)
			}
			if mock.CallCount() != 1 {
				t.Errorf("CallCount() = %d, want 1", mock.CallCount())
			}
		})
	}
}

func TestWithUserAgent(t *testing.T) {
	var got string
	c := &WithUserAgent{
		BasicClient: clientFunc(func(req *http.Request) (*http.Response, error) {
			got = req.Header.Get("User-Agent")
			return httpxtest.Response(200, ""), nil
		}),
		UserAgent: "sdkpackager/test",
	}
	req, _ := http.NewRequest(http.MethodGet, "http://example.com", nil)
	if _, err := c.Do(req); err != nil {
		t.Fatal(err)
	}
	if got != "sdkpackager/test" {
		t.Errorf("User-Agent = %q, want %q", got, "sdkpackager/test")
	}
}

func TestCheckResponse(t *testing.T) {
	if err := CheckResponse(httpxtest.Response(204, ""), "noop"); err != nil {
		t.Errorf("CheckResponse(204) = %v, want nil", err)
	}
	err := CheckResponse(httpxtest.Response(404, "missing"), "fetching index")
	if err == nil {
		t.Fatal("CheckResponse(404) = nil, want error")
	}
	if want := "fetching index: 404 Not Found"; err.Error() != want {
		t.Errorf("CheckResponse(404) = %q, want %q", err.Error(), want)
	}
}

type clientFunc func(*http.Request) (*http.Response, error)

func (f clientFunc) Do(req *http.Request) (*http.Response, error) { return f(req) }
