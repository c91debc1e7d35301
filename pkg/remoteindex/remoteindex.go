// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

// Package remoteindex lists the downloadable links of a vendor build page.
package remoteindex

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"path"
	"regexp"
	"strings"

	"github.com/isomorphic-tools/sdkpackager/internal/httpx"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ErrNoLinks is returned when no link of an index matches the selectors.
var ErrNoLinks = errors.New("no downloads found")

// BuildSelector matches the dated links of a build listing.
const BuildSelector = `[0-9]{4}-[0-9]{2}-[0-9]{2}`

// Client reads index pages from the vendor site.
type Client struct {
	Client httpx.BasicClient
}

// List returns the href of every anchor in the page at indexURL that
// matches a selector, resolved against indexURL. Selectors are applied in order, each contributing its
// matches in document order; a link matched by several selectors is listed
// once per selector.
func (c Client) List(ctx context.Context, indexURL string, selectors []string) ([]string, error) {
	var res []*regexp.Regexp
	for _, s := range selectors {
		re, err := regexp.Compile(s)
		if err != nil {
			return nil, errors.Wrapf(err, "compiling selector %q", s)
		}
		res = append(res, re)
	}
	body, err := c.fetch(ctx, indexURL)
	if err != nil {
		return nil, err
	}
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrapf(err, "parsing %s", indexURL)
	}
	base, err := url.Parse(indexURL)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing %s", indexURL)
	}
	hrefs := anchors(doc)
	var links []string
	for _, re := range res {
		for _, href := range hrefs {
			if !re.MatchString(href) {
				continue
			}
			ref, err := url.Parse(href)
			if err != nil {
				log.Debugf("Ignoring malformed link '%s'", href)
				continue
			}
			links = append(links, base.ResolveReference(ref).String())
		}
	}
	if len(links) == 0 {
		log.Warnf("No downloads found at '%s'. Response from server:\n\n%s\n", indexURL, body)
		return nil, errors.Wrapf(ErrNoLinks, "at %s", indexURL)
	}
	return links, nil
}

// Builds returns the build dates listed at indexURL, most recent first as
// ordered by the server.
func (c Client) Builds(ctx context.Context, indexURL string) ([]string, error) {
	links, err := c.List(ctx, indexURL, []string{BuildSelector})
	if err != nil {
		return nil, err
	}
	dates := make([]string, 0, len(links))
	for _, link := range links {
		log.Debugf("Extracting date from server response: '%s'", link)
		dates = append(dates, path.Base(strings.TrimRight(link, "/")))
	}
	return dates, nil
}

func (c Client) fetch(ctx context.Context, indexURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, indexURL, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "creating request for %s", indexURL)
	}
	log.Debugf("Requesting list of files from '%s'", indexURL)
	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "fetching %s", indexURL)
	}
	if err := httpx.CheckResponse(resp, "fetching "+indexURL); err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	return body, errors.Wrapf(err, "reading %s", indexURL)
}

// anchors returns the href attributes of every <a> element in document order.
func anchors(n *html.Node) []string {
	var out []string
	var visit func(*html.Node)
	visit = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.A {
			for _, attr := range n.Attr {
				if attr.Key == "href" {
					out = append(out, attr.Val)
					break
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(n)
	return out
}
