// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

package maven

import (
	"bytes"
	"context"
	"crypto"
	_ "crypto/md5"
	_ "crypto/sha1"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/isomorphic-tools/sdkpackager/internal/hashext"
	"github.com/isomorphic-tools/sdkpackager/internal/httpx"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Deployer uploads modules to a remote repository over HTTP PUT.
type Deployer struct {
	Client httpx.BasicClient
	// URL is the repository root, e.g. https://repo.example.com/releases.
	URL      *url.URL
	Username string
	Password string
	// Src holds the files the modules refer to.
	Src billy.Filesystem
	// Now stamps the metadata; defaults to time.Now.
	Now func() time.Time
}

// Deploy uploads every module file and attachment, each followed by its
// sha1 and md5 checksums, then merges the version into the artifact's
// remote metadata.
func (d Deployer) Deploy(ctx context.Context, modules []*Module) error {
	log.Infof("Deploying %d modules to %s", len(modules), d.URL.Redacted())
	for _, m := range modules {
		for _, a := range m.Files() {
			if err := d.deployFile(ctx, a.File, m.Path(a)); err != nil {
				return errors.Wrapf(err, "deploying %s", m)
			}
		}
		if err := d.updateMetadata(ctx, m); err != nil {
			return errors.Wrapf(err, "deploying %s", m)
		}
		log.Infof("Deployed %s", m)
	}
	return nil
}

func (d Deployer) deployFile(ctx context.Context, name, target string) error {
	f, err := d.Src.Open(name)
	if err != nil {
		return errors.Wrapf(err, "opening %s", name)
	}
	defer f.Close()
	sums := newChecksums()
	size, err := sums.ReadFrom(f)
	if err != nil {
		return errors.Wrapf(err, "hashing %s", name)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return errors.Wrapf(err, "rewinding %s", name)
	}
	if err := d.put(ctx, target, f, size); err != nil {
		return err
	}
	return d.putChecksums(ctx, target, sums)
}

// newChecksums returns the digests published next to every uploaded file.
func newChecksums() hashext.MultiHash {
	return hashext.NewMultiHash(crypto.SHA1, crypto.MD5)
}

func (d Deployer) putChecksums(ctx context.Context, target string, sums hashext.MultiHash) error {
	for _, c := range sums.Checksums(target) {
		if err := d.put(ctx, c.Name, strings.NewReader(c.Digest), int64(len(c.Digest))); err != nil {
			return err
		}
	}
	return nil
}

func (d Deployer) updateMetadata(ctx context.Context, m *Module) error {
	target := MetadataPath(m)
	md, err := d.fetchMetadata(ctx, target)
	if err != nil {
		return err
	}
	if md == nil {
		md = &Metadata{GroupID: m.GroupID, ArtifactID: m.ArtifactID}
	}
	now := time.Now
	if d.Now != nil {
		now = d.Now
	}
	md.AddVersion(m.Version, now())
	var buf bytes.Buffer
	if err := md.Encode(&buf); err != nil {
		return err
	}
	b := buf.Bytes()
	if err := d.put(ctx, target, bytes.NewReader(b), int64(len(b))); err != nil {
		return err
	}
	sums := newChecksums()
	sums.Write(b)
	return d.putChecksums(ctx, target, sums)
}

// fetchMetadata returns nil when the repository has no metadata yet.
func (d Deployer) fetchMetadata(ctx context.Context, target string) (*Metadata, error) {
	req, err := d.request(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	resp, err := d.Client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "fetching %s", target)
	}
	if resp.StatusCode == http.StatusNotFound {
		resp.Body.Close()
		return nil, nil
	}
	if err := httpx.CheckResponse(resp, "fetching "+target); err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return ParseMetadata(resp.Body)
}

func (d Deployer) put(ctx context.Context, target string, body io.Reader, size int64) error {
	req, err := d.request(ctx, http.MethodPut, target, body)
	if err != nil {
		return err
	}
	req.ContentLength = size
	resp, err := d.Client.Do(req)
	if err != nil {
		return errors.Wrapf(err, "uploading %s", target)
	}
	if err := httpx.CheckResponse(resp, "uploading "+target); err != nil {
		return err
	}
	resp.Body.Close()
	log.Debugf("Uploaded %s", target)
	return nil
}

func (d Deployer) request(ctx context.Context, method, target string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, d.URL.JoinPath(target).String(), body)
	if err != nil {
		return nil, errors.Wrapf(err, "creating request for %s", target)
	}
	if d.Username != "" {
		req.SetBasicAuth(d.Username, d.Password)
	}
	return req, nil
}
