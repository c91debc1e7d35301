// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

// Package download fetches the files of a distribution into a local cache.
package download

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"path"

	"github.com/go-git/go-billy/v5"
	"github.com/isomorphic-tools/sdkpackager/internal/httpx"
	"github.com/isomorphic-tools/sdkpackager/pkg/distribution"
	"github.com/isomorphic-tools/sdkpackager/pkg/remoteindex"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// ErrNoBuild is returned when no build is listed for a version.
var ErrNoBuild = errors.New("no build found")

// Error is a failed transfer of one file.
type Error struct {
	URL string
	Err error
}

func (e *Error) Error() string {
	return "downloading " + e.URL + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// Progress observes a transfer. Implementations cannot fail it.
type Progress interface {
	// Track returns a reader wrapping r that reports bytes read against total
	// (-1 when unknown) and a function called when the transfer ends.
	Track(name string, total int64, r io.Reader) (io.Reader, func())
}

// Downloader copies the files linked from a distribution's index into Dir.
type Downloader struct {
	Client httpx.BasicClient
	Index  remoteindex.Client
	Dir    billy.Filesystem
	// Overwrite re-downloads files already present in Dir.
	Overwrite bool
	Progress  Progress
}

// Fetch lists the links of d and stores each file in Dir, appending the
// local names to d.Files. An index without matching links yields no files.
func (dl Downloader) Fetch(ctx context.Context, d *distribution.Distribution) error {
	links, err := dl.Index.List(ctx, d.URL, d.Spec.Selectors)
	if errors.Is(err, remoteindex.ErrNoLinks) {
		return nil
	} else if err != nil {
		return err
	}
	for _, link := range links {
		name, err := fileName(link)
		if err != nil {
			return &Error{URL: link, Err: err}
		}
		if _, err := dl.Dir.Stat(name); err == nil && !dl.Overwrite {
			log.Infof("Existing archive found at '%s'. Skipping download.", dl.Dir.Join(dl.Dir.Root(), name))
			d.Files = append(d.Files, name)
			continue
		}
		if err := dl.fetchFile(ctx, link, name); err != nil {
			return &Error{URL: link, Err: err}
		}
		d.Files = append(d.Files, name)
	}
	return nil
}

// FindCurrentBuild returns the date of the first build listed for buildNumber.
func (dl Downloader) FindCurrentBuild(ctx context.Context, spec *distribution.Spec, buildNumber string) (string, error) {
	d := spec.Resolve(buildNumber, "")
	dates, err := dl.Index.Builds(ctx, d.URL)
	if err != nil && !errors.Is(err, remoteindex.ErrNoLinks) {
		return "", err
	}
	if len(dates) == 0 {
		return "", errors.Wrapf(ErrNoBuild, "for the given distribution (%s/%s)", spec.Product.Name(), spec.License.Name())
	}
	return dates[0], nil
}

// fileName is the last path element of link, query excluded.
func fileName(link string) (string, error) {
	u, err := url.Parse(link)
	if err != nil {
		return "", err
	}
	name := path.Base(u.Path)
	if name == "." || name == "/" || name == "" {
		return "", errors.Errorf("no file name in %q", link)
	}
	return name, nil
}

// fetchFile streams link into a temporary file next to name and renames it
// into place once complete, so a failed transfer leaves name untouched.
func (dl Downloader) fetchFile(ctx context.Context, link, name string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return err
	}
	resp, err := dl.Client.Do(req)
	if err != nil {
		return err
	}
	if err := httpx.CheckResponse(resp, "GET"); err != nil {
		return err
	}
	defer resp.Body.Close()
	tmp, err := dl.Dir.TempFile("", "."+name+".part-")
	if err != nil {
		return errors.Wrap(err, "creating temporary file")
	}
	tmpName := tmp.Name()
	cleanup := func() { dl.Dir.Remove(tmpName) }
	log.Infof("Downloading file to '%s'", dl.Dir.Join(dl.Dir.Root(), name))
	var body io.Reader = resp.Body
	if dl.Progress != nil {
		var done func()
		body, done = dl.Progress.Track(name, resp.ContentLength, body)
		defer done()
	}
	if _, err := io.Copy(tmp, body); err != nil {
		tmp.Close()
		cleanup()
		return errors.Wrapf(err, "writing %s", name)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return errors.Wrapf(err, "closing %s", name)
	}
	// Rename does not replace an existing file on every filesystem.
	if _, err := dl.Dir.Stat(name); err == nil {
		if err := dl.Dir.Remove(name); err != nil {
			cleanup()
			return errors.Wrapf(err, "replacing %s", name)
		}
	}
	if err := dl.Dir.Rename(tmpName, name); err != nil {
		cleanup()
		return errors.Wrapf(err, "renaming into %s", name)
	}
	return nil
}
