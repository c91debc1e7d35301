// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

package maven

import (
	"bytes"
	"context"
	"io"
	"os"
	"path"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Installer copies modules into a local repository laid out like ~/.m2/repository.
type Installer struct {
	// Src holds the files the modules refer to.
	Src billy.Filesystem
	// Repo is the repository root.
	Repo billy.Filesystem
	// Now stamps the metadata; defaults to time.Now.
	Now func() time.Time
}

// Install copies every module file and attachment and updates the
// artifact's local metadata.
func (in Installer) Install(ctx context.Context, modules []*Module) error {
	for _, m := range modules {
		if err := ctx.Err(); err != nil {
			return err
		}
		log.Infof("Installing %s", m)
		for _, a := range m.Files() {
			target := m.Path(a)
			if err := copyFile(in.Src, a.File, in.Repo, target); err != nil {
				return errors.Wrapf(err, "installing %s", m)
			}
			log.Debugf("Installed %s to %s", a.File, target)
		}
		if err := in.updateMetadata(m); err != nil {
			return errors.Wrapf(err, "installing %s", m)
		}
	}
	return nil
}

func (in Installer) updateMetadata(m *Module) error {
	name := path.Join(path.Dir(m.Dir()), "maven-metadata-local.xml")
	md := &Metadata{GroupID: m.GroupID, ArtifactID: m.ArtifactID}
	if b, err := util.ReadFile(in.Repo, name); err == nil {
		if md, err = ParseMetadata(bytes.NewReader(b)); err != nil {
			return errors.Wrapf(err, "reading %s", name)
		}
	} else if !os.IsNotExist(err) {
		return errors.Wrapf(err, "reading %s", name)
	}
	now := time.Now
	if in.Now != nil {
		now = in.Now
	}
	md.AddVersion(m.Version, now())
	var buf bytes.Buffer
	if err := md.Encode(&buf); err != nil {
		return err
	}
	return errors.Wrapf(util.WriteFile(in.Repo, name, buf.Bytes(), 0o644), "writing %s", name)
}

func copyFile(src billy.Filesystem, from string, dst billy.Filesystem, to string) error {
	in, err := src.Open(from)
	if err != nil {
		return err
	}
	defer in.Close()
	if err := dst.MkdirAll(path.Dir(to), 0o755); err != nil {
		return err
	}
	out, err := dst.OpenFile(to, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
