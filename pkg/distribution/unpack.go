// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

package distribution

import (
	"archive/zip"
	"io"
	"os"
	"path"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"github.com/isomorphic-tools/sdkpackager/pkg/archive"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Directories of the unpacked layout.
const (
	LibDir      = "lib"
	PomDir      = "pom"
	DocDir      = "doc"
	AssemblyDir = "assembly"
	SDKDir      = "sdk"

	clientAPIDir = "doc/api/client"
	serverAPIDir = "doc/api/server"
	docLibDir    = "doc/lib"
)

// CreatedBy is recorded in the manifest of generated jars.
const CreatedBy = "sdkpackager"

// Unpacker extracts the files of a distribution from Src into Dst.
type Unpacker struct {
	Src billy.Filesystem
	Dst billy.Filesystem
}

// Unpack relocates the content of every file in d.Files according to the
// rules of its spec, then bundles assemblies and javadoc.
//
// A loose file is matched by base name and placed by the first accepting
// rule, or under lib/ when none accepts it. Each zip entry is placed once
// for every accepting rule.
func (u Unpacker) Unpack(d *Distribution) error {
	for _, name := range d.Files {
		var err error
		if archive.IsZip(name) {
			err = u.unpackZip(d.Spec.Contents, name)
		} else {
			err = u.copyLoose(d.Spec.Contents, name)
		}
		if err != nil {
			return err
		}
	}
	if err := u.bundleAssemblies(); err != nil {
		return err
	}
	return u.bundleJavadoc(d.Spec.Product)
}

func (u Unpacker) copyLoose(rules []ContentRule, name string) error {
	base := path.Base(name)
	target := path.Join(LibDir, base)
	for _, r := range rules {
		if !r.Filter.Accept(base) {
			continue
		}
		var err error
		if target, err = RewritePath(base, r.Target); err != nil {
			return err
		}
		break
	}
	f, err := u.Src.Open(name)
	if err != nil {
		return errors.Wrapf(err, "opening %s", name)
	}
	defer f.Close()
	if err := u.write(target, f); err != nil {
		return err
	}
	log.Debugf("Copied file '%s' to '%s'", name, target)
	return nil
}

func (u Unpacker) unpackZip(rules []ContentRule, name string) error {
	log.Infof("Unpacking %s", name)
	f, err := u.Src.Open(name)
	if err != nil {
		return errors.Wrapf(err, "opening %s", name)
	}
	defer f.Close()
	info, err := u.Src.Stat(name)
	if err != nil {
		return errors.Wrapf(err, "stat %s", name)
	}
	zr, err := zip.NewReader(f, info.Size())
	if err != nil {
		return errors.Wrapf(err, "reading zip %s", name)
	}
	for _, entry := range zr.File {
		if entry.FileInfo().IsDir() {
			continue
		}
		for _, r := range rules {
			if !r.Filter.Accept(entry.Name) {
				continue
			}
			target, err := RewritePath(entry.Name, r.Target)
			if err != nil {
				return err
			}
			if err := u.extract(entry, target); err != nil {
				return errors.Wrapf(err, "extracting %s from %s", entry.Name, name)
			}
			log.Debugf("Copied entry '%s' to '%s'", entry.Name, target)
		}
	}
	return nil
}

func (u Unpacker) extract(entry *zip.File, target string) error {
	rc, err := entry.Open()
	if err != nil {
		return err
	}
	defer rc.Close()
	return u.write(target, rc)
}

func (u Unpacker) write(target string, r io.Reader) error {
	if err := u.Dst.MkdirAll(path.Dir(target), 0o755); err != nil {
		return errors.Wrapf(err, "creating parent of %s", target)
	}
	out, err := u.Dst.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return errors.Wrapf(err, "creating %s", target)
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		return errors.Wrapf(err, "writing %s", target)
	}
	return errors.Wrapf(out.Close(), "closing %s", target)
}

// bundleAssemblies zips each directory below assembly/ into a sibling
// archive and removes the directory.
func (u Unpacker) bundleAssemblies() error {
	if !exists(u.Dst, AssemblyDir) {
		return nil
	}
	infos, err := u.Dst.ReadDir(AssemblyDir)
	if err != nil {
		return errors.Wrap(err, "listing assemblies")
	}
	for _, info := range infos {
		if !info.IsDir() {
			continue
		}
		dir := path.Join(AssemblyDir, info.Name())
		log.Debugf("Copying resources for assembly '%s'", info.Name())
		if err := archive.CreateZip(u.Dst, dir, dir+".zip"); err != nil {
			return errors.Wrapf(err, "assembling %s", info.Name())
		}
		if err := util.RemoveAll(u.Dst, dir); err != nil {
			return errors.Wrapf(err, "removing %s", dir)
		}
	}
	return nil
}

func (u Unpacker) bundleJavadoc(p Product) error {
	log.Debug("Repackaging Javadoc...")
	jars := []struct{ dir, jar string }{
		{clientAPIDir, p.Name() + "-javadoc.jar"},
		{serverAPIDir, "isomorphic-javadoc.jar"},
	}
	for _, j := range jars {
		if !exists(u.Dst, j.dir) {
			continue
		}
		target := path.Join(docLibDir, j.jar)
		if err := archive.CreateJar(u.Dst, j.dir, target, archive.NewManifest(CreatedBy)); err != nil {
			return errors.Wrapf(err, "bundling %s", j.dir)
		}
	}
	return nil
}

func exists(fs billy.Filesystem, name string) bool {
	_, err := fs.Stat(name)
	return err == nil
}
