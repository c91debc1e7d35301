// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

// Package packager downloads, unpacks and collects a vendor SDK build.
package packager

import (
	"context"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/isomorphic-tools/sdkpackager/internal/httpx"
	"github.com/isomorphic-tools/sdkpackager/pkg/distribution"
	"github.com/isomorphic-tools/sdkpackager/pkg/download"
	"github.com/isomorphic-tools/sdkpackager/pkg/maven"
	"github.com/isomorphic-tools/sdkpackager/pkg/remoteindex"
	cp "github.com/otiai10/copy"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const (
	downloadDir = "zip"
	latestDir   = "latest"
)

var executableExts = []string{".bat", ".sh", ".command"}

// Session is an authenticated connection to the vendor site.
type Session interface {
	httpx.BasicClient
	Login(context.Context) error
	Logout(context.Context) error
}

// Handler consumes the collected modules. root holds the files they refer to.
type Handler func(ctx context.Context, root billy.Filesystem, modules []*maven.Module) error

// Packager runs the download, unpack and collect pipeline under a work directory.
type Packager struct {
	Catalog *distribution.Catalog
	Session Session
	// Workdir is the work directory on disk.
	Workdir string
	// FS is the work directory; defaults to the OS filesystem at Workdir.
	FS       billy.Filesystem
	Progress download.Progress
}

// Result describes a completed run.
type Result struct {
	// BaseDir is the build directory relative to the work directory.
	BaseDir   string
	BuildDate string
	Modules   []*maven.Module
}

// Run prepares the build selected by cfg and hands its modules to h.
// The work layout is <product>/<license>/<buildNumber>/<buildDate>/ with the
// raw downloads under zip/.
func (p *Packager) Run(ctx context.Context, cfg Config, h Handler) (res *Result, err error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	spec, err := p.Catalog.Get(cfg.Product, cfg.License)
	if err != nil {
		return nil, err
	}
	for _, l := range cfg.Licenses() {
		if _, err := p.Catalog.Get(cfg.Product, l); err != nil {
			return nil, err
		}
	}
	root := p.FS
	if root == nil {
		root = osfs.New(p.Workdir)
	}
	if p.Session == nil && !cfg.SkipDownload {
		return nil, errors.Wrap(ErrInvalidConfig, "downloading requires a site session")
	}
	dl := download.Downloader{
		Client:    p.Session,
		Index:     remoteindex.Client{Client: p.Session},
		Overwrite: cfg.Overwrite,
		Progress:  p.Progress,
	}
	if !cfg.SkipDownload {
		defer func() {
			if err := p.Session.Logout(context.WithoutCancel(ctx)); err != nil {
				log.Debugf("Error at logout: %v", err)
			}
		}()
		if err := p.Session.Login(ctx); err != nil {
			return nil, err
		}
	}
	date := cfg.BuildDate
	if date == "" {
		log.Info("No buildDate provided. Contacting build server to look for the most recent distribution...")
		if date, err = dl.FindCurrentBuild(ctx, spec, cfg.BuildNumber); err != nil {
			return nil, err
		}
		log.Infof("buildDate set to '%s'", date)
		if err := validateDate(date); err != nil {
			return nil, err
		}
	}
	baseDir := path.Join(cfg.Product.Label(), cfg.License.Label(), cfg.BuildNumber, date)
	if err := root.MkdirAll(path.Join(baseDir, downloadDir), 0o755); err != nil {
		return nil, errors.Wrapf(err, "creating %s", baseDir)
	}
	base, err := root.Chroot(baseDir)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", baseDir)
	}
	zipDir, err := base.Chroot(downloadDir)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", downloadDir)
	}
	dl.Dir = zipDir

	dists, err := p.distributions(ctx, cfg, dl, date)
	if err != nil {
		return nil, err
	}
	if !cfg.SkipExtract {
		log.Infof("Unpacking downloaded file/s to '%s'", baseDir)
		u := distribution.Unpacker{Src: zipDir, Dst: base}
		for _, d := range dists {
			if err := u.Unpack(d); err != nil {
				return nil, err
			}
		}
	}
	modules, err := maven.Collector{StripSnapshots: cfg.StripSnapshots()}.Collect(base)
	if err != nil {
		return nil, errors.Wrap(err, "collecting artifacts")
	}
	if err := makeExecutable(base, p.chmod(baseDir, base)); err != nil {
		return nil, err
	}
	if cfg.CopyToLatest {
		if err := p.copyToLatest(root, baseDir); err != nil {
			return nil, err
		}
	}
	if h != nil {
		if err := h(ctx, base, modules); err != nil {
			return nil, err
		}
	}
	return &Result{BaseDir: baseDir, BuildDate: date, Modules: modules}, nil
}

// distributions downloads every requested license, or with SkipDownload
// builds one distribution from the files already on disk.
func (p *Packager) distributions(ctx context.Context, cfg Config, dl download.Downloader, date string) ([]*distribution.Distribution, error) {
	if cfg.SkipDownload {
		log.Infof("Creating local distribution from '%s'", dl.Dir.Root())
		spec, err := p.Catalog.Get(cfg.Product, cfg.License)
		if err != nil {
			return nil, err
		}
		d := spec.Resolve(cfg.BuildNumber, date)
		infos, err := dl.Dir.ReadDir(".")
		if err != nil {
			return nil, errors.Wrap(err, "listing downloads")
		}
		for _, info := range infos {
			// Dot files are partial downloads.
			if !info.IsDir() && !strings.HasPrefix(info.Name(), ".") {
				d.Files = append(d.Files, info.Name())
			}
		}
		sort.Strings(d.Files)
		return []*distribution.Distribution{d}, nil
	}
	var out []*distribution.Distribution
	for _, l := range cfg.Licenses() {
		spec, err := p.Catalog.Get(cfg.Product, l)
		if err != nil {
			return nil, err
		}
		d := spec.Resolve(cfg.BuildNumber, date)
		if err := dl.Fetch(ctx, d); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

type chmodFunc func(name string, mode os.FileMode) error

// chmod changes modes below dir, on disk when the work directory is known
// and through fs otherwise. It returns nil when neither supports it.
func (p *Packager) chmod(dir string, fs billy.Filesystem) chmodFunc {
	if p.Workdir != "" {
		return func(name string, mode os.FileMode) error {
			return os.Chmod(filepath.Join(p.Workdir, filepath.FromSlash(dir), filepath.FromSlash(name)), mode)
		}
	}
	if ch, ok := fs.(billy.Change); ok {
		return ch.Chmod
	}
	return nil
}

// makeExecutable sets the execute bits of scripts in fs.
func makeExecutable(fs billy.Filesystem, chmod chmodFunc) error {
	if chmod == nil {
		return nil
	}
	return util.Walk(fs, ".", func(name string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !hasExecutableExt(info.Name()) {
			return nil
		}
		if err := chmod(name, info.Mode().Perm()|0o111); err != nil {
			return errors.Wrapf(err, "enabling execute permissions on %s", name)
		}
		log.Debugf("Enabled execute permissions on file '%s'", name)
		return nil
	})
}

func hasExecutableExt(name string) bool {
	for _, ext := range executableExts {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

// copyToLatest mirrors baseDir, minus downloads, into a sibling latest/ directory.
func (p *Packager) copyToLatest(root billy.Filesystem, baseDir string) error {
	if p.Workdir == "" {
		return errors.New("copying to latest requires a work directory on disk")
	}
	src := filepath.Join(p.Workdir, filepath.FromSlash(baseDir))
	dst := filepath.Join(filepath.Dir(src), latestDir)
	log.Infof("Copying distribution to '%s'", dst)
	if err := os.RemoveAll(dst); err != nil {
		return errors.Wrapf(err, "cleaning %s", dst)
	}
	opts := cp.Options{
		Skip: func(info os.FileInfo, src, dest string) (bool, error) {
			return info.Name() == downloadDir, nil
		},
		OnSymlink: func(string) cp.SymlinkAction { return cp.Shallow },
	}
	if err := cp.Copy(src, dst, opts); err != nil {
		return errors.Wrap(err, "unable to copy distribution contents")
	}
	latestName := path.Join(path.Dir(baseDir), latestDir)
	latest, err := root.Chroot(latestName)
	if err != nil {
		return err
	}
	return makeExecutable(latest, p.chmod(latestName, latest))
}
