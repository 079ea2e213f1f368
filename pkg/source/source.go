// Package source materializes a template location into a local directory
// tree. A location is either a directory on disk or a git URL, which is
// shallow-cloned.
package source

import (
	"io"
	"os"
	"path/filepath"

	git "github.com/go-git/go-git/v5"

	"github.com/arthur-debert/stencil/pkg/errors"
	"github.com/arthur-debert/stencil/pkg/logging"
)

// Fetch resolves location into a fresh template directory under a temp
// path owned by the caller. Local directories are left in place and
// returned as-is; git URLs are cloned with depth 1 and stripped of their
// .git metadata.
func Fetch(location string) (string, error) {
	logger := logging.GetLogger("source")

	if info, err := os.Stat(location); err == nil && info.IsDir() {
		logger.Debug().Str("location", location).Msg("using local template directory")
		return location, nil
	}

	dir, err := os.MkdirTemp("", "stencil-template-")
	if err != nil {
		return "", errors.Wrap(err, errors.ErrSourceFetch, "creating temp directory")
	}
	logger.Debug().Str("url", location).Str("dir", dir).Msg("cloning template")

	if _, err := git.PlainClone(dir, false, &git.CloneOptions{
		URL:   location,
		Depth: 1,
	}); err != nil {
		_ = os.RemoveAll(dir)
		return "", errors.Wrapf(err, errors.ErrSourceFetch, "cloning %s", location)
	}
	if err := os.RemoveAll(filepath.Join(dir, ".git")); err != nil {
		return "", errors.Wrap(err, errors.ErrSourceFetch, "stripping clone metadata")
	}
	return dir, nil
}

// CopyTree copies the template tree at src into dst, excluding .git
// metadata and any relative path for which skip returns true. dst is
// created if needed.
func CopyTree(src, dst string, skip func(relativePath string) bool) error {
	return filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return errors.Wrapf(err, errors.ErrFileRead, "walking %s", path)
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return errors.Wrapf(err, errors.ErrInternal, "relativizing %s", path)
		}
		if rel == "." {
			return os.MkdirAll(dst, 0755)
		}
		if info.IsDir() && info.Name() == ".git" {
			return filepath.SkipDir
		}
		if skip != nil && skip(filepath.ToSlash(rel)) {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		target := filepath.Join(dst, rel)
		if info.IsDir() {
			if err := os.MkdirAll(target, info.Mode().Perm()); err != nil {
				return errors.Wrapf(err, errors.ErrDirCreate, "creating %s", rel)
			}
			return nil
		}
		return copyFile(path, target, info.Mode().Perm())
	})
}

func copyFile(src, dst string, mode os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileRead, "opening %s", src)
	}
	defer func() { _ = in.Close() }()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "creating %s", dst)
	}
	defer func() { _ = out.Close() }()

	if _, err := io.Copy(out, in); err != nil {
		return errors.Wrapf(err, errors.ErrFileCopy, "copying to %s", dst)
	}
	return nil
}
