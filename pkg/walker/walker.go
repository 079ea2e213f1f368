// Package walker drives the generation walk: it enumerates the destination
// tree contents-first, consults the inclusion matcher, and dispatches every
// entry to content rendering, verbatim relocation, or a skip.
//
// A file with bad template syntax never aborts the walk: it is recorded and
// reported once at the end. I/O failures are environment problems and abort
// immediately.
package walker

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/arthur-debert/stencil/pkg/errors"
	"github.com/arthur-debert/stencil/pkg/logging"
	"github.com/arthur-debert/stencil/pkg/match"
	"github.com/arthur-debert/stencil/pkg/render"
	"github.com/arthur-debert/stencil/pkg/style"
)

// Entry is one file-system entry of the walk, valid only while it is being
// processed.
type Entry struct {
	Path string // absolute path
	Rel  string // path relative to the generation root
	Dir  bool
	Mode fs.FileMode
}

// Walker processes one generation run over a destination root.
type Walker struct {
	root     string
	matcher  match.Matcher
	renderer *render.Renderer

	// per-run error list, cleared at run start
	fileErrors []style.FileError
}

// New creates a Walker over root.
func New(root string, matcher match.Matcher, renderer *render.Renderer) *Walker {
	return &Walker{root: root, matcher: matcher, renderer: renderer}
}

// Walk processes every entry under the root. It returns an aggregated
// error when any file had a content-rendering problem, or the first I/O or
// context error encountered.
func (w *Walker) Walk() error {
	logger := logging.GetLogger("walker")
	w.fileErrors = nil

	entries, err := collectEntries(w.root)
	if err != nil {
		return err
	}
	logger.Debug().Int("entries", len(entries)).Str("root", w.root).Msg("starting walk")

	for _, entry := range entries {
		// A file already executed as a filter script must never also be
		// templated as ordinary content. Only works when the filter ran
		// before the walk reaches it.
		if w.renderer.FilterFiles().Contains(entry.Rel) {
			logger.Info().Str("path", entry.Rel).Msg("skipped, used as script filter")
			continue
		}

		verdict := w.matcher.ShouldInclude(entry.Rel)
		logger.Trace().Str("path", entry.Rel).Stringer("verdict", verdict).Msg("classified entry")

		switch verdict {
		case match.Include:
			if entry.Dir {
				err = w.includeDir(entry)
			} else {
				err = w.includeFile(entry)
			}
		case match.Exclude:
			err = w.exclude(entry)
		case match.Ignore:
			logger.Info().Str("path", entry.Rel).Msg("ignored")
		}
		if err != nil {
			return err
		}
	}

	if len(w.fileErrors) > 0 {
		return errors.New(errors.ErrTemplateSyntax, style.ErrorReport(w.fileErrors))
	}
	return nil
}

// includeFile renders content and name of one file. Content syntax errors
// are recorded, not fatal; the file is then left untouched at its source
// location.
func (w *Walker) includeFile(entry Entry) error {
	logger := logging.GetLogger("walker")

	content, err := os.ReadFile(entry.Path)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileRead, "reading %s", entry.Rel)
	}

	rendered, err := w.renderer.Render(string(content), render.CollectErrors)
	if err != nil {
		if errors.IsErrorCode(err, errors.ErrTemplateSyntax) {
			logger.Warn().Str("path", entry.Rel).Err(err).Msg("invalid template syntax, file skipped")
			w.fileErrors = append(w.fileErrors, style.FileError{Path: entry.Rel, Message: err.Error()})
			return nil
		}
		// Poisoned context or other fatal condition
		return err
	}

	newRel, err := w.renderer.RenderPath(entry.Rel)
	if err != nil {
		return err
	}
	newPath := filepath.Join(w.root, newRel)

	if err := os.MkdirAll(filepath.Dir(newPath), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "creating parent of %s", newRel)
	}
	mode := entry.Mode.Perm()
	if mode == 0 {
		mode = 0644
	}
	if err := os.WriteFile(newPath, []byte(rendered), mode); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "writing rendered file %s", newRel)
	}
	if newPath != entry.Path {
		if err := os.Remove(entry.Path); err != nil {
			return errors.Wrapf(err, errors.ErrFileDelete, "removing %s", entry.Rel)
		}
	}
	logger.Info().Str("path", newRel).Msg("done")
	return nil
}

// includeDir renames a directory whose name is templated. Its contents
// have already been processed, so a renamed source directory is removed.
func (w *Walker) includeDir(entry Entry) error {
	logger := logging.GetLogger("walker")

	newRel, err := w.renderer.RenderPath(entry.Rel)
	if err != nil {
		return err
	}
	if newRel != entry.Rel {
		if err := os.RemoveAll(entry.Path); err != nil {
			return errors.Wrapf(err, errors.ErrFileDelete, "removing directory %s", entry.Rel)
		}
	}
	logger.Info().Str("path", newRel).Msg("done")
	return nil
}

// exclude relocates an entry verbatim when its path is templated. The
// content is never rendered; an excluded file beneath a renamed directory
// still has to move.
func (w *Walker) exclude(entry Entry) error {
	logger := logging.GetLogger("walker")

	newRel, err := w.renderer.RenderPath(entry.Rel)
	if err != nil {
		return err
	}
	if newRel == entry.Rel {
		logger.Info().Str("path", entry.Rel).Msg("skipped")
		return nil
	}

	newPath := filepath.Join(w.root, newRel)
	if entry.Dir {
		// Contents were already copied or moved below the new name
		if err := os.RemoveAll(entry.Path); err != nil {
			return errors.Wrapf(err, errors.ErrFileDelete, "removing directory %s", entry.Rel)
		}
		logger.Info().Str("path", newRel).Msg("skipped")
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(newPath), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "creating parent of %s", newRel)
	}
	content, err := os.ReadFile(entry.Path)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileCopy, "copying %s", entry.Rel)
	}
	mode := entry.Mode.Perm()
	if mode == 0 {
		mode = 0644
	}
	if err := os.WriteFile(newPath, content, mode); err != nil {
		return errors.Wrapf(err, errors.ErrFileCopy, "copying %s", entry.Rel)
	}
	if err := os.Remove(entry.Path); err != nil {
		return errors.Wrapf(err, errors.ErrFileDelete, "removing %s", entry.Rel)
	}
	logger.Info().Str("path", newRel).Msg("skipped")
	return nil
}

// collectEntries enumerates all paths under root, children fully before
// their parent directory, lexical order within a directory. Version
// control metadata and the root itself are excluded.
func collectEntries(root string) ([]Entry, error) {
	var out []Entry
	var visit func(dir string) error
	visit = func(dir string) error {
		children, err := os.ReadDir(dir)
		if err != nil {
			return errors.Wrapf(err, errors.ErrFileRead, "listing %s", dir)
		}
		// os.ReadDir returns entries sorted by name
		for _, child := range children {
			if child.Name() == ".git" {
				continue
			}
			path := filepath.Join(dir, child.Name())
			rel, err := filepath.Rel(root, path)
			if err != nil {
				return errors.Wrapf(err, errors.ErrInternal, "relativizing %s", path)
			}
			info, err := child.Info()
			if err != nil {
				return errors.Wrapf(err, errors.ErrFileRead, "stat %s", rel)
			}
			if child.IsDir() {
				if err := visit(path); err != nil {
					return err
				}
				out = append(out, Entry{Path: path, Rel: rel, Dir: true, Mode: info.Mode()})
			} else {
				out = append(out, Entry{Path: path, Rel: rel, Dir: false, Mode: info.Mode()})
			}
		}
		return nil
	}
	if err := visit(root); err != nil {
		return nil, err
	}
	return out, nil
}
