// Package match classifies template-relative paths as Include, Exclude,
// or Ignore for the tree walker.
package match

import (
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/arthur-debert/stencil/pkg/config"
	"github.com/arthur-debert/stencil/pkg/errors"
	"github.com/arthur-debert/stencil/pkg/logging"
)

// Verdict is the per-path inclusion decision.
type Verdict int

const (
	// Include means the file content and name are templated.
	Include Verdict = iota
	// Exclude means the file is kept verbatim, though its path may still
	// move when it lies beneath a templated directory name.
	Exclude
	// Ignore means the entry is skipped entirely.
	Ignore
)

func (v Verdict) String() string {
	switch v {
	case Include:
		return "include"
	case Exclude:
		return "exclude"
	default:
		return "ignore"
	}
}

// Matcher classifies a relative path. Pure function of the path and the
// template's inclusion rules.
type Matcher interface {
	ShouldInclude(relativePath string) Verdict
}

// GlobMatcher implements Matcher with doublestar glob lists from the
// template manifest. When both an include and an exclude list are present,
// only the include list is considered and a warning is logged.
type GlobMatcher struct {
	include []string
	exclude []string
	ignore  []string
}

// New builds a matcher from the manifest. extraIgnore carries paths the
// generation itself must never emit (the manifest file, hook scripts).
func New(cfg *config.Config, extraIgnore []string) (*GlobMatcher, error) {
	logger := logging.GetLogger("match")

	include := cfg.Template.Include
	exclude := cfg.Template.Exclude
	if len(include) > 0 && len(exclude) > 0 {
		logger.Warn().Msg("manifest has both an include and an exclude list, only include will be considered")
		exclude = nil
	}

	ignore := make([]string, 0, len(cfg.Template.Ignore)+len(extraIgnore))
	ignore = append(ignore, cfg.Template.Ignore...)
	ignore = append(ignore, extraIgnore...)

	for _, patterns := range [][]string{include, exclude, ignore} {
		for _, pattern := range patterns {
			if !doublestar.ValidatePattern(pattern) {
				return nil, errors.Newf(errors.ErrInvalidInput, "invalid glob pattern %q", pattern)
			}
		}
	}

	return &GlobMatcher{include: include, exclude: exclude, ignore: ignore}, nil
}

// ShouldInclude classifies one relative path.
func (m *GlobMatcher) ShouldInclude(relativePath string) Verdict {
	path := filepath.ToSlash(relativePath)

	if matchAny(m.ignore, path) {
		return Ignore
	}
	if len(m.include) > 0 {
		if matchAny(m.include, path) {
			return Include
		}
		return Exclude
	}
	if matchAny(m.exclude, path) {
		return Exclude
	}
	return Include
}

func matchAny(patterns []string, path string) bool {
	for _, pattern := range patterns {
		// Patterns are validated at construction
		if ok, _ := doublestar.Match(pattern, path); ok {
			return true
		}
	}
	return false
}
