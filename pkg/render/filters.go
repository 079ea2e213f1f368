package render

import (
	"os"
	"path/filepath"
	"sync"
	"text/template"

	"github.com/arthur-debert/stencil/pkg/caseconv"
	"github.com/arthur-debert/stencil/pkg/logging"
	"github.com/arthur-debert/stencil/pkg/script"
)

// ScriptFileLog records template-relative paths of scripts that have been
// executed as filters, so the walker never re-templates them as content.
// Shared between the renderer and the walker for the lifetime of a run.
type ScriptFileLog struct {
	mu    sync.Mutex
	paths map[string]struct{}
}

// NewScriptFileLog creates an empty log.
func NewScriptFileLog() *ScriptFileLog {
	return &ScriptFileLog{paths: make(map[string]struct{})}
}

// Record adds a template-relative path to the log.
func (l *ScriptFileLog) Record(relativePath string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.paths[filepath.ToSlash(relativePath)] = struct{}{}
}

// Contains reports whether a template-relative path was used as a filter.
func (l *ScriptFileLog) Contains(relativePath string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.paths[filepath.ToSlash(relativePath)]
	return ok
}

// funcMap builds the filter table for one render call. It is rebuilt per
// call so no state leaks between unrelated render invocations.
func (r *Renderer) funcMap() template.FuncMap {
	return template.FuncMap{
		"kebab_case":        caseconv.Kebab,
		"lower_camel_case":  caseconv.LowerCamel,
		"pascal_case":       caseconv.Pascal,
		"shouty_kebab_case": caseconv.ShoutyKebab,
		"shouty_snake_case": caseconv.ShoutySnake,
		"snake_case":        caseconv.Snake,
		"title_case":        caseconv.Title,
		"upper_camel_case":  caseconv.UpperCamel,
		"date":              datePart,
		"script":            r.scriptFilter,
	}
}

// datePart extracts a component of an ISO-like date string (YYYY-MM-DD) by
// fixed character offsets. Unrecognized format specifiers return the input
// unchanged.
func datePart(format, input string) string {
	switch format {
	case "%Y":
		if len(input) >= 4 {
			return input[0:4]
		}
	case "%m":
		if len(input) >= 7 {
			return input[5:7]
		}
	case "%d":
		if len(input) >= 10 {
			return input[8:10]
		}
	}
	return input
}

// scriptFilter runs the script at the given template-relative path and
// returns its textual result. A missing file or a failing script never
// hard-fails the render: the original argument is returned unchanged and a
// warning is logged.
func (r *Renderer) scriptFilter(path string) string {
	logger := logging.GetLogger("render.script")

	resolved := filepath.Join(r.templateRoot, path)
	if _, err := os.Stat(resolved); err != nil {
		logger.Warn().Str("script", path).Msg("filter script not found")
		return path
	}

	// Recorded before execution so the walker skips the file even when the
	// script itself fails
	r.filterFiles.Record(path)

	engine := script.NewEngine(r.context, r.prompter, r.templateRoot)
	result, err := engine.EvalFile(path)
	if err != nil {
		logger.Warn().Str("script", path).Err(err).Msg("filter script contained error")
		return path
	}
	return result
}
