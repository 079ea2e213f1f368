// Package render turns template strings into output text against the
// shared variable context.
//
// Rendering never aborts a generation because of bad template syntax in a
// single file: depending on the mode, failures either fall back to the
// original input or are reported to the caller for per-file collection.
package render

import (
	"regexp"
	"strings"
	"text/template"

	"github.com/arthur-debert/stencil/pkg/errors"
	"github.com/arthur-debert/stencil/pkg/prompt"
	"github.com/arthur-debert/stencil/pkg/vars"
)

// Mode selects the failure policy of one render call.
type Mode int

const (
	// FallbackSilently returns the original input text on any compile or
	// evaluation failure. Always used for filenames: renaming must never
	// abort the walk.
	FallbackSilently Mode = iota
	// CollectErrors surfaces compile (syntax) errors to the caller, which
	// records them per file. Evaluation failures still fall back to the
	// original text.
	CollectErrors
)

// Options configures a Renderer.
type Options struct {
	// TemplateRoot anchors script filter paths.
	TemplateRoot string
	// PreserveWhitespace disables block-tag whitespace stripping.
	PreserveWhitespace bool
	// Prompter handles prompts issued by filter scripts.
	Prompter prompt.Prompter
}

// Renderer evaluates template strings against one variable context. The
// filter table is rebuilt for every render call; the script filter log is
// shared with the tree walker.
type Renderer struct {
	context            *vars.Context
	templateRoot       string
	preserveWhitespace bool
	prompter           prompt.Prompter
	filterFiles        *ScriptFileLog
}

// New creates a Renderer bound to the given variable context.
func New(context *vars.Context, opts Options) *Renderer {
	prompter := opts.Prompter
	if prompter == nil {
		prompter = &prompt.TerminalPrompter{}
	}
	return &Renderer{
		context:            context,
		templateRoot:       opts.TemplateRoot,
		preserveWhitespace: opts.PreserveWhitespace,
		prompter:           prompter,
		filterFiles:        NewScriptFileLog(),
	}
}

// FilterFiles exposes the script filter log for the walker.
func (r *Renderer) FilterFiles() *ScriptFileLog {
	return r.filterFiles
}

// Render substitutes variables into text. Errors are handled per the mode;
// the only error that always propagates is a poisoned variable context,
// which is fatal to the run.
func (r *Renderer) Render(text string, mode Mode) (string, error) {
	input := text
	if !r.preserveWhitespace {
		input = stripBlockWhitespace(input)
	}

	tmpl, err := template.New("stencil").
		Option("missingkey=error").
		Funcs(r.funcMap()).
		Parse(input)
	if err != nil {
		if mode == CollectErrors {
			return "", errors.Wrap(err, errors.ErrTemplateSyntax, "invalid template syntax")
		}
		return text, nil
	}

	snapshot, err := r.context.Snapshot()
	if err != nil {
		// Poisoned context, fatal
		return "", err
	}

	var out strings.Builder
	if err := tmpl.Execute(&out, snapshot); err != nil {
		// Undefined variables and filter failures degrade to the original
		// text in both modes
		return text, nil
	}
	return out.String(), nil
}

// RenderPath substitutes variables into a path string, always with
// fallback semantics.
func (r *Renderer) RenderPath(path string) (string, error) {
	rendered, err := r.Render(path, FallbackSilently)
	if err != nil {
		return "", err
	}
	return rendered, nil
}

// Block tags are control-flow actions (if/else/range/with/end and template
// definitions). Plain variable substitutions are left alone by whitespace
// stripping.
//
// trimBlockRe requires a brace-free tag body: a pipeline argument that
// itself contains braces (a "{{" or "}}" inside a string literal) is not
// recognized as a block tag and keeps its trailing newline.
var (
	lstripBlockRe = regexp.MustCompile(`(?m)^[ \t]+(\{\{\s*(?:if|else|end|range|with|define|block|template)\b)`)
	trimBlockRe   = regexp.MustCompile(`(\{\{\s*(?:if|else|end|range|with|define|block|template)\b[^{}]*?\}\})\r?\n`)
)

// stripBlockWhitespace removes the indentation before a block tag that
// starts a line and the first newline after a block tag, so control flow
// does not leak blank lines into the output.
func stripBlockWhitespace(text string) string {
	text = lstripBlockRe.ReplaceAllString(text, "$1")
	return trimBlockRe.ReplaceAllString(text, "$1")
}
