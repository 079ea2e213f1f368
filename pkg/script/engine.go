// Package script evaluates embedded template scripts against the shared
// variable context.
//
// Scripts are expr programs: optional let bindings followed by a final
// expression. They reach the variable context only through the bridge
// functions (is_set, get, set, prompt).
package script

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/expr-lang/expr"

	"github.com/arthur-debert/stencil/pkg/errors"
	"github.com/arthur-debert/stencil/pkg/logging"
	"github.com/arthur-debert/stencil/pkg/prompt"
	"github.com/arthur-debert/stencil/pkg/vars"
)

// Engine runs scripts with read/write access to one variable context.
type Engine struct {
	context  *vars.Context
	prompter prompt.Prompter
	// workDir is the directory script paths are resolved against,
	// normally the template root.
	workDir string
}

// NewEngine creates a script engine bound to the given context.
func NewEngine(context *vars.Context, prompter prompt.Prompter, workDir string) *Engine {
	return &Engine{context: context, prompter: prompter, workDir: workDir}
}

// Eval compiles and runs one script, returning its final value. Set calls
// made by the script mutate the shared context in place.
func (e *Engine) Eval(code string) (interface{}, error) {
	env := Bridge(e.context, e.prompter)

	program, err := expr.Compile(code, expr.Env(env))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrFilterScript, "compiling script")
	}
	output, err := expr.Run(program, env)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrFilterScript, "running script")
	}
	return output, nil
}

// EvalFile runs the script at path (resolved against the engine's working
// directory when relative) and returns its textual result.
func (e *Engine) EvalFile(path string) (string, error) {
	logger := logging.GetLogger("script")

	resolved := path
	if !filepath.IsAbs(resolved) {
		resolved = filepath.Join(e.workDir, path)
	}
	code, err := os.ReadFile(resolved)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrFilterScript, "script %s not found", path)
	}

	logger.Debug().Str("script", path).Msg("running script file")
	result, err := e.Eval(string(code))
	if err != nil {
		return "", err
	}
	return Stringify(result), nil
}

// Stringify renders a script result for template output.
func Stringify(value interface{}) string {
	if value == nil {
		return ""
	}
	if s, ok := value.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", value)
}
