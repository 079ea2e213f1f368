// Package generate orchestrates one scaffolding run: fetch the template,
// collect variables, run init hooks, resolve the project name, and walk
// the destination tree.
package generate

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"

	"github.com/arthur-debert/stencil/pkg/caseconv"
	"github.com/arthur-debert/stencil/pkg/config"
	"github.com/arthur-debert/stencil/pkg/errors"
	"github.com/arthur-debert/stencil/pkg/facts"
	"github.com/arthur-debert/stencil/pkg/logging"
	"github.com/arthur-debert/stencil/pkg/match"
	"github.com/arthur-debert/stencil/pkg/prompt"
	"github.com/arthur-debert/stencil/pkg/render"
	"github.com/arthur-debert/stencil/pkg/script"
	"github.com/arthur-debert/stencil/pkg/source"
	"github.com/arthur-debert/stencil/pkg/vars"
	"github.com/arthur-debert/stencil/pkg/walker"
)

// Options configures a generation run.
type Options struct {
	// TemplateLocation is a local directory or a git URL.
	TemplateLocation string
	// OutputDir is the parent of the generated project directory, or the
	// destination itself in init mode.
	OutputDir string
	// Name is the project name from the command line; may be empty.
	Name string
	// ProjectType is seeded into the context as project_type.
	ProjectType string
	// Init generates into OutputDir directly instead of a new
	// subdirectory.
	Init bool
	// Silent forbids interactive prompting.
	Silent bool
	// PreserveWhitespace disables block-tag whitespace stripping in
	// addition to the manifest setting.
	PreserveWhitespace bool
	// Define pre-sets string variables, bypassing their placeholders.
	Define map[string]string

	// Prompter overrides the interactive collaborator, for tests.
	Prompter prompt.Prompter
}

// Run executes one generation and returns the destination directory.
func Run(opts Options) (string, error) {
	logger := logging.GetLogger("generate")

	templateRoot, err := source.Fetch(opts.TemplateLocation)
	if err != nil {
		return "", err
	}

	cfg, err := config.Load(templateRoot)
	if err != nil {
		return "", err
	}

	prompter := opts.Prompter
	if prompter == nil {
		prompter = &prompt.TerminalPrompter{Silent: opts.Silent}
	}

	context := vars.NewContext()
	if err := seedContext(context, opts); err != nil {
		return "", err
	}
	if err := collectPlaceholders(context, cfg, prompter); err != nil {
		return "", err
	}

	// Init hooks run against the shared context before anything is
	// generated; they may compute or override variables, including the
	// project name.
	engine := script.NewEngine(context, prompter, templateRoot)
	for _, hook := range cfg.Hooks.Init {
		logger.Debug().Str("hook", hook).Msg("running init hook")
		if _, err := engine.EvalFile(hook); err != nil {
			return "", err
		}
	}

	projectName, err := resolveProjectName(context, opts, prompter)
	if err != nil {
		return "", err
	}

	destDir := opts.OutputDir
	if destDir == "" {
		destDir = "."
	}
	if !opts.Init {
		destDir = filepath.Join(destDir, caseconv.Kebab(projectName))
		if _, err := os.Stat(destDir); err == nil {
			return "", errors.Newf(errors.ErrInvalidInput, "destination %s already exists", destDir)
		}
	}

	if err := setProjectNameVariables(context, projectName, destDir); err != nil {
		return "", err
	}

	skipped := make(map[string]bool)
	skipped[config.ManifestTOML] = true
	skipped[config.ManifestYAML] = true
	for _, hook := range cfg.Hooks.Init {
		skipped[filepath.ToSlash(hook)] = true
	}
	if err := source.CopyTree(templateRoot, destDir, func(rel string) bool {
		return skipped[rel]
	}); err != nil {
		return "", err
	}

	matcher, err := match.New(cfg, cfg.Hooks.Init)
	if err != nil {
		return "", err
	}
	renderer := render.New(context, render.Options{
		TemplateRoot:       destDir,
		PreserveWhitespace: cfg.Template.PreserveWhitespace || opts.PreserveWhitespace,
		Prompter:           prompter,
	})

	logger.Info().Str("dest", destDir).Str("template", opts.TemplateLocation).Msg("generating project")
	if err := walker.New(destDir, matcher, renderer).Walk(); err != nil {
		return "", err
	}
	return destDir, nil
}

// seedContext pre-populates the context with environment-derived facts,
// the command-line name, and --define values.
func seedContext(context *vars.Context, opts Options) error {
	f := facts.Gather()

	if opts.Name != "" {
		if err := context.SetStringPair("project-name", opts.Name); err != nil {
			return err
		}
	}
	if err := context.SetString("authors", f.Author); err != nil {
		return err
	}
	if err := context.SetString("username", f.Username); err != nil {
		return err
	}
	if err := context.SetStringPair("os-arch", f.OSArch); err != nil {
		return err
	}
	projectType := opts.ProjectType
	if projectType == "" {
		projectType = "bin"
	}
	if err := context.SetString("project_type", projectType); err != nil {
		return err
	}
	if err := context.SetBool("is_init", opts.Init); err != nil {
		return err
	}

	// Sorted for deterministic error reporting
	names := make([]string, 0, len(opts.Define))
	for name := range opts.Define {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := context.SetString(name, opts.Define[name]); err != nil {
			return err
		}
	}
	return nil
}

// collectPlaceholders prompts for every manifest placeholder not already
// present in the context.
func collectPlaceholders(context *vars.Context, cfg *config.Config, prompter prompt.Prompter) error {
	names := make([]string, 0, len(cfg.Placeholders))
	for name := range cfg.Placeholders {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		existing, err := context.Get(name)
		if err != nil {
			return err
		}
		if existing.Kind != vars.NonExistent {
			continue
		}

		placeholder := cfg.Placeholders[name]
		slot := prompt.Slot{Prompt: placeholder.Prompt, VarName: name}
		if slot.Prompt == "" {
			slot.Prompt = name
		}

		if placeholder.Type == "bool" {
			slot.Kind = prompt.BoolVar
			if placeholder.Default != "" {
				def, err := strconv.ParseBool(placeholder.Default)
				if err != nil {
					return errors.Newf(errors.ErrConfigParse,
						"placeholder %s has a non-boolean default %q", name, placeholder.Default)
				}
				slot.BoolDefault = &def
			}
			answer, err := prompter.Ask(slot)
			if err != nil {
				return err
			}
			value, err := strconv.ParseBool(answer)
			if err != nil {
				return errors.Newf(errors.ErrPrompt, "unable to parse %q into bool", answer)
			}
			if err := context.SetBool(name, value); err != nil {
				return err
			}
			continue
		}

		if placeholder.Default != "" {
			def := placeholder.Default
			slot.Default = &def
		}
		if placeholder.Regex != "" {
			re, err := regexp.Compile(placeholder.Regex)
			if err != nil {
				return errors.Newf(errors.ErrConfigParse,
					"placeholder %s has an invalid regex %q", name, placeholder.Regex)
			}
			slot.Regex = re
		}
		slot.Choices = placeholder.Choices

		answer, err := prompter.Ask(slot)
		if err != nil {
			return err
		}
		if err := context.SetString(name, answer); err != nil {
			return err
		}
	}
	return nil
}

// resolveProjectName picks the project name: a hook-set context value
// wins, then the command-line name, then the environment override, then
// an interactive prompt. Silent runs with no value fail immediately.
func resolveProjectName(context *vars.Context, opts Options, prompter prompt.Prompter) (string, error) {
	logger := logging.GetLogger("generate")

	for _, key := range []string{"project_name", "project-name"} {
		value, err := context.Get(key)
		if err != nil {
			return "", err
		}
		if value.Kind == vars.StringValue && value.Str != "" {
			if opts.Name != "" && opts.Name != value.Str {
				logger.Warn().
					Str("from", opts.Name).
					Str("to", value.Str).
					Msg("project name changed by template")
			}
			return value.Str, nil
		}
	}

	if opts.Name != "" {
		return opts.Name, nil
	}
	if value, ok := os.LookupEnv(prompt.EnvOverrideKey("project-name")); ok {
		return value, nil
	}
	if opts.Silent {
		return "", errors.New(errors.ErrProjectName,
			"silent mode requested but the project name was not set, use --name")
	}
	return prompter.Ask(prompt.Slot{Prompt: "Project Name", VarName: "project-name"})
}

// setProjectNameVariables writes the resolved name and its derived forms
// into the context.
func setProjectNameVariables(context *vars.Context, projectName, destDir string) error {
	if err := context.SetStringPair("project-name", projectName); err != nil {
		return err
	}
	if err := context.SetString("package_name", caseconv.Snake(projectName)); err != nil {
		return err
	}
	return context.SetBool("within_project", withinProject(destDir))
}

// withinProject reports whether an ancestor of dir already carries a Go
// module manifest.
func withinProject(dir string) bool {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return false
	}
	for current := abs; ; current = filepath.Dir(current) {
		if _, err := os.Stat(filepath.Join(current, "go.mod")); err == nil {
			return true
		}
		if filepath.Dir(current) == current {
			return false
		}
	}
}
