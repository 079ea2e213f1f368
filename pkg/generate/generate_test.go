// pkg/generate/generate_test.go
// TEST TYPE: Integration Test
// DEPENDENCIES: Temp directories, environment variables
// PURPOSE: Test the full generation pipeline over local templates

package generate_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/stencil/pkg/errors"
	"github.com/arthur-debert/stencil/pkg/generate"
	"github.com/arthur-debert/stencil/pkg/prompt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemplate(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestRunEndToEnd(t *testing.T) {
	template := t.TempDir()
	writeTemplate(t, template, "stencil.toml", `
[template]
exclude = ["*.bin"]
`)
	writeTemplate(t, template, "README.md", "# {{.project_name}}")
	writeTemplate(t, template, "src/{{.package_name}}.txt", "package {{.package_name}}")
	writeTemplate(t, template, "logo.bin", "binary {{.untouched}}")

	out := t.TempDir()
	dest, err := generate.Run(generate.Options{
		TemplateLocation: template,
		OutputDir:        out,
		Name:             "My Demo",
		Silent:           true,
	})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(out, "my-demo"), dest)

	readme, err := os.ReadFile(filepath.Join(dest, "README.md"))
	require.NoError(t, err)
	assert.Equal(t, "# My Demo", string(readme))

	src, err := os.ReadFile(filepath.Join(dest, "src", "my_demo.txt"))
	require.NoError(t, err)
	assert.Equal(t, "package my_demo", string(src))

	// Excluded file kept verbatim
	logo, err := os.ReadFile(filepath.Join(dest, "logo.bin"))
	require.NoError(t, err)
	assert.Equal(t, "binary {{.untouched}}", string(logo))

	// The manifest is not part of the generated project
	_, err = os.Stat(filepath.Join(dest, "stencil.toml"))
	assert.True(t, os.IsNotExist(err))
}

func TestRunInitHookSetsVariables(t *testing.T) {
	template := t.TempDir()
	writeTemplate(t, template, "stencil.toml", `
[hooks]
init = ["hooks/setup.scr"]
`)
	writeTemplate(t, template, "hooks/setup.scr", `set("deploy", ["east", "west"]) && set("greeting", "hi")`)
	writeTemplate(t, template, "main.txt", "{{.greeting}} {{range .deploy}}[{{.}}]{{end}}")

	dest, err := generate.Run(generate.Options{
		TemplateLocation: template,
		OutputDir:        t.TempDir(),
		Name:             "demo",
		Silent:           true,
	})
	require.NoError(t, err)

	content, err := os.ReadFile(filepath.Join(dest, "main.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hi [east][west]", string(content))

	// Hook scripts are not part of the generated project
	_, err = os.Stat(filepath.Join(dest, "hooks", "setup.scr"))
	assert.True(t, os.IsNotExist(err))
}

func TestRunHookOverridesProjectName(t *testing.T) {
	template := t.TempDir()
	writeTemplate(t, template, "stencil.toml", `
[hooks]
init = ["rename.scr"]
`)
	writeTemplate(t, template, "rename.scr", `set("project_name", "renamed")`)
	writeTemplate(t, template, "main.txt", "{{.project_name}}")

	out := t.TempDir()
	dest, err := generate.Run(generate.Options{
		TemplateLocation: template,
		OutputDir:        out,
		Name:             "original",
		Silent:           true,
	})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(out, "renamed"), dest)

	content, err := os.ReadFile(filepath.Join(dest, "main.txt"))
	require.NoError(t, err)
	assert.Equal(t, "renamed", string(content))
}

func TestRunPlaceholdersFromEnv(t *testing.T) {
	t.Setenv("STENCIL_VALUE_REGION", "east")

	template := t.TempDir()
	writeTemplate(t, template, "stencil.toml", `
[placeholders.region]
type = "string"
prompt = "Which region?"
choices = ["east", "west"]

[placeholders.ci]
type = "bool"
prompt = "Enable CI?"
default = "true"
`)
	writeTemplate(t, template, "main.txt", "{{.region}} ci={{.ci}}")

	dest, err := generate.Run(generate.Options{
		TemplateLocation: template,
		OutputDir:        t.TempDir(),
		Name:             "demo",
		Silent:           true,
	})
	require.NoError(t, err)

	content, err := os.ReadFile(filepath.Join(dest, "main.txt"))
	require.NoError(t, err)
	assert.Equal(t, "east ci=true", string(content))
}

func TestRunSilentWithoutNameFails(t *testing.T) {
	template := t.TempDir()
	writeTemplate(t, template, "main.txt", "hello")

	_, err := generate.Run(generate.Options{
		TemplateLocation: template,
		OutputDir:        t.TempDir(),
		Silent:           true,
	})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrProjectName))
}

func TestRunProjectNameFromEnv(t *testing.T) {
	t.Setenv("STENCIL_VALUE_PROJECT_NAME", "env-named")

	template := t.TempDir()
	writeTemplate(t, template, "main.txt", "{{.project_name}}")

	out := t.TempDir()
	dest, err := generate.Run(generate.Options{
		TemplateLocation: template,
		OutputDir:        out,
		Silent:           true,
	})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(out, "env-named"), dest)
}

func TestRunExistingDestinationFails(t *testing.T) {
	template := t.TempDir()
	writeTemplate(t, template, "main.txt", "hello")

	out := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(out, "demo"), 0755))

	_, err := generate.Run(generate.Options{
		TemplateLocation: template,
		OutputDir:        out,
		Name:             "demo",
		Silent:           true,
	})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
}

func TestRunDefinesBypassPlaceholders(t *testing.T) {
	template := t.TempDir()
	writeTemplate(t, template, "stencil.toml", `
[placeholders.region]
type = "string"
prompt = "Which region?"
`)
	writeTemplate(t, template, "main.txt", "{{.region}}")

	dest, err := generate.Run(generate.Options{
		TemplateLocation: template,
		OutputDir:        t.TempDir(),
		Name:             "demo",
		Silent:           true,
		Define:           map[string]string{"region": "west"},
	})
	require.NoError(t, err)

	content, err := os.ReadFile(filepath.Join(dest, "main.txt"))
	require.NoError(t, err)
	assert.Equal(t, "west", string(content))
}

type fixedPrompter struct {
	answers map[string]string
}

func (p *fixedPrompter) Ask(slot prompt.Slot) (string, error) {
	if answer, ok := p.answers[slot.Prompt]; ok {
		return answer, nil
	}
	return "", errors.Newf(errors.ErrPrompt, "no answer for %q", slot.Prompt)
}

func TestRunInteractiveNameResolution(t *testing.T) {
	template := t.TempDir()
	writeTemplate(t, template, "main.txt", "{{.project_name}}")

	out := t.TempDir()
	dest, err := generate.Run(generate.Options{
		TemplateLocation: template,
		OutputDir:        out,
		Prompter:         &fixedPrompter{answers: map[string]string{"Project Name": "asked"}},
	})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(out, "asked"), dest)
}
