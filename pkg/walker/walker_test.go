// pkg/walker/walker_test.go
// TEST TYPE: Integration Test
// DEPENDENCIES: Temp directories
// PURPOSE: Test the generation walk end to end over real file trees

package walker_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/stencil/pkg/config"
	"github.com/arthur-debert/stencil/pkg/errors"
	"github.com/arthur-debert/stencil/pkg/match"
	"github.com/arthur-debert/stencil/pkg/prompt"
	"github.com/arthur-debert/stencil/pkg/render"
	"github.com/arthur-debert/stencil/pkg/vars"
	"github.com/arthur-debert/stencil/pkg/walker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func newMatcher(t *testing.T, tpl config.TemplateSection, extraIgnore ...string) match.Matcher {
	t.Helper()
	m, err := match.New(&config.Config{Template: tpl}, extraIgnore)
	require.NoError(t, err)
	return m
}

func newRenderer(ctx *vars.Context, root string) *render.Renderer {
	return render.New(ctx, render.Options{
		TemplateRoot: root,
		Prompter:     &prompt.TerminalPrompter{Silent: true},
	})
}

func TestWalkRendersContentAndNames(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "{{.project_name}}/main.txt", "Hello {{.author}}")
	writeFile(t, root, "blob.bin", "\x00\x01binary {{.author}}")

	ctx := vars.NewContext()
	require.NoError(t, ctx.SetStringPair("project-name", "demo"))
	require.NoError(t, ctx.SetString("author", "Ada"))

	w := walker.New(root, newMatcher(t, config.TemplateSection{Exclude: []string{"*.bin"}}), newRenderer(ctx, root))
	require.NoError(t, w.Walk())

	content, err := os.ReadFile(filepath.Join(root, "demo", "main.txt"))
	require.NoError(t, err)
	assert.Equal(t, "Hello Ada", string(content))

	// The templated source directory is gone
	_, err = os.Stat(filepath.Join(root, "{{.project_name}}"))
	assert.True(t, os.IsNotExist(err))

	// The excluded file kept its verbatim content in place
	blob, err := os.ReadFile(filepath.Join(root, "blob.bin"))
	require.NoError(t, err)
	assert.Equal(t, "\x00\x01binary {{.author}}", string(blob))
}

func TestWalkExcludedFileUnderTemplatedDirMoves(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "{{.project_name}}/logo.bin", "raw {{.author}} bytes")

	ctx := vars.NewContext()
	require.NoError(t, ctx.SetStringPair("project-name", "demo"))

	w := walker.New(root, newMatcher(t, config.TemplateSection{Exclude: []string{"**/*.bin"}}), newRenderer(ctx, root))
	require.NoError(t, w.Walk())

	// Copied byte for byte to the new location, old path gone
	moved, err := os.ReadFile(filepath.Join(root, "demo", "logo.bin"))
	require.NoError(t, err)
	assert.Equal(t, "raw {{.author}} bytes", string(moved))

	_, err = os.Stat(filepath.Join(root, "{{.project_name}}"))
	assert.True(t, os.IsNotExist(err))
}

func TestWalkCollectsSyntaxErrors(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "broken.txt", "Hello {{.author")
	writeFile(t, root, "fine.txt", "Hello {{.author}}")

	ctx := vars.NewContext()
	require.NoError(t, ctx.SetString("author", "Ada"))

	w := walker.New(root, newMatcher(t, config.TemplateSection{}), newRenderer(ctx, root))
	err := w.Walk()

	// The run fails with an aggregated report naming the broken file
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrTemplateSyntax))
	assert.Contains(t, err.Error(), "broken.txt")
	assert.NotContains(t, err.Error(), "fine.txt")

	// The good file was still generated
	content, readErr := os.ReadFile(filepath.Join(root, "fine.txt"))
	require.NoError(t, readErr)
	assert.Equal(t, "Hello Ada", string(content))

	// The broken file is left untouched at the source location
	broken, readErr := os.ReadFile(filepath.Join(root, "broken.txt"))
	require.NoError(t, readErr)
	assert.Equal(t, "Hello {{.author", string(broken))
}

func TestWalkSkipsFilterScripts(t *testing.T) {
	root := t.TempDir()
	// "caller.txt" sorts before "zscripts", so the script runs as a filter
	// before the walk reaches the script file itself
	writeFile(t, root, "caller.txt", `{{script "zscripts/pick.scr"}}`)
	writeFile(t, root, "zscripts/pick.scr", `get("region")`)

	ctx := vars.NewContext()
	require.NoError(t, ctx.SetString("region", "east"))

	w := walker.New(root, newMatcher(t, config.TemplateSection{}), newRenderer(ctx, root))
	require.NoError(t, w.Walk())

	caller, err := os.ReadFile(filepath.Join(root, "caller.txt"))
	require.NoError(t, err)
	assert.Equal(t, "east", string(caller))

	// The script file was not templated as ordinary content
	script, err := os.ReadFile(filepath.Join(root, "zscripts", "pick.scr"))
	require.NoError(t, err)
	assert.Equal(t, `get("region")`, string(script))
}

func TestWalkIgnoreVerdict(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "stencil.toml", "[template]\n")
	writeFile(t, root, "main.txt", "Hello {{.author}}")

	ctx := vars.NewContext()
	require.NoError(t, ctx.SetString("author", "Ada"))

	w := walker.New(root, newMatcher(t, config.TemplateSection{}, "stencil.toml"), newRenderer(ctx, root))
	require.NoError(t, w.Walk())

	// Ignored entries have no file-system effect
	manifest, err := os.ReadFile(filepath.Join(root, "stencil.toml"))
	require.NoError(t, err)
	assert.Equal(t, "[template]\n", string(manifest))
}

func TestWalkSkipsGitMetadata(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, ".git/config", "[core] {{.author}}")
	writeFile(t, root, "main.txt", "Hello {{.author}}")

	ctx := vars.NewContext()
	require.NoError(t, ctx.SetString("author", "Ada"))

	w := walker.New(root, newMatcher(t, config.TemplateSection{}), newRenderer(ctx, root))
	require.NoError(t, w.Walk())

	gitConfig, err := os.ReadFile(filepath.Join(root, ".git", "config"))
	require.NoError(t, err)
	assert.Equal(t, "[core] {{.author}}", string(gitConfig))
}

func TestWalkDeepNesting(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "{{.project_name}}/src/{{.project_name}}.txt", "{{.project_name}}")

	ctx := vars.NewContext()
	require.NoError(t, ctx.SetStringPair("project-name", "demo"))

	w := walker.New(root, newMatcher(t, config.TemplateSection{}), newRenderer(ctx, root))
	require.NoError(t, w.Walk())

	content, err := os.ReadFile(filepath.Join(root, "demo", "src", "demo.txt"))
	require.NoError(t, err)
	assert.Equal(t, "demo", string(content))
}
