// Package prompt collects variable values from the user.
//
// Values are resolved in order: process environment override, interactive
// terminal input, declared default. Non-interactive runs without an
// override or default fail with a PROMPT error.
package prompt

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/pterm/pterm"

	"github.com/arthur-debert/stencil/pkg/errors"
	"github.com/arthur-debert/stencil/pkg/logging"
)

// EnvPrefix is prepended to the upper-cased variable name to form the
// environment override key, e.g. STENCIL_VALUE_PROJECT_NAME.
const EnvPrefix = "STENCIL_VALUE_"

// Kind selects the typed specification of a slot.
type Kind int

const (
	// StringVar prompts for free-form text, optionally constrained by a
	// regex or a fixed choice list.
	StringVar Kind = iota
	// BoolVar prompts for a yes/no answer.
	BoolVar
)

// Slot describes one variable to collect: prompt text, the variable name
// (empty for ad-hoc script prompts), and its typed specification.
type Slot struct {
	Prompt  string
	VarName string
	Kind    Kind

	// String specification
	Default *string
	Regex   *regexp.Regexp
	Choices []string

	// Bool specification
	BoolDefault *bool
}

// Prompter collects a value for a slot. The returned value is the raw
// textual answer; boolean slots answer "true" or "false".
type Prompter interface {
	Ask(slot Slot) (string, error)
}

// TerminalPrompter is the default Prompter backed by pterm interactive
// printers. In silent mode the terminal is never touched.
type TerminalPrompter struct {
	Silent bool
}

// EnvOverrideKey returns the environment variable consulted for name, or
// "" when name is empty.
func EnvOverrideKey(name string) string {
	if name == "" {
		return ""
	}
	key := strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
	return EnvPrefix + key
}

// Ask resolves a slot value: environment override first, then interactive
// input, then the declared default.
func (p *TerminalPrompter) Ask(slot Slot) (string, error) {
	logger := logging.GetLogger("prompt")

	if key := EnvOverrideKey(slot.VarName); key != "" {
		if value, ok := os.LookupEnv(key); ok {
			logger.Debug().Str("var", slot.VarName).Str("env", key).Msg("using environment override")
			return p.checked(slot, value)
		}
	}

	if p.Silent || !isInteractive() {
		if value, ok := defaultFor(slot); ok {
			return value, nil
		}
		return "", errors.Newf(errors.ErrPrompt,
			"no terminal available and no default for %q", slot.Prompt)
	}

	return p.interact(slot)
}

func (p *TerminalPrompter) interact(slot Slot) (string, error) {
	if slot.Kind == BoolVar {
		confirm := pterm.DefaultInteractiveConfirm
		if slot.BoolDefault != nil {
			confirm = *confirm.WithDefaultValue(*slot.BoolDefault)
		}
		answer, err := confirm.Show(slot.Prompt)
		if err != nil {
			return "", errors.Wrap(err, errors.ErrPrompt, "reading confirmation")
		}
		return strconv.FormatBool(answer), nil
	}

	if len(slot.Choices) > 0 {
		sel := pterm.DefaultInteractiveSelect.WithOptions(slot.Choices)
		if slot.Default != nil {
			sel = sel.WithDefaultOption(*slot.Default)
		}
		answer, err := sel.Show(slot.Prompt)
		if err != nil {
			return "", errors.Wrap(err, errors.ErrPrompt, "reading selection")
		}
		return answer, nil
	}

	input := pterm.DefaultInteractiveTextInput
	if slot.Default != nil {
		input = *input.WithDefaultValue(*slot.Default)
	}
	for {
		answer, err := input.Show(slot.Prompt)
		if err != nil {
			return "", errors.Wrap(err, errors.ErrPrompt, "reading input")
		}
		if slot.Regex == nil || slot.Regex.MatchString(answer) {
			return answer, nil
		}
		pterm.Warning.Printfln("Value does not match %s, try again", slot.Regex)
	}
}

// checked validates a non-interactive value against the slot specification.
func (p *TerminalPrompter) checked(slot Slot, value string) (string, error) {
	if slot.Kind == BoolVar {
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			return "", errors.Newf(errors.ErrPrompt, "unable to parse %q into bool", value)
		}
		return strconv.FormatBool(parsed), nil
	}
	if slot.Regex != nil && !slot.Regex.MatchString(value) {
		return "", errors.Newf(errors.ErrPrompt, "value %q does not match %s", value, slot.Regex)
	}
	if len(slot.Choices) > 0 && !contains(slot.Choices, value) {
		return "", errors.Newf(errors.ErrPrompt,
			"value %q is not one of %s", value, strings.Join(slot.Choices, ", "))
	}
	return value, nil
}

func defaultFor(slot Slot) (string, bool) {
	if slot.Kind == BoolVar {
		if slot.BoolDefault != nil {
			return strconv.FormatBool(*slot.BoolDefault), true
		}
		return "", false
	}
	if slot.Default != nil {
		return *slot.Default, true
	}
	return "", false
}

func isInteractive() bool {
	return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
}

func contains(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}

// String renders the slot for log output.
func (s Slot) String() string {
	return fmt.Sprintf("slot{%s var=%s}", s.Prompt, s.VarName)
}
