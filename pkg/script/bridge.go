package script

import (
	"regexp"
	"strconv"

	"github.com/arthur-debert/stencil/pkg/errors"
	"github.com/arthur-debert/stencil/pkg/prompt"
	"github.com/arthur-debert/stencil/pkg/vars"
)

// Bridge builds the native capability surface exposed to embedded scripts:
// is_set, get, set, and prompt, all closed over the shared variable context
// and the interactive prompter.
func Bridge(ctx *vars.Context, prompter prompt.Prompter) map[string]interface{} {
	return map[string]interface{}{
		"is_set": func(name string) (bool, error) {
			value, err := ctx.Get(name)
			if err != nil {
				return false, err
			}
			return value.Kind != vars.NonExistent, nil
		},

		"get": func(name string) (interface{}, error) {
			value, err := ctx.Get(name)
			if err != nil {
				return nil, err
			}
			switch value.Kind {
			case vars.BoolValue:
				return value.Bool, nil
			case vars.StringValue:
				return value.Str, nil
			default:
				return "", nil
			}
		},

		"set": func(name string, value interface{}) (bool, error) {
			if err := setContextValue(ctx, name, value); err != nil {
				return false, err
			}
			return true, nil
		},

		"prompt": func(args ...interface{}) (interface{}, error) {
			return dispatchPrompt(prompter, args)
		},
	}
}

// setContextValue maps a script value onto the context's closed value type
// and delegates to the matching typed setter.
func setContextValue(ctx *vars.Context, name string, value interface{}) error {
	switch v := value.(type) {
	case bool:
		return ctx.SetBool(name, v)
	case string:
		return ctx.SetString(name, v)
	case []interface{}:
		converted, err := convertList(v)
		if err != nil {
			return err
		}
		return ctx.SetList(name, converted)
	default:
		return errors.Newf(errors.ErrUnsupportedType,
			"expecting type to be string, bool or list but found a '%T' instead", value)
	}
}

// convertList recursively converts a script list into context list
// elements, rejecting any element outside the representable kinds.
func convertList(list []interface{}) ([]interface{}, error) {
	out := make([]interface{}, 0, len(list))
	for _, elem := range list {
		switch v := elem.(type) {
		case bool, string:
			out = append(out, v)
		case []interface{}:
			nested, err := convertList(v)
			if err != nil {
				return nil, err
			}
			out = append(out, nested)
		default:
			return nil, errors.Newf(errors.ErrUnsupportedType,
				"expecting type to be string, bool or list but found a '%T' instead", elem)
		}
	}
	return out, nil
}

// dispatchPrompt implements the prompt overload set:
//
//	prompt(message)                      -> string
//	prompt(message, default bool)        -> bool
//	prompt(message, default string)      -> string
//	prompt(message, default, regex)      -> string
//	prompt(message, default, choices)    -> string
func dispatchPrompt(prompter prompt.Prompter, args []interface{}) (interface{}, error) {
	if len(args) == 0 || len(args) > 3 {
		return nil, errors.Newf(errors.ErrPrompt, "prompt expects 1 to 3 arguments, got %d", len(args))
	}
	message, ok := args[0].(string)
	if !ok {
		return nil, errors.Newf(errors.ErrPrompt, "prompt message must be a string, got %T", args[0])
	}

	slot := prompt.Slot{Prompt: message}

	if len(args) == 1 {
		answer, err := prompter.Ask(slot)
		if err != nil {
			return nil, err
		}
		return answer, nil
	}

	switch def := args[1].(type) {
	case bool:
		if len(args) != 2 {
			return nil, errors.New(errors.ErrPrompt, "bool prompt takes no further arguments")
		}
		slot.Kind = prompt.BoolVar
		slot.BoolDefault = &def
		answer, err := prompter.Ask(slot)
		if err != nil {
			return nil, err
		}
		parsed, err := strconv.ParseBool(answer)
		if err != nil {
			return nil, errors.Newf(errors.ErrPrompt, "unable to parse %q into bool", answer)
		}
		return parsed, nil

	case string:
		slot.Default = &def
		if len(args) == 3 {
			switch third := args[2].(type) {
			case string:
				re, err := regexp.Compile(third)
				if err != nil {
					return nil, errors.Newf(errors.ErrPrompt, "invalid regex %q", third)
				}
				slot.Regex = re
			case []interface{}:
				choices := make([]string, 0, len(third))
				for _, c := range third {
					s, ok := c.(string)
					if !ok {
						return nil, errors.Newf(errors.ErrPrompt, "prompt choices must be strings, got %T", c)
					}
					choices = append(choices, s)
				}
				slot.Choices = choices
			default:
				return nil, errors.Newf(errors.ErrPrompt,
					"prompt third argument must be a regex or a choice list, got %T", args[2])
			}
		}
		answer, err := prompter.Ask(slot)
		if err != nil {
			return nil, err
		}
		return answer, nil

	default:
		return nil, errors.Newf(errors.ErrPrompt, "prompt default must be a string or bool, got %T", args[1])
	}
}
