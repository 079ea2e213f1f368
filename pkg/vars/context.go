// Package vars implements the shared variable context for a generation run.
//
// The context maps variable names to boolean, string, or list values and is
// shared by reference between the tree walker, the renderer, and every
// embedded script invocation. All of them may mutate it mid-run, so every
// access goes through one exclusive-access entry point.
package vars

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/arthur-debert/stencil/pkg/errors"
)

// ValueKind classifies the result of a Get probe.
type ValueKind int

const (
	// NonExistent means the variable is not present in the context.
	NonExistent ValueKind = iota
	// BoolValue means the variable holds a boolean.
	BoolValue
	// StringValue means the variable holds a string, or a composite value
	// reported through its textual representation.
	StringValue
)

// NamedValue is the result of probing a variable. Composite (list) values
// are stringified rather than surfaced structurally so that script code can
// probe existence and type without special-casing them.
type NamedValue struct {
	Kind ValueKind
	Bool bool
	Str  string
}

// Context is the shared mutable variable store for one generation run.
// Reads must hold the lock too: a read may race nested script logic that is
// mid-mutation during a single render call. Reentrant acquisition fails
// fast with CONTEXT_POISONED instead of deadlocking.
type Context struct {
	mu     sync.Mutex
	values map[string]interface{}
}

// NewContext creates an empty variable context.
func NewContext() *Context {
	return &Context{values: make(map[string]interface{})}
}

// lock acquires the exclusivity guarantee, or reports the context as
// poisoned when the guarantee is already held (reentrant access).
func (c *Context) lock() error {
	if !c.mu.TryLock() {
		return errors.New(errors.ErrContextPoisoned,
			"variable context lock could not be acquired")
	}
	return nil
}

// Get probes a variable. Missing variables report NonExistent; values that
// are neither bool nor string are returned through their textual
// representation.
func (c *Context) Get(name string) (NamedValue, error) {
	if err := c.lock(); err != nil {
		return NamedValue{}, err
	}
	defer c.mu.Unlock()

	raw, ok := c.values[name]
	if !ok {
		return NamedValue{Kind: NonExistent}, nil
	}
	switch v := raw.(type) {
	case bool:
		return NamedValue{Kind: BoolValue, Bool: v}, nil
	case string:
		return NamedValue{Kind: StringValue, Str: v}, nil
	default:
		return NamedValue{Kind: StringValue, Str: stringify(raw)}, nil
	}
}

// SetString stores a string variable. The variable must be absent or
// already a string.
func (c *Context) SetString(name, value string) error {
	if err := c.lock(); err != nil {
		return err
	}
	defer c.mu.Unlock()

	if existing, ok := c.values[name]; ok {
		if _, isString := existing.(string); !isString {
			return errors.Newf(errors.ErrTypeMismatch, "variable %s not a string", name)
		}
	}
	c.values[name] = value
	return nil
}

// SetBool stores a boolean variable. The variable must be absent or
// already a boolean.
func (c *Context) SetBool(name string, value bool) error {
	if err := c.lock(); err != nil {
		return err
	}
	defer c.mu.Unlock()

	if existing, ok := c.values[name]; ok {
		if _, isBool := existing.(bool); !isBool {
			return errors.Newf(errors.ErrTypeMismatch, "variable %s not a bool", name)
		}
	}
	c.values[name] = value
	return nil
}

// SetList stores a list variable. Lists are write-once: the variable must
// be absent. Elements are validated recursively to be bool, string, or
// nested list.
func (c *Context) SetList(name string, value []interface{}) error {
	if err := c.lock(); err != nil {
		return err
	}
	defer c.mu.Unlock()

	if _, ok := c.values[name]; ok {
		return errors.Newf(errors.ErrTypeMismatch, "variable %s not overwritable as a list", name)
	}
	validated, err := validateList(value)
	if err != nil {
		return err
	}
	c.values[name] = validated
	return nil
}

// SetStringPair stores a string variable under both the hyphenated and the
// underscored spelling of name, keeping the two template styles in sync.
func (c *Context) SetStringPair(name, value string) error {
	hyphenated := strings.ReplaceAll(name, "_", "-")
	underscored := strings.ReplaceAll(name, "-", "_")
	if err := c.SetString(hyphenated, value); err != nil {
		return err
	}
	if underscored != hyphenated {
		return c.SetString(underscored, value)
	}
	return nil
}

// Snapshot returns a deep copy of the current variable mapping, suitable
// for handing to a template evaluation without holding the lock.
func (c *Context) Snapshot() (map[string]interface{}, error) {
	if err := c.lock(); err != nil {
		return nil, err
	}
	defer c.mu.Unlock()

	out := make(map[string]interface{}, len(c.values))
	for k, v := range c.values {
		out[k] = copyValue(v)
	}
	return out, nil
}

// Names returns the variable names currently present, sorted.
func (c *Context) Names() ([]string, error) {
	if err := c.lock(); err != nil {
		return nil, err
	}
	defer c.mu.Unlock()

	names := make([]string, 0, len(c.values))
	for k := range c.values {
		names = append(names, k)
	}
	sort.Strings(names)
	return names, nil
}

// validateList checks every element recursively for a representable kind.
func validateList(value []interface{}) ([]interface{}, error) {
	out := make([]interface{}, 0, len(value))
	for _, elem := range value {
		switch v := elem.(type) {
		case bool, string:
			out = append(out, v)
		case []interface{}:
			nested, err := validateList(v)
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

func copyValue(v interface{}) interface{} {
	list, ok := v.([]interface{})
	if !ok {
		return v
	}
	out := make([]interface{}, len(list))
	for i, elem := range list {
		out[i] = copyValue(elem)
	}
	return out
}

func stringify(v interface{}) string {
	list, ok := v.([]interface{})
	if !ok {
		return fmt.Sprintf("%v", v)
	}
	parts := make([]string, len(list))
	for i, elem := range list {
		parts[i] = stringify(elem)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
