package solution

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrMissingArgument is returned when a required argument has no value.
	ErrMissingArgument = errors.New("missing required argument")
	// ErrUnknownArgument is returned for values the solution never declared.
	ErrUnknownArgument = errors.New("unknown argument")
)

// ArgType is the declared type of a solution argument.
type ArgType string

const (
	ArgString    ArgType = "string"
	ArgInteger   ArgType = "integer"
	ArgFloat     ArgType = "float"
	ArgBoolean   ArgType = "boolean"
	ArgFile      ArgType = "file"
	ArgDirectory ArgType = "directory"
)

// IsValid reports whether t is one of the types the host understands.
func (t ArgType) IsValid() bool {
	switch t {
	case ArgString, ArgInteger, ArgFloat, ArgBoolean, ArgFile, ArgDirectory:
		return true
	default:
		return false
	}
}

// ArgSpec declares one argument the solution accepts at run time.
type ArgSpec struct {
	Name        string  `yaml:"name"`
	Type        ArgType `yaml:"type"`
	Required    bool    `yaml:"required,omitempty"`
	Description string  `yaml:"description,omitempty"`
	Default     string  `yaml:"default,omitempty"`
}

// Validate checks a single argument declaration.
func (a ArgSpec) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return fmt.Errorf("argument name is required")
	}
	if strings.ContainsAny(a.Name, " \t=") {
		return fmt.Errorf("argument name %q contains whitespace or '='", a.Name)
	}
	if !a.Type.IsValid() {
		return fmt.Errorf("argument %q has unsupported type %q", a.Name, a.Type)
	}
	return nil
}

// Args is the parsed argument set handed to install and run. Values are
// passed through as strings; the solution does not interpret them.
type Args map[string]string

// Get returns the value of name and whether it was set.
func (a Args) Get(name string) (string, bool) {
	v, ok := a[name]
	return v, ok
}

// ParseArgs checks values against the declared specs: required arguments
// must be present and non-empty, defaults fill in the rest and names the
// solution does not declare are rejected.
func (s Solution) ParseArgs(values map[string]string) (Args, error) {
	declared := make(map[string]ArgSpec, len(s.Args))
	for _, spec := range s.Args {
		declared[spec.Name] = spec
	}

	var unknown []string
	for name := range values {
		if _, ok := declared[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, fmt.Errorf("%w: %s", ErrUnknownArgument, strings.Join(unknown, ", "))
	}

	args := make(Args, len(s.Args))
	for _, spec := range s.Args {
		v, ok := values[spec.Name]
		if !ok || v == "" {
			if spec.Required {
				return nil, fmt.Errorf("%w: %s", ErrMissingArgument, spec.Name)
			}
			if spec.Default == "" {
				continue
			}
			v = spec.Default
		}
		args[spec.Name] = v
	}
	return args, nil
}

// RequiredArgs returns the names of required arguments in declaration order.
func (s Solution) RequiredArgs() []string {
	var names []string
	for _, spec := range s.Args {
		if spec.Required {
			names = append(names, spec.Name)
		}
	}
	return names
}
