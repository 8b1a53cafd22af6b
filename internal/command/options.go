package command

import "fmt"

// OptionType is the argument type of a declared option.
type OptionType int

const (
	OptionString OptionType = iota
	OptionInteger
	OptionBoolean
	OptionRole
	OptionChannel
)

// Choice restricts a string option to a fixed value set.
type Choice struct {
	Name  string
	Value string
}

// Option declares one typed command argument.
type Option struct {
	Name        string
	Description string
	Type        OptionType
	Required    bool
	MinValue    *int
	MaxValue    *int
	Choices     []Choice
}

// Int returns a pointer for MinValue/MaxValue literals.
func Int(v int) *int { return &v }

// Args holds arguments already validated against the command's option
// declarations. Accessors return zero values for absent optionals.
type Args struct {
	values map[string]any
}

func (a Args) Has(name string) bool {
	_, ok := a.values[name]
	return ok
}

func (a Args) String(name string) string {
	v, _ := a.values[name].(string)
	return v
}

// StringOr returns the option value or def when absent.
func (a Args) StringOr(name, def string) string {
	if v, ok := a.values[name].(string); ok {
		return v
	}
	return def
}

func (a Args) Int(name string) int {
	v, _ := a.values[name].(int)
	return v
}

func (a Args) IntOr(name string, def int) int {
	if v, ok := a.values[name].(int); ok {
		return v
	}
	return def
}

func (a Args) Bool(name string) bool {
	v, _ := a.values[name].(bool)
	return v
}

// Role returns the selected role ID.
func (a Args) Role(name string) string {
	v, _ := a.values[name].(string)
	return v
}

// Channel returns the selected channel ID.
func (a Args) Channel(name string) string {
	v, _ := a.values[name].(string)
	return v
}

// ParseArgs validates raw option values against the declarations exactly
// once, at the transport boundary. Handlers afterwards read typed values
// without re-checking. Violations are user input errors.
func ParseArgs(opts []Option, raw map[string]any) (Args, error) {
	values := make(map[string]any, len(raw))

	for _, opt := range opts {
		v, present := raw[opt.Name]
		if !present {
			if opt.Required {
				return Args{}, Userf("Missing required option `%s`.", opt.Name)
			}
			continue
		}

		switch opt.Type {
		case OptionString, OptionRole, OptionChannel:
			s, ok := v.(string)
			if !ok {
				return Args{}, Userf("Option `%s` must be a string.", opt.Name)
			}
			if len(opt.Choices) > 0 && !validChoice(opt.Choices, s) {
				return Args{}, Userf("Invalid value for option `%s`.", opt.Name)
			}
			values[opt.Name] = s

		case OptionInteger:
			n, ok := toInt(v)
			if !ok {
				return Args{}, Userf("Option `%s` must be an integer.", opt.Name)
			}
			if opt.MinValue != nil && n < *opt.MinValue {
				return Args{}, Userf("Option `%s` must be at least %d.", opt.Name, *opt.MinValue)
			}
			if opt.MaxValue != nil && n > *opt.MaxValue {
				return Args{}, Userf("Option `%s` must be at most %d.", opt.Name, *opt.MaxValue)
			}
			values[opt.Name] = n

		case OptionBoolean:
			b, ok := v.(bool)
			if !ok {
				return Args{}, Userf("Option `%s` must be a boolean.", opt.Name)
			}
			values[opt.Name] = b

		default:
			return Args{}, fmt.Errorf("unsupported option type %d for %s", opt.Type, opt.Name)
		}
	}

	return Args{values: values}, nil
}

func validChoice(choices []Choice, value string) bool {
	for _, c := range choices {
		if c.Value == value {
			return true
		}
	}
	return false
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	}
	return 0, false
}
