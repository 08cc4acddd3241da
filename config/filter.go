package config

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// NameFilter selects objects by Tiled name. In a config file it is the
// string "all", the string "none", or a list of names.
type NameFilter struct {
	all   bool
	names map[string]struct{}
}

func MatchAll() NameFilter {
	return NameFilter{all: true}
}

func MatchNone() NameFilter {
	return NameFilter{}
}

func MatchNames(names ...string) NameFilter {
	f := NameFilter{names: make(map[string]struct{}, len(names))}
	for _, n := range names {
		f.names[n] = struct{}{}
	}
	return f
}

func (f NameFilter) Matches(name string) bool {
	if f.all {
		return true
	}
	_, ok := f.names[name]
	return ok
}

func (f NameFilter) String() string {
	if f.all {
		return "all"
	}
	if len(f.names) == 0 {
		return "none"
	}
	return fmt.Sprintf("%d names", len(f.names))
}

func parseFilterWord(s string) (NameFilter, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "all", "*":
		return MatchAll(), nil
	case "none", "":
		return MatchNone(), nil
	}
	return NameFilter{}, fmt.Errorf("config: name filter %q is not all, none or a list", s)
}

func (f *NameFilter) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		parsed, err := parseFilterWord(value.Value)
		if err != nil {
			return err
		}
		*f = parsed
		return nil
	case yaml.SequenceNode:
		var names []string
		if err := value.Decode(&names); err != nil {
			return err
		}
		*f = MatchNames(names...)
		return nil
	}
	return fmt.Errorf("config: line %d: name filter must be a string or a list", value.Line)
}

// UnmarshalTOML receives the decoded TOML value: a string or a []any.
func (f *NameFilter) UnmarshalTOML(v any) error {
	switch v := v.(type) {
	case string:
		parsed, err := parseFilterWord(v)
		if err != nil {
			return err
		}
		*f = parsed
		return nil
	case []any:
		names := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return fmt.Errorf("config: name filter entry %v is not a string", item)
			}
			names = append(names, s)
		}
		*f = MatchNames(names...)
		return nil
	}
	return fmt.Errorf("config: name filter must be a string or a list, got %T", v)
}
