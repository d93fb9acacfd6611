package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"
)

// resolve returns a [kong.ConfigurationLoader] that reads the mapping named
// name from a YAML config file, such as the one written by the init command.
//
// It can be used with [kong.Configuration] like this:
//
//	kong.Configuration(resolve("config"), "/path/to/config.yaml")
//
// Values are converted as follows:
//   - Flag names with hyphens (e.g., "log-level") may use underscores
//     in the config file (e.g., "log_level")
//   - Sequences are joined with commas
//   - Numbers are formatted as strings
//   - Booleans and strings are passed through
//
// Example config file:
//
//	config:
//	  log_level: debug
//	  file: deploy/serverless.yml
//	  suffix: [mjs, cjs]
//
// Command-line flags override config file values. A file that is not valid
// YAML, or lacks the named mapping, yields an empty configuration.
func resolve(name string) func(r io.Reader) (kong.Resolver, error) {
	return func(r io.Reader) (kong.Resolver, error) {
		data, err := io.ReadAll(r)
		if err != nil {
			return config{}, nil
		}

		var doc map[string]any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return config{}, nil
		}

		section, ok := doc[name].(map[string]any)
		if !ok {
			return config{}, nil
		}

		conf := make(config, len(section))
		for key, val := range section {
			if v, ok := flagString(val); ok {
				conf[key] = v
			}
		}

		return conf, nil
	}
}

// config implements [kong.Resolver] for YAML configs.
type config map[string]any

// Validate implements [kong.Resolver].
func (r config) Validate(*kong.Application) error {
	return nil
}

// Resolve implements [kong.Resolver].
func (r config) Resolve(
	_ *kong.Context,
	_ *kong.Path,
	flag *kong.Flag,
) (any, error) {
	// Kong flags use hyphens (e.g., "log-level") but config keys
	// may use underscores. Try both forms.
	if value, ok := r[flag.Name]; ok {
		return value, nil
	}

	if value, ok := r[strings.ReplaceAll(flag.Name, "-", "_")]; ok {
		return value, nil
	}

	// Not found - return nil to let Kong use defaults
	return nil, nil
}

// flagString converts a decoded YAML value to the form kong parses.
// Booleans stay booleans; mappings and nulls are rejected.
func flagString(val any) (any, bool) {
	switch v := val.(type) {
	case nil, map[string]any:
		return nil, false

	case bool, string:
		return v, true

	case int:
		return strconv.Itoa(v), true

	case int64:
		return strconv.FormatInt(v, 10), true

	case uint64:
		return strconv.FormatUint(v, 10), true

	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true

	case []any:
		part := make([]string, 0, len(v))

		for _, elem := range v {
			s, ok := flagString(elem)
			if !ok {
				return nil, false
			}

			part = append(part, fmt.Sprint(s))
		}

		return strings.Join(part, ","), true

	default:
		return fmt.Sprint(v), true
	}
}
