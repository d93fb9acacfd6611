package manifest

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/goccy/go-yaml"
)

var (
	errNotMapping = errors.New("expected a mapping")
	errMissing    = errors.New("missing required key")
	errNoPath     = errors.New("manifest has no file path")
)

func keyString(k any) string {
	if s, ok := k.(string); ok {
		return s
	}

	return fmt.Sprint(k)
}

// get returns the value of key in s.
func get(s yaml.MapSlice, key string) (any, bool) {
	for _, item := range s {
		if keyString(item.Key) == key {
			return item.Value, true
		}
	}

	return nil, false
}

// set assigns key in s, in place when key exists and appended otherwise.
func set(s yaml.MapSlice, key string, value any) yaml.MapSlice {
	for i, item := range s {
		if keyString(item.Key) == key {
			s[i].Value = value

			return s
		}
	}

	return append(s, yaml.MapItem{Key: key, Value: value})
}

// scalar renders v as text. Collections are rendered in flow style.
func scalar(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case yaml.MapSlice, []any:
		data, err := yaml.MarshalWithOptions(t, yaml.Flow(true))
		if err != nil {
			return fmt.Sprint(t)
		}

		return strings.TrimSpace(string(data))
	default:
		return fmt.Sprint(t)
	}
}

func stringMap(s yaml.MapSlice) map[string]string {
	out := make(map[string]string, len(s))
	for _, item := range s {
		out[keyString(item.Key)] = scalar(item.Value)
	}

	return out
}

func sortedKeys(m map[string]string) []string {
	return slices.Sorted(maps.Keys(m))
}

// eachFunction calls fn for every entry of the functions section.
func (m *Manifest) eachFunction(fn func(name string, body yaml.MapSlice) error) error {
	functions, ok := get(m.doc, "functions")
	if !ok || functions == nil {
		return nil
	}

	visit := func(item yaml.MapItem) error {
		name := keyString(item.Key)

		if item.Value == nil {
			return fn(name, nil)
		}

		body, ok := item.Value.(yaml.MapSlice)
		if !ok {
			return ErrInvalidManifest.
				With(slog.String("key", "functions."+name)).
				Wrap(errNotMapping)
		}

		return fn(name, body)
	}

	switch v := functions.(type) {
	case yaml.MapSlice:
		for _, item := range v {
			if err := visit(item); err != nil {
				return err
			}
		}

	case []any:
		for i, entry := range v {
			em, ok := entry.(yaml.MapSlice)
			if !ok || len(em) != 1 {
				return ErrInvalidManifest.
					With(slog.String("key", fmt.Sprintf("functions[%d]", i))).
					Wrap(errors.New("expected a single-key mapping"))
			}

			if err := visit(em[0]); err != nil {
				return err
			}
		}

	default:
		return ErrInvalidManifest.
			With(slog.String("key", "functions")).
			Wrap(errNotMapping)
	}

	return nil
}

// setFunction replaces the body of the named function.
func (m *Manifest) setFunction(name string, body yaml.MapSlice) error {
	functions, _ := get(m.doc, "functions")

	switch v := functions.(type) {
	case yaml.MapSlice:
		m.doc = set(m.doc, "functions", set(v, name, body))

		return nil

	case []any:
		for i, entry := range v {
			if em, ok := entry.(yaml.MapSlice); ok && len(em) == 1 && keyString(em[0].Key) == name {
				v[i] = yaml.MapSlice{{Key: em[0].Key, Value: body}}

				return nil
			}
		}
	}

	return ErrInvalidManifest.
		With(slog.String("key", "functions."+name)).
		Wrap(errMissing)
}

// writeAtomic replaces path with data via a temporary sibling file.
func writeAtomic(path string, data []byte) (err error) {
	mode := os.FileMode(0o644)
	if info, statErr := os.Stat(path); statErr == nil {
		mode = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return ErrWrite.With(slog.String("path", path)).Wrap(err)
	}

	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return ErrWrite.With(slog.String("path", path)).Wrap(err)
	}

	if err = tmp.Sync(); err != nil {
		return ErrWrite.With(slog.String("path", path)).Wrap(err)
	}

	if err = tmp.Close(); err != nil {
		return ErrWrite.With(slog.String("path", path)).Wrap(err)
	}

	if err = os.Chmod(tmp.Name(), mode); err != nil {
		return ErrWrite.With(slog.String("path", path)).Wrap(err)
	}

	if err = os.Rename(tmp.Name(), path); err != nil {
		return ErrWrite.With(slog.String("path", path)).Wrap(err)
	}

	return nil
}
