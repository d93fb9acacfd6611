package manifest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/klauspost/readahead"
)

// DefaultFile is the conventional service definition file name.
const DefaultFile = "serverless.yml"

// DefaultIndent is the indentation width used by [Manifest.Save].
const DefaultIndent = 2

// Manifest is a decoded service definition. Mappings keep their source
// order so an encoded manifest differs from its input only where it was
// changed.
type Manifest struct {
	path string
	doc  yaml.MapSlice
}

// Function is one entry of the manifest's functions section.
type Function struct {
	Name    string
	Handler string
	// Runtime is the function-level runtime override, if any.
	Runtime string
	// Environment holds the variables declared on the function itself.
	Environment map[string]string
}

// Load reads and decodes the manifest at path.
func Load(ctx context.Context, path string) (*Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, ErrRead.With(slog.String("path", path)).Wrap(err)
	}
	defer f.Close()

	ra := readahead.NewReader(f)
	defer ra.Close()

	m, err := Decode(ctx, ra)
	if err != nil {
		return nil, err
	}

	m.path = path

	return m, nil
}

// Decode decodes a manifest from r.
func Decode(ctx context.Context, r io.Reader) (*Manifest, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, ErrRead.Wrap(err)
	}

	var doc any

	err = yaml.UnmarshalContext(ctx, data, &doc, yaml.UseOrderedMap())
	if err != nil {
		return nil, ErrDecode.Wrap(err)
	}

	switch v := doc.(type) {
	case yaml.MapSlice:
		return &Manifest{doc: v}, nil
	case nil:
		return &Manifest{}, nil
	default:
		return nil, ErrInvalidManifest.
			With(slog.String("type", fmt.Sprintf("%T", doc))).
			Wrap(errNotMapping)
	}
}

// Path returns the file the manifest was loaded from, if any.
func (m *Manifest) Path() string { return m.path }

// Service returns the service name, if declared.
func (m *Manifest) Service() string {
	v, _ := get(m.doc, "service")

	return scalar(v)
}

// Runtime returns the provider-level runtime identifier.
func (m *Manifest) Runtime() (string, error) {
	provider, _ := get(m.doc, "provider")

	pm, _ := provider.(yaml.MapSlice)
	if v, ok := get(pm, "runtime"); ok {
		if s := scalar(v); s != "" {
			return s, nil
		}
	}

	return "", ErrInvalidManifest.
		With(slog.String("key", "provider.runtime")).
		Wrap(errMissing)
}

// Environment returns the provider-level (shared) environment. Non-string
// values are rendered as text; [Manifest.Apply] installs the original
// values.
func (m *Manifest) Environment() (map[string]string, error) {
	provider, _ := get(m.doc, "provider")
	pm, _ := provider.(yaml.MapSlice)

	env, ok := get(pm, "environment")
	if !ok || env == nil {
		return map[string]string{}, nil
	}

	em, ok := env.(yaml.MapSlice)
	if !ok {
		return nil, ErrInvalidManifest.
			With(slog.String("key", "provider.environment")).
			Wrap(errNotMapping)
	}

	return stringMap(em), nil
}

// Functions returns the declared functions in manifest order. Both the
// mapping form and the list-of-single-key-mappings form are accepted.
func (m *Manifest) Functions() ([]Function, error) {
	var fns []Function

	err := m.eachFunction(func(name string, body yaml.MapSlice) error {
		fn := Function{Name: name, Environment: map[string]string{}}

		h, _ := get(body, "handler")
		fn.Handler = scalar(h)

		rt, _ := get(body, "runtime")
		fn.Runtime = scalar(rt)

		if env, ok := get(body, "environment"); ok && env != nil {
			em, ok := env.(yaml.MapSlice)
			if !ok {
				return ErrInvalidManifest.
					With(slog.String("key", "functions."+name+".environment")).
					Wrap(errNotMapping)
			}

			fn.Environment = stringMap(em)
		}

		fns = append(fns, fn)

		return nil
	})

	return fns, err
}

// Apply installs envs[name] as the environment of each named function,
// after the variables the function already declares. Values are taken
// verbatim from the provider-level environment when it declares them.
// When clearShared is set the provider-level environment becomes null.
func (m *Manifest) Apply(envs map[string]map[string]string, clearShared bool) error {
	provider, _ := get(m.doc, "provider")
	pm, _ := provider.(yaml.MapSlice)

	sharedRaw, _ := get(pm, "environment")
	shared, _ := sharedRaw.(yaml.MapSlice)

	err := m.eachFunction(func(name string, body yaml.MapSlice) error {
		env, ok := envs[name]
		if !ok {
			return nil
		}

		var own yaml.MapSlice

		if v, ok := get(body, "environment"); ok && v != nil {
			own, _ = v.(yaml.MapSlice)
		}

		merged := append(yaml.MapSlice(nil), own...)

		for _, key := range sortedKeys(env) {
			if _, exists := get(merged, key); exists {
				continue
			}

			var value any = env[key]
			if raw, ok := get(shared, key); ok {
				value = raw
			}

			merged = append(merged, yaml.MapItem{Key: key, Value: value})
		}

		return m.setFunction(name, set(body, "environment", merged))
	})
	if err != nil {
		return err
	}

	if clearShared && pm != nil {
		m.doc = set(m.doc, "provider", set(pm, "environment", nil))
	}

	return nil
}

// Encode writes the manifest as YAML with the given indentation width.
func (m *Manifest) Encode(ctx context.Context, w io.Writer, indent int) error {
	var opts []yaml.EncodeOption
	if indent > 0 {
		opts = append(opts, yaml.Indent(indent))
	}

	data, err := yaml.MarshalContext(ctx, m.doc, opts...)
	if err != nil {
		return ErrEncode.Wrap(err)
	}

	if _, err := w.Write(data); err != nil {
		return ErrWrite.Wrap(err)
	}

	return nil
}

// Save writes the manifest back to the file it was loaded from.
func (m *Manifest) Save(ctx context.Context, indent int) error {
	if m.path == "" {
		return ErrWrite.Wrap(errNoPath)
	}

	return m.SaveAs(ctx, m.path, indent)
}

// SaveAs writes the manifest to path through a temporary file in the same
// directory, so path is either fully replaced or left untouched.
func (m *Manifest) SaveAs(ctx context.Context, path string, indent int) error {
	var buf bytes.Buffer

	if err := m.Encode(ctx, &buf, indent); err != nil {
		return err
	}

	return writeAtomic(path, buf.Bytes())
}

func (m *Manifest) String() string {
	var sb strings.Builder

	_ = m.Encode(context.Background(), &sb, DefaultIndent)

	return sb.String()
}
