package syntax

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"
)

// Encoding identifies the file format of a syntax table.
type Encoding string

const (
	EncodingYAML Encoding = "yaml"
	EncodingTOML Encoding = "toml"
)

// file is the on-disk shape of a syntax table.
type file struct {
	Runtimes []Syntax `toml:"runtimes" validate:"required,min=1,dive" yaml:"runtimes"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// EncodingOf infers the encoding from a file name; anything other than a
// ".toml" suffix is treated as YAML.
func EncodingOf(path string) Encoding {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return EncodingTOML
	}

	return EncodingYAML
}

// LoadFile reads a syntax table from path.
func LoadFile(path string) (Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return Table{}, ErrReadTable.With(slog.String("path", path)).Wrap(err)
	}
	defer f.Close()

	t, err := Load(f, EncodingOf(path))
	if err != nil {
		return Table{}, ErrReadTable.With(slog.String("path", path)).Wrap(err)
	}

	return t, nil
}

// Load decodes, validates and compiles a syntax table.
func Load(r io.Reader, enc Encoding) (Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Table{}, err
	}

	var f file

	switch enc {
	case EncodingTOML:
		err = toml.NewDecoder(bytes.NewReader(data)).
			DisallowUnknownFields().
			Decode(&f)

	default:
		err = yaml.UnmarshalWithOptions(data, &f, yaml.DisallowUnknownField())
	}

	if err != nil {
		return Table{}, ErrInvalidSyntax.
			With(slog.String("encoding", string(enc))).
			Wrap(err)
	}

	err = validate.Struct(f)
	if err != nil {
		return Table{}, ErrInvalidSyntax.
			With(slog.String("encoding", string(enc))).
			Wrap(err)
	}

	return NewTable(f.Runtimes...)
}
