package reference

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/turtacn/gridrisk/pkg/errors"
)

// Decode reads a complete table document from r, normalises and validates it.
// Keys absent from the document stay at their zero value, so an incomplete
// document fails validation instead of silently inheriting defaults.
func Decode(r io.Reader) (*Tables, error) {
	var doc Tables
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, errors.ErrInvalidConfiguration(fmt.Sprintf("decode tables: %v", err)).WithCause(err)
	}
	t := doc.Normalize()
	if err := Validate(t); err != nil {
		return nil, err
	}
	return t, nil
}

// LoadFile reads and validates the table document at path.
func LoadFile(path string) (*Tables, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.ErrInvalidConfiguration(fmt.Sprintf("open tables %s: %v", path, err)).WithCause(err)
	}
	defer f.Close()
	return Decode(f)
}

// Encode writes t as a YAML document that Decode accepts.
func Encode(w io.Writer, t *Tables) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(t); err != nil {
		return err
	}
	return enc.Close()
}
