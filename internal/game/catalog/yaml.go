package catalog

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

type catalogFile struct {
	Cards []Card `yaml:"cards"`
}

// LoadYAML decodes a catalog document and validates it. Unknown fields are rejected.
func LoadYAML(r io.Reader) (*Memory, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var doc catalogFile
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return NewMemory(doc.Cards)
}

// LoadFile opens path and loads it with LoadYAML.
func LoadFile(path string) (*Memory, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()

	m, err := LoadYAML(f)
	if err != nil {
		return nil, fmt.Errorf("load catalog %s: %w", path, err)
	}
	return m, nil
}
