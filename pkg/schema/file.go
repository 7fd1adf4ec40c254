package schema

import (
	"errors"
	"fmt"
	"os"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

// fileFormat is the on-disk YAML representation of a Schema.
type fileFormat struct {
	OpenDelimiter  string         `yaml:"open_delimiter"`
	CloseDelimiter string         `yaml:"close_delimiter"`
	Positions      map[string]int `yaml:"positions"`
}

// MarshalYAML implements yaml.Marshaler.
func (s *Schema) MarshalYAML() (interface{}, error) {
	f := fileFormat{
		OpenDelimiter:  string(s.open),
		CloseDelimiter: string(s.close),
		Positions:      make(map[string]int, len(s.positions)),
	}
	for t, pos := range s.positions {
		f.Positions[string(t)] = pos
	}
	return f, nil
}

// Parse decodes a schema from YAML.
func Parse(data []byte) (*Schema, error) {
	var f fileFormat
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing schema: %w", err)
	}

	open, err := singleRune("open_delimiter", f.OpenDelimiter)
	if err != nil {
		return nil, err
	}
	close, err := singleRune("close_delimiter", f.CloseDelimiter)
	if err != nil {
		return nil, err
	}

	positions := make(map[TokenType]int, len(f.Positions))
	for name, pos := range f.Positions {
		t, err := ParseTokenType(name)
		if err != nil {
			return nil, fmt.Errorf("%w: positions: %v", ErrInvalid, err)
		}
		positions[t] = pos
	}

	return New(open, close, positions)
}

// Load reads and validates a schema file.
func Load(path string) (*Schema, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- user-provided schema path is expected
	if err != nil {
		return nil, fmt.Errorf("reading schema file: %w", err)
	}
	return Parse(data)
}

// Save writes the schema as YAML. It refuses to overwrite an existing file.
func Save(path string, s *Schema) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("schema file already exists: %s (will not overwrite)", path)
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("checking schema file: %w", err)
	}

	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("encoding schema: %w", err)
	}

	// #nosec G306 - schema file doesn't need restrictive permissions
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing schema file: %w", err)
	}
	return nil
}

func singleRune(field, value string) (rune, error) {
	if utf8.RuneCountInString(value) != 1 {
		return 0, fmt.Errorf("%w: %s must be a single character, got %q", ErrInvalid, field, value)
	}
	r, _ := utf8.DecodeRuneInString(value)
	return r, nil
}
