package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Profile is the optional YAML companion file holding store options, so the
// flags do not have to be repeated on every invocation. Flags win over
// profile values.
type Profile struct {
	Name          string `yaml:"name"`
	Dir           string `yaml:"dir"`
	AppName       string `yaml:"app_name"`
	Entrypoint    string `yaml:"entrypoint"`
	EncryptionKey string `yaml:"encryption_key"`
}

// LoadProfile reads and decodes a profile file. Unknown fields are rejected.
func LoadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profile %s: %w", path, err)
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields

	var p Profile
	if err := decoder.Decode(&p); err != nil {
		if errors.Is(err, io.EOF) {
			return &Profile{}, nil // empty profile file
		}
		return nil, fmt.Errorf("decode profile %s: %w", path, err)
	}
	return &p, nil
}
