package tables

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads the tables YAML file. KnownFields(true) makes typos and
// unused fields fail immediately instead of silently loading defaults.
func Load(path string) (*Tables, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var t Tables
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&t); err != nil {
		return nil, err
	}

	if err := Validate(&t); err != nil {
		return nil, err
	}

	return &t, nil
}

// LoadOrDefault loads path when it exists, the built-in tables otherwise.
func LoadOrDefault(path string) (*Tables, error) {
	if path == "" {
		return Default(), nil
	}
	if _, err := os.Stat(path); err != nil {
		return Default(), nil
	}
	return Load(path)
}

// Hash generates a SHA256 hash of the tables via canonical JSON, for
// audit trails. Struct marshaling keeps the hash reproducible.
func Hash(t *Tables) (string, error) {
	jsonBytes, err := json.Marshal(t)
	if err != nil {
		return "", err
	}

	sum := sha256.Sum256(jsonBytes)
	return hex.EncodeToString(sum[:]), nil
}
