package config

import (
	"os"
	"path/filepath"
	"strings"
)

// EnvironmentExpander expands environment and home references in configuration values.
type EnvironmentExpander interface {
	// Expand replaces ${VAR} and $VAR placeholders in input.
	Expand(input []byte) ([]byte, error)
	// ExpandPath expands a leading "~" to the home directory and then ${VAR}/$VAR references.
	ExpandPath(path string) (string, error)
}

// OsEnvironmentExpander implements EnvironmentExpander with os.ExpandEnv and os.UserHomeDir.
type OsEnvironmentExpander struct{}

// NewOsEnvironmentExpander creates and returns a new instance of OsEnvironmentExpander.
func NewOsEnvironmentExpander() *OsEnvironmentExpander {
	return &OsEnvironmentExpander{}
}

// Expand uses os.ExpandEnv; unset variables become empty strings.
func (e *OsEnvironmentExpander) Expand(input []byte) ([]byte, error) {
	return []byte(os.ExpandEnv(string(input))), nil
}

// ExpandPath resolves "~" and "~/..." against the current user's home directory.
// "~user" forms are left untouched.
func (e *OsEnvironmentExpander) ExpandPath(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return os.ExpandEnv(path), nil
}
