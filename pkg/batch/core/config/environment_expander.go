package config

import (
	"os"
	"strings"
)

// EnvironmentExpander expands ${VAR} / $VAR placeholders in raw configuration bytes.
type EnvironmentExpander interface {
	Expand(input []byte) ([]byte, error)
}

// OsEnvironmentExpander expands placeholders from the process environment.
// ${VAR:-default} falls back to default when VAR is unset or empty; other unset
// variables expand to the empty string.
type OsEnvironmentExpander struct{}

// NewOsEnvironmentExpander returns an OsEnvironmentExpander.
func NewOsEnvironmentExpander() *OsEnvironmentExpander {
	return &OsEnvironmentExpander{}
}

// Expand implements EnvironmentExpander. It never fails.
func (e *OsEnvironmentExpander) Expand(input []byte) ([]byte, error) {
	return []byte(os.Expand(string(input), lookup)), nil
}

func lookup(name string) string {
	key, fallback, hasDefault := strings.Cut(name, ":-")
	if v := os.Getenv(key); v != "" || !hasDefault {
		return v
	}
	return fallback
}
