package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// envExpr matches ${NAME} and ${NAME:-fallback} references anywhere in the
// raw YAML text. Fallbacks may be empty.
var envExpr = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(:-[^}]*)?\}`)

// Load reads the YAML file at path into a Config. Environment references
// of the form ${NAME} or ${NAME:-fallback} are resolved before parsing, so
// secrets like the admin bearer token never have to live in the file
// itself. A reference with no value set and no fallback fails the load.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	expanded, err := resolveEnv(string(raw))
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return &cfg, nil
}

// resolveEnv substitutes every environment reference in text. Missing
// variables are collected and reported together so an operator can fix
// the file in one pass.
func resolveEnv(text string) (string, error) {
	var missing []string

	out := envExpr.ReplaceAllStringFunc(text, func(match string) string {
		groups := envExpr.FindStringSubmatch(match)
		name := groups[1]

		if value, ok := os.LookupEnv(name); ok {
			return value
		}
		if fallback, ok := strings.CutPrefix(groups[2], ":-"); ok {
			return fallback
		}

		missing = append(missing, name)
		return match
	})

	if len(missing) > 0 {
		return "", fmt.Errorf("unset variables without fallbacks: %s", strings.Join(missing, ", "))
	}
	return out, nil
}
