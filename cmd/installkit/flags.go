package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alexisbeaulieu97/installkit/internal/environment"
)

func validateInstallOptions(opts installOptions) error {
	switch opts.Dialect {
	case "", environment.DialectHuman, environment.DialectMachine:
	default:
		return fmt.Errorf("unknown dialect %q, expected %s or %s", opts.Dialect, environment.DialectHuman, environment.DialectMachine)
	}

	if strings.TrimSpace(opts.ConfigPath) != "" {
		abs, err := filepath.Abs(opts.ConfigPath)
		if err != nil {
			return fmt.Errorf("resolve config path: %w", err)
		}
		info, err := os.Stat(abs)
		if err != nil {
			return fmt.Errorf("config file does not exist: %w", err)
		}
		if info.IsDir() {
			return fmt.Errorf("config path %s is a directory", abs)
		}
	}

	for _, assignment := range opts.Env {
		if _, _, err := parseAssignment(assignment); err != nil {
			return err
		}
	}
	return nil
}

// parseAssignment splits a KEY=type:value override.
func parseAssignment(assignment string) (string, any, error) {
	key, raw, ok := strings.Cut(assignment, "=")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return "", nil, fmt.Errorf("environment override %q must look like KEY=type:value", assignment)
	}
	value, err := environment.ParseTyped(raw)
	if err != nil {
		return "", nil, fmt.Errorf("environment override %s: %w", key, err)
	}
	return key, value, nil
}
